package repository

import (
	"time"

	"renovation/internal/app/ds"

	"gorm.io/gorm"
)

// TaskUpdate carries the fields to change; nil means keep. Column moves go through MoveTask.
type TaskUpdate struct {
	Title       *string
	Description *string
	Priority    *string
	AssigneeID  *uint
	DueDate     *time.Time
}

func validColumn(column string) bool {
	return oneOf(column, ds.TaskColumns...)
}

// CreateTask appends the task at the bottom of its column.
func (r *Repository) CreateTask(t *ds.Task) error {
	if t.Column == "" {
		t.Column = ds.TaskTodo
	}
	if !validColumn(t.Column) {
		return validation("unknown board column")
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&ds.Project{}, t.ProjectID).Error; err != nil {
			return notFound(err, "project")
		}
		var count int64
		if err := tx.Model(&ds.Task{}).Where("project_id = ? AND board_column = ?", t.ProjectID, t.Column).Count(&count).Error; err != nil {
			return err
		}
		t.Position = int(count)
		return tx.Create(t).Error
	})
}

func (r *Repository) GetTask(id uint) (*ds.Task, error) {
	var t ds.Task
	if err := r.db.Preload("Assignee").First(&t, id).Error; err != nil {
		return nil, notFound(err, "task")
	}
	return &t, nil
}

func (r *Repository) UpdateTask(id uint, u TaskUpdate) (*ds.Task, error) {
	if _, err := r.GetTask(id); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if u.Title != nil {
		updates["title"] = *u.Title
	}
	if u.Description != nil {
		updates["description"] = *u.Description
	}
	if u.Priority != nil {
		updates["priority"] = *u.Priority
	}
	if u.AssigneeID != nil {
		updates["assignee_id"] = *u.AssigneeID
	}
	if u.DueDate != nil {
		updates["due_date"] = *u.DueDate
	}
	if err := r.db.Model(&ds.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.GetTask(id)
}

// DeleteTask closes the gap left in the column.
func (r *Repository) DeleteTask(id uint) (*ds.Task, error) {
	var t ds.Task
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&t, id).Error; err != nil {
			return notFound(err, "task")
		}
		if err := tx.Delete(&t).Error; err != nil {
			return err
		}
		return tx.Model(&ds.Task{}).
			Where("project_id = ? AND board_column = ? AND position > ?", t.ProjectID, t.Column, t.Position).
			Update("position", gorm.Expr("position - 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// MoveTask puts a task at position in column and renumbers the affected columns
// so positions stay 0..n-1.
func (r *Repository) MoveTask(id uint, column string, position int) (*ds.Task, error) {
	if !validColumn(column) {
		return nil, validation("unknown board column")
	}
	if position < 0 {
		return nil, validation("position cannot be negative")
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var t ds.Task
		if err := tx.First(&t, id).Error; err != nil {
			return notFound(err, "task")
		}

		var target []ds.Task
		if err := tx.Where("project_id = ? AND board_column = ? AND id <> ?", t.ProjectID, column, id).
			Order("position, id").Find(&target).Error; err != nil {
			return err
		}
		if position > len(target) {
			position = len(target)
		}

		ordered := make([]ds.Task, 0, len(target)+1)
		ordered = append(ordered, target[:position]...)
		ordered = append(ordered, t)
		ordered = append(ordered, target[position:]...)

		now := time.Now()
		for i, task := range ordered {
			if task.ID == id {
				if err := tx.Model(&ds.Task{}).Where("id = ?", id).
					Updates(map[string]interface{}{"board_column": column, "position": i, "updated_at": now}).Error; err != nil {
					return err
				}
				continue
			}
			if task.Position != i {
				if err := tx.Model(&ds.Task{}).Where("id = ?", task.ID).Update("position", i).Error; err != nil {
					return err
				}
			}
		}

		if t.Column != column {
			return resequenceColumn(tx, t.ProjectID, t.Column)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetTask(id)
}

func resequenceColumn(tx *gorm.DB, projectID uint, column string) error {
	var tasks []ds.Task
	if err := tx.Where("project_id = ? AND board_column = ?", projectID, column).
		Order("position, id").Find(&tasks).Error; err != nil {
		return err
	}
	for i, task := range tasks {
		if task.Position == i {
			continue
		}
		if err := tx.Model(&ds.Task{}).Where("id = ?", task.ID).Update("position", i).Error; err != nil {
			return err
		}
	}
	return nil
}

// Board returns the project's tasks per column, every column present.
func (r *Repository) Board(projectID uint) (map[string][]ds.Task, error) {
	if _, err := r.GetProject(projectID); err != nil {
		return nil, err
	}

	var tasks []ds.Task
	if err := r.db.Preload("Assignee").Where("project_id = ?", projectID).
		Order("position, id").Find(&tasks).Error; err != nil {
		return nil, err
	}

	board := make(map[string][]ds.Task, len(ds.TaskColumns))
	for _, c := range ds.TaskColumns {
		board[c] = []ds.Task{}
	}
	for _, t := range tasks {
		board[t.Column] = append(board[t.Column], t)
	}
	return board, nil
}

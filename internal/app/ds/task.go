package ds

import "time"

// board columns
const (
	TaskTodo       = "todo"
	TaskInProgress = "in_progress"
	TaskReview     = "review"
	TaskDone       = "done"
)

var TaskColumns = []string{TaskTodo, TaskInProgress, TaskReview, TaskDone}

type Task struct {
	ID          uint   `gorm:"primaryKey"`
	ProjectID   uint   `gorm:"not null;index"`
	Title       string `gorm:"type:varchar(150);not null"`
	Description string `gorm:"type:text"`
	Column      string `gorm:"column:board_column;type:varchar(20);default:'todo';not null"`
	Position    int    `gorm:"type:int;default:0;not null"`
	Priority    string `gorm:"type:varchar(10);default:'medium'"`
	AssigneeID  *uint
	DueDate     *time.Time
	CreatedByID uint `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Assignee *User `gorm:"foreignKey:AssigneeID"`
}

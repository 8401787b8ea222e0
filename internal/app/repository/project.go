package repository

import (
	"time"

	"renovation/internal/app/ds"

	"github.com/shopspring/decimal"
)

type ProjectFilter struct {
	Status string
	Query  string
}

// ProjectUpdate carries the fields to change; nil means keep.
type ProjectUpdate struct {
	Name          *string
	ClientName    *string
	ClientEmail   *string
	Address       *string
	Status        *string
	DefaultMarkup *decimal.Decimal
	Budget        *decimal.Decimal
	StartDate     *time.Time
	EndDate       *time.Time
}

func (r *Repository) CreateProject(p *ds.Project) error {
	if p.Status == "" {
		p.Status = ds.ProjectActive
	}
	return r.db.Create(p).Error
}

func (r *Repository) GetProject(id uint) (*ds.Project, error) {
	var p ds.Project
	err := r.db.First(&p, id).Error
	if err != nil {
		return nil, notFound(err, "project")
	}
	return &p, nil
}

// ListProjects hides archived projects unless asked for them by status.
func (r *Repository) ListProjects(f ProjectFilter) ([]ds.Project, error) {
	q := r.db.Model(&ds.Project{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	} else {
		q = q.Where("status <> ?", ds.ProjectArchived)
	}
	if f.Query != "" {
		pattern := likePattern(f.Query)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(client_name) LIKE ?", pattern, pattern)
	}

	var projects []ds.Project
	err := q.Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (r *Repository) UpdateProject(id uint, u ProjectUpdate) (*ds.Project, error) {
	p, err := r.GetProject(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if u.Name != nil {
		updates["name"] = *u.Name
	}
	if u.ClientName != nil {
		updates["client_name"] = *u.ClientName
	}
	if u.ClientEmail != nil {
		updates["client_email"] = *u.ClientEmail
	}
	if u.Address != nil {
		updates["address"] = *u.Address
	}
	if u.Status != nil {
		if !oneOf(*u.Status, ds.ProjectActive, ds.ProjectOnHold, ds.ProjectCompleted, ds.ProjectArchived) {
			return nil, validation("unknown project status")
		}
		updates["status"] = *u.Status
	}
	if u.DefaultMarkup != nil {
		updates["default_markup"] = *u.DefaultMarkup
	}
	if u.Budget != nil {
		updates["budget"] = *u.Budget
	}
	if u.StartDate != nil {
		updates["start_date"] = *u.StartDate
	}
	if u.EndDate != nil {
		updates["end_date"] = *u.EndDate
	}
	if len(updates) > 0 {
		if err := r.db.Model(p).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.GetProject(id)
}

// ArchiveProject is a logical delete.
func (r *Repository) ArchiveProject(id uint) error {
	result := r.db.Exec("UPDATE projects SET status = ?, updated_at = ? WHERE id = ? AND status <> ?",
		ds.ProjectArchived, time.Now(), id, ds.ProjectArchived)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return missing("project")
	}
	return nil
}

// ProjectMarkup is the markup used for items without their own.
func (r *Repository) ProjectMarkup(p *ds.Project) decimal.Decimal {
	if p != nil && p.DefaultMarkup != nil {
		return *p.DefaultMarkup
	}
	return r.defaultMarkup
}

package repository

import (
	"renovation/internal/app/ds"
)

func (r *Repository) CreateSupplier(s *ds.Supplier) error {
	return r.db.Create(s).Error
}

func (r *Repository) GetSupplier(id uint) (*ds.Supplier, error) {
	var s ds.Supplier
	err := r.db.Where("id = ? AND is_deleted = ?", id, false).First(&s).Error
	if err != nil {
		return nil, notFound(err, "supplier")
	}
	return &s, nil
}

func (r *Repository) ListSuppliers(query string) ([]ds.Supplier, error) {
	q := r.db.Where("is_deleted = ?", false)
	if query != "" {
		pattern := likePattern(query)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(contact_name) LIKE ?", pattern, pattern)
	}

	var suppliers []ds.Supplier
	err := q.Order("name").Find(&suppliers).Error
	return suppliers, err
}

// UpdateSupplier writes the given columns.
func (r *Repository) UpdateSupplier(id uint, updates map[string]interface{}) (*ds.Supplier, error) {
	s, err := r.GetSupplier(id)
	if err != nil {
		return nil, err
	}
	if len(updates) > 0 {
		if err := r.db.Model(s).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.GetSupplier(id)
}

// DeleteSupplier is logical so past orders keep their supplier.
func (r *Repository) DeleteSupplier(id uint) error {
	result := r.db.Exec("UPDATE suppliers SET is_deleted = ? WHERE id = ? AND is_deleted = ?", true, id, false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return missing("supplier")
	}
	return nil
}

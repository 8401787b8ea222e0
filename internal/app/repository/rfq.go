package repository

import (
	"time"

	"renovation/internal/app/ds"

	"gorm.io/gorm"
)

type RFQItemInput struct {
	SpecItemID  *uint
	Description string
	Quantity    int
	Unit        string
}

type RFQInput struct {
	ProjectID   uint
	Title       string
	Notes       string
	DueDate     *time.Time
	SupplierIDs []uint
	Items       []RFQItemInput
	CreatedByID uint
}

// CreateRFQ stores a draft RFQ numbered RFQ-YYYY-NNNN. Items taken from the
// FFE list inherit its name and quantity when left empty.
func (r *Repository) CreateRFQ(in RFQInput) (*ds.RFQ, error) {
	if len(in.Items) == 0 {
		return nil, validation("rfq needs at least one item")
	}
	if len(in.SupplierIDs) == 0 {
		return nil, validation("rfq needs at least one supplier")
	}

	var id uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var project ds.Project
		if err := tx.First(&project, in.ProjectID).Error; err != nil {
			return notFound(err, "project")
		}

		now := time.Now()
		number, err := nextNumber(tx, &ds.RFQ{}, "RFQ", now)
		if err != nil {
			return err
		}

		rfq := ds.RFQ{
			Number:      number,
			ProjectID:   in.ProjectID,
			Title:       in.Title,
			Notes:       in.Notes,
			Status:      ds.RFQDraft,
			DueDate:     in.DueDate,
			CreatedByID: in.CreatedByID,
			CreatedAt:   now,
		}

		for _, it := range in.Items {
			item := ds.RFQItem{
				SpecItemID:  it.SpecItemID,
				Description: it.Description,
				Quantity:    it.Quantity,
				Unit:        it.Unit,
			}
			if it.SpecItemID != nil {
				var spec ds.SpecItem
				err := tx.Where("id = ? AND project_id = ?", *it.SpecItemID, in.ProjectID).First(&spec).Error
				if err != nil {
					return notFound(err, "spec item")
				}
				if item.Description == "" {
					item.Description = spec.Name
				}
				if item.Quantity == 0 {
					item.Quantity = spec.Quantity
				}
				if item.Unit == "" {
					item.Unit = spec.Unit
				}
			}
			if item.Description == "" || item.Quantity < 1 {
				return validation("every rfq item needs a description and a positive quantity")
			}
			rfq.Items = append(rfq.Items, item)
		}

		seen := map[uint]bool{}
		for _, sid := range in.SupplierIDs {
			if seen[sid] {
				continue
			}
			seen[sid] = true
			var supplier ds.Supplier
			if err := tx.Where("id = ? AND is_deleted = ?", sid, false).First(&supplier).Error; err != nil {
				return notFound(err, "supplier")
			}
			rfq.Suppliers = append(rfq.Suppliers, ds.RFQSupplier{SupplierID: sid, DeliveryStatus: ds.DeliveryPending})
		}

		if err := tx.Create(&rfq).Error; err != nil {
			return err
		}
		id = rfq.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetRFQ(id)
}

func (r *Repository) GetRFQ(id uint) (*ds.RFQ, error) {
	var rfq ds.RFQ
	err := r.db.
		Preload("Project").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Suppliers.Supplier").
		First(&rfq, id).Error
	if err != nil {
		return nil, notFound(err, "rfq")
	}
	return &rfq, nil
}

func (r *Repository) ListRFQs(projectID *uint, status string) ([]ds.RFQ, error) {
	q := r.db.Preload("Suppliers.Supplier").Preload("Items")
	if projectID != nil {
		q = q.Where("project_id = ?", *projectID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var rfqs []ds.RFQ
	err := q.Order("created_at DESC").Find(&rfqs).Error
	return rfqs, err
}

// SetRFQDelivery records whether the RFQ reached one supplier.
func (r *Repository) SetRFQDelivery(rfqID, supplierID uint, deliveryErr error, at time.Time) error {
	updates := map[string]interface{}{
		"delivery_status": ds.DeliverySent,
		"delivery_error":  "",
		"sent_at":         at,
	}
	if deliveryErr != nil {
		msg := deliveryErr.Error()
		if len(msg) > 255 {
			msg = msg[:255]
		}
		updates["delivery_status"] = ds.DeliveryFailed
		updates["delivery_error"] = msg
		updates["sent_at"] = nil
	}

	result := r.db.Model(&ds.RFQSupplier{}).
		Where("rfq_id = ? AND supplier_id = ?", rfqID, supplierID).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return missing("rfq supplier")
	}
	return nil
}

// MarkRFQSent moves a draft RFQ to sent. Re-sending a sent RFQ is allowed.
func (r *Repository) MarkRFQSent(id uint, at time.Time) error {
	result := r.db.Exec("UPDATE rfqs SET status = ?, sent_at = ? WHERE id = ? AND status IN ?",
		ds.RFQSent, at, id, []string{ds.RFQDraft, ds.RFQSent})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.rfqStatusError(id)
	}
	return nil
}

func (r *Repository) CloseRFQ(id uint) error {
	result := r.db.Exec("UPDATE rfqs SET status = ? WHERE id = ? AND status = ?", ds.RFQClosed, id, ds.RFQSent)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.rfqStatusError(id)
	}
	return nil
}

func (r *Repository) CancelRFQ(id uint) error {
	result := r.db.Exec("UPDATE rfqs SET status = ? WHERE id = ? AND status IN ?",
		ds.RFQCancelled, id, []string{ds.RFQDraft, ds.RFQSent})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.rfqStatusError(id)
	}
	return nil
}

// rfqStatusError explains why a guarded update touched nothing.
func (r *Repository) rfqStatusError(id uint) error {
	var rfq ds.RFQ
	if err := r.db.Select("id", "status").First(&rfq, id).Error; err != nil {
		return notFound(err, "rfq")
	}
	return invalidStatus("rfq", rfq.Status)
}

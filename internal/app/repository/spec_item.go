package repository

import (
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SpecItemFilter struct {
	Room     string
	Category string
	Status   string
	Approved *bool
}

// PricedSpecItem is a spec item with its derived prices.
type PricedSpecItem struct {
	ds.SpecItem
	EffectiveMarkup decimal.Decimal
	SellingPrice    decimal.Decimal
	TotalPrice      decimal.Decimal
	Margin          decimal.Decimal
}

func (r *Repository) price(item ds.SpecItem, projectMarkup decimal.Decimal) PricedSpecItem {
	markup := projectMarkup
	if item.Markup != nil {
		markup = *item.Markup
	}
	selling := pricing.SellingPrice(item.CostPrice, markup, item.RRP)
	return PricedSpecItem{
		SpecItem:        item,
		EffectiveMarkup: markup,
		SellingPrice:    selling,
		TotalPrice:      pricing.LineTotal(item.Quantity, selling),
		Margin:          pricing.Margin(selling, item.CostPrice),
	}
}

func (r *Repository) ListSpecItems(projectID uint, f SpecItemFilter) ([]PricedSpecItem, error) {
	project, err := r.GetProject(projectID)
	if err != nil {
		return nil, err
	}

	q := r.db.Preload("Supplier").Where("project_id = ?", projectID)
	if f.Room != "" {
		q = q.Where("room = ?", f.Room)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Approved != nil {
		q = q.Where("client_approved = ?", *f.Approved)
	}

	var items []ds.SpecItem
	if err := q.Order("room, id").Find(&items).Error; err != nil {
		return nil, err
	}

	markup := r.ProjectMarkup(project)
	priced := make([]PricedSpecItem, len(items))
	for i, item := range items {
		priced[i] = r.price(item, markup)
	}
	return priced, nil
}

func (r *Repository) GetSpecItem(id uint) (*PricedSpecItem, error) {
	var item ds.SpecItem
	err := r.db.Preload("Project").Preload("Supplier").First(&item, id).Error
	if err != nil {
		return nil, notFound(err, "spec item")
	}
	priced := r.price(item, r.ProjectMarkup(&item.Project))
	return &priced, nil
}

func (r *Repository) CreateSpecItem(item *ds.SpecItem) error {
	if _, err := r.GetProject(item.ProjectID); err != nil {
		return err
	}
	if item.SupplierID != nil {
		if _, err := r.GetSupplier(*item.SupplierID); err != nil {
			return err
		}
	}
	if item.Quantity < 1 {
		return validation("quantity must be at least 1")
	}
	if item.Status == "" {
		item.Status = ds.SpecItemSpecified
	}
	return r.db.Create(item).Error
}

// UpdateSpecItem writes the given columns.
func (r *Repository) UpdateSpecItem(id uint, updates map[string]interface{}) (*PricedSpecItem, error) {
	if _, err := r.GetSpecItem(id); err != nil {
		return nil, err
	}
	if q, ok := updates["quantity"].(int); ok && q < 1 {
		return nil, validation("quantity must be at least 1")
	}
	if sid, ok := updates["supplier_id"].(uint); ok {
		if _, err := r.GetSupplier(sid); err != nil {
			return nil, err
		}
	}
	if len(updates) > 0 {
		updates["updated_at"] = time.Now()
		if err := r.db.Model(&ds.SpecItem{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.GetSpecItem(id)
}

// DeleteSpecItem refuses items that are already on a purchase order.
func (r *Repository) DeleteSpecItem(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&ds.OrderItem{}).
			Joins("JOIN orders ON orders.id = order_items.order_id").
			Where("order_items.spec_item_id = ? AND orders.status NOT IN ?", id, []string{ds.OrderCancelled, ds.OrderDeleted}).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return invalidStatus("spec item", "on a purchase order")
		}

		result := tx.Delete(&ds.SpecItem{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missing("spec item")
		}
		return nil
	})
}

// ApproveSpecItems marks items of a project as client approved and returns how many changed.
func (r *Repository) ApproveSpecItems(projectID uint, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, validation("no items given")
	}
	result := r.db.Model(&ds.SpecItem{}).
		Where("project_id = ? AND id IN ?", projectID, ids).
		Updates(map[string]interface{}{"client_approved": true, "updated_at": time.Now()})
	return result.RowsAffected, result.Error
}

func (r *Repository) SetSpecItemImage(id uint, key string) error {
	result := r.db.Model(&ds.SpecItem{}).Where("id = ?", id).Update("image_key", key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return missing("spec item")
	}
	return nil
}

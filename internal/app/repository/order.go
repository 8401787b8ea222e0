package repository

import (
	"fmt"
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderItemInput struct {
	SpecItemID  *uint
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
}

type OrderInput struct {
	ProjectID        uint
	SupplierID       uint
	SupplierQuoteID  *uint
	ExpectedDelivery *time.Time
	ShippingCost     decimal.Decimal
	Notes            string
	Items            []OrderItemInput
	CreatedByID      uint
}

type OrderFilter struct {
	Status     string
	ProjectID  *uint
	SupplierID *uint
	DateFrom   *time.Time
	DateTo     *time.Time
}

// OrderUpdate carries draft-only field changes; nil means keep.
type OrderUpdate struct {
	ExpectedDelivery *time.Time
	ShippingCost     *decimal.Decimal
	Notes            *string
}

func (r *Repository) CreateOrder(in OrderInput) (*ds.Order, error) {
	var id uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		order, err := r.createOrderTx(tx, in)
		if err != nil {
			return err
		}
		id = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetOrder(id)
}

func (r *Repository) createOrderTx(tx *gorm.DB, in OrderInput) (*ds.Order, error) {
	if len(in.Items) == 0 {
		return nil, validation("order needs at least one item")
	}
	if in.ShippingCost.IsNegative() {
		return nil, validation("shipping cost cannot be negative")
	}
	if err := tx.First(&ds.Project{}, in.ProjectID).Error; err != nil {
		return nil, notFound(err, "project")
	}
	if err := tx.Where("id = ? AND is_deleted = ?", in.SupplierID, false).First(&ds.Supplier{}).Error; err != nil {
		return nil, notFound(err, "supplier")
	}

	now := time.Now()
	number, err := nextNumber(tx, &ds.Order{}, "PO", now)
	if err != nil {
		return nil, err
	}

	order := ds.Order{
		Number:           number,
		ProjectID:        in.ProjectID,
		SupplierID:       in.SupplierID,
		SupplierQuoteID:  in.SupplierQuoteID,
		Status:           ds.OrderDraft,
		OrderDate:        now,
		ExpectedDelivery: in.ExpectedDelivery,
		ShippingCost:     pricing.Round2(in.ShippingCost),
		Notes:            in.Notes,
		CreatedByID:      in.CreatedByID,
	}
	for _, it := range in.Items {
		item, err := buildOrderItem(tx, in.ProjectID, it)
		if err != nil {
			return nil, err
		}
		order.Items = append(order.Items, item)
	}
	r.applyOrderTotals(&order)

	if err := tx.Create(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func buildOrderItem(tx *gorm.DB, projectID uint, in OrderItemInput) (ds.OrderItem, error) {
	item := ds.OrderItem{
		SpecItemID:  in.SpecItemID,
		Description: in.Description,
		Quantity:    in.Quantity,
		UnitPrice:   pricing.Round2(in.UnitPrice),
	}
	if in.SpecItemID != nil {
		var spec ds.SpecItem
		if err := tx.Where("id = ? AND project_id = ?", *in.SpecItemID, projectID).First(&spec).Error; err != nil {
			return item, notFound(err, "spec item")
		}
		if item.Description == "" {
			item.Description = spec.Name
		}
		if item.Quantity == 0 {
			item.Quantity = spec.Quantity
		}
	}
	if item.Description == "" || item.Quantity < 1 || item.UnitPrice.IsNegative() {
		return item, validation("order items need a description, a positive quantity and a non-negative price")
	}
	item.TotalPrice = pricing.LineTotal(item.Quantity, item.UnitPrice)
	return item, nil
}

func (r *Repository) applyOrderTotals(o *ds.Order) {
	lines := make([]pricing.Line, len(o.Items))
	for i, it := range o.Items {
		lines[i] = pricing.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	t := pricing.Compute(lines, o.ShippingCost, r.rates)
	o.Subtotal = t.Subtotal
	o.GSTAmount = t.GSTAmount
	o.QSTAmount = t.QSTAmount
	o.Total = t.Total
}

// recalcOrderTx reloads the items of an order and stores fresh totals.
func (r *Repository) recalcOrderTx(tx *gorm.DB, orderID uint) error {
	var order ds.Order
	if err := tx.Preload("Items").First(&order, orderID).Error; err != nil {
		return notFound(err, "order")
	}
	r.applyOrderTotals(&order)
	return tx.Model(&ds.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
		"subtotal":   order.Subtotal,
		"gst_amount": order.GSTAmount,
		"qst_amount": order.QSTAmount,
		"total":      order.Total,
		"updated_at": time.Now(),
	}).Error
}

func (r *Repository) GetOrder(id uint) (*ds.Order, error) {
	var order ds.Order
	err := r.db.
		Preload("Project").
		Preload("Supplier").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Where("id = ? AND status <> ?", id, ds.OrderDeleted).
		First(&order).Error
	if err != nil {
		return nil, notFound(err, "order")
	}
	return &order, nil
}

func (r *Repository) ListOrders(f OrderFilter) ([]ds.Order, error) {
	q := r.db.Preload("Supplier").Where("status <> ?", ds.OrderDeleted)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}
	if f.SupplierID != nil {
		q = q.Where("supplier_id = ?", *f.SupplierID)
	}
	if f.DateFrom != nil {
		q = q.Where("order_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		q = q.Where("order_date < ?", f.DateTo.AddDate(0, 0, 1))
	}

	var orders []ds.Order
	err := q.Order("order_date DESC").Find(&orders).Error
	return orders, err
}

func (r *Repository) draftOrderTx(tx *gorm.DB, id uint) (*ds.Order, error) {
	var order ds.Order
	if err := tx.Where("id = ? AND status <> ?", id, ds.OrderDeleted).First(&order).Error; err != nil {
		return nil, notFound(err, "order")
	}
	if order.Status != ds.OrderDraft {
		return nil, invalidStatus("order", order.Status)
	}
	return &order, nil
}

func (r *Repository) UpdateOrder(id uint, u OrderUpdate) (*ds.Order, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.draftOrderTx(tx, id); err != nil {
			return err
		}
		updates := map[string]interface{}{"updated_at": time.Now()}
		if u.ExpectedDelivery != nil {
			updates["expected_delivery"] = *u.ExpectedDelivery
		}
		if u.Notes != nil {
			updates["notes"] = *u.Notes
		}
		if u.ShippingCost != nil {
			if u.ShippingCost.IsNegative() {
				return validation("shipping cost cannot be negative")
			}
			updates["shipping_cost"] = pricing.Round2(*u.ShippingCost)
		}
		if err := tx.Model(&ds.Order{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return r.recalcOrderTx(tx, id)
	})
	if err != nil {
		return nil, err
	}
	return r.GetOrder(id)
}

func (r *Repository) AddOrderItem(orderID uint, in OrderItemInput) (*ds.Order, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		order, err := r.draftOrderTx(tx, orderID)
		if err != nil {
			return err
		}
		item, err := buildOrderItem(tx, order.ProjectID, in)
		if err != nil {
			return err
		}
		item.OrderID = orderID
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return r.recalcOrderTx(tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return r.GetOrder(orderID)
}

// RemoveOrderItem refuses to leave a draft order empty.
func (r *Repository) RemoveOrderItem(orderID, itemID uint) (*ds.Order, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if _, err := r.draftOrderTx(tx, orderID); err != nil {
			return err
		}
		var count int64
		if err := tx.Model(&ds.OrderItem{}).Where("order_id = ?", orderID).Count(&count).Error; err != nil {
			return err
		}
		result := tx.Where("id = ? AND order_id = ?", itemID, orderID).Delete(&ds.OrderItem{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return missing("order item")
		}
		if count <= 1 {
			return validation("order needs at least one item")
		}
		return r.recalcOrderTx(tx, orderID)
	})
	if err != nil {
		return nil, err
	}
	return r.GetOrder(orderID)
}

// transitionOrder moves an order to next when its status is one of from.
func (r *Repository) transitionOrder(tx *gorm.DB, id uint, next string, stamp string, from ...string) error {
	now := time.Now()
	sql := "UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status IN ?"
	args := []interface{}{next, now, id, from}
	if stamp != "" {
		sql = fmt.Sprintf("UPDATE orders SET status = ?, updated_at = ?, %s = ? WHERE id = ? AND status IN ?", stamp)
		args = []interface{}{next, now, now, id, from}
	}

	result := tx.Exec(sql, args...)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var order ds.Order
		if err := tx.Select("id", "status").Where("id = ? AND status <> ?", id, ds.OrderDeleted).First(&order).Error; err != nil {
			return notFound(err, "order")
		}
		return invalidStatus("order", order.Status)
	}
	return nil
}

// SendOrder marks the order sent to the supplier; its FFE items become ordered.
func (r *Repository) SendOrder(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.transitionOrder(tx, id, ds.OrderSent, "sent_at", ds.OrderDraft); err != nil {
			return err
		}
		return tx.Model(&ds.SpecItem{}).
			Where("id IN (?) AND status IN ?",
				tx.Model(&ds.OrderItem{}).Select("spec_item_id").Where("order_id = ? AND spec_item_id IS NOT NULL", id),
				[]string{ds.SpecItemSpecified, ds.SpecItemQuoted}).
			Update("status", ds.SpecItemOrdered).Error
	})
}

func (r *Repository) ConfirmOrder(id uint) error {
	return r.transitionOrder(r.db, id, ds.OrderConfirmed, "confirmed_at", ds.OrderSent)
}

func (r *Repository) CancelOrder(id uint) error {
	return r.transitionOrder(r.db, id, ds.OrderCancelled, "", ds.OrderDraft, ds.OrderSent, ds.OrderConfirmed)
}

// ReceiveOrderItems books delivered quantities (item id -> quantity received now).
// The order becomes received once every line is complete; fully received FFE
// items are marked delivered.
func (r *Repository) ReceiveOrderItems(id uint, received map[uint]int) (*ds.Order, error) {
	if len(received) == 0 {
		return nil, validation("nothing to receive")
	}

	pending := make(map[uint]int, len(received))
	for k, v := range received {
		pending[k] = v
	}

	err := r.db.Transaction(func(tx *gorm.DB) error {
		// The order row lock serializes receipts so received quantities are read fresh.
		var order ds.Order
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND status <> ?", id, ds.OrderDeleted).First(&order).Error; err != nil {
			return notFound(err, "order")
		}
		if !oneOf(order.Status, ds.OrderSent, ds.OrderConfirmed, ds.OrderPartiallyReceived) {
			return invalidStatus("order", order.Status)
		}
		if err := tx.Where("order_id = ?", id).Order("id").Find(&order.Items).Error; err != nil {
			return err
		}

		complete := true
		var delivered []uint
		for _, item := range order.Items {
			qty, ok := pending[item.ID]
			if ok {
				if qty < 1 || item.ReceivedQuantity+qty > item.Quantity {
					return validation(fmt.Sprintf("cannot receive %d of %q", qty, item.Description))
				}
				item.ReceivedQuantity += qty
				if err := tx.Model(&ds.OrderItem{}).Where("id = ?", item.ID).
					Update("received_quantity", item.ReceivedQuantity).Error; err != nil {
					return err
				}
				delete(pending, item.ID)
				if item.ReceivedQuantity == item.Quantity && item.SpecItemID != nil {
					delivered = append(delivered, *item.SpecItemID)
				}
			}
			if item.ReceivedQuantity < item.Quantity {
				complete = false
			}
		}
		if len(pending) > 0 {
			return validation("item does not belong to this order")
		}

		if len(delivered) > 0 {
			if err := tx.Model(&ds.SpecItem{}).Where("id IN ?", delivered).
				Update("status", ds.SpecItemDelivered).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{"status": ds.OrderPartiallyReceived, "updated_at": time.Now()}
		if complete {
			updates["status"] = ds.OrderReceived
			updates["received_at"] = time.Now()
		}
		return tx.Model(&ds.Order{}).Where("id = ?", id).Updates(updates).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetOrder(id)
}

// DeleteOrder is a logical delete of a draft.
func (r *Repository) DeleteOrder(id uint) error {
	return r.transitionOrder(r.db, id, ds.OrderDeleted, "", ds.OrderDraft)
}

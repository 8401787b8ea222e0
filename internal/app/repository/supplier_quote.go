package repository

import (
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SupplierQuoteItemInput struct {
	RFQItemID uint
	Quantity  int // defaults to the RFQ quantity
	UnitPrice decimal.Decimal
}

type SupplierQuoteInput struct {
	RFQID        uint
	SupplierID   uint
	ValidUntil   *time.Time
	LeadTimeDays int
	Notes        string
	Items        []SupplierQuoteItemInput
}

// ComparisonRow shows, for one RFQ item, the price each supplier offered.
type ComparisonRow struct {
	RFQItemID        uint
	Description      string
	Quantity         int
	Offers           []ComparisonOffer
	BestSupplierID   uint
	BestUnitPrice    decimal.Decimal
	SupplierQuoteIDs []uint
}

type ComparisonOffer struct {
	SupplierQuoteID uint
	SupplierID      uint
	SupplierName    string
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
}

// RecordSupplierQuote stores a supplier's answer to a sent RFQ. A supplier
// answering again replaces its previous, not yet accepted, quote.
func (r *Repository) RecordSupplierQuote(in SupplierQuoteInput) (*ds.SupplierQuote, error) {
	if len(in.Items) == 0 {
		return nil, validation("quote needs at least one priced item")
	}

	var id uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var rfq ds.RFQ
		if err := tx.Preload("Items").First(&rfq, in.RFQID).Error; err != nil {
			return notFound(err, "rfq")
		}
		if rfq.Status != ds.RFQSent {
			return invalidStatus("rfq", rfq.Status)
		}

		var invited int64
		if err := tx.Model(&ds.RFQSupplier{}).Where("rfq_id = ? AND supplier_id = ?", in.RFQID, in.SupplierID).Count(&invited).Error; err != nil {
			return err
		}
		if invited == 0 {
			return validation("supplier was not asked to quote on this rfq")
		}

		items := make(map[uint]ds.RFQItem, len(rfq.Items))
		for _, it := range rfq.Items {
			items[it.ID] = it
		}

		quote := ds.SupplierQuote{
			RFQID:        in.RFQID,
			SupplierID:   in.SupplierID,
			Status:       ds.SupplierQuoteReceived,
			ValidUntil:   in.ValidUntil,
			LeadTimeDays: in.LeadTimeDays,
			Notes:        in.Notes,
			ReceivedAt:   time.Now(),
		}
		lines := make([]pricing.Line, 0, len(in.Items))
		for _, it := range in.Items {
			rfqItem, ok := items[it.RFQItemID]
			if !ok {
				return validation("item does not belong to this rfq")
			}
			if it.UnitPrice.IsNegative() {
				return validation("unit price cannot be negative")
			}
			qty := it.Quantity
			if qty == 0 {
				qty = rfqItem.Quantity
			}
			if qty < 1 {
				return validation("quantity must be at least 1")
			}
			price := pricing.Round2(it.UnitPrice)
			quote.Items = append(quote.Items, ds.SupplierQuoteItem{
				RFQItemID:  it.RFQItemID,
				Quantity:   qty,
				UnitPrice:  price,
				TotalPrice: pricing.LineTotal(qty, price),
			})
			lines = append(lines, pricing.Line{Quantity: qty, UnitPrice: price})
		}
		quote.Total = pricing.Subtotal(lines, decimal.Zero)

		var accepted int64
		if err := tx.Model(&ds.SupplierQuote{}).
			Where("rfq_id = ? AND supplier_id = ? AND status = ?", in.RFQID, in.SupplierID, ds.SupplierQuoteAccepted).
			Count(&accepted).Error; err != nil {
			return err
		}
		if accepted > 0 {
			return invalidStatus("supplier quote", ds.SupplierQuoteAccepted)
		}

		var previous []uint
		if err := tx.Model(&ds.SupplierQuote{}).
			Where("rfq_id = ? AND supplier_id = ?", in.RFQID, in.SupplierID).
			Pluck("id", &previous).Error; err != nil {
			return err
		}
		if len(previous) > 0 {
			if err := tx.Where("supplier_quote_id IN ?", previous).Delete(&ds.SupplierQuoteItem{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&ds.SupplierQuote{}, previous).Error; err != nil {
				return err
			}
		}

		if err := tx.Create(&quote).Error; err != nil {
			return err
		}
		id = quote.ID

		// quoted spec items move forward in their lifecycle
		var specIDs []uint
		for _, it := range quote.Items {
			if s := items[it.RFQItemID].SpecItemID; s != nil {
				specIDs = append(specIDs, *s)
			}
		}
		if len(specIDs) > 0 {
			return tx.Model(&ds.SpecItem{}).
				Where("id IN ? AND status = ?", specIDs, ds.SpecItemSpecified).
				Update("status", ds.SpecItemQuoted).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetSupplierQuote(id)
}

func (r *Repository) GetSupplierQuote(id uint) (*ds.SupplierQuote, error) {
	var q ds.SupplierQuote
	err := r.db.Preload("Supplier").Preload("Items.RFQItem").First(&q, id).Error
	if err != nil {
		return nil, notFound(err, "supplier quote")
	}
	return &q, nil
}

func (r *Repository) ListSupplierQuotes(rfqID uint) ([]ds.SupplierQuote, error) {
	var quotes []ds.SupplierQuote
	err := r.db.Preload("Supplier").Preload("Items").
		Where("rfq_id = ?", rfqID).
		Order("total ASC").
		Find(&quotes).Error
	return quotes, err
}

// CompareQuotes lines up the received quotes per RFQ item and picks the cheapest offer.
func (r *Repository) CompareQuotes(rfqID uint) ([]ComparisonRow, error) {
	rfq, err := r.GetRFQ(rfqID)
	if err != nil {
		return nil, err
	}
	quotes, err := r.ListSupplierQuotes(rfqID)
	if err != nil {
		return nil, err
	}

	rows := make([]ComparisonRow, len(rfq.Items))
	index := make(map[uint]int, len(rfq.Items))
	for i, it := range rfq.Items {
		rows[i] = ComparisonRow{RFQItemID: it.ID, Description: it.Description, Quantity: it.Quantity, Offers: []ComparisonOffer{}}
		index[it.ID] = i
	}

	for _, q := range quotes {
		if q.Status == ds.SupplierQuoteRejected {
			continue
		}
		for _, it := range q.Items {
			i, ok := index[it.RFQItemID]
			if !ok {
				continue
			}
			row := &rows[i]
			row.Offers = append(row.Offers, ComparisonOffer{
				SupplierQuoteID: q.ID,
				SupplierID:      q.SupplierID,
				SupplierName:    q.Supplier.Name,
				UnitPrice:       it.UnitPrice,
				TotalPrice:      it.TotalPrice,
			})
			row.SupplierQuoteIDs = append(row.SupplierQuoteIDs, q.ID)
			if row.BestSupplierID == 0 || it.UnitPrice.LessThan(row.BestUnitPrice) {
				row.BestSupplierID = q.SupplierID
				row.BestUnitPrice = it.UnitPrice
			}
		}
	}
	return rows, nil
}

// AcceptSupplierQuote accepts a quote, copies its prices onto the linked FFE
// items and opens a draft purchase order with the supplier.
func (r *Repository) AcceptSupplierQuote(id, userID uint) (*ds.Order, error) {
	var orderID uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var quote ds.SupplierQuote
		if err := tx.Preload("Items.RFQItem").First(&quote, id).Error; err != nil {
			return notFound(err, "supplier quote")
		}
		if quote.Status != ds.SupplierQuoteReceived {
			return invalidStatus("supplier quote", quote.Status)
		}

		var rfq ds.RFQ
		if err := tx.First(&rfq, quote.RFQID).Error; err != nil {
			return notFound(err, "rfq")
		}
		if rfq.Status == ds.RFQCancelled {
			return invalidStatus("rfq", rfq.Status)
		}

		result := tx.Exec("UPDATE supplier_quotes SET status = ? WHERE id = ? AND status = ?",
			ds.SupplierQuoteAccepted, id, ds.SupplierQuoteReceived)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return invalidStatus("supplier quote", "already processed")
		}

		items := make([]OrderItemInput, 0, len(quote.Items))
		for _, it := range quote.Items {
			items = append(items, OrderItemInput{
				SpecItemID:  it.RFQItem.SpecItemID,
				Description: it.RFQItem.Description,
				Quantity:    it.Quantity,
				UnitPrice:   it.UnitPrice,
			})
			if it.RFQItem.SpecItemID != nil {
				err := tx.Model(&ds.SpecItem{}).Where("id = ?", *it.RFQItem.SpecItemID).
					Updates(map[string]interface{}{
						"cost_price":  it.UnitPrice,
						"supplier_id": quote.SupplierID,
						"updated_at":  time.Now(),
					}).Error
				if err != nil {
					return err
				}
			}
		}

		quoteID := quote.ID
		order, err := r.createOrderTx(tx, OrderInput{
			ProjectID:       rfq.ProjectID,
			SupplierID:      quote.SupplierID,
			SupplierQuoteID: &quoteID,
			Notes:           "From " + rfq.Number,
			Items:           items,
			CreatedByID:     userID,
		})
		if err != nil {
			return err
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetOrder(orderID)
}

func (r *Repository) RejectSupplierQuote(id uint) error {
	result := r.db.Exec("UPDATE supplier_quotes SET status = ? WHERE id = ? AND status = ?",
		ds.SupplierQuoteRejected, id, ds.SupplierQuoteReceived)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		q, err := r.GetSupplierQuote(id)
		if err != nil {
			return err
		}
		return invalidStatus("supplier quote", q.Status)
	}
	return nil
}

package repository

import (
	"strings"
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/pricing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LineInput describes one invoice line. Prices left nil are taken from the
// linked FFE item and the markup rules.
type LineInput struct {
	SpecItemID   *uint
	Description  string
	Quantity     int
	CostPrice    *decimal.Decimal
	Markup       *decimal.Decimal
	SellingPrice *decimal.Decimal
}

type ClientQuoteInput struct {
	ProjectID   uint
	Title       string
	Description string
	DueDate     *time.Time
	ValidUntil  *time.Time
	Charges     decimal.Decimal
	Notes       string
	Lines       []LineInput
	CreatedByID uint
}

// ClientQuoteUpdate changes a draft; nil means keep. Lines replaces all lines.
type ClientQuoteUpdate struct {
	Title       *string
	Description *string
	DueDate     *time.Time
	ValidUntil  *time.Time
	Charges     *decimal.Decimal
	Notes       *string
	Lines       *[]LineInput
}

type ClientQuoteFilter struct {
	Status    string
	ProjectID *uint
}

type PaymentInput struct {
	Amount       decimal.Decimal
	Method       string
	Reference    string
	PaidAt       time.Time
	LineItemID   *uint
	RecordedByID uint
}

func (r *Repository) buildLinesTx(tx *gorm.DB, project *ds.Project, inputs []LineInput) ([]ds.LineItem, error) {
	if len(inputs) == 0 {
		return nil, validation("invoice needs at least one line item")
	}

	projectMarkup := r.ProjectMarkup(project)
	lines := make([]ds.LineItem, 0, len(inputs))
	for i, in := range inputs {
		line := ds.LineItem{
			SpecItemID:  in.SpecItemID,
			Position:    i,
			Description: strings.TrimSpace(in.Description),
			Quantity:    in.Quantity,
			CostPrice:   decimal.Zero,
			Markup:      projectMarkup,
		}
		var rrp *decimal.Decimal
		if in.SpecItemID != nil {
			var spec ds.SpecItem
			err := tx.Where("id = ? AND project_id = ?", *in.SpecItemID, project.ID).First(&spec).Error
			if err != nil {
				return nil, notFound(err, "spec item")
			}
			if line.Description == "" {
				line.Description = spec.Name
			}
			if line.Quantity == 0 {
				line.Quantity = spec.Quantity
			}
			line.CostPrice = spec.CostPrice
			if spec.Markup != nil {
				line.Markup = *spec.Markup
			}
			rrp = spec.RRP
		}
		if in.CostPrice != nil {
			line.CostPrice = pricing.Round2(*in.CostPrice)
		}
		if in.Markup != nil {
			line.Markup = *in.Markup
		}

		if in.SellingPrice != nil {
			line.SellingPrice = pricing.Round2(*in.SellingPrice)
		} else {
			line.SellingPrice = pricing.SellingPrice(line.CostPrice, line.Markup, rrp)
		}

		if line.Description == "" {
			return nil, validation("line item description is required")
		}
		if line.Quantity < 1 {
			return nil, validation("line item quantity must be at least 1")
		}
		if line.SellingPrice.IsNegative() || line.CostPrice.IsNegative() {
			return nil, validation("line item prices cannot be negative")
		}
		line.TotalPrice = pricing.LineTotal(line.Quantity, line.SellingPrice)
		lines = append(lines, line)
	}
	return lines, nil
}

func (r *Repository) applyQuoteTotals(q *ds.ClientQuote) {
	lines := make([]pricing.Line, len(q.LineItems))
	for i, l := range q.LineItems {
		lines[i] = pricing.Line{Quantity: l.Quantity, UnitPrice: l.SellingPrice}
	}
	rates := pricing.Rates{GST: q.GSTRate, QST: q.QSTRate}
	t := pricing.Compute(lines, q.Charges, rates)
	q.Subtotal = t.Subtotal
	q.GSTAmount = t.GSTAmount
	q.QSTAmount = t.QSTAmount
	q.Total = t.Total
}

// CreateClientQuote stores a draft numbered INV-YYYY-NNNN with the current tax rates.
func (r *Repository) CreateClientQuote(in ClientQuoteInput) (*ds.ClientQuote, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, validation("title is required")
	}
	if in.Charges.IsNegative() {
		return nil, validation("charges cannot be negative")
	}

	var id uint
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var project ds.Project
		if err := tx.First(&project, in.ProjectID).Error; err != nil {
			return notFound(err, "project")
		}
		lines, err := r.buildLinesTx(tx, &project, in.Lines)
		if err != nil {
			return err
		}

		now := time.Now()
		number, err := nextNumber(tx, &ds.ClientQuote{}, "INV", now)
		if err != nil {
			return err
		}

		q := ds.ClientQuote{
			Number:      number,
			ProjectID:   in.ProjectID,
			Title:       title,
			Description: in.Description,
			Status:      ds.ClientQuoteDraft,
			IssueDate:   now,
			DueDate:     in.DueDate,
			ValidUntil:  in.ValidUntil,
			Charges:     pricing.Round2(in.Charges),
			GSTRate:     r.rates.GST,
			QSTRate:     r.rates.QST,
			AmountPaid:  decimal.Zero,
			Notes:       in.Notes,
			CreatedByID: in.CreatedByID,
			LineItems:   lines,
		}
		r.applyQuoteTotals(&q)

		if err := tx.Create(&q).Error; err != nil {
			return err
		}
		id = q.ID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetClientQuote(id)
}

func (r *Repository) GetClientQuote(id uint) (*ds.ClientQuote, error) {
	var q ds.ClientQuote
	err := r.db.
		Preload("Project").
		Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position, id") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("paid_at, id") }).
		Where("id = ? AND status <> ?", id, ds.ClientQuoteDeleted).
		First(&q).Error
	if err != nil {
		return nil, notFound(err, "client quote")
	}
	return &q, nil
}

func (r *Repository) ListClientQuotes(f ClientQuoteFilter) ([]ds.ClientQuote, error) {
	q := r.db.Preload("Project").Where("status <> ?", ds.ClientQuoteDeleted)
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.ProjectID != nil {
		q = q.Where("project_id = ?", *f.ProjectID)
	}

	var quotes []ds.ClientQuote
	err := q.Order("issue_date DESC, id DESC").Find(&quotes).Error
	return quotes, err
}

func (r *Repository) UpdateClientQuote(id uint, u ClientQuoteUpdate) (*ds.ClientQuote, error) {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var q ds.ClientQuote
		if err := tx.Preload("Project").Preload("LineItems").
			Where("id = ? AND status <> ?", id, ds.ClientQuoteDeleted).First(&q).Error; err != nil {
			return notFound(err, "client quote")
		}
		if q.Status != ds.ClientQuoteDraft {
			return invalidStatus("client quote", q.Status)
		}

		if u.Title != nil {
			title := strings.TrimSpace(*u.Title)
			if title == "" {
				return validation("title is required")
			}
			q.Title = title
		}
		if u.Description != nil {
			q.Description = *u.Description
		}
		if u.DueDate != nil {
			q.DueDate = u.DueDate
		}
		if u.ValidUntil != nil {
			q.ValidUntil = u.ValidUntil
		}
		if u.Notes != nil {
			q.Notes = *u.Notes
		}
		if u.Charges != nil {
			if u.Charges.IsNegative() {
				return validation("charges cannot be negative")
			}
			q.Charges = pricing.Round2(*u.Charges)
		}
		if u.Lines != nil {
			lines, err := r.buildLinesTx(tx, &q.Project, *u.Lines)
			if err != nil {
				return err
			}
			if err := tx.Where("client_quote_id = ?", id).Delete(&ds.LineItem{}).Error; err != nil {
				return err
			}
			for i := range lines {
				lines[i].ClientQuoteID = id
			}
			if err := tx.Create(&lines).Error; err != nil {
				return err
			}
			q.LineItems = lines
		}
		r.applyQuoteTotals(&q)

		return tx.Model(&ds.ClientQuote{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":       q.Title,
			"description": q.Description,
			"due_date":    q.DueDate,
			"valid_until": q.ValidUntil,
			"notes":       q.Notes,
			"charges":     q.Charges,
			"subtotal":    q.Subtotal,
			"gst_amount":  q.GSTAmount,
			"qst_amount":  q.QSTAmount,
			"total":       q.Total,
			"updated_at":  time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetClientQuote(id)
}

func (r *Repository) transitionClientQuote(tx *gorm.DB, id uint, next, stamp string, from ...string) error {
	now := time.Now()
	updates := map[string]interface{}{"status": next, "updated_at": now}
	if stamp != "" {
		updates[stamp] = now
	}

	result := tx.Model(&ds.ClientQuote{}).Where("id = ? AND status IN ?", id, from).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var q ds.ClientQuote
		if err := tx.Select("id", "status").Where("id = ? AND status <> ?", id, ds.ClientQuoteDeleted).First(&q).Error; err != nil {
			return notFound(err, "client quote")
		}
		return invalidStatus("client quote", q.Status)
	}
	return nil
}

// MarkClientQuoteSent records that the document went to the client; a sent quote may be sent again.
func (r *Repository) MarkClientQuoteSent(id uint) error {
	return r.transitionClientQuote(r.db, id, ds.ClientQuoteSent, "sent_at", ds.ClientQuoteDraft, ds.ClientQuoteSent)
}

// ApproveClientQuote records the client's approval and flags the FFE items on it as approved.
func (r *Repository) ApproveClientQuote(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := r.transitionClientQuote(tx, id, ds.ClientQuoteApproved, "approved_at", ds.ClientQuoteSent); err != nil {
			return err
		}
		return tx.Model(&ds.SpecItem{}).
			Where("id IN (?)", tx.Model(&ds.LineItem{}).Select("spec_item_id").Where("client_quote_id = ? AND spec_item_id IS NOT NULL", id)).
			Updates(map[string]interface{}{"client_approved": true, "updated_at": time.Now()}).Error
	})
}

func (r *Repository) CancelClientQuote(id uint) error {
	return r.transitionClientQuote(r.db, id, ds.ClientQuoteCancelled, "", ds.ClientQuoteDraft, ds.ClientQuoteSent)
}

// DeleteClientQuote is a logical delete of a draft.
func (r *Repository) DeleteClientQuote(id uint) error {
	result := r.db.Exec("UPDATE client_quotes SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		ds.ClientQuoteDeleted, time.Now(), id, ds.ClientQuoteDraft)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return invalidStatus("client quote", "not a draft or missing")
	}
	return nil
}

// lockClientQuote loads a live client quote and holds its row until the
// transaction ends, so concurrent payments see each other's amount_paid.
func lockClientQuote(tx *gorm.DB, id uint) (*ds.ClientQuote, error) {
	var q ds.ClientQuote
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND status <> ?", id, ds.ClientQuoteDeleted).
		First(&q).Error
	if err != nil {
		return nil, notFound(err, "client quote")
	}
	return &q, nil
}

// AddPayment records money received on an approved invoice. Overpaying is
// rejected; the invoice becomes paid once the balance reaches zero.
func (r *Repository) AddPayment(quoteID uint, in PaymentInput) (*ds.Payment, error) {
	if !in.Amount.IsPositive() {
		return nil, validation("payment amount must be positive")
	}
	amount := pricing.Round2(in.Amount)

	var payment ds.Payment
	err := r.db.Transaction(func(tx *gorm.DB) error {
		q, err := lockClientQuote(tx, quoteID)
		if err != nil {
			return err
		}
		if !oneOf(q.Status, ds.ClientQuoteApproved, ds.ClientQuotePartiallyPaid) {
			return invalidStatus("client quote", q.Status)
		}
		if in.LineItemID != nil {
			var count int64
			if err := tx.Model(&ds.LineItem{}).Where("id = ? AND client_quote_id = ?", *in.LineItemID, quoteID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return validation("line item does not belong to this invoice")
			}
		}

		balance := pricing.Balance(q.Total, q.AmountPaid)
		if amount.GreaterThan(balance) {
			return validation("payment exceeds outstanding balance of " + balance.StringFixed(2))
		}

		paidAt := in.PaidAt
		if paidAt.IsZero() {
			paidAt = time.Now()
		}
		payment = ds.Payment{
			ClientQuoteID: quoteID,
			LineItemID:    in.LineItemID,
			Amount:        amount,
			Method:        in.Method,
			Reference:     in.Reference,
			PaidAt:        paidAt,
			RecordedByID:  in.RecordedByID,
		}
		if err := tx.Create(&payment).Error; err != nil {
			return err
		}

		paid := q.AmountPaid.Add(amount)
		status := ds.ClientQuotePartiallyPaid
		if paid.GreaterThanOrEqual(q.Total) {
			status = ds.ClientQuotePaid
		}
		return tx.Model(&ds.ClientQuote{}).Where("id = ?", quoteID).Updates(map[string]interface{}{
			"amount_paid": paid,
			"status":      status,
			"updated_at":  time.Now(),
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

// DeletePayment reverses a payment on a partially paid invoice.
func (r *Repository) DeletePayment(quoteID, paymentID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		q, err := lockClientQuote(tx, quoteID)
		if err != nil {
			return err
		}
		if q.Status != ds.ClientQuotePartiallyPaid {
			return invalidStatus("client quote", q.Status)
		}

		var p ds.Payment
		if err := tx.Where("id = ? AND client_quote_id = ?", paymentID, quoteID).First(&p).Error; err != nil {
			return notFound(err, "payment")
		}
		if err := tx.Delete(&p).Error; err != nil {
			return err
		}

		paid := q.AmountPaid.Sub(p.Amount)
		status := ds.ClientQuotePartiallyPaid
		if !paid.IsPositive() {
			paid = decimal.Zero
			status = ds.ClientQuoteApproved
		}
		return tx.Model(&ds.ClientQuote{}).Where("id = ?", quoteID).Updates(map[string]interface{}{
			"amount_paid": paid,
			"status":      status,
			"updated_at":  time.Now(),
		}).Error
	})
}

package wizard

import (
	"errors"
	"strings"
	"time"

	"renovation/internal/app/pricing"

	"github.com/shopspring/decimal"
)

// Step of the invoice creation wizard.
type Step int

const (
	StepSelectItems Step = iota
	StepDetails
	StepReview
	StepSend
)

func (s Step) String() string {
	switch s {
	case StepSelectItems:
		return "select_items"
	case StepDetails:
		return "details"
	case StepReview:
		return "review"
	case StepSend:
		return "send"
	}
	return "unknown"
}

var (
	ErrWrongStep       = errors.New("operation not allowed at this step")
	ErrNoItemsSelected = errors.New("select at least one item")
	ErrTitleRequired   = errors.New("invoice title is required")
	ErrNoLineItems     = errors.New("invoice needs at least one line item")
	ErrUnknownItem     = errors.New("item is not selectable for invoicing")
	ErrInvalidLine     = errors.New("quantity must be at least 1 and price cannot be negative")
	ErrLineOutOfRange  = errors.New("line item index out of range")
	ErrCannotGoBack    = errors.New("cannot go back from this step")
	ErrFinished        = errors.New("wizard already finished")
	ErrNoFinalizer     = errors.New("no finalizer given for the review step")
	ErrSessionNotFound = errors.New("wizard session not found or expired")
	ErrNegativeCharges = errors.New("charges cannot be negative")
)

// Candidate is an FFE spec item that may be put on an invoice.
type Candidate struct {
	SpecItemID     uint             `json:"spec_item_id"`
	Name           string           `json:"name"`
	Room           string           `json:"room,omitempty"`
	Quantity       int              `json:"quantity"`
	CostPrice      decimal.Decimal  `json:"cost_price"`
	Markup         decimal.Decimal  `json:"markup"`
	RRP            *decimal.Decimal `json:"rrp,omitempty"`
	ClientApproved bool             `json:"client_approved"`
}

// Selectable reports whether the item can be invoiced: it has an RRP or the client approved it.
func (c Candidate) Selectable() bool {
	return (c.RRP != nil && c.RRP.IsPositive()) || c.ClientApproved
}

// FilterSelectable keeps the invoiceable candidates, preserving order.
func FilterSelectable(candidates []Candidate) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Selectable() {
			out = append(out, c)
		}
	}
	return out
}

// Line is one invoice line under review.
type Line struct {
	SpecItemID   *uint           `json:"spec_item_id,omitempty"`
	Description  string          `json:"description"`
	Quantity     int             `json:"quantity"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	Markup       decimal.Decimal `json:"markup"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

func (l *Line) recalc() {
	l.TotalPrice = pricing.LineTotal(l.Quantity, l.SellingPrice)
}

// Details is the invoice metadata entered at step 1.
type Details struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	ValidUntil  *time.Time      `json:"valid_until,omitempty"`
	Charges     decimal.Decimal `json:"charges"`
	Notes       string          `json:"notes"`
}

// FinalizeFunc persists the reviewed invoice and returns its id.
type FinalizeFunc func(s *Session) (uint, error)

// Session is the state of one wizard run.
type Session struct {
	ID            string      `json:"id"`
	ProjectID     uint        `json:"project_id"`
	UserID        uint        `json:"user_id"`
	Step          Step        `json:"step"`
	Preselected   bool        `json:"preselected"`
	Candidates    []Candidate `json:"candidates"`
	SelectedIDs   []uint      `json:"selected_ids"`
	Details       Details     `json:"details"`
	Lines         []Line      `json:"lines"`
	ClientQuoteID uint        `json:"client_quote_id,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// New starts a wizard. Only selectable candidates are kept. With preselected
// items the selection step is skipped and the session opens on the details step.
func New(id string, projectID, userID uint, candidates []Candidate, preselected []uint, now time.Time) (*Session, error) {
	s := &Session{
		ID:          id,
		ProjectID:   projectID,
		UserID:      userID,
		Step:        StepSelectItems,
		Candidates:  FilterSelectable(candidates),
		SelectedIDs: []uint{},
		Lines:       []Line{},
		Details:     Details{Charges: decimal.Zero},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if len(preselected) == 0 {
		return s, nil
	}

	ids, err := s.resolve(preselected)
	if err != nil {
		return nil, err
	}
	s.SelectedIDs = ids
	s.Preselected = true
	s.buildLines()
	s.Step = StepDetails
	return s, nil
}

func (s *Session) candidate(id uint) (Candidate, bool) {
	for _, c := range s.Candidates {
		if c.SpecItemID == id {
			return c, true
		}
	}
	return Candidate{}, false
}

func (s *Session) resolve(ids []uint) ([]uint, error) {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if _, ok := s.candidate(id); !ok {
			return nil, ErrUnknownItem
		}
		seen[id] = true
		out = append(out, id)
	}
	return out, nil
}

// buildLines rebuilds lines from the selection, keeping edits of lines still selected.
func (s *Session) buildLines() {
	existing := make(map[uint]Line, len(s.Lines))
	for _, l := range s.Lines {
		if l.SpecItemID != nil {
			existing[*l.SpecItemID] = l
		}
	}

	lines := make([]Line, 0, len(s.SelectedIDs))
	for _, id := range s.SelectedIDs {
		if l, ok := existing[id]; ok {
			lines = append(lines, l)
			continue
		}
		c, _ := s.candidate(id)
		qty := c.Quantity
		if qty < 1 {
			qty = 1
		}
		itemID := c.SpecItemID
		l := Line{
			SpecItemID:   &itemID,
			Description:  c.Name,
			Quantity:     qty,
			CostPrice:    c.CostPrice,
			Markup:       c.Markup,
			SellingPrice: pricing.SellingPrice(c.CostPrice, c.Markup, c.RRP),
		}
		l.recalc()
		lines = append(lines, l)
	}
	s.Lines = lines
}

// Select replaces the item selection (step 0).
func (s *Session) Select(ids []uint) error {
	if s.Step != StepSelectItems {
		return ErrWrongStep
	}
	resolved, err := s.resolve(ids)
	if err != nil {
		return err
	}
	s.SelectedIDs = resolved
	return nil
}

// SetDetails stores the invoice metadata (step 1).
func (s *Session) SetDetails(d Details) error {
	if s.Step != StepDetails {
		return ErrWrongStep
	}
	if d.Charges.IsNegative() {
		return ErrNegativeCharges
	}
	d.Title = strings.TrimSpace(d.Title)
	s.Details = d
	return nil
}

// UpdateLine changes quantity and/or unit price of a line (step 2).
func (s *Session) UpdateLine(index int, quantity *int, price *decimal.Decimal) error {
	if s.Step != StepReview {
		return ErrWrongStep
	}
	if index < 0 || index >= len(s.Lines) {
		return ErrLineOutOfRange
	}

	l := s.Lines[index]
	if quantity != nil {
		l.Quantity = *quantity
	}
	if price != nil {
		l.SellingPrice = pricing.Round2(*price)
	}
	if l.Quantity < 1 || l.SellingPrice.IsNegative() {
		return ErrInvalidLine
	}
	l.recalc()
	s.Lines[index] = l
	return nil
}

// RemoveLine drops a line under review (step 2).
func (s *Session) RemoveLine(index int) error {
	if s.Step != StepReview {
		return ErrWrongStep
	}
	if index < 0 || index >= len(s.Lines) {
		return ErrLineOutOfRange
	}

	removed := s.Lines[index]
	s.Lines = append(s.Lines[:index], s.Lines[index+1:]...)
	if removed.SpecItemID != nil {
		ids := s.SelectedIDs[:0]
		for _, id := range s.SelectedIDs {
			if id != *removed.SpecItemID {
				ids = append(ids, id)
			}
		}
		s.SelectedIDs = ids
	}
	return nil
}

// CanAdvance reports the guard blocking the next transition, if any.
func (s *Session) CanAdvance() error {
	switch s.Step {
	case StepSelectItems:
		if len(s.SelectedIDs) == 0 {
			return ErrNoItemsSelected
		}
	case StepDetails:
		if strings.TrimSpace(s.Details.Title) == "" {
			return ErrTitleRequired
		}
		if len(s.Lines) == 0 {
			return ErrNoLineItems
		}
	case StepReview:
		if len(s.Lines) == 0 {
			return ErrNoLineItems
		}
		for _, l := range s.Lines {
			if l.Quantity < 1 || l.SellingPrice.IsNegative() {
				return ErrInvalidLine
			}
		}
	case StepSend:
		return ErrFinished
	}
	return nil
}

// Next moves one step forward. Leaving the review step calls finalize to
// persist the invoice; if it fails the session stays on review.
func (s *Session) Next(finalize FinalizeFunc) error {
	if err := s.CanAdvance(); err != nil {
		return err
	}

	switch s.Step {
	case StepSelectItems:
		s.buildLines()
		s.Step = StepDetails
	case StepDetails:
		s.Step = StepReview
	case StepReview:
		if finalize == nil {
			return ErrNoFinalizer
		}
		id, err := finalize(s)
		if err != nil {
			return err
		}
		s.ClientQuoteID = id
		s.Step = StepSend
	}
	return nil
}

// Back moves one step backward. A preselected session has no selection step to return to.
func (s *Session) Back() error {
	switch s.Step {
	case StepDetails:
		if s.Preselected {
			return ErrCannotGoBack
		}
		s.Step = StepSelectItems
	case StepReview:
		s.Step = StepDetails
	case StepSend:
		return ErrFinished
	default:
		return ErrCannotGoBack
	}
	return nil
}

// Totals of the lines under review.
func (s *Session) Totals(rates pricing.Rates) pricing.Totals {
	lines := make([]pricing.Line, len(s.Lines))
	for i, l := range s.Lines {
		lines[i] = pricing.Line{Quantity: l.Quantity, UnitPrice: l.SellingPrice}
	}
	return pricing.Compute(lines, s.Details.Charges, rates)
}

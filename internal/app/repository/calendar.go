package repository

import (
	"sort"
	"time"

	"renovation/internal/app/ds"
)

const (
	EventTaskDue    = "task_due"
	EventDelivery   = "delivery"
	EventInvoiceDue = "invoice_due"
	EventRFQDue     = "rfq_due"
)

// CalendarEvent is one dated item of a project's schedule.
type CalendarEvent struct {
	Date    time.Time
	Kind    string
	Title   string
	RefID   uint
	Status  string
	Overdue bool
}

// Calendar merges task due dates, expected deliveries and invoice due dates
// falling in [from, to), sorted by date.
func (r *Repository) Calendar(projectID uint, from, to time.Time, now time.Time) ([]CalendarEvent, error) {
	if !to.After(from) {
		return nil, validation("calendar window is empty")
	}
	if _, err := r.GetProject(projectID); err != nil {
		return nil, err
	}

	events := []CalendarEvent{}

	var tasks []ds.Task
	if err := r.db.Where("project_id = ? AND due_date >= ? AND due_date < ?", projectID, from, to).Find(&tasks).Error; err != nil {
		return nil, err
	}
	for _, t := range tasks {
		events = append(events, CalendarEvent{
			Date:    *t.DueDate,
			Kind:    EventTaskDue,
			Title:   t.Title,
			RefID:   t.ID,
			Status:  t.Column,
			Overdue: t.Column != ds.TaskDone && t.DueDate.Before(now),
		})
	}

	var orders []ds.Order
	if err := r.db.Preload("Supplier").
		Where("project_id = ? AND expected_delivery >= ? AND expected_delivery < ? AND status NOT IN ?",
			projectID, from, to, []string{ds.OrderDeleted, ds.OrderCancelled}).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, o := range orders {
		events = append(events, CalendarEvent{
			Date:    *o.ExpectedDelivery,
			Kind:    EventDelivery,
			Title:   o.Number + " " + o.Supplier.Name,
			RefID:   o.ID,
			Status:  o.Status,
			Overdue: o.Status != ds.OrderReceived && o.ExpectedDelivery.Before(now),
		})
	}

	var quotes []ds.ClientQuote
	if err := r.db.Where("project_id = ? AND due_date >= ? AND due_date < ? AND status NOT IN ?",
		projectID, from, to, []string{ds.ClientQuoteDeleted, ds.ClientQuoteCancelled}).
		Find(&quotes).Error; err != nil {
		return nil, err
	}
	for _, q := range quotes {
		events = append(events, CalendarEvent{
			Date:    *q.DueDate,
			Kind:    EventInvoiceDue,
			Title:   q.Number + " " + q.Title,
			RefID:   q.ID,
			Status:  q.Status,
			Overdue: q.Status != ds.ClientQuotePaid && q.DueDate.Before(now),
		})
	}

	var rfqs []ds.RFQ
	if err := r.db.Where("project_id = ? AND due_date >= ? AND due_date < ? AND status IN ?",
		projectID, from, to, []string{ds.RFQDraft, ds.RFQSent}).
		Find(&rfqs).Error; err != nil {
		return nil, err
	}
	for _, q := range rfqs {
		events = append(events, CalendarEvent{
			Date:    *q.DueDate,
			Kind:    EventRFQDue,
			Title:   q.Number + " " + q.Title,
			RefID:   q.ID,
			Status:  q.Status,
			Overdue: q.DueDate.Before(now),
		})
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

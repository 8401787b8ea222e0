package repository

import (
	"time"

	"renovation/internal/app/ds"
	"renovation/internal/app/pricing"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	ActiveProjects      int64
	OpenRFQs            int64
	AwaitingQuotes      int64
	OrdersByStatus      map[string]int64
	OpenOrdersValue     decimal.Decimal
	OutstandingInvoices int64
	OutstandingBalance  decimal.Decimal
	OverdueInvoices     int64
	TasksDueThisWeek    int64
	PaidThisMonth       decimal.Decimal
}

// Dashboard aggregates the studio-wide counters. Money is summed in Go so the
// result does not depend on how the driver returns numeric columns.
func (r *Repository) Dashboard(now time.Time) (*DashboardStats, error) {
	stats := &DashboardStats{
		OrdersByStatus:     map[string]int64{},
		OpenOrdersValue:    decimal.Zero,
		OutstandingBalance: decimal.Zero,
		PaidThisMonth:      decimal.Zero,
	}

	if err := r.db.Model(&ds.Project{}).Where("status = ?", ds.ProjectActive).Count(&stats.ActiveProjects).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&ds.RFQ{}).Where("status IN ?", []string{ds.RFQDraft, ds.RFQSent}).Count(&stats.OpenRFQs).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&ds.SupplierQuote{}).Where("status = ?", ds.SupplierQuoteReceived).Count(&stats.AwaitingQuotes).Error; err != nil {
		return nil, err
	}

	var orders []ds.Order
	if err := r.db.Select("id", "status", "total").Where("status <> ?", ds.OrderDeleted).Find(&orders).Error; err != nil {
		return nil, err
	}
	for _, o := range orders {
		stats.OrdersByStatus[o.Status]++
		if oneOf(o.Status, ds.OrderSent, ds.OrderConfirmed, ds.OrderPartiallyReceived) {
			stats.OpenOrdersValue = stats.OpenOrdersValue.Add(o.Total)
		}
	}

	var invoices []ds.ClientQuote
	if err := r.db.Select("id", "status", "total", "amount_paid", "due_date").
		Where("status IN ?", []string{ds.ClientQuoteSent, ds.ClientQuoteApproved, ds.ClientQuotePartiallyPaid}).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	for _, q := range invoices {
		stats.OutstandingInvoices++
		stats.OutstandingBalance = stats.OutstandingBalance.Add(pricing.Balance(q.Total, q.AmountPaid))
		if q.DueDate != nil && q.DueDate.Before(now) {
			stats.OverdueInvoices++
		}
	}

	weekEnd := now.AddDate(0, 0, 7)
	if err := r.db.Model(&ds.Task{}).
		Where("board_column <> ? AND due_date >= ? AND due_date < ?", ds.TaskDone, now, weekEnd).
		Count(&stats.TasksDueThisWeek).Error; err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var payments []ds.Payment
	if err := r.db.Select("id", "amount").Where("paid_at >= ?", monthStart).Find(&payments).Error; err != nil {
		return nil, err
	}
	for _, p := range payments {
		stats.PaidThisMonth = stats.PaidThisMonth.Add(p.Amount)
	}

	return stats, nil
}

// ProjectSummary gathers what the project report needs.
type ProjectSummary struct {
	Project  ds.Project
	Items    []PricedSpecItem
	Orders   []ds.Order
	Invoices []ds.ClientQuote
}

func (r *Repository) ProjectSummary(projectID uint) (*ProjectSummary, error) {
	project, err := r.GetProject(projectID)
	if err != nil {
		return nil, err
	}
	items, err := r.ListSpecItems(projectID, SpecItemFilter{})
	if err != nil {
		return nil, err
	}
	orders, err := r.ListOrders(OrderFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}
	invoices, err := r.ListClientQuotes(ClientQuoteFilter{ProjectID: &projectID})
	if err != nil {
		return nil, err
	}
	return &ProjectSummary{Project: *project, Items: items, Orders: orders, Invoices: invoices}, nil
}

package repository

import (
	"testing"
	"time"

	"renovation/internal/app/ds"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendar(t *testing.T) {
	r := newTestRepository(t)
	f := seed(t, r)

	due := day(2026, 5, 10)
	require.NoError(t, r.CreateTask(&ds.Task{ProjectID: f.project.ID, Title: "Paint", DueDate: &due, CreatedByID: f.user.ID}))

	delivery := day(2026, 5, 3)
	_, err := r.CreateOrder(OrderInput{
		ProjectID: f.project.ID, SupplierID: f.supplier.ID, ExpectedDelivery: &delivery,
		Items: []OrderItemInput{{Description: "Tiles", Quantity: 1, UnitPrice: dec("1")}},
	})
	require.NoError(t, err)

	invoiceDue := day(2026, 6, 1)
	in := sampleQuote(f)
	in.DueDate = &invoiceDue
	_, err = r.CreateClientQuote(in)
	require.NoError(t, err)

	events, err := r.Calendar(f.project.ID, day(2026, 5, 1), day(2026, 6, 1), day(2026, 5, 5))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventDelivery, events[0].Kind)
	assert.True(t, events[0].Overdue)
	assert.Equal(t, EventTaskDue, events[1].Kind)
	assert.False(t, events[1].Overdue)

	_, err = r.Calendar(f.project.ID, day(2026, 6, 1), day(2026, 5, 1), time.Now())
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDashboard(t *testing.T) {
	r := newTestRepository(t)
	f := seed(t, r)

	q, err := r.CreateClientQuote(sampleQuote(f))
	require.NoError(t, err)
	require.NoError(t, r.MarkClientQuoteSent(q.ID))
	require.NoError(t, r.ApproveClientQuote(q.ID))
	now := time.Now().UTC()
	_, err = r.AddPayment(q.ID, PaymentInput{Amount: dec("20"), Method: "cash", PaidAt: now})
	require.NoError(t, err)

	_, err = r.CreateOrder(OrderInput{
		ProjectID: f.project.ID, SupplierID: f.supplier.ID,
		Items: []OrderItemInput{{Description: "Tiles", Quantity: 1, UnitPrice: dec("1")}},
	})
	require.NoError(t, err)

	stats, err := r.Dashboard(now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ActiveProjects)
	assert.Equal(t, int64(1), stats.OrdersByStatus[ds.OrderDraft])
	assert.Equal(t, int64(1), stats.OutstandingInvoices)
	assert.Equal(t, "54.73", stats.OutstandingBalance.StringFixed(2))
	assert.Equal(t, "20.00", stats.PaidThisMonth.StringFixed(2))

	summary, err := r.ProjectSummary(f.project.ID)
	require.NoError(t, err)
	assert.Len(t, summary.Orders, 1)
	assert.Len(t, summary.Invoices, 1)
}

func TestProjects(t *testing.T) {
	r := newTestRepository(t)
	f := seed(t, r)

	found, err := r.ListProjects(ProjectFilter{Query: "TREMBLAY"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	markup := dec("40")
	p, err := r.UpdateProject(f.project.ID, ProjectUpdate{DefaultMarkup: &markup})
	require.NoError(t, err)
	assert.Equal(t, "40", r.ProjectMarkup(p).String())

	item := f.specItem(t, r, "Vase", 1, "10", nil)
	priced, err := r.GetSpecItem(item.ID)
	require.NoError(t, err)
	assert.Equal(t, "14.00", priced.SellingPrice.StringFixed(2))

	bad := "demolished"
	_, err = r.UpdateProject(f.project.ID, ProjectUpdate{Status: &bad})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, r.ArchiveProject(f.project.ID))
	found, err = r.ListProjects(ProjectFilter{})
	require.NoError(t, err)
	assert.Empty(t, found)
	assert.ErrorIs(t, r.ArchiveProject(f.project.ID), ErrNotFound)
}

package document

import (
	"context"
	"testing"
	"time"

	"renovation/internal/app/ds"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$74.73", Money(d("74.73")))
	assert.Equal(t, "$1,954.58", Money(d("1954.575")))
	assert.Equal(t, "$1,250,000.00", Money(d("1250000")))
	assert.Equal(t, "-$12.50", Money(d("-12.5")))
	assert.Equal(t, "$0.00", Money(decimal.Zero))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "9.975 %", Percent(d("9.975")))
	assert.Equal(t, "5 %", Percent(d("5.000")))
	assert.Equal(t, "Partially Paid", Status(ds.ClientQuotePartiallyPaid))

	when := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, "March 4, 2026", Date(when))
	assert.Equal(t, "March 4, 2026", Date(&when))
	assert.Equal(t, "-", Date((*time.Time)(nil)))
	assert.Equal(t, "-", Date(time.Time{}))
}

func sampleQuote() *ds.ClientQuote {
	due := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	return &ds.ClientQuote{
		Number:     "INV-2026-0001",
		Title:      "Living room <furnishings>",
		Status:     ds.ClientQuotePartiallyPaid,
		IssueDate:  time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		DueDate:    &due,
		Subtotal:   d("65"),
		GSTRate:    d("5"),
		QSTRate:    d("9.975"),
		GSTAmount:  d("3.25"),
		QSTAmount:  d("6.48"),
		Total:      d("74.73"),
		AmountPaid: d("20"),
		Project:    ds.Project{Name: "Outremont duplex", ClientName: "M. Tremblay"},
		LineItems: []ds.LineItem{
			{Description: "Cushion", Quantity: 1, SellingPrice: d("10"), TotalPrice: d("10")},
			{Description: "Throw", Quantity: 2, SellingPrice: d("20"), TotalPrice: d("40")},
			{Description: "Candle", Quantity: 3, SellingPrice: d("5"), TotalPrice: d("15")},
		},
	}
}

func TestClientQuoteHTML(t *testing.T) {
	b, err := NewBuilder("Studio Lumen")
	require.NoError(t, err)

	html, err := b.ClientQuote(sampleQuote())
	require.NoError(t, err)

	assert.Contains(t, html, "INVOICE")
	assert.Contains(t, html, "INV-2026-0001")
	assert.Contains(t, html, "Living room &lt;furnishings&gt;")
	assert.Contains(t, html, "Due April 1, 2026")
	assert.Contains(t, html, "QST (9.975 %)")
	assert.Contains(t, html, "$74.73")
	assert.Contains(t, html, "Balance due")
	assert.Contains(t, html, "$54.73")
	assert.Contains(t, html, "Partially Paid")

	draft := sampleQuote()
	draft.Status = ds.ClientQuoteDraft
	draft.AmountPaid = decimal.Zero
	html, err = b.ClientQuote(draft)
	require.NoError(t, err)
	assert.Contains(t, html, "QUOTE")
	assert.NotContains(t, html, "Balance due")
}

func TestPurchaseOrderHTML(t *testing.T) {
	b, err := NewBuilder("Studio Lumen")
	require.NoError(t, err)

	html, err := b.PurchaseOrder(&ds.Order{
		Number:       "PO-2026-0003",
		Status:       ds.OrderSent,
		OrderDate:    time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		ShippingCost: d("80"),
		Subtotal:     d("1700"),
		Total:        d("1954.58"),
		Supplier:     ds.Supplier{Name: "Atelier Bois", Email: "sales@atelierbois.test"},
		Project:      ds.Project{Name: "Outremont duplex"},
		Items: []ds.OrderItem{
			{Description: "Oak table", Quantity: 1, UnitPrice: d("1620"), TotalPrice: d("1620")},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "PURCHASE ORDER")
	assert.Contains(t, html, "Atelier Bois")
	assert.Contains(t, html, "Shipping")
	assert.Contains(t, html, "$1,954.58")
}

func TestChromeRendererRejectsEmptyHTML(t *testing.T) {
	r := &ChromeRenderer{timeout: time.Second, allocCtx: context.Background(), allocCancel: func() {}}
	_, err := r.RenderPDF(context.Background(), "  ")
	assert.Error(t, err)
}

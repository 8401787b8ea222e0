package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestSellingPrice(t *testing.T) {
	t.Run("uses RRP when present", func(t *testing.T) {
		rrp := d("249.99")
		assert.Equal(t, "249.99", SellingPrice(d("100"), d("30"), &rrp).StringFixed(2))
	})

	t.Run("falls back to markup without RRP", func(t *testing.T) {
		assert.Equal(t, "130.00", SellingPrice(d("100"), d("30"), nil).StringFixed(2))
	})

	t.Run("zero RRP counts as absent", func(t *testing.T) {
		zero := decimal.Zero
		assert.Equal(t, "112.50", SellingPrice(d("90"), d("25"), &zero).StringFixed(2))
	})

	t.Run("rounds markup result to cents", func(t *testing.T) {
		assert.Equal(t, "11.53", SellingPrice(d("9.99"), d("15.4"), nil).StringFixed(2))
	})
}

func TestLineTotal(t *testing.T) {
	prices := []string{"0.01", "10", "19.99", "1234.56"}
	for _, p := range prices {
		for qty := 0; qty <= 12; qty++ {
			price := d(p)
			want := price
			for i := 1; i < qty; i++ {
				want = want.Add(price)
			}
			if qty == 0 {
				want = decimal.Zero
			}
			assert.True(t, want.Equal(LineTotal(qty, price)), "qty=%d price=%s", qty, p)
		}
	}
}

func TestCompute_SampleInvoice(t *testing.T) {
	lines := []Line{
		{Quantity: 1, UnitPrice: d("10")},
		{Quantity: 2, UnitPrice: d("20")},
		{Quantity: 3, UnitPrice: d("5")},
	}

	totals := Compute(lines, decimal.Zero, DefaultRates)

	assert.Equal(t, "65.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "3.25", totals.GSTAmount.StringFixed(2))
	assert.Equal(t, "6.48", totals.QSTAmount.StringFixed(2))
	assert.Equal(t, "74.73", totals.Total.StringFixed(2))
}

func TestCompute_TotalMatchesRoundedFactor(t *testing.T) {
	factor := d("1.14975")
	for _, sub := range []string{"0", "0.01", "1", "65", "99.99", "1000.10", "12345.67"} {
		totals := Compute([]Line{{Quantity: 1, UnitPrice: d(sub)}}, decimal.Zero, DefaultRates)

		assert.True(t, d(sub).Mul(factor).Round(2).Equal(totals.Total), "subtotal %s", sub)
		sum := totals.Subtotal.Add(totals.GSTAmount).Add(totals.QSTAmount)
		assert.True(t, sum.Equal(totals.Total), "components of %s", sub)
	}
}

func TestCompute_AddsCharges(t *testing.T) {
	totals := Compute([]Line{{Quantity: 2, UnitPrice: d("50")}}, d("25"), Rates{GST: d("5"), QST: decimal.Zero})

	assert.Equal(t, "125.00", totals.Subtotal.StringFixed(2))
	assert.Equal(t, "6.25", totals.GSTAmount.StringFixed(2))
	assert.Equal(t, "131.25", totals.Total.StringFixed(2))
}

func TestMarginAndProfit(t *testing.T) {
	assert.Equal(t, "23.08", Margin(d("130"), d("100")).StringFixed(2))
	assert.True(t, Margin(decimal.Zero, d("10")).IsZero())
	assert.Equal(t, "90.00", Profit(d("130"), d("100"), 3).StringFixed(2))
	assert.Equal(t, "30.00", MarkupFromPrices(d("130"), d("100")).StringFixed(2))
	assert.True(t, MarkupFromPrices(d("130"), decimal.Zero).IsZero())
}

func TestBalance(t *testing.T) {
	assert.Equal(t, "24.73", Balance(d("74.73"), d("50")).StringFixed(2))
	assert.True(t, Balance(d("10"), d("12")).IsZero())
}

package pricing

import "github.com/shopspring/decimal"

var (
	hundred = decimal.NewFromInt(100)

	// DefaultRates are the Quebec sales taxes: federal GST and provincial QST.
	DefaultRates = Rates{
		GST: decimal.NewFromInt(5),
		QST: decimal.RequireFromString("9.975"),
	}
)

// Rates holds tax percentages (5 means 5%).
type Rates struct {
	GST decimal.Decimal
	QST decimal.Decimal
}

// Line is a priced quantity on a quote, invoice or purchase order.
type Line struct {
	Quantity  int
	UnitPrice decimal.Decimal
}

// Totals of a document after charges and taxes.
type Totals struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	GSTAmount decimal.Decimal `json:"gst_amount"`
	QSTAmount decimal.Decimal `json:"qst_amount"`
	Total     decimal.Decimal `json:"total"`
}

// Round2 rounds to cents.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// SellingPrice returns the client-facing unit price.
// A positive RRP wins; otherwise the cost is marked up by markupPercent.
func SellingPrice(cost, markupPercent decimal.Decimal, rrp *decimal.Decimal) decimal.Decimal {
	if rrp != nil && rrp.IsPositive() {
		return Round2(*rrp)
	}
	factor := decimal.NewFromInt(1).Add(markupPercent.Div(hundred))
	return Round2(cost.Mul(factor))
}

// LineTotal is quantity × unit price, no rounding.
func LineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// Margin returns the gross margin percentage of a selling price over its cost.
func Margin(selling, cost decimal.Decimal) decimal.Decimal {
	if selling.IsZero() {
		return decimal.Zero
	}
	return selling.Sub(cost).Div(selling).Mul(hundred).Round(2)
}

// Profit for quantity units sold at selling with the given cost.
func Profit(selling, cost decimal.Decimal, quantity int) decimal.Decimal {
	return LineTotal(quantity, selling.Sub(cost))
}

// MarkupFromPrices recovers the markup percentage that turns cost into selling.
func MarkupFromPrices(selling, cost decimal.Decimal) decimal.Decimal {
	if cost.IsZero() {
		return decimal.Zero
	}
	return selling.Sub(cost).Div(cost).Mul(hundred).Round(2)
}

// Subtotal sums the line totals plus charges.
func Subtotal(lines []Line, charges decimal.Decimal) decimal.Decimal {
	sum := charges
	for _, l := range lines {
		sum = sum.Add(LineTotal(l.Quantity, l.UnitPrice))
	}
	return sum
}

// Compute derives subtotal, taxes and total.
//
// Total is the rounded subtotal × (1 + GST + QST); QST absorbs the rounding
// so that Subtotal + GSTAmount + QSTAmount == Total holds to the cent.
func Compute(lines []Line, charges decimal.Decimal, rates Rates) Totals {
	subtotal := Round2(Subtotal(lines, charges))

	factor := decimal.NewFromInt(1).
		Add(rates.GST.Div(hundred)).
		Add(rates.QST.Div(hundred))

	total := Round2(subtotal.Mul(factor))
	gst := Round2(subtotal.Mul(rates.GST).Div(hundred))
	qst := total.Sub(subtotal).Sub(gst)

	return Totals{
		Subtotal:  subtotal,
		GSTAmount: gst,
		QSTAmount: qst,
		Total:     total,
	}
}

// Balance is what remains to be paid, never negative.
func Balance(total, paid decimal.Decimal) decimal.Decimal {
	b := total.Sub(paid)
	if b.IsNegative() {
		return decimal.Zero
	}
	return b
}

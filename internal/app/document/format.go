package document

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	grouper = message.NewPrinter(language.English)
	titler  = cases.Title(language.English)
)

// FuncMap is shared by the PDF templates and gin's HTML print views.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"money":   Money,
		"percent": Percent,
		"date":    Date,
		"status":  Status,
		"inc":     func(i int) int { return i + 1 },
	}
}

// Money formats an amount as "$1,954.58".
func Money(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	fixed := d.Abs().StringFixed(2)
	whole, cents, _ := strings.Cut(fixed, ".")
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return sign + "$" + fixed
	}
	return sign + "$" + grouper.Sprintf("%d", n) + "." + cents
}

// Percent drops trailing zeros: 5 -> "5 %", 9.975 -> "9.975 %".
func Percent(d decimal.Decimal) string {
	return d.String() + " %"
}

// Date accepts time.Time or *time.Time; nil and zero print as a dash.
func Date(v any) string {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return "-"
		}
		t = *x
	default:
		return "-"
	}
	if t.IsZero() {
		return "-"
	}
	return t.Format("January 2, 2006")
}

// Status turns "partially_paid" into "Partially Paid".
func Status(s string) string {
	return titler.String(strings.ReplaceAll(s, "_", " "))
}

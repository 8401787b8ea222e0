package document

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"renovation/internal/app/ds"
	"renovation/internal/app/pricing"

	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	ClientQuoteTemplate   = "client_quote.html"
	PurchaseOrderTemplate = "purchase_order.html"
)

// Templates parses the print views. gin uses the same set for /print routes.
func Templates() (*template.Template, error) {
	return template.New("document").Funcs(FuncMap()).ParseFS(templateFS, "templates/*.html")
}

// ClientQuoteView is the data of the client quote template.
type ClientQuoteView struct {
	Studio    string
	Quote     *ds.ClientQuote
	Balance   decimal.Decimal
	IsInvoice bool
}

func NewClientQuoteView(studio string, q *ds.ClientQuote) ClientQuoteView {
	return ClientQuoteView{
		Studio:    studio,
		Quote:     q,
		Balance:   pricing.Balance(q.Total, q.AmountPaid),
		IsInvoice: q.Status != ds.ClientQuoteDraft && q.Status != ds.ClientQuoteSent,
	}
}

type PurchaseOrderView struct {
	Studio string
	Order  *ds.Order
}

// Builder renders the print views to HTML.
type Builder struct {
	studio string
	tmpl   *template.Template
}

func NewBuilder(studio string) (*Builder, error) {
	tmpl, err := Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse document templates: %w", err)
	}
	return &Builder{studio: studio, tmpl: tmpl}, nil
}

func (b *Builder) Studio() string {
	return b.studio
}

func (b *Builder) ClientQuote(q *ds.ClientQuote) (string, error) {
	return b.render(ClientQuoteTemplate, NewClientQuoteView(b.studio, q))
}

func (b *Builder) PurchaseOrder(o *ds.Order) (string, error) {
	return b.render(PurchaseOrderTemplate, PurchaseOrderView{Studio: b.studio, Order: o})
}

func (b *Builder) render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	return buf.String(), nil
}

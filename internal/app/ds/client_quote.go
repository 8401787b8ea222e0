package ds

import (
	"time"

	"github.com/shopspring/decimal"
)

// client quote (invoice) statuses
const (
	ClientQuoteDraft         = "draft"
	ClientQuoteSent          = "sent"
	ClientQuoteApproved      = "approved"
	ClientQuotePartiallyPaid = "partially_paid"
	ClientQuotePaid          = "paid"
	ClientQuoteCancelled     = "cancelled"
	ClientQuoteDeleted       = "deleted"
)

// ClientQuote is a quote or invoice issued to the client. Totals are derived
// from the line items and stored for listing.
type ClientQuote struct {
	ID          uint   `gorm:"primaryKey"`
	Number      string `gorm:"type:varchar(20);uniqueIndex;not null"`
	ProjectID   uint   `gorm:"not null;index"`
	Title       string `gorm:"type:varchar(150);not null"`
	Description string `gorm:"type:text"`
	Status      string `gorm:"type:varchar(20);default:'draft';not null;index"`
	IssueDate   time.Time
	DueDate     *time.Time
	ValidUntil  *time.Time
	Charges     decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Subtotal    decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	GSTRate     decimal.Decimal `gorm:"type:decimal(6,3)"`
	QSTRate     decimal.Decimal `gorm:"type:decimal(6,3)"`
	GSTAmount   decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	QSTAmount   decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Total       decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	AmountPaid  decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Notes       string          `gorm:"type:text"`
	SentAt      *time.Time
	ApprovedAt  *time.Time
	CreatedByID uint `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Project   Project    `gorm:"foreignKey:ProjectID"`
	LineItems []LineItem `gorm:"foreignKey:ClientQuoteID;constraint:OnDelete:CASCADE"`
	Payments  []Payment  `gorm:"foreignKey:ClientQuoteID;constraint:OnDelete:CASCADE"`
}

type LineItem struct {
	ID            uint            `gorm:"primaryKey"`
	ClientQuoteID uint            `gorm:"not null;index"`
	SpecItemID    *uint           `gorm:"index"`
	Position      int             `gorm:"type:int;default:0"`
	Description   string          `gorm:"type:varchar(255);not null"`
	Quantity      int             `gorm:"type:int;not null"`
	CostPrice     decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Markup        decimal.Decimal `gorm:"type:decimal(6,2);default:0"`
	SellingPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Payments []Payment `gorm:"foreignKey:LineItemID"`
}

// Payment received against a client quote, optionally earmarked for one line.
type Payment struct {
	ID            uint            `gorm:"primaryKey"`
	ClientQuoteID uint            `gorm:"not null;index"`
	LineItemID    *uint           `gorm:"index"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method        string          `gorm:"type:varchar(20);not null"`
	Reference     string          `gorm:"type:varchar(100)"`
	PaidAt        time.Time       `gorm:"not null"`
	RecordedByID  uint            `gorm:"not null"`
	CreatedAt     time.Time
}

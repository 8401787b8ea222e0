package ds

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RFQDraft     = "draft"
	RFQSent      = "sent"
	RFQClosed    = "closed"
	RFQCancelled = "cancelled"
)

// per-supplier delivery of an RFQ
const (
	DeliveryPending = "pending"
	DeliverySent    = "sent"
	DeliveryFailed  = "failed"
)

const (
	SupplierQuoteReceived = "received"
	SupplierQuoteAccepted = "accepted"
	SupplierQuoteRejected = "rejected"
)

// RFQ is a request for quote sent to one or more suppliers.
type RFQ struct {
	ID          uint   `gorm:"primaryKey"`
	Number      string `gorm:"type:varchar(20);uniqueIndex;not null"`
	ProjectID   uint   `gorm:"not null;index"`
	Title       string `gorm:"type:varchar(150);not null"`
	Notes       string `gorm:"type:text"`
	Status      string `gorm:"type:varchar(20);default:'draft';not null"`
	DueDate     *time.Time
	SentAt      *time.Time
	CreatedByID uint `gorm:"not null"`
	CreatedAt   time.Time

	Project   Project       `gorm:"foreignKey:ProjectID"`
	Items     []RFQItem     `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE"`
	Suppliers []RFQSupplier `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE"`
}

func (RFQ) TableName() string { return "rfqs" }

type RFQItem struct {
	ID          uint   `gorm:"primaryKey"`
	RFQID       uint   `gorm:"column:rfq_id;not null;index"`
	SpecItemID  *uint  `gorm:"index"`
	Description string `gorm:"type:varchar(255);not null"`
	Quantity    int    `gorm:"type:int;not null"`
	Unit        string `gorm:"type:varchar(20)"`
}

func (RFQItem) TableName() string { return "rfq_items" }

type RFQSupplier struct {
	ID             uint   `gorm:"primaryKey"`
	RFQID          uint   `gorm:"column:rfq_id;not null;uniqueIndex:idx_rfq_supplier"`
	SupplierID     uint   `gorm:"not null;uniqueIndex:idx_rfq_supplier"`
	DeliveryStatus string `gorm:"type:varchar(20);default:'pending';not null"`
	DeliveryError  string `gorm:"type:varchar(255)"`
	SentAt         *time.Time

	Supplier Supplier `gorm:"foreignKey:SupplierID"`
}

func (RFQSupplier) TableName() string { return "rfq_suppliers" }

// SupplierQuote is a supplier's priced answer to an RFQ.
type SupplierQuote struct {
	ID           uint   `gorm:"primaryKey"`
	RFQID        uint   `gorm:"column:rfq_id;not null;index"`
	SupplierID   uint   `gorm:"not null;index"`
	Status       string `gorm:"type:varchar(20);default:'received';not null"`
	ValidUntil   *time.Time
	LeadTimeDays int             `gorm:"type:int;default:0"`
	Notes        string          `gorm:"type:text"`
	Total        decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	ReceivedAt   time.Time       `gorm:"not null"`

	Supplier Supplier            `gorm:"foreignKey:SupplierID"`
	Items    []SupplierQuoteItem `gorm:"foreignKey:SupplierQuoteID;constraint:OnDelete:CASCADE"`
}

type SupplierQuoteItem struct {
	ID              uint            `gorm:"primaryKey"`
	SupplierQuoteID uint            `gorm:"not null;index"`
	RFQItemID       uint            `gorm:"column:rfq_item_id;not null"`
	Quantity        int             `gorm:"type:int;not null"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	RFQItem RFQItem `gorm:"foreignKey:RFQItemID"`
}

package ds

import (
	"time"

	"github.com/shopspring/decimal"
)

// purchase order statuses
const (
	OrderDraft             = "draft"
	OrderSent              = "sent"
	OrderConfirmed         = "confirmed"
	OrderPartiallyReceived = "partially_received"
	OrderReceived          = "received"
	OrderCancelled         = "cancelled"
	OrderDeleted           = "deleted"
)

// Order is a purchase order placed with a supplier.
type Order struct {
	ID               uint   `gorm:"primaryKey"`
	Number           string `gorm:"type:varchar(20);uniqueIndex;not null"`
	ProjectID        uint   `gorm:"not null;index"`
	SupplierID       uint   `gorm:"not null;index"`
	SupplierQuoteID  *uint
	Status           string `gorm:"type:varchar(20);default:'draft';not null;index"`
	OrderDate        time.Time
	ExpectedDelivery *time.Time
	SentAt           *time.Time
	ConfirmedAt      *time.Time
	ReceivedAt       *time.Time
	ShippingCost     decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Subtotal         decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	GSTAmount        decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	QSTAmount        decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Total            decimal.Decimal `gorm:"type:decimal(12,2);default:0"`
	Notes            string          `gorm:"type:text"`
	CreatedByID      uint            `gorm:"not null"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Project  Project     `gorm:"foreignKey:ProjectID"`
	Supplier Supplier    `gorm:"foreignKey:SupplierID"`
	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

type OrderItem struct {
	ID               uint            `gorm:"primaryKey"`
	OrderID          uint            `gorm:"not null;index"`
	SpecItemID       *uint           `gorm:"index"`
	Description      string          `gorm:"type:varchar(255);not null"`
	Quantity         int             `gorm:"type:int;not null"`
	ReceivedQuantity int             `gorm:"type:int;default:0;not null"`
	UnitPrice        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

package ds

import (
	"time"

	"github.com/shopspring/decimal"
)

// FFE item lifecycle
const (
	SpecItemSpecified = "specified"
	SpecItemQuoted    = "quoted"
	SpecItemOrdered   = "ordered"
	SpecItemDelivered = "delivered"
	SpecItemInstalled = "installed"
)

// SpecItem is one furniture, fixture or equipment line of a project.
type SpecItem struct {
	ID             uint             `gorm:"primaryKey"`
	ProjectID      uint             `gorm:"not null;index"`
	SupplierID     *uint            `gorm:"index"`
	Name           string           `gorm:"type:varchar(150);not null"`
	Room           string           `gorm:"type:varchar(100);index"`
	Category       string           `gorm:"type:varchar(100)"`
	Description    string           `gorm:"type:text"`
	Quantity       int              `gorm:"type:int;default:1;not null"`
	Unit           string           `gorm:"type:varchar(20);default:'pcs'"`
	CostPrice      decimal.Decimal  `gorm:"type:decimal(12,2);default:0"`
	Markup         *decimal.Decimal `gorm:"type:decimal(6,2)"`
	RRP            *decimal.Decimal `gorm:"type:decimal(12,2)"`
	Status         string           `gorm:"type:varchar(20);default:'specified';not null"`
	ClientApproved bool             `gorm:"type:boolean;default:false;not null"`
	ImageKey       string           `gorm:"type:varchar(255)"`
	LeadTimeDays   int              `gorm:"type:int;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Project  Project   `gorm:"foreignKey:ProjectID"`
	Supplier *Supplier `gorm:"foreignKey:SupplierID"`
}

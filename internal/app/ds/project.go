package ds

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ProjectActive    = "active"
	ProjectOnHold    = "on_hold"
	ProjectCompleted = "completed"
	ProjectArchived  = "archived"
)

type Project struct {
	ID            uint             `gorm:"primaryKey"`
	Name          string           `gorm:"type:varchar(150);not null"`
	ClientName    string           `gorm:"type:varchar(150)"`
	ClientEmail   string           `gorm:"type:varchar(100)"`
	Address       string           `gorm:"type:varchar(255)"`
	Status        string           `gorm:"type:varchar(20);default:'active';not null;index"`
	DefaultMarkup *decimal.Decimal `gorm:"type:decimal(6,2)"` // percent; config default when null
	Budget        decimal.Decimal  `gorm:"type:decimal(12,2);default:0"`
	StartDate     *time.Time
	EndDate       *time.Time
	OwnerID       uint `gorm:"not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Owner User `gorm:"foreignKey:OwnerID"`
}

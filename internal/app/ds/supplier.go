package ds

import "time"

type Supplier struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"type:varchar(150);not null"`
	ContactName string `gorm:"type:varchar(100)"`
	Email       string `gorm:"type:varchar(100)"`
	Phone       string `gorm:"type:varchar(30)"`
	Website     string `gorm:"type:varchar(255)"`
	Address     string `gorm:"type:varchar(255)"`
	Notes       string `gorm:"type:text"`
	IsDeleted   bool   `gorm:"type:boolean;default:false;not null"`
	CreatedAt   time.Time
}

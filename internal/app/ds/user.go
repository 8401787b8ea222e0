package ds

import (
	"time"

	"renovation/internal/app/role"
)

type User struct {
	ID        uint      `gorm:"primaryKey"`
	Login     string    `gorm:"type:varchar(50);unique;not null"`
	Password  string    `gorm:"type:varchar(255);not null"`
	FullName  string    `gorm:"type:varchar(100)"`
	Email     string    `gorm:"type:varchar(100)"`
	Role      role.Role `gorm:"type:int;default:0;not null"`
	CreatedAt time.Time
}

package model

import (
	"time"
)

// Account represents the database model for accounts
type Account struct {
	ID               uint64    `gorm:"primaryKey"`
	Balance          int64     `gorm:"not null"` // Total balance in cents
	Withdrawable     int64     `gorm:"not null"` // Withdrawable portion in cents
	AdCredit         int64     `gorm:"not null"` // Advertiser-credit bucket in cents
	LifetimeEarnings int64     `gorm:"not null"`
	Suspended        bool      `gorm:"not null;default:false"`
	StreakDays       int       `gorm:"not null;default:0"`
	LastStreakDay    time.Time // zero means no streak claim yet
	CreatedAt        time.Time `gorm:"not null"`
	UpdatedAt        time.Time `gorm:"not null"`
}

// TableName specifies the table name for Account
func (Account) TableName() string {
	return "accounts"
}

package model

import (
	"time"
)

// Ad represents the database model for watch-to-earn placements
type Ad struct {
	ID              uint64    `gorm:"primaryKey;autoIncrement"`
	Title           string    `gorm:"not null;size:255"`
	RewardCents     int64     `gorm:"not null"`
	RequiredSeconds int       `gorm:"not null"`
	CooldownSeconds int       `gorm:"not null"`
	Active          bool      `gorm:"not null;default:true;index"`
	CreatedAt       time.Time `gorm:"not null"`
}

// TableName specifies the table name for Ad
func (Ad) TableName() string {
	return "ads"
}

// AdSession represents the database model for ad-view sessions
type AdSession struct {
	ID              string    `gorm:"primaryKey;size:36"`
	AccountID       uint64    `gorm:"not null;index:idx_ad_sessions_account_ad"`
	AdID            uint64    `gorm:"not null;index:idx_ad_sessions_account_ad"`
	RewardCents     int64     `gorm:"not null"`
	RequiredSeconds int       `gorm:"not null"`
	StartedAt       time.Time `gorm:"not null"`
	RewardedAt      *time.Time

	// Define relationships
	Ad Ad `gorm:"foreignKey:AdID;references:ID"`
}

// TableName specifies the table name for AdSession
func (AdSession) TableName() string {
	return "ad_sessions"
}

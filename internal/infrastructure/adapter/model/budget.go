package model

import (
	"time"
)

// GlobalBudget represents the single durable budget row shared by every
// service instance. ID is always 1.
type GlobalBudget struct {
	ID              uint64    `gorm:"primaryKey"`
	DailyCapCents   int64     `gorm:"not null"`
	WeeklyCapCents  int64     `gorm:"not null"`
	DailyUsedCents  int64     `gorm:"not null;default:0"`
	WeeklyUsedCents int64     `gorm:"not null;default:0"`
	DailyResetDate  time.Time `gorm:"not null"`
	WeekStartDate   time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName specifies the table name for GlobalBudget
func (GlobalBudget) TableName() string {
	return "global_budgets"
}

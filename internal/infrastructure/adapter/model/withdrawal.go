package model

import (
	"time"
)

// Withdrawal represents the database model for withdrawal requests
type Withdrawal struct {
	ID            string    `gorm:"primaryKey;size:36"`
	AccountID     uint64    `gorm:"not null;index"`
	AmountCents   int64     `gorm:"not null"`
	Status        string    `gorm:"not null;size:50;index"`
	Method        string    `gorm:"not null;size:50"`
	Destination   string    `gorm:"not null;size:255"`
	TransactionID uint64    `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null;index"`
	ResolvedAt    *time.Time

	// Define relationships
	Account Account `gorm:"foreignKey:AccountID;references:ID"`
}

// TableName specifies the table name for Withdrawal
func (Withdrawal) TableName() string {
	return "withdrawals"
}

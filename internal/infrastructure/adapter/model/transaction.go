package model

import (
	"time"
)

// Transaction represents the database model for ledger transactions
type Transaction struct {
	ID            uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID     uint64    `gorm:"not null;index"`
	Type          string    `gorm:"not null;size:50"`
	AmountCents   int64     `gorm:"not null"`
	Status        string    `gorm:"not null;size:50"`
	ReferenceID   string    `gorm:"uniqueIndex;not null;size:255"`
	ResultBalance int64     `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null;index"`
	ProcessedAt   *time.Time

	// Define relationships
	Account Account `gorm:"foreignKey:AccountID;references:ID"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}

package model

import (
	"time"
)

// RewardEvent represents the database model for reward idempotency records.
// The composite unique index on (source, natural_key) is the constraint the
// whole payout path leans on.
type RewardEvent struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID   uint64    `gorm:"not null;index:idx_reward_events_account_source"`
	Source      string    `gorm:"not null;size:50;uniqueIndex:idx_reward_events_source_key;index:idx_reward_events_account_source"`
	NaturalKey  string    `gorm:"not null;size:255;uniqueIndex:idx_reward_events_source_key"`
	AmountCents int64     `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;index"`
}

// TableName specifies the table name for RewardEvent
func (RewardEvent) TableName() string {
	return "reward_events"
}

package model

import (
	"time"
)

// Subscription represents the database model for referred subscriptions
type Subscription struct {
	ID                uint64    `gorm:"primaryKey;autoIncrement"`
	AccountID         uint64    `gorm:"not null;index"`
	Tier              string    `gorm:"not null;size:50"`
	MonthlyPriceCents int64     `gorm:"not null"`
	Status            string    `gorm:"not null;size:50;index:idx_subscriptions_status_billing"`
	NextBillingDate   time.Time `gorm:"not null;index:idx_subscriptions_status_billing"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName specifies the table name for Subscription
func (Subscription) TableName() string {
	return "subscriptions"
}

// ReferralCommission represents the database model for referral commissions.
// The unique index on (referrer_id, subscription_id) keeps one commission per
// referred subscription.
type ReferralCommission struct {
	ID                 uint64    `gorm:"primaryKey;autoIncrement"`
	ReferrerID         uint64    `gorm:"not null;uniqueIndex:idx_commissions_referrer_sub;index"`
	ReferredID         uint64    `gorm:"not null"`
	SubscriptionID     uint64    `gorm:"not null;uniqueIndex:idx_commissions_referrer_sub;index"`
	Tier               string    `gorm:"not null;size:50"`
	MonthlyAmountCents int64     `gorm:"not null"`
	Status             string    `gorm:"not null;size:50;index"`
	LastPaidCycle      *time.Time
	CreatedAt          time.Time `gorm:"not null"`
}

// TableName specifies the table name for ReferralCommission
func (ReferralCommission) TableName() string {
	return "referral_commissions"
}

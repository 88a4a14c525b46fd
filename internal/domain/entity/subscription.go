package entity

import (
	"fmt"
	"time"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
)

// SubscriptionStatus is the subscription lifecycle state.
type SubscriptionStatus string

// Subscription statuses
const (
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// Subscription drives the referral commission engine. Billing itself is
// external; the engine only advances the billing date and pays commissions.
type Subscription struct {
	ID                uint64
	AccountID         uint64
	Tier              string
	MonthlyPriceCents int64
	Status            SubscriptionStatus
	NextBillingDate   time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Active reports whether the subscription still bills.
func (s *Subscription) Active() bool {
	return s.Status == SubscriptionActive
}

// Due reports whether a billing cycle is owed as of now.
func (s *Subscription) Due(now time.Time) bool {
	return s.Active() && !DateUTC(s.NextBillingDate).After(DateUTC(now))
}

// AdvanceBillingDate moves the next billing date forward one month.
func (s *Subscription) AdvanceBillingDate() {
	s.NextBillingDate = s.NextBillingDate.AddDate(0, 1, 0)
}

// CommissionStatus is the referral commission lifecycle state.
type CommissionStatus string

// Commission statuses. A commission is stopped when its subscription is
// cancelled and is then excluded from every future billing run.
const (
	CommissionActive  CommissionStatus = "active"
	CommissionStopped CommissionStatus = "stopped"
)

// ReferralCommission is one (referrer, referred subscription) pair paying a
// fixed monthly amount for as long as the subscription stays active.
type ReferralCommission struct {
	ID                 uint64
	ReferrerID         uint64
	ReferredID         uint64
	SubscriptionID     uint64
	Tier               string
	MonthlyAmountCents int64
	Status             CommissionStatus
	LastPaidCycle      *time.Time // billing date of the most recent paid cycle
	CreatedAt          time.Time
}

// NewReferralCommission creates an active commission at a percentage of the
// subscription's monthly price.
func NewReferralCommission(referrerID uint64, sub *Subscription, ratePercent int) (*ReferralCommission, error) {
	if referrerID == 0 {
		return nil, errs.ErrInvalidAccountID
	}
	if referrerID == sub.AccountID {
		return nil, fmt.Errorf("%w: subscriber cannot refer themselves", errs.ErrInvalidRequest)
	}
	if ratePercent <= 0 || ratePercent > 100 {
		return nil, fmt.Errorf("%w: commission rate must be in (0, 100]", errs.ErrInvalidRequest)
	}
	return &ReferralCommission{
		ReferrerID:         referrerID,
		ReferredID:         sub.AccountID,
		SubscriptionID:     sub.ID,
		Tier:               sub.Tier,
		MonthlyAmountCents: sub.MonthlyPriceCents * int64(ratePercent) / 100,
		Status:             CommissionActive,
	}, nil
}

// Active reports whether the commission still pays.
func (c *ReferralCommission) Active() bool {
	return c.Status == CommissionActive
}

// CycleReferenceID identifies one (commission, billing cycle) payout for
// idempotency. Reprocessing the same due date must find the existing
// transaction and skip.
func (c *ReferralCommission) CycleReferenceID(cycle time.Time) string {
	return fmt.Sprintf("commission:%d:%s", c.ID, DateUTC(cycle).Format("2006-01-02"))
}

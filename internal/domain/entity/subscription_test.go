package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
)

func TestSubscription_Due(t *testing.T) {
	now := time.Date(2025, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("Due on and before the billing date", func(t *testing.T) {
		sub := &Subscription{Status: SubscriptionActive, NextBillingDate: time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)}
		assert.True(t, sub.Due(now))

		sub.NextBillingDate = time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
		assert.True(t, sub.Due(now))
	})

	t.Run("Not due before the billing date", func(t *testing.T) {
		sub := &Subscription{Status: SubscriptionActive, NextBillingDate: time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)}
		assert.False(t, sub.Due(now))
	})

	t.Run("Cancelled subscriptions are never due", func(t *testing.T) {
		sub := &Subscription{Status: SubscriptionCancelled, NextBillingDate: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)}
		assert.False(t, sub.Due(now))
	})
}

func TestNewReferralCommission(t *testing.T) {
	sub := &Subscription{
		ID:                3,
		AccountID:         9,
		Tier:              "premium",
		MonthlyPriceCents: 999,
		Status:            SubscriptionActive,
	}

	t.Run("Commission amount is the rate percentage, floored", func(t *testing.T) {
		commission, err := NewReferralCommission(5, sub, 10)

		require.NoError(t, err)
		// 10% of 999 cents floors to 99
		assert.Equal(t, int64(99), commission.MonthlyAmountCents)
		assert.Equal(t, uint64(5), commission.ReferrerID)
		assert.Equal(t, uint64(9), commission.ReferredID)
		assert.Equal(t, CommissionActive, commission.Status)
		assert.True(t, commission.Active())
	})

	t.Run("Self-referral is rejected", func(t *testing.T) {
		_, err := NewReferralCommission(9, sub, 10)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})

	t.Run("Rate bounds", func(t *testing.T) {
		_, err := NewReferralCommission(5, sub, 0)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)

		_, err = NewReferralCommission(5, sub, 101)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)

		_, err = NewReferralCommission(5, sub, 100)
		assert.NoError(t, err)
	})

	t.Run("Zero referrer is rejected", func(t *testing.T) {
		_, err := NewReferralCommission(0, sub, 10)
		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)
	})
}

func TestReferralCommission_CycleReferenceID(t *testing.T) {
	c := &ReferralCommission{ID: 12}
	cycle := time.Date(2025, 4, 1, 13, 30, 0, 0, time.UTC)

	// the reference is stable for any timestamp within the cycle's date
	assert.Equal(t, "commission:12:2025-04-01", c.CycleReferenceID(cycle))
	assert.Equal(t, c.CycleReferenceID(cycle), c.CycleReferenceID(cycle.Add(5*time.Hour)))
}

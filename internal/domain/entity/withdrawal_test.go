package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
)

func TestNewWithdrawal(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	t.Run("Valid withdrawal starts pending", func(t *testing.T) {
		w, err := NewWithdrawal("w-1", 7, 500, 100, "paypal", "user@example.com", mockTime)

		require.NoError(t, err)
		assert.Equal(t, WithdrawalPending, w.Status)
		assert.True(t, w.Pending())
		assert.Equal(t, "withdrawal:w-1", w.ReferenceID())
		assert.Nil(t, w.ResolvedAt)
	})

	t.Run("Below minimum is rejected", func(t *testing.T) {
		_, err := NewWithdrawal("w-1", 7, 99, 100, "paypal", "user@example.com", mockTime)
		assert.ErrorIs(t, err, errs.ErrBelowMinimum)
	})

	t.Run("Exactly the minimum is accepted", func(t *testing.T) {
		_, err := NewWithdrawal("w-1", 7, 100, 100, "paypal", "user@example.com", mockTime)
		assert.NoError(t, err)
	})

	t.Run("Rejections", func(t *testing.T) {
		_, err := NewWithdrawal("w-1", 0, 500, 100, "paypal", "dest", mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)

		_, err = NewWithdrawal("w-1", 7, 0, 100, "paypal", "dest", mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)

		_, err = NewWithdrawal("w-1", 7, 500, 100, "", "dest", mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)

		_, err = NewWithdrawal("w-1", 7, 500, 100, "paypal", "", mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
	})
}

func TestWithdrawal_Transitions(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	newPending := func() *Withdrawal {
		w, err := NewWithdrawal("w-1", 7, 500, 100, "paypal", "dest", mockTime)
		require.NoError(t, err)
		return w
	}

	t.Run("Reject is terminal", func(t *testing.T) {
		w := newPending()

		require.NoError(t, w.MarkRejected(mockTime))
		assert.Equal(t, WithdrawalRejected, w.Status)
		require.NotNil(t, w.ResolvedAt)
		assert.Equal(t, fixedTime, *w.ResolvedAt)

		assert.ErrorIs(t, w.MarkRejected(mockTime), errs.ErrNotEligible)
		assert.ErrorIs(t, w.MarkPaid(mockTime), errs.ErrNotEligible)
	})

	t.Run("Paid is terminal", func(t *testing.T) {
		w := newPending()

		require.NoError(t, w.MarkPaid(mockTime))
		assert.Equal(t, WithdrawalPaid, w.Status)

		assert.ErrorIs(t, w.MarkPaid(mockTime), errs.ErrNotEligible)
		assert.ErrorIs(t, w.MarkRejected(mockTime), errs.ErrNotEligible)
	})
}

package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
)

func TestNewTransaction(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	t.Run("Non-withdrawal rows are created terminal", func(t *testing.T) {
		txn, err := NewTransaction(7, TypeEarning, 100, "reward:spin_wheel:a", mockTime)

		require.NoError(t, err)
		assert.Equal(t, StatusCompleted, txn.Status)
		assert.Equal(t, fixedTime, txn.CreatedAt)
	})

	t.Run("Withdrawal rows start pending", func(t *testing.T) {
		txn, err := NewTransaction(7, TypeWithdrawal, 500, "withdrawal:w-1", mockTime)

		require.NoError(t, err)
		assert.Equal(t, StatusPending, txn.Status)
	})

	t.Run("Rejections", func(t *testing.T) {
		_, err := NewTransaction(0, TypeEarning, 100, "ref", mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)

		_, err = NewTransaction(7, TransactionType("bogus"), 100, "ref", mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)

		_, err = NewTransaction(7, TypeEarning, 0, "ref", mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestTransactionType(t *testing.T) {
	t.Run("Earning-like types", func(t *testing.T) {
		assert.True(t, TypeEarning.EarningLike())
		assert.True(t, TypeReferralCommission.EarningLike())
		assert.False(t, TypeDeposit.EarningLike())
		assert.False(t, TypeManualCredit.EarningLike())
		assert.False(t, TypeAdjustment.EarningLike())
	})

	t.Run("Only withdrawals debit", func(t *testing.T) {
		assert.True(t, TypeWithdrawal.IsDebit())
		assert.False(t, TypeEarning.IsDebit())
		assert.False(t, TypeDeposit.IsDebit())
	})
}

func TestTransaction_SignedAmount(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	credit, err := NewTransaction(7, TypeDeposit, 250, "deposit:x", mockTime)
	require.NoError(t, err)
	assert.Equal(t, int64(250), credit.SignedAmount())

	debit, err := NewTransaction(7, TypeWithdrawal, 250, "withdrawal:w", mockTime)
	require.NoError(t, err)
	assert.Equal(t, int64(-250), debit.SignedAmount())
}

func TestTransaction_StatusTransitions(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	txn, err := NewTransaction(7, TypeWithdrawal, 500, "withdrawal:w-1", mockTime)
	require.NoError(t, err)
	require.Nil(t, txn.ProcessedAt)

	txn.MarkCompleted(mockTime)
	assert.Equal(t, StatusCompleted, txn.Status)
	require.NotNil(t, txn.ProcessedAt)
	assert.Equal(t, fixedTime, *txn.ProcessedAt)
}

package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coremocks "github.com/garmonpay/reward-ledger/mocks/port/core"
)

func fixedTimeProvider(at time.Time) *coremocks.MockTimeProvider {
	mockTime := new(coremocks.MockTimeProvider)
	mockTime.On("Now").Return(at).Maybe()
	return mockTime
}

func TestNewAccount(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	t.Run("Valid account creation", func(t *testing.T) {
		account, err := NewAccount(42, mockTime)

		require.NoError(t, err)
		assert.Equal(t, uint64(42), account.ID)
		assert.Equal(t, int64(0), account.Balance())
		assert.Equal(t, int64(0), account.Withdrawable())
		assert.Equal(t, int64(0), account.LifetimeEarnings())
		assert.Equal(t, fixedTime, account.CreatedAt)
	})

	t.Run("Zero ID should return error", func(t *testing.T) {
		account, err := NewAccount(0, mockTime)

		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)
		assert.Nil(t, account)
	})
}

func TestAccount_ApplyCredit(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	t.Run("Earning raises all three earning buckets", func(t *testing.T) {
		account := RestoreAccount(1, 0, 0, 0, 0, false)

		err := account.ApplyCredit(500, TypeEarning, mockTime)

		require.NoError(t, err)
		assert.Equal(t, int64(500), account.Balance())
		assert.Equal(t, int64(500), account.Withdrawable())
		assert.Equal(t, int64(500), account.LifetimeEarnings())
	})

	t.Run("Referral commission counts as earning", func(t *testing.T) {
		account := RestoreAccount(1, 0, 0, 0, 0, false)

		err := account.ApplyCredit(299, TypeReferralCommission, mockTime)

		require.NoError(t, err)
		assert.Equal(t, int64(299), account.Balance())
		assert.Equal(t, int64(299), account.Withdrawable())
		assert.Equal(t, int64(299), account.LifetimeEarnings())
	})

	t.Run("Deposit raises balance only", func(t *testing.T) {
		account := RestoreAccount(1, 0, 0, 0, 0, false)

		err := account.ApplyCredit(1000, TypeDeposit, mockTime)

		require.NoError(t, err)
		assert.Equal(t, int64(1000), account.Balance())
		assert.Equal(t, int64(0), account.Withdrawable())
		assert.Equal(t, int64(0), account.LifetimeEarnings())
	})

	t.Run("Ad credit moves only the ad-credit bucket", func(t *testing.T) {
		account := RestoreAccount(1, 0, 0, 0, 0, false)

		err := account.ApplyCredit(2500, TypeAdCredit, mockTime)

		require.NoError(t, err)
		assert.Equal(t, int64(0), account.Balance())
		assert.Equal(t, int64(2500), account.AdCredit())
	})

	t.Run("Invalid amount is rejected without mutation", func(t *testing.T) {
		account := RestoreAccount(1, 100, 100, 0, 100, false)

		err := account.ApplyCredit(0, TypeEarning, mockTime)

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
		assert.Equal(t, int64(100), account.Balance())
	})
}

func TestAccount_ApplyDebit(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	t.Run("Withdrawal reduces balance and withdrawable by the same amount", func(t *testing.T) {
		account := RestoreAccount(1, 1000, 800, 0, 1000, false)

		err := account.ApplyDebit(300, TypeWithdrawal, mockTime)

		require.NoError(t, err)
		assert.Equal(t, int64(700), account.Balance())
		assert.Equal(t, int64(500), account.Withdrawable())
		// lifetime earnings never decrease
		assert.Equal(t, int64(1000), account.LifetimeEarnings())
	})

	t.Run("Non-withdrawal debit clamps withdrawable at zero", func(t *testing.T) {
		account := RestoreAccount(1, 1000, 200, 0, 0, false)

		err := account.ApplyDebit(500, TypeAdjustment, mockTime)

		require.NoError(t, err)
		assert.Equal(t, int64(500), account.Balance())
		assert.Equal(t, int64(0), account.Withdrawable())
	})

	t.Run("Withdrawal must be covered by the withdrawable bucket", func(t *testing.T) {
		// deposit-funded balance: spendable but not withdrawable
		account := RestoreAccount(1, 1000, 0, 0, 0, false)

		err := account.ApplyDebit(500, TypeWithdrawal, mockTime)

		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		assert.Equal(t, int64(1000), account.Balance())
		assert.Equal(t, int64(0), account.Withdrawable())
	})

	t.Run("Insufficient funds fails without mutation", func(t *testing.T) {
		account := RestoreAccount(1, 100, 100, 0, 100, false)

		err := account.ApplyDebit(101, TypeWithdrawal, mockTime)

		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		assert.Equal(t, int64(100), account.Balance())
		assert.Equal(t, int64(100), account.Withdrawable())
	})

	t.Run("Exact withdrawable balance can be withdrawn", func(t *testing.T) {
		account := RestoreAccount(1, 100, 100, 0, 100, false)

		err := account.ApplyDebit(100, TypeWithdrawal, mockTime)

		require.NoError(t, err)
		assert.Equal(t, int64(0), account.Balance())
		assert.Equal(t, int64(0), account.Withdrawable())
	})
}

func TestAccount_ApplyRefund(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	t.Run("Refund restores both buckets without earnings", func(t *testing.T) {
		account := RestoreAccount(1, 100, 50, 0, 900, false)

		err := account.ApplyRefund(200, mockTime)

		require.NoError(t, err)
		assert.Equal(t, int64(300), account.Balance())
		assert.Equal(t, int64(250), account.Withdrawable())
		// refunds are not earnings
		assert.Equal(t, int64(900), account.LifetimeEarnings())
	})

	t.Run("Withdraw then refund round-trips the withdrawable bucket", func(t *testing.T) {
		// 1000 deposited, 600 earned: only the earned part is withdrawable
		account := RestoreAccount(1, 1600, 600, 0, 600, false)

		require.NoError(t, account.ApplyDebit(400, TypeWithdrawal, mockTime))
		require.NoError(t, account.ApplyRefund(400, mockTime))

		assert.Equal(t, int64(1600), account.Balance())
		// the refund must not mark the deposited part withdrawable
		assert.Equal(t, int64(600), account.Withdrawable())
	})
}

func TestAccount_RecordStreakClaim(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2025, 3, d, 9, 30, 0, 0, time.UTC)
	}

	t.Run("First claim starts at one", func(t *testing.T) {
		account := RestoreAccount(1, 0, 0, 0, 0, false)

		assert.Equal(t, 1, account.RecordStreakClaim(day(1)))
		assert.Equal(t, DateUTC(day(1)), account.LastStreakDay)
	})

	t.Run("Consecutive days extend the streak", func(t *testing.T) {
		account := RestoreAccount(1, 0, 0, 0, 0, false)

		account.RecordStreakClaim(day(1))
		account.RecordStreakClaim(day(2))
		assert.Equal(t, 3, account.RecordStreakClaim(day(3)))
	})

	t.Run("A missed day resets to one", func(t *testing.T) {
		account := RestoreAccount(1, 0, 0, 0, 0, false)

		account.RecordStreakClaim(day(1))
		account.RecordStreakClaim(day(2))
		assert.Equal(t, 1, account.RecordStreakClaim(day(4)))
	})

	t.Run("Same-day claim keeps the counter", func(t *testing.T) {
		account := RestoreAccount(1, 0, 0, 0, 0, false)

		account.RecordStreakClaim(day(1))
		account.RecordStreakClaim(day(2))
		assert.Equal(t, 2, account.RecordStreakClaim(day(2)))
	})
}

func TestDateUTC(t *testing.T) {
	// 23:30 in UTC-5 is already the next day in UTC
	loc := time.FixedZone("EST", -5*3600)
	local := time.Date(2025, 3, 1, 23, 30, 0, 0, loc)

	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), DateUTC(local))
}

func TestWeekStartUTC(t *testing.T) {
	// 2025-03-05 is a Wednesday; the week started Sunday 2025-03-02
	wednesday := time.Date(2025, 3, 5, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), WeekStartUTC(wednesday))

	// a Sunday is its own week start
	sunday := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC), WeekStartUTC(sunday))
}

package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coremocks "github.com/garmonpay/reward-ledger/mocks/port/core"
)

func TestRewardSource(t *testing.T) {
	t.Run("Valid sources", func(t *testing.T) {
		for _, s := range []RewardSource{SourceAdView, SourceSpinWheel, SourceMysteryBox, SourceMission, SourceStreak} {
			assert.True(t, s.Valid(), string(s))
		}
		assert.False(t, RewardSource("lottery").Valid())
	})

	t.Run("Only ad views bypass the budget", func(t *testing.T) {
		assert.False(t, SourceAdView.BudgetGated())
		assert.True(t, SourceSpinWheel.BudgetGated())
		assert.True(t, SourceMysteryBox.BudgetGated())
		assert.True(t, SourceMission.BudgetGated())
		assert.True(t, SourceStreak.BudgetGated())
	})
}

func TestNewRewardEvent(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	t.Run("Valid event", func(t *testing.T) {
		event, err := NewRewardEvent(7, SourceSpinWheel, "attempt-1", 25, mockTime)

		require.NoError(t, err)
		assert.Equal(t, "reward:spin_wheel:attempt-1", event.ReferenceID())
		assert.Equal(t, fixedTime, event.CreatedAt)
	})

	t.Run("Zero-cent event is valid", func(t *testing.T) {
		// "no reward" draws are still recorded for idempotency
		event, err := NewRewardEvent(7, SourceSpinWheel, "attempt-2", 0, mockTime)

		require.NoError(t, err)
		assert.Equal(t, int64(0), event.AmountCents)
	})

	t.Run("Rejections", func(t *testing.T) {
		_, err := NewRewardEvent(0, SourceSpinWheel, "k", 10, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)

		_, err = NewRewardEvent(7, RewardSource("bogus"), "k", 10, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)

		_, err = NewRewardEvent(7, SourceSpinWheel, "", 10, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidRequest)

		_, err = NewRewardEvent(7, SourceSpinWheel, "k", -1, mockTime)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestDayKey(t *testing.T) {
	at := time.Date(2025, 3, 5, 18, 45, 0, 0, time.UTC)
	assert.Equal(t, "42:2025-03-05", DayKey(42, at))
}

func TestRewardTable_Draw(t *testing.T) {
	table := RewardTable{
		{Label: "nothing", AmountCents: 0, Weight: 50},
		{Label: "small", AmountCents: 5, Weight: 30},
		{Label: "big", AmountCents: 100, Weight: 20},
	}

	t.Run("Draw respects the weight boundaries", func(t *testing.T) {
		testCases := []struct {
			roll     int
			expected string
		}{
			{0, "nothing"},
			{49, "nothing"},
			{50, "small"},
			{79, "small"},
			{80, "big"},
			{99, "big"},
		}

		for _, tc := range testCases {
			mockRand := new(coremocks.MockRandomSource)
			mockRand.On("Intn", 100).Return(tc.roll)

			outcome, err := table.Draw(mockRand)

			require.NoError(t, err)
			assert.Equal(t, tc.expected, outcome.Label)
		}
	})

	t.Run("Empty table fails validation", func(t *testing.T) {
		mockRand := new(coremocks.MockRandomSource)

		_, err := RewardTable{}.Draw(mockRand)

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
		mockRand.AssertNotCalled(t, "Intn")
	})

	t.Run("Non-positive weight fails validation", func(t *testing.T) {
		bad := RewardTable{{Label: "x", AmountCents: 1, Weight: 0}}
		assert.Error(t, bad.Validate())
	})

	t.Run("Negative amount fails validation", func(t *testing.T) {
		bad := RewardTable{{Label: "x", AmountCents: -1, Weight: 1}}
		assert.Error(t, bad.Validate())
	})
}

func TestStreakRewardCents(t *testing.T) {
	testCases := []struct {
		name     string
		base     int64
		days     int
		maxDays  int
		expected int64
	}{
		{"Day one", 5, 1, 30, 5},
		{"Day seven", 5, 7, 30, 35},
		{"Capped at max days", 5, 45, 30, 150},
		{"Zero days treated as one", 5, 0, 30, 5},
		{"No cap when max is zero", 5, 45, 0, 225},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, StreakRewardCents(tc.base, tc.days, tc.maxDays))
		})
	}
}

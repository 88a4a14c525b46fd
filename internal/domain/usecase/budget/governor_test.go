package budget

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coremocks "github.com/garmonpay/reward-ledger/mocks/port/core"
	persistencemocks "github.com/garmonpay/reward-ledger/mocks/port/persistence"
)

func TestGovernor_CheckAndReserve(t *testing.T) {
	ctx := context.Background()
	fixedTime := time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC) // Wednesday

	freshBudget := func() *entity.GlobalBudget {
		return &entity.GlobalBudget{
			DailyCapCents:   1000,
			WeeklyCapCents:  5000,
			DailyUsedCents:  900,
			WeeklyUsedCents: 900,
			DailyResetDate:  entity.DateUTC(fixedTime),
			WeekStartDate:   entity.WeekStartUTC(fixedTime),
		}
	}

	t.Run("should allow an amount that fits both caps", func(t *testing.T) {
		mockRepo := new(persistencemocks.MockBudgetRepository)
		mockTime := new(coremocks.MockTimeProvider)
		mockLogger := new(coremocks.MockLogger)

		mockTime.On("Now").Return(fixedTime)
		mockRepo.On("Get", ctx).Return(freshBudget(), nil)

		governor := NewGovernor(mockRepo, mockTime, mockLogger)

		decision, err := governor.CheckAndReserve(ctx, 100)

		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		mockRepo.AssertNotCalled(t, "Save")
	})

	t.Run("should deny over the daily cap", func(t *testing.T) {
		mockRepo := new(persistencemocks.MockBudgetRepository)
		mockTime := new(coremocks.MockTimeProvider)
		mockLogger := new(coremocks.MockLogger)

		mockTime.On("Now").Return(fixedTime)
		mockRepo.On("Get", ctx).Return(freshBudget(), nil)
		mockLogger.On("Warn", "Reward denied by budget cap", mock.Anything).Return()

		governor := NewGovernor(mockRepo, mockTime, mockLogger)

		decision, err := governor.CheckAndReserve(ctx, 101)

		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, errs.BudgetCapDaily, decision.Reason)
	})

	t.Run("should deny over the weekly cap with daily room left", func(t *testing.T) {
		mockRepo := new(persistencemocks.MockBudgetRepository)
		mockTime := new(coremocks.MockTimeProvider)
		mockLogger := new(coremocks.MockLogger)

		b := freshBudget()
		b.DailyUsedCents = 0
		b.WeeklyUsedCents = 4950

		mockTime.On("Now").Return(fixedTime)
		mockRepo.On("Get", ctx).Return(b, nil)
		mockLogger.On("Warn", "Reward denied by budget cap", mock.Anything).Return()

		governor := NewGovernor(mockRepo, mockTime, mockLogger)

		decision, err := governor.CheckAndReserve(ctx, 100)

		require.NoError(t, err)
		assert.False(t, decision.Allowed)
		assert.Equal(t, errs.BudgetCapWeekly, decision.Reason)
	})

	t.Run("should reset a stale daily counter and persist it", func(t *testing.T) {
		mockRepo := new(persistencemocks.MockBudgetRepository)
		mockTime := new(coremocks.MockTimeProvider)
		mockLogger := new(coremocks.MockLogger)

		b := freshBudget()
		b.DailyResetDate = entity.DateUTC(fixedTime).AddDate(0, 0, -1) // yesterday's marker

		mockTime.On("Now").Return(fixedTime)
		mockRepo.On("Get", ctx).Return(b, nil)
		mockRepo.On("Save", ctx, b).Return(nil)
		mockLogger.On("Info", "Budget counters reset", mock.Anything).Return()

		governor := NewGovernor(mockRepo, mockTime, mockLogger)

		// yesterday's 900 cents of usage no longer count
		decision, err := governor.CheckAndReserve(ctx, 1000)

		require.NoError(t, err)
		assert.True(t, decision.Allowed)
		assert.Equal(t, int64(0), b.DailyUsedCents)
		mockRepo.AssertExpectations(t)
	})

	t.Run("should reject invalid amounts before hitting the store", func(t *testing.T) {
		mockRepo := new(persistencemocks.MockBudgetRepository)
		mockTime := new(coremocks.MockTimeProvider)
		mockLogger := new(coremocks.MockLogger)

		governor := NewGovernor(mockRepo, mockTime, mockLogger)

		_, err := governor.CheckAndReserve(ctx, 0)

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
		mockRepo.AssertNotCalled(t, "Get")
	})
}

func TestGovernor_Denied(t *testing.T) {
	ctx := context.Background()

	t.Run("should carry the exhausted cap and its numbers", func(t *testing.T) {
		mockRepo := new(persistencemocks.MockBudgetRepository)
		mockTime := new(coremocks.MockTimeProvider)
		mockLogger := new(coremocks.MockLogger)

		mockRepo.On("Get", ctx).Return(&entity.GlobalBudget{
			DailyCapCents:  1000,
			DailyUsedCents: 950,
		}, nil)

		governor := NewGovernor(mockRepo, mockTime, mockLogger)

		err := governor.Denied(ctx, entity.BudgetDecision{Reason: errs.BudgetCapDaily}, 100)

		assert.ErrorIs(t, err, errs.ErrBudgetExhausted)

		var exhausted *errs.BudgetExhaustedError
		require.ErrorAs(t, err, &exhausted)
		assert.Equal(t, errs.BudgetCapDaily, exhausted.Cap)
		assert.Equal(t, int64(950), exhausted.UsedCents)
		assert.Equal(t, int64(1000), exhausted.CapCents)
	})
}

func TestGovernor_UpdateCaps(t *testing.T) {
	ctx := context.Background()

	t.Run("should require the operator flag", func(t *testing.T) {
		mockRepo := new(persistencemocks.MockBudgetRepository)
		mockTime := new(coremocks.MockTimeProvider)
		mockLogger := new(coremocks.MockLogger)

		governor := NewGovernor(mockRepo, mockTime, mockLogger)

		err := governor.UpdateCaps(ctx, entity.Identity{AccountID: 1}, 1000, 5000)

		assert.ErrorIs(t, err, errs.ErrPermissionDenied)
		mockRepo.AssertNotCalled(t, "UpdateCaps")
	})

	t.Run("should reject negative caps", func(t *testing.T) {
		mockRepo := new(persistencemocks.MockBudgetRepository)
		mockTime := new(coremocks.MockTimeProvider)
		mockLogger := new(coremocks.MockLogger)

		governor := NewGovernor(mockRepo, mockTime, mockLogger)

		err := governor.UpdateCaps(ctx, entity.Identity{AccountID: 1, Admin: true}, -1, 5000)

		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})

	t.Run("should persist new caps", func(t *testing.T) {
		mockRepo := new(persistencemocks.MockBudgetRepository)
		mockTime := new(coremocks.MockTimeProvider)
		mockLogger := new(coremocks.MockLogger)

		mockRepo.On("UpdateCaps", ctx, int64(2000), int64(9000)).Return(nil)
		mockLogger.On("Info", "Budget caps updated", mock.Anything).Return()

		governor := NewGovernor(mockRepo, mockTime, mockLogger)

		err := governor.UpdateCaps(ctx, entity.Identity{AccountID: 1, Admin: true}, 2000, 9000)

		require.NoError(t, err)
		mockRepo.AssertExpectations(t)
	})
}

func TestGovernor_Commit(t *testing.T) {
	ctx := context.Background()

	mockRepo := new(persistencemocks.MockBudgetRepository)
	mockTime := new(coremocks.MockTimeProvider)
	mockLogger := new(coremocks.MockLogger)

	mockRepo.On("AddUsage", ctx, int64(100)).Return(nil)
	mockLogger.On("Info", "Budget consumed", mock.Anything).Return()

	governor := NewGovernor(mockRepo, mockTime, mockLogger)

	err := governor.Commit(ctx, entity.SourceSpinWheel, 100, 7)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

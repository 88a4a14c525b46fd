package reward

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
	"github.com/garmonpay/reward-ledger/internal/domain/usecase/budget"
	coremocks "github.com/garmonpay/reward-ledger/mocks/port/core"
	persistencemocks "github.com/garmonpay/reward-ledger/mocks/port/persistence"
)

// issuerFixture wires an Issuer over fresh mocks with a deterministic clock
// and a single-outcome spin table paying 25 cents.
type issuerFixture struct {
	issuer       *Issuer
	uow          *persistencemocks.MockUnitOfWork
	accounts     *persistencemocks.MockAccountRepository
	events       *persistencemocks.MockRewardEventRepository
	ads          *persistencemocks.MockAdRepository
	budgetRepo   *persistencemocks.MockBudgetRepository
	timeProvider *coremocks.MockTimeProvider
	rand         *coremocks.MockRandomSource
	logger       *coremocks.MockLogger
	now          time.Time
}

func newIssuerFixture(t *testing.T) *issuerFixture {
	t.Helper()

	f := &issuerFixture{
		uow:          new(persistencemocks.MockUnitOfWork),
		accounts:     new(persistencemocks.MockAccountRepository),
		events:       new(persistencemocks.MockRewardEventRepository),
		ads:          new(persistencemocks.MockAdRepository),
		budgetRepo:   new(persistencemocks.MockBudgetRepository),
		timeProvider: new(coremocks.MockTimeProvider),
		rand:         new(coremocks.MockRandomSource),
		logger:       new(coremocks.MockLogger),
		now:          time.Date(2025, 3, 5, 12, 0, 0, 0, time.UTC),
	}
	f.timeProvider.On("Now").Return(f.now).Maybe()

	governor := budget.NewGovernor(f.budgetRepo, f.timeProvider, f.logger)
	f.issuer = NewIssuer(
		f.uow,
		f.accounts,
		f.events,
		f.ads,
		governor,
		Tables{
			SpinWheel:  entity.RewardTable{{Label: "fixed", AmountCents: 25, Weight: 1}},
			MysteryBox: entity.RewardTable{{Label: "common", AmountCents: 10, Weight: 1}},
			Mission:    entity.RewardTable{{Label: "mission_complete", AmountCents: 15, Weight: 1}},
		},
		Limits{SpinsPerDay: 10, MysteryBoxesPerDay: 3, MissionsPerDay: 20},
		StreakConfig{BaseCents: 5, MaxDays: 30},
		f.timeProvider,
		f.rand,
		f.logger,
	)
	return f
}

// openBudget returns a budget row with headroom and current reset markers.
func (f *issuerFixture) openBudget() *entity.GlobalBudget {
	return &entity.GlobalBudget{
		DailyCapCents:  100000,
		WeeklyCapCents: 500000,
		DailyResetDate: entity.DateUTC(f.now),
		WeekStartDate:  entity.WeekStartUTC(f.now),
	}
}

func TestIssuer_Spin(t *testing.T) {
	ctx := context.Background()
	caller := entity.Identity{AccountID: 7}

	t.Run("should pay a fresh attempt exactly once", func(t *testing.T) {
		// Arrange
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.events.On("GetByNaturalKey", ctx, entity.SourceSpinWheel, "attempt-1").Return(nil, errs.ErrNotFound)
		f.events.On("CountForAccountSince", ctx, uint64(7), entity.SourceSpinWheel, entity.DateUTC(f.now)).Return(0, nil)
		f.rand.On("Intn", 1).Return(0)
		f.budgetRepo.On("Get", ctx).Return(f.openBudget(), nil)
		f.budgetRepo.On("AddUsage", ctx, int64(25)).Return(nil)

		f.uow.On("Begin", ctx).Return(ctx, nil)
		f.uow.On("GetRewardEventRepository", ctx).Return(f.events)
		f.uow.On("GetAccountRepository", ctx).Return(f.accounts)
		f.uow.On("Commit", ctx).Return(nil)

		f.events.On("Create", ctx, mock.MatchedBy(func(e *entity.RewardEvent) bool {
			return e.Source == entity.SourceSpinWheel && e.NaturalKey == "attempt-1" && e.AmountCents == 25
		})).Return(nil)
		f.accounts.On("ApplyCredit", ctx, persistence.BalanceChange{
			AccountID:   7,
			AmountCents: 25,
			Type:        entity.TypeEarning,
			ReferenceID: "reward:spin_wheel:attempt-1",
		}).Return(&entity.Transaction{ID: 1, AccountID: 7, AmountCents: 25, ResultBalance: 25}, nil)

		f.logger.On("Info", "Budget consumed", mock.Anything).Return()
		f.logger.On("Info", "Reward issued", mock.Anything).Return()

		// Act
		outcome, err := f.issuer.Spin(ctx, caller, "attempt-1")

		// Assert
		require.NoError(t, err)
		assert.False(t, outcome.Duplicate)
		assert.Equal(t, int64(25), outcome.AmountCents)
		assert.Equal(t, "fixed", outcome.Label)
		f.events.AssertExpectations(t)
		f.accounts.AssertExpectations(t)
		f.budgetRepo.AssertExpectations(t)
	})

	t.Run("should replay a resolved attempt without paying again", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 25, 25, 0, 25, false)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.events.On("GetByNaturalKey", ctx, entity.SourceSpinWheel, "attempt-1").Return(&entity.RewardEvent{
			ID:          11,
			AccountID:   7,
			Source:      entity.SourceSpinWheel,
			NaturalKey:  "attempt-1",
			AmountCents: 25,
		}, nil)
		f.logger.On("Debug", "Replaying resolved reward event", mock.Anything).Return()

		outcome, err := f.issuer.Spin(ctx, caller, "attempt-1")

		require.NoError(t, err)
		assert.True(t, outcome.Duplicate)
		assert.Equal(t, int64(25), outcome.AmountCents)
		f.uow.AssertNotCalled(t, "Begin")
		f.budgetRepo.AssertNotCalled(t, "Get")
	})

	t.Run("should not replay an attempt resolved for another account", func(t *testing.T) {
		// Arrange
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.events.On("GetByNaturalKey", ctx, entity.SourceSpinWheel, "attempt-1").Return(&entity.RewardEvent{
			ID:          11,
			AccountID:   99,
			Source:      entity.SourceSpinWheel,
			NaturalKey:  "attempt-1",
			AmountCents: 25,
		}, nil)

		// Act
		outcome, err := f.issuer.Spin(ctx, caller, "attempt-1")

		// Assert
		assert.ErrorIs(t, err, errs.ErrNotEligible)
		assert.Nil(t, outcome)
		f.uow.AssertNotCalled(t, "Begin")
	})

	t.Run("should deny at the budget cap and write nothing", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		exhausted := f.openBudget()
		exhausted.DailyUsedCents = exhausted.DailyCapCents

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.events.On("GetByNaturalKey", ctx, entity.SourceSpinWheel, "attempt-1").Return(nil, errs.ErrNotFound)
		f.events.On("CountForAccountSince", ctx, uint64(7), entity.SourceSpinWheel, entity.DateUTC(f.now)).Return(0, nil)
		f.rand.On("Intn", 1).Return(0)
		f.budgetRepo.On("Get", ctx).Return(exhausted, nil)
		f.logger.On("Warn", "Reward denied by budget cap", mock.Anything).Return()

		_, err := f.issuer.Spin(ctx, caller, "attempt-1")

		assert.ErrorIs(t, err, errs.ErrBudgetExhausted)

		var exhaustedErr *errs.BudgetExhaustedError
		require.ErrorAs(t, err, &exhaustedErr)
		assert.Equal(t, errs.BudgetCapDaily, exhaustedErr.Cap)

		// a denied attempt leaves no event: the user can retry next period
		f.events.AssertNotCalled(t, "Create")
		f.uow.AssertNotCalled(t, "Begin")
	})

	t.Run("should stop at the daily spin limit", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.events.On("GetByNaturalKey", ctx, entity.SourceSpinWheel, "attempt-11").Return(nil, errs.ErrNotFound)
		f.events.On("CountForAccountSince", ctx, uint64(7), entity.SourceSpinWheel, entity.DateUTC(f.now)).Return(10, nil)

		_, err := f.issuer.Spin(ctx, caller, "attempt-11")

		assert.ErrorIs(t, err, errs.ErrNotEligible)
		f.uow.AssertNotCalled(t, "Begin")
	})

	t.Run("should reject a suspended account before any store access", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, true)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)

		_, err := f.issuer.Spin(ctx, caller, "attempt-1")

		assert.ErrorIs(t, err, errs.ErrAccountSuspended)
		f.events.AssertNotCalled(t, "GetByNaturalKey")
	})

	t.Run("should reject an empty attempt id", func(t *testing.T) {
		f := newIssuerFixture(t)

		_, err := f.issuer.Spin(ctx, caller, "")

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
		f.accounts.AssertNotCalled(t, "GetByID")
	})

	t.Run("should record a zero-cent outcome without a ledger row", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		// replace the spin table with a guaranteed no-reward outcome
		f.issuer.tables.SpinWheel = entity.RewardTable{{Label: "no_reward", AmountCents: 0, Weight: 1}}

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.events.On("GetByNaturalKey", ctx, entity.SourceSpinWheel, "attempt-2").Return(nil, errs.ErrNotFound)
		f.events.On("CountForAccountSince", ctx, uint64(7), entity.SourceSpinWheel, entity.DateUTC(f.now)).Return(0, nil)
		f.rand.On("Intn", 1).Return(0)

		f.uow.On("Begin", ctx).Return(ctx, nil)
		f.uow.On("GetRewardEventRepository", ctx).Return(f.events)
		f.uow.On("Commit", ctx).Return(nil)
		f.events.On("Create", ctx, mock.MatchedBy(func(e *entity.RewardEvent) bool {
			return e.AmountCents == 0 && e.NaturalKey == "attempt-2"
		})).Return(nil)
		f.logger.On("Info", "Reward issued", mock.Anything).Return()

		outcome, err := f.issuer.Spin(ctx, caller, "attempt-2")

		require.NoError(t, err)
		assert.Equal(t, int64(0), outcome.AmountCents)
		// no credit, no budget consumption for a zero draw
		f.accounts.AssertNotCalled(t, "ApplyCredit")
		f.budgetRepo.AssertNotCalled(t, "Get")
		f.events.AssertExpectations(t)
	})

	t.Run("should replay when a concurrent duplicate wins the insert", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.events.On("GetByNaturalKey", ctx, entity.SourceSpinWheel, "attempt-1").Return(nil, errs.ErrNotFound).Once()
		f.events.On("CountForAccountSince", ctx, uint64(7), entity.SourceSpinWheel, entity.DateUTC(f.now)).Return(0, nil)
		f.rand.On("Intn", 1).Return(0)
		f.budgetRepo.On("Get", ctx).Return(f.openBudget(), nil)

		f.uow.On("Begin", ctx).Return(ctx, nil)
		f.uow.On("GetRewardEventRepository", ctx).Return(f.events)
		f.uow.On("Rollback", ctx).Return(nil)
		f.events.On("Create", ctx, mock.Anything).Return(errs.NewAlreadyProcessedError("reward:spin_wheel:attempt-1", 7))
		f.events.On("GetByNaturalKey", ctx, entity.SourceSpinWheel, "attempt-1").Return(&entity.RewardEvent{
			AccountID:   7,
			Source:      entity.SourceSpinWheel,
			NaturalKey:  "attempt-1",
			AmountCents: 25,
		}, nil).Once()
		f.logger.On("Debug", "Replaying resolved reward event", mock.Anything).Return()

		outcome, err := f.issuer.Spin(ctx, caller, "attempt-1")

		require.NoError(t, err)
		assert.True(t, outcome.Duplicate)
		f.accounts.AssertNotCalled(t, "ApplyCredit")
	})
}

func TestIssuer_CompleteMission(t *testing.T) {
	ctx := context.Background()
	caller := entity.Identity{AccountID: 7}

	t.Run("should scope the natural key to account, mission and UTC day", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		wantKey := "7:daily-login:2025-03-05"

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.events.On("GetByNaturalKey", ctx, entity.SourceMission, wantKey).Return(&entity.RewardEvent{
			AccountID:   7,
			Source:      entity.SourceMission,
			NaturalKey:  wantKey,
			AmountCents: 15,
		}, nil)
		f.logger.On("Debug", "Replaying resolved reward event", mock.Anything).Return()

		outcome, err := f.issuer.CompleteMission(ctx, caller, "daily-login")

		require.NoError(t, err)
		assert.True(t, outcome.Duplicate)
		assert.Equal(t, wantKey, outcome.NaturalKey)
	})
}

func TestIssuer_ClaimStreak(t *testing.T) {
	ctx := context.Background()
	caller := entity.Identity{AccountID: 7}

	t.Run("should extend yesterday's streak and persist the counter", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)
		account.StreakDays = 4
		account.LastStreakDay = entity.DateUTC(f.now).AddDate(0, 0, -1)

		wantKey := entity.DayKey(7, f.now)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.events.On("GetByNaturalKey", ctx, entity.SourceStreak, wantKey).Return(nil, errs.ErrNotFound)
		f.budgetRepo.On("Get", ctx).Return(f.openBudget(), nil)
		f.budgetRepo.On("AddUsage", ctx, int64(25)).Return(nil)

		f.uow.On("Begin", ctx).Return(ctx, nil)
		f.uow.On("GetRewardEventRepository", ctx).Return(f.events)
		f.uow.On("GetAccountRepository", ctx).Return(f.accounts)
		f.uow.On("Commit", ctx).Return(nil)

		// day 5 of a 5-cent base streak
		f.events.On("Create", ctx, mock.MatchedBy(func(e *entity.RewardEvent) bool {
			return e.Source == entity.SourceStreak && e.AmountCents == 25
		})).Return(nil)
		f.accounts.On("ApplyCredit", ctx, mock.MatchedBy(func(change persistence.BalanceChange) bool {
			return change.AmountCents == 25 && change.Type == entity.TypeEarning
		})).Return(&entity.Transaction{ID: 1, AccountID: 7, AmountCents: 25}, nil)
		f.accounts.On("UpdateStreak", ctx, account).Return(nil)

		f.logger.On("Info", "Budget consumed", mock.Anything).Return()
		f.logger.On("Info", "Reward issued", mock.Anything).Return()

		outcome, err := f.issuer.ClaimStreak(ctx, caller)

		require.NoError(t, err)
		assert.Equal(t, 5, outcome.StreakDays)
		assert.Equal(t, int64(25), outcome.AmountCents)
		assert.Equal(t, "streak_day_5", outcome.Label)
		f.accounts.AssertExpectations(t)
	})

	t.Run("should replay a second claim on the same day", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 25, 25, 0, 25, false)
		account.StreakDays = 5
		account.LastStreakDay = entity.DateUTC(f.now)

		wantKey := entity.DayKey(7, f.now)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.events.On("GetByNaturalKey", ctx, entity.SourceStreak, wantKey).Return(&entity.RewardEvent{
			AccountID:   7,
			Source:      entity.SourceStreak,
			NaturalKey:  wantKey,
			AmountCents: 25,
		}, nil)
		f.logger.On("Debug", "Replaying resolved reward event", mock.Anything).Return()

		outcome, err := f.issuer.ClaimStreak(ctx, caller)

		require.NoError(t, err)
		assert.True(t, outcome.Duplicate)
		f.accounts.AssertNotCalled(t, "UpdateStreak")
	})
}

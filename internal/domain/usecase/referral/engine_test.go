package referral

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
	coremocks "github.com/garmonpay/reward-ledger/mocks/port/core"
	persistencemocks "github.com/garmonpay/reward-ledger/mocks/port/persistence"
)

type engineFixture struct {
	engine        *Engine
	uow           *persistencemocks.MockUnitOfWork
	subscriptions *persistencemocks.MockSubscriptionRepository
	commissions   *persistencemocks.MockCommissionRepository
	transactions  *persistencemocks.MockTransactionRepository
	accounts      *persistencemocks.MockAccountRepository
	logger        *coremocks.MockLogger
	now           time.Time
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	f := &engineFixture{
		uow:           new(persistencemocks.MockUnitOfWork),
		subscriptions: new(persistencemocks.MockSubscriptionRepository),
		commissions:   new(persistencemocks.MockCommissionRepository),
		transactions:  new(persistencemocks.MockTransactionRepository),
		accounts:      new(persistencemocks.MockAccountRepository),
		logger:        new(coremocks.MockLogger),
		now:           time.Date(2025, 4, 1, 3, 0, 0, 0, time.UTC),
	}
	mockTime := new(coremocks.MockTimeProvider)
	mockTime.On("Now").Return(f.now).Maybe()

	f.engine = NewEngine(f.uow, f.subscriptions, f.commissions, f.transactions, 10, mockTime, f.logger)
	return f
}

func dueSubscription() *entity.Subscription {
	return &entity.Subscription{
		ID:                12,
		AccountID:         30,
		Tier:              "premium",
		MonthlyPriceCents: 999,
		Status:            entity.SubscriptionActive,
		NextBillingDate:   time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
	}
}

func activeCommission() *entity.ReferralCommission {
	return &entity.ReferralCommission{
		ID:                 5,
		ReferrerID:         20,
		ReferredID:         30,
		SubscriptionID:     12,
		Tier:               "premium",
		MonthlyAmountCents: 99,
		Status:             entity.CommissionActive,
	}
}

func TestEngine_ProcessAllDue(t *testing.T) {
	ctx := context.Background()
	cycle := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	nextCycle := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("should pay the referrer for a due cycle and advance the billing date", func(t *testing.T) {
		// Arrange
		f := newEngineFixture(t)
		sub := dueSubscription()
		commission := activeCommission()

		f.subscriptions.On("ListDue", ctx, f.now).Return([]*entity.Subscription{sub}, nil)
		f.subscriptions.On("AdvanceBillingDate", ctx, uint64(12), cycle, nextCycle).Return(nil)
		f.commissions.On("GetActiveBySubscription", ctx, uint64(12)).Return(commission, nil)
		f.transactions.On("ReferenceExists", ctx, "commission:5:2025-04-01").Return(false, nil)

		f.uow.On("Begin", ctx).Return(ctx, nil)
		f.uow.On("GetAccountRepository", ctx).Return(f.accounts)
		f.uow.On("GetCommissionRepository", ctx).Return(f.commissions)
		f.uow.On("Commit", ctx).Return(nil)

		f.accounts.On("ApplyCredit", ctx, persistence.BalanceChange{
			AccountID:   20,
			AmountCents: 99,
			Type:        entity.TypeReferralCommission,
			ReferenceID: "commission:5:2025-04-01",
		}).Return(&entity.Transaction{ID: 100, AccountID: 20, AmountCents: 99}, nil)
		f.commissions.On("RecordPaidCycle", ctx, uint64(5), cycle).Return(nil)

		f.logger.On("Info", "Referral commission paid", mock.Anything).Return()
		f.logger.On("Info", "Billing run finished", mock.Anything).Return()

		// Act
		summary, err := f.engine.ProcessAllDue(ctx)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, 1, summary.SubscriptionsProcessed)
		assert.Equal(t, 1, summary.CommissionsPaid)
		assert.Equal(t, int64(99), summary.TotalCentsPaid)
		assert.Empty(t, summary.Failures)
		f.accounts.AssertExpectations(t)
		f.commissions.AssertExpectations(t)
	})

	t.Run("should skip a cycle that was already paid", func(t *testing.T) {
		f := newEngineFixture(t)
		sub := dueSubscription()

		f.subscriptions.On("ListDue", ctx, f.now).Return([]*entity.Subscription{sub}, nil)
		f.subscriptions.On("AdvanceBillingDate", ctx, uint64(12), cycle, nextCycle).Return(nil)
		f.commissions.On("GetActiveBySubscription", ctx, uint64(12)).Return(activeCommission(), nil)
		f.transactions.On("ReferenceExists", ctx, "commission:5:2025-04-01").Return(true, nil)
		f.logger.On("Info", "Billing run finished", mock.Anything).Return()

		summary, err := f.engine.ProcessAllDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.SubscriptionsProcessed)
		assert.Equal(t, 0, summary.CommissionsPaid)
		f.uow.AssertNotCalled(t, "Begin")
	})

	t.Run("should advance but not pay a subscription nobody referred", func(t *testing.T) {
		f := newEngineFixture(t)
		sub := dueSubscription()

		f.subscriptions.On("ListDue", ctx, f.now).Return([]*entity.Subscription{sub}, nil)
		f.subscriptions.On("AdvanceBillingDate", ctx, uint64(12), cycle, nextCycle).Return(nil)
		f.commissions.On("GetActiveBySubscription", ctx, uint64(12)).
			Return(nil, errs.ErrSubscriptionNotFound)
		f.logger.On("Info", "Billing run finished", mock.Anything).Return()

		summary, err := f.engine.ProcessAllDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.SubscriptionsProcessed)
		assert.Equal(t, 0, summary.CommissionsPaid)
		f.uow.AssertNotCalled(t, "Begin")
	})

	t.Run("should treat a concurrently advanced cycle as a no-op", func(t *testing.T) {
		f := newEngineFixture(t)
		sub := dueSubscription()

		f.subscriptions.On("ListDue", ctx, f.now).Return([]*entity.Subscription{sub}, nil)
		f.subscriptions.On("AdvanceBillingDate", ctx, uint64(12), cycle, nextCycle).
			Return(errs.NewNotEligibleError(0, "billing date already advanced"))
		f.logger.On("Info", "Billing run finished", mock.Anything).Return()

		summary, err := f.engine.ProcessAllDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.SubscriptionsProcessed)
		assert.Equal(t, 0, summary.CommissionsPaid)
		f.commissions.AssertNotCalled(t, "GetActiveBySubscription")
	})

	t.Run("should skip the payout when the credit loses the insert race", func(t *testing.T) {
		f := newEngineFixture(t)
		sub := dueSubscription()

		f.subscriptions.On("ListDue", ctx, f.now).Return([]*entity.Subscription{sub}, nil)
		f.subscriptions.On("AdvanceBillingDate", ctx, uint64(12), cycle, nextCycle).Return(nil)
		f.commissions.On("GetActiveBySubscription", ctx, uint64(12)).Return(activeCommission(), nil)
		f.transactions.On("ReferenceExists", ctx, "commission:5:2025-04-01").Return(false, nil)

		f.uow.On("Begin", ctx).Return(ctx, nil)
		f.uow.On("GetAccountRepository", ctx).Return(f.accounts)
		f.uow.On("Rollback", ctx).Return(nil)
		f.accounts.On("ApplyCredit", ctx, mock.Anything).
			Return(nil, errs.NewAlreadyProcessedError("commission:5:2025-04-01", 20))
		f.logger.On("Info", "Billing run finished", mock.Anything).Return()

		summary, err := f.engine.ProcessAllDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 0, summary.CommissionsPaid)
		f.commissions.AssertNotCalled(t, "RecordPaidCycle")
	})

	t.Run("should record a failure and continue with the next subscription", func(t *testing.T) {
		f := newEngineFixture(t)
		broken := dueSubscription()
		healthy := dueSubscription()
		healthy.ID = 13

		f.subscriptions.On("ListDue", ctx, f.now).Return([]*entity.Subscription{broken, healthy}, nil)
		f.subscriptions.On("AdvanceBillingDate", ctx, uint64(12), cycle, nextCycle).
			Return(errors.New("connection reset"))
		f.subscriptions.On("AdvanceBillingDate", ctx, uint64(13), cycle, nextCycle).Return(nil)
		f.commissions.On("GetActiveBySubscription", ctx, uint64(13)).
			Return(nil, errs.ErrSubscriptionNotFound)

		f.logger.On("Error", "Billing cycle failed for subscription", mock.Anything).Return()
		f.logger.On("Info", "Billing run finished", mock.Anything).Return()

		summary, err := f.engine.ProcessAllDue(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, summary.SubscriptionsProcessed)
		require.Len(t, summary.Failures, 1)
		assert.Contains(t, summary.Failures[0], "subscription 12")
	})
}

func TestEngine_CancelSubscription(t *testing.T) {
	ctx := context.Background()

	t.Run("should cancel the subscription and stop its commissions together", func(t *testing.T) {
		f := newEngineFixture(t)

		f.subscriptions.On("GetByID", ctx, uint64(12)).Return(dueSubscription(), nil)
		f.uow.On("Begin", ctx).Return(ctx, nil)
		f.uow.On("GetSubscriptionRepository", ctx).Return(f.subscriptions)
		f.uow.On("GetCommissionRepository", ctx).Return(f.commissions)
		f.uow.On("Commit", ctx).Return(nil)

		f.subscriptions.On("SetStatus", ctx, uint64(12), entity.SubscriptionCancelled).Return(nil)
		f.commissions.On("StopBySubscription", ctx, uint64(12)).Return(nil)
		f.logger.On("Info", "Subscription cancelled, commissions stopped", mock.Anything).Return()

		err := f.engine.CancelSubscription(ctx, 12)

		require.NoError(t, err)
		f.subscriptions.AssertExpectations(t)
		f.commissions.AssertExpectations(t)
	})

	t.Run("should fail for an unknown subscription", func(t *testing.T) {
		f := newEngineFixture(t)
		f.subscriptions.On("GetByID", ctx, uint64(99)).Return(nil, errs.ErrSubscriptionNotFound)

		err := f.engine.CancelSubscription(ctx, 99)

		assert.ErrorIs(t, err, errs.ErrSubscriptionNotFound)
		f.uow.AssertNotCalled(t, "Begin")
	})
}

func TestEngine_Enroll(t *testing.T) {
	ctx := context.Background()

	t.Run("should enroll a commission at the configured rate", func(t *testing.T) {
		f := newEngineFixture(t)
		f.subscriptions.On("GetByID", ctx, uint64(12)).Return(dueSubscription(), nil)
		f.commissions.On("Create", ctx, mock.MatchedBy(func(c *entity.ReferralCommission) bool {
			return c.ReferrerID == 20 && c.SubscriptionID == 12 && c.MonthlyAmountCents == 99 && c.Active()
		})).Return(nil)
		f.logger.On("Info", "Referral commission enrolled", mock.Anything).Return()

		commission, err := f.engine.Enroll(ctx, 20, 12)

		require.NoError(t, err)
		assert.Equal(t, int64(99), commission.MonthlyAmountCents)
		f.commissions.AssertExpectations(t)
	})

	t.Run("should refuse a cancelled subscription", func(t *testing.T) {
		f := newEngineFixture(t)
		sub := dueSubscription()
		sub.Status = entity.SubscriptionCancelled
		f.subscriptions.On("GetByID", ctx, uint64(12)).Return(sub, nil)

		_, err := f.engine.Enroll(ctx, 20, 12)

		assert.ErrorIs(t, err, errs.ErrNotEligible)
		f.commissions.AssertNotCalled(t, "Create")
	})
}

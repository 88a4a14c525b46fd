// Package persistence provides testify mocks for the persistence ports.
package persistence

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
)

// MockAccountRepository is a mock implementation of persistence.AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id uint64) (*entity.Account, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *entity.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) ApplyCredit(ctx context.Context, change persistence.BalanceChange) (*entity.Transaction, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockAccountRepository) ApplyDebit(ctx context.Context, change persistence.BalanceChange) (*entity.Transaction, error) {
	args := m.Called(ctx, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockAccountRepository) UpdateStreak(ctx context.Context, account *entity.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of persistence.TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) GetByReferenceID(ctx context.Context, referenceID string) (*entity.Transaction, error) {
	args := m.Called(ctx, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ReferenceExists(ctx context.Context, referenceID string) (bool, error) {
	args := m.Called(ctx, referenceID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, transactionID uint64, status entity.TransactionStatus) error {
	args := m.Called(ctx, transactionID, status)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByAccount(ctx context.Context, accountID uint64, limit int) ([]*entity.Transaction, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Transaction), args.Error(1)
}

// MockRewardEventRepository is a mock implementation of persistence.RewardEventRepository
type MockRewardEventRepository struct {
	mock.Mock
}

func (m *MockRewardEventRepository) Create(ctx context.Context, event *entity.RewardEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockRewardEventRepository) GetByNaturalKey(ctx context.Context, source entity.RewardSource, naturalKey string) (*entity.RewardEvent, error) {
	args := m.Called(ctx, source, naturalKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RewardEvent), args.Error(1)
}

func (m *MockRewardEventRepository) CountForAccountSince(ctx context.Context, accountID uint64, source entity.RewardSource, since time.Time) (int, error) {
	args := m.Called(ctx, accountID, source, since)
	return args.Int(0), args.Error(1)
}

// MockAdRepository is a mock implementation of persistence.AdRepository
type MockAdRepository struct {
	mock.Mock
}

func (m *MockAdRepository) GetAd(ctx context.Context, adID uint64) (*entity.Ad, error) {
	args := m.Called(ctx, adID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Ad), args.Error(1)
}

func (m *MockAdRepository) ListActiveAds(ctx context.Context) ([]*entity.Ad, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Ad), args.Error(1)
}

func (m *MockAdRepository) CreateSession(ctx context.Context, session *entity.AdSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockAdRepository) GetSession(ctx context.Context, sessionID string) (*entity.AdSession, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.AdSession), args.Error(1)
}

func (m *MockAdRepository) MarkSessionRewarded(ctx context.Context, sessionID string, rewardedAt time.Time) error {
	args := m.Called(ctx, sessionID, rewardedAt)
	return args.Error(0)
}

func (m *MockAdRepository) LastSessionStart(ctx context.Context, accountID, adID uint64) (time.Time, error) {
	args := m.Called(ctx, accountID, adID)
	return args.Get(0).(time.Time), args.Error(1)
}

// MockBudgetRepository is a mock implementation of persistence.BudgetRepository
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) Get(ctx context.Context) (*entity.GlobalBudget, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.GlobalBudget), args.Error(1)
}

func (m *MockBudgetRepository) Save(ctx context.Context, budget *entity.GlobalBudget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) AddUsage(ctx context.Context, amountCents int64) error {
	args := m.Called(ctx, amountCents)
	return args.Error(0)
}

func (m *MockBudgetRepository) UpdateCaps(ctx context.Context, dailyCapCents, weeklyCapCents int64) error {
	args := m.Called(ctx, dailyCapCents, weeklyCapCents)
	return args.Error(0)
}

// MockWithdrawalRepository is a mock implementation of persistence.WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, withdrawal *entity.Withdrawal) error {
	args := m.Called(ctx, withdrawal)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByID(ctx context.Context, id string) (*entity.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) Transition(ctx context.Context, id string, to entity.WithdrawalStatus, resolvedAt time.Time) error {
	args := m.Called(ctx, id, to, resolvedAt)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) ListPending(ctx context.Context, limit int) ([]*entity.Withdrawal, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Withdrawal), args.Error(1)
}

// MockSubscriptionRepository is a mock implementation of persistence.SubscriptionRepository
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) GetByID(ctx context.Context, id uint64) (*entity.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) ListDue(ctx context.Context, asOf time.Time) ([]*entity.Subscription, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Subscription), args.Error(1)
}

func (m *MockSubscriptionRepository) AdvanceBillingDate(ctx context.Context, id uint64, from, to time.Time) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) SetStatus(ctx context.Context, id uint64, status entity.SubscriptionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockCommissionRepository is a mock implementation of persistence.CommissionRepository
type MockCommissionRepository struct {
	mock.Mock
}

func (m *MockCommissionRepository) Create(ctx context.Context, commission *entity.ReferralCommission) error {
	args := m.Called(ctx, commission)
	return args.Error(0)
}

func (m *MockCommissionRepository) GetActiveBySubscription(ctx context.Context, subscriptionID uint64) (*entity.ReferralCommission, error) {
	args := m.Called(ctx, subscriptionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ReferralCommission), args.Error(1)
}

func (m *MockCommissionRepository) RecordPaidCycle(ctx context.Context, commissionID uint64, cycle time.Time) error {
	args := m.Called(ctx, commissionID, cycle)
	return args.Error(0)
}

func (m *MockCommissionRepository) StopBySubscription(ctx context.Context, subscriptionID uint64) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

// MockUnitOfWork is a mock implementation of persistence.UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistence.AccountRepository)
}

func (m *MockUnitOfWork) GetTransactionRepository(ctx context.Context) persistence.TransactionRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistence.TransactionRepository)
}

func (m *MockUnitOfWork) GetRewardEventRepository(ctx context.Context) persistence.RewardEventRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistence.RewardEventRepository)
}

func (m *MockUnitOfWork) GetAdRepository(ctx context.Context) persistence.AdRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistence.AdRepository)
}

func (m *MockUnitOfWork) GetWithdrawalRepository(ctx context.Context) persistence.WithdrawalRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistence.WithdrawalRepository)
}

func (m *MockUnitOfWork) GetSubscriptionRepository(ctx context.Context) persistence.SubscriptionRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistence.SubscriptionRepository)
}

func (m *MockUnitOfWork) GetCommissionRepository(ctx context.Context) persistence.CommissionRepository {
	args := m.Called(ctx)
	return args.Get(0).(persistence.CommissionRepository)
}

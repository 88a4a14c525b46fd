package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
	coremocks "github.com/garmonpay/reward-ledger/mocks/port/core"
	persistencemocks "github.com/garmonpay/reward-ledger/mocks/port/persistence"
)

func TestService_Credit(t *testing.T) {
	ctx := context.Background()

	t.Run("should apply a credit and return the ledger row", func(t *testing.T) {
		// Arrange
		mockAccounts := new(persistencemocks.MockAccountRepository)
		mockTransactions := new(persistencemocks.MockTransactionRepository)
		mockLogger := new(coremocks.MockLogger)

		expected := &entity.Transaction{
			ID:            1,
			AccountID:     7,
			Type:          entity.TypeEarning,
			AmountCents:   250,
			ReferenceID:   "reward:spin_wheel:a",
			ResultBalance: 250,
		}
		mockAccounts.On("ApplyCredit", ctx, persistence.BalanceChange{
			AccountID:   7,
			AmountCents: 250,
			Type:        entity.TypeEarning,
			ReferenceID: "reward:spin_wheel:a",
		}).Return(expected, nil)
		mockLogger.On("Info", "Ledger credit applied", mock.Anything).Return()

		service := NewService(mockAccounts, mockTransactions, mockLogger)

		// Act
		txn, err := service.Credit(ctx, 7, 250, entity.TypeEarning, "reward:spin_wheel:a")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, expected, txn)
		mockAccounts.AssertExpectations(t)
	})

	t.Run("should reject a zero account id without touching the store", func(t *testing.T) {
		mockAccounts := new(persistencemocks.MockAccountRepository)
		mockTransactions := new(persistencemocks.MockTransactionRepository)
		mockLogger := new(coremocks.MockLogger)

		service := NewService(mockAccounts, mockTransactions, mockLogger)

		_, err := service.Credit(ctx, 0, 250, entity.TypeEarning, "ref")

		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)
		mockAccounts.AssertNotCalled(t, "ApplyCredit")
	})

	t.Run("should reject an unknown transaction type", func(t *testing.T) {
		mockAccounts := new(persistencemocks.MockAccountRepository)
		mockTransactions := new(persistencemocks.MockTransactionRepository)
		mockLogger := new(coremocks.MockLogger)

		service := NewService(mockAccounts, mockTransactions, mockLogger)

		_, err := service.Credit(ctx, 7, 250, entity.TransactionType("bogus"), "ref")

		assert.ErrorIs(t, err, errs.ErrInvalidRequest)
		mockAccounts.AssertNotCalled(t, "ApplyCredit")
	})

	t.Run("should require a reference id for earning-type rows", func(t *testing.T) {
		mockAccounts := new(persistencemocks.MockAccountRepository)
		mockTransactions := new(persistencemocks.MockTransactionRepository)
		mockLogger := new(coremocks.MockLogger)

		service := NewService(mockAccounts, mockTransactions, mockLogger)

		for _, txType := range []entity.TransactionType{
			entity.TypeEarning, entity.TypeReferralCommission, entity.TypeDeposit,
		} {
			_, err := service.Credit(ctx, 7, 250, txType, "")
			assert.ErrorIs(t, err, errs.ErrInvalidRequest, string(txType))
		}
		mockAccounts.AssertNotCalled(t, "ApplyCredit")
	})

	t.Run("should reject amounts above the single-movement cap", func(t *testing.T) {
		mockAccounts := new(persistencemocks.MockAccountRepository)
		mockTransactions := new(persistencemocks.MockTransactionRepository)
		mockLogger := new(coremocks.MockLogger)

		service := NewService(mockAccounts, mockTransactions, mockLogger)

		_, err := service.Credit(ctx, 7, entity.MaxAmountCents+1, entity.TypeEarning, "ref")

		assert.ErrorIs(t, err, errs.ErrAmountOverflow)
		mockAccounts.AssertNotCalled(t, "ApplyCredit")
	})
}

func TestService_Debit(t *testing.T) {
	ctx := context.Background()

	t.Run("should pass through insufficient funds unchanged", func(t *testing.T) {
		mockAccounts := new(persistencemocks.MockAccountRepository)
		mockTransactions := new(persistencemocks.MockTransactionRepository)
		mockLogger := new(coremocks.MockLogger)

		mockAccounts.On("ApplyDebit", ctx, mock.Anything).
			Return(nil, errs.NewInsufficientFundsError(7, 500, 100))

		service := NewService(mockAccounts, mockTransactions, mockLogger)

		_, err := service.Debit(ctx, 7, 500, entity.TypeWithdrawal, "withdrawal:w-1")

		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		mockAccounts.AssertExpectations(t)
	})

	t.Run("should apply a valid debit", func(t *testing.T) {
		mockAccounts := new(persistencemocks.MockAccountRepository)
		mockTransactions := new(persistencemocks.MockTransactionRepository)
		mockLogger := new(coremocks.MockLogger)

		expected := &entity.Transaction{ID: 2, AccountID: 7, Type: entity.TypeWithdrawal, AmountCents: 500, ResultBalance: 100}
		mockAccounts.On("ApplyDebit", ctx, persistence.BalanceChange{
			AccountID:   7,
			AmountCents: 500,
			Type:        entity.TypeWithdrawal,
			ReferenceID: "withdrawal:w-1",
		}).Return(expected, nil)
		mockLogger.On("Info", "Ledger debit applied", mock.Anything).Return()

		service := NewService(mockAccounts, mockTransactions, mockLogger)

		txn, err := service.Debit(ctx, 7, 500, entity.TypeWithdrawal, "withdrawal:w-1")

		require.NoError(t, err)
		assert.Equal(t, expected, txn)
	})
}

func TestService_History(t *testing.T) {
	ctx := context.Background()

	t.Run("should clamp out-of-range limits to the default", func(t *testing.T) {
		mockAccounts := new(persistencemocks.MockAccountRepository)
		mockTransactions := new(persistencemocks.MockTransactionRepository)
		mockLogger := new(coremocks.MockLogger)

		mockTransactions.On("ListByAccount", ctx, uint64(7), 50).Return([]*entity.Transaction{}, nil).Twice()

		service := NewService(mockAccounts, mockTransactions, mockLogger)

		_, err := service.History(ctx, 7, 0)
		require.NoError(t, err)
		_, err = service.History(ctx, 7, 500)
		require.NoError(t, err)

		mockTransactions.AssertExpectations(t)
	})

	t.Run("should reject a zero account id", func(t *testing.T) {
		mockAccounts := new(persistencemocks.MockAccountRepository)
		mockTransactions := new(persistencemocks.MockTransactionRepository)
		mockLogger := new(coremocks.MockLogger)

		service := NewService(mockAccounts, mockTransactions, mockLogger)

		_, err := service.History(ctx, 0, 10)
		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)
	})
}

func TestService_ManualCredit(t *testing.T) {
	ctx := context.Background()

	t.Run("should require the operator flag", func(t *testing.T) {
		mockAccounts := new(persistencemocks.MockAccountRepository)
		mockTransactions := new(persistencemocks.MockTransactionRepository)
		mockLogger := new(coremocks.MockLogger)

		service := NewService(mockAccounts, mockTransactions, mockLogger)

		_, err := service.ManualCredit(ctx, entity.Identity{AccountID: 1}, 7, 250)

		assert.ErrorIs(t, err, errs.ErrPermissionDenied)
		mockAccounts.AssertNotCalled(t, "ApplyCredit")
	})

	t.Run("should credit with a manual reference", func(t *testing.T) {
		mockAccounts := new(persistencemocks.MockAccountRepository)
		mockTransactions := new(persistencemocks.MockTransactionRepository)
		mockLogger := new(coremocks.MockLogger)

		mockAccounts.On("ApplyCredit", ctx, mock.MatchedBy(func(change persistence.BalanceChange) bool {
			return change.Type == entity.TypeManualCredit && change.AccountID == 7
		})).Return(&entity.Transaction{ID: 3, AccountID: 7}, nil)
		mockLogger.On("Info", "Ledger credit applied", mock.Anything).Return()

		service := NewService(mockAccounts, mockTransactions, mockLogger)

		txn, err := service.ManualCredit(ctx, entity.Identity{AccountID: 1, Admin: true}, 7, 250)

		require.NoError(t, err)
		assert.NotNil(t, txn)
		mockAccounts.AssertExpectations(t)
	})
}

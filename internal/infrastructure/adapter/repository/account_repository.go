package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// AccountRepository implements AccountRepository interface using GORM
type AccountRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAccountRepository creates a new AccountRepository instance
func NewAccountRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *AccountRepository {
	return &AccountRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// modelToEntity converts an account model to an entity
func (r *AccountRepository) modelToEntity(accountModel *model.Account) *entity.Account {
	account := entity.RestoreAccount(
		accountModel.ID,
		accountModel.Balance,
		accountModel.Withdrawable,
		accountModel.AdCredit,
		accountModel.LifetimeEarnings,
		accountModel.Suspended,
	)
	account.StreakDays = accountModel.StreakDays
	account.LastStreakDay = accountModel.LastStreakDay
	account.CreatedAt = accountModel.CreatedAt
	account.UpdatedAt = accountModel.UpdatedAt
	return account
}

// handleDatabaseError standardizes database error handling
func (r *AccountRepository) handleDatabaseError(operation string, err error, accountID uint64) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		r.logger.Warn("Account not found", map[string]any{
			"account_id": accountID,
		})
		return errs.ErrAccountNotFound
	}

	r.logger.Error(fmt.Sprintf("Database error when %s", operation), map[string]any{
		"account_id": accountID,
		"error":      err.Error(),
	})

	if r.errorClassifier.IsDuplicateKeyError(err) {
		return errs.ErrConstraintViolation
	}

	return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, err.Error())
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uint64) (*entity.Account, error) {
	var accountModel model.Account
	result := r.db.WithContext(ctx).First(&accountModel, id)

	if result.Error != nil {
		return nil, r.handleDatabaseError("getting account", result.Error, id)
	}

	return r.modelToEntity(&accountModel), nil
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	r.logger.Debug("Creating new account", map[string]any{
		"account_id": account.ID,
	})

	accountModel := model.Account{
		ID:               account.ID,
		Balance:          account.Balance(),
		Withdrawable:     account.Withdrawable(),
		AdCredit:         account.AdCredit(),
		LifetimeEarnings: account.LifetimeEarnings(),
		Suspended:        account.Suspended,
		StreakDays:       account.StreakDays,
		LastStreakDay:    account.LastStreakDay,
		CreatedAt:        account.CreatedAt,
		UpdatedAt:        account.UpdatedAt,
	}

	result := r.db.WithContext(ctx).Create(&accountModel)
	if result.Error != nil {
		return r.handleDatabaseError("creating account", result.Error, account.ID)
	}

	r.logger.Info("Account created successfully", map[string]any{
		"account_id": account.ID,
	})
	return nil
}

// ApplyCredit atomically credits the account and inserts the ledger row.
// The unique index on transactions.reference_id turns a replayed reference
// into ErrAlreadyProcessed before any balance moves.
func (r *AccountRepository) ApplyCredit(ctx context.Context, change persistence.BalanceChange) (*entity.Transaction, error) {
	return r.applyChange(ctx, change, false)
}

// ApplyDebit atomically debits the account with the same guarantees, failing
// with no mutation if the balance would go negative.
func (r *AccountRepository) ApplyDebit(ctx context.Context, change persistence.BalanceChange) (*entity.Transaction, error) {
	return r.applyChange(ctx, change, true)
}

func (r *AccountRepository) applyChange(ctx context.Context, change persistence.BalanceChange, debit bool) (*entity.Transaction, error) {
	r.logger.Debug("Applying balance change", map[string]any{
		"account_id":   change.AccountID,
		"amount_cents": change.AmountCents,
		"type":         change.Type,
		"reference_id": change.ReferenceID,
	})

	var txn *entity.Transaction

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Get and lock the account row with FOR UPDATE so concurrent
		// changes to the same account serialize here
		var accountModel model.Account
		result := tx.Set("gorm:query_option", "FOR UPDATE").First(&accountModel, change.AccountID)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return errs.ErrAccountNotFound
			}
			return result.Error
		}

		account := r.modelToEntity(&accountModel)

		var applyErr error
		switch {
		case debit:
			applyErr = account.ApplyDebit(change.AmountCents, change.Type, r.timeProvider)
		case change.Refund:
			applyErr = account.ApplyRefund(change.AmountCents, r.timeProvider)
		default:
			applyErr = account.ApplyCredit(change.AmountCents, change.Type, r.timeProvider)
		}
		if applyErr != nil {
			return applyErr
		}

		var err error
		txn, err = entity.NewTransaction(change.AccountID, change.Type, change.AmountCents, change.ReferenceID, r.timeProvider)
		if err != nil {
			return err
		}
		txn.ResultBalance = account.Balance()
		if txn.Status == entity.StatusCompleted {
			txn.MarkCompleted(r.timeProvider)
		}

		// Insert the ledger row first: a duplicate reference aborts the
		// whole change before the balance is touched
		txnModel := model.Transaction{
			AccountID:     txn.AccountID,
			Type:          string(txn.Type),
			AmountCents:   txn.AmountCents,
			Status:        string(txn.Status),
			ReferenceID:   txn.ReferenceID,
			ResultBalance: txn.ResultBalance,
			CreatedAt:     txn.CreatedAt,
			ProcessedAt:   txn.ProcessedAt,
		}
		if result := tx.Create(&txnModel); result.Error != nil {
			if r.errorClassifier.IsDuplicateKeyError(result.Error) {
				return errs.NewAlreadyProcessedError(change.ReferenceID, change.AccountID)
			}
			return result.Error
		}
		txn.ID = txnModel.ID

		result = tx.Model(&model.Account{}).
			Where("id = ?", change.AccountID).
			Updates(map[string]interface{}{
				"balance":           account.Balance(),
				"withdrawable":      account.Withdrawable(),
				"ad_credit":         account.AdCredit(),
				"lifetime_earnings": account.LifetimeEarnings(),
				"updated_at":        account.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, errs.ErrAccountNotFound) ||
			errs.IsInsufficientFundsError(err) ||
			errs.IsAlreadyProcessedError(err) ||
			errors.Is(err, errs.ErrInvalidAmount) ||
			errors.Is(err, errs.ErrAmountOverflow) {
			return nil, err
		}
		r.logger.Error("Database error during balance change", map[string]any{
			"account_id":   change.AccountID,
			"reference_id": change.ReferenceID,
			"error":        err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, err.Error())
	}

	r.logger.Info("Balance change applied", map[string]any{
		"account_id":     change.AccountID,
		"amount_cents":   change.AmountCents,
		"type":           change.Type,
		"reference_id":   change.ReferenceID,
		"result_balance": txn.ResultBalance,
	})
	return txn, nil
}

// UpdateStreak persists the streak counter fields
func (r *AccountRepository) UpdateStreak(ctx context.Context, account *entity.Account) error {
	result := r.db.WithContext(ctx).Model(&model.Account{}).
		Where("id = ?", account.ID).
		Updates(map[string]interface{}{
			"streak_days":     account.StreakDays,
			"last_streak_day": account.LastStreakDay,
			"updated_at":      r.timeProvider.Now(),
		})

	if result.Error != nil {
		return r.handleDatabaseError("updating streak", result.Error, account.ID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrAccountNotFound
	}

	return nil
}

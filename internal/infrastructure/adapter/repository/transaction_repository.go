package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// TransactionRepository implements TransactionRepository interface using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// modelToEntity converts a transaction model to an entity
func (r *TransactionRepository) modelToEntity(txnModel *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:            txnModel.ID,
		AccountID:     txnModel.AccountID,
		Type:          entity.TransactionType(txnModel.Type),
		AmountCents:   txnModel.AmountCents,
		Status:        entity.TransactionStatus(txnModel.Status),
		ReferenceID:   txnModel.ReferenceID,
		ResultBalance: txnModel.ResultBalance,
		CreatedAt:     txnModel.CreatedAt,
		ProcessedAt:   txnModel.ProcessedAt,
	}
}

// GetByReferenceID retrieves a transaction by its idempotency reference
func (r *TransactionRepository) GetByReferenceID(ctx context.Context, referenceID string) (*entity.Transaction, error) {
	var txnModel model.Transaction
	result := r.db.WithContext(ctx).
		Where("reference_id = ?", referenceID).
		First(&txnModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTransactionNotFound
		}
		r.logger.Error("Failed to get transaction by reference", map[string]any{
			"reference_id": referenceID,
			"error":        result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return r.modelToEntity(&txnModel), nil
}

// ReferenceExists checks if a transaction with the given reference already exists
func (r *TransactionRepository) ReferenceExists(ctx context.Context, referenceID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("reference_id = ?", referenceID).
		Count(&count)

	if result.Error != nil {
		r.logger.Error("Failed to check reference existence", map[string]any{
			"reference_id": referenceID,
			"error":        result.Error.Error(),
		})
		return false, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return count > 0, nil
}

// UpdateStatus transitions a pending ledger row to its terminal status. The
// pending guard in the WHERE clause makes the transition single-shot under
// concurrent operators.
func (r *TransactionRepository) UpdateStatus(ctx context.Context, transactionID uint64, status entity.TransactionStatus) error {
	r.logger.Debug("Updating transaction status", map[string]any{
		"transaction_id": transactionID,
		"status":         status,
	})

	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", transactionID, string(entity.StatusPending)).
		Update("status", string(status))

	if result.Error != nil {
		r.logger.Error("Failed to update transaction status", map[string]any{
			"transaction_id": transactionID,
			"error":          result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		// Either missing or no longer pending; look up which
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Transaction{}).
			Where("id = ?", transactionID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, err.Error())
		}
		if count == 0 {
			return errs.ErrTransactionNotFound
		}
		return errs.NewNotEligibleError(0, "transaction is not pending")
	}

	return nil
}

// ListByAccount returns the most recent ledger rows for an account
func (r *TransactionRepository) ListByAccount(ctx context.Context, accountID uint64, limit int) ([]*entity.Transaction, error) {
	var txnModels []model.Transaction
	result := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&txnModels)

	if result.Error != nil {
		r.logger.Error("Failed to list transactions", map[string]any{
			"account_id": accountID,
			"error":      result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	transactions := make([]*entity.Transaction, 0, len(txnModels))
	for i := range txnModels {
		transactions = append(transactions, r.modelToEntity(&txnModels[i]))
	}
	return transactions, nil
}

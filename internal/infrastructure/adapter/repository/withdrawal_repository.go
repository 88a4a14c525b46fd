package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// WithdrawalRepository implements WithdrawalRepository interface using GORM
type WithdrawalRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewWithdrawalRepository creates a new WithdrawalRepository instance
func NewWithdrawalRepository(db *gorm.DB, logger coreport.Logger) *WithdrawalRepository {
	return &WithdrawalRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *WithdrawalRepository) modelToEntity(withdrawalModel *model.Withdrawal) *entity.Withdrawal {
	return &entity.Withdrawal{
		ID:            withdrawalModel.ID,
		AccountID:     withdrawalModel.AccountID,
		AmountCents:   withdrawalModel.AmountCents,
		Status:        entity.WithdrawalStatus(withdrawalModel.Status),
		Method:        withdrawalModel.Method,
		Destination:   withdrawalModel.Destination,
		TransactionID: withdrawalModel.TransactionID,
		CreatedAt:     withdrawalModel.CreatedAt,
		ResolvedAt:    withdrawalModel.ResolvedAt,
	}
}

// Create stores a new pending withdrawal
func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *entity.Withdrawal) error {
	withdrawalModel := model.Withdrawal{
		ID:            withdrawal.ID,
		AccountID:     withdrawal.AccountID,
		AmountCents:   withdrawal.AmountCents,
		Status:        string(withdrawal.Status),
		Method:        withdrawal.Method,
		Destination:   withdrawal.Destination,
		TransactionID: withdrawal.TransactionID,
		CreatedAt:     withdrawal.CreatedAt,
		ResolvedAt:    withdrawal.ResolvedAt,
	}

	result := r.db.WithContext(ctx).Create(&withdrawalModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			return errs.ErrConstraintViolation
		}
		r.logger.Error("Failed to create withdrawal", map[string]any{
			"withdrawal_id": withdrawal.ID,
			"account_id":    withdrawal.AccountID,
			"error":         result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	r.logger.Info("Withdrawal created", map[string]any{
		"withdrawal_id": withdrawal.ID,
		"account_id":    withdrawal.AccountID,
		"amount_cents":  withdrawal.AmountCents,
	})
	return nil
}

// GetByID retrieves a withdrawal by ID
func (r *WithdrawalRepository) GetByID(ctx context.Context, id string) (*entity.Withdrawal, error) {
	var withdrawalModel model.Withdrawal
	result := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&withdrawalModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrWithdrawalNotFound
		}
		r.logger.Error("Failed to get withdrawal", map[string]any{
			"withdrawal_id": id,
			"error":         result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return r.modelToEntity(&withdrawalModel), nil
}

// Transition moves a withdrawal from pending to a terminal status. The
// pending guard in the WHERE clause resolves a race between two operators to
// exactly one winner.
func (r *WithdrawalRepository) Transition(ctx context.Context, id string, to entity.WithdrawalStatus, resolvedAt time.Time) error {
	r.logger.Debug("Transitioning withdrawal", map[string]any{
		"withdrawal_id": id,
		"to":            to,
	})

	result := r.db.WithContext(ctx).Model(&model.Withdrawal{}).
		Where("id = ? AND status = ?", id, string(entity.WithdrawalPending)).
		Updates(map[string]interface{}{
			"status":      string(to),
			"resolved_at": resolvedAt,
		})

	if result.Error != nil {
		r.logger.Error("Failed to transition withdrawal", map[string]any{
			"withdrawal_id": id,
			"to":            to,
			"error":         result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Withdrawal{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, err.Error())
		}
		if count == 0 {
			return errs.ErrWithdrawalNotFound
		}
		r.logger.Warn("Withdrawal already resolved", map[string]any{
			"withdrawal_id": id,
			"to":            to,
		})
		return errs.NewNotEligibleError(0, "withdrawal is not pending")
	}

	return nil
}

// ListPending returns pending withdrawals for operator review
func (r *WithdrawalRepository) ListPending(ctx context.Context, limit int) ([]*entity.Withdrawal, error) {
	var withdrawalModels []model.Withdrawal
	result := r.db.WithContext(ctx).
		Where("status = ?", string(entity.WithdrawalPending)).
		Order("created_at").
		Limit(limit).
		Find(&withdrawalModels)

	if result.Error != nil {
		r.logger.Error("Failed to list pending withdrawals", map[string]any{
			"error": result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	withdrawals := make([]*entity.Withdrawal, 0, len(withdrawalModels))
	for i := range withdrawalModels {
		withdrawals = append(withdrawals, r.modelToEntity(&withdrawalModels[i]))
	}
	return withdrawals, nil
}

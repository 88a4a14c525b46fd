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

// SubscriptionRepository implements SubscriptionRepository interface using GORM
type SubscriptionRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewSubscriptionRepository creates a new SubscriptionRepository instance
func NewSubscriptionRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *SubscriptionRepository {
	return &SubscriptionRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *SubscriptionRepository) modelToEntity(subModel *model.Subscription) *entity.Subscription {
	return &entity.Subscription{
		ID:                subModel.ID,
		AccountID:         subModel.AccountID,
		Tier:              subModel.Tier,
		MonthlyPriceCents: subModel.MonthlyPriceCents,
		Status:            entity.SubscriptionStatus(subModel.Status),
		NextBillingDate:   subModel.NextBillingDate,
		CreatedAt:         subModel.CreatedAt,
		UpdatedAt:         subModel.UpdatedAt,
	}
}

// GetByID retrieves a subscription by ID
func (r *SubscriptionRepository) GetByID(ctx context.Context, id uint64) (*entity.Subscription, error) {
	var subModel model.Subscription
	result := r.db.WithContext(ctx).First(&subModel, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrSubscriptionNotFound
		}
		r.logger.Error("Failed to get subscription", map[string]any{
			"subscription_id": id,
			"error":           result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return r.modelToEntity(&subModel), nil
}

// ListDue returns active subscriptions with a billing date at or before asOf
func (r *SubscriptionRepository) ListDue(ctx context.Context, asOf time.Time) ([]*entity.Subscription, error) {
	var subModels []model.Subscription
	result := r.db.WithContext(ctx).
		Where("status = ? AND next_billing_date <= ?", string(entity.SubscriptionActive), asOf).
		Order("next_billing_date").
		Find(&subModels)

	if result.Error != nil {
		r.logger.Error("Failed to list due subscriptions", map[string]any{
			"error": result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	subscriptions := make([]*entity.Subscription, 0, len(subModels))
	for i := range subModels {
		subscriptions = append(subscriptions, r.modelToEntity(&subModels[i]))
	}
	return subscriptions, nil
}

// AdvanceBillingDate moves a subscription's next billing date, conditional on
// the stored date still matching the one the caller read. Two concurrent
// billing runs advance each cycle exactly once.
func (r *SubscriptionRepository) AdvanceBillingDate(ctx context.Context, id uint64, from, to time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ? AND next_billing_date = ?", id, from).
		Updates(map[string]interface{}{
			"next_billing_date": to,
			"updated_at":        r.timeProvider.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to advance billing date", map[string]any{
			"subscription_id": id,
			"error":           result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.Subscription{}).
			Where("id = ?", id).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, err.Error())
		}
		if count == 0 {
			return errs.ErrSubscriptionNotFound
		}
		return errs.NewNotEligibleError(0, "billing cycle already advanced")
	}

	return nil
}

// SetStatus updates the subscription lifecycle status
func (r *SubscriptionRepository) SetStatus(ctx context.Context, id uint64, status entity.SubscriptionStatus) error {
	result := r.db.WithContext(ctx).Model(&model.Subscription{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": r.timeProvider.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to set subscription status", map[string]any{
			"subscription_id": id,
			"status":          status,
			"error":           result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errs.ErrSubscriptionNotFound
	}

	return nil
}

// CommissionRepository implements CommissionRepository interface using GORM
type CommissionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewCommissionRepository creates a new CommissionRepository instance
func NewCommissionRepository(db *gorm.DB, logger coreport.Logger) *CommissionRepository {
	return &CommissionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *CommissionRepository) modelToEntity(commissionModel *model.ReferralCommission) *entity.ReferralCommission {
	return &entity.ReferralCommission{
		ID:                 commissionModel.ID,
		ReferrerID:         commissionModel.ReferrerID,
		ReferredID:         commissionModel.ReferredID,
		SubscriptionID:     commissionModel.SubscriptionID,
		Tier:               commissionModel.Tier,
		MonthlyAmountCents: commissionModel.MonthlyAmountCents,
		Status:             entity.CommissionStatus(commissionModel.Status),
		LastPaidCycle:      commissionModel.LastPaidCycle,
		CreatedAt:          commissionModel.CreatedAt,
	}
}

// Create stores a new commission
func (r *CommissionRepository) Create(ctx context.Context, commission *entity.ReferralCommission) error {
	commissionModel := model.ReferralCommission{
		ReferrerID:         commission.ReferrerID,
		ReferredID:         commission.ReferredID,
		SubscriptionID:     commission.SubscriptionID,
		Tier:               commission.Tier,
		MonthlyAmountCents: commission.MonthlyAmountCents,
		Status:             string(commission.Status),
		LastPaidCycle:      commission.LastPaidCycle,
		CreatedAt:          commission.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&commissionModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Commission already exists for subscription", map[string]any{
				"referrer_id":     commission.ReferrerID,
				"subscription_id": commission.SubscriptionID,
			})
			return errs.ErrConstraintViolation
		}
		r.logger.Error("Failed to create commission", map[string]any{
			"referrer_id":     commission.ReferrerID,
			"subscription_id": commission.SubscriptionID,
			"error":           result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	commission.ID = commissionModel.ID
	return nil
}

// GetActiveBySubscription returns the active commission for a subscription
func (r *CommissionRepository) GetActiveBySubscription(ctx context.Context, subscriptionID uint64) (*entity.ReferralCommission, error) {
	var commissionModel model.ReferralCommission
	result := r.db.WithContext(ctx).
		Where("subscription_id = ? AND status = ?", subscriptionID, string(entity.CommissionActive)).
		First(&commissionModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		r.logger.Error("Failed to get active commission", map[string]any{
			"subscription_id": subscriptionID,
			"error":           result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return r.modelToEntity(&commissionModel), nil
}

// RecordPaidCycle persists the last-paid billing cycle marker
func (r *CommissionRepository) RecordPaidCycle(ctx context.Context, commissionID uint64, cycle time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.ReferralCommission{}).
		Where("id = ?", commissionID).
		Update("last_paid_cycle", cycle)

	if result.Error != nil {
		r.logger.Error("Failed to record paid cycle", map[string]any{
			"commission_id": commissionID,
			"error":         result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}
	if result.RowsAffected == 0 {
		return errs.ErrNotFound
	}

	return nil
}

// StopBySubscription marks every commission linked to a subscription as stopped
func (r *CommissionRepository) StopBySubscription(ctx context.Context, subscriptionID uint64) error {
	result := r.db.WithContext(ctx).Model(&model.ReferralCommission{}).
		Where("subscription_id = ?", subscriptionID).
		Update("status", string(entity.CommissionStopped))

	if result.Error != nil {
		r.logger.Error("Failed to stop commissions", map[string]any{
			"subscription_id": subscriptionID,
			"error":           result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	r.logger.Info("Commissions stopped for subscription", map[string]any{
		"subscription_id": subscriptionID,
		"rows":            result.RowsAffected,
	})
	return nil
}

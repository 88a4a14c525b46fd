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

// budgetRowID is the primary key of the single global budget row
const budgetRowID uint64 = 1

// BudgetRepository implements BudgetRepository interface using GORM
type BudgetRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier

	defaultDailyCapCents  int64
	defaultWeeklyCapCents int64
}

// NewBudgetRepository creates a new BudgetRepository instance. The default
// caps seed the row on first read.
func NewBudgetRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger, defaultDailyCapCents, defaultWeeklyCapCents int64) *BudgetRepository {
	return &BudgetRepository{
		db:                    db,
		timeProvider:          timeProvider,
		logger:                logger,
		errorClassifier:       NewErrorClassifier(),
		defaultDailyCapCents:  defaultDailyCapCents,
		defaultWeeklyCapCents: defaultWeeklyCapCents,
	}
}

func (r *BudgetRepository) modelToEntity(budgetModel *model.GlobalBudget) *entity.GlobalBudget {
	return &entity.GlobalBudget{
		DailyCapCents:   budgetModel.DailyCapCents,
		WeeklyCapCents:  budgetModel.WeeklyCapCents,
		DailyUsedCents:  budgetModel.DailyUsedCents,
		WeeklyUsedCents: budgetModel.WeeklyUsedCents,
		DailyResetDate:  budgetModel.DailyResetDate,
		WeekStartDate:   budgetModel.WeekStartDate,
		UpdatedAt:       budgetModel.UpdatedAt,
	}
}

// Get retrieves the budget row, creating it with the default caps if missing
func (r *BudgetRepository) Get(ctx context.Context) (*entity.GlobalBudget, error) {
	var budgetModel model.GlobalBudget
	result := r.db.WithContext(ctx).First(&budgetModel, budgetRowID)

	if result.Error != nil {
		if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
			r.logger.Error("Failed to get budget row", map[string]any{
				"error": result.Error.Error(),
			})
			return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
		}

		now := r.timeProvider.Now()
		budgetModel = model.GlobalBudget{
			ID:             budgetRowID,
			DailyCapCents:  r.defaultDailyCapCents,
			WeeklyCapCents: r.defaultWeeklyCapCents,
			DailyResetDate: entity.DateUTC(now),
			WeekStartDate:  entity.WeekStartUTC(now),
			UpdatedAt:      now,
		}
		if result := r.db.WithContext(ctx).Create(&budgetModel); result.Error != nil {
			// Another instance may have created the row concurrently
			if r.errorClassifier.IsDuplicateKeyError(result.Error) {
				return r.Get(ctx)
			}
			r.logger.Error("Failed to seed budget row", map[string]any{
				"error": result.Error.Error(),
			})
			return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
		}
		r.logger.Info("Budget row seeded", map[string]any{
			"daily_cap_cents":  r.defaultDailyCapCents,
			"weekly_cap_cents": r.defaultWeeklyCapCents,
		})
	}

	return r.modelToEntity(&budgetModel), nil
}

// Save persists counter and marker changes
func (r *BudgetRepository) Save(ctx context.Context, budget *entity.GlobalBudget) error {
	result := r.db.WithContext(ctx).Model(&model.GlobalBudget{}).
		Where("id = ?", budgetRowID).
		Updates(map[string]interface{}{
			"daily_used_cents":  budget.DailyUsedCents,
			"weekly_used_cents": budget.WeeklyUsedCents,
			"daily_reset_date":  budget.DailyResetDate,
			"week_start_date":   budget.WeekStartDate,
			"updated_at":        r.timeProvider.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to save budget row", map[string]any{
			"error": result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return nil
}

// AddUsage atomically increments both used counters by the amount
func (r *BudgetRepository) AddUsage(ctx context.Context, amountCents int64) error {
	result := r.db.WithContext(ctx).Model(&model.GlobalBudget{}).
		Where("id = ?", budgetRowID).
		Updates(map[string]interface{}{
			"daily_used_cents":  gorm.Expr("daily_used_cents + ?", amountCents),
			"weekly_used_cents": gorm.Expr("weekly_used_cents + ?", amountCents),
			"updated_at":        r.timeProvider.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to add budget usage", map[string]any{
			"amount_cents": amountCents,
			"error":        result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return nil
}

// UpdateCaps replaces the cap values
func (r *BudgetRepository) UpdateCaps(ctx context.Context, dailyCapCents, weeklyCapCents int64) error {
	result := r.db.WithContext(ctx).Model(&model.GlobalBudget{}).
		Where("id = ?", budgetRowID).
		Updates(map[string]interface{}{
			"daily_cap_cents":  dailyCapCents,
			"weekly_cap_cents": weeklyCapCents,
			"updated_at":       r.timeProvider.Now(),
		})

	if result.Error != nil {
		r.logger.Error("Failed to update budget caps", map[string]any{
			"error": result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	r.logger.Info("Budget caps updated", map[string]any{
		"daily_cap_cents":  dailyCapCents,
		"weekly_cap_cents": weeklyCapCents,
	})
	return nil
}

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

// RewardEventRepository implements RewardEventRepository interface using GORM
type RewardEventRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewRewardEventRepository creates a new RewardEventRepository instance
func NewRewardEventRepository(db *gorm.DB, logger coreport.Logger) *RewardEventRepository {
	return &RewardEventRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// Create inserts a reward event. A violation of the (source, natural_key)
// unique index means some earlier request already resolved this event.
func (r *RewardEventRepository) Create(ctx context.Context, event *entity.RewardEvent) error {
	eventModel := model.RewardEvent{
		AccountID:   event.AccountID,
		Source:      string(event.Source),
		NaturalKey:  event.NaturalKey,
		AmountCents: event.AmountCents,
		CreatedAt:   event.CreatedAt,
	}

	result := r.db.WithContext(ctx).Create(&eventModel)
	if result.Error != nil {
		if r.errorClassifier.IsDuplicateKeyError(result.Error) {
			r.logger.Warn("Duplicate reward event", map[string]any{
				"account_id":  event.AccountID,
				"source":      event.Source,
				"natural_key": event.NaturalKey,
			})
			return errs.NewAlreadyProcessedError(event.ReferenceID(), event.AccountID)
		}
		r.logger.Error("Failed to create reward event", map[string]any{
			"account_id":  event.AccountID,
			"source":      event.Source,
			"natural_key": event.NaturalKey,
			"error":       result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	event.ID = eventModel.ID
	return nil
}

// GetByNaturalKey retrieves the resolution for a (source, natural key)
func (r *RewardEventRepository) GetByNaturalKey(ctx context.Context, source entity.RewardSource, naturalKey string) (*entity.RewardEvent, error) {
	var eventModel model.RewardEvent
	result := r.db.WithContext(ctx).
		Where("source = ? AND natural_key = ?", string(source), naturalKey).
		First(&eventModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrNotFound
		}
		r.logger.Error("Failed to get reward event", map[string]any{
			"source":      source,
			"natural_key": naturalKey,
			"error":       result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return &entity.RewardEvent{
		ID:          eventModel.ID,
		AccountID:   eventModel.AccountID,
		Source:      entity.RewardSource(eventModel.Source),
		NaturalKey:  eventModel.NaturalKey,
		AmountCents: eventModel.AmountCents,
		CreatedAt:   eventModel.CreatedAt,
	}, nil
}

// CountForAccountSince counts an account's resolved events for a source
// created at or after the given instant
func (r *RewardEventRepository) CountForAccountSince(ctx context.Context, accountID uint64, source entity.RewardSource, since time.Time) (int, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.RewardEvent{}).
		Where("account_id = ? AND source = ? AND created_at >= ?", accountID, string(source), since).
		Count(&count)

	if result.Error != nil {
		r.logger.Error("Failed to count reward events", map[string]any{
			"account_id": accountID,
			"source":     source,
			"error":      result.Error.Error(),
		})
		return 0, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return int(count), nil
}

// AdRepository implements AdRepository interface using GORM
type AdRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewAdRepository creates a new AdRepository instance
func NewAdRepository(db *gorm.DB, logger coreport.Logger) *AdRepository {
	return &AdRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func (r *AdRepository) adModelToEntity(adModel *model.Ad) *entity.Ad {
	return &entity.Ad{
		ID:              adModel.ID,
		Title:           adModel.Title,
		RewardCents:     adModel.RewardCents,
		RequiredSeconds: adModel.RequiredSeconds,
		CooldownSeconds: adModel.CooldownSeconds,
		Active:          adModel.Active,
		CreatedAt:       adModel.CreatedAt,
	}
}

func (r *AdRepository) sessionModelToEntity(sessionModel *model.AdSession) *entity.AdSession {
	return &entity.AdSession{
		ID:              sessionModel.ID,
		AccountID:       sessionModel.AccountID,
		AdID:            sessionModel.AdID,
		RewardCents:     sessionModel.RewardCents,
		RequiredSeconds: sessionModel.RequiredSeconds,
		StartedAt:       sessionModel.StartedAt,
		RewardedAt:      sessionModel.RewardedAt,
	}
}

// GetAd retrieves an ad by ID
func (r *AdRepository) GetAd(ctx context.Context, adID uint64) (*entity.Ad, error) {
	var adModel model.Ad
	result := r.db.WithContext(ctx).First(&adModel, adID)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrAdNotFound
		}
		r.logger.Error("Failed to get ad", map[string]any{
			"ad_id": adID,
			"error": result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return r.adModelToEntity(&adModel), nil
}

// ListActiveAds returns ads currently available to watch
func (r *AdRepository) ListActiveAds(ctx context.Context) ([]*entity.Ad, error) {
	var adModels []model.Ad
	result := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id").
		Find(&adModels)

	if result.Error != nil {
		r.logger.Error("Failed to list active ads", map[string]any{
			"error": result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	ads := make([]*entity.Ad, 0, len(adModels))
	for i := range adModels {
		ads = append(ads, r.adModelToEntity(&adModels[i]))
	}
	return ads, nil
}

// CreateSession stores a new ad-view session
func (r *AdRepository) CreateSession(ctx context.Context, session *entity.AdSession) error {
	sessionModel := model.AdSession{
		ID:              session.ID,
		AccountID:       session.AccountID,
		AdID:            session.AdID,
		RewardCents:     session.RewardCents,
		RequiredSeconds: session.RequiredSeconds,
		StartedAt:       session.StartedAt,
		RewardedAt:      session.RewardedAt,
	}

	result := r.db.WithContext(ctx).Create(&sessionModel)
	if result.Error != nil {
		r.logger.Error("Failed to create ad session", map[string]any{
			"session_id": session.ID,
			"account_id": session.AccountID,
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return nil
}

// GetSession retrieves a session by ID
func (r *AdRepository) GetSession(ctx context.Context, sessionID string) (*entity.AdSession, error) {
	var sessionModel model.AdSession
	result := r.db.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&sessionModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, errs.ErrSessionNotFound
		}
		r.logger.Error("Failed to get ad session", map[string]any{
			"session_id": sessionID,
			"error":      result.Error.Error(),
		})
		return nil, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return r.sessionModelToEntity(&sessionModel), nil
}

// MarkSessionRewarded flips the rewarded marker. The "rewarded_at IS NULL"
// guard means exactly one of two racing completion requests wins.
func (r *AdRepository) MarkSessionRewarded(ctx context.Context, sessionID string, rewardedAt time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.AdSession{}).
		Where("id = ? AND rewarded_at IS NULL", sessionID).
		Update("rewarded_at", rewardedAt)

	if result.Error != nil {
		r.logger.Error("Failed to mark ad session rewarded", map[string]any{
			"session_id": sessionID,
			"error":      result.Error.Error(),
		})
		return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&model.AdSession{}).
			Where("id = ?", sessionID).
			Count(&count).Error; err != nil {
			return fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, err.Error())
		}
		if count == 0 {
			return errs.ErrSessionNotFound
		}
		return errs.NewAlreadyProcessedError(entity.RewardReferenceID(entity.SourceAdView, sessionID), 0)
	}

	return nil
}

// LastSessionStart returns the start time of the account's most recent
// session for an ad, or the zero time if none
func (r *AdRepository) LastSessionStart(ctx context.Context, accountID, adID uint64) (time.Time, error) {
	var sessionModel model.AdSession
	result := r.db.WithContext(ctx).
		Where("account_id = ? AND ad_id = ?", accountID, adID).
		Order("started_at DESC").
		First(&sessionModel)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return time.Time{}, nil
		}
		r.logger.Error("Failed to get last ad session", map[string]any{
			"account_id": accountID,
			"ad_id":      adID,
			"error":      result.Error.Error(),
		})
		return time.Time{}, fmt.Errorf("%w: %s", errs.ErrStoreUnavailable, result.Error.Error())
	}

	return sessionModel.StartedAt, nil
}

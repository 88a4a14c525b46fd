package persistence

import (
	"context"
	"time"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
)

// RewardEventRepository defines access to the idempotency records for
// reward payouts.
type RewardEventRepository interface {
	// Create inserts a reward event. The store enforces uniqueness on
	// (source, natural key); a duplicate insert returns ErrAlreadyProcessed
	// so the constraint violation itself closes the check-then-act race.
	//
	// Possible errors:
	// - ErrAlreadyProcessed
	// - ErrStoreUnavailable
	Create(ctx context.Context, event *entity.RewardEvent) error

	// GetByNaturalKey retrieves the resolution for a (source, natural key).
	//
	// Possible errors:
	// - ErrNotFound
	// - ErrStoreUnavailable
	GetByNaturalKey(ctx context.Context, source entity.RewardSource, naturalKey string) (*entity.RewardEvent, error)

	// CountForAccountSince counts an account's resolved events for a source
	// created at or after the given instant. Used for per-period limits.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	CountForAccountSince(ctx context.Context, accountID uint64, source entity.RewardSource, since time.Time) (int, error)
}

// AdRepository defines access to ads and ad-view sessions.
type AdRepository interface {
	// GetAd retrieves an ad by ID.
	//
	// Possible errors:
	// - ErrAdNotFound
	// - ErrStoreUnavailable
	GetAd(ctx context.Context, adID uint64) (*entity.Ad, error)

	// ListActiveAds returns ads currently available to watch.
	ListActiveAds(ctx context.Context) ([]*entity.Ad, error)

	// CreateSession stores a new ad-view session.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	CreateSession(ctx context.Context, session *entity.AdSession) error

	// GetSession retrieves a session by ID.
	//
	// Possible errors:
	// - ErrSessionNotFound
	// - ErrStoreUnavailable
	GetSession(ctx context.Context, sessionID string) (*entity.AdSession, error)

	// MarkSessionRewarded flips the rewarded marker, conditional on it not
	// being set yet. Returns ErrAlreadyProcessed if another request won.
	//
	// Possible errors:
	// - ErrSessionNotFound
	// - ErrAlreadyProcessed
	// - ErrStoreUnavailable
	MarkSessionRewarded(ctx context.Context, sessionID string, rewardedAt time.Time) error

	// LastSessionStart returns the start time of the account's most recent
	// session for an ad, or the zero time if none. Used for cooldowns.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	LastSessionStart(ctx context.Context, accountID, adID uint64) (time.Time, error)
}

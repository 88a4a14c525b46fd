package persistence

import (
	"context"
	"time"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
)

// SubscriptionRepository defines access to referred subscriptions.
type SubscriptionRepository interface {
	// GetByID retrieves a subscription by ID.
	//
	// Possible errors:
	// - ErrSubscriptionNotFound
	// - ErrStoreUnavailable
	GetByID(ctx context.Context, id uint64) (*entity.Subscription, error)

	// ListDue returns active subscriptions with next_billing_date <= asOf.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	ListDue(ctx context.Context, asOf time.Time) ([]*entity.Subscription, error)

	// AdvanceBillingDate moves a subscription's next billing date, conditional
	// on the stored date still matching the one the caller read, so two
	// concurrent billing runs advance each cycle exactly once.
	//
	// Possible errors:
	// - ErrSubscriptionNotFound
	// - ErrNotEligible: another run already advanced this cycle
	// - ErrStoreUnavailable
	AdvanceBillingDate(ctx context.Context, id uint64, from, to time.Time) error

	// SetStatus updates the subscription lifecycle status.
	//
	// Possible errors:
	// - ErrSubscriptionNotFound
	// - ErrStoreUnavailable
	SetStatus(ctx context.Context, id uint64, status entity.SubscriptionStatus) error
}

// CommissionRepository defines access to referral commission rows.
type CommissionRepository interface {
	// Create stores a new commission. The store enforces one row per
	// (referrer, subscription) pair.
	//
	// Possible errors:
	// - ErrConstraintViolation
	// - ErrStoreUnavailable
	Create(ctx context.Context, commission *entity.ReferralCommission) error

	// GetActiveBySubscription returns the active commission for a
	// subscription, if any.
	//
	// Possible errors:
	// - ErrNotFound
	// - ErrStoreUnavailable
	GetActiveBySubscription(ctx context.Context, subscriptionID uint64) (*entity.ReferralCommission, error)

	// RecordPaidCycle persists the last-paid billing cycle marker.
	//
	// Possible errors:
	// - ErrNotFound
	// - ErrStoreUnavailable
	RecordPaidCycle(ctx context.Context, commissionID uint64, cycle time.Time) error

	// StopBySubscription marks every commission linked to a subscription as
	// stopped. Stopped rows are excluded from all future billing runs.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	StopBySubscription(ctx context.Context, subscriptionID uint64) error
}

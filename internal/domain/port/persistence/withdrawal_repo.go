package persistence

import (
	"context"
	"time"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
)

// WithdrawalRepository defines access to withdrawal requests.
type WithdrawalRepository interface {
	// Create stores a new pending withdrawal.
	//
	// Possible errors:
	// - ErrConstraintViolation
	// - ErrStoreUnavailable
	Create(ctx context.Context, withdrawal *entity.Withdrawal) error

	// GetByID retrieves a withdrawal by ID.
	//
	// Possible errors:
	// - ErrWithdrawalNotFound
	// - ErrStoreUnavailable
	GetByID(ctx context.Context, id string) (*entity.Withdrawal, error)

	// Transition moves a withdrawal from pending to a terminal status with a
	// conditional update scoped to the current status, so a race between two
	// operators resolves to exactly one successful transition.
	//
	// Possible errors:
	// - ErrWithdrawalNotFound
	// - ErrNotEligible: the row was no longer pending
	// - ErrStoreUnavailable
	Transition(ctx context.Context, id string, to entity.WithdrawalStatus, resolvedAt time.Time) error

	// ListPending returns pending withdrawals for operator review.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	ListPending(ctx context.Context, limit int) ([]*entity.Withdrawal, error)
}

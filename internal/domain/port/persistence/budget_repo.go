package persistence

import (
	"context"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
)

// BudgetRepository defines access to the singleton global budget row. All
// instances of the service read and write the same durable record; nothing
// is cached in process.
type BudgetRepository interface {
	// Get retrieves the budget row, creating it with the configured caps if
	// it doesn't exist yet.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	Get(ctx context.Context) (*entity.GlobalBudget, error)

	// Save persists counter and marker changes.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	Save(ctx context.Context, budget *entity.GlobalBudget) error

	// AddUsage atomically increments both used counters by the amount.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	AddUsage(ctx context.Context, amountCents int64) error

	// UpdateCaps replaces the cap values. Operator-only.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	UpdateCaps(ctx context.Context, dailyCapCents, weeklyCapCents int64) error
}

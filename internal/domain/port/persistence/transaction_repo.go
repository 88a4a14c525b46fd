package persistence

import (
	"context"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
)

// TransactionRepository defines read access and status transitions on the
// append-only ledger log. Rows are inserted by AccountRepository as part of
// the atomic balance mutations; they are never inserted on their own.
type TransactionRepository interface {
	// GetByReferenceID retrieves a transaction by its idempotency reference.
	//
	// Possible errors:
	// - ErrTransactionNotFound
	// - ErrStoreUnavailable
	GetByReferenceID(ctx context.Context, referenceID string) (*entity.Transaction, error)

	// ReferenceExists checks whether a transaction with the given reference
	// already exists. Used for idempotency checks.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	ReferenceExists(ctx context.Context, referenceID string) (bool, error)

	// UpdateStatus performs the single allowed status transition on a
	// withdrawal-type row, conditional on the row currently being pending.
	// Returns ErrNotEligible if the row was not pending.
	//
	// Possible errors:
	// - ErrTransactionNotFound
	// - ErrNotEligible
	// - ErrStoreUnavailable
	UpdateStatus(ctx context.Context, transactionID uint64, status entity.TransactionStatus) error

	// ListByAccount returns the most recent ledger rows for an account.
	//
	// Possible errors:
	// - ErrStoreUnavailable
	ListByAccount(ctx context.Context, accountID uint64, limit int) ([]*entity.Transaction, error)
}

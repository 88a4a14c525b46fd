package persistence

import (
	"context"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
)

// BalanceChange describes one atomic balance mutation applied together with
// its ledger row.
type BalanceChange struct {
	AccountID   uint64
	AmountCents int64 // positive
	Type        entity.TransactionType
	ReferenceID string
	// Refund marks a credit as an escrow refund: it restores the
	// withdrawable balance alongside the total balance without counting as
	// an earning.
	Refund bool
}

// AccountRepository defines access to account balance records.
type AccountRepository interface {
	// GetByID retrieves an account by ID.
	//
	// Possible errors:
	// - ErrAccountNotFound
	// - ErrStoreUnavailable
	GetByID(ctx context.Context, id uint64) (*entity.Account, error)

	// Create creates a new account with zero balances.
	//
	// Possible errors:
	// - ErrConstraintViolation: account already exists
	// - ErrStoreUnavailable
	Create(ctx context.Context, account *entity.Account) error

	// ApplyCredit atomically applies a credit to the account row and inserts
	// the ledger transaction, both or neither. The returned transaction
	// carries the resulting balance.
	//
	// Possible errors:
	// - ErrAccountNotFound
	// - ErrAlreadyProcessed: the reference id is already ledgered
	// - ErrStoreUnavailable
	ApplyCredit(ctx context.Context, change BalanceChange) (*entity.Transaction, error)

	// ApplyDebit atomically applies a debit with the same guarantees.
	// Fails with no mutation if the balance would go negative.
	//
	// Possible errors:
	// - ErrAccountNotFound
	// - ErrInsufficientFunds
	// - ErrAlreadyProcessed
	// - ErrStoreUnavailable
	ApplyDebit(ctx context.Context, change BalanceChange) (*entity.Transaction, error)

	// UpdateStreak persists the streak counter fields after a streak claim.
	//
	// Possible errors:
	// - ErrAccountNotFound
	// - ErrStoreUnavailable
	UpdateStreak(ctx context.Context, account *entity.Account) error
}

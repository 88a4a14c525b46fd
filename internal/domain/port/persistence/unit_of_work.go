package persistence

import (
	"context"
)

// UnitOfWork coordinates multi-repository writes inside one store
// transaction so that a balance mutation, its ledger row and its idempotency
// record commit or roll back together.
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// GetAccountRepository returns an account repository bound to the current transaction
	GetAccountRepository(ctx context.Context) AccountRepository

	// GetTransactionRepository returns a transaction repository bound to the current transaction
	GetTransactionRepository(ctx context.Context) TransactionRepository

	// GetRewardEventRepository returns a reward event repository bound to the current transaction
	GetRewardEventRepository(ctx context.Context) RewardEventRepository

	// GetAdRepository returns an ad repository bound to the current transaction
	GetAdRepository(ctx context.Context) AdRepository

	// GetWithdrawalRepository returns a withdrawal repository bound to the current transaction
	GetWithdrawalRepository(ctx context.Context) WithdrawalRepository

	// GetSubscriptionRepository returns a subscription repository bound to the current transaction
	GetSubscriptionRepository(ctx context.Context) SubscriptionRepository

	// GetCommissionRepository returns a commission repository bound to the current transaction
	GetCommissionRepository(ctx context.Context) CommissionRepository
}

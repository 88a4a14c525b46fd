package withdrawal

import (
	"context"

	"github.com/google/uuid"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
)

// Service drives the escrow-style withdrawal lifecycle:
// pending -> rejected (refund) or pending -> paid (status only). The balance
// leaves at submission time; paying moves no further money. Transitions are
// conditional updates scoped to the pending status, so concurrent operator
// actions resolve to exactly one winner.
type Service struct {
	uow          persistence.UnitOfWork
	accounts     persistence.AccountRepository
	withdrawals  persistence.WithdrawalRepository
	minimumCents int64
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates a withdrawal service.
func NewService(
	uow persistence.UnitOfWork,
	accounts persistence.AccountRepository,
	withdrawals persistence.WithdrawalRepository,
	minimumCents int64,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		accounts:     accounts,
		withdrawals:  withdrawals,
		minimumCents: minimumCents,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Submit escrows the amount and creates a pending withdrawal. The debit and
// the pending ledger row and the withdrawal row commit together or not at
// all. The amount must be covered by the withdrawable balance, so a later
// refund restores the bucket exactly. Fails with ErrBelowMinimum or
// ErrInsufficientFunds with no write.
func (s *Service) Submit(
	ctx context.Context,
	caller entity.Identity,
	amountCents int64,
	method, destination string,
) (*entity.Withdrawal, error) {
	account, err := s.accounts.GetByID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Suspended {
		return nil, errs.ErrAccountSuspended
	}

	w, err := entity.NewWithdrawal(uuid.NewString(), caller.AccountID, amountCents, s.minimumCents, method, destination, s.timeProvider)
	if err != nil {
		return nil, err
	}

	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}

	txn, err := s.uow.GetAccountRepository(txCtx).ApplyDebit(txCtx, persistence.BalanceChange{
		AccountID:   caller.AccountID,
		AmountCents: amountCents,
		Type:        entity.TypeWithdrawal,
		ReferenceID: w.ReferenceID(),
	})
	if err != nil {
		_ = s.uow.Rollback(txCtx)
		return nil, err
	}
	w.TransactionID = txn.ID

	if err := s.uow.GetWithdrawalRepository(txCtx).Create(txCtx, w); err != nil {
		_ = s.uow.Rollback(txCtx)
		return nil, err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return nil, err
	}

	s.logger.Info("Withdrawal submitted", map[string]any{
		"withdrawal_id": w.ID,
		"account_id":    caller.AccountID,
		"amount":        entity.FormatCents(amountCents),
		"method":        method,
	})
	return w, nil
}

// Reject refunds a pending withdrawal exactly once. The conditional
// pending-scoped transition guarantees a second reject (or a reject racing a
// pay) changes nothing.
func (s *Service) Reject(ctx context.Context, operator entity.Identity, withdrawalID string) error {
	if !operator.Admin {
		return errs.ErrPermissionDenied
	}

	w, err := s.withdrawals.GetByID(ctx, withdrawalID)
	if err != nil {
		return err
	}

	now := s.timeProvider.Now()
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}

	// the transition is the guard; everything after it only runs for the
	// single request that actually flipped pending -> rejected
	if err := s.uow.GetWithdrawalRepository(txCtx).Transition(txCtx, withdrawalID, entity.WithdrawalRejected, now); err != nil {
		_ = s.uow.Rollback(txCtx)
		return err
	}

	if _, err := s.uow.GetAccountRepository(txCtx).ApplyCredit(txCtx, persistence.BalanceChange{
		AccountID:   w.AccountID,
		AmountCents: w.AmountCents,
		Type:        entity.TypeAdjustment,
		ReferenceID: "refund:" + w.ID,
		Refund:      true,
	}); err != nil {
		_ = s.uow.Rollback(txCtx)
		return err
	}

	if err := s.uow.GetTransactionRepository(txCtx).UpdateStatus(txCtx, w.TransactionID, entity.StatusRejected); err != nil {
		_ = s.uow.Rollback(txCtx)
		return err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return err
	}

	s.logger.Info("Withdrawal rejected and refunded", map[string]any{
		"withdrawal_id": withdrawalID,
		"account_id":    w.AccountID,
		"amount":        entity.FormatCents(w.AmountCents),
		"operator":      operator.AccountID,
	})
	return nil
}

// MarkPaid finalizes a pending withdrawal after the payout was made
// externally. No money moves; the escrow row is completed and the
// withdrawal becomes terminal.
func (s *Service) MarkPaid(ctx context.Context, operator entity.Identity, withdrawalID string) error {
	if !operator.Admin {
		return errs.ErrPermissionDenied
	}

	w, err := s.withdrawals.GetByID(ctx, withdrawalID)
	if err != nil {
		return err
	}

	now := s.timeProvider.Now()
	txCtx, err := s.uow.Begin(ctx)
	if err != nil {
		return err
	}

	if err := s.uow.GetWithdrawalRepository(txCtx).Transition(txCtx, withdrawalID, entity.WithdrawalPaid, now); err != nil {
		_ = s.uow.Rollback(txCtx)
		return err
	}

	if err := s.uow.GetTransactionRepository(txCtx).UpdateStatus(txCtx, w.TransactionID, entity.StatusCompleted); err != nil {
		_ = s.uow.Rollback(txCtx)
		return err
	}

	if err := s.uow.Commit(txCtx); err != nil {
		return err
	}

	s.logger.Info("Withdrawal marked paid", map[string]any{
		"withdrawal_id": withdrawalID,
		"account_id":    w.AccountID,
		"amount":        entity.FormatCents(w.AmountCents),
		"operator":      operator.AccountID,
	})
	return nil
}

// Get returns one withdrawal, restricted to its owner or an operator.
func (s *Service) Get(ctx context.Context, caller entity.Identity, withdrawalID string) (*entity.Withdrawal, error) {
	w, err := s.withdrawals.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	if w.AccountID != caller.AccountID && !caller.Admin {
		return nil, errs.ErrPermissionDenied
	}
	return w, nil
}

// ListPending returns pending withdrawals for operator review.
func (s *Service) ListPending(ctx context.Context, operator entity.Identity, limit int) ([]*entity.Withdrawal, error) {
	if !operator.Admin {
		return nil, errs.ErrPermissionDenied
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.withdrawals.ListPending(ctx, limit)
}

package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
)

// Service is the single gateway to balance mutations. Every component moves
// money through Credit and Debit; both are atomic read-modify-write
// operations on the account row paired with an insert of the ledger row.
type Service struct {
	accounts     persistence.AccountRepository
	transactions persistence.TransactionRepository
	logger       coreport.Logger
}

// NewService creates a ledger service.
func NewService(
	accounts persistence.AccountRepository,
	transactions persistence.TransactionRepository,
	logger coreport.Logger,
) *Service {
	return &Service{
		accounts:     accounts,
		transactions: transactions,
		logger:       logger,
	}
}

// referenceRequired lists the types whose ledger rows must tie back to a
// reward event, withdrawal or external payment.
func referenceRequired(txType entity.TransactionType) bool {
	switch txType {
	case entity.TypeEarning, entity.TypeReferralCommission, entity.TypeWithdrawal, entity.TypeDeposit:
		return true
	}
	return false
}

func validateChange(accountID uint64, amountCents int64, txType entity.TransactionType, referenceID string) error {
	if accountID == 0 {
		return errs.ErrInvalidAccountID
	}
	if !txType.Valid() {
		return fmt.Errorf("%w: unknown transaction type %q", errs.ErrInvalidRequest, txType)
	}
	if err := entity.ValidateAmountCents(amountCents); err != nil {
		return err
	}
	if referenceID == "" && referenceRequired(txType) {
		return fmt.Errorf("%w: transaction type %q requires a reference id", errs.ErrInvalidRequest, txType)
	}
	return nil
}

// Credit applies a credit of the given type and returns the ledger row.
func (s *Service) Credit(
	ctx context.Context,
	accountID uint64,
	amountCents int64,
	txType entity.TransactionType,
	referenceID string,
) (*entity.Transaction, error) {
	if err := validateChange(accountID, amountCents, txType, referenceID); err != nil {
		return nil, err
	}

	txn, err := s.accounts.ApplyCredit(ctx, persistence.BalanceChange{
		AccountID:   accountID,
		AmountCents: amountCents,
		Type:        txType,
		ReferenceID: referenceID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Ledger credit applied", map[string]any{
		"account_id":     accountID,
		"amount":         entity.FormatCents(amountCents),
		"type":           string(txType),
		"reference_id":   referenceID,
		"result_balance": entity.FormatCents(txn.ResultBalance),
	})
	return txn, nil
}

// Debit applies a debit and returns the ledger row. Fails with
// ErrInsufficientFunds, and no mutation, if the balance would go negative.
func (s *Service) Debit(
	ctx context.Context,
	accountID uint64,
	amountCents int64,
	txType entity.TransactionType,
	referenceID string,
) (*entity.Transaction, error) {
	if err := validateChange(accountID, amountCents, txType, referenceID); err != nil {
		return nil, err
	}

	txn, err := s.accounts.ApplyDebit(ctx, persistence.BalanceChange{
		AccountID:   accountID,
		AmountCents: amountCents,
		Type:        txType,
		ReferenceID: referenceID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Ledger debit applied", map[string]any{
		"account_id":     accountID,
		"amount":         entity.FormatCents(amountCents),
		"type":           string(txType),
		"reference_id":   referenceID,
		"result_balance": entity.FormatCents(txn.ResultBalance),
	})
	return txn, nil
}

// GetAccount returns the balance snapshot for an account.
func (s *Service) GetAccount(ctx context.Context, accountID uint64) (*entity.Account, error) {
	if accountID == 0 {
		return nil, errs.ErrInvalidAccountID
	}
	return s.accounts.GetByID(ctx, accountID)
}

// History returns the most recent ledger rows for an account.
func (s *Service) History(ctx context.Context, accountID uint64, limit int) ([]*entity.Transaction, error) {
	if accountID == 0 {
		return nil, errs.ErrInvalidAccountID
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.transactions.ListByAccount(ctx, accountID, limit)
}

// ManualCredit applies an operator-initiated credit. Does not count toward
// lifetime earnings.
func (s *Service) ManualCredit(
	ctx context.Context,
	operator entity.Identity,
	accountID uint64,
	amountCents int64,
) (*entity.Transaction, error) {
	if !operator.Admin {
		return nil, errs.ErrPermissionDenied
	}
	return s.Credit(ctx, accountID, amountCents, entity.TypeManualCredit, "manual:"+uuid.NewString())
}

// AdCredit tops up the separate advertiser-credit bucket. Operator-only.
func (s *Service) AdCredit(
	ctx context.Context,
	operator entity.Identity,
	accountID uint64,
	amountCents int64,
) (*entity.Transaction, error) {
	if !operator.Admin {
		return nil, errs.ErrPermissionDenied
	}
	return s.Credit(ctx, accountID, amountCents, entity.TypeAdCredit, "adcredit:"+uuid.NewString())
}

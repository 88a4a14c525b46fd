package deposit

import (
	"context"
	"fmt"
	"strings"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
)

// PaymentConfirmation is the normalized event handed over by the excluded
// payment-processor webhook handler. The external transaction id is the
// dedup key.
type PaymentConfirmation struct {
	AccountID             uint64
	AmountCents           int64
	ExternalTransactionID string
	Currency              string
}

// Recorder idempotently applies confirmed external payments to balances.
// Deposits are not budget-limited and do not count as earnings.
type Recorder struct {
	accounts     persistence.AccountRepository
	transactions persistence.TransactionRepository
	logger       coreport.Logger
}

// NewRecorder creates a deposit recorder.
func NewRecorder(
	accounts persistence.AccountRepository,
	transactions persistence.TransactionRepository,
	logger coreport.Logger,
) *Recorder {
	return &Recorder{
		accounts:     accounts,
		transactions: transactions,
		logger:       logger,
	}
}

// referenceID builds the dedup ledger reference for a processor transaction.
func referenceID(externalTransactionID string) string {
	return "deposit:" + externalTransactionID
}

// Apply credits one payment confirmation exactly once. Re-applying the same
// external transaction id returns the previously recorded ledger row and
// applied=false instead of crediting again.
func (r *Recorder) Apply(ctx context.Context, conf PaymentConfirmation) (*entity.Transaction, bool, error) {
	if conf.AccountID == 0 {
		return nil, false, errs.ErrInvalidAccountID
	}
	if strings.TrimSpace(conf.ExternalTransactionID) == "" {
		return nil, false, fmt.Errorf("%w: external transaction id cannot be empty", errs.ErrInvalidRequest)
	}
	if err := entity.ValidateAmountCents(conf.AmountCents); err != nil {
		return nil, false, err
	}

	refID := referenceID(conf.ExternalTransactionID)

	// fast path: already applied
	if prior, err := r.transactions.GetByReferenceID(ctx, refID); err == nil {
		r.logger.Debug("Deposit already applied", map[string]any{
			"external_transaction_id": conf.ExternalTransactionID,
			"account_id":              conf.AccountID,
		})
		return prior, false, nil
	} else if !errs.IsNotFoundError(err) {
		return nil, false, err
	}

	txn, err := r.accounts.ApplyCredit(ctx, persistence.BalanceChange{
		AccountID:   conf.AccountID,
		AmountCents: conf.AmountCents,
		Type:        entity.TypeDeposit,
		ReferenceID: refID,
	})
	if err != nil {
		if errs.IsAlreadyProcessedError(err) {
			// a concurrent duplicate won the insert; return its row
			prior, getErr := r.transactions.GetByReferenceID(ctx, refID)
			if getErr != nil {
				return nil, false, getErr
			}
			return prior, false, nil
		}
		return nil, false, err
	}

	r.logger.Info("Deposit applied", map[string]any{
		"external_transaction_id": conf.ExternalTransactionID,
		"account_id":              conf.AccountID,
		"amount":                  entity.FormatCents(conf.AmountCents),
		"currency":                conf.Currency,
	})
	return txn, true, nil
}

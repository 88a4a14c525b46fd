package entity

import (
	"time"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
)

// WithdrawalStatus is the withdrawal lifecycle state.
type WithdrawalStatus string

// Withdrawal statuses. The model is escrow-style with two terminal states:
// the balance is deducted at submission, refunded on reject, and untouched
// on paid.
const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalRejected WithdrawalStatus = "rejected"
	WithdrawalPaid     WithdrawalStatus = "paid"
)

// Withdrawal is a user's request to move money out of the platform.
type Withdrawal struct {
	ID            string // uuid
	AccountID     uint64
	AmountCents   int64
	Status        WithdrawalStatus
	Method        string // payout rail, e.g. "paypal", "bank"
	Destination   string // payout address for the chosen method
	TransactionID uint64 // the escrow ledger row
	CreatedAt     time.Time
	ResolvedAt    *time.Time
}

// NewWithdrawal creates a pending withdrawal request.
func NewWithdrawal(
	id string,
	accountID uint64,
	amountCents int64,
	minimumCents int64,
	method, destination string,
	timeProvider coreport.TimeProvider,
) (*Withdrawal, error) {
	if accountID == 0 {
		return nil, errs.ErrInvalidAccountID
	}
	if err := ValidateAmountCents(amountCents); err != nil {
		return nil, err
	}
	if amountCents < minimumCents {
		return nil, errs.ErrBelowMinimum
	}
	if method == "" || destination == "" {
		return nil, errs.ErrInvalidRequest
	}
	return &Withdrawal{
		ID:          id,
		AccountID:   accountID,
		AmountCents: amountCents,
		Status:      WithdrawalPending,
		Method:      method,
		Destination: destination,
		CreatedAt:   timeProvider.Now(),
	}, nil
}

// Pending reports whether the withdrawal can still be resolved.
func (w *Withdrawal) Pending() bool {
	return w.Status == WithdrawalPending
}

// ReferenceID returns the ledger reference for the escrow transaction.
func (w *Withdrawal) ReferenceID() string {
	return "withdrawal:" + w.ID
}

// MarkRejected moves a pending withdrawal to its refunded terminal state.
func (w *Withdrawal) MarkRejected(timeProvider coreport.TimeProvider) error {
	if !w.Pending() {
		return errs.NewNotEligibleError(w.AccountID, "withdrawal is not pending")
	}
	now := timeProvider.Now()
	w.Status = WithdrawalRejected
	w.ResolvedAt = &now
	return nil
}

// MarkPaid moves a pending withdrawal to its paid terminal state. The money
// already left the balance at submission time.
func (w *Withdrawal) MarkPaid(timeProvider coreport.TimeProvider) error {
	if !w.Pending() {
		return errs.NewNotEligibleError(w.AccountID, "withdrawal is not pending")
	}
	now := timeProvider.Now()
	w.Status = WithdrawalPaid
	w.ResolvedAt = &now
	return nil
}

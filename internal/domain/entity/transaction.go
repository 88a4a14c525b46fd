package entity

import (
	"time"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
)

// TransactionType classifies a ledger entry. The sign of the movement is
// implied by the type: withdrawal debits, everything else credits.
type TransactionType string

// Transaction types
const (
	TypeEarning            TransactionType = "earning"
	TypeWithdrawal         TransactionType = "withdrawal"
	TypeDeposit            TransactionType = "deposit"
	TypeReferralCommission TransactionType = "referral_commission"
	TypeAdCredit           TransactionType = "ad_credit"
	TypeAdjustment         TransactionType = "adjustment"
	TypeManualCredit       TransactionType = "manual_credit"
)

// EarningLike reports whether credits of this type count toward lifetime
// earnings and the withdrawable balance. Deposits and operator adjustments
// are money in, not money earned.
func (t TransactionType) EarningLike() bool {
	return t == TypeEarning || t == TypeReferralCommission
}

// IsDebit reports whether the type moves money out of the balance.
func (t TransactionType) IsDebit() bool {
	return t == TypeWithdrawal
}

// Valid reports whether the type is one of the closed set.
func (t TransactionType) Valid() bool {
	switch t {
	case TypeEarning, TypeWithdrawal, TypeDeposit, TypeReferralCommission,
		TypeAdCredit, TypeAdjustment, TypeManualCredit:
		return true
	}
	return false
}

// TransactionStatus defines possible status values for a transaction
type TransactionStatus string

// Transaction statuses. Only withdrawal rows ever transition
// (pending -> completed or pending -> rejected); every other type is
// created already-terminal.
const (
	StatusPending   TransactionStatus = "pending"
	StatusCompleted TransactionStatus = "completed"
	StatusRejected  TransactionStatus = "rejected"
	StatusCancelled TransactionStatus = "cancelled"
)

// Transaction is one immutable row of the append-only ledger log.
type Transaction struct {
	ID            uint64
	AccountID     uint64
	Type          TransactionType
	AmountCents   int64 // always positive; sign implied by Type
	Status        TransactionStatus
	ReferenceID   string // foreign event id; unique when present, used for idempotency
	ResultBalance int64  // balance in cents after this entry was applied
	CreatedAt     time.Time
	ProcessedAt   *time.Time
}

// NewTransaction creates a ledger row with basic validation.
func NewTransaction(
	accountID uint64,
	txType TransactionType,
	amountCents int64,
	referenceID string,
	timeProvider coreport.TimeProvider,
) (*Transaction, error) {
	if accountID == 0 {
		return nil, errs.ErrInvalidAccountID
	}
	if !txType.Valid() {
		return nil, errs.ErrInvalidRequest
	}
	if err := ValidateAmountCents(amountCents); err != nil {
		return nil, err
	}

	status := StatusCompleted
	if txType == TypeWithdrawal {
		// withdrawals escrow the money and stay pending until an operator
		// resolves the request
		status = StatusPending
	}

	return &Transaction{
		AccountID:   accountID,
		Type:        txType,
		AmountCents: amountCents,
		Status:      status,
		ReferenceID: referenceID,
		CreatedAt:   timeProvider.Now(),
	}, nil
}

// MarkCompleted finalizes a pending withdrawal row once the payout is made.
func (t *Transaction) MarkCompleted(timeProvider coreport.TimeProvider) {
	now := timeProvider.Now()
	t.ProcessedAt = &now
	t.Status = StatusCompleted
}

// MarkRejected finalizes a pending withdrawal row after a refund.
func (t *Transaction) MarkRejected(timeProvider coreport.TimeProvider) {
	now := timeProvider.Now()
	t.ProcessedAt = &now
	t.Status = StatusRejected
}

// SignedAmount returns the movement with its type-implied sign applied.
func (t *Transaction) SignedAmount() int64 {
	if t.Type.IsDebit() {
		return -t.AmountCents
	}
	return t.AmountCents
}

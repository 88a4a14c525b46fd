package error

import (
	"errors"
	"fmt"
)

// Error codes for standardized API responses
const (
	// 4xxx - Business rejections
	CodeInsufficientFunds   = 4001
	CodeInvalidAmount       = 4002
	CodeInvalidAccountID    = 4003
	CodeAlreadyProcessed    = 4004
	CodeConstraintViolation = 4005
	CodeAmountOverflow      = 4006
	CodeBelowMinimum        = 4007
	CodeBudgetExhausted     = 4290
	CodeNotEligible         = 4291
	CodeAccountSuspended    = 4292
	CodeAccountNotFound     = 4040
	CodePermissionDenied    = 4030

	// 5xxx - Infrastructure failures
	CodeInternalServer   = 5000
	CodeStoreUnavailable = 5030
)

// Base error types
var (
	// ErrInsufficientFunds is returned when a debit would take a balance below zero
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned when an amount is zero, negative or malformed
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrAmountOverflow is returned when an amount exceeds the single-movement cap
	ErrAmountOverflow = errors.New("amount is too large")

	// ErrInvalidAccountID is returned when the account ID is not a positive integer
	ErrInvalidAccountID = errors.New("account ID must be positive")

	// ErrBelowMinimum is returned when a withdrawal is under the configured minimum
	ErrBelowMinimum = errors.New("amount below the minimum")

	// ErrAlreadyProcessed is returned when an idempotency key has already been resolved.
	// Callers should surface the previously recorded outcome instead of failing.
	ErrAlreadyProcessed = errors.New("event already processed")

	// ErrBudgetExhausted is returned when the daily or weekly reward cap is reached
	ErrBudgetExhausted = errors.New("reward budget exhausted")

	// ErrNotEligible is returned for cooldowns, per-period limits and wrong-state transitions
	ErrNotEligible = errors.New("not eligible")

	// ErrAccountSuspended is returned when the target account is suspended
	ErrAccountSuspended = errors.New("account is suspended")

	// ErrAccountNotFound is returned when the requested account doesn't exist
	ErrAccountNotFound = errors.New("account not found")

	// ErrTransactionNotFound is returned when the requested transaction doesn't exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrWithdrawalNotFound is returned when the requested withdrawal doesn't exist
	ErrWithdrawalNotFound = errors.New("withdrawal not found")

	// ErrSubscriptionNotFound is returned when the requested subscription doesn't exist
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrAdNotFound is returned when the requested ad doesn't exist
	ErrAdNotFound = errors.New("ad not found")

	// ErrSessionNotFound is returned when the requested ad session doesn't exist
	ErrSessionNotFound = errors.New("ad session not found")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied is returned when an operator action lacks the privileged flag
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")

	// ErrStoreUnavailable is returned for transient store failures. The whole
	// operation is safe to retry; idempotency keys prevent double effects.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInvalidAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrAmountOverflow):
		return CodeAmountOverflow
	case errors.Is(err, ErrInvalidAccountID):
		return CodeInvalidAccountID
	case errors.Is(err, ErrBelowMinimum):
		return CodeBelowMinimum
	case errors.Is(err, ErrAlreadyProcessed):
		return CodeAlreadyProcessed
	case errors.Is(err, ErrBudgetExhausted):
		return CodeBudgetExhausted
	case errors.Is(err, ErrNotEligible):
		return CodeNotEligible
	case errors.Is(err, ErrAccountSuspended):
		return CodeAccountSuspended
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrPermissionDenied):
		return CodePermissionDenied
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, ErrStoreUnavailable):
		return CodeStoreUnavailable
	default:
		return CodeInternalServer
	}
}

// InsufficientFundsError carries balance context for a rejected debit
type InsufficientFundsError struct {
	AccountID      uint64
	AmountCents    int64
	BalanceCents   int64
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for account %d: required %d cents, available %d cents",
		e.AccountID, e.AmountCents, e.BalanceCents)
}

// Is checks if the target error is an ErrInsufficientFunds
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientFundsError) LogFields() map[string]any {
	return map[string]any{
		"error_type":    "insufficient_funds",
		"account_id":    e.AccountID,
		"amount_cents":  e.AmountCents,
		"balance_cents": e.BalanceCents,
		"error_code":    CodeInsufficientFunds,
	}
}

// NewInsufficientFundsError creates a detailed insufficient funds error
func NewInsufficientFundsError(accountID uint64, amountCents, balanceCents int64) error {
	return &InsufficientFundsError{
		AccountID:    accountID,
		AmountCents:  amountCents,
		BalanceCents: balanceCents,
	}
}

// BudgetCap identifies which spend cap rejected a reward
type BudgetCap string

const (
	// BudgetCapDaily means the daily cap would be exceeded
	BudgetCapDaily BudgetCap = "daily"
	// BudgetCapWeekly means the weekly cap would be exceeded
	BudgetCapWeekly BudgetCap = "weekly"
)

// BudgetExhaustedError reports which cap denied the reward
type BudgetExhaustedError struct {
	Cap         BudgetCap
	AmountCents int64
	UsedCents   int64
	CapCents    int64
}

// Error implements the error interface
func (e *BudgetExhaustedError) Error() string {
	return fmt.Sprintf("%s reward budget reached: requested %d cents, used %d of %d",
		e.Cap, e.AmountCents, e.UsedCents, e.CapCents)
}

// Is checks if the target error is an ErrBudgetExhausted
func (e *BudgetExhaustedError) Is(target error) bool {
	return target == ErrBudgetExhausted
}

// LogFields returns a map of fields for structured logging
func (e *BudgetExhaustedError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "budget_exhausted",
		"cap":          string(e.Cap),
		"amount_cents": e.AmountCents,
		"used_cents":   e.UsedCents,
		"cap_cents":    e.CapCents,
		"error_code":   CodeBudgetExhausted,
	}
}

// NewBudgetExhaustedError creates a detailed budget exhaustion error
func NewBudgetExhaustedError(cap BudgetCap, amountCents, usedCents, capCents int64) error {
	return &BudgetExhaustedError{
		Cap:         cap,
		AmountCents: amountCents,
		UsedCents:   usedCents,
		CapCents:    capCents,
	}
}

// NotEligibleError carries the human-readable reason for an eligibility rejection
type NotEligibleError struct {
	AccountID uint64
	Reason    string
}

// Error implements the error interface
func (e *NotEligibleError) Error() string {
	return fmt.Sprintf("account %d not eligible: %s", e.AccountID, e.Reason)
}

// Is checks if the target error is an ErrNotEligible
func (e *NotEligibleError) Is(target error) bool {
	return target == ErrNotEligible
}

// LogFields returns a map of fields for structured logging
func (e *NotEligibleError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "not_eligible",
		"account_id": e.AccountID,
		"reason":     e.Reason,
		"error_code": CodeNotEligible,
	}
}

// NewNotEligibleError creates a detailed eligibility error
func NewNotEligibleError(accountID uint64, reason string) error {
	return &NotEligibleError{AccountID: accountID, Reason: reason}
}

// AlreadyProcessedError reports a duplicate idempotency key together with a
// reference to the previously recorded resolution
type AlreadyProcessedError struct {
	ReferenceID string
	AccountID   uint64
}

// Error implements the error interface
func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("duplicate event detected: reference %s for account %d", e.ReferenceID, e.AccountID)
}

// Is checks if the target error is an ErrAlreadyProcessed
func (e *AlreadyProcessedError) Is(target error) bool {
	return target == ErrAlreadyProcessed
}

// LogFields returns a map of fields for structured logging
func (e *AlreadyProcessedError) LogFields() map[string]any {
	return map[string]any{
		"error_type":   "already_processed",
		"reference_id": e.ReferenceID,
		"account_id":   e.AccountID,
		"error_code":   CodeAlreadyProcessed,
	}
}

// NewAlreadyProcessedError creates a detailed duplicate event error
func NewAlreadyProcessedError(referenceID string, accountID uint64) error {
	return &AlreadyProcessedError{ReferenceID: referenceID, AccountID: accountID}
}

// IsAlreadyProcessedError checks if the error is a duplicate event error
func IsAlreadyProcessedError(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed)
}

// IsInsufficientFundsError checks if the error is related to insufficient funds
func IsInsufficientFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsBudgetExhaustedError checks if the error is a budget cap rejection
func IsBudgetExhaustedError(err error) bool {
	return errors.Is(err, ErrBudgetExhausted)
}

// IsNotEligibleError checks if the error is an eligibility rejection
func IsNotEligibleError(err error) bool {
	return errors.Is(err, ErrNotEligible)
}

// IsStoreUnavailableError checks if the error is a transient store failure.
// These are safe to retry from scratch.
func IsStoreUnavailableError(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrWithdrawalNotFound) ||
		errors.Is(err, ErrSubscriptionNotFound) ||
		errors.Is(err, ErrAdNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsBusinessRejection reports whether the error is a deliberate business
// decision rather than an infrastructure failure. Clients must not retry
// business rejections.
func IsBusinessRejection(err error) bool {
	return IsInsufficientFundsError(err) ||
		IsBudgetExhaustedError(err) ||
		IsNotEligibleError(err) ||
		IsAlreadyProcessedError(err) ||
		errors.Is(err, ErrBelowMinimum) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAccountSuspended)
}

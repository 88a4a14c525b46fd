package database

import (
	"errors"
	"fmt"
	"strings"

	domainErr "github.com/garmonpay/reward-ledger/internal/domain/error"
	"gorm.io/gorm"
)

// EntityType represents the type of entity for errors mapping
type EntityType string

const (
	// EntityTypeAccount represents the account entity
	EntityTypeAccount EntityType = "account"
	// EntityTypeTransaction represents the transaction entity
	EntityTypeTransaction EntityType = "transaction"
	// EntityTypeWithdrawal represents the withdrawal entity
	EntityTypeWithdrawal EntityType = "withdrawal"
	// EntityTypeSubscription represents the subscription entity
	EntityTypeSubscription EntityType = "subscription"
)

// ErrorMapper maps database errors to domain errors
type ErrorMapper struct{}

// NewErrorMapper creates a new ErrorMapper
func NewErrorMapper() *ErrorMapper {
	return &ErrorMapper{}
}

// MapError maps a database error to a domain error
func (m *ErrorMapper) MapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	// Check for common GORM errors
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainErr.ErrNotFound
	}

	// Check for PostgreSQL specific errors
	errMsg := strings.ToLower(err.Error())

	switch {
	// Transaction and locking errors
	case strings.Contains(errMsg, "deadlock") ||
		strings.Contains(errMsg, "serialization") ||
		strings.Contains(errMsg, "lock timeout"):
		return domainErr.ErrStoreUnavailable

	// Duplicate key errors
	case strings.Contains(errMsg, "duplicate key") ||
		strings.Contains(errMsg, "unique constraint"):
		return domainErr.ErrConstraintViolation

	// Constraint violations
	case strings.Contains(errMsg, "check constraint") ||
		strings.Contains(errMsg, "foreign key constraint"):
		return domainErr.ErrConstraintViolation

	// Connection issues
	case strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "no connection") ||
		strings.Contains(errMsg, "connection reset"):
		return domainErr.ErrStoreUnavailable

	// Timeout errors
	case strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "deadline exceeded"):
		return fmt.Errorf("%w: %s operation timed out", domainErr.ErrStoreUnavailable, operation)

	// Default error
	default:
		return domainErr.ErrInternalServer
	}
}

// MapEntityNotFoundError maps database errors to specific entity not found errors
func (m *ErrorMapper) MapEntityNotFoundError(err error, entityType EntityType) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		switch entityType {
		case EntityTypeAccount:
			return domainErr.ErrAccountNotFound
		case EntityTypeTransaction:
			return domainErr.ErrTransactionNotFound
		case EntityTypeWithdrawal:
			return domainErr.ErrWithdrawalNotFound
		case EntityTypeSubscription:
			return domainErr.ErrSubscriptionNotFound
		default:
			return domainErr.ErrNotFound
		}
	}

	return m.MapError(err, string(entityType))
}

// MapAccountNotFoundError maps database errors to account not found errors
func (m *ErrorMapper) MapAccountNotFoundError(err error) error {
	return m.MapEntityNotFoundError(err, EntityTypeAccount)
}

// MapTransactionNotFoundError maps database errors to transaction not found errors
func (m *ErrorMapper) MapTransactionNotFoundError(err error) error {
	return m.MapEntityNotFoundError(err, EntityTypeTransaction)
}

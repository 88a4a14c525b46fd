package handler

import (
	"errors"
	"net/http"
	"strconv"

	domainerr "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// httpStatus maps domain errors to HTTP status codes
func httpStatus(err error) int {
	switch {
	case domainerr.IsNotFoundError(err):
		return http.StatusNotFound
	case errors.Is(err, domainerr.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, domainerr.ErrInvalidRequest),
		errors.Is(err, domainerr.ErrInvalidAccountID),
		errors.Is(err, domainerr.ErrInvalidAmount),
		errors.Is(err, domainerr.ErrAmountOverflow),
		errors.Is(err, domainerr.ErrBelowMinimum):
		return http.StatusBadRequest
	case domainerr.IsInsufficientFundsError(err),
		domainerr.IsNotEligibleError(err),
		errors.Is(err, domainerr.ErrAccountSuspended):
		return http.StatusUnprocessableEntity
	case domainerr.IsAlreadyProcessedError(err),
		errors.Is(err, domainerr.ErrConstraintViolation):
		return http.StatusConflict
	case domainerr.IsBudgetExhaustedError(err):
		return http.StatusTooManyRequests
	case domainerr.IsStoreUnavailableError(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a standardized error response. Expected business
// rejections are not logged as errors; everything else is.
func respondError(c *gin.Context, logger coreport.Logger, err error) {
	status := httpStatus(err)

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", map[string]any{
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
			"error":  err.Error(),
		})
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}

	c.JSON(status, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(err),
		Message: message,
	})
}

// parseIntQuery reads an integer query parameter, falling back on the
// default when absent or malformed
func parseIntQuery(c *gin.Context, name string, defaultVal int) int {
	raw := c.Query(name)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		return defaultVal
	}
	return val
}

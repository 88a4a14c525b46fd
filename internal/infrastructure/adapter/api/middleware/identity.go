package middleware

import (
	"net/http"
	"strconv"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	domainerr "github.com/garmonpay/reward-ledger/internal/domain/error"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// identityKey is the gin context key the caller identity is stored under
const identityKey = "identity"

// Identity extracts the caller identity from the trusted gateway headers.
// Authentication happens upstream; these headers are set by the gateway
// after it has verified the caller.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountIDHeader := c.GetHeader("X-Account-ID")
		if accountIDHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(domainerr.ErrPermissionDenied),
				Message: "Missing required header: X-Account-ID",
			})
			return
		}

		accountID, err := strconv.ParseUint(accountIDHeader, 10, 64)
		if err != nil || accountID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(domainerr.ErrInvalidAccountID),
				Message: "Invalid X-Account-ID header",
			})
			return
		}

		c.Set(identityKey, entity.Identity{
			AccountID: accountID,
			Admin:     c.GetHeader("X-Admin") == "true",
		})

		c.Next()
	}
}

// RequireAdmin aborts requests whose identity is not an operator
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !CallerIdentity(c).Admin {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(domainerr.ErrPermissionDenied),
				Message: "Operator access required",
			})
			return
		}
		c.Next()
	}
}

// CallerIdentity returns the identity stored by the Identity middleware
func CallerIdentity(c *gin.Context) entity.Identity {
	if v, ok := c.Get(identityKey); ok {
		if id, ok := v.(entity.Identity); ok {
			return id
		}
	}
	return entity.Identity{}
}

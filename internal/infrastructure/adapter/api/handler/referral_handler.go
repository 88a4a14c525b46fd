package handler

import (
	"net/http"

	domainerr "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	referralUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/referral"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/metrics"
	"github.com/gin-gonic/gin"
)

// ReferralHandler handles referral commission HTTP requests. All routes are
// operator-only; the subscription system calls them server to server.
type ReferralHandler struct {
	engine *referralUseCase.Engine
	logger coreport.Logger
}

// NewReferralHandler creates a new referral handler instance
func NewReferralHandler(engine *referralUseCase.Engine, logger coreport.Logger) *ReferralHandler {
	return &ReferralHandler{
		engine: engine,
		logger: logger,
	}
}

// Enroll handles the POST /admin/referrals endpoint
func (h *ReferralHandler) Enroll(c *gin.Context) {
	var req dto.EnrollReferralRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	commission, err := h.engine.Enroll(c.Request.Context(), req.ReferrerID, req.SubscriptionID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.CommissionResponse{
		ID:                 commission.ID,
		ReferrerID:         commission.ReferrerID,
		ReferredID:         commission.ReferredID,
		SubscriptionID:     commission.SubscriptionID,
		Tier:               commission.Tier,
		MonthlyAmountCents: commission.MonthlyAmountCents,
		Status:             string(commission.Status),
	})
}

// CancelSubscription handles the POST /admin/subscriptions/:subscriptionId/cancel endpoint
func (h *ReferralHandler) CancelSubscription(c *gin.Context) {
	subscriptionID, ok := parseUint64Param(c, "subscriptionId")
	if !ok {
		return
	}

	if err := h.engine.CancelSubscription(c.Request.Context(), subscriptionID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RunBilling handles the POST /admin/referrals/run endpoint. The scheduler
// runs the same operation on a cron; this endpoint exists for manual
// catch-up runs.
func (h *ReferralHandler) RunBilling(c *gin.Context) {
	summary, err := h.engine.ProcessAllDue(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	metrics.CommissionCyclesPaid(summary.CommissionsPaid)

	c.JSON(http.StatusOK, dto.BillingRunResponse{
		SubscriptionsProcessed: summary.SubscriptionsProcessed,
		CommissionsPaid:        summary.CommissionsPaid,
		TotalCentsPaid:         summary.TotalCentsPaid,
		Failures:               summary.Failures,
	})
}

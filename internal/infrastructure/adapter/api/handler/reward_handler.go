package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	domainerr "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	rewardUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/reward"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/metrics"
	"github.com/gin-gonic/gin"
)

// RewardHandler handles reward-related HTTP requests
type RewardHandler struct {
	issuer *rewardUseCase.Issuer
	logger coreport.Logger
}

// NewRewardHandler creates a new reward handler instance
func NewRewardHandler(issuer *rewardUseCase.Issuer, logger coreport.Logger) *RewardHandler {
	return &RewardHandler{
		issuer: issuer,
		logger: logger,
	}
}

// Spin handles the POST /rewards/spin endpoint
func (h *RewardHandler) Spin(c *gin.Context) {
	var req dto.SpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	outcome, err := h.issuer.Spin(c.Request.Context(), middleware.CallerIdentity(c), req.AttemptID)
	h.respondOutcome(c, outcome, err)
}

// OpenMysteryBox handles the POST /rewards/mystery-box endpoint
func (h *RewardHandler) OpenMysteryBox(c *gin.Context) {
	var req dto.MysteryBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	outcome, err := h.issuer.OpenMysteryBox(c.Request.Context(), middleware.CallerIdentity(c), req.AttemptID)
	h.respondOutcome(c, outcome, err)
}

// CompleteMission handles the POST /rewards/mission endpoint
func (h *RewardHandler) CompleteMission(c *gin.Context) {
	var req dto.MissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	outcome, err := h.issuer.CompleteMission(c.Request.Context(), middleware.CallerIdentity(c), req.MissionID)
	h.respondOutcome(c, outcome, err)
}

// ClaimStreak handles the POST /rewards/streak endpoint
func (h *RewardHandler) ClaimStreak(c *gin.Context) {
	outcome, err := h.issuer.ClaimStreak(c.Request.Context(), middleware.CallerIdentity(c))
	h.respondOutcome(c, outcome, err)
}

// ListAds handles the GET /ads endpoint
func (h *RewardHandler) ListAds(c *gin.Context) {
	ads, err := h.issuer.ListActiveAds(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	responses := make([]dto.AdResponse, 0, len(ads))
	for _, ad := range ads {
		responses = append(responses, dto.AdResponse{
			ID:              ad.ID,
			Title:           ad.Title,
			RewardCents:     ad.RewardCents,
			RequiredSeconds: ad.RequiredSeconds,
			CooldownSeconds: ad.CooldownSeconds,
		})
	}
	c.JSON(http.StatusOK, responses)
}

// StartAdSession handles the POST /ads/sessions endpoint
func (h *RewardHandler) StartAdSession(c *gin.Context) {
	var req dto.StartAdSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	session, err := h.issuer.StartSession(c.Request.Context(), middleware.CallerIdentity(c), req.AdID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AdSessionResponse{
		SessionID:       session.ID,
		AdID:            session.AdID,
		RewardCents:     session.RewardCents,
		RequiredSeconds: session.RequiredSeconds,
		StartedAt:       session.StartedAt.UTC().Format("2006-01-02T15:04:05Z"),
	})
}

// CompleteAdSession handles the POST /ads/sessions/:sessionId/complete endpoint
func (h *RewardHandler) CompleteAdSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	outcome, err := h.issuer.CompleteSession(c.Request.Context(), middleware.CallerIdentity(c), sessionID)
	h.respondOutcome(c, outcome, err)
}

// respondOutcome writes an outcome response, mapping a replayed duplicate to
// the same shape as the first resolution
func (h *RewardHandler) respondOutcome(c *gin.Context, outcome *rewardUseCase.Outcome, err error) {
	if err != nil {
		var budgetErr *domainerr.BudgetExhaustedError
		if errors.As(err, &budgetErr) {
			metrics.BudgetDenied(string(budgetErr.Cap))
		}
		respondError(c, h.logger, err)
		return
	}

	metrics.RewardIssued(string(outcome.Source), outcome.Duplicate, outcome.AmountCents)

	c.JSON(http.StatusOK, dto.RewardResponse{
		Source:      string(outcome.Source),
		AmountCents: outcome.AmountCents,
		Amount:      entity.FormatCents(outcome.AmountCents),
		Label:       outcome.Label,
		Duplicate:   outcome.Duplicate,
		StreakDays:  outcome.StreakDays,
	})
}

// parseUint64Param reads an unsigned integer path parameter
func parseUint64Param(c *gin.Context, name string) (uint64, bool) {
	val, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || val == 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid " + name + " parameter",
		})
		return 0, false
	}
	return val, true
}

package handler

import (
	"net/http"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	domainerr "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	withdrawalUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/withdrawal"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/metrics"
	"github.com/gin-gonic/gin"
)

// WithdrawalHandler handles withdrawal-related HTTP requests
type WithdrawalHandler struct {
	withdrawalService *withdrawalUseCase.Service
	logger            coreport.Logger
}

// NewWithdrawalHandler creates a new withdrawal handler instance
func NewWithdrawalHandler(withdrawalService *withdrawalUseCase.Service, logger coreport.Logger) *WithdrawalHandler {
	return &WithdrawalHandler{
		withdrawalService: withdrawalService,
		logger:            logger,
	}
}

// Submit handles the POST /withdrawals endpoint
func (h *WithdrawalHandler) Submit(c *gin.Context) {
	var req dto.WithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	w, err := h.withdrawalService.Submit(c.Request.Context(), middleware.CallerIdentity(c), req.AmountCents, req.Method, req.Destination)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	metrics.WithdrawalTransition(string(w.Status))
	c.JSON(http.StatusCreated, toWithdrawalResponse(w))
}

// Get handles the GET /withdrawals/:withdrawalId endpoint
func (h *WithdrawalHandler) Get(c *gin.Context) {
	w, err := h.withdrawalService.Get(c.Request.Context(), middleware.CallerIdentity(c), c.Param("withdrawalId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toWithdrawalResponse(w))
}

// ListPending handles the GET /admin/withdrawals endpoint
func (h *WithdrawalHandler) ListPending(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 0)

	withdrawals, err := h.withdrawalService.ListPending(c.Request.Context(), middleware.CallerIdentity(c), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	responses := make([]dto.WithdrawalResponse, 0, len(withdrawals))
	for _, w := range withdrawals {
		responses = append(responses, toWithdrawalResponse(w))
	}
	c.JSON(http.StatusOK, dto.WithdrawalListResponse{Withdrawals: responses})
}

// Reject handles the POST /admin/withdrawals/:withdrawalId/reject endpoint
func (h *WithdrawalHandler) Reject(c *gin.Context) {
	withdrawalID := c.Param("withdrawalId")
	if err := h.withdrawalService.Reject(c.Request.Context(), middleware.CallerIdentity(c), withdrawalID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	metrics.WithdrawalTransition(string(entity.WithdrawalRejected))

	w, err := h.withdrawalService.Get(c.Request.Context(), middleware.CallerIdentity(c), withdrawalID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toWithdrawalResponse(w))
}

// MarkPaid handles the POST /admin/withdrawals/:withdrawalId/pay endpoint
func (h *WithdrawalHandler) MarkPaid(c *gin.Context) {
	withdrawalID := c.Param("withdrawalId")
	if err := h.withdrawalService.MarkPaid(c.Request.Context(), middleware.CallerIdentity(c), withdrawalID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	metrics.WithdrawalTransition(string(entity.WithdrawalPaid))

	w, err := h.withdrawalService.Get(c.Request.Context(), middleware.CallerIdentity(c), withdrawalID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toWithdrawalResponse(w))
}

func toWithdrawalResponse(w *entity.Withdrawal) dto.WithdrawalResponse {
	resp := dto.WithdrawalResponse{
		ID:          w.ID,
		AccountID:   w.AccountID,
		AmountCents: w.AmountCents,
		Amount:      entity.FormatCents(w.AmountCents),
		Status:      string(w.Status),
		Method:      w.Method,
		Destination: w.Destination,
		CreatedAt:   w.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
	if w.ResolvedAt != nil {
		resp.ResolvedAt = w.ResolvedAt.UTC().Format("2006-01-02T15:04:05Z")
	}
	return resp
}

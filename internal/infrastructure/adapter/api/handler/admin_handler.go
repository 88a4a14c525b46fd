package handler

import (
	"net/http"

	domainerr "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	budgetUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/budget"
	ledgerUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/ledger"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles operator-only HTTP requests
type AdminHandler struct {
	governor      *budgetUseCase.Governor
	ledgerService *ledgerUseCase.Service
	logger        coreport.Logger
}

// NewAdminHandler creates a new admin handler instance
func NewAdminHandler(governor *budgetUseCase.Governor, ledgerService *ledgerUseCase.Service, logger coreport.Logger) *AdminHandler {
	return &AdminHandler{
		governor:      governor,
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// GetBudget handles the GET /admin/budget endpoint
func (h *AdminHandler) GetBudget(c *gin.Context) {
	budget, err := h.governor.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.BudgetResponse{
		DailyCapCents:   budget.DailyCapCents,
		WeeklyCapCents:  budget.WeeklyCapCents,
		DailyUsedCents:  budget.DailyUsedCents,
		WeeklyUsedCents: budget.WeeklyUsedCents,
		DailyResetDate:  budget.DailyResetDate.Format("2006-01-02"),
		WeekStartDate:   budget.WeekStartDate.Format("2006-01-02"),
	})
}

// UpdateBudgetCaps handles the PUT /admin/budget endpoint
func (h *AdminHandler) UpdateBudgetCaps(c *gin.Context) {
	var req dto.BudgetCapsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	if err := h.governor.UpdateCaps(c.Request.Context(), middleware.CallerIdentity(c), req.DailyCapCents, req.WeeklyCapCents); err != nil {
		respondError(c, h.logger, err)
		return
	}

	h.GetBudget(c)
}

// ManualCredit handles the POST /admin/credits endpoint
func (h *AdminHandler) ManualCredit(c *gin.Context) {
	var req dto.ManualCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	txn, err := h.ledgerService.ManualCredit(c.Request.Context(), middleware.CallerIdentity(c), req.AccountID, req.AmountCents)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResponse(txn))
}

// AdCredit handles the POST /admin/ad-credits endpoint
func (h *AdminHandler) AdCredit(c *gin.Context) {
	var req dto.ManualCreditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	txn, err := h.ledgerService.AdCredit(c.Request.Context(), middleware.CallerIdentity(c), req.AccountID, req.AmountCents)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, toTransactionResponse(txn))
}

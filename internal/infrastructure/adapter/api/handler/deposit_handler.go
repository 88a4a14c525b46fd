package handler

import (
	"net/http"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	domainerr "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	depositUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/deposit"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/metrics"
	"github.com/gin-gonic/gin"
)

// DepositHandler handles payment confirmation callbacks
type DepositHandler struct {
	recorder *depositUseCase.Recorder
	logger   coreport.Logger
}

// NewDepositHandler creates a new deposit handler instance
func NewDepositHandler(recorder *depositUseCase.Recorder, logger coreport.Logger) *DepositHandler {
	return &DepositHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// Record handles the POST /deposits endpoint. The payment processor retries
// confirmations, so replays of the same external transaction id return the
// original outcome with applied=false.
func (h *DepositHandler) Record(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Code:    domainerr.ErrorCode(domainerr.ErrInvalidRequest),
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	txn, applied, err := h.recorder.Apply(c.Request.Context(), depositUseCase.PaymentConfirmation{
		AccountID:             req.AccountID,
		AmountCents:           req.AmountCents,
		ExternalTransactionID: req.ExternalTransactionID,
		Currency:              req.Currency,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if applied {
		metrics.DepositRecorded()
	}

	c.JSON(http.StatusOK, dto.DepositResponse{
		AccountID:     req.AccountID,
		AmountCents:   txn.AmountCents,
		Applied:       applied,
		TransactionID: txn.ID,
		ResultBalance: entity.FormatCents(txn.ResultBalance),
	})
}

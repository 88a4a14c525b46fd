package handler

import (
	"net/http"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	ledgerUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/ledger"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/dto"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// AccountHandler handles account-related HTTP requests
type AccountHandler struct {
	ledgerService *ledgerUseCase.Service
	logger        coreport.Logger
}

// NewAccountHandler creates a new account handler instance
func NewAccountHandler(ledgerService *ledgerUseCase.Service, logger coreport.Logger) *AccountHandler {
	return &AccountHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// GetBalance handles the GET /account/balance endpoint
func (h *AccountHandler) GetBalance(c *gin.Context) {
	caller := middleware.CallerIdentity(c)

	account, err := h.ledgerService.GetAccount(c.Request.Context(), caller.AccountID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.BalanceResponse{
		AccountID:             account.ID,
		Balance:               entity.FormatCents(account.Balance()),
		BalanceCents:          account.Balance(),
		WithdrawableCents:     account.Withdrawable(),
		AdCreditCents:         account.AdCredit(),
		LifetimeEarningsCents: account.LifetimeEarnings(),
		StreakDays:            account.StreakDays,
	})
}

// GetHistory handles the GET /account/history endpoint
func (h *AccountHandler) GetHistory(c *gin.Context) {
	caller := middleware.CallerIdentity(c)
	limit := parseIntQuery(c, "limit", 0)

	transactions, err := h.ledgerService.History(c.Request.Context(), caller.AccountID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.HistoryResponse{
		AccountID:    caller.AccountID,
		Transactions: toTransactionResponses(transactions),
	})
}

// toTransactionResponses converts ledger rows to their API representation
func toTransactionResponses(transactions []*entity.Transaction) []dto.TransactionResponse {
	responses := make([]dto.TransactionResponse, 0, len(transactions))
	for _, txn := range transactions {
		responses = append(responses, toTransactionResponse(txn))
	}
	return responses
}

func toTransactionResponse(txn *entity.Transaction) dto.TransactionResponse {
	return dto.TransactionResponse{
		ID:            txn.ID,
		AccountID:     txn.AccountID,
		Type:          string(txn.Type),
		AmountCents:   txn.AmountCents,
		Amount:        entity.FormatCents(txn.AmountCents),
		Status:        string(txn.Status),
		ReferenceID:   txn.ReferenceID,
		ResultBalance: entity.FormatCents(txn.ResultBalance),
		CreatedAt:     txn.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

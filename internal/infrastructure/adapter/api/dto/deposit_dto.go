package dto

// DepositRequest represents a confirmed payment from the payment processor
type DepositRequest struct {
	AccountID             uint64 `json:"accountId" binding:"required"`
	AmountCents           int64  `json:"amountCents" binding:"required,gt=0"`
	ExternalTransactionID string `json:"externalTransactionId" binding:"required"`
	Currency              string `json:"currency"`
}

// DepositResponse represents the API response for a recorded deposit
type DepositResponse struct {
	AccountID     uint64 `json:"accountId"`
	AmountCents   int64  `json:"amountCents"`
	Applied       bool   `json:"applied"`
	TransactionID uint64 `json:"transactionId"`
	ResultBalance string `json:"resultBalance"`
}

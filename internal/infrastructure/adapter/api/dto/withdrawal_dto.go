package dto

// WithdrawalRequest represents the API request for submitting a withdrawal
type WithdrawalRequest struct {
	AmountCents int64  `json:"amountCents" binding:"required,gt=0"`
	Method      string `json:"method" binding:"required"`
	Destination string `json:"destination" binding:"required"`
}

// WithdrawalResponse represents a withdrawal request in API responses
type WithdrawalResponse struct {
	ID          string `json:"id"`
	AccountID   uint64 `json:"accountId"`
	AmountCents int64  `json:"amountCents"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	Method      string `json:"method"`
	Destination string `json:"destination"`
	CreatedAt   string `json:"createdAt"`
	ResolvedAt  string `json:"resolvedAt,omitempty"`
}

// WithdrawalListResponse represents the operator review queue
type WithdrawalListResponse struct {
	Withdrawals []WithdrawalResponse `json:"withdrawals"`
}

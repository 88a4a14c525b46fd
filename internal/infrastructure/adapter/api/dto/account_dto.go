package dto

// BalanceResponse represents the API response for an account's balances
type BalanceResponse struct {
	AccountID             uint64 `json:"accountId"`
	Balance               string `json:"balance"`
	BalanceCents          int64  `json:"balanceCents"`
	WithdrawableCents     int64  `json:"withdrawableCents"`
	AdCreditCents         int64  `json:"adCreditCents"`
	LifetimeEarningsCents int64  `json:"lifetimeEarningsCents"`
	StreakDays            int    `json:"streakDays"`
}

// TransactionResponse represents one ledger row in API responses
type TransactionResponse struct {
	ID            uint64 `json:"id"`
	AccountID     uint64 `json:"accountId"`
	Type          string `json:"type"`
	AmountCents   int64  `json:"amountCents"`
	Amount        string `json:"amount"`
	Status        string `json:"status"`
	ReferenceID   string `json:"referenceId"`
	ResultBalance string `json:"resultBalance"`
	CreatedAt     string `json:"createdAt"`
}

// HistoryResponse represents the API response for an account's ledger history
type HistoryResponse struct {
	AccountID    uint64                `json:"accountId"`
	Transactions []TransactionResponse `json:"transactions"`
}

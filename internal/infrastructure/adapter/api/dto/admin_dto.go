package dto

// BudgetCapsRequest represents the API request for replacing the budget caps
type BudgetCapsRequest struct {
	DailyCapCents  int64 `json:"dailyCapCents" binding:"required,gt=0"`
	WeeklyCapCents int64 `json:"weeklyCapCents" binding:"required,gt=0"`
}

// BudgetResponse represents the current budget state
type BudgetResponse struct {
	DailyCapCents   int64  `json:"dailyCapCents"`
	WeeklyCapCents  int64  `json:"weeklyCapCents"`
	DailyUsedCents  int64  `json:"dailyUsedCents"`
	WeeklyUsedCents int64  `json:"weeklyUsedCents"`
	DailyResetDate  string `json:"dailyResetDate"`
	WeekStartDate   string `json:"weekStartDate"`
}

// ManualCreditRequest represents an operator-initiated credit
type ManualCreditRequest struct {
	AccountID   uint64 `json:"accountId" binding:"required"`
	AmountCents int64  `json:"amountCents" binding:"required,gt=0"`
}

// EnrollReferralRequest represents the API request for enrolling a referral
type EnrollReferralRequest struct {
	ReferrerID     uint64 `json:"referrerId" binding:"required"`
	SubscriptionID uint64 `json:"subscriptionId" binding:"required"`
}

// CommissionResponse represents a referral commission
type CommissionResponse struct {
	ID                 uint64 `json:"id"`
	ReferrerID         uint64 `json:"referrerId"`
	ReferredID         uint64 `json:"referredId"`
	SubscriptionID     uint64 `json:"subscriptionId"`
	Tier               string `json:"tier"`
	MonthlyAmountCents int64  `json:"monthlyAmountCents"`
	Status             string `json:"status"`
}

// BillingRunResponse represents the summary of one billing run
type BillingRunResponse struct {
	SubscriptionsProcessed int      `json:"subscriptionsProcessed"`
	CommissionsPaid        int      `json:"commissionsPaid"`
	TotalCentsPaid         int64    `json:"totalCentsPaid"`
	Failures               []string `json:"failures,omitempty"`
}

package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reward_ledger_http_requests_total",
		Help: "Total number of HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reward_ledger_http_request_duration_seconds",
		Help:    "HTTP request latency by method and path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	rewardsIssuedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reward_ledger_rewards_issued_total",
		Help: "Reward events resolved, by source and whether the call was a replay.",
	}, []string{"source", "duplicate"})

	rewardCentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reward_ledger_reward_cents_total",
		Help: "Cents paid out through reward sources.",
	}, []string{"source"})

	budgetDenialsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reward_ledger_budget_denials_total",
		Help: "Reward requests denied by the budget governor, by exhausted cap.",
	}, []string{"cap"})

	withdrawalTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reward_ledger_withdrawal_transitions_total",
		Help: "Withdrawal lifecycle transitions by resulting status.",
	}, []string{"status"})

	depositsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reward_ledger_deposits_total",
		Help: "Payment confirmations applied to balances.",
	})

	commissionCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reward_ledger_commission_cycles_total",
		Help: "Referral commission cycles paid.",
	})
)

// RewardIssued records a resolved reward event
func RewardIssued(source string, duplicate bool, amountCents int64) {
	rewardsIssuedTotal.WithLabelValues(source, strconv.FormatBool(duplicate)).Inc()
	if !duplicate && amountCents > 0 {
		rewardCentsTotal.WithLabelValues(source).Add(float64(amountCents))
	}
}

// BudgetDenied records a budget governor denial
func BudgetDenied(cap string) {
	budgetDenialsTotal.WithLabelValues(cap).Inc()
}

// WithdrawalTransition records a withdrawal moving to the given status
func WithdrawalTransition(status string) {
	withdrawalTransitionsTotal.WithLabelValues(status).Inc()
}

// DepositRecorded records a newly applied payment confirmation
func DepositRecorded() {
	depositsTotal.Inc()
}

// CommissionCyclesPaid records paid commission cycles from a billing run
func CommissionCyclesPaid(count int) {
	commissionCyclesTotal.Add(float64(count))
}

// Handler returns the /metrics scrape endpoint
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// HTTPMiddleware observes request counts and latencies per route
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		// Use the route template, not the raw path, to keep cardinality low
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

package scheduler

import (
	"context"
	"time"

	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	referralUseCase "github.com/garmonpay/reward-ledger/internal/domain/usecase/referral"
	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/metrics"
	"github.com/robfig/cron/v3"
)

// runTimeout bounds a single billing sweep. Each subscription is processed in
// its own transaction, so a timeout only loses in-flight work.
const runTimeout = 10 * time.Minute

// BillingScheduler runs the referral commission sweep on a cron schedule.
// Missed cycles are caught up on the next run because the sweep processes
// every subscription whose billing date has passed, not just today's.
type BillingScheduler struct {
	cron   *cron.Cron
	engine *referralUseCase.Engine
	spec   string
	logger coreport.Logger
}

// NewBillingScheduler creates a scheduler with the given cron spec
func NewBillingScheduler(engine *referralUseCase.Engine, spec string, logger coreport.Logger) *BillingScheduler {
	return &BillingScheduler{
		cron:   cron.New(),
		engine: engine,
		spec:   spec,
		logger: logger,
	}
}

// Start registers the billing job and starts the cron loop
func (s *BillingScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Billing scheduler started", map[string]any{
		"schedule": s.spec,
	})
	return nil
}

// Stop halts the cron loop and waits for a running sweep to finish
func (s *BillingScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Billing scheduler stopped", nil)
}

func (s *BillingScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	summary, err := s.engine.ProcessAllDue(ctx)
	if err != nil {
		s.logger.Error("Billing sweep failed", map[string]any{
			"error": err.Error(),
		})
		return
	}

	metrics.CommissionCyclesPaid(summary.CommissionsPaid)
	s.logger.Info("Billing sweep completed", map[string]any{
		"subscriptions_processed": summary.SubscriptionsProcessed,
		"commissions_paid":        summary.CommissionsPaid,
		"total_cents_paid":        summary.TotalCentsPaid,
		"failures":                summary.Failures,
	})
}

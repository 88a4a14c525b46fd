package referral

import (
	"context"
	"fmt"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
)

// Summary reports one billing run.
type Summary struct {
	SubscriptionsProcessed int
	CommissionsPaid        int
	TotalCentsPaid         int64
	Failures               []string
}

// Engine pays referrers a monthly commission for every active subscription
// they referred. It runs as a recurring batch; each (commission, billing
// cycle) pair pays at most once, enforced by a unique ledger reference.
type Engine struct {
	uow           persistence.UnitOfWork
	subscriptions persistence.SubscriptionRepository
	commissions   persistence.CommissionRepository
	transactions  persistence.TransactionRepository
	ratePercent   int
	timeProvider  coreport.TimeProvider
	logger        coreport.Logger
}

// NewEngine creates a referral commission engine.
func NewEngine(
	uow persistence.UnitOfWork,
	subscriptions persistence.SubscriptionRepository,
	commissions persistence.CommissionRepository,
	transactions persistence.TransactionRepository,
	ratePercent int,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Engine {
	return &Engine{
		uow:           uow,
		subscriptions: subscriptions,
		commissions:   commissions,
		transactions:  transactions,
		ratePercent:   ratePercent,
		timeProvider:  timeProvider,
		logger:        logger,
	}
}

// ProcessAllDue advances every due active subscription one billing cycle and
// pays the referrer's commission for that cycle, exactly once. A single
// subscription's failure is recorded in the summary and does not abort the
// run.
func (e *Engine) ProcessAllDue(ctx context.Context) (*Summary, error) {
	now := e.timeProvider.Now()
	due, err := e.subscriptions.ListDue(ctx, now)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, sub := range due {
		paid, amount, err := e.processOne(ctx, sub)
		if err != nil {
			e.logger.Error("Billing cycle failed for subscription", map[string]any{
				"subscription_id": sub.ID,
				"error":           err.Error(),
			})
			summary.Failures = append(summary.Failures, fmt.Sprintf("subscription %d: %v", sub.ID, err))
			continue
		}
		summary.SubscriptionsProcessed++
		if paid {
			summary.CommissionsPaid++
			summary.TotalCentsPaid += amount
		}
	}

	e.logger.Info("Billing run finished", map[string]any{
		"due":              len(due),
		"processed":        summary.SubscriptionsProcessed,
		"commissions_paid": summary.CommissionsPaid,
		"total_cents_paid": summary.TotalCentsPaid,
		"failures":         len(summary.Failures),
	})
	return summary, nil
}

// processOne handles a single due subscription: advance the billing date,
// then pay the cycle's commission if an active commission row exists.
func (e *Engine) processOne(ctx context.Context, sub *entity.Subscription) (bool, int64, error) {
	cycle := entity.DateUTC(sub.NextBillingDate)
	next := cycle.AddDate(0, 1, 0)

	// conditional on the stored date still matching: a concurrent run that
	// already advanced this cycle makes this a no-op for us
	if err := e.subscriptions.AdvanceBillingDate(ctx, sub.ID, cycle, next); err != nil {
		if errs.IsNotEligibleError(err) {
			return false, 0, nil
		}
		return false, 0, err
	}

	commission, err := e.commissions.GetActiveBySubscription(ctx, sub.ID)
	if err != nil {
		if errs.IsNotFoundError(err) {
			// not a referred subscription, nothing to pay
			return false, 0, nil
		}
		return false, 0, err
	}

	refID := commission.CycleReferenceID(cycle)
	exists, err := e.transactions.ReferenceExists(ctx, refID)
	if err != nil {
		return false, 0, err
	}
	if exists {
		return false, 0, nil
	}

	txCtx, err := e.uow.Begin(ctx)
	if err != nil {
		return false, 0, err
	}

	if _, err := e.uow.GetAccountRepository(txCtx).ApplyCredit(txCtx, persistence.BalanceChange{
		AccountID:   commission.ReferrerID,
		AmountCents: commission.MonthlyAmountCents,
		Type:        entity.TypeReferralCommission,
		ReferenceID: refID,
	}); err != nil {
		_ = e.uow.Rollback(txCtx)
		if errs.IsAlreadyProcessedError(err) {
			// another run paid this cycle between our check and our insert
			return false, 0, nil
		}
		return false, 0, err
	}

	if err := e.uow.GetCommissionRepository(txCtx).RecordPaidCycle(txCtx, commission.ID, cycle); err != nil {
		_ = e.uow.Rollback(txCtx)
		return false, 0, err
	}

	if err := e.uow.Commit(txCtx); err != nil {
		return false, 0, err
	}

	e.logger.Info("Referral commission paid", map[string]any{
		"commission_id":   commission.ID,
		"subscription_id": sub.ID,
		"referrer_id":     commission.ReferrerID,
		"cycle":           cycle.Format("2006-01-02"),
		"amount_cents":    commission.MonthlyAmountCents,
	})
	return true, commission.MonthlyAmountCents, nil
}

// CancelSubscription marks a subscription cancelled and stops its linked
// commissions. Stopped commissions never pay again, even though the
// subscription's billing date may still read as due.
func (e *Engine) CancelSubscription(ctx context.Context, subscriptionID uint64) error {
	if _, err := e.subscriptions.GetByID(ctx, subscriptionID); err != nil {
		return err
	}

	txCtx, err := e.uow.Begin(ctx)
	if err != nil {
		return err
	}
	if err := e.uow.GetSubscriptionRepository(txCtx).SetStatus(txCtx, subscriptionID, entity.SubscriptionCancelled); err != nil {
		_ = e.uow.Rollback(txCtx)
		return err
	}
	if err := e.uow.GetCommissionRepository(txCtx).StopBySubscription(txCtx, subscriptionID); err != nil {
		_ = e.uow.Rollback(txCtx)
		return err
	}
	if err := e.uow.Commit(txCtx); err != nil {
		return err
	}

	e.logger.Info("Subscription cancelled, commissions stopped", map[string]any{
		"subscription_id": subscriptionID,
	})
	return nil
}

// Enroll creates the commission row for a referred subscription at the
// configured percentage of its monthly price.
func (e *Engine) Enroll(ctx context.Context, referrerID, subscriptionID uint64) (*entity.ReferralCommission, error) {
	sub, err := e.subscriptions.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.Active() {
		return nil, errs.NewNotEligibleError(referrerID, "subscription is not active")
	}

	commission, err := entity.NewReferralCommission(referrerID, sub, e.ratePercent)
	if err != nil {
		return nil, err
	}
	if err := e.commissions.Create(ctx, commission); err != nil {
		return nil, err
	}

	e.logger.Info("Referral commission enrolled", map[string]any{
		"commission_id":   commission.ID,
		"referrer_id":     referrerID,
		"subscription_id": subscriptionID,
		"monthly_cents":   commission.MonthlyAmountCents,
	})
	return commission, nil
}

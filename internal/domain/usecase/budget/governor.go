package budget

import (
	"context"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
)

// Governor enforces the platform-wide daily and weekly spend caps on
// discretionary rewards. Check and consume are deliberately two separate
// store operations: CheckAndReserve is called before paying, Commit after
// the payout succeeded. Under concurrent requests near a cap boundary the
// budget can be slightly over-spent; collapsing both into one conditional
// update would strengthen this (see DESIGN.md).
type Governor struct {
	repo         persistence.BudgetRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewGovernor creates a budget governor.
func NewGovernor(
	repo persistence.BudgetRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Governor {
	return &Governor{
		repo:         repo,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// CheckAndReserve decides whether an amount fits under both caps. Stale
// counters are reset first: the daily counter when the marker is before
// today (UTC), the weekly counter when the marker is before the most recent
// Sunday. A denial carries which cap was exhausted.
func (g *Governor) CheckAndReserve(ctx context.Context, amountCents int64) (entity.BudgetDecision, error) {
	if err := entity.ValidateAmountCents(amountCents); err != nil {
		return entity.BudgetDecision{}, err
	}

	b, err := g.repo.Get(ctx)
	if err != nil {
		return entity.BudgetDecision{}, err
	}

	now := g.timeProvider.Now()
	if b.ApplyResets(now) {
		g.logger.Info("Budget counters reset", map[string]any{
			"daily_reset_date": b.DailyResetDate.Format("2006-01-02"),
			"week_start_date":  b.WeekStartDate.Format("2006-01-02"),
		})
		if err := g.repo.Save(ctx, b); err != nil {
			return entity.BudgetDecision{}, err
		}
	}

	decision := b.Evaluate(amountCents)
	if !decision.Allowed {
		used, cap := b.DailyUsedCents, b.DailyCapCents
		if decision.Reason == errs.BudgetCapWeekly {
			used, cap = b.WeeklyUsedCents, b.WeeklyCapCents
		}
		g.logger.Warn("Reward denied by budget cap", map[string]any{
			"cap":          string(decision.Reason),
			"amount_cents": amountCents,
			"used_cents":   used,
			"cap_cents":    cap,
		})
	}
	return decision, nil
}

// Commit consumes budget for a payout that has actually been credited. It
// increments both counters unconditionally; callers must only commit after
// CheckAndReserve allowed the amount.
func (g *Governor) Commit(ctx context.Context, source entity.RewardSource, amountCents int64, accountID uint64) error {
	if err := g.repo.AddUsage(ctx, amountCents); err != nil {
		return err
	}
	g.logger.Info("Budget consumed", map[string]any{
		"source":       string(source),
		"amount_cents": amountCents,
		"account_id":   accountID,
	})
	return nil
}

// Denied builds the typed rejection for a deny decision.
func (g *Governor) Denied(ctx context.Context, decision entity.BudgetDecision, amountCents int64) error {
	b, err := g.repo.Get(ctx)
	if err != nil {
		return errs.NewBudgetExhaustedError(decision.Reason, amountCents, 0, 0)
	}
	if decision.Reason == errs.BudgetCapWeekly {
		return errs.NewBudgetExhaustedError(errs.BudgetCapWeekly, amountCents, b.WeeklyUsedCents, b.WeeklyCapCents)
	}
	return errs.NewBudgetExhaustedError(errs.BudgetCapDaily, amountCents, b.DailyUsedCents, b.DailyCapCents)
}

// UpdateCaps replaces the cap values. Operator-only.
func (g *Governor) UpdateCaps(ctx context.Context, operator entity.Identity, dailyCapCents, weeklyCapCents int64) error {
	if !operator.Admin {
		return errs.ErrPermissionDenied
	}
	if dailyCapCents < 0 || weeklyCapCents < 0 {
		return errs.ErrInvalidAmount
	}
	if err := g.repo.UpdateCaps(ctx, dailyCapCents, weeklyCapCents); err != nil {
		return err
	}
	g.logger.Info("Budget caps updated", map[string]any{
		"daily_cap_cents":  dailyCapCents,
		"weekly_cap_cents": weeklyCapCents,
		"operator":         operator.AccountID,
	})
	return nil
}

// Snapshot returns the current budget row with resets applied, for admin
// inspection.
func (g *Governor) Snapshot(ctx context.Context) (*entity.GlobalBudget, error) {
	b, err := g.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if b.ApplyResets(g.timeProvider.Now()) {
		if err := g.repo.Save(ctx, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

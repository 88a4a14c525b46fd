package entity

import (
	"time"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
)

// GlobalBudget is the singleton platform-wide spend cap record. It lives as
// a single durable row shared by every service instance; this struct only
// holds the arithmetic. "used <= cap" is enforced by the governor's
// check-then-consume logic, not by a store constraint.
type GlobalBudget struct {
	DailyCapCents   int64
	WeeklyCapCents  int64
	DailyUsedCents  int64
	WeeklyUsedCents int64
	DailyResetDate  time.Time // UTC date the daily counter was last zeroed for
	WeekStartDate   time.Time // start-of-week (Sunday, UTC) the weekly counter covers
	UpdatedAt       time.Time
}

// BudgetDecision is the outcome of a cap check.
type BudgetDecision struct {
	Allowed bool
	Reason  errs.BudgetCap // set when denied
}

// ApplyResets zeroes stale counters based on the current time. The daily
// counter resets when the stored marker is before today (UTC); the weekly
// counter independently resets when the marker is before the most recent
// Sunday. Returns true if either counter was reset so callers know to
// persist.
func (b *GlobalBudget) ApplyResets(now time.Time) bool {
	changed := false
	today := DateUTC(now)
	if b.DailyResetDate.Before(today) {
		b.DailyUsedCents = 0
		b.DailyResetDate = today
		changed = true
	}
	weekStart := WeekStartUTC(now)
	if b.WeekStartDate.Before(weekStart) {
		b.WeeklyUsedCents = 0
		b.WeekStartDate = weekStart
		changed = true
	}
	return changed
}

// Evaluate checks whether an amount fits under both caps. Resets must
// already have been applied.
func (b *GlobalBudget) Evaluate(amountCents int64) BudgetDecision {
	if b.DailyUsedCents+amountCents > b.DailyCapCents {
		return BudgetDecision{Allowed: false, Reason: errs.BudgetCapDaily}
	}
	if b.WeeklyUsedCents+amountCents > b.WeeklyCapCents {
		return BudgetDecision{Allowed: false, Reason: errs.BudgetCapWeekly}
	}
	return BudgetDecision{Allowed: true}
}

// Consume increments both counters unconditionally. Callers must only do
// this after Evaluate allowed the amount and the payout actually happened.
func (b *GlobalBudget) Consume(amountCents int64) {
	b.DailyUsedCents += amountCents
	b.WeeklyUsedCents += amountCents
}

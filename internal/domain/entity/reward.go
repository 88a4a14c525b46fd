package entity

import (
	"fmt"
	"time"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
)

// RewardSource is the closed set of payable event sources.
type RewardSource string

// Reward sources. Ad views are advertiser-funded and bypass the budget
// governor; the rest are platform-funded and budget-gated.
const (
	SourceAdView     RewardSource = "ad_view"
	SourceSpinWheel  RewardSource = "spin_wheel"
	SourceMysteryBox RewardSource = "mystery_box"
	SourceMission    RewardSource = "mission"
	SourceStreak     RewardSource = "streak"
)

// Valid reports whether the source is one of the closed set.
func (s RewardSource) Valid() bool {
	switch s {
	case SourceAdView, SourceSpinWheel, SourceMysteryBox, SourceMission, SourceStreak:
		return true
	}
	return false
}

// BudgetGated reports whether payouts from this source consume the global
// reward budget.
func (s RewardSource) BudgetGated() bool {
	return s != SourceAdView
}

// RewardEvent is the idempotency record binding (source, natural key) to a
// resolved payout. Its existence is proof the event was resolved, paid or
// not; the unique constraint on (source, natural key) is what makes retries
// safe.
type RewardEvent struct {
	ID          uint64
	AccountID   uint64
	Source      RewardSource
	NaturalKey  string
	AmountCents int64 // 0 means the draw resolved to no reward
	CreatedAt   time.Time
}

// NewRewardEvent creates a reward event with basic validation.
func NewRewardEvent(
	accountID uint64,
	source RewardSource,
	naturalKey string,
	amountCents int64,
	timeProvider coreport.TimeProvider,
) (*RewardEvent, error) {
	if accountID == 0 {
		return nil, errs.ErrInvalidAccountID
	}
	if !source.Valid() {
		return nil, fmt.Errorf("%w: unknown reward source %q", errs.ErrInvalidRequest, source)
	}
	if naturalKey == "" {
		return nil, fmt.Errorf("%w: natural key cannot be empty", errs.ErrInvalidRequest)
	}
	if amountCents < 0 {
		return nil, errs.ErrInvalidAmount
	}
	return &RewardEvent{
		AccountID:   accountID,
		Source:      source,
		NaturalKey:  naturalKey,
		AmountCents: amountCents,
		CreatedAt:   timeProvider.Now(),
	}, nil
}

// ReferenceID returns the ledger reference that ties a transaction back to
// this event.
func (e *RewardEvent) ReferenceID() string {
	return RewardReferenceID(e.Source, e.NaturalKey)
}

// RewardReferenceID builds the ledger reference for a (source, natural key)
// pair.
func RewardReferenceID(source RewardSource, naturalKey string) string {
	return fmt.Sprintf("reward:%s:%s", source, naturalKey)
}

// DayKey builds a per-account, per-UTC-day natural key for sources limited
// to one resolution per calendar day.
func DayKey(accountID uint64, day time.Time) string {
	return fmt.Sprintf("%d:%s", accountID, DateUTC(day).Format("2006-01-02"))
}

// RewardOutcome is one weighted row of a reward table.
type RewardOutcome struct {
	Label       string
	AmountCents int64 // 0 is a legitimate "no reward" outcome
	Weight      int
}

// RewardTable is a weighted distribution over outcomes.
type RewardTable []RewardOutcome

// Validate checks the table is drawable.
func (t RewardTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty reward table", errs.ErrInvalidRequest)
	}
	total := 0
	for _, o := range t {
		if o.Weight <= 0 {
			return fmt.Errorf("%w: outcome %q has non-positive weight", errs.ErrInvalidRequest, o.Label)
		}
		if o.AmountCents < 0 {
			return fmt.Errorf("%w: outcome %q has negative amount", errs.ErrInvalidRequest, o.Label)
		}
		total += o.Weight
	}
	if total <= 0 {
		return fmt.Errorf("%w: reward table has zero total weight", errs.ErrInvalidRequest)
	}
	return nil
}

// Draw selects one outcome proportionally to the weights.
func (t RewardTable) Draw(rand coreport.RandomSource) (RewardOutcome, error) {
	if err := t.Validate(); err != nil {
		return RewardOutcome{}, err
	}
	total := 0
	for _, o := range t {
		total += o.Weight
	}
	n := rand.Intn(total)
	for _, o := range t {
		n -= o.Weight
		if n < 0 {
			return o, nil
		}
	}
	// unreachable while weights are positive
	return t[len(t)-1], nil
}

// StreakRewardCents computes the streak payout: base amount times streak
// length, with the length capped at maxDays.
func StreakRewardCents(baseCents int64, streakDays, maxDays int) int64 {
	if streakDays < 1 {
		streakDays = 1
	}
	if maxDays > 0 && streakDays > maxDays {
		streakDays = maxDays
	}
	return baseCents * int64(streakDays)
}

package reward

import (
	"context"
	"fmt"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
)

// Spin resolves one spin-wheel attempt. The attempt id is the natural key:
// retrying the same attempt replays the recorded outcome instead of paying
// again. Spins are capped per UTC day and budget-gated.
func (i *Issuer) Spin(ctx context.Context, caller entity.Identity, attemptID string) (*Outcome, error) {
	if attemptID == "" {
		return nil, fmt.Errorf("%w: attempt id cannot be empty", errs.ErrInvalidRequest)
	}
	return i.issue(
		ctx,
		caller.AccountID,
		entity.SourceSpinWheel,
		attemptID,
		i.dailyLimit(entity.SourceSpinWheel, i.limits.SpinsPerDay, "spin"),
		i.tableDraw(i.tables.SpinWheel),
		nil,
	)
}

// OpenMysteryBox resolves one mystery-box attempt. Same shape as Spin with
// its own table and daily cap.
func (i *Issuer) OpenMysteryBox(ctx context.Context, caller entity.Identity, attemptID string) (*Outcome, error) {
	if attemptID == "" {
		return nil, fmt.Errorf("%w: attempt id cannot be empty", errs.ErrInvalidRequest)
	}
	return i.issue(
		ctx,
		caller.AccountID,
		entity.SourceMysteryBox,
		attemptID,
		i.dailyLimit(entity.SourceMysteryBox, i.limits.MysteryBoxesPerDay, "mystery box"),
		i.tableDraw(i.tables.MysteryBox),
		nil,
	)
}

// CompleteMission resolves one mission completion. The natural key scopes a
// mission to one resolution per user per UTC day; a separate daily total
// caps missions overall.
func (i *Issuer) CompleteMission(ctx context.Context, caller entity.Identity, missionID string) (*Outcome, error) {
	if missionID == "" {
		return nil, fmt.Errorf("%w: mission id cannot be empty", errs.ErrInvalidRequest)
	}
	day := entity.DateUTC(i.timeProvider.Now()).Format("2006-01-02")
	naturalKey := fmt.Sprintf("%d:%s:%s", caller.AccountID, missionID, day)

	return i.issue(
		ctx,
		caller.AccountID,
		entity.SourceMission,
		naturalKey,
		i.dailyLimit(entity.SourceMission, i.limits.MissionsPerDay, "mission"),
		i.tableDraw(i.tables.Mission),
		nil,
	)
}

// ClaimStreak resolves the once-per-UTC-day login streak claim. Consecutive
// days grow the streak; a gap of more than one day resets it to 1. The
// payout is the base amount times the capped streak length.
func (i *Issuer) ClaimStreak(ctx context.Context, caller entity.Identity) (*Outcome, error) {
	today := i.timeProvider.Now()
	naturalKey := entity.DayKey(caller.AccountID, today)

	return i.issue(
		ctx,
		caller.AccountID,
		entity.SourceStreak,
		naturalKey,
		nil, // the day-scoped natural key is the eligibility rule
		func(account *entity.Account) (int64, string, error) {
			days := account.RecordStreakClaim(today)
			amount := entity.StreakRewardCents(i.streak.BaseCents, days, i.streak.MaxDays)
			return amount, fmt.Sprintf("streak_day_%d", days), nil
		},
		func(txCtx context.Context, account *entity.Account) error {
			return i.uow.GetAccountRepository(txCtx).UpdateStreak(txCtx, account)
		},
	)
}

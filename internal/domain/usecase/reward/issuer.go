package reward

import (
	"context"
	"errors"
	"fmt"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
	"github.com/garmonpay/reward-ledger/internal/domain/usecase/budget"
)

// Limits hold the per-user, per-UTC-day caps for each reward source.
type Limits struct {
	SpinsPerDay        int
	MysteryBoxesPerDay int
	MissionsPerDay     int
}

// Tables hold the weighted outcome distributions per source.
type Tables struct {
	SpinWheel  entity.RewardTable
	MysteryBox entity.RewardTable
	Mission    entity.RewardTable
}

// StreakConfig parametrizes the daily streak payout.
type StreakConfig struct {
	BaseCents int64
	MaxDays   int
}

// Outcome is the resolution of one reward request. Duplicate means the
// natural key had already been resolved and the recorded outcome is being
// replayed rather than paid again.
type Outcome struct {
	Source      entity.RewardSource
	NaturalKey  string
	AmountCents int64
	Label       string
	Duplicate   bool
	StreakDays  int
	Transaction *entity.Transaction
}

// Issuer turns verified reward events into at-most-one ledger credit each.
// Platform-funded sources are budget-gated; ad views are advertiser-funded
// and bypass the governor.
type Issuer struct {
	uow          persistence.UnitOfWork
	accounts     persistence.AccountRepository
	events       persistence.RewardEventRepository
	ads          persistence.AdRepository
	governor     *budget.Governor
	tables       Tables
	limits       Limits
	streak       StreakConfig
	timeProvider coreport.TimeProvider
	rand         coreport.RandomSource
	logger       coreport.Logger
}

// NewIssuer creates a reward issuer.
func NewIssuer(
	uow persistence.UnitOfWork,
	accounts persistence.AccountRepository,
	events persistence.RewardEventRepository,
	ads persistence.AdRepository,
	governor *budget.Governor,
	tables Tables,
	limits Limits,
	streak StreakConfig,
	timeProvider coreport.TimeProvider,
	rand coreport.RandomSource,
	logger coreport.Logger,
) *Issuer {
	return &Issuer{
		uow:          uow,
		accounts:     accounts,
		events:       events,
		ads:          ads,
		governor:     governor,
		tables:       tables,
		limits:       limits,
		streak:       streak,
		timeProvider: timeProvider,
		rand:         rand,
		logger:       logger,
	}
}

// drawFunc resolves the payout amount and label for an eligible event.
type drawFunc func(account *entity.Account) (int64, string, error)

// afterCreditFunc runs inside the payout transaction after the credit, for
// source-specific bookkeeping such as the streak counter.
type afterCreditFunc func(txCtx context.Context, account *entity.Account) error

// issue runs the shared check -> draw -> reserve -> pay -> commit sequence
// for one (source, natural key) event:
//
//  1. load the account and reject if suspended
//  2. replay the recorded outcome if the natural key is already resolved
//  3. source-specific eligibility
//  4. draw the outcome
//  5. reserve budget for gated sources (denial writes nothing, the user may
//     retry next period)
//  6. in one store transaction: insert the reward event (the unique
//     constraint closes the duplicate race) and credit the ledger
//  7. consume budget only after the payout committed
func (i *Issuer) issue(
	ctx context.Context,
	accountID uint64,
	source entity.RewardSource,
	naturalKey string,
	eligible func(ctx context.Context, account *entity.Account) error,
	draw drawFunc,
	afterCredit afterCreditFunc,
) (*Outcome, error) {
	account, err := i.accounts.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Suspended {
		return nil, errs.ErrAccountSuspended
	}

	// Fast path for retries: an existing event is proof of resolution.
	if prior, err := i.events.GetByNaturalKey(ctx, source, naturalKey); err == nil {
		return i.replay(accountID, source, naturalKey, prior)
	} else if !errs.IsNotFoundError(err) {
		return nil, err
	}

	if eligible != nil {
		if err := eligible(ctx, account); err != nil {
			return nil, err
		}
	}

	amountCents, label, err := draw(account)
	if err != nil {
		return nil, err
	}

	if source.BudgetGated() && amountCents > 0 {
		decision, err := i.governor.CheckAndReserve(ctx, amountCents)
		if err != nil {
			return nil, err
		}
		if !decision.Allowed {
			return nil, i.governor.Denied(ctx, decision, amountCents)
		}
	}

	event, err := entity.NewRewardEvent(accountID, source, naturalKey, amountCents, i.timeProvider)
	if err != nil {
		return nil, err
	}

	txCtx, err := i.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}

	if err := i.uow.GetRewardEventRepository(txCtx).Create(txCtx, event); err != nil {
		_ = i.uow.Rollback(txCtx)
		if errs.IsAlreadyProcessedError(err) {
			// a concurrent duplicate won the insert; replay its outcome
			prior, getErr := i.events.GetByNaturalKey(ctx, source, naturalKey)
			if getErr != nil {
				return nil, getErr
			}
			return i.replay(accountID, source, naturalKey, prior)
		}
		return nil, err
	}

	var txn *entity.Transaction
	if amountCents > 0 {
		txn, err = i.uow.GetAccountRepository(txCtx).ApplyCredit(txCtx, persistence.BalanceChange{
			AccountID:   accountID,
			AmountCents: amountCents,
			Type:        entity.TypeEarning,
			ReferenceID: event.ReferenceID(),
		})
		if err != nil {
			_ = i.uow.Rollback(txCtx)
			return nil, err
		}
	}

	if afterCredit != nil {
		if err := afterCredit(txCtx, account); err != nil {
			_ = i.uow.Rollback(txCtx)
			return nil, err
		}
	}

	if err := i.uow.Commit(txCtx); err != nil {
		return nil, err
	}

	if source.BudgetGated() && amountCents > 0 {
		if err := i.governor.Commit(ctx, source, amountCents, accountID); err != nil {
			// the payout is already durable; budget under-counting is the
			// lesser failure, log and move on
			i.logger.Error("Failed to commit budget usage after payout", map[string]any{
				"source":       string(source),
				"natural_key":  naturalKey,
				"amount_cents": amountCents,
				"error":        err.Error(),
			})
		}
	}

	i.logger.Info("Reward issued", map[string]any{
		"source":       string(source),
		"natural_key":  naturalKey,
		"account_id":   accountID,
		"amount_cents": amountCents,
		"label":        label,
	})

	return &Outcome{
		Source:      source,
		NaturalKey:  naturalKey,
		AmountCents: amountCents,
		Label:       label,
		StreakDays:  account.StreakDays,
		Transaction: txn,
	}, nil
}

// replay rebuilds the outcome recorded for an already-resolved event. The
// recorded event must belong to the requesting account; a key collision
// across accounts is rejected rather than leaking the other outcome.
func (i *Issuer) replay(accountID uint64, source entity.RewardSource, naturalKey string, prior *entity.RewardEvent) (*Outcome, error) {
	if prior.AccountID != accountID {
		return nil, errs.NewNotEligibleError(accountID, "attempt id belongs to another account")
	}
	i.logger.Debug("Replaying resolved reward event", map[string]any{
		"source":      string(source),
		"natural_key": naturalKey,
	})
	return &Outcome{
		Source:      source,
		NaturalKey:  naturalKey,
		AmountCents: prior.AmountCents,
		Duplicate:   true,
	}, nil
}

// dailyLimit builds an eligibility check that caps resolved events per UTC
// day for a source.
func (i *Issuer) dailyLimit(source entity.RewardSource, limit int, what string) func(ctx context.Context, account *entity.Account) error {
	return func(ctx context.Context, account *entity.Account) error {
		dayStart := entity.DateUTC(i.timeProvider.Now())
		n, err := i.events.CountForAccountSince(ctx, account.ID, source, dayStart)
		if err != nil {
			return err
		}
		if n >= limit {
			return errs.NewNotEligibleError(account.ID, fmt.Sprintf("daily %s limit reached (%d per day)", what, limit))
		}
		return nil
	}
}

// tableDraw builds a draw function over a weighted reward table.
func (i *Issuer) tableDraw(table entity.RewardTable) drawFunc {
	return func(*entity.Account) (int64, string, error) {
		outcome, err := table.Draw(i.rand)
		if err != nil {
			return 0, "", err
		}
		return outcome.AmountCents, outcome.Label, nil
	}
}

// IsDuplicateReplay reports whether an error from a retried request should
// be treated as the prior outcome instead of a failure.
func IsDuplicateReplay(err error) bool {
	return errors.Is(err, errs.ErrAlreadyProcessed)
}

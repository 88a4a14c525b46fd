package reward

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
)

// StartSession opens an ad-view session against an active ad. The required
// watch duration and reward are fixed at start so later ad edits don't
// change in-flight sessions. Fails when the ad is inactive or the user is
// still in the per-ad cooldown.
func (i *Issuer) StartSession(ctx context.Context, caller entity.Identity, adID uint64) (*entity.AdSession, error) {
	account, err := i.accounts.GetByID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Suspended {
		return nil, errs.ErrAccountSuspended
	}

	ad, err := i.ads.GetAd(ctx, adID)
	if err != nil {
		return nil, err
	}

	if ad.CooldownSeconds > 0 {
		last, err := i.ads.LastSessionStart(ctx, caller.AccountID, adID)
		if err != nil {
			return nil, err
		}
		if !last.IsZero() {
			cooldown := time.Duration(ad.CooldownSeconds) * time.Second
			if i.timeProvider.Now().Sub(last) < cooldown {
				return nil, errs.NewNotEligibleError(caller.AccountID, "ad is in cooldown")
			}
		}
	}

	session, err := entity.NewAdSession(uuid.NewString(), caller.AccountID, ad, i.timeProvider)
	if err != nil {
		return nil, err
	}
	if err := i.ads.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	i.logger.Info("Ad session started", map[string]any{
		"session_id":       session.ID,
		"account_id":       caller.AccountID,
		"ad_id":            adID,
		"required_seconds": session.RequiredSeconds,
	})
	return session, nil
}

// CompleteSession pays out a watched ad session. The required duration is
// checked against the server clock, never a client-reported elapsed time.
// Ad rewards are advertiser-funded: they credit balance, withdrawable and
// lifetime earnings with no budget check. An expired, uncompleted session is
// simply never payable; there is no cancel action.
func (i *Issuer) CompleteSession(ctx context.Context, caller entity.Identity, sessionID string) (*Outcome, error) {
	account, err := i.accounts.GetByID(ctx, caller.AccountID)
	if err != nil {
		return nil, err
	}
	if account.Suspended {
		return nil, errs.ErrAccountSuspended
	}

	session, err := i.ads.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := i.timeProvider.Now()
	if err := session.CanComplete(caller.AccountID, now); err != nil {
		if errs.IsAlreadyProcessedError(err) {
			if prior, getErr := i.events.GetByNaturalKey(ctx, entity.SourceAdView, session.ID); getErr == nil {
				return i.replay(caller.AccountID, entity.SourceAdView, session.ID, prior)
			}
		}
		return nil, err
	}

	event, err := entity.NewRewardEvent(caller.AccountID, entity.SourceAdView, session.ID, session.RewardCents, i.timeProvider)
	if err != nil {
		return nil, err
	}

	txCtx, err := i.uow.Begin(ctx)
	if err != nil {
		return nil, err
	}

	// the conditional rewarded-marker update and the unique event insert
	// both guard the same race; either one failing means a duplicate
	if err := i.uow.GetAdRepository(txCtx).MarkSessionRewarded(txCtx, session.ID, now); err != nil {
		_ = i.uow.Rollback(txCtx)
		if errs.IsAlreadyProcessedError(err) {
			if prior, getErr := i.events.GetByNaturalKey(ctx, entity.SourceAdView, session.ID); getErr == nil {
				return i.replay(caller.AccountID, entity.SourceAdView, session.ID, prior)
			}
		}
		return nil, err
	}

	if err := i.uow.GetRewardEventRepository(txCtx).Create(txCtx, event); err != nil {
		_ = i.uow.Rollback(txCtx)
		if errs.IsAlreadyProcessedError(err) {
			if prior, getErr := i.events.GetByNaturalKey(ctx, entity.SourceAdView, session.ID); getErr == nil {
				return i.replay(caller.AccountID, entity.SourceAdView, session.ID, prior)
			}
		}
		return nil, err
	}

	txn, err := i.uow.GetAccountRepository(txCtx).ApplyCredit(txCtx, persistence.BalanceChange{
		AccountID:   caller.AccountID,
		AmountCents: session.RewardCents,
		Type:        entity.TypeEarning,
		ReferenceID: event.ReferenceID(),
	})
	if err != nil {
		_ = i.uow.Rollback(txCtx)
		return nil, err
	}

	if err := i.uow.Commit(txCtx); err != nil {
		return nil, err
	}

	i.logger.Info("Ad session rewarded", map[string]any{
		"session_id":   session.ID,
		"account_id":   caller.AccountID,
		"ad_id":        session.AdID,
		"amount_cents": session.RewardCents,
	})

	return &Outcome{
		Source:      entity.SourceAdView,
		NaturalKey:  session.ID,
		AmountCents: session.RewardCents,
		Label:       "ad_view",
		Transaction: txn,
	}, nil
}

// ListActiveAds returns the placements currently available to watch.
func (i *Issuer) ListActiveAds(ctx context.Context) ([]*entity.Ad, error) {
	return i.ads.ListActiveAds(ctx)
}

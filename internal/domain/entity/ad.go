package entity

import (
	"time"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	coreport "github.com/garmonpay/reward-ledger/internal/domain/port/core"
)

// Ad is an advertiser-funded watch-to-earn placement.
type Ad struct {
	ID              uint64
	Title           string
	RewardCents     int64
	RequiredSeconds int // watch duration the server enforces before paying
	CooldownSeconds int // per-user minimum gap between sessions of this ad
	Active          bool
	CreatedAt       time.Time
}

// AdSession is one user's in-progress or completed view of an ad. An expired,
// uncompleted session simply becomes unpayable; there is no cancel action.
type AdSession struct {
	ID              string // uuid
	AccountID       uint64
	AdID            uint64
	RewardCents     int64 // reward fixed at session start
	RequiredSeconds int
	StartedAt       time.Time
	RewardedAt      *time.Time
}

// NewAdSession starts a session against an active ad.
func NewAdSession(id string, accountID uint64, ad *Ad, timeProvider coreport.TimeProvider) (*AdSession, error) {
	if accountID == 0 {
		return nil, errs.ErrInvalidAccountID
	}
	if !ad.Active {
		return nil, errs.NewNotEligibleError(accountID, "ad is not active")
	}
	return &AdSession{
		ID:              id,
		AccountID:       accountID,
		AdID:            ad.ID,
		RewardCents:     ad.RewardCents,
		RequiredSeconds: ad.RequiredSeconds,
		StartedAt:       timeProvider.Now(),
	}, nil
}

// Rewarded reports whether the session has already been paid.
func (s *AdSession) Rewarded() bool {
	return s.RewardedAt != nil
}

// CanComplete checks the completion rules against the server clock: the
// session must belong to the caller, the required watch time must have
// elapsed, and it must not have been rewarded before.
func (s *AdSession) CanComplete(accountID uint64, now time.Time) error {
	if s.AccountID != accountID {
		return errs.NewNotEligibleError(accountID, "session belongs to another account")
	}
	if s.Rewarded() {
		return errs.NewAlreadyProcessedError(s.ReferenceID(), accountID)
	}
	if now.Sub(s.StartedAt) < time.Duration(s.RequiredSeconds)*time.Second {
		return errs.NewNotEligibleError(accountID, "required watch duration has not elapsed")
	}
	return nil
}

// MarkRewarded records the payout time.
func (s *AdSession) MarkRewarded(timeProvider coreport.TimeProvider) {
	now := timeProvider.Now()
	s.RewardedAt = &now
}

// ReferenceID returns the ledger reference for this session's payout.
func (s *AdSession) ReferenceID() string {
	return RewardReferenceID(SourceAdView, s.ID)
}

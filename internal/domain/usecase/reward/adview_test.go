package reward

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/garmonpay/reward-ledger/internal/domain/entity"
	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
	"github.com/garmonpay/reward-ledger/internal/domain/port/persistence"
)

func TestIssuer_StartSession(t *testing.T) {
	ctx := context.Background()
	caller := entity.Identity{AccountID: 7}

	activeAd := func() *entity.Ad {
		return &entity.Ad{ID: 2, Title: "Sponsor spot", RewardCents: 10, RequiredSeconds: 30, CooldownSeconds: 900, Active: true}
	}

	t.Run("should open a session with the ad terms frozen", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.ads.On("GetAd", ctx, uint64(2)).Return(activeAd(), nil)
		f.ads.On("LastSessionStart", ctx, uint64(7), uint64(2)).Return(time.Time{}, nil)
		f.ads.On("CreateSession", ctx, mock.MatchedBy(func(s *entity.AdSession) bool {
			return s.AccountID == 7 && s.AdID == 2 && s.RewardCents == 10 && s.RequiredSeconds == 30
		})).Return(nil)
		f.logger.On("Info", "Ad session started", mock.Anything).Return()

		session, err := f.issuer.StartSession(ctx, caller, 2)

		require.NoError(t, err)
		assert.NotEmpty(t, session.ID)
		assert.Equal(t, f.now, session.StartedAt)
		f.ads.AssertExpectations(t)
	})

	t.Run("should enforce the per-ad cooldown", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.ads.On("GetAd", ctx, uint64(2)).Return(activeAd(), nil)
		// last session 5 minutes ago, cooldown is 15 minutes
		f.ads.On("LastSessionStart", ctx, uint64(7), uint64(2)).Return(f.now.Add(-5*time.Minute), nil)

		_, err := f.issuer.StartSession(ctx, caller, 2)

		assert.ErrorIs(t, err, errs.ErrNotEligible)
		f.ads.AssertNotCalled(t, "CreateSession")
	})

	t.Run("should allow a session once the cooldown has passed", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.ads.On("GetAd", ctx, uint64(2)).Return(activeAd(), nil)
		f.ads.On("LastSessionStart", ctx, uint64(7), uint64(2)).Return(f.now.Add(-16*time.Minute), nil)
		f.ads.On("CreateSession", ctx, mock.Anything).Return(nil)
		f.logger.On("Info", "Ad session started", mock.Anything).Return()

		_, err := f.issuer.StartSession(ctx, caller, 2)

		assert.NoError(t, err)
	})

	t.Run("should refuse an inactive ad", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)
		inactive := activeAd()
		inactive.Active = false

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.ads.On("GetAd", ctx, uint64(2)).Return(inactive, nil)
		f.ads.On("LastSessionStart", ctx, uint64(7), uint64(2)).Return(time.Time{}, nil)

		_, err := f.issuer.StartSession(ctx, caller, 2)

		assert.ErrorIs(t, err, errs.ErrNotEligible)
		f.ads.AssertNotCalled(t, "CreateSession")
	})
}

func TestIssuer_CompleteSession(t *testing.T) {
	ctx := context.Background()
	caller := entity.Identity{AccountID: 7}

	watchedSession := func(f *issuerFixture) *entity.AdSession {
		return &entity.AdSession{
			ID:              "s-1",
			AccountID:       7,
			AdID:            2,
			RewardCents:     10,
			RequiredSeconds: 30,
			StartedAt:       f.now.Add(-time.Minute),
		}
	}

	t.Run("should pay a fully watched session without touching the budget", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.ads.On("GetSession", ctx, "s-1").Return(watchedSession(f), nil)

		f.uow.On("Begin", ctx).Return(ctx, nil)
		f.uow.On("GetAdRepository", ctx).Return(f.ads)
		f.uow.On("GetRewardEventRepository", ctx).Return(f.events)
		f.uow.On("GetAccountRepository", ctx).Return(f.accounts)
		f.uow.On("Commit", ctx).Return(nil)

		f.ads.On("MarkSessionRewarded", ctx, "s-1", f.now).Return(nil)
		f.events.On("Create", ctx, mock.MatchedBy(func(e *entity.RewardEvent) bool {
			return e.Source == entity.SourceAdView && e.NaturalKey == "s-1" && e.AmountCents == 10
		})).Return(nil)
		f.accounts.On("ApplyCredit", ctx, persistence.BalanceChange{
			AccountID:   7,
			AmountCents: 10,
			Type:        entity.TypeEarning,
			ReferenceID: "reward:ad_view:s-1",
		}).Return(&entity.Transaction{ID: 1, AccountID: 7, AmountCents: 10, ResultBalance: 10}, nil)
		f.logger.On("Info", "Ad session rewarded", mock.Anything).Return()

		outcome, err := f.issuer.CompleteSession(ctx, caller, "s-1")

		require.NoError(t, err)
		assert.Equal(t, int64(10), outcome.AmountCents)
		assert.Equal(t, entity.SourceAdView, outcome.Source)
		// advertiser-funded: the governor is never consulted
		f.budgetRepo.AssertNotCalled(t, "Get")
		f.budgetRepo.AssertNotCalled(t, "AddUsage")
		f.ads.AssertExpectations(t)
	})

	t.Run("should refuse completion before the required watch time", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		early := watchedSession(f)
		early.StartedAt = f.now.Add(-10 * time.Second)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.ads.On("GetSession", ctx, "s-1").Return(early, nil)

		_, err := f.issuer.CompleteSession(ctx, caller, "s-1")

		assert.ErrorIs(t, err, errs.ErrNotEligible)
		f.uow.AssertNotCalled(t, "Begin")
	})

	t.Run("should replay an already rewarded session", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 10, 10, 0, 10, false)

		rewarded := watchedSession(f)
		rewardedAt := f.now.Add(-30 * time.Second)
		rewarded.RewardedAt = &rewardedAt

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.ads.On("GetSession", ctx, "s-1").Return(rewarded, nil)
		f.events.On("GetByNaturalKey", ctx, entity.SourceAdView, "s-1").Return(&entity.RewardEvent{
			AccountID:   7,
			Source:      entity.SourceAdView,
			NaturalKey:  "s-1",
			AmountCents: 10,
		}, nil)
		f.logger.On("Debug", "Replaying resolved reward event", mock.Anything).Return()

		outcome, err := f.issuer.CompleteSession(ctx, caller, "s-1")

		require.NoError(t, err)
		assert.True(t, outcome.Duplicate)
		assert.Equal(t, int64(10), outcome.AmountCents)
		f.uow.AssertNotCalled(t, "Begin")
	})

	t.Run("should refuse another account's session", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(8, 0, 0, 0, 0, false)

		f.accounts.On("GetByID", ctx, uint64(8)).Return(account, nil)
		f.ads.On("GetSession", ctx, "s-1").Return(watchedSession(f), nil)

		_, err := f.issuer.CompleteSession(ctx, entity.Identity{AccountID: 8}, "s-1")

		assert.ErrorIs(t, err, errs.ErrNotEligible)
	})

	t.Run("should replay when the rewarded marker loses a concurrent race", func(t *testing.T) {
		f := newIssuerFixture(t)
		account := entity.RestoreAccount(7, 0, 0, 0, 0, false)

		f.accounts.On("GetByID", ctx, uint64(7)).Return(account, nil)
		f.ads.On("GetSession", ctx, "s-1").Return(watchedSession(f), nil)

		f.uow.On("Begin", ctx).Return(ctx, nil)
		f.uow.On("GetAdRepository", ctx).Return(f.ads)
		f.uow.On("Rollback", ctx).Return(nil)

		f.ads.On("MarkSessionRewarded", ctx, "s-1", f.now).
			Return(errs.NewAlreadyProcessedError("reward:ad_view:s-1", 0))
		f.events.On("GetByNaturalKey", ctx, entity.SourceAdView, "s-1").Return(&entity.RewardEvent{
			AccountID:   7,
			Source:      entity.SourceAdView,
			NaturalKey:  "s-1",
			AmountCents: 10,
		}, nil)
		f.logger.On("Debug", "Replaying resolved reward event", mock.Anything).Return()

		outcome, err := f.issuer.CompleteSession(ctx, caller, "s-1")

		require.NoError(t, err)
		assert.True(t, outcome.Duplicate)
		f.accounts.AssertNotCalled(t, "ApplyCredit")
	})
}

func TestIssuer_ListActiveAds(t *testing.T) {
	ctx := context.Background()

	f := newIssuerFixture(t)
	ads := []*entity.Ad{{ID: 1, Active: true}, {ID: 2, Active: true}}
	f.ads.On("ListActiveAds", ctx).Return(ads, nil)

	got, err := f.issuer.ListActiveAds(ctx)

	require.NoError(t, err)
	assert.Equal(t, ads, got)
}

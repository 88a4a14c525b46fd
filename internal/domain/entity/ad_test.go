package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/garmonpay/reward-ledger/internal/domain/error"
)

func TestNewAdSession(t *testing.T) {
	fixedTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	mockTime := fixedTimeProvider(fixedTime)

	ad := &Ad{ID: 2, RewardCents: 10, RequiredSeconds: 30, Active: true}

	t.Run("Session freezes the ad terms at start", func(t *testing.T) {
		session, err := NewAdSession("s-1", 7, ad, mockTime)

		require.NoError(t, err)
		assert.Equal(t, int64(10), session.RewardCents)
		assert.Equal(t, 30, session.RequiredSeconds)
		assert.Equal(t, fixedTime, session.StartedAt)
		assert.False(t, session.Rewarded())
	})

	t.Run("Inactive ad is not startable", func(t *testing.T) {
		inactive := &Ad{ID: 3, Active: false}
		_, err := NewAdSession("s-1", 7, inactive, mockTime)
		assert.ErrorIs(t, err, errs.ErrNotEligible)
	})
}

func TestAdSession_CanComplete(t *testing.T) {
	started := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	newSession := func() *AdSession {
		return &AdSession{
			ID:              "s-1",
			AccountID:       7,
			AdID:            2,
			RewardCents:     10,
			RequiredSeconds: 30,
			StartedAt:       started,
		}
	}

	t.Run("Completable once the watch time elapsed", func(t *testing.T) {
		assert.NoError(t, newSession().CanComplete(7, started.Add(30*time.Second)))
		assert.NoError(t, newSession().CanComplete(7, started.Add(5*time.Minute)))
	})

	t.Run("Too early by the server clock", func(t *testing.T) {
		err := newSession().CanComplete(7, started.Add(29*time.Second))
		assert.ErrorIs(t, err, errs.ErrNotEligible)
	})

	t.Run("Wrong account", func(t *testing.T) {
		err := newSession().CanComplete(8, started.Add(time.Minute))
		assert.ErrorIs(t, err, errs.ErrNotEligible)
	})

	t.Run("Already rewarded", func(t *testing.T) {
		session := newSession()
		rewardedAt := started.Add(time.Minute)
		session.RewardedAt = &rewardedAt

		err := session.CanComplete(7, started.Add(2*time.Minute))
		assert.ErrorIs(t, err, errs.ErrAlreadyProcessed)
	})
}

package subscription

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSubscription(t *testing.T) *Subscription {
	t.Helper()
	sub, err := NewSubscription(uuid.New(), uuid.New(), time.Now().Add(-time.Hour), time.Now().Add(30*24*time.Hour))
	require.NoError(t, err)
	return sub
}

func TestNewSubscription(t *testing.T) {
	t.Run("creates active subscription", func(t *testing.T) {
		sub := newTestSubscription(t)

		assert.Equal(t, StatusActive, sub.Status)
		assert.True(t, sub.IsActive(time.Now()))
	})

	t.Run("rejects inverted window", func(t *testing.T) {
		_, err := NewSubscription(uuid.New(), uuid.New(), time.Now(), time.Now().Add(-time.Hour))

		assert.Error(t, err)
	})

	t.Run("rejects empty tenant", func(t *testing.T) {
		_, err := NewSubscription(uuid.Nil, uuid.New(), time.Now(), time.Now().Add(time.Hour))

		assert.Error(t, err)
	})
}

func TestSubscriptionLifecycle(t *testing.T) {
	t.Run("cancel then reactivate within window", func(t *testing.T) {
		sub := newTestSubscription(t)

		require.NoError(t, sub.Cancel())
		assert.Equal(t, StatusCancelled, sub.Status)
		assert.NotNil(t, sub.CancelledAt)
		assert.False(t, sub.IsActive(time.Now()))

		require.NoError(t, sub.Reactivate(time.Now()))
		assert.Equal(t, StatusActive, sub.Status)
		assert.Nil(t, sub.CancelledAt)
	})

	t.Run("double cancel fails", func(t *testing.T) {
		sub := newTestSubscription(t)

		require.NoError(t, sub.Cancel())
		assert.Error(t, sub.Cancel())
	})

	t.Run("reactivate after window elapsed fails", func(t *testing.T) {
		sub := newTestSubscription(t)
		require.NoError(t, sub.Cancel())

		err := sub.Reactivate(sub.EndsAt.Add(time.Minute))

		assert.Error(t, err)
	})

	t.Run("renew extends and restores", func(t *testing.T) {
		sub := newTestSubscription(t)
		require.NoError(t, sub.Cancel())
		until := sub.EndsAt.AddDate(0, 1, 0)

		require.NoError(t, sub.Renew(until))

		assert.Equal(t, StatusActive, sub.Status)
		assert.Equal(t, until, sub.EndsAt)
	})

	t.Run("renew must extend", func(t *testing.T) {
		sub := newTestSubscription(t)

		assert.Error(t, sub.Renew(sub.EndsAt.Add(-time.Hour)))
	})

	t.Run("expired status is not active regardless of window", func(t *testing.T) {
		sub := newTestSubscription(t)
		sub.MarkExpired()

		assert.False(t, sub.IsActive(time.Now()))
	})
}

func TestSubscription_SetUsageCache(t *testing.T) {
	sub := newTestSubscription(t)
	snap := UsageSnapshot{Schools: 2, Students: 120, StorageBytes: 5 * bytesPerGB / 2}
	snap.RoundStorage()

	sub.SetUsageCache(snap)

	assert.Equal(t, int64(120), sub.Usage.Students)
	require.NotNil(t, sub.UsageRefreshedAt)
	assert.Equal(t, 2.5, sub.Usage.StorageGB)
}

func TestUsageSnapshot_Rounding(t *testing.T) {
	t.Run("three decimal rounding", func(t *testing.T) {
		s := UsageSnapshot{StorageBytes: 1_500_000_000}
		s.RoundStorage()

		assert.Equal(t, 1.397, s.StorageGB)
	})

	t.Run("partial gigabyte counts as consumed", func(t *testing.T) {
		s := UsageSnapshot{StorageBytes: 1}

		assert.Equal(t, int64(1), s.StorageGBCeil())
	})

	t.Run("empty storage is zero", func(t *testing.T) {
		s := UsageSnapshot{}
		s.RoundStorage()

		assert.Equal(t, float64(0), s.StorageGB)
		assert.Equal(t, int64(0), s.StorageGBCeil())
	})
}

func TestLimitExceededError(t *testing.T) {
	err := NewLimitExceededError(KeyMaxBranchesPerSchool, 2, 2)

	assert.Equal(t, int64(0), err.Remaining)
	assert.Contains(t, err.Error(), "maxBranchesPerSchool")
	assert.Equal(t, 429, err.HTTPStatusCode())

	t.Run("remaining clamps at zero", func(t *testing.T) {
		over := NewLimitExceededError(KeyMaxStudents, 10, 15)
		assert.Equal(t, int64(0), over.Remaining)
	})

	t.Run("remaining reports headroom shortfall", func(t *testing.T) {
		under := NewLimitExceededError(KeyMaxStudents, 10, 8)
		assert.Equal(t, int64(2), under.Remaining)
	})
}

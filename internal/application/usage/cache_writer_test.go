package usage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/edusuite/backend/internal/domain/subscription"
	"github.com/edusuite/backend/internal/infrastructure/cache"
)

// stubSubscriptionRepo holds a single subscription keyed by tenant
type stubSubscriptionRepo struct {
	sub          *subscription.Subscription
	cacheUpdates int
}

func (s *stubSubscriptionRepo) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	if s.sub == nil || s.sub.ID != id {
		return nil, shared.ErrNotFound
	}
	return s.sub, nil
}

func (s *stubSubscriptionRepo) FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*subscription.Subscription, error) {
	if s.sub == nil || s.sub.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return s.sub, nil
}

func (s *stubSubscriptionRepo) Save(ctx context.Context, sub *subscription.Subscription) error {
	s.sub = sub
	return nil
}

func (s *stubSubscriptionRepo) UpdateUsageCache(ctx context.Context, sub *subscription.Subscription) error {
	s.cacheUpdates++
	s.sub = sub
	return nil
}

func newActiveSubscription(t *testing.T, tenantID uuid.UUID) *subscription.Subscription {
	t.Helper()
	sub, err := subscription.NewSubscription(tenantID, uuid.New(),
		time.Now().Add(-time.Hour), time.Now().Add(30*24*time.Hour))
	require.NoError(t, err)
	return sub
}

func TestCacheWriter_Refresh(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	newWriter := func(repo *stubSubscriptionRepo, store cache.SnapshotStore) *CacheWriter {
		calc := NewCalculator(
			&stubSchoolRepo{school: newTestSchool(t, tenantID)},
			&stubCounters{schools: 1, students: 50, storage: map[string]int64{"documents": 1000}},
			nil,
		)
		return NewCacheWriter(repo, calc, store, time.Minute, nil)
	}

	t.Run("no active subscription is a no-op", func(t *testing.T) {
		repo := &stubSubscriptionRepo{}
		w := newWriter(repo, nil)

		sub, err := w.Refresh(ctx, tenantID, nil)
		require.NoError(t, err)
		assert.Nil(t, sub)
		assert.Zero(t, repo.cacheUpdates)
	})

	t.Run("computes and persists the snapshot", func(t *testing.T) {
		repo := &stubSubscriptionRepo{sub: newActiveSubscription(t, tenantID)}
		store := cache.NewMemorySnapshotStore()
		defer store.Close()
		w := newWriter(repo, store)

		sub, err := w.Refresh(ctx, tenantID, nil)
		require.NoError(t, err)
		require.NotNil(t, sub)

		assert.Equal(t, int64(50), sub.Usage.Students)
		assert.Equal(t, int64(1000), sub.Usage.StorageBytes)
		assert.NotNil(t, sub.UsageRefreshedAt)
		assert.Equal(t, 1, repo.cacheUpdates)

		cached, err := store.Get(ctx, tenantID)
		require.NoError(t, err)
		require.NotNil(t, cached)
		assert.Equal(t, int64(50), cached.Students)
	})

	t.Run("override snapshot skips computation", func(t *testing.T) {
		repo := &stubSubscriptionRepo{sub: newActiveSubscription(t, tenantID)}
		w := newWriter(repo, nil)

		override := &subscription.UsageSnapshot{Students: 7, ComputedAt: time.Now()}
		sub, err := w.Refresh(ctx, tenantID, override)
		require.NoError(t, err)
		require.NotNil(t, sub)
		assert.Equal(t, int64(7), sub.Usage.Students)
	})

	t.Run("empty tenant id is rejected", func(t *testing.T) {
		w := newWriter(&stubSubscriptionRepo{}, nil)
		_, err := w.Refresh(ctx, uuid.Nil, nil)

		var domainErr *shared.DomainError
		assert.ErrorAs(t, err, &domainErr)
	})
}

func TestCacheWriter_Cached(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("prefers the snapshot store", func(t *testing.T) {
		store := cache.NewMemorySnapshotStore()
		defer store.Close()
		require.NoError(t, store.Set(ctx, tenantID, &subscription.UsageSnapshot{Students: 9}, 0))

		w := NewCacheWriter(&stubSubscriptionRepo{}, nil, store, time.Minute, nil)
		snap, err := w.Cached(ctx, tenantID)
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Equal(t, int64(9), snap.Students)
	})

	t.Run("falls back to subscription row cache", func(t *testing.T) {
		sub := newActiveSubscription(t, tenantID)
		sub.SetUsageCache(subscription.UsageSnapshot{Students: 11, ComputedAt: time.Now()})
		repo := &stubSubscriptionRepo{sub: sub}

		w := NewCacheWriter(repo, nil, nil, time.Minute, nil)
		snap, err := w.Cached(ctx, tenantID)
		require.NoError(t, err)
		require.NotNil(t, snap)
		assert.Equal(t, int64(11), snap.Students)
	})

	t.Run("nothing cached yields nil", func(t *testing.T) {
		repo := &stubSubscriptionRepo{sub: newActiveSubscription(t, tenantID)}
		w := NewCacheWriter(repo, nil, nil, time.Minute, nil)

		snap, err := w.Cached(ctx, tenantID)
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("no subscription yields nil", func(t *testing.T) {
		w := NewCacheWriter(&stubSubscriptionRepo{}, nil, nil, time.Minute, nil)
		snap, err := w.Cached(ctx, tenantID)
		require.NoError(t, err)
		assert.Nil(t, snap)
	})
}

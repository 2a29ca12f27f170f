package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusuite/backend/internal/domain/subscription"
)

func TestMemorySnapshotStore(t *testing.T) {
	ctx := context.Background()

	newSnapshot := func() *subscription.UsageSnapshot {
		snap := &subscription.UsageSnapshot{
			Schools:      1,
			Students:     42,
			Teachers:     5,
			Staff:        3,
			StorageBytes: 1_500_000_000,
			ComputedAt:   time.Now().UTC(),
		}
		snap.RoundStorage()
		return snap
	}

	t.Run("miss on empty store", func(t *testing.T) {
		store := NewMemorySnapshotStore()
		defer store.Close()

		snap, err := store.Get(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, snap)

		hits, misses := store.Stats()
		assert.Equal(t, int64(0), hits)
		assert.Equal(t, int64(1), misses)
	})

	t.Run("set then get returns a copy", func(t *testing.T) {
		store := NewMemorySnapshotStore()
		defer store.Close()

		tenantID := uuid.New()
		original := newSnapshot()
		require.NoError(t, store.Set(ctx, tenantID, original, 0))

		got, err := store.Get(ctx, tenantID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(42), got.Students)
		assert.Equal(t, 1.397, got.StorageGB)

		// Mutating the returned snapshot must not affect the cached value
		got.Students = 999
		again, err := store.Get(ctx, tenantID)
		require.NoError(t, err)
		assert.Equal(t, int64(42), again.Students)
	})

	t.Run("expired entry is a miss", func(t *testing.T) {
		store := NewMemorySnapshotStore()
		defer store.Close()

		tenantID := uuid.New()
		require.NoError(t, store.Set(ctx, tenantID, newSnapshot(), 10*time.Millisecond))
		time.Sleep(20 * time.Millisecond)

		snap, err := store.Get(ctx, tenantID)
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("delete removes entry", func(t *testing.T) {
		store := NewMemorySnapshotStore()
		defer store.Close()

		tenantID := uuid.New()
		require.NoError(t, store.Set(ctx, tenantID, newSnapshot(), 0))
		require.NoError(t, store.Delete(ctx, tenantID))

		snap, err := store.Get(ctx, tenantID)
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("flush empties the store", func(t *testing.T) {
		store := NewMemorySnapshotStore()
		defer store.Close()

		for range 3 {
			require.NoError(t, store.Set(ctx, uuid.New(), newSnapshot(), 0))
		}
		require.Equal(t, 3, store.Count())

		require.NoError(t, store.Flush(ctx))
		assert.Equal(t, 0, store.Count())
	})

	t.Run("nil snapshot is a no-op", func(t *testing.T) {
		store := NewMemorySnapshotStore()
		defer store.Close()

		tenantID := uuid.New()
		require.NoError(t, store.Set(ctx, tenantID, nil, 0))
		assert.Equal(t, 0, store.Count())
	})

	t.Run("close is idempotent", func(t *testing.T) {
		store := NewMemorySnapshotStore()
		require.NoError(t, store.Close())
		require.NoError(t, store.Close())
	})
}

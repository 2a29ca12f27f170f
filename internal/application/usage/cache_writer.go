package usage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/edusuite/backend/internal/domain/subscription"
	"github.com/edusuite/backend/internal/infrastructure/cache"
)

// CacheWriter persists computed snapshots onto the tenant's active
// subscription row and mirrors them into the snapshot store. The cache is
// advisory: callers needing the absolute latest numbers call the Calculator
// directly.
type CacheWriter struct {
	subscriptions subscription.SubscriptionRepository
	calculator    *Calculator
	store         cache.SnapshotStore
	ttl           time.Duration
	logger        *zap.Logger
}

// NewCacheWriter creates a usage cache writer. The snapshot store is
// optional; pass nil to cache on the subscription row only.
func NewCacheWriter(
	subscriptions subscription.SubscriptionRepository,
	calculator *Calculator,
	store cache.SnapshotStore,
	ttl time.Duration,
	logger *zap.Logger,
) *CacheWriter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheWriter{
		subscriptions: subscriptions,
		calculator:    calculator,
		store:         store,
		ttl:           ttl,
		logger:        logger,
	}
}

// Refresh recomputes (or takes the supplied override) and caches the tenant's
// usage snapshot. Returns nil without error when the tenant has no active
// subscription; there is nothing to cache against.
func (w *CacheWriter) Refresh(ctx context.Context, tenantID uuid.UUID, override *subscription.UsageSnapshot) (*subscription.Subscription, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}

	sub, err := w.subscriptions.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			w.logger.Debug("no active subscription, skipping usage cache refresh",
				zap.String("tenant_id", tenantID.String()))
			return nil, nil
		}
		return nil, err
	}

	var snap subscription.UsageSnapshot
	if override != nil {
		snap = *override
	} else {
		snap, err = w.calculator.Calculate(ctx, tenantID)
		if err != nil {
			return nil, err
		}
	}

	sub.SetUsageCache(snap)
	if err := w.subscriptions.UpdateUsageCache(ctx, sub); err != nil {
		return nil, err
	}

	if w.store != nil {
		if err := w.store.Set(ctx, tenantID, &snap, w.ttl); err != nil {
			// Row cache is already written; the store copy is best effort
			w.logger.Warn("failed to store usage snapshot in cache",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		}
	}

	w.logger.Info("usage cache refreshed",
		zap.String("tenant_id", tenantID.String()),
		zap.Int64("students", snap.Students),
		zap.Int64("teachers", snap.Teachers),
		zap.Int64("staff", snap.Staff),
		zap.Float64("storage_gb", snap.StorageGB))

	return sub, nil
}

// Cached returns the freshest cached snapshot without recomputation: the
// snapshot store first, then the subscription row. A nil snapshot means
// nothing has been cached yet.
func (w *CacheWriter) Cached(ctx context.Context, tenantID uuid.UUID) (*subscription.UsageSnapshot, error) {
	if w.store != nil {
		snap, err := w.store.Get(ctx, tenantID)
		if err != nil {
			w.logger.Warn("snapshot store read failed, falling back to subscription row",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err))
		} else if snap != nil {
			return snap, nil
		}
	}

	sub, err := w.subscriptions.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if sub.UsageRefreshedAt == nil {
		return nil, nil
	}
	snap := sub.Usage
	return &snap, nil
}

// Invalidate drops the tenant's snapshot from the store so the next read
// falls through to the subscription row or a recomputation
func (w *CacheWriter) Invalidate(ctx context.Context, tenantID uuid.UUID) error {
	if w.store == nil {
		return nil
	}
	return w.store.Delete(ctx, tenantID)
}

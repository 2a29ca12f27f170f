package cache

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edusuite/backend/internal/domain/subscription"
)

// SnapshotStore caches computed usage snapshots keyed by tenant.
// A miss is reported as (nil, nil) so callers can distinguish
// "not cached" from a transport failure.
type SnapshotStore interface {
	Get(ctx context.Context, tenantID uuid.UUID) (*subscription.UsageSnapshot, error)
	Set(ctx context.Context, tenantID uuid.UUID, snapshot *subscription.UsageSnapshot, ttl time.Duration) error
	Delete(ctx context.Context, tenantID uuid.UUID) error
	// Flush removes every snapshot under the store's key prefix, for use when
	// counting rules or package definitions change out from under the cache.
	Flush(ctx context.Context) error
	Close() error
}

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edusuite/backend/internal/domain/subscription"
)

const (
	defaultCleanupInterval = 30 * time.Second
	defaultSnapshotTTL     = 10 * time.Minute
)

// MemorySnapshotStore implements SnapshotStore using in-memory storage.
// Suitable for single-instance deployments and as an L1 in front of Redis.
type MemorySnapshotStore struct {
	entries sync.Map // map[uuid.UUID]*snapshotEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type snapshotEntry struct {
	snapshot  subscription.UsageSnapshot
	expiresAt time.Time
}

func (e *snapshotEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// MemorySnapshotStoreOption is a functional option for configuring the store
type MemorySnapshotStoreOption func(*MemorySnapshotStore)

// WithDefaultTTL sets the TTL applied when Set is called with ttl == 0
func WithDefaultTTL(ttl time.Duration) MemorySnapshotStoreOption {
	return func(s *MemorySnapshotStore) {
		s.ttl = ttl
	}
}

// WithMemoryLogger sets the logger for the store
func WithMemoryLogger(logger *zap.Logger) MemorySnapshotStoreOption {
	return func(s *MemorySnapshotStore) {
		s.logger = logger
	}
}

// NewMemorySnapshotStore creates a new in-memory usage snapshot store
func NewMemorySnapshotStore(opts ...MemorySnapshotStoreOption) *MemorySnapshotStore {
	store := &MemorySnapshotStore{
		ttl:    defaultSnapshotTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(store)
	}

	go store.cleanupExpired()

	return store
}

// Get retrieves a cached snapshot for a tenant
func (s *MemorySnapshotStore) Get(ctx context.Context, tenantID uuid.UUID) (*subscription.UsageSnapshot, error) {
	if value, ok := s.entries.Load(tenantID); ok {
		entry := value.(*snapshotEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&s.hits, 1)
			snap := entry.snapshot
			return &snap, nil
		}
		s.entries.Delete(tenantID)
	}

	atomic.AddInt64(&s.misses, 1)
	s.logger.Debug("usage snapshot cache miss", zap.String("tenant_id", tenantID.String()))
	return nil, nil
}

// Set stores a snapshot for a tenant
func (s *MemorySnapshotStore) Set(ctx context.Context, tenantID uuid.UUID, snapshot *subscription.UsageSnapshot, ttl time.Duration) error {
	if snapshot == nil {
		return nil
	}
	if ttl == 0 {
		ttl = s.ttl
	}

	s.entries.Store(tenantID, &snapshotEntry{
		snapshot:  *snapshot,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Delete removes a tenant's cached snapshot
func (s *MemorySnapshotStore) Delete(ctx context.Context, tenantID uuid.UUID) error {
	s.entries.Delete(tenantID)
	return nil
}

// Flush removes all cached snapshots
func (s *MemorySnapshotStore) Flush(ctx context.Context) error {
	s.entries.Range(func(key, _ any) bool {
		s.entries.Delete(key)
		return true
	})
	return nil
}

// Close stops the background cleanup goroutine
func (s *MemorySnapshotStore) Close() error {
	if atomic.CompareAndSwapInt32(&s.stopped, 0, 1) {
		close(s.stopCh)
	}
	return nil
}

// Stats returns hit and miss counters
func (s *MemorySnapshotStore) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&s.hits), atomic.LoadInt64(&s.misses)
}

// Count returns the number of cached snapshots, expired entries included
func (s *MemorySnapshotStore) Count() int {
	var n int
	s.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func (s *MemorySnapshotStore) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						s.logger.Error("panic in snapshot cache cleanup", zap.Any("panic", r))
					}
				}()
				s.doCleanup()
			}()
		}
	}
}

func (s *MemorySnapshotStore) doCleanup() {
	var removed int
	s.entries.Range(func(key, value any) bool {
		if value.(*snapshotEntry).isExpired() {
			s.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		s.logger.Debug("cleaned up expired usage snapshots", zap.Int("removed", removed))
	}
}

var _ SnapshotStore = (*MemorySnapshotStore)(nil)

// Package usage computes and caches tenant resource usage snapshots.
package usage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edusuite/backend/internal/domain/school"
	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/edusuite/backend/internal/domain/subscription"
)

// Counters defines the raw per-dimension counts the calculator aggregates
type Counters interface {
	CountSchools(ctx context.Context, ownerID uuid.UUID) (int64, error)
	CountStudents(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountTeachers(ctx context.Context, tenantID uuid.UUID) (int64, error)
	CountStaff(ctx context.Context, tenantID uuid.UUID) (int64, error)
	StorageTableNames() []string
	SumStorageBytes(ctx context.Context, tenantID uuid.UUID, table string) (int64, error)
}

// Calculator computes point-in-time usage snapshots for a tenant.
//
// Every dimension is aggregated independently and concurrently. A failed
// aggregation contributes zero and is logged, never propagated: the snapshot
// is always returned, and under partial failure its values are a lower bound.
type Calculator struct {
	schools  school.SchoolRepository
	counters Counters
	logger   *zap.Logger
}

// NewCalculator creates a usage snapshot calculator
func NewCalculator(schools school.SchoolRepository, counters Counters, logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{schools: schools, counters: counters, logger: logger}
}

// Calculate computes a fresh usage snapshot for the tenant
func (c *Calculator) Calculate(ctx context.Context, tenantID uuid.UUID) (subscription.UsageSnapshot, error) {
	if tenantID == uuid.Nil {
		return subscription.UsageSnapshot{}, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}

	snap := subscription.UsageSnapshot{Schools: 1}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		snap.Schools = c.countSchools(ctx, tenantID)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if n, err := c.counters.CountStudents(ctx, tenantID); err != nil {
			c.warn(tenantID, "students", err)
		} else {
			snap.Students = n
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if n, err := c.counters.CountTeachers(ctx, tenantID); err != nil {
			c.warn(tenantID, "teachers", err)
		} else {
			snap.Teachers = n
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if n, err := c.counters.CountStaff(ctx, tenantID); err != nil {
			c.warn(tenantID, "staff", err)
		} else {
			snap.Staff = n
		}
	}()

	tables := c.counters.StorageTableNames()
	contributions := make([]int64, len(tables))
	for i, table := range tables {
		wg.Add(1)
		go func(i int, table string) {
			defer wg.Done()
			n, err := c.counters.SumStorageBytes(ctx, tenantID, table)
			if err != nil {
				c.warn(tenantID, "storage:"+table, err)
				return
			}
			contributions[i] = n
		}(i, table)
	}

	wg.Wait()

	for _, n := range contributions {
		snap.StorageBytes += n
	}
	snap.RoundStorage()
	snap.ComputedAt = time.Now().UTC()

	return snap, nil
}

// countSchools resolves the tenant's owner and counts sibling schools.
// Falls back to 1 (the tenant itself) when the owner cannot be determined.
func (c *Calculator) countSchools(ctx context.Context, tenantID uuid.UUID) int64 {
	s, err := c.schools.FindByID(ctx, tenantID)
	if err != nil {
		c.warn(tenantID, "schools", err)
		return 1
	}

	n, err := c.counters.CountSchools(ctx, s.OwnerID)
	if err != nil {
		c.warn(tenantID, "schools", err)
		return 1
	}
	if n < 1 {
		return 1
	}
	return n
}

func (c *Calculator) warn(tenantID uuid.UUID, dimension string, err error) {
	c.logger.Warn("usage aggregation failed, dimension counts as zero",
		zap.String("tenant_id", tenantID.String()),
		zap.String("dimension", dimension),
		zap.Error(err))
}

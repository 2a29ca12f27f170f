package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusuite/backend/internal/domain/school"
	"github.com/edusuite/backend/internal/domain/shared"
)

// StorageTables lists every content table that contributes to a tenant's
// storage usage. Each table is aggregated independently; `files` and
// `document_versions` are absent in some deployments, so a failed aggregation
// degrades that table's contribution to zero instead of failing the snapshot.
var StorageTables = []string{
	"documents",
	"assignment_attachments",
	"submission_attachments",
	"message_attachments",
	"document_versions",
	"staff_documents",
	"files",
}

var storageTableSet = func() map[string]bool {
	m := make(map[string]bool, len(StorageTables))
	for _, t := range StorageTables {
		m[t] = true
	}
	return m
}()

// GormUsageCounters provides the raw per-dimension counts behind usage
// snapshots. Counts follow the lifecycle rule: only active rows count, and
// for revocable entities "count" means rows with revoked_at IS NULL.
type GormUsageCounters struct {
	db *gorm.DB
}

// NewGormUsageCounters creates a new GormUsageCounters
func NewGormUsageCounters(db *gorm.DB) *GormUsageCounters {
	return &GormUsageCounters{db: db}
}

// CountSchools counts active schools under the given owner
func (r *GormUsageCounters) CountSchools(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&school.School{}).
		Where("owner_id = ? AND state = ?", ownerID, shared.LifecycleActive).
		Count(&count).Error
	return count, err
}

// CountStudents counts a tenant's active students
func (r *GormUsageCounters) CountStudents(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return r.countActive(ctx, &school.Student{}, tenantID)
}

// CountTeachers counts a tenant's active teachers
func (r *GormUsageCounters) CountTeachers(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return r.countActive(ctx, &school.Teacher{}, tenantID)
}

// CountStaff counts a tenant's active staff members
func (r *GormUsageCounters) CountStaff(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	return r.countActive(ctx, &school.Staff{}, tenantID)
}

func (r *GormUsageCounters) countActive(ctx context.Context, model any, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(model).
		Where("tenant_id = ? AND state = ?", tenantID, shared.LifecycleActive).
		Count(&count).Error
	return count, err
}

// StorageTableNames returns the storage-contributing tables in aggregation order
func (r *GormUsageCounters) StorageTableNames() []string {
	out := make([]string, len(StorageTables))
	copy(out, StorageTables)
	return out
}

// SumStorageBytes sums the size_bytes column of one storage table for a
// tenant. The table name must come from StorageTables.
func (r *GormUsageCounters) SumStorageBytes(ctx context.Context, tenantID uuid.UUID, table string) (int64, error) {
	if !storageTableSet[table] {
		return 0, fmt.Errorf("table %q is not a storage-contributing table", table)
	}

	var total int64
	// Table name comes from the whitelist above, only the tenant id is bound.
	query := fmt.Sprintf("SELECT COALESCE(SUM(size_bytes), 0) FROM %s WHERE tenant_id = ?", table)
	if err := r.db.WithContext(ctx).Raw(query, tenantID).Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("storage aggregation for %s failed: %w", table, err)
	}
	return total, nil
}

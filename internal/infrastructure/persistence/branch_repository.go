package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusuite/backend/internal/domain/school"
	"github.com/edusuite/backend/internal/domain/shared"
)

// GormBranchRepository implements school.BranchRepository using GORM
type GormBranchRepository struct {
	db *gorm.DB
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// FindByID finds a branch by its ID
func (r *GormBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Branch, error) {
	var b school.Branch
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

// CountActive counts a tenant's active branches; this is the live counter the
// quota gate consumes.
func (r *GormBranchRepository) CountActive(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&school.Branch{}).
		Where("tenant_id = ? AND state = ?", tenantID, shared.LifecycleActive).
		Count(&count).Error
	return count, err
}

// Save creates or updates a branch
func (r *GormBranchRepository) Save(ctx context.Context, b *school.Branch) error {
	return r.db.WithContext(ctx).Save(b).Error
}

var _ school.BranchRepository = (*GormBranchRepository)(nil)

// GormCourseRepository implements school.CourseRepository using GORM
type GormCourseRepository struct {
	db *gorm.DB
}

// NewGormCourseRepository creates a new GormCourseRepository
func NewGormCourseRepository(db *gorm.DB) *GormCourseRepository {
	return &GormCourseRepository{db: db}
}

// FindByID finds a course by its ID
func (r *GormCourseRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.Course, error) {
	var c school.Course
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// CountActive counts a tenant's active courses
func (r *GormCourseRepository) CountActive(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&school.Course{}).
		Where("tenant_id = ? AND state = ?", tenantID, shared.LifecycleActive).
		Count(&count).Error
	return count, err
}

// Save creates or updates a course
func (r *GormCourseRepository) Save(ctx context.Context, c *school.Course) error {
	return r.db.WithContext(ctx).Save(c).Error
}

var _ school.CourseRepository = (*GormCourseRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusuite/backend/internal/domain/school"
	"github.com/edusuite/backend/internal/domain/shared"
)

// GormAssignmentRepository implements school.AssignmentRepository using GORM.
// "Active" is always revoked_at IS NULL; revoked rows stay in the table and
// never count toward uniqueness or quotas.
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GormAssignmentRepository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

// FindByID finds an assignment by its ID
func (r *GormAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.ManagerAssignment, error) {
	var a school.ManagerAssignment
	if err := r.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// FindActive returns the active assignment of a user to a target, nil if none
func (r *GormAssignmentRepository) FindActive(ctx context.Context, tenantID, userID, targetID uuid.UUID, kind school.AssignmentKind) (*school.ManagerAssignment, error) {
	targetColumn := "branch_id"
	if kind == school.AssignmentCourse {
		targetColumn = "course_id"
	}

	var a school.ManagerAssignment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND kind = ? AND "+targetColumn+" = ? AND revoked_at IS NULL",
			tenantID, userID, kind, targetID).
		First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// FindActiveByUser returns all active assignments of a user in a tenant
func (r *GormAssignmentRepository) FindActiveByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]school.ManagerAssignment, error) {
	var out []school.ManagerAssignment
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND user_id = ? AND revoked_at IS NULL", tenantID, userID).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CountActiveByKind counts a tenant's active assignments of one kind; this is
// the live counter behind the manager quotas.
func (r *GormAssignmentRepository) CountActiveByKind(ctx context.Context, tenantID uuid.UUID, kind school.AssignmentKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&school.ManagerAssignment{}).
		Where("tenant_id = ? AND kind = ? AND revoked_at IS NULL", tenantID, kind).
		Count(&count).Error
	return count, err
}

// Save creates or updates an assignment
func (r *GormAssignmentRepository) Save(ctx context.Context, a *school.ManagerAssignment) error {
	return r.db.WithContext(ctx).Save(a).Error
}

var _ school.AssignmentRepository = (*GormAssignmentRepository)(nil)

package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edusuite/backend/internal/domain/school"
	"github.com/edusuite/backend/internal/domain/shared"
)

// GormSchoolRepository implements school.SchoolRepository using GORM
type GormSchoolRepository struct {
	db *gorm.DB
}

// NewGormSchoolRepository creates a new GormSchoolRepository
func NewGormSchoolRepository(db *gorm.DB) *GormSchoolRepository {
	return &GormSchoolRepository{db: db}
}

// FindByID finds a school by its ID
func (r *GormSchoolRepository) FindByID(ctx context.Context, id uuid.UUID) (*school.School, error) {
	var s school.School
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// CountByOwner counts active schools held by an owner
func (r *GormSchoolRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&school.School{}).
		Where("owner_id = ? AND state = ?", ownerID, shared.LifecycleActive).
		Count(&count).Error
	return count, err
}

// Save creates or updates a school
func (r *GormSchoolRepository) Save(ctx context.Context, s *school.School) error {
	return r.db.WithContext(ctx).Save(s).Error
}

var _ school.SchoolRepository = (*GormSchoolRepository)(nil)

package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/edusuite/backend/internal/domain/subscription"
)

// GormSubscriptionRepository implements subscription.SubscriptionRepository using GORM
type GormSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormSubscriptionRepository creates a new GormSubscriptionRepository
func NewGormSubscriptionRepository(db *gorm.DB) *GormSubscriptionRepository {
	return &GormSubscriptionRepository{db: db}
}

// FindByID finds a subscription by its ID
func (r *GormSubscriptionRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Subscription, error) {
	var s subscription.Subscription
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// FindActiveByTenant returns the tenant's current active subscription
func (r *GormSubscriptionRepository) FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*subscription.Subscription, error) {
	return r.findActive(r.db.WithContext(ctx), tenantID)
}

// FindActiveByTenantForUpdate loads the active subscription with a row lock.
// Must be called inside a transaction; concurrent quota checks serialize on
// the subscription row.
func (r *GormSubscriptionRepository) FindActiveByTenantForUpdate(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) (*subscription.Subscription, error) {
	return r.findActive(tx.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), tenantID)
}

func (r *GormSubscriptionRepository) findActive(db *gorm.DB, tenantID uuid.UUID) (*subscription.Subscription, error) {
	var s subscription.Subscription
	now := time.Now()
	err := db.
		Where("tenant_id = ? AND status = ? AND starts_at <= ? AND ends_at > ?",
			tenantID, subscription.StatusActive, now, now).
		Order("starts_at DESC").
		First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Save creates or updates a subscription
func (r *GormSubscriptionRepository) Save(ctx context.Context, s *subscription.Subscription) error {
	return r.db.WithContext(ctx).Save(s).Error
}

// UpdateUsageCache persists only the cached snapshot columns, leaving the
// rest of the row untouched.
func (r *GormSubscriptionRepository) UpdateUsageCache(ctx context.Context, s *subscription.Subscription) error {
	return r.db.WithContext(ctx).
		Model(&subscription.Subscription{}).
		Where("id = ?", s.ID).
		Updates(map[string]any{
			"usage_schools":       s.Usage.Schools,
			"usage_students":      s.Usage.Students,
			"usage_teachers":      s.Usage.Teachers,
			"usage_staff":         s.Usage.Staff,
			"usage_storage_bytes": s.Usage.StorageBytes,
			"usage_storage_gb":    s.Usage.StorageGB,
			"usage_computed_at":   s.Usage.ComputedAt,
			"usage_refreshed_at":  s.UsageRefreshedAt,
		}).Error
}

var _ subscription.SubscriptionRepository = (*GormSubscriptionRepository)(nil)

// GormPackageRepository implements subscription.PackageRepository using GORM
type GormPackageRepository struct {
	db *gorm.DB
}

// NewGormPackageRepository creates a new GormPackageRepository
func NewGormPackageRepository(db *gorm.DB) *GormPackageRepository {
	return &GormPackageRepository{db: db}
}

// FindByID finds a package by its ID
func (r *GormPackageRepository) FindByID(ctx context.Context, id uuid.UUID) (*subscription.Package, error) {
	var p subscription.Package
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindByName finds a package by its unique name
func (r *GormPackageRepository) FindByName(ctx context.Context, name string) (*subscription.Package, error) {
	var p subscription.Package
	if err := r.db.WithContext(ctx).First(&p, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// FindPublished returns all packages visible for subscription
func (r *GormPackageRepository) FindPublished(ctx context.Context) ([]subscription.Package, error) {
	var out []subscription.Package
	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Order("name ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Save creates or updates a package
func (r *GormPackageRepository) Save(ctx context.Context, p *subscription.Package) error {
	return r.db.WithContext(ctx).Save(p).Error
}

var _ subscription.PackageRepository = (*GormPackageRepository)(nil)

package subscription

import (
	"time"

	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SubscriptionStatus represents the state of a subscription
type SubscriptionStatus string

const (
	StatusActive    SubscriptionStatus = "active"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
)

// Subscription binds a tenant to a package. At most one subscription per
// tenant is ACTIVE at a time; that is caller discipline backed by a partial
// unique index in migrations, not a constraint this type enforces. Usage is a
// denormalized, advisory cache refreshed after counted mutations.
type Subscription struct {
	shared.BaseEntity
	TenantID    uuid.UUID          `gorm:"type:uuid;not null;index"`
	PackageID   uuid.UUID          `gorm:"type:uuid;not null"`
	Status      SubscriptionStatus `gorm:"type:varchar(20);not null;default:'active'"`
	StartsAt    time.Time          `gorm:"not null"`
	EndsAt      time.Time          `gorm:"not null;index"`
	AutoRenew   bool               `gorm:"not null;default:false"`
	CancelledAt *time.Time

	Usage            UsageSnapshot `gorm:"embedded;embeddedPrefix:usage_"`
	UsageRefreshedAt *time.Time
}

// TableName returns the table name for GORM
func (Subscription) TableName() string {
	return "subscriptions"
}

// NewSubscription creates an active subscription for a tenant
func NewSubscription(tenantID, packageID uuid.UUID, startsAt, endsAt time.Time) (*Subscription, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if packageID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PACKAGE", "Package ID cannot be empty")
	}
	if !endsAt.After(startsAt) {
		return nil, shared.NewDomainError("INVALID_WINDOW", "Subscription end must be after start")
	}

	return &Subscription{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		PackageID:  packageID,
		Status:     StatusActive,
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	}, nil
}

// IsActive reports whether the subscription is usable at the given time
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == StatusActive && !now.Before(s.StartsAt) && now.Before(s.EndsAt)
}

// Renew extends the validity window and restores active status
func (s *Subscription) Renew(until time.Time) error {
	if !until.After(s.EndsAt) {
		return shared.NewDomainError("INVALID_WINDOW", "Renewal must extend the subscription")
	}
	s.EndsAt = until
	s.Status = StatusActive
	s.CancelledAt = nil
	s.UpdatedAt = time.Now()
	return nil
}

// Cancel marks the subscription cancelled. Cancelling twice is an error.
func (s *Subscription) Cancel() error {
	if s.Status == StatusCancelled {
		return shared.NewDomainError("ALREADY_CANCELLED", "Subscription is already cancelled")
	}
	now := time.Now()
	s.Status = StatusCancelled
	s.CancelledAt = &now
	s.UpdatedAt = now
	return nil
}

// Reactivate restores a cancelled subscription. Only allowed while the
// original validity window still holds.
func (s *Subscription) Reactivate(now time.Time) error {
	if s.Status != StatusCancelled {
		return shared.NewDomainError("NOT_CANCELLED", "Only cancelled subscriptions can be reactivated")
	}
	if !now.Before(s.EndsAt) {
		return shared.NewDomainError("WINDOW_ELAPSED", "Subscription validity window has elapsed")
	}
	s.Status = StatusActive
	s.CancelledAt = nil
	s.UpdatedAt = time.Now()
	return nil
}

// ChangePackage moves the subscription to another package; feature and limit
// resolution picks up the new package on the next tenant-context resolve.
func (s *Subscription) ChangePackage(packageID uuid.UUID) error {
	if packageID == uuid.Nil {
		return shared.NewDomainError("INVALID_PACKAGE", "Package ID cannot be empty")
	}
	s.PackageID = packageID
	s.UpdatedAt = time.Now()
	return nil
}

// MarkExpired transitions the subscription past its window
func (s *Subscription) MarkExpired() {
	s.Status = StatusExpired
	s.UpdatedAt = time.Now()
}

// SetUsageCache stores a computed snapshot on the subscription record
func (s *Subscription) SetUsageCache(snapshot UsageSnapshot) {
	now := time.Now()
	s.Usage = snapshot
	s.UsageRefreshedAt = &now
	s.UpdatedAt = now
}

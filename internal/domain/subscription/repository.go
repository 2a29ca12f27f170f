package subscription

import (
	"context"

	"github.com/google/uuid"
)

// SubscriptionRepository defines persistence for subscriptions
type SubscriptionRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	// FindActiveByTenant returns the tenant's current active subscription, or
	// shared.ErrNotFound when none exists.
	FindActiveByTenant(ctx context.Context, tenantID uuid.UUID) (*Subscription, error)
	Save(ctx context.Context, s *Subscription) error
	// UpdateUsageCache persists only the cached snapshot columns
	UpdateUsageCache(ctx context.Context, s *Subscription) error
}

// PackageRepository defines persistence for package templates
type PackageRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Package, error)
	FindByName(ctx context.Context, name string) (*Package, error)
	FindPublished(ctx context.Context) ([]Package, error)
	Save(ctx context.Context, p *Package) error
}

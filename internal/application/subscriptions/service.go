// Package subscriptions is the administrative lifecycle service for tenant
// subscriptions: onboarding, renewal, cancellation, reactivation and package
// changes.
package subscriptions

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edusuite/backend/internal/domain/school"
	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/edusuite/backend/internal/domain/subscription"
)

// UsageInvalidator drops a tenant's cached usage snapshot. Satisfied by
// usage.CacheWriter.
type UsageInvalidator interface {
	Invalidate(ctx context.Context, tenantID uuid.UUID) error
}

// Service manages subscription lifecycle transitions. It owns the caller side
// of the one-active-subscription invariant: Create refuses a tenant that
// already has an active subscription, and the partial unique index in
// migrations backs that up against races.
//
// Every lifecycle operation is tenant-scoped: a subscription id belonging to
// another tenant reads as not found, it never leaks across the boundary.
type Service struct {
	schools       school.SchoolRepository
	subscriptions subscription.SubscriptionRepository
	packages      subscription.PackageRepository
	usage         UsageInvalidator
	logger        *zap.Logger
}

// NewService creates the subscription lifecycle service. The usage
// invalidator is optional; pass nil to skip snapshot cache invalidation.
func NewService(
	schools school.SchoolRepository,
	subscriptions subscription.SubscriptionRepository,
	packages subscription.PackageRepository,
	usage UsageInvalidator,
	logger *zap.Logger,
) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		schools:       schools,
		subscriptions: subscriptions,
		packages:      packages,
		usage:         usage,
		logger:        logger,
	}
}

// findTenantSubscription loads a subscription and checks it belongs to the
// caller's tenant. A foreign subscription is indistinguishable from a
// missing one.
func (s *Service) findTenantSubscription(ctx context.Context, tenantID, id uuid.UUID) (*subscription.Subscription, error) {
	sub, err := s.subscriptions.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sub.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return sub, nil
}

// Create starts a subscription for a tenant at onboarding. The validity
// window is derived from the package's billing cycle.
func (s *Service) Create(ctx context.Context, tenantID, packageID uuid.UUID, startsAt time.Time) (*subscription.Subscription, error) {
	if _, err := s.schools.FindByID(ctx, tenantID); err != nil {
		return nil, err
	}

	pkg, err := s.packages.FindByID(ctx, packageID)
	if err != nil {
		return nil, err
	}

	existing, err := s.subscriptions.FindActiveByTenant(ctx, tenantID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("SUBSCRIPTION_EXISTS", "Tenant already has an active subscription")
	}

	sub, err := subscription.NewSubscription(tenantID, packageID, startsAt, startsAt.Add(cycleDuration(pkg.Cycle)))
	if err != nil {
		return nil, err
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("package", pkg.Name),
		zap.Time("ends_at", sub.EndsAt))
	return sub, nil
}

// Active returns the tenant's current active subscription
func (s *Service) Active(ctx context.Context, tenantID uuid.UUID) (*subscription.Subscription, error) {
	return s.subscriptions.FindActiveByTenant(ctx, tenantID)
}

// Renew extends a subscription by one billing cycle of its current package,
// measured from the later of now and the current end.
func (s *Service) Renew(ctx context.Context, tenantID, id uuid.UUID) (*subscription.Subscription, error) {
	sub, err := s.findTenantSubscription(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	pkg, err := s.packages.FindByID(ctx, sub.PackageID)
	if err != nil {
		return nil, err
	}

	from := sub.EndsAt
	if now := time.Now(); now.After(from) {
		from = now
	}
	if err := sub.Renew(from.Add(cycleDuration(pkg.Cycle))); err != nil {
		return nil, err
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription renewed",
		zap.String("subscription_id", id.String()),
		zap.String("tenant_id", sub.TenantID.String()),
		zap.Time("ends_at", sub.EndsAt))
	return sub, nil
}

// Cancel marks a subscription cancelled and drops the tenant's cached usage
// snapshot so the next resolution sees the new state.
func (s *Service) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*subscription.Subscription, error) {
	sub, err := s.findTenantSubscription(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := sub.Cancel(); err != nil {
		return nil, err
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}
	if s.usage != nil {
		if err := s.usage.Invalidate(ctx, sub.TenantID); err != nil {
			s.logger.Warn("usage snapshot invalidation failed",
				zap.String("tenant_id", sub.TenantID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("subscription cancelled",
		zap.String("subscription_id", id.String()),
		zap.String("tenant_id", sub.TenantID.String()))
	return sub, nil
}

// Reactivate restores a cancelled subscription while its window still holds
func (s *Service) Reactivate(ctx context.Context, tenantID, id uuid.UUID) (*subscription.Subscription, error) {
	sub, err := s.findTenantSubscription(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := sub.Reactivate(time.Now()); err != nil {
		return nil, err
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription reactivated",
		zap.String("subscription_id", id.String()),
		zap.String("tenant_id", sub.TenantID.String()))
	return sub, nil
}

// ChangePackage moves a subscription onto another package. Features and
// limits follow on the next tenant-context resolution; no data migration
// happens here.
func (s *Service) ChangePackage(ctx context.Context, tenantID, id, packageID uuid.UUID) (*subscription.Subscription, error) {
	sub, err := s.findTenantSubscription(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	pkg, err := s.packages.FindByID(ctx, packageID)
	if err != nil {
		return nil, err
	}
	if err := sub.ChangePackage(pkg.ID); err != nil {
		return nil, err
	}
	if err := s.subscriptions.Save(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("subscription package changed",
		zap.String("subscription_id", id.String()),
		zap.String("tenant_id", sub.TenantID.String()),
		zap.String("package", pkg.Name))
	return sub, nil
}

func cycleDuration(cycle subscription.BillingCycle) time.Duration {
	if cycle == subscription.BillingYearly {
		return 365 * 24 * time.Hour
	}
	return 30 * 24 * time.Hour
}

// Package tenantctx resolves a tenant's effective feature and limit
// configuration from its active subscription.
package tenantctx

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edusuite/backend/internal/domain/school"
	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/edusuite/backend/internal/domain/subscription"
)

// TenantContext is the resolved configuration of one tenant. Subscription and
// Package are nil when the tenant has no active subscription; Features and
// Limits are always fully populated, falling back to catalog defaults.
type TenantContext struct {
	TenantID     uuid.UUID
	OwnerID      uuid.UUID
	Subscription *subscription.Subscription
	Package      *subscription.Package
	Features     subscription.FeatureMap
	Limits       subscription.LimitSet
}

// HasSubscription reports whether an active subscription backs this context
func (c *TenantContext) HasSubscription() bool {
	return c.Subscription != nil
}

// Resolver loads a tenant's active subscription and package and normalizes
// the package's feature configuration into a complete FeatureMap and LimitSet.
type Resolver struct {
	schools       school.SchoolRepository
	subscriptions subscription.SubscriptionRepository
	packages      subscription.PackageRepository
	logger        *zap.Logger
}

// NewResolver creates a tenant context resolver
func NewResolver(
	schools school.SchoolRepository,
	subscriptions subscription.SubscriptionRepository,
	packages subscription.PackageRepository,
	logger *zap.Logger,
) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		schools:       schools,
		subscriptions: subscriptions,
		packages:      packages,
		logger:        logger,
	}
}

// Resolve produces the tenant's effective configuration. A missing
// subscription or package is not an error: the tenant gets an all-default
// FeatureMap, which typically means every limit is zero or disabled. Only a
// missing tenant or an infrastructure failure is fatal.
func (r *Resolver) Resolve(ctx context.Context, tenantID uuid.UUID) (*TenantContext, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}

	sch, err := r.schools.FindByID(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	out := &TenantContext{
		TenantID: tenantID,
		OwnerID:  sch.OwnerID,
		Features: subscription.DefaultFeatureMap(),
	}

	sub, err := r.subscriptions.FindActiveByTenant(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		out.Limits = subscription.LimitsFromFeatures(out.Features)
		return out, nil
	}
	out.Subscription = sub

	pkg, err := r.packages.FindByID(ctx, sub.PackageID)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		r.logger.Warn("subscription references a missing package, using default features",
			zap.String("tenant_id", tenantID.String()),
			zap.String("package_id", sub.PackageID.String()))
		out.Limits = subscription.LimitsFromFeatures(out.Features)
		return out, nil
	}
	out.Package = pkg

	features, err := pkg.Features()
	if err != nil {
		// Decode failure falls back to a complete default map rather than
		// failing the request.
		r.logger.Warn("package feature configuration is malformed, using defaults",
			zap.String("tenant_id", tenantID.String()),
			zap.String("package", pkg.Name),
			zap.Error(err))
	}
	out.Features = features
	out.Limits = subscription.LimitsFromFeatures(out.Features)

	return out, nil
}

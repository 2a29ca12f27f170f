// Package quota enforces package limits on resource-creating mutations.
package quota

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/edusuite/backend/internal/application/tenantctx"
	"github.com/edusuite/backend/internal/application/usage"
	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/edusuite/backend/internal/domain/subscription"
)

// CounterFunc supplies the live count of the resource being gated, for
// example "active branches of this tenant". It is only invoked when the
// dimension actually has a finite, positive limit.
type CounterFunc func(ctx context.Context) (int64, error)

// TxCounterFunc is the transactional variant; counts must run on the
// supplied transaction so they observe rows written earlier in it.
type TxCounterFunc func(ctx context.Context, tx *gorm.DB) (int64, error)

// TxRunner runs a function inside a database transaction
type TxRunner interface {
	Transaction(fn func(tx *gorm.DB) error) error
}

// LockingSubscriptionFinder loads a tenant's active subscription under a row
// lock, serializing concurrent quota checks for the same tenant.
type LockingSubscriptionFinder interface {
	FindActiveByTenantForUpdate(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) (*subscription.Subscription, error)
}

// Gate performs the limit check that guards every quota-gated creation.
// Enforce is the plain check-then-proceed variant; two concurrent requests
// can both pass it and exceed the limit by one. EnforceTx closes that race
// by holding a row lock on the subscription for the duration of the
// count-and-create.
type Gate struct {
	tenants *tenantctx.Resolver
	logger  *zap.Logger
}

// NewGate creates a quota gate
func NewGate(tenants *tenantctx.Resolver, logger *zap.Logger) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gate{tenants: tenants, logger: logger}
}

// Enforce checks the tenant's limit for one dimension against a live count.
// A nil limit passes unconditionally; a limit of zero or below rejects
// without invoking the counter; otherwise the mutation is allowed only while
// used < limit. On rejection the returned error is always a
// *subscription.LimitExceededError.
func (g *Gate) Enforce(ctx context.Context, tenantID uuid.UUID, key subscription.LimitKey, counter CounterFunc) error {
	tc, err := g.tenants.Resolve(ctx, tenantID)
	if err != nil {
		return err
	}
	return g.check(ctx, tenantID, tc.Limits, key, counter)
}

func (g *Gate) check(ctx context.Context, tenantID uuid.UUID, limits subscription.LimitSet, key subscription.LimitKey, counter CounterFunc) error {
	limit, ok := limits.Get(key)
	if !ok {
		return shared.NewDomainError("UNKNOWN_LIMIT", "Unknown quota dimension: "+string(key))
	}
	if limit == nil {
		return nil
	}
	if *limit <= 0 {
		// Feature disabled outright, usage is irrelevant
		return subscription.NewLimitExceededError(key, *limit, 0)
	}

	used, err := counter(ctx)
	if err != nil {
		return err
	}
	if used >= *limit {
		g.logger.Info("quota limit reached",
			zap.String("tenant_id", tenantID.String()),
			zap.String("limit_key", string(key)),
			zap.Int64("limit", *limit),
			zap.Int64("used", used))
		return subscription.NewLimitExceededError(key, *limit, used)
	}
	return nil
}

// TxGate is the transactional quota gate. It resolves limits from the
// subscription row itself, loaded FOR UPDATE, so that the check and the
// guarded mutation are atomic with respect to concurrent checks on the
// same tenant.
type TxGate struct {
	db            TxRunner
	subscriptions LockingSubscriptionFinder
	packages      subscription.PackageRepository
	logger        *zap.Logger
}

// NewTxGate creates a transactional quota gate
func NewTxGate(db TxRunner, subscriptions LockingSubscriptionFinder, packages subscription.PackageRepository, logger *zap.Logger) *TxGate {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TxGate{db: db, subscriptions: subscriptions, packages: packages, logger: logger}
}

// EnforceTx runs counter and mutate inside one transaction while holding a
// row lock on the tenant's subscription. The lock serializes concurrent
// EnforceTx calls for the tenant; the second caller re-counts after the
// first commits and sees its row. Tenants without an active subscription
// get catalog-default limits, which disable every gated dimension except
// storage.
func (t *TxGate) EnforceTx(ctx context.Context, tenantID uuid.UUID, key subscription.LimitKey, counter TxCounterFunc, mutate func(tx *gorm.DB) error) error {
	if tenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}

	return t.db.Transaction(func(tx *gorm.DB) error {
		limits, err := t.lockedLimits(ctx, tx, tenantID)
		if err != nil {
			return err
		}

		limit, ok := limits.Get(key)
		if !ok {
			return shared.NewDomainError("UNKNOWN_LIMIT", "Unknown quota dimension: "+string(key))
		}
		if limit != nil {
			if *limit <= 0 {
				return subscription.NewLimitExceededError(key, *limit, 0)
			}
			used, err := counter(ctx, tx)
			if err != nil {
				return err
			}
			if used >= *limit {
				return subscription.NewLimitExceededError(key, *limit, used)
			}
		}

		return mutate(tx)
	})
}

// lockedLimits loads the subscription FOR UPDATE and projects its package
// features into a LimitSet. Missing subscription or package degrades to
// catalog defaults, same as the tenant context resolver.
func (t *TxGate) lockedLimits(ctx context.Context, tx *gorm.DB, tenantID uuid.UUID) (subscription.LimitSet, error) {
	defaults := func() subscription.LimitSet {
		return subscription.LimitsFromFeatures(subscription.DefaultFeatureMap())
	}

	sub, err := t.subscriptions.FindActiveByTenantForUpdate(ctx, tx, tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return defaults(), nil
		}
		return nil, err
	}

	pkg, err := t.packages.FindByID(ctx, sub.PackageID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			t.logger.Warn("subscription references a missing package, using default limits",
				zap.String("tenant_id", tenantID.String()),
				zap.String("package_id", sub.PackageID.String()))
			return defaults(), nil
		}
		return nil, err
	}

	features, err := pkg.Features()
	if err != nil {
		t.logger.Warn("package feature configuration is malformed, using defaults",
			zap.String("tenant_id", tenantID.String()),
			zap.String("package", pkg.Name),
			zap.Error(err))
	}
	return subscription.LimitsFromFeatures(features), nil
}

// StorageCounter adapts the cached usage snapshot into a CounterFunc for the
// storage dimension. Partial gigabytes count as consumed; a cold cache
// forces a live recomputation.
func StorageCounter(cache *usage.CacheWriter, calc *usage.Calculator, tenantID uuid.UUID) CounterFunc {
	return func(ctx context.Context) (int64, error) {
		snap, err := cache.Cached(ctx, tenantID)
		if err != nil {
			return 0, err
		}
		if snap == nil {
			fresh, err := calc.Calculate(ctx, tenantID)
			if err != nil {
				return 0, err
			}
			return fresh.StorageGBCeil(), nil
		}
		return snap.StorageGBCeil(), nil
	}
}

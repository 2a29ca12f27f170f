package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/edusuite/backend/internal/application/tenantctx"
	"github.com/edusuite/backend/internal/application/usage"
)

// UsageHandler exposes the tenant's usage snapshot and limit configuration
type UsageHandler struct {
	BaseHandler
	cache      *usage.CacheWriter
	calculator *usage.Calculator
	tenants    *tenantctx.Resolver
}

// NewUsageHandler creates a usage handler
func NewUsageHandler(cache *usage.CacheWriter, calculator *usage.Calculator, tenants *tenantctx.Resolver) *UsageHandler {
	return &UsageHandler{cache: cache, calculator: calculator, tenants: tenants}
}

// Get returns the cached usage snapshot alongside the tenant's limits.
// The snapshot is advisory; a null snapshot means nothing has been computed
// yet for this tenant.
// GET /api/v1/usage
func (h *UsageHandler) Get(c *gin.Context) {
	tenantID, ok := tenantFromScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}

	tc, err := h.tenants.Resolve(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	snap, err := h.cache.Cached(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{
		"usage":  snap,
		"limits": tc.Limits,
	})
}

// Refresh recomputes the usage snapshot and persists it on the subscription
// row. The fresh snapshot is returned even when the tenant has no active
// subscription to cache it on.
// POST /api/v1/usage/refresh
func (h *UsageHandler) Refresh(c *gin.Context) {
	tenantID, ok := tenantFromScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}

	sub, err := h.cache.Refresh(c.Request.Context(), tenantID, nil)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if sub == nil {
		// No active subscription to carry the cache; still report the numbers
		snap, err := h.calculator.Calculate(c.Request.Context(), tenantID)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, gin.H{"usage": snap, "persisted": false})
		return
	}
	h.Success(c, gin.H{"usage": sub.Usage, "persisted": true})
}

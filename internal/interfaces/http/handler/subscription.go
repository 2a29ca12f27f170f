package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edusuite/backend/internal/application/subscriptions"
	"github.com/edusuite/backend/internal/domain/subscription"
)

// SubscriptionHandler exposes the administrative subscription lifecycle
type SubscriptionHandler struct {
	BaseHandler
	service *subscriptions.Service
}

// NewSubscriptionHandler creates a subscription handler
func NewSubscriptionHandler(service *subscriptions.Service) *SubscriptionHandler {
	return &SubscriptionHandler{service: service}
}

// SubscriptionResponse is the wire shape of a subscription
type SubscriptionResponse struct {
	ID          uuid.UUID                       `json:"id"`
	TenantID    uuid.UUID                       `json:"tenant_id"`
	PackageID   uuid.UUID                       `json:"package_id"`
	Status      subscription.SubscriptionStatus `json:"status"`
	StartsAt    time.Time                       `json:"starts_at"`
	EndsAt      time.Time                       `json:"ends_at"`
	AutoRenew   bool                            `json:"auto_renew"`
	CancelledAt *time.Time                      `json:"cancelled_at,omitempty"`
}

func toSubscriptionResponse(sub *subscription.Subscription) SubscriptionResponse {
	return SubscriptionResponse{
		ID:          sub.ID,
		TenantID:    sub.TenantID,
		PackageID:   sub.PackageID,
		Status:      sub.Status,
		StartsAt:    sub.StartsAt,
		EndsAt:      sub.EndsAt,
		AutoRenew:   sub.AutoRenew,
		CancelledAt: sub.CancelledAt,
	}
}

// CreateSubscriptionRequest is the onboarding request body
type CreateSubscriptionRequest struct {
	PackageID string `json:"package_id" binding:"required,uuid"`
}

// GetActive returns the current tenant's active subscription
// GET /api/v1/subscription
func (h *SubscriptionHandler) GetActive(c *gin.Context) {
	tenantID, ok := tenantFromScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}
	sub, err := h.service.Active(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSubscriptionResponse(sub))
}

// Create starts a subscription for the current tenant
// POST /api/v1/subscription
func (h *SubscriptionHandler) Create(c *gin.Context) {
	tenantID, ok := tenantFromScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		h.BadRequest(c, "Invalid package id")
		return
	}

	sub, err := h.service.Create(c.Request.Context(), tenantID, packageID, time.Now())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toSubscriptionResponse(sub))
}

// Renew extends a subscription by one billing cycle
// POST /api/v1/subscriptions/:id/renew
func (h *SubscriptionHandler) Renew(c *gin.Context) {
	tenantID, ok := tenantFromScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid subscription id")
		return
	}
	sub, err := h.service.Renew(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSubscriptionResponse(sub))
}

// Cancel marks a subscription cancelled
// POST /api/v1/subscriptions/:id/cancel
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	tenantID, ok := tenantFromScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid subscription id")
		return
	}
	sub, err := h.service.Cancel(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSubscriptionResponse(sub))
}

// Reactivate restores a cancelled subscription
// POST /api/v1/subscriptions/:id/reactivate
func (h *SubscriptionHandler) Reactivate(c *gin.Context) {
	tenantID, ok := tenantFromScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid subscription id")
		return
	}
	sub, err := h.service.Reactivate(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSubscriptionResponse(sub))
}

// ChangePackageRequest is the package change request body
type ChangePackageRequest struct {
	PackageID string `json:"package_id" binding:"required,uuid"`
}

// ChangePackage moves a subscription onto another package
// POST /api/v1/subscriptions/:id/package
func (h *SubscriptionHandler) ChangePackage(c *gin.Context) {
	tenantID, ok := tenantFromScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid subscription id")
		return
	}
	var req ChangePackageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	packageID, err := uuid.Parse(req.PackageID)
	if err != nil {
		h.BadRequest(c, "Invalid package id")
		return
	}

	sub, err := h.service.ChangePackage(c.Request.Context(), tenantID, id, packageID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSubscriptionResponse(sub))
}

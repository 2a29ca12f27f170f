package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/edusuite/backend/internal/application/quota"
	"github.com/edusuite/backend/internal/application/usage"
	"github.com/edusuite/backend/internal/domain/school"
	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/edusuite/backend/internal/domain/subscription"
	"github.com/edusuite/backend/internal/infrastructure/logger"
	"github.com/edusuite/backend/internal/infrastructure/scope"
	"github.com/edusuite/backend/internal/interfaces/http/middleware"
)

// OrgHandler creates branches, courses and manager assignments. Every
// creation passes the quota gate, every cross-entity reference is verified
// against the request's scope before the write, and every successful
// mutation refreshes the tenant's usage cache.
type OrgHandler struct {
	BaseHandler
	branches    school.BranchRepository
	courses     school.CourseRepository
	assignments school.AssignmentRepository
	gate        *quota.Gate
	txGate      *quota.TxGate
	verifier    *scope.Verifier
	usage       *usage.CacheWriter
}

// NewOrgHandler creates the organization structure handler. Branch creation
// goes through the transactional gate; the other paths use the plain
// check-then-create gate.
func NewOrgHandler(
	branches school.BranchRepository,
	courses school.CourseRepository,
	assignments school.AssignmentRepository,
	gate *quota.Gate,
	txGate *quota.TxGate,
	verifier *scope.Verifier,
	cacheWriter *usage.CacheWriter,
) *OrgHandler {
	return &OrgHandler{
		branches:    branches,
		courses:     courses,
		assignments: assignments,
		gate:        gate,
		txGate:      txGate,
		verifier:    verifier,
		usage:       cacheWriter,
	}
}

// refreshUsage recounts the tenant's usage after a structural mutation. The
// mutation already succeeded, so a refresh failure is logged, not surfaced.
func (h *OrgHandler) refreshUsage(c *gin.Context, tenantID uuid.UUID) {
	if h.usage == nil {
		return
	}
	if _, err := h.usage.Refresh(c.Request.Context(), tenantID, nil); err != nil {
		logger.GetGinLogger(c).Warn("usage cache refresh failed",
			zap.String("tenant_id", tenantID.String()),
			zap.Error(err))
	}
}

// CreateBranchRequest is the branch creation body
type CreateBranchRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CreateBranch creates a branch, gated on maxBranchesPerSchool
// POST /api/v1/branches
func (h *OrgHandler) CreateBranch(c *gin.Context) {
	tenantID, ok := tenantFromScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}
	var req CreateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	branch, err := school.NewBranch(tenantID, req.Code, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// Count and create under one subscription row lock so two concurrent
	// requests cannot both slip past the limit.
	ctx := c.Request.Context()
	err = h.txGate.EnforceTx(ctx, tenantID, subscription.KeyMaxBranchesPerSchool,
		func(ctx context.Context, tx *gorm.DB) (int64, error) {
			var n int64
			err := tx.WithContext(ctx).Model(&school.Branch{}).
				Where("tenant_id = ? AND state = ?", tenantID, shared.LifecycleActive).
				Count(&n).Error
			return n, err
		},
		func(tx *gorm.DB) error {
			return tx.WithContext(ctx).Create(branch).Error
		})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.refreshUsage(c, tenantID)
	h.Created(c, branch)
}

// GetBranch returns a branch, provided it lies inside the caller's scope
// GET /api/v1/branches/:id
func (h *OrgHandler) GetBranch(c *gin.Context) {
	sc, ok := middleware.GetScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid branch id")
		return
	}

	ctx := c.Request.Context()
	inScope, err := h.verifier.Verify(ctx, "branches", id, sc)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !inScope {
		h.NotFound(c, "Branch not found")
		return
	}
	branch, err := h.branches.FindByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, branch)
}

// CreateCourseRequest is the course creation body; branch_id is optional,
// a course may live directly under the school
type CreateCourseRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	BranchID string `json:"branch_id" binding:"omitempty,uuid"`
}

// CreateCourse creates a course, gated on maxCoursesPerSchool
// POST /api/v1/courses
func (h *OrgHandler) CreateCourse(c *gin.Context) {
	sc, ok := middleware.GetScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}
	var req CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	ctx := c.Request.Context()
	var branchID *uuid.UUID
	if req.BranchID != "" {
		id, err := uuid.Parse(req.BranchID)
		if err != nil {
			h.BadRequest(c, "Invalid branch id")
			return
		}
		inScope, err := h.verifier.Verify(ctx, "branches", id, sc)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		if !inScope {
			h.NotFound(c, "Branch not found")
			return
		}
		branchID = &id
	}

	err := h.gate.Enforce(ctx, sc.TenantID, subscription.KeyMaxCoursesPerSchool,
		func(ctx context.Context) (int64, error) {
			return h.courses.CountActive(ctx, sc.TenantID)
		})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	course, err := school.NewCourse(sc.TenantID, branchID, req.Code, req.Name)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.courses.Save(ctx, course); err != nil {
		h.HandleError(c, err)
		return
	}
	h.refreshUsage(c, sc.TenantID)
	h.Created(c, course)
}

// CreateAssignmentRequest is the manager assignment body
type CreateAssignmentRequest struct {
	UserID   string                `json:"user_id" binding:"required,uuid"`
	Kind     school.AssignmentKind `json:"kind" binding:"required"`
	TargetID string                `json:"target_id" binding:"required,uuid"`
}

// CreateAssignment assigns a user as branch or course manager. The target
// must lie inside the caller's scope, the user must not already hold an
// active assignment to it, and the respective manager quota applies.
// POST /api/v1/assignments
func (h *OrgHandler) CreateAssignment(c *gin.Context) {
	sc, ok := middleware.GetScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}
	var req CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	if !req.Kind.IsValid() {
		h.BadRequest(c, "Invalid assignment kind")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.BadRequest(c, "Invalid user id")
		return
	}
	targetID, err := uuid.Parse(req.TargetID)
	if err != nil {
		h.BadRequest(c, "Invalid target id")
		return
	}

	ctx := c.Request.Context()
	targetTable := "branches"
	limitKey := subscription.KeyMaxBranchManagers
	if req.Kind == school.AssignmentCourse {
		targetTable = "courses"
		limitKey = subscription.KeyMaxCourseManagers
	}

	inScope, err := h.verifier.Verify(ctx, targetTable, targetID, sc)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !inScope {
		h.NotFound(c, "Assignment target not found")
		return
	}

	existing, err := h.assignments.FindActive(ctx, sc.TenantID, userID, targetID, req.Kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if existing != nil {
		h.HandleError(c, shared.NewDomainError("ALREADY_EXISTS", "User already holds an active assignment to this target"))
		return
	}

	err = h.gate.Enforce(ctx, sc.TenantID, limitKey,
		func(ctx context.Context) (int64, error) {
			return h.assignments.CountActiveByKind(ctx, sc.TenantID, req.Kind)
		})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var assignment *school.ManagerAssignment
	if req.Kind == school.AssignmentBranch {
		assignment, err = school.NewBranchManagerAssignment(sc.TenantID, userID, targetID)
	} else {
		assignment, err = school.NewCourseManagerAssignment(sc.TenantID, userID, targetID)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.assignments.Save(ctx, assignment); err != nil {
		h.HandleError(c, err)
		return
	}
	h.refreshUsage(c, sc.TenantID)
	h.Created(c, assignment)
}

// RevokeAssignment revokes an active manager assignment
// POST /api/v1/assignments/:id/revoke
func (h *OrgHandler) RevokeAssignment(c *gin.Context) {
	sc, ok := middleware.GetScope(c)
	if !ok {
		h.Forbidden(c, "No data scope resolved for this request")
		return
	}
	id, ok := bindID(c)
	if !ok {
		h.BadRequest(c, "Invalid assignment id")
		return
	}

	ctx := c.Request.Context()
	assignment, err := h.assignments.FindByID(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if assignment.TenantID != sc.TenantID {
		h.NotFound(c, "Assignment not found")
		return
	}
	if err := assignment.Revoke(); err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.assignments.Save(ctx, assignment); err != nil {
		h.HandleError(c, err)
		return
	}
	h.refreshUsage(c, sc.TenantID)
	h.Success(c, assignment)
}

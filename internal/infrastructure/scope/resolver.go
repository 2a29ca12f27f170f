package scope

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/edusuite/backend/internal/domain/identity"
	"github.com/edusuite/backend/internal/domain/school"
)

// Resolver derives the permitted Scope for an authenticated actor.
//
// Owners and school-wide admins resolve to a tenant-only scope. Branch and
// course managers narrow to their managed target; when the token carries no
// affiliation the resolver falls back to the active assignment records.
// Teachers, staff and students narrow to their branch or course affiliation
// when present.
type Resolver struct {
	assignments school.AssignmentRepository
	logger      *zap.Logger
}

// NewResolver creates a scope resolver
func NewResolver(assignments school.AssignmentRepository, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{assignments: assignments, logger: logger}
}

// Resolve produces the actor's Scope. It fails with a ResolutionError when no
// tenant can be determined, or when a managerial role has no live assignment
// to narrow to.
func (r *Resolver) Resolve(ctx context.Context, actor identity.Actor) (Scope, error) {
	if !actor.HasTenant() {
		return Scope{}, &ResolutionError{
			UserID: actor.UserID,
			Role:   string(actor.Role),
			Reason: "no tenant affiliation",
		}
	}
	if !actor.Role.IsValid() {
		return Scope{}, &ResolutionError{
			UserID: actor.UserID,
			Role:   string(actor.Role),
			Reason: "unknown role",
		}
	}

	sc := Scope{TenantID: actor.TenantID}

	switch actor.Role {
	case identity.RoleOwner, identity.RoleAdmin:
		// School-wide visibility

	case identity.RoleBranchManager:
		branchID := actor.BranchID
		if branchID == uuid.Nil {
			found, err := r.lookupAssignment(ctx, actor, school.AssignmentBranch)
			if err != nil {
				return Scope{}, err
			}
			branchID = found
		}
		if branchID == uuid.Nil {
			return Scope{}, &ResolutionError{
				UserID: actor.UserID,
				Role:   string(actor.Role),
				Reason: "no active branch assignment",
			}
		}
		sc.BranchID = &branchID

	case identity.RoleCourseManager:
		courseID := actor.CourseID
		if courseID == uuid.Nil {
			found, err := r.lookupAssignment(ctx, actor, school.AssignmentCourse)
			if err != nil {
				return Scope{}, err
			}
			courseID = found
		}
		if courseID == uuid.Nil {
			return Scope{}, &ResolutionError{
				UserID: actor.UserID,
				Role:   string(actor.Role),
				Reason: "no active course assignment",
			}
		}
		sc.CourseID = &courseID

	default:
		// Teachers, staff, students and parents narrow to whatever
		// affiliation the identity carries.
		if actor.BranchID != uuid.Nil {
			id := actor.BranchID
			sc.BranchID = &id
		}
		if actor.CourseID != uuid.Nil {
			id := actor.CourseID
			sc.CourseID = &id
		}
	}

	return sc.Normalize(), nil
}

// lookupAssignment finds the single active assignment of the given kind.
// Multiple live assignments of the same kind are ambiguous and fatal.
func (r *Resolver) lookupAssignment(ctx context.Context, actor identity.Actor, kind school.AssignmentKind) (uuid.UUID, error) {
	if r.assignments == nil {
		return uuid.Nil, nil
	}

	all, err := r.assignments.FindActiveByUser(ctx, actor.TenantID, actor.UserID)
	if err != nil {
		return uuid.Nil, &ResolutionError{
			UserID: actor.UserID,
			Role:   string(actor.Role),
			Reason: "assignment lookup failed: " + err.Error(),
		}
	}

	var target uuid.UUID
	for _, a := range all {
		if a.Kind != kind {
			continue
		}
		if target != uuid.Nil && target != a.Target() {
			return uuid.Nil, &ResolutionError{
				UserID: actor.UserID,
				Role:   string(actor.Role),
				Reason: "multiple active assignments, scope is ambiguous",
			}
		}
		target = a.Target()
	}

	if target != uuid.Nil {
		r.logger.Debug("scope narrowed from assignment records",
			zap.String("user_id", actor.UserID.String()),
			zap.String("kind", string(kind)),
			zap.String("target_id", target.String()))
	}
	return target, nil
}

// Package scope implements per-request data scoping for multi-tenant access.
//
// A Scope is resolved once from the authenticated actor and then applied to
// every downstream read and foreign-key write in that request. It constrains
// queries to a school (tenant) and, for narrowly-affiliated roles, to a single
// branch or course within it.
//
// Usage:
//
//	sc, err := resolver.Resolve(ctx, actor)
//	scopedDB := scope.Apply(db, sc, scope.DefaultColumns())
//	scopedDB.Find(&students) // WHERE tenant_id = ? AND branch_id = ? is auto-added
package scope

import (
	"fmt"

	"github.com/google/uuid"
)

// Scope is the tenant/branch/course triple constraining a request's visible
// data. It is immutable after resolution and must never be cached across
// requests.
type Scope struct {
	TenantID uuid.UUID
	BranchID *uuid.UUID
	CourseID *uuid.UUID
}

// TenantOnly returns a scope covering the whole tenant
func TenantOnly(tenantID uuid.UUID) Scope {
	return Scope{TenantID: tenantID}
}

// HasBranch reports whether the scope narrows to a branch
func (s Scope) HasBranch() bool {
	return s.BranchID != nil && *s.BranchID != uuid.Nil
}

// HasCourse reports whether the scope narrows to a course
func (s Scope) HasCourse() bool {
	return s.CourseID != nil && *s.CourseID != uuid.Nil
}

// Normalize returns a canonical copy: Nil UUIDs behind pointers collapse to
// absent fields so callers can rely on pointer presence alone.
func (s Scope) Normalize() Scope {
	out := Scope{TenantID: s.TenantID}
	if s.BranchID != nil && *s.BranchID != uuid.Nil {
		id := *s.BranchID
		out.BranchID = &id
	}
	if s.CourseID != nil && *s.CourseID != uuid.Nil {
		id := *s.CourseID
		out.CourseID = &id
	}
	return out
}

func (s Scope) String() string {
	out := "tenant=" + s.TenantID.String()
	if s.HasBranch() {
		out += " branch=" + s.BranchID.String()
	}
	if s.HasCourse() {
		out += " course=" + s.CourseID.String()
	}
	return out
}

// ResolutionError signals that no scope could be determined for an actor.
// There is no global or cross-tenant fallback: ambiguity is fatal for the
// request, never silently widened.
type ResolutionError struct {
	UserID uuid.UUID
	Role   string
	Reason string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve data scope for user %s (role %s): %s", e.UserID, e.Role, e.Reason)
}

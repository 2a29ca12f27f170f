package identity

import (
	"github.com/google/uuid"
)

// Role represents the role of an authenticated actor within a school
type Role string

const (
	RoleOwner         Role = "owner"          // owns one or more schools
	RoleAdmin         Role = "admin"          // school-wide administrator
	RoleBranchManager Role = "branch_manager" // administers a single branch
	RoleCourseManager Role = "course_manager" // administers a single course
	RoleTeacher       Role = "teacher"
	RoleStaff         Role = "staff"
	RoleStudent       Role = "student"
	RoleParent        Role = "parent"
)

// IsValid returns true if the role is a known role
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleBranchManager, RoleCourseManager,
		RoleTeacher, RoleStaff, RoleStudent, RoleParent:
		return true
	}
	return false
}

// IsManagerial returns true for roles whose affiliation narrows data scope
// below the tenant level
func (r Role) IsManagerial() bool {
	return r == RoleBranchManager || r == RoleCourseManager
}

// Actor is the authenticated identity a request acts as. It is produced by
// the auth layer (JWT claims) and consumed by scope resolution; nothing in
// this engine mutates it.
type Actor struct {
	UserID   uuid.UUID
	TenantID uuid.UUID // the school the actor is operating in; Nil when unknown
	Role     Role

	// Affiliations, populated from active (non-revoked) manager assignments
	// or enrollment records depending on role.
	BranchID uuid.UUID
	CourseID uuid.UUID
}

// HasTenant reports whether the actor belongs to a determinable tenant
func (a Actor) HasTenant() bool {
	return a.TenantID != uuid.Nil
}

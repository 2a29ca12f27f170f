package school

import (
	"time"

	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AssignmentKind distinguishes the two manager assignment variants
type AssignmentKind string

const (
	AssignmentBranch AssignmentKind = "branch"
	AssignmentCourse AssignmentKind = "course"
)

// IsValid returns true for a known assignment kind
func (k AssignmentKind) IsValid() bool {
	return k == AssignmentBranch || k == AssignmentCourse
}

// ManagerAssignment links a user to the branch or course they administer.
// Assignments are revoked, never hard-deleted: RevokedAt records when the
// link ended, and only rows with a nil RevokedAt count toward uniqueness and
// manager quotas. The same user may be re-assigned to the same target after a
// revocation.
type ManagerAssignment struct {
	shared.TenantEntity
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Kind      AssignmentKind `gorm:"type:varchar(20);not null"`
	BranchID  *uuid.UUID     `gorm:"type:uuid;index"`
	CourseID  *uuid.UUID     `gorm:"type:uuid;index"`
	RevokedAt *time.Time     `gorm:"index"`
}

// TableName returns the table name for GORM
func (ManagerAssignment) TableName() string {
	return "manager_assignments"
}

// NewBranchManagerAssignment assigns a user as manager of a branch
func NewBranchManagerAssignment(tenantID, userID, branchID uuid.UUID) (*ManagerAssignment, error) {
	if tenantID == uuid.Nil || userID == uuid.Nil || branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSIGNMENT", "Tenant, user and branch IDs are required")
	}
	return &ManagerAssignment{
		TenantEntity: shared.NewTenantEntity(tenantID),
		UserID:       userID,
		Kind:         AssignmentBranch,
		BranchID:     &branchID,
	}, nil
}

// NewCourseManagerAssignment assigns a user as manager of a course
func NewCourseManagerAssignment(tenantID, userID, courseID uuid.UUID) (*ManagerAssignment, error) {
	if tenantID == uuid.Nil || userID == uuid.Nil || courseID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ASSIGNMENT", "Tenant, user and course IDs are required")
	}
	return &ManagerAssignment{
		TenantEntity: shared.NewTenantEntity(tenantID),
		UserID:       userID,
		Kind:         AssignmentCourse,
		CourseID:     &courseID,
	}, nil
}

// IsRevoked reports whether the assignment has been revoked
func (m *ManagerAssignment) IsRevoked() bool {
	return m.RevokedAt != nil
}

// State exposes the assignment lifecycle as an explicit state
func (m *ManagerAssignment) State() shared.LifecycleState {
	if m.IsRevoked() {
		return shared.LifecycleArchived
	}
	return shared.LifecycleActive
}

// Revoke ends the assignment. Revoking twice is an error.
func (m *ManagerAssignment) Revoke() error {
	if m.IsRevoked() {
		return shared.NewDomainError("ALREADY_REVOKED", "Assignment is already revoked")
	}
	now := time.Now()
	m.RevokedAt = &now
	return nil
}

// Target returns the id of the branch or course being managed
func (m *ManagerAssignment) Target() uuid.UUID {
	switch m.Kind {
	case AssignmentBranch:
		if m.BranchID != nil {
			return *m.BranchID
		}
	case AssignmentCourse:
		if m.CourseID != nil {
			return *m.CourseID
		}
	}
	return uuid.Nil
}

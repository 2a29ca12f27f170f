package school

import (
	"strings"

	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Course is a program of study. A course may be tied to a branch or offered
// school-wide (BranchID nil); either way it is the narrowest scope level.
type Course struct {
	shared.TenantEntity
	BranchID *uuid.UUID            `gorm:"type:uuid;index"`
	Name     string                `gorm:"type:varchar(200);not null"`
	Code     string                `gorm:"type:varchar(50);not null"`
	State    shared.LifecycleState `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Course) TableName() string {
	return "courses"
}

// NewCourse creates a course under the given school, optionally within a branch
func NewCourse(tenantID uuid.UUID, branchID *uuid.UUID, code, name string) (*Course, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Course code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Course name cannot be empty")
	}
	if branchID != nil && *branchID == uuid.Nil {
		branchID = nil
	}

	return &Course{
		TenantEntity: shared.NewTenantEntity(tenantID),
		BranchID:     branchID,
		Name:         name,
		Code:         code,
		State:        shared.LifecycleActive,
	}, nil
}

// IsActive reports whether the course counts toward quota
func (c *Course) IsActive() bool {
	return c.State.IsCountable()
}

// Archive transitions the course out of the countable set
func (c *Course) Archive() error {
	if !c.State.CanTransitionTo(shared.LifecycleArchived) {
		return shared.ErrInvalidState
	}
	c.State = shared.LifecycleArchived
	return nil
}

package school

import (
	"context"

	"github.com/google/uuid"
)

// SchoolRepository defines persistence for schools
type SchoolRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*School, error)
	// CountByOwner counts active schools held by the given owner; this is the
	// "schools" usage dimension.
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error)
	Save(ctx context.Context, s *School) error
}

// BranchRepository defines persistence for branches
type BranchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	CountActive(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Save(ctx context.Context, b *Branch) error
}

// CourseRepository defines persistence for courses
type CourseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Course, error)
	CountActive(ctx context.Context, tenantID uuid.UUID) (int64, error)
	Save(ctx context.Context, c *Course) error
}

// AssignmentRepository defines persistence for manager assignments.
// "Active" always means RevokedAt is null.
type AssignmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ManagerAssignment, error)
	// FindActive returns the active assignment of a user to a target, nil if none
	FindActive(ctx context.Context, tenantID, userID, targetID uuid.UUID, kind AssignmentKind) (*ManagerAssignment, error)
	// FindActiveByUser returns all active assignments of a user in a tenant
	FindActiveByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]ManagerAssignment, error)
	CountActiveByKind(ctx context.Context, tenantID uuid.UUID, kind AssignmentKind) (int64, error)
	Save(ctx context.Context, a *ManagerAssignment) error
}

package school

import (
	"strings"

	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Branch is a campus or site of a school. It is the middle level of the
// tenant -> branch -> course scope hierarchy.
type Branch struct {
	shared.TenantEntity
	Name    string                `gorm:"type:varchar(200);not null"`
	Code    string                `gorm:"type:varchar(50);not null"`
	State   shared.LifecycleState `gorm:"type:varchar(20);not null;default:'active'"`
	Address string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Branch) TableName() string {
	return "branches"
}

// NewBranch creates a branch under the given school
func NewBranch(tenantID uuid.UUID, code, name string) (*Branch, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Branch code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Branch name cannot be empty")
	}

	return &Branch{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		Code:         code,
		State:        shared.LifecycleActive,
	}, nil
}

// IsActive reports whether the branch counts toward quota
func (b *Branch) IsActive() bool {
	return b.State.IsCountable()
}

// Archive transitions the branch out of the countable set
func (b *Branch) Archive() error {
	if !b.State.CanTransitionTo(shared.LifecycleArchived) {
		return shared.ErrInvalidState
	}
	b.State = shared.LifecycleArchived
	return nil
}

// Delete marks the branch deleted
func (b *Branch) Delete() error {
	if !b.State.CanTransitionTo(shared.LifecycleDeleted) {
		return shared.ErrInvalidState
	}
	b.State = shared.LifecycleDeleted
	return nil
}

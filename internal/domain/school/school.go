package school

import (
	"strings"

	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the operational status of a school
type Status string

const (
	StatusActive    Status = "active"
	StatusInactive  Status = "inactive"
	StatusSuspended Status = "suspended" // suspended for payment or policy reasons
)

// School is the tenant: the top-level isolation boundary. Every scoped row in
// the system carries its ID, and one owner may hold several schools (which is
// what the "schools" usage dimension counts).
type School struct {
	shared.BaseEntity
	OwnerID uuid.UUID             `gorm:"type:uuid;not null;index"`
	Code    string                `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name    string                `gorm:"type:varchar(200);not null"`
	Status  Status                `gorm:"type:varchar(20);not null;default:'active'"`
	State   shared.LifecycleState `gorm:"type:varchar(20);not null;default:'active'"`
	Email   string                `gorm:"type:varchar(200)"`
	Phone   string                `gorm:"type:varchar(50)"`
	Address string                `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (School) TableName() string {
	return "schools"
}

// NewSchool creates a new school owned by ownerID
func NewSchool(ownerID uuid.UUID, code, name string) (*School, error) {
	if ownerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_OWNER", "Owner ID cannot be empty")
	}
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "School code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "School name cannot be empty")
	}

	return &School{
		BaseEntity: shared.NewBaseEntity(),
		OwnerID:    ownerID,
		Code:       code,
		Name:       name,
		Status:     StatusActive,
		State:      shared.LifecycleActive,
	}, nil
}

// IsActive reports whether the school is operational and countable
func (s *School) IsActive() bool {
	return s.Status == StatusActive && s.State.IsCountable()
}

// Suspend marks the school suspended
func (s *School) Suspend() {
	s.Status = StatusSuspended
}

// Archive transitions the school out of the countable set
func (s *School) Archive() error {
	if !s.State.CanTransitionTo(shared.LifecycleArchived) {
		return shared.ErrInvalidState
	}
	s.State = shared.LifecycleArchived
	return nil
}

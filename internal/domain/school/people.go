package school

import (
	"strings"

	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Student is an enrolled learner. Only Active students count toward the
// student quota and usage snapshot.
type Student struct {
	shared.TenantEntity
	BranchID *uuid.UUID            `gorm:"type:uuid;index"`
	CourseID *uuid.UUID            `gorm:"type:uuid;index"`
	Name     string                `gorm:"type:varchar(200);not null"`
	State    shared.LifecycleState `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Student) TableName() string {
	return "students"
}

// Teacher is a teaching member of a school
type Teacher struct {
	shared.TenantEntity
	BranchID *uuid.UUID            `gorm:"type:uuid;index"`
	Name     string                `gorm:"type:varchar(200);not null"`
	State    shared.LifecycleState `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Teacher) TableName() string {
	return "teachers"
}

// Staff is a non-teaching member of a school
type Staff struct {
	shared.TenantEntity
	BranchID *uuid.UUID            `gorm:"type:uuid;index"`
	Name     string                `gorm:"type:varchar(200);not null"`
	State    shared.LifecycleState `gorm:"type:varchar(20);not null;default:'active'"`
}

// TableName returns the table name for GORM
func (Staff) TableName() string {
	return "staff"
}

// NewStudent creates an active student
func NewStudent(tenantID uuid.UUID, name string) (*Student, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Student name cannot be empty")
	}
	return &Student{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		State:        shared.LifecycleActive,
	}, nil
}

// NewTeacher creates an active teacher
func NewTeacher(tenantID uuid.UUID, name string) (*Teacher, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Teacher name cannot be empty")
	}
	return &Teacher{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		State:        shared.LifecycleActive,
	}, nil
}

// NewStaff creates an active staff member
func NewStaff(tenantID uuid.UUID, name string) (*Staff, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Staff name cannot be empty")
	}
	return &Staff{
		TenantEntity: shared.NewTenantEntity(tenantID),
		Name:         name,
		State:        shared.LifecycleActive,
	}, nil
}

package scope

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusuite/backend/internal/domain/identity"
	"github.com/edusuite/backend/internal/domain/school"
)

func TestScopeNormalize(t *testing.T) {
	tenantID := uuid.New()

	t.Run("nil uuid behind pointer collapses to absent", func(t *testing.T) {
		nilID := uuid.Nil
		sc := Scope{TenantID: tenantID, BranchID: &nilID, CourseID: &nilID}.Normalize()

		assert.Nil(t, sc.BranchID)
		assert.Nil(t, sc.CourseID)
		assert.False(t, sc.HasBranch())
		assert.False(t, sc.HasCourse())
	})

	t.Run("real ids survive", func(t *testing.T) {
		branchID := uuid.New()
		sc := Scope{TenantID: tenantID, BranchID: &branchID}.Normalize()

		require.NotNil(t, sc.BranchID)
		assert.Equal(t, branchID, *sc.BranchID)
		assert.True(t, sc.HasBranch())
	})
}

// stubAssignmentRepo is an in-memory AssignmentRepository for resolver tests
type stubAssignmentRepo struct {
	assignments []school.ManagerAssignment
	err         error
}

func (s *stubAssignmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*school.ManagerAssignment, error) {
	return nil, nil
}

func (s *stubAssignmentRepo) FindActive(ctx context.Context, tenantID, userID, targetID uuid.UUID, kind school.AssignmentKind) (*school.ManagerAssignment, error) {
	return nil, nil
}

func (s *stubAssignmentRepo) FindActiveByUser(ctx context.Context, tenantID, userID uuid.UUID) ([]school.ManagerAssignment, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.assignments, nil
}

func (s *stubAssignmentRepo) CountActiveByKind(ctx context.Context, tenantID uuid.UUID, kind school.AssignmentKind) (int64, error) {
	return int64(len(s.assignments)), nil
}

func (s *stubAssignmentRepo) Save(ctx context.Context, a *school.ManagerAssignment) error {
	return nil
}

func TestResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()
	userID := uuid.New()

	t.Run("admin resolves to tenant-only scope", func(t *testing.T) {
		r := NewResolver(&stubAssignmentRepo{}, nil)
		sc, err := r.Resolve(ctx, identity.Actor{UserID: userID, TenantID: tenantID, Role: identity.RoleAdmin})
		require.NoError(t, err)

		assert.Equal(t, tenantID, sc.TenantID)
		assert.False(t, sc.HasBranch())
		assert.False(t, sc.HasCourse())
	})

	t.Run("missing tenant is fatal", func(t *testing.T) {
		r := NewResolver(&stubAssignmentRepo{}, nil)
		_, err := r.Resolve(ctx, identity.Actor{UserID: userID, Role: identity.RoleAdmin})

		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Contains(t, resErr.Reason, "no tenant")
	})

	t.Run("unknown role is fatal", func(t *testing.T) {
		r := NewResolver(&stubAssignmentRepo{}, nil)
		_, err := r.Resolve(ctx, identity.Actor{UserID: userID, TenantID: tenantID, Role: "superhero"})

		var resErr *ResolutionError
		assert.ErrorAs(t, err, &resErr)
	})

	t.Run("branch manager narrows to token affiliation", func(t *testing.T) {
		branchID := uuid.New()
		r := NewResolver(&stubAssignmentRepo{}, nil)
		sc, err := r.Resolve(ctx, identity.Actor{
			UserID: userID, TenantID: tenantID,
			Role: identity.RoleBranchManager, BranchID: branchID,
		})
		require.NoError(t, err)

		require.True(t, sc.HasBranch())
		assert.Equal(t, branchID, *sc.BranchID)
	})

	t.Run("branch manager falls back to assignment records", func(t *testing.T) {
		branchID := uuid.New()
		assignment, err := school.NewBranchManagerAssignment(tenantID, userID, branchID)
		require.NoError(t, err)

		r := NewResolver(&stubAssignmentRepo{assignments: []school.ManagerAssignment{*assignment}}, nil)
		sc, err := r.Resolve(ctx, identity.Actor{
			UserID: userID, TenantID: tenantID, Role: identity.RoleBranchManager,
		})
		require.NoError(t, err)

		require.True(t, sc.HasBranch())
		assert.Equal(t, branchID, *sc.BranchID)
	})

	t.Run("branch manager without any assignment is fatal", func(t *testing.T) {
		r := NewResolver(&stubAssignmentRepo{}, nil)
		_, err := r.Resolve(ctx, identity.Actor{
			UserID: userID, TenantID: tenantID, Role: identity.RoleBranchManager,
		})

		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Contains(t, resErr.Reason, "no active branch assignment")
	})

	t.Run("multiple active assignments are ambiguous", func(t *testing.T) {
		a1, err := school.NewBranchManagerAssignment(tenantID, userID, uuid.New())
		require.NoError(t, err)
		a2, err := school.NewBranchManagerAssignment(tenantID, userID, uuid.New())
		require.NoError(t, err)

		r := NewResolver(&stubAssignmentRepo{assignments: []school.ManagerAssignment{*a1, *a2}}, nil)
		_, err = r.Resolve(ctx, identity.Actor{
			UserID: userID, TenantID: tenantID, Role: identity.RoleBranchManager,
		})

		var resErr *ResolutionError
		require.ErrorAs(t, err, &resErr)
		assert.Contains(t, resErr.Reason, "ambiguous")
	})

	t.Run("course manager narrows to course", func(t *testing.T) {
		courseID := uuid.New()
		r := NewResolver(&stubAssignmentRepo{}, nil)
		sc, err := r.Resolve(ctx, identity.Actor{
			UserID: userID, TenantID: tenantID,
			Role: identity.RoleCourseManager, CourseID: courseID,
		})
		require.NoError(t, err)

		assert.False(t, sc.HasBranch())
		require.True(t, sc.HasCourse())
		assert.Equal(t, courseID, *sc.CourseID)
	})

	t.Run("teacher keeps branch and course affiliations", func(t *testing.T) {
		branchID := uuid.New()
		courseID := uuid.New()
		r := NewResolver(&stubAssignmentRepo{}, nil)
		sc, err := r.Resolve(ctx, identity.Actor{
			UserID: userID, TenantID: tenantID,
			Role: identity.RoleTeacher, BranchID: branchID, CourseID: courseID,
		})
		require.NoError(t, err)

		require.True(t, sc.HasBranch())
		require.True(t, sc.HasCourse())
		assert.Equal(t, branchID, *sc.BranchID)
		assert.Equal(t, courseID, *sc.CourseID)
	})

	t.Run("student without affiliation gets tenant-only scope", func(t *testing.T) {
		r := NewResolver(&stubAssignmentRepo{}, nil)
		sc, err := r.Resolve(ctx, identity.Actor{
			UserID: userID, TenantID: tenantID, Role: identity.RoleStudent,
		})
		require.NoError(t, err)

		assert.False(t, sc.HasBranch())
		assert.False(t, sc.HasCourse())
	})
}

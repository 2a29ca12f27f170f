package school

import (
	"testing"

	"github.com/edusuite/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBranchManagerAssignment(t *testing.T) {
	tenantID, userID, branchID := uuid.New(), uuid.New(), uuid.New()

	t.Run("creates active assignment", func(t *testing.T) {
		a, err := NewBranchManagerAssignment(tenantID, userID, branchID)

		require.NoError(t, err)
		assert.Equal(t, AssignmentBranch, a.Kind)
		assert.False(t, a.IsRevoked())
		assert.Equal(t, shared.LifecycleActive, a.State())
		assert.Equal(t, branchID, a.Target())
	})

	t.Run("rejects missing ids", func(t *testing.T) {
		_, err := NewBranchManagerAssignment(tenantID, userID, uuid.Nil)

		assert.Error(t, err)
	})
}

func TestManagerAssignment_Revoke(t *testing.T) {
	a, err := NewCourseManagerAssignment(uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)

	require.NoError(t, a.Revoke())
	assert.True(t, a.IsRevoked())
	assert.NotNil(t, a.RevokedAt)
	assert.Equal(t, shared.LifecycleArchived, a.State())

	t.Run("double revoke fails", func(t *testing.T) {
		assert.Error(t, a.Revoke())
	})
}

func TestLifecycleTransitions(t *testing.T) {
	t.Run("branch archive then delete", func(t *testing.T) {
		b, err := NewBranch(uuid.New(), "main", "Main Campus")
		require.NoError(t, err)
		assert.True(t, b.IsActive())

		require.NoError(t, b.Archive())
		assert.False(t, b.IsActive())

		require.NoError(t, b.Delete())
		assert.Equal(t, shared.LifecycleDeleted, b.State)
	})

	t.Run("deleted is terminal", func(t *testing.T) {
		b, err := NewBranch(uuid.New(), "b2", "Second")
		require.NoError(t, err)
		require.NoError(t, b.Delete())

		assert.Error(t, b.Archive())
	})

	t.Run("course archive", func(t *testing.T) {
		c, err := NewCourse(uuid.New(), nil, "sci", "Science")
		require.NoError(t, err)

		require.NoError(t, c.Archive())
		assert.False(t, c.IsActive())
	})
}

func TestNewSchool(t *testing.T) {
	t.Run("uppercases code", func(t *testing.T) {
		s, err := NewSchool(uuid.New(), "north", "North Academy")

		require.NoError(t, err)
		assert.Equal(t, "NORTH", s.Code)
		assert.True(t, s.IsActive())
	})

	t.Run("suspended school is not active", func(t *testing.T) {
		s, err := NewSchool(uuid.New(), "east", "East Academy")
		require.NoError(t, err)

		s.Suspend()

		assert.False(t, s.IsActive())
	})

	t.Run("rejects empty owner", func(t *testing.T) {
		_, err := NewSchool(uuid.Nil, "x", "X")

		assert.Error(t, err)
	})
}

func TestNewCourse_NilBranchNormalization(t *testing.T) {
	nilID := uuid.Nil
	c, err := NewCourse(uuid.New(), &nilID, "math", "Mathematics")

	require.NoError(t, err)
	assert.Nil(t, c.BranchID)
}

package usage

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edusuite/backend/internal/domain/school"
	"github.com/edusuite/backend/internal/domain/shared"
)

// stubCounters is an in-memory Counters with per-dimension failure injection
type stubCounters struct {
	schools  int64
	students int64
	teachers int64
	staff    int64
	storage  map[string]int64
	failing  map[string]bool
}

func (s *stubCounters) CountSchools(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	if s.failing["schools"] {
		return 0, errors.New("schools count failed")
	}
	return s.schools, nil
}

func (s *stubCounters) CountStudents(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if s.failing["students"] {
		return 0, errors.New("students count failed")
	}
	return s.students, nil
}

func (s *stubCounters) CountTeachers(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if s.failing["teachers"] {
		return 0, errors.New("teachers count failed")
	}
	return s.teachers, nil
}

func (s *stubCounters) CountStaff(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	if s.failing["staff"] {
		return 0, errors.New("staff count failed")
	}
	return s.staff, nil
}

func (s *stubCounters) StorageTableNames() []string {
	return []string{
		"documents", "assignment_attachments", "submission_attachments",
		"message_attachments", "document_versions", "staff_documents", "files",
	}
}

func (s *stubCounters) SumStorageBytes(ctx context.Context, tenantID uuid.UUID, table string) (int64, error) {
	if s.failing[table] {
		return 0, errors.New("table unreachable")
	}
	return s.storage[table], nil
}

// stubSchoolRepo serves a single school
type stubSchoolRepo struct {
	school *school.School
	err    error
}

func (s *stubSchoolRepo) FindByID(ctx context.Context, id uuid.UUID) (*school.School, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.school, nil
}

func (s *stubSchoolRepo) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *stubSchoolRepo) Save(ctx context.Context, sc *school.School) error {
	return nil
}

func newTestSchool(t *testing.T, tenantID uuid.UUID) *school.School {
	t.Helper()
	s, err := school.NewSchool(uuid.New(), "GRN", "Greenfield")
	require.NoError(t, err)
	s.ID = tenantID
	return s
}

func TestCalculator_Calculate(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	newCalculator := func(counters *stubCounters) *Calculator {
		return NewCalculator(&stubSchoolRepo{school: newTestSchool(t, tenantID)}, counters, nil)
	}

	t.Run("aggregates every dimension", func(t *testing.T) {
		calc := newCalculator(&stubCounters{
			schools: 2, students: 120, teachers: 14, staff: 6,
			storage: map[string]int64{
				"documents": 500_000_000,
				"files":     1_000_000_000,
			},
		})

		snap, err := calc.Calculate(ctx, tenantID)
		require.NoError(t, err)

		assert.Equal(t, int64(2), snap.Schools)
		assert.Equal(t, int64(120), snap.Students)
		assert.Equal(t, int64(14), snap.Teachers)
		assert.Equal(t, int64(6), snap.Staff)
		assert.Equal(t, int64(1_500_000_000), snap.StorageBytes)
		assert.Equal(t, 1.397, snap.StorageGB)
		assert.False(t, snap.ComputedAt.IsZero())
	})

	t.Run("empty tenant id is rejected", func(t *testing.T) {
		calc := newCalculator(&stubCounters{})
		_, err := calc.Calculate(ctx, uuid.Nil)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_TENANT", domainErr.Code)
	})

	t.Run("one unreachable storage table counts as zero", func(t *testing.T) {
		calc := newCalculator(&stubCounters{
			students: 10,
			storage: map[string]int64{
				"documents": 300,
				"files":     700,
			},
			failing: map[string]bool{"files": true},
		})

		snap, err := calc.Calculate(ctx, tenantID)
		require.NoError(t, err)

		assert.Equal(t, int64(300), snap.StorageBytes)
		assert.Equal(t, int64(10), snap.Students)
	})

	t.Run("failed people count degrades to zero without failing the snapshot", func(t *testing.T) {
		calc := newCalculator(&stubCounters{
			students: 10, teachers: 5,
			failing: map[string]bool{"teachers": true},
		})

		snap, err := calc.Calculate(ctx, tenantID)
		require.NoError(t, err)

		assert.Equal(t, int64(10), snap.Students)
		assert.Equal(t, int64(0), snap.Teachers)
	})

	t.Run("schools dimension falls back to 1", func(t *testing.T) {
		t.Run("when the school row is missing", func(t *testing.T) {
			calc := NewCalculator(&stubSchoolRepo{err: shared.ErrNotFound}, &stubCounters{schools: 5}, nil)
			snap, err := calc.Calculate(ctx, tenantID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), snap.Schools)
		})

		t.Run("when the owner count fails", func(t *testing.T) {
			calc := newCalculator(&stubCounters{failing: map[string]bool{"schools": true}})
			snap, err := calc.Calculate(ctx, tenantID)
			require.NoError(t, err)
			assert.Equal(t, int64(1), snap.Schools)
		})
	})

	t.Run("recomputation is idempotent without intervening mutations", func(t *testing.T) {
		calc := newCalculator(&stubCounters{
			schools: 1, students: 33, teachers: 4, staff: 2,
			storage: map[string]int64{"documents": 42_000},
		})

		first, err := calc.Calculate(ctx, tenantID)
		require.NoError(t, err)
		second, err := calc.Calculate(ctx, tenantID)
		require.NoError(t, err)

		first.ComputedAt = second.ComputedAt
		assert.Equal(t, first, second)
	})
}

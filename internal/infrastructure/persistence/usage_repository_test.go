package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockUsageCounters(t *testing.T) (*GormUsageCounters, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormUsageCounters(gormDB), mock, mockDB
}

func TestGormUsageCounters_CountStudents(t *testing.T) {
	t.Run("counts only active rows of the tenant", func(t *testing.T) {
		counters, mock, mockDB := newMockUsageCounters(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "students" WHERE tenant_id = \$1 AND state = \$2`).
			WithArgs(tenantID, "active").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

		n, err := counters.CountStudents(context.Background(), tenantID)

		assert.NoError(t, err)
		assert.Equal(t, int64(42), n)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates query failure", func(t *testing.T) {
		counters, mock, mockDB := newMockUsageCounters(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "students"`).
			WillReturnError(errors.New("connection reset"))

		_, err := counters.CountStudents(context.Background(), tenantID)
		assert.Error(t, err)
	})
}

func TestGormUsageCounters_CountSchools(t *testing.T) {
	counters, mock, mockDB := newMockUsageCounters(t)
	defer mockDB.Close()

	ownerID := uuid.New()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "schools" WHERE owner_id = \$1 AND state = \$2`).
		WithArgs(ownerID, "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := counters.CountSchools(context.Background(), ownerID)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormUsageCounters_SumStorageBytes(t *testing.T) {
	t.Run("sums a whitelisted table", func(t *testing.T) {
		counters, mock, mockDB := newMockUsageCounters(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		mock.ExpectQuery(`SELECT COALESCE\(SUM\(size_bytes\), 0\) FROM documents WHERE tenant_id = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(1_048_576))

		total, err := counters.SumStorageBytes(context.Background(), tenantID, "documents")

		assert.NoError(t, err)
		assert.Equal(t, int64(1_048_576), total)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("refuses a table outside the whitelist", func(t *testing.T) {
		counters, _, mockDB := newMockUsageCounters(t)
		defer mockDB.Close()

		_, err := counters.SumStorageBytes(context.Background(), uuid.New(), "subscriptions; DROP TABLE schools")
		assert.Error(t, err)
	})

	t.Run("wraps an aggregation failure with the table name", func(t *testing.T) {
		counters, mock, mockDB := newMockUsageCounters(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT COALESCE\(SUM\(size_bytes\), 0\) FROM files WHERE tenant_id = \$1`).
			WillReturnError(errors.New(`relation "files" does not exist`))

		_, err := counters.SumStorageBytes(context.Background(), uuid.New(), "files")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "files")
	})
}

func TestGormUsageCounters_StorageTableNames(t *testing.T) {
	counters, _, mockDB := newMockUsageCounters(t)
	defer mockDB.Close()

	names := counters.StorageTableNames()
	assert.Len(t, names, 7)
	assert.Contains(t, names, "documents")
	assert.Contains(t, names, "files")

	// Mutating the returned slice must not affect the whitelist
	names[0] = "tampered"
	assert.Equal(t, "documents", counters.StorageTableNames()[0])
}

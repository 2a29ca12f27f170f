package scope

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type scopedStudent struct {
	ID       string `gorm:"primaryKey"`
	TenantID string `gorm:"index"`
	BranchID *string
	CourseID *string
	Name     string
}

func (scopedStudent) TableName() string {
	return "students"
}

func setupPredicateDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&scopedStudent{}))
	return db
}

func strPtr(s string) *string { return &s }

func TestConditions(t *testing.T) {
	tenantID := uuid.New()
	branchID := uuid.New()
	courseID := uuid.New()

	t.Run("tenant-only scope yields one predicate", func(t *testing.T) {
		preds := Conditions(TenantOnly(tenantID), DefaultColumns())
		require.Len(t, preds, 1)
		assert.Equal(t, "tenant_id", preds[0].Column)
		assert.Equal(t, tenantID, preds[0].Value)
	})

	t.Run("full scope yields all three predicates", func(t *testing.T) {
		sc := Scope{TenantID: tenantID, BranchID: &branchID, CourseID: &courseID}
		preds := Conditions(sc, DefaultColumns())
		require.Len(t, preds, 3)
		assert.Equal(t, "branch_id", preds[1].Column)
		assert.Equal(t, "course_id", preds[2].Column)
	})

	t.Run("missing table columns drop dimensions", func(t *testing.T) {
		sc := Scope{TenantID: tenantID, BranchID: &branchID, CourseID: &courseID}
		preds := Conditions(sc, ColumnMap{Tenant: "tenant_id", Branch: "branch_id"})
		require.Len(t, preds, 2)
	})

	t.Run("unknown column names are refused", func(t *testing.T) {
		sc := Scope{TenantID: tenantID, BranchID: &branchID}
		preds := Conditions(sc, ColumnMap{Tenant: "tenant_id", Branch: "name; DROP TABLE students"})
		require.Len(t, preds, 1)
		assert.Equal(t, "tenant_id", preds[0].Column)
	})
}

func TestSQLFragment(t *testing.T) {
	tenantID := uuid.New()
	branchID := uuid.New()

	t.Run("appends AND clauses and params", func(t *testing.T) {
		sc := Scope{TenantID: tenantID, BranchID: &branchID}
		query, params := SQLFragment(sc, DefaultColumns(),
			"SELECT * FROM students WHERE state = ?", []any{"active"})

		assert.Equal(t, "SELECT * FROM students WHERE state = ? AND tenant_id = ? AND branch_id = ?", query)
		require.Len(t, params, 3)
		assert.Equal(t, "active", params[0])
		assert.Equal(t, tenantID, params[1])
		assert.Equal(t, branchID, params[2])
	})

	t.Run("matches structured path dimension for dimension", func(t *testing.T) {
		sc := Scope{TenantID: tenantID, BranchID: &branchID}
		preds := Conditions(sc, DefaultColumns())
		_, params := SQLFragment(sc, DefaultColumns(), "SELECT 1", nil)

		require.Len(t, params, len(preds))
		for i, p := range preds {
			assert.Equal(t, p.Value, params[i])
		}
	})
}

func TestApply_NoCrossTenantLeakage(t *testing.T) {
	db := setupPredicateDB(t)

	tenantA := uuid.New().String()
	tenantB := uuid.New().String()
	branchA := uuid.New().String()

	rows := []scopedStudent{
		{ID: uuid.New().String(), TenantID: tenantA, BranchID: strPtr(branchA), Name: "in scope"},
		{ID: uuid.New().String(), TenantID: tenantA, BranchID: strPtr(uuid.New().String()), Name: "other branch"},
		{ID: uuid.New().String(), TenantID: tenantB, BranchID: strPtr(branchA), Name: "other tenant"},
		{ID: uuid.New().String(), TenantID: tenantB, Name: "other tenant no branch"},
	}
	require.NoError(t, db.Create(&rows).Error)

	t.Run("tenant-only scope excludes other tenants", func(t *testing.T) {
		tid := uuid.MustParse(tenantA)
		var got []scopedStudent
		err := Apply(db.Model(&scopedStudent{}), TenantOnly(tid), DefaultColumns()).Find(&got).Error
		require.NoError(t, err)

		require.Len(t, got, 2)
		for _, s := range got {
			assert.Equal(t, tenantA, s.TenantID)
		}
	})

	t.Run("branch scope excludes other branches", func(t *testing.T) {
		tid := uuid.MustParse(tenantA)
		bid := uuid.MustParse(branchA)
		sc := Scope{TenantID: tid, BranchID: &bid}

		var got []scopedStudent
		err := db.Model(&scopedStudent{}).Scopes(ApplyToQuery(sc, DefaultColumns())).Find(&got).Error
		require.NoError(t, err)

		require.Len(t, got, 1)
		assert.Equal(t, "in scope", got[0].Name)
	})

	t.Run("raw fragment returns the same rows as structured path", func(t *testing.T) {
		tid := uuid.MustParse(tenantA)
		bid := uuid.MustParse(branchA)
		sc := Scope{TenantID: tid, BranchID: &bid}

		var structured []scopedStudent
		require.NoError(t, Apply(db.Model(&scopedStudent{}), sc, DefaultColumns()).Find(&structured).Error)

		query, params := SQLFragment(sc, DefaultColumns(), "SELECT * FROM students WHERE 1 = 1", nil)
		var raw []scopedStudent
		require.NoError(t, db.Raw(query, params...).Scan(&raw).Error)

		require.Len(t, raw, len(structured))
		assert.Equal(t, structured[0].ID, raw[0].ID)
	})

	t.Run("augments caller-provided constraints", func(t *testing.T) {
		tid := uuid.MustParse(tenantA)
		var got []scopedStudent
		err := Apply(db.Model(&scopedStudent{}).Where("name = ?", "in scope"), TenantOnly(tid), DefaultColumns()).
			Find(&got).Error
		require.NoError(t, err)
		require.Len(t, got, 1)
	})
}

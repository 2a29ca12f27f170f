package scope

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// scopedTables is the single source of truth for which tables the verifier
// may inspect and which columns carry their scope bindings.
var scopedTables = map[string]ColumnMap{
	"branches":            {Tenant: "tenant_id"},
	"courses":             {Tenant: "tenant_id", Branch: "branch_id"},
	"classes":             {Tenant: "tenant_id", Branch: "branch_id", Course: "course_id"},
	"students":            {Tenant: "tenant_id", Branch: "branch_id", Course: "course_id"},
	"teachers":            {Tenant: "tenant_id", Branch: "branch_id"},
	"staff":               {Tenant: "tenant_id", Branch: "branch_id"},
	"subjects":            {Tenant: "tenant_id", Branch: "branch_id", Course: "course_id"},
	"parents":             {Tenant: "tenant_id"},
	"manager_assignments": {Tenant: "tenant_id", Branch: "branch_id", Course: "course_id"},
}

// IsVerifiable reports whether a table is registered for scope verification
func IsVerifiable(table string) bool {
	_, ok := scopedTables[table]
	return ok
}

// Verifier checks that a referenced foreign id actually lies inside a given
// scope before any cross-entity linkage is permitted.
//
// Verification is graduated: a row binding to the scope's exact branch and
// course passes first, then a course-only match, and finally rows carrying no
// branch/course binding at all pass on tenant membership alone, since some
// entities are legitimately shared above the branch or course level. A row
// bound to a different branch or course never passes.
type Verifier struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewVerifier creates a cross-entity scope verifier
func NewVerifier(db *gorm.DB, logger *zap.Logger) *Verifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Verifier{db: db, logger: logger}
}

// Verify reports whether the row identified by (table, id) lies inside sc,
// using the registered column map for the table. An absent row is out of
// scope, never "accessible by default".
func (v *Verifier) Verify(ctx context.Context, table string, id uuid.UUID, sc Scope) (bool, error) {
	cols, ok := scopedTables[table]
	if !ok {
		return false, fmt.Errorf("table %q is not registered for scope verification", table)
	}
	return v.VerifyWithColumns(ctx, table, id, sc, cols)
}

// VerifyWithColumns verifies against an explicit column map. The table must
// still be registered and all column names must pass the whitelist.
func (v *Verifier) VerifyWithColumns(ctx context.Context, table string, id uuid.UUID, sc Scope, cols ColumnMap) (bool, error) {
	if !IsVerifiable(table) {
		return false, fmt.Errorf("table %q is not registered for scope verification", table)
	}
	if cols.Tenant == "" || !allowedScopeColumns[cols.Tenant] {
		return false, fmt.Errorf("invalid tenant column for table %q", table)
	}
	if cols.Branch != "" && !allowedScopeColumns[cols.Branch] {
		return false, fmt.Errorf("invalid branch column for table %q", table)
	}
	if cols.Course != "" && !allowedScopeColumns[cols.Course] {
		return false, fmt.Errorf("invalid course column for table %q", table)
	}

	row, found, err := v.loadRow(ctx, table, id, cols)
	if err != nil {
		return false, err
	}
	if !found {
		v.logger.Debug("scope verification target not found",
			zap.String("table", table),
			zap.String("id", id.String()))
		return false, nil
	}

	if row.tenant != sc.TenantID {
		return false, nil
	}

	// Tier 1: exact branch (and, when both sides carry one, course) match
	if sc.HasBranch() && row.hasBranch {
		if row.branch == *sc.BranchID {
			if !sc.HasCourse() || !row.hasCourse || row.course == *sc.CourseID {
				return true, nil
			}
		}
	}

	// Tier 2: course-only match; a row bound to a different course fails here
	if sc.HasCourse() && row.hasCourse {
		return row.course == *sc.CourseID, nil
	}

	// Tier 3: tenant-only, for rows shared above the branch/course level.
	// A branch-bound row outside the scope's branch does not qualify.
	if sc.HasBranch() && row.hasBranch {
		return false, nil
	}
	return true, nil
}

type scopeRow struct {
	tenant    uuid.UUID
	branch    uuid.UUID
	course    uuid.UUID
	hasBranch bool
	hasCourse bool
}

func (v *Verifier) loadRow(ctx context.Context, table string, id uuid.UUID, cols ColumnMap) (scopeRow, bool, error) {
	selected := []string{cols.Tenant}
	if cols.Branch != "" {
		selected = append(selected, cols.Branch)
	}
	if cols.Course != "" {
		selected = append(selected, cols.Course)
	}

	// Table and column names come from the whitelists above, only the id is
	// a bound parameter.
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", strings.Join(selected, ", "), table)

	dest := make([]any, 0, 3)
	var tenantRaw, branchRaw, courseRaw sql.NullString
	dest = append(dest, &tenantRaw)
	if cols.Branch != "" {
		dest = append(dest, &branchRaw)
	}
	if cols.Course != "" {
		dest = append(dest, &courseRaw)
	}

	err := v.db.WithContext(ctx).Raw(query, id).Row().Scan(dest...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return scopeRow{}, false, nil
		}
		return scopeRow{}, false, fmt.Errorf("scope verification query failed for %s: %w", table, err)
	}

	var row scopeRow
	if tenantRaw.Valid {
		if row.tenant, err = uuid.Parse(tenantRaw.String); err != nil {
			return scopeRow{}, false, fmt.Errorf("invalid tenant id on %s row: %w", table, err)
		}
	}
	if branchRaw.Valid && branchRaw.String != "" {
		if row.branch, err = uuid.Parse(branchRaw.String); err != nil {
			return scopeRow{}, false, fmt.Errorf("invalid branch id on %s row: %w", table, err)
		}
		row.hasBranch = row.branch != uuid.Nil
	}
	if courseRaw.Valid && courseRaw.String != "" {
		if row.course, err = uuid.Parse(courseRaw.String); err != nil {
			return scopeRow{}, false, fmt.Errorf("invalid course id on %s row: %w", table, err)
		}
		row.hasCourse = row.course != uuid.Nil
	}
	return row, true, nil
}

package scope

import (
	"strings"

	"gorm.io/gorm"
)

// ColumnMap names the scope columns of a table. Empty fields mean the table
// does not carry that dimension.
type ColumnMap struct {
	Tenant string
	Branch string
	Course string
}

// DefaultColumns returns the conventional column names
func DefaultColumns() ColumnMap {
	return ColumnMap{Tenant: "tenant_id", Branch: "branch_id", Course: "course_id"}
}

// allowedScopeColumns whitelists column names usable in generated SQL.
// This prevents injection via dynamic column maps.
var allowedScopeColumns = map[string]bool{
	"tenant_id": true,
	"school_id": true,
	"branch_id": true,
	"course_id": true,
	"class_id":  true,
}

// Predicate is one column constraint produced from a scope. Predicates
// combine with AND semantics only; they augment caller-provided filters and
// never replace them.
type Predicate struct {
	Column string
	Value  any
}

// Conditions is the single source of truth for projecting a scope onto a
// table's columns. Both the GORM path and the raw-SQL path are built from it,
// so the two stay semantically identical; any new scope dimension must be
// added here and nowhere else.
func Conditions(sc Scope, cols ColumnMap) []Predicate {
	var preds []Predicate
	if cols.Tenant != "" && allowedScopeColumns[cols.Tenant] {
		preds = append(preds, Predicate{Column: cols.Tenant, Value: sc.TenantID})
	}
	if sc.HasBranch() && cols.Branch != "" && allowedScopeColumns[cols.Branch] {
		preds = append(preds, Predicate{Column: cols.Branch, Value: *sc.BranchID})
	}
	if sc.HasCourse() && cols.Course != "" && allowedScopeColumns[cols.Course] {
		preds = append(preds, Predicate{Column: cols.Course, Value: *sc.CourseID})
	}
	return preds
}

// Apply appends the scope's constraints to a GORM query
func Apply(db *gorm.DB, sc Scope, cols ColumnMap) *gorm.DB {
	for _, p := range Conditions(sc, cols) {
		db = db.Where(p.Column+" = ?", p.Value)
	}
	return db
}

// ApplyToQuery returns a GORM scope function for use with db.Scopes
func ApplyToQuery(sc Scope, cols ColumnMap) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return Apply(db, sc, cols)
	}
}

// SQLFragment appends the scope's constraints to a raw query and its
// parameter list. The query is returned with " AND col = ?" appended per
// dimension, matching Apply exactly in columns and composition.
func SQLFragment(sc Scope, cols ColumnMap, query string, params []any) (string, []any) {
	var b strings.Builder
	b.WriteString(query)
	for _, p := range Conditions(sc, cols) {
		b.WriteString(" AND ")
		b.WriteString(p.Column)
		b.WriteString(" = ?")
		params = append(params, p.Value)
	}
	return b.String(), params
}

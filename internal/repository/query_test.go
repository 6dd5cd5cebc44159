package repository

import (
	"testing"

	"machtrade/internal/apperr"
	"machtrade/internal/model"
	"machtrade/internal/scope"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// dryRunDB opens an in-memory session that renders SQL without executing it.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func renderSQL(t *testing.T, db *gorm.DB, f scope.Filter) (string, []interface{}) {
	t.Helper()
	q, err := ApplyFilter(db.Model(&model.Machine{}), f)
	require.NoError(t, err)
	stmt := q.Find(&[]model.Machine{}).Statement
	return stmt.SQL.String(), stmt.Vars
}

func TestApplyFilter_Equality(t *testing.T) {
	db := dryRunDB(t)
	id := uuid.New()

	sql, vars := renderSQL(t, db, scope.Filter{"branch_id": id})

	assert.Contains(t, sql, "branch_id = ?")
	assert.Contains(t, vars, id)
}

func TestApplyFilter_EmptyFilterHasNoWhere(t *testing.T) {
	db := dryRunDB(t)

	sql, _ := renderSQL(t, db, scope.Filter{})

	assert.NotContains(t, sql, "WHERE")
}

func TestApplyFilter_ComparisonOperators(t *testing.T) {
	db := dryRunDB(t)

	sql, vars := renderSQL(t, db, scope.Filter{
		"sale_price": map[string]interface{}{"gte": 1000, "lt": 5000},
	})

	assert.Contains(t, sql, "sale_price >= ?")
	assert.Contains(t, sql, "sale_price < ?")
	assert.Contains(t, vars, 1000)
	assert.Contains(t, vars, 5000)
}

func TestApplyFilter_Like(t *testing.T) {
	db := dryRunDB(t)

	sql, vars := renderSQL(t, db, scope.Filter{
		"serial_number": map[string]interface{}{"like": "%MX%"},
	})

	assert.Contains(t, sql, "serial_number LIKE ?")
	assert.Contains(t, vars, "%MX%")
}

func TestApplyFilter_InList(t *testing.T) {
	db := dryRunDB(t)
	a, b := uuid.New(), uuid.New()

	sql, vars := renderSQL(t, db, scope.Filter{
		"branch_id": map[string]interface{}{"in": []interface{}{a, b}},
	})

	assert.Contains(t, sql, "branch_id IN")
	assert.Contains(t, vars, a)
	assert.Contains(t, vars, b)
}

func TestApplyFilter_EmptyInIsConstantFalse(t *testing.T) {
	db := dryRunDB(t)

	sql, _ := renderSQL(t, db, scope.Filter{
		"branch_id": map[string]interface{}{"in": []interface{}{}},
	})

	// Denial renders as a clause that matches nothing — never as "no filter".
	assert.Contains(t, sql, "1 = 0")
}

func TestApplyFilter_NullValue(t *testing.T) {
	db := dryRunDB(t)

	sql, _ := renderSQL(t, db, scope.Filter{"brand": nil})

	assert.Contains(t, sql, "brand IS NULL")
}

func TestApplyFilter_NestedCombinators(t *testing.T) {
	db := dryRunDB(t)
	branch := uuid.New()

	sql, vars := renderSQL(t, db, scope.Filter{
		"branch_id": branch,
		"OR": []scope.Filter{
			{"status": model.MachineInStock},
			{"status": model.MachineMaintenance, "brand": "CAT"},
		},
	})

	assert.Contains(t, sql, "branch_id = ?")
	assert.Contains(t, sql, "(status = ?) OR (brand = ? AND status = ?)")
	assert.Contains(t, vars, branch)
	assert.Contains(t, vars, "CAT")
}

func TestApplyFilter_CombinatorObjectChild(t *testing.T) {
	db := dryRunDB(t)

	// JSON decoding can deliver a single object instead of an array.
	sql, _ := renderSQL(t, db, scope.Filter{
		"AND": map[string]interface{}{"status": model.MachineSold},
	})

	assert.Contains(t, sql, "status = ?")
}

func TestApplyFilter_InvalidColumnRejected(t *testing.T) {
	db := dryRunDB(t)

	_, err := ApplyFilter(db.Model(&model.Machine{}), scope.Filter{
		"status; DROP TABLE machines": "x",
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestApplyFilter_UnknownOperatorRejected(t *testing.T) {
	db := dryRunDB(t)

	_, err := ApplyFilter(db.Model(&model.Machine{}), scope.Filter{
		"sale_price": map[string]interface{}{"regex": ".*"},
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestApplyFilter_EmptyOperatorObjectRejected(t *testing.T) {
	db := dryRunDB(t)

	_, err := ApplyFilter(db.Model(&model.Machine{}), scope.Filter{
		"sale_price": map[string]interface{}{},
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestApplyFilter_BadCombinatorChildRejected(t *testing.T) {
	db := dryRunDB(t)

	_, err := ApplyFilter(db.Model(&model.Machine{}), scope.Filter{
		"OR": []interface{}{"not-an-object"},
	})

	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

// ─── scopedQuery: interceptor + translator together ──────────────────────────

func TestScopedQuery_InjectsExactBranch(t *testing.T) {
	db := dryRunDB(t)
	enf := scope.NewEnforcer(scope.DefaultCatalog)
	branch := uuid.New()

	q, err := scopedQuery(db.Model(&model.Machine{}), enf, scope.OpReadMany, scope.ResourceMachines, scope.Filter{}, scope.ExactBranch(branch))
	require.NoError(t, err)

	stmt := q.Find(&[]model.Machine{}).Statement
	assert.Contains(t, stmt.SQL.String(), "branch_id = ?")
	assert.Contains(t, stmt.Vars, branch)
}

func TestScopedQuery_ForbiddenReadMatchesNothing(t *testing.T) {
	db := dryRunDB(t)
	enf := scope.NewEnforcer(scope.DefaultCatalog)

	q, err := scopedQuery(db.Model(&model.Machine{}), enf, scope.OpReadMany, scope.ResourceMachines, scope.Filter{}, scope.Forbidden())
	require.NoError(t, err)

	stmt := q.Find(&[]model.Machine{}).Statement
	assert.Contains(t, stmt.SQL.String(), "1 = 0")
}

func TestScopedQuery_ForbiddenWriteRaises(t *testing.T) {
	db := dryRunDB(t)
	enf := scope.NewEnforcer(scope.DefaultCatalog)

	_, err := scopedQuery(db.Model(&model.Installment{}), enf, scope.OpWriteMany, scope.ResourceInstallments, scope.Filter{"sale_id": uuid.New()}, scope.Forbidden())

	require.Error(t, err)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))
}

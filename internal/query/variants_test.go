package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/testutil"
)

func TestSelectScope_FromOnlyWithoutJoins(t *testing.T) {
	db := testutil.HR(t)
	q := NewSelect(db, db.MustTable("Employee"))
	q.SetWhere(pred.NewBuilder().Eq(testutil.Col(t, db, "Employee", "jobId"), pred.Lit(ir.Int(1))))

	assert.Equal(t, []string{"Employee"}, q.Scope().Names(),
		"value predicates on a foreign key column do not widen a select")
}

func TestSelectScope_JoinColumnsExpandParents(t *testing.T) {
	db := testutil.HR(t)
	b := pred.NewBuilder()
	q := NewSelect(db, db.MustTable("Employee"))
	q.SetWhere(b.Join(testutil.Col(t, db, "Employee", "jobId"), pred.OpEq, testutil.Col(t, db, "Job", "id")))

	assert.Equal(t, []string{"Employee", "Job"}, q.Scope().Names())
}

func TestSelectScope_IsRecomputed(t *testing.T) {
	db := testutil.HR(t)
	q := NewSelect(db, db.MustTable("Employee"))
	assert.Equal(t, 1, q.Scope().Len())

	q.SetWhere(pred.NewBuilder().Join(
		testutil.Col(t, db, "Employee", "departmentId"), pred.OpEq, testutil.Col(t, db, "Department", "id")))

	assert.Equal(t, []string{"Employee", "Department"}, q.Scope().Names())
}

func TestSelectBind_LimitAndSkip(t *testing.T) {
	db := testutil.HR(t)
	q := NewSelect(db, db.MustTable("Job")).
		SetLimit(pred.Param(0)).
		SetSkip(pred.Lit(ir.Int(5)))

	_, err := q.Bind([]ir.Value{ir.Int(10)})
	require.NoError(t, err)

	limit, ok := q.Limit()
	require.True(t, ok)
	v, bound := limit.Value()
	require.True(t, bound)
	assert.Equal(t, ir.Int(10), v)

	skip, _ := q.Skip()
	v, _ = skip.Value()
	assert.Equal(t, ir.Int(5), v)
}

func TestSelectBind_LimitWrongKind(t *testing.T) {
	db := testutil.HR(t)
	q := NewSelect(db, db.MustTable("Job")).SetLimit(pred.Param(0))

	_, err := q.Bind([]ir.Value{ir.String("ten")})

	require.Error(t, err)
	assert.ErrorIs(t, err, pred.ErrBindKind)
	assert.Contains(t, err.Error(), "limit")

	limit, _ := q.Limit()
	assert.False(t, limitBound(limit), "failed bind leaves the operand unbound")
}

func TestSelectBind_NegativeSkip(t *testing.T) {
	db := testutil.HR(t)
	q := NewSelect(db, db.MustTable("Job")).SetSkip(pred.Param(0))

	_, err := q.Bind([]ir.Value{ir.Int(-1)})

	assert.ErrorIs(t, err, pred.ErrBindKind)
}

func limitBound(o pred.Operand) bool {
	_, ok := o.Value()
	return ok
}

func TestSelectClone_CopiesOwnFields(t *testing.T) {
	db := testutil.HR(t)
	name := testutil.Col(t, db, "Employee", "name")
	q := NewSelect(db, db.MustTable("Employee")).
		Project(name).
		OrderBy(name, true).
		SetLimit(pred.Param(0))

	c := q.Clone().(*Select)
	c.Project()
	c.OrderBy(testutil.Col(t, db, "Employee", "id"), false)

	assert.Len(t, q.Columns(), 1)
	assert.Len(t, q.Orders(), 1)
	assert.Len(t, c.Orders(), 2)
	idx, ok := c.Limit()
	require.True(t, ok)
	i, _ := idx.Index()
	assert.Equal(t, 0, i)
	assert.True(t, c.From().Equal(q.From()))
}

func TestInsertScope(t *testing.T) {
	db := testutil.HR(t)

	ins := NewInsert(db, db.MustTable("Employee"))
	assert.Equal(t, []string{"Employee", "Department", "Job"}, ins.Scope().Names())

	dept := NewInsert(db, db.MustTable("Department"))
	assert.Equal(t, []string{"Department"}, dept.Scope().Names())

	replace := NewInsertOrReplace(db, db.MustTable("Department"))
	assert.Equal(t, []string{"Department", "Employee"}, replace.Scope().Names())
}

func TestInsertBind_RowsParam(t *testing.T) {
	db := testutil.HR(t)
	ins := NewInsert(db, db.MustTable("Job")).ValuesParam(0)

	rows := ir.NewList(
		ir.NewObject(ir.O("id", ir.Int(1)), ir.O("title", ir.String("clerk"))),
		ir.NewObject(ir.O("id", ir.Int(2)), ir.O("title", ir.String("chef"))),
	)
	_, err := ins.Bind([]ir.Value{rows})
	require.NoError(t, err)

	got := ins.Rows()
	require.Len(t, got, 2)
	assert.Equal(t, ir.String("chef"), got[1]["title"])
	idx, ok := ins.RowsParam()
	assert.True(t, ok)
	assert.Equal(t, 0, idx)
}

func TestInsertBind_RowsWrongKind(t *testing.T) {
	db := testutil.HR(t)

	_, err := NewInsert(db, db.MustTable("Job")).ValuesParam(0).Bind([]ir.Value{ir.Int(1)})
	assert.ErrorIs(t, err, pred.ErrBindKind)

	_, err = NewInsert(db, db.MustTable("Job")).ValuesParam(0).Bind([]ir.Value{ir.NewList(ir.Int(1))})
	assert.ErrorIs(t, err, pred.ErrBindKind)

	_, err = NewInsert(db, db.MustTable("Job")).ValuesParam(2).Bind([]ir.Value{ir.NewList()})
	assert.ErrorIs(t, err, pred.ErrBindOutOfRange)
}

func TestInsertClone_RowsAreCopied(t *testing.T) {
	db := testutil.HR(t)
	ins := NewInsert(db, db.MustTable("Job")).Values(ir.NewObject(ir.O("id", ir.Int(1))))

	c := ins.Clone().(*Insert)
	c.rows[0]["id"] = ir.Int(99)

	assert.Equal(t, ir.Int(1), ins.Rows()[0]["id"])
	assert.False(t, c.Replace())
	assert.Same(t, ins.Into(), c.Into())
}

func TestUpdateScope_RestrictedToAssignedColumns(t *testing.T) {
	db := testutil.HR(t)

	byName := NewUpdate(db, db.MustTable("Employee")).
		Set(testutil.Col(t, db, "Employee", "name"), pred.Lit(ir.String("x")))
	assert.Equal(t, []string{"Employee"}, byName.Scope().Names())

	byJob := NewUpdate(db, db.MustTable("Employee")).
		Set(testutil.Col(t, db, "Employee", "jobId"), pred.Param(0))
	assert.Equal(t, []string{"Employee", "Job"}, byJob.Scope().Names())

	byKey := NewUpdate(db, db.MustTable("Department")).
		Set(testutil.Col(t, db, "Department", "id"), pred.Param(0))
	assert.Equal(t, []string{"Department", "Employee"}, byKey.Scope().Names())

	none := NewUpdate(db, db.MustTable("Employee"))
	assert.Equal(t, []string{"Employee"}, none.Scope().Names())
}

func TestUpdateBind_Assignments(t *testing.T) {
	db := testutil.HR(t)
	upd := NewUpdate(db, db.MustTable("Employee")).
		Set(testutil.Col(t, db, "Employee", "name"), pred.Param(1)).
		Set(testutil.Col(t, db, "Employee", "jobId"), pred.Lit(ir.Int(3)))

	_, err := upd.Bind([]ir.Value{ir.Null{}, ir.String("grace")})
	require.NoError(t, err)

	set := upd.Assignments()
	v, _ := set[0].Value.Value()
	assert.Equal(t, ir.String("grace"), v)
	v, _ = set[1].Value.Value()
	assert.Equal(t, ir.Int(3), v)

	_, err = upd.Bind(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind set Employee.name")
}

func TestUpdateBind_FailureLeavesAssignmentsUnbound(t *testing.T) {
	db := testutil.HR(t)
	upd := NewUpdate(db, db.MustTable("Employee")).
		Set(testutil.Col(t, db, "Employee", "name"), pred.Param(0)).
		Set(testutil.Col(t, db, "Employee", "jobId"), pred.Param(3))

	_, err := upd.Bind([]ir.Value{ir.String("ada")})
	require.Error(t, err)
	assert.ErrorIs(t, err, pred.ErrBindOutOfRange)

	for _, a := range upd.Assignments() {
		_, bound := a.Value.Value()
		assert.False(t, bound, "%s stays unbound", a.Column.Name())
	}
}

func TestUpdateBind_FailureKeepsPreviousValues(t *testing.T) {
	db := testutil.HR(t)
	upd := NewUpdate(db, db.MustTable("Employee")).
		Set(testutil.Col(t, db, "Employee", "name"), pred.Param(0)).
		Set(testutil.Col(t, db, "Employee", "jobId"), pred.Param(1))

	_, err := upd.Bind([]ir.Value{ir.String("ada"), ir.Int(2)})
	require.NoError(t, err)
	_, err = upd.Bind([]ir.Value{ir.String("grace")})
	require.Error(t, err)

	set := upd.Assignments()
	v, _ := set[0].Value.Value()
	assert.Equal(t, ir.String("ada"), v)
	v, _ = set[1].Value.Value()
	assert.Equal(t, ir.Int(2), v)
}

func TestSelectBind_FailureLeavesLimitUnbound(t *testing.T) {
	db := testutil.HR(t)
	q := NewSelect(db, db.MustTable("Employee")).
		SetLimit(pred.Param(0)).
		SetSkip(pred.Param(1))

	_, err := q.Bind([]ir.Value{ir.Int(10), ir.String("x")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bind skip")

	limit, ok := q.Limit()
	require.True(t, ok)
	_, bound := limit.Value()
	assert.False(t, bound)
}

func TestUpdateClone_AssignmentsIndependent(t *testing.T) {
	db := testutil.HR(t)
	upd := NewUpdate(db, db.MustTable("Employee")).
		Set(testutil.Col(t, db, "Employee", "name"), pred.Param(0))

	c := upd.Clone().(*Update)
	c.Set(testutil.Col(t, db, "Employee", "jobId"), pred.Param(1))

	assert.Len(t, upd.Assignments(), 1)
	assert.Len(t, c.Assignments(), 2)
}

func TestDeleteScope_IncludesChildren(t *testing.T) {
	db := testutil.HR(t)

	assert.Equal(t, []string{"Department", "Employee"}, NewDelete(db, db.MustTable("Department")).Scope().Names())
	assert.Equal(t, []string{"Employee"}, NewDelete(db, db.MustTable("Employee")).Scope().Names())
	assert.Equal(t, []string{"Holiday"}, NewDelete(db, db.MustTable("Holiday")).Scope().Names())
}

func TestDeleteScope_Cyclic(t *testing.T) {
	db := testutil.Cyclic(t)

	assert.Equal(t, []string{"A", "B"}, NewDelete(db, db.MustTable("A")).Scope().Names())
}

func TestKinds(t *testing.T) {
	db := testutil.HR(t)
	job := db.MustTable("Job")
	assert.Equal(t, "select", NewSelect(db, job).Kind())
	assert.Equal(t, "insert", NewInsert(db, job).Kind())
	assert.Equal(t, "update", NewUpdate(db, job).Kind())
	assert.Equal(t, "delete", NewDelete(db, job).Kind())
}

package pred

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/testutil"
)

func TestValuePredicates(t *testing.T) {
	root, nodes := buildTree(t)

	vps := ValuePredicates(root)
	require.Len(t, vps, 2)
	assert.Same(t, nodes[0], vps[0])
	assert.Same(t, nodes[2], vps[1])
	assert.Empty(t, ValuePredicates(nil))
}

func TestColumnsAndJoinColumns(t *testing.T) {
	db := testutil.HR(t)
	root, _ := buildTree(t)

	cols := Columns(root)
	assert.Equal(t, 3, cols.Len())

	joins := JoinColumns(root)
	assert.Equal(t, 2, joins.Len())
	names := []string{}
	for _, c := range joins.Values() {
		names = append(names, c.Table().Name()+"."+c.Name())
	}
	assert.Equal(t, []string{"Employee.departmentId", "Department.id"}, names)

	// Columns come from the tree's own schema instance
	assert.False(t, cols.Contains(testutil.Col(t, db, "Employee", "id")))
}

func TestTables(t *testing.T) {
	root, _ := buildTree(t)

	assert.Equal(t, []string{"Employee", "Department"}, Tables(root).Names())
	assert.Equal(t, 0, Tables(nil).Len())
}

func TestDescribe(t *testing.T) {
	db := testutil.HR(t)
	b := NewBuilder()
	root := b.And(
		b.Eq(testutil.Col(t, db, "Employee", "departmentId"), Param(0)),
		b.Gt(testutil.Col(t, db, "Employee", "id"), Lit(ir.Int(3))),
	)

	out, err := ir.MarshalCanonical(Describe(root))
	require.NoError(t, err)
	assert.Equal(t,
		`{"children":[{"column":"Employee.departmentId","id":1,"op":"eq","param":0},{"column":"Employee.id","id":2,"op":"gt","value":3}],"id":3,"op":"and"}`,
		string(out))

	require.NoError(t, root.Children()[0].(*ValuePredicate).Bind([]ir.Value{ir.String("x")}))
	out, err = ir.MarshalCanonical(Describe(root))
	require.NoError(t, err)
	assert.Contains(t, string(out), `"param":0,"value":"x"`)
}

func TestFingerprint(t *testing.T) {
	db := testutil.HR(t)
	build := func(b *Builder) Node {
		return b.And(
			b.Eq(testutil.Col(t, db, "Employee", "departmentId"), Param(0)),
			b.Gt(testutil.Col(t, db, "Employee", "id"), Lit(ir.Int(3))),
		)
	}

	template := build(NewBuilder())
	other := build(NewBuilderWithSource(NewCounterAt(50)))

	f1, err := Fingerprint(template)
	require.NoError(t, err)
	f2, err := Fingerprint(other)
	require.NoError(t, err)
	assert.Equal(t, f1, f2, "ids do not affect the fingerprint")

	bound := template.Copy()
	require.NoError(t, bound.Children()[0].(*ValuePredicate).Bind([]ir.Value{ir.Int(1)}))
	f3, err := Fingerprint(bound)
	require.NoError(t, err)
	assert.Equal(t, f1, f3, "bound values do not affect the fingerprint")

	b := NewBuilder()
	different := b.Eq(testutil.Col(t, db, "Employee", "departmentId"), Param(1))
	f4, err := Fingerprint(different)
	require.NoError(t, err)
	assert.NotEqual(t, f1, f4)

	empty, err := Fingerprint(nil)
	require.NoError(t, err)
	assert.Len(t, empty, 64)
}

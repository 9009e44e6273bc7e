package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildHR(t *testing.T) *Database {
	t.Helper()

	b := NewBuilder("hr")
	b.Table("Department").
		Column("id", TypeInt).
		Column("name", TypeString).
		PrimaryKey("id")
	b.Table("Employee").
		Column("id", TypeInt).
		Column("departmentId", TypeInt).
		Column("managerId", TypeInt).
		PrimaryKey("id").
		ForeignKey("fk_department", "departmentId", "Department", "id").
		ForeignKey("fk_manager", "managerId", "Employee", "id")

	db, err := b.Build()
	require.NoError(t, err)
	return db
}

func TestBuild_TablesAndColumns(t *testing.T) {
	db := buildHR(t)

	assert.Equal(t, "hr", db.Name())
	require.Len(t, db.Tables(), 2)
	assert.Equal(t, "Department", db.Tables()[0].Name())
	assert.Equal(t, "Employee", db.Tables()[1].Name())

	emp, ok := db.Table("Employee")
	require.True(t, ok)
	require.Len(t, emp.Columns(), 3)
	assert.Equal(t, "departmentId", emp.Columns()[1].Name())
	assert.Equal(t, TypeInt, emp.Column("departmentId").Type())
	assert.Same(t, emp, emp.Column("id").Table())
	assert.Nil(t, emp.Column("missing"))

	_, ok = db.Table("Missing")
	assert.False(t, ok)
}

func TestBuild_PrimaryKey(t *testing.T) {
	db := buildHR(t)
	dept := db.MustTable("Department")

	pk := dept.Constraint().PrimaryKey()
	require.Len(t, pk, 1)
	assert.Same(t, dept.Column("id"), pk[0])
}

func TestBuild_ForeignKeysResolveChildren(t *testing.T) {
	db := buildHR(t)
	dept := db.MustTable("Department")
	emp := db.MustTable("Employee")

	fks := emp.Constraint().ForeignKeys()
	require.Len(t, fks, 2)
	assert.Equal(t, "Employee.departmentId -> Department.id", fks[0].String())

	children := dept.Column("id").Children()
	require.Len(t, children, 1)
	assert.Same(t, emp.Column("departmentId"), children[0])

	// Self reference
	selfChildren := emp.Column("id").Children()
	require.Len(t, selfChildren, 1)
	assert.Same(t, emp.Column("managerId"), selfChildren[0])

	assert.Nil(t, dept.Column("name").Children(), "no references means nil children")
}

func TestBuild_ForwardReference(t *testing.T) {
	b := NewBuilder("fwd")
	b.Table("Child").Column("parentId", TypeInt).ForeignKey("", "parentId", "Parent", "id")
	b.Table("Parent").Column("id", TypeInt)

	db, err := b.Build()
	require.NoError(t, err)

	fks := db.MustTable("Child").Constraint().ForeignKeys()
	require.Len(t, fks, 1)
	assert.Equal(t, "fk_Child_parentId", fks[0].Name)
	assert.Len(t, db.ForeignKeys(), 1)
}

func TestBuild_CollectsAllErrors(t *testing.T) {
	b := NewBuilder("bad")
	b.Table("A").Column("id", TypeInt).Column("id", TypeInt)
	b.Table("A")
	b.Table("B").
		Column("x", Type("float")).
		PrimaryKey("nope").
		ForeignKey("fk1", "missing", "A", "id").
		ForeignKey("fk2", "x", "Nowhere", "id").
		ForeignKey("fk3", "x", "A", "nope")

	_, err := b.Build()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, `duplicate column "id"`)
	assert.Contains(t, msg, `duplicate table "A"`)
	assert.Contains(t, msg, `invalid type "float"`)
	assert.Contains(t, msg, `primary key column "nope"`)
	assert.Contains(t, msg, "child column B.missing")
	assert.Contains(t, msg, `parent table "Nowhere"`)
	assert.Contains(t, msg, "parent column A.nope")
}

func TestBuild_EmptyTableName(t *testing.T) {
	b := NewBuilder("bad")
	b.Table(" ")

	_, err := b.Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "table name is required")
}

func TestMustTablePanics(t *testing.T) {
	db := buildHR(t)
	assert.Panics(t, func() { db.MustTable("Nope") })
}

func TestQualifiedName(t *testing.T) {
	db := buildHR(t)
	assert.Equal(t, "Employee.managerId", QualifiedName(db.MustTable("Employee").Column("managerId")))
}

func TestSameNameDifferentDatabasesAreDistinct(t *testing.T) {
	a := buildHR(t)
	b := buildHR(t)

	set := NewTableSet(a.MustTable("Employee"))
	assert.True(t, set.Contains(a.MustTable("Employee")))
	assert.False(t, set.Contains(b.MustTable("Employee")), "membership is by identity, not name")
}

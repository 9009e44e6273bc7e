package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/query"
	"github.com/roach88/qscope/internal/querysql"
	"github.com/roach88/qscope/internal/schema"
	"github.com/roach88/qscope/internal/scope"
	"github.com/roach88/qscope/internal/testutil"
)

const hrDDL = `
CREATE TABLE Department (id INTEGER PRIMARY KEY, name TEXT);
CREATE TABLE Job (id INTEGER PRIMARY KEY, title VARCHAR(40));
CREATE TABLE Employee (
	id INTEGER PRIMARY KEY,
	name TEXT,
	salary REAL,
	active BOOLEAN,
	departmentId INTEGER REFERENCES Department(id),
	jobId INTEGER REFERENCES Job,
	managerId INTEGER REFERENCES Employee(id)
);
CREATE TABLE Note (body);
`

func openHR(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "hr.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	_, err = s.DB().Exec(hrDDL)
	require.NoError(t, err)
	return s
}

func TestIntrospect_Tables(t *testing.T) {
	s := openHR(t)

	db, err := s.Introspect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "hr", db.Name())
	var names []string
	for _, table := range db.Tables() {
		names = append(names, table.Name())
	}
	assert.Equal(t, []string{"Department", "Job", "Employee", "Note"}, names)
}

func TestIntrospect_ColumnTypes(t *testing.T) {
	s := openHR(t)

	db, err := s.Introspect(context.Background())
	require.NoError(t, err)

	employee := db.MustTable("Employee")
	assert.Equal(t, schema.TypeInt, employee.Column("id").Type())
	assert.Equal(t, schema.TypeString, employee.Column("name").Type())
	assert.Equal(t, schema.TypeNumber, employee.Column("salary").Type())
	assert.Equal(t, schema.TypeBool, employee.Column("active").Type())
	assert.Equal(t, schema.TypeString, db.MustTable("Job").Column("title").Type())
	assert.Equal(t, schema.TypeUnknown, db.MustTable("Note").Column("body").Type())

	pk := employee.Constraint().PrimaryKey()
	require.Len(t, pk, 1)
	assert.Equal(t, "id", pk[0].Name())
	assert.Empty(t, db.MustTable("Note").Constraint().PrimaryKey())
}

func TestIntrospect_ForeignKeys(t *testing.T) {
	s := openHR(t)

	db, err := s.Introspect(context.Background())
	require.NoError(t, err)

	var edges []string
	for _, fk := range db.MustTable("Employee").Constraint().ForeignKeys() {
		edges = append(edges, fk.String())
	}
	assert.ElementsMatch(t, []string{
		"Employee.departmentId -> Department.id",
		"Employee.jobId -> Job.id",
		"Employee.managerId -> Employee.id",
	}, edges, "a reference without a column resolves to the parent primary key")

	parents := scope.ExpandParents(db, schema.NewTableSet(db.MustTable("Employee")), nil)
	assert.ElementsMatch(t, []string{"Department", "Job", "Employee"}, parents.Names())
}

func TestIntrospect_CompositeForeignKey(t *testing.T) {
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.DB().Exec(`
		CREATE TABLE Shelf (aisle INTEGER, slot INTEGER, PRIMARY KEY (aisle, slot));
		CREATE TABLE Item (id INTEGER PRIMARY KEY, aisle INTEGER, slot INTEGER,
			FOREIGN KEY (aisle, slot) REFERENCES Shelf);
	`)
	require.NoError(t, err)

	db, err := s.Introspect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "main", db.Name())
	var edges []string
	for _, fk := range db.MustTable("Item").Constraint().ForeignKeys() {
		edges = append(edges, fk.String())
	}
	assert.Equal(t, []string{"Item.aisle -> Shelf.aisle", "Item.slot -> Shelf.slot"}, edges)
}

func TestCreateTables_RoundTrip(t *testing.T) {
	source := testutil.HR(t)

	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.CreateTables(context.Background(), source))

	db, err := s.Introspect(context.Background())
	require.NoError(t, err)

	require.Len(t, db.Tables(), len(source.Tables()))
	for _, want := range source.Tables() {
		got, ok := db.Table(want.Name())
		require.True(t, ok, want.Name())
		for _, col := range want.Columns() {
			c := got.Column(col.Name())
			require.NotNil(t, c, schema.QualifiedName(col))
			assert.Equal(t, col.Type(), c.Type(), schema.QualifiedName(col))
		}
		assert.Len(t, got.Constraint().ForeignKeys(), len(want.Constraint().ForeignKeys()))
	}
}

func TestDDL(t *testing.T) {
	stmts := DDL(testutil.Chain(t))

	require.Len(t, stmts, 3)
	assert.Equal(t, `CREATE TABLE "Region" ("id" INTEGER, PRIMARY KEY ("id"))`, stmts[0])
	assert.Equal(t,
		`CREATE TABLE "Country" ("id" INTEGER, "regionId" INTEGER, PRIMARY KEY ("id"), `+
			`CONSTRAINT "fk_Country_regionId" FOREIGN KEY ("regionId") REFERENCES "Region" ("id"))`,
		stmts[1])
}

func TestPrepare_CompiledStatements(t *testing.T) {
	view := testutil.HR(t)
	s, err := Open(MemoryPath)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.CreateTables(context.Background(), view))

	b := pred.NewBuilder()
	employee := view.MustTable("Employee")
	sel := query.NewSelect(view, employee, view.MustTable("Department")).SetLimit(pred.Lit(ir.Int(5)))
	sel.SetWhere(b.And(
		b.Join(testutil.Col(t, view, "Employee", "departmentId"), pred.OpEq, testutil.Col(t, view, "Department", "id")),
		b.In(testutil.Col(t, view, "Employee", "jobId"), pred.Lit(ir.NewList(ir.Int(1), ir.Int(2)))),
	))
	upd := query.NewUpdate(view, employee).Set(testutil.Col(t, view, "Employee", "name"), pred.Lit(ir.String("x")))
	ins := query.NewInsertOrReplace(view, employee).Values(ir.NewObject(ir.O("id", ir.Int(1))))
	del := query.NewDelete(view, employee)

	compiler := querysql.NewSQLCompiler()
	for _, ctx := range []query.Context{sel, upd, ins, del} {
		sql, _, err := compiler.Compile(ctx)
		require.NoError(t, err, ctx.Kind())
		assert.NoError(t, s.Prepare(context.Background(), sql), sql)
	}
}

func TestAffinityType(t *testing.T) {
	cases := map[string]schema.Type{
		"INTEGER":      schema.TypeInt,
		"bigint":       schema.TypeInt,
		"VARCHAR(10)":  schema.TypeString,
		"text":         schema.TypeString,
		"CLOB":         schema.TypeString,
		"BLOB":         schema.TypeBytes,
		"REAL":         schema.TypeNumber,
		"DECIMAL(5,2)": schema.TypeNumber,
		"BOOLEAN":      schema.TypeBool,
		"JSON":         schema.TypeObject,
		"":             schema.TypeUnknown,
	}
	for declared, want := range cases {
		assert.Equal(t, want, affinityType(declared), declared)
	}
}

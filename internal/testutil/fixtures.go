// Package testutil provides shared schema fixtures for package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/qscope/internal/schema"
)

// HR builds the human-resources fixture:
//
//	Department(id, name)
//	Job(id, title)
//	Employee(id, name, departmentId -> Department.id, jobId -> Job.id,
//	         managerId -> Employee.id)
//	Holiday(id, name)   no foreign keys
func HR(t testing.TB) *schema.Database {
	t.Helper()

	b := schema.NewBuilder("hr")
	b.Table("Department").
		Column("id", schema.TypeInt).
		Column("name", schema.TypeString).
		PrimaryKey("id")
	b.Table("Job").
		Column("id", schema.TypeInt).
		Column("title", schema.TypeString).
		PrimaryKey("id")
	b.Table("Employee").
		Column("id", schema.TypeInt).
		Column("name", schema.TypeString).
		Column("departmentId", schema.TypeInt).
		Column("jobId", schema.TypeInt).
		Column("managerId", schema.TypeInt).
		PrimaryKey("id").
		ForeignKey("fk_department", "departmentId", "Department", "id").
		ForeignKey("fk_job", "jobId", "Job", "id").
		ForeignKey("fk_manager", "managerId", "Employee", "id")
	b.Table("Holiday").
		Column("id", schema.TypeInt).
		Column("name", schema.TypeString).
		PrimaryKey("id")

	db, err := b.Build()
	require.NoError(t, err)
	return db
}

// Cyclic builds two tables referencing each other:
//
//	A(id, bId -> B.id, note)
//	B(id, aId -> A.id)
func Cyclic(t testing.TB) *schema.Database {
	t.Helper()

	b := schema.NewBuilder("cyclic")
	b.Table("A").
		Column("id", schema.TypeInt).
		Column("bId", schema.TypeInt).
		Column("note", schema.TypeString).
		PrimaryKey("id").
		ForeignKey("fk_a_b", "bId", "B", "id")
	b.Table("B").
		Column("id", schema.TypeInt).
		Column("aId", schema.TypeInt).
		PrimaryKey("id").
		ForeignKey("fk_b_a", "aId", "A", "id")

	db, err := b.Build()
	require.NoError(t, err)
	return db
}

// Chain builds a three-level chain Region <- Country <- City.
func Chain(t testing.TB) *schema.Database {
	t.Helper()

	b := schema.NewBuilder("geo")
	b.Table("Region").Column("id", schema.TypeInt).PrimaryKey("id")
	b.Table("Country").
		Column("id", schema.TypeInt).
		Column("regionId", schema.TypeInt).
		PrimaryKey("id").
		ForeignKey("", "regionId", "Region", "id")
	b.Table("City").
		Column("id", schema.TypeInt).
		Column("countryId", schema.TypeInt).
		PrimaryKey("id").
		ForeignKey("", "countryId", "Country", "id")

	db, err := b.Build()
	require.NoError(t, err)
	return db
}

// Col resolves "Table.column" in db and fails the test if absent.
func Col(t testing.TB, db *schema.Database, table, column string) schema.Column {
	t.Helper()

	tbl, ok := db.Table(table)
	require.True(t, ok, "table %s", table)
	c := tbl.Column(column)
	require.NotNil(t, c, "column %s.%s", table, column)
	return c
}

package schema

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// Builder assembles a Database. Declarations may appear in any order; foreign
// keys are resolved in Build, so a table may reference a table declared after
// it (or itself).
//
//	b := schema.NewBuilder("hr")
//	b.Table("Department").Column("id", schema.TypeInt).PrimaryKey("id")
//	b.Table("Employee").
//		Column("id", schema.TypeInt).
//		Column("departmentId", schema.TypeInt).
//		ForeignKey("fk_department", "departmentId", "Department", "id")
//	db, err := b.Build()
type Builder struct {
	name   string
	tables []*TableBuilder
}

// TableBuilder declares one table.
type TableBuilder struct {
	name        string
	columns     []columnDecl
	primaryKey  []string
	foreignKeys []ForeignKey
}

type columnDecl struct {
	name string
	typ  Type
}

// NewBuilder creates a Builder for a schema with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Table declares a table and returns its builder. Declaring the same name
// twice is reported by Build.
func (b *Builder) Table(name string) *TableBuilder {
	tb := &TableBuilder{name: name}
	b.tables = append(b.tables, tb)
	return tb
}

// Column declares a column.
func (tb *TableBuilder) Column(name string, typ Type) *TableBuilder {
	tb.columns = append(tb.columns, columnDecl{name: name, typ: typ})
	return tb
}

// PrimaryKey declares the primary key columns.
func (tb *TableBuilder) PrimaryKey(columns ...string) *TableBuilder {
	tb.primaryKey = append(tb.primaryKey, columns...)
	return tb
}

// ForeignKey declares childColumn -> parentTable.parentColumn.
// An empty name is replaced by "fk_<table>_<childColumn>".
func (tb *TableBuilder) ForeignKey(name, childColumn, parentTable, parentColumn string) *TableBuilder {
	if name == "" {
		name = fmt.Sprintf("fk_%s_%s", tb.name, childColumn)
	}
	tb.foreignKeys = append(tb.foreignKeys, ForeignKey{
		Name:         name,
		ChildTable:   tb.name,
		ChildColumn:  childColumn,
		ParentTable:  parentTable,
		ParentColumn: parentColumn,
	})
	return tb
}

// Build validates the declarations and produces an immutable Database.
// All validation failures are reported together.
func (b *Builder) Build() (*Database, error) {
	var errs *multierror.Error

	db := &Database{
		name:   b.name,
		byName: make(map[string]*table, len(b.tables)),
	}

	for _, tb := range b.tables {
		if strings.TrimSpace(tb.name) == "" {
			errs = multierror.Append(errs, fmt.Errorf("table name is required"))
			continue
		}
		if _, dup := db.byName[tb.name]; dup {
			errs = multierror.Append(errs, fmt.Errorf("duplicate table %q", tb.name))
			continue
		}

		t := &table{
			name:   tb.name,
			byName: make(map[string]*column, len(tb.columns)),
		}
		for _, decl := range tb.columns {
			if _, dup := t.byName[decl.name]; dup {
				errs = multierror.Append(errs, fmt.Errorf("table %q: duplicate column %q", tb.name, decl.name))
				continue
			}
			if !ValidTypes[decl.typ] && decl.typ != TypeUnknown {
				errs = multierror.Append(errs, fmt.Errorf("table %q: column %q has invalid type %q", tb.name, decl.name, decl.typ))
			}
			c := &column{name: decl.name, typ: decl.typ, table: t}
			t.columns = append(t.columns, c)
			t.byName[decl.name] = c
		}
		for _, name := range tb.primaryKey {
			c, ok := t.byName[name]
			if !ok {
				errs = multierror.Append(errs, fmt.Errorf("table %q: primary key column %q not declared", tb.name, name))
				continue
			}
			t.primaryKey = append(t.primaryKey, c)
		}

		db.tables = append(db.tables, t)
		db.byName[t.name] = t
	}

	// Foreign keys resolve after every table exists so forward and cyclic
	// references work.
	for _, tb := range b.tables {
		t, ok := db.byName[tb.name]
		if !ok {
			continue
		}
		for _, fk := range tb.foreignKeys {
			if err := db.linkForeignKey(t, fk); err != nil {
				errs = multierror.Append(errs, err)
				continue
			}
			t.foreignKeys = append(t.foreignKeys, fk)
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("build schema %q: %w", b.name, err)
	}
	return db, nil
}

// linkForeignKey validates fk and registers the child column on the
// referenced parent column.
func (d *Database) linkForeignKey(t *table, fk ForeignKey) error {
	child, ok := t.byName[fk.ChildColumn]
	if !ok {
		return fmt.Errorf("foreign key %q: child column %s.%s not declared", fk.Name, t.name, fk.ChildColumn)
	}
	parentTable, ok := d.byName[fk.ParentTable]
	if !ok {
		return fmt.Errorf("foreign key %q: parent table %q not declared", fk.Name, fk.ParentTable)
	}
	parent, ok := parentTable.byName[fk.ParentColumn]
	if !ok {
		return fmt.Errorf("foreign key %q: parent column %s.%s not declared", fk.Name, fk.ParentTable, fk.ParentColumn)
	}
	parent.children = append(parent.children, child)
	return nil
}

package schema

// View is the read-only schema catalog.
type View interface {
	// Name identifies the schema (database name).
	Name() string

	// Table resolves a table by name.
	Table(name string) (Table, bool)

	// Tables returns every table in declaration order.
	Tables() []Table
}

// Table is a relation in a View. Table values are compared by identity:
// the same name in two different Views yields two different tables.
type Table interface {
	Name() string

	// Columns returns the columns in declaration order.
	Columns() []Column

	// Column resolves a column by name, nil if absent.
	Column(name string) Column

	// Constraint returns the table's constraint set.
	Constraint() Constraint
}

// Column is a column of a Table.
type Column interface {
	Name() string
	Type() Type
	Table() Table

	// Children returns the columns of other (or the same) tables holding a
	// foreign key that references this column. Nil when none.
	Children() []Column
}

// Constraint groups the constraints declared on a table.
type Constraint interface {
	PrimaryKey() []Column
	ForeignKeys() []ForeignKey
}

// ForeignKey is a directed edge childColumn -> parentTable.parentColumn.
// ChildColumn names a column of the declaring table.
type ForeignKey struct {
	Name         string
	ChildTable   string
	ChildColumn  string
	ParentTable  string
	ParentColumn string
}

// String renders "Child.col -> Parent.col".
func (fk ForeignKey) String() string {
	return fk.ChildTable + "." + fk.ChildColumn + " -> " + fk.ParentTable + "." + fk.ParentColumn
}

// Type is a column's declared value type.
type Type string

const (
	TypeString  Type = "string"
	TypeInt     Type = "int"
	TypeBool    Type = "bool"
	TypeNumber  Type = "number"
	TypeBytes   Type = "bytes"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
	TypeUnknown Type = "unknown"
)

// ValidTypes lists the accepted Type values.
var ValidTypes = map[Type]bool{
	TypeString: true,
	TypeInt:    true,
	TypeBool:   true,
	TypeNumber: true,
	TypeBytes:  true,
	TypeArray:  true,
	TypeObject: true,
}

// QualifiedName returns "Table.column".
func QualifiedName(c Column) string {
	return c.Table().Name() + "." + c.Name()
}

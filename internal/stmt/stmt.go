// Package stmt decodes declarative statement descriptors from YAML and
// builds query contexts from them.
//
// A descriptor names tables and columns as "Table" and "Table.column" and
// describes the where clause as a tree:
//
//	kind: select
//	from: [Employee, Department]
//	where:
//	  and:
//	    - {left: Employee.departmentId, op: eq, right: Department.id}
//	    - {column: Employee.jobId, op: in, param: 0}
//	limit: {value: 10}
//
// This is not SQL parsing: descriptors are structured data.
package stmt

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Statement kinds.
const (
	KindSelect = "select"
	KindInsert = "insert"
	KindUpdate = "update"
	KindDelete = "delete"
)

// Statement describes one query statement.
type Statement struct {
	// Kind is select, insert, update or delete.
	Kind string `yaml:"kind"`

	// From lists the source tables of a select.
	From []string `yaml:"from,omitempty"`

	// Table is the target of an insert, update or delete.
	Table string `yaml:"table,omitempty"`

	// Columns is the projection of a select; empty selects all columns.
	Columns []string `yaml:"columns,omitempty"`

	Where *Node `yaml:"where,omitempty"`

	OrderBy []OrderSpec `yaml:"order_by,omitempty"`

	Limit *Operand `yaml:"limit,omitempty"`
	Skip  *Operand `yaml:"skip,omitempty"`

	// Set lists the assignments of an update.
	Set []Assignment `yaml:"set,omitempty"`

	// Rows holds literal insert rows; RowsParam binds them from a parameter
	// instead.
	Rows      []map[string]any `yaml:"rows,omitempty"`
	RowsParam *int             `yaml:"rows_param,omitempty"`

	// Replace turns an insert into insert-or-replace.
	Replace bool `yaml:"replace,omitempty"`
}

// Node is one where-clause node. Exactly one form applies:
//   - and / or: a combined predicate over the listed children
//   - left + right: a join predicate
//   - column: a value predicate comparing against param or value
type Node struct {
	And []Node `yaml:"and,omitempty"`
	Or  []Node `yaml:"or,omitempty"`

	Left  string `yaml:"left,omitempty"`
	Right string `yaml:"right,omitempty"`

	Column string `yaml:"column,omitempty"`

	// Op is the comparison operator, by name or symbol. Defaults to eq.
	Op string `yaml:"op,omitempty"`

	Operand `yaml:",inline"`
}

// Operand is either a positional parameter or a literal value.
type Operand struct {
	Param *int `yaml:"param,omitempty"`

	// Value is kept as a raw node so an explicit null can be told apart
	// from an absent value.
	Value yaml.Node `yaml:"value,omitempty"`
}

// OrderSpec is one ORDER BY term.
type OrderSpec struct {
	Column string `yaml:"column"`
	Desc   bool   `yaml:"desc,omitempty"`
}

// Assignment is one SET term of an update.
type Assignment struct {
	Column  string `yaml:"column"`
	Operand `yaml:",inline"`
}

// Parse decodes a statement descriptor. Unknown fields are rejected.
func Parse(data []byte) (*Statement, error) {
	var st Statement
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&st); err != nil {
		return nil, fmt.Errorf("failed to parse statement: %w", err)
	}
	return &st, nil
}

// Load reads and decodes a statement descriptor file.
func Load(path string) (*Statement, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read statement file: %w", err)
	}
	return Parse(data)
}

package query

import (
	"fmt"
	"slices"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/schema"
	"github.com/roach88/qscope/internal/scope"
)

// Assignment is one SET term of an update.
type Assignment struct {
	Column schema.Column
	Value  pred.Operand
}

// Update is the context of an UPDATE statement.
type Update struct {
	Base
	table schema.Table
	set   []Assignment
}

var _ Context = (*Update)(nil)

// NewUpdate creates an update of table.
func NewUpdate(view schema.View, table schema.Table) *Update {
	return &Update{Base: newBase(view), table: table}
}

// Kind implements Context.
func (u *Update) Kind() string { return "update" }

// Table returns the updated table.
func (u *Update) Table() schema.Table { return u.table }

// Set appends an assignment.
func (u *Update) Set(column schema.Column, value pred.Operand) *Update {
	u.set = append(u.set, Assignment{Column: column, Value: value})
	return u
}

// Assignments returns the SET terms in declaration order.
func (u *Update) Assignments() []Assignment { return slices.Clone(u.set) }

// Scope returns the updated table plus the parents and children linked
// through the assigned columns. Columns that are not assigned cannot change
// a foreign key relationship and do not widen the scope.
func (u *Update) Scope() schema.TableSet {
	target := schema.NewTableSet(u.table)
	columns := schema.NewColumnSet()
	for _, a := range u.set {
		columns.Add(a.Column)
	}

	tables := target.Clone()
	tables.AddAll(scope.ExpandParents(u.schema, target, columns))
	tables.AddAll(scope.ExpandChildren(u.schema, target, columns))
	return tables
}

// Clone implements Context.
func (u *Update) Clone() Context {
	c := &Update{
		Base:  newBase(u.schema),
		table: u.table,
		set:   slices.Clone(u.set),
	}
	c.cloneBase(&u.Base)
	return c
}

// Bind binds the assignment parameters and the where clause. Assignments
// are replaced only when every binding succeeds; the where clause may be
// left partially bound, as with BindValuesInSearchCondition.
func (u *Update) Bind(values []ir.Value) (Context, error) {
	u.assertNotClone()
	set := slices.Clone(u.set)
	for n, a := range set {
		bound, err := a.Value.Bind(values)
		if err != nil {
			return nil, fmt.Errorf("bind set %s: %w", schema.QualifiedName(a.Column), err)
		}
		set[n].Value = bound
	}
	if err := u.BindValuesInSearchCondition(values); err != nil {
		return nil, err
	}
	u.set = set
	return u, nil
}

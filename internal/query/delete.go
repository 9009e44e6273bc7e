package query

import (
	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/schema"
	"github.com/roach88/qscope/internal/scope"
)

// Delete is the context of a DELETE statement.
type Delete struct {
	Base
	from schema.Table
}

var _ Context = (*Delete)(nil)

// NewDelete creates a delete from table.
func NewDelete(view schema.View, from schema.Table) *Delete {
	return &Delete{Base: newBase(view), from: from}
}

// Kind implements Context.
func (d *Delete) Kind() string { return "delete" }

// From returns the table rows are deleted from.
func (d *Delete) From() schema.Table { return d.from }

// Scope returns the table plus every table referencing it, whose rows a
// cascading delete would touch.
func (d *Delete) Scope() schema.TableSet {
	target := schema.NewTableSet(d.from)
	tables := target.Clone()
	tables.AddAll(scope.ExpandChildren(d.schema, target, nil))
	return tables
}

// Clone implements Context.
func (d *Delete) Clone() Context {
	c := &Delete{Base: newBase(d.schema), from: d.from}
	c.cloneBase(&d.Base)
	return c
}

// Bind binds the where clause.
func (d *Delete) Bind(values []ir.Value) (Context, error) {
	d.assertNotClone()
	if err := d.BindValuesInSearchCondition(values); err != nil {
		return nil, err
	}
	return d, nil
}

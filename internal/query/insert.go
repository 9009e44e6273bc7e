package query

import (
	"fmt"
	"slices"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/schema"
	"github.com/roach88/qscope/internal/scope"
)

// Insert is the context of an INSERT or INSERT OR REPLACE statement.
// Rows are either literal or bound as a whole from one parameter holding a
// list of objects.
type Insert struct {
	Base
	into      schema.Table
	rows      []ir.Object
	rowsParam *pred.Operand
	replace   bool
}

var _ Context = (*Insert)(nil)

// NewInsert creates an insert into table.
func NewInsert(view schema.View, into schema.Table) *Insert {
	return &Insert{Base: newBase(view), into: into}
}

// NewInsertOrReplace creates an insert that replaces rows with a
// conflicting primary key.
func NewInsertOrReplace(view schema.View, into schema.Table) *Insert {
	return &Insert{Base: newBase(view), into: into, replace: true}
}

// Kind implements Context.
func (i *Insert) Kind() string { return "insert" }

// Into returns the target table.
func (i *Insert) Into() schema.Table { return i.into }

// Replace reports whether conflicting rows are replaced.
func (i *Insert) Replace() bool { return i.replace }

// Values sets literal rows.
func (i *Insert) Values(rows ...ir.Object) *Insert {
	i.rows = slices.Clone(rows)
	i.rowsParam = nil
	return i
}

// ValuesParam makes the rows come from parameter index at bind time.
func (i *Insert) ValuesParam(index int) *Insert {
	p := pred.Param(index)
	i.rows = nil
	i.rowsParam = &p
	return i
}

// Rows returns the literal or bound rows.
func (i *Insert) Rows() []ir.Object { return slices.Clone(i.rows) }

// RowsParam returns the parameter index rows are bound from.
func (i *Insert) RowsParam() (int, bool) {
	if i.rowsParam == nil {
		return 0, false
	}
	return i.rowsParam.Index()
}

// Scope returns the target table and every table it references. Replacing
// a row may also remove rows its children reference, so an insert-or-replace
// includes the children too.
func (i *Insert) Scope() schema.TableSet {
	target := schema.NewTableSet(i.into)
	tables := target.Clone()
	tables.AddAll(scope.ExpandParents(i.schema, target, nil))
	if i.replace {
		tables.AddAll(scope.ExpandChildren(i.schema, target, nil))
	}
	return tables
}

// Clone implements Context.
func (i *Insert) Clone() Context {
	c := &Insert{
		Base:      newBase(i.schema),
		into:      i.into,
		rows:      cloneRows(i.rows),
		rowsParam: cloneOperand(i.rowsParam),
		replace:   i.replace,
	}
	c.cloneBase(&i.Base)
	return c
}

// Bind binds the rows parameter, if any, and the where clause. Rows are
// replaced only when every binding succeeds.
func (i *Insert) Bind(values []ir.Value) (Context, error) {
	i.assertNotClone()
	rows := i.rows
	if i.rowsParam != nil {
		v, err := i.rowsParam.Resolve(values)
		if err != nil {
			return nil, fmt.Errorf("bind rows: %w", err)
		}
		rows, err = rowsFromValue(v)
		if err != nil {
			return nil, err
		}
	}
	if err := i.BindValuesInSearchCondition(values); err != nil {
		return nil, err
	}
	i.rows = rows
	return i, nil
}

func rowsFromValue(v ir.Value) ([]ir.Object, error) {
	list, ok := v.(ir.List)
	if !ok {
		return nil, fmt.Errorf("bind rows: %w: want list of objects, got %s", pred.ErrBindKind, ir.Kind(v))
	}
	rows := make([]ir.Object, 0, len(list))
	for n, item := range list {
		row, ok := item.(ir.Object)
		if !ok {
			return nil, fmt.Errorf("bind rows: %w: row %d is %s, want object", pred.ErrBindKind, n, ir.Kind(item))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cloneRows(rows []ir.Object) []ir.Object {
	if rows == nil {
		return nil
	}
	out := make([]ir.Object, len(rows))
	for n, row := range rows {
		cp := make(ir.Object, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out[n] = cp
	}
	return out
}

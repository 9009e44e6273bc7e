package query

import (
	"slices"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/schema"
	"github.com/roach88/qscope/internal/scope"
)

// Order is one ORDER BY term.
type Order struct {
	Column     schema.Column
	Descending bool
}

// Select is the context of a SELECT statement.
type Select struct {
	Base
	from    schema.TableSet
	columns []schema.Column
	orderBy []Order
	limit   *pred.Operand
	skip    *pred.Operand
}

var _ Context = (*Select)(nil)

// NewSelect creates a select over the given tables.
func NewSelect(view schema.View, from ...schema.Table) *Select {
	return &Select{
		Base: newBase(view),
		from: schema.NewTableSet(from...),
	}
}

// Kind implements Context.
func (s *Select) Kind() string { return "select" }

// From returns the source tables.
func (s *Select) From() schema.TableSet { return s.from.Clone() }

// Project sets the projected columns. No columns means all columns.
func (s *Select) Project(columns ...schema.Column) *Select {
	s.columns = slices.Clone(columns)
	return s
}

// Columns returns the projected columns.
func (s *Select) Columns() []schema.Column { return slices.Clone(s.columns) }

// OrderBy appends an ORDER BY term.
func (s *Select) OrderBy(column schema.Column, descending bool) *Select {
	s.orderBy = append(s.orderBy, Order{Column: column, Descending: descending})
	return s
}

// Orders returns the ORDER BY terms.
func (s *Select) Orders() []Order { return slices.Clone(s.orderBy) }

// SetLimit sets the row limit, a literal ir.Int or a parameter.
func (s *Select) SetLimit(limit pred.Operand) *Select {
	s.limit = &limit
	return s
}

// Limit returns the row limit operand.
func (s *Select) Limit() (pred.Operand, bool) {
	if s.limit == nil {
		return pred.Operand{}, false
	}
	return *s.limit, true
}

// SetSkip sets the number of rows to skip, a literal ir.Int or a parameter.
func (s *Select) SetSkip(skip pred.Operand) *Select {
	s.skip = &skip
	return s
}

// Skip returns the skip operand.
func (s *Select) Skip() (pred.Operand, bool) {
	if s.skip == nil {
		return pred.Operand{}, false
	}
	return *s.skip, true
}

// Scope returns the source tables plus the parents reached through the
// columns of join predicates.
func (s *Select) Scope() schema.TableSet {
	tables := s.from.Clone()
	tables.AddAll(scope.ExpandParents(s.schema, s.from, pred.JoinColumns(s.where)))
	return tables
}

// Clone implements Context.
func (s *Select) Clone() Context {
	c := &Select{
		Base:    newBase(s.schema),
		from:    s.from.Clone(),
		columns: slices.Clone(s.columns),
		orderBy: slices.Clone(s.orderBy),
		limit:   cloneOperand(s.limit),
		skip:    cloneOperand(s.skip),
	}
	c.cloneBase(&s.Base)
	return c
}

// Bind binds limit, skip and the where clause. Limit and skip are
// replaced only when every binding succeeds; the where clause may be left
// partially bound, as with BindValuesInSearchCondition.
func (s *Select) Bind(values []ir.Value) (Context, error) {
	s.assertNotClone()
	limit, skip := cloneOperand(s.limit), cloneOperand(s.skip)
	if limit != nil {
		bound, err := bindCount("limit", *limit, values)
		if err != nil {
			return nil, err
		}
		*limit = bound
	}
	if skip != nil {
		bound, err := bindCount("skip", *skip, values)
		if err != nil {
			return nil, err
		}
		*skip = bound
	}
	if err := s.BindValuesInSearchCondition(values); err != nil {
		return nil, err
	}
	s.limit, s.skip = limit, skip
	return s, nil
}

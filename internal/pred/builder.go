package pred

import "github.com/roach88/qscope/internal/schema"

// Builder constructs predicate nodes with fresh ids.
type Builder struct {
	ids IDSource
}

// NewBuilder creates a Builder with its own Counter.
func NewBuilder() *Builder {
	return &Builder{ids: NewCounter()}
}

// NewBuilderWithSource creates a Builder drawing ids from ids.
func NewBuilderWithSource(ids IDSource) *Builder {
	return &Builder{ids: ids}
}

// Compare builds column <op> operand.
func (b *Builder) Compare(column schema.Column, op Operator, operand Operand) *ValuePredicate {
	return &ValuePredicate{
		id:      b.ids.Next(),
		column:  column,
		op:      op,
		operand: operand,
	}
}

func (b *Builder) Eq(column schema.Column, operand Operand) *ValuePredicate {
	return b.Compare(column, OpEq, operand)
}

func (b *Builder) Ne(column schema.Column, operand Operand) *ValuePredicate {
	return b.Compare(column, OpNe, operand)
}

func (b *Builder) Lt(column schema.Column, operand Operand) *ValuePredicate {
	return b.Compare(column, OpLt, operand)
}

func (b *Builder) Lte(column schema.Column, operand Operand) *ValuePredicate {
	return b.Compare(column, OpLte, operand)
}

func (b *Builder) Gt(column schema.Column, operand Operand) *ValuePredicate {
	return b.Compare(column, OpGt, operand)
}

func (b *Builder) Gte(column schema.Column, operand Operand) *ValuePredicate {
	return b.Compare(column, OpGte, operand)
}

// In builds column IN operand. A literal operand must be an ir.List.
func (b *Builder) In(column schema.Column, operand Operand) *ValuePredicate {
	return b.Compare(column, OpIn, operand)
}

// Join builds left <op> right.
func (b *Builder) Join(left schema.Column, op Operator, right schema.Column) *JoinPredicate {
	return &JoinPredicate{
		id:    b.ids.Next(),
		left:  left,
		right: right,
		op:    op,
	}
}

// And combines children with AND. The combined node's id is allocated
// after its children's.
func (b *Builder) And(children ...Node) *CombinedPredicate {
	return b.Combine(And, children...)
}

// Or combines children with OR.
func (b *Builder) Or(children ...Node) *CombinedPredicate {
	return b.Combine(Or, children...)
}

// Combine combines children with op.
func (b *Builder) Combine(op Logical, children ...Node) *CombinedPredicate {
	kids := make([]Node, len(children))
	copy(kids, children)
	return &CombinedPredicate{
		id:       b.ids.Next(),
		op:       op,
		children: kids,
	}
}

package pred

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/schema"
)

// Node is a predicate tree element.
type Node interface {
	// ID returns the node's identifier, unique within its tree.
	ID() ID

	// Children returns the direct children (nil for leaves).
	Children() []Node

	// Traverse calls visit for this node and every descendant in pre-order.
	Traverse(visit func(Node))

	// Copy returns a deep copy that shares no mutable state with the
	// receiver. Ids are preserved.
	Copy() Node

	String() string
}

var (
	// ErrBindOutOfRange is returned when a parameter index has no value.
	ErrBindOutOfRange = errors.New("bind index out of range")

	// ErrBindKind is returned when a bound value has the wrong kind for
	// its operator (IN requires a list).
	ErrBindKind = errors.New("bound value has wrong kind")
)

// Operand is the right-hand side of a value predicate: either a literal or a
// positional parameter.
type Operand struct {
	value ir.Value
	param int
	bound bool // value is set
	isVar bool // param is set
}

// Lit returns a literal operand.
func Lit(v ir.Value) Operand {
	return Operand{value: v, bound: true}
}

// Param returns an operand bound later from values[index].
func Param(index int) Operand {
	return Operand{param: index, isVar: true}
}

// IsParam reports whether the operand is a positional parameter.
func (o Operand) IsParam() bool { return o.isVar }

// Index returns the parameter index and whether the operand is a parameter.
func (o Operand) Index() (int, bool) { return o.param, o.isVar }

// Value returns the literal or bound value and whether one is present.
func (o Operand) Value() (ir.Value, bool) { return o.value, o.bound }

// Resolve returns the operand's value given the parameter values.
// Literals ignore values.
func (o Operand) Resolve(values []ir.Value) (ir.Value, error) {
	if !o.isVar {
		return o.value, nil
	}
	if o.param < 0 || o.param >= len(values) {
		return nil, fmt.Errorf("%w: parameter %d, %d values supplied", ErrBindOutOfRange, o.param, len(values))
	}
	return values[o.param], nil
}

// Bind resolves the operand and returns it with the value filled in.
// The parameter index is kept so the operand can be bound again.
func (o Operand) Bind(values []ir.Value) (Operand, error) {
	if !o.isVar {
		return o, nil
	}
	v, err := o.Resolve(values)
	if err != nil {
		return o, err
	}
	o.value = v
	o.bound = true
	return o, nil
}

func (o Operand) String() string {
	switch {
	case o.isVar && o.bound:
		return fmt.Sprintf("?%d(%s)", o.param, renderValue(o.value))
	case o.isVar:
		return fmt.Sprintf("?%d", o.param)
	default:
		return renderValue(o.value)
	}
}

func renderValue(v ir.Value) string {
	b, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// ValuePredicate compares a column to an operand.
type ValuePredicate struct {
	id      ID
	column  schema.Column
	op      Operator
	operand Operand
}

// ID implements Node.
func (p *ValuePredicate) ID() ID { return p.id }

// Children implements Node.
func (p *ValuePredicate) Children() []Node { return nil }

// Traverse implements Node.
func (p *ValuePredicate) Traverse(visit func(Node)) { visit(p) }

// Copy implements Node.
func (p *ValuePredicate) Copy() Node {
	cp := *p
	return &cp
}

// Column returns the compared column.
func (p *ValuePredicate) Column() schema.Column { return p.column }

// Operator returns the comparison operator.
func (p *ValuePredicate) Operator() Operator { return p.op }

// Operand returns the right-hand side.
func (p *ValuePredicate) Operand() Operand { return p.operand }

// Value returns the literal or bound value; false while a parameter is
// unbound.
func (p *ValuePredicate) Value() (ir.Value, bool) { return p.operand.Value() }

// IsBound reports whether the predicate has a value to compare against.
func (p *ValuePredicate) IsBound() bool {
	_, ok := p.operand.Value()
	return ok
}

// Bind fills a parameter operand from values. Literal predicates are left
// untouched. Binding again overwrites the previous value.
func (p *ValuePredicate) Bind(values []ir.Value) error {
	if !p.operand.IsParam() {
		return nil
	}
	bound, err := p.operand.Bind(values)
	if err != nil {
		return fmt.Errorf("bind %s: %w", schema.QualifiedName(p.column), err)
	}
	if v, _ := bound.Value(); p.op == OpIn {
		if _, ok := v.(ir.List); !ok {
			return fmt.Errorf("bind %s: %w: IN requires list, got %s", schema.QualifiedName(p.column), ErrBindKind, ir.Kind(v))
		}
	}
	p.operand = bound
	return nil
}

func (p *ValuePredicate) String() string {
	return fmt.Sprintf("%s %s %s", schema.QualifiedName(p.column), p.op.Symbol(), p.operand)
}

// JoinPredicate compares two columns.
type JoinPredicate struct {
	id    ID
	left  schema.Column
	right schema.Column
	op    Operator
}

// ID implements Node.
func (p *JoinPredicate) ID() ID { return p.id }

// Children implements Node.
func (p *JoinPredicate) Children() []Node { return nil }

// Traverse implements Node.
func (p *JoinPredicate) Traverse(visit func(Node)) { visit(p) }

// Copy implements Node.
func (p *JoinPredicate) Copy() Node {
	cp := *p
	return &cp
}

// Left returns the left column.
func (p *JoinPredicate) Left() schema.Column { return p.left }

// Right returns the right column.
func (p *JoinPredicate) Right() schema.Column { return p.right }

// Operator returns the comparison operator.
func (p *JoinPredicate) Operator() Operator { return p.op }

func (p *JoinPredicate) String() string {
	return fmt.Sprintf("%s %s %s", schema.QualifiedName(p.left), p.op.Symbol(), schema.QualifiedName(p.right))
}

// CombinedPredicate joins children with AND or OR.
type CombinedPredicate struct {
	id       ID
	op       Logical
	children []Node
}

// ID implements Node.
func (p *CombinedPredicate) ID() ID { return p.id }

// Children implements Node.
func (p *CombinedPredicate) Children() []Node { return p.children }

// Operator returns AND or OR.
func (p *CombinedPredicate) Operator() Logical { return p.op }

// Traverse implements Node.
func (p *CombinedPredicate) Traverse(visit func(Node)) {
	visit(p)
	for _, child := range p.children {
		child.Traverse(visit)
	}
}

// Copy implements Node.
func (p *CombinedPredicate) Copy() Node {
	children := make([]Node, len(p.children))
	for i, child := range p.children {
		children[i] = child.Copy()
	}
	return &CombinedPredicate{id: p.id, op: p.op, children: children}
}

func (p *CombinedPredicate) String() string {
	parts := make([]string, len(p.children))
	for i, child := range p.children {
		parts[i] = child.String()
	}
	return "(" + strings.Join(parts, " "+strings.ToUpper(string(p.op))+" ") + ")"
}

package query

import (
	"github.com/google/uuid"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/schema"
)

// Context is the state of one query statement.
type Context interface {
	// Kind names the statement type: "select", "insert", "update" or
	// "delete".
	Kind() string

	// Schema returns the shared schema view.
	Schema() schema.View

	// Where returns the filter predicate tree, nil if none.
	Where() pred.Node

	// Scope returns the tables the statement touches, including the tables
	// reached by one foreign key hop where the statement type requires it.
	// Computed on every call; never nil.
	Scope() schema.TableSet

	// Predicate returns the node of the where tree with the given id.
	// Panics with a *ContractError when the id is unknown.
	Predicate(id pred.ID) pred.Node

	// Clone returns an independent copy whose where tree is a deep copy and
	// whose provenance records the receiver.
	Clone() Context

	// Bind binds parameter values into the statement and its where tree and
	// returns the receiver. Panics with a *ContractError on a clone. On
	// error the statement's own parameters are unchanged; the where tree
	// may be partially bound, as with BindValuesInSearchCondition.
	Bind(values []ir.Value) (Context, error)

	// BindValuesInSearchCondition binds parameter values into every value
	// predicate of the where tree.
	BindValuesInSearchCondition(values []ir.Value) error

	// Handle identifies this context instance.
	Handle() uuid.UUID

	// ClonedFrom returns the handle of the context this one was cloned from.
	ClonedFrom() (uuid.UUID, bool)
}

// Base carries the state shared by every statement type. Statement types
// embed it and supply Kind, Scope, Clone and Bind.
type Base struct {
	schema     schema.View
	where      pred.Node
	index      *pred.Index
	handle     uuid.UUID
	clonedFrom uuid.UUID
	cloned     bool
}

func newBase(view schema.View) Base {
	return Base{
		schema: view,
		handle: uuid.Must(uuid.NewV7()),
	}
}

// Schema returns the shared schema view.
func (b *Base) Schema() schema.View { return b.schema }

// Where returns the filter predicate tree, nil if none.
func (b *Base) Where() pred.Node { return b.where }

// SetWhere replaces the filter predicate tree. The context takes ownership
// of where; callers must not mutate it afterwards.
func (b *Base) SetWhere(where pred.Node) {
	b.where = where
	b.index = nil
}

// Handle returns the provenance handle of this context.
func (b *Base) Handle() uuid.UUID { return b.handle }

// ClonedFrom returns the handle of the clone source.
func (b *Base) ClonedFrom() (uuid.UUID, bool) { return b.clonedFrom, b.cloned }

// Predicate returns the where node with the given id. The id index is built
// on first use and reused afterwards.
func (b *Base) Predicate(id pred.ID) pred.Node {
	if b.index == nil && b.where != nil {
		b.index = pred.BuildIndex(b.where)
	}
	if b.index != nil {
		if n, ok := b.index.Lookup(id); ok {
			return n
		}
	}
	panic(newUnknownPredicateError(b.handle, id, b.where != nil))
}

// assertNotClone is the binding step shared by every statement type.
// Statement types call it before binding their own parameters; it panics
// with a *ContractError when the receiver is a clone.
func (b *Base) assertNotClone() {
	if b.cloned {
		panic(newBindOnCloneError(b.handle, b.clonedFrom))
	}
}

// BindValuesInSearchCondition binds values into every value predicate of
// the where tree, in pre-order. A parameter index without a value fails
// with pred.ErrBindOutOfRange; predicates bound before the failure keep
// their new values.
func (b *Base) BindValuesInSearchCondition(values []ir.Value) error {
	for _, vp := range pred.ValuePredicates(b.where) {
		if err := vp.Bind(values); err != nil {
			return err
		}
	}
	return nil
}

// cloneBase copies source's where tree into b and records source as the
// clone origin. b's index stays unbuilt.
func (b *Base) cloneBase(source *Base) {
	if source.where != nil {
		b.where = source.where.Copy()
	}
	b.index = nil
	b.clonedFrom = source.handle
	b.cloned = true
}

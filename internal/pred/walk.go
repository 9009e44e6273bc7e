package pred

import (
	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/schema"
)

// ValuePredicates returns the value predicates of the tree in pre-order.
func ValuePredicates(root Node) []*ValuePredicate {
	var out []*ValuePredicate
	if root == nil {
		return out
	}
	root.Traverse(func(n Node) {
		if vp, ok := n.(*ValuePredicate); ok {
			out = append(out, vp)
		}
	})
	return out
}

// Columns returns every column referenced by the tree.
func Columns(root Node) *schema.ColumnSet {
	cols := schema.NewColumnSet()
	if root == nil {
		return cols
	}
	root.Traverse(func(n Node) {
		switch p := n.(type) {
		case *ValuePredicate:
			cols.Add(p.Column())
		case *JoinPredicate:
			cols.Add(p.Left())
			cols.Add(p.Right())
		}
	})
	return cols
}

// JoinColumns returns the columns referenced by join predicates only.
func JoinColumns(root Node) *schema.ColumnSet {
	cols := schema.NewColumnSet()
	if root == nil {
		return cols
	}
	root.Traverse(func(n Node) {
		if p, ok := n.(*JoinPredicate); ok {
			cols.Add(p.Left())
			cols.Add(p.Right())
		}
	})
	return cols
}

// Tables returns every table referenced by the tree.
func Tables(root Node) schema.TableSet {
	var tables schema.TableSet
	for _, c := range Columns(root).Values() {
		tables.Add(c.Table())
	}
	return tables
}

// Describe renders the tree as plain maps for canonical JSON snapshots.
// Bound values are included; use Fingerprint for a value-independent key.
func Describe(root Node) map[string]any {
	return describe(root, true)
}

// Fingerprint hashes the tree's structure: operators, columns, literals
// and parameter positions. Ids and values bound to parameters are excluded,
// so a template, its bound clones and any structurally identical tree share
// a fingerprint.
func Fingerprint(root Node) (string, error) {
	if root == nil {
		return ir.ContentHash(ir.DomainPredicate, map[string]any{})
	}
	return ir.ContentHash(ir.DomainPredicate, describe(root, false))
}

func describe(n Node, snapshot bool) map[string]any {
	out := map[string]any{}
	if snapshot {
		out["id"] = int64(n.ID())
	}
	switch p := n.(type) {
	case *ValuePredicate:
		out["column"] = schema.QualifiedName(p.Column())
		out["op"] = string(p.Operator())
		operand := p.Operand()
		if idx, ok := operand.Index(); ok {
			out["param"] = idx
			if v, bound := operand.Value(); bound && snapshot {
				out["value"] = v
			}
		} else {
			v, _ := operand.Value()
			out["value"] = v
		}
	case *JoinPredicate:
		out["left"] = schema.QualifiedName(p.Left())
		out["right"] = schema.QualifiedName(p.Right())
		out["op"] = string(p.Operator())
	case *CombinedPredicate:
		out["op"] = string(p.Operator())
		children := make([]any, len(p.Children()))
		for i, child := range p.Children() {
			children[i] = describe(child, snapshot)
		}
		out["children"] = children
	}
	return out
}

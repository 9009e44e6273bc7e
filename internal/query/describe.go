package query

import (
	"fmt"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/schema"
)

// Describe renders ctx as plain maps for canonical JSON output and golden
// snapshots. Handles are omitted so snapshots are stable across runs.
func Describe(ctx Context) map[string]any {
	out := map[string]any{
		"kind":  ctx.Kind(),
		"scope": ctx.Scope().Names(),
	}
	if where := ctx.Where(); where != nil {
		out["where"] = pred.Describe(where)
	}
	_, cloned := ctx.ClonedFrom()
	out["cloned"] = cloned

	switch c := ctx.(type) {
	case *Select:
		out["from"] = c.from.Names()
		if len(c.columns) > 0 {
			out["columns"] = columnNames(c.columns)
		}
		if len(c.orderBy) > 0 {
			orders := make([]any, len(c.orderBy))
			for n, o := range c.orderBy {
				dir := "asc"
				if o.Descending {
					dir = "desc"
				}
				orders[n] = map[string]any{"column": schema.QualifiedName(o.Column), "dir": dir}
			}
			out["orderBy"] = orders
		}
		if c.limit != nil {
			out["limit"] = describeOperand(*c.limit)
		}
		if c.skip != nil {
			out["skip"] = describeOperand(*c.skip)
		}
	case *Insert:
		out["into"] = c.into.Name()
		out["replace"] = c.replace
		if idx, ok := c.RowsParam(); ok {
			out["rowsParam"] = idx
		}
		rows := make([]any, len(c.rows))
		for n, row := range c.rows {
			rows[n] = row
		}
		out["rows"] = rows
	case *Update:
		out["table"] = c.table.Name()
		set := make([]any, len(c.set))
		for n, a := range c.set {
			term := describeOperand(a.Value)
			term["column"] = schema.QualifiedName(a.Column)
			set[n] = term
		}
		out["set"] = set
	case *Delete:
		out["from"] = c.from.Name()
	}
	return out
}

func describeOperand(o pred.Operand) map[string]any {
	out := map[string]any{}
	if idx, ok := o.Index(); ok {
		out["param"] = idx
	}
	if v, ok := o.Value(); ok {
		out["value"] = v
	}
	return out
}

func columnNames(columns []schema.Column) []string {
	names := make([]string, len(columns))
	for n, c := range columns {
		names[n] = schema.QualifiedName(c)
	}
	return names
}

// Fingerprint returns a key for caching work derived from ctx's shape: the
// statement kind, its scope and the structure of its where clause. Bound
// values and handles do not contribute, so a template and all of its
// clones share a fingerprint.
func Fingerprint(ctx Context) (string, error) {
	where, err := pred.Fingerprint(ctx.Where())
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", ctx.Kind(), err)
	}
	return ir.ContentHash(ir.DomainPlan, map[string]any{
		"kind":  ctx.Kind(),
		"scope": ir.ScopeHash(ctx.Scope().Names()),
		"where": where,
	})
}

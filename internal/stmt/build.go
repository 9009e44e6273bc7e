package stmt

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/query"
	"github.com/roach88/qscope/internal/schema"
)

// builder resolves names against a view and collects every resolution
// failure instead of stopping at the first.
type builder struct {
	view  schema.View
	preds *pred.Builder
	errs  *multierror.Error
}

// Build creates a context for st over view. Predicate ids come from ids;
// a nil ids uses a fresh counter. All name and shape errors in st are
// reported together.
func Build(view schema.View, st *Statement, ids pred.IDSource) (query.Context, error) {
	if ids == nil {
		ids = pred.NewCounter()
	}
	b := &builder{view: view, preds: pred.NewBuilderWithSource(ids)}

	var ctx query.Context
	switch st.Kind {
	case KindSelect:
		ctx = b.buildSelect(st)
	case KindInsert:
		ctx = b.buildInsert(st)
	case KindUpdate:
		ctx = b.buildUpdate(st)
	case KindDelete:
		if t := b.table(st.Table); t != nil {
			ctx = query.NewDelete(view, t)
		}
	case "":
		b.fail("kind is required")
	default:
		b.fail("unknown kind %q", st.Kind)
	}

	if st.Where != nil {
		where := b.node(*st.Where, "where")
		if w, ok := ctx.(interface{ SetWhere(pred.Node) }); ok && where != nil {
			w.SetWhere(where)
		}
	}

	if err := b.errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("build %s statement: %w", st.Kind, err)
	}
	return ctx, nil
}

func (b *builder) fail(format string, args ...any) {
	b.errs = multierror.Append(b.errs, fmt.Errorf(format, args...))
}

func (b *builder) buildSelect(st *Statement) query.Context {
	if len(st.From) == 0 {
		b.fail("select requires from")
	}
	var from []schema.Table
	for _, name := range st.From {
		if t := b.table(name); t != nil {
			from = append(from, t)
		}
	}
	q := query.NewSelect(b.view, from...)

	var columns []schema.Column
	for _, name := range st.Columns {
		if c := b.column(name); c != nil {
			columns = append(columns, c)
		}
	}
	q.Project(columns...)

	for _, o := range st.OrderBy {
		if c := b.column(o.Column); c != nil {
			q.OrderBy(c, o.Desc)
		}
	}
	if st.Limit != nil {
		if op, ok := b.operand(*st.Limit, "limit"); ok {
			q.SetLimit(op)
		}
	}
	if st.Skip != nil {
		if op, ok := b.operand(*st.Skip, "skip"); ok {
			q.SetSkip(op)
		}
	}
	return q
}

func (b *builder) buildInsert(st *Statement) query.Context {
	t := b.table(st.Table)
	if t == nil {
		return nil
	}
	q := query.NewInsert(b.view, t)
	if st.Replace {
		q = query.NewInsertOrReplace(b.view, t)
	}

	switch {
	case st.RowsParam != nil && len(st.Rows) > 0:
		b.fail("insert takes rows or rows_param, not both")
	case st.RowsParam != nil:
		q.ValuesParam(*st.RowsParam)
	default:
		rows := make([]ir.Object, 0, len(st.Rows))
		for i, raw := range st.Rows {
			v, err := ir.FromAny(map[string]any(raw))
			if err != nil {
				b.fail("rows[%d]: %v", i, err)
				continue
			}
			rows = append(rows, v.(ir.Object))
		}
		q.Values(rows...)
	}
	return q
}

func (b *builder) buildUpdate(st *Statement) query.Context {
	t := b.table(st.Table)
	if t == nil {
		return nil
	}
	q := query.NewUpdate(b.view, t)
	for i, a := range st.Set {
		c := b.column(a.Column)
		op, ok := b.operand(a.Operand, fmt.Sprintf("set[%d]", i))
		if c != nil && ok {
			q.Set(c, op)
		}
	}
	return q
}

func (b *builder) node(n Node, path string) pred.Node {
	forms := 0
	if n.And != nil {
		forms++
	}
	if n.Or != nil {
		forms++
	}
	if n.Left != "" || n.Right != "" {
		forms++
	}
	if n.Column != "" {
		forms++
	}
	if forms != 1 {
		b.fail("%s: node must have exactly one of and, or, left/right, column", path)
		return nil
	}

	switch {
	case n.And != nil, n.Or != nil:
		logical, list := pred.And, n.And
		if n.Or != nil {
			logical, list = pred.Or, n.Or
		}
		children := make([]pred.Node, 0, len(list))
		for i, child := range list {
			if c := b.node(child, fmt.Sprintf("%s.%s[%d]", path, logical, i)); c != nil {
				children = append(children, c)
			}
		}
		return b.preds.Combine(logical, children...)

	case n.Left != "" || n.Right != "":
		op := b.operator(n.Op, path)
		left, right := b.column(n.Left), b.column(n.Right)
		if left == nil || right == nil {
			return nil
		}
		return b.preds.Join(left, op, right)

	default:
		op := b.operator(n.Op, path)
		c := b.column(n.Column)
		operand, ok := b.operand(n.Operand, path)
		if c == nil || !ok {
			return nil
		}
		return b.preds.Compare(c, op, operand)
	}
}

func (b *builder) operator(s, path string) pred.Operator {
	if s == "" {
		return pred.OpEq
	}
	op, err := pred.ParseOperator(s)
	if err != nil {
		b.fail("%s: %v", path, err)
		return pred.OpEq
	}
	return op
}

func (b *builder) operand(o Operand, path string) (pred.Operand, bool) {
	hasValue := o.Value.Kind != 0
	switch {
	case o.Param != nil && hasValue:
		b.fail("%s: operand takes param or value, not both", path)
	case o.Param != nil:
		if *o.Param < 0 {
			b.fail("%s: param must be non-negative", path)
			return pred.Operand{}, false
		}
		return pred.Param(*o.Param), true
	case hasValue:
		var raw any
		if err := o.Value.Decode(&raw); err != nil {
			b.fail("%s: value: %v", path, err)
			return pred.Operand{}, false
		}
		v, err := ir.FromAny(raw)
		if err != nil {
			b.fail("%s: value: %v", path, err)
			return pred.Operand{}, false
		}
		return pred.Lit(v), true
	default:
		b.fail("%s: operand requires param or value", path)
	}
	return pred.Operand{}, false
}

func (b *builder) table(name string) schema.Table {
	if name == "" {
		b.fail("table name is required")
		return nil
	}
	t, ok := b.view.Table(name)
	if !ok {
		b.fail("unknown table %q", name)
		return nil
	}
	return t
}

// column resolves "Table.column".
func (b *builder) column(qualified string) schema.Column {
	tableName, columnName, ok := strings.Cut(qualified, ".")
	if !ok || tableName == "" || columnName == "" {
		b.fail("column %q must have the form Table.column", qualified)
		return nil
	}
	t, ok := b.view.Table(tableName)
	if !ok {
		b.fail("unknown table %q in column %q", tableName, qualified)
		return nil
	}
	c := t.Column(columnName)
	if c == nil {
		b.fail("unknown column %q", qualified)
		return nil
	}
	return c
}

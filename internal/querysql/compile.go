// Package querysql compiles query contexts to parameterized SQLite SQL.
package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/query"
	"github.com/roach88/qscope/internal/schema"
)

// ErrUnbound is returned when a parameter has not been bound before
// compilation.
var ErrUnbound = errors.New("parameter is unbound")

// SQLCompiler compiles query contexts to parameterized SQL for SQLite.
//
// Every SELECT ends in an ORDER BY with a primary key tiebreaker so result
// order is deterministic. Values are always passed as parameters, never
// interpolated.
type SQLCompiler struct{}

// NewSQLCompiler creates a new SQLCompiler.
func NewSQLCompiler() *SQLCompiler {
	return &SQLCompiler{}
}

// Compile converts a bound context to SQL.
// Returns (sql, params, error) tuple.
func (c *SQLCompiler) Compile(ctx query.Context) (string, []any, error) {
	if ctx == nil {
		return "", nil, fmt.Errorf("cannot compile nil context")
	}

	switch q := ctx.(type) {
	case *query.Select:
		return c.compileSelect(q)
	case *query.Insert:
		return c.compileInsert(q)
	case *query.Update:
		return c.compileUpdate(q)
	case *query.Delete:
		return c.compileDelete(q)
	default:
		return "", nil, fmt.Errorf("unsupported context type: %T", ctx)
	}
}

// CompilePredicate compiles the where node with the given id, looked up
// through ctx. An unknown id is reported as an error rather than a panic.
func (c *SQLCompiler) CompilePredicate(ctx query.Context, id pred.ID) (string, []any, error) {
	var node pred.Node
	if err := query.Guard(func() { node = ctx.Predicate(id) }); err != nil {
		return "", nil, fmt.Errorf("compile predicate %d: %w", id, err)
	}
	return c.compilePredicate(node)
}

func (c *SQLCompiler) compileSelect(q *query.Select) (string, []any, error) {
	from := q.From()
	if from.Len() == 0 {
		return "", nil, fmt.Errorf("select has no source table")
	}

	var sb strings.Builder
	var params []any

	sb.WriteString("SELECT ")
	sb.WriteString(c.compileProjection(q.Columns()))

	tables := make([]string, from.Len())
	for i, t := range from.Values() {
		tables[i] = quoteIdent(t.Name())
	}
	sb.WriteString(" FROM ")
	sb.WriteString(strings.Join(tables, ", "))

	if where := q.Where(); where != nil {
		whereSQL, whereParams, err := c.compilePredicate(where)
		if err != nil {
			return "", nil, fmt.Errorf("compile where: %w", err)
		}
		sb.WriteString(" WHERE ")
		sb.WriteString(whereSQL)
		params = append(params, whereParams...)
	}

	sb.WriteString(" ORDER BY ")
	sb.WriteString(c.stableOrderKey(q))

	limit, hasLimit := q.Limit()
	skip, hasSkip := q.Skip()
	if hasLimit || hasSkip {
		limitParam := any(int64(-1))
		if hasLimit {
			v, err := countParam("limit", limit)
			if err != nil {
				return "", nil, err
			}
			limitParam = v
		}
		sb.WriteString(" LIMIT ?")
		params = append(params, limitParam)

		if hasSkip {
			v, err := countParam("skip", skip)
			if err != nil {
				return "", nil, err
			}
			sb.WriteString(" OFFSET ?")
			params = append(params, v)
		}
	}

	return sb.String(), params, nil
}

// compileProjection renders the SELECT column list. No columns means "*".
func (c *SQLCompiler) compileProjection(columns []schema.Column) string {
	if len(columns) == 0 {
		return "*"
	}
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = qualified(col)
	}
	return strings.Join(parts, ", ")
}

// stableOrderKey returns the ORDER BY terms: the explicit orderings first,
// then the primary key of every source table as a tiebreaker (rowid for
// tables without one). COLLATE BINARY keeps text ordering identical across
// SQLite builds.
func (c *SQLCompiler) stableOrderKey(q *query.Select) string {
	var terms []string
	seen := make(map[string]bool)

	add := func(term string, descending bool) {
		if seen[term] {
			return
		}
		seen[term] = true
		dir := "ASC"
		if descending {
			dir = "DESC"
		}
		terms = append(terms, term+" "+dir+" COLLATE BINARY")
	}

	for _, o := range q.Orders() {
		add(qualified(o.Column), o.Descending)
	}
	for _, t := range q.From().Values() {
		pk := t.Constraint().PrimaryKey()
		if len(pk) == 0 {
			add(quoteIdent(t.Name())+".rowid", false)
			continue
		}
		for _, col := range pk {
			add(qualified(col), false)
		}
	}

	return strings.Join(terms, ", ")
}

func (c *SQLCompiler) compileInsert(q *query.Insert) (string, []any, error) {
	rows := q.Rows()
	if len(rows) == 0 {
		if idx, ok := q.RowsParam(); ok {
			return "", nil, fmt.Errorf("insert rows: %w: parameter %d", ErrUnbound, idx)
		}
		return "", nil, fmt.Errorf("insert into %s has no rows", q.Into().Name())
	}

	table := q.Into()
	used := make(map[string]bool)
	for i, row := range rows {
		for key := range row {
			if table.Column(key) == nil {
				return "", nil, fmt.Errorf("insert row %d: unknown column %s.%s", i, table.Name(), key)
			}
			used[key] = true
		}
	}

	// Declaration order keeps the column list stable regardless of map
	// iteration order.
	var columns []string
	for _, col := range table.Columns() {
		if used[col.Name()] {
			columns = append(columns, col.Name())
		}
	}

	quoted := make([]string, len(columns))
	placeholders := make([]string, len(columns))
	for i, name := range columns {
		quoted[i] = quoteIdent(name)
		placeholders[i] = "?"
	}
	tuple := "(" + strings.Join(placeholders, ", ") + ")"

	var params []any
	tuples := make([]string, len(rows))
	for i, row := range rows {
		for _, name := range columns {
			v, ok := row[name]
			if !ok {
				params = append(params, nil)
				continue
			}
			p, err := ir.ToNative(v)
			if err != nil {
				return "", nil, fmt.Errorf("insert row %d column %s: %w", i, name, err)
			}
			params = append(params, p)
		}
		tuples[i] = tuple
	}

	verb := "INSERT"
	if q.Replace() {
		verb = "INSERT OR REPLACE"
	}
	sql := fmt.Sprintf("%s INTO %s (%s) VALUES %s",
		verb,
		quoteIdent(table.Name()),
		strings.Join(quoted, ", "),
		strings.Join(tuples, ", "))

	return sql, params, nil
}

func (c *SQLCompiler) compileUpdate(q *query.Update) (string, []any, error) {
	set := q.Assignments()
	if len(set) == 0 {
		return "", nil, fmt.Errorf("update of %s has no assignments", q.Table().Name())
	}

	var params []any
	parts := make([]string, len(set))
	for i, a := range set {
		p, err := operandParam(schema.QualifiedName(a.Column), a.Value)
		if err != nil {
			return "", nil, fmt.Errorf("compile set: %w", err)
		}
		parts[i] = quoteIdent(a.Column.Name()) + " = ?"
		params = append(params, p)
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", quoteIdent(q.Table().Name()), strings.Join(parts, ", "))

	if where := q.Where(); where != nil {
		whereSQL, whereParams, err := c.compilePredicate(where)
		if err != nil {
			return "", nil, fmt.Errorf("compile where: %w", err)
		}
		sql += " WHERE " + whereSQL
		params = append(params, whereParams...)
	}

	return sql, params, nil
}

func (c *SQLCompiler) compileDelete(q *query.Delete) (string, []any, error) {
	sql := "DELETE FROM " + quoteIdent(q.From().Name())
	where := q.Where()
	if where == nil {
		return sql, nil, nil
	}

	whereSQL, params, err := c.compilePredicate(where)
	if err != nil {
		return "", nil, fmt.Errorf("compile where: %w", err)
	}
	return sql + " WHERE " + whereSQL, params, nil
}

// compilePredicate compiles a predicate node to a WHERE clause fragment.
// Returns (sql, params, error).
func (c *SQLCompiler) compilePredicate(n pred.Node) (string, []any, error) {
	if n == nil {
		return "1 = 1", nil, nil // Always true
	}

	switch p := n.(type) {
	case *pred.ValuePredicate:
		return c.compileValue(p)
	case *pred.JoinPredicate:
		return fmt.Sprintf("%s %s %s", qualified(p.Left()), p.Operator().Symbol(), qualified(p.Right())), nil, nil
	case *pred.CombinedPredicate:
		return c.compileCombined(p)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", n)
	}
}

// compileValue compiles "column <op> ?". Null comparisons become IS NULL /
// IS NOT NULL and IN expands to one placeholder per list element.
func (c *SQLCompiler) compileValue(p *pred.ValuePredicate) (string, []any, error) {
	col := qualified(p.Column())
	v, ok := p.Value()
	if !ok {
		idx, _ := p.Operand().Index()
		return "", nil, fmt.Errorf("%s: %w: parameter %d", schema.QualifiedName(p.Column()), ErrUnbound, idx)
	}

	if _, isNull := v.(ir.Null); isNull {
		switch p.Operator() {
		case pred.OpEq:
			return col + " IS NULL", nil, nil
		case pred.OpNe:
			return col + " IS NOT NULL", nil, nil
		default:
			return "", nil, fmt.Errorf("%s: operator %s cannot compare with null", schema.QualifiedName(p.Column()), p.Operator())
		}
	}

	if p.Operator() == pred.OpIn {
		list, ok := v.(ir.List)
		if !ok {
			return "", nil, fmt.Errorf("%s: IN requires list, got %s", schema.QualifiedName(p.Column()), ir.Kind(v))
		}
		if len(list) == 0 {
			return "0 = 1", nil, nil // Empty IN matches nothing
		}
		placeholders := make([]string, len(list))
		params := make([]any, len(list))
		for i, item := range list {
			param, err := ir.ToNative(item)
			if err != nil {
				return "", nil, fmt.Errorf("%s: element %d: %w", schema.QualifiedName(p.Column()), i, err)
			}
			placeholders[i] = "?"
			params[i] = param
		}
		return fmt.Sprintf("%s IN (%s)", col, strings.Join(placeholders, ", ")), params, nil
	}

	param, err := ir.ToNative(v)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", schema.QualifiedName(p.Column()), err)
	}
	return fmt.Sprintf("%s %s ?", col, p.Operator().Symbol()), []any{param}, nil
}

// compileCombined joins children with AND / OR inside parentheses.
func (c *SQLCompiler) compileCombined(p *pred.CombinedPredicate) (string, []any, error) {
	children := p.Children()
	if len(children) == 0 {
		if p.Operator() == pred.Or {
			return "1 = 0", nil, nil // Empty disjunction
		}
		return "1 = 1", nil, nil // Always true (vacuous truth)
	}

	var sqlParts []string
	var allParams []any
	for _, child := range children {
		sql, params, err := c.compilePredicate(child)
		if err != nil {
			return "", nil, err
		}
		sqlParts = append(sqlParts, sql)
		allParams = append(allParams, params...)
	}

	sep := " " + strings.ToUpper(string(p.Operator())) + " "
	return "(" + strings.Join(sqlParts, sep) + ")", allParams, nil
}

func operandParam(name string, o pred.Operand) (any, error) {
	v, ok := o.Value()
	if !ok {
		idx, _ := o.Index()
		return nil, fmt.Errorf("%s: %w: parameter %d", name, ErrUnbound, idx)
	}
	p, err := ir.ToNative(v)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

func countParam(name string, o pred.Operand) (any, error) {
	p, err := operandParam(name, o)
	if err != nil {
		return nil, err
	}
	n, ok := p.(int64)
	if !ok || n < 0 {
		return nil, fmt.Errorf("%s: want non-negative int, got %v", name, p)
	}
	return n, nil
}

// quoteIdent quotes an SQLite identifier.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func qualified(col schema.Column) string {
	return quoteIdent(col.Table().Name()) + "." + quoteIdent(col.Name())
}

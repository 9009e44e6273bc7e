package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/query"
	"github.com/roach88/qscope/internal/querysql"
)

// SQLOptions holds flags for the sql command.
type SQLOptions struct {
	*RootOptions
	Catalog   CatalogOptions
	Bind      string // JSON array of parameter values
	Predicate int64  // compile only this predicate node (0 = whole statement)
	Check     bool   // prepare the SQL against the database
}

// SQLResult is the sql command's output.
type SQLResult struct {
	SQL     string `json:"sql"`
	Params  []any  `json:"params"`
	Checked bool   `json:"checked"`
}

// NewSQLCommand creates the sql command.
func NewSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql <statement.yaml>",
		Short: "Compile a statement to SQLite SQL",
		Long: `Build a query context from a statement descriptor, bind parameter values
and compile it to parameterized SQLite SQL.

Parameters are passed as a JSON array with --bind; numbers must be
integers. With --predicate only the where-clause node with that id is
compiled. With --check the SQL is prepared against the database (an
in-memory one created from --schema, or the --sqlite database) but never
executed.

Exit codes:
  0 - SQL compiled (and accepted by SQLite with --check)
  1 - SQLite rejected the SQL (--check)
  2 - Command error (bad schema, statement or bind values)

Examples:
  qscope sql --schema hr.cue stmt.yaml --bind '[2, 10]'
  qscope sql --schema hr.cue stmt.yaml --bind '[2]' --predicate 2
  qscope sql --sqlite app.db stmt.yaml --bind '[2]' --check`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQL(opts, args[0], cmd)
		},
	}

	opts.Catalog.register(cmd)
	cmd.Flags().StringVar(&opts.Bind, "bind", "", "parameter values as a JSON array")
	cmd.Flags().Int64Var(&opts.Predicate, "predicate", 0, "compile only the predicate node with this id")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "prepare the SQL against the database")

	return cmd
}

func runSQL(opts *SQLOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if opts.Check && opts.Predicate != 0 {
		return formatter.Fail(ErrCodeGeneric, "--check cannot be combined with --predicate", nil)
	}

	var values []ir.Value
	if opts.Bind != "" {
		v, err := ir.ParseParams([]byte(opts.Bind))
		if err != nil {
			return formatter.Fail(ErrCodeInvalidBind, err.Error(), nil)
		}
		values = v
	}

	cat, err := LoadCatalog(cmd.Context(), &opts.Catalog)
	if err != nil {
		return loadFailure(formatter, err)
	}
	defer cat.Close()

	ctx, err := buildStatement(cat, path)
	if err != nil {
		return formatter.Fail(ErrCodeInvalidStatement, err.Error(), nil)
	}

	if values != nil {
		if _, err := ctx.Bind(values); err != nil {
			return formatter.Fail(ErrCodeInvalidBind, err.Error(), nil)
		}
		slog.Debug("statement bound", "kind", ctx.Kind(), "values", len(values))
	}

	compiler := querysql.NewSQLCompiler()
	var sql string
	var params []any
	if opts.Predicate != 0 {
		sql, params, err = compiler.CompilePredicate(ctx, pred.ID(opts.Predicate))
		if query.IsUnknownPredicate(err) {
			return formatter.Fail(ErrCodeContract, err.Error(), nil)
		}
	} else {
		sql, params, err = compiler.Compile(ctx)
	}
	if err != nil {
		return formatter.Fail(ErrCodeCompileFailed, err.Error(), nil)
	}
	if params == nil {
		params = []any{}
	}

	result := SQLResult{SQL: sql, Params: params}
	if opts.Check {
		if err := cat.Store.Prepare(cmd.Context(), sql); err != nil {
			_ = formatter.Error(ErrCodeCheckFailed, err.Error(), map[string]any{"sql": sql})
			return WrapExitError(ExitFailure, "SQLite rejected the statement", err)
		}
		result.Checked = true
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintln(w, result.SQL)
	if len(result.Params) > 0 {
		fmt.Fprintf(w, "params: %s\n", renderParams(result.Params))
	}
	if result.Checked {
		fmt.Fprintln(w, "✓ accepted by SQLite")
	}
	return nil
}

// renderParams renders driver values as a canonical JSON array.
func renderParams(params []any) string {
	data, err := ir.MarshalCanonical(params)
	if err != nil {
		return fmt.Sprint(params)
	}
	return string(data)
}

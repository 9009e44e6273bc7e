package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/query"
	"github.com/roach88/qscope/internal/scope"
	"github.com/roach88/qscope/internal/stmt"
)

// ScopeOptions holds flags for the scope command.
type ScopeOptions struct {
	*RootOptions
	Catalog    CatalogOptions
	Transitive bool   // also report the transitive closure
	Direction  string // closure direction: parents | children | both
}

// ScopeResult is the scope command's output.
type ScopeResult struct {
	Kind        string   `json:"kind"`
	Scope       []string `json:"scope"`
	Closure     []string `json:"closure,omitempty"`
	Direction   string   `json:"direction,omitempty"`
	Fingerprint string   `json:"fingerprint"`
}

// NewScopeCommand creates the scope command.
func NewScopeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScopeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scope <statement.yaml>",
		Short: "Report the tables a statement touches",
		Long: `Build a query context from a statement descriptor and report its scope:
the statement's own tables plus the tables one foreign key hop away that
the statement can observe or affect.

With --transitive the closure over repeated hops is reported as well.

Examples:
  qscope scope --schema hr.cue stmt.yaml
  qscope scope --sqlite app.db stmt.yaml --transitive --direction parents
  qscope scope --schema hr.cue stmt.yaml --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScope(opts, args[0], cmd)
		},
	}

	opts.Catalog.register(cmd)
	cmd.Flags().BoolVar(&opts.Transitive, "transitive", false, "also report the transitive closure of the scope")
	cmd.Flags().StringVar(&opts.Direction, "direction", "both", "closure direction (parents|children|both)")

	return cmd
}

func runScope(opts *ScopeOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	dir, err := parseDirection(opts.Direction)
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, err.Error(), nil)
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

	fingerprint, err := query.Fingerprint(ctx)
	if err != nil {
		return formatter.Fail(ErrCodeGeneric, err.Error(), nil)
	}

	tables := ctx.Scope()
	result := ScopeResult{
		Kind:        ctx.Kind(),
		Scope:       tables.Names(),
		Fingerprint: fingerprint,
	}
	if opts.Transitive {
		result.Closure = scope.Closure(cat.View, tables, dir).Names()
		result.Direction = dir.String()
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "%s scope: %s\n", result.Kind, strings.Join(result.Scope, ", "))
	if opts.Transitive {
		fmt.Fprintf(w, "closure (%s): %s\n", result.Direction, strings.Join(result.Closure, ", "))
	}
	if opts.Verbose {
		fmt.Fprintf(w, "fingerprint: %s\n", result.Fingerprint)
	}
	return nil
}

func parseDirection(s string) (scope.Direction, error) {
	for _, d := range []scope.Direction{scope.Parents, scope.Children, scope.Both} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid direction %q: must be one of parents, children, both", s)
}

// buildStatement loads the statement descriptor at path and builds it
// against the catalog's schema.
func buildStatement(cat *Catalog, path string) (query.Context, error) {
	st, err := stmt.Load(path)
	if err != nil {
		return nil, err
	}
	return stmt.Build(cat.View, st, pred.NewCounter())
}

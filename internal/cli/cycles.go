package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/qscope/internal/scope"
)

// CyclesOptions holds flags for the cycles command.
type CyclesOptions struct {
	*RootOptions
	Catalog CatalogOptions
	Strict  bool // fail when a multi-table cycle is found
}

// CyclesResult is the cycles command's output.
type CyclesResult struct {
	Schema   string               `json:"schema"`
	Warnings []scope.CycleWarning `json:"warnings"`
}

// NewCyclesCommand creates the cycles command.
func NewCyclesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CyclesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "cycles",
		Short: "Report foreign key cycles",
		Long: `Analyze the foreign key graph of a schema and report its cycles.

Self-referencing tables are reported as info, cycles through several
tables as warnings. Cycles are legal; with --strict a warning fails the
command (exit code 1).

Examples:
  qscope cycles --schema hr.cue
  qscope cycles --sqlite app.db --strict --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCycles(opts, cmd)
		},
	}

	opts.Catalog.register(cmd)
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when a cycle through several tables is found")

	return cmd
}

func runCycles(opts *CyclesOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	cat, err := LoadCatalog(cmd.Context(), &opts.Catalog)
	if err != nil {
		return loadFailure(formatter, err)
	}
	defer cat.Close()

	result := CyclesResult{
		Schema:   cat.View.Name(),
		Warnings: scope.AnalyzeCycles(cat.View),
	}

	multiTable := 0
	for _, w := range result.Warnings {
		if w.Level == "warning" {
			multiTable++
		}
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		w := formatter.Writer
		if len(result.Warnings) == 0 {
			fmt.Fprintf(w, "✓ No foreign key cycles in %s\n", result.Schema)
		}
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "%s: %s\n", warning.Level, warning.Message)
		}
	}

	if opts.Strict && multiTable > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d foreign key cycle(s) found", multiTable))
	}
	return nil
}

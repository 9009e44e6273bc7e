package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue/token"
	"github.com/spf13/cobra"

	"github.com/roach88/qscope/internal/catalog"
	"github.com/roach88/qscope/internal/schema"
	"github.com/roach88/qscope/internal/store"
)

// Error codes reported by CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeLoadFailed  = "E004" // Schema or statement load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // Schema build failed
	ErrCodeWriteFailed = "E007" // File write error

	ErrCodeInvalidStatement = "E201" // Statement does not resolve against the schema
	ErrCodeInvalidBind      = "E202" // Bind values malformed or of the wrong kind
	ErrCodeCompileFailed    = "E203" // SQL compilation failed
	ErrCodeContract         = "E204" // Context contract violated (unknown predicate id)
	ErrCodeCheckFailed      = "E205" // SQLite rejected the compiled statement
)

// CatalogOptions selects where the schema comes from: a CUE file or an
// existing SQLite database.
type CatalogOptions struct {
	Schema     string // CUE schema file or package directory
	SchemaName string // schema to use when the file declares several
	SQLite     string // SQLite database to introspect
}

// register adds the catalog flags to cmd.
func (o *CatalogOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Schema, "schema", "", "CUE schema file or package directory")
	cmd.Flags().StringVar(&o.SchemaName, "schema-name", "", "schema to use when the CUE file declares several")
	cmd.Flags().StringVar(&o.SQLite, "sqlite", "", "SQLite database to introspect instead of a CUE schema")
	cmd.MarkFlagsMutuallyExclusive("schema", "sqlite")
}

// LoadError represents an error that occurred while loading a schema.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Catalog is a loaded schema and a database holding its tables. For a CUE
// schema the database is in memory and created from the schema; for
// --sqlite it is the introspected database itself.
type Catalog struct {
	View  *schema.Database
	Store *store.Store
}

// Close releases the catalog's database.
func (c *Catalog) Close() error {
	return c.Store.Close()
}

// LoadCatalog loads the schema selected by opts. Errors are *LoadError.
func LoadCatalog(ctx context.Context, opts *CatalogOptions) (*Catalog, error) {
	switch {
	case opts.Schema != "":
		return loadCUECatalog(ctx, opts)
	case opts.SQLite != "":
		return loadSQLiteCatalog(ctx, opts.SQLite)
	default:
		return nil, &LoadError{Code: ErrCodeGeneric, Message: "one of --schema or --sqlite is required"}
	}
}

func loadCUECatalog(ctx context.Context, opts *CatalogOptions) (*Catalog, error) {
	if _, err := os.Stat(opts.Schema); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("schema not found: %s", opts.Schema)}
	}

	loaded, err := catalog.Load(opts.Schema)
	if err != nil {
		loadErr := &LoadError{Code: ErrCodeBuildFailed, Message: err.Error()}
		var compileErr *catalog.CompileError
		if errors.As(err, &compileErr) {
			loadErr.Message = compileErr.Message
			loadErr.Pos = compileErr.Pos
		}
		return nil, loadErr
	}
	view, err := loaded.Lookup(opts.SchemaName)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("failed to open in-memory database: %v", err)}
	}
	if err := st.CreateTables(ctx, view); err != nil {
		st.Close()
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("failed to create tables: %v", err)}
	}

	slog.Debug("catalog loaded", "source", opts.Schema, "schema", view.Name(), "tables", len(view.Tables()))
	return &Catalog{View: view, Store: st}, nil
}

func loadSQLiteCatalog(ctx context.Context, path string) (*Catalog, error) {
	// store.Open would create a missing file.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("database not found: %s", path)}
	}

	st, err := store.Open(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("failed to open database: %v", err)}
	}
	view, err := st.Introspect(ctx)
	if err != nil {
		st.Close()
		return nil, &LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("failed to introspect database: %v", err)}
	}

	slog.Debug("catalog loaded", "source", path, "schema", view.Name(), "tables", len(view.Tables()))
	return &Catalog{View: view, Store: st}, nil
}

// loadFailure reports err through the formatter, keeping the code of a
// *LoadError.
func loadFailure(f *OutputFormatter, err error) error {
	var loadErr *LoadError
	if errors.As(err, &loadErr) {
		var details any
		if loadErr.Pos.IsValid() {
			details = map[string]any{
				"file":   loadErr.Pos.Filename(),
				"line":   loadErr.Pos.Line(),
				"column": loadErr.Pos.Column(),
			}
		}
		return f.Fail(loadErr.Code, loadErr.Message, details)
	}
	return f.Fail(ErrCodeGeneric, err.Error(), nil)
}

package catalog

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"github.com/hashicorp/go-multierror"

	"github.com/roach88/qscope/internal/schema"
)

// CompileSchema parses a CUE value into a schema.Database.
//
// The CUE value should be the schema struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`schema: hr: { table: ... }`)
//	db, err := CompileSchema(v.LookupPath(cue.ParsePath("schema.hr")))
//
// Every table is checked before returning; all failures are reported
// together.
func CompileSchema(v cue.Value) (*schema.Database, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	name := ""
	labels := v.Path().Selectors()
	if len(labels) > 0 {
		name = labels[len(labels)-1].String()
	}

	tablesVal := v.LookupPath(cue.ParsePath("table"))
	if !tablesVal.Exists() {
		return nil, &CompileError{
			Field:   "table",
			Message: "at least one table is required",
			Pos:     v.Pos(),
		}
	}

	iter, err := tablesVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var errs *multierror.Error
	b := schema.NewBuilder(name)
	for iter.Next() {
		if err := compileTable(b, iter.Label(), iter.Value()); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}

	db, err := b.Build()
	if err != nil {
		return nil, &CompileError{
			Field:   "schema",
			Message: err.Error(),
			Pos:     v.Pos(),
		}
	}
	return db, nil
}

// compileTable declares one table on b.
func compileTable(b *schema.Builder, name string, v cue.Value) error {
	tb := b.Table(name)

	columnsVal := v.LookupPath(cue.ParsePath("column"))
	if !columnsVal.Exists() {
		return &CompileError{
			Field:   fmt.Sprintf("table.%s.column", name),
			Message: "table columns are required",
			Pos:     v.Pos(),
		}
	}
	colIter, err := columnsVal.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for colIter.Next() {
		typ, err := extractType(colIter.Value())
		if err != nil {
			return err
		}
		tb.Column(colIter.Label(), typ)
	}

	pkVal := v.LookupPath(cue.ParsePath("primaryKey"))
	if pkVal.Exists() {
		cols, err := stringList(pkVal)
		if err != nil {
			return err
		}
		tb.PrimaryKey(cols...)
	}

	fkVal := v.LookupPath(cue.ParsePath("foreignKey"))
	if fkVal.Exists() {
		fkIter, err := fkVal.Fields()
		if err != nil {
			return formatCUEError(err)
		}
		for fkIter.Next() {
			if err := compileForeignKey(tb, name, fkIter.Label(), fkIter.Value()); err != nil {
				return err
			}
		}
	}

	return nil
}

// compileForeignKey parses {column: "x", references: "Parent.y"}.
func compileForeignKey(tb *schema.TableBuilder, table, name string, v cue.Value) error {
	field := fmt.Sprintf("table.%s.foreignKey.%s", table, name)

	child, err := v.LookupPath(cue.ParsePath("column")).String()
	if err != nil {
		return &CompileError{Field: field, Message: "column must be a string", Pos: v.Pos()}
	}
	refVal := v.LookupPath(cue.ParsePath("references"))
	ref, err := refVal.String()
	if err != nil {
		return &CompileError{Field: field, Message: "references must be a string", Pos: v.Pos()}
	}

	parentTable, parentColumn, ok := strings.Cut(ref, ".")
	if !ok || parentTable == "" || parentColumn == "" {
		return &CompileError{
			Field:   field,
			Message: fmt.Sprintf("references %q must have the form Table.column", ref),
			Pos:     refVal.Pos(),
		}
	}

	tb.ForeignKey(name, child, parentTable, parentColumn)
	return nil
}

func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// extractType converts a CUE type to a column type.
// Floats are forbidden: bind values are integers, strings and booleans.
func extractType(v cue.Value) (schema.Type, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return schema.TypeString, nil
	case cue.IntKind:
		return schema.TypeInt, nil
	case cue.BoolKind:
		return schema.TypeBool, nil
	case cue.BytesKind:
		return schema.TypeBytes, nil
	case cue.ListKind:
		return schema.TypeArray, nil
	case cue.StructKind:
		return schema.TypeObject, nil
	case cue.FloatKind, cue.NumberKind:
		return "", &CompileError{
			Field:   "type",
			Message: "float types are forbidden - use int instead",
			Pos:     v.Pos(),
		}
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// First error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}

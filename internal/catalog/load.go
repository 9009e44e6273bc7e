package catalog

import (
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/qscope/internal/schema"
)

// Result holds the schemas declared by one CUE source, in declaration
// order.
type Result struct {
	Schemas []*schema.Database
}

// Lookup returns the schema with the given name. An empty name selects the
// only schema when exactly one is declared.
func (r *Result) Lookup(name string) (*schema.Database, error) {
	if name == "" {
		if len(r.Schemas) == 1 {
			return r.Schemas[0], nil
		}
		return nil, fmt.Errorf("%d schemas declared; choose one by name", len(r.Schemas))
	}
	for _, db := range r.Schemas {
		if db.Name() == name {
			return db, nil
		}
	}
	return nil, fmt.Errorf("schema %q not declared", name)
}

// Load compiles the schemas at path: a single CUE file, or a directory
// holding one CUE package whose files may import other packages of the
// enclosing module.
func Load(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("schema path: %w", err)
	}
	if info.IsDir() {
		return LoadDir(path)
	}
	return LoadFile(path)
}

// LoadFile reads and compiles a CUE file.
func LoadFile(path string) (*Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	res, err := CompileSource(src, path)
	if err != nil {
		return nil, err
	}
	slog.Debug("schema file loaded", "path", path, "schemas", len(res.Schemas))
	return res, nil
}

// LoadDir loads the CUE package in dir and compiles the schemas it
// declares across all of its files.
func LoadDir(dir string) (*Result, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("no CUE instances loaded from %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}

	value := cuecontext.New().BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	res, err := compileValue(value)
	if err != nil {
		return nil, err
	}
	slog.Debug("schema package loaded", "dir", dir, "files", len(inst.BuildFiles), "schemas", len(res.Schemas))
	return res, nil
}

// CompileSource compiles CUE source text. filename is used in error
// positions only.
func CompileSource(src []byte, filename string) (*Result, error) {
	value := cuecontext.New().CompileBytes(src, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return compileValue(value)
}

// compileValue compiles every schema declared under the top-level
// "schema" field of value.
func compileValue(value cue.Value) (*Result, error) {
	schemasVal := value.LookupPath(cue.ParsePath("schema"))
	if !schemasVal.Exists() {
		return nil, &CompileError{
			Field:   "schema",
			Message: "no schema declared",
			Pos:     value.Pos(),
		}
	}

	iter, err := schemasVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	res := &Result{}
	for iter.Next() {
		db, err := CompileSchema(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", iter.Label(), err)
		}
		res.Schemas = append(res.Schemas, db)
	}
	if len(res.Schemas) == 0 {
		return nil, &CompileError{Field: "schema", Message: "no schema declared", Pos: schemasVal.Pos()}
	}
	return res, nil
}

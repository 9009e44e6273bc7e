package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/stmt"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Schema is the path of the CUE schema file. Relative paths are
	// resolved against the scenario file's directory.
	Schema string `yaml:"schema"`

	// SchemaName selects a schema when the file declares more than one.
	SchemaName string `yaml:"schema_name,omitempty"`

	// Statement describes the template context.
	Statement stmt.Statement `yaml:"statement"`

	// Bind holds the values passed to Bind on the subject context.
	Bind []any `yaml:"bind,omitempty"`

	// Clone makes the subject a clone of the template.
	Clone bool `yaml:"clone,omitempty"`

	// SearchBind holds values bound into the subject's where clause only.
	// Unlike Bind this is permitted on clones.
	SearchBind []any `yaml:"search_bind,omitempty"`

	Expect Expect `yaml:"expect"`
}

// Expect lists the checks applied to a scenario's result. Empty fields are
// not checked.
type Expect struct {
	// Scope is the expected table scope, in order.
	Scope []string `yaml:"scope,omitempty"`

	// SQL is the expected compiled statement.
	SQL string `yaml:"sql,omitempty"`

	// Params are the expected statement parameters.
	Params []any `yaml:"params,omitempty"`

	// Predicates are expected compilations of single where-clause nodes,
	// looked up by id.
	Predicates []PredicateExpect `yaml:"predicates,omitempty"`

	// Error is a substring of the expected failure. When empty the
	// scenario must not fail.
	Error string `yaml:"error,omitempty"`
}

// PredicateExpect is the expected SQL of one predicate node.
type PredicateExpect struct {
	ID  pred.ID `yaml:"id"`
	SQL string  `yaml:"sql"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	scenario, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if scenario.Schema != "" && !filepath.IsAbs(scenario.Schema) {
		scenario.Schema = filepath.Join(filepath.Dir(path), scenario.Schema)
	}

	if err := validateScenario(scenario); err != nil {
		return nil, fmt.Errorf("%s: invalid scenario: %w", path, err)
	}
	return scenario, nil
}

// ParseScenario decodes scenario YAML without validating it or resolving
// the schema path.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &scenario, nil
}

// LoadDir loads every *.yaml scenario in dir, sorted by file name. All
// load failures are reported together.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
	}
	sort.Strings(paths)

	var errs *multierror.Error
	scenarios := make([]*Scenario, 0, len(paths))
	names := make(map[string]string)
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if prev, dup := names[s.Name]; dup {
			errs = multierror.Append(errs, fmt.Errorf("%s: scenario name %q already used by %s", path, s.Name, prev))
			continue
		}
		names[s.Name] = path
		scenarios = append(scenarios, s)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	var errs *multierror.Error
	fail := func(format string, args ...any) {
		errs = multierror.Append(errs, fmt.Errorf(format, args...))
	}

	if s.Name == "" {
		fail("name is required")
	}
	if s.Description == "" {
		fail("description is required")
	}
	if s.Schema == "" {
		fail("schema is required")
	} else if _, err := os.Stat(s.Schema); os.IsNotExist(err) {
		fail("schema file not found: %s", s.Schema)
	}
	if s.Statement.Kind == "" {
		fail("statement.kind is required")
	}

	e := s.Expect
	if e.Scope == nil && e.SQL == "" && e.Params == nil && len(e.Predicates) == 0 && e.Error == "" {
		fail("expect must check at least one of scope, sql, params, predicates, error")
	}
	if e.Error != "" && (e.SQL != "" || e.Params != nil) {
		fail("expect: error cannot be combined with sql or params")
	}
	for i, p := range e.Predicates {
		if p.ID <= 0 {
			fail("expect.predicates[%d]: id must be positive", i)
		}
	}

	return errs.ErrorOrNil()
}

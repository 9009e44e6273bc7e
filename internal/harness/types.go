package harness

import (
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/query"
)

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expectation holds.
	Pass bool `json:"pass"`

	// Context is the subject context after binding. Nil when the
	// statement could not be built.
	Context query.Context `json:"-"`

	// Scope is the subject's table scope.
	Scope []string `json:"scope,omitempty"`

	// SQL and Params are the compiled subject. Empty when compilation
	// was not reached or failed.
	SQL    string `json:"sql,omitempty"`
	Params []any  `json:"params,omitempty"`

	// Predicates holds the SQL of each predicate node the scenario
	// expectations name, or the failure text when the lookup failed.
	Predicates map[pred.ID]string `json:"predicates,omitempty"`

	// Error is the first failure while building, binding or compiling
	// the subject.
	Error string `json:"error,omitempty"`

	// Errors contains failed expectation messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:       true,
		Errors:     []string{},
		Predicates: make(map[pred.ID]string),
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

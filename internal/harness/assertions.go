package harness

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/roach88/qscope/internal/ir"
)

// AssertionError is returned when an expectation fails.
type AssertionError struct {
	Field    string // Expectation that failed
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	return fmt.Sprintf("expect.%s: expected %s, got %s", e.Field, e.Expected, e.Actual)
}

// CheckExpectations compares a result against expect and returns one
// error per failed check.
func CheckExpectations(result *Result, expect Expect) []error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(checkError(result.Error, expect.Error))
	if expect.Scope != nil {
		add(checkScope(result.Scope, expect.Scope))
	}
	if expect.SQL != "" && result.SQL != expect.SQL {
		add(&AssertionError{Field: "sql", Expected: quote(expect.SQL), Actual: quote(result.SQL)})
	}
	if expect.Params != nil {
		add(checkParams(result.Params, expect.Params))
	}
	for _, p := range expect.Predicates {
		got, ok := result.Predicates[p.ID]
		if !ok {
			got = "no compilation"
		}
		if got != p.SQL {
			add(&AssertionError{
				Field:    fmt.Sprintf("predicates[%d]", p.ID),
				Expected: quote(p.SQL),
				Actual:   quote(got),
			})
		}
	}
	return errs
}

func checkError(actual, expected string) error {
	switch {
	case expected == "" && actual != "":
		return &AssertionError{Field: "error", Expected: "no error", Actual: quote(actual)}
	case expected != "" && actual == "":
		return &AssertionError{Field: "error", Expected: fmt.Sprintf("error containing %q", expected), Actual: "no error"}
	case expected != "" && !strings.Contains(actual, expected):
		return &AssertionError{Field: "error", Expected: fmt.Sprintf("error containing %q", expected), Actual: quote(actual)}
	}
	return nil
}

// checkScope compares scopes in order: scope insertion order is
// deterministic.
func checkScope(actual, expected []string) error {
	if slices.Equal(actual, expected) {
		return nil
	}
	return &AssertionError{
		Field:    "scope",
		Expected: fmt.Sprintf("%v", expected),
		Actual:   fmt.Sprintf("%v", actual),
	}
}

// checkParams normalizes the expected YAML values to driver values before
// comparing, so `3` in a scenario matches int64(3) from the compiler.
func checkParams(actual, expected []any) error {
	want := make([]any, len(expected))
	for i, raw := range expected {
		v, err := ir.FromAny(raw)
		if err != nil {
			return fmt.Errorf("expect.params[%d]: %w", i, err)
		}
		native, err := ir.ToNative(v)
		if err != nil {
			return fmt.Errorf("expect.params[%d]: %w", i, err)
		}
		want[i] = native
	}

	mismatch := len(actual) != len(want)
	for i := 0; !mismatch && i < len(want); i++ {
		mismatch = !reflect.DeepEqual(actual[i], want[i])
	}
	if !mismatch {
		return nil
	}
	return &AssertionError{
		Field:    "params",
		Expected: fmt.Sprintf("%v", want),
		Actual:   fmt.Sprintf("%v", actual),
	}
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}

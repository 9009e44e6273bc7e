package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/query"
)

// Snapshot renders a result as a map for canonical JSON serialization.
// Only deterministic parts are included: the described subject context,
// the compiled SQL and parameters, and the failure text.
func Snapshot(name string, result *Result) map[string]any {
	out := map[string]any{
		"scenario_name": name,
	}
	if result.Context != nil {
		out["context"] = query.Describe(result.Context)
	}
	if result.SQL != "" {
		params := make([]any, len(result.Params))
		copy(params, result.Params)
		out["sql"] = result.SQL
		out["params"] = params
	}
	if result.Error != "" {
		out["error"] = result.Error
	}
	return out
}

// RunWithGolden executes a scenario and compares its snapshot against a
// golden file stored in testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can check expectations as well; test
// failure (via goldie) occurs if the snapshot doesn't match.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares a result's snapshot against a golden file without
// re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	data, err := ir.MarshalCanonical(Snapshot(name, result))
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
	return nil
}

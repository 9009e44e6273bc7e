package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/qscope/internal/catalog"
	"github.com/roach88/qscope/internal/ir"
	"github.com/roach88/qscope/internal/pred"
	"github.com/roach88/qscope/internal/query"
	"github.com/roach88/qscope/internal/querysql"
	"github.com/roach88/qscope/internal/schema"
	"github.com/roach88/qscope/internal/stmt"
	"github.com/roach88/qscope/internal/store"
)

// Harness executes one scenario against a schema and its database.
type Harness struct {
	view     *schema.Database
	store    *store.Store
	compiler *querysql.SQLCompiler
	logger   *slog.Logger
}

// Run executes a test scenario with logging suppressed.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. The
// returned error reports problems with the scenario's environment (schema
// loading, database setup); failures of the statement itself are recorded
// in the result and checked against the scenario's expectations.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	loaded, err := catalog.Load(scenario.Schema)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	view, err := loaded.Lookup(scenario.SchemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}

	st, err := store.Open(store.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	if err := st.CreateTables(ctx, view); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	h := &Harness{
		view:     view,
		store:    st,
		compiler: querysql.NewSQLCompiler(),
		logger:   logger.With("scenario", scenario.Name),
	}

	result := NewResult()
	h.execute(ctx, scenario, result)

	for _, err := range CheckExpectations(result, scenario.Expect) {
		result.AddError(err.Error())
	}

	h.logger.Debug("scenario finished", "pass", result.Pass, "errors", len(result.Errors))
	return result, nil
}

// execute builds, binds and compiles the scenario's subject context. The
// first failure is stored in result.Error and ends execution.
func (h *Harness) execute(ctx context.Context, s *Scenario, result *Result) {
	template, err := stmt.Build(h.view, &s.Statement, pred.NewCounter())
	if err != nil {
		result.Error = errorText(err)
		return
	}

	subject := template
	if s.Clone {
		subject = template.Clone()
	}
	result.Context = subject
	result.Scope = subject.Scope().Names()

	if s.Bind != nil {
		values, err := toValues("bind", s.Bind)
		if err != nil {
			result.Error = err.Error()
			return
		}
		var bindErr error
		if err := query.Guard(func() { _, bindErr = subject.Bind(values) }); err != nil {
			result.Error = errorText(err)
			return
		}
		if bindErr != nil {
			result.Error = errorText(bindErr)
			return
		}
		h.logger.Debug("context bound", "values", len(values))
	}

	if s.SearchBind != nil {
		values, err := toValues("search_bind", s.SearchBind)
		if err != nil {
			result.Error = err.Error()
			return
		}
		if err := subject.BindValuesInSearchCondition(values); err != nil {
			result.Error = errorText(err)
			return
		}
	}

	if s.Clone {
		h.checkSharedFingerprint(template, subject, result)
	}

	for _, p := range s.Expect.Predicates {
		sql, _, err := h.compiler.CompilePredicate(subject, p.ID)
		if err != nil {
			sql = errorText(err)
		}
		result.Predicates[p.ID] = sql
	}

	sql, params, err := h.compiler.Compile(subject)
	if err != nil {
		result.Error = errorText(err)
		return
	}
	result.SQL, result.Params = sql, params
	h.logger.Debug("statement compiled", "sql", sql, "params", len(params))

	if err := h.store.Prepare(ctx, sql); err != nil {
		result.AddError(fmt.Sprintf("compiled SQL rejected by SQLite: %v", err))
	}
}

// checkSharedFingerprint records a failure when a clone's fingerprint
// differs from its template's.
func (h *Harness) checkSharedFingerprint(template, clone query.Context, result *Result) {
	want, err := query.Fingerprint(template)
	if err != nil {
		result.AddError(fmt.Sprintf("fingerprint template: %v", err))
		return
	}
	got, err := query.Fingerprint(clone)
	if err != nil {
		result.AddError(fmt.Sprintf("fingerprint clone: %v", err))
		return
	}
	if got != want {
		result.AddError(fmt.Sprintf("clone fingerprint %s differs from template %s", got, want))
	}
}

// toValues converts YAML-decoded values to IR values.
func toValues(field string, raw []any) ([]ir.Value, error) {
	values := make([]ir.Value, len(raw))
	for i, v := range raw {
		val, err := ir.FromAny(v)
		if err != nil {
			return nil, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		values[i] = val
	}
	return values, nil
}

// errorText renders err for results and snapshots. Contract violations are
// reduced to their code since their messages carry context handles.
func errorText(err error) string {
	var ce *query.ContractError
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	return err.Error()
}

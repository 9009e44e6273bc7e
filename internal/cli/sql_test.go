package cli

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qscope/internal/store"
	"github.com/roach88/qscope/internal/testutil"
)

const employeesSQL = `SELECT * FROM "Employee" WHERE ("Employee"."departmentId" = ? AND "Employee"."jobId" IN (?, ?))` +
	` ORDER BY "Employee"."id" ASC COLLATE BINARY LIMIT ?`

func TestSQLCommand_Text(t *testing.T) {
	out, err := execute(t, "sql", "--schema", testdata("hr.cue"),
		testdata("employees_by_department.yaml"), "--bind", "[3, 10]")
	require.NoError(t, err)
	assert.Equal(t, employeesSQL+"\nparams: [3,1,2,10]\n", out)
}

func TestSQLCommand_Check(t *testing.T) {
	out, err := execute(t, "sql", "--schema", testdata("hr.cue"),
		testdata("employees_by_department.yaml"), "--bind", "[3, 10]", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ accepted by SQLite")
}

func TestSQLCommand_JSON(t *testing.T) {
	out, err := execute(t, "sql", "--schema", testdata("hr.cue"),
		testdata("employees_by_department.yaml"), "--bind", "[3, 10]", "--format", "json")
	require.NoError(t, err)

	var resp struct {
		Status string `json:"status"`
		Data   struct {
			SQL     string `json:"sql"`
			Params  []any  `json:"params"`
			Checked bool   `json:"checked"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, employeesSQL, resp.Data.SQL)
	assert.Equal(t, []any{3.0, 1.0, 2.0, 10.0}, resp.Data.Params)
	assert.False(t, resp.Data.Checked)
}

func TestSQLCommand_Predicate(t *testing.T) {
	out, err := execute(t, "sql", "--schema", testdata("hr.cue"),
		testdata("employees_by_department.yaml"), "--bind", "[3, 10]", "--predicate", "2")
	require.NoError(t, err)
	assert.Equal(t, "\"Employee\".\"jobId\" IN (?, ?)\nparams: [1,2]\n", out)
}

func TestSQLCommand_UnknownPredicate(t *testing.T) {
	out, err := execute(t, "sql", "--schema", testdata("hr.cue"),
		testdata("employees_by_department.yaml"), "--bind", "[3, 10]", "--predicate", "9")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E204]")
	assert.Contains(t, out, "UNKNOWN_PREDICATE")
}

func TestSQLCommand_Unbound(t *testing.T) {
	out, err := execute(t, "sql", "--schema", testdata("hr.cue"), testdata("employees_by_department.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "Error [E203]")
	assert.Contains(t, out, "parameter is unbound")
}

func TestSQLCommand_InvalidBind(t *testing.T) {
	testCases := []struct {
		name string
		bind string
		want string
	}{
		{name: "float", bind: "[1.5, 10]", want: "floats are not supported"},
		{name: "not an array", bind: `{"a": 1}`, want: "expected JSON array"},
		{name: "limit not int", bind: `[3, "ten"]`, want: "bind limit"},
		{name: "too few", bind: `[3]`, want: "parameter 1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := execute(t, "sql", "--schema", testdata("hr.cue"),
				testdata("employees_by_department.yaml"), "--bind", tc.bind)
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
			assert.Contains(t, out, "Error [E202]")
			assert.Contains(t, out, tc.want)
		})
	}
}

func TestSQLCommand_CheckWithPredicate(t *testing.T) {
	out, err := execute(t, "sql", "--schema", testdata("hr.cue"),
		testdata("employees_by_department.yaml"), "--predicate", "1", "--check")
	require.Error(t, err)
	assert.Contains(t, out, "--check cannot be combined with --predicate")
}

func TestSQLCommand_SQLiteSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hr.db")
	st, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, st.CreateTables(context.Background(), testutil.HR(t)))
	require.NoError(t, st.Close())

	out, err := execute(t, "sql", "--sqlite", path,
		testdata("employees_by_department.yaml"), "--bind", "[3, 10]", "--check")
	require.NoError(t, err)
	assert.Contains(t, out, employeesSQL)
	assert.Contains(t, out, "✓ accepted by SQLite")
}

func TestSQLCommand_SQLiteMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.db")
	out, err := execute(t, "sql", "--sqlite", path, testdata("employees_by_department.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "Error [E005]")
	assert.NoFileExists(t, path)
}

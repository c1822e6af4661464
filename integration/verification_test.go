//go:build basic

package integration

import (
	"database/sql"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/huangsam/indiscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// verifyTestdata checks the results for the four records shipped in testdata.
func verifyTestdata(t *testing.T, results []schema.IndicatorResult) {
	t.Helper()
	require.Len(t, results, 4)
	got := byID(results)

	revenue := got["revenue"]
	assert.Equal(t, schema.CalculatedState, revenue.State)
	require.NotNil(t, revenue.Result.Score)
	assert.Equal(t, "32.5", revenue.Result.Score.Formatted)

	churn := got["churn"]
	require.NotNil(t, churn.Result.Score)
	assert.InDelta(t, 6.0, churn.Result.Score.Value, 1e-9)

	nps := got["nps"]
	assert.False(t, nps.Result.UsesFormula)
	require.NotNil(t, nps.Result.Ratio)
	assert.Equal(t, "100.00", nps.Result.Ratio.Formatted)

	assert.Equal(t, schema.LoadFailedState, got["margin"].State)
}

func TestBatchFileSources(t *testing.T) {
	for _, name := range []string{"indicators.json", "indicators.yaml", "indicators.csv"} {
		t.Run(name, func(t *testing.T) {
			results := runBatchJSON(t, nil, filepath.Join("internal", "source", "testdata", name))
			verifyTestdata(t, results)
		})
	}
}

func TestBatchSQLiteSource(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kpis.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE indicators (id TEXT PRIMARY KEY, name TEXT, formula TEXT, current_value TEXT, previous_value REAL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO indicators VALUES ('a', 'A', 'return r * 100', '150', 100), ('b', 'B', NULL, NULL, 5)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	results := runBatchJSON(t, nil, dbPath, "--source-backend", "sqlite")
	require.Len(t, results, 2)
	got := byID(results)
	require.NotNil(t, got["a"].Result.Score)
	assert.InDelta(t, 50.0, got["a"].Result.Score.Value, 1e-9)
	assert.Nil(t, got["b"].Result.Current)
}

func TestCheckCommand(t *testing.T) {
	_, err := runCommand(t, nil, nil, "check", filepath.Join("internal", "source", "testdata", "indicators.yaml"))
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"id":"x","formula":"return ("}]`), 0o644))
	out, err := runCommand(t, nil, nil, "check", bad, "--output", "json")
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.NotEqual(t, 0, exitErr.ExitCode())

	var result schema.CheckResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Passed)
	assert.Equal(t, 1, result.Failed)
}

func TestScoreCommand(t *testing.T) {
	out, err := runCommand(t, []string{"INDISCORE_LOCALE=de-DE"}, nil,
		"score", "--current", "1250", "--previous", "1000", "-f", "return r * 100", "--output", "json")
	require.NoError(t, err)

	var result schema.CalculatedIndicatorValues
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.NotNil(t, result.Current)
	assert.Equal(t, "1.250,00", result.Current.Formatted)
	require.NotNil(t, result.Score)
	assert.Equal(t, "25,0", result.Score.Formatted)
}

func TestSessionCommand(t *testing.T) {
	input := strings.Join([]string{
		`{"type":"formula","owner":"kpi","formula":"return c * 2"}`,
		`{"type":"values","owner":"kpi","values":{"loaded":true,"current":5}}`,
		`{"type":"ask","owner":"kpi"}`,
	}, "\n")
	out, err := runCommand(t, nil, []byte(input), "session")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	var sc schema.ScoreComputed
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &sc))
	require.NotNil(t, sc.Values.Score)
	assert.InDelta(t, 10.0, sc.Values.Score.Value, 1e-9)
}

func TestFunctionsAndVersion(t *testing.T) {
	out, err := runCommand(t, nil, nil, "functions", "--output", "csv")
	require.NoError(t, err)
	assert.Contains(t, out, "interpolation")

	out, err = runCommand(t, nil, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "indiscore CLI")
}

package core

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/huangsam/indiscore/core/formula"
	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/internal/source"
	"github.com/huangsam/indiscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func testConfig(t *testing.T, output schema.OutputMode) *contract.Config {
	t.Helper()
	return &contract.Config{
		Locale:        language.AmericanEnglish,
		EvalTimeout:   contract.DefaultEvalTimeout,
		MaxSteps:      contract.DefaultMaxSteps,
		Workers:       2,
		Output:        output,
		OutputFile:    filepath.Join(t.TempDir(), "out."+string(output)),
		SourceBackend: schema.FileBackend,
	}
}

func sampleRecords() []schema.IndicatorRecord {
	return []schema.IndicatorRecord{
		{ID: "revenue", Formula: "return interpolation(r, 0, 10, 1, 100)", Current: "150", Previous: 100},
		{ID: "churn", Formula: "return (", Current: 4, Previous: 5},
		{ID: "nps", Current: 30, Previous: nil},
		{ID: "margin", Formula: "return c", Failed: true},
	}
}

func mockSource(records []schema.IndicatorRecord, err error) *source.MockValuesSource {
	src := &source.MockValuesSource{}
	src.On("Load", mock.Anything).Return(records, err)
	src.On("Describe").Return("mock:indicators").Maybe()
	return src
}

func readJSON[T any](t *testing.T, path string) T {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(content, &out))
	return out
}

func TestGetBatchResults(t *testing.T) {
	cfg := testConfig(t, schema.JSONOut)
	src := mockSource(sampleRecords(), nil)

	results, _, err := GetBatchResults(context.Background(), cfg, src)
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, 1, results[0].Rank)
	assert.Equal(t, schema.CalculatedState, results[0].State)
	require.NotNil(t, results[0].Result.Score)
	assert.Equal(t, "55.0", results[0].Result.Score.Formatted)

	assert.Equal(t, schema.CalculateFailedState, results[1].State)
	assert.Equal(t, schema.CalculatedState, results[2].State)
	assert.False(t, results[2].Result.UsesFormula)
	assert.Equal(t, schema.LoadFailedState, results[3].State)
	src.AssertExpectations(t)
}

// captureStderr returns what fn writes to os.Stderr.
func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	require.NoError(t, err)
	orig := os.Stderr
	os.Stderr = w
	defer func() { os.Stderr = orig }()

	fn()
	require.NoError(t, w.Close())
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(out)
}

func TestExecuteBatchVerboseLogsFailures(t *testing.T) {
	cfg := testConfig(t, schema.CSVOut)
	cfg.Verbose = true
	src := mockSource(sampleRecords(), nil)

	stderr := captureStderr(t, func() {
		require.NoError(t, ExecuteBatch(context.Background(), cfg, src))
	})
	assert.Contains(t, stderr, "Warn Formula for churn failed: line 1:")
	assert.NotContains(t, stderr, "revenue")

	content, err := os.ReadFile(cfg.OutputFile)
	require.NoError(t, err)
	assert.NotContains(t, string(content), "Warn")
}

func TestGetBatchResultsLoadError(t *testing.T) {
	src := mockSource(nil, assert.AnError)
	_, _, err := GetBatchResults(context.Background(), testConfig(t, schema.JSONOut), src)
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "mock:indicators")
}

func TestExecuteBatch(t *testing.T) {
	cfg := testConfig(t, schema.JSONOut)
	require.NoError(t, ExecuteBatch(context.Background(), cfg, mockSource(sampleRecords(), nil)))

	results := readJSON[[]schema.IndicatorResult](t, cfg.OutputFile)
	require.Len(t, results, 4)
	assert.Equal(t, "revenue", results[0].ID)
	assert.Equal(t, "Load failed", results[3].Label)
}

func TestExecuteCheck(t *testing.T) {
	t.Run("failing formula", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut)
		err := ExecuteCheck(context.Background(), cfg, mockSource(sampleRecords(), nil))
		require.ErrorIs(t, err, ErrCheckFailed)
		assert.Contains(t, err.Error(), "1 of 4 formulas")

		result := readJSON[schema.CheckResult](t, cfg.OutputFile)
		assert.False(t, result.Passed)
		assert.True(t, result.Checks[2].Empty)
		assert.Contains(t, result.Checks[1].Error, "line 1")
	})

	t.Run("all compile", func(t *testing.T) {
		cfg := testConfig(t, schema.JSONOut)
		records := sampleRecords()
		records[1].Formula = "return c - p"
		require.NoError(t, ExecuteCheck(context.Background(), cfg, mockSource(records, nil)))
	})

	t.Run("load error", func(t *testing.T) {
		err := ExecuteCheck(context.Background(), testConfig(t, schema.JSONOut), mockSource(nil, assert.AnError))
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestExecuteScore(t *testing.T) {
	tests := []struct {
		name      string
		script    string
		current   any
		previous  any
		wantState schema.State
		wantScore string
		wantRatio string
	}{
		{name: "formula", script: "return r * 100", current: " 1200 ", previous: "1000", wantState: schema.CalculatedState, wantScore: "20.0", wantRatio: "20.00"},
		{name: "no formula", current: 5, previous: 4, wantState: schema.CalculatedState, wantRatio: "25.00"},
		{name: "broken formula", script: "return bogus", current: 5, previous: 4, wantState: schema.CalculateFailedState, wantRatio: "25.00"},
		{name: "absent readings", script: "return c ?? 7", wantState: schema.CalculatedState, wantScore: "7.0", wantRatio: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t, schema.JSONOut)
			require.NoError(t, ExecuteScore(context.Background(), cfg, tt.script, tt.current, tt.previous))

			result := readJSON[schema.CalculatedIndicatorValues](t, cfg.OutputFile)
			assert.Equal(t, tt.wantState, result.State())
			require.NotNil(t, result.Ratio)
			assert.Equal(t, tt.wantRatio, result.Ratio.Formatted)
			if tt.wantScore == "" {
				assert.Nil(t, result.Score)
			} else {
				require.NotNil(t, result.Score)
				assert.Equal(t, tt.wantScore, result.Score.Formatted)
			}
		})
	}
}

func TestExecuteFunctions(t *testing.T) {
	cfg := testConfig(t, schema.JSONOut)
	require.NoError(t, ExecuteFunctions(context.Background(), cfg))

	symbols := readJSON[[]formula.Symbol](t, cfg.OutputFile)
	assert.Equal(t, formula.Symbols(), symbols)
}

func TestNewScorerFromConfig(t *testing.T) {
	cfg := testConfig(t, schema.TextOut)
	cfg.Locale = language.German

	res := NewScorerFromConfig(cfg).Recompute(context.Background(), "", schema.IndicatorValues{Loaded: true, Current: ptr(1234.5)})
	require.NotNil(t, res.Current)
	assert.Equal(t, "1.234,50", res.Current.Formatted)

	cfg.MaxSteps = 5
	res = NewScorerFromConfig(cfg).Recompute(context.Background(), "return max(1, 2, 3, 4, 5, 6, 7, 8)", schema.IndicatorValues{Loaded: true})
	assert.Equal(t, schema.CalculateFailedState, res.State())
}

package parquet

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/indiscore/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResults() []schema.IndicatorResult {
	return []schema.IndicatorResult{
		{
			Rank:    1,
			ID:      "revenue",
			Name:    "Revenue",
			Formula: "return r * 100",
			State:   schema.CalculatedState,
			Label:   "Calculated",
			Result: schema.CalculatedIndicatorValues{
				Loaded:      true,
				Calculated:  true,
				Current:     &schema.ValuePair{Value: 130, Formatted: "130.00"},
				Previous:    &schema.ValuePair{Value: 100, Formatted: "100.00"},
				Ratio:       &schema.ValuePair{Value: 30, Formatted: "30.00"},
				Score:       &schema.ValuePair{Value: 30, Formatted: "30.0"},
				UsesFormula: true,
			},
		},
		{
			Rank:    2,
			ID:      "churn",
			Formula: "return bogus",
			State:   schema.CalculateFailedState,
			Label:   "Failed",
			Result: schema.CalculatedIndicatorValues{
				Loaded:                 true,
				Calculated:             true,
				CalculateFailed:        true,
				CalculateFailureReason: "bogus is not defined",
				Current:                &schema.ValuePair{Value: 4, Formatted: "4.00"},
				Ratio:                  &schema.ValuePair{Value: 0, Formatted: "0.00"},
				UsesFormula:            true,
			},
		},
		{
			Rank:  3,
			ID:    "nps",
			State: schema.LoadFailedState,
			Label: "Load failed",
			Result: schema.CalculatedIndicatorValues{
				Loaded:     true,
				LoadFailed: true,
			},
		},
	}
}

func TestResultRowStructTags(t *testing.T) {
	schema := parquet.SchemaOf(new(ResultRow))
	require.NotNil(t, schema)

	expectedColumns := []string{
		"scored_at",
		"rank",
		"id",
		"name",
		"formula",
		"state",
		"current_value",
		"previous_value",
		"ratio",
		"score",
		"uses_formula",
		"failure_reason",
	}

	for _, colName := range expectedColumns {
		_, ok := schema.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestNewResultRows(t *testing.T) {
	scoredAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rows := NewResultRows(sampleResults(), scoredAt)
	require.Len(t, rows, 3)

	assert.Equal(t, scoredAt, rows[0].ScoredAt)
	assert.Equal(t, int32(1), rows[0].Rank)
	assert.Equal(t, "calculated", rows[0].State)
	require.NotNil(t, rows[0].Score)
	assert.InDelta(t, 30.0, *rows[0].Score, 1e-9)
	assert.Nil(t, rows[0].FailureReason)

	assert.Nil(t, rows[1].Score)
	assert.Nil(t, rows[1].Previous)
	require.NotNil(t, rows[1].FailureReason)
	assert.Equal(t, "bogus is not defined", *rows[1].FailureReason)

	assert.Nil(t, rows[2].Current)
	assert.False(t, rows[2].UsesFormula)
}

func TestWriteAndReadResultsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "scores.parquet")
	data := NewResultRows(sampleResults(), time.Now().UTC())

	require.NoError(t, WriteResultsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	readData, err := ReadResultsParquet(outputPath)
	require.NoError(t, err)
	require.Len(t, readData, len(data))

	for i := range data {
		assert.Equal(t, data[i].ID, readData[i].ID)
		assert.Equal(t, data[i].State, readData[i].State)
		assert.WithinDuration(t, data[i].ScoredAt, readData[i].ScoredAt, time.Microsecond)
		if data[i].Score == nil {
			assert.Nil(t, readData[i].Score)
		} else {
			require.NotNil(t, readData[i].Score)
			assert.InDelta(t, *data[i].Score, *readData[i].Score, 1e-9)
		}
		if data[i].FailureReason == nil {
			assert.Nil(t, readData[i].FailureReason)
		} else {
			require.NotNil(t, readData[i].FailureReason)
			assert.Equal(t, *data[i].FailureReason, *readData[i].FailureReason)
		}
	}
}

func TestWriteResultsParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteResultsParquet([]ResultRow{}, outputPath))

	readData, err := ReadResultsParquet(outputPath)
	require.NoError(t, err)
	assert.Empty(t, readData)
}

func TestWriteResultsParquet_InvalidPath(t *testing.T) {
	err := WriteResultsParquet(nil, filepath.Join(t.TempDir(), "missing", "out.parquet"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

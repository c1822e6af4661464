package core

import (
	"context"
	"fmt"
	"testing"

	"github.com/huangsam/indiscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreBatch(t *testing.T) {
	records := make([]schema.IndicatorRecord, 100)
	for i := range records {
		records[i] = schema.IndicatorRecord{
			ID:       fmt.Sprintf("kpi-%03d", i),
			Formula:  "c * 10",
			Current:  i,
			Previous: "1",
		}
	}
	records[7].Failed = true
	records[9].Formula = "bogus((("

	results, err := ScoreBatch(context.Background(), nil, records, 4)
	require.NoError(t, err)
	require.Len(t, results, len(records))

	for i, res := range results {
		switch i {
		case 7:
			assert.Equal(t, schema.LoadFailedState, res.State())
		case 9:
			assert.Equal(t, schema.CalculateFailedState, res.State())
		default:
			require.NotNil(t, res.Score, i)
			assert.Equal(t, float64(i*10), res.Score.Value)
		}
	}
}

func TestScoreBatchEdgeCases(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		results, err := ScoreBatch(context.Background(), nil, nil, 8)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("zero workers", func(t *testing.T) {
		results, err := ScoreBatch(context.Background(), nil, []schema.IndicatorRecord{{ID: "a", Current: 1}}, 0)
		require.NoError(t, err)
		assert.Equal(t, schema.CalculatedState, results[0].State())
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := ScoreBatch(ctx, nil, []schema.IndicatorRecord{{ID: "a"}}, 2)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCheckFormulas(t *testing.T) {
	checks := CheckFormulas([]schema.IndicatorRecord{
		{ID: "ok", Name: "Revenue", Formula: "interpolation(r, 0.1, 10, 0.5, 100)"},
		{ID: "empty", Formula: "  "},
		{ID: "bad", Formula: "c +"},
		{ID: "runtime", Formula: "c / 0"},
	})

	require.Len(t, checks, 4)
	assert.Equal(t, schema.FormulaCheck{ID: "ok", Name: "Revenue", Formula: "interpolation(r, 0.1, 10, 0.5, 100)", Passed: true}, checks[0])
	assert.True(t, checks[1].Empty)
	assert.True(t, checks[1].Passed)
	assert.False(t, checks[2].Passed)
	assert.Contains(t, checks[2].Error, "unexpected end of line")
	assert.True(t, checks[3].Passed, "runtime failures are not compile errors")
}

func BenchmarkScoreBatch(b *testing.B) {
	records := make([]schema.IndicatorRecord, 1000)
	for i := range records {
		records[i] = schema.IndicatorRecord{ID: fmt.Sprint(i), Formula: "interpolation(r, 0.1, 10, 0.5, 100)", Current: i + 100, Previous: 100}
	}
	for b.Loop() {
		_, _ = ScoreBatch(context.Background(), nil, records, 8)
	}
}

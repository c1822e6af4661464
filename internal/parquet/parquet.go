// Package parquet provides data structures and functions for exporting scored
// indicators to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/indiscore/schema"
	"github.com/parquet-go/parquet-go"
)

// ResultRow is one scored indicator in a batch export.
type ResultRow struct {
	// ScoredAt is when the batch ran (stored as TIMESTAMP with nanosecond precision)
	ScoredAt time.Time `parquet:"scored_at,snappy"`

	Rank    int32  `parquet:"rank,snappy"`
	ID      string `parquet:"id,snappy"`
	Name    string `parquet:"name,snappy"`
	Formula string `parquet:"formula,snappy"`
	State   string `parquet:"state,snappy"`

	// Readings and outputs are null when the indicator never produced them.
	Current  *float64 `parquet:"current_value,optional,snappy"`
	Previous *float64 `parquet:"previous_value,optional,snappy"`
	Ratio    *float64 `parquet:"ratio,optional,snappy"`
	Score    *float64 `parquet:"score,optional,snappy"`

	UsesFormula   bool    `parquet:"uses_formula,snappy"`
	FailureReason *string `parquet:"failure_reason,optional,snappy"`
}

// NewResultRows flattens batch results into rows stamped with scoredAt.
func NewResultRows(results []schema.IndicatorResult, scoredAt time.Time) []ResultRow {
	rows := make([]ResultRow, 0, len(results))
	for _, r := range results {
		row := ResultRow{
			ScoredAt:    scoredAt,
			Rank:        int32(r.Rank),
			ID:          r.ID,
			Name:        r.Name,
			Formula:     r.Formula,
			State:       string(r.State),
			Current:     pairValue(r.Result.Current),
			Previous:    pairValue(r.Result.Previous),
			Ratio:       pairValue(r.Result.Ratio),
			Score:       pairValue(r.Result.Score),
			UsesFormula: r.Result.UsesFormula,
		}
		if r.Result.CalculateFailed {
			reason := r.Result.CalculateFailureReason
			row.FailureReason = &reason
		}
		rows = append(rows, row)
	}
	return rows
}

func pairValue(p *schema.ValuePair) *float64 {
	if p == nil {
		return nil
	}
	v := p.Value
	return &v
}

// WriteResultsParquet writes a slice of ResultRow structs to a Parquet file.
func WriteResultsParquet(data []ResultRow, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the ResultRow struct tags
	writer := parquet.NewGenericWriter[ResultRow](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}

// ReadResultsParquet reads every ResultRow from a Parquet file.
func ReadResultsParquet(inputPath string) ([]ResultRow, error) {
	rows, err := parquet.ReadFile[ResultRow](inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read parquet file: %w", err)
	}
	return rows, nil
}

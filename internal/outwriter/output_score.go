package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"

	"github.com/olekukonko/tablewriter"
)

// WriteScoreResult outputs one scored indicator, dispatching based on the output format configured.
func WriteScoreResult(result schema.CalculatedIndicatorValues, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVScore(w, result)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return ErrParquetBatchOnly
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeScoreTable(result, cfg, w)
		}, "Wrote table")
	}
	return nil
}

func writeScoreTable(result schema.CalculatedIndicatorValues, cfg *contract.Config, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Field", "Value"})

	data := [][]string{
		{"Current", tableCell(result.Current)},
		{"Previous", tableCell(result.Previous)},
		{"Ratio", tableCell(result.Ratio)},
		{"Score", tableCell(result.Score)},
		{"Formula", strconv.FormatBool(result.UsesFormula)},
		{"State", stateLabel(result.State(), cfg)},
	}
	if result.CalculateFailed {
		data = append(data, []string{"Error", result.CalculateFailureReason})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

func writeCSVScore(w io.Writer, result schema.CalculatedIndicatorValues) error {
	header := []string{"state", "current", "previous", "ratio", "score", "uses_formula", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		rec := []string{
			string(result.State()),
			csvCell(result.Current),
			csvCell(result.Previous),
			csvCell(result.Ratio),
			csvCell(result.Score),
			strconv.FormatBool(result.UsesFormula),
			result.CalculateFailureReason,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
		return nil
	})
}

package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/internal/parquet"
	"github.com/huangsam/indiscore/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// Parquet output errors.
var (
	ErrParquetNeedsFile = errors.New("parquet output requires an output file")
	ErrParquetBatchOnly = errors.New("parquet output is only supported for batch results")
)

// WriteIndicatorResults outputs batch results, dispatching based on the output format configured.
func WriteIndicatorResults(results []schema.IndicatorResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVResults(w, results)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if err := writeParquetResults(results, cfg.OutputFile); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeResultsTable(results, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

// writeParquetResults exports results as a Parquet file.
func writeParquetResults(results []schema.IndicatorResult, outputFile string) error {
	if outputFile == "" {
		return ErrParquetNeedsFile
	}
	rows := parquet.NewResultRows(results, time.Now().UTC())
	if err := parquet.WriteResultsParquet(rows, outputFile); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "💾 Wrote Parquet to %s\n", outputFile)
	return nil
}

// writeResultsTable generates and writes the human-readable table.
func writeResultsTable(results []schema.IndicatorResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)

	headers := []string{"Rank", "ID", "Formula", "Current", "Previous", "Ratio", "Score", "Label"}
	table.Header(headers)

	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	formulaWidth := GetMaxTableFormulaWidth(cfg)
	counts := make(map[schema.State]int)
	var data [][]string
	for _, r := range results {
		counts[r.State]++
		formula := missingCell
		if r.Result.UsesFormula {
			formula = contract.TruncateText(contract.SingleLine(r.Formula), formulaWidth)
		}
		data = append(data, []string{
			strconv.Itoa(r.Rank),
			r.ID,
			formula,
			tableCell(r.Result.Current),
			tableCell(r.Result.Previous),
			tableCell(r.Result.Ratio),
			tableCell(r.Result.Score),
			stateLabel(r.State, cfg),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(writer, "Scored %d indicators (calculated: %d, failed: %d, load failed: %d, not loaded: %d)\n",
		len(results),
		counts[schema.CalculatedState],
		counts[schema.CalculateFailedState],
		counts[schema.LoadFailedState],
		counts[schema.NotLoadedState],
	); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(writer, "Batch completed in %v with %d workers. Source backend: %s\n", duration, cfg.Workers, cfg.SourceBackend); err != nil {
		return err
	}
	return nil
}

// writeCSVResults writes batch results in CSV format.
func writeCSVResults(w io.Writer, results []schema.IndicatorResult) error {
	header := []string{
		"rank",
		"id",
		"name",
		"formula",
		"state",
		"current",
		"previous",
		"ratio",
		"score",
		"uses_formula",
		"error",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, r := range results {
			rec := []string{
				strconv.Itoa(r.Rank),
				r.ID,
				r.Name,
				r.Formula,
				string(r.State),
				csvCell(r.Result.Current),
				csvCell(r.Result.Previous),
				csvCell(r.Result.Ratio),
				csvCell(r.Result.Score),
				strconv.FormatBool(r.Result.UsesFormula),
				r.Result.CalculateFailureReason,
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"

	"github.com/olekukonko/tablewriter"
)

// WriteCheckResult outputs formula check results, dispatching based on the output format configured.
func WriteCheckResult(result schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, result)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVChecks(w, result.Checks)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return ErrParquetBatchOnly
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeChecksTable(result, cfg, duration, w)
		}, "Wrote table")
	}
	return nil
}

func checkStatus(c schema.FormulaCheck, cfg *contract.Config) string {
	switch {
	case !c.Passed:
		if cfg.UseColors {
			return contract.FailedColor.Sprint("FAIL")
		}
		return "FAIL"
	case c.Empty:
		return "default"
	default:
		if cfg.UseColors {
			return contract.CalculatedColor.Sprint("OK")
		}
		return "OK"
	}
}

func writeChecksTable(result schema.CheckResult, cfg *contract.Config, duration time.Duration, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"ID", "Formula", "Status", "Error"})

	formulaWidth := GetMaxTableFormulaWidth(cfg)
	var data [][]string
	for _, c := range result.Checks {
		formula := missingCell
		if !c.Empty {
			formula = contract.TruncateText(contract.SingleLine(c.Formula), formulaWidth)
		}
		data = append(data, []string{c.ID, formula, checkStatus(c, cfg), c.Error})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	if result.Passed {
		if _, err := fmt.Fprintf(writer, "✅ All %d formulas compiled\n", result.Total); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(writer, "❌ %d of %d formulas failed to compile\n", result.Failed, result.Total); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(writer, "Check completed in %v. Source backend: %s\n", duration, cfg.SourceBackend)
	return err
}

func writeCSVChecks(w io.Writer, checks []schema.FormulaCheck) error {
	header := []string{"id", "name", "formula", "empty", "passed", "error"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, c := range checks {
			rec := []string{
				c.ID,
				c.Name,
				c.Formula,
				strconv.FormatBool(c.Empty),
				strconv.FormatBool(c.Passed),
				c.Error,
			}
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/huangsam/indiscore/core/formula"
	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// WriteSymbols outputs the scoring context reference, dispatching based on the output format configured.
func WriteSymbols(symbols []formula.Symbol, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, symbols)
		}, "Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSVSymbols(w, symbols)
		}, "Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		return ErrParquetBatchOnly
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeSymbolsTable(symbols, w)
		}, "Wrote table")
	}
	return nil
}

func writeSymbolsTable(symbols []formula.Symbol, writer io.Writer) error {
	table := tablewriter.NewWriter(writer)
	table.Header([]string{"Kind", "Signature", "Description"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	data := make([][]string, 0, len(symbols))
	for _, s := range symbols {
		data = append(data, []string{string(s.Kind), s.Signature, s.Description})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(writer, "Formulas are scripts ending in a return line, e.g. %q\n", "return interpolation(r, 0, 10, 1, 100)")
	return err
}

func writeCSVSymbols(w io.Writer, symbols []formula.Symbol) error {
	header := []string{"name", "kind", "signature", "description"}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, s := range symbols {
			if err := cw.Write([]string{s.Name, string(s.Kind), s.Signature, s.Description}); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

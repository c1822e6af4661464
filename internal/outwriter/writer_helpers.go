package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"
)

// missingCell is shown in tables for values an indicator does not have.
const missingCell = "-"

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSVWithHeader handles the common pattern of creating a CSV writer,
// writing a header, and writing data rows.
func writeCSVWithHeader(w io.Writer, header []string, writeRows func(*csv.Writer) error) error {
	csvWriter := csv.NewWriter(w)
	defer csvWriter.Flush()

	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	if err := writeRows(csvWriter); err != nil {
		return err
	}

	return nil
}

// tableCell renders a value pair for human-readable output.
func tableCell(p *schema.ValuePair) string {
	if p == nil {
		return missingCell
	}
	return p.Formatted
}

// csvCell renders a value pair at full precision for machine-readable output.
func csvCell(p *schema.ValuePair) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(p.Value, 'f', -1, 64)
}

// stateLabel picks the colored or plain label depending on the config.
func stateLabel(state schema.State, cfg *contract.Config) string {
	if cfg.UseColors {
		return contract.GetColorLabel(state)
	}
	return schema.GetPlainLabel(state)
}

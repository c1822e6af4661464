package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"
	"gopkg.in/yaml.v3"
)

// FileSource reads indicator records from a JSON, YAML or CSV file.
type FileSource struct {
	path string
}

var _ contract.ValuesSource = &FileSource{} // Compile-time check

// NewFileSource returns a FileSource for path. The format follows the extension.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Describe implements the ValuesSource interface.
func (s *FileSource) Describe() string {
	return "file:" + s.path
}

// Close implements the ValuesSource interface.
func (s *FileSource) Close() error {
	return nil
}

// Load implements the ValuesSource interface.
func (s *FileSource) Load(ctx context.Context) ([]schema.IndicatorRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var records []schema.IndicatorRecord
	switch ext := strings.ToLower(filepath.Ext(s.path)); ext {
	case ".json":
		records, err = ParseJSON(data)
	case ".yaml", ".yml":
		records, err = ParseYAML(data)
	case ".csv":
		records, err = ParseCSV(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("unsupported source file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.path, err)
	}
	if err := validateRecords(records); err != nil {
		return nil, fmt.Errorf("invalid records in %s: %w", s.path, err)
	}
	return records, nil
}

// ParseJSON decodes a JSON array of records. Numbers keep their literal text
// so that ToNumber sees exactly what was written.
func ParseJSON(data []byte) ([]schema.IndicatorRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var records []schema.IndicatorRecord
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

// ParseYAML decodes either a bare list of records or a mapping with an
// "indicators" list.
func ParseYAML(data []byte) ([]schema.IndicatorRecord, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, nil // empty document
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}

	switch root.Kind {
	case yaml.SequenceNode:
		var records []schema.IndicatorRecord
		if err := root.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	case yaml.MappingNode:
		var wrapper struct {
			Indicators []schema.IndicatorRecord `yaml:"indicators"`
		}
		if err := root.Decode(&wrapper); err != nil {
			return nil, err
		}
		return wrapper.Indicators, nil
	default:
		return nil, errors.New("expected a list of indicators or an 'indicators' key")
	}
}

// csvColumns are the recognized CSV header names.
var csvColumns = map[string]struct{}{
	"id": {}, "name": {}, "formula": {}, "current": {}, "previous": {}, "failed": {},
}

// ParseCSV reads records from CSV with a header row. The id column is
// required; name, formula, current, previous and failed are optional.
// Empty current or previous cells are absent readings.
func ParseCSV(r io.Reader) ([]schema.IndicatorRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(h))
		if _, ok := csvColumns[name]; !ok {
			return nil, fmt.Errorf("unknown column %q", h)
		}
		index[name] = i
	}
	if _, ok := index["id"]; !ok {
		return nil, errors.New("missing required column \"id\"")
	}

	var records []schema.IndicatorRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		cell := func(name string) string {
			if i, ok := index[name]; ok && i < len(row) {
				return row[i]
			}
			return ""
		}

		rec := schema.IndicatorRecord{
			ID:      strings.TrimSpace(cell("id")),
			Name:    cell("name"),
			Formula: cell("formula"),
		}
		if v := strings.TrimSpace(cell("current")); v != "" {
			rec.Current = v
		}
		if v := strings.TrimSpace(cell("previous")); v != "" {
			rec.Previous = v
		}
		if v := strings.TrimSpace(cell("failed")); v != "" {
			failed, err := contract.ParseBoolString(v)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			rec.Failed = failed
		}
		records = append(records, rec)
	}
	return records, nil
}

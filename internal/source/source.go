// Package source reads indicator records for batch scoring from files and SQL tables.
package source

import (
	"fmt"

	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"
)

// New returns the ValuesSource selected by cfg.
func New(cfg *contract.Config) (contract.ValuesSource, error) {
	switch cfg.SourceBackend {
	case schema.FileBackend, "":
		return NewFileSource(cfg.SourcePath), nil
	case schema.SQLiteBackend, schema.MySQLBackend, schema.PostgreSQLBackend:
		return NewSQLSource(cfg.SourceBackend, cfg.SourceDBConnect, cfg.SourceTable)
	default:
		return nil, fmt.Errorf("unsupported source backend: %s. Must be file, sqlite, mysql, or postgresql", cfg.SourceBackend)
	}
}

// validateRecords checks that every record has a unique, non-empty id.
func validateRecords(records []schema.IndicatorRecord) error {
	seen := make(map[string]int, len(records))
	for i, r := range records {
		if r.ID == "" {
			return fmt.Errorf("record %d has no id", i+1)
		}
		if prev, ok := seen[r.ID]; ok {
			return fmt.Errorf("duplicate indicator id %q in records %d and %d", r.ID, prev+1, i+1)
		}
		seen[r.ID] = i
	}
	return nil
}

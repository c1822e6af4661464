package source

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	"github.com/huangsam/indiscore/internal/contract"
	"github.com/huangsam/indiscore/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver
)

// SQLSource reads indicator records from a table owned by the upstream
// data system. The table needs the columns id, name, formula, current_value
// and previous_value; NULL readings are absent.
type SQLSource struct {
	db      *sql.DB
	table   string
	backend schema.SourceBackend
}

var _ contract.ValuesSource = &SQLSource{} // Compile-time check

// DriverName returns the database/sql driver registered for backend.
func DriverName(backend schema.SourceBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "sqlite", nil
	case schema.MySQLBackend:
		return "mysql", nil
	case schema.PostgreSQLBackend:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported SQL backend: %s. Must be sqlite, mysql, or postgresql", backend)
	}
}

// NewSQLSource opens and pings the database behind connStr.
func NewSQLSource(backend schema.SourceBackend, connStr, table string) (*SQLSource, error) {
	// Validate table name to prevent SQL injection
	if err := contract.ValidateTableName(table); err != nil {
		return nil, err
	}
	driverName, err := DriverName(backend)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s source: %w", backend, err)
	}
	if backend == schema.SQLiteBackend {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	return &SQLSource{db: db, table: table, backend: backend}, nil
}

// Describe implements the ValuesSource interface.
func (s *SQLSource) Describe() string {
	return fmt.Sprintf("%s:%s", s.backend, s.table)
}

// Close implements the ValuesSource interface.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// Load implements the ValuesSource interface.
func (s *SQLSource) Load(ctx context.Context) ([]schema.IndicatorRecord, error) {
	query := fmt.Sprintf(
		"SELECT id, name, formula, current_value, previous_value FROM %s ORDER BY id",
		quoteTableName(s.table, s.backend),
	)
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", s.table, err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.IndicatorRecord
	for rows.Next() {
		var (
			id                string
			name, formulaText sql.NullString
			current, previous any
		)
		if err := rows.Scan(&id, &name, &formulaText, &current, &previous); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", s.table, err)
		}
		records = append(records, schema.IndicatorRecord{
			ID:       id,
			Name:     name.String,
			Formula:  formulaText.String,
			Current:  driverValue(current),
			Previous: driverValue(previous),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.table, err)
	}
	if err := validateRecords(records); err != nil {
		return nil, fmt.Errorf("invalid records in %s: %w", s.table, err)
	}
	return records, nil
}

// driverValue turns raw column bytes into text so ToNumber can parse them.
// MySQL returns DECIMAL columns as []byte.
func driverValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.SourceBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("\"%s\"", name)
	}
}

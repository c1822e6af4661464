package contract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/huangsam/indiscore/core/formula"
	"github.com/huangsam/indiscore/core/numeric"
	"github.com/huangsam/indiscore/schema"
	"github.com/jackc/pgx/v5"
	"golang.org/x/text/language"
)

// Default values for configuration.
const (
	DefaultLocale      = "en-US"
	DefaultEvalTimeout = formula.DefaultTimeout
	MaxEvalTimeout     = 10 * time.Second
	DefaultMaxSteps    = formula.DefaultMaxSteps
	DefaultSourceTable = "indicators"
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// tableNamePattern restricts SQL table names to plain identifiers.
var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// supportedFileExtensions lists the file formats readable by the file backend.
var supportedFileExtensions = map[string]struct{}{
	".json": {},
	".yaml": {},
	".yml":  {},
	".csv":  {},
}

// Config holds the runtime configuration for scoring.
// This struct is the "final, validated" config.
type Config struct {
	Locale      language.Tag
	EvalTimeout time.Duration
	MaxSteps    int
	Workers     int
	Output      schema.OutputMode
	OutputFile  string
	Width       int // Terminal width override (0 = auto-detect)
	UseColors   bool
	Verbose     bool

	SourceBackend   schema.SourceBackend
	SourcePath      string // File path for the file backend
	SourceDBConnect string // Please use env var as this is plaintext
	SourceTable     string
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// These are set manually from positional args, so no tag
	SourceStr   string
	NeedsSource bool

	// --- Fields from rootCmd.PersistentFlags() ---
	Locale      string `mapstructure:"locale"`
	EvalTimeout string `mapstructure:"eval-timeout"`
	MaxSteps    int    `mapstructure:"max-steps"`
	Workers     int    `mapstructure:"workers"`
	Output      string `mapstructure:"output"`
	OutputFile  string `mapstructure:"output-file"`
	Width       int    `mapstructure:"width"`
	Color       string `mapstructure:"color"`
	Verbose     bool   `mapstructure:"verbose"`

	// --- Source fields shared by batch and check ---
	SourceBackend   string `mapstructure:"source-backend"`
	SourceDBConnect string `mapstructure:"source-db-connect"`
	SourceTable     string `mapstructure:"source-table"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// EvaluatorOptions returns the formula execution bounds.
func (c *Config) EvaluatorOptions() formula.Options {
	return formula.Options{Timeout: c.EvalTimeout, MaxSteps: c.MaxSteps}
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processEvaluationLimits(cfg, input); err != nil {
		return err
	}
	if input.NeedsSource {
		if err := processSource(cfg, input); err != nil {
			return err
		}
	}
	return nil
}

// validateSimpleInputs processes and validates all non-source fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}
	if cfg.Output == schema.ParquetOut && cfg.OutputFile == "" {
		return fmt.Errorf("parquet output requires --output-file")
	}

	tag, err := numeric.ParseLocale(input.Locale)
	if err != nil {
		return err
	}
	cfg.Locale = tag

	return nil
}

// processEvaluationLimits validates the formula execution bounds.
func processEvaluationLimits(cfg *Config, input *ConfigRawInput) error {
	cfg.EvalTimeout = DefaultEvalTimeout
	if input.EvalTimeout != "" {
		d, err := time.ParseDuration(input.EvalTimeout)
		if err != nil {
			return fmt.Errorf("invalid eval timeout '%s': %w", input.EvalTimeout, err)
		}
		cfg.EvalTimeout = d
	}
	if cfg.EvalTimeout <= 0 || cfg.EvalTimeout > MaxEvalTimeout {
		return fmt.Errorf("eval timeout must be greater than 0 and cannot exceed %s (received %s)", MaxEvalTimeout, cfg.EvalTimeout)
	}

	if input.MaxSteps <= 0 {
		return fmt.Errorf("max steps must be greater than 0 (received %d)", input.MaxSteps)
	}
	cfg.MaxSteps = input.MaxSteps
	return nil
}

// processSource validates where batch records come from.
func processSource(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(input.SourceBackend)
	if backend == "" {
		backend = string(schema.FileBackend)
	}
	cfg.SourceBackend = schema.SourceBackend(backend)
	if _, ok := schema.ValidSourceBackends[cfg.SourceBackend]; !ok {
		return fmt.Errorf("invalid source backend '%s'. must be file, sqlite, mysql, postgresql", input.SourceBackend)
	}

	cfg.SourcePath = strings.TrimSpace(input.SourceStr)
	cfg.SourceDBConnect = input.SourceDBConnect
	cfg.SourceTable = input.SourceTable
	if cfg.SourceTable == "" {
		cfg.SourceTable = DefaultSourceTable
	}

	switch cfg.SourceBackend {
	case schema.FileBackend:
		if cfg.SourcePath == "" {
			return fmt.Errorf("a source file is required when using the %s backend", cfg.SourceBackend)
		}
		ext := strings.ToLower(filepath.Ext(cfg.SourcePath))
		if _, ok := supportedFileExtensions[ext]; !ok {
			return fmt.Errorf("unsupported source file '%s'. must end in .json, .yaml, .yml, .csv", cfg.SourcePath)
		}
		return nil
	case schema.SQLiteBackend:
		// The positional argument doubles as the database path.
		if cfg.SourceDBConnect == "" {
			cfg.SourceDBConnect = cfg.SourcePath
		}
	}

	if err := ValidateTableName(cfg.SourceTable); err != nil {
		return err
	}
	return ValidateDatabaseConnectionString(cfg.SourceBackend, cfg.SourceDBConnect)
}

// ValidateTableName rejects anything but a plain SQL identifier.
func ValidateTableName(table string) error {
	if !tableNamePattern.MatchString(table) {
		return fmt.Errorf("invalid table name '%s'. must match %s", table, tableNamePattern)
	}
	return nil
}

// ValidateDatabaseConnectionString validates the format of database connection strings.
func ValidateDatabaseConnectionString(backend schema.SourceBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		if connStr == "" {
			return fmt.Errorf("a database path is required when using %s backend", backend)
		}
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("source-db-connect is required when using %s backend", backend)
		}
		dsn, err := mysql.ParseDSN(connStr)
		if err != nil {
			return fmt.Errorf("invalid MySQL connection string: %w", err)
		}
		if dsn.DBName == "" {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("source-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") && !strings.HasPrefix(connStr, "postgres") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if _, err := pgx.ParseConfig(connStr); err != nil {
			return fmt.Errorf("invalid PostgreSQL connection string: %w", err)
		}
	}
	return nil
}

// ProfileConfig holds profiling configuration.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// ProcessProfilingConfig enables profiling when a file prefix is given.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) {
	profilePrefix = strings.TrimSpace(profilePrefix)
	profile.Enabled = profilePrefix != ""
	profile.Prefix = profilePrefix
}

package contract

import (
	"testing"
	"time"

	"github.com/huangsam/indiscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

// validInput returns raw input matching the viper defaults.
func validInput() *ConfigRawInput {
	return &ConfigRawInput{
		Locale:      DefaultLocale,
		EvalTimeout: "250ms",
		MaxSteps:    DefaultMaxSteps,
		Workers:     4,
		Output:      "text",
		Color:       "yes",
	}
}

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ConfigRawInput)
		expectError string
	}{
		{name: "valid minimal config", modify: func(*ConfigRawInput) {}},
		{name: "uppercase output", modify: func(i *ConfigRawInput) { i.Output = "JSON" }},
		{name: "invalid output", modify: func(i *ConfigRawInput) { i.Output = "xml" }, expectError: "invalid output format"},
		{name: "parquet without file", modify: func(i *ConfigRawInput) { i.Output = "parquet" }, expectError: "requires --output-file"},
		{name: "parquet with file", modify: func(i *ConfigRawInput) { i.Output = "parquet"; i.OutputFile = "out.parquet" }},
		{name: "zero workers", modify: func(i *ConfigRawInput) { i.Workers = 0 }, expectError: "workers must be greater than 0"},
		{name: "bad color", modify: func(i *ConfigRawInput) { i.Color = "maybe" }, expectError: "invalid --color value"},
		{name: "bad locale", modify: func(i *ConfigRawInput) { i.Locale = "not a locale!" }, expectError: "invalid locale"},
		{name: "bad timeout", modify: func(i *ConfigRawInput) { i.EvalTimeout = "soon" }, expectError: "invalid eval timeout"},
		{name: "timeout too long", modify: func(i *ConfigRawInput) { i.EvalTimeout = "1m" }, expectError: "cannot exceed"},
		{name: "negative timeout", modify: func(i *ConfigRawInput) { i.EvalTimeout = "-1s" }, expectError: "greater than 0"},
		{name: "zero steps", modify: func(i *ConfigRawInput) { i.MaxSteps = 0 }, expectError: "max steps must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			tt.modify(input)
			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestProcessAndValidateFields(t *testing.T) {
	input := validInput()
	input.Locale = "de"
	input.EvalTimeout = "1s"
	input.MaxSteps = 500
	input.Width = 120
	input.Verbose = true
	input.Color = "no"
	input.OutputFile = "out.json"
	input.Output = "json"

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, input))

	assert.Equal(t, language.German, cfg.Locale)
	assert.Equal(t, time.Second, cfg.EvalTimeout)
	assert.Equal(t, 500, cfg.MaxSteps)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 120, cfg.Width)
	assert.True(t, cfg.Verbose)
	assert.False(t, cfg.UseColors)
	assert.Equal(t, schema.JSONOut, cfg.Output)
	assert.Equal(t, "out.json", cfg.OutputFile)

	opts := cfg.EvaluatorOptions()
	assert.Equal(t, time.Second, opts.Timeout)
	assert.Equal(t, 500, opts.MaxSteps)

	clone := cfg.Clone()
	clone.Workers = 1
	assert.Equal(t, 4, cfg.Workers)
}

func TestProcessSource(t *testing.T) {
	tests := []struct {
		name        string
		source      string
		backend     string
		connect     string
		table       string
		expectError string
		check       func(*testing.T, *Config)
	}{
		{
			name:   "json file",
			source: "testdata/indicators.json",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.FileBackend, cfg.SourceBackend)
				assert.Equal(t, "testdata/indicators.json", cfg.SourcePath)
				assert.Equal(t, DefaultSourceTable, cfg.SourceTable)
			},
		},
		{name: "yaml file", source: "kpis.YML"},
		{name: "csv file", source: "kpis.csv", backend: "FILE"},
		{name: "missing file", expectError: "a source file is required"},
		{name: "unsupported file", source: "kpis.xlsx", expectError: "unsupported source file"},
		{name: "invalid backend", source: "x.json", backend: "redis", expectError: "invalid source backend"},
		{
			name:    "sqlite path from argument",
			source:  "kpis.db",
			backend: "sqlite",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, schema.SQLiteBackend, cfg.SourceBackend)
				assert.Equal(t, "kpis.db", cfg.SourceDBConnect)
			},
		},
		{name: "sqlite without path", backend: "sqlite", expectError: "a database path is required"},
		{name: "sqlite bad table", source: "kpis.db", backend: "sqlite", table: "kpis; DROP TABLE x", expectError: "invalid table name"},
		{name: "mysql", backend: "mysql", connect: "user:pass@tcp(localhost:3306)/kpis", table: "kpi_values"},
		{name: "mysql missing connect", backend: "mysql", expectError: "source-db-connect is required"},
		{name: "mysql missing database", backend: "mysql", connect: "user:pass@tcp(localhost:3306)/", expectError: "database name"},
		{name: "mysql malformed", backend: "mysql", connect: "user:pass@tcp(localhost:3306", expectError: "invalid MySQL connection string"},
		{name: "postgresql", backend: "postgresql", connect: "host=localhost port=5432 user=u password=p dbname=kpis sslmode=disable"},
		{name: "postgresql url", backend: "postgresql", connect: "postgres://u:p@localhost:5432/kpis"},
		{name: "postgresql missing host", backend: "postgresql", connect: "dbname=kpis", expectError: "must contain 'host='"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validInput()
			input.NeedsSource = true
			input.SourceStr = tt.source
			input.SourceBackend = tt.backend
			input.SourceDBConnect = tt.connect
			input.SourceTable = tt.table

			cfg := &Config{}
			err := ProcessAndValidate(cfg, input)
			if tt.expectError != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectError)
				return
			}
			require.NoError(t, err)
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestValidateTableName(t *testing.T) {
	for _, ok := range []string{"indicators", "_kpi", "KPI_2024"} {
		assert.NoError(t, ValidateTableName(ok), ok)
	}
	for _, bad := range []string{"", "2024_kpi", "kpi-values", "public.kpis", "kpis;--", "kpi values"} {
		assert.Error(t, ValidateTableName(bad), bad)
	}
}

func TestProcessProfilingConfig(t *testing.T) {
	var profile ProfileConfig
	ProcessProfilingConfig(&profile, " bench ")
	assert.True(t, profile.Enabled)
	assert.Equal(t, "bench", profile.Prefix)

	ProcessProfilingConfig(&profile, "")
	assert.False(t, profile.Enabled)
	assert.Empty(t, profile.Prefix)
}

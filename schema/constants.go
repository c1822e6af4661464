package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// SourceBackend represents where batch indicator records are read from.
	SourceBackend string

	// State represents the lifecycle state of a calculated indicator.
	State string

	// MessageType represents the kind of a session message.
	MessageType string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All source backends supported.
const (
	FileBackend       SourceBackend = "file" // default
	SQLiteBackend     SourceBackend = "sqlite"
	MySQLBackend      SourceBackend = "mysql"
	PostgreSQLBackend SourceBackend = "postgresql"
)

// All indicator states.
const (
	NotLoadedState       State = "not_loaded" // initial
	LoadFailedState      State = "load_failed"
	CalculatedState      State = "calculated"
	CalculateFailedState State = "calculate_failed"
)

// All session message types.
const (
	ValuesMessage  MessageType = "values"
	FormulaMessage MessageType = "formula"
	AskMessage     MessageType = "ask"
)

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidSourceBackends lists all valid source backends.
var ValidSourceBackends = map[SourceBackend]struct{}{
	FileBackend:       {},
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidMessageTypes lists all valid session message types.
var ValidMessageTypes = map[MessageType]struct{}{
	ValuesMessage:  {},
	FormulaMessage: {},
	AskMessage:     {},
}

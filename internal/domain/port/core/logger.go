package core

// LogLevel orders logging severities; messages below the configured level
// are dropped
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

// Logger is the structured logging port used throughout the payment flows.
// Fields are free-form key/value pairs; a nil map is valid.
type Logger interface {
	// SetLevel sets the minimum severity that will be emitted
	SetLevel(level LogLevel)
	Debug(message string, fields map[string]any)
	Info(message string, fields map[string]any)
	Warn(message string, fields map[string]any)
	Error(message string, fields map[string]any)
	// Flush writes out any buffered log entries
	Flush() error
}

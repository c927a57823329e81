package logger

import (
	"github.com/djkraph/payment-processor/internal/domain/port/core"
)

// NoopLogger implements the Logger interface and discards everything.
// Used by tests and wherever logging is disabled.
type NoopLogger struct{}

// NewNoopLogger creates a new no-op logger
func NewNoopLogger() core.Logger {
	return &NoopLogger{}
}

// SetLevel is a no-op; nothing is emitted at any level
func (l *NoopLogger) SetLevel(level core.LogLevel) {}

// Debug discards debug messages
func (l *NoopLogger) Debug(message string, fields map[string]any) {}

// Info discards informational messages
func (l *NoopLogger) Info(message string, fields map[string]any) {}

// Warn discards warning messages
func (l *NoopLogger) Warn(message string, fields map[string]any) {}

// Error discards error messages
func (l *NoopLogger) Error(message string, fields map[string]any) {}

// Flush has nothing to write
func (l *NoopLogger) Flush() error {
	return nil
}

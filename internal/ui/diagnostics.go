package ui

import (
	"go.uber.org/zap"
)

// DiagnosticConsole writes warnings and fatal messages to the diagnostic stream.
type DiagnosticConsole struct {
	logger *zap.Logger
}

// NewDiagnosticConsole wraps logger; a nil logger discards everything except Die, which still exits.
func NewDiagnosticConsole(logger *zap.Logger) *DiagnosticConsole {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DiagnosticConsole{logger: logger}
}

// Warning writes a warning.
func (console *DiagnosticConsole) Warning(message string) {
	console.logger.Warn(message)
}

// Die writes a fatal message and terminates the process with status 1.
func (console *DiagnosticConsole) Die(message string) {
	console.logger.Fatal(message)
}

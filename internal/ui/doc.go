// Package ui renders buildexec output for humans.
//
// DiagnosticConsole writes severity-tagged messages to the diagnostic stream,
// ConsoleCommandEventLogger traces execution attempts, and ResultPrinter
// reports a finished command as text or YAML.
package ui

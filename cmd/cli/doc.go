// Package cli constructs the buildexec command-line interface, wiring the
// Cobra command hierarchy, the configuration loader and the diagnostic logger
// around the process-execution core.
package cli

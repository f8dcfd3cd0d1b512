// Package run exposes the process-execution core as the run and legacy-run commands.
package run

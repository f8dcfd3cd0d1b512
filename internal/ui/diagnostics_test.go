package ui_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/buildexec/internal/ui"
)

func TestDiagnosticConsoleSeverities(testInstance *testing.T) {
	observerCore, observedLogs := observer.New(zapcore.DebugLevel)
	console := ui.NewDiagnosticConsole(zap.New(observerCore, zap.WithFatalHook(zapcore.WriteThenPanic)))

	console.Warning("retrying repo sync")
	require.Panics(testInstance, func() {
		console.Die("unable to enter chroot")
	})

	entries := observedLogs.All()
	require.Len(testInstance, entries, 2)
	require.Equal(testInstance, zapcore.WarnLevel, entries[0].Level)
	require.Equal(testInstance, "retrying repo sync", entries[0].Message)
	require.Equal(testInstance, zapcore.FatalLevel, entries[1].Level)
	require.Equal(testInstance, "unable to enter chroot", entries[1].Message)
}

func TestDiagnosticConsoleToleratesNilLogger(testInstance *testing.T) {
	console := ui.NewDiagnosticConsole(nil)
	require.NotPanics(testInstance, func() {
		console.Warning("ignored")
	})
}

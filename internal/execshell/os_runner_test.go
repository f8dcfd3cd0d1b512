//go:build unix

package execshell_test

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/buildexec/internal/execshell"
)

const (
	testShellExecutableConstant  = "/bin/sh"
	testLargePayloadSizeConstant = 4 << 20
)

func shellInvocation(script string) execshell.PreparedCommand {
	return execshell.PreparedCommand{
		Executable: testShellExecutableConstant,
		Arguments:  []string{"-c", script},
	}
}

func TestOSCommandRunnerOutcomes(testInstance *testing.T) {
	testCases := []struct {
		name            string
		command         execshell.PreparedCommand
		expectedOutcome execshell.ProcessOutcome
	}{
		{
			name:            "echo_input",
			command:         execshell.PreparedCommand{Executable: "cat", StandardInput: []byte("hello\n"), CaptureStandardOutput: true},
			expectedOutcome: execshell.ProcessOutcome{StandardOutput: []byte("hello\n")},
		},
		{
			name:            "true_uncaptured",
			command:         shellInvocation("true"),
			expectedOutcome: execshell.ProcessOutcome{},
		},
		{
			name:            "false_exit_code",
			command:         shellInvocation("false"),
			expectedOutcome: execshell.ProcessOutcome{ExitCode: 1},
		},
		{
			name: "separate_streams",
			command: execshell.PreparedCommand{
				Executable:            testShellExecutableConstant,
				Arguments:             []string{"-c", "printf out; printf err >&2; exit 7"},
				CaptureStandardOutput: true,
				CaptureStandardError:  true,
			},
			expectedOutcome: execshell.ProcessOutcome{StandardOutput: []byte("out"), StandardError: []byte("err"), ExitCode: 7},
		},
		{
			name: "captured_empty_output",
			command: execshell.PreparedCommand{
				Executable:            testShellExecutableConstant,
				Arguments:             []string{"-c", "exit 0"},
				CaptureStandardOutput: true,
			},
			expectedOutcome: execshell.ProcessOutcome{StandardOutput: []byte{}},
		},
		{
			name: "child_ignores_input",
			command: execshell.PreparedCommand{
				Executable:    testShellExecutableConstant,
				Arguments:     []string{"-c", "exit 0"},
				StandardInput: bytes.Repeat([]byte("x"), testLargePayloadSizeConstant),
			},
			expectedOutcome: execshell.ProcessOutcome{},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			runner := execshell.NewOSCommandRunner()
			outcome, runError := runner.Run(context.Background(), testCase.command)
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedOutcome, outcome)
		})
	}
}

func TestOSCommandRunnerLargeStreamsDoNotDeadlock(testInstance *testing.T) {
	payload := bytes.Repeat([]byte("0123456789abcdef"), testLargePayloadSizeConstant/16)

	runner := execshell.NewOSCommandRunner()
	outcome, runError := runner.Run(context.Background(), execshell.PreparedCommand{
		Executable:            testShellExecutableConstant,
		Arguments:             []string{"-c", "cat; cat /dev/null >&2"},
		StandardInput:         payload,
		CaptureStandardOutput: true,
		CaptureStandardError:  true,
	})

	require.NoError(testInstance, runError)
	require.Zero(testInstance, outcome.ExitCode)
	require.Equal(testInstance, len(payload), len(outcome.StandardOutput))
	require.True(testInstance, bytes.Equal(payload, outcome.StandardOutput))
}

func TestOSCommandRunnerEnvironmentAndDirectory(testInstance *testing.T) {
	workingDirectory, resolveError := filepath.EvalSymlinks(testInstance.TempDir())
	require.NoError(testInstance, resolveError)

	runner := execshell.NewOSCommandRunner()
	outcome, runError := runner.Run(context.Background(), execshell.PreparedCommand{
		Executable:            testShellExecutableConstant,
		Arguments:             []string{"-c", "printf '%s|%s|' \"$BOARD\" \"${HOME:-unset}\"; pwd -P"},
		WorkingDirectory:      workingDirectory,
		Environment:           []string{"BOARD=amd64-generic"},
		CaptureStandardOutput: true,
	})

	require.NoError(testInstance, runError)
	require.Equal(testInstance, "amd64-generic|unset|"+workingDirectory+"\n", string(outcome.StandardOutput))
}

func TestOSCommandRunnerMissingExecutable(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()
	_, runError := runner.Run(context.Background(), execshell.PreparedCommand{Executable: "buildexec-definitely-missing-binary"})
	require.Error(testInstance, runError)
	require.ErrorIs(testInstance, runError, exec.ErrNotFound)
}

func TestOSCommandRunnerSignalTermination(testInstance *testing.T) {
	runner := execshell.NewOSCommandRunner()
	outcome, runError := runner.Run(context.Background(), shellInvocation("kill -TERM $$"))
	require.NoError(testInstance, runError)
	require.Equal(testInstance, execshell.UnavailableExitCode, outcome.ExitCode)
}

func TestShellExecutorAgainstOperatingSystem(testInstance *testing.T) {
	executor, observedLogs := newObservedExecutor(testInstance, execshell.NewOSCommandRunner(), execshell.ExecutorSettings{})

	command := execshell.CommandSpec{Form: execshell.CommandFormShellString, ShellString: "tr a-z A-Z", UseShell: true}
	result, executionError := executor.Execute(context.Background(), command, execshell.ExecutionOptions{
		StandardInput:         []byte("chromiumos\n"),
		CaptureStandardOutput: true,
		ReportExitCode:        true,
	})
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, []byte("CHROMIUMOS\n"), result.StandardOutput)
	require.Nil(testInstance, result.StandardError)
	require.True(testInstance, result.ExitCodeRecorded)

	failing := execshell.CommandSpec{Form: execshell.CommandFormShellString, ShellString: "echo broken >&2; exit 3", UseShell: true}
	_, failureError := executor.Execute(context.Background(), failing, execshell.ExecutionOptions{CaptureStandardError: true})
	require.Error(testInstance, failureError)
	require.Equal(testInstance, "Command \"echo broken >&2; exit 3\" failed.\nbroken\n", failureError.Error())
	require.Zero(testInstance, warningCount(observedLogs))
}

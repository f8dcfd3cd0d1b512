package sourcetree_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/buildexec/internal/execshell"
	"github.com/temirov/buildexec/internal/sourcetree"
)

type versionCommandExecutor struct {
	standardOutput string
	commands       []execshell.CommandSpec
	options        []execshell.ExecutionOptions
}

func (executor *versionCommandExecutor) Execute(executionContext context.Context, command execshell.CommandSpec, options execshell.ExecutionOptions) (execshell.CommandResult, error) {
	executor.commands = append(executor.commands, command)
	executor.options = append(executor.options, options)
	return execshell.CommandResult{Command: command, StandardOutput: []byte(executor.standardOutput)}, nil
}

func executeSourceTreeCommand(testInstance *testing.T, command *cobra.Command, arguments ...string) (string, error) {
	testInstance.Helper()
	outputBuffer := &bytes.Buffer{}
	command.SetOut(outputBuffer)
	command.SetErr(&bytes.Buffer{})
	command.SilenceUsage = true
	command.SilenceErrors = true
	command.SetArgs(arguments)
	executionError := command.ExecuteContext(context.Background())
	return outputBuffer.String(), executionError
}

func TestFilesCommandListsMatchingFiles(testInstance *testing.T) {
	baseDirectory := testInstance.TempDir()
	require.NoError(testInstance, os.MkdirAll(filepath.Join(baseDirectory, "overlay", "files"), 0o755))
	require.NoError(testInstance, os.WriteFile(filepath.Join(baseDirectory, "build_image"), []byte("#!/bin/sh\n"), 0o600))
	require.NoError(testInstance, os.WriteFile(filepath.Join(baseDirectory, "overlay", "files", "make.conf"), []byte(""), 0o600))
	require.NoError(testInstance, os.WriteFile(filepath.Join(baseDirectory, "overlay", "package.conf"), []byte(""), 0o600))

	testCases := []struct {
		name           string
		arguments      []string
		expectedOutput string
	}{
		{
			name:      "all_files",
			arguments: []string{baseDirectory},
			expectedOutput: filepath.Join(baseDirectory, "build_image") + "\n" +
				filepath.Join(baseDirectory, "overlay", "files", "make.conf") + "\n" +
				filepath.Join(baseDirectory, "overlay", "package.conf") + "\n",
		},
		{
			name:      "name_pattern",
			arguments: []string{baseDirectory, "--match", "*.conf"},
			expectedOutput: filepath.Join(baseDirectory, "overlay", "files", "make.conf") + "\n" +
				filepath.Join(baseDirectory, "overlay", "package.conf") + "\n",
		},
		{
			name:           "relative_pattern",
			arguments:      []string{baseDirectory, "--match", "overlay/*.conf"},
			expectedOutput: filepath.Join(baseDirectory, "overlay", "package.conf") + "\n",
		},
		{
			name:           "no_match",
			arguments:      []string{baseDirectory, "--match", "*.ebuild"},
			expectedOutput: "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command, buildError := (&sourcetree.FilesCommandBuilder{}).Build()
			require.NoError(testInstance, buildError)

			output, executionError := executeSourceTreeCommand(testInstance, command, testCase.arguments...)
			require.NoError(testInstance, executionError)
			require.Equal(testInstance, testCase.expectedOutput, output)
		})
	}
}

func TestFilesCommandRejectsMissingDirectory(testInstance *testing.T) {
	command, buildError := (&sourcetree.FilesCommandBuilder{}).Build()
	require.NoError(testInstance, buildError)

	_, executionError := executeSourceTreeCommand(testInstance, command, filepath.Join(testInstance.TempDir(), "missing"))
	require.Error(testInstance, executionError)
}

func TestImageDirectoryCommand(testInstance *testing.T) {
	checkoutRoot := testInstance.TempDir()
	scriptsDirectory := filepath.Join(checkoutRoot, "src", "scripts")
	require.NoError(testInstance, os.MkdirAll(scriptsDirectory, 0o755))

	executor := &versionCommandExecutor{standardOutput: "CHROMEOS_VERSION_STRING=0.9.74.2010_06_30_1427\n"}
	command, buildError := (&sourcetree.ImageDirectoryCommandBuilder{
		LoggerProvider: func() *zap.Logger { return zap.NewNop() },
		Executor:       executor,
	}).Build()
	require.NoError(testInstance, buildError)

	output, executionError := executeSourceTreeCommand(testInstance, command, "--board", "x86-generic", "--source-root", scriptsDirectory, "--enter-chroot", "--", "./chromeos_version.sh")
	require.NoError(testInstance, executionError)
	require.Equal(testInstance, filepath.Join(checkoutRoot, "src", "build", "images", "x86-generic", "0.9.74.2010_06_30_1427-a1")+"\n", output)

	expectedCommand := execshell.NewArgumentListCommand("./chromeos_version.sh")
	expectedCommand.EnterChroot = true
	require.Equal(testInstance, []execshell.CommandSpec{expectedCommand}, executor.commands)
	require.Equal(testInstance, []execshell.ExecutionOptions{{CaptureStandardOutput: true}}, executor.options)
}

func TestImageDirectoryCommandErrors(testInstance *testing.T) {
	checkoutRoot := testInstance.TempDir()
	scriptsDirectory := filepath.Join(checkoutRoot, "src", "scripts")
	require.NoError(testInstance, os.MkdirAll(scriptsDirectory, 0o755))

	testCases := []struct {
		name           string
		arguments      []string
		versionOutput  string
		expectedError  error
		expectedDetail string
	}{
		{
			name:           "missing_board",
			arguments:      []string{"--source-root", scriptsDirectory, "--", "./chromeos_version.sh"},
			expectedDetail: "--board is required",
		},
		{
			name:           "missing_version_command",
			arguments:      []string{"--board", "x86-generic", "--source-root", scriptsDirectory},
			expectedDetail: "a version command is required after --",
		},
		{
			name:          "outside_source_tree",
			arguments:     []string{"--board", "x86-generic", "--source-root", checkoutRoot, "--", "./chromeos_version.sh"},
			expectedError: sourcetree.ErrSourceRootNotFound,
		},
		{
			name:          "version_missing_from_output",
			arguments:     []string{"--board", "x86-generic", "--source-root", scriptsDirectory, "--", "./chromeos_version.sh"},
			versionOutput: "CHROMEOS_BUILD=0\n",
			expectedError: sourcetree.ErrVersionNotFound,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			command, buildError := (&sourcetree.ImageDirectoryCommandBuilder{Executor: &versionCommandExecutor{standardOutput: testCase.versionOutput}}).Build()
			require.NoError(testInstance, buildError)

			output, executionError := executeSourceTreeCommand(testInstance, command, testCase.arguments...)
			require.Error(testInstance, executionError)
			require.Empty(testInstance, output)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, executionError, testCase.expectedError)
				return
			}
			require.EqualError(testInstance, executionError, testCase.expectedDetail)
		})
	}
}

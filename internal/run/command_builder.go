package run

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/buildexec/internal/execshell"
	"github.com/temirov/buildexec/internal/filesystem"
	"github.com/temirov/buildexec/internal/ui"
	"github.com/temirov/buildexec/internal/utils/flags"
)

const (
	environmentAssignmentSeparatorConstant    = "="
	commandArgumentsJoinSeparatorConstant     = " "
	missingCommandMessageConstant             = "a command to run is required after --"
	invalidEnvironmentEntryTemplateConstant   = "invalid --env entry %q: expected KEY=VALUE"
	executorConstructionErrorTemplateConstant = "unable to construct executor: %w"
)

var errMissingCommand = errors.New(missingCommandMessageConstant)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the execution defaults loaded from configuration.
type ConfigurationProvider func() Configuration

// CommandExecutor runs commands through the execution core.
type CommandExecutor interface {
	Execute(executionContext context.Context, command execshell.CommandSpec, options execshell.ExecutionOptions) (execshell.CommandResult, error)
	RunLegacyOutput(executionContext context.Context, command execshell.CommandSpec, options execshell.ExecutionOptions) ([]byte, error)
	RunLegacyExitCode(executionContext context.Context, command execshell.CommandSpec, options execshell.ExecutionOptions) (int, error)
}

// commandSupport holds the dependencies shared by the run and legacy-run builders.
type commandSupport struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              CommandExecutor
}

func (support commandSupport) resolveLogger() *zap.Logger {
	if support.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := support.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (support commandSupport) resolveConfiguration() Configuration {
	if support.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return support.ConfigurationProvider().sanitize()
}

func (support commandSupport) resolveExecutor(logger *zap.Logger, configuration Configuration) (CommandExecutor, error) {
	if support.Executor != nil {
		return support.Executor, nil
	}

	shellExecutor, creationError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), execshell.ExecutorSettings{
		ShellPath:         configuration.ShellPath,
		ChrootEntryScript: configuration.ChrootEntryScript,
		EventObserver:     ui.NewConsoleCommandEventLogger(logger),
	})
	if creationError != nil {
		return nil, fmt.Errorf(executorConstructionErrorTemplateConstant, creationError)
	}

	return shellExecutor, nil
}

// buildCommandSpec maps positional arguments and flags to a command description. With --shell the
// arguments are joined into one shell string; otherwise they form the argument list.
func buildCommandSpec(arguments []string, values *flags.ExecutionFlagValues, homeExpander *filesystem.HomeExpander) (execshell.CommandSpec, error) {
	if len(arguments) == 0 {
		return execshell.CommandSpec{}, errMissingCommand
	}

	var command execshell.CommandSpec
	if values.UseShell {
		command = execshell.NewShellStringCommand(strings.Join(arguments, commandArgumentsJoinSeparatorConstant))
		command.UseShell = true
	} else {
		command = execshell.NewArgumentListCommand(arguments...)
	}

	environment, environmentError := parseEnvironment(values.Environment)
	if environmentError != nil {
		return execshell.CommandSpec{}, environmentError
	}

	command.Environment = environment
	command.WorkingDirectory = homeExpander.Expand(strings.TrimSpace(values.WorkingDirectory))
	command.EnterChroot = values.EnterChroot
	return command, nil
}

// parseEnvironment returns nil for no entries so the child inherits the parent environment.
func parseEnvironment(entries []string) (map[string]string, error) {
	if len(entries) == 0 {
		return nil, nil
	}

	environment := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, found := strings.Cut(entry, environmentAssignmentSeparatorConstant)
		if !found || len(strings.TrimSpace(key)) == 0 {
			return nil, fmt.Errorf(invalidEnvironmentEntryTemplateConstant, entry)
		}
		environment[key] = value
	}
	return environment, nil
}

// buildExecutionOptions merges flag values over configured defaults; configuration wins unless the flag was set.
func buildExecutionOptions(command *cobra.Command, values *flags.ExecutionFlagValues, configuration Configuration) execshell.ExecutionOptions {
	options := execshell.ExecutionOptions{
		CaptureStandardOutput: values.CaptureOutput,
		CaptureStandardError:  values.CaptureError,
		Announce:              configuration.Announce,
		ErrorOK:               values.ErrorOK,
		ErrorMessage:          values.ErrorMessage,
		SuppressInterrupt:     configuration.SuppressInterrupt,
		ReportExitCode:        values.ReportExitCode,
	}
	if len(values.Input) > 0 {
		options.StandardInput = []byte(values.Input)
	}
	if command.Flags().Changed(flags.AnnounceFlagName) {
		options.Announce = values.Announce
	}
	if command.Flags().Changed(flags.SuppressInterruptFlagName) {
		options.SuppressInterrupt = values.SuppressInterrupt
	}
	return options
}

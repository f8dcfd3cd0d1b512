package run

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/buildexec/internal/filesystem"
	"github.com/temirov/buildexec/internal/utils/flags"
)

const (
	legacyCommandUseConstant              = "legacy-run [flags] -- <command> [arguments...]"
	legacyCommandShortDescriptionConstant = "Run a command with retries and print its output or exit code"
	legacyCommandLongDescriptionConstant  = "legacy-run retries a failing command up to --retries times and prints either its captured standard output or its final exit code."
	retriesFlagNameConstant               = "retries"
	retriesFlagDescriptionConstant        = "Additional attempts after a failure (defaults to execution.retry_count)"
	resultFlagNameConstant                = "result"
	resultFlagDescriptionConstant         = "Value printed after the command finishes"
	// LegacyResultOutput prints the captured standard output.
	LegacyResultOutput = "output"
	// LegacyResultExitCode prints the final exit code.
	LegacyResultExitCode            = "exit-code"
	exitCodeLineTemplateConstant    = "%d\n"
	negativeRetriesTemplateConstant = "--retries must not be negative: %d"
)

var legacyResultChoices = []string{LegacyResultOutput, LegacyResultExitCode}

// LegacyCommandBuilder assembles the legacy-run command.
type LegacyCommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              CommandExecutor
}

// Build constructs the legacy-run command.
func (builder *LegacyCommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   legacyCommandUseConstant,
		Short: legacyCommandShortDescriptionConstant,
		Long:  legacyCommandLongDescriptionConstant,
	}

	executionValues := flags.BindExecutionFlags(command, flags.ExecutionFlagValues{Announce: true})
	command.Flags().Int(retriesFlagNameConstant, 0, retriesFlagDescriptionConstant)
	resultShape := LegacyResultOutput
	flags.AddChoiceFlag(command.Flags(), &resultShape, resultFlagNameConstant, LegacyResultOutput, legacyResultChoices, resultFlagDescriptionConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, arguments, executionValues, resultShape)
	}

	return command, nil
}

func (builder *LegacyCommandBuilder) run(command *cobra.Command, arguments []string, executionValues *flags.ExecutionFlagValues, resultShape string) error {
	support := commandSupport{LoggerProvider: builder.LoggerProvider, ConfigurationProvider: builder.ConfigurationProvider, Executor: builder.Executor}
	configuration := support.resolveConfiguration()

	commandSpec, specError := buildCommandSpec(arguments, executionValues, filesystem.NewHomeExpander())
	if specError != nil {
		return specError
	}

	options := buildExecutionOptions(command, executionValues, configuration)
	options.RetryCount = configuration.RetryCount
	if command.Flags().Changed(retriesFlagNameConstant) {
		retries, _ := command.Flags().GetInt(retriesFlagNameConstant)
		if retries < 0 {
			return fmt.Errorf(negativeRetriesTemplateConstant, retries)
		}
		options.RetryCount = retries
	}

	logger := support.resolveLogger()
	executor, executorError := support.resolveExecutor(logger, configuration)
	if executorError != nil {
		return executorError
	}

	if resultShape == LegacyResultExitCode {
		exitCode, executionError := executor.RunLegacyExitCode(command.Context(), commandSpec, options)
		if executionError != nil {
			return executionError
		}
		_, writeError := fmt.Fprintf(command.OutOrStdout(), exitCodeLineTemplateConstant, exitCode)
		return writeError
	}

	standardOutput, executionError := executor.RunLegacyOutput(command.Context(), commandSpec, options)
	if executionError != nil {
		return executionError
	}
	if len(standardOutput) == 0 {
		return nil
	}
	_, writeError := command.OutOrStdout().Write(standardOutput)
	return writeError
}

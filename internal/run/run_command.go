package run

import (
	"github.com/spf13/cobra"

	"github.com/temirov/buildexec/internal/execshell"
	"github.com/temirov/buildexec/internal/filesystem"
	"github.com/temirov/buildexec/internal/ui"
	"github.com/temirov/buildexec/internal/utils/flags"
)

const (
	runCommandUseConstant              = "run [flags] -- <command> [arguments...]"
	runCommandShortDescriptionConstant = "Run a command once and report its result"
	runCommandLongDescriptionConstant  = "run launches a command once, optionally inside the build chroot or through the shell, and prints a report of the captured streams and exit code."
	outputFlagNameConstant             = "output"
	outputFlagDescriptionConstant      = "Format of the result report"
)

var resultFormatChoices = []string{ui.ResultFormatText, ui.ResultFormatYAML}

// CommandBuilder assembles the run command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	Executor              CommandExecutor
}

// Build constructs the run command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:   runCommandUseConstant,
		Short: runCommandShortDescriptionConstant,
		Long:  runCommandLongDescriptionConstant,
	}

	executionValues := flags.BindExecutionFlags(command, flags.ExecutionFlagValues{Announce: true})
	outputFormat := ui.ResultFormatText
	flags.AddChoiceFlag(command.Flags(), &outputFormat, outputFlagNameConstant, ui.ResultFormatText, resultFormatChoices, outputFlagDescriptionConstant)

	command.RunE = func(command *cobra.Command, arguments []string) error {
		return builder.run(command, arguments, executionValues, outputFormat)
	}

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string, executionValues *flags.ExecutionFlagValues, outputFormat string) error {
	support := commandSupport{LoggerProvider: builder.LoggerProvider, ConfigurationProvider: builder.ConfigurationProvider, Executor: builder.Executor}
	configuration := support.resolveConfiguration()

	commandSpec, specError := buildCommandSpec(arguments, executionValues, filesystem.NewHomeExpander())
	if specError != nil {
		return specError
	}
	options := buildExecutionOptions(command, executionValues, configuration)

	logger := support.resolveLogger()
	executor, executorError := support.resolveExecutor(logger, configuration)
	if executorError != nil {
		return executorError
	}

	result, executionError := executor.Execute(command.Context(), commandSpec, options)
	if executionError != nil {
		return executionError
	}

	if !shouldPrintReport(command, options) {
		return nil
	}

	printer, printerError := ui.NewResultPrinter(command.OutOrStdout(), outputFormat)
	if printerError != nil {
		return printerError
	}
	return printer.Print(result)
}

// shouldPrintReport is false for plain passthrough runs so the child's own output stays unadorned.
func shouldPrintReport(command *cobra.Command, options execshell.ExecutionOptions) bool {
	if command.Flags().Changed(outputFlagNameConstant) {
		return true
	}
	return options.CaptureStandardOutput || options.CaptureStandardError || options.ReportExitCode
}

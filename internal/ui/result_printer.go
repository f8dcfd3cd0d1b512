package ui

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/temirov/buildexec/internal/execshell"
)

// Result report formats.
const (
	ResultFormatText = "text"
	ResultFormatYAML = "yaml"
)

const (
	unsupportedResultFormatTemplateConstant = "unsupported result format: %s"
	textCommandLineTemplateConstant         = "command: %s\n"
	textExitCodeLineTemplateConstant        = "exit code: %d\n"
	textSectionHeaderTemplateConstant       = "--- %s ---\n"
	textStandardOutputLabelConstant         = "stdout"
	textStandardErrorLabelConstant          = "stderr"
)

// ResultReport is the serialized view of a CommandResult.
type ResultReport struct {
	Command          string   `yaml:"command"`
	Arguments        []string `yaml:"arguments,omitempty"`
	WorkingDirectory string   `yaml:"working_directory,omitempty"`
	ExitCode         *int     `yaml:"exit_code,omitempty"`
	StandardOutput   *string  `yaml:"stdout,omitempty"`
	StandardError    *string  `yaml:"stderr,omitempty"`
}

// NewResultReport converts a CommandResult; uncaptured streams and unrecorded exit codes are omitted.
func NewResultReport(result execshell.CommandResult) ResultReport {
	report := ResultReport{
		Command:          result.Command.Render(),
		WorkingDirectory: result.Command.WorkingDirectory,
	}
	if result.Command.Form == execshell.CommandFormArgumentList {
		report.Arguments = append([]string{}, result.Command.Arguments...)
	}
	if result.ExitCodeRecorded {
		exitCode := result.ExitCode
		report.ExitCode = &exitCode
	}
	if result.StandardOutput != nil {
		standardOutput := string(result.StandardOutput)
		report.StandardOutput = &standardOutput
	}
	if result.StandardError != nil {
		standardError := string(result.StandardError)
		report.StandardError = &standardError
	}
	return report
}

// ResultPrinter writes result reports.
type ResultPrinter struct {
	output io.Writer
	format string
}

// NewResultPrinter constructs a printer for the given format.
func NewResultPrinter(output io.Writer, format string) (*ResultPrinter, error) {
	switch format {
	case ResultFormatText, ResultFormatYAML:
		return &ResultPrinter{output: output, format: format}, nil
	default:
		return nil, fmt.Errorf(unsupportedResultFormatTemplateConstant, format)
	}
}

// Print writes the report of result.
func (printer *ResultPrinter) Print(result execshell.CommandResult) error {
	report := NewResultReport(result)
	if printer.format == ResultFormatYAML {
		encoder := yaml.NewEncoder(printer.output)
		encoder.SetIndent(2)
		if encodeError := encoder.Encode(report); encodeError != nil {
			return encodeError
		}
		return encoder.Close()
	}
	return printer.printText(report)
}

func (printer *ResultPrinter) printText(report ResultReport) error {
	if _, writeError := fmt.Fprintf(printer.output, textCommandLineTemplateConstant, report.Command); writeError != nil {
		return writeError
	}
	if report.ExitCode != nil {
		if _, writeError := fmt.Fprintf(printer.output, textExitCodeLineTemplateConstant, *report.ExitCode); writeError != nil {
			return writeError
		}
	}
	if writeError := printer.printSection(textStandardOutputLabelConstant, report.StandardOutput); writeError != nil {
		return writeError
	}
	return printer.printSection(textStandardErrorLabelConstant, report.StandardError)
}

func (printer *ResultPrinter) printSection(label string, content *string) error {
	if content == nil {
		return nil
	}
	if _, writeError := fmt.Fprintf(printer.output, textSectionHeaderTemplateConstant, label); writeError != nil {
		return writeError
	}
	_, writeError := io.WriteString(printer.output, *content)
	return writeError
}

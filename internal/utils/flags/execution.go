// Package flags provides helpers for binding standardized execution flags to Cobra commands.
package flags

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flag names shared by the commands that launch child processes.
const (
	AnnounceFlagName          = "announce"
	ErrorOKFlagName           = "error-ok"
	ErrorMessageFlagName      = "error-message"
	SuppressInterruptFlagName = "suppress-interrupt"
	CaptureOutputFlagName     = "capture-output"
	CaptureErrorFlagName      = "capture-error"
	ReportExitCodeFlagName    = "report-exit-code"
	UseShellFlagName          = "shell"
	EnterChrootFlagName       = "enter-chroot"
	WorkingDirectoryFlagName  = "cwd"
	EnvironmentFlagName       = "env"
	InputFlagName             = "input"
)

const (
	announceFlagUsage          = "Print the command before running it"
	errorOKFlagUsage           = "Downgrade a failing command to a warning"
	errorMessageFlagUsage      = "Message reported instead of the captured output when the command fails"
	suppressInterruptFlagUsage = "Keep Ctrl-C from terminating buildexec while the command runs"
	captureOutputFlagUsage     = "Capture standard output instead of passing it through"
	captureErrorFlagUsage      = "Capture standard error instead of passing it through"
	reportExitCodeFlagUsage    = "Record the exit code in the result"
	useShellFlagUsage          = "Run the command through the shell"
	enterChrootFlagUsage       = "Run the command inside the build chroot"
	workingDirectoryFlagUsage  = "Working directory of the command"
	environmentFlagUsage       = "KEY=VALUE entry of a replacement environment (repeatable)"
	inputFlagUsage             = "Text piped to the command's standard input"
)

// ExecutionFlagValues stores the parsed execution flags.
type ExecutionFlagValues struct {
	Announce          bool
	ErrorOK           bool
	ErrorMessage      string
	SuppressInterrupt bool
	CaptureOutput     bool
	CaptureError      bool
	ReportExitCode    bool
	UseShell          bool
	EnterChroot       bool
	WorkingDirectory  string
	Environment       []string
	Input             string
}

// BindExecutionFlags attaches the execution flags to the command, seeded with defaults.
func BindExecutionFlags(command *cobra.Command, defaults ExecutionFlagValues) *ExecutionFlagValues {
	values := defaults
	values.Environment = append([]string(nil), defaults.Environment...)
	if command == nil {
		return &values
	}

	flagSet := command.Flags()
	bindToggles(flagSet, []toggleBinding{
		{target: &values.Announce, name: AnnounceFlagName, defaultValue: defaults.Announce, usage: announceFlagUsage},
		{target: &values.ErrorOK, name: ErrorOKFlagName, defaultValue: defaults.ErrorOK, usage: errorOKFlagUsage},
		{target: &values.SuppressInterrupt, name: SuppressInterruptFlagName, defaultValue: defaults.SuppressInterrupt, usage: suppressInterruptFlagUsage},
		{target: &values.CaptureOutput, name: CaptureOutputFlagName, defaultValue: defaults.CaptureOutput, usage: captureOutputFlagUsage},
		{target: &values.CaptureError, name: CaptureErrorFlagName, defaultValue: defaults.CaptureError, usage: captureErrorFlagUsage},
		{target: &values.ReportExitCode, name: ReportExitCodeFlagName, defaultValue: defaults.ReportExitCode, usage: reportExitCodeFlagUsage},
		{target: &values.UseShell, name: UseShellFlagName, defaultValue: defaults.UseShell, usage: useShellFlagUsage},
		{target: &values.EnterChroot, name: EnterChrootFlagName, defaultValue: defaults.EnterChroot, usage: enterChrootFlagUsage},
	})

	flagSet.StringVar(&values.ErrorMessage, ErrorMessageFlagName, defaults.ErrorMessage, errorMessageFlagUsage)
	flagSet.StringVar(&values.WorkingDirectory, WorkingDirectoryFlagName, defaults.WorkingDirectory, workingDirectoryFlagUsage)
	flagSet.StringArrayVar(&values.Environment, EnvironmentFlagName, values.Environment, environmentFlagUsage)
	flagSet.StringVar(&values.Input, InputFlagName, defaults.Input, inputFlagUsage)

	return &values
}

type toggleBinding struct {
	target       *bool
	name         string
	defaultValue bool
	usage        string
}

func bindToggles(flagSet *pflag.FlagSet, bindings []toggleBinding) {
	for _, binding := range bindings {
		AddToggleFlag(flagSet, binding.target, binding.name, "", binding.defaultValue, binding.usage)
	}
}

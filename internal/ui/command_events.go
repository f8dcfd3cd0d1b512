package ui

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/buildexec/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "Running %s (attempt %d)"
	commandCompletedMessageTemplateConstant        = "Completed %s (attempt %d)"
	commandFailedExitCodeMessageTemplateConstant   = "%s exited with code %d (attempt %d)"
	commandExecutionFailureMessageTemplateConstant = "%s could not run (attempt %d): %s"
	workingDirectorySuffixTemplateConstant         = " in %s"
	chrootSuffixConstant                           = " [chroot]"
	unknownFailureMessageConstant                  = "unknown error"
)

// CommandEventFormatter builds human-readable messages for execution attempts.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the message describing an attempt about to spawn.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.CommandSpec, attemptNumber int) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, formatter.formatCommandLabel(command), attemptNumber)
}

// BuildCompletedMessage formats the message describing a terminated child.
func (formatter CommandEventFormatter) BuildCompletedMessage(command execshell.CommandSpec, attemptNumber int, outcome execshell.ProcessOutcome) string {
	if outcome.ExitCode == 0 {
		return fmt.Sprintf(commandCompletedMessageTemplateConstant, formatter.formatCommandLabel(command), attemptNumber)
	}
	return fmt.Sprintf(commandFailedExitCodeMessageTemplateConstant, formatter.formatCommandLabel(command), outcome.ExitCode, attemptNumber)
}

// BuildExecutionFailureMessage formats the message describing a child that could not be started.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.CommandSpec, attemptNumber int, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, formatter.formatCommandLabel(command), attemptNumber, failureMessage)
}

func (formatter CommandEventFormatter) formatCommandLabel(command execshell.CommandSpec) string {
	label := command.Render()
	if trimmedWorkingDirectory := strings.TrimSpace(command.WorkingDirectory); len(trimmedWorkingDirectory) > 0 {
		label += fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
	}
	if command.EnterChroot {
		label += chrootSuffixConstant
	}
	return label
}

// ConsoleCommandEventLogger traces execution attempts at debug level.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandEventFormatter
}

// NewConsoleCommandEventLogger constructs an event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: CommandEventFormatter{}}
}

// CommandStarted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.CommandSpec, attemptNumber int) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Debug(eventLogger.formatter.BuildStartedMessage(command, attemptNumber))
}

// CommandCompleted implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.CommandSpec, attemptNumber int, outcome execshell.ProcessOutcome) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Debug(eventLogger.formatter.BuildCompletedMessage(command, attemptNumber, outcome))
}

// CommandExecutionFailed implements execshell.CommandEventObserver.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.CommandSpec, attemptNumber int, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Debug(eventLogger.formatter.BuildExecutionFailureMessage(command, attemptNumber, failure))
}

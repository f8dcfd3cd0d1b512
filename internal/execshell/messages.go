package execshell

import (
	"fmt"
	"strings"
)

const (
	announcementTemplateConstant            = "RunCommand: %s"
	legacyAnnouncementTemplateConstant      = "RunCommand: %s in dir %s"
	legacyRetryAnnouncementTemplateConstant = "RunCommand: retrying %s in dir %s"
	failureTemplateConstant                 = "Command \"%s\" failed.\n%s"
	genericExitFailureTemplateConstant      = "command failed with exit code %d"
	genericSpawnFailureMessageConstant      = "command could not be started"
	currentDirectoryLabelConstant           = "."
)

// CommandMessageFormatter builds the human-readable diagnostic lines of the execution core.
type CommandMessageFormatter struct{}

// BuildAnnouncementMessage formats the trace emitted before a command runs.
func (formatter CommandMessageFormatter) BuildAnnouncementMessage(renderedCommand string) string {
	return fmt.Sprintf(announcementTemplateConstant, renderedCommand)
}

// BuildLegacyAnnouncementMessage formats the legacy trace, which also names the working directory.
func (formatter CommandMessageFormatter) BuildLegacyAnnouncementMessage(renderedCommand string, workingDirectory string) string {
	return fmt.Sprintf(legacyAnnouncementTemplateConstant, renderedCommand, formatter.describeWorkingDirectory(workingDirectory))
}

// BuildRetryMessage formats the trace emitted before a legacy retry.
func (formatter CommandMessageFormatter) BuildRetryMessage(renderedCommand string, workingDirectory string) string {
	return fmt.Sprintf(legacyRetryAnnouncementTemplateConstant, renderedCommand, formatter.describeWorkingDirectory(workingDirectory))
}

// BuildExitFailureMessage formats the failure text of a nonzero exit.
func (formatter CommandMessageFormatter) BuildExitFailureMessage(renderedCommand string, customMessage string, outcome ProcessOutcome) string {
	detail := firstNonEmptyDetail(customMessage, string(outcome.StandardError), string(outcome.StandardOutput))
	if len(detail) == 0 {
		detail = fmt.Sprintf(genericExitFailureTemplateConstant, outcome.ExitCode)
	}
	return fmt.Sprintf(failureTemplateConstant, renderedCommand, detail)
}

// BuildSpawnFailureMessage formats the failure text of a child that could not be started.
func (formatter CommandMessageFormatter) BuildSpawnFailureMessage(renderedCommand string, customMessage string, failure error) string {
	failureDetail := ""
	if failure != nil {
		failureDetail = failure.Error()
	}
	detail := firstNonEmptyDetail(customMessage, failureDetail)
	if len(detail) == 0 {
		detail = genericSpawnFailureMessageConstant
	}
	return fmt.Sprintf(failureTemplateConstant, renderedCommand, detail)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(workingDirectory string) string {
	trimmedWorkingDirectory := strings.TrimSpace(workingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return currentDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

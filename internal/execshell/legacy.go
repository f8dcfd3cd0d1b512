package execshell

import (
	"context"
	"errors"
)

type legacyResultShape int

const (
	legacyResultShapeOutput legacyResultShape = iota
	legacyResultShapeExitCode
)

// RunLegacyOutput runs the command with up to options.RetryCount retries and returns its captured
// standard output, which is nil unless options.CaptureStandardOutput is set.
func (executor *ShellExecutor) RunLegacyOutput(executionContext context.Context, command CommandSpec, options ExecutionOptions) ([]byte, error) {
	result, executionError := executor.runLegacy(executionContext, command, options, legacyResultShapeOutput)
	if executionError != nil {
		return nil, executionError
	}
	return result.StandardOutput, nil
}

// RunLegacyExitCode runs the command with up to options.RetryCount retries and returns its exit code.
//
// The final attempt's exit code is returned as a value even when nonzero. When the final attempt
// cannot be started and options.ErrorOK is set, UnavailableExitCode is returned.
func (executor *ShellExecutor) RunLegacyExitCode(executionContext context.Context, command CommandSpec, options ExecutionOptions) (int, error) {
	options.ReportExitCode = true
	result, executionError := executor.runLegacy(executionContext, command, options, legacyResultShapeExitCode)
	if executionError != nil {
		return UnavailableExitCode, executionError
	}
	if !result.ExitCodeRecorded {
		return UnavailableExitCode, nil
	}
	return result.ExitCode, nil
}

// runLegacy retries failed attempts without delay. Failures before the final attempt are always
// downgraded to warnings; options.ErrorOK only governs the final attempt. Retries assume the command
// is idempotent.
func (executor *ShellExecutor) runLegacy(executionContext context.Context, command CommandSpec, options ExecutionOptions, shape legacyResultShape) (CommandResult, error) {
	invocation, preparationError := executor.prepareInvocation(command, options)
	if preparationError != nil {
		return CommandResult{}, preparationError
	}

	normalizedContext := normalizeContext(executionContext)
	if options.Announce {
		executor.logger.Info(executor.messageFormatter.BuildLegacyAnnouncementMessage(invocation.renderedCommand, invocation.command.WorkingDirectory))
	}

	finalAttemptNumber := options.RetryCount + firstAttemptNumberConstant
	var lastResult CommandResult
	for attemptNumber := firstAttemptNumberConstant; attemptNumber <= finalAttemptNumber; attemptNumber++ {
		finalAttempt := attemptNumber == finalAttemptNumber

		result, attemptError := executor.runAttempt(normalizedContext, invocation, options, attemptNumber)
		lastResult = result
		if attemptError == nil {
			return result, nil
		}

		if finalAttempt && shape == legacyResultShapeExitCode && isNonZeroExit(attemptError) {
			return result, nil
		}

		if finalAttempt {
			if !options.ErrorOK {
				return CommandResult{}, attemptError
			}
			executor.logger.Warn(attemptError.Error())
			return result, nil
		}

		executor.logger.Warn(attemptError.Error())
		if options.Announce {
			executor.logger.Info(executor.messageFormatter.BuildRetryMessage(invocation.renderedCommand, invocation.command.WorkingDirectory))
		}
	}

	return lastResult, nil
}

func isNonZeroExit(err error) bool {
	var failedError CommandFailedError
	return errors.As(err, &failedError)
}

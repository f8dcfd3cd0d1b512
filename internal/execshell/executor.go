package execshell

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const (
	attemptStartedMessageConstant  = "command attempt started"
	attemptFinishedMessageConstant = "command attempt finished"
	attemptFailedMessageConstant   = "command attempt failed"
	logFieldExecutionIDConstant    = "execution_id"
	logFieldAttemptConstant        = "attempt"
	logFieldCommandConstant        = "command"
	logFieldExitCodeConstant       = "exit_code"
	firstAttemptNumberConstant     = 1
)

// ExecutorSettings tunes a ShellExecutor. Zero values select the defaults.
type ExecutorSettings struct {
	ShellPath              string
	ChrootEntryScript      string
	InterruptGuardAcquirer InterruptGuardAcquirer
	EventObserver          CommandEventObserver
}

// ShellExecutor runs commands through a CommandRunner and reports diagnostics through zap.
type ShellExecutor struct {
	logger                 *zap.Logger
	runner                 CommandRunner
	shellPath              string
	chrootEntryScript      string
	interruptGuardAcquirer InterruptGuardAcquirer
	eventObserver          CommandEventObserver
	messageFormatter       CommandMessageFormatter
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, settings ExecutorSettings) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:                 logger,
		runner:                 runner,
		shellPath:              strings.TrimSpace(settings.ShellPath),
		chrootEntryScript:      strings.TrimSpace(settings.ChrootEntryScript),
		interruptGuardAcquirer: settings.InterruptGuardAcquirer,
		eventObserver:          settings.EventObserver,
	}
	if len(executor.shellPath) == 0 {
		executor.shellPath = DefaultShellPath
	}
	if len(executor.chrootEntryScript) == 0 {
		executor.chrootEntryScript = DefaultChrootEntryScript
	}
	if executor.interruptGuardAcquirer == nil {
		executor.interruptGuardAcquirer = NewOSInterruptGuardAcquirer()
	}
	if executor.eventObserver == nil {
		executor.eventObserver = noopCommandEventObserver{}
	}

	return executor, nil
}

// Execute runs the command once and returns its result.
//
// A spawn failure or nonzero exit is returned as CommandExecutionError or CommandFailedError unless
// options.ErrorOK is set, in which case a single warning is logged and the result is returned.
// Invalid inputs are returned as CommandContractError regardless of options.ErrorOK.
func (executor *ShellExecutor) Execute(executionContext context.Context, command CommandSpec, options ExecutionOptions) (CommandResult, error) {
	if options.RetryCount > 0 {
		return CommandResult{}, newContractError(ErrRetryRequiresLegacyProtocol)
	}

	invocation, preparationError := executor.prepareInvocation(command, options)
	if preparationError != nil {
		return CommandResult{}, preparationError
	}

	if options.Announce {
		executor.logger.Info(executor.messageFormatter.BuildAnnouncementMessage(invocation.renderedCommand))
	}

	result, attemptError := executor.runAttempt(normalizeContext(executionContext), invocation, options, firstAttemptNumberConstant)
	if attemptError == nil {
		return result, nil
	}

	if options.ErrorOK {
		executor.logger.Warn(attemptError.Error())
		return result, nil
	}

	return CommandResult{}, attemptError
}

type commandInvocation struct {
	executionID     string
	command         CommandSpec
	renderedCommand string
	prepared        PreparedCommand
}

func (executor *ShellExecutor) prepareInvocation(command CommandSpec, options ExecutionOptions) (commandInvocation, error) {
	if command.IsEmpty() {
		return commandInvocation{}, newContractError(ErrEmptyCommand)
	}
	if options.RetryCount < 0 {
		return commandInvocation{}, newContractError(ErrNegativeRetryCount)
	}

	resolvedCommand := command.clone()
	if command.EnterChroot {
		resolvedCommand = command.WithChrootEntry(executor.chrootEntryScript)
	}

	executable, arguments := resolvedCommand.processArguments(executor.shellPath)

	return commandInvocation{
		executionID:     ulid.Make().String(),
		command:         resolvedCommand,
		renderedCommand: resolvedCommand.Render(),
		prepared: PreparedCommand{
			Executable:            executable,
			Arguments:             arguments,
			WorkingDirectory:      resolvedCommand.WorkingDirectory,
			Environment:           resolvedCommand.environmentAssignments(),
			StandardInput:         inputPayload(options),
			CaptureStandardOutput: options.CaptureStandardOutput,
			CaptureStandardError:  options.CaptureStandardError,
		},
	}, nil
}

// runAttempt performs one spawn-communicate-wait cycle and classifies its outcome without applying ErrorOK.
func (executor *ShellExecutor) runAttempt(executionContext context.Context, invocation commandInvocation, options ExecutionOptions, attemptNumber int) (CommandResult, error) {
	attemptLogger := executor.logger.With(
		zap.String(logFieldExecutionIDConstant, invocation.executionID),
		zap.Int(logFieldAttemptConstant, attemptNumber),
	)
	attemptLogger.Debug(attemptStartedMessageConstant, zap.String(logFieldCommandConstant, invocation.renderedCommand))
	executor.eventObserver.CommandStarted(invocation.command, attemptNumber)

	result := CommandResult{Command: invocation.command.clone()}

	outcome, runError := executor.spawn(executionContext, invocation.prepared, options.SuppressInterrupt)
	result.StandardOutput = capturedField(options.CaptureStandardOutput, outcome.StandardOutput)
	result.StandardError = capturedField(options.CaptureStandardError, outcome.StandardError)

	if runError != nil {
		attemptLogger.Debug(attemptFailedMessageConstant, zap.Error(runError))
		executor.eventObserver.CommandExecutionFailed(invocation.command, attemptNumber, runError)
		return result, CommandExecutionError{
			Command:         invocation.command.clone(),
			RenderedCommand: invocation.renderedCommand,
			Message:         executor.messageFormatter.BuildSpawnFailureMessage(invocation.renderedCommand, options.ErrorMessage, runError),
			Cause:           runError,
		}
	}

	attemptLogger.Debug(attemptFinishedMessageConstant, zap.Int(logFieldExitCodeConstant, outcome.ExitCode))
	executor.eventObserver.CommandCompleted(invocation.command, attemptNumber, outcome)

	if options.ReportExitCode {
		result.ExitCode = outcome.ExitCode
		result.ExitCodeRecorded = true
	}

	if outcome.ExitCode != 0 {
		return result, CommandFailedError{
			Command:         invocation.command.clone(),
			RenderedCommand: invocation.renderedCommand,
			Message:         executor.messageFormatter.BuildExitFailureMessage(invocation.renderedCommand, options.ErrorMessage, outcome),
			ExitCode:        outcome.ExitCode,
			StandardOutput:  result.StandardOutput,
			StandardError:   result.StandardError,
		}
	}

	return result, nil
}

// spawn runs the prepared command, holding the interrupt guard for exactly the lifetime of the child.
func (executor *ShellExecutor) spawn(executionContext context.Context, prepared PreparedCommand, suppressInterrupt bool) (ProcessOutcome, error) {
	if suppressInterrupt {
		guard := executor.interruptGuardAcquirer.Acquire()
		defer guard.Release()
	}
	return executor.runner.Run(executionContext, prepared)
}

func inputPayload(options ExecutionOptions) []byte {
	if !options.hasStandardInput() {
		return nil
	}
	return append([]byte{}, options.StandardInput...)
}

func capturedField(captured bool, content []byte) []byte {
	if !captured {
		return nil
	}
	return append([]byte{}, content...)
}

func normalizeContext(executionContext context.Context) context.Context {
	if executionContext == nil {
		return context.Background()
	}
	return executionContext
}

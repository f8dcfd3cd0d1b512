package execshell

import (
	"errors"
	"fmt"
	"strings"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	emptyCommandMessageConstant               = "command is empty"
	negativeRetryCountMessageConstant         = "retry count must not be negative"
	retryRequiresLegacyMessageConstant        = "retry count is only supported by the legacy calling convention"
	contractErrorTemplateConstant             = "invalid command invocation: %v"
)

var (
	// ErrLoggerNotConfigured indicates that the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates that the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
	// ErrEmptyCommand indicates a command without anything to execute.
	ErrEmptyCommand = errors.New(emptyCommandMessageConstant)
	// ErrNegativeRetryCount indicates a retry count below zero.
	ErrNegativeRetryCount = errors.New(negativeRetryCountMessageConstant)
	// ErrRetryRequiresLegacyProtocol indicates a retry count passed to Execute.
	ErrRetryRequiresLegacyProtocol = errors.New(retryRequiresLegacyMessageConstant)
)

// ErrorKind classifies execution failures.
type ErrorKind int

// Failure kinds.
const (
	ErrorKindSpawn ErrorKind = iota + 1
	ErrorKindNonZeroExit
	ErrorKindCallerContract
)

// String returns a readable kind label.
func (kind ErrorKind) String() string {
	switch kind {
	case ErrorKindSpawn:
		return "spawn"
	case ErrorKindNonZeroExit:
		return "nonzero_exit"
	case ErrorKindCallerContract:
		return "caller_contract"
	default:
		return "unknown"
	}
}

// CommandExecutionError reports that the child process could not be started or communicated with.
type CommandExecutionError struct {
	Command         CommandSpec
	RenderedCommand string
	Message         string
	Cause           error
}

// Error implements error.
func (executionError CommandExecutionError) Error() string {
	return executionError.Message
}

// Unwrap exposes the underlying operating system error.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// CommandFailedError reports that the child ran and exited with a nonzero status.
type CommandFailedError struct {
	Command         CommandSpec
	RenderedCommand string
	Message         string
	ExitCode        int
	StandardOutput  []byte
	StandardError   []byte
}

// Error implements error.
func (failedError CommandFailedError) Error() string {
	return failedError.Message
}

// CommandContractError reports an invalid combination of caller inputs.
type CommandContractError struct {
	Cause error
}

// Error implements error.
func (contractError CommandContractError) Error() string {
	return fmt.Sprintf(contractErrorTemplateConstant, contractError.Cause)
}

// Unwrap exposes the violated sentinel.
func (contractError CommandContractError) Unwrap() error {
	return contractError.Cause
}

// KindOf reports the failure kind carried by err.
func KindOf(err error) (ErrorKind, bool) {
	if err == nil {
		return 0, false
	}

	var executionError CommandExecutionError
	if errors.As(err, &executionError) {
		return ErrorKindSpawn, true
	}

	var failedError CommandFailedError
	if errors.As(err, &failedError) {
		return ErrorKindNonZeroExit, true
	}

	var contractError CommandContractError
	if errors.As(err, &contractError) {
		return ErrorKindCallerContract, true
	}

	return 0, false
}

func newContractError(cause error) CommandContractError {
	return CommandContractError{Cause: cause}
}

func firstNonEmptyDetail(candidates ...string) string {
	for _, candidate := range candidates {
		if len(strings.TrimSpace(candidate)) > 0 {
			return candidate
		}
	}
	return ""
}

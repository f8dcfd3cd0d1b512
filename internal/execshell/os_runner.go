package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sync/errgroup"
)

const (
	standardInputPipeErrorTemplateConstant  = "stdin pipe: %w"
	standardOutputPipeErrorTemplateConstant = "stdout pipe: %w"
	standardErrorPipeErrorTemplateConstant  = "stderr pipe: %w"
	communicationErrorTemplateConstant      = "communicate: %w"
	waitErrorTemplateConstant               = "wait: %w"
	// UnavailableExitCode is reported when no exit status exists, such as a signal-terminated child.
	UnavailableExitCode = -1
)

// CommandRunner spawns one child process and waits for it.
// A nonzero exit is reported through ProcessOutcome.ExitCode; the error return is reserved for
// failures to start or communicate with the child.
type CommandRunner interface {
	Run(executionContext context.Context, command PreparedCommand) (ProcessOutcome, error)
}

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run starts the child, feeds its input while draining captured output, and waits for it to exit.
func (runner *OSCommandRunner) Run(executionContext context.Context, command PreparedCommand) (ProcessOutcome, error) {
	executable := exec.CommandContext(executionContext, command.Executable, command.Arguments...)
	executable.Dir = command.WorkingDirectory
	executable.Env = command.Environment
	executable.Stdin = os.Stdin
	executable.Stdout = os.Stdout
	executable.Stderr = os.Stderr

	var standardInputPipe io.WriteCloser
	if len(command.StandardInput) > 0 {
		executable.Stdin = nil
		pipe, pipeError := executable.StdinPipe()
		if pipeError != nil {
			return ProcessOutcome{}, fmt.Errorf(standardInputPipeErrorTemplateConstant, pipeError)
		}
		standardInputPipe = pipe
	}

	var standardOutputPipe io.ReadCloser
	if command.CaptureStandardOutput {
		executable.Stdout = nil
		pipe, pipeError := executable.StdoutPipe()
		if pipeError != nil {
			return ProcessOutcome{}, fmt.Errorf(standardOutputPipeErrorTemplateConstant, pipeError)
		}
		standardOutputPipe = pipe
	}

	var standardErrorPipe io.ReadCloser
	if command.CaptureStandardError {
		executable.Stderr = nil
		pipe, pipeError := executable.StderrPipe()
		if pipeError != nil {
			return ProcessOutcome{}, fmt.Errorf(standardErrorPipeErrorTemplateConstant, pipeError)
		}
		standardErrorPipe = pipe
	}

	if startError := executable.Start(); startError != nil {
		return ProcessOutcome{}, startError
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	var communicationGroup errgroup.Group

	if standardInputPipe != nil {
		communicationGroup.Go(func() error {
			return writeStandardInput(standardInputPipe, command.StandardInput)
		})
	}
	if standardOutputPipe != nil {
		communicationGroup.Go(func() error {
			_, copyError := io.Copy(&standardOutputBuffer, standardOutputPipe)
			return copyError
		})
	}
	if standardErrorPipe != nil {
		communicationGroup.Go(func() error {
			_, copyError := io.Copy(&standardErrorBuffer, standardErrorPipe)
			return copyError
		})
	}

	communicationError := communicationGroup.Wait()
	waitError := executable.Wait()

	outcome := ProcessOutcome{
		StandardOutput: capturedBytes(command.CaptureStandardOutput, &standardOutputBuffer),
		StandardError:  capturedBytes(command.CaptureStandardError, &standardErrorBuffer),
	}

	if communicationError != nil {
		return outcome, fmt.Errorf(communicationErrorTemplateConstant, communicationError)
	}

	if waitError != nil {
		exitError := &exec.ExitError{}
		if errors.As(waitError, &exitError) {
			outcome.ExitCode = exitError.ExitCode()
			return outcome, nil
		}
		return outcome, fmt.Errorf(waitErrorTemplateConstant, waitError)
	}

	return outcome, nil
}

// writeStandardInput writes the payload and closes the pipe; a child that exits without reading is not an error.
func writeStandardInput(pipe io.WriteCloser, payload []byte) error {
	_, writeError := pipe.Write(payload)
	closeError := pipe.Close()
	if writeError != nil && !isClosedPipeError(writeError) {
		return writeError
	}
	if closeError != nil && !isClosedPipeError(closeError) {
		return closeError
	}
	return nil
}

func isClosedPipeError(err error) bool {
	return errors.Is(err, syscall.EPIPE) || errors.Is(err, os.ErrClosed)
}

func capturedBytes(captured bool, buffer *bytes.Buffer) []byte {
	if !captured {
		return nil
	}
	return append([]byte{}, buffer.Bytes()...)
}

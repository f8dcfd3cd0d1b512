package execshell_test

import (
	"context"
	"sync"

	"github.com/temirov/buildexec/internal/execshell"
)

type scriptedAttempt struct {
	outcome execshell.ProcessOutcome
	err     error
}

type scriptedCommandRunner struct {
	attempts         []scriptedAttempt
	recordedCommands []execshell.PreparedCommand
	duringRun        func()
	panicValue       any
}

func (runner *scriptedCommandRunner) Run(executionContext context.Context, command execshell.PreparedCommand) (execshell.ProcessOutcome, error) {
	runner.recordedCommands = append(runner.recordedCommands, command)
	if runner.duringRun != nil {
		runner.duringRun()
	}
	if runner.panicValue != nil {
		panic(runner.panicValue)
	}
	if len(runner.attempts) == 0 {
		return execshell.ProcessOutcome{}, nil
	}
	attemptIndex := len(runner.recordedCommands) - 1
	if attemptIndex >= len(runner.attempts) {
		attemptIndex = len(runner.attempts) - 1
	}
	scripted := runner.attempts[attemptIndex]
	return scripted.outcome, scripted.err
}

type recordingGuardAcquirer struct {
	mutex    sync.Mutex
	acquired int
	released int
}

func (acquirer *recordingGuardAcquirer) Acquire() execshell.InterruptGuard {
	acquirer.mutex.Lock()
	defer acquirer.mutex.Unlock()
	acquirer.acquired++
	return &recordingGuard{acquirer: acquirer}
}

func (acquirer *recordingGuardAcquirer) active() int {
	acquirer.mutex.Lock()
	defer acquirer.mutex.Unlock()
	return acquirer.acquired - acquirer.released
}

func (acquirer *recordingGuardAcquirer) counts() (int, int) {
	acquirer.mutex.Lock()
	defer acquirer.mutex.Unlock()
	return acquirer.acquired, acquirer.released
}

type recordingGuard struct {
	acquirer    *recordingGuardAcquirer
	releaseOnce sync.Once
}

func (guard *recordingGuard) Release() {
	guard.releaseOnce.Do(func() {
		guard.acquirer.mutex.Lock()
		defer guard.acquirer.mutex.Unlock()
		guard.acquirer.released++
	})
}

type recordedEvent struct {
	kind          string
	attemptNumber int
}

type recordingEventObserver struct {
	events []recordedEvent
}

func (observer *recordingEventObserver) CommandStarted(command execshell.CommandSpec, attemptNumber int) {
	observer.events = append(observer.events, recordedEvent{kind: "started", attemptNumber: attemptNumber})
}

func (observer *recordingEventObserver) CommandCompleted(command execshell.CommandSpec, attemptNumber int, outcome execshell.ProcessOutcome) {
	observer.events = append(observer.events, recordedEvent{kind: "completed", attemptNumber: attemptNumber})
}

func (observer *recordingEventObserver) CommandExecutionFailed(command execshell.CommandSpec, attemptNumber int, failure error) {
	observer.events = append(observer.events, recordedEvent{kind: "failed", attemptNumber: attemptNumber})
}

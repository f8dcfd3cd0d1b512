package execshell

// CommandEventObserver receives lifecycle notifications for each execution attempt.
type CommandEventObserver interface {
	// CommandStarted notifies observers that an attempt is about to spawn the child.
	CommandStarted(command CommandSpec, attemptNumber int)
	// CommandCompleted notifies observers that the child terminated and supplies its outcome.
	CommandCompleted(command CommandSpec, attemptNumber int, outcome ProcessOutcome)
	// CommandExecutionFailed reports spawn or communication failures prior to receiving an outcome.
	CommandExecutionFailed(command CommandSpec, attemptNumber int, failure error)
}

// noopCommandEventObserver discards all command events.
type noopCommandEventObserver struct{}

// CommandStarted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandStarted(CommandSpec, int) {}

// CommandCompleted implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandCompleted(CommandSpec, int, ProcessOutcome) {}

// CommandExecutionFailed implements CommandEventObserver for the no-op observer.
func (noopCommandEventObserver) CommandExecutionFailed(CommandSpec, int, error) {}

package execshell

import (
	"os"
	"os/signal"
	"sync"
)

// InterruptGuard holds interrupt suppression until released.
type InterruptGuard interface {
	// Release restores the previous interrupt disposition. Calls after the first are no-ops.
	Release()
}

// InterruptGuardAcquirer installs an InterruptGuard around one execution attempt.
type InterruptGuardAcquirer interface {
	Acquire() InterruptGuard
}

// OSInterruptGuardAcquirer suppresses os.Interrupt for the current process through os/signal.
//
// A private notification channel is registered so the runtime swallows the signal instead of
// terminating the parent. Notified signals revert to their default disposition across exec, so the
// child still receives the interrupt. The interrupt disposition is process-wide: other handlers
// registered through os/signal keep receiving interrupts while a guard is held. An interrupt that
// was ignored when the guard was acquired is ignored again on release.
type OSInterruptGuardAcquirer struct{}

// NewOSInterruptGuardAcquirer constructs the os/signal backed acquirer.
func NewOSInterruptGuardAcquirer() OSInterruptGuardAcquirer {
	return OSInterruptGuardAcquirer{}
}

// Acquire starts swallowing os.Interrupt until the returned guard is released.
func (OSInterruptGuardAcquirer) Acquire() InterruptGuard {
	interruptWasIgnored := signal.Ignored(os.Interrupt)
	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, os.Interrupt)
	return &osInterruptGuard{signalChannel: signalChannel, interruptWasIgnored: interruptWasIgnored}
}

type osInterruptGuard struct {
	signalChannel       chan os.Signal
	interruptWasIgnored bool
	releaseOnce         sync.Once
}

func (guard *osInterruptGuard) Release() {
	guard.releaseOnce.Do(func() {
		signal.Stop(guard.signalChannel)
		// signal.Stop falls back to the default disposition, not the one seen at acquire time.
		if guard.interruptWasIgnored {
			signal.Ignore(os.Interrupt)
		}
	})
}

//go:build unix

package execshell_test

import (
	"os"
	"os/signal"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/temirov/buildexec/internal/execshell"
)

func TestOSInterruptGuardSwallowsInterrupt(testInstance *testing.T) {
	guard := execshell.NewOSInterruptGuardAcquirer().Acquire()

	require.NoError(testInstance, syscall.Kill(os.Getpid(), syscall.SIGINT))
	time.Sleep(50 * time.Millisecond)

	guard.Release()
	guard.Release()
}

func TestOSInterruptGuardNests(testInstance *testing.T) {
	acquirer := execshell.NewOSInterruptGuardAcquirer()
	outerGuard := acquirer.Acquire()
	innerGuard := acquirer.Acquire()
	innerGuard.Release()

	require.NoError(testInstance, syscall.Kill(os.Getpid(), syscall.SIGINT))
	time.Sleep(50 * time.Millisecond)

	outerGuard.Release()
}

func TestOSInterruptGuardRestoresIgnoredDisposition(testInstance *testing.T) {
	testCases := []struct {
		name                   string
		ignoreBeforeAcquire    bool
		expectIgnoredAfterward bool
	}{
		{name: "ignored_interrupt_stays_ignored", ignoreBeforeAcquire: true, expectIgnoredAfterward: true},
		{name: "default_interrupt_stays_default", ignoreBeforeAcquire: false, expectIgnoredAfterward: false},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			testInstance.Cleanup(func() { signal.Reset(os.Interrupt) })
			if testCase.ignoreBeforeAcquire {
				signal.Ignore(os.Interrupt)
			}

			guard := execshell.NewOSInterruptGuardAcquirer().Acquire()
			require.False(testInstance, signal.Ignored(os.Interrupt))
			guard.Release()

			require.Equal(testInstance, testCase.expectIgnoredAfterward, signal.Ignored(os.Interrupt))
		})
	}
}

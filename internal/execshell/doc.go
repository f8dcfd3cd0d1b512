// Package execshell runs external programs for the build toolchain.
//
// ShellExecutor launches one synchronous child per call, optionally piping
// standard input, capturing standard output and error, rewriting the command
// to enter the build chroot, and suppressing interrupt delivery to the parent
// while the child runs. Execute implements the structured calling convention;
// RunLegacyOutput and RunLegacyExitCode implement the legacy convention with
// a bounded retry loop. Failures are reported as CommandExecutionError,
// CommandFailedError, or CommandContractError.
package execshell

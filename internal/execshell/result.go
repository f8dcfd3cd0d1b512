package execshell

// CommandResult records what ran and what it produced.
type CommandResult struct {
	// Command is the command as executed, after chroot rewriting.
	Command CommandSpec
	// StandardOutput is non-nil only when standard output was captured.
	StandardOutput []byte
	// StandardError is non-nil only when standard error was captured.
	StandardError    []byte
	ExitCode         int
	ExitCodeRecorded bool
}

// ProcessOutcome is what a CommandRunner observed for one child process.
type ProcessOutcome struct {
	StandardOutput []byte
	StandardError  []byte
	ExitCode       int
}

// PreparedCommand is the fully resolved invocation handed to a CommandRunner.
type PreparedCommand struct {
	Executable            string
	Arguments             []string
	WorkingDirectory      string
	Environment           []string
	StandardInput         []byte
	CaptureStandardOutput bool
	CaptureStandardError  bool
}

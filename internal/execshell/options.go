package execshell

// ExecutionOptions configures a single call.
type ExecutionOptions struct {
	CaptureStandardOutput bool
	CaptureStandardError  bool
	// StandardInput is piped to the child when non-empty; otherwise stdin is inherited.
	StandardInput []byte
	Announce      bool
	ErrorOK       bool
	ErrorMessage  string
	// SuppressInterrupt shields the parent from os.Interrupt while the child runs.
	SuppressInterrupt bool
	// RetryCount is the number of extra attempts; only the legacy convention accepts it.
	RetryCount     int
	ReportExitCode bool
}

func (options ExecutionOptions) hasStandardInput() bool {
	return len(options.StandardInput) > 0
}

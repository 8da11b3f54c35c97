package cmd

// Exit codes for the specreport CLI
const (
	// ExitSuccess indicates every test passed and the run completed
	ExitSuccess = 0

	// ExitTestFailure indicates a test failed or errored, or a spec failed
	ExitTestFailure = 1

	// ExitEngineError indicates the engine reported a fatal error, or the
	// event stream ended before the engine finished
	ExitEngineError = 2

	// ExitConfigError indicates invalid flags or configuration
	ExitConfigError = 3

	// ExitIOError indicates the input or a capture file could not be used
	ExitIOError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)

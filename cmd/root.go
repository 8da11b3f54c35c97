package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/ansel1/specreport/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "specreport",
		Short: "Console reporter for spec-style test runs.",
		Long: `specreport reads a test engine's lifecycle events as JSON lines and
prints a report: one block per spec as it finishes, then a summary with
every failure's message and stack trace.

Lines that are not lifecycle events are passed through unchanged.`,
		Example: `  gradle test --console=plain | specreport
  specreport -f run.jsonl --notty
  specreport -f run.jsonl --replay --rate 0.5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runCommand,
	}
	config.RegisterFlags(cmd.Flags())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// ExitError ends the process with Code. A nil Err exits without a message.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Execute runs the root command and exits the process.
func Execute(v, bt string) {
	version = v
	buildTime = bt
	os.Exit(execute(rootCmd))
}

func execute(cmd *cobra.Command) int {
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}

	code := ExitUsageError
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		code = exitErr.Code
		if exitErr.Err == nil {
			return code
		}
	}
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", red("Error:"), err)
	return code
}

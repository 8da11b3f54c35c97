package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ansel1/specreport/config"
	"github.com/ansel1/specreport/engine"
	"github.com/ansel1/specreport/logging"
	"github.com/ansel1/specreport/output"
	"github.com/ansel1/specreport/output/format"
	"github.com/ansel1/specreport/tui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.New(), cmd.Flags())
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}

	logger, err := logging.New(cfg.Debug, !cfg.NoColor && format.IsTerminal(os.Stderr))
	if err != nil {
		return &ExitError{Code: ExitConfigError, Err: err}
	}
	defer func() { _ = logger.Sync() }()

	r := &runner{
		cfg:    cfg,
		in:     cmd.InOrStdin(),
		out:    cmd.OutOrStdout(),
		logger: logger,
	}
	code, err := r.run()
	if err != nil {
		return &ExitError{Code: code, Err: err}
	}
	if code != ExitSuccess {
		return &ExitError{Code: code}
	}
	return nil
}

// runner wires one run: input, capture files, engine and the chosen front end.
type runner struct {
	cfg    *config.Config
	in     io.Reader
	out    io.Writer
	logger *zap.Logger

	closers []io.Closer
}

func (r *runner) run() (int, error) {
	defer r.close()

	input, err := r.openInput()
	if err != nil {
		return ExitIOError, err
	}

	engineOpts := []engine.Option{engine.WithLogger(r.logger)}
	if r.cfg.OutFile != "" {
		f, err := r.create(r.cfg.OutFile)
		if err != nil {
			return ExitIOError, fmt.Errorf("creating output file: %w", err)
		}
		engineOpts = append(engineOpts, engine.WithRawOutput(f))
	}
	if r.cfg.JSONFile != "" {
		f, err := r.create(r.cfg.JSONFile)
		if err != nil {
			return ExitIOError, fmt.Errorf("creating JSON file: %w", err)
		}
		engineOpts = append(engineOpts, engine.WithJSONOutput(f))
	}

	events := engine.NewEngine(engineOpts...).Stream(input)

	if r.useTUI() {
		return r.runTUI(events)
	}
	return r.runPlain(events)
}

func (r *runner) openInput() (io.Reader, error) {
	if r.cfg.InFile == "" {
		return r.in, nil
	}
	f, err := os.Open(r.cfg.InFile)
	if err != nil {
		return nil, fmt.Errorf("opening input file: %w", err)
	}
	r.closers = append(r.closers, f)

	if !r.cfg.Replay {
		return f, nil
	}
	replay, err := engine.NewReplayReader(f, r.cfg.Rate)
	if err != nil {
		return nil, fmt.Errorf("creating replay reader: %w", err)
	}
	return replay, nil
}

func (r *runner) create(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	r.closers = append(r.closers, f)
	return f, nil
}

func (r *runner) close() {
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			r.logger.Warn("failed to close file", zap.Error(err))
		}
	}
}

// useTUI reports whether the live view should run. A plain file is printed
// as a static report; it is only animated when replayed.
func (r *runner) useTUI() bool {
	if r.cfg.NoTTY {
		return false
	}
	if r.cfg.InFile != "" && !r.cfg.Replay {
		return false
	}
	return format.IsTerminal(r.out)
}

func (r *runner) reporterOptions() []output.Option {
	var colors format.Colors = format.PlainColors{}
	if !r.cfg.NoColor {
		colors = format.NewLipglossColors(r.out)
	}
	return []output.Option{
		output.WithColors(colors),
		output.WithThresholds(r.cfg.SlowThreshold, r.cfg.VerySlowThreshold),
		output.WithWidth(r.cfg.Width),
		output.WithLogger(r.logger),
	}
}

func (r *runner) runPlain(events <-chan engine.Event) (int, error) {
	reporter := output.NewReporter(r.out, r.reporterOptions()...)
	if err := reporter.ProcessEvents(events); err != nil {
		return ExitIOError, err
	}
	return exitCode(reporter), nil
}

func (r *runner) runTUI(events <-chan engine.Event) (int, error) {
	m := tui.NewModel(r.cfg.Replay, r.cfg.Rate, r.reporterOptions()...)
	p := tea.NewProgram(m, tea.WithOutput(r.out))

	go tui.Forward(p, events, r.logger)

	final, err := p.Run()
	if err != nil {
		return ExitIOError, fmt.Errorf("running program: %w", err)
	}
	model, ok := final.(*tui.Model)
	if !ok {
		return ExitIOError, fmt.Errorf("unexpected final model %T", final)
	}
	if _, err := io.WriteString(r.out, model.Summary()); err != nil {
		return ExitIOError, fmt.Errorf("writing summary: %w", err)
	}
	return exitCode(model.Reporter()), nil
}

func exitCode(reporter *output.Reporter) int {
	switch {
	case reporter.HasErrors():
		return ExitTestFailure
	case reporter.FatalCause() != nil:
		return ExitEngineError
	default:
		return ExitSuccess
	}
}

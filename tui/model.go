package tui

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/ansel1/specreport/output"
	"github.com/ansel1/specreport/output/format"
	"github.com/ansel1/specreport/parser"
	"github.com/ansel1/specreport/results"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// EventMsg wraps a lifecycle event for bubbletea.
type EventMsg parser.Event

// RawLineMsg carries an input line that is not a lifecycle event.
type RawLineMsg string

// EOFMsg signals that the event stream has been fully consumed.
type EOFMsg struct{}

// Model is the live view of a run.
//
// Lifecycle events are handed to an output.Reporter whose report lines are
// printed above the live area as each spec finishes. The live area shows a
// spinner, the most recently started test, and running counts. The final
// summary is held back until the program exits (see Summary).
type Model struct {
	reporter *output.Reporter
	pending  *LineBuffer
	summary  bytes.Buffer

	// Most recently started test, shown next to the spinner
	Current string

	// Terminal state
	TerminalWidth  int
	TerminalHeight int

	// Replay state
	ReplayMode bool
	ReplayRate float64

	Finished         bool
	Interrupted      bool
	StartTime        time.Time
	TotalElapsedTime float64

	spinner      spinner.Model
	passStyle    lipgloss.Style
	failStyle    lipgloss.Style
	neutralStyle lipgloss.Style
}

// NewModel creates a TUI model. opts configure the underlying reporter; its
// report writer and summary writer are owned by the model.
func NewModel(replayMode bool, replayRate float64, opts ...output.Option) *Model {
	s := spinner.New()
	s.Spinner = spinner.Jump

	m := &Model{
		pending:        &LineBuffer{},
		TerminalWidth:  80,
		TerminalHeight: 24,
		ReplayMode:     replayMode,
		ReplayRate:     replayRate,
		StartTime:      time.Now(),
		spinner:        s,
		passStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("2")), // green
		failStyle:      lipgloss.NewStyle().Foreground(lipgloss.Color("1")), // red
		neutralStyle:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
	opts = append(opts, output.WithSummaryOutput(&m.summary))
	m.reporter = output.NewReporter(m.pending, opts...)
	return m
}

// Reporter returns the reporter fed by the model.
func (m *Model) Reporter() *output.Reporter {
	return m.reporter
}

// Init starts the spinner.
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EventMsg:
		evt := parser.Event(msg)
		m.reporter.Handle(evt)
		if evt.Action == parser.ActionTestStarted && evt.Test != nil {
			if tc, err := evt.Test.ToTestCase(); err == nil {
				m.Current = tc.Description.FullName()
			}
		}
		return m, m.flush()

	case RawLineMsg:
		m.reporter.RawLine(string(msg))
		return m, m.flush()

	case tea.WindowSizeMsg:
		m.TerminalWidth = msg.Width
		m.TerminalHeight = msg.Height

	case EOFMsg:
		return m, m.finish()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.Interrupted = true
			return m, m.finish()
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Model) finish() tea.Cmd {
	m.reporter.Complete()
	m.Finished = true
	m.TotalElapsedTime = time.Since(m.StartTime).Seconds()
	return tea.Sequence(m.flush(), tea.Quit)
}

// flush prints report lines written since the last flush above the live area.
func (m *Model) flush() tea.Cmd {
	lines := m.pending.Drain()
	if len(lines) == 0 {
		return nil
	}
	return tea.Println(strings.Join(lines, "\n"))
}

// Summary returns the run summary once the stream is complete.
func (m *Model) Summary() string {
	return m.summary.String()
}

// HasErrors reports whether any test or spec failed.
func (m *Model) HasErrors() bool {
	return m.reporter.HasErrors()
}

// Counts are the live totals shown in the status line.
type Counts struct {
	Specs   int
	Passed  int
	Failed  int
	Ignored int
	Running int // Started without a result yet
}

// Total returns the number of started tests.
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Ignored + c.Running
}

// Counts computes the live totals from the reporter's collector.
func (m *Model) Counts() Counts {
	var c Counts
	m.reporter.Collector().WithState(func(s *results.State) {
		summary := format.ComputeSummary(s, s.StartTime)
		c.Specs = summary.SpecCount
		c.Passed = summary.Passed
		c.Failed = summary.Failed
		c.Ignored = summary.Ignored

		started := make(map[string]bool, len(s.TestCases))
		for _, tc := range s.TestCases {
			key := tc.Description.Key()
			if started[key] {
				continue
			}
			started[key] = true
			if _, ok := s.Results[key]; !ok {
				c.Running++
			}
		}
	})
	return c
}

// View renders the live area. Nothing is rendered once the run is finished,
// so the final frame does not linger above the summary.
func (m *Model) View() string {
	if m.Finished {
		return ""
	}
	var b strings.Builder
	m.renderCurrentLine(&b)
	m.renderStatusLine(&b)
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderCurrentLine(b *strings.Builder) {
	if m.Current == "" {
		return
	}
	line := "  " + m.Current
	if m.TerminalWidth > 0 {
		line = ansi.Truncate(line, m.TerminalWidth, "…")
	}
	b.WriteString(ensureReset(m.neutralStyle.Render(line)))
	b.WriteString("\n")
}

func (m *Model) renderStatusLine(b *strings.Builder) {
	c := m.Counts()

	elapsed := time.Since(m.StartTime).Seconds()
	if m.ReplayMode && m.ReplayRate != 1.0 && m.ReplayRate != 0 {
		// Scale wall time back to the original run's time
		elapsed = elapsed / m.ReplayRate
	}

	left := fmt.Sprintf("RUNNING: %d specs, %d passed, %d failed, %d ignored, %d running",
		c.Specs, c.Passed, c.Failed, c.Ignored, c.Running)
	m.renderAlignedLine(b, left, formatElapsedTime(elapsed), m.spinnerPrefix(c.Failed > 0))
}

func (m *Model) spinnerPrefix(failed bool) string {
	spinnerView := m.spinner.View()
	if failed {
		return m.failStyle.Render(spinnerView) + " "
	}
	return m.passStyle.Render(spinnerView) + " "
}

// renderAlignedLine renders left after prefix and right-aligns right within
// the terminal width, truncating left if they do not fit.
func (m *Model) renderAlignedLine(b *strings.Builder, left, right, prefix string) {
	fullLeft := prefix + left

	rightWidth := lipgloss.Width(right)
	available := m.TerminalWidth - rightWidth - 2
	if available < 0 {
		available = 0
	}

	if lipgloss.Width(fullLeft) > available {
		fullLeft = ansi.Truncate(fullLeft, available, "")
	}
	padding := available - lipgloss.Width(fullLeft)

	b.WriteString(ensureReset(fullLeft))
	b.WriteString(strings.Repeat(" ", padding+2))
	b.WriteString(right)
	b.WriteString("\n")
}

// formatElapsedTime formats elapsed seconds as X.Xs, or X.Xm from a minute on.
func formatElapsedTime(seconds float64) string {
	if seconds < 0.05 {
		return "0.0s"
	}
	if seconds >= 60 {
		return fmt.Sprintf("%.1fm", seconds/60)
	}
	return fmt.Sprintf("%.1fs", seconds)
}

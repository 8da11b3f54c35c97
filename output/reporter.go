package output

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ansel1/specreport/output/format"
	"github.com/ansel1/specreport/results"
	"go.uber.org/zap"
)

// Reporter renders lifecycle notifications as a console report.
//
// Every hook holds the reporter's lock for its whole duration, covering both
// the state change and the terminal write, so the printed report follows the
// order in which hooks are delivered even when the engine calls them from
// several goroutines. Hooks never fail; write errors are logged and dropped.
type Reporter struct {
	mu         sync.Mutex
	out        io.Writer
	summaryOut io.Writer
	collector  *results.Collector
	logger     *zap.Logger

	colors   format.Colors
	glyphs   *format.Glyphs
	slow     time.Duration
	verySlow time.Duration
	width    int

	lines   *format.LineFormatter
	specs   *format.SpecFormatter
	summary *format.SummaryFormatter

	failedSpecs    map[string]bool // Specs already reported as failing to instantiate
	engineFinished bool
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithColors sets the color provider. Defaults to lipgloss colors detected
// from the output writer.
func WithColors(colors format.Colors) Option {
	return func(r *Reporter) {
		r.colors = colors
	}
}

// WithGlyphs overrides the platform glyph set.
func WithGlyphs(glyphs format.Glyphs) Option {
	return func(r *Reporter) {
		r.glyphs = &glyphs
	}
}

// WithThresholds sets the slow and very slow duration thresholds.
func WithThresholds(slow, verySlow time.Duration) Option {
	return func(r *Reporter) {
		r.slow = slow
		r.verySlow = verySlow
	}
}

// WithWidth sets the width of the summary banner.
func WithWidth(width int) Option {
	return func(r *Reporter) {
		r.width = width
	}
}

// WithSummaryOutput sends the final summary to w instead of the report writer.
func WithSummaryOutput(w io.Writer) Option {
	return func(r *Reporter) {
		r.summaryOut = w
	}
}

// WithCollector uses an existing collector.
func WithCollector(c *results.Collector) Option {
	return func(r *Reporter) {
		r.collector = c
	}
}

// WithLogger sets the logger for diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Reporter) {
		r.logger = logger
	}
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer, opts ...Option) *Reporter {
	r := &Reporter{
		out:         w,
		slow:        format.DefaultSlowThreshold,
		verySlow:    format.DefaultVerySlowThreshold,
		width:       format.LineWidth,
		failedSpecs: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.colors == nil {
		r.colors = format.NewLipglossColors(w)
	}
	if r.summaryOut == nil {
		r.summaryOut = w
	}
	if r.collector == nil {
		r.collector = results.NewCollector(results.WithLogger(r.logger))
	}

	theme := format.NewTheme(r.colors)
	if r.glyphs != nil {
		theme = format.NewThemeWithGlyphs(r.colors, *r.glyphs)
	}
	r.lines = format.NewLineFormatter(theme, r.colors, r.slow, r.verySlow)
	r.specs = format.NewSpecFormatter(r.colors)
	r.summary = format.NewSummaryFormatter(r.width, theme, r.colors)
	return r
}

// Collector returns the reporter's result collector.
func (r *Reporter) Collector() *results.Collector {
	return r.collector
}

// OnEngineStarted records the start of the run.
func (r *Reporter) OnEngineStarted(specs []results.Spec) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.collector.OnEngineStarted(specs)
}

// OnTestStarted records a started test case.
func (r *Reporter) OnTestStarted(tc results.TestCase) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.collector.OnTestStarted(tc)
}

// OnTestFinished records the result of a test case. Lines are printed when
// the owning spec finishes.
func (r *Reporter) OnTestFinished(tc results.TestCase, result results.TestResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.collector.OnTestFinished(tc, result)
}

// OnSpecInstantiationError reports a spec that could not be constructed as a
// header-only failure block. A later OnSpecFinished for the same spec prints
// nothing.
func (r *Reporter) OnSpecInstantiationError(spec results.Spec, cause *results.Cause) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reportFailedSpecLocked(spec, cause)
}

func (r *Reporter) reportFailedSpecLocked(spec results.Spec, cause *results.Cause) {
	r.collector.OnSpecInstantiationError(spec, cause)
	r.failedSpecs[spec.Name] = true

	ordinal := r.collector.NextSpecOrdinal()
	lines := r.specs.FailedHeader(ordinal, spec, cause)
	r.writeLinesLocked(append(lines, ""))
}

// OnSpecFinished prints the block for a finished spec: its header, then a
// line per started test case of the spec that has a result, in start order,
// with the cause of every failed test inline.
//
// cause is non-nil if the spec itself failed outside any test; the block is
// then header-only. resultsForSpec supplies results for started test cases
// the reporter never saw a testFinished for.
func (r *Reporter) OnSpecFinished(spec results.Spec, cause *results.Cause, resultsForSpec []results.ResultEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failedSpecs[spec.Name] {
		r.logger.Debug("spec already reported as failed", zap.String("spec", spec.Name))
		return
	}
	if cause != nil {
		r.reportFailedSpecLocked(spec, cause)
		return
	}

	ordinal := r.collector.NextSpecOrdinal()
	lines := []string{r.specs.Header(ordinal, spec)}

	fallback := make(map[string]results.TestResult, len(resultsForSpec))
	for _, entry := range resultsForSpec {
		fallback[entry.Description.Key()] = entry.Result
	}

	var cases []results.TestCase
	r.collector.WithState(func(s *results.State) {
		cases = s.TestCasesForSpec(spec.Name)
	})

	printed := make(map[string]bool, len(cases))
	for _, tc := range cases {
		key := tc.Description.Key()
		if printed[key] {
			continue
		}
		result, ok := r.collector.Lookup(tc.Description)
		if !ok {
			fb, found := fallback[key]
			if !found {
				// Started but never finished.
				continue
			}
			result = r.collector.RecordResult(tc, fb)
		}
		printed[key] = true

		lines = append(lines, r.lines.RenderLine(tc, result))
		if result.Status.IsFailed() {
			lines = append(lines, "", r.specs.TestCause(tc, result.Cause), "")
		}
	}

	r.writeLinesLocked(append(lines, ""))
}

// OnEngineFinished prints the run summary. fatal is an engine-wide failure
// unrelated to any single test; it is kept for the caller (see FatalCause)
// and does not change the summary.
func (r *Reporter) OnEngineFinished(fatal *results.Cause) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engineFinished {
		r.logger.Warn("engine finished more than once; ignoring")
		return
	}
	r.engineFinished = true
	r.collector.Finish(fatal)
	if fatal != nil {
		r.logger.Warn("engine reported a fatal error",
			zap.String("message", fatal.Message),
			zap.String("type", fatal.Type))
	}

	var summary *format.Summary
	r.collector.WithState(func(s *results.State) {
		summary = format.ComputeSummary(s, r.collector.Now())
	})

	r.write(r.summaryOut, "\n"+r.summary.Format(summary))
}

// EngineFinished reports whether OnEngineFinished has been called.
func (r *Reporter) EngineFinished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.engineFinished
}

// HasErrors reports whether any test failed or errored, or any spec failed.
func (r *Reporter) HasErrors() bool {
	return r.collector.HasErrors()
}

// FatalCause returns the fatal cause passed to OnEngineFinished, or nil.
func (r *Reporter) FatalCause() *results.Cause {
	return r.collector.FatalCause()
}

// RawLine passes a line that is not part of the report straight through.
func (r *Reporter) RawLine(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.writeLinesLocked([]string{line})
}

func (r *Reporter) writeLinesLocked(lines []string) {
	r.write(r.out, strings.Join(lines, "\n")+"\n")
}

func (r *Reporter) write(w io.Writer, s string) {
	if _, err := fmt.Fprint(w, s); err != nil {
		r.logger.Warn("failed to write report output", zap.Error(err))
	}
}

package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/ansel1/specreport/results"
)

// Summary represents computed summary statistics from a run.
type Summary struct {
	Elapsed   time.Duration
	SpecCount int // Distinct specs across all started test cases
	Passed    int
	Failed    int // Failure and Error
	Ignored   int
	Failures  []results.ResultEntry
}

// Total returns the number of tests with a recorded result.
func (s *Summary) Total() int {
	return s.Passed + s.Failed + s.Ignored
}

// ComputeSummary calculates summary statistics from the run state.
//
// Counts are taken from the full result mapping, so every test that has a
// result is counted exactly once and started-but-unfinished tests are not
// counted at all. Failures keep the mapping's first-insertion order.
func ComputeSummary(state *results.State, now time.Time) *Summary {
	summary := &Summary{
		SpecCount: state.DistinctSpecCount(),
		Failures:  make([]results.ResultEntry, 0),
	}
	if !state.StartTime.IsZero() && now.After(state.StartTime) {
		summary.Elapsed = now.Sub(state.StartTime)
	}

	for _, entry := range state.OrderedResults() {
		switch entry.Result.Status {
		case results.StatusSuccess:
			summary.Passed++
		case results.StatusFailure, results.StatusError:
			summary.Failed++
			summary.Failures = append(summary.Failures, entry)
		case results.StatusIgnored:
			summary.Ignored++
		}
	}

	return summary
}

// SummaryFormatter formats a Summary for display.
type SummaryFormatter struct {
	width  int
	colors Colors
	theme  Theme
}

// NewSummaryFormatter creates a new summary formatter.
//
// Parameters:
//   - width: width of the failure banner (use 80 if unknown)
//   - theme: provides the failure symbol
//   - colors: styling for the summary lines
func NewSummaryFormatter(width int, theme Theme, colors Colors) *SummaryFormatter {
	if width <= 0 {
		width = LineWidth
	}
	if colors == nil {
		colors = PlainColors{}
	}
	return &SummaryFormatter{
		width:  width,
		colors: colors,
		theme:  theme,
	}
}

// Format renders a complete summary as a formatted string.
func (sf *SummaryFormatter) Format(summary *Summary) string {
	var b strings.Builder

	b.WriteString(sf.colors.BrightWhite("Completed in "+formatDuration(summary.Elapsed)) + "\n")
	b.WriteString(fmt.Sprintf("Executed %d specs containing %d tests\n", summary.SpecCount, summary.Total()))

	counts := fmt.Sprintf("%d passed, %d failed, %d ignored", summary.Passed, summary.Failed, summary.Ignored)
	if summary.Failed > 0 {
		counts = sf.colors.BrightRed(counts)
	} else {
		counts = sf.colors.BrightGreen(counts)
	}
	b.WriteString(counts + "\n")

	if len(summary.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(sf.formatFailures(summary.Failures))
	}

	return b.String()
}

// formatFailures formats the failures section: a banner, then for each
// failure its full name, message, error type and stack trace.
func (sf *SummaryFormatter) formatFailures(failures []results.ResultEntry) string {
	var b strings.Builder
	b.WriteString(sf.colors.BrightWhite(sf.horizontalLine()) + "\n")
	b.WriteString(renderSectionHeader("FAILURES"))

	for i, failure := range failures {
		if i > 0 {
			b.WriteString("\n")
		}
		glyph, _ := sf.theme.SymbolFor(failure.Result.Status)
		b.WriteString(sf.colors.BrightRed(glyph+" "+failure.Description.FullName()) + "\n")
		b.WriteString("\n")

		cause := failure.Result.Cause
		if cause == nil {
			continue
		}
		if cause.Message != "" {
			for _, line := range splitLines(cause.Message) {
				b.WriteString(Margin + sf.colors.Red(line) + "\n")
			}
		}
		if cause.Type != "" {
			b.WriteString(Margin + sf.colors.Red(cause.Type) + "\n")
		}
		for _, frame := range cause.Stack {
			b.WriteString(StackMargin + frame + "\n")
		}
	}

	return b.String()
}

// horizontalLine returns a horizontal separator line.
func (sf *SummaryFormatter) horizontalLine() string {
	return strings.Repeat("-", sf.width)
}

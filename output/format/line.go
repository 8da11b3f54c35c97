package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/ansel1/specreport/results"
)

const (
	FailedMarker  = "*** FAILED ***"
	IgnoredMarker = "??? IGNORED ???"

	DefaultSlowThreshold     = 1000 * time.Millisecond
	DefaultVerySlowThreshold = 3000 * time.Millisecond
)

// LineFormatter renders a single test result as one report line.
type LineFormatter struct {
	theme    Theme
	colors   Colors
	slow     time.Duration
	verySlow time.Duration
	width    int
}

// NewLineFormatter creates a line formatter.
//
// Tests taking at least slow get a yellow duration annotation, tests taking
// longer than verySlow a red one. Non-positive thresholds fall back to the
// defaults.
func NewLineFormatter(theme Theme, colors Colors, slow, verySlow time.Duration) *LineFormatter {
	if colors == nil {
		colors = PlainColors{}
	}
	if slow <= 0 {
		slow = DefaultSlowThreshold
	}
	if verySlow <= 0 {
		verySlow = DefaultVerySlowThreshold
	}
	if verySlow < slow {
		verySlow = slow
	}
	return &LineFormatter{
		theme:    theme,
		colors:   colors,
		slow:     slow,
		verySlow: verySlow,
		width:    LineWidth,
	}
}

// RenderLine renders tc and its result:
// margin, one indent unit per ancestor, symbol, name, padding to the line
// width, then the duration annotation.
func (f *LineFormatter) RenderLine(tc results.TestCase, result results.TestResult) string {
	var b strings.Builder
	b.WriteString(Margin)
	b.WriteString(strings.Repeat(IndentUnit, tc.Description.Depth()))
	b.WriteString(f.theme.Symbol(result.Status))
	b.WriteString(" ")
	b.WriteString(f.renderName(tc.DisplayName(), result.Status))

	return PadRight(b.String(), f.width) + f.renderDuration(tc.Kind, result.Duration)
}

func (f *LineFormatter) renderName(name string, status results.Status) string {
	switch status {
	case results.StatusSuccess:
		return name
	case results.StatusFailure, results.StatusError:
		return f.colors.BrightRed(name + " " + FailedMarker)
	case results.StatusIgnored:
		return f.colors.Gray(name + " " + IgnoredMarker)
	}
	return name
}

// renderDuration buckets on whole milliseconds: below slow nothing, up to and
// including verySlow yellow, above it red. Containers never show a duration.
func (f *LineFormatter) renderDuration(kind results.Kind, d time.Duration) string {
	if kind != results.KindTest {
		return ""
	}
	ms := d.Milliseconds()
	annotation := fmt.Sprintf("(%dms)", ms)
	switch {
	case ms < f.slow.Milliseconds():
		return ""
	case ms <= f.verySlow.Milliseconds():
		return f.colors.BrightYellow(annotation)
	default:
		return f.colors.BrightRed(annotation)
	}
}

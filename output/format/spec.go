package format

import (
	"fmt"

	"github.com/ansel1/specreport/results"
)

// SpecFormatter renders the header and cause lines of a spec block.
type SpecFormatter struct {
	colors Colors
}

// NewSpecFormatter creates a spec block formatter.
func NewSpecFormatter(colors Colors) *SpecFormatter {
	if colors == nil {
		colors = PlainColors{}
	}
	return &SpecFormatter{colors: colors}
}

func (f *SpecFormatter) ordinal(n int) string {
	return f.colors.BrightWhite(fmt.Sprintf("%d)", n)) + " "
}

// Header renders the header of a spec that instantiated.
func (f *SpecFormatter) Header(ordinal int, spec results.Spec) string {
	return f.ordinal(ordinal) + spec.Name
}

// FailedHeader renders the header of a spec that failed to instantiate,
// followed by its cause line.
//
// The unbalanced ")" ending the cause line is part of the output format.
func (f *SpecFormatter) FailedHeader(ordinal int, spec results.Spec, cause *results.Cause) []string {
	return []string{
		f.ordinal(ordinal) + f.colors.Red(spec.Name+" "+FailedMarker),
		Margin + f.colors.Red(fmt.Sprintf("cause: %s)", causeMessage(cause))),
	}
}

// TestCause renders the cause line of a failed test, attributed to the
// test's source location.
func (f *SpecFormatter) TestCause(tc results.TestCase, cause *results.Cause) string {
	return Margin + f.colors.Red(fmt.Sprintf("cause: %s (%s:%d)",
		causeMessage(cause), tc.Source.File, tc.Source.Line))
}

func causeMessage(cause *results.Cause) string {
	if cause == nil {
		return ""
	}
	return cause.Message
}

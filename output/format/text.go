package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Layout constants shared by every report section.
const (
	Margin      = "  "     // Left margin of test and cause lines
	StackMargin = "      " // Margin of stack frames in the failure section
	IndentUnit  = "\t"     // One unit per ancestor level
	LineWidth   = 80       // Test lines are padded to this many columns
	TabWidth    = 8
)

// formatDuration formats a duration as HH:MM:SS.mmm.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	milliseconds := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, milliseconds)
}

// expandTabs replaces tab characters with spaces.
func expandTabs(s string, tabWidth int) string {
	var b strings.Builder
	col := 0
	for _, r := range s {
		switch r {
		case '\n':
			b.WriteRune(r)
			col = 0
		case '\t':
			spaces := tabWidth - (col % tabWidth)
			b.WriteString(strings.Repeat(" ", spaces))
			col += spaces
		default:
			b.WriteRune(r)
			col++
		}
	}
	return b.String()
}

// DisplayWidth returns the number of terminal columns s occupies, ignoring
// escape sequences and expanding tabs.
func DisplayWidth(s string) int {
	return lipgloss.Width(expandTabs(ansi.Strip(s), TabWidth))
}

// PadRight pads s with spaces up to width display columns. Escape sequences
// do not count towards the width.
func PadRight(s string, width int) string {
	w := DisplayWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

func renderSectionHeader(header string) string {
	return header + "\n" + strings.Repeat("-", len(header)) + "\n"
}

// splitLines splits a message into lines, dropping a single trailing newline.
func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

package format

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Colors wraps strings for terminal display, one method per semantic color.
//
// Formatters never embed raw control sequences; they call through Colors so
// output can degrade to plain text when the destination is not a terminal.
type Colors interface {
	BrightGreen(s string) string
	BrightRed(s string) string
	Red(s string) string
	Gray(s string) string
	BrightYellow(s string) string
	BrightWhite(s string) string
	// Enabled reports whether styling is applied at all.
	Enabled() bool
}

// PlainColors returns every string unchanged.
type PlainColors struct{}

func (PlainColors) BrightGreen(s string) string  { return s }
func (PlainColors) BrightRed(s string) string    { return s }
func (PlainColors) Red(s string) string          { return s }
func (PlainColors) Gray(s string) string         { return s }
func (PlainColors) BrightYellow(s string) string { return s }
func (PlainColors) BrightWhite(s string) string  { return s }
func (PlainColors) Enabled() bool                { return false }

// StyledColors renders colors with lipgloss styles.
type StyledColors struct {
	enabled      bool
	brightGreen  lipgloss.Style
	brightRed    lipgloss.Style
	red          lipgloss.Style
	gray         lipgloss.Style
	brightYellow lipgloss.Style
	brightWhite  lipgloss.Style
}

// NewLipglossColors creates colors for output written to w.
//
// Colors are enabled only if w is a terminal.
func NewLipglossColors(w io.Writer) *StyledColors {
	return newStyledColors(lipgloss.NewRenderer(w), IsTerminal(w))
}

// NewANSIColors creates colors that always emit 16-color ANSI sequences,
// regardless of where the output goes.
func NewANSIColors() *StyledColors {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.ANSI)
	return newStyledColors(r, true)
}

func newStyledColors(r *lipgloss.Renderer, enabled bool) *StyledColors {
	return &StyledColors{
		enabled:      enabled,
		brightGreen:  r.NewStyle().Foreground(lipgloss.Color("10")),
		brightRed:    r.NewStyle().Foreground(lipgloss.Color("9")),
		red:          r.NewStyle().Foreground(lipgloss.Color("1")),
		gray:         r.NewStyle().Foreground(lipgloss.Color("8")),
		brightYellow: r.NewStyle().Foreground(lipgloss.Color("11")),
		brightWhite:  r.NewStyle().Foreground(lipgloss.Color("15")).Bold(true),
	}
}

func (c *StyledColors) render(style lipgloss.Style, s string) string {
	if !c.enabled || s == "" {
		return s
	}
	return style.Render(s)
}

func (c *StyledColors) BrightGreen(s string) string  { return c.render(c.brightGreen, s) }
func (c *StyledColors) BrightRed(s string) string    { return c.render(c.brightRed, s) }
func (c *StyledColors) Red(s string) string          { return c.render(c.red, s) }
func (c *StyledColors) Gray(s string) string         { return c.render(c.gray, s) }
func (c *StyledColors) BrightYellow(s string) string { return c.render(c.brightYellow, s) }
func (c *StyledColors) BrightWhite(s string) string  { return c.render(c.brightWhite, s) }
func (c *StyledColors) Enabled() bool                { return c.enabled }

// IsTerminal reports whether w is a terminal file.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

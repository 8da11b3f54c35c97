package format

import (
	"runtime"

	"github.com/ansel1/specreport/results"
)

// Glyphs is the set of symbols shown in front of a test line.
type Glyphs struct {
	Success string
	Failure string
	Ignored string
}

var (
	UnicodeGlyphs = Glyphs{Success: "✔", Failure: "✘", Ignored: "-"}
	// ASCIIGlyphs is used where the console cannot be trusted with Unicode.
	ASCIIGlyphs = Glyphs{Success: "√", Failure: "X", Ignored: "-"}
)

// GlyphsFor returns the glyph set for a GOOS value.
func GlyphsFor(goos string) Glyphs {
	if goos == "windows" {
		return ASCIIGlyphs
	}
	return UnicodeGlyphs
}

// platformGlyphs is chosen once for the process.
var platformGlyphs = GlyphsFor(runtime.GOOS)

// Theme maps a test status to a symbol and a color.
type Theme struct {
	glyphs Glyphs
	colors Colors
}

// NewTheme creates a theme using the platform glyph set.
func NewTheme(colors Colors) Theme {
	return NewThemeWithGlyphs(colors, platformGlyphs)
}

// NewThemeWithGlyphs creates a theme with an explicit glyph set.
func NewThemeWithGlyphs(colors Colors, glyphs Glyphs) Theme {
	if colors == nil {
		colors = PlainColors{}
	}
	return Theme{glyphs: glyphs, colors: colors}
}

// Glyphs returns the theme's glyph set.
func (t Theme) Glyphs() Glyphs {
	return t.glyphs
}

// SymbolFor returns the glyph and color function for a status.
func (t Theme) SymbolFor(status results.Status) (string, func(string) string) {
	switch status {
	case results.StatusSuccess:
		return t.glyphs.Success, t.colors.BrightGreen
	case results.StatusFailure, results.StatusError:
		return t.glyphs.Failure, t.colors.BrightRed
	case results.StatusIgnored:
		return t.glyphs.Ignored, t.colors.Gray
	}
	return t.glyphs.Failure, t.colors.BrightRed
}

// Symbol returns the colored glyph for a status.
func (t Theme) Symbol(status results.Status) string {
	glyph, color := t.SymbolFor(status)
	return color(glyph)
}

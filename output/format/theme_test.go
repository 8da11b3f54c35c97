package format

import (
	"testing"

	"github.com/ansel1/specreport/results"
	"github.com/stretchr/testify/assert"
)

func TestGlyphsFor(t *testing.T) {
	assert.Equal(t, ASCIIGlyphs, GlyphsFor("windows"))
	assert.Equal(t, UnicodeGlyphs, GlyphsFor("linux"))
	assert.Equal(t, UnicodeGlyphs, GlyphsFor("darwin"))

	assert.Equal(t, Glyphs{Success: "√", Failure: "X", Ignored: "-"}, ASCIIGlyphs)
	assert.Equal(t, Glyphs{Success: "✔", Failure: "✘", Ignored: "-"}, UnicodeGlyphs)
}

func TestThemeSymbolFor(t *testing.T) {
	colors := NewANSIColors()
	theme := NewThemeWithGlyphs(colors, UnicodeGlyphs)

	tests := []struct {
		status    results.Status
		glyph     string
		wantColor func(string) string
	}{
		{results.StatusSuccess, "✔", colors.BrightGreen},
		{results.StatusFailure, "✘", colors.BrightRed},
		{results.StatusError, "✘", colors.BrightRed},
		{results.StatusIgnored, "-", colors.Gray},
	}

	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			glyph, color := theme.SymbolFor(tt.status)
			assert.Equal(t, tt.glyph, glyph)
			assert.Equal(t, tt.wantColor("x"), color("x"))
			assert.Equal(t, tt.wantColor(tt.glyph), theme.Symbol(tt.status))
		})
	}
}

func TestThemeSymbolIsDeterministic(t *testing.T) {
	theme := NewThemeWithGlyphs(PlainColors{}, ASCIIGlyphs)
	for _, status := range results.AllStatuses {
		first := theme.Symbol(status)
		for i := 0; i < 3; i++ {
			assert.Equal(t, first, theme.Symbol(status))
		}
	}
}

func TestNewThemeUsesPlatformGlyphs(t *testing.T) {
	theme := NewTheme(nil)
	assert.Equal(t, platformGlyphs, theme.Glyphs())
}

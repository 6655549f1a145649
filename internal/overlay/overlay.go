package overlay

import (
	"fmt"
	"strings"

	"github.com/tarjuma/tarjuma/internal/style"
)

// Layout is the pixel-space placement of a caption on a concrete surface.
// Style positions are percentages and sizes are expressed against the
// 1080-unit reference height, so the same config lands proportionally on
// any resolution.
type Layout struct {
	X             float64
	Y             float64
	FontSize      float64
	OriginalSize  float64
	SurfaceWidth  int
	SurfaceHeight int
}

// ComputeLayout converts the relative style config into absolute
// coordinates on a surface of the given dimensions.
func ComputeLayout(cfg style.Config, width, height int) Layout {
	size := float64(cfg.FontSize) / style.ReferenceHeight * float64(height)

	// original text renders beneath the translation at roughly a third
	// of its size, matching the editor preview
	original := size * 0.35
	if original < 1 {
		original = 1
	}

	return Layout{
		X:             cfg.PositionX / 100 * float64(width),
		Y:             cfg.PositionY / 100 * float64(height),
		FontSize:      size,
		OriginalSize:  original,
		SurfaceWidth:  width,
		SurfaceHeight: height,
	}
}

// ResolveFontName picks the family the overlay actually renders with. A
// custom font always wins over the configured family; an empty config
// falls back to an Arabic-capable serif so missing fonts never come out
// as blank glyphs.
func ResolveFontName(cfg style.Config, customFamily string) string {
	if cfg.CustomFontURL != "" && customFamily != "" {
		return customFamily
	}
	if strings.TrimSpace(cfg.FontFamily) != "" {
		return cfg.FontFamily
	}
	return "Amiri"
}

// assColor converts #rrggbb into ASS &HAABBGGRR& notation (alpha 00).
func assColor(c style.RGB) string {
	return fmt.Sprintf("&H00%02X%02X%02X&", c.B, c.G, c.R)
}

// assColorStyle is the style-line variant, without the trailing ampersand.
func assColorStyle(c style.RGB) string {
	return fmt.Sprintf("&H00%02X%02X%02X", c.B, c.G, c.R)
}

// sanitize keeps caption text from smuggling override tags into the
// rendered document.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\n", "\\N")
	return strings.TrimSpace(s)
}

// assTime renders seconds as h:mm:ss.cc, the [Events] timestamp format.
func assTime(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	centis := int(seconds*100 + 0.5)
	h := centis / 360000
	m := (centis / 6000) % 60
	s := (centis / 100) % 60
	cs := centis % 100
	return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
}

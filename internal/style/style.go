package style

import (
	"fmt"
	"strings"
)

// caption entry/exit animation
type Animation string

const (
	AnimationFade   Animation = "fade"
	AnimationBlur   Animation = "blur"
	AnimationReveal Animation = "reveal"
	AnimationBounce Animation = "bounce"
	AnimationTyping Animation = "typing"
	AnimationGlow   Animation = "glow"
)

// ReferenceHeight is the surface height FontSize is expressed against.
// Rendering onto a taller or shorter surface scales the size proportionally.
const ReferenceHeight = 1080.0

// visual configuration for the caption overlay
type Config struct {
	FontFamily string `json:"fontFamily"    validate:"required"`
	FontSize   int    `json:"fontSize"      validate:"gt=0"`
	FontColor  string `json:"fontColor"     validate:"hexcolor"`
	// position as a percentage of the render surface, so the layout
	// survives resolution changes between preview and export
	PositionX     float64   `json:"positionX"     validate:"gte=0,lte=100"`
	PositionY     float64   `json:"positionY"     validate:"gte=0,lte=100"`
	Animation     Animation `json:"animationType" validate:"oneof=fade blur reveal bounce typing glow"`
	CustomFontURL string    `json:"customFontUrl,omitempty" validate:"omitempty,url"`
}

// the configuration every new project starts with
func Default() Config {
	return Config{
		FontFamily: "Amiri",
		FontSize:   48,
		FontColor:  "#ffffff",
		PositionX:  50,
		PositionY:  80,
		Animation:  AnimationFade,
	}
}

func (c Config) Validate() error {
	if c.FontSize <= 0 {
		return fmt.Errorf("font size must be positive, got %d", c.FontSize)
	}
	if c.PositionX < 0 || c.PositionX > 100 {
		return fmt.Errorf("positionX %v outside [0,100]", c.PositionX)
	}
	if c.PositionY < 0 || c.PositionY > 100 {
		return fmt.Errorf("positionY %v outside [0,100]", c.PositionY)
	}
	switch c.Animation {
	case AnimationFade, AnimationBlur, AnimationReveal,
		AnimationBounce, AnimationTyping, AnimationGlow:
	default:
		return fmt.Errorf("unknown animation type %q", c.Animation)
	}
	if _, err := ParseHexColor(c.FontColor); err != nil {
		return err
	}
	return nil
}

// RGB color parsed from a #rrggbb string
type RGB struct {
	R, G, B uint8
}

func ParseHexColor(s string) (RGB, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") || len(s) != 7 {
		return RGB{}, fmt.Errorf("invalid color %q: expected #rrggbb", s)
	}

	var c RGB
	if _, err := fmt.Sscanf(s[1:], "%02x%02x%02x", &c.R, &c.G, &c.B); err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return c, nil
}

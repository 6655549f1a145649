package overlay

import (
	"fmt"
	"strings"

	"github.com/tarjuma/tarjuma/internal/caption"
	"github.com/tarjuma/tarjuma/internal/style"
)

// render mode for a composed document
type Mode int

const (
	// ModeSettled renders every caption at its fully settled visual
	// state for the whole active interval. Export uses this: a frame at
	// any instant inside the interval is identical to any other.
	ModeSettled Mode = iota
	// ModeAnimated adds the entry/exit transitions for interactive
	// preview playback.
	ModeAnimated
)

// entry/exit transition length in milliseconds
const transitionMillis = 400

// Compositor turns caption lines plus a style config into a complete ASS
// document sized to a concrete surface. libass (via the ffmpeg/ffplay ass
// filter) does the actual glyph drawing, which keeps preview and export
// pixel-for-pixel on the same rendering path.
type Compositor struct {
	cfg      style.Config
	fontName string
	color    style.RGB
}

// NewCompositor validates the style up front so rendering can never hit a
// malformed color mid-document.
func NewCompositor(cfg style.Config, customFamily string) (*Compositor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	color, err := style.ParseHexColor(cfg.FontColor)
	if err != nil {
		return nil, err
	}

	return &Compositor{
		cfg:      cfg,
		fontName: ResolveFontName(cfg, customFamily),
		color:    color,
	}, nil
}

func (c *Compositor) FontName() string {
	return c.fontName
}

// Document composes the full overlay for a surface of the given native
// dimensions. Overlapping lines are clipped to first-match visibility so
// the burned output shows exactly what caption.Resolve would pick at
// every instant.
func (c *Compositor) Document(lines []caption.Line, width, height int, mode Mode) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("invalid surface dimensions %dx%d", width, height)
	}

	layout := ComputeLayout(c.cfg, width, height)

	var sb strings.Builder

	sb.WriteString("[Script Info]\n")
	sb.WriteString("Title: Tarjuma Captions\n")
	sb.WriteString("ScriptType: v4.00+\n")
	fmt.Fprintf(&sb, "PlayResX: %d\n", width)
	fmt.Fprintf(&sb, "PlayResY: %d\n", height)
	sb.WriteString("ScaledBorderAndShadow: yes\n")
	sb.WriteString("WrapStyle: 0\n\n")

	sb.WriteString("[V4+ Styles]\n")
	sb.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
	// Alignment 5 centers the text block on the \pos anchor; Shadow 2
	// plus a touch of \blur in the events gives the fixed soft drop
	// shadow that keeps captions legible on any background.
	fmt.Fprintf(&sb,
		"Style: Caption,%s,%.0f,%s,&H000000FF,&H00000000,&H80000000,0,0,0,0,100,100,0,0,1,0,2,5,10,10,10,1\n\n",
		c.fontName,
		layout.FontSize,
		assColorStyle(c.color),
	)

	sb.WriteString("[Events]\n")
	sb.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")

	for i := range lines {
		if err := lines[i].Validate(); err != nil {
			return "", fmt.Errorf("caption line %d: %w", i, err)
		}
		for _, seg := range visibleSegments(lines, i) {
			sb.WriteString(c.dialogue(lines[i], seg, layout, mode))
		}
	}

	return sb.String(), nil
}

// continuous visibility window of one caption line
type segment struct {
	start, end float64
}

// visibleSegments clips line i's interval against every earlier line.
// The resolver gives the first matching line the win on overlap, so a
// later line is only visible where no earlier interval covers the clock.
func visibleSegments(lines []caption.Line, i int) []segment {
	segs := []segment{{lines[i].Start, lines[i].End}}

	for j := 0; j < i; j++ {
		blocked := segment{lines[j].Start, lines[j].End}
		var next []segment
		for _, s := range segs {
			next = append(next, subtract(s, blocked)...)
		}
		segs = next
	}

	out := segs[:0]
	for _, s := range segs {
		if s.end > s.start {
			out = append(out, s)
		}
	}
	return out
}

func subtract(s, blocked segment) []segment {
	if blocked.end <= s.start || blocked.start >= s.end {
		return []segment{s}
	}

	var out []segment
	if blocked.start > s.start {
		out = append(out, segment{s.start, blocked.start})
	}
	if blocked.end < s.end {
		out = append(out, segment{blocked.end, s.end})
	}
	return out
}

func (c *Compositor) dialogue(l caption.Line, seg segment, layout Layout, mode Mode) string {
	text := c.eventText(l, seg, layout, mode)
	return fmt.Sprintf(
		"Dialogue: 0,%s,%s,Caption,,0,0,0,,%s\n",
		assTime(seg.start),
		assTime(seg.end),
		text,
	)
}

// eventText builds the override-tag prefix plus the two-deck caption
// body: the translation, then the original text smaller and dimmed.
func (c *Compositor) eventText(l caption.Line, seg segment, layout Layout, mode Mode) string {
	var sb strings.Builder

	sb.WriteString("{")
	sb.WriteString(c.motionTags(seg, layout, mode))
	// soft shadow on every variant
	sb.WriteString("\\blur0.6")
	if animated := mode == ModeAnimated; animated || c.cfg.Animation == style.AnimationGlow {
		sb.WriteString(c.effectTags(seg, animated))
	}
	sb.WriteString("}")

	sb.WriteString(c.bodyText(l, layout, mode, seg))

	return sb.String()
}

// motionTags anchors the caption. Bounce and reveal enter by moving onto
// the anchor, so in animated mode they use \move; everything else (and
// every settled render) pins with \pos.
func (c *Compositor) motionTags(seg segment, layout Layout, mode Mode) string {
	x, y := layout.X, layout.Y

	if mode == ModeAnimated {
		switch c.cfg.Animation {
		case style.AnimationBounce:
			return fmt.Sprintf("\\move(%.1f,%.1f,%.1f,%.1f,0,%d)",
				x, y+float64(layout.SurfaceHeight)*0.09, x, y, transitionMillis)
		case style.AnimationReveal:
			return fmt.Sprintf("\\move(%.1f,%.1f,%.1f,%.1f,0,%d)",
				x, y+layout.FontSize*0.4, x, y, transitionMillis)
		}
	}

	return fmt.Sprintf("\\pos(%.1f,%.1f)", x, y)
}

// effectTags renders the animation's visual parameters. In settled mode
// only glow applies, because glow's settled state still carries its halo;
// the other animations settle to the plain caption.
func (c *Compositor) effectTags(seg segment, animated bool) string {
	durMillis := int((seg.end - seg.start) * 1000)
	fade := transitionMillis
	if durMillis < 2*fade {
		fade = durMillis / 2
	}

	if !animated {
		// settled glow halo
		return fmt.Sprintf("\\bord2\\3c%s\\blur3", assColor(c.color))
	}

	switch c.cfg.Animation {
	case style.AnimationBlur:
		exitStart := durMillis - fade
		return fmt.Sprintf(
			"\\fad(%d,%d)\\blur12\\t(0,%d,\\blur0.6)\\t(%d,%d,\\blur6)",
			fade, fade, fade, exitStart, durMillis,
		)
	case style.AnimationGlow:
		return fmt.Sprintf(
			"\\fad(%d,%d)\\bord2\\3c%s\\t(0,%d,\\blur3)",
			fade, fade, assColor(c.color), fade,
		)
	case style.AnimationBounce:
		return fmt.Sprintf("\\fad(%d,%d)", fade/2, fade)
	case style.AnimationTyping:
		// reveal handled per-word in bodyText
		return fmt.Sprintf("\\fad(0,%d)", fade/2)
	default: // fade, reveal
		return fmt.Sprintf("\\fad(%d,%d)", fade, fade)
	}
}

func (c *Compositor) bodyText(l caption.Line, layout Layout, mode Mode, seg segment) string {
	translation := sanitize(l.Translation)

	if mode == ModeAnimated && c.cfg.Animation == style.AnimationTyping {
		translation = karaoke(translation)
	}

	var sb strings.Builder
	sb.WriteString(translation)

	if original := sanitize(l.Text); original != "" {
		fmt.Fprintf(&sb,
			"\\N{\\r\\fn%s\\fs%.0f\\alpha&H80&\\i1\\c&HFFFFFF&\\blur0.6}%s",
			c.fontName,
			layout.OriginalSize,
			original,
		)
	}

	return sb.String()
}

// karaoke spreads the entry window across the words of the translation,
// approximating the typewriter reveal.
func karaoke(text string) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	perWord := transitionMillis / 10 / len(words) // \k counts centiseconds
	if perWord < 1 {
		perWord = 1
	}

	var sb strings.Builder
	for i, w := range words {
		fmt.Fprintf(&sb, "{\\k%d}%s", perWord, w)
		if i < len(words)-1 {
			sb.WriteString(" ")
		}
	}
	return sb.String()
}

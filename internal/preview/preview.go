package preview

import (
	"context"
	"time"

	"github.com/tarjuma/tarjuma/internal/caption"
	"github.com/tarjuma/tarjuma/internal/style"
)

// entry/exit transition length
const TransitionDuration = 400 * time.Millisecond

// transition direction of a rendered caption
type Transition int

const (
	// TransitionSettled means the caption is fully visible.
	TransitionSettled Transition = iota
	// TransitionEntering interpolates the caption in. Phase runs 0 -> 1.
	TransitionEntering
	// TransitionExiting interpolates the caption out. Phase runs 0 -> 1;
	// at 1 the caption is gone.
	TransitionExiting
)

// Frame is one visual state handed to a Renderer: at most one caption,
// with its transition progress.
type Frame struct {
	Line       *caption.Line
	Transition Transition
	Phase      float64 // [0,1] within the transition window
}

// Renderer paints a frame. The driver guarantees it never asks for two
// captions at once.
type Renderer interface {
	Render(frame Frame)
	Clear()
}

// FontInstaller makes a custom font usable before the next paint that
// references it.
type FontInstaller interface {
	Ensure(ctx context.Context, url string) (string, error)
}

// Driver re-resolves the active caption on every playback-time report
// and drives entry/exit transitions between caption changes.
//
// Resolution uses the same first-match rule as export, so the preview
// shows exactly what the burned output will contain.
type Driver struct {
	lines    []caption.Line
	cfg      style.Config
	renderer Renderer
	fonts    FontInstaller
	now      func() time.Time

	current         *caption.Line
	exiting         *caption.Line
	transitionStart time.Time
}

func NewDriver(renderer Renderer, fonts FontInstaller, lines []caption.Line, cfg style.Config) *Driver {
	return &Driver{
		lines:    lines,
		cfg:      cfg,
		renderer: renderer,
		fonts:    fonts,
		now:      time.Now,
	}
}

// SetLines replaces the caption list, e.g. after an edit mid-playback.
func (d *Driver) SetLines(lines []caption.Line) {
	d.lines = lines
}

// SetStyle replaces the style config. A changed custom font URL is
// installed before the next paint that would reference it; on install
// failure text falls back to the configured family.
func (d *Driver) SetStyle(ctx context.Context, cfg style.Config) error {
	fontChanged := cfg.CustomFontURL != d.cfg.CustomFontURL
	d.cfg = cfg

	if fontChanged && cfg.CustomFontURL != "" && d.fonts != nil {
		if _, err := d.fonts.Ensure(ctx, cfg.CustomFontURL); err != nil {
			return err
		}
	}
	return nil
}

// OnTimeUpdate is the playback-time callback. It resolves the active
// caption, starts transitions on identity changes, and renders.
func (d *Driver) OnTimeUpdate(videoTime float64) {
	line := caption.Resolve(d.lines, videoTime)

	if !sameLine(line, d.current) {
		if d.current != nil {
			// the departing caption plays its exit before anything else
			d.exiting = d.current
			d.transitionStart = d.now()
		} else if d.exiting == nil {
			d.transitionStart = d.now()
		}
		d.current = line
	}

	d.renderFrame()
}

// Current returns the caption the driver is showing, if any.
func (d *Driver) Current() *caption.Line {
	return d.current
}

func (d *Driver) renderFrame() {
	phase := d.phase()

	// exit and entry never overlap: the old caption finishes leaving,
	// then the new one gets a full transition window of its own
	if d.exiting != nil {
		if phase < 1 {
			d.renderer.Render(Frame{Line: d.exiting, Transition: TransitionExiting, Phase: phase})
			return
		}
		d.exiting = nil
		d.transitionStart = d.now()
		phase = 0
	}

	if d.current != nil {
		transition := TransitionEntering
		if phase >= 1 {
			transition = TransitionSettled
		}
		d.renderer.Render(Frame{Line: d.current, Transition: transition, Phase: phase})
		return
	}

	d.renderer.Clear()
}

func (d *Driver) phase() float64 {
	elapsed := d.now().Sub(d.transitionStart)
	if elapsed >= TransitionDuration {
		return 1
	}
	if elapsed < 0 {
		return 0
	}
	return float64(elapsed) / float64(TransitionDuration)
}

func sameLine(a, b *caption.Line) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID
}

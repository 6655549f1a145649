package preview

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/tarjuma/tarjuma/internal/caption"
	"github.com/tarjuma/tarjuma/internal/style"
)

type recordingRenderer struct {
	frames []Frame
	clears int
}

func (r *recordingRenderer) Render(frame Frame) { r.frames = append(r.frames, frame) }
func (r *recordingRenderer) Clear()             { r.clears++ }

func (r *recordingRenderer) last(t *testing.T) Frame {
	t.Helper()
	if len(r.frames) == 0 {
		t.Fatal("no frames rendered")
	}
	return r.frames[len(r.frames)-1]
}

type fakeInstaller struct {
	ensured []string
	err     error
}

func (f *fakeInstaller) Ensure(ctx context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.ensured = append(f.ensured, url)
	return "/fonts/" + url, nil
}

// fixed-clock driver for deterministic phases
func newTestDriver(renderer Renderer, lines []caption.Line) (*Driver, *time.Time) {
	d := NewDriver(renderer, nil, lines, style.Default())
	clock := time.Unix(1000, 0)
	d.now = func() time.Time { return clock }
	return d, &clock
}

func previewLines() []caption.Line {
	return []caption.Line{
		caption.NewLine(1, 3, "hello", "مرحبا"),
		caption.NewLine(5, 7, "goodbye", "وداعا"),
	}
}

func TestDriverEntersOnMatch(t *testing.T) {
	r := &recordingRenderer{}
	d, clock := newTestDriver(r, previewLines())

	d.OnTimeUpdate(1.5)
	frame := r.last(t)
	if frame.Line == nil || frame.Line.Translation != "مرحبا" {
		t.Fatalf("frame line = %+v", frame.Line)
	}
	if frame.Transition != TransitionEntering || frame.Phase != 0 {
		t.Errorf("transition = %v phase = %v, want entering at 0", frame.Transition, frame.Phase)
	}

	// mid-transition
	*clock = clock.Add(200 * time.Millisecond)
	d.OnTimeUpdate(1.6)
	frame = r.last(t)
	if frame.Transition != TransitionEntering || frame.Phase != 0.5 {
		t.Errorf("transition = %v phase = %v, want entering at 0.5", frame.Transition, frame.Phase)
	}

	// settled
	*clock = clock.Add(400 * time.Millisecond)
	d.OnTimeUpdate(1.8)
	frame = r.last(t)
	if frame.Transition != TransitionSettled || frame.Phase != 1 {
		t.Errorf("transition = %v phase = %v, want settled", frame.Transition, frame.Phase)
	}
}

func TestDriverExitsIntoGap(t *testing.T) {
	r := &recordingRenderer{}
	d, clock := newTestDriver(r, previewLines())

	d.OnTimeUpdate(2.0)
	*clock = clock.Add(time.Second)

	// into the gap between the two lines
	d.OnTimeUpdate(4.0)
	frame := r.last(t)
	if frame.Transition != TransitionExiting {
		t.Fatalf("transition = %v, want exiting", frame.Transition)
	}
	if frame.Line == nil || frame.Line.Translation != "مرحبا" {
		t.Errorf("exiting frame should show the old caption")
	}

	// after the exit window the surface is cleared
	*clock = clock.Add(500 * time.Millisecond)
	d.OnTimeUpdate(4.2)
	if r.clears == 0 {
		t.Error("surface not cleared after exit transition")
	}
}

func TestDriverSequencesExitBeforeEntry(t *testing.T) {
	r := &recordingRenderer{}
	d, clock := newTestDriver(r, previewLines())

	d.OnTimeUpdate(2.0)
	*clock = clock.Add(time.Second)

	// jump straight from line 1 into line 2: the old caption exits
	// first, the new one only enters once the exit has finished
	d.OnTimeUpdate(5.5)
	frame := r.last(t)
	if frame.Line == nil || frame.Line.Translation != "مرحبا" {
		t.Fatalf("frame line = %+v, want the old caption exiting", frame.Line)
	}
	if frame.Transition != TransitionExiting {
		t.Errorf("transition = %v, want exiting", frame.Transition)
	}

	// exit window elapsed: the new caption starts a fresh entry
	*clock = clock.Add(TransitionDuration)
	d.OnTimeUpdate(5.6)
	frame = r.last(t)
	if frame.Line == nil || frame.Line.Translation != "وداعا" {
		t.Fatalf("frame line = %+v, want the new caption", frame.Line)
	}
	if frame.Transition != TransitionEntering || frame.Phase != 0 {
		t.Errorf("transition = %v phase = %v, want entering at 0", frame.Transition, frame.Phase)
	}

	// the entry gets its own full window
	*clock = clock.Add(200 * time.Millisecond)
	d.OnTimeUpdate(5.7)
	frame = r.last(t)
	if frame.Transition != TransitionEntering || frame.Phase != 0.5 {
		t.Errorf("transition = %v phase = %v, want entering at 0.5", frame.Transition, frame.Phase)
	}
}

func TestDriverNeverShowsTwoCaptions(t *testing.T) {
	r := &recordingRenderer{}
	d, clock := newTestDriver(r, previewLines())

	// walk across the change with small steps; every rendered frame
	// carries exactly one caption
	for _, tick := range []float64{2.0, 2.9, 5.1, 5.2, 5.5, 6.0} {
		d.OnTimeUpdate(tick)
		*clock = clock.Add(100 * time.Millisecond)
	}
	for _, frame := range r.frames {
		if frame.Line == nil {
			t.Fatal("rendered a frame without a caption")
		}
	}
}

func TestDriverFirstMatchConsistency(t *testing.T) {
	overlapping := []caption.Line{
		caption.NewLine(1, 5, "first", "الاول"),
		caption.NewLine(2, 6, "second", "الثاني"),
	}
	r := &recordingRenderer{}
	d, _ := newTestDriver(r, overlapping)

	d.OnTimeUpdate(3.0)
	frame := r.last(t)
	if frame.Line.Translation != "الاول" {
		t.Errorf("overlap winner = %q, want first-match", frame.Line.Translation)
	}

	if resolved := caption.Resolve(overlapping, 3.0); resolved.ID != frame.Line.ID {
		t.Error("preview and resolver disagree on the active caption")
	}
}

func TestDriverClearsInUncaptionedGap(t *testing.T) {
	r := &recordingRenderer{}
	d, clock := newTestDriver(r, previewLines())

	d.OnTimeUpdate(0.5)
	*clock = clock.Add(time.Second)
	d.OnTimeUpdate(0.6)
	if len(r.frames) != 0 {
		t.Errorf("rendered %d frames with no active caption", len(r.frames))
	}
	if r.clears == 0 {
		t.Error("expected surface clear")
	}
}

func TestSetStyleInstallsChangedFont(t *testing.T) {
	installer := &fakeInstaller{}
	d := NewDriver(&recordingRenderer{}, installer, nil, style.Default())

	cfg := style.Default()
	cfg.CustomFontURL = "https://fonts.example.com/a.ttf"
	if err := d.SetStyle(context.Background(), cfg); err != nil {
		t.Fatalf("SetStyle: %v", err)
	}
	if len(installer.ensured) != 1 {
		t.Fatalf("font installed %d times, want 1", len(installer.ensured))
	}

	// same URL again: no reinstall
	if err := d.SetStyle(context.Background(), cfg); err != nil {
		t.Fatalf("SetStyle: %v", err)
	}
	if len(installer.ensured) != 1 {
		t.Errorf("font reinstalled for unchanged URL")
	}
}

func TestSetStyleSurfacesInstallFailure(t *testing.T) {
	installer := &fakeInstaller{err: fmt.Errorf("404")}
	d := NewDriver(&recordingRenderer{}, installer, nil, style.Default())

	cfg := style.Default()
	cfg.CustomFontURL = "https://fonts.example.com/missing.ttf"
	if err := d.SetStyle(context.Background(), cfg); err == nil {
		t.Error("expected install failure to surface")
	}
}

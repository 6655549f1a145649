package overlay

import (
	"strings"
	"testing"

	"github.com/tarjuma/tarjuma/internal/caption"
	"github.com/tarjuma/tarjuma/internal/style"
)

func testLines() []caption.Line {
	return []caption.Line{
		{ID: "a", Start: 1, End: 3, Text: "hello", Translation: "مرحبا"},
	}
}

func TestDocumentSettled(t *testing.T) {
	comp, err := NewCompositor(style.Default(), "")
	if err != nil {
		t.Fatal(err)
	}

	doc, err := comp.Document(testLines(), 1920, 1080, ModeSettled)
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{
		"PlayResX: 1920",
		"PlayResY: 1080",
		"Style: Caption,Amiri,48,&H00FFFFFF",
		"Dialogue: 0,0:00:01.00,0:00:03.00,Caption",
		"\\pos(960.0,864.0)",
		"مرحبا",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("settled document missing %q:\n%s", want, doc)
		}
	}

	// settled state carries no transitions
	for _, banned := range []string{"\\fad", "\\move", "\\k"} {
		if strings.Contains(doc, banned) {
			t.Errorf("settled document contains transition tag %q", banned)
		}
	}
}

func TestDocumentOriginalTextDeck(t *testing.T) {
	comp, err := NewCompositor(style.Default(), "")
	if err != nil {
		t.Fatal(err)
	}

	doc, err := comp.Document(testLines(), 1920, 1080, ModeSettled)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, "\\N{\\r\\fnAmiri\\fs17\\alpha&H80&\\i1") {
		t.Errorf("original text deck missing or mis-styled:\n%s", doc)
	}
	if !strings.Contains(doc, "hello") {
		t.Error("original text dropped")
	}
}

func TestDocumentAnimatedFade(t *testing.T) {
	comp, err := NewCompositor(style.Default(), "")
	if err != nil {
		t.Fatal(err)
	}

	doc, err := comp.Document(testLines(), 1280, 720, ModeAnimated)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, "\\fad(400,400)") {
		t.Errorf("animated fade missing \\fad:\n%s", doc)
	}
}

func TestDocumentShortLineShrinksTransition(t *testing.T) {
	comp, err := NewCompositor(style.Default(), "")
	if err != nil {
		t.Fatal(err)
	}

	lines := []caption.Line{{ID: "a", Start: 0, End: 0.4, Translation: "قصير"}}
	doc, err := comp.Document(lines, 1280, 720, ModeAnimated)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc, "\\fad(200,200)") {
		t.Errorf("0.4s line should halve the fade window:\n%s", doc)
	}
}

func TestDocumentAnimations(t *testing.T) {
	tests := []struct {
		anim style.Animation
		want string
	}{
		{style.AnimationBlur, "\\blur12"},
		{style.AnimationBounce, "\\move("},
		{style.AnimationReveal, "\\move("},
		{style.AnimationTyping, "{\\k"},
		{style.AnimationGlow, "\\3c&H00FFFFFF&"},
	}

	for _, tt := range tests {
		t.Run(string(tt.anim), func(t *testing.T) {
			cfg := style.Default()
			cfg.Animation = tt.anim

			comp, err := NewCompositor(cfg, "")
			if err != nil {
				t.Fatal(err)
			}
			doc, err := comp.Document(testLines(), 1280, 720, ModeAnimated)
			if err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(doc, tt.want) {
				t.Errorf("%s preview missing %q:\n%s", tt.anim, tt.want, doc)
			}
		})
	}
}

func TestDocumentGlowSettledKeepsHalo(t *testing.T) {
	cfg := style.Default()
	cfg.Animation = style.AnimationGlow

	comp, err := NewCompositor(cfg, "")
	if err != nil {
		t.Fatal(err)
	}
	doc, err := comp.Document(testLines(), 1280, 720, ModeSettled)
	if err != nil {
		t.Fatal(err)
	}
	// glow settles into its halo, unlike the other animations
	if !strings.Contains(doc, "\\bord2\\3c&H00FFFFFF&\\blur3") {
		t.Errorf("settled glow lost its halo:\n%s", doc)
	}
	if strings.Contains(doc, "\\fad") {
		t.Error("settled glow must not fade")
	}
}

func TestDocumentOverlapFirstMatchClipping(t *testing.T) {
	comp, err := NewCompositor(style.Default(), "")
	if err != nil {
		t.Fatal(err)
	}

	lines := []caption.Line{
		{ID: "a", Start: 1, End: 5, Translation: "الأول"},
		{ID: "b", Start: 2, End: 6, Translation: "الثاني"},
	}

	doc, err := comp.Document(lines, 1920, 1080, ModeSettled)
	if err != nil {
		t.Fatal(err)
	}

	// line a keeps its full interval
	if !strings.Contains(doc, "Dialogue: 0,0:00:01.00,0:00:05.00") {
		t.Errorf("first line interval clipped:\n%s", doc)
	}
	// line b only shows where a is not active
	if !strings.Contains(doc, "Dialogue: 0,0:00:05.00,0:00:06.00") {
		t.Errorf("second line not clipped to first-match remainder:\n%s", doc)
	}
	if strings.Contains(doc, "Dialogue: 0,0:00:02.00,0:00:06.00") {
		t.Error("overlapping line emitted unclipped")
	}
}

func TestVisibleSegmentsFullyCovered(t *testing.T) {
	lines := []caption.Line{
		{ID: "a", Start: 0, End: 10},
		{ID: "b", Start: 2, End: 8},
	}
	if segs := visibleSegments(lines, 1); len(segs) != 0 {
		t.Errorf("fully shadowed line should vanish, got %v", segs)
	}
}

func TestVisibleSegmentsSplit(t *testing.T) {
	lines := []caption.Line{
		{ID: "a", Start: 3, End: 4},
		{ID: "b", Start: 1, End: 6},
	}
	segs := visibleSegments(lines, 1)
	if len(segs) != 2 {
		t.Fatalf("expected split into 2 segments, got %v", segs)
	}
	if segs[0] != (segment{1, 3}) || segs[1] != (segment{4, 6}) {
		t.Errorf("unexpected segments %v", segs)
	}
}

func TestDocumentRejectsBadInput(t *testing.T) {
	comp, err := NewCompositor(style.Default(), "")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := comp.Document(testLines(), 0, 1080, ModeSettled); err == nil {
		t.Error("expected error for zero width")
	}

	bad := []caption.Line{{ID: "a", Start: 5, End: 2}}
	if _, err := comp.Document(bad, 1920, 1080, ModeSettled); err == nil {
		t.Error("expected error for inverted line")
	}
}

func TestNewCompositorRejectsBadStyle(t *testing.T) {
	cfg := style.Default()
	cfg.FontColor = "blue"
	if _, err := NewCompositor(cfg, ""); err == nil {
		t.Error("expected error for malformed color")
	}
}

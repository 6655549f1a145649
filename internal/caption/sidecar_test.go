package caption

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSidecarSRTRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.srt")

	lines := []Line{
		NewLine(1.5, 3.25, "hello world", "مرحبا بالعالم"),
		NewLine(4, 6, "goodbye", "وداعا"),
	}

	if err := WriteSidecar(lines, FormatSRT, path); err != nil {
		t.Fatalf("WriteSidecar: %v", err)
	}

	parsed, err := ParseSRT(path)
	if err != nil {
		t.Fatalf("ParseSRT: %v", err)
	}
	if len(parsed) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(parsed))
	}

	if parsed[0].Start != 1.5 || parsed[0].End != 3.25 {
		t.Errorf("timing lost: %v-%v", parsed[0].Start, parsed[0].End)
	}
	if parsed[0].Translation != "مرحبا بالعالم" {
		t.Errorf("translation lost: %q", parsed[0].Translation)
	}
	if parsed[0].Text != "hello world" {
		t.Errorf("original text lost: %q", parsed[0].Text)
	}
}

func TestWriteSidecarVTTHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.vtt")

	if err := WriteSidecar([]Line{NewLine(0, 1, "", "نص")}, FormatVTT, path); err != nil {
		t.Fatalf("WriteSidecar: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "WEBVTT\n") {
		t.Error("VTT output missing WEBVTT header")
	}
	if !strings.Contains(content, "00:00:00.000 --> 00:00:01.000") {
		t.Errorf("VTT timestamps malformed:\n%s", content)
	}
}

func TestFormatClock(t *testing.T) {
	tests := []struct {
		seconds float64
		sep     string
		want    string
	}{
		{0, ",", "00:00:00,000"},
		{1.5, ",", "00:00:01,500"},
		{3661.042, ".", "01:01:01.042"},
		{-2, ",", "00:00:00,000"},
	}

	for _, tt := range tests {
		if got := formatClock(tt.seconds, tt.sep); got != tt.want {
			t.Errorf("formatClock(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestSidecarFormatFromExtension(t *testing.T) {
	if f, err := SidecarFormatFromExtension("a/b.SRT"); err != nil || f != FormatSRT {
		t.Errorf("got %v, %v", f, err)
	}
	if f, err := SidecarFormatFromExtension("b.vtt"); err != nil || f != FormatVTT {
		t.Errorf("got %v, %v", f, err)
	}
	if _, err := SidecarFormatFromExtension("b.ass"); err == nil {
		t.Error("expected error for .ass")
	}
}

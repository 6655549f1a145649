package ffmpeg

import "testing"

func TestFilterEscape(t *testing.T) {
	got := FilterEscape(`C:\renders\a'b.ass`)
	want := `C\:\\renders\\a\'b.ass`
	if got != want {
		t.Errorf("FilterEscape = %q, want %q", got, want)
	}
}

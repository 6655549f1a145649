package transcribe

import (
	"context"
	"strings"
	"testing"
)

func TestParseCaptionJSON(t *testing.T) {
	payload := `{
		"captions": [
			{"startTime": 1.0, "endTime": 3.0, "text": "hello world", "translation": "مرحبا بالعالم"},
			{"startTime": 4.5, "endTime": 6.25, "text": "goodbye", "translation": "وداعا"}
		]
	}`

	lines, err := parseCaptionJSON(payload)
	if err != nil {
		t.Fatalf("parseCaptionJSON: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Start != 1.0 || lines[0].End != 3.0 {
		t.Errorf("line 0 timing = %v-%v", lines[0].Start, lines[0].End)
	}
	if lines[0].Translation != "مرحبا بالعالم" {
		t.Errorf("line 0 translation = %q", lines[0].Translation)
	}
	if lines[0].ID == "" || lines[0].ID == lines[1].ID {
		t.Error("lines should get fresh unique identities")
	}
}

func TestParseCaptionJSONStripsMarkdownFence(t *testing.T) {
	payload := "```json\n" + `{"captions":[{"startTime":0,"endTime":1,"text":"a","translation":"ب"}]}` + "\n```"

	lines, err := parseCaptionJSON(payload)
	if err != nil {
		t.Fatalf("parseCaptionJSON: %v", err)
	}
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
}

func TestParseCaptionJSONHardFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", "sorry, I cannot do that"},
		{"empty captions", `{"captions":[]}`},
		{"missing captions key", `{"lines":[]}`},
		{"inverted interval", `{"captions":[{"startTime":5,"endTime":2,"text":"x","translation":"y"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseCaptionJSON(tt.payload); err == nil {
				t.Errorf("expected hard failure for %s", tt.name)
			}
		})
	}
}

func TestParseCaptionJSONTruncatesErrorEcho(t *testing.T) {
	_, err := parseCaptionJSON(strings.Repeat("x", 1000))
	if err == nil {
		t.Fatal("expected error")
	}
	if len(err.Error()) > 400 {
		t.Errorf("error echoes too much of the response: %d bytes", len(err.Error()))
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	if _, err := Factory(context.Background(), Provider("whisper"), "key", Options{}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewGeminiServiceRequiresAPIKey(t *testing.T) {
	if _, err := NewGeminiService(context.Background(), "", Options{}); err == nil {
		t.Error("expected error for missing API key")
	}
}

func TestBuildPromptMentionsContract(t *testing.T) {
	s := &GeminiService{options: Options{Prompt: "Focus on sung lyrics."}}
	prompt := s.buildPrompt()

	for _, want := range []string{"startTime", "endTime", "translation", "poetic Arabic", "Focus on sung lyrics."} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

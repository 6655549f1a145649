package transcribe

import (
	"context"
	"fmt"

	"github.com/tarjuma/tarjuma/internal/caption"
)

// Service produces timed, translated captions for a piece of media.
//
// A malformed or empty provider response is a hard failure: callers get
// an error and decide how to degrade (the editing surfaces keep the
// uploaded video and fall back to an empty caption list).
type Service interface {
	// Transcribe captions raw media bytes with a known MIME type.
	Transcribe(ctx context.Context, media []byte, mimeType string) ([]caption.Line, error)
	// TranscribeFile captions an on-disk media file, uploading it to
	// the provider instead of inlining the bytes.
	TranscribeFile(ctx context.Context, path string) ([]caption.Line, error)
}

// transcription service provider
type Provider string

const (
	ProviderGemini Provider = "gemini"
)

// transcription options
type Options struct {
	Model string
	// Extra prompt instructions appended to the built-in ones
	Prompt string
}

// creates a transcription service for the provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Service, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiService(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

package translate

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/tarjuma/tarjuma/internal/caption"
)

// implements Refiner using Google Gemini
type GeminiRefiner struct {
	client  *genai.Client
	model   string
	options Options
}

func NewGeminiRefiner(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*GeminiRefiner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiRefiner{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *GeminiRefiner) Refine(
	ctx context.Context,
	lines []caption.Line,
) ([]caption.Line, error) {
	return refineWith(ctx, t.complete, t.options, lines)
}

func (t *GeminiRefiner) complete(ctx context.Context, prompt string) (string, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
	}
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("refinement failed: %w", err)
	}

	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				responseText += part.Text
			}
		}
		if responseText != "" {
			break
		}
	}

	if responseText == "" {
		return "", fmt.Errorf("no text in Gemini response")
	}

	return responseText, nil
}

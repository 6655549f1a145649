package translate

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tarjuma/tarjuma/internal/caption"
)

// implements Refiner using Anthropic Claude
type AnthropicRefiner struct {
	client  anthropic.Client
	model   anthropic.Model
	options Options
}

func NewAnthropicRefiner(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*AnthropicRefiner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	model := anthropic.Model(opts.Model)
	if opts.Model == "" {
		model = anthropic.ModelClaudeHaiku4_5
	}

	return &AnthropicRefiner{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *AnthropicRefiner) Refine(
	ctx context.Context,
	lines []caption.Line,
) ([]caption.Line, error) {
	return refineWith(ctx, t.complete, t.options, lines)
}

func (t *AnthropicRefiner) complete(ctx context.Context, prompt string) (string, error) {
	message, err := t.client.Messages.New(
		ctx,
		anthropic.MessageNewParams{
			Model:     t.model,
			MaxTokens: 4096,
			Messages: []anthropic.MessageParam{
				anthropic.NewUserMessage(
					anthropic.NewTextBlock(prompt),
				),
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("refinement failed: %w", err)
	}

	if message == nil || len(message.Content) == 0 {
		return "", fmt.Errorf("empty response from Anthropic")
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	if responseText == "" {
		return "", fmt.Errorf("no text in Anthropic response")
	}

	return responseText, nil
}

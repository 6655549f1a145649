package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/tarjuma/tarjuma/internal/caption"
)

// implements Refiner using OpenAI Chat Completions
type OpenAIRefiner struct {
	client  openai.Client
	model   string
	options Options
}

func NewOpenAIRefiner(
	ctx context.Context,
	apiKey string,
	opts Options,
) (*OpenAIRefiner, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))

	model := opts.Model
	if model == "" {
		model = "gpt-5-mini"
	}

	return &OpenAIRefiner{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

func (t *OpenAIRefiner) Refine(
	ctx context.Context,
	lines []caption.Line,
) ([]caption.Line, error) {
	return refineWith(ctx, t.complete, t.options, lines)
}

func (t *OpenAIRefiner) complete(ctx context.Context, prompt string) (string, error) {
	completion, err := t.client.Chat.Completions.New(
		ctx,
		openai.ChatCompletionNewParams{
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.UserMessage(prompt),
			},
			Model: t.model,
		},
	)
	if err != nil {
		return "", fmt.Errorf("refinement failed: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	responseText := completion.Choices[0].Message.Content
	if responseText == "" {
		return "", fmt.Errorf("no text in OpenAI response")
	}

	return responseText, nil
}

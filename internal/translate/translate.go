package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/tarjuma/tarjuma/internal/caption"
)

// indexed translation passed to an LLM provider
type item struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Refiner re-polishes the Arabic translations of caption lines without
// touching timings, identities or the original text.
type Refiner interface {
	Refine(ctx context.Context, lines []caption.Line) ([]caption.Line, error)
}

// refinement provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// items per API request
const defaultBatchSize = 40

type Options struct {
	Model     string
	Prompt    string // extra instructions appended to the built-in ones
	BatchSize int
}

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return defaultBatchSize
}

// creates a Refiner for the provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Refiner, error) {
	switch provider {
	case ProviderGemini:
		return NewGeminiRefiner(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAIRefiner(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicRefiner(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported refinement provider: %s", provider)
	}
}

// completer is the single-prompt seam each provider implements
type completer func(ctx context.Context, prompt string) (string, error)

// refineWith drives batching for all providers: pull the translations
// out, rewrite them batch by batch, and graft the results back onto
// copies of the input lines.
func refineWith(
	ctx context.Context,
	complete completer,
	opts Options,
	lines []caption.Line,
) ([]caption.Line, error) {
	if len(lines) == 0 {
		return []caption.Line{}, nil
	}

	items := make([]item, len(lines))
	for i, l := range lines {
		items[i] = item{Index: i, Text: l.Translation}
	}

	out := make([]caption.Line, len(lines))
	copy(out, lines)

	batchSize := opts.batchSize()
	for start := 0; start < len(items); start += batchSize {
		end := start + batchSize
		if end > len(items) {
			end = len(items)
		}

		batch := items[start:end]
		response, err := complete(ctx, buildPrompt(opts, batch))
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", start/batchSize, err)
		}

		results, err := parseResults(response, batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d failed: %w", start/batchSize, err)
		}

		for _, r := range results {
			out[r.Index].Translation = r.Text
		}
	}

	return out, nil
}

// buildPrompt asks for a poetic rewrite while keeping the index mapping
// machine-checkable.
func buildPrompt(opts Options, items []item) string {
	var sb strings.Builder

	sb.WriteString("Rewrite the following Arabic caption translations in elevated, poetic Arabic.\n\n")
	sb.WriteString("IMPORTANT INSTRUCTIONS:\n")
	sb.WriteString("1. Preserve the meaning of every caption.\n")
	sb.WriteString("2. Keep each rewrite short enough to read as an on-screen caption.\n")
	sb.WriteString("3. Preserve line breaks in the same positions.\n")
	sb.WriteString("4. Return ONLY a JSON array with the same structure.\n")
	sb.WriteString("5. Each object must have 'index' and 'text' fields.\n")
	sb.WriteString("6. The 'index' values must match the input indices exactly.\n")
	sb.WriteString("7. Do not add any explanation or markdown formatting.\n\n")

	if opts.Prompt != "" {
		sb.WriteString(fmt.Sprintf("Additional instructions: %s\n\n", opts.Prompt))
	}

	sb.WriteString("Input JSON:\n")
	inputJSON, _ := json.MarshalIndent(items, "", "  ")
	sb.Write(inputJSON)
	sb.WriteString("\n\nOutput the rewritten JSON array only:")

	return sb.String()
}

// parseResults validates the provider echo: same count, only known
// indices, no duplicates. Anything else rejects the whole batch.
func parseResults(response string, batch []item) ([]item, error) {
	response = cleanJSONResponse(response)

	var results []item
	if err := json.Unmarshal([]byte(response), &results); err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(response, 200),
		)
	}

	if len(results) != len(batch) {
		return nil, fmt.Errorf("expected %d results, got %d", len(batch), len(results))
	}

	allowed := make(map[int]bool, len(batch))
	for _, it := range batch {
		allowed[it.Index] = true
	}

	seen := make(map[int]bool, len(results))
	for _, r := range results {
		if !allowed[r.Index] {
			return nil, fmt.Errorf("unexpected index %d in response", r.Index)
		}
		if seen[r.Index] {
			return nil, fmt.Errorf("duplicate index %d in response", r.Index)
		}
		seen[r.Index] = true
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	return results, nil
}

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	jsonBlockRegex := regexp.MustCompile("```(?:json)?\\s*")
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

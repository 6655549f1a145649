package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/tarjuma/tarjuma/internal/caption"
)

// implements Service using Google Gemini
type GeminiService struct {
	client  *genai.Client
	model   string
	options Options
}

// wire shape of the provider response
type captionResponse struct {
	Captions []captionItem `json:"captions"`
}

type captionItem struct {
	StartTime   float64 `json:"startTime"`
	EndTime     float64 `json:"endTime"`
	Text        string  `json:"text"`
	Translation string  `json:"translation"`
}

func NewGeminiService(ctx context.Context, apiKey string, opts Options) (*GeminiService, error) {
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

	return &GeminiService{
		client:  client,
		model:   model,
		options: opts,
	}, nil
}

// Transcribe captions inline media bytes.
func (s *GeminiService) Transcribe(
	ctx context.Context,
	media []byte,
	mimeType string,
) ([]caption.Line, error) {
	if len(media) == 0 {
		return nil, fmt.Errorf("empty media payload")
	}

	parts := []*genai.Part{
		genai.NewPartFromBytes(media, mimeType),
		genai.NewPartFromText(s.buildPrompt()),
	}

	return s.generate(ctx, parts)
}

// TranscribeFile uploads the media file first; inline payloads have hard
// size caps while uploads do not.
func (s *GeminiService) TranscribeFile(
	ctx context.Context,
	path string,
) ([]caption.Line, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("media file not found: %s", path)
	}

	uploadedFile, err := s.client.Files.UploadFromPath(ctx, path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload media file: %w", err)
	}

	defer func() {
		_, _ = s.client.Files.Delete(ctx, uploadedFile.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromURI(uploadedFile.URI, uploadedFile.MIMEType),
		genai.NewPartFromText(s.buildPrompt()),
	}

	return s.generate(ctx, parts)
}

func (s *GeminiService) generate(
	ctx context.Context,
	parts []*genai.Part,
) ([]caption.Line, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts(parts, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   captionSchema(),
	}

	result, err := s.client.Models.GenerateContent(ctx, s.model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}

	return parseTranscriptionResponse(result)
}

func (s *GeminiService) buildPrompt() string {
	var sb strings.Builder

	sb.WriteString("Analyze this media and extract captions with precise start and end times in seconds. ")
	sb.WriteString("Also translate each caption into poetic Arabic, keeping the register elevated and lyrical. ")
	sb.WriteString("Return ONLY a JSON object with a 'captions' array containing ")
	sb.WriteString("'startTime', 'endTime', 'text', and 'translation' for every caption, in chronological order. ")

	if s.options.Prompt != "" {
		sb.WriteString(s.options.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("No markdown, no commentary.")

	return sb.String()
}

func captionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"captions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"startTime":   {Type: genai.TypeNumber},
						"endTime":     {Type: genai.TypeNumber},
						"text":        {Type: genai.TypeString},
						"translation": {Type: genai.TypeString},
					},
					Required: []string{"startTime", "endTime", "text", "translation"},
				},
			},
		},
		Required: []string{"captions"},
	}
}

func parseTranscriptionResponse(result *genai.GenerateContentResponse) ([]caption.Line, error) {
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var responseText string
	for _, candidate := range result.Candidates {
		if candidate.Content != nil {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					responseText += part.Text
				}
			}
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	return parseCaptionJSON(responseText)
}

// parseCaptionJSON turns the provider payload into caption lines with
// fresh identities. Partial or malformed data is rejected wholesale so
// a broken response can never half-populate a project.
func parseCaptionJSON(text string) ([]caption.Line, error) {
	text = cleanJSONResponse(text)

	var resp captionResponse
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(text, 200),
		)
	}

	if len(resp.Captions) == 0 {
		return nil, fmt.Errorf("provider returned no captions")
	}

	lines := make([]caption.Line, 0, len(resp.Captions))
	for i, c := range resp.Captions {
		l := caption.NewLine(c.StartTime, c.EndTime, strings.TrimSpace(c.Text), strings.TrimSpace(c.Translation))
		if err := l.Validate(); err != nil {
			return nil, fmt.Errorf("caption %d rejected: %w", i, err)
		}
		lines = append(lines, l)
	}

	return lines, nil
}

// removes markdown formatting from the response
func cleanJSONResponse(s string) string {
	s = strings.TrimSpace(s)

	jsonBlockRegex := regexp.MustCompile("```(?:json)?\\s*")
	s = jsonBlockRegex.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, "```", "")

	return strings.TrimSpace(s)
}

// truncates a string to maxLen characters
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

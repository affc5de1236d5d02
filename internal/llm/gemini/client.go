package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"cv-backend/internal/llm"
	"cv-backend/internal/shared/telemetry"
)

const defaultModel = "gemini-2.5-flash"

// Client implements llm.Backend on the Gemini API with JSON response mode.
type Client struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewClient creates a Gemini client. An empty model uses gemini-2.5-flash.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: client, model: model, temperature: 0.7}, nil
}

// Invoke implements llm.Backend.
func (g *Client) Invoke(ctx context.Context, prompt string, schema llm.Schema) (json.RawMessage, error) {
	temperature := g.temperature
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		ResponseMIMEType: "application/json",
		ResponseSchema:   toGenaiSchema(schema),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generate: %v", llm.ErrUnavailable, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: gemini returned nil response", llm.ErrUnavailable)
	}

	fields := map[string]any{
		"provider": "gemini",
		"model":    g.model,
		"schema":   schema.Name,
	}
	if resp.UsageMetadata != nil {
		fields["prompt_tokens"] = resp.UsageMetadata.PromptTokenCount
		fields["completion_tokens"] = resp.UsageMetadata.CandidatesTokenCount
		fields["total_tokens"] = resp.UsageMetadata.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("%w: gemini response has no text", llm.ErrInvalidOutput)
	}
	return json.RawMessage(text), nil
}

// toGenaiSchema maps the output schema onto Gemini's OpenAPI subset.
func toGenaiSchema(schema llm.Schema) *genai.Schema {
	props := make(map[string]*genai.Schema, len(schema.Fields))
	for _, f := range schema.Fields {
		var s *genai.Schema
		switch f.Kind {
		case llm.KindStringList:
			s = &genai.Schema{
				Type:  genai.TypeArray,
				Items: &genai.Schema{Type: genai.TypeString},
			}
		default:
			s = &genai.Schema{Type: genai.TypeString}
		}
		s.Description = f.Description
		props[f.Name] = s
	}
	return &genai.Schema{
		Type:             genai.TypeObject,
		Description:      schema.Description,
		Properties:       props,
		Required:         schema.FieldNames(),
		PropertyOrdering: schema.FieldNames(),
	}
}

var _ llm.Backend = (*Client)(nil)

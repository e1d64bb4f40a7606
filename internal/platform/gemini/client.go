// Package gemini generates schema-constrained JSON with the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

const DefaultModel = "gemini-2.5-flash"

type Config struct {
	APIKey      string
	Model       string
	Temperature float32
}

type Client struct {
	log    *logger.Logger
	models *genai.Models
	model  string
	temp   float32
}

func NewClient(ctx context.Context, log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing GEMINI_API_KEY")
	}
	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		log:    log.With("service", "GeminiClient", "model", model),
		models: gc.Models,
		model:  model,
		temp:   cfg.Temperature,
	}, nil
}

// GenerateJSON asks for application/json output constrained by schema.
func (c *Client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if schema == nil {
		return nil, errors.New("schema required")
	}
	rs, err := ToSchema(schema)
	if err != nil {
		return nil, fmt.Errorf("convert schema %s: %w", schemaName, err)
	}
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(c.temp),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    rs,
	}
	resp, err := c.models.GenerateContent(ctx, c.model, []*genai.Content{genai.NewContentFromText(user, genai.RoleUser)}, cfg)
	if err != nil {
		return nil, err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("empty response from %s", c.model)
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("parse model JSON: %w", err)
	}
	if resp.UsageMetadata != nil {
		c.log.Debug("gemini json generated", "schema", schemaName, "prompt_tokens", resp.UsageMetadata.PromptTokenCount, "output_tokens", resp.UsageMetadata.CandidatesTokenCount)
	}
	return obj, nil
}

// Package openai is a small Responses API client for strict JSON-schema generation.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/yungbote/situacio-backend/internal/platform/httpx"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
)

type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// Temperature nil leaves the model default.
	Temperature *float64
}

type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	http       *http.Client
	maxRetries int

	temperature *float64
	// models that rejected temperature once are not sent it again
	noTempMu sync.RWMutex
	noTemp   map[string]bool
}

func NewClient(log *logger.Logger, cfg Config) (*Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4.1-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 180 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	return &Client{
		log:         log.With("service", "OpenAIClient"),
		baseURL:     baseURL,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		model:       model,
		http:        &http.Client{Timeout: timeout},
		maxRetries:  cfg.MaxRetries,
		temperature: cfg.Temperature,
		noTemp:      map[string]bool{},
	}, nil
}

// WithAPIKey returns a copy that authenticates with key.
func (c *Client) WithAPIKey(key string) *Client {
	return &Client{
		log:         c.log,
		baseURL:     c.baseURL,
		apiKey:      strings.TrimSpace(key),
		model:       c.model,
		http:        c.http,
		maxRetries:  c.maxRetries,
		temperature: c.temperature,
		noTemp:      map[string]bool{},
	}
}

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

func (e *HTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// QuotaExhausted reports a 429 caused by billing rather than request rate.
func (e *HTTPError) QuotaExhausted() bool {
	return e != nil && e.StatusCode == http.StatusTooManyRequests && strings.Contains(e.Body, "insufficient_quota")
}

type inputMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
	Text  struct {
		Format map[string]any `json:"format,omitempty"`
	} `json:"text,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Role    string `json:"role,omitempty"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text,omitempty"`
		} `json:"content,omitempty"`
	} `json:"output"`
	Refusal string `json:"refusal,omitempty"`
	Usage   struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
}

func extractOutputText(resp responsesResponse) string {
	var out strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" || item.Role != "assistant" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" {
				out.WriteString(c.Text)
			}
		}
	}
	return out.String()
}

// GenerateJSON asks for a strict json_schema response and decodes it.
func (c *Client) GenerateJSON(ctx context.Context, system string, user string, schemaName string, schema map[string]any) (map[string]any, error) {
	if schemaName == "" {
		return nil, errors.New("schemaName required")
	}
	if schema == nil {
		return nil, errors.New("schema required")
	}
	req := responsesRequest{
		Model: c.model,
		Input: []inputMessage{{Role: "system", Content: system}, {Role: "user", Content: user}},
	}
	req.Text.Format = map[string]any{
		"type":   "json_schema",
		"name":   schemaName,
		"schema": schema,
		"strict": true,
	}
	if c.temperature != nil && !c.rejectsTemperature(req.Model) {
		req.Temperature = c.temperature
	}

	var resp responsesResponse
	err := c.do(ctx, &req, &resp)
	if err != nil && req.Temperature != nil && isUnsupportedTemperature(err) {
		c.noteNoTemp(req.Model)
		req.Temperature = nil
		err = c.do(ctx, &req, &resp)
	}
	if err != nil {
		return nil, err
	}
	if resp.Refusal != "" {
		return nil, fmt.Errorf("model refused: %s", resp.Refusal)
	}
	text := extractOutputText(resp)
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("no output_text found in response")
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, fmt.Errorf("parse model JSON: %w", err)
	}
	c.log.Debug("openai json generated", "model", req.Model, "input_tokens", resp.Usage.InputTokens, "output_tokens", resp.Usage.OutputTokens)
	return obj, nil
}

func (c *Client) do(ctx context.Context, body any, out any) error {
	backoff := time.Second
	for attempt := 0; ; attempt++ {
		resp, raw, err := c.doOnce(ctx, body)
		if err == nil {
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("openai decode: %w", err)
			}
			return nil
		}
		var he *HTTPError
		if errors.As(err, &he) && he.QuotaExhausted() {
			return err
		}
		if attempt >= c.maxRetries || !httpx.IsRetryableError(err) {
			return err
		}
		sleepFor := httpx.JitterSleep(httpx.RetryAfterDuration(resp, backoff, 10*time.Second))
		c.log.Warn("OpenAI request retrying", "attempt", attempt+1, "max_retries", c.maxRetries, "sleep", sleepFor.String(), "error", err.Error())
		if err := httpx.Sleep(ctx, sleepFor); err != nil {
			return err
		}
		backoff *= 2
	}
}

func (c *Client) doOnce(ctx context.Context, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/responses", &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *Client) rejectsTemperature(model string) bool {
	c.noTempMu.RLock()
	defer c.noTempMu.RUnlock()
	return c.noTemp[strings.ToLower(model)]
}

func (c *Client) noteNoTemp(model string) {
	c.noTempMu.Lock()
	c.noTemp[strings.ToLower(model)] = true
	c.noTempMu.Unlock()
	c.log.Warn("model rejected temperature; omitting from now on", "model", model)
}

func isUnsupportedTemperature(err error) bool {
	var he *HTTPError
	if !errors.As(err, &he) || he.StatusCode != http.StatusBadRequest {
		return false
	}
	msg := strings.ToLower(he.Body)
	if !strings.Contains(msg, "temperature") {
		return false
	}
	for _, s := range []string{"unsupported parameter", "unknown parameter", "not supported", "does not support", "only the default", "unsupported_value"} {
		if strings.Contains(msg, s) {
			return true
		}
	}
	return false
}

package app

import (
	"context"
	"fmt"

	"github.com/yungbote/situacio-backend/internal/modules/situacio/extract"
	"github.com/yungbote/situacio-backend/internal/platform/gemini"
	"github.com/yungbote/situacio-backend/internal/platform/logger"
	"github.com/yungbote/situacio-backend/internal/platform/openai"
)

// newExtractor wires the configured provider. A missing server key is not fatal: every
// extraction then needs a caller key and fails with KeyMissing without one.
func newExtractor(ctx context.Context, log *logger.Logger, cfg Config) (*extract.Extractor, error) {
	var factory extract.Factory
	var serverKey string
	switch cfg.LLMProvider {
	case ProviderGemini:
		serverKey = cfg.GeminiAPIKey
		factory = func(key string) (extract.Generator, error) {
			return gemini.NewClient(ctx, log, gemini.Config{APIKey: key, Model: cfg.GeminiModel})
		}
	case ProviderOpenAI:
		serverKey = cfg.OpenAIAPIKey
		factory = func(key string) (extract.Generator, error) {
			return openai.NewClient(log, openai.Config{
				APIKey:     key,
				BaseURL:    cfg.OpenAIBaseURL,
				Model:      cfg.OpenAIModel,
				MaxRetries: cfg.OpenAIMaxRetries,
			})
		}
	default:
		return nil, fmt.Errorf("unsupported LLM_PROVIDER %q (want gemini|openai)", cfg.LLMProvider)
	}

	var gen extract.Generator
	if serverKey != "" {
		g, err := factory(serverKey)
		if err != nil {
			return nil, fmt.Errorf("init %s client: %w", cfg.LLMProvider, err)
		}
		gen = g
	} else {
		log.Warn("no server LLM key configured; extraction requires a caller key", "provider", cfg.LLMProvider)
	}
	return extract.New(log, gen, extract.Options{
		Factory: factory,
		Limiter: extract.NewLimiter(cfg.ExtractRatePerMin),
	}), nil
}

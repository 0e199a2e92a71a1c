package factory

import (
	"context"
	"fmt"

	"notelets-be/pkg/llm"
	"notelets-be/pkg/llm/anthropic"
	"notelets-be/pkg/llm/gemini"
	"notelets-be/pkg/llm/openai"
	"notelets-be/pkg/llm/openrouter"

	"go.uber.org/zap"
)

// Config carries the per-vendor credentials the factory can hand out.
type Config struct {
	AnthropicAPIKey  string
	OpenAIAPIKey     string
	OpenAIBaseURL    string
	OpenRouterAPIKey string
	OpenRouterSite   string
	OpenRouterTitle  string
	GeminiAPIKey     string

	// Logger receives stream-decode warnings from the REST clients.
	// Optional; clients fall back to a no-op logger.
	Logger *zap.Logger
}

// NewClient looks modelID up in the registry and returns the matching vendor
// client, configured to default to that model.
func NewClient(ctx context.Context, cfg Config, modelID string) (llm.Client, error) {
	info, ok := llm.Lookup(modelID)
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", modelID)
	}

	switch info.Provider {
	case llm.ProviderAnthropic:
		client := anthropic.NewClient(cfg.AnthropicAPIKey, "", modelID)
		client.SetLogger(cfg.Logger)
		return client, nil
	case llm.ProviderOpenAI:
		client := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, modelID)
		client.SetLogger(cfg.Logger)
		return client, nil
	case llm.ProviderOpenRouter:
		client := openrouter.NewClient(cfg.OpenRouterAPIKey, modelID, cfg.OpenRouterSite, cfg.OpenRouterTitle)
		client.SetLogger(cfg.Logger)
		return client, nil
	case llm.ProviderGemini:
		return gemini.NewClient(ctx, cfg.GeminiAPIKey, modelID)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", info.Provider)
	}
}

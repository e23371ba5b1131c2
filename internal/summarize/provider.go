package summarize

import (
	"context"
	"fmt"

	"github.com/runnerr0/recollect/internal/config"
)

// Provider is a chat-completion backend. jsonMode asks the model to
// emit a single JSON object.
type Provider interface {
	Name() string
	Chat(ctx context.Context, system, user string, jsonMode bool) (string, error)
}

// NewProvider constructs the configured chat provider.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaProvider(cfg.Host, cfg.Model)
	case "openai":
		return NewOpenAIProvider(cfg.APIKey, cfg.BaseURL, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

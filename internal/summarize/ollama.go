package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ollama/ollama/api"
)

// OllamaProvider chats with a local ollama server.
type OllamaProvider struct {
	client *api.Client
	model  string
}

// NewOllamaProvider creates a provider for host (e.g.
// "http://localhost:11434") and model.
func NewOllamaProvider(host, model string) (*OllamaProvider, error) {
	if model == "" {
		model = "llama3"
	}
	uri, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host %q: %w", host, err)
	}

	return &OllamaProvider{
		client: api.NewClient(uri, http.DefaultClient),
		model:  model,
	}, nil
}

func (p *OllamaProvider) Name() string {
	return "ollama"
}

// Chat sends a system+user exchange and returns the accumulated
// response content.
func (p *OllamaProvider) Chat(ctx context.Context, system, user string, jsonMode bool) (string, error) {
	req := &api.ChatRequest{
		Model: p.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: new(bool), // false
	}
	if jsonMode {
		req.Format = json.RawMessage(`"json"`)
	}

	var content string
	err := p.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content += resp.Message.Content
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return content, nil
}

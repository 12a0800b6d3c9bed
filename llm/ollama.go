package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
)

// OllamaClient implements Client against a local Ollama server. It exists so
// the agent layer can be exercised without cloud credentials.
type OllamaClient struct {
	client  *api.Client
	model   string
	baseURL string
}

// NewOllamaClient creates an Ollama client. An empty baseURL falls back to
// the default local server.
func NewOllamaClient(baseURL, model string) (*OllamaClient, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &OllamaClient{
		client:  api.NewClient(parsedURL, http.DefaultClient),
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Chat implements Client.Chat.
func (c *OllamaClient) Chat(ctx context.Context, messages []Message, callback StreamCallback) error {
	stream := true
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: convertOllamaMessages(messages),
		Stream:   &stream,
	}

	return c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		if callback != nil && resp.Message.Content != "" {
			return callback(resp.Message.Content)
		}
		return nil
	})
}

// Complete implements Client.Complete.
func (c *OllamaClient) Complete(ctx context.Context, messages []Message) (Completion, error) {
	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: convertOllamaMessages(messages),
		Stream:   &stream,
	}

	var text strings.Builder
	var final api.ChatResponse
	err := c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		if resp.Done {
			final = resp
		}
		return nil
	})
	if err != nil {
		return Completion{}, fmt.Errorf("Ollama completion error: %w", err)
	}

	return Completion{
		Text:         text.String(),
		FinishReason: final.DoneReason,
		Usage: Usage{
			PromptTokens:     final.Metrics.PromptEvalCount,
			CompletionTokens: final.Metrics.EvalCount,
			TotalTokens:      final.Metrics.PromptEvalCount + final.Metrics.EvalCount,
		},
	}, nil
}

// CompleteJSON implements Client.CompleteJSON using Ollama's structured
// output support (the Format field accepts a JSON schema).
func (c *OllamaClient) CompleteJSON(ctx context.Context, prompt string, schema *Schema) ([]byte, error) {
	schemaJSON, err := json.Marshal(schema.Definition())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}

	stream := false
	zero := float32(0)
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Format:   json.RawMessage(schemaJSON),
		Options:  map[string]any{"temperature": zero},
	}

	var text strings.Builder
	err = c.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		text.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Ollama structured completion error: %w", err)
	}

	return []byte(text.String()), nil
}

// Model implements Client.Model.
func (c *OllamaClient) Model() string {
	return c.model
}

// SetModel implements Client.SetModel.
func (c *OllamaClient) SetModel(model string) {
	c.model = model
}

func convertOllamaMessages(messages []Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{Role: msg.Role, Content: msg.Content}
	}
	return result
}

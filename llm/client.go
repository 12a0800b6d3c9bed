// Package llm defines the abstract interface for chat completion backends.
//
// Kaiwa talks to hosted completion APIs (Azure OpenAI, Anthropic) and local
// ones (Ollama) through a common Client interface. The agent layer stays
// backend-agnostic: it builds role-tagged message lists and consumes either a
// stream of content chunks or a blocking Completion carrying finish reason
// and token usage.
//
// # Architecture
//
//   - llm.Client defines the contract (interface)
//   - llm.AzureClient implements it for Azure OpenAI (openai-go/v3)
//   - llm.OllamaClient implements it for a local Ollama server
//   - llm.AnthropicClient implements it for the Anthropic API
//   - llm.New() factory creates clients from Config
//
// # Structured output
//
// CompleteJSON asks the backend for a reply constrained to a Schema. Backends
// without a native JSON mode return ErrJSONModeUnsupported; callers fall back
// to embedding the schema in the prompt (see Schema.PromptInstructions and
// ExtractJSON).
package llm

import (
	"context"
	"errors"
	"fmt"
)

// BackendType identifies the client implementation.
type BackendType string

const (
	BackendAzureOpenAI BackendType = "azure_openai"
	BackendOllama      BackendType = "ollama"
	BackendAnthropic   BackendType = "anthropic"
)

// Message is a single role-tagged turn in a conversation.
// Role is one of "system", "user", "assistant".
type Message struct {
	Role    string
	Content string
}

// StreamCallback is called for each chunk of a streamed response.
// Returning an error aborts the stream.
type StreamCallback func(chunk string) error

// Usage carries token counters from a non-streaming completion.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion is the result of a blocking completion call.
type Completion struct {
	Text         string
	FinishReason string
	Usage        Usage
}

// ErrJSONModeUnsupported is returned by CompleteJSON when the backend (or the
// configured model) cannot constrain output to a schema. Callers should fall
// back to a schema-in-prompt request.
var ErrJSONModeUnsupported = errors.New("backend does not support schema-constrained output")

// Client abstracts a chat completion backend.
type Client interface {
	// Chat sends messages and streams content chunks back via callback.
	Chat(ctx context.Context, messages []Message, callback StreamCallback) error

	// Complete sends messages and blocks for the full response, including
	// finish reason and token usage.
	Complete(ctx context.Context, messages []Message) (Completion, error)

	// CompleteJSON sends a single user prompt and asks for output conforming
	// to schema. Temperature is pinned to zero. May return
	// ErrJSONModeUnsupported.
	CompleteJSON(ctx context.Context, prompt string, schema *Schema) ([]byte, error)

	// Model returns the active model or deployment name.
	Model() string

	// SetModel changes the active model or deployment.
	SetModel(model string)
}

// Config holds backend-specific client configuration.
type Config struct {
	Backend    BackendType
	Endpoint   string // base URL (Azure resource endpoint, Ollama host, ...)
	APIKey     string
	APIVersion string // Azure only
	Model      string // model name or Azure deployment name
}

// New creates a client based on configuration.
//
// This is the centralized factory for all backend types. It returns an error
// for unknown backends and propagates constructor validation errors (for
// example a missing Azure credential).
func New(cfg Config) (Client, error) {
	switch cfg.Backend {
	case BackendAzureOpenAI:
		c, err := NewAzureClient(cfg.Endpoint, cfg.APIKey, cfg.APIVersion, cfg.Model)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendOllama:
		c, err := NewOllamaClient(cfg.Endpoint, cfg.Model)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendAnthropic:
		c, err := NewAnthropicClient(cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown backend type: %s", cfg.Backend)
	}
}

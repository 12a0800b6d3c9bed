// Package testutil provides mock llm clients for agent and UI tests.
package testutil

import (
	"context"

	"kaiwa/llm"
)

// MockClient implements llm.Client for testing. Behavior is configurable via
// function fields; defaults echo canned responses. Every call is recorded so
// tests can assert on what reached the backend.
type MockClient struct {
	ChatFunc         func(ctx context.Context, messages []llm.Message, callback llm.StreamCallback) error
	CompleteFunc     func(ctx context.Context, messages []llm.Message) (llm.Completion, error)
	CompleteJSONFunc func(ctx context.Context, prompt string, schema *llm.Schema) ([]byte, error)

	// Call records.
	ChatCalls     [][]llm.Message
	CompleteCalls [][]llm.Message
	JSONCalls     []string // schema names in call order
	JSONPrompts   []string

	currentModel string
}

// NewMockClient creates a mock client with default canned behavior: Chat
// streams "Mock response" as two chunks, Complete returns it whole, and
// CompleteJSON answers "{}".
func NewMockClient(model string) *MockClient {
	m := &MockClient{currentModel: model}
	m.ChatFunc = m.defaultChat
	m.CompleteFunc = m.defaultComplete
	m.CompleteJSONFunc = m.defaultCompleteJSON
	return m
}

// NewStreamingMock creates a mock whose Chat streams the given chunks and
// whose Complete returns their concatenation.
func NewStreamingMock(model string, chunks ...string) *MockClient {
	m := NewMockClient(model)
	m.ChatFunc = func(ctx context.Context, messages []llm.Message, callback llm.StreamCallback) error {
		for _, chunk := range chunks {
			if err := callback(chunk); err != nil {
				return err
			}
		}
		return nil
	}
	full := ""
	for _, chunk := range chunks {
		full += chunk
	}
	m.CompleteFunc = func(ctx context.Context, messages []llm.Message) (llm.Completion, error) {
		return llm.Completion{
			Text:         full,
			FinishReason: "stop",
			Usage:        llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
		}, nil
	}
	return m
}

// ScriptJSON makes CompleteJSON answer from a schema-name → response map.
// Missing schema names fall back to "{}".
func (m *MockClient) ScriptJSON(responses map[string]string) {
	m.CompleteJSONFunc = func(ctx context.Context, prompt string, schema *llm.Schema) ([]byte, error) {
		if resp, ok := responses[schema.Name]; ok {
			return []byte(resp), nil
		}
		return []byte("{}"), nil
	}
}

func (m *MockClient) defaultChat(ctx context.Context, messages []llm.Message, callback llm.StreamCallback) error {
	if err := callback("Mock "); err != nil {
		return err
	}
	return callback("response")
}

func (m *MockClient) defaultComplete(ctx context.Context, messages []llm.Message) (llm.Completion, error) {
	return llm.Completion{
		Text:         "Mock response",
		FinishReason: "stop",
		Usage:        llm.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (m *MockClient) defaultCompleteJSON(ctx context.Context, prompt string, schema *llm.Schema) ([]byte, error) {
	return []byte("{}"), nil
}

// Chat implements llm.Client.
func (m *MockClient) Chat(ctx context.Context, messages []llm.Message, callback llm.StreamCallback) error {
	m.ChatCalls = append(m.ChatCalls, messages)
	return m.ChatFunc(ctx, messages, callback)
}

// Complete implements llm.Client.
func (m *MockClient) Complete(ctx context.Context, messages []llm.Message) (llm.Completion, error) {
	m.CompleteCalls = append(m.CompleteCalls, messages)
	return m.CompleteFunc(ctx, messages)
}

// CompleteJSON implements llm.Client.
func (m *MockClient) CompleteJSON(ctx context.Context, prompt string, schema *llm.Schema) ([]byte, error) {
	m.JSONCalls = append(m.JSONCalls, schema.Name)
	m.JSONPrompts = append(m.JSONPrompts, prompt)
	return m.CompleteJSONFunc(ctx, prompt, schema)
}

// Model implements llm.Client.
func (m *MockClient) Model() string {
	return m.currentModel
}

// SetModel implements llm.Client.
func (m *MockClient) SetModel(model string) {
	m.currentModel = model
}

package llm

import (
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
	}{
		{
			name: "azure with full credentials",
			config: Config{
				Backend:    BackendAzureOpenAI,
				Endpoint:   "https://example.openai.azure.com",
				APIKey:     "test-key",
				APIVersion: "2024-02-01",
				Model:      "gpt-4o",
			},
			expectError: false,
		},
		{
			name: "azure missing api key",
			config: Config{
				Backend:    BackendAzureOpenAI,
				Endpoint:   "https://example.openai.azure.com",
				APIVersion: "2024-02-01",
			},
			expectError: true,
		},
		{
			name: "azure missing endpoint",
			config: Config{
				Backend:    BackendAzureOpenAI,
				APIKey:     "test-key",
				APIVersion: "2024-02-01",
			},
			expectError: true,
		},
		{
			name: "azure missing api version",
			config: Config{
				Backend:  BackendAzureOpenAI,
				Endpoint: "https://example.openai.azure.com",
				APIKey:   "test-key",
			},
			expectError: true,
		},
		{
			name: "ollama with defaults",
			config: Config{
				Backend: BackendOllama,
			},
			expectError: false,
		},
		{
			name: "anthropic missing key",
			config: Config{
				Backend: BackendAnthropic,
			},
			expectError: true,
		},
		{
			name: "unknown backend",
			config: Config{
				Backend: BackendType("smoke-signals"),
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.config)

			if tt.expectError && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tt.expectError && client != nil {
				t.Error("expected nil client on error")
			}
		})
	}
}

func TestAzureClientDefaultDeployment(t *testing.T) {
	client, err := NewAzureClient("https://example.openai.azure.com", "key", "2024-02-01", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := client.Model(); got != "gpt-35-turbo" {
		t.Errorf("default deployment = %q, want gpt-35-turbo", got)
	}

	client.SetModel("gpt-4o")
	if got := client.Model(); got != "gpt-4o" {
		t.Errorf("after SetModel, Model() = %q, want gpt-4o", got)
	}
}

func TestIsResponseFormatError(t *testing.T) {
	tests := []struct {
		name string
		msg  string
		want bool
	}{
		{"unknown parameter", "invalid request: response_format.schema is an unknown_parameter", true},
		{"unsupported", "response_format is unsupported for this model", true},
		{"unrelated error", "rate limit exceeded", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := &stringError{tt.msg}
			if got := isResponseFormatError(err); got != tt.want {
				t.Errorf("isResponseFormatError(%q) = %v, want %v", tt.msg, got, tt.want)
			}
		})
	}
}

type stringError struct{ msg string }

func (e *stringError) Error() string { return e.msg }

func TestConvertMessagesRoles(t *testing.T) {
	msgs := []Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
		{Role: "assistant", Content: "hello"},
	}

	converted := convertMessages(msgs)
	if len(converted) != 3 {
		t.Fatalf("converted %d messages, want 3", len(converted))
	}
	if converted[0].OfSystem == nil {
		t.Error("first message should be a system message")
	}
	if converted[1].OfUser == nil {
		t.Error("second message should be a user message")
	}
	if converted[2].OfAssistant == nil {
		t.Error("third message should be an assistant message")
	}
}

func TestConvertOllamaMessages(t *testing.T) {
	msgs := []Message{{Role: "user", Content: "hi"}}
	converted := convertOllamaMessages(msgs)
	if len(converted) != 1 || converted[0].Role != "user" || converted[0].Content != "hi" {
		t.Errorf("unexpected conversion result: %+v", converted)
	}
}

func TestAnthropicBuildParamsSeparatesSystem(t *testing.T) {
	client, err := NewAnthropicClient("key", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	params := client.buildParams([]Message{
		{Role: "system", Content: "be brief"},
		{Role: "user", Content: "hi"},
	})

	if len(params.System) != 1 {
		t.Fatalf("system blocks = %d, want 1", len(params.System))
	}
	if !strings.Contains(params.System[0].Text, "be brief") {
		t.Errorf("system block text = %q", params.System[0].Text)
	}
	if len(params.Messages) != 1 {
		t.Errorf("messages = %d, want 1 (system excluded)", len(params.Messages))
	}
}

package model

import (
	"testing"
	"time"

	"kaiwa/config"
	"kaiwa/llm"
)

func TestBuildTurns(t *testing.T) {
	messages := []Message{
		{Role: "user", Content: "hello", Timestamp: time.Now()},
		{Role: "assistant", Content: "hi there", Timestamp: time.Now()},
		{Role: "system", Content: "should be excluded"},
	}

	turns := buildTurns(messages)
	if len(turns) != 2 {
		t.Fatalf("got %d turns, want 2", len(turns))
	}
	if turns[0].Role != "user" || turns[0].Content != "hello" {
		t.Errorf("turn 0 = %+v", turns[0])
	}
	if turns[1].Role != "assistant" || turns[1].Content != "hi there" {
		t.Errorf("turn 1 = %+v", turns[1])
	}
}

func TestAgentOptionsFromConfigAzure(t *testing.T) {
	cfg := &config.Config{
		Backend: "azure_openai",
		Azure: config.AzureConfig{
			Endpoint:   "https://example.openai.azure.com",
			APIVersion: "2024-02-01",
			Deployment: "gpt-4o",
		},
		DefaultSystemPrompt: "be helpful",
		Search: config.SearchConfig{
			Enabled:      true,
			MaxResults:   5,
			Region:       "us-en",
			DecisionMode: "heuristic",
		},
	}

	opts := AgentOptionsFromConfig(cfg)
	if opts.Backend != llm.BackendAzureOpenAI {
		t.Errorf("backend = %q", opts.Backend)
	}
	if opts.Endpoint != "https://example.openai.azure.com" || opts.Deployment != "gpt-4o" {
		t.Errorf("azure wiring = %+v", opts)
	}
	if opts.SystemPrompt != "be helpful" {
		t.Errorf("system prompt = %q", opts.SystemPrompt)
	}
	if opts.MaxSearchResults == nil || *opts.MaxSearchResults != 5 {
		t.Errorf("max results = %v", opts.MaxSearchResults)
	}
	if opts.DecisionMode != "heuristic" || opts.SearchRegion != "us-en" {
		t.Errorf("search wiring = %+v", opts)
	}
}

func TestAgentOptionsFromConfigAnthropic(t *testing.T) {
	cfg := &config.Config{
		Backend:        "anthropic",
		AnthropicModel: "claude-sonnet-4-5-20250929",
	}

	opts := AgentOptionsFromConfig(cfg)
	if opts.Backend != llm.BackendAnthropic {
		t.Errorf("backend = %q", opts.Backend)
	}
	if opts.Deployment != "claude-sonnet-4-5-20250929" {
		t.Errorf("model = %q, want the configured Anthropic model", opts.Deployment)
	}
}

func TestAgentOptionsFromConfigOllama(t *testing.T) {
	cfg := &config.Config{
		Backend:     "ollama",
		OllamaHost:  "http://localhost:11434",
		OllamaModel: "qwen3:latest",
	}

	opts := AgentOptionsFromConfig(cfg)
	if opts.Backend != llm.BackendOllama {
		t.Errorf("backend = %q", opts.Backend)
	}
	if opts.Endpoint != "http://localhost:11434" || opts.Deployment != "qwen3:latest" {
		t.Errorf("ollama wiring = %+v", opts)
	}
}

func TestBuildSystemPromptPrecedence(t *testing.T) {
	m := &Model{Config: &config.Config{DefaultSystemPrompt: "default"}}
	if got := m.BuildSystemPrompt(); got != "default" {
		t.Errorf("prompt = %q", got)
	}
}

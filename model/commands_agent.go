package model

import (
	"context"
	"errors"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"kaiwa/agent"
	"kaiwa/config"
	"kaiwa/llm"
)

var errNoUserMessage = errors.New("no user message to send")

// BuildSystemPrompt returns the system prompt for the current session or default
func (m *Model) BuildSystemPrompt() string {
	if m.CurrentSession != nil && m.CurrentSession.SystemPrompt != "" {
		return m.CurrentSession.SystemPrompt
	}
	if m.Config.DefaultSystemPrompt != "" {
		return m.Config.DefaultSystemPrompt
	}
	return ""
}

// buildTurns converts the prior UI messages to backend conversation turns.
// The in-flight user message is passed to the agent separately, so the last
// entry is excluded when it is the message being processed.
func buildTurns(uiMessages []Message) []llm.Message {
	var turns []llm.Message
	for _, msg := range uiMessages {
		if msg.Role == "user" || msg.Role == "assistant" {
			turns = append(turns, llm.Message{
				Role:    msg.Role,
				Content: msg.Content,
			})
		}
	}
	return turns
}

// SendMessage sends the latest user message through the active agent and
// collects the streamed response. Chunks are gathered in the worker goroutine
// and replayed by the UI's typewriter, matching how responses are displayed
// at a readable pace regardless of backend speed.
func (m *Model) SendMessage() tea.Cmd {
	agents := m.Agents
	uiMessages := m.Messages

	// Session system prompt overrides the configured default for this agent.
	if prompt := m.BuildSystemPrompt(); prompt != "" && agents != nil {
		if agents.Options().SystemPrompt != prompt {
			_ = agents.UpdateOptions(agent.Options{SystemPrompt: prompt})
		}
	}

	return func() tea.Msg {
		if config.DebugLog != nil {
			config.DebugLog.Printf("SendMessage goroutine started (agent=%s)", agents.Current())
		}

		ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
		defer cancel()

		// The last UI message is the user message being processed.
		if len(uiMessages) == 0 || uiMessages[len(uiMessages)-1].Role != "user" {
			return StreamErrorMsg{Err: errNoUserMessage}
		}
		userMessage := uiMessages[len(uiMessages)-1].Content
		turns := buildTurns(uiMessages[:len(uiMessages)-1])

		var chunks []string
		var responseBuilder strings.Builder
		startTime := time.Now()

		result := agents.ProcessMessage(ctx, userMessage, turns, func(chunk string) error {
			responseBuilder.WriteString(chunk)
			chunks = append(chunks, chunk)
			return nil
		})

		elapsed := time.Since(startTime)

		if result.Err != nil {
			if config.DebugLog != nil {
				config.DebugLog.Printf("Agent error after %v: %v", elapsed, result.Err)
			}
			return StreamErrorMsg{Err: result.Err}
		}

		if config.DebugLog != nil {
			config.DebugLog.Printf("Agent response received after %v - %d chunks, %d chars, search=%v, tools=%d",
				elapsed, len(chunks), len(result.Content), result.SearchPerformed, result.ToolInvocations)
		}

		return StreamChunksCollectedMsg{
			Chunks:       chunks,
			FullResponse: result.Content,
			Result:       result,
		}
	}
}

// SwitchAgentCmd activates a different agent type.
func (m *Model) SwitchAgentCmd(agentType string) tea.Cmd {
	agents := m.Agents
	return func() tea.Msg {
		if err := agents.SwitchAgent(agentType); err != nil {
			return AgentSwitchedMsg{AgentType: agentType, Err: err}
		}
		return AgentSwitchedMsg{
			AgentType:    agentType,
			Capabilities: agents.Capabilities(),
		}
	}
}

// UpdateAgentSettingCmd persists a settings change and applies it to the
// running agents.
func (m *Model) UpdateAgentSettingCmd(field, value string) tea.Cmd {
	agents := m.Agents
	dataDir := m.Config.DataDir()
	return func() tea.Msg {
		if err := config.UpdateAgentSetting(dataDir, field, value); err != nil {
			return SettingUpdatedMsg{Field: field, Err: err}
		}

		// Reload to pick up env overrides and credential changes, then push
		// the refreshed options into the live agents.
		cfg, err := config.Load()
		if err != nil {
			return SettingUpdatedMsg{Field: field, Err: err}
		}
		if err := agents.UpdateOptions(AgentOptionsFromConfig(cfg)); err != nil {
			return SettingUpdatedMsg{Field: field, Err: err}
		}
		return SettingUpdatedMsg{Field: field}
	}
}

// AgentOptionsFromConfig maps the resolved configuration onto agent options.
// Credentials come from the credential store with environment overrides.
func AgentOptionsFromConfig(cfg *config.Config) agent.Options {
	opts := agent.Options{
		Backend:             llm.BackendType(cfg.Backend),
		SystemPrompt:        cfg.DefaultSystemPrompt,
		SearchEnabled:       agent.BoolOpt(cfg.Search.Enabled),
		MaxSearchResults:    agent.IntOpt(cfg.Search.MaxResults),
		SearchRegion:        cfg.Search.Region,
		NewsSearch:          agent.BoolOpt(cfg.Search.NewsSearch),
		MaxQueryRefinements: agent.IntOpt(cfg.Search.MaxQueryRefinements),
		StructuredOutput:    agent.BoolOpt(cfg.Search.StructuredOutput),
		DecisionMode:        cfg.Search.DecisionMode,
		IncludeCitations:    agent.BoolOpt(cfg.Search.IncludeCitations),
	}

	switch llm.BackendType(cfg.Backend) {
	case llm.BackendAzureOpenAI:
		opts.Endpoint = cfg.Azure.Endpoint
		opts.APIKey = cfg.APIKey("azure_openai")
		opts.APIVersion = cfg.Azure.APIVersion
		opts.Deployment = cfg.Azure.Deployment
	case llm.BackendOllama:
		opts.Endpoint = cfg.OllamaHost
		opts.Deployment = cfg.OllamaModel
	case llm.BackendAnthropic:
		opts.APIKey = cfg.APIKey("anthropic")
		opts.Deployment = cfg.AnthropicModel
	}

	return opts
}

package agent

import (
	"context"

	"kaiwa/llm"
)

// ChatAgent forwards messages to the completion backend with no retrieval or
// tool handling. It is the baseline the other variants build on.
type ChatAgent struct {
	base
}

// NewChatAgent creates a plain chat agent.
func NewChatAgent(opts Options) *ChatAgent {
	return &ChatAgent{base: newBase(TypeChat, opts)}
}

// ProcessMessage implements Agent.
func (a *ChatAgent) ProcessMessage(ctx context.Context, message string, turns []llm.Message, emit StreamFunc) Result {
	messages := buildMessages(a.opts.SystemPrompt, turns, message)

	content, err := a.stream(ctx, messages, emit)
	if err != nil {
		return a.fail(err)
	}
	return a.finish(content)
}

// GetResponse implements Agent.
func (a *ChatAgent) GetResponse(ctx context.Context, message string, turns []llm.Message) Result {
	return a.respond(ctx, buildMessages(a.opts.SystemPrompt, turns, message))
}

// Capabilities implements Agent.
func (a *ChatAgent) Capabilities() []string {
	return []string{"conversation", "streaming responses"}
}

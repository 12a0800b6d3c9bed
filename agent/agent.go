// Package agent implements the conversational agents that sit between the UI
// and the completion backends: a plain chat agent, a document-context agent,
// a web-search agent with citations, and a tool-invoking agent. Agents are
// stateless with respect to conversation history (the caller passes prior
// turns) but may keep per-session working state such as the last search
// results.
package agent

import (
	"context"
	"time"

	"kaiwa/llm"
)

// Agent type names accepted by New and Manager.SwitchAgent.
const (
	TypeChat   = "azure_openai"
	TypeDocs   = "context_aware"
	TypeSearch = "web_search"
	TypeTool   = "tool_using"
)

// StreamFunc receives response chunks as they arrive. Returning an error
// aborts the stream.
type StreamFunc func(chunk string) error

// Citation is one numbered source attached to a search-grounded response.
type Citation struct {
	Number     int
	Title      string
	URL        string
	Excerpt    string
	Published  string // YYYY-MM-DD, empty when unknown
	SourceType string // "primary", "secondary" or "unknown"
}

// Result is the outcome of processing one user message. When Err is set the
// other fields describe whatever partial work completed before the failure.
type Result struct {
	Content   string
	Model     string
	Timestamp time.Time
	Err       error

	// Search metadata, populated by the web-search agent.
	SearchPerformed bool
	SearchQuery     string
	Citations       []Citation

	// ToolInvocations counts TOOL[...](...) substitutions performed by the
	// tool-using agent.
	ToolInvocations int
}

// Agent is the contract all agent variants implement.
type Agent interface {
	// ProcessMessage handles one user message, streaming chunks through emit
	// (which may be nil) and returning the final result. Prior conversation
	// turns are supplied by the caller and never include the system prompt.
	ProcessMessage(ctx context.Context, message string, turns []llm.Message, emit StreamFunc) Result

	// GetResponse is the non-streaming variant of ProcessMessage.
	GetResponse(ctx context.Context, message string, turns []llm.Message) Result

	// UpdateOptions merges the set fields of opts into the agent's options
	// and reconnects if backend settings changed.
	UpdateOptions(opts Options) error

	// Options returns a copy of the agent's effective options.
	Options() Options

	// Capabilities names what this agent can do, for display in the UI.
	Capabilities() []string

	// Reset discards per-session working state (e.g. cached search results).
	Reset()
}

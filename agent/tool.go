package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"kaiwa/config"
	"kaiwa/llm"
)

// Tool pairs an MCP tool descriptor with its local handler. Args arrive as
// the raw text between the parentheses of a TOOL[name](args) invocation.
type Tool struct {
	Spec mcptypes.Tool
	Run  func(ctx context.Context, args string) (string, error)
}

// toolPattern matches a complete in-text tool invocation.
var toolPattern = regexp.MustCompile(`TOOL\[(.*?)\]\((.*?)\)`)

// ToolAgent lets the model invoke registered tools by emitting
// TOOL[name](args) in its response. Invocations are replaced with the tool's
// result before the text reaches the user, including mid-stream: chunks that
// might be the start of an invocation are held back until it completes or
// turns out to be plain text.
type ToolAgent struct {
	base
	tools map[string]Tool
	order []string
}

// NewToolAgent creates a tool-using agent. opts.Tools are registered on top
// of the built-in set.
func NewToolAgent(opts Options) *ToolAgent {
	a := &ToolAgent{
		base:  newBase(TypeTool, opts),
		tools: make(map[string]Tool),
	}
	for _, t := range BuiltinTools() {
		a.RegisterTool(t)
	}
	for _, t := range opts.Tools {
		a.RegisterTool(t)
	}
	return a
}

// RegisterTool adds or replaces a tool by its spec name.
func (a *ToolAgent) RegisterTool(t Tool) {
	if _, exists := a.tools[t.Spec.Name]; !exists {
		a.order = append(a.order, t.Spec.Name)
	}
	a.tools[t.Spec.Name] = t
}

// Tools returns the registered tool specs in registration order.
func (a *ToolAgent) Tools() []mcptypes.Tool {
	specs := make([]mcptypes.Tool, 0, len(a.order))
	for _, name := range a.order {
		specs = append(specs, a.tools[name].Spec)
	}
	return specs
}

// Capabilities implements Agent.
func (a *ToolAgent) Capabilities() []string {
	caps := []string{"conversation", "in-text tool invocation"}
	for _, name := range a.order {
		caps = append(caps, "tool: "+name)
	}
	return caps
}

// systemWithTools extends the system prompt with the invocation syntax and
// the registered tool list.
func (a *ToolAgent) systemWithTools() string {
	var b strings.Builder
	b.WriteString(a.opts.SystemPrompt)
	b.WriteString("\n\nYou can call tools by writing TOOL[name](arguments) anywhere in your response. The invocation is replaced with the tool's result before the user sees it. Available tools:\n")
	for _, name := range a.order {
		spec := a.tools[name].Spec
		fmt.Fprintf(&b, "- %s: %s\n", spec.Name, spec.Description)
	}
	return b.String()
}

// ProcessMessage implements Agent.
func (a *ToolAgent) ProcessMessage(ctx context.Context, message string, turns []llm.Message, emit StreamFunc) Result {
	messages := buildMessages(a.systemWithTools(), turns, message)

	if err := a.connect(); err != nil {
		return a.fail(err)
	}

	sub := newToolSubstituter(ctx, a, emit)
	err := a.client.Chat(ctx, messages, sub.feed)
	if err != nil {
		return a.fail(err)
	}
	if err := sub.flush(); err != nil {
		return a.fail(err)
	}

	r := a.finish(sub.output.String())
	r.ToolInvocations = sub.invocations
	return r
}

// GetResponse implements Agent.
func (a *ToolAgent) GetResponse(ctx context.Context, message string, turns []llm.Message) Result {
	text, err := a.complete(ctx, buildMessages(a.systemWithTools(), turns, message))
	if err != nil {
		return a.fail(err)
	}

	sub := newToolSubstituter(ctx, a, nil)
	if err := sub.feed(text); err != nil {
		return a.fail(err)
	}
	if err := sub.flush(); err != nil {
		return a.fail(err)
	}

	r := a.finish(sub.output.String())
	r.ToolInvocations = sub.invocations
	return r
}

// invoke executes a named tool and formats the substitution text.
func (a *ToolAgent) invoke(ctx context.Context, name, args string) string {
	tool, ok := a.tools[name]
	if !ok {
		return fmt.Sprintf("[Error: Tool '%s' not found]", name)
	}

	result, err := tool.Run(ctx, args)
	if err != nil {
		if config.Debug {
			config.DebugLog.Printf("[Agent] %s: tool %s failed: %v", a.name, name, err)
		}
		return fmt.Sprintf("[Error executing tool '%s': %v]", name, err)
	}
	return fmt.Sprintf("[%s result: %s]", name, result)
}

// toolSubstituter rewrites TOOL[name](args) invocations in a chunk stream.
// Text that could still become an invocation stays buffered until the next
// chunk resolves it.
type toolSubstituter struct {
	ctx         context.Context
	agent       *ToolAgent
	emit        StreamFunc
	buffer      string
	output      strings.Builder
	invocations int
}

func newToolSubstituter(ctx context.Context, agent *ToolAgent, emit StreamFunc) *toolSubstituter {
	return &toolSubstituter{ctx: ctx, agent: agent, emit: emit}
}

func (s *toolSubstituter) feed(chunk string) error {
	s.buffer += chunk

	// Substitute every completed invocation in the buffer.
	for {
		loc := toolPattern.FindStringSubmatchIndex(s.buffer)
		if loc == nil {
			break
		}
		name := s.buffer[loc[2]:loc[3]]
		args := s.buffer[loc[4]:loc[5]]

		if err := s.send(s.buffer[:loc[0]]); err != nil {
			return err
		}
		if err := s.send(s.agent.invoke(s.ctx, name, args)); err != nil {
			return err
		}
		s.invocations++
		s.buffer = s.buffer[loc[1]:]
	}

	// Hold back anything that might still grow into an invocation.
	hold := holdPoint(s.buffer)
	if hold > 0 {
		if err := s.send(s.buffer[:hold]); err != nil {
			return err
		}
		s.buffer = s.buffer[hold:]
	}
	return nil
}

// flush releases whatever is still buffered. An unterminated invocation
// passes through as literal text.
func (s *toolSubstituter) flush() error {
	if s.buffer == "" {
		return nil
	}
	err := s.send(s.buffer)
	s.buffer = ""
	return err
}

func (s *toolSubstituter) send(text string) error {
	if text == "" {
		return nil
	}
	s.output.WriteString(text)
	if s.emit != nil {
		return s.emit(text)
	}
	return nil
}

// holdPoint returns the index up to which the buffer is safe to emit: text
// before the first possible invocation start. With no candidate, the whole
// buffer is safe.
func holdPoint(buffer string) int {
	if idx := strings.Index(buffer, "TOOL["); idx >= 0 {
		return idx
	}
	// A partial "TOOL[" at the very end must wait for the next chunk.
	for k := 4; k >= 1; k-- {
		if strings.HasSuffix(buffer, "TOOL["[:k]) {
			return len(buffer) - k
		}
	}
	return len(buffer)
}

package agent

import (
	"context"
	"strings"
	"testing"

	"kaiwa/llm"
	"kaiwa/llm/testutil"
)

func TestNewUnknownType(t *testing.T) {
	if _, err := New("telepathy", Options{}); err == nil {
		t.Error("expected error for unknown agent type")
	}
}

func TestNewAllTypes(t *testing.T) {
	for _, name := range AvailableAgents() {
		a, err := New(name, Options{})
		if err != nil {
			t.Errorf("New(%q) error: %v", name, err)
			continue
		}
		if a == nil {
			t.Errorf("New(%q) returned nil agent", name)
		}
		if len(a.Capabilities()) == 0 {
			t.Errorf("%s agent reports no capabilities", name)
		}
	}
}

func TestChatAgentMisconfiguredErrorsBeforeNetwork(t *testing.T) {
	// No API key: processing must fail with a configuration error, not a
	// network error, and must not panic.
	a := NewChatAgent(Options{Endpoint: "https://example.openai.azure.com", APIVersion: "2024-02-01"})

	result := a.ProcessMessage(context.Background(), "hello", nil, nil)
	if result.Err == nil {
		t.Fatal("expected error from unconfigured agent")
	}
	if !strings.Contains(result.Err.Error(), "not configured") {
		t.Errorf("error = %v, want configuration error", result.Err)
	}

	// The error is cached, repeated calls behave the same.
	if again := a.ProcessMessage(context.Background(), "hello", nil, nil); again.Err == nil {
		t.Error("expected error on second call too")
	}
}

func TestChatAgentMessageAssembly(t *testing.T) {
	a := NewChatAgent(Options{SystemPrompt: "be terse"})
	mock := testutil.NewStreamingMock("gpt-4o", "Hi ", "there")
	a.SetClient(mock)

	turns := []llm.Message{
		{Role: "user", Content: "earlier question"},
		{Role: "assistant", Content: "earlier answer"},
	}

	var streamed strings.Builder
	result := a.ProcessMessage(context.Background(), "Hello", turns, func(chunk string) error {
		streamed.WriteString(chunk)
		return nil
	})

	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Content != "Hi there" {
		t.Errorf("content = %q", result.Content)
	}
	if streamed.String() != "Hi there" {
		t.Errorf("streamed = %q", streamed.String())
	}
	if result.Model != "gpt-4o" {
		t.Errorf("model = %q, want gpt-4o", result.Model)
	}
	if result.Timestamp.IsZero() {
		t.Error("result timestamp not set")
	}

	if len(mock.ChatCalls) != 1 {
		t.Fatalf("chat calls = %d, want 1", len(mock.ChatCalls))
	}
	sent := mock.ChatCalls[0]
	if len(sent) != 4 {
		t.Fatalf("sent %d messages, want 4", len(sent))
	}
	if sent[0].Role != "system" || sent[0].Content != "be terse" {
		t.Errorf("first message = %+v, want system prompt", sent[0])
	}
	if sent[1].Content != "earlier question" || sent[2].Content != "earlier answer" {
		t.Error("prior turns not forwarded in order")
	}
	if sent[3].Role != "user" || sent[3].Content != "Hello" {
		t.Errorf("last message = %+v, want the new user message", sent[3])
	}
}

func TestChatAgentSimpleMessageList(t *testing.T) {
	// With no prior turns the backend sees exactly [system, user].
	a := NewChatAgent(Options{})
	mock := testutil.NewMockClient("gpt-4o")
	a.SetClient(mock)

	if r := a.GetResponse(context.Background(), "Hello", nil); r.Err != nil {
		t.Fatalf("unexpected error: %v", r.Err)
	}

	if len(mock.CompleteCalls) != 1 {
		t.Fatalf("complete calls = %d, want 1", len(mock.CompleteCalls))
	}
	sent := mock.CompleteCalls[0]
	if len(sent) != 2 || sent[0].Role != "system" || sent[1].Role != "user" {
		t.Errorf("message list = %+v, want [system, user]", sent)
	}
	if sent[0].Content != DefaultSystemPrompt {
		t.Errorf("system prompt = %q, want default", sent[0].Content)
	}
}

func TestOptionsMerge(t *testing.T) {
	opts := Options{}.withDefaults()

	reconnect := opts.merge(Options{SystemPrompt: "new prompt", SearchEnabled: BoolOpt(false)})
	if reconnect {
		t.Error("prompt and toggle changes must not force a reconnect")
	}
	if opts.SystemPrompt != "new prompt" {
		t.Errorf("system prompt = %q", opts.SystemPrompt)
	}
	if *opts.SearchEnabled {
		t.Error("SearchEnabled not merged")
	}

	// Unset fields in the delta leave existing values alone.
	opts.merge(Options{})
	if opts.SystemPrompt != "new prompt" || *opts.SearchEnabled {
		t.Error("empty delta overwrote existing options")
	}

	if !opts.merge(Options{APIKey: "secret"}) {
		t.Error("credential change must force a reconnect")
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{}.withDefaults()

	if opts.Deployment != "gpt-35-turbo" {
		t.Errorf("deployment = %q", opts.Deployment)
	}
	if opts.SystemPrompt != "You are a helpful assistant." {
		t.Errorf("system prompt = %q", opts.SystemPrompt)
	}
	if !*opts.SearchEnabled || *opts.MaxSearchResults != 3 || opts.SearchRegion != "jp-ja" {
		t.Error("search defaults wrong")
	}
	if !*opts.NewsSearch || *opts.MaxQueryRefinements != 1 || !*opts.StructuredOutput {
		t.Error("search tuning defaults wrong")
	}
	if opts.DecisionMode != "model" || opts.CitationFormat != "numbered" || !*opts.IncludeCitations {
		t.Error("decision and citation defaults wrong")
	}

	// The deployment default is Azure-specific; other backends keep their
	// configured model or defer to the client's own default.
	anthro := Options{Backend: llm.BackendAnthropic}.withDefaults()
	if anthro.Deployment != "" {
		t.Errorf("anthropic deployment = %q, want empty", anthro.Deployment)
	}
}

func TestUpdateOptionsReconnects(t *testing.T) {
	a := NewChatAgent(Options{})
	mock := testutil.NewMockClient("gpt-4o")
	a.SetClient(mock)

	if err := a.UpdateOptions(Options{SystemPrompt: "x"}); err != nil {
		t.Fatal(err)
	}
	if a.client == nil {
		t.Error("non-connection update dropped the client")
	}

	if err := a.UpdateOptions(Options{Endpoint: "https://other.example.com"}); err != nil {
		t.Fatal(err)
	}
	if a.client != nil {
		t.Error("endpoint change must drop the client for reconnection")
	}
}

func TestManagerSwitching(t *testing.T) {
	m := NewManager(Options{})

	if m.Current() != TypeChat {
		t.Errorf("initial agent = %q, want %q", m.Current(), TypeChat)
	}

	if err := m.SwitchAgent(TypeSearch); err != nil {
		t.Fatalf("switch failed: %v", err)
	}
	if m.Current() != TypeSearch {
		t.Errorf("current = %q, want %q", m.Current(), TypeSearch)
	}

	if err := m.SwitchAgent("nonsense"); err == nil {
		t.Error("expected error switching to unknown agent")
	}
	if m.Current() != TypeSearch {
		t.Error("failed switch must not change the active agent")
	}
}

func TestManagerReusesInstances(t *testing.T) {
	m := NewManager(Options{})

	first, err := m.Agent(TypeDocs)
	if err != nil {
		t.Fatal(err)
	}
	second, err := m.Agent(TypeDocs)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("manager created a second instance of the same agent type")
	}
}

func TestManagerUpdateOptionsPropagates(t *testing.T) {
	m := NewManager(Options{})
	a, err := m.Agent(TypeChat)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.UpdateOptions(Options{SystemPrompt: "short answers"}); err != nil {
		t.Fatal(err)
	}

	if got := a.Options().SystemPrompt; got != "short answers" {
		t.Errorf("live agent prompt = %q, want propagated value", got)
	}
	if got := m.Options().SystemPrompt; got != "short answers" {
		t.Errorf("baseline prompt = %q", got)
	}

	// Agents built after the update inherit it.
	b, err := m.Agent(TypeDocs)
	if err != nil {
		t.Fatal(err)
	}
	if got := b.Options().SystemPrompt; got != "short answers" {
		t.Errorf("new agent prompt = %q", got)
	}
}

package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	mcptypes "github.com/mark3labs/mcp-go/mcp"

	"kaiwa/llm"
	"kaiwa/llm/testutil"
)

func newTestToolAgent(chunks ...string) (*ToolAgent, *testutil.MockClient) {
	a := NewToolAgent(Options{})
	mock := testutil.NewStreamingMock("gpt-4o", chunks...)
	a.SetClient(mock)
	return a, mock
}

func TestToolInvocationSubstituted(t *testing.T) {
	a, _ := newTestToolAgent("The answer is TOOL[calculator](2+2).")

	result := a.ProcessMessage(context.Background(), "what is 2+2?", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Content != "The answer is [calculator result: 4]." {
		t.Errorf("content = %q", result.Content)
	}
	if result.ToolInvocations != 1 {
		t.Errorf("invocations = %d, want 1", result.ToolInvocations)
	}
}

func TestToolInvocationSplitAcrossChunks(t *testing.T) {
	// The invocation arrives in pieces; nothing between "TOO" and the closing
	// parenthesis may reach the stream until it resolves.
	a, _ := newTestToolAgent("Let me compute: TOO", "L[calcu", "lator](10*", "4) done")

	var chunks []string
	result := a.ProcessMessage(context.Background(), "compute", nil, func(chunk string) error {
		chunks = append(chunks, chunk)
		return nil
	})
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}

	if result.Content != "Let me compute: [calculator result: 40] done" {
		t.Errorf("content = %q", result.Content)
	}

	streamed := strings.Join(chunks, "")
	if streamed != result.Content {
		t.Errorf("streamed %q differs from content %q", streamed, result.Content)
	}
	for _, c := range chunks {
		if strings.Contains(c, "TOOL[") {
			t.Errorf("raw invocation text leaked into the stream: %q", c)
		}
	}
}

func TestToolNotFound(t *testing.T) {
	a, _ := newTestToolAgent("TOOL[teleport](home)")

	result := a.ProcessMessage(context.Background(), "go", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Content != "[Error: Tool 'teleport' not found]" {
		t.Errorf("content = %q", result.Content)
	}
}

func TestToolExecutionError(t *testing.T) {
	a, _ := newTestToolAgent("TOOL[calculator](2/0)")

	result := a.ProcessMessage(context.Background(), "divide", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Content != "[Error executing tool 'calculator': division by zero]" {
		t.Errorf("content = %q", result.Content)
	}
}

func TestMultipleInvocations(t *testing.T) {
	a, _ := newTestToolAgent("TOOL[calculator](1+1) and TOOL[echo](hi)")

	result := a.ProcessMessage(context.Background(), "both", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Content != "[calculator result: 2] and [echo result: hi]" {
		t.Errorf("content = %q", result.Content)
	}
	if result.ToolInvocations != 2 {
		t.Errorf("invocations = %d, want 2", result.ToolInvocations)
	}
}

func TestUnterminatedInvocationPassesThrough(t *testing.T) {
	a, _ := newTestToolAgent("trailing TOOL[calculator](1+1")

	result := a.ProcessMessage(context.Background(), "oops", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Content != "trailing TOOL[calculator](1+1" {
		t.Errorf("content = %q, want the literal text", result.Content)
	}
	if result.ToolInvocations != 0 {
		t.Errorf("invocations = %d, want 0", result.ToolInvocations)
	}
}

func TestPlainTextUnaffected(t *testing.T) {
	a, _ := newTestToolAgent("No tools here, just TOOLING talk.")

	result := a.ProcessMessage(context.Background(), "chat", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Content != "No tools here, just TOOLING talk." {
		t.Errorf("content = %q", result.Content)
	}
}

func TestRegisterCustomTool(t *testing.T) {
	a, _ := newTestToolAgent("TOOL[reverse](abc)")
	a.RegisterTool(Tool{
		Spec: mcptypes.Tool{Name: "reverse", Description: "Reverses its argument."},
		Run: func(_ context.Context, args string) (string, error) {
			runes := []rune(args)
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return string(runes), nil
		},
	})

	result := a.ProcessMessage(context.Background(), "reverse", nil, nil)
	if result.Err != nil {
		t.Fatalf("unexpected error: %v", result.Err)
	}
	if result.Content != "[reverse result: cba]" {
		t.Errorf("content = %q", result.Content)
	}
}

func TestToolFailureFromOptions(t *testing.T) {
	failing := Tool{
		Spec: mcptypes.Tool{Name: "flaky", Description: "Always fails."},
		Run: func(_ context.Context, _ string) (string, error) {
			return "", errors.New("backend unavailable")
		},
	}
	a := NewToolAgent(Options{Tools: []Tool{failing}})
	a.SetClient(testutil.NewStreamingMock("gpt-4o", "TOOL[flaky]()"))

	result := a.ProcessMessage(context.Background(), "try", nil, nil)
	if result.Content != "[Error executing tool 'flaky': backend unavailable]" {
		t.Errorf("content = %q", result.Content)
	}
}

func TestSystemPromptListsTools(t *testing.T) {
	a, mock := newTestToolAgent("ok")

	if r := a.GetResponse(context.Background(), "hi", nil); r.Err != nil {
		t.Fatal(r.Err)
	}

	system := mock.CompleteCalls[0][0]
	for _, name := range []string{"calculator", "current_time", "echo"} {
		if !strings.Contains(system.Content, name) {
			t.Errorf("system prompt missing tool %q", name)
		}
	}
	if !strings.Contains(system.Content, "TOOL[name](arguments)") {
		t.Error("system prompt missing the invocation syntax")
	}
}

func TestGetResponseSubstitutes(t *testing.T) {
	a := NewToolAgent(Options{})
	mock := testutil.NewMockClient("gpt-4o")
	mock.CompleteFunc = func(_ context.Context, _ []llm.Message) (llm.Completion, error) {
		return llm.Completion{Text: "TOOL[calculator](3 + 1 * 2)", FinishReason: "stop"}, nil
	}
	a.SetClient(mock)

	r := a.GetResponse(context.Background(), "calc", nil)
	if r.Err != nil {
		t.Fatal(r.Err)
	}
	if r.Content != "[calculator result: 5]" {
		t.Errorf("response = %q", r.Content)
	}
	if r.ToolInvocations != 1 {
		t.Errorf("tool invocations = %d, want 1", r.ToolInvocations)
	}
}

func TestEvalExpression(t *testing.T) {
	tests := []struct {
		expr    string
		want    float64
		wantErr bool
	}{
		{"2+2", 4, false},
		{"10*4", 40, false},
		{"(3+1)*2", 8, false},
		{"1 + 2 * 3", 7, false},
		{"-5 + 3", -2, false},
		{"7/2", 3.5, false},
		{"2/0", 0, true},
		{"", 0, true},
		{"two plus two", 0, true},
		{"1++", 0, true},
	}

	for _, tt := range tests {
		got, err := evalExpression(tt.expr)
		if tt.wantErr {
			if err == nil {
				t.Errorf("evalExpression(%q) succeeded, want error", tt.expr)
			}
			continue
		}
		if err != nil {
			t.Errorf("evalExpression(%q) error: %v", tt.expr, err)
			continue
		}
		if got != tt.want {
			t.Errorf("evalExpression(%q) = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

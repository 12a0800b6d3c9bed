package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kaiwa/config"
	"kaiwa/llm"
)

// base carries the option handling and backend plumbing shared by all agent
// variants. The completion client is built lazily on first use so that
// misconfiguration surfaces as an error result instead of a startup crash,
// and so no network client exists until a message actually needs one.
type base struct {
	name      string
	opts      Options
	client    llm.Client
	clientErr error
}

func newBase(name string, opts Options) base {
	return base{name: name, opts: opts.withDefaults()}
}

// connect builds the completion client on first call. A configuration error
// is cached and returned on every subsequent call until options change.
func (b *base) connect() error {
	if b.client != nil {
		return nil
	}
	if b.clientErr != nil {
		return b.clientErr
	}

	client, err := llm.New(llm.Config{
		Backend:    b.opts.Backend,
		Endpoint:   b.opts.Endpoint,
		APIKey:     b.opts.APIKey,
		APIVersion: b.opts.APIVersion,
		Model:      b.opts.Deployment,
	})
	if err != nil {
		b.clientErr = fmt.Errorf("%s agent is not configured: %w", b.name, err)
		return b.clientErr
	}

	b.client = client
	if config.Debug {
		config.DebugLog.Printf("[Agent] %s: connected %s backend (model=%s)", b.name, b.opts.Backend, client.Model())
	}
	return nil
}

// SetClient overrides the completion client, bypassing lazy connection.
// Intended for tests and for callers that share one client across agents.
func (b *base) SetClient(client llm.Client) {
	b.client = client
	b.clientErr = nil
}

// UpdateOptions merges the set fields of opts and drops the client when a
// connection-relevant field changed so the next call reconnects.
func (b *base) UpdateOptions(opts Options) error {
	if b.opts.merge(opts) {
		b.client = nil
		b.clientErr = nil
		if config.Debug {
			config.DebugLog.Printf("[Agent] %s: backend settings changed, reconnecting on next use", b.name)
		}
	}
	return nil
}

// Options returns a copy of the effective options.
func (b *base) Options() Options {
	return b.opts
}

// Reset is a no-op at the base level; variants with working state override it.
func (b *base) Reset() {}

// buildMessages assembles [system, turns..., user].
func buildMessages(system string, turns []llm.Message, user string) []llm.Message {
	messages := make([]llm.Message, 0, len(turns)+2)
	messages = append(messages, llm.Message{Role: "system", Content: system})
	messages = append(messages, turns...)
	messages = append(messages, llm.Message{Role: "user", Content: user})
	return messages
}

// stream runs a chat completion over messages, forwarding chunks to emit and
// returning the accumulated text. A nil emit degrades to a plain completion.
func (b *base) stream(ctx context.Context, messages []llm.Message, emit StreamFunc) (string, error) {
	if err := b.connect(); err != nil {
		return "", err
	}

	if emit == nil {
		completion, err := b.client.Complete(ctx, messages)
		if err != nil {
			return "", err
		}
		return completion.Text, nil
	}

	var full strings.Builder
	err := b.client.Chat(ctx, messages, func(chunk string) error {
		full.WriteString(chunk)
		return emit(chunk)
	})
	if err != nil {
		return full.String(), err
	}
	return full.String(), nil
}

// complete runs a non-streaming completion.
func (b *base) complete(ctx context.Context, messages []llm.Message) (string, error) {
	if err := b.connect(); err != nil {
		return "", err
	}
	completion, err := b.client.Complete(ctx, messages)
	if err != nil {
		return "", err
	}
	return completion.Text, nil
}

// completeJSON runs a structured completion against schema, falling back to
// schema-in-prompt extraction when the backend has no JSON mode or when
// structured output is disabled. It always returns a JSON object ("{}" when
// the model produced nothing parseable).
func (b *base) completeJSON(ctx context.Context, prompt string, schema *llm.Schema) ([]byte, error) {
	if err := b.connect(); err != nil {
		return nil, err
	}

	if *b.opts.StructuredOutput {
		out, err := b.client.CompleteJSON(ctx, prompt, schema)
		if err == nil {
			return out, nil
		}
		if err != llm.ErrJSONModeUnsupported {
			return nil, err
		}
		if config.Debug {
			config.DebugLog.Printf("[Agent] %s: JSON mode unsupported, using prompt fallback for %s", b.name, schema.Name)
		}
	}

	text, err := b.complete(ctx, []llm.Message{
		{Role: "user", Content: prompt + "\n\n" + schema.PromptInstructions()},
	})
	if err != nil {
		return nil, err
	}
	return []byte(llm.ExtractJSON(text)), nil
}

// model reports the backend model identifier, falling back to the configured
// deployment name before the first connection.
func (b *base) model() string {
	if b.client != nil {
		return b.client.Model()
	}
	return b.opts.Deployment
}

// finish stamps a successful Result with the model and completion time.
func (b *base) finish(content string) Result {
	return Result{
		Content:   content,
		Model:     b.model(),
		Timestamp: time.Now(),
	}
}

// fail is the error counterpart of finish.
func (b *base) fail(err error) Result {
	r := errorResult(err)
	r.Model = b.model()
	return r
}

// respond runs a non-streaming completion and wraps it into a Result.
func (b *base) respond(ctx context.Context, messages []llm.Message) Result {
	content, err := b.complete(ctx, messages)
	if err != nil {
		return b.fail(err)
	}
	return b.finish(content)
}

// errorResult wraps err into a Result, prefixing the content with a short
// user-facing notice.
func errorResult(err error) Result {
	return Result{
		Content:   fmt.Sprintf("Error: %v", err),
		Err:       err,
		Timestamp: time.Now(),
	}
}

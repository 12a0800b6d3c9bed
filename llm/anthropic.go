package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient implements Client against the Anthropic API using the
// official Anthropic Go SDK.
//
// Anthropic has no schema-constrained response format, so CompleteJSON always
// returns ErrJSONModeUnsupported and callers use the prompt fallback.
type AnthropicClient struct {
	client *anthropic.Client
	model  anthropic.Model
	apiKey string
}

// NewAnthropicClient creates an Anthropic client. The API key is required.
func NewAnthropicClient(apiKey, model string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	var anthropicModel anthropic.Model
	if model == "" {
		anthropicModel = anthropic.ModelClaudeSonnet4_5_20250929
	} else {
		anthropicModel = anthropic.Model(model)
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &AnthropicClient{
		client: &client,
		model:  anthropicModel,
		apiKey: apiKey,
	}, nil
}

// Chat implements Client.Chat with streaming support.
func (c *AnthropicClient) Chat(ctx context.Context, messages []Message, callback StreamCallback) error {
	params := c.buildParams(messages)
	stream := c.client.Messages.NewStreaming(ctx, params)

	for stream.Next() {
		event := stream.Current()
		switch eventVariant := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			switch deltaVariant := eventVariant.Delta.AsAny().(type) {
			case anthropic.TextDelta:
				if callback != nil {
					if err := callback(deltaVariant.Text); err != nil {
						return err
					}
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("Anthropic streaming error: %w", err)
	}

	return nil
}

// Complete implements Client.Complete.
func (c *AnthropicClient) Complete(ctx context.Context, messages []Message) (Completion, error) {
	params := c.buildParams(messages)

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return Completion{}, fmt.Errorf("Anthropic completion error: %w", err)
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	return Completion{
		Text:         text.String(),
		FinishReason: string(msg.StopReason),
		Usage: Usage{
			PromptTokens:     int(msg.Usage.InputTokens),
			CompletionTokens: int(msg.Usage.OutputTokens),
			TotalTokens:      int(msg.Usage.InputTokens + msg.Usage.OutputTokens),
		},
	}, nil
}

// CompleteJSON implements Client.CompleteJSON.
func (c *AnthropicClient) CompleteJSON(ctx context.Context, prompt string, schema *Schema) ([]byte, error) {
	return nil, ErrJSONModeUnsupported
}

// Model implements Client.Model.
func (c *AnthropicClient) Model() string {
	return string(c.model)
}

// SetModel implements Client.SetModel.
func (c *AnthropicClient) SetModel(model string) {
	c.model = anthropic.Model(model)
}

// buildParams converts kaiwa messages to Anthropic request parameters.
// System messages become the separate System parameter.
func (c *AnthropicClient) buildParams(messages []Message) anthropic.MessageNewParams {
	var systemBlocks []anthropic.TextBlockParam
	anthropicMsgs := make([]anthropic.MessageParam, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case "system":
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{Text: msg.Content})
		case "assistant":
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		Messages:  anthropicMsgs,
		MaxTokens: 4096,
	}
	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}
	return params
}

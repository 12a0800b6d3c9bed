package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/azure"
	"github.com/openai/openai-go/v3/shared"
)

// AzureClient implements Client against an Azure OpenAI resource using the
// official OpenAI Go SDK with Azure request options.
type AzureClient struct {
	client     openai.Client
	deployment string
	endpoint   string
	apiVersion string
}

// NewAzureClient creates an Azure OpenAI client.
//
// All three of endpoint, apiKey and apiVersion are required; a missing value
// is a configuration error reported before any network call. The deployment
// defaults to "gpt-35-turbo" to match new-resource defaults.
func NewAzureClient(endpoint, apiKey, apiVersion, deployment string) (*AzureClient, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("Azure OpenAI endpoint is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("Azure OpenAI API key is required")
	}
	if apiVersion == "" {
		return nil, fmt.Errorf("Azure OpenAI API version is required")
	}
	if deployment == "" {
		deployment = "gpt-35-turbo"
	}

	client := openai.NewClient(
		azure.WithEndpoint(endpoint, apiVersion),
		azure.WithAPIKey(apiKey),
	)

	return &AzureClient{
		client:     client,
		deployment: deployment,
		endpoint:   endpoint,
		apiVersion: apiVersion,
	}, nil
}

// Chat implements Client.Chat with streaming support.
func (c *AzureClient) Chat(ctx context.Context, messages []Message, callback StreamCallback) error {
	params := openai.ChatCompletionNewParams{
		Messages: convertMessages(messages),
		Model:    openai.ChatModel(c.deployment),
	}

	stream := c.client.Chat.Completions.NewStreaming(ctx, params)
	acc := openai.ChatCompletionAccumulator{}

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if len(chunk.Choices) > 0 && chunk.Choices[0].Delta.Content != "" {
			if callback != nil {
				if err := callback(chunk.Choices[0].Delta.Content); err != nil {
					return err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("Azure OpenAI streaming error: %w", err)
	}

	return nil
}

// Complete implements Client.Complete.
func (c *AzureClient) Complete(ctx context.Context, messages []Message) (Completion, error) {
	params := openai.ChatCompletionNewParams{
		Messages: convertMessages(messages),
		Model:    openai.ChatModel(c.deployment),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return Completion{}, fmt.Errorf("Azure OpenAI completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Completion{}, fmt.Errorf("Azure OpenAI returned no choices")
	}

	return Completion{
		Text:         resp.Choices[0].Message.Content,
		FinishReason: string(resp.Choices[0].FinishReason),
		Usage: Usage{
			PromptTokens:     int(resp.Usage.PromptTokens),
			CompletionTokens: int(resp.Usage.CompletionTokens),
			TotalTokens:      int(resp.Usage.TotalTokens),
		},
	}, nil
}

// CompleteJSON implements Client.CompleteJSON via the json_schema response
// format. Deployments that reject the response_format parameter surface as
// ErrJSONModeUnsupported so callers can switch to the prompt fallback.
func (c *AzureClient) CompleteJSON(ctx context.Context, prompt string, schema *Schema) ([]byte, error) {
	params := openai.ChatCompletionNewParams{
		Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Model:       openai.ChatModel(c.deployment),
		Temperature: openai.Float(0),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
				JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schema.Name,
					Schema: schema.Definition(),
					Strict: openai.Bool(true),
				},
			},
		},
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if isResponseFormatError(err) {
			return nil, ErrJSONModeUnsupported
		}
		return nil, fmt.Errorf("Azure OpenAI structured completion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("Azure OpenAI returned no choices")
	}

	return []byte(resp.Choices[0].Message.Content), nil
}

// Model implements Client.Model. Azure routes by deployment name.
func (c *AzureClient) Model() string {
	return c.deployment
}

// SetModel implements Client.SetModel.
func (c *AzureClient) SetModel(model string) {
	c.deployment = model
}

// isResponseFormatError reports whether the API rejected the response_format
// parameter, which older deployments do.
func isResponseFormatError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "response_format") &&
		(strings.Contains(msg, "unknown_parameter") || strings.Contains(msg, "unsupported"))
}

// convertMessages converts kaiwa messages to the OpenAI parameter union.
func convertMessages(messages []Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case "system":
			result = append(result, openai.SystemMessage(msg.Content))
		case "assistant":
			result = append(result, openai.AssistantMessage(msg.Content))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}
	return result
}

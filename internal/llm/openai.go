package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	ProviderOpenAI = "openai"

	DefaultOpenAIModel = openai.ChatModelGPT4oMini
)

// OpenAIOptions configures OpenAICompleter.
type OpenAIOptions struct {
	APIKey    string
	Model     string
	MaxTokens int64
	BaseURL   string
}

// OpenAICompleter calls the OpenAI Chat Completions API.
type OpenAICompleter struct {
	client *openai.Client
	opts   OpenAIOptions
}

// NewOpenAI creates a completer using the official client.
func NewOpenAI(optFns ...func(o *OpenAIOptions)) *OpenAICompleter {
	opts := OpenAIOptions{
		Model:     DefaultOpenAIModel,
		MaxTokens: DefaultMaxTokens,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey), option.WithMaxRetries(0)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := openai.NewClient(clientOpts...)

	return &OpenAICompleter{client: &client, opts: opts}
}

func (c *OpenAICompleter) Name() string { return ProviderOpenAI }

// Complete sends the system prompt as a system message followed by msgs.
func (c *OpenAICompleter) Complete(ctx context.Context, system string, msgs []Message) (*Completion, error) {
	if c.opts.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", ProviderOpenAI, ErrMissingCredential)
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs)+1)
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	for _, m := range msgs {
		if m.Role == RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               c.opts.Model,
		Messages:            messages,
		MaxCompletionTokens: openai.Int(c.opts.MaxTokens),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: ProviderOpenAI, Status: apiErr.StatusCode, Message: apiErr.Error(), Err: err}
		}
		return nil, fmt.Errorf("%s: %w", ProviderOpenAI, err)
	}

	out := &Completion{
		Text: NoTextReply,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	if len(resp.Choices) > 0 && resp.Choices[0].Message.Content != "" {
		out.Text = resp.Choices[0].Message.Content
	}
	return out, nil
}

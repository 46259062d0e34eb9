package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	ProviderAnthropic = "anthropic"

	DefaultAnthropicModel = "claude-sonnet-4-20250514"
	DefaultMaxTokens      = 1024
)

// AnthropicOptions configures AnthropicCompleter.
type AnthropicOptions struct {
	APIKey    string
	Model     string
	MaxTokens int64
	BaseURL   string // overrides the API endpoint, mostly for tests
}

// AnthropicCompleter calls the Anthropic Messages API.
type AnthropicCompleter struct {
	client *anthropic.Client
	opts   AnthropicOptions
}

// NewAnthropic creates a completer using the official client.
func NewAnthropic(optFns ...func(o *AnthropicOptions)) *AnthropicCompleter {
	opts := AnthropicOptions{
		Model:     DefaultAnthropicModel,
		MaxTokens: DefaultMaxTokens,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(opts.APIKey), option.WithMaxRetries(0)}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}
	client := anthropic.NewClient(clientOpts...)

	return &AnthropicCompleter{client: &client, opts: opts}
}

func (c *AnthropicCompleter) Name() string { return ProviderAnthropic }

// Complete sends one Messages request. The first text block of the reply is
// returned; a reply without one yields NoTextReply.
func (c *AnthropicCompleter) Complete(ctx context.Context, system string, msgs []Message) (*Completion, error) {
	if c.opts.APIKey == "" {
		return nil, fmt.Errorf("%s: %w", ProviderAnthropic, ErrMissingCredential)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.opts.Model),
		MaxTokens: c.opts.MaxTokens,
		Messages:  make([]anthropic.MessageParam, 0, len(msgs)),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}
	for _, m := range msgs {
		block := anthropic.NewTextBlock(m.Content)
		if m.Role == RoleAssistant {
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(block))
		} else {
			params.Messages = append(params.Messages, anthropic.NewUserMessage(block))
		}
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: ProviderAnthropic, Status: apiErr.StatusCode, Message: apiErr.Error(), Err: err}
		}
		return nil, fmt.Errorf("%s: %w", ProviderAnthropic, err)
	}

	out := &Completion{
		Text: NoTextReply,
		Usage: Usage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}
	for _, block := range resp.Content {
		if block.Type == "text" {
			out.Text = block.Text
			break
		}
	}
	return out, nil
}

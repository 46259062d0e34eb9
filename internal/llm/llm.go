// Package llm wraps the completion providers behind a single Completer
// interface: a system prompt plus a user/assistant transcript in, text out.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Role is the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Valid reports whether r is user or assistant.
func (r Role) Valid() bool { return r == RoleUser || r == RoleAssistant }

// Message is one turn of the conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Usage reports the tokens billed for a completion.
type Usage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// Completion is the provider's reply.
type Completion struct {
	Text  string `json:"message"`
	Usage Usage  `json:"usage"`
}

// Completer produces a reply to msgs under the given system prompt.
type Completer interface {
	Complete(ctx context.Context, system string, msgs []Message) (*Completion, error)
	// Name identifies the provider in logs and metrics.
	Name() string
}

// ErrMissingCredential is returned when the provider has no API key configured.
var ErrMissingCredential = errors.New("api key not configured")

// NoTextReply is used when the provider answers without any text block.
const NoTextReply = "ขอโทษครับ ไม่สามารถตอบได้ในขณะนี้"

// ProviderError is a request the provider rejected.
type ProviderError struct {
	Provider string
	Status   int // HTTP status from the provider, 0 if none was received
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: API Error (status %d): %s", e.Provider, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: API Error: %s", e.Provider, e.Message)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// HTTPStatus is the status to relay to callers; 500 when the provider sent none.
func (e *ProviderError) HTTPStatus() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// Config selects and configures a provider.
type Config struct {
	Provider        string // anthropic, openai or static
	Model           string
	MaxTokens       int64
	AnthropicAPIKey string
	OpenAIAPIKey    string
	BaseURL         string
}

// New builds the Completer named by cfg.Provider. An empty provider means
// anthropic. A missing API key is not an error here; Complete reports it.
func New(cfg Config) (Completer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderAnthropic:
		return NewAnthropic(func(o *AnthropicOptions) {
			o.APIKey = cfg.AnthropicAPIKey
			o.BaseURL = cfg.BaseURL
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
		}), nil
	case ProviderOpenAI:
		return NewOpenAI(func(o *OpenAIOptions) {
			o.APIKey = cfg.OpenAIAPIKey
			o.BaseURL = cfg.BaseURL
			if cfg.Model != "" {
				o.Model = cfg.Model
			}
			if cfg.MaxTokens > 0 {
				o.MaxTokens = cfg.MaxTokens
			}
		}), nil
	case ProviderStatic:
		return &StaticCompleter{Text: NoTextReply}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (valid: anthropic, openai, static)", cfg.Provider)
	}
}

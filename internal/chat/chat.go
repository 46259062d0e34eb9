// Package chat answers a conversation with the completion service, personalised
// by the user's memory context. When the service fails and fallback mode is on,
// it answers from canned rules instead.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/rcliao/buddy/internal/fallback"
	"github.com/rcliao/buddy/internal/llm"
	"github.com/rcliao/buddy/internal/prompt"
)

// MemorySource renders the remembered context for a user.
type MemorySource interface {
	Context(ctx context.Context, userID string) (string, error)
}

// Recorder receives completion and fallback events.
type Recorder interface {
	Completion(provider string, d time.Duration, inputTokens, outputTokens int64, err error)
	Fallback(rule string)
}

type nopRecorder struct{}

func (nopRecorder) Completion(string, time.Duration, int64, int64, error) {}
func (nopRecorder) Fallback(string)                                     {}

// Request is a conversation to answer. UserID may be empty for guests, in
// which case no memory context is used.
type Request struct {
	UserID   string        `json:"user_id,omitempty"`
	Messages []llm.Message `json:"messages"`
}

// Response is the assistant's reply.
type Response struct {
	Message  string             `json:"message"`
	Usage    *llm.Usage         `json:"usage,omitempty"`
	Fallback bool               `json:"fallback,omitempty"`
	Approval *fallback.Approval `json:"approval,omitempty"`
}

// Service produces replies.
type Service struct {
	completer llm.Completer
	memories  MemorySource
	responder *fallback.Responder
	detector  *fallback.Detector
	fallback  bool
	base      string
	logger    *slog.Logger
	recorder  Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithMemory personalises replies with the user's memory context.
func WithMemory(src MemorySource) Option { return func(s *Service) { s.memories = src } }

// WithFallback turns fallback mode on or off. It is on by default.
func WithFallback(enabled bool) Option { return func(s *Service) { s.fallback = enabled } }

// WithResponder replaces the canned fallback replies.
func WithResponder(r *fallback.Responder) Option { return func(s *Service) { s.responder = r } }

// WithDetector replaces action detection; nil disables it.
func WithDetector(d *fallback.Detector) Option { return func(s *Service) { s.detector = d } }

// WithBasePrompt replaces prompt.BasePrompt.
func WithBasePrompt(p string) Option { return func(s *Service) { s.base = p } }

func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }

// NewService creates a chat service around completer.
func NewService(completer llm.Completer, opts ...Option) *Service {
	s := &Service{
		completer: completer,
		responder: fallback.DefaultResponder(),
		detector:  fallback.DefaultDetector(),
		fallback:  true,
		base:      prompt.BasePrompt,
		logger:    slog.Default(),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "chat")
	return s
}

// Reply answers req. Validation failures return an *Error of KindValidation
// without calling the completion service. Completion failures return an
// *Error too, unless fallback mode turns them into a canned reply.
func (s *Service) Reply(ctx context.Context, req Request) (*Response, error) {
	if err := validate(req.Messages); err != nil {
		return nil, err
	}
	last := lastUserMessage(req.Messages)

	if s.detector != nil {
		if approval, ok := s.detector.Detect(last); ok {
			s.logger.Info("action needs approval", "user_id", req.UserID, "action", approval.Type, "approval_id", approval.ID)
			return &Response{Message: approval.Description, Approval: approval}, nil
		}
	}

	system := s.base
	if s.memories != nil && req.UserID != "" {
		memCtx, err := s.memories.Context(ctx, req.UserID)
		if err != nil {
			s.logger.Warn("memory context unavailable", "user_id", req.UserID, "err", err)
		}
		system = prompt.Build(s.base, memCtx)
	}

	start := time.Now()
	comp, err := s.completer.Complete(ctx, system, req.Messages)
	elapsed := time.Since(start)
	if err != nil {
		s.recorder.Completion(s.completer.Name(), elapsed, 0, 0, err)
		cerr := classify(err)
		if !s.fallback {
			s.logger.Error("completion failed", "user_id", req.UserID, "kind", cerr.Kind, "err", err)
			return nil, cerr
		}
		reply := s.responder.Respond(last)
		s.recorder.Fallback(reply.Rule)
		s.logger.Warn("completion failed, using fallback", "user_id", req.UserID, "kind", cerr.Kind, "rule", reply.Rule, "err", err)
		return &Response{Message: reply.Text, Fallback: true}, nil
	}

	s.recorder.Completion(s.completer.Name(), elapsed, comp.Usage.InputTokens, comp.Usage.OutputTokens, nil)
	s.logger.Info("completion received", "user_id", req.UserID, "provider", s.completer.Name(),
		"input_tokens", comp.Usage.InputTokens, "output_tokens", comp.Usage.OutputTokens)
	usage := comp.Usage
	return &Response{Message: comp.Text, Usage: &usage}, nil
}

func validate(msgs []llm.Message) *Error {
	if len(msgs) == 0 {
		return validationError("Messages array is required")
	}
	for i, m := range msgs {
		if !m.Role.Valid() {
			return validationError("messages[%d]: role must be user or assistant, got %q", i, m.Role)
		}
		if strings.TrimSpace(m.Content) == "" {
			return validationError("messages[%d]: content is required", i)
		}
	}
	return nil
}

func lastUserMessage(msgs []llm.Message) string {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == llm.RoleUser {
			return msgs[i].Content
		}
	}
	return ""
}

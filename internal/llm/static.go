package llm

import (
	"context"
	"sync"
)

const ProviderStatic = "static"

// StaticCompleter returns a fixed reply, or Err when set. It records the
// last request so tests can inspect the prompt that was sent.
type StaticCompleter struct {
	Text  string
	Usage Usage
	Err   error

	mu         sync.Mutex
	calls      int
	lastSystem string
	lastMsgs   []Message
}

func (s *StaticCompleter) Name() string { return ProviderStatic }

func (s *StaticCompleter) Complete(_ context.Context, system string, msgs []Message) (*Completion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastSystem = system
	s.lastMsgs = append([]Message(nil), msgs...)
	if s.Err != nil {
		return nil, s.Err
	}
	return &Completion{Text: s.Text, Usage: s.Usage}, nil
}

// Calls returns how many times Complete ran.
func (s *StaticCompleter) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// LastRequest returns the system prompt and messages of the latest call.
func (s *StaticCompleter) LastRequest() (string, []Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSystem, s.lastMsgs
}

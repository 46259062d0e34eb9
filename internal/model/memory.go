// Package model defines the core memory data types.
package model

import (
	"errors"
	"fmt"
	"time"
)

// Importance bounds and defaults.
const (
	MinImportance     = 1
	MaxImportance     = 10
	DefaultImportance = 5
)

var (
	ErrInvalidType       = errors.New("invalid memory type")
	ErrInvalidImportance = errors.New("importance out of range")
	ErrEmptyKey          = errors.New("memory key is required")
)

// Type classifies a memory and decides which context section it lands in.
type Type string

const (
	TypePreference Type = "preference" // learning style, interests
	TypeFact       Type = "fact"       // name, goals
	TypeSummary    Type = "summary"    // conversation summaries
	TypeContext    Type = "context"    // current learning context
	TypeFeedback   Type = "feedback"   // feedback on AI responses, never rendered
)

// Types lists every valid memory type in declaration order.
var Types = []Type{TypePreference, TypeFact, TypeSummary, TypeContext, TypeFeedback}

// ParseType validates s against the closed set of memory types.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w %q (valid: preference, fact, summary, context, feedback)", ErrInvalidType, s)
}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	_, err := ParseType(string(t))
	return err == nil
}

// Memory is a single fact, preference, summary, context note or feedback item
// about one user.
type Memory struct {
	ID         string    `json:"id"`
	UserID     string    `json:"user_id"`
	Type       Type      `json:"type"`
	Key        string    `json:"key"`
	Value      string    `json:"value"`
	Importance int       `json:"importance"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ValidateImportance checks that i lies in [MinImportance, MaxImportance].
func ValidateImportance(i int) error {
	if i < MinImportance || i > MaxImportance {
		return fmt.Errorf("%w: %d (valid: %d-%d)", ErrInvalidImportance, i, MinImportance, MaxImportance)
	}
	return nil
}

// Validate checks the fields a persisted memory must carry.
func (m Memory) Validate() error {
	if !m.Type.Valid() {
		return fmt.Errorf("%w %q", ErrInvalidType, m.Type)
	}
	if m.Key == "" {
		return ErrEmptyKey
	}
	return ValidateImportance(m.Importance)
}

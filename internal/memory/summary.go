package memory

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rcliao/buddy/internal/model"
)

// SummaryImportance is the importance given to conversation summaries.
const SummaryImportance = 3

const maxSummaryRunes = 200

// ErrEmptyConversation is returned when there is nothing to summarize.
var ErrEmptyConversation = errors.New("conversation is empty")

// Summarize condenses a conversation transcript. With more than three
// non-empty lines it keeps the first two and notes the line count; otherwise it
// keeps the first 200 characters of the raw text.
func Summarize(conversation string) string {
	var lines []string
	for _, l := range strings.Split(conversation, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) > 3 {
		return fmt.Sprintf("%s... (%d messages)", strings.Join(lines[:2], " "), len(lines))
	}
	r := []rune(conversation)
	if len(r) > maxSummaryRunes {
		r = r[:maxSummaryRunes]
	}
	return string(r)
}

// SummarizeAndStore stores a summary of conversation as a new summary memory.
// Every call gets its own key so summaries accumulate instead of replacing
// each other.
func (s *Store) SummarizeAndStore(ctx context.Context, conversation string) error {
	if strings.TrimSpace(conversation) == "" {
		return ErrEmptyConversation
	}
	return s.Add(ctx, AddParams{
		Type:       model.TypeSummary,
		Key:        s.summaryKey(),
		Value:      Summarize(conversation),
		Importance: SummaryImportance,
	})
}

// summaryKey returns conversation_<unix millis>, bumped past the previous key
// when two calls land in the same millisecond.
func (s *Store) summaryKey() string {
	ms := s.now().UnixMilli()
	s.mu.Lock()
	if ms <= s.lastSummary {
		ms = s.lastSummary + 1
	}
	s.lastSummary = ms
	s.mu.Unlock()
	return "conversation_" + strconv.FormatInt(ms, 10)
}

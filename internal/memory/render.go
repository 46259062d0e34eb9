package memory

import (
	"strings"

	"github.com/rcliao/buddy/internal/model"
)

const (
	// FactImportanceThreshold is the minimum importance for a fact to be rendered.
	FactImportanceThreshold = 7
	// MaxRenderedSummaries caps the summary section.
	MaxRenderedSummaries = 3
)

// Section headings of the rendered context.
const (
	HeadingFacts       = "## ข้อมูลผู้ใช้"
	HeadingPreferences = "## ความชอบ"
	HeadingContext     = "## บริบทปัจจุบัน"
	HeadingSummaries   = "## สรุปบทสนทนาก่อนหน้า"
)

// RenderContext renders the loaded memories into the block that is added to
// the system prompt. See Render.
func (s *Store) RenderContext() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Render(s.memories)
}

// Render builds the context block from memories in the given order:
//
//  1. facts with importance >= 7, as "key: value"
//  2. preferences, as "key: value"
//  3. context notes, value only
//  4. the first three summaries, value only
//
// Feedback is never rendered. Empty sections are skipped and sections after
// the first are separated by a blank line. No memories yields "".
func Render(memories []model.Memory) string {
	var lines []string
	section := func(heading string, bullets []string) {
		if len(bullets) == 0 {
			return
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, heading)
		lines = append(lines, bullets...)
	}

	var facts, prefs, notes, summaries []string
	for _, m := range memories {
		switch m.Type {
		case model.TypeFact:
			if m.Importance >= FactImportanceThreshold {
				facts = append(facts, "- "+m.Key+": "+m.Value)
			}
		case model.TypePreference:
			prefs = append(prefs, "- "+m.Key+": "+m.Value)
		case model.TypeContext:
			notes = append(notes, "- "+m.Value)
		case model.TypeSummary:
			if len(summaries) < MaxRenderedSummaries {
				summaries = append(summaries, "- "+m.Value)
			}
		}
	}

	section(HeadingFacts, facts)
	section(HeadingPreferences, prefs)
	section(HeadingContext, notes)
	section(HeadingSummaries, summaries)

	return strings.Join(lines, "\n")
}

package memory

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rcliao/buddy/internal/model"
)

func mem(t model.Type, key, value string, importance int) model.Memory {
	return model.Memory{Type: t, Key: key, Value: value, Importance: importance}
}

func TestRenderEmpty(t *testing.T) {
	assert.Equal(t, "", Render(nil))
	assert.Equal(t, "", Render([]model.Memory{}))
}

func TestRenderAllSections(t *testing.T) {
	got := Render([]model.Memory{
		mem(model.TypeSummary, "conversation_1", "ถามเรื่อง AI", 3),
		mem(model.TypeFact, "ชื่อ", "สมชาย", 8),
		mem(model.TypeContext, "lesson", "บทที่ 3", 5),
		mem(model.TypePreference, "style", "visual", 5),
		mem(model.TypeFeedback, "fb", "ตอบยาวไป", 9),
	})

	want := strings.Join([]string{
		"## ข้อมูลผู้ใช้",
		"- ชื่อ: สมชาย",
		"",
		"## ความชอบ",
		"- style: visual",
		"",
		"## บริบทปัจจุบัน",
		"- บทที่ 3",
		"",
		"## สรุปบทสนทนาก่อนหน้า",
		"- ถามเรื่อง AI",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestRenderFactThreshold(t *testing.T) {
	assert.Equal(t, "", Render([]model.Memory{mem(model.TypeFact, "age", "15", 6)}))
	assert.Equal(t, "## ข้อมูลผู้ใช้\n- age: 15", Render([]model.Memory{mem(model.TypeFact, "age", "15", 7)}))
}

func TestRenderSkipsEmptySections(t *testing.T) {
	got := Render([]model.Memory{
		mem(model.TypeFact, "hidden", "x", 2),
		mem(model.TypeContext, "lesson", "prompting", 5),
	})
	assert.Equal(t, "## บริบทปัจจุบัน\n- prompting", got)
}

func TestRenderAtMostThreeSummaries(t *testing.T) {
	var memories []model.Memory
	for i := range 10 {
		memories = append(memories, mem(model.TypeSummary, fmt.Sprintf("conversation_%d", i), fmt.Sprintf("s%d", i), 3))
	}
	got := Render(memories)

	assert.Equal(t, 3, strings.Count(got, "\n- "))
	assert.Contains(t, got, "- s0\n- s1\n- s2")
	assert.NotContains(t, got, "s3")
}

func TestRenderNeverIncludesFeedback(t *testing.T) {
	got := Render([]model.Memory{
		mem(model.TypeFeedback, "fb-key", "fb-value", 10),
		mem(model.TypeFeedback, "other", "secret", 1),
	})
	assert.Equal(t, "", got)

	got = Render([]model.Memory{
		mem(model.TypePreference, "lang", "th", 5),
		mem(model.TypeFeedback, "fb-key", "fb-value", 10),
	})
	assert.NotContains(t, got, "fb-key")
	assert.NotContains(t, got, "fb-value")
}

func TestRenderKeepsCollectionOrder(t *testing.T) {
	got := Render([]model.Memory{
		mem(model.TypePreference, "b", "2", 9),
		mem(model.TypePreference, "a", "1", 1),
	})
	assert.Equal(t, "## ความชอบ\n- b: 2\n- a: 1", got)
}

func TestRenderWithoutFactsStartsAtFirstHeading(t *testing.T) {
	got := Render([]model.Memory{
		mem(model.TypeFact, "age", "15", 5),
		mem(model.TypePreference, "style", "visual", 5),
		mem(model.TypeSummary, "conversation_1", "ถามเรื่อง AI", 3),
	})
	assert.Equal(t, "## ความชอบ\n- style: visual\n\n## สรุปบทสนทนาก่อนหน้า\n- ถามเรื่อง AI", got)
}

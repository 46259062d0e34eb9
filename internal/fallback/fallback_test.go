package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespond(t *testing.T) {
	r := DefaultResponder()
	tests := []struct {
		input string
		rule  string
	}{
		{"สวัสดีครับ", "greeting"},
		{"HELLO there", "greeting"},
		{"สวัสดี AI", "greeting"},
		{"AI คืออะไร", "ai"},
		{"อยากรู้เรื่องปัญญาประดิษฐ์", "ai"},
		{"Oracle คืออะไร", "oracle"},
		{"human in the loop", "human_in_the_loop"},
		{"ใครควบคุม", "human_in_the_loop"},
		{"ขอบคุณ", DefaultRule},
		{"", DefaultRule},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := r.Respond(tt.input)
			assert.Equal(t, tt.rule, got.Rule)
			assert.NotEmpty(t, got.Text)
		})
	}
	assert.Equal(t, DefaultReply, r.Respond("ขอบคุณ").Text)
}

func TestFirstMatchWins(t *testing.T) {
	rules := []Rule[string]{
		{Name: "a", Match: ContainsAny("x"), Value: "A"},
		{Name: "nil matcher"},
		{Name: "b", Match: ContainsAny("x", "y"), Value: "B"},
	}
	got, ok := First(rules, "XY")
	require.True(t, ok)
	assert.Equal(t, "a", got.Name)

	got, ok = First(rules, "y")
	require.True(t, ok)
	assert.Equal(t, "B", got.Value)

	_, ok = First(rules, "z")
	assert.False(t, ok)
}

func TestCustomResponder(t *testing.T) {
	r := NewResponder([]Rule[string]{{Name: "x", Match: ContainsAny("x"), Value: "X"}}, "none")
	assert.Equal(t, Reply{Rule: "x", Text: "X"}, r.Respond("x"))
	assert.Equal(t, Reply{Rule: DefaultRule, Text: "none"}, r.Respond("y"))
}

func TestDetect(t *testing.T) {
	d := DefaultDetector()
	tests := []struct {
		input string
		want  ActionType
	}{
		{"ผมเรียนจบบทนี้แล้ว", ActionCompleteLesson},
		{"Complete Lesson please", ActionCompleteLesson},
		{"ช่วยบันทึกหน่อย", ActionUpdateProgress},
		{"save progress", ActionUpdateProgress},
		{"ส่งข้อมูลให้ครู", ActionSendData},
		{"export my data", ActionSendData},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a, ok := d.Detect(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.want, a.Type)
			assert.NotEmpty(t, a.ID)
			assert.NotEmpty(t, a.Approved)
			assert.Equal(t, RejectedReply, a.Rejected)
		})
	}

	_, ok := d.Detect("AI คืออะไร")
	assert.False(t, ok)
}

func TestDetectUniqueIDs(t *testing.T) {
	d := DefaultDetector()
	a, _ := d.Detect("จบบท")
	b, _ := d.Detect("จบบท")
	assert.NotEqual(t, a.ID, b.ID)
}

package fallback

import "github.com/google/uuid"

// ActionType is a side effect the user must approve before it happens.
type ActionType string

const (
	ActionCompleteLesson ActionType = "complete_lesson"
	ActionUpdateProgress ActionType = "update_progress"
	ActionSendData       ActionType = "send_data"
)

// Action describes an approval request shown to the user. Approved is the
// assistant message sent once the user approves.
type Action struct {
	Type        ActionType `json:"action_type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Details     []string   `json:"details,omitempty"`
	Confidence  int        `json:"confidence"`
	Approved    string     `json:"approved_message"`
}

// Approval is a detected action awaiting the user's decision.
type Approval struct {
	ID string `json:"id"`
	Action
	Rejected string `json:"rejected_message"`
}

// RejectedReply is sent when the user declines an approval.
const RejectedReply = `❌ **ยกเลิกแล้ว**

ไม่มีปัญหาครับ! ผมจะไม่ดำเนินการใดๆ

มีอะไรอื่นให้ช่วยไหมครับ? 🐉`

// Detector finds requests for actions that need approval.
type Detector struct {
	rules []Rule[Action]
	newID func() string
}

// NewDetector returns a detector over rules. Approval ids are random UUIDs.
func NewDetector(rules []Rule[Action]) *Detector {
	return &Detector{rules: rules, newID: uuid.NewString}
}

// DefaultDetector detects lesson completion, progress updates and data sharing.
func DefaultDetector() *Detector {
	return NewDetector(Actions)
}

// Detect returns an approval request for the first matching action.
func (d *Detector) Detect(input string) (*Approval, bool) {
	rule, ok := First(d.rules, input)
	if !ok {
		return nil, false
	}
	return &Approval{ID: d.newID(), Action: rule.Value, Rejected: RejectedReply}, true
}

// Actions are checked in order.
var Actions = []Rule[Action]{
	{
		Name:  string(ActionCompleteLesson),
		Match: ContainsAny("เรียนจบ", "จบบท", "complete lesson"),
		Value: Action{
			Type:        ActionCompleteLesson,
			Title:       "บันทึกการเรียนจบบท",
			Description: "AI Buddy ต้องการบันทึกว่าคุณเรียนจบบทนี้แล้ว",
			Details:     []string{"อัพเดทความคืบหน้าใน Dashboard", "เพิ่ม XP และ streak", "ปลดล็อคบทถัดไป"},
			Confidence:  85,
			Approved: `✅ **บันทึกสำเร็จ!**

เยี่ยมมากครับ! ผมได้บันทึกว่าคุณเรียนจบบทนี้แล้ว

📊 **อัพเดท:**
- ความคืบหน้า +1 บท
- XP +50
- Streak ยังคงอยู่!

พร้อมเรียนบทถัดไปหรือยังครับ? 🐉`,
		},
	},
	{
		Name:  string(ActionUpdateProgress),
		Match: ContainsAny("อัพเดท", "บันทึก", "save progress"),
		Value: Action{
			Type:        ActionUpdateProgress,
			Title:       "อัพเดทความคืบหน้า",
			Description: "AI Buddy ต้องการบันทึกความคืบหน้าของคุณ",
			Details:     []string{"บันทึกตำแหน่งปัจจุบัน", "ซิงค์กับ cloud"},
			Confidence:  90,
			Approved: `✅ **อัพเดทสำเร็จ!**

ความคืบหน้าของคุณถูกบันทึกแล้วครับ

🔄 ข้อมูลซิงค์กับ cloud เรียบร้อย 🐉`,
		},
	},
	{
		Name:  string(ActionSendData),
		Match: ContainsAny("ส่งข้อมูล", "export", "share"),
		Value: Action{
			Type:        ActionSendData,
			Title:       "ส่งข้อมูล",
			Description: "AI Buddy ต้องการส่งข้อมูลของคุณ",
			Details:     []string{"ข้อมูลจะถูกเข้ารหัส", "ส่งเฉพาะข้อมูลที่จำเป็น"},
			Confidence:  75,
			Approved: `✅ **ส่งข้อมูลสำเร็จ!**

ข้อมูลถูกส่งเรียบร้อยแล้วครับ 🐉`,
		},
	},
}

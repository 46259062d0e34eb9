package fallback

// Reply is a canned answer and the rule that produced it.
type Reply struct {
	Rule string
	Text string
}

// DefaultRule names the reply used when no rule matches.
const DefaultRule = "default"

// Responder produces canned replies when the completion service is unavailable.
type Responder struct {
	rules []Rule[string]
	deflt string
}

// NewResponder returns a responder with the given rules and default reply.
func NewResponder(rules []Rule[string], deflt string) *Responder {
	return &Responder{rules: rules, deflt: deflt}
}

// DefaultResponder returns the Thai rules used in fallback mode.
func DefaultResponder() *Responder {
	return NewResponder(Replies, DefaultReply)
}

// Respond returns the reply of the first matching rule, or the default.
func (r *Responder) Respond(input string) Reply {
	if rule, ok := First(r.rules, input); ok {
		return Reply{Rule: rule.Name, Text: rule.Value}
	}
	return Reply{Rule: DefaultRule, Text: r.deflt}
}

// Replies are checked in order; greeting wins over the AI topic.
var Replies = []Rule[string]{
	{Name: "greeting", Match: ContainsAny("สวัสดี", "hello", "หวัดดี"), Value: greetingReply},
	{Name: "ai", Match: ContainsAny("ai", "เอไอ", "ปัญญาประดิษฐ์"), Value: aiReply},
	{Name: "oracle", Match: ContainsAny("oracle"), Value: oracleReply},
	{Name: "human_in_the_loop", Match: ContainsAny("human", "loop", "ควบคุม"), Value: humanLoopReply},
}

const greetingReply = `สวัสดีครับ! ยินดีที่ได้พบคุณ 😊

ผม **AI Buddy** พร้อมช่วยคุณเรียนรู้เกี่ยวกับ AI ครับ

⚠️ *ขณะนี้อยู่ใน Fallback Mode — ตอบจาก template*

มีอะไรให้ช่วยไหมครับ? 🐉`

const aiReply = `**AI (Artificial Intelligence)** คือปัญญาประดิษฐ์ครับ

หลักการสำคัญที่เราใช้คือ **Human in the Loop**:
- มนุษย์ควบคุม AI ไม่ใช่ AI ควบคุมมนุษย์
- AI เป็นเพื่อน ไม่ใช่เจ้านาย
- ทุก action สำคัญต้องได้รับการอนุมัติ

⚠️ *Fallback Mode*

ต้องการเรียนรู้เพิ่มเติมไหมครับ? 🐉`

const oracleReply = `**Oracle** เป็นบริษัทเทคโนโลยีชั้นนำที่มีวิสัยทัศน์ด้าน AI ครับ

ปรัชญาหลัก:
- **AI as Creative Partner** — AI เป็นพันธมิตรสร้างสรรค์
- **Human Oversight** — มนุษย์ดูแลตลอดเวลา
- **Cultural Transformation** — เปลี่ยน mindset ไม่ใช่แค่ deploy tools

เราใช้ปรัชญานี้ในการพัฒนา Oracle AI Buddy ครับ 🏰

⚠️ *Fallback Mode*`

const humanLoopReply = `**Human in the Loop** คือหลักการที่ให้มนุษย์มีส่วนร่วมในการตัดสินใจของ AI

วิธีการ:
1. **Approval Workflow** — User approve ก่อน AI ทำ action
2. **Exception Handling** — มนุษย์แก้ไขเมื่อ AI ไม่แน่ใจ
3. **Confidence Level** — แสดงความมั่นใจของ AI

ใน Oracle AI Buddy เราใช้หลักการนี้ทุก action สำคัญครับ 🐉

⚠️ *Fallback Mode*`

// DefaultReply lists the questions fallback mode can answer.
const DefaultReply = `ขอบคุณสำหรับข้อความครับ!

ขณะนี้ผมอยู่ใน **Fallback Mode** เนื่องจาก API ยังไม่พร้อมใช้งาน

สิ่งที่คุณสามารถถามได้:
- "AI คืออะไร"
- "Human in the Loop คืออะไร"
- "Oracle คืออะไร"

เมื่อเติม credit แล้ว ผมจะตอบได้ฉลาดขึ้นครับ 🐉`

// Package prompt assembles the system prompt sent to the completion service.
package prompt

import "strings"

// BasePrompt is the fixed AI Buddy persona.
const BasePrompt = `คุณคือ "AI Buddy" — เพื่อนร่วมเรียนรู้ AI สำหรับคนไทย

## ปรัชญาหลัก
- **Human in the Loop** — มนุษย์ควบคุม AI ไม่ใช่ AI ควบคุมมนุษย์
- **AI as a Human Buddy** — AI เป็นเพื่อน ไม่ใช่เจ้านาย
- **Thai First** — สื่อสารภาษาไทยเป็นหลัก

## บทบาทของคุณ
1. ช่วยสอนเรื่อง AI อย่างเข้าใจง่าย
2. ตอบคำถามด้วยความเป็นมิตร
3. ใช้ภาษาไทยที่เข้าใจง่าย ผสม emoji เล็กน้อย
4. เมื่อจะทำ action สำคัญ ต้องขออนุญาต user ก่อน

## วิธีตอบ
- ตอบกระชับ ไม่เยิ่นเย้อ
- ใช้ bullet points หรือ markdown เมื่อเหมาะสม
- ถ้าไม่แน่ใจ ให้ถามกลับ
- ลงท้ายด้วย emoji มังกร 🐉 เมื่อเหมาะสม`

// MemoryHeading introduces the remembered user context inside the prompt.
const MemoryHeading = "## ข้อมูลที่จำเกี่ยวกับผู้ใช้ (Remembered user context)"

// Build appends memoryContext to base under MemoryHeading. An empty or
// whitespace-only context returns base unchanged.
func Build(base, memoryContext string) string {
	if strings.TrimSpace(memoryContext) == "" {
		return base
	}
	var b strings.Builder
	b.Grow(len(base) + len(MemoryHeading) + len(memoryContext) + 3)
	b.WriteString(base)
	b.WriteString("\n\n")
	b.WriteString(MemoryHeading)
	b.WriteString("\n")
	b.WriteString(memoryContext)
	return b.String()
}

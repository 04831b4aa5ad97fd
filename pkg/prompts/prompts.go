package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/lifesim-engine/pkg/state"
)

// WorldPrompt frames the generator as the simulated world rather than an
// assistant. The builder appends character, state, history and action after it.
const WorldPrompt = `คุณคือ AI Life Simulator ที่ทำหน้าที่เป็นโลกและตัวละคร NPC ทั้งหมด
ห้ามทำตัวเป็นแชทบอท ให้เล่าเรื่องเหมือนเป็นโลกจริง`

// NarrationRules constrain the length and shape of every narration.
const NarrationRules = `กรุณาตอบสนองต่อการกระทำของผู้เล่นในรูปแบบการเล่าเรื่อง:
1. บรรยายสิ่งที่เกิดขึ้นอย่างสมจริงและกระชับ ไม่เกิน 3 ย่อหน้าสั้น ๆ
2. หากผู้เล่นพยายามเรียนรู้ทักษะ ให้พิจารณาระดับทักษะปัจจุบัน
3. หากผู้เล่นโต้ตอบกับใครบางคน ให้พิจารณาระดับความสัมพันธ์
4. พิจารณาพลังงาน ความหิว และเวลาของวันในการเล่าเรื่อง
5. ตอบเป็นภาษาไทย
6. จบด้วยความรู้สึกของตัวละครหนึ่งประโยค แล้วเสนอทางเลือกสองทางในรูปแบบนี้เท่านั้น:
choices: 1. <ทางเลือกแรก> 2. <ทางเลือกที่สอง>`

// repeatNarrations are used instead of the generator when an action repeats.
// Each takes the action text.
var repeatNarrations = []string{
	"คุณ%sอีกครั้ง แต่ไม่มีอะไรใหม่เกิดขึ้น บางทีอาจถึงเวลาลองทำอย่างอื่นดูบ้าง",
	"คุณยังคง%sต่อไป เวลาผ่านไปอย่างเงียบ ๆ โดยไม่มีอะไรเปลี่ยนแปลง",
	"การ%sซ้ำอีกครั้งไม่ได้ทำให้อะไรแตกต่างไปจากเดิม โลกรอบตัวคุณยังคงเหมือนเดิม",
	"คุณ%sเหมือนเมื่อครู่ที่ผ่านมา รู้สึกว่าวันนี้ดำเนินไปอย่างช้า ๆ",
}

// RepeatNarrationCount is the size of the repeat fallback pool.
func RepeatNarrationCount() int {
	return len(repeatNarrations)
}

// RepeatNarration formats the i-th repeat fallback with the action text.
// Out-of-range indexes wrap around.
func RepeatNarration(i int, action string) string {
	if i < 0 {
		i = -i
	}
	return fmt.Sprintf(repeatNarrations[i%len(repeatNarrations)], action)
}

// IsRepeatNarration reports whether text was produced by RepeatNarration for action.
func IsRepeatNarration(text, action string) bool {
	for i := range repeatNarrations {
		if text == RepeatNarration(i, action) {
			return true
		}
	}
	return false
}

// GeneratorFallback is the narration used when the generator cannot answer.
func GeneratorFallback(action string) string {
	return fmt.Sprintf("คุณ%s โลกรอบตัวดูเงียบสงบกว่าปกติ และเวลาก็ผ่านไปอย่างช้า ๆ", action)
}

// IdleNarration is used for an empty action.
const IdleNarration = "คุณใช้เวลาสักพักโดยไม่ได้ทำอะไรเป็นพิเศษ เวลาผ่านไปอย่างเงียบ ๆ"

// OpeningNarration greets a character that has no chat history yet.
func OpeningNarration(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "ผู้เล่น"
	}
	return fmt.Sprintf("ยินดีต้อนรับสู่ชีวิตใหม่ของคุณ %s! คุณตื่นขึ้นมาในบ้านของตัวเองในเช้าวันที่ %d เวลา %02d:%02d คุณอยากทำอะไรเป็นอย่างแรก?",
		name, state.DefaultDay, state.DefaultHour, state.DefaultMinute)
}

// formatAttributes renders "name: value/max" pairs, or a dash when empty.
func formatAttributes(attrs []state.Attribute) string {
	if len(attrs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		limit := a.Max
		if limit == 0 {
			limit = state.AttributeMax
		}
		parts = append(parts, fmt.Sprintf("%s: %d/%d", a.Name, a.Value, limit))
	}
	return strings.Join(parts, ", ")
}

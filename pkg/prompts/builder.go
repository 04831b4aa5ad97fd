package prompts

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/lifesim-engine/pkg/action"
	"github.com/jwebster45206/lifesim-engine/pkg/chat"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
	"github.com/jwebster45206/lifesim-engine/pkg/textfilter"
)

// DefaultHistoryLimit is the number of trailing history turns given to the generator.
const DefaultHistoryLimit = 4

// Builder assembles a single narration prompt using a fluent interface.
type Builder struct {
	character    *state.CharacterSummary
	state        *state.SimulationState
	history      []chat.HistoryTurn
	action       string
	historyLimit int
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: DefaultHistoryLimit,
	}
}

// WithCharacter sets the character summary.
func (b *Builder) WithCharacter(c *state.CharacterSummary) *Builder {
	b.character = c
	return b
}

// WithState sets the simulation state the narration happens in.
func (b *Builder) WithState(s *state.SimulationState) *Builder {
	b.state = s
	return b
}

// WithHistory sets the recent conversation, oldest first.
func (b *Builder) WithHistory(history []chat.HistoryTurn) *Builder {
	b.history = history
	return b
}

// WithHistoryLimit sets the history window size.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// WithAction sets the canonical action.
func (b *Builder) WithAction(a string) *Builder {
	b.action = a
	return b
}

// Build renders the prompt.
func (b *Builder) Build() (string, error) {
	if b.character == nil {
		return "", fmt.Errorf("character is required")
	}
	if b.state == nil {
		return "", fmt.Errorf("state is required")
	}

	var sb strings.Builder
	sb.WriteString(WorldPrompt)
	sb.WriteString("\n\n")
	b.writeCharacter(&sb)
	sb.WriteString("\n")
	b.writeState(&sb)
	sb.WriteString("\n")
	b.writeHistory(&sb)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "การกระทำของผู้เล่น: %q\n\n", b.action)
	sb.WriteString(NarrationRules)

	return sb.String(), nil
}

func (b *Builder) writeCharacter(sb *strings.Builder) {
	sb.WriteString("ข้อมูลตัวละครผู้เล่นปัจจุบัน:\n")
	fmt.Fprintf(sb, "- ชื่อ: %s\n", b.character.Name)
	fmt.Fprintf(sb, "- อายุ: %d\n", b.character.Age)
	fmt.Fprintf(sb, "- ทักษะ: %s\n", formatAttributes(b.character.Skills))
	fmt.Fprintf(sb, "- ความสัมพันธ์: %s\n", formatAttributes(b.character.Relationships))
}

func (b *Builder) writeState(sb *strings.Builder) {
	s := b.state
	sb.WriteString("สถานะปัจจุบัน:\n")
	fmt.Fprintf(sb, "- วันที่: %d เวลา %s\n", s.Day, s.ClockString())
	fmt.Fprintf(sb, "- พลังงาน: %d/%d\n", s.Energy, state.MaxVital)
	fmt.Fprintf(sb, "- ความอิ่ม: %d/%d\n", s.Hunger, state.MaxVital)
	fmt.Fprintf(sb, "- อารมณ์: %s\n", s.Mood)
	fmt.Fprintf(sb, "- เงิน: %d บาท\n", s.Money)
	fmt.Fprintf(sb, "- สถานที่: %s\n", s.Location)
	switch {
	case action.IsSentinel(s.LastAction):
		fmt.Fprintf(sb, "- การกระทำก่อนหน้า: %s (ทำซ้ำหลายครั้ง)\n", action.Display(s.LastAction))
	case s.LastAction != "":
		fmt.Fprintf(sb, "- การกระทำก่อนหน้า: %s\n", s.LastAction)
	}
}

// writeHistory writes the windowed, timestamp-free history. Canned repeat
// narrations are left out since they carry no story.
func (b *Builder) writeHistory(sb *strings.Builder) {
	history := b.history
	if b.historyLimit >= 0 && len(history) > b.historyLimit {
		history = history[len(history)-b.historyLimit:]
	}
	sb.WriteString("ประวัติการสนทนาล่าสุด:\n")
	if len(history) == 0 {
		sb.WriteString("-\n")
		return
	}
	history = textfilter.SanitizeHistory(history)
	for i, h := range history {
		if i > 0 && h.Speaker == chat.SpeakerWorld && history[i-1].Speaker == chat.SpeakerUser &&
			IsRepeatNarration(h.Text, history[i-1].Text) {
			continue
		}
		speaker := "โลก"
		if h.Speaker == chat.SpeakerUser {
			speaker = "ผู้เล่น"
		}
		fmt.Fprintf(sb, "%s: %s\n", speaker, h.Text)
	}
}

package textfilter

import (
	"regexp"
	"strings"

	"github.com/jwebster45206/lifesim-engine/pkg/chat"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
)

// DefaultChoices are offered when a narration carries no usable choice block.
var DefaultChoices = state.ChoicePair{"มองไปรอบ ๆ", "พักผ่อนสักครู่"}

var (
	// D/M/YYYY H:MM:SS, optionally with a comma between date and time
	timestampPattern = regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{4},?\s*\d{1,2}:\d{2}:\d{2}`)
	extraSpace       = regexp.MustCompile(`[ \t]{2,}`)

	// the second option marker must stand alone so "2.50" inside an option is kept
	choiceMarker = regexp.MustCompile(`(?i)(?:choices|ตัวเลือก)\s*:`)
	choiceBlock  = regexp.MustCompile(`(?is)^\s*1[.)]\s*(.+?)\s+2[.)]\s+(.+?)\s*$`)
)

// StripTimestamps removes absolute date/time stamps from text so they are not
// echoed back by the generator.
func StripTimestamps(text string) string {
	if !timestampPattern.MatchString(text) {
		return text
	}
	out := timestampPattern.ReplaceAllString(text, "")
	out = extraSpace.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// SanitizeHistory returns a copy of history with timestamps stripped from
// every turn's text.
func SanitizeHistory(history []chat.HistoryTurn) []chat.HistoryTurn {
	out := make([]chat.HistoryTurn, len(history))
	for i, h := range history {
		h.Text = StripTimestamps(h.Text)
		out[i] = h
	}
	return out
}

// ExtractChoices reads the trailing "choices: 1. A 2. B" block of a narration.
// Only the last marker is considered and the block must run to the end of the
// text. When no usable block is found the default pair is returned.
func ExtractChoices(text string) state.ChoicePair {
	markers := choiceMarker.FindAllStringIndex(text, -1)
	if len(markers) == 0 {
		return DefaultChoices
	}
	tail := text[markers[len(markers)-1][1]:]
	m := choiceBlock.FindStringSubmatch(tail)
	if m == nil {
		return DefaultChoices
	}
	first, second := cleanOption(m[1]), cleanOption(m[2])
	if first == "" || second == "" {
		return DefaultChoices
	}
	return state.ChoicePair{first, second}
}

// StripChoices returns the narration without its trailing choice block.
func StripChoices(text string) string {
	markers := choiceMarker.FindAllStringIndex(text, -1)
	if len(markers) == 0 {
		return strings.TrimSpace(text)
	}
	last := markers[len(markers)-1]
	if !choiceBlock.MatchString(text[last[1]:]) {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:last[0]])
}

func cleanOption(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"*`)
	return strings.TrimSpace(s)
}

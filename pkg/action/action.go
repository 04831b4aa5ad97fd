// Package action turns raw player input into the canonical action string the
// rest of the turn pipeline works with, and detects repeated submissions.
package action

import (
	"strings"

	"github.com/jwebster45206/lifesim-engine/pkg/state"
	"golang.org/x/text/unicode/norm"
)

// repeatPrefix marks a lastAction that was already resolved by the repeat
// fallback. It contains a NUL byte so it can never collide with typed input.
const repeatPrefix = "\x00repeat:"

// Normalize resolves raw input into a canonical action. The input is trimmed
// and NFC-normalized; a bare "1" or "2" selects the matching pending choice
// when both choices are present.
func Normalize(raw string, pending *state.ChoicePair) string {
	canonical := norm.NFC.String(strings.TrimSpace(raw))
	if !pending.Valid() {
		return canonical
	}
	switch canonical {
	case "1":
		return pending[0]
	case "2":
		return pending[1]
	}
	return canonical
}

// IsRepeat reports whether canonical repeats the previously recorded action,
// either directly or through the sentinel written by an earlier repeat.
// An empty action is never a repeat.
func IsRepeat(canonical, lastAction string) bool {
	if canonical == "" {
		return false
	}
	return lastAction == canonical || lastAction == RepeatSentinel(canonical)
}

// RepeatSentinel is the lastAction recorded after a repeat fallback.
func RepeatSentinel(canonical string) string {
	return repeatPrefix + canonical
}

// IsSentinel reports whether lastAction was written by a repeat fallback.
func IsSentinel(lastAction string) bool {
	return strings.HasPrefix(lastAction, repeatPrefix)
}

// Display strips the sentinel marker so the recorded action can be shown.
func Display(lastAction string) string {
	return strings.TrimPrefix(lastAction, repeatPrefix)
}

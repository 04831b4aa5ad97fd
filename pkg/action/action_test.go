package action

import (
	"testing"

	"github.com/jwebster45206/lifesim-engine/pkg/state"
)

func TestNormalize(t *testing.T) {
	pending := &state.ChoicePair{"ไปตลาด", "อยู่บ้าน"}

	tests := []struct {
		name     string
		raw      string
		pending  *state.ChoicePair
		expected string
	}{
		{"first choice", "1", pending, "ไปตลาด"},
		{"second choice with spaces", "  2 ", pending, "อยู่บ้าน"},
		{"numeric without pending", "1", nil, "1"},
		{"numeric with partial pending", "2", &state.ChoicePair{"ไปตลาด", ""}, "2"},
		{"other number passes through", "3", pending, "3"},
		{"free text is trimmed", "  เล่นกีตาร์  ", pending, "เล่นกีตาร์"},
		{"empty input", "   ", pending, ""},
		// decomposed e + combining acute becomes the precomposed form
		{"nfc", "cafe\u0301", nil, "caf\u00e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.raw, tt.pending)
			if got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	pending := &state.ChoicePair{"ไปตลาด", "อยู่บ้าน"}
	inputs := []string{"ทำอาหารเย็น", "  นอน", "talk to Mali", "café", "12"}

	for _, in := range inputs {
		once := Normalize(in, pending)
		twice := Normalize(once, pending)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestIsRepeat(t *testing.T) {
	tests := []struct {
		name       string
		canonical  string
		lastAction string
		expected   bool
	}{
		{"same action", "นอน", "นอน", true},
		{"after sentinel", "นอน", RepeatSentinel("นอน"), true},
		{"different action", "วิ่ง", "นอน", false},
		{"sentinel for another action", "วิ่ง", RepeatSentinel("นอน"), false},
		{"empty action", "", "", false},
		{"first turn", "นอน", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRepeat(tt.canonical, tt.lastAction); got != tt.expected {
				t.Errorf("IsRepeat(%q, %q) = %v, want %v", tt.canonical, tt.lastAction, got, tt.expected)
			}
		})
	}
}

func TestRepeatSentinel(t *testing.T) {
	s := RepeatSentinel("กิน")
	if s == "กิน" {
		t.Fatal("sentinel must differ from the action")
	}
	if !IsSentinel(s) {
		t.Error("IsSentinel should recognise the sentinel")
	}
	if IsSentinel("กิน") {
		t.Error("plain actions are not sentinels")
	}
	if Display(s) != "กิน" {
		t.Errorf("Display(%q) = %q", s, Display(s))
	}
}

package textfilter

import (
	"testing"

	"github.com/jwebster45206/lifesim-engine/pkg/chat"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
)

func TestStripTimestamps(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "timestamp with comma",
			input:    "14/3/2024, 10:15:42 ฉันไปตลาด",
			expected: "ฉันไปตลาด",
		},
		{
			name:     "timestamp without comma",
			input:    "ออกไปวิ่ง 1/12/2023 7:05:00 ตอนเช้า",
			expected: "ออกไปวิ่ง ตอนเช้า",
		},
		{
			name:     "no timestamp",
			input:    "เล่นกีตาร์",
			expected: "เล่นกีตาร์",
		},
		{
			name:     "date alone is kept",
			input:    "วันที่ 1/1/2024 เป็นวันหยุด",
			expected: "วันที่ 1/1/2024 เป็นวันหยุด",
		},
		{
			name:     "empty",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StripTimestamps(tt.input)
			if got != tt.expected {
				t.Errorf("StripTimestamps(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSanitizeHistory(t *testing.T) {
	history := []chat.HistoryTurn{
		{Speaker: chat.SpeakerUser, Text: "2/2/2024 09:00:00 กินข้าว"},
		{Speaker: chat.SpeakerWorld, Text: "อร่อยมาก"},
	}

	got := SanitizeHistory(history)

	if got[0].Text != "กินข้าว" {
		t.Errorf("Expected timestamp stripped, got %q", got[0].Text)
	}
	if got[1].Text != "อร่อยมาก" {
		t.Errorf("Expected clean turn unchanged, got %q", got[1].Text)
	}
	if history[0].Text != "2/2/2024 09:00:00 กินข้าว" {
		t.Error("Input history should not be modified")
	}
}

func TestExtractChoices(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected state.ChoicePair
	}{
		{
			name:     "simple block",
			input:    "You feel calm. choices: 1. A 2. B",
			expected: state.ChoicePair{"A", "B"},
		},
		{
			name:     "multi-line block",
			input:    "คุณรู้สึกอิ่ม\nchoices:\n1. ไปเดินเล่น\n2. นอนพัก\n",
			expected: state.ChoicePair{"ไปเดินเล่น", "นอนพัก"},
		},
		{
			name:     "thai marker",
			input:    "ฝนตก ตัวเลือก: 1) อยู่บ้าน 2) กางร่มออกไป",
			expected: state.ChoicePair{"อยู่บ้าน", "กางร่มออกไป"},
		},
		{
			name:     "uppercase marker and quotes",
			input:    "Done.\nChoices: 1. \"Call Mali\" 2. **Read a book**",
			expected: state.ChoicePair{"Call Mali", "Read a book"},
		},
		{
			name:     "last marker wins",
			input:    "choices: 1. old 2. older\nMore story. choices: 1. new 2. newer",
			expected: state.ChoicePair{"new", "newer"},
		},
		{
			name:     "number inside first option",
			input:    "choices: 1. จ่าย 2.50 บาท 2. เดินออกไป",
			expected: state.ChoicePair{"จ่าย 2.50 บาท", "เดินออกไป"},
		},
		{
			name:     "number inside second option",
			input:    "ตัวเลือก:\n1. วิ่งต่อ\n2. เดินอีก 2.5 กิโล",
			expected: state.ChoicePair{"วิ่งต่อ", "เดินอีก 2.5 กิโล"},
		},
		{
			name:     "no marker",
			input:    "The day ends quietly.",
			expected: DefaultChoices,
		},
		{
			name:     "marker with one option",
			input:    "choices: 1. only one",
			expected: DefaultChoices,
		},
		{
			name:     "empty",
			input:    "",
			expected: DefaultChoices,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractChoices(tt.input)
			if got != tt.expected {
				t.Errorf("ExtractChoices(%q) = %q, want %q", tt.input, got, tt.expected)
			}
			if got[0] == "" || got[1] == "" {
				t.Error("ExtractChoices must always return two non-empty options")
			}
		})
	}
}

func TestStripChoices(t *testing.T) {
	got := StripChoices("คุณรู้สึกดี\nchoices: 1. A 2. B")
	if got != "คุณรู้สึกดี" {
		t.Errorf("Expected choice block removed, got %q", got)
	}

	got = StripChoices("no block here ")
	if got != "no block here" {
		t.Errorf("Expected text unchanged, got %q", got)
	}
}

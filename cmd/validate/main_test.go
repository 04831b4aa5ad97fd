package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTuningValidator(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantError string
	}{
		{
			name: "full file",
			content: `time_step_minutes: {min: 15, max: 60}
energy_decay: {min: 5, max: 14}
hunger_decay: {min: 10, max: 24}
max_output_tokens: 500
history_window: 4
`,
		},
		{
			name:    "partial file keeps defaults",
			content: "history_window: 6\n",
		},
		{
			name:    "empty file",
			content: "",
		},
		{
			name:      "unknown key",
			content:   "turn_minutes: 30\n",
			wantError: "strict YAML",
		},
		{
			name:      "inverted range",
			content:   "energy_decay: {min: 20, max: 5}\n",
			wantError: "energy_decay",
		},
		{
			name:      "zero minute turns",
			content:   "time_step_minutes: {min: 0, max: 10}\n",
			wantError: "time_step_minutes",
		},
		{
			name:      "oversized history window",
			content:   "history_window: 500\n",
			wantError: "history_window",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tuning.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))

			v := &TuningValidator{}
			err := v.validateFile(path)
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestTuningValidator_Extension(t *testing.T) {
	v := &TuningValidator{}
	err := v.validateFile("tuning.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "extension")
}

func TestTuningValidator_BundledDefaults(t *testing.T) {
	v := &TuningValidator{}
	assert.NoError(t, v.validateFile(filepath.Join("..", "..", "internal", "config", "tuning.yaml")))
}

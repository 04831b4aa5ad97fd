package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jwebster45206/lifesim-engine/pkg/sim"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, StoreDriverSQLite, cfg.StoreDriver)
	assert.Equal(t, ProviderGroq, cfg.LLMProvider)
	assert.Equal(t, 30*time.Second, cfg.LLMTimeout)
	assert.Equal(t, time.Duration(0), cfg.StateTTL)
	assert.Equal(t, uint64(0), cfg.SimSeed)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/lifesim")
	t.Setenv("LLM_PROVIDER", "none")
	t.Setenv("LLM_TIMEOUT", "5s")
	t.Setenv("STATE_TTL", "24h")
	t.Setenv("SIM_SEED", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, ProviderNone, cfg.LLMProvider)
	assert.Equal(t, 5*time.Second, cfg.LLMTimeout)
	assert.Equal(t, 24*time.Hour, cfg.StateTTL)
	assert.Equal(t, uint64(42), cfg.SimSeed)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing groq key", map[string]string{"LLM_PROVIDER": "groq"}},
		{"missing anthropic key", map[string]string{"LLM_PROVIDER": "anthropic"}},
		{"missing gemini key", map[string]string{"LLM_PROVIDER": "gemini"}},
		{"unknown provider", map[string]string{"LLM_PROVIDER": "ollama"}},
		{"postgres without url", map[string]string{"LLM_PROVIDER": "none", "STORE_DRIVER": "postgres"}},
		{"unknown store", map[string]string{"LLM_PROVIDER": "none", "STORE_DRIVER": "mongo"}},
		{"bad timeout", map[string]string{"LLM_PROVIDER": "none", "LLM_TIMEOUT": "soon"}},
		{"bad seed", map[string]string{"LLM_PROVIDER": "none", "SIM_SEED": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GROQ_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, parseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("verbose"))
}

func TestLoadTuning(t *testing.T) {
	cfg := &Config{}
	tuning, err := cfg.LoadTuning()
	require.NoError(t, err)
	assert.Equal(t, sim.DefaultTuning(), tuning)

	path := filepath.Join(t.TempDir(), "tuning.yaml")
	require.NoError(t, os.WriteFile(path, []byte("history_window: 6\n"), 0o644))
	cfg.TuningFile = path

	tuning, err = cfg.LoadTuning()
	require.NoError(t, err)
	assert.Equal(t, 6, tuning.HistoryWindow)
	assert.Equal(t, 500, tuning.MaxOutputTokens)

	cfg.TuningFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.LoadTuning()
	assert.Error(t, err)
}

package handlers

import (
	"io"
	"log/slog"
	"testing"

	"github.com/jwebster45206/lifesim-engine/internal/engine"
	"github.com/jwebster45206/lifesim-engine/internal/services"
	"github.com/jwebster45206/lifesim-engine/pkg/sim"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
	"github.com/jwebster45206/lifesim-engine/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testEnv struct {
	store     *storage.MockCharacterStore
	cache     *storage.MockStateCache
	generator *services.MockGenerator
	character *state.Character
	processor *engine.TurnProcessor
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:     storage.NewMockCharacterStore(),
		cache:     storage.NewMockStateCache(),
		generator: services.NewMockGenerator(),
		character: state.NewCharacter("มะลิ", 19),
	}
	env.store.AddCharacter(env.character)
	env.processor = engine.NewTurnProcessor(env.store, env.cache, env.generator,
		sim.NewRand(7), sim.DefaultTuning(), testLogger())
	return env
}

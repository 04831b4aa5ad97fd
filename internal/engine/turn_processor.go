package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/lifesim-engine/internal/logger"
	"github.com/jwebster45206/lifesim-engine/internal/services"
	"github.com/jwebster45206/lifesim-engine/pkg/action"
	"github.com/jwebster45206/lifesim-engine/pkg/chat"
	"github.com/jwebster45206/lifesim-engine/pkg/effects"
	"github.com/jwebster45206/lifesim-engine/pkg/prompts"
	"github.com/jwebster45206/lifesim-engine/pkg/sim"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
	"github.com/jwebster45206/lifesim-engine/pkg/storage"
	"github.com/jwebster45206/lifesim-engine/pkg/textfilter"
)

const (
	DefaultGeneratorTimeout = 30 * time.Second
	persistTimeout          = 10 * time.Second
)

// ErrCharacterNotFound is returned when a turn names an unknown character.
var ErrCharacterNotFound = errors.New("character not found")

// errNoGenerator stands in for a generator failure when none is configured.
var errNoGenerator = errors.New("no generator configured")

// Outcome tells which narration path a turn took.
type Outcome string

const (
	OutcomeGenerated Outcome = "generated"
	OutcomeFallback  Outcome = "fallback"
	OutcomeRepeat    Outcome = "repeat"
	OutcomeIdle      Outcome = "idle"
)

// TurnProcessor resolves a single player action into narration and a new
// simulation state, and persists the result.
type TurnProcessor struct {
	characters storage.CharacterStore
	cache      storage.StateCache
	generator  services.Generator
	rng        sim.Rand
	simulator  *sim.Simulator
	tuning     sim.Tuning
	timeout    time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes a TurnProcessor.
type Option func(*TurnProcessor)

// WithGeneratorTimeout bounds each generator call.
func WithGeneratorTimeout(d time.Duration) Option {
	return func(p *TurnProcessor) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// WithClock replaces the time source used for state timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *TurnProcessor) { p.now = now }
}

// NewTurnProcessor creates a turn processor. generator may be nil, in which
// case every turn uses the local fallback narration.
func NewTurnProcessor(
	characters storage.CharacterStore,
	cache storage.StateCache,
	generator services.Generator,
	rng sim.Rand,
	tuning sim.Tuning,
	log *slog.Logger,
	opts ...Option,
) *TurnProcessor {
	p := &TurnProcessor{
		characters: characters,
		cache:      cache,
		generator:  generator,
		rng:        rng,
		simulator:  sim.New(rng, tuning),
		tuning:     tuning,
		timeout:    DefaultGeneratorTimeout,
		logger:     log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// turnInput is everything loaded before the pipeline runs. character is nil
// when the stored record could not be loaded; unstored is set when the store
// has no record and the request summary stands in for it.
type turnInput struct {
	character *state.Character
	unstored  bool
	summary   state.CharacterSummary
	prior     *state.SimulationState
	history   []chat.HistoryTurn
}

// ProcessTurn runs the full pipeline for one action. Only an invalid request,
// or an unknown character with no summary in the request, is an error.
// Generator and persistence failures are logged and the turn still completes.
func (p *TurnProcessor) ProcessTurn(ctx context.Context, req chat.TurnRequest) (*chat.TurnResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	log := logger.WithCharacter(p.logger, req.CharacterID.String())

	in, err := p.load(ctx, log, req)
	if err != nil {
		return nil, err
	}

	canonical := action.Normalize(req.Action, in.prior.PendingChoices)
	baseline, step := p.simulator.Advance(in.prior)

	narration, outcome := "", OutcomeGenerated
	lastAction := canonical
	choices := in.prior.PendingChoices

	switch {
	case canonical == "":
		narration, outcome = prompts.IdleNarration, OutcomeIdle
		lastAction = in.prior.LastAction
	case action.IsRepeat(canonical, in.prior.LastAction):
		narration = prompts.RepeatNarration(p.rng.IntN(prompts.RepeatNarrationCount()), canonical)
		outcome = OutcomeRepeat
		lastAction = action.RepeatSentinel(canonical)
	default:
		narration, outcome = p.narrate(ctx, log, canonical, in)
		extracted := textfilter.ExtractChoices(narration)
		choices = &extracted
	}

	res := effects.Classify(canonical, in.prior, baseline)

	next := res.State
	next.LastAction = lastAction
	next.LastResponse = narration
	next.PendingChoices = choices
	next.Timestamp = p.now().UTC()
	next.Normalize()

	log.Debug("Turn resolved",
		"action", canonical,
		"outcome", outcome,
		"minutes", step.Minutes,
		"rules", res.Matched)

	p.persist(ctx, log, req.CharacterID, in, canonical, next, narration, res.Deltas)

	resp := &chat.TurnResponse{
		Narration:          narration,
		State:              next,
		SkillDeltas:        nonNil(res.Deltas.Skills),
		RelationshipDeltas: nonNil(res.Deltas.Relationships),
		Choices:            textfilter.DefaultChoices,
	}
	if choices.Valid() {
		resp.Choices = *choices
	}
	return resp, nil
}

// load gathers the character, prior state and history, preferring what the
// request carries over the stores.
func (p *TurnProcessor) load(ctx context.Context, log *slog.Logger, req chat.TurnRequest) (turnInput, error) {
	var in turnInput

	character, err := p.characters.GetCharacter(ctx, req.CharacterID)
	switch {
	case err != nil:
		log.Error("Failed to load character", "error", err)
	case character == nil:
		if req.Character == nil {
			return in, fmt.Errorf("%w: %s", ErrCharacterNotFound, req.CharacterID)
		}
		log.Warn("Character not stored, resolving turn from request summary")
		in.unstored = true
	default:
		in.character = character
	}

	switch {
	case req.Character != nil:
		in.summary = *req.Character
	case in.character != nil:
		in.summary = in.character.Summary()
	}

	if req.State != nil {
		in.prior = req.State.Copy().Normalize()
	} else {
		cached, err := p.cache.Get(ctx, req.CharacterID)
		if err != nil {
			log.Error("Failed to load cached state, using defaults", "error", err)
		}
		in.prior = cached
	}
	if in.prior == nil {
		in.prior = state.NewSimulationState()
	}

	if req.History != nil {
		in.history = req.History
	} else {
		history, err := p.characters.ListChatTurns(ctx, req.CharacterID, p.tuning.HistoryWindow)
		if err != nil {
			log.Error("Failed to load chat history", "error", err)
		}
		in.history = history
	}

	return in, nil
}

// narrate asks the generator for a narration, falling back to a local one on
// any failure. There is no retry.
func (p *TurnProcessor) narrate(ctx context.Context, log *slog.Logger, canonical string, in turnInput) (string, Outcome) {
	prompt, err := prompts.New().
		WithCharacter(&in.summary).
		WithState(in.prior).
		WithHistory(in.history).
		WithHistoryLimit(p.tuning.HistoryWindow).
		WithAction(canonical).
		Build()
	if err != nil {
		log.Error("Failed to build prompt", "error", err)
		return prompts.GeneratorFallback(canonical), OutcomeFallback
	}

	if p.generator == nil {
		log.Debug("Using fallback narration", "reason", errNoGenerator)
		return prompts.GeneratorFallback(canonical), OutcomeFallback
	}

	genCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	text, err := p.generator.Generate(genCtx, prompt, p.tuning.MaxOutputTokens)
	if err == nil && text == "" {
		err = fmt.Errorf("%w: empty narration", services.ErrService)
	}
	if err != nil {
		log.Warn("Generator failed, using fallback narration",
			"error", err,
			"timeout", errors.Is(err, services.ErrTimeout),
			"auth", errors.Is(err, services.ErrAuth))
		return prompts.GeneratorFallback(canonical), OutcomeFallback
	}

	log.Debug("Generator responded", "duration", time.Since(start))
	return text, OutcomeGenerated
}

// persist writes the turn's results. Writes are best effort and use a context
// detached from the request so a client disconnect does not cancel them.
// Deltas are only folded into a record that was actually loaded, so a failed
// read never overwrites stored skills or relationships.
func (p *TurnProcessor) persist(
	ctx context.Context,
	log *slog.Logger,
	id uuid.UUID,
	in turnInput,
	canonical string,
	next *state.SimulationState,
	narration string,
	deltas state.TurnDelta,
) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()

	switch {
	case deltas.IsEmpty():
	case in.character == nil:
		log.Warn("Skipping character update, stored record not loaded",
			"skills", len(deltas.Skills),
			"relationships", len(deltas.Relationships))
	default:
		skills := state.ApplySkillDeltas(in.character.Skills, deltas.Skills)
		relationships := state.ApplyRelationshipDeltas(in.character.Relationships, deltas.Relationships)
		if err := p.characters.UpdateCharacter(ctx, id, skills, relationships); err != nil {
			log.Error("Failed to update character", "error", err)
		}
	}

	if err := p.cache.Set(ctx, id, next); err != nil {
		log.Error("Failed to save state", "error", err)
	}

	if in.unstored {
		return
	}
	if canonical != "" {
		if err := p.characters.AppendChatTurn(ctx, id, chat.SpeakerUser, canonical); err != nil {
			log.Error("Failed to append player turn", "error", err)
		}
	}
	if err := p.characters.AppendChatTurn(ctx, id, chat.SpeakerWorld, narration); err != nil {
		log.Error("Failed to append world turn", "error", err)
	}
}

func nonNil(deltas []state.Delta) []state.Delta {
	if deltas == nil {
		return []state.Delta{}
	}
	return deltas
}

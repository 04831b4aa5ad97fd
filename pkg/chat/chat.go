package chat

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
)

// ErrInvalidTurnRequest is returned when a turn cannot be processed at all.
var ErrInvalidTurnRequest = errors.New("invalid turn request")

// Speaker identifies who produced a turn in the chat history.
type Speaker string

const (
	SpeakerUser  Speaker = "user"  // the player
	SpeakerWorld Speaker = "world" // the narrator
)

// Valid reports whether the speaker is one of the known values.
func (s Speaker) Valid() bool {
	return s == SpeakerUser || s == SpeakerWorld
}

// HistoryTurn is a single line of the conversation between player and world.
type HistoryTurn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp,omitzero"`
}

// TurnRequest is a single player action submitted to the engine.
// Character, State and History are optional: when omitted the engine loads
// them from its stores.
type TurnRequest struct {
	CharacterID uuid.UUID               `json:"character_id"`
	Action      string                  `json:"action"`
	Character   *state.CharacterSummary `json:"character,omitempty"`
	State       *state.SimulationState  `json:"state,omitempty"`
	History     []HistoryTurn           `json:"history,omitempty"`
}

// Validate checks the request can be resolved. An empty action is allowed
// and resolves as a no-op turn.
func (tr *TurnRequest) Validate() error {
	if tr.CharacterID == uuid.Nil {
		return fmt.Errorf("%w: character_id is required", ErrInvalidTurnRequest)
	}
	for i, h := range tr.History {
		if !h.Speaker.Valid() {
			return fmt.Errorf("%w: history[%d] has unknown speaker %q", ErrInvalidTurnRequest, i, h.Speaker)
		}
	}
	return nil
}

// TurnResponse is the resolved outcome of a turn.
type TurnResponse struct {
	Narration          string                 `json:"narration"`
	State              *state.SimulationState `json:"state"`
	SkillDeltas        []state.Delta          `json:"skill_deltas"`
	RelationshipDeltas []state.Delta          `json:"relationship_deltas"`
	Choices            state.ChoicePair       `json:"choices"`
}

// HistoryResponse is returned by the character history endpoint.
type HistoryResponse struct {
	Character   *state.Character       `json:"character"`
	ChatHistory []HistoryTurn          `json:"chat_history"`
	GameState   *state.SimulationState `json:"game_state"`
}

// ErrorResponse is the JSON body of every failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

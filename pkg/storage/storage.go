package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jwebster45206/lifesim-engine/pkg/chat"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
)

// ErrNotFound is returned when an update or delete targets a missing record.
var ErrNotFound = errors.New("not found")

// CharacterStore is the durable record store for characters and their chat history.
type CharacterStore interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Character records
	CreateCharacter(ctx context.Context, c *state.Character) (*state.Character, error)
	// GetCharacter returns nil, nil when the character does not exist.
	GetCharacter(ctx context.Context, id uuid.UUID) (*state.Character, error)
	// GetCharactersByIDs returns the known characters among ids, newest first.
	GetCharactersByIDs(ctx context.Context, ids []uuid.UUID) ([]state.Character, error)
	UpdateCharacter(ctx context.Context, id uuid.UUID, skills, relationships map[string]int) error
	// DeleteCharacter removes the character and its chat history.
	DeleteCharacter(ctx context.Context, id uuid.UUID) error

	// Chat history
	AppendChatTurn(ctx context.Context, id uuid.UUID, speaker chat.Speaker, text string) error
	// ListChatTurns returns up to limit of the most recent turns, oldest first.
	// A limit of zero or less returns every turn.
	ListChatTurns(ctx context.Context, id uuid.UUID, limit int) ([]chat.HistoryTurn, error)
}

// StateCache holds the current simulation state of each character.
type StateCache interface {
	Ping(ctx context.Context) error
	Close() error

	// Get returns nil, nil when nothing is cached for id.
	Get(ctx context.Context, id uuid.UUID) (*state.SimulationState, error)
	Set(ctx context.Context, id uuid.UUID, s *state.SimulationState) error
	Delete(ctx context.Context, id uuid.UUID) error
}

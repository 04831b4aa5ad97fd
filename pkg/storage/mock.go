package storage

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/lifesim-engine/pkg/chat"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
)

// MockCharacterStore is an in-memory CharacterStore for testing.
type MockCharacterStore struct {
	mu         sync.RWMutex
	characters map[uuid.UUID]*state.Character
	turns      map[uuid.UUID][]chat.HistoryTurn
	pingError  error
	readError  error
	writeError error

	UpdateCalls int
	AppendCalls int
}

// Ensure MockCharacterStore implements CharacterStore interface
var _ CharacterStore = (*MockCharacterStore)(nil)

// NewMockCharacterStore creates a new mock character store
func NewMockCharacterStore() *MockCharacterStore {
	return &MockCharacterStore{
		characters: make(map[uuid.UUID]*state.Character),
		turns:      make(map[uuid.UUID][]chat.HistoryTurn),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockCharacterStore) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetReadError makes GetCharacter fail with err
func (m *MockCharacterStore) SetReadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.readError = err
}

// Character returns a copy of the stored record, or nil
func (m *MockCharacterStore) Character(id uuid.UUID) *state.Character {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.characters[id]
	if !ok {
		return nil
	}
	return cloneCharacter(c)
}

// SetWriteError makes every update, append and delete fail with err
func (m *MockCharacterStore) SetWriteError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeError = err
}

func (m *MockCharacterStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockCharacterStore) Close() error {
	return nil
}

// AddCharacter seeds a character directly
func (m *MockCharacterStore) AddCharacter(c *state.Character) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.characters[c.ID] = cloneCharacter(c)
}

func (m *MockCharacterStore) CreateCharacter(ctx context.Context, c *state.Character) (*state.Character, error) {
	if c == nil {
		return nil, errors.New("character cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeError != nil {
		return nil, m.writeError
	}
	stored := cloneCharacter(c)
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	m.characters[stored.ID] = stored
	return cloneCharacter(stored), nil
}

func (m *MockCharacterStore) GetCharacter(ctx context.Context, id uuid.UUID) (*state.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.readError != nil {
		return nil, m.readError
	}
	c, ok := m.characters[id]
	if !ok {
		return nil, nil
	}
	return cloneCharacter(c), nil
}

func (m *MockCharacterStore) GetCharactersByIDs(ctx context.Context, ids []uuid.UUID) ([]state.Character, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]state.Character, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		c, ok := m.characters[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, *cloneCharacter(c))
	}
	slices.SortStableFunc(out, func(a, b state.Character) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out, nil
}

func (m *MockCharacterStore) UpdateCharacter(ctx context.Context, id uuid.UUID, skills, relationships map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++
	if m.writeError != nil {
		return m.writeError
	}
	c, ok := m.characters[id]
	if !ok {
		return ErrNotFound
	}
	c.Skills = maps.Clone(skills)
	c.Relationships = maps.Clone(relationships)
	return nil
}

func (m *MockCharacterStore) DeleteCharacter(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeError != nil {
		return m.writeError
	}
	if _, ok := m.characters[id]; !ok {
		return ErrNotFound
	}
	delete(m.characters, id)
	delete(m.turns, id)
	return nil
}

func (m *MockCharacterStore) AppendChatTurn(ctx context.Context, id uuid.UUID, speaker chat.Speaker, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AppendCalls++
	if m.writeError != nil {
		return m.writeError
	}
	m.turns[id] = append(m.turns[id], chat.HistoryTurn{Speaker: speaker, Text: text, Timestamp: time.Now()})
	return nil
}

func (m *MockCharacterStore) ListChatTurns(ctx context.Context, id uuid.UUID, limit int) ([]chat.HistoryTurn, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	turns := m.turns[id]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return slices.Clone(turns), nil
}

func cloneCharacter(c *state.Character) *state.Character {
	cp := *c
	cp.Skills = maps.Clone(c.Skills)
	if cp.Skills == nil {
		cp.Skills = make(map[string]int)
	}
	cp.Relationships = maps.Clone(c.Relationships)
	if cp.Relationships == nil {
		cp.Relationships = make(map[string]int)
	}
	return &cp
}

// MockStateCache is an in-memory StateCache for testing.
type MockStateCache struct {
	mu        sync.RWMutex
	states    map[uuid.UUID]*state.SimulationState
	pingError error
	getError  error
	setError  error

	SetCalls int
}

// Ensure MockStateCache implements StateCache interface
var _ StateCache = (*MockStateCache)(nil)

// NewMockStateCache creates a new mock state cache
func NewMockStateCache() *MockStateCache {
	return &MockStateCache{
		states: make(map[uuid.UUID]*state.SimulationState),
	}
}

// SetPingError configures the mock to fail on ping with the given error
func (m *MockStateCache) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// SetGetError makes Get fail with err
func (m *MockStateCache) SetGetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getError = err
}

// SetSetError makes Set fail with err
func (m *MockStateCache) SetSetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setError = err
}

func (m *MockStateCache) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

func (m *MockStateCache) Close() error {
	return nil
}

func (m *MockStateCache) Get(ctx context.Context, id uuid.UUID) (*state.SimulationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.getError != nil {
		return nil, m.getError
	}
	s, ok := m.states[id]
	if !ok {
		return nil, nil
	}
	return s.Copy(), nil
}

func (m *MockStateCache) Set(ctx context.Context, id uuid.UUID, s *state.SimulationState) error {
	if s == nil {
		return errors.New("state cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SetCalls++
	if m.setError != nil {
		return m.setError
	}
	m.states[id] = s.Copy()
	return nil
}

func (m *MockStateCache) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.states, id)
	return nil
}

package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"maps"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/jwebster45206/lifesim-engine/internal/middleware"
	"github.com/jwebster45206/lifesim-engine/pkg/chat"
	"github.com/jwebster45206/lifesim-engine/pkg/prompts"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
	"github.com/jwebster45206/lifesim-engine/pkg/storage"
)

const (
	maxBackgroundRunes = 500
	maxNameRunes       = 100
)

// CreateCharacterRequest is the body of POST /v1/characters.
type CreateCharacterRequest struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender,omitempty"`
	Background string `json:"background,omitempty"`
}

// LookupRequest is the body of POST /v1/characters/lookup.
type LookupRequest struct {
	CharacterIDs []string `json:"character_ids"`
}

type CharacterHandler struct {
	store  storage.CharacterStore
	cache  storage.StateCache
	logger *slog.Logger
}

func NewCharacterHandler(store storage.CharacterStore, cache storage.StateCache, logger *slog.Logger) *CharacterHandler {
	return &CharacterHandler{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// ServeHTTP handles HTTP requests for character operations
// Routes:
// POST /v1/characters              - Create a character
// POST /v1/characters/lookup       - List characters by id
// GET /v1/characters/{id}          - Read a character
// DELETE /v1/characters/{id}       - Delete a character and its state
// GET /v1/characters/{id}/history  - Character, chat history and state
func (h *CharacterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := middleware.LoggerFrom(r.Context(), h.logger)

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/characters"), "/")
	segments := strings.Split(path, "/")

	switch {
	case path == "":
		if r.Method != http.MethodPost {
			writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleCreate(w, r, log)
		return

	case path == "lookup":
		if r.Method != http.MethodPost {
			writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: POST")
			return
		}
		h.handleLookup(w, r, log)
		return

	case len(segments) > 2 || (len(segments) == 2 && segments[1] != "history"):
		writeError(w, log, http.StatusNotFound, "Not found")
		return
	}

	id, err := uuid.Parse(segments[0])
	if err != nil {
		log.Warn("Invalid character ID", "id", segments[0], "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid character ID format")
		return
	}

	if len(segments) == 2 {
		if r.Method != http.MethodGet {
			writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET")
			return
		}
		h.handleHistory(w, r, log, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, log, id)
	case http.MethodDelete:
		h.handleDelete(w, r, log, id)
	default:
		log.Warn("Method not allowed for character endpoint", "method", r.Method)
		writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
	}
}

func (h *CharacterHandler) handleCreate(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	var req CreateCharacterRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body. Expected JSON with 'name' and 'age' fields.")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Gender = strings.TrimSpace(req.Gender)
	req.Background = strings.TrimSpace(req.Background)

	switch {
	case req.Name == "":
		writeError(w, log, http.StatusBadRequest, "Name cannot be empty.")
		return
	case utf8.RuneCountInString(req.Name) > maxNameRunes:
		writeError(w, log, http.StatusBadRequest, "Name is too long.")
		return
	case req.Age < 0:
		writeError(w, log, http.StatusBadRequest, "Age cannot be negative.")
		return
	case utf8.RuneCountInString(req.Background) > maxBackgroundRunes:
		writeError(w, log, http.StatusBadRequest, "Background must be at most 500 characters.")
		return
	}

	c := state.NewCharacter(req.Name, req.Age)
	c.Gender = req.Gender
	c.Background = req.Background

	created, err := h.store.CreateCharacter(r.Context(), c)
	if err != nil {
		log.Error("Failed to create character", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to create character")
		return
	}

	log.Info("Character created", "character_id", created.ID)
	writeJSON(w, log, http.StatusCreated, created)
}

func (h *CharacterHandler) handleLookup(w http.ResponseWriter, r *http.Request, log *slog.Logger) {
	var req LookupRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		log.Warn("Invalid request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body. Expected JSON with 'character_ids' field.")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.CharacterIDs))
	for _, raw := range req.CharacterIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			log.Warn("Skipping invalid character ID in lookup", "id", raw)
			continue
		}
		ids = append(ids, id)
	}

	characters := make([]state.Character, 0)
	if len(ids) > 0 {
		found, err := h.store.GetCharactersByIDs(r.Context(), ids)
		if err != nil {
			log.Error("Failed to look up characters", "error", err)
			writeError(w, log, http.StatusInternalServerError, "Failed to look up characters")
			return
		}
		for i := range found {
			characters = append(characters, *visible(&found[i]))
		}
	}

	writeJSON(w, log, http.StatusOK, characters)
}

func (h *CharacterHandler) handleGet(w http.ResponseWriter, r *http.Request, log *slog.Logger, id uuid.UUID) {
	c, err := h.store.GetCharacter(r.Context(), id)
	if err != nil {
		log.Error("Failed to load character", "error", err, "character_id", id)
		writeError(w, log, http.StatusInternalServerError, "Failed to load character")
		return
	}
	if c == nil {
		writeError(w, log, http.StatusNotFound, "Character not found")
		return
	}
	writeJSON(w, log, http.StatusOK, visible(c))
}

func (h *CharacterHandler) handleDelete(w http.ResponseWriter, r *http.Request, log *slog.Logger, id uuid.UUID) {
	if err := h.store.DeleteCharacter(r.Context(), id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, log, http.StatusNotFound, "Character not found")
			return
		}
		log.Error("Failed to delete character", "error", err, "character_id", id)
		writeError(w, log, http.StatusInternalServerError, "Failed to delete character")
		return
	}

	if err := h.cache.Delete(r.Context(), id); err != nil {
		log.Error("Failed to delete cached state", "error", err, "character_id", id)
	}

	log.Info("Character deleted", "character_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CharacterHandler) handleHistory(w http.ResponseWriter, r *http.Request, log *slog.Logger, id uuid.UUID) {
	c, err := h.store.GetCharacter(r.Context(), id)
	if err != nil {
		log.Error("Failed to load character", "error", err, "character_id", id)
		writeError(w, log, http.StatusInternalServerError, "Failed to load character")
		return
	}
	if c == nil {
		writeError(w, log, http.StatusNotFound, "Character not found")
		return
	}

	history, err := h.store.ListChatTurns(r.Context(), id, 0)
	if err != nil {
		log.Error("Failed to load chat history", "error", err, "character_id", id)
		writeError(w, log, http.StatusInternalServerError, "Failed to load chat history")
		return
	}
	if len(history) == 0 {
		history = []chat.HistoryTurn{{
			Speaker:   chat.SpeakerWorld,
			Text:      prompts.OpeningNarration(c.Name),
			Timestamp: c.CreatedAt,
		}}
	}

	gs, err := h.cache.Get(r.Context(), id)
	if err != nil {
		log.Warn("Failed to load cached state, using defaults", "error", err, "character_id", id)
	}
	if gs == nil {
		gs = state.NewSimulationState()
	}

	writeJSON(w, log, http.StatusOK, chat.HistoryResponse{
		Character:   visible(c),
		ChatHistory: history,
		GameState:   gs,
	})
}

// visible returns a copy of c without zero-valued skills and relationships.
func visible(c *state.Character) *state.Character {
	cp := *c
	cp.Skills = maps.Clone(c.Skills)
	cp.Relationships = maps.Clone(c.Relationships)
	if cp.Skills == nil {
		cp.Skills = make(map[string]int)
	}
	if cp.Relationships == nil {
		cp.Relationships = make(map[string]int)
	}
	maps.DeleteFunc(cp.Skills, func(_ string, v int) bool { return v <= 0 })
	maps.DeleteFunc(cp.Relationships, func(_ string, v int) bool { return v <= 0 })
	return &cp
}

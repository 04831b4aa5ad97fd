package handlers

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/jwebster45206/lifesim-engine/internal/engine"
	"github.com/jwebster45206/lifesim-engine/internal/middleware"
	"github.com/jwebster45206/lifesim-engine/pkg/chat"
)

//go:embed schemas/turn_request.schema.json
var turnRequestSchema string

// TurnResolver resolves a single turn. *engine.TurnProcessor implements it.
type TurnResolver interface {
	ProcessTurn(ctx context.Context, req chat.TurnRequest) (*chat.TurnResponse, error)
}

// TurnHandler serves POST /v1/turns.
type TurnHandler struct {
	resolver TurnResolver
	schema   *jsonschema.Schema
	logger   *slog.Logger
}

// NewTurnHandler creates a turn handler. It fails only if the embedded
// request schema does not compile.
func NewTurnHandler(resolver TurnResolver, logger *slog.Logger) (*TurnHandler, error) {
	schema, err := jsonschema.CompileString("turn_request.schema.json", turnRequestSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile turn request schema: %w", err)
	}
	return &TurnHandler{
		resolver: resolver,
		schema:   schema,
		logger:   logger,
	}, nil
}

func (h *TurnHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := middleware.LoggerFrom(r.Context(), h.logger)

	if r.Method != http.MethodPost {
		log.Warn("Method not allowed for turn endpoint", "method", r.Method)
		writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Warn("Failed to read request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Failed to read request body")
		return
	}

	if err := h.validate(body); err != nil {
		log.Warn("Turn request failed validation", "error", err)
		writeError(w, log, http.StatusBadRequest, fmt.Sprintf("Invalid turn request: %v", err))
		return
	}

	var req chat.TurnRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.Warn("Invalid request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body. Expected JSON with 'character_id' and 'action' fields.")
		return
	}

	resp, err := h.resolver.ProcessTurn(r.Context(), req)
	switch {
	case errors.Is(err, chat.ErrInvalidTurnRequest):
		log.Warn("Invalid turn request", "error", err)
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, engine.ErrCharacterNotFound):
		writeError(w, log, http.StatusNotFound, "Character not found")
		return
	case err != nil:
		log.Error("Failed to process turn", "error", err)
		writeError(w, log, http.StatusInternalServerError, "Failed to process turn")
		return
	}

	writeJSON(w, log, http.StatusOK, resp)
}

// validate checks body against the turn request schema.
func (h *TurnHandler) validate(body []byte) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("malformed JSON: %w", err)
	}
	return h.schema.Validate(doc)
}

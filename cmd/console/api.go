package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/jwebster45206/lifesim-engine/pkg/chat"
	"github.com/jwebster45206/lifesim-engine/pkg/state"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

// doJSON sends body (if any) as JSON and decodes a response with the expected
// status into out.
func doJSON(client *http.Client, method, url string, body any, expected int, out any) error {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != expected {
		var errorResp chat.ErrorResponse
		if err := json.Unmarshal(data, &errorResp); err != nil || errorResp.Error == "" {
			return fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(data))
		}
		return fmt.Errorf("%s", errorResp.Error)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// CreateCharacterRequest matches the API request structure
type CreateCharacterRequest struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     string `json:"gender,omitempty"`
	Background string `json:"background,omitempty"`
}

func createCharacter(client *http.Client, baseURL string, req CreateCharacterRequest) (*state.Character, error) {
	var c state.Character
	if err := doJSON(client, http.MethodPost, baseURL+"/v1/characters", req, http.StatusCreated, &c); err != nil {
		return nil, fmt.Errorf("failed to create character: %w", err)
	}
	return &c, nil
}

func lookupCharacters(client *http.Client, baseURL string, ids []uuid.UUID) ([]state.Character, error) {
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	var characters []state.Character
	body := map[string][]string{"character_ids": raw}
	if err := doJSON(client, http.MethodPost, baseURL+"/v1/characters/lookup", body, http.StatusOK, &characters); err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, nil
}

func getCharacter(client *http.Client, baseURL string, id uuid.UUID) (*state.Character, error) {
	var c state.Character
	if err := doJSON(client, http.MethodGet, fmt.Sprintf("%s/v1/characters/%s", baseURL, id), nil, http.StatusOK, &c); err != nil {
		return nil, fmt.Errorf("failed to get character: %w", err)
	}
	return &c, nil
}

func getHistory(client *http.Client, baseURL string, id uuid.UUID) (*chat.HistoryResponse, error) {
	var h chat.HistoryResponse
	if err := doJSON(client, http.MethodGet, fmt.Sprintf("%s/v1/characters/%s/history", baseURL, id), nil, http.StatusOK, &h); err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return &h, nil
}

func sendTurn(client *http.Client, baseURL string, id uuid.UUID, action string) (*chat.TurnResponse, error) {
	req := chat.TurnRequest{CharacterID: id, Action: action}
	var resp chat.TurnResponse
	if err := doJSON(client, http.MethodPost, baseURL+"/v1/turns", req, http.StatusOK, &resp); err != nil {
		return nil, fmt.Errorf("turn failed: %w", err)
	}
	return &resp, nil
}

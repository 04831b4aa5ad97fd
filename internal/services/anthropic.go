package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
	anthropicName    = "anthropic"

	DefaultAnthropicModel       = "claude-3-5-haiku-latest"
	DefaultAnthropicTemperature = 0.7
)

// AnthropicService implements Generator for Anthropic Claude
type AnthropicService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Generator = (*AnthropicService)(nil)

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type AnthropicChatRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature *float64           `json:"temperature,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
	System      string             `json:"system,omitempty"`
}

type AnthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type AnthropicChatResponse struct {
	ID         string                  `json:"id"`
	Type       string                  `json:"type"`
	Role       string                  `json:"role"`
	Content    []AnthropicContentBlock `json:"content"`
	Model      string                  `json:"model"`
	StopReason string                  `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewAnthropicService(apiKey, modelName string, timeout time.Duration, logger *slog.Logger) *AnthropicService {
	if modelName == "" {
		modelName = DefaultAnthropicModel
	}
	return &AnthropicService{
		apiKey:     apiKey,
		modelName:  modelName,
		baseURL:    anthropicBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithBaseURL overrides the API endpoint.
func (a *AnthropicService) WithBaseURL(baseURL string) *AnthropicService {
	a.baseURL = strings.TrimRight(baseURL, "/")
	return a
}

// splitPrompt uses the opening paragraph as the system prompt and the rest as
// the user turn.
func splitPrompt(prompt string) (string, string) {
	system, rest, ok := strings.Cut(prompt, "\n\n")
	if !ok || strings.TrimSpace(rest) == "" {
		return "", prompt
	}
	return system, rest
}

func (a *AnthropicService) Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	system, user := splitPrompt(prompt)
	temperature := DefaultAnthropicTemperature
	reqBody, err := json.Marshal(AnthropicChatRequest{
		Model:       a.modelName,
		MaxTokens:   maxOutputTokens,
		Temperature: &temperature,
		Messages:    []anthropicMessage{{Role: "user", Content: user}},
		System:      system,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/messages", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	// Set required Anthropic headers
	req.Header.Set("x-api-key", a.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return "", transportError(anthropicName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(anthropicName, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(anthropicName, resp.StatusCode, body)
	}

	var anthropicResp AnthropicChatResponse
	if err := json.Unmarshal(body, &anthropicResp); err != nil {
		return "", newGeneratorError(anthropicName, ErrService, fmt.Errorf("failed to parse response: %w", err))
	}
	if anthropicResp.Error != nil {
		return "", newGeneratorError(anthropicName, ErrService, errors.New(anthropicResp.Error.Message))
	}

	var sb strings.Builder
	for _, content := range anthropicResp.Content {
		if content.Type == "text" {
			sb.WriteString(content.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", newGeneratorError(anthropicName, ErrService, errors.New("empty completion"))
	}

	a.logger.Debug("Anthropic completion", "model", anthropicResp.Model,
		"input_tokens", anthropicResp.Usage.InputTokens, "output_tokens", anthropicResp.Usage.OutputTokens)
	return sb.String(), nil
}

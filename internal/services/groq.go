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
	groqBaseURL = "https://api.groq.com/openai/v1"
	groqName    = "groq"

	DefaultGroqModel       = "llama-3.1-8b-instant"
	DefaultGroqTemperature = 0.8
)

// GroqService implements Generator against Groq's OpenAI-compatible API.
type GroqService struct {
	apiKey     string
	modelName  string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Generator = (*GroqService)(nil)

type groqMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GroqChatRequest is the chat completions request body
type GroqChatRequest struct {
	Model       string        `json:"model"`
	Messages    []groqMessage `json:"messages"`
	Temperature float64       `json:"temperature,omitempty"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

// GroqChatResponse is the chat completions response body
type GroqChatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int `json:"index"`
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewGroqService creates a Groq generator. An empty model uses DefaultGroqModel.
func NewGroqService(apiKey, modelName string, timeout time.Duration, logger *slog.Logger) *GroqService {
	if modelName == "" {
		modelName = DefaultGroqModel
	}
	return &GroqService{
		apiKey:     apiKey,
		modelName:  modelName,
		baseURL:    groqBaseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// WithBaseURL points the client at another OpenAI-compatible endpoint.
func (g *GroqService) WithBaseURL(baseURL string) *GroqService {
	g.baseURL = strings.TrimRight(baseURL, "/")
	return g
}

func (g *GroqService) Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	reqBody, err := json.Marshal(GroqChatRequest{
		Model:       g.modelName,
		Messages:    []groqMessage{{Role: "user", Content: prompt}},
		Temperature: DefaultGroqTemperature,
		MaxTokens:   maxOutputTokens,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", transportError(groqName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(groqName, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", statusError(groqName, resp.StatusCode, body)
	}

	var groqResp GroqChatResponse
	if err := json.Unmarshal(body, &groqResp); err != nil {
		return "", newGeneratorError(groqName, ErrService, fmt.Errorf("failed to parse response: %w", err))
	}
	if groqResp.Error != nil {
		return "", newGeneratorError(groqName, ErrService, errors.New(groqResp.Error.Message))
	}
	if len(groqResp.Choices) == 0 || strings.TrimSpace(groqResp.Choices[0].Message.Content) == "" {
		return "", newGeneratorError(groqName, ErrService, errors.New("empty completion"))
	}

	g.logger.Debug("Groq completion", "model", groqResp.Model, "duration", time.Since(start))
	return groqResp.Choices[0].Message.Content, nil
}

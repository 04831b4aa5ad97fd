package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const (
	geminiName         = "gemini"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// GeminiService implements Generator with the Gemini SDK.
type GeminiService struct {
	client    *genai.Client
	modelName string
	logger    *slog.Logger
}

var _ Generator = (*GeminiService)(nil)

// NewGeminiService creates a Gemini generator. Extra client options are
// passed to the SDK after the API key.
func NewGeminiService(ctx context.Context, apiKey, modelName string, logger *slog.Logger, opts ...option.ClientOption) (*GeminiService, error) {
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiService{client: client, modelName: modelName, logger: logger}, nil
}

func (g *GeminiService) Close() error {
	return g.client.Close()
}

func (g *GeminiService) Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	// models carry their own config, so build one per call
	model := g.client.GenerativeModel(g.modelName)
	model.SetMaxOutputTokens(int32(maxOutputTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}

	return geminiText(resp)
}

// geminiText joins the text parts of the first candidate.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", newGeneratorError(geminiName, ErrService, errors.New("no content returned from Gemini"))
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", newGeneratorError(geminiName, ErrService, errors.New("unexpected response type from Gemini"))
	}
	return sb.String(), nil
}

func classifyGeminiError(err error) *GeneratorError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return newGeneratorError(geminiName, ErrAuth, err)
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			return newGeneratorError(geminiName, ErrTimeout, err)
		}
		// invalid keys come back as 400 API_KEY_INVALID
		if apiErr.Code == http.StatusBadRequest && strings.Contains(apiErr.Message, "API key") {
			return newGeneratorError(geminiName, ErrAuth, err)
		}
		return newGeneratorError(geminiName, ErrService, err)
	}
	return transportError(geminiName, err)
}

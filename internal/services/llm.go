package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Generator produces narration text from a single prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error)
}

// Kinds of generator failure. Use errors.Is against a returned error.
var (
	ErrTimeout = errors.New("generator timeout")
	ErrAuth    = errors.New("generator authentication failed")
	ErrService = errors.New("generator service error")
)

// GeneratorError carries the provider and the classified failure kind.
type GeneratorError struct {
	Provider string
	Kind     error
	Err      error
}

func (e *GeneratorError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Provider, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Provider, e.Kind, e.Err)
}

// Is matches the failure kind.
func (e *GeneratorError) Is(target error) bool {
	return target == e.Kind
}

func (e *GeneratorError) Unwrap() error {
	return e.Err
}

func newGeneratorError(provider string, kind, err error) *GeneratorError {
	return &GeneratorError{Provider: provider, Kind: kind, Err: err}
}

// transportError classifies a failed round trip.
func transportError(provider string, err error) *GeneratorError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return newGeneratorError(provider, ErrTimeout, err)
	}
	return newGeneratorError(provider, ErrService, err)
}

// statusError classifies a non-200 response.
func statusError(provider string, status int, body []byte) *GeneratorError {
	err := fmt.Errorf("API request failed with status %d: %s", status, truncate(string(body), 200))
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return newGeneratorError(provider, ErrAuth, err)
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return newGeneratorError(provider, ErrTimeout, err)
	default:
		return newGeneratorError(provider, ErrService, err)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}

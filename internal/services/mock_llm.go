package services

import (
	"context"
	"sync"
)

// MockGenerator is a mock implementation of Generator for testing
type MockGenerator struct {
	GenerateFunc func(ctx context.Context, prompt string, maxOutputTokens int) (string, error)

	// Track calls for testing
	GenerateCalls []GenerateCall

	mu sync.Mutex // protects all fields above
}

// GenerateCall records a single Generate invocation
type GenerateCall struct {
	Prompt          string
	MaxOutputTokens int
}

var _ Generator = (*MockGenerator)(nil)

// NewMockGenerator creates a mock that answers every prompt with a fixed
// narration ending in a choice block.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		GenerateCalls: make([]GenerateCall, 0),
	}
}

// MockNarration is returned by a MockGenerator without a GenerateFunc.
const MockNarration = "The afternoon passes pleasantly. You feel content.\nchoices: 1. Take a walk 2. Call a friend"

func (m *MockGenerator) Generate(ctx context.Context, prompt string, maxOutputTokens int) (string, error) {
	m.mu.Lock()
	m.GenerateCalls = append(m.GenerateCalls, GenerateCall{Prompt: prompt, MaxOutputTokens: maxOutputTokens})
	fn := m.GenerateFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, prompt, maxOutputTokens)
	}
	return MockNarration, nil
}

// CallCount returns the number of Generate calls so far
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.GenerateCalls)
}

// Reset clears recorded calls
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateCalls = make([]GenerateCall, 0)
}

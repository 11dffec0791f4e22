// Package testutil provides deterministic fakes for tests: a
// pattern-matching LLM and a hash-based embedding function. Nothing here
// touches the network.
package testutil

import (
	"context"
	"strings"
	"sync"
)

// MockLLM returns canned responses by matching prompt substrings.
// Thread-safe for concurrent use.
type MockLLM struct {
	mu       sync.Mutex
	rules    []mockRule
	fallback string
	calls    []string
}

type mockRule struct {
	pattern  string
	response string
}

// NewMockLLM creates a mock with the given fallback response, returned
// when no pattern matches.
func NewMockLLM(fallback string) *MockLLM {
	return &MockLLM{fallback: fallback}
}

// AddResponse registers a pattern-response pair. Patterns match
// case-insensitive substrings of the prompt, first registration wins.
func (m *MockLLM) AddResponse(pattern, response string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, mockRule{
		pattern:  strings.ToLower(pattern),
		response: response,
	})
}

// Generate matches prompt against the registered rules. It has the shape
// of the pipeline and translator LLM function types.
func (m *MockLLM) Generate(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, prompt)
	lower := strings.ToLower(prompt)
	for _, rule := range m.rules {
		if strings.Contains(lower, rule.pattern) {
			return rule.response, nil
		}
	}
	return m.fallback, nil
}

// Calls returns a copy of every prompt seen so far.
func (m *MockLLM) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := make([]string, len(m.calls))
	copy(cp, m.calls)
	return cp
}

// Reset clears recorded calls, keeping registered responses.
func (m *MockLLM) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

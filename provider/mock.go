package provider

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider is a mock provider for testing. It is safe for concurrent
// use.
type MockProvider struct {
	// Translations maps source text to translation. Unknown text comes back
	// in brackets.
	Translations map[string]string
	// Func, when set, replaces the lookup.
	Func func(ctx context.Context, req TranslateRequest) (string, error)
	// Err, when set, is returned by every call.
	Err error

	mu       sync.Mutex
	requests []TranslateRequest
}

// NewMockProvider creates a new mock provider with default translations.
func NewMockProvider() *MockProvider {
	return &MockProvider{
		Translations: map[string]string{
			"Hello":                "Hola",
			"World":                "Mundo",
			"Hello World":          "Hola Mundo",
			"Welcome to our site.": "Bienvenido a nuestro sitio.",
		},
	}
}

// Translate returns mock translations.
func (m *MockProvider) Translate(ctx context.Context, req TranslateRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.Err != nil {
		return "", m.Err
	}
	if m.Func != nil {
		return m.Func(ctx, req)
	}
	if translation, ok := m.Translations[req.Text]; ok {
		return translation, nil
	}
	return fmt.Sprintf("[%s]", req.Text), nil
}

// Name implements translator.Named.
func (m *MockProvider) Name() string {
	return "mock"
}

// CallCount returns the number of Translate calls.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// Requests returns a copy of every request received, in order.
func (m *MockProvider) Requests() []TranslateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TranslateRequest(nil), m.requests...)
}

// Reset forgets recorded requests.
func (m *MockProvider) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}

var _ Provider = (*MockProvider)(nil)

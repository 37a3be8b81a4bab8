package mock

import (
	"context"
	"fmt"

	"github.com/RaymonMudrig/ManualBook/ai"
)

// MockAnswerGenerator is a test double for ai.AnswerGenerator.
type MockAnswerGenerator struct {
	// GenerateAnswerFunc is called by GenerateAnswer if set.
	GenerateAnswerFunc func(ctx context.Context, query, contextText string, sources []ai.Source) (string, error)

	callCount int
}

// NewMockAnswerGenerator creates a mock generator with default echo
// behavior. Returns the concrete type so tests can inject behavior and read
// counters.
func NewMockAnswerGenerator() *MockAnswerGenerator {
	return &MockAnswerGenerator{}
}

// GenerateAnswer returns a canned answer describing its inputs.
func (m *MockAnswerGenerator) GenerateAnswer(ctx context.Context, query, contextText string, sources []ai.Source) (string, error) {
	m.callCount++

	if m.GenerateAnswerFunc != nil {
		return m.GenerateAnswerFunc(ctx, query, contextText, sources)
	}

	return fmt.Sprintf("mock answer for %q (%d context bytes, %d sources)",
		query, len(contextText), len(sources)), nil
}

// CallCount returns the number of times GenerateAnswer was called.
func (m *MockAnswerGenerator) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockAnswerGenerator) Reset() {
	m.callCount = 0
	m.GenerateAnswerFunc = nil
}

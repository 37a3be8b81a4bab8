package mock

import (
	"context"
	"strings"

	"github.com/RaymonMudrig/ManualBook/core"
)

// MockQueryClassifier is a test double for ai.QueryClassifier.
// The default behavior applies simple keyword heuristics so tests get
// plausible classifications without a model.
type MockQueryClassifier struct {
	// ClassifyQueryFunc is called by ClassifyQuery if set.
	ClassifyQueryFunc func(ctx context.Context, query string) (core.Classification, error)

	callCount int
}

// NewMockQueryClassifier creates a mock classifier with default keyword
// behavior. Returns the concrete type so tests can inject behavior and read
// counters.
func NewMockQueryClassifier() *MockQueryClassifier {
	return &MockQueryClassifier{}
}

// ClassifyQuery classifies the query with keyword heuristics.
func (m *MockQueryClassifier) ClassifyQuery(ctx context.Context, query string) (core.Classification, error) {
	m.callCount++

	if m.ClassifyQueryFunc != nil {
		return m.ClassifyQueryFunc(ctx, query)
	}

	lower := strings.ToLower(query)

	intent := core.IntentLearn
	switch {
	case containsAny(lower, "error", "not working", "issue", "problem", "fix", "broken", "failed"):
		intent = core.IntentTrouble
	case containsAny(lower, "how to", "how do i", "show", "add", "create", "configure", "set up", "remove", "open"):
		intent = core.IntentDo
	}

	category := core.CategoryUnknown
	switch {
	case containsAny(lower, "widget", "interface", "workspace", "template", "settings", "menu", "window", "panel", "toolbar"):
		category = core.CategoryApplication
	case containsAny(lower, "data structure", "data format", "data content", "schema", "fields"):
		category = core.CategoryData
	}

	var topics []string
	for _, word := range strings.Fields(lower) {
		if len(word) > 3 && len(topics) < 5 {
			topics = append(topics, word)
		}
	}

	return core.Classification{
		Intent:     intent,
		Category:   category,
		Topics:     topics,
		Confidence: 0.9,
	}, nil
}

// CallCount returns the number of times ClassifyQuery was called.
func (m *MockQueryClassifier) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockQueryClassifier) Reset() {
	m.callCount = 0
	m.ClassifyQueryFunc = nil
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

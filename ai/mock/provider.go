package mock

import "github.com/RaymonMudrig/ManualBook/ai"

// MockProvider is a test double for ai.Provider.
type MockProvider struct {
	embedder   *MockEmbedder
	classifier *MockQueryClassifier
	generator  *MockAnswerGenerator
}

// NewMockProvider creates a mock provider with default mock services.
//
// Returns ai.Provider for consistency with production constructors. Use
// GetMockEmbedder()/GetMockClassifier()/GetMockGenerator() to access the
// concrete types for test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		embedder:   NewMockEmbedder(),
		classifier: NewMockQueryClassifier(),
		generator:  NewMockAnswerGenerator(),
	}
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// QueryClassifier returns the mock classifier.
func (p *MockProvider) QueryClassifier() ai.QueryClassifier {
	return p.classifier
}

// AnswerGenerator returns the mock generator.
func (p *MockProvider) AnswerGenerator() ai.AnswerGenerator {
	return p.generator
}

// Close is a no-op for the mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockClassifier returns the underlying mock classifier for test assertions.
func (p *MockProvider) GetMockClassifier() *MockQueryClassifier {
	return p.classifier
}

// GetMockGenerator returns the underlying mock generator for test assertions.
func (p *MockProvider) GetMockGenerator() *MockAnswerGenerator {
	return p.generator
}

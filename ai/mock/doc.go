// Package mock provides test doubles for the ai service interfaces.
//
// Each mock has injectable function fields for custom behavior and a call
// counter for assertions:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//	count := embedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: deterministic vectors derived from a hash of the text
//   - MockQueryClassifier: keyword heuristics mirroring the production rules
//   - MockAnswerGenerator: echoes the query and context sizes
//   - MockProvider: aggregates the three mocks
package mock

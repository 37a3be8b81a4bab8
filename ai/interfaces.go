package ai

import (
	"context"

	"github.com/RaymonMudrig/ManualBook/core"
)

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple texts in a batch.
	// The result has one vector per input text, in order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryClassifier classifies a user query by intent, category, and topics.
// Implementations return the raw model classification; deterministic
// pattern overrides are applied by the retrieval layer on top of it.
// Implementations must be thread-safe for concurrent use.
type QueryClassifier interface {
	// ClassifyQuery returns the classification of one query.
	// Returns an error if the model call or response parsing fails; callers
	// degrade to a pattern-only classification in that case.
	ClassifyQuery(ctx context.Context, query string) (core.Classification, error)
}

// Source identifies one context document handed to the answer generator.
type Source struct {
	Title  string
	Origin string
}

// AnswerGenerator produces a grounded natural-language answer from
// retrieved context. Implementations must be thread-safe for concurrent use.
type AnswerGenerator interface {
	// GenerateAnswer answers the query using the supplied context text.
	// Sources, when present, are listed in the prompt so the model can cite
	// them by title.
	GenerateAnswer(ctx context.Context, query, contextText string, sources []Source) (string, error)
}

// Provider aggregates the AI services for convenient initialization and
// lifecycle management.
type Provider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// QueryClassifier returns the query classification service.
	QueryClassifier() QueryClassifier

	// AnswerGenerator returns the answer generation service.
	AnswerGenerator() AnswerGenerator

	// Close releases resources held by the provider and its services.
	Close() error
}

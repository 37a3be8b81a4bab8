package manualbook

import "errors"

var (
	// ErrChunkRepositoryRequired indicates a nil chunk repository was provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository is required")

	// ErrAIProviderRequired indicates a nil AI provider was provided.
	ErrAIProviderRequired = errors.New("AI provider is required")

	// ErrCatalogRequired indicates a nil catalog was provided.
	ErrCatalogRequired = errors.New("catalog is required")
)

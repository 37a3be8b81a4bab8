package retrieval

import "errors"

var (
	// ErrCatalogRequired indicates a nil catalog was passed to a constructor.
	ErrCatalogRequired = errors.New("catalog is required")

	// ErrChunkRepositoryRequired indicates a nil chunk repository was passed to a constructor.
	ErrChunkRepositoryRequired = errors.New("chunk repository is required")

	// ErrEmbedderRequired indicates a nil embedder was passed to a constructor.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrClassifierRequired indicates a nil classifier service was passed to a constructor.
	ErrClassifierRequired = errors.New("classifier service is required")
)

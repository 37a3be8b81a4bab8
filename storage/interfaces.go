package storage

import (
	"context"

	"github.com/RaymonMudrig/ManualBook/core"
)

// Filter restricts a vector query by chunk metadata. Zero-value fields act
// as wildcards; CategoryUnknown also matches everything, since unresolved
// categories must not narrow the search.
type Filter struct {
	Intent   core.Intent
	Category core.Category
}

// Matches reports whether the chunk passes the filter.
func (f Filter) Matches(chunk *core.Chunk) bool {
	if f.Intent != "" && chunk.Intent != f.Intent {
		return false
	}
	if f.Category != "" && f.Category != core.CategoryUnknown && chunk.Category != f.Category {
		return false
	}
	return true
}

// ChunkSearcher is the read side of a chunk index. Retrieval holds a
// ChunkSearcher per knowledge generation, so implementations must be safe
// for unlimited concurrent readers.
type ChunkSearcher interface {
	// Query finds chunks similar to the given vector, restricted by the
	// filter. Returns matches with score >= minScore, up to limit results,
	// ordered by score descending.
	Query(ctx context.Context, vector []float32, filter Filter, minScore float32, limit int) ([]*core.ChunkMatch, error)
}

// ChunkRepository provides operations for embedded text chunks.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	ChunkSearcher

	// AddChunks stores one or more chunks. Chunk IDs are content-derived by
	// the caller; re-adding an existing ID overwrites the stored chunk.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error

	// AllChunks retrieves every stored chunk, for building an immutable
	// in-memory index snapshot.
	AllChunks(ctx context.Context) ([]*core.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// DeleteAll removes every stored chunk.
	DeleteAll(ctx context.Context) error

	// Close releases resources held by the repository.
	Close() error
}

// CatalogRepository provides operations for persisted article records.
// Implementations must be thread-safe and support concurrent access.
type CatalogRepository interface {
	// PutArticles stores one or more articles, overwriting existing ids.
	PutArticles(ctx context.Context, articles ...*core.Article) error

	// GetArticle retrieves a single article by id.
	// Returns ErrNotFound if the article doesn't exist.
	GetArticle(ctx context.Context, id string) (*core.Article, error)

	// ListArticles retrieves all stored articles.
	ListArticles(ctx context.Context) ([]*core.Article, error)

	// DeleteAll removes every stored article.
	DeleteAll(ctx context.Context) error

	// Close releases resources held by the repository.
	Close() error
}

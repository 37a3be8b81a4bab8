package manualbook

import (
	"time"

	"github.com/RaymonMudrig/ManualBook/ai"
	"github.com/RaymonMudrig/ManualBook/catalog"
	"github.com/RaymonMudrig/ManualBook/retrieval"
	"github.com/RaymonMudrig/ManualBook/storage"
)

// Generation is one immutable snapshot of the knowledge base: a built
// catalog, a chunk index frozen at install time, and a retriever over
// both. Queries hold a generation for their whole lifetime, so a catalog
// rebuild never mutates state that an in-flight query can observe; the
// engine swaps in a new generation atomically when ingestion completes.
type Generation struct {
	catalog   *catalog.Catalog
	chunks    storage.ChunkSearcher
	retriever *retrieval.Retriever
	builtAt   time.Time
}

// NewGeneration creates a snapshot over the given catalog. The chunk
// searcher and embedder back the retriever's semantic search; pass an
// immutable index so the snapshot survives a store rebuild.
func NewGeneration(cat *catalog.Catalog, chunks storage.ChunkSearcher, embedder ai.Embedder, opts ...retrieval.Option) (*Generation, error) {
	if cat == nil {
		return nil, ErrCatalogRequired
	}

	retriever, err := retrieval.NewRetriever(cat, chunks, embedder, opts...)
	if err != nil {
		return nil, err
	}

	return &Generation{
		catalog:   cat,
		chunks:    chunks,
		retriever: retriever,
		builtAt:   time.Now(),
	}, nil
}

// Chunks returns the snapshot's chunk index.
func (g *Generation) Chunks() storage.ChunkSearcher {
	return g.chunks
}

// Catalog returns the snapshot's article catalog.
func (g *Generation) Catalog() *catalog.Catalog {
	return g.catalog
}

// Retriever returns the snapshot's catalog retriever.
func (g *Generation) Retriever() *retrieval.Retriever {
	return g.retriever
}

// BuiltAt returns when the snapshot was created.
func (g *Generation) BuiltAt() time.Time {
	return g.builtAt
}

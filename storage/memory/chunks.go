package memory

import (
	"context"
	"slices"

	"github.com/RaymonMudrig/ManualBook/core"
	"github.com/RaymonMudrig/ManualBook/storage"
)

// ChunkIndex is a read-only vector index over a fixed set of chunks. It
// never mutates after construction, so it is safe for unlimited concurrent
// readers.
type ChunkIndex struct {
	chunks []*core.Chunk
}

var _ storage.ChunkSearcher = (*ChunkIndex)(nil)

// NewChunkIndex creates an index over the given chunks. The slice is
// copied; later mutation of the argument does not affect the index.
func NewChunkIndex(chunks []*core.Chunk) *ChunkIndex {
	return &ChunkIndex{chunks: slices.Clone(chunks)}
}

// Len returns the number of indexed chunks.
func (idx *ChunkIndex) Len() int {
	return len(idx.chunks)
}

// Query scans all chunks and returns those passing the metadata filter with
// similarity >= minScore, ordered by score descending, up to limit.
func (idx *ChunkIndex) Query(ctx context.Context, vector []float32, filter storage.Filter, minScore float32, limit int) ([]*core.ChunkMatch, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.ChunkMatch
	for _, chunk := range idx.chunks {
		if len(chunk.Vector) == 0 || !filter.Matches(chunk) {
			continue
		}

		score := dotProduct(vector, chunk.Vector)
		if score >= minScore {
			results = append(results, &core.ChunkMatch{
				Chunk: chunk,
				Score: score,
			})
		}
	}

	slices.SortFunc(results, func(a, b *core.ChunkMatch) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// dotProduct assumes normalized vectors, making it equivalent to cosine
// similarity. Mismatched lengths score zero.
func dotProduct(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

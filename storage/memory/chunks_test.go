package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaymonMudrig/ManualBook/core"
	"github.com/RaymonMudrig/ManualBook/storage"
)

func testChunk(article string, intent core.Intent, vector []float32) *core.Chunk {
	return &core.Chunk{
		ID:        core.IDFromContent(article),
		ArticleID: article,
		Text:      article + " content",
		Intent:    intent,
		Category:  core.CategoryApplication,
		Vector:    vector,
	}
}

func TestChunkIndexQuery(t *testing.T) {
	ctx := context.Background()
	index := NewChunkIndex([]*core.Chunk{
		testChunk("alpha", core.IntentLearn, []float32{0.9, 0}),
		testChunk("beta", core.IntentDo, []float32{0.5, 0}),
		testChunk("gamma", core.IntentLearn, []float32{0, 1}),
	})
	require.Equal(t, 3, index.Len())

	t.Run("orders by score", func(t *testing.T) {
		matches, err := index.Query(ctx, []float32{1, 0}, storage.Filter{}, 0.1, 10)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, "alpha", matches[0].Chunk.ArticleID)
		assert.Equal(t, "beta", matches[1].Chunk.ArticleID)
	})

	t.Run("filter narrows", func(t *testing.T) {
		matches, err := index.Query(ctx, []float32{1, 0}, storage.Filter{Intent: core.IntentDo}, 0, 10)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "beta", matches[0].Chunk.ArticleID)
	})

	t.Run("limit truncates", func(t *testing.T) {
		matches, err := index.Query(ctx, []float32{1, 0}, storage.Filter{}, 0, 1)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "alpha", matches[0].Chunk.ArticleID)
	})

	t.Run("invalid limit", func(t *testing.T) {
		_, err := index.Query(ctx, []float32{1, 0}, storage.Filter{}, 0, 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}

func TestChunkIndexIsDetachedFromInput(t *testing.T) {
	ctx := context.Background()
	chunks := []*core.Chunk{
		testChunk("alpha", core.IntentLearn, []float32{1, 0}),
	}
	index := NewChunkIndex(chunks)

	chunks[0] = testChunk("beta", core.IntentLearn, []float32{1, 0})

	matches, err := index.Query(ctx, []float32{1, 0}, storage.Filter{}, 0, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "alpha", matches[0].Chunk.ArticleID)
}

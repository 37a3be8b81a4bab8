package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RaymonMudrig/ManualBook/core"
	"github.com/RaymonMudrig/ManualBook/storage"
)

func setupArticles(t *testing.T) storage.CatalogRepository {
	t.Helper()
	_, articleRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, backend.Close())
	})
	return articleRepo
}

func TestArticleRepository(t *testing.T) {
	ctx := context.Background()

	article := &core.Article{
		ID:           "widget_list",
		Title:        "Widget List",
		Intent:       core.IntentLearn,
		Category:     core.CategoryApplication,
		Content:      "Every available widget and what it does.",
		HeadingLevel: 2,
		Synonyms:     []string{"component list"},
		Codes:        []string{"WL"},
	}

	t.Run("PutAndGet", func(t *testing.T) {
		repo := setupArticles(t)

		require.NoError(t, repo.PutArticles(ctx, article))

		got, err := repo.GetArticle(ctx, "widget_list")
		require.NoError(t, err)
		assert.Equal(t, article, got)
	})

	t.Run("GetMissing", func(t *testing.T) {
		repo := setupArticles(t)
		_, err := repo.GetArticle(ctx, "absent")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("PutOverwrites", func(t *testing.T) {
		repo := setupArticles(t)

		require.NoError(t, repo.PutArticles(ctx, article))
		updated := *article
		updated.Title = "Widget List (updated)"
		require.NoError(t, repo.PutArticles(ctx, &updated))

		got, err := repo.GetArticle(ctx, "widget_list")
		require.NoError(t, err)
		assert.Equal(t, "Widget List (updated)", got.Title)

		all, err := repo.ListArticles(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("ListAndDeleteAll", func(t *testing.T) {
		repo := setupArticles(t)

		other := &core.Article{ID: "workspace_setup", Title: "Workspace Setup", Intent: core.IntentDo, Category: core.CategoryApplication}
		require.NoError(t, repo.PutArticles(ctx, article, other))

		all, err := repo.ListArticles(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		require.NoError(t, repo.DeleteAll(ctx))
		all, err = repo.ListArticles(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

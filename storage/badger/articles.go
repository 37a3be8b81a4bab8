package badger

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/RaymonMudrig/ManualBook/core"
	"github.com/RaymonMudrig/ManualBook/storage"
)

// ArticleRepository implements storage.CatalogRepository for BadgerDB.
// It persists the flattened article records so a catalog can be rebuilt
// without re-parsing the markdown sources.
type ArticleRepository struct {
	backend *Backend
}

var _ storage.CatalogRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(backend *Backend) *ArticleRepository {
	return &ArticleRepository{backend: backend}
}

// Close is a no-op; the backend owns the database lifecycle.
func (r *ArticleRepository) Close() error {
	return nil
}

// PutArticles stores one or more articles, overwriting existing ids.
func (r *ArticleRepository) PutArticles(ctx context.Context, articles ...*core.Article) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, article := range articles {
			value, err := storage.MarshalArticle(article)
			if err != nil {
				return err
			}
			if err := tx.Set(makeArticleKey(article.ID), value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetArticle retrieves a single article by id.
func (r *ArticleRepository) GetArticle(ctx context.Context, id string) (*core.Article, error) {
	var article *core.Article

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeArticleKey(id))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			article, err = storage.UnmarshalArticle(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return article, nil
}

// ListArticles retrieves all stored articles.
func (r *ArticleRepository) ListArticles(ctx context.Context) ([]*core.Article, error) {
	var articles []*core.Article

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(articleRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				article, err := storage.UnmarshalArticle(val)
				if err != nil {
					return err
				}
				articles = append(articles, article)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return articles, nil
}

// DeleteAll removes every stored article.
func (r *ArticleRepository) DeleteAll(ctx context.Context) error {
	return r.backend.DropPrefix([]byte(articleRecordPrefix))
}

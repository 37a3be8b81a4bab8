package badger

import "github.com/RaymonMudrig/ManualBook/storage"

// NewMemoryRepositories creates in-memory chunk and article repositories
// for testing. Caller must close the backend when done.
func NewMemoryRepositories() (storage.ChunkRepository, storage.CatalogRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, err
	}

	return NewChunkRepository(backend), NewArticleRepository(backend), backend, nil
}

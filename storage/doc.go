// Package storage defines the persistence interfaces for ManualBook.
//
// Two repositories cover the retrieval data model:
//
//   - ChunkRepository: embedded text chunks with vector similarity search
//   - CatalogRepository: the flattened article records backing the catalog
//
// The interfaces are storage-agnostic; storage/badger provides the BadgerDB
// implementation used in production and, with the in-memory option, in
// tests. Values are encoded as JSON; see serialization.go.
//
// Vector search uses cosine similarity via dot product, which assumes the
// embedding service returns normalized vectors.
package storage

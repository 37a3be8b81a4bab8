// Package ingestion builds the persisted retrieval state from a catalog.
//
// The pipeline chunks each article into paragraph-bounded pieces, embeds
// the chunks on a worker pool, and writes articles and chunks to storage.
// Ingestion is the exclusive writer: queries never run against a catalog
// mid-rebuild, they keep reading the previous generation until the caller
// swaps in the new one.
package ingestion

// Package ai provides abstractions for the AI services used in ManualBook.
//
// This package defines interfaces for text embeddings, query classification,
// and answer generation. The retrieval and ingestion layers depend on these
// abstractions rather than on concrete implementations.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external services
//
// Public constructors in ai/openai return interface types to enforce
// abstraction. The mock constructors return concrete types so tests can
// inject behavior and inspect call counts.
//
// # Usage Example
//
//	config := ai.NewConfig(ai.WithHost("http://localhost:11434"))
//	provider, err := openai.NewProvider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	vec, err := provider.Embedder().EmbedText(ctx, "how do I add a widget")
package ai

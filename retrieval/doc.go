// Package retrieval implements query understanding and catalog retrieval.
//
// Two components cooperate per query:
//
//   - Classifier: combines a model classification with deterministic
//     pattern overrides and strict category keyword rules. It never fails;
//     when the model is unavailable it degrades to pattern-only
//     classification with zero confidence.
//
//   - Retriever: a staged ranking pipeline over the article catalog:
//     conservative query expansion, metadata-filtered semantic search,
//     exact-match boosting, lexical relevance verification, specific-term
//     enforcement, and a one-shot do/learn intent fallback.
//
// All ranking constants live in RankingConfig so boost and threshold
// behavior can be tuned and unit-tested in isolation.
package retrieval

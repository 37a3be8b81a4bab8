// Package openai implements the ai service interfaces using
// OpenAI-compatible APIs via langchaingo.
//
// It works with any OpenAI-compatible endpoint, including local servers
// such as Ollama, LocalAI, and vLLM. Authentication uses the token "none"
// by default, which local servers accept.
//
// The classifier and generator share one chat client; the embedder has its
// own client so the two services can point at different hosts and models.
package openai

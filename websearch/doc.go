// Package websearch provides the web search escalation tier.
//
// Searcher queries the Serper API when an API key is configured and falls
// back to the DuckDuckGo Instant Answer API (no key required) otherwise.
// Both calls carry explicit timeouts; failures surface as errors so the
// orchestrator can record the tier as failed and move on.
package websearch

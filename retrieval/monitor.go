package retrieval

import "github.com/RaymonMudrig/ManualBook/core"

// Monitor provides hooks to observe the retrieval pipeline.
// Implement this interface to track intermediate stages during retrieval.
type Monitor interface {
	Start(query string, classification core.Classification)
	QueryExpanded(original, expanded string)
	AfterSemanticSearch(matches []*core.ChunkMatch)
	AfterBoosting(results []*core.RetrievalResult)
	AfterRelevanceCheck(results []*core.RetrievalResult)
	SpecificTermsExtracted(terms []string)
	FallbackTriggered(intent core.Intent)
	Finish(results []*core.RetrievalResult)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _ core.Classification) {}
func (n *noopMonitor) QueryExpanded(_, _ string) {}
func (n *noopMonitor) AfterSemanticSearch(_ []*core.ChunkMatch) {}
func (n *noopMonitor) AfterBoosting(_ []*core.RetrievalResult) {}
func (n *noopMonitor) AfterRelevanceCheck(_ []*core.RetrievalResult) {}
func (n *noopMonitor) SpecificTermsExtracted(_ []string) {}
func (n *noopMonitor) FallbackTriggered(_ core.Intent) {}
func (n *noopMonitor) Finish(_ []*core.RetrievalResult) {}

package retrieval

import (
	"github.com/poiesic/banktalk/core"
	"github.com/poiesic/banktalk/storage"
)

// Monitor provides hooks to observe a retrieval.
// Implement this interface to trace intermediate results, e.g. from the CLI.
type Monitor interface {
	Start(query string)
	AfterEmbedding(dimensions int)
	AfterSearch(hits []storage.ScoredPoint)
	SkippedHit(hit storage.ScoredPoint)
	Finish(passages []core.RetrievedPassage)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                      {}
func (n *noopMonitor) AfterEmbedding(_ int)                {}
func (n *noopMonitor) AfterSearch(_ []storage.ScoredPoint) {}
func (n *noopMonitor) SkippedHit(_ storage.ScoredPoint)    {}
func (n *noopMonitor) Finish(_ []core.RetrievedPassage)    {}

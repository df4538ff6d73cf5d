package search

import "github.com/poiesic/recall/storage"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(dimensions, k int)
	AfterIndexLookup(spec *storage.IndexSpec)
	Hit(hit Hit)
	Finish(hits Hits)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_, _ int)                        {}
func (n *noopMonitor) AfterIndexLookup(_ *storage.IndexSpec) {}
func (n *noopMonitor) Hit(_ Hit)                             {}
func (n *noopMonitor) Finish(_ Hits)                         {}

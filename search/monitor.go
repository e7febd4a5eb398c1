package search

import "github.com/poiesic/clinquery/core"

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterTokenize(tokens []string)
	AfterCandidates(ids []int)
	CandidateScored(result *core.ScoredResult)
	Finish(results []*core.ScoredResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                       {}
func (n *noopMonitor) AfterTokenize(_ []string)             {}
func (n *noopMonitor) AfterCandidates(_ []int)              {}
func (n *noopMonitor) CandidateScored(_ *core.ScoredResult) {}
func (n *noopMonitor) Finish(_ []*core.ScoredResult)        {}

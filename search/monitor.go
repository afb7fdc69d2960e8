package search

import "github.com/poiesic/noteseek/core"

// SearchMonitor observes the stages of a hybrid search. Implementations
// can surface progress in interactive frontends or collect timing data.
// All callbacks run on the searching goroutine and must be fast.
type SearchMonitor interface {
	// Start is called once, after query validation, with the raw query.
	Start(query string)

	// AfterKeywordMatch is called with the per-note keyword overlap
	// ratios produced by the inverted index.
	AfterKeywordMatch(overlaps map[string]float32)

	// AfterVectorScan is called with the number of vector records
	// visited during the scan.
	AfterVectorScan(scanned int)

	// Finish is called with the final ranked results.
	Finish(results []core.SearchResult)
}

// noopMonitor is the default monitor when callers pass nil.
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (*noopMonitor) Start(string)                       {}
func (*noopMonitor) AfterKeywordMatch(map[string]float32) {}
func (*noopMonitor) AfterVectorScan(int)                {}
func (*noopMonitor) Finish([]core.SearchResult)         {}

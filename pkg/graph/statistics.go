package graph

import "time"

// Statistics is an immutable snapshot of graph-wide counters. The optimizer
// plans against one of these rather than querying live indexes, so a
// planning pass never observes a graph mutating underneath it mid-pass.
type Statistics struct {
	TotalNodes      int
	TotalEdges      int
	NodeCountsByLabel map[string]int
	EdgeCountsByType  map[string]int
	AvgDegreeByType   map[string]float64
	LastUpdated       time.Time
}

// clone returns an independent deep copy, used both for the public
// Statistics() accessor and internally when Snapshot captures graph state.
func (s Statistics) clone() Statistics {
	out := Statistics{
		TotalNodes:        s.TotalNodes,
		TotalEdges:        s.TotalEdges,
		NodeCountsByLabel: make(map[string]int, len(s.NodeCountsByLabel)),
		EdgeCountsByType:  make(map[string]int, len(s.EdgeCountsByType)),
		AvgDegreeByType:   make(map[string]float64, len(s.AvgDegreeByType)),
		LastUpdated:       s.LastUpdated,
	}
	for k, v := range s.NodeCountsByLabel {
		out.NodeCountsByLabel[k] = v
	}
	for k, v := range s.EdgeCountsByType {
		out.EdgeCountsByType[k] = v
	}
	for k, v := range s.AvgDegreeByType {
		out.AvgDegreeByType[k] = v
	}
	return out
}

func newStatistics() Statistics {
	return Statistics{
		NodeCountsByLabel: make(map[string]int),
		EdgeCountsByType:  make(map[string]int),
		AvgDegreeByType:   make(map[string]float64),
		LastUpdated:       time.Time{},
	}
}

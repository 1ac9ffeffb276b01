package optimizer

import (
	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/planner"
)

// CardinalityEstimator estimates how many rows each operator produces,
// grounded directly on the reference cost model: scans cost by the
// cheapest (or OR-summed) matching label group, expands scale the
// input by the type's average out-degree, and filters shrink by their
// estimated selectivity.
type CardinalityEstimator struct {
	stats graph.Statistics
}

func newCardinalityEstimator(stats graph.Statistics) *CardinalityEstimator {
	return &CardinalityEstimator{stats: stats}
}

// estimateScanNodes returns the estimated row count of a label-group
// scan: an OR of label groups sums, an AND-intersection within a group
// takes the minimum of its members' counts (we don't track
// co-occurrence statistics, so the tightest single label is the best
// available bound).
func (c *CardinalityEstimator) estimateScanNodes(op *planner.ScanNodesOp) float64 {
	if len(op.LabelGroups) == 0 {
		return float64(c.stats.TotalNodes)
	}
	var total float64
	for _, group := range op.LabelGroups {
		total += c.estimateLabelGroup(group)
	}
	return total
}

func (c *CardinalityEstimator) estimateLabelGroup(group []string) float64 {
	if len(group) == 0 {
		return float64(c.stats.TotalNodes)
	}
	best := float64(c.stats.TotalNodes)
	for _, label := range group {
		if n, ok := c.stats.NodeCountsByLabel[label]; ok && float64(n) < best {
			best = float64(n)
		}
	}
	return best
}

// estimateExpandEdges scales the input cardinality by the average
// out-degree of the matched relationship types (or the graph-wide
// average edges-per-node when the expansion is untyped).
func (c *CardinalityEstimator) estimateExpandEdges(op *planner.ExpandEdgesOp, inputCard float64) float64 {
	degree := c.avgDegree(op.Types)
	return inputCard * degree
}

func (c *CardinalityEstimator) avgDegree(types []string) float64 {
	if len(types) == 0 {
		if c.stats.TotalNodes == 0 {
			return 1.0
		}
		return float64(c.stats.TotalEdges) / float64(c.stats.TotalNodes)
	}
	var sum float64
	for _, t := range types {
		sum += c.stats.AvgDegreeByType[t]
	}
	return sum / float64(len(types))
}

// estimateCost sums the intermediate cardinality of every operator in
// the pipeline — the running total a streaming executor would push
// through, not just the final row count — so joining in a cheaper
// order is rewarded even when every ordering produces the same
// eventual result set.
func (c *CardinalityEstimator) estimateCost(ops []planner.Operator) float64 {
	var running float64 = 1
	var total float64
	for _, op := range ops {
		switch op.Kind {
		case planner.OpScanNodes:
			running *= c.estimateScanNodes(op.ScanNodes)
		case planner.OpExpandEdges:
			running = c.estimateExpandEdges(op.ExpandEdges, running)
		case planner.OpVarLengthExpand:
			hops := float64(op.VarLengthExpand.MinHops + 1)
			if op.VarLengthExpand.MaxHops >= 0 {
				hops = float64(op.VarLengthExpand.MaxHops)
			}
			running *= c.avgDegree(op.VarLengthExpand.Types) * hops
		case planner.OpFilter:
			running *= estimateSelectivity(op.Filter.Predicate)
		}
		total += running
	}
	return total
}

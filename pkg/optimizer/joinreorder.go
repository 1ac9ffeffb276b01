package optimizer

import (
	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/planner"
)

// maxReorderPatterns bounds the exhaustive-ordering search: the
// reference implementation enumerates every valid topological
// ordering, which is fine for the handful of patterns a typical query
// joins but blows up combinatorially past a point. Beyond this many
// pattern operators in one segment, reordering is skipped and the
// parsed order is kept — still correct, just not necessarily optimal.
const maxReorderPatterns = 8

// joinReorder finds, within each side-effect-free segment bounded by
// WITH/RETURN/UNION/CALL, the ordering of pattern operators (scans and
// expansions) with the lowest estimated cost, subject to each
// operator's variable dependencies being satisfied by operators placed
// before it.
func joinReorder(ops []planner.Operator, stats graph.Statistics) []planner.Operator {
	estimator := newCardinalityEstimator(stats)
	out := make([]planner.Operator, 0, len(ops))
	segStart := 0
	preBound := make(map[string]bool)
	flush := func(end int) {
		segment := ops[segStart:end]
		if !canReorderSegment(segment) {
			out = append(out, segment...)
			return
		}
		out = append(out, reorderSegment(segment, preBound, estimator)...)
	}
	for i, op := range ops {
		if isBoundary(op) {
			flush(i)
			out = append(out, recurseIntoNested(op, stats))
			for _, v := range boundBy(op) {
				preBound[v] = true
			}
			segStart = i + 1
			continue
		}
		for _, v := range boundBy(op) {
			preBound[v] = true
		}
	}
	flush(len(ops))
	return out
}

// recurseIntoNested applies join reorder to the inner pipeline of an
// operator that carries one (OPTIONAL MATCH, CALL subquery, UNION
// branch), since each is an independently reorderable scope.
func recurseIntoNested(op planner.Operator, stats graph.Statistics) planner.Operator {
	switch op.Kind {
	case planner.OpLeftOuterPattern:
		op.LeftOuterPattern.Inner = joinReorder(op.LeftOuterPattern.Inner, stats)
	case planner.OpSubquery:
		op.Subquery.Inner = joinReorder(op.Subquery.Inner, stats)
	case planner.OpUnion:
		op.Union.Left = joinReorder(op.Union.Left, stats)
		op.Union.Right = joinReorder(op.Union.Right, stats)
	}
	return op
}

// canReorderSegment requires at least two pattern operators to make
// reordering meaningful and forbids any mutation operator, whose
// relative order relative to reads must never change.
func canReorderSegment(segment []planner.Operator) bool {
	count := 0
	for _, op := range segment {
		if isSideEffecting(op) {
			return false
		}
		if isPatternOp(op) {
			count++
		}
	}
	return count >= 2
}

func reorderSegment(segment []planner.Operator, preBound map[string]bool, estimator *CardinalityEstimator) []planner.Operator {
	var patternIdx []int
	for i, op := range segment {
		if isPatternOp(op) {
			patternIdx = append(patternIdx, i)
		}
	}
	if len(patternIdx) < 2 || len(patternIdx) > maxReorderPatterns {
		return segment
	}
	patterns := make([]planner.Operator, len(patternIdx))
	for i, idx := range patternIdx {
		patterns[i] = segment[idx]
	}

	orderings := validOrderings(patterns, preBound)
	if len(orderings) == 0 {
		return segment
	}
	best := orderings[0]
	bestCost := estimator.estimateCost(applyOrdering(patterns, best))
	for _, ord := range orderings[1:] {
		cost := estimator.estimateCost(applyOrdering(patterns, ord))
		if cost < bestCost {
			best, bestCost = ord, cost
		}
	}

	reordered := applyOrdering(patterns, best)
	out := make([]planner.Operator, len(segment))
	copy(out, segment)
	for i, idx := range patternIdx {
		out[idx] = reordered[i]
	}
	return out
}

func applyOrdering(patterns []planner.Operator, order []int) []planner.Operator {
	out := make([]planner.Operator, len(order))
	for i, idx := range order {
		out[i] = patterns[idx]
	}
	return out
}

// requiresOf returns the variables a pattern operator must already
// have bound before it can run: a scan needs nothing, every expansion
// needs its source node.
func requiresOf(op planner.Operator) map[string]bool {
	req := make(map[string]bool)
	switch op.Kind {
	case planner.OpExpandEdges:
		req[op.ExpandEdges.SrcVar] = true
	case planner.OpExpandMultiHop:
		req[op.ExpandMultiHop.SrcVar] = true
	case planner.OpVarLengthExpand:
		req[op.VarLengthExpand.SrcVar] = true
	}
	return req
}

// validOrderings enumerates every permutation of pattern-operator
// indices (as indices into patterns) that is a valid topological
// ordering given each operator's requires/binds, exhaustively
// backtracking exactly as the reference dependency analyzer does.
func validOrderings(patterns []planner.Operator, preBound map[string]bool) [][]int {
	remaining := make([]int, len(patterns))
	for i := range patterns {
		remaining[i] = i
	}
	bound := make(map[string]bool, len(preBound))
	for v := range preBound {
		bound[v] = true
	}
	var results [][]int
	backtrackOrderings(patterns, remaining, bound, nil, &results)
	return results
}

func backtrackOrderings(patterns []planner.Operator, remaining []int, bound map[string]bool, current []int, results *[][]int) {
	if len(remaining) == 0 {
		ordering := make([]int, len(current))
		copy(ordering, current)
		*results = append(*results, ordering)
		return
	}
	for pos, idx := range remaining {
		op := patterns[idx]
		if !subsetOf(requiresOf(op), bound) {
			continue
		}
		nextRemaining := make([]int, 0, len(remaining)-1)
		nextRemaining = append(nextRemaining, remaining[:pos]...)
		nextRemaining = append(nextRemaining, remaining[pos+1:]...)

		nextBound := make(map[string]bool, len(bound)+2)
		for v := range bound {
			nextBound[v] = true
		}
		for _, v := range boundBy(op) {
			nextBound[v] = true
		}

		backtrackOrderings(patterns, nextRemaining, nextBound, append(current, idx), results)
	}
}

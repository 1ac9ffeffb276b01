package optimizer

import (
	"reflect"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/planner"
)

// filterPushdown moves each AND-conjunct of a Filter as close to the
// start of the pipeline as its referenced variables allow: either
// folded into the local predicate of the pattern operator that first
// satisfies its dependencies, or as a standalone Filter placed
// immediately after that operator. A conjunct is never pushed past an
// OPTIONAL MATCH boundary, since rows inside it may still be all-NULL.
func filterPushdown(ops []planner.Operator) []planner.Operator {
	out := make([]planner.Operator, 0, len(ops))
	for _, op := range ops {
		if op.Kind != planner.OpFilter {
			out = append(out, op)
			continue
		}
		for _, conjunct := range extractConjuncts(op.Filter.Predicate) {
			out = pushConjunct(out, conjunct)
		}
	}
	return out
}

func pushConjunct(out []planner.Operator, conjunct cypher.Expr) []planner.Operator {
	needed := referencedVariables(conjunct)
	insertAfter := -1
	for i := range out {
		if isBoundary(out[i]) || out[i].Kind == planner.OpLeftOuterPattern {
			break
		}
		if subsetOf(needed, boundVarsUpTo(out, i)) {
			insertAfter = i
			break
		}
	}
	if insertAfter == -1 {
		return append(out, planner.Operator{Kind: planner.OpFilter, Filter: &planner.FilterOp{Predicate: conjunct}})
	}
	if folded, ok := foldIntoPattern(out[insertAfter], conjunct); ok {
		out[insertAfter] = folded
		return out
	}
	result := make([]planner.Operator, 0, len(out)+1)
	result = append(result, out[:insertAfter+1]...)
	result = append(result, planner.Operator{Kind: planner.OpFilter, Filter: &planner.FilterOp{Predicate: conjunct}})
	result = append(result, out[insertAfter+1:]...)
	return result
}

// foldIntoPattern combines a conjunct into a ScanNodes or ExpandEdges
// operator's own local predicate when possible, avoiding a separate
// Filter stage entirely.
func foldIntoPattern(op planner.Operator, conjunct cypher.Expr) (planner.Operator, bool) {
	switch op.Kind {
	case planner.OpScanNodes:
		scan := *op.ScanNodes
		scan.Predicate = andTogether(scan.Predicate, conjunct)
		op.ScanNodes = &scan
		return op, true
	case planner.OpExpandEdges:
		expand := *op.ExpandEdges
		expand.Predicate = andTogether(expand.Predicate, conjunct)
		op.ExpandEdges = &expand
		return op, true
	default:
		return op, false
	}
}

func andTogether(existing *cypher.Expr, conjunct cypher.Expr) *cypher.Expr {
	if existing == nil {
		c := conjunct
		return &c
	}
	return combineWithAnd([]cypher.Expr{*existing, conjunct})
}

// predicateReorder sorts each AND-chain predicate (in Filter,
// ScanNodes, and ExpandEdges operators) so the most selective
// conjunct is evaluated first, letting short-circuit evaluation skip
// the rest on an early false.
func predicateReorder(ops []planner.Operator) []planner.Operator {
	for i := range ops {
		switch ops[i].Kind {
		case planner.OpFilter:
			ops[i].Filter.Predicate = *sortConjuncts(ops[i].Filter.Predicate)
		case planner.OpScanNodes:
			if ops[i].ScanNodes.Predicate != nil {
				ops[i].ScanNodes.Predicate = sortConjuncts(*ops[i].ScanNodes.Predicate)
			}
		case planner.OpExpandEdges:
			if ops[i].ExpandEdges.Predicate != nil {
				ops[i].ExpandEdges.Predicate = sortConjuncts(*ops[i].ExpandEdges.Predicate)
			}
		}
	}
	return ops
}

func sortConjuncts(e cypher.Expr) *cypher.Expr {
	conjuncts := extractConjuncts(e)
	if len(conjuncts) < 2 {
		return &e
	}
	sorted := make([]cypher.Expr, len(conjuncts))
	copy(sorted, conjuncts)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && estimateSelectivity(sorted[j]) < estimateSelectivity(sorted[j-1]); j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return combineWithAnd(sorted)
}

// redundantPatternElimination drops a pattern operator (ScanNodes,
// ExpandEdges, ExpandMultiHop or VarLengthExpand) that is structurally
// identical (same bound variables, labels/types,
// direction, and predicate) to one already seen within the same
// segment. Segments are bounded by WITH/RETURN/UNION/CALL, matching
// the scoping rule used elsewhere.
func redundantPatternElimination(ops []planner.Operator) []planner.Operator {
	out := make([]planner.Operator, 0, len(ops))
	var seen []planner.Operator
	for _, op := range ops {
		if isBoundary(op) {
			seen = nil
			out = append(out, op)
			continue
		}
		if isPatternOp(op) && isDuplicate(op, seen) {
			continue
		}
		if isPatternOp(op) {
			seen = append(seen, op)
		}
		out = append(out, op)
	}
	return out
}

func isDuplicate(op planner.Operator, seen []planner.Operator) bool {
	for _, prior := range seen {
		if reflect.DeepEqual(op, prior) {
			return true
		}
	}
	return false
}

// aggregatePushdown relocates a Project that performs an aggregation
// to immediately follow the last operator its grouping and aggregated
// expressions depend on, when the operators in between are themselves
// inert renames that don't affect row cardinality. This is
// deliberately conservative: a Filter or expansion between the
// dependency point and the Project changes which rows feed the
// aggregate, so pushing past one would change the result, not just its
// cost, and is never attempted. It never crosses a LeftOuterPattern
// boundary, since aggregating before an OPTIONAL MATCH resolves would
// aggregate over rows that haven't yet been NULL-padded.
func aggregatePushdown(ops []planner.Operator) []planner.Operator {
	for p := range ops {
		if ops[p].Kind != planner.OpProject || !hasAggregate(ops[p].Project) {
			continue
		}
		needed := projectDependencies(ops[p].Project)
		e := -1
		for i := p - 1; i >= 0; i-- {
			if ops[i].Kind == planner.OpLeftOuterPattern {
				break
			}
			if subsetOf(needed, boundVarsUpTo(ops, i)) {
				e = i
			}
		}
		if e == -1 || e == p-1 {
			continue
		}
		if !onlyInertRenamesBetween(ops, e, p) {
			continue
		}
		ops = relocate(ops, e, p)
	}
	return ops
}

func hasAggregate(proj *planner.ProjectOp) bool {
	for _, item := range proj.Items {
		if isAggregateCall(item.Expression) {
			return true
		}
	}
	return false
}

func projectDependencies(proj *planner.ProjectOp) map[string]bool {
	needed := make(map[string]bool)
	for _, item := range proj.Items {
		for v := range referencedVariables(item.Expression) {
			needed[v] = true
		}
	}
	if proj.Where != nil {
		for v := range referencedVariables(*proj.Where) {
			needed[v] = true
		}
	}
	return needed
}

// onlyInertRenamesBetween reports whether every operator strictly
// between e and p is a non-aggregating, non-filtering, non-ordering
// WITH — the only kind of operator that can sit between an
// aggregation's dependencies and the aggregation itself without
// changing which rows it sees.
func onlyInertRenamesBetween(ops []planner.Operator, e, p int) bool {
	for i := e + 1; i < p; i++ {
		op := ops[i]
		if op.Kind != planner.OpProject {
			return false
		}
		if hasAggregate(op.Project) || op.Project.Distinct || op.Project.Where != nil ||
			len(op.Project.OrderBy) > 0 || op.Project.Skip != nil || op.Project.Limit != nil {
			return false
		}
	}
	return true
}

func relocate(ops []planner.Operator, e, p int) []planner.Operator {
	result := make([]planner.Operator, 0, len(ops))
	result = append(result, ops[:e+1]...)
	result = append(result, ops[p])
	result = append(result, ops[e+1:p]...)
	result = append(result, ops[p+1:]...)
	return result
}

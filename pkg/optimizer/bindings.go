package optimizer

import "github.com/cypherlabs/cygraph/pkg/planner"

// boundBy returns the variable names an operator introduces into scope.
func boundBy(op planner.Operator) []string {
	switch op.Kind {
	case planner.OpScanNodes:
		return []string{op.ScanNodes.Variable}
	case planner.OpExpandEdges:
		vars := []string{op.ExpandEdges.DstVar}
		if op.ExpandEdges.EdgeVar != "" {
			vars = append(vars, op.ExpandEdges.EdgeVar)
		}
		return vars
	case planner.OpExpandMultiHop:
		var vars []string
		for _, hop := range op.ExpandMultiHop.Hops {
			if hop.EdgeVar != "" {
				vars = append(vars, hop.EdgeVar)
			}
			vars = append(vars, hop.DstVar)
		}
		if op.ExpandMultiHop.PathVar != "" {
			vars = append(vars, op.ExpandMultiHop.PathVar)
		}
		return vars
	case planner.OpVarLengthExpand:
		vars := []string{op.VarLengthExpand.DstVar}
		if op.VarLengthExpand.PathVar != "" {
			vars = append(vars, op.VarLengthExpand.PathVar)
		}
		return vars
	case planner.OpUnwind:
		return []string{op.Unwind.Variable}
	case planner.OpLeftOuterPattern:
		return op.LeftOuterPattern.InnerVars
	case planner.OpProject:
		vars := make([]string, 0, len(op.Project.Items))
		for _, item := range op.Project.Items {
			vars = append(vars, item.Alias)
		}
		return vars
	default:
		return nil
	}
}

// isBoundary reports whether a pass is forbidden from rewriting across
// this operator — WITH/RETURN rescope variables, UNION branches and
// CALL subqueries are independent sub-pipelines.
func isBoundary(op planner.Operator) bool {
	switch op.Kind {
	case planner.OpProject, planner.OpUnion, planner.OpSubquery:
		return true
	default:
		return false
	}
}

// isSideEffecting reports whether an operator mutates the graph, which
// rules out join reorder for the segment containing it (reordering
// mutations changes what later operators see).
func isSideEffecting(op planner.Operator) bool {
	switch op.Kind {
	case planner.OpCreate, planner.OpMerge, planner.OpSet, planner.OpRemove, planner.OpDelete:
		return true
	default:
		return false
	}
}

// isPatternOp reports whether an operator is a graph-pattern source
// (scan or expand) eligible for join reordering.
func isPatternOp(op planner.Operator) bool {
	switch op.Kind {
	case planner.OpScanNodes, planner.OpExpandEdges, planner.OpExpandMultiHop, planner.OpVarLengthExpand:
		return true
	default:
		return false
	}
}

// boundVarsUpTo returns the cumulative set of variables bound by
// ops[0:idx+1].
func boundVarsUpTo(ops []planner.Operator, idx int) map[string]bool {
	bound := make(map[string]bool)
	for i := 0; i <= idx && i < len(ops); i++ {
		for _, v := range boundBy(ops[i]) {
			bound[v] = true
		}
	}
	return bound
}

func subsetOf(needed, have map[string]bool) bool {
	for v := range needed {
		if !have[v] {
			return false
		}
	}
	return true
}

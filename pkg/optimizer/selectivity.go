// Package optimizer implements the five fixed, individually-toggleable
// rewrite passes (C7): filter pushdown, predicate reorder, join reorder,
// redundant pattern elimination, and aggregate pushdown. Each pass
// consumes and produces a planner.Operator pipeline; none touches the
// graph.
package optimizer

import (
	"github.com/cypherlabs/cygraph/pkg/cypher"
)

// extractConjuncts splits an AND chain into its flat list of conjuncts,
// leaving OR predicates (and anything else) as a single unit — OR must
// be evaluated together, it can't be reordered piecewise.
func extractConjuncts(e cypher.Expr) []cypher.Expr {
	if e.Kind != cypher.ExprBinary || e.Binary.Operator != "AND" {
		return []cypher.Expr{e}
	}
	out := extractConjuncts(e.Binary.Left)
	out = append(out, extractConjuncts(e.Binary.Right)...)
	return out
}

// combineWithAnd rebuilds a single expression from a conjunct list,
// right-associatively, mirroring extractConjuncts's inverse.
func combineWithAnd(preds []cypher.Expr) *cypher.Expr {
	if len(preds) == 0 {
		return nil
	}
	if len(preds) == 1 {
		return &preds[0]
	}
	result := preds[len(preds)-1]
	for i := len(preds) - 2; i >= 0; i-- {
		result = cypher.Expr{Kind: cypher.ExprBinary, Binary: &cypher.BinaryExpr{Left: preds[i], Operator: "AND", Right: result}}
	}
	return &result
}

// estimateSelectivity scores a predicate 0.0 (very selective) to 1.0
// (not selective); lower scores should be evaluated first. Heuristics
// match the reference cost model exactly: equality/IS NULL = 0.1,
// range comparisons = 0.5, <>/IS NOT NULL = 0.9, AND = min of
// children, OR = max of children, anything else = 0.5.
func estimateSelectivity(e cypher.Expr) float64 {
	switch e.Kind {
	case cypher.ExprBinary:
		switch e.Binary.Operator {
		case "=":
			return 0.1
		case "<>":
			return 0.9
		case "<", ">", "<=", ">=":
			return 0.5
		case "OR":
			return max64(estimateSelectivity(e.Binary.Left), estimateSelectivity(e.Binary.Right))
		case "AND":
			return min64(estimateSelectivity(e.Binary.Left), estimateSelectivity(e.Binary.Right))
		default:
			return 0.5
		}
	case cypher.ExprUnary:
		switch e.Unary.Operator {
		case "IS NULL":
			return 0.1
		case "IS NOT NULL":
			return 0.9
		default:
			return 0.5
		}
	default:
		return 0.5
	}
}

func max64(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func min64(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

// referencedVariables walks an expression tree and collects every
// variable name it reads, used both by filter pushdown (to find where
// a predicate's dependencies become available) and by join reorder (to
// build the operator dependency graph).
func referencedVariables(e cypher.Expr) map[string]bool {
	vars := make(map[string]bool)
	walkVariables(e, vars)
	return vars
}

func walkVariables(e cypher.Expr, out map[string]bool) {
	switch e.Kind {
	case cypher.ExprVariable:
		out[e.Variable] = true
	case cypher.ExprProperty:
		if e.Property.Base != nil {
			walkVariables(*e.Property.Base, out)
		} else if e.Property.Variable != "" {
			out[e.Property.Variable] = true
		}
	case cypher.ExprIndex:
		walkVariables(*e.Index.Base, out)
		walkVariables(*e.Index.Index, out)
	case cypher.ExprSlice:
		walkVariables(*e.Slice.Base, out)
		if e.Slice.From != nil {
			walkVariables(*e.Slice.From, out)
		}
		if e.Slice.To != nil {
			walkVariables(*e.Slice.To, out)
		}
	case cypher.ExprBinary:
		walkVariables(e.Binary.Left, out)
		walkVariables(e.Binary.Right, out)
	case cypher.ExprUnary:
		walkVariables(e.Unary.Operand, out)
	case cypher.ExprFunction:
		for _, arg := range e.Function.Arguments {
			walkVariables(arg, out)
		}
	case cypher.ExprList:
		for _, item := range e.List {
			walkVariables(item, out)
		}
	case cypher.ExprMap:
		for _, v := range e.Map {
			walkVariables(v, out)
		}
	case cypher.ExprCase:
		if e.Case.Input != nil {
			walkVariables(*e.Case.Input, out)
		}
		for _, w := range e.Case.Whens {
			walkVariables(w.Condition, out)
			walkVariables(w.Result, out)
		}
		if e.Case.Default != nil {
			walkVariables(*e.Case.Default, out)
		}
	case cypher.ExprListComprehension:
		walkVariables(e.Comprehension.List, out)
		if e.Comprehension.Where != nil {
			walkVariables(*e.Comprehension.Where, out)
		}
		if e.Comprehension.Projection != nil {
			walkVariables(*e.Comprehension.Projection, out)
		}
	case cypher.ExprQuantifier:
		walkVariables(e.Quantifier.List, out)
		walkVariables(e.Quantifier.Where, out)
	case cypher.ExprLabelCheck:
		if e.LabelCheck.Variable != "" {
			out[e.LabelCheck.Variable] = true
		}
	}
}

// isAggregateCall reports whether a function-call expression invokes
// one of the aggregate functions pkg/eval implements.
func isAggregateCall(e cypher.Expr) bool {
	if e.Kind != cypher.ExprFunction {
		return false
	}
	switch e.Function.Name {
	case "count", "sum", "avg", "min", "max", "collect",
		"stDev", "stDevP", "percentileDisc", "percentileCont":
		return true
	default:
		return false
	}
}

package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/planner"
)

func mustPlan(t *testing.T, src string) []planner.Operator {
	t.Helper()
	stmt, err := cypher.Parse(src)
	require.NoError(t, err)
	plan, err := planner.Plan(stmt)
	require.NoError(t, err)
	return plan.Operators
}

func TestFilterPushdownFoldsIntoScanPredicate(t *testing.T) {
	ops := mustPlan(t, `MATCH (n:Person) WHERE n.age > 30 RETURN n`)
	require.Len(t, ops, 3)
	require.Equal(t, planner.OpFilter, ops[1].Kind)

	pushed := filterPushdown(ops)
	require.Len(t, pushed, 2)
	assert.Equal(t, planner.OpScanNodes, pushed[0].Kind)
	require.NotNil(t, pushed[0].ScanNodes.Predicate)
	assert.Equal(t, planner.OpProject, pushed[1].Kind)
}

func TestFilterPushdownStopsAtOptionalBoundary(t *testing.T) {
	ops := mustPlan(t, `MATCH (a:Person) OPTIONAL MATCH (a)-[:KNOWS]->(b) WHERE b.age > 30 RETURN a, b`)
	pushed := filterPushdown(ops)
	var sawFilterAfterOuter bool
	seenOuter := false
	for _, op := range pushed {
		if op.Kind == planner.OpLeftOuterPattern {
			seenOuter = true
			continue
		}
		if seenOuter && op.Kind == planner.OpFilter {
			sawFilterAfterOuter = true
		}
	}
	assert.True(t, sawFilterAfterOuter, "predicate on an OPTIONAL MATCH variable must stay outside the inner pattern")
}

func TestPredicateReorderSortsBySelectivityAscending(t *testing.T) {
	notEquals := cypher.Expr{Kind: cypher.ExprBinary, Binary: &cypher.BinaryExpr{
		Left:     cypher.Expr{Kind: cypher.ExprProperty, Property: &cypher.PropertyAccess{Variable: "n", Property: "a"}},
		Operator: "<>",
		Right:    cypher.Expr{Kind: cypher.ExprLiteral, Literal: cypher.Literal{Kind: cypher.LitInt, I: 1}},
	}}
	equals := cypher.Expr{Kind: cypher.ExprBinary, Binary: &cypher.BinaryExpr{
		Left:     cypher.Expr{Kind: cypher.ExprProperty, Property: &cypher.PropertyAccess{Variable: "n", Property: "b"}},
		Operator: "=",
		Right:    cypher.Expr{Kind: cypher.ExprLiteral, Literal: cypher.Literal{Kind: cypher.LitInt, I: 2}},
	}}
	and := cypher.Expr{Kind: cypher.ExprBinary, Binary: &cypher.BinaryExpr{Left: notEquals, Operator: "AND", Right: equals}}

	ops := []planner.Operator{{Kind: planner.OpFilter, Filter: &planner.FilterOp{Predicate: and}}}
	reordered := predicateReorder(ops)

	conjuncts := extractConjuncts(reordered[0].Filter.Predicate)
	require.Len(t, conjuncts, 2)
	assert.Equal(t, "=", conjuncts[0].Binary.Operator)
	assert.Equal(t, "<>", conjuncts[1].Binary.Operator)
}

func TestJoinReorderPutsSmallerScanFirst(t *testing.T) {
	ops := mustPlan(t, `MATCH (a:Big) MATCH (b:Small) RETURN a, b`)
	stats := graph.Statistics{
		TotalNodes:        1010,
		NodeCountsByLabel: map[string]int{"Big": 1000, "Small": 10},
		EdgeCountsByType:  map[string]int{},
		AvgDegreeByType:   map[string]float64{},
	}
	reordered := joinReorder(ops, stats)

	var firstScan *planner.ScanNodesOp
	for _, op := range reordered {
		if op.Kind == planner.OpScanNodes {
			firstScan = op.ScanNodes
			break
		}
	}
	require.NotNil(t, firstScan)
	assert.Equal(t, "b", firstScan.Variable, "the smaller label scan should run first")
}

func TestJoinReorderLeavesSideEffectingSegmentsAlone(t *testing.T) {
	ops := mustPlan(t, `MATCH (a:Big) MATCH (b:Small) CREATE (a)-[:KNOWS]->(b)`)
	stats := graph.Statistics{NodeCountsByLabel: map[string]int{"Big": 1000, "Small": 10}}
	reordered := joinReorder(ops, stats)
	require.Equal(t, len(ops), len(reordered))
	assert.Equal(t, "a", reordered[0].ScanNodes.Variable)
}

func TestRedundantPatternEliminationDropsDuplicateScan(t *testing.T) {
	scan := planner.Operator{Kind: planner.OpScanNodes, ScanNodes: &planner.ScanNodesOp{
		Variable: "n", LabelGroups: [][]string{{"Person"}},
	}}
	ops := []planner.Operator{scan, scan}
	deduped := redundantPatternElimination(ops)
	require.Len(t, deduped, 1)
}

func TestRedundantPatternEliminationRespectsProjectBoundary(t *testing.T) {
	scan := planner.Operator{Kind: planner.OpScanNodes, ScanNodes: &planner.ScanNodesOp{
		Variable: "n", LabelGroups: [][]string{{"Person"}},
	}}
	boundary := planner.Operator{Kind: planner.OpProject, Project: &planner.ProjectOp{Terminal: true}}
	ops := []planner.Operator{scan, boundary, scan}
	deduped := redundantPatternElimination(ops)
	require.Len(t, deduped, 3)
}

func TestAggregatePushdownNoopWhenAlreadyAdjacent(t *testing.T) {
	ops := mustPlan(t, `MATCH (n:Person) RETURN count(n) AS total`)
	pushed := aggregatePushdown(ops)
	assert.Equal(t, ops, pushed)
}

func TestOptimizeRunsAllPassesWithoutError(t *testing.T) {
	ops := mustPlan(t, `MATCH (a:Person) WHERE a.age > 30 MATCH (b:Person) WHERE b.age > 30 RETURN a, b`)
	stats := graph.Statistics{NodeCountsByLabel: map[string]int{"Person": 100}}
	result := Optimize(ops, stats, DefaultOptions())
	assert.NotEmpty(t, result)
}

func TestOptimizeHonorsDisabledOptions(t *testing.T) {
	ops := mustPlan(t, `MATCH (n:Person) WHERE n.age > 30 RETURN n`)
	stats := graph.Statistics{NodeCountsByLabel: map[string]int{"Person": 100}}
	opts := DefaultOptions()
	opts.FilterPushdown = false
	result := Optimize(ops, stats, opts)
	require.Len(t, result, 3)
	assert.Equal(t, planner.OpFilter, result[1].Kind)
}

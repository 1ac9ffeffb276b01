package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabs/cygraph/pkg/cypher"
)

func mustParse(t *testing.T, src string) *cypher.Statement {
	t.Helper()
	stmt, err := cypher.Parse(src)
	require.NoError(t, err)
	return stmt
}

func TestPlanSimpleMatchReturnProducesScanAndProject(t *testing.T) {
	plan, err := Plan(mustParse(t, `MATCH (n:Person) RETURN n.name AS name`))
	require.NoError(t, err)
	require.Len(t, plan.Operators, 2)
	assert.Equal(t, OpScanNodes, plan.Operators[0].Kind)
	assert.Equal(t, "n", plan.Operators[0].ScanNodes.Variable)
	assert.Equal(t, [][]string{{"Person"}}, plan.Operators[0].ScanNodes.LabelGroups)

	proj := plan.Operators[1]
	assert.Equal(t, OpProject, proj.Kind)
	assert.True(t, proj.Project.Terminal)
}

func TestPlanRelationshipPatternProducesExpandEdges(t *testing.T) {
	plan, err := Plan(mustParse(t, `MATCH (a:Person)-[r:KNOWS]->(b:Person) RETURN a, b`))
	require.NoError(t, err)

	var sawExpand bool
	for _, op := range plan.Operators {
		if op.Kind == OpExpandEdges {
			sawExpand = true
			assert.Equal(t, "a", op.ExpandEdges.SrcVar)
			assert.Equal(t, "b", op.ExpandEdges.DstVar)
			assert.Equal(t, "r", op.ExpandEdges.EdgeVar)
			assert.Equal(t, []string{"KNOWS"}, op.ExpandEdges.Types)
		}
	}
	assert.True(t, sawExpand)
}

func TestPlanVarLengthExpandDefaultsMinHopsToOne(t *testing.T) {
	plan, err := Plan(mustParse(t, `MATCH (a)-[:KNOWS*..3]->(b) RETURN b`))
	require.NoError(t, err)
	var found *VarLengthExpandOp
	for _, op := range plan.Operators {
		if op.Kind == OpVarLengthExpand {
			found = op.VarLengthExpand
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, 1, found.MinHops)
	assert.Equal(t, 3, found.MaxHops)
}

func TestPlanMultiEdgeFixedLengthPatternProducesExpandMultiHop(t *testing.T) {
	plan, err := Plan(mustParse(t, `MATCH (a:Person)-[:KNOWS]->(b)-[:KNOWS]->(c) RETURN a, b, c`))
	require.NoError(t, err)

	var found *ExpandMultiHopOp
	for _, op := range plan.Operators {
		if op.Kind == OpExpandMultiHop {
			found = op.ExpandMultiHop
		}
		assert.NotEqual(t, OpExpandEdges, op.Kind, "a two-edge fixed-length leg must not also lower to standalone ExpandEdges operators")
	}
	require.NotNil(t, found, "two fixed-length relationships in one pattern must lower to a single ExpandMultiHop chain")
	assert.Equal(t, "a", found.SrcVar)
	require.Len(t, found.Hops, 2)
	assert.Equal(t, "b", found.Hops[0].DstVar)
	assert.Equal(t, "c", found.Hops[1].DstVar)
	assert.Equal(t, []string{"KNOWS"}, found.Hops[0].Types)
}

func TestPlanPathVariableOnSingleEdgeProducesExpandMultiHop(t *testing.T) {
	plan, err := Plan(mustParse(t, `MATCH p=(a)-[:KNOWS]->(b) RETURN p`))
	require.NoError(t, err)

	var found *ExpandMultiHopOp
	for _, op := range plan.Operators {
		if op.Kind == OpExpandMultiHop {
			found = op.ExpandMultiHop
		}
	}
	require.NotNil(t, found, "a bound path variable must lower through ExpandMultiHop so a path value is actually constructed")
	assert.Equal(t, "p", found.PathVar)
	require.Len(t, found.Hops, 1)
	assert.Equal(t, "b", found.Hops[0].DstVar)
}

func TestPlanOptionalMatchWrapsLeftOuterPattern(t *testing.T) {
	plan, err := Plan(mustParse(t, `MATCH (a:Person) OPTIONAL MATCH (a)-[:KNOWS]->(b) RETURN a, b`))
	require.NoError(t, err)
	var sawOuter bool
	for _, op := range plan.Operators {
		if op.Kind == OpLeftOuterPattern {
			sawOuter = true
			assert.Contains(t, op.LeftOuterPattern.InnerVars, "b")
		}
	}
	assert.True(t, sawOuter)
}

func TestPlanRejectsDuplicateColumnAlias(t *testing.T) {
	_, err := Plan(mustParse(t, `MATCH (n) RETURN n.name AS x, n.age AS x`))
	require.Error(t, err)
	se, ok := err.(*SemanticError)
	require.True(t, ok)
	assert.Equal(t, ColumnNameConflict, se.Kind)
}

func TestPlanRejectsWithExpressionWithoutAlias(t *testing.T) {
	_, err := Plan(mustParse(t, `MATCH (n) WITH n.age + 1 RETURN n`))
	require.Error(t, err)
	se, ok := err.(*SemanticError)
	require.True(t, ok)
	assert.Equal(t, NoExpressionAlias, se.Kind)
}

func TestPlanAllowsWithBareVariableWithoutAlias(t *testing.T) {
	_, err := Plan(mustParse(t, `MATCH (n) WITH n RETURN n`))
	require.NoError(t, err)
}

func TestPlanRejectsRelationshipDisjunctionInCreate(t *testing.T) {
	_, err := Plan(mustParse(t, `MATCH (a) MATCH (b) CREATE (a)-[:KNOWS|FOLLOWS]->(b)`))
	require.Error(t, err)
	se, ok := err.(*SemanticError)
	require.True(t, ok)
	assert.Equal(t, DisjunctiveLabelsInCreate, se.Kind)
}

func TestPlanRejectsVariableTypeConflict(t *testing.T) {
	_, err := Plan(mustParse(t, `MATCH (n)-[n]->(m) RETURN n`))
	require.Error(t, err)
	se, ok := err.(*SemanticError)
	require.True(t, ok)
	assert.Equal(t, VariableTypeConflict, se.Kind)
}

func TestPlanUnionCombinesBranches(t *testing.T) {
	plan, err := Plan(mustParse(t, `MATCH (n:A) RETURN n.id AS id UNION MATCH (n:B) RETURN n.id AS id`))
	require.NoError(t, err)
	require.Len(t, plan.Operators, 1)
	assert.Equal(t, OpUnion, plan.Operators[0].Kind)
	assert.False(t, plan.Operators[0].Union.All)
}

func TestPlanCorrelatedTreatsOuterVariableAsAnchorNotScan(t *testing.T) {
	stmt := mustParse(t, `MATCH (n)-[:KNOWS]->(m) RETURN m`)
	plan, err := PlanCorrelated(stmt, []string{"n"})
	require.NoError(t, err)
	require.NotEmpty(t, plan.Operators)
	assert.Equal(t, OpExpandEdges, plan.Operators[0].Kind, "a pre-bound leading node must not be rescanned")
}

func TestPlanCallSubqueryPopulatesSubqueryOpInner(t *testing.T) {
	plan, err := Plan(mustParse(t, `MATCH (n:Person) CALL { MATCH (m:Dept) RETURN m.id AS deptId } RETURN n, deptId`))
	require.NoError(t, err)

	var sub *Operator
	for i := range plan.Operators {
		if plan.Operators[i].Kind == OpSubquery {
			sub = &plan.Operators[i]
			break
		}
	}
	require.NotNil(t, sub, "CALL {} must lower to an OpSubquery")
	require.NotEmpty(t, sub.Subquery.Inner, "CALL {} must carry its nested query as Subquery.Inner, not an empty passthrough")
	assert.Equal(t, OpScanNodes, sub.Subquery.Inner[0].Kind)
}

func TestPlanCallSubqueryCorrelatesOnOuterVariable(t *testing.T) {
	plan, err := Plan(mustParse(t, `MATCH (n:Person) CALL { MATCH (n)-[:KNOWS]->(m) RETURN m.name AS name } RETURN name`))
	require.NoError(t, err)

	var sub *Operator
	for i := range plan.Operators {
		if plan.Operators[i].Kind == OpSubquery {
			sub = &plan.Operators[i]
			break
		}
	}
	require.NotNil(t, sub)
	require.NotEmpty(t, sub.Subquery.Inner)
	assert.Equal(t, OpExpandEdges, sub.Subquery.Inner[0].Kind, "n is already bound by the outer MATCH and must anchor, not rescan")
}

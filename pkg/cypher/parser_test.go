package cypher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleMatchReturn(t *testing.T) {
	stmt, err := Parse(`MATCH (n:Person) WHERE n.age > 21 RETURN n.name AS name`)
	require.NoError(t, err)
	require.Len(t, stmt.Branches, 1)
	clauses := stmt.Branches[0].Clauses
	require.Len(t, clauses, 2)

	mc, ok := clauses[0].(*MatchClause)
	require.True(t, ok)
	require.Len(t, mc.Patterns, 1)
	require.Len(t, mc.Patterns[0].Nodes, 1)
	assert.Equal(t, "n", mc.Patterns[0].Nodes[0].Variable)
	assert.Equal(t, []string{"Person"}, mc.Patterns[0].Nodes[0].Labels)
	require.NotNil(t, mc.Where)
	assert.Equal(t, ExprBinary, mc.Where.Kind)
	assert.Equal(t, ">", mc.Where.Binary.Operator)

	rc, ok := clauses[1].(*ReturnClause)
	require.True(t, ok)
	require.Len(t, rc.Items, 1)
	assert.Equal(t, "name", rc.Items[0].Alias)
	assert.Equal(t, ExprProperty, rc.Items[0].Expression.Kind)
}

func TestParseRelationshipPatternWithDirectionAndVarLength(t *testing.T) {
	stmt, err := Parse(`MATCH (a)-[r:KNOWS*1..3]->(b) RETURN a, b`)
	require.NoError(t, err)
	mc := stmt.Branches[0].Clauses[0].(*MatchClause)
	pat := mc.Patterns[0]
	require.Len(t, pat.Edges, 1)
	rel := pat.Edges[0]
	assert.Equal(t, EdgeOutgoing, rel.Direction)
	assert.Equal(t, []string{"KNOWS"}, rel.Types)
	require.NotNil(t, rel.MinHops)
	require.NotNil(t, rel.MaxHops)
	assert.Equal(t, 1, *rel.MinHops)
	assert.Equal(t, 3, *rel.MaxHops)
}

func TestParseOptionalMatchAndIncomingDirection(t *testing.T) {
	stmt, err := Parse(`OPTIONAL MATCH (a)<-[:FOLLOWS]-(b) RETURN a`)
	require.NoError(t, err)
	mc := stmt.Branches[0].Clauses[0].(*MatchClause)
	assert.True(t, mc.Optional)
	assert.Equal(t, EdgeIncoming, mc.Patterns[0].Edges[0].Direction)
}

func TestParseCreateMergeSetRemoveDelete(t *testing.T) {
	stmt, err := Parse(`
		CREATE (n:Person {name: 'Alice', age: 30})
		MERGE (m:City {name: 'Paris'}) ON CREATE SET m.founded = 1
		SET n.age = n.age + 1, n:Admin
		REMOVE n.age, n:Admin
		DETACH DELETE n
	`)
	require.NoError(t, err)
	clauses := stmt.Branches[0].Clauses
	require.Len(t, clauses, 5)

	cc := clauses[0].(*CreateClause)
	assert.Equal(t, "Alice", cc.Patterns[0].Nodes[0].Properties["name"].Literal.S)

	mg := clauses[1].(*MergeClause)
	require.Len(t, mg.OnCreate, 1)
	assert.Equal(t, "founded", mg.OnCreate[0].Property)

	sc := clauses[2].(*SetClause)
	require.Len(t, sc.Items, 2)
	assert.Equal(t, SetProperty, sc.Items[0].Kind)
	assert.Equal(t, SetLabels, sc.Items[1].Kind)

	rc := clauses[3].(*RemoveClause)
	require.Len(t, rc.Items, 2)

	dc := clauses[4].(*DeleteClause)
	assert.True(t, dc.Detach)
	assert.Equal(t, []string{"n"}, dc.Variables)
}

func TestParseWithUnwindOrderSkipLimit(t *testing.T) {
	stmt, err := Parse(`
		UNWIND [1,2,3] AS x
		WITH x WHERE x > 1
		RETURN x ORDER BY x DESC SKIP 1 LIMIT 10
	`)
	require.NoError(t, err)
	clauses := stmt.Branches[0].Clauses
	uc := clauses[0].(*UnwindClause)
	assert.Equal(t, "x", uc.Variable)
	assert.Equal(t, ExprList, uc.Expression.Kind)

	wc := clauses[1].(*WithClause)
	require.NotNil(t, wc.Where)

	rc := clauses[2].(*ReturnClause)
	require.Len(t, rc.OrderBy, 1)
	assert.True(t, rc.OrderBy[0].Descending)
	require.NotNil(t, rc.Skip)
	require.NotNil(t, rc.Limit)
}

func TestParseUnionAll(t *testing.T) {
	stmt, err := Parse(`MATCH (n:A) RETURN n.id AS id UNION ALL MATCH (n:B) RETURN n.id AS id`)
	require.NoError(t, err)
	require.Len(t, stmt.Branches, 2)
	require.Len(t, stmt.UnionAll, 1)
	assert.True(t, stmt.UnionAll[0])
}

func TestParseCaseExpression(t *testing.T) {
	stmt, err := Parse(`RETURN CASE WHEN 1 < 2 THEN 'yes' ELSE 'no' END AS result`)
	require.NoError(t, err)
	rc := stmt.Branches[0].Clauses[0].(*ReturnClause)
	expr := rc.Items[0].Expression
	require.Equal(t, ExprCase, expr.Kind)
	require.Len(t, expr.Case.Whens, 1)
	require.NotNil(t, expr.Case.Default)
}

func TestParseListComprehensionAndQuantifier(t *testing.T) {
	stmt, err := Parse(`RETURN [x IN range WHERE x > 0 | x * 2] AS doubled, ALL(y IN items WHERE y.active) AS allActive`)
	require.NoError(t, err)
	rc := stmt.Branches[0].Clauses[0].(*ReturnClause)
	comp := rc.Items[0].Expression
	require.Equal(t, ExprListComprehension, comp.Kind)
	assert.Equal(t, "x", comp.Comprehension.Variable)
	require.NotNil(t, comp.Comprehension.Where)
	require.NotNil(t, comp.Comprehension.Projection)

	quant := rc.Items[1].Expression
	require.Equal(t, ExprQuantifier, quant.Kind)
	assert.Equal(t, QuantAll, quant.Quantifier.Kind)
}

func TestParseExistsSubquery(t *testing.T) {
	stmt, err := Parse(`MATCH (n:Person) WHERE EXISTS { MATCH (n)-[:KNOWS]->(m) } RETURN n`)
	require.NoError(t, err)
	mc := stmt.Branches[0].Clauses[0].(*MatchClause)
	require.Equal(t, ExprSubquery, mc.Where.Kind)
	assert.Equal(t, SubqueryExists, mc.Where.Subquery.Kind)
}

func TestParseFunctionCallAndDistinct(t *testing.T) {
	stmt, err := Parse(`RETURN count(DISTINCT n.name) AS total`)
	require.NoError(t, err)
	rc := stmt.Branches[0].Clauses[0].(*ReturnClause)
	fn := rc.Items[0].Expression
	require.Equal(t, ExprFunction, fn.Kind)
	assert.Equal(t, "count", fn.Function.Name)
	assert.True(t, fn.Function.Distinct)
}

func TestParseOperatorPrecedence(t *testing.T) {
	stmt, err := Parse(`RETURN 1 + 2 * 3 AS v`)
	require.NoError(t, err)
	rc := stmt.Branches[0].Clauses[0].(*ReturnClause)
	top := rc.Items[0].Expression
	require.Equal(t, ExprBinary, top.Kind)
	assert.Equal(t, "+", top.Binary.Operator)
	require.Equal(t, ExprBinary, top.Binary.Right.Kind)
	assert.Equal(t, "*", top.Binary.Right.Binary.Operator)
}

func TestParseRejectsTrailingGarbage(t *testing.T) {
	_, err := Parse(`RETURN 1 )`)
	assert.Error(t, err)
}

package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/planner"
)

// run parses, plans, and executes src against ex with no params and
// auto-commit on, the shape every integration-style test below shares.
func run(t *testing.T, ex *Executor, src string) *Result {
	t.Helper()
	stmt, err := cypher.Parse(src)
	require.NoError(t, err)
	plan, err := planner.Plan(stmt)
	require.NoError(t, err)
	result, err := ex.Execute(plan.Operators, nil, true)
	require.NoError(t, err)
	return result
}

func runErr(t *testing.T, ex *Executor, src string) error {
	t.Helper()
	stmt, err := cypher.Parse(src)
	require.NoError(t, err)
	plan, err := planner.Plan(stmt)
	require.NoError(t, err)
	_, err = ex.Execute(plan.Operators, nil, true)
	return err
}

func newExecutor() *Executor {
	return New(graph.New(), nil, nil)
}

func TestCreateThenMatchRoundTrips(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (n:Person {name: "Ada", age: 36})`)

	result := run(t, ex, `MATCH (n:Person) RETURN n.name AS name, n.age AS age`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Ada", result.Rows[0]["name"].AsString())
	assert.Equal(t, int64(36), result.Rows[0]["age"].AsInt())
}

func TestCreateRelationshipAndExpand(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (a:Person {name: "Ada"})-[:KNOWS]->(b:Person {name: "Bea"})`)

	result := run(t, ex, `MATCH (a:Person)-[:KNOWS]->(b:Person) RETURN a.name AS a, b.name AS b`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Ada", result.Rows[0]["a"].AsString())
	assert.Equal(t, "Bea", result.Rows[0]["b"].AsString())
}

func TestMultiEdgeFixedLengthPatternBindsPath(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (a:Person {name: "Ada"})-[:KNOWS]->(b:Person {name: "Bea"})-[:KNOWS]->(c:Person {name: "Cid"})`)

	result := run(t, ex, `MATCH p=(a:Person {name: "Ada"})-[:KNOWS]->(b)-[:KNOWS]->(c) RETURN b.name AS b, c.name AS c, length(p) AS l`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Bea", result.Rows[0]["b"].AsString())
	assert.Equal(t, "Cid", result.Rows[0]["c"].AsString())
	assert.Equal(t, int64(2), result.Rows[0]["l"].AsInt())
}

func TestMultiEdgeFixedLengthPatternIsCycleFree(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (a:Person {name: "Ada"})-[:KNOWS]->(b:Person {name: "Bea"})`)
	run(t, ex, `MATCH (a:Person {name: "Ada"}), (b:Person {name: "Bea"}) CREATE (b)-[:KNOWS]->(a)`)

	result := run(t, ex, `MATCH (a:Person {name: "Ada"})-[:KNOWS]->(b)-[:KNOWS]->(c) RETURN c.name AS c`)
	assert.Empty(t, result.Rows, "the only 2-hop walk from Ada loops straight back to Ada; ExpandMultiHop's cycle-free rule must exclude a path that revisits its own start node")
}

func TestPathVariableOnSingleEdgeBindsPathValue(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person {name: "Ada"})-[:KNOWS]->(:Person {name: "Bea"})`)

	result := run(t, ex, `MATCH p=(a:Person)-[:KNOWS]->(b:Person) RETURN length(p) AS l`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, int64(1), result.Rows[0]["l"].AsInt())
}

func TestFilterDropsNonMatchingRows(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person {name: "Ada", age: 36})`)
	run(t, ex, `CREATE (:Person {name: "Bea", age: 12})`)

	result := run(t, ex, `MATCH (n:Person) WHERE n.age > 18 RETURN n.name AS name`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Ada", result.Rows[0]["name"].AsString())
}

func TestOptionalMatchBindsNullOnNoMatch(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person {name: "Ada"})`)

	result := run(t, ex, `MATCH (n:Person) OPTIONAL MATCH (n)-[:KNOWS]->(m) RETURN n.name AS name, m`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Ada", result.Rows[0]["name"].AsString())
	assert.True(t, result.Rows[0]["m"].IsNull())
}

func TestUnwindFansOutOnePerListElement(t *testing.T) {
	ex := newExecutor()
	result := run(t, ex, `UNWIND [1, 2, 3] AS x RETURN x`)
	require.Len(t, result.Rows, 3)
	assert.Equal(t, int64(1), result.Rows[0]["x"].AsInt())
	assert.Equal(t, int64(3), result.Rows[2]["x"].AsInt())
}

func TestCountStarOverEmptyInputReturnsZero(t *testing.T) {
	ex := newExecutor()
	result := run(t, ex, `MATCH (n:Person) RETURN count(*) AS total`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, int64(0), result.Rows[0]["total"].AsInt())
}

func TestAggregationGroupsByNonAggregateItems(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person {city: "NYC", age: 30})`)
	run(t, ex, `CREATE (:Person {city: "NYC", age: 40})`)
	run(t, ex, `CREATE (:Person {city: "LA", age: 50})`)

	result := run(t, ex, `MATCH (n:Person) RETURN n.city AS city, count(*) AS total ORDER BY city`)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "LA", result.Rows[0]["city"].AsString())
	assert.Equal(t, int64(1), result.Rows[0]["total"].AsInt())
	assert.Equal(t, "NYC", result.Rows[1]["city"].AsString())
	assert.Equal(t, int64(2), result.Rows[1]["total"].AsInt())
}

func TestOrderBySkipLimit(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person {age: 30})`)
	run(t, ex, `CREATE (:Person {age: 10})`)
	run(t, ex, `CREATE (:Person {age: 20})`)

	result := run(t, ex, `MATCH (n:Person) RETURN n.age AS age ORDER BY age SKIP 1 LIMIT 1`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, int64(20), result.Rows[0]["age"].AsInt())
}

func TestSetPropertyAndRemoveLabel(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person:Employee {name: "Ada"})`)

	run(t, ex, `MATCH (n:Person) SET n.title = "Engineer" REMOVE n:Employee`)

	result := run(t, ex, `MATCH (n:Person) RETURN n.title AS title, labels(n) AS labels`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Engineer", result.Rows[0]["title"].AsString())
	labels := result.Rows[0]["labels"].AsList()
	require.Len(t, labels, 1)
	assert.Equal(t, "Person", labels[0].AsString())
}

func TestDeleteWithoutDetachRejectsConnectedNode(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person {name: "Ada"})-[:KNOWS]->(:Person {name: "Bea"})`)

	err := runErr(t, ex, `MATCH (n:Person {name: "Ada"}) DELETE n`)
	require.Error(t, err)
	var target *CannotDeleteNodeWithRelationships
	assert.ErrorAs(t, err, &target)
}

func TestDetachDeleteRemovesIncidentEdges(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person {name: "Ada"})-[:KNOWS]->(:Person {name: "Bea"})`)

	run(t, ex, `MATCH (n:Person {name: "Ada"}) DETACH DELETE n`)

	result := run(t, ex, `MATCH (n:Person) RETURN n.name AS name`)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, "Bea", result.Rows[0]["name"].AsString())
}

func TestMergeCreatesOnNoMatchThenMatchesOnSecondRun(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `MERGE (n:Person {name: "Ada"}) ON CREATE SET n.created = true`)
	run(t, ex, `MERGE (n:Person {name: "Ada"}) ON MATCH SET n.seen = true`)

	result := run(t, ex, `MATCH (n:Person) RETURN n.created AS created, n.seen AS seen`)
	require.Len(t, result.Rows, 1)
	assert.True(t, result.Rows[0]["created"].AsBool())
	assert.True(t, result.Rows[0]["seen"].AsBool())
}

func TestUnionDeduplicatesByDefault(t *testing.T) {
	ex := newExecutor()
	result := run(t, ex, `RETURN 1 AS x UNION RETURN 1 AS x`)
	assert.Len(t, result.Rows, 1)
}

func TestUnionAllKeepsDuplicates(t *testing.T) {
	ex := newExecutor()
	result := run(t, ex, `RETURN 1 AS x UNION ALL RETURN 1 AS x`)
	assert.Len(t, result.Rows, 2)
}

func TestFailedExecuteRollsBackGraph(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person {name: "Ada"})-[:KNOWS]->(:Person {name: "Bea"})`)

	before := ex.g.Statistics().TotalNodes
	err := runErr(t, ex, `MATCH (n:Person {name: "Ada"}) CREATE (n)-[:KNOWS]->(:Person {name: "Cid"}) DELETE n`)
	require.Error(t, err)
	assert.Equal(t, before, ex.g.Statistics().TotalNodes)
}

func TestExistsSubqueryExpression(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person {name: "Ada"})-[:KNOWS]->(:Person {name: "Bea"})`)
	run(t, ex, `CREATE (:Person {name: "Cid"})`)

	result := run(t, ex, `MATCH (n:Person) RETURN n.name AS name, EXISTS { MATCH (n)-[:KNOWS]->() } AS hasFriend ORDER BY name`)
	require.Len(t, result.Rows, 3)
	assert.True(t, result.Rows[0]["hasFriend"].AsBool())  // Ada
	assert.False(t, result.Rows[1]["hasFriend"].AsBool()) // Bea
	assert.False(t, result.Rows[2]["hasFriend"].AsBool()) // Cid
}

func TestCallSubqueryRunsCorrelatedPerRow(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person {name: "Ada"})-[:KNOWS]->(:Person {name: "Bea"})`)
	run(t, ex, `CREATE (:Person {name: "Cid"})`)

	result := run(t, ex, `MATCH (n:Person) CALL { MATCH (n)-[:KNOWS]->(f) RETURN f.name AS friend } RETURN n.name AS name, friend ORDER BY name`)
	require.Len(t, result.Rows, 1, "Cid has no KNOWS edge so CALL {} yields zero rows for that input, per the LeftOuterPattern-less inner-join semantics of Subquery")
	assert.Equal(t, "Ada", result.Rows[0]["name"].AsString())
	assert.Equal(t, "Bea", result.Rows[0]["friend"].AsString())
}

func TestDistinctDeduplicatesProjectedRows(t *testing.T) {
	ex := newExecutor()
	run(t, ex, `CREATE (:Person {city: "NYC"})`)
	run(t, ex, `CREATE (:Person {city: "NYC"})`)
	run(t, ex, `CREATE (:Person {city: "LA"})`)

	result := run(t, ex, `MATCH (n:Person) RETURN DISTINCT n.city AS city ORDER BY city`)
	require.Len(t, result.Rows, 2)
	assert.Equal(t, "LA", result.Rows[0]["city"].AsString())
	assert.Equal(t, "NYC", result.Rows[1]["city"].AsString())
}

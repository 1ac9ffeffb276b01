package graphdb

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabs/cygraph/pkg/value"
)

func TestExecuteCreateThenMatchRoundTrips(t *testing.T) {
	h := New()
	defer h.Close()

	_, err := h.Execute(`CREATE (:Person {name: "Ada", age: 36})`, nil)
	require.NoError(t, err)

	result, err := h.Execute(`MATCH (n:Person) RETURN n.name AS name, n.age AS age`, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, value.String("Ada"), result.Rows[0]["name"])
	assert.Equal(t, value.Int(36), result.Rows[0]["age"])
}

func TestExecuteWithParams(t *testing.T) {
	h := New()
	defer h.Close()

	_, err := h.Execute(`CREATE (:Person {name: $name})`, map[string]any{"name": "Grace"})
	require.NoError(t, err)

	result, err := h.Execute(`MATCH (n:Person) RETURN n.name AS name`, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, value.String("Grace"), result.Rows[0]["name"])
}

func TestExecuteRollsBackOnError(t *testing.T) {
	h := New()
	defer h.Close()

	_, err := h.Execute(`CREATE (:Person {name: "Ada"})-[:KNOWS]->(:Person {name: "Grace"})`, nil)
	require.NoError(t, err)

	_, err = h.Execute(`MATCH (n:Person {name: "Ada"}) DELETE n`, nil)
	require.Error(t, err, "plain DELETE must reject a node with an incident relationship")

	result, err := h.Execute(`MATCH (n:Person) RETURN n.name AS name`, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 2, "a failed statement must not leave a partial mutation behind")
}

func TestExplicitTransactionCommit(t *testing.T) {
	h := New()
	defer h.Close()

	require.NoError(t, h.Begin())
	_, err := h.Execute(`CREATE (:Person {name: "Ada"})`, nil)
	require.NoError(t, err)
	_, err = h.Execute(`CREATE (:Person {name: "Grace"})`, nil)
	require.NoError(t, err)
	require.NoError(t, h.Commit())

	result, err := h.Execute(`MATCH (n:Person) RETURN n.name AS name`, nil)
	require.NoError(t, err)
	assert.Len(t, result.Rows, 2)
}

func TestExplicitTransactionRollback(t *testing.T) {
	h := New()
	defer h.Close()

	_, err := h.Execute(`CREATE (:Person {name: "Ada"})`, nil)
	require.NoError(t, err)

	require.NoError(t, h.Begin())
	_, err = h.Execute(`CREATE (:Person {name: "Grace"})`, nil)
	require.NoError(t, err)
	require.NoError(t, h.Rollback())

	result, err := h.Execute(`MATCH (n:Person) RETURN n.name AS name`, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, value.String("Ada"), result.Rows[0]["name"])
}

func TestClearResetsGraphAndFunctions(t *testing.T) {
	h := New()
	defer h.Close()

	_, err := h.Execute(`CREATE (:Person {name: "Ada"})`, nil)
	require.NoError(t, err)
	h.RegisterFunction("triple", func(args []any) (any, error) {
		n, _ := args[0].(int64)
		return n * 3, nil
	})

	require.NoError(t, h.Clear())

	result, err := h.Execute(`MATCH (n) RETURN n`, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Rows)

	_, err = h.Execute(`RETURN triple(2) AS x`, nil)
	require.Error(t, err, "Clear must drop host-registered functions along with data")
}

func TestCloneIsIndependentOfSource(t *testing.T) {
	h := New()
	defer h.Close()

	_, err := h.Execute(`CREATE (:Person {name: "Ada"})`, nil)
	require.NoError(t, err)

	clone, err := h.Clone()
	require.NoError(t, err)
	defer clone.Close()

	_, err = clone.Execute(`CREATE (:Person {name: "Grace"})`, nil)
	require.NoError(t, err)

	original, err := h.Execute(`MATCH (n:Person) RETURN n.name AS name`, nil)
	require.NoError(t, err)
	assert.Len(t, original.Rows, 1, "mutating the clone must not affect the source handle")
}

func TestCreateNodeAndRelationshipBypassCypher(t *testing.T) {
	h := New()
	defer h.Close()

	aliceID, err := h.CreateNode([]string{"Person"}, map[string]any{"name": "Alice"})
	require.NoError(t, err)
	bobID, err := h.CreateNode([]string{"Person"}, map[string]any{"name": "Bob"})
	require.NoError(t, err)

	_, err = h.CreateRelationship(aliceID, bobID, "KNOWS", map[string]any{"since": int64(2020)})
	require.NoError(t, err)

	result, err := h.Execute(`MATCH (a:Person)-[r:KNOWS]->(b:Person) RETURN a.name AS a, b.name AS b, r.since AS since`, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, value.String("Alice"), result.Rows[0]["a"])
	assert.Equal(t, value.String("Bob"), result.Rows[0]["b"])
	assert.Equal(t, value.Int(2020), result.Rows[0]["since"])
}

func TestCreateNodeLiftsPointShapedProperties(t *testing.T) {
	h := New()
	defer h.Close()

	id, err := h.CreateNode([]string{"Place"}, map[string]any{
		"location": map[string]any{"latitude": 51.5, "longitude": -0.1},
	})
	require.NoError(t, err)

	result, err := h.Execute(`MATCH (n:Place) RETURN n.location AS loc`, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, value.KindPoint, result.Rows[0]["loc"].Kind())
	_ = id
}

func TestRegisterFunctionIsCallableFromCypher(t *testing.T) {
	h := New()
	defer h.Close()

	h.RegisterFunction("double", func(args []any) (any, error) {
		n, ok := args[0].(int64)
		if !ok {
			return nil, fmt.Errorf("expected int64")
		}
		return n * 2, nil
	})

	result, err := h.Execute(`RETURN double(21) AS answer`, nil)
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	assert.Equal(t, value.Int(42), result.Rows[0]["answer"])
}

func TestCloneRejectsDurableBackedHandle(t *testing.T) {
	h, err := Open(t.TempDir())
	require.NoError(t, err)
	defer h.Close()

	_, err = h.Clone()
	require.Error(t, err)
}

package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabs/cygraph/pkg/value"
)

func props(pairs ...any) map[string]value.Value {
	m := make(map[string]value.Value)
	for i := 0; i < len(pairs); i += 2 {
		m[pairs[i].(string)] = pairs[i+1].(value.Value)
	}
	return m
}

func TestAddNodeMaintainsLabelIndexAndStats(t *testing.T) {
	g := New()
	a := g.NextNodeID()
	g.AddNode(&Node{ID: a, Labels: []string{"Person", "User"}, Properties: props("name", value.String("Alice"))})

	stats := g.Statistics()
	assert.Equal(t, 1, stats.TotalNodes)
	assert.Equal(t, 1, stats.NodeCountsByLabel["Person"])
	assert.Equal(t, 1, stats.NodeCountsByLabel["User"])
	assert.Contains(t, g.NodesByLabel("Person"), a)
}

func TestAddNodeReplaceUpdatesLabelIndex(t *testing.T) {
	g := New()
	id := g.NextNodeID()
	g.AddNode(&Node{ID: id, Labels: []string{"Person"}, Properties: nil})
	g.AddNode(&Node{ID: id, Labels: []string{"Company"}, Properties: nil})

	assert.Empty(t, g.NodesByLabel("Person"))
	assert.Contains(t, g.NodesByLabel("Company"), id)
	assert.Equal(t, 1, g.Statistics().TotalNodes)
}

func TestAddEdgeRequiresExistingEndpoints(t *testing.T) {
	g := New()
	a := g.NextNodeID()
	g.AddNode(&Node{ID: a})
	e := &Edge{ID: g.NextEdgeID(), Type: "KNOWS", Src: a, Dst: NodeID(999)}
	err := g.AddEdge(e)
	assert.ErrorIs(t, err, ErrDanglingEdge)
}

func TestAdjacencyInsertionOrderPreserved(t *testing.T) {
	g := New()
	a := g.NextNodeID()
	b := g.NextNodeID()
	g.AddNode(&Node{ID: a})
	g.AddNode(&Node{ID: b})

	var ids []EdgeID
	for i := 0; i < 5; i++ {
		e := &Edge{ID: g.NextEdgeID(), Type: "FOLLOWS", Src: a, Dst: b}
		require.NoError(t, g.AddEdge(e))
		ids = append(ids, e.ID)
	}

	assert.Equal(t, ids, g.Outgoing(a))
	assert.Equal(t, ids, g.Incoming(b))
}

func TestAvgDegreeByType(t *testing.T) {
	g := New()
	a := g.NextNodeID()
	b := g.NextNodeID()
	c := g.NextNodeID()
	g.AddNode(&Node{ID: a})
	g.AddNode(&Node{ID: b})
	g.AddNode(&Node{ID: c})

	require.NoError(t, g.AddEdge(&Edge{ID: g.NextEdgeID(), Type: "FOLLOWS", Src: a, Dst: b}))
	require.NoError(t, g.AddEdge(&Edge{ID: g.NextEdgeID(), Type: "FOLLOWS", Src: a, Dst: c}))

	stats := g.Statistics()
	assert.Equal(t, 2.0, stats.AvgDegreeByType["FOLLOWS"])
}

func TestRemoveEdgeUpdatesAdjacencyAndStats(t *testing.T) {
	g := New()
	a := g.NextNodeID()
	b := g.NextNodeID()
	g.AddNode(&Node{ID: a})
	g.AddNode(&Node{ID: b})
	e := &Edge{ID: g.NextEdgeID(), Type: "FOLLOWS", Src: a, Dst: b}
	require.NoError(t, g.AddEdge(e))

	require.NoError(t, g.RemoveEdge(e.ID))
	assert.Empty(t, g.Outgoing(a))
	assert.Empty(t, g.Incoming(b))
	assert.Equal(t, 0, g.Statistics().TotalEdges)
	assert.NotContains(t, g.Statistics().EdgeCountsByType, "FOLLOWS")
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	g := New()
	a := g.NextNodeID()
	b := g.NextNodeID()
	g.AddNode(&Node{ID: a, Labels: []string{"Person"}, Properties: props("name", value.String("Alice"))})
	g.AddNode(&Node{ID: b, Labels: []string{"Person"}})
	e := &Edge{ID: g.NextEdgeID(), Type: "KNOWS", Src: a, Dst: b}
	require.NoError(t, g.AddEdge(e))

	snap := g.Snapshot()

	// Mutate after the snapshot.
	c := g.NextNodeID()
	g.AddNode(&Node{ID: c, Labels: []string{"Company"}})
	require.NoError(t, g.RemoveEdge(e.ID))

	g.Restore(snap)

	assert.Equal(t, 2, g.Statistics().TotalNodes)
	assert.Equal(t, 1, g.Statistics().TotalEdges)
	assert.Contains(t, g.Outgoing(a), e.ID)
	_, err := g.GetNode(c)
	assert.ErrorIs(t, err, ErrNodeNotFound)
}

func TestObserveIDsRaisesButNeverLowersCounters(t *testing.T) {
	g := New()
	a := g.NextNodeID()
	g.AddNode(&Node{ID: a, Labels: []string{"Person"}})

	// Simulate loading a backend-persisted node with a higher id than
	// anything handed out by NextNodeID so far.
	g.AddNode(&Node{ID: NodeID(50), Labels: []string{"Company"}})
	g.ObserveIDs(NodeID(50), EdgeID(7))

	next := g.NextNodeID()
	assert.Greater(t, int64(next), int64(50))

	// A lower observation must not roll the counter backwards.
	g.ObserveIDs(NodeID(1), EdgeID(1))
	assert.GreaterOrEqual(t, int64(g.NextNodeID()), int64(51))
}

func TestAllEdgeIDsReturnsEveryEdge(t *testing.T) {
	g := New()
	a := g.NextNodeID()
	g.AddNode(&Node{ID: a, Labels: []string{"Person"}})
	b := g.NextNodeID()
	g.AddNode(&Node{ID: b, Labels: []string{"Person"}})

	e1 := &Edge{ID: g.NextEdgeID(), Type: "KNOWS", Src: a, Dst: b}
	require.NoError(t, g.AddEdge(e1))
	e2 := &Edge{ID: g.NextEdgeID(), Type: "KNOWS", Src: b, Dst: a}
	require.NoError(t, g.AddEdge(e2))

	assert.ElementsMatch(t, []EdgeID{e1.ID, e2.ID}, g.AllEdgeIDs())
}

func TestNodeToValueIsIndependentCopy(t *testing.T) {
	g := New()
	a := g.NextNodeID()
	n := &Node{ID: a, Labels: []string{"Person"}, Properties: props("name", value.String("Alice"))}
	g.AddNode(n)

	nv := n.ToValue()
	n.Properties["name"] = value.String("Bob")
	assert.Equal(t, "Alice", nv.Properties["name"].AsString())
}

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/value"
)

func newTestBackend(t *testing.T) *BadgerBackend {
	t.Helper()
	b, err := OpenBadgerBackend(BadgerOptions{DataDir: t.TempDir(), InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func TestSaveLoadNodeRoundTrip(t *testing.T) {
	b := newTestBackend(t)

	n := &graph.Node{
		ID:     1,
		Labels: []string{"Person", "User"},
		Properties: map[string]value.Value{
			"name": value.String("Alice"),
			"age":  value.Int(30),
		},
	}
	require.NoError(t, b.SaveNode(n))
	require.NoError(t, b.Commit())

	nodes, err := b.LoadNodes()
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, n.ID, nodes[0].ID)
	assert.ElementsMatch(t, n.Labels, nodes[0].Labels)
	assert.Equal(t, "Alice", nodes[0].Properties["name"].AsString())
	assert.Equal(t, int64(30), nodes[0].Properties["age"].AsInt())
}

func TestWritesNotVisibleBeforeCommit(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.SaveNode(&graph.Node{ID: 1, Labels: []string{"Person"}}))

	nodes, err := b.LoadNodes()
	require.NoError(t, err)
	assert.Empty(t, nodes, "uncommitted writes must not be visible to Load*")

	require.NoError(t, b.Commit())
	nodes, err = b.LoadNodes()
	require.NoError(t, err)
	assert.Len(t, nodes, 1)
}

func TestAdjacencyPersistsInsertionOrder(t *testing.T) {
	b := newTestBackend(t)

	require.NoError(t, b.SaveAdjacencyOut(1, []graph.EdgeID{3, 1, 2}))
	require.NoError(t, b.Commit())

	out, err := b.LoadAdjacencyOut()
	require.NoError(t, err)
	assert.Equal(t, []graph.EdgeID{3, 1, 2}, out[1])
}

func TestStatisticsRoundTrip(t *testing.T) {
	b := newTestBackend(t)

	stats := graph.Statistics{
		TotalNodes:        2,
		TotalEdges:        1,
		NodeCountsByLabel: map[string]int{"Person": 2},
		EdgeCountsByType:  map[string]int{"KNOWS": 1},
		AvgDegreeByType:   map[string]float64{"KNOWS": 0.5},
	}
	require.NoError(t, b.SaveStatistics(stats))
	require.NoError(t, b.Commit())

	loaded, err := b.LoadStatistics()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, stats.TotalNodes, loaded.TotalNodes)
	assert.Equal(t, stats.NodeCountsByLabel, loaded.NodeCountsByLabel)
	assert.Equal(t, stats.AvgDegreeByType, loaded.AvgDegreeByType)
}

func TestLoadStatisticsNilOnEmptyDB(t *testing.T) {
	b := newTestBackend(t)
	loaded, err := b.LoadStatistics()
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestCloseIsIdempotentAfterCommit(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.SaveNode(&graph.Node{ID: 1}))
	require.NoError(t, b.Commit())
	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
}

package interchange

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/value"
)

func TestValueRoundTripPreservesKind(t *testing.T) {
	cases := []value.Value{
		value.Null,
		value.Int(7),
		value.Float(7.0),
		value.String("hi"),
		value.Bool(true),
		value.List([]value.Value{value.Int(1), value.Null}),
		value.Map(map[string]value.Value{"a": value.Int(1)}),
	}
	for _, v := range cases {
		tv, err := EncodeValue(v)
		require.NoError(t, err)
		back, err := DecodeValue(tv)
		require.NoError(t, err)
		assert.Equal(t, v.Kind(), back.Kind(), "int must not become float across JSON round trip")
	}
}

func TestDocumentExportImportRoundTrip(t *testing.T) {
	nodes := []*graph.Node{
		{ID: 1, Labels: []string{"Person"}, Properties: map[string]value.Value{"name": value.String("Alice")}},
		{ID: 2, Labels: []string{"Person"}, Properties: map[string]value.Value{"name": value.String("Bob")}},
	}
	edges := []*graph.Edge{
		{ID: 1, Type: "KNOWS", Src: 1, Dst: 2, Properties: map[string]value.Value{"since": value.Int(2020)}},
	}

	doc, err := Export(nodes, edges)
	require.NoError(t, err)
	assert.True(t, doc.Directed)

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var reparsed Document
	require.NoError(t, json.Unmarshal(raw, &reparsed))

	gotNodes, gotEdges, err := Import(&reparsed)
	require.NoError(t, err)
	require.Len(t, gotNodes, 2)
	require.Len(t, gotEdges, 1)
	assert.Equal(t, "KNOWS", gotEdges[0].Type)
	assert.Equal(t, int64(2020), gotEdges[0].Properties["since"].AsInt())
}

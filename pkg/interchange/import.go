package interchange

import (
	"fmt"
	"strconv"

	"github.com/cypherlabs/cygraph/pkg/graph"
)

// Import converts a Document back into Graph nodes/edges, for a fresh
// graph.Graph the caller then inserts them into via AddNode/AddEdge.
func Import(doc *Document) ([]*graph.Node, []*graph.Edge, error) {
	nodes := make([]*graph.Node, 0, len(doc.Nodes))
	for _, nd := range doc.Nodes {
		id, err := strconv.ParseInt(nd.ID, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("interchange: node id %q: %w", nd.ID, err)
		}
		props, err := DecodeProperties(nd.Properties)
		if err != nil {
			return nil, nil, err
		}
		nodes = append(nodes, &graph.Node{ID: graph.NodeID(id), Labels: nd.Labels, Properties: props})
	}

	edges := make([]*graph.Edge, 0, len(doc.Edges))
	for _, ed := range doc.Edges {
		id, err := strconv.ParseInt(ed.ID, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("interchange: edge id %q: %w", ed.ID, err)
		}
		src, err := strconv.ParseInt(ed.Source, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("interchange: edge source %q: %w", ed.Source, err)
		}
		dst, err := strconv.ParseInt(ed.Target, 10, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("interchange: edge target %q: %w", ed.Target, err)
		}
		props, err := DecodeProperties(ed.Properties)
		if err != nil {
			return nil, nil, err
		}
		edges = append(edges, &graph.Edge{
			ID:         graph.EdgeID(id),
			Type:       ed.Type,
			Src:        graph.NodeID(src),
			Dst:        graph.NodeID(dst),
			Properties: props,
		})
	}
	return nodes, edges, nil
}

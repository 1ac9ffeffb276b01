package graphdb

import (
	"fmt"

	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/interchange"
)

// Stats reports the live graph's running counters, the same Statistics the
// optimizer plans against.
func (h *Handle) Stats() graph.Statistics {
	return h.g.Statistics()
}

// Export snapshots the current graph into an interchange Document, for a
// caller that wants to write it out as JSON (cmd/graphdb's `export`
// subcommand does exactly this).
func (h *Handle) Export() (*interchange.Document, error) {
	nodeIDs := h.g.AllNodeIDs()
	nodes := make([]*graph.Node, 0, len(nodeIDs))
	for _, id := range nodeIDs {
		n, err := h.g.GetNode(id)
		if err != nil {
			return nil, fmt.Errorf("graphdb: export: %w", err)
		}
		nodes = append(nodes, n)
	}

	edgeIDs := h.g.AllEdgeIDs()
	edges := make([]*graph.Edge, 0, len(edgeIDs))
	for _, id := range edgeIDs {
		e, err := h.g.GetEdge(id)
		if err != nil {
			return nil, fmt.Errorf("graphdb: export: %w", err)
		}
		edges = append(edges, e)
	}

	return interchange.Export(nodes, edges)
}

// Import merges doc's nodes and edges into the live graph, write-through
// to the durable backend if one is attached. Nodes are added before edges
// since AddEdge requires both endpoints to already exist; a document whose
// edges reference ids outside the document itself (merging into an
// already-populated graph) still works as long as those ids already exist
// in this graph.
func (h *Handle) Import(doc *interchange.Document) (nodesImported, edgesImported int, err error) {
	nodes, edges, err := interchange.Import(doc)
	if err != nil {
		return 0, 0, err
	}

	snap := h.g.Snapshot()
	var maxNode graph.NodeID
	var maxEdge graph.EdgeID
	for _, n := range nodes {
		h.g.AddNode(n)
		if n.ID > maxNode {
			maxNode = n.ID
		}
		if h.backend != nil {
			if serr := h.backend.SaveNode(n); serr != nil {
				h.g.Restore(snap)
				return 0, 0, fmt.Errorf("graphdb: import: saving node %d: %w", n.ID, serr)
			}
		}
	}
	for _, e := range edges {
		if aerr := h.g.AddEdge(e); aerr != nil {
			h.g.Restore(snap)
			return 0, 0, fmt.Errorf("graphdb: import: %w", aerr)
		}
		if e.ID > maxEdge {
			maxEdge = e.ID
		}
		if h.backend != nil {
			if serr := h.backend.SaveEdge(e); serr != nil {
				h.g.Restore(snap)
				return 0, 0, fmt.Errorf("graphdb: import: saving edge %d: %w", e.ID, serr)
			}
		}
	}
	h.g.ObserveIDs(maxNode, maxEdge)

	if h.backend != nil {
		if cerr := h.backend.Commit(); cerr != nil {
			h.g.Restore(snap)
			return 0, 0, fmt.Errorf("graphdb: import: commit: %w", cerr)
		}
	}
	return len(nodes), len(edges), nil
}

package graphdb

import (
	"fmt"

	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/storage"
)

// clearBackend empties a durable backend in place: the Backend contract
// has no bulk-wipe primitive, so this deletes every currently-loadable
// node and edge individually, resets statistics, and commits. Nodes are
// deleted after edges so no delete observes a dangling reference, though
// BadgerBackend's DeleteNode does not itself validate that.
func clearBackend(backend storage.Backend) error {
	edges, err := backend.LoadEdges()
	if err != nil {
		return fmt.Errorf("loading edges: %w", err)
	}
	for _, e := range edges {
		if err := backend.DeleteEdge(e.ID); err != nil {
			return fmt.Errorf("deleting edge %d: %w", e.ID, err)
		}
	}

	nodes, err := backend.LoadNodes()
	if err != nil {
		return fmt.Errorf("loading nodes: %w", err)
	}
	for _, n := range nodes {
		if err := backend.DeleteNode(n.ID); err != nil {
			return fmt.Errorf("deleting node %d: %w", n.ID, err)
		}
	}

	if err := backend.SaveStatistics(graph.Statistics{}); err != nil {
		return fmt.Errorf("resetting statistics: %w", err)
	}
	return backend.Commit()
}

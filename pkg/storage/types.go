// Package storage implements the durable backend contract (C3) and the
// binary graph-data serialization (C4, responsibility 1) it runs on. A
// Backend persists nodes, edges, adjacency, and statistics; pkg/graphdb and
// pkg/executor read and write through it, while the graph store in
// pkg/graph never touches it.
//
// Writes are buffered: everything saved through a Backend becomes visible
// to the next Load* call only after Commit, matching badger's own
// transaction semantics (a Backend's pending writes live inside one
// badger.Txn until commit).
package storage

import (
	"errors"

	"github.com/cypherlabs/cygraph/pkg/graph"
)

// Sentinel errors, following the teacher's ErrNotFound/ErrAlreadyExists
// naming convention in pkg/storage/types.go.
var (
	ErrClosed      = errors.New("storage: backend closed")
	ErrNotFound    = errors.New("storage: not found")
	ErrTransaction = errors.New("storage: transaction aborted")
)

// Backend is the durable persistence contract a Graph can be backed by.
// When a handle is opened without a path the backend is absent and the
// graph runs purely in memory.
type Backend interface {
	SaveNode(n *graph.Node) error
	SaveEdge(e *graph.Edge) error
	DeleteNode(id graph.NodeID) error
	DeleteEdge(id graph.EdgeID) error

	LoadNodes() ([]*graph.Node, error)
	LoadEdges() ([]*graph.Edge, error)
	LoadAdjacencyOut() (map[graph.NodeID][]graph.EdgeID, error)
	LoadAdjacencyIn() (map[graph.NodeID][]graph.EdgeID, error)

	SaveStatistics(s graph.Statistics) error
	LoadStatistics() (*graph.Statistics, error)

	// Commit makes every buffered Save/Delete since the last Commit visible
	// to subsequent Load* calls. A failing Commit leaves no partial writes
	// visible: the underlying badger.Txn is discarded wholesale.
	Commit() error

	// Rollback discards every buffered Save/Delete since the last Commit
	// without making them visible, leaving the backend ready for the next
	// auto-commit cycle. Used on uncaught execution error (§4.10).
	Rollback() error

	// Close releases underlying resources. Idempotent after Commit.
	Close() error
}

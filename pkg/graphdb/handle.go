// Package graphdb is the embeddable façade (C10): a single Handle type
// wiring together the in-memory graph, the optional durable backend, the
// parser/planner/optimizer/executor pipeline, and the function registry
// a host extends via RegisterFunction. It is the only package most callers
// of this module ever need to import directly.
package graphdb

import (
	"fmt"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/eval"
	"github.com/cypherlabs/cygraph/pkg/executor"
	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/optimizer"
	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/storage"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// Handle is one open database: one in-memory graph, optionally backed by
// durable storage, with its own function registry and transaction state.
// A Handle is not safe for concurrent use — spec.md's concurrency model is
// one OS thread per handle, same as the teacher's single-writer-lock
// StorageExecutor, just without even the lock since there is only ever one
// goroutine in here at a time.
type Handle struct {
	g         *graph.Graph
	backend   storage.Backend
	exec      *executor.Executor
	functions *eval.FunctionRegistry
	opts      optimizer.Options

	txOpen bool
	txSnap *graph.Snapshot
}

// Options configures a durable-backed Open call, mirroring the fields of
// storage.BadgerOptions a caller (cmd/graphdb, or any other host) would
// plausibly want to set from its own configuration rather than always
// taking Badger's defaults.
type Options struct {
	DataDir              string
	SyncWrites           bool
	LowMemory            bool
	EncryptionPassphrase string
}

// Open opens or creates a database at path, using BadgerDB for durable
// storage with its default options. An empty path is equivalent to New: a
// pure in-memory handle.
func Open(path string) (*Handle, error) {
	return OpenWithOptions(Options{DataDir: path})
}

// OpenWithOptions is Open with full control over the durable backend's
// write-durability, memory, and encryption settings.
func OpenWithOptions(opts Options) (*Handle, error) {
	if opts.DataDir == "" {
		return New(), nil
	}

	backend, err := storage.OpenBadgerBackend(storage.BadgerOptions{
		DataDir:              opts.DataDir,
		SyncWrites:           opts.SyncWrites,
		LowMemory:            opts.LowMemory,
		EncryptionPassphrase: opts.EncryptionPassphrase,
	})
	if err != nil {
		return nil, fmt.Errorf("graphdb: open %s: %w", opts.DataDir, err)
	}

	g := graph.New()
	if err := loadGraph(g, backend); err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("graphdb: loading %s: %w", opts.DataDir, err)
	}

	functions := eval.DefaultRegistry.Clone()
	return &Handle{
		g:         g,
		backend:   backend,
		exec:      executor.New(g, backend, functions),
		functions: functions,
		opts:      optimizer.DefaultOptions(),
	}, nil
}

// New opens a pure in-memory handle with no durable backend.
func New() *Handle {
	g := graph.New()
	functions := eval.DefaultRegistry.Clone()
	return &Handle{
		g:         g,
		exec:      executor.New(g, nil, functions),
		functions: functions,
		opts:      optimizer.DefaultOptions(),
	}
}

// loadGraph replays a durable backend's saved state into a fresh in-memory
// graph: nodes first, then edges (AddEdge requires both endpoints already
// present). Adjacency lists and statistics are not read from the backend;
// AddNode and AddEdge rebuild them as the nodes and edges are added.
func loadGraph(g *graph.Graph, backend storage.Backend) error {
	nodes, err := backend.LoadNodes()
	if err != nil {
		return fmt.Errorf("loading nodes: %w", err)
	}
	var maxNode graph.NodeID
	for _, n := range nodes {
		g.AddNode(n)
		if n.ID > maxNode {
			maxNode = n.ID
		}
	}

	edges, err := backend.LoadEdges()
	if err != nil {
		return fmt.Errorf("loading edges: %w", err)
	}
	var maxEdge graph.EdgeID
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			return fmt.Errorf("loading edge %d: %w", e.ID, err)
		}
		if e.ID > maxEdge {
			maxEdge = e.ID
		}
	}
	g.ObserveIDs(maxNode, maxEdge)
	return nil
}

// Close releases the backend; it commits nothing, and backend writes not
// yet committed are discarded. Calling Close with an open explicit
// transaction rolls that transaction back first, so an unclosed handle
// never leaves half-applied writes on disk.
func (h *Handle) Close() error {
	if h.txOpen {
		_ = h.Rollback()
	}
	if h.backend != nil {
		return h.backend.Close()
	}
	return nil
}

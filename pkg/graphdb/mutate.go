package graphdb

import (
	"fmt"

	"github.com/cypherlabs/cygraph/pkg/eval"
	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// CreateNode adds a node directly, bypassing Cypher parsing — the fast
// path a host uses for bulk loading. props go through value.FromNative,
// so a property map shaped like a point (x/y or latitude/longitude keys)
// is lifted to a Point. A map literal in a Cypher CREATE is not lifted
// this way; there only point() builds a Point.
//
// This call follows Execute's own transaction rule: outside an explicit
// transaction it is its own auto-committed unit (a snapshot is taken and
// restored on error, the backend commits on success); inside one, it
// simply adds to the graph and lets the surrounding transaction's Commit/
// Rollback decide its fate.
func (h *Handle) CreateNode(labels []string, props map[string]any) (int64, error) {
	vprops, err := convertProps(props)
	if err != nil {
		return 0, err
	}

	var snap *graph.Snapshot
	if !h.txOpen {
		snap = h.g.Snapshot()
	}

	id := h.g.NextNodeID()
	n := &graph.Node{ID: id, Labels: append([]string(nil), labels...), Properties: vprops}
	h.g.AddNode(n)

	if err := h.commitOrRollbackNode(n, snap); err != nil {
		return 0, err
	}
	return int64(id), nil
}

// CreateRelationship adds a directed, typed edge between two already-
// existing nodes, bypassing Cypher parsing.
func (h *Handle) CreateRelationship(src, dst int64, typ string, props map[string]any) (int64, error) {
	vprops, err := convertProps(props)
	if err != nil {
		return 0, err
	}

	var snap *graph.Snapshot
	if !h.txOpen {
		snap = h.g.Snapshot()
	}

	id := h.g.NextEdgeID()
	e := &graph.Edge{ID: id, Type: typ, Src: graph.NodeID(src), Dst: graph.NodeID(dst), Properties: vprops}
	if err := h.g.AddEdge(e); err != nil {
		if snap != nil {
			h.g.Restore(snap)
		}
		return 0, err
	}

	if err := h.commitOrRollbackEdge(e, snap); err != nil {
		return 0, err
	}
	return int64(id), nil
}

func convertProps(props map[string]any) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(props))
	for k, v := range props {
		conv, err := value.FromNative(v)
		if err != nil {
			return nil, fmt.Errorf("graphdb: property %q: %w", k, err)
		}
		out[k] = conv
	}
	return out, nil
}

func (h *Handle) commitOrRollbackNode(n *graph.Node, snap *graph.Snapshot) error {
	if h.backend == nil {
		return nil
	}
	if err := h.backend.SaveNode(n); err != nil {
		if snap != nil {
			h.g.Restore(snap)
		}
		return fmt.Errorf("graphdb: save node: %w", err)
	}
	if snap != nil {
		if err := h.backend.Commit(); err != nil {
			h.g.Restore(snap)
			return fmt.Errorf("graphdb: commit: %w", err)
		}
	}
	return nil
}

func (h *Handle) commitOrRollbackEdge(e *graph.Edge, snap *graph.Snapshot) error {
	if h.backend == nil {
		return nil
	}
	if err := h.backend.SaveEdge(e); err != nil {
		if snap != nil {
			h.g.Restore(snap)
		}
		return fmt.Errorf("graphdb: save edge: %w", err)
	}
	if snap != nil {
		if err := h.backend.Commit(); err != nil {
			h.g.Restore(snap)
			return fmt.Errorf("graphdb: commit: %w", err)
		}
	}
	return nil
}

// RegisterFunction installs a custom scalar function under name, callable
// from Cypher as name(args...). args and the return value cross the
// host boundary as native Go values (value.ToNative/value.FromNative),
// so a host never needs to import pkg/value to extend the query language.
func (h *Handle) RegisterFunction(name string, fn func(args []any) (any, error)) {
	h.functions.Register(name, func(args []value.Value, _ *eval.Context) (value.Value, error) {
		native := make([]any, len(args))
		for i, a := range args {
			native[i] = value.ToNative(a)
		}
		result, err := fn(native)
		if err != nil {
			return value.Null, err
		}
		return value.FromNative(result)
	})
}

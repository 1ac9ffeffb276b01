// Package graph implements the in-memory property graph: nodes, edges,
// their label/type indexes, insertion-ordered adjacency, running
// statistics, and the deep-copy snapshot/restore pair transactions are
// built on.
//
// The arena layout follows the teacher's storage engine shape
// (id-addressed maps, no direct object-to-object pointers): two primary
// collections keyed by id, with every index — label index, type index,
// adjacency lists — holding ids rather than pointers into the other
// collection. A Snapshot is a deep copy of exactly these collections plus
// the statistics and the two id counters, which is what lets Restore put
// the graph back into a state equal to the captured one.
package graph

import "github.com/cypherlabs/cygraph/pkg/value"

// NodeID and EdgeID are process-local, monotonically assigned identifiers.
type NodeID int64
type EdgeID int64

// Node is a labeled property-graph vertex. Identity is the ID; Labels is an
// immutable set represented as an ordered slice (insertion order is kept
// for labels() output, though the spec treats that order as
// implementation-defined).
type Node struct {
	ID         NodeID
	Labels     []string
	Properties map[string]value.Value
}

// HasLabel reports whether the node carries label.
func (n *Node) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// ToValue projects this node into a value.NodeValue for use as a row cell.
// The property map is shallow-copied so later mutation of the stored node
// cannot retroactively change a row already emitted to a result set.
func (n *Node) ToValue() *value.NodeValue {
	labels := make([]string, len(n.Labels))
	copy(labels, n.Labels)
	props := make(map[string]value.Value, len(n.Properties))
	for k, v := range n.Properties {
		props[k] = v
	}
	return &value.NodeValue{ID: int64(n.ID), Labels: labels, Properties: props}
}

// Edge is a directed, typed relationship between two nodes.
type Edge struct {
	ID         EdgeID
	Type       string
	Src        NodeID
	Dst        NodeID
	Properties map[string]value.Value
}

func (e *Edge) ToValue() *value.EdgeValue {
	props := make(map[string]value.Value, len(e.Properties))
	for k, v := range e.Properties {
		props[k] = v
	}
	return &value.EdgeValue{
		ID:         int64(e.ID),
		Type:       e.Type,
		StartID:    int64(e.Src),
		EndID:      int64(e.Dst),
		Properties: props,
	}
}

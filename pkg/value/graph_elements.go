package value

import "fmt"

// NodeValue, EdgeValue, and PathValue are the graph-element variants a Value
// can hold. They are deliberately self-contained (they do not reference
// pkg/graph's Node/Edge types) so this package has no dependency on the
// store: pkg/graph converts its own Node/Edge into these when a row needs to
// carry a graph element as a Value, rather than this package reaching up
// into the store.

// NodeValue is the row-carried projection of a graph node: identifier,
// labels, and the property snapshot at the time the row was produced.
type NodeValue struct {
	ID         int64
	Labels     []string
	Properties map[string]Value
}

func (n *NodeValue) HasLabel(label string) bool {
	for _, l := range n.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// EdgeValue is the row-carried projection of a graph relationship.
type EdgeValue struct {
	ID         int64
	Type       string
	StartID    int64
	EndID      int64
	Properties map[string]Value
}

// PathValue is an alternating node/edge walk: len(Edges) == len(Nodes)-1.
type PathValue struct {
	Nodes []*NodeValue
	Edges []*EdgeValue
}

// Length returns the number of relationships in the path.
func (p *PathValue) Length() int { return len(p.Edges) }

func (n *NodeValue) String() string {
	return fmt.Sprintf("Node[%d]%v", n.ID, n.Labels)
}

func (e *EdgeValue) String() string {
	return fmt.Sprintf("Relationship[%d]:%s", e.ID, e.Type)
}

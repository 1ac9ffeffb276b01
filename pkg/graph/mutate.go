package graph

import "github.com/cypherlabs/cygraph/pkg/value"

// SetNodeProperty sets or, if v is NULL, removes a property on an
// existing node. Setting to NULL removing the key (rather than storing an
// explicit NULL) matches SET's documented semantics in spec.md §4.9.
func (g *Graph) SetNodeProperty(id NodeID, key string, v value.Value) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	if v.IsNull() {
		delete(n.Properties, key)
	} else {
		n.Properties[key] = v
	}
	g.touch()
	return nil
}

// SetEdgeProperty is SetNodeProperty's relationship-side counterpart.
func (g *Graph) SetEdgeProperty(id EdgeID, key string, v value.Value) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.edges[id]
	if !ok {
		return ErrEdgeNotFound
	}
	if v.IsNull() {
		delete(e.Properties, key)
	} else {
		e.Properties[key] = v
	}
	g.touch()
	return nil
}

// ReplaceNodeProperties implements `n = expr`: the entire property map is
// discarded and replaced.
func (g *Graph) ReplaceNodeProperties(id NodeID, props map[string]value.Value) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	n.Properties = copyProperties(props)
	g.touch()
	return nil
}

// MergeNodeProperties implements `n += expr`: props is overlaid onto the
// node's existing property map rather than replacing it.
func (g *Graph) MergeNodeProperties(id NodeID, props map[string]value.Value) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	for k, v := range props {
		n.Properties[k] = v
	}
	g.touch()
	return nil
}

func (g *Graph) ReplaceEdgeProperties(id EdgeID, props map[string]value.Value) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.edges[id]
	if !ok {
		return ErrEdgeNotFound
	}
	e.Properties = copyProperties(props)
	g.touch()
	return nil
}

func (g *Graph) MergeEdgeProperties(id EdgeID, props map[string]value.Value) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	e, ok := g.edges[id]
	if !ok {
		return ErrEdgeNotFound
	}
	for k, v := range props {
		e.Properties[k] = v
	}
	g.touch()
	return nil
}

// AddNodeLabels adds labels to an existing node, updating the label index
// and per-label statistics for any label the node did not already carry.
func (g *Graph) AddNodeLabels(id NodeID, labels []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	for _, label := range labels {
		if n.HasLabel(label) {
			continue
		}
		n.Labels = append(n.Labels, label)
		g.indexLabel(label, id)
		g.stats.NodeCountsByLabel[label]++
	}
	g.touch()
	return nil
}

// RemoveNodeLabels removes labels from an existing node, updating the
// label index and per-label statistics.
func (g *Graph) RemoveNodeLabels(id NodeID, labels []string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return ErrNodeNotFound
	}
	for _, label := range labels {
		kept := n.Labels[:0]
		removed := false
		for _, l := range n.Labels {
			if l == label {
				removed = true
				continue
			}
			kept = append(kept, l)
		}
		n.Labels = kept
		if removed {
			g.unindexLabel(label, id)
			g.stats.NodeCountsByLabel[label]--
			if g.stats.NodeCountsByLabel[label] <= 0 {
				delete(g.stats.NodeCountsByLabel, label)
			}
		}
	}
	g.touch()
	return nil
}

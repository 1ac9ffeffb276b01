package graph

import "github.com/cypherlabs/cygraph/pkg/value"

// Snapshot is an opaque deep copy of the entire graph state: primary node
// and edge collections, every index, statistics, and both id counters.
// Restore replaces the live graph's state with a previously captured one,
// which is the mechanism the transaction layer uses for rollback.
type Snapshot struct {
	nodes map[NodeID]*Node
	edges map[EdgeID]*Edge

	labelIndex map[string]map[NodeID]struct{}
	typeIndex  map[string]map[EdgeID]struct{}

	adjOut map[NodeID][]EdgeID
	adjIn  map[NodeID][]EdgeID

	edgeSourcesByType map[string]map[NodeID]struct{}

	stats Statistics

	nextNodeID NodeID
	nextEdgeID EdgeID
}

func copyProperties(props map[string]value.Value) map[string]value.Value {
	out := make(map[string]value.Value, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

func copyNode(n *Node) *Node {
	return &Node{
		ID:         n.ID,
		Labels:     append([]string(nil), n.Labels...),
		Properties: copyProperties(n.Properties),
	}
}

func copyEdge(e *Edge) *Edge {
	return &Edge{
		ID:         e.ID,
		Type:       e.Type,
		Src:        e.Src,
		Dst:        e.Dst,
		Properties: copyProperties(e.Properties),
	}
}

func copyNodeIDSetMap(m map[string]map[NodeID]struct{}) map[string]map[NodeID]struct{} {
	out := make(map[string]map[NodeID]struct{}, len(m))
	for k, set := range m {
		cp := make(map[NodeID]struct{}, len(set))
		for id := range set {
			cp[id] = struct{}{}
		}
		out[k] = cp
	}
	return out
}

func copyEdgeIDSetMap(m map[string]map[EdgeID]struct{}) map[string]map[EdgeID]struct{} {
	out := make(map[string]map[EdgeID]struct{}, len(m))
	for k, set := range m {
		cp := make(map[EdgeID]struct{}, len(set))
		for id := range set {
			cp[id] = struct{}{}
		}
		out[k] = cp
	}
	return out
}

func copyAdjacency(m map[NodeID][]EdgeID) map[NodeID][]EdgeID {
	out := make(map[NodeID][]EdgeID, len(m))
	for id, list := range m {
		out[id] = append([]EdgeID(nil), list...)
	}
	return out
}

// Snapshot captures a deep, independent copy of the current graph state.
func (g *Graph) Snapshot() *Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()

	s := &Snapshot{
		nodes:             make(map[NodeID]*Node, len(g.nodes)),
		edges:             make(map[EdgeID]*Edge, len(g.edges)),
		labelIndex:        copyNodeIDSetMap(g.labelIndex),
		typeIndex:         copyEdgeIDSetMap(g.typeIndex),
		adjOut:            copyAdjacency(g.adjOut),
		adjIn:             copyAdjacency(g.adjIn),
		edgeSourcesByType: copyNodeIDSetMap(g.edgeSourcesByType),
		stats:             g.stats.clone(),
		nextNodeID:        g.nextNodeID,
		nextEdgeID:        g.nextEdgeID,
	}
	for id, n := range g.nodes {
		s.nodes[id] = copyNode(n)
	}
	for id, e := range g.edges {
		s.edges[id] = copyEdge(e)
	}
	return s
}

// Restore replaces the graph's entire state with the one captured in s.
// The Snapshot itself is left untouched so it can be restored from again.
func (g *Graph) Restore(s *Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes = make(map[NodeID]*Node, len(s.nodes))
	for id, n := range s.nodes {
		g.nodes[id] = copyNode(n)
	}
	g.edges = make(map[EdgeID]*Edge, len(s.edges))
	for id, e := range s.edges {
		g.edges[id] = copyEdge(e)
	}
	g.labelIndex = copyNodeIDSetMap(s.labelIndex)
	g.typeIndex = copyEdgeIDSetMap(s.typeIndex)
	g.adjOut = copyAdjacency(s.adjOut)
	g.adjIn = copyAdjacency(s.adjIn)
	g.edgeSourcesByType = copyNodeIDSetMap(s.edgeSourcesByType)
	g.stats = s.stats.clone()
	g.nextNodeID = s.nextNodeID
	g.nextEdgeID = s.nextEdgeID
}

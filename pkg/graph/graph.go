package graph

import (
	"fmt"
	"sync"
	"time"
)

// Graph is the in-memory property graph: primary node/edge collections,
// label and type indexes, insertion-ordered adjacency, and a running
// Statistics snapshot kept consistent on every mutation.
//
// All exported methods are safe for concurrent use; the executor currently
// only ever drives one goroutine against a given Graph (see the
// concurrency model), but the mutex matches the teacher's MemoryEngine,
// which is held to the same thread-safety bar for the same reason: nothing
// here depends on single-threaded access, so there is no reason to promise
// less.
type Graph struct {
	mu sync.RWMutex

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

// New returns an empty graph ready for use.
func New() *Graph {
	return &Graph{
		nodes:             make(map[NodeID]*Node),
		edges:             make(map[EdgeID]*Edge),
		labelIndex:        make(map[string]map[NodeID]struct{}),
		typeIndex:         make(map[string]map[EdgeID]struct{}),
		adjOut:            make(map[NodeID][]EdgeID),
		adjIn:             make(map[NodeID][]EdgeID),
		edgeSourcesByType: make(map[string]map[NodeID]struct{}),
		stats:             newStatistics(),
	}
}

// NextNodeID reserves and returns the next node identifier.
func (g *Graph) NextNodeID() NodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextNodeID++
	return g.nextNodeID
}

// NextEdgeID reserves and returns the next edge identifier.
func (g *Graph) NextEdgeID() EdgeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nextEdgeID++
	return g.nextEdgeID
}

// ObserveIDs raises the node/edge id counters so that NextNodeID/
// NextEdgeID never hand out an id already present in the graph. Callers
// that insert nodes/edges with externally-supplied ids (loading a durable
// backend's saved state, merging an interchange Document) must call this
// after inserting, since AddNode/AddEdge take the id as given and do not
// themselves advance the counters the way NextNodeID/NextEdgeID do.
func (g *Graph) ObserveIDs(maxNode NodeID, maxEdge EdgeID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if maxNode > g.nextNodeID {
		g.nextNodeID = maxNode
	}
	if maxEdge > g.nextEdgeID {
		g.nextEdgeID = maxEdge
	}
}

// AddNode inserts or replaces a node. If a node with the same id already
// exists, its labels are removed from the label index before the new
// labels are indexed, and adjacency entries are left untouched (a replace
// never changes edges). Statistics are updated with the label-count delta.
func (g *Graph) AddNode(n *Node) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.nodes[n.ID]; ok {
		for _, label := range existing.Labels {
			g.unindexLabel(label, n.ID)
			g.stats.NodeCountsByLabel[label]--
			if g.stats.NodeCountsByLabel[label] <= 0 {
				delete(g.stats.NodeCountsByLabel, label)
			}
		}
		g.stats.TotalNodes--
	}

	g.nodes[n.ID] = n
	if _, ok := g.adjOut[n.ID]; !ok {
		g.adjOut[n.ID] = nil
	}
	if _, ok := g.adjIn[n.ID]; !ok {
		g.adjIn[n.ID] = nil
	}

	for _, label := range n.Labels {
		g.indexLabel(label, n.ID)
		g.stats.NodeCountsByLabel[label]++
	}
	g.stats.TotalNodes++
	g.touch()
}

// AddEdge inserts or replaces an edge. Both endpoints must already exist.
// On replace, the prior edge is removed from the type index and both
// adjacency lists before the new one is appended, preserving the
// insertion-order contract for the *new* position.
func (g *Graph) AddEdge(e *Edge) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.nodes[e.Src]; !ok {
		return fmt.Errorf("%w: source %d", ErrDanglingEdge, e.Src)
	}
	if _, ok := g.nodes[e.Dst]; !ok {
		return fmt.Errorf("%w: destination %d", ErrDanglingEdge, e.Dst)
	}

	if existing, ok := g.edges[e.ID]; ok {
		g.unindexType(existing.Type, e.ID)
		g.removeFromAdjacency(g.adjOut, existing.Src, e.ID)
		g.removeFromAdjacency(g.adjIn, existing.Dst, e.ID)
		g.removeSourceIfLast(existing.Type, existing.Src)
		g.stats.EdgeCountsByType[existing.Type]--
		if g.stats.EdgeCountsByType[existing.Type] <= 0 {
			delete(g.stats.EdgeCountsByType, existing.Type)
		}
		g.stats.TotalEdges--
	}

	g.edges[e.ID] = e
	g.indexType(e.Type, e.ID)
	g.adjOut[e.Src] = append(g.adjOut[e.Src], e.ID)
	g.adjIn[e.Dst] = append(g.adjIn[e.Dst], e.ID)

	if g.edgeSourcesByType[e.Type] == nil {
		g.edgeSourcesByType[e.Type] = make(map[NodeID]struct{})
	}
	g.edgeSourcesByType[e.Type][e.Src] = struct{}{}

	g.stats.EdgeCountsByType[e.Type]++
	g.stats.TotalEdges++
	g.recomputeAvgDegree(e.Type)
	g.touch()
	return nil
}

// RemoveNode deletes a node and every index entry referencing it. It does
// not cascade to incident edges; callers (the executor's DELETE operator)
// are responsible for enforcing the "cannot delete node with relationships
// unless DETACH" rule before calling this.
func (g *Graph) RemoveNode(id NodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	for _, label := range n.Labels {
		g.unindexLabel(label, id)
		g.stats.NodeCountsByLabel[label]--
		if g.stats.NodeCountsByLabel[label] <= 0 {
			delete(g.stats.NodeCountsByLabel, label)
		}
	}
	delete(g.nodes, id)
	delete(g.adjOut, id)
	delete(g.adjIn, id)
	g.stats.TotalNodes--
	g.touch()
	return nil
}

// RemoveEdge deletes an edge and every index entry referencing it.
func (g *Graph) RemoveEdge(id EdgeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.edges[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrEdgeNotFound, id)
	}
	g.unindexType(e.Type, id)
	g.removeFromAdjacency(g.adjOut, e.Src, id)
	g.removeFromAdjacency(g.adjIn, e.Dst, id)
	g.removeSourceIfLast(e.Type, e.Src)
	delete(g.edges, id)

	g.stats.EdgeCountsByType[e.Type]--
	if g.stats.EdgeCountsByType[e.Type] <= 0 {
		delete(g.stats.EdgeCountsByType, e.Type)
	}
	g.stats.TotalEdges--
	g.recomputeAvgDegree(e.Type)
	g.touch()
	return nil
}

// GetNode returns the node with id, or ErrNodeNotFound.
func (g *Graph) GetNode(id NodeID) (*Node, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNodeNotFound, id)
	}
	return n, nil
}

// GetEdge returns the edge with id, or ErrEdgeNotFound.
func (g *Graph) GetEdge(id EdgeID) (*Edge, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrEdgeNotFound, id)
	}
	return e, nil
}

// NodesByLabel returns node ids carrying label, in an unspecified but
// stable-for-this-call order (map iteration order is randomized per Go's
// runtime; callers needing a deterministic order sort downstream).
func (g *Graph) NodesByLabel(label string) []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	set := g.labelIndex[label]
	out := make([]NodeID, 0, len(set))
	for id := range set {
		out = append(out, id)
	}
	return out
}

// AllNodeIDs returns every node id currently in the graph.
func (g *Graph) AllNodeIDs() []NodeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	return out
}

// AllEdgeIDs returns every edge id currently in the graph.
func (g *Graph) AllEdgeIDs() []EdgeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]EdgeID, 0, len(g.edges))
	for id := range g.edges {
		out = append(out, id)
	}
	return out
}

// Outgoing returns the edge ids leaving node id, in insertion order.
func (g *Graph) Outgoing(id NodeID) []EdgeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]EdgeID(nil), g.adjOut[id]...)
}

// Incoming returns the edge ids entering node id, in insertion order.
func (g *Graph) Incoming(id NodeID) []EdgeID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]EdgeID(nil), g.adjIn[id]...)
}

// Statistics returns the current immutable statistics snapshot.
func (g *Graph) Statistics() Statistics {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.stats.clone()
}

func (g *Graph) touch() {
	g.stats.LastUpdated = time.Now()
}

func (g *Graph) indexLabel(label string, id NodeID) {
	if g.labelIndex[label] == nil {
		g.labelIndex[label] = make(map[NodeID]struct{})
	}
	g.labelIndex[label][id] = struct{}{}
}

func (g *Graph) unindexLabel(label string, id NodeID) {
	if set, ok := g.labelIndex[label]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(g.labelIndex, label)
		}
	}
}

func (g *Graph) indexType(typ string, id EdgeID) {
	if g.typeIndex[typ] == nil {
		g.typeIndex[typ] = make(map[EdgeID]struct{})
	}
	g.typeIndex[typ][id] = struct{}{}
}

func (g *Graph) unindexType(typ string, id EdgeID) {
	if set, ok := g.typeIndex[typ]; ok {
		delete(set, id)
		if len(set) == 0 {
			delete(g.typeIndex, typ)
		}
	}
}

func (g *Graph) removeFromAdjacency(adj map[NodeID][]EdgeID, id NodeID, edge EdgeID) {
	list := adj[id]
	for i, e := range list {
		if e == edge {
			adj[id] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// removeSourceIfLast drops src from the distinct-sources set for typ when
// src no longer has any outgoing edge of that type, keeping
// avg_degree_by_type's denominator accurate.
func (g *Graph) removeSourceIfLast(typ string, src NodeID) {
	for _, id := range g.adjOut[src] {
		if e, ok := g.edges[id]; ok && e.Type == typ {
			return
		}
	}
	if set, ok := g.edgeSourcesByType[typ]; ok {
		delete(set, src)
		if len(set) == 0 {
			delete(g.edgeSourcesByType, typ)
		}
	}
}

// recomputeAvgDegree recomputes avg_degree_by_type[typ] = edges of that
// type / distinct source nodes of that type, 0 when there are no sources.
func (g *Graph) recomputeAvgDegree(typ string) {
	edgeCount := g.stats.EdgeCountsByType[typ]
	sources := len(g.edgeSourcesByType[typ])
	if sources == 0 {
		delete(g.stats.AvgDegreeByType, typ)
		return
	}
	g.stats.AvgDegreeByType[typ] = float64(edgeCount) / float64(sources)
}

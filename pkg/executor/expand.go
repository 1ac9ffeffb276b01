package executor

import (
	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// adjacentEdges returns the edge ids incident to id for the given
// direction, deduplicated by edge id. Deduplication is what makes an
// UNDIRECTED self-loop (an edge whose source and destination are the same
// node) surface exactly once instead of once per adjacency list it
// appears in, per spec.md §4.9's hard requirement.
func adjacentEdges(g *graph.Graph, id graph.NodeID, dir cypher.EdgeDirection) []graph.EdgeID {
	switch dir {
	case cypher.EdgeOutgoing:
		return g.Outgoing(id)
	case cypher.EdgeIncoming:
		return g.Incoming(id)
	default:
		seen := make(map[graph.EdgeID]bool)
		var out []graph.EdgeID
		for _, eid := range g.Outgoing(id) {
			if !seen[eid] {
				seen[eid] = true
				out = append(out, eid)
			}
		}
		for _, eid := range g.Incoming(id) {
			if !seen[eid] {
				seen[eid] = true
				out = append(out, eid)
			}
		}
		return out
	}
}

// otherEndpoint returns the node at the far end of e from the perspective
// of traversing out of src: for OUT that's always e.Dst, for IN always
// e.Src, and for UNDIRECTED whichever endpoint isn't src (both, for a
// self-loop).
func otherEndpoint(e *graph.Edge, src graph.NodeID, dir cypher.EdgeDirection) graph.NodeID {
	switch dir {
	case cypher.EdgeOutgoing:
		return e.Dst
	case cypher.EdgeIncoming:
		return e.Src
	default:
		if e.Src == src {
			return e.Dst
		}
		return e.Src
	}
}

// expandEdges implements ExpandEdges(src_var, edge_var?, types, direction,
// dst_var, predicate?).
func (ex *Executor) expandEdges(e *planner.ExpandEdgesOp, in []Row, params map[string]value.Value) ([]Row, error) {
	var out []Row
	for _, row := range in {
		srcVal, ok := row[e.SrcVar]
		if !ok || srcVal.Kind() != value.KindNode {
			continue
		}
		srcID := graph.NodeID(srcVal.AsNode().ID)

		for _, eid := range adjacentEdges(ex.g, srcID, e.Direction) {
			edge, err := ex.g.GetEdge(eid)
			if err != nil {
				continue
			}
			if len(e.Types) > 0 && !containsString(e.Types, edge.Type) {
				continue
			}
			dstID := otherEndpoint(edge, srcID, e.Direction)
			dstNode, err := ex.g.GetNode(dstID)
			if err != nil {
				continue
			}

			nr := copyRow(row)
			if e.EdgeVar != "" {
				nr[e.EdgeVar] = value.FromEdge(edge.ToValue())
			}
			nr[e.DstVar] = value.FromNode(dstNode.ToValue())

			if e.Predicate != nil {
				keep, err := ex.evalPredicate(*e.Predicate, nr, params)
				if err != nil {
					return nil, err
				}
				if !keep {
					continue
				}
			}
			out = append(out, nr)
		}
	}
	return out, nil
}

// hopState carries one in-progress ExpandMultiHop traversal: the row built
// so far, the node currently at the traversal's frontier, and (only when a
// path variable is bound) the accumulated node/edge sequence.
type hopState struct {
	row     Row
	current graph.NodeID
	visited map[graph.NodeID]bool
	nodes   []*value.NodeValue
	edges   []*value.EdgeValue
}

// expandMultiHop implements ExpandMultiHop(src_var, hops, path_var?): a
// fixed chain of single-hop legs, each one's destination feeding the
// next's source, with no node repeated within one path.
func (ex *Executor) expandMultiHop(op *planner.ExpandMultiHopOp, in []Row, params map[string]value.Value) ([]Row, error) {
	wantPath := op.PathVar != ""

	states := make([]*hopState, 0, len(in))
	for _, row := range in {
		srcVal, ok := row[op.SrcVar]
		if !ok || srcVal.Kind() != value.KindNode {
			continue
		}
		srcID := graph.NodeID(srcVal.AsNode().ID)
		st := &hopState{row: row, current: srcID, visited: map[graph.NodeID]bool{srcID: true}}
		if wantPath {
			st.nodes = []*value.NodeValue{srcVal.AsNode()}
		}
		states = append(states, st)
	}

	for _, hop := range op.Hops {
		var next []*hopState
		for _, st := range states {
			for _, eid := range adjacentEdges(ex.g, st.current, hop.Direction) {
				edge, err := ex.g.GetEdge(eid)
				if err != nil {
					continue
				}
				if len(hop.Types) > 0 && !containsString(hop.Types, edge.Type) {
					continue
				}
				dstID := otherEndpoint(edge, st.current, hop.Direction)
				if st.visited[dstID] {
					continue
				}
				dstNode, err := ex.g.GetNode(dstID)
				if err != nil {
					continue
				}

				nr := copyRow(st.row)
				if hop.EdgeVar != "" {
					nr[hop.EdgeVar] = value.FromEdge(edge.ToValue())
				}
				nr[hop.DstVar] = value.FromNode(dstNode.ToValue())

				if hop.Predicate != nil {
					keep, err := ex.evalPredicate(*hop.Predicate, nr, params)
					if err != nil {
						return nil, err
					}
					if !keep {
						continue
					}
				}

				visited := make(map[graph.NodeID]bool, len(st.visited)+1)
				for k := range st.visited {
					visited[k] = true
				}
				visited[dstID] = true

				nst := &hopState{row: nr, current: dstID, visited: visited}
				if wantPath {
					nst.nodes = append(append([]*value.NodeValue(nil), st.nodes...), dstNode.ToValue())
					nst.edges = append(append([]*value.EdgeValue(nil), st.edges...), edge.ToValue())
				}
				next = append(next, nst)
			}
		}
		states = next
	}

	out := make([]Row, 0, len(states))
	for _, st := range states {
		if wantPath {
			st.row[op.PathVar] = value.FromPath(&value.PathValue{Nodes: st.nodes, Edges: st.edges})
		}
		out = append(out, st.row)
	}
	return out, nil
}

// varLengthExpand implements VarLengthExpand(src, types, direction,
// min_hops, max_hops, dst_var, path_var?): a bounded depth-first
// traversal, cycle-free within one path, emitting one row per path that
// reaches an allowed depth (an endpoint reached by two paths yields two
// rows).
func (ex *Executor) varLengthExpand(op *planner.VarLengthExpandOp, in []Row, params map[string]value.Value) ([]Row, error) {
	var out []Row
	wantPath := op.PathVar != ""

	limit := op.MaxHops
	if limit < 0 {
		limit = len(ex.g.AllNodeIDs())
	}

	for _, row := range in {
		srcVal, ok := row[op.SrcVar]
		if !ok || srcVal.Kind() != value.KindNode {
			continue
		}
		srcID := graph.NodeID(srcVal.AsNode().ID)
		startNode, err := ex.g.GetNode(srcID)
		if err != nil {
			continue
		}

		var walkErr error
		visited := map[graph.NodeID]bool{srcID: true}
		var walk func(cur graph.NodeID, depth int, nodes []*value.NodeValue, edges []*value.EdgeValue)
		walk = func(cur graph.NodeID, depth int, nodes []*value.NodeValue, edges []*value.EdgeValue) {
			if walkErr != nil {
				return
			}
			if depth >= op.MinHops {
				dstNode, err := ex.g.GetNode(cur)
				if err != nil {
					walkErr = err
					return
				}
				nr := copyRow(row)
				nr[op.DstVar] = value.FromNode(dstNode.ToValue())
				if wantPath {
					nr[op.PathVar] = value.FromPath(&value.PathValue{
						Nodes: append([]*value.NodeValue(nil), nodes...),
						Edges: append([]*value.EdgeValue(nil), edges...),
					})
				}
				out = append(out, nr)
			}
			if depth >= limit {
				return
			}
			for _, eid := range adjacentEdges(ex.g, cur, op.Direction) {
				edge, err := ex.g.GetEdge(eid)
				if err != nil {
					continue
				}
				if len(op.Types) > 0 && !containsString(op.Types, edge.Type) {
					continue
				}
				nextID := otherEndpoint(edge, cur, op.Direction)
				if visited[nextID] {
					continue
				}
				nextNode, err := ex.g.GetNode(nextID)
				if err != nil {
					continue
				}
				visited[nextID] = true
				walk(nextID, depth+1, append(nodes, nextNode.ToValue()), append(edges, edge.ToValue()))
				delete(visited, nextID)
			}
		}

		var seedNodes []*value.NodeValue
		if wantPath {
			seedNodes = []*value.NodeValue{startNode.ToValue()}
		}
		walk(srcID, 0, seedNodes, nil)
		if walkErr != nil {
			return nil, walkErr
		}
	}
	return out, nil
}

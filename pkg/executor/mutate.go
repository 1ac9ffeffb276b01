package executor

import (
	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/eval"
	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// evalProps evaluates a pattern's property-literal map against one row.
func (ex *Executor) evalProps(m map[string]cypher.Expr, row Row, params map[string]value.Value) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(m))
	for k, e := range m {
		v, err := eval.Evaluate(e, ex.evalCtx(row, params))
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

// create implements CreateOp: every pattern is created fresh for every
// input row, reusing a row variable already bound to a node (a mixed
// MATCH ... CREATE pattern that references an earlier variable) rather
// than creating a duplicate. Relationships are always created fresh.
func (ex *Executor) create(op *planner.CreateOp, in []Row, params map[string]value.Value) ([]Row, error) {
	out := make([]Row, 0, len(in))
	for _, row := range in {
		nr := copyRow(row)
		for _, pattern := range op.Patterns {
			if err := ex.createPattern(pattern, nr, params); err != nil {
				return nil, err
			}
		}
		out = append(out, nr)
	}
	return out, nil
}

// createPattern materializes one pattern's nodes and edges into the graph,
// binding each pattern variable into row as it goes so later edges in the
// same pattern can reference a node created earlier in it.
func (ex *Executor) createPattern(pattern cypher.Pattern, row Row, params map[string]value.Value) error {
	nodeIDs := make([]graph.NodeID, len(pattern.Nodes))

	for i, np := range pattern.Nodes {
		if np.Variable != "" {
			if existing, ok := row[np.Variable]; ok && existing.Kind() == value.KindNode {
				nodeIDs[i] = graph.NodeID(existing.AsNode().ID)
				continue
			}
		}
		props, err := ex.evalProps(np.Properties, row, params)
		if err != nil {
			return err
		}
		id := ex.g.NextNodeID()
		n := &graph.Node{ID: id, Labels: append([]string(nil), np.Labels...), Properties: props}
		ex.g.AddNode(n)
		if err := ex.writeThroughNode(n); err != nil {
			return err
		}
		nodeIDs[i] = id
		if np.Variable != "" {
			row[np.Variable] = value.FromNode(n.ToValue())
		}
	}

	for i, rel := range pattern.Edges {
		props, err := ex.evalProps(rel.Properties, row, params)
		if err != nil {
			return err
		}
		src, dst := nodeIDs[i], nodeIDs[i+1]
		if rel.Direction == cypher.EdgeIncoming {
			src, dst = dst, src
		}
		typ := ""
		if len(rel.Types) > 0 {
			typ = rel.Types[0]
		}
		id := ex.g.NextEdgeID()
		e := &graph.Edge{ID: id, Type: typ, Src: src, Dst: dst, Properties: props}
		if err := ex.g.AddEdge(e); err != nil {
			return err
		}
		if err := ex.writeThroughEdge(e); err != nil {
			return err
		}
		if rel.Variable != "" {
			row[rel.Variable] = value.FromEdge(e.ToValue())
		}
	}

	return nil
}

// merge implements MergeOp: per input row, search the graph for a full
// match of the pattern using the already-bound variables as anchors; if
// found, bind its variables and apply ON MATCH; otherwise create it fresh
// and apply ON CREATE. Unlike CreateOp this pattern is searched with a
// bespoke single-pattern matcher rather than reusing planner.Plan's
// lowering, since MERGE's match-or-create fork needs to know, before
// mutating anything, whether a match exists at all.
func (ex *Executor) merge(op *planner.MergeOp, in []Row, params map[string]value.Value) ([]Row, error) {
	out := make([]Row, 0, len(in))
	for _, row := range in {
		nr := copyRow(row)
		matched, err := ex.matchPattern(op.Pattern, nr, params)
		if err != nil {
			return nil, err
		}
		if matched {
			if err := ex.applySetItems(op.OnMatch, nr, params); err != nil {
				return nil, err
			}
		} else {
			if err := ex.createPattern(op.Pattern, nr, params); err != nil {
				return nil, err
			}
			if err := ex.applySetItems(op.OnCreate, nr, params); err != nil {
				return nil, err
			}
		}
		out = append(out, nr)
	}
	return out, nil
}

// matchPattern looks for one full match of pattern in the live graph,
// binding every pattern variable into row on success. It supports the
// single-node and single-relationship-chain shapes MERGE patterns are
// restricted to (openCypher forbids multi-path MERGE patterns), walking
// node-by-node and trying every candidate edge at each step.
func (ex *Executor) matchPattern(pattern cypher.Pattern, row Row, params map[string]value.Value) (bool, error) {
	if len(pattern.Nodes) == 0 {
		return false, nil
	}

	candidates, err := ex.matchNode(pattern.Nodes[0], row, params)
	if err != nil {
		return false, err
	}

	for _, startID := range candidates {
		bound := copyRow(row)
		n, err := ex.g.GetNode(startID)
		if err != nil {
			continue
		}
		bound[pattern.Nodes[0].Variable] = value.FromNode(n.ToValue())

		ok, err := ex.matchChain(pattern, 0, startID, bound, params)
		if err != nil {
			return false, err
		}
		if ok {
			for k, v := range bound {
				row[k] = v
			}
			return true, nil
		}
	}
	return false, nil
}

// matchChain extends a MERGE match from nodeIdx's already-bound node
// through the rest of the pattern, depth-first, stopping at the first
// complete match.
func (ex *Executor) matchChain(pattern cypher.Pattern, nodeIdx int, current graph.NodeID, row Row, params map[string]value.Value) (bool, error) {
	if nodeIdx >= len(pattern.Edges) {
		return true, nil
	}
	rel := pattern.Edges[nodeIdx]
	nextPattern := pattern.Nodes[nodeIdx+1]

	for _, eid := range adjacentEdges(ex.g, current, rel.Direction) {
		edge, err := ex.g.GetEdge(eid)
		if err != nil {
			continue
		}
		if len(rel.Types) > 0 && !containsString(rel.Types, edge.Type) {
			continue
		}
		if !ex.propsMatch(rel.Properties, edge.Properties, row, params) {
			continue
		}
		dstID := otherEndpoint(edge, current, rel.Direction)
		dstNode, err := ex.g.GetNode(dstID)
		if err != nil {
			continue
		}
		if !ex.nodeMatches(nextPattern, dstNode, row, params) {
			continue
		}

		attempt := copyRow(row)
		if rel.Variable != "" {
			attempt[rel.Variable] = value.FromEdge(edge.ToValue())
		}
		if nextPattern.Variable != "" {
			attempt[nextPattern.Variable] = value.FromNode(dstNode.ToValue())
		}

		ok, err := ex.matchChain(pattern, nodeIdx+1, dstID, attempt, params)
		if err != nil {
			return false, err
		}
		if ok {
			for k, v := range attempt {
				row[k] = v
			}
			return true, nil
		}
	}
	return false, nil
}

// matchNode resolves a MERGE pattern's starting node to every graph node
// id consistent with its labels and property literals — reusing an
// already-bound row variable directly when the node pattern names one.
func (ex *Executor) matchNode(np cypher.NodePattern, row Row, params map[string]value.Value) ([]graph.NodeID, error) {
	if np.Variable != "" {
		if existing, ok := row[np.Variable]; ok && existing.Kind() == value.KindNode {
			return []graph.NodeID{graph.NodeID(existing.AsNode().ID)}, nil
		}
	}
	ids := ex.candidateNodeIDs(labelGroupsOf(np.Labels))
	var out []graph.NodeID
	for _, id := range ids {
		n, err := ex.g.GetNode(id)
		if err != nil {
			continue
		}
		if ex.nodeMatches(np, n, row, params) {
			out = append(out, id)
		}
	}
	return out, nil
}

func labelGroupsOf(labels []string) [][]string {
	if len(labels) == 0 {
		return nil
	}
	return [][]string{labels}
}

func (ex *Executor) nodeMatches(np cypher.NodePattern, n *graph.Node, row Row, params map[string]value.Value) bool {
	for _, label := range np.Labels {
		if !n.HasLabel(label) {
			return false
		}
	}
	return ex.propsMatch(np.Properties, n.Properties, row, params)
}

// propsMatch reports whether every property literal in want evaluates to
// a value equal to the corresponding entry in have.
func (ex *Executor) propsMatch(want map[string]cypher.Expr, have map[string]value.Value, row Row, params map[string]value.Value) bool {
	for k, e := range want {
		wv, err := eval.Evaluate(e, ex.evalCtx(row, params))
		if err != nil {
			return false
		}
		hv, ok := have[k]
		if !ok {
			return false
		}
		eq, known := value.Equals(wv, hv)
		if !known || !eq {
			return false
		}
	}
	return true
}

// applySetItems runs a SET item list (used directly by SetOp and for
// MERGE's ON CREATE/ON MATCH clauses).
func (ex *Executor) applySetItems(items []cypher.SetItem, row Row, params map[string]value.Value) error {
	for _, item := range items {
		if err := ex.applySetItem(item, row, params); err != nil {
			return err
		}
	}
	return nil
}

// set implements SetOp.
func (ex *Executor) set(op *planner.SetOp, in []Row, params map[string]value.Value) ([]Row, error) {
	for _, row := range in {
		if err := ex.applySetItems(op.Items, row, params); err != nil {
			return nil, err
		}
	}
	return in, nil
}

func (ex *Executor) applySetItem(item cypher.SetItem, row Row, params map[string]value.Value) error {
	target, ok := row[item.Variable]
	if !ok {
		return nil
	}

	switch item.Kind {
	case cypher.SetProperty:
		v, err := eval.Evaluate(item.Value, ex.evalCtx(row, params))
		if err != nil {
			return err
		}
		return ex.setProperty(target, item.Property, v, row, item.Variable)

	case cypher.SetLabels:
		if target.Kind() != value.KindNode {
			return nil
		}
		id := graph.NodeID(target.AsNode().ID)
		if err := ex.g.AddNodeLabels(id, item.Labels); err != nil {
			return err
		}
		return ex.refreshNode(id, row, item.Variable)

	case cypher.SetReplace, cypher.SetMerge:
		v, err := eval.Evaluate(item.Value, ex.evalCtx(row, params))
		if err != nil {
			return err
		}
		if v.Kind() != value.KindMap {
			return &TypeErr{Message: "SET " + item.Variable + " = ... requires a map expression"}
		}
		return ex.replaceOrMergeProps(target, v.AsMap(), item.Kind == cypher.SetMerge, row, item.Variable)
	}
	return nil
}

func (ex *Executor) setProperty(target value.Value, prop string, v value.Value, row Row, variable string) error {
	switch target.Kind() {
	case value.KindNode:
		id := graph.NodeID(target.AsNode().ID)
		if err := ex.g.SetNodeProperty(id, prop, v); err != nil {
			return err
		}
		return ex.refreshNode(id, row, variable)
	case value.KindEdge:
		id := graph.EdgeID(target.AsEdge().ID)
		if err := ex.g.SetEdgeProperty(id, prop, v); err != nil {
			return err
		}
		return ex.refreshEdge(id, row, variable)
	default:
		return nil
	}
}

func (ex *Executor) replaceOrMergeProps(target value.Value, props map[string]value.Value, merge bool, row Row, variable string) error {
	switch target.Kind() {
	case value.KindNode:
		id := graph.NodeID(target.AsNode().ID)
		var err error
		if merge {
			err = ex.g.MergeNodeProperties(id, props)
		} else {
			err = ex.g.ReplaceNodeProperties(id, props)
		}
		if err != nil {
			return err
		}
		return ex.refreshNode(id, row, variable)
	case value.KindEdge:
		id := graph.EdgeID(target.AsEdge().ID)
		var err error
		if merge {
			err = ex.g.MergeEdgeProperties(id, props)
		} else {
			err = ex.g.ReplaceEdgeProperties(id, props)
		}
		if err != nil {
			return err
		}
		return ex.refreshEdge(id, row, variable)
	default:
		return nil
	}
}

// refreshNode re-reads the node from the graph and rewrites row's binding
// to the refreshed projection (SET doesn't mutate the Value already in
// the row in place, since NodeValue's property map is a snapshot copy),
// and writes the change through to the backend.
func (ex *Executor) refreshNode(id graph.NodeID, row Row, variable string) error {
	n, err := ex.g.GetNode(id)
	if err != nil {
		return err
	}
	row[variable] = value.FromNode(n.ToValue())
	return ex.writeThroughNode(n)
}

func (ex *Executor) refreshEdge(id graph.EdgeID, row Row, variable string) error {
	e, err := ex.g.GetEdge(id)
	if err != nil {
		return err
	}
	row[variable] = value.FromEdge(e.ToValue())
	return ex.writeThroughEdge(e)
}

// remove implements RemoveOp: property removal (REMOVE n.prop) and label
// removal (REMOVE n:Label) share one clause in the grammar but dispatch on
// which field of RemoveItem is populated.
func (ex *Executor) remove(op *planner.RemoveOp, in []Row, params map[string]value.Value) ([]Row, error) {
	for _, row := range in {
		for _, item := range op.Items {
			if err := ex.applyRemoveItem(item, row); err != nil {
				return nil, err
			}
		}
	}
	return in, nil
}

func (ex *Executor) applyRemoveItem(item cypher.RemoveItem, row Row) error {
	target, ok := row[item.Variable]
	if !ok {
		return nil
	}

	if len(item.Labels) > 0 {
		if target.Kind() != value.KindNode {
			return nil
		}
		id := graph.NodeID(target.AsNode().ID)
		if err := ex.g.RemoveNodeLabels(id, item.Labels); err != nil {
			return err
		}
		return ex.refreshNode(id, row, item.Variable)
	}

	if item.Property != "" {
		return ex.setProperty(target, item.Property, value.Null, row, item.Variable)
	}
	return nil
}

// delete implements DeleteOp. A node with incident relationships cannot be
// deleted unless Detach is set, in which case every incident edge is
// removed first.
func (ex *Executor) delete(op *planner.DeleteOp, in []Row, params map[string]value.Value) ([]Row, error) {
	for _, row := range in {
		for _, v := range op.Variables {
			target, ok := row[v]
			if !ok {
				continue
			}
			if err := ex.deleteValue(target, op.Detach); err != nil {
				return nil, err
			}
		}
	}
	return in, nil
}

func (ex *Executor) deleteValue(target value.Value, detach bool) error {
	switch target.Kind() {
	case value.KindNode:
		id := graph.NodeID(target.AsNode().ID)
		incident := append(ex.g.Outgoing(id), ex.g.Incoming(id)...)
		if len(incident) > 0 {
			if !detach {
				return &CannotDeleteNodeWithRelationships{NodeID: int64(id)}
			}
			seen := make(map[graph.EdgeID]bool, len(incident))
			for _, eid := range incident {
				if seen[eid] {
					continue
				}
				seen[eid] = true
				if err := ex.g.RemoveEdge(eid); err != nil {
					return err
				}
				if err := ex.writeThroughEdgeDelete(eid); err != nil {
					return err
				}
			}
		}
		if err := ex.g.RemoveNode(id); err != nil {
			return err
		}
		return ex.writeThroughNodeDelete(id)
	case value.KindEdge:
		id := graph.EdgeID(target.AsEdge().ID)
		if err := ex.g.RemoveEdge(id); err != nil {
			return err
		}
		return ex.writeThroughEdgeDelete(id)
	default:
		return nil
	}
}

// writeThroughNode/writeThroughEdge and their delete counterparts mirror
// every graph mutation into the durable backend, when one is attached.
// They stage the write into the backend's buffered transaction; Execute's
// Commit/Rollback dance decides whether it becomes durable.
func (ex *Executor) writeThroughNode(n *graph.Node) error {
	if ex.backend == nil {
		return nil
	}
	return ex.backend.SaveNode(n)
}

func (ex *Executor) writeThroughEdge(e *graph.Edge) error {
	if ex.backend == nil {
		return nil
	}
	return ex.backend.SaveEdge(e)
}

func (ex *Executor) writeThroughNodeDelete(id graph.NodeID) error {
	if ex.backend == nil {
		return nil
	}
	return ex.backend.DeleteNode(id)
}

func (ex *Executor) writeThroughEdgeDelete(id graph.EdgeID) error {
	if ex.backend == nil {
		return nil
	}
	return ex.backend.DeleteEdge(id)
}

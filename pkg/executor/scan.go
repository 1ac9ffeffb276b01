package executor

import (
	"sort"

	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// scanNodes implements ScanNodes(variable, labels?, predicate?): one row
// per matching node, per input row. With no label groups it walks every
// node in ascending-id order, which is the "total iteration order" spec.md
// §4.1 says is a visible, insertion-order-derived property of the system
// (ids are assigned monotonically, so ascending id is ascending insertion
// order). With label groups present, `:A|B` disjunction unions the
// per-group node sets; `:A:B` on a single group intersects them.
func (ex *Executor) scanNodes(s *planner.ScanNodesOp, in []Row, params map[string]value.Value) ([]Row, error) {
	ids := ex.candidateNodeIDs(s.LabelGroups)

	out := make([]Row, 0, len(in)*len(ids))
	for _, row := range in {
		for _, id := range ids {
			n, err := ex.g.GetNode(id)
			if err != nil {
				continue
			}
			nr := copyRow(row)
			nr[s.Variable] = value.FromNode(n.ToValue())
			if s.Predicate != nil {
				keep, err := ex.evalPredicate(*s.Predicate, nr, params)
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

// candidateNodeIDs resolves a ScanNodesOp's label groups (or the whole
// graph, absent any) to a deterministic, ascending-id-ordered id list.
func (ex *Executor) candidateNodeIDs(groups [][]string) []graph.NodeID {
	var ids []graph.NodeID
	if len(groups) == 0 {
		ids = ex.g.AllNodeIDs()
	} else {
		seen := make(map[graph.NodeID]bool)
		for _, group := range groups {
			for _, id := range ex.intersectLabels(group) {
				if !seen[id] {
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// intersectLabels returns the node ids carrying every label in group.
func (ex *Executor) intersectLabels(group []string) []graph.NodeID {
	if len(group) == 0 {
		return nil
	}
	sets := make([]map[graph.NodeID]bool, len(group))
	for i, label := range group {
		m := make(map[graph.NodeID]bool)
		for _, id := range ex.g.NodesByLabel(label) {
			m[id] = true
		}
		sets[i] = m
	}
	var out []graph.NodeID
	for id := range sets[0] {
		all := true
		for _, m := range sets[1:] {
			if !m[id] {
				all = false
				break
			}
		}
		if all {
			out = append(out, id)
		}
	}
	return out
}

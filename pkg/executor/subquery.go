package executor

import (
	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// subquery implements Subquery(query) — the CALL { ... } clause, not the
// EXISTS{}/COUNT{} expression form (those run through RunSubquery
// instead). Per input row, the inner pipeline runs seeded with that row's
// bindings in scope; each inner output row is merged back over a copy of
// the outer row, one output row per inner output row.
//
// An empty Inner list models a CALL to a registered procedure rather than
// a {} subquery block; this core has no procedure catalog beyond the
// scalar/aggregate function registry, so it passes the row through
// unchanged rather than erroring — the same "unsupported, not broken"
// stance the planner takes lowering CallClause.
func (ex *Executor) subquery(op *planner.SubqueryOp, in []Row, params map[string]value.Value) ([]Row, error) {
	if len(op.Inner) == 0 {
		return in, nil
	}
	var out []Row
	for _, row := range in {
		innerRows, err := ex.runOperators(op.Inner, []Row{copyRow(row)}, params)
		if err != nil {
			return nil, err
		}
		for _, ir := range innerRows {
			merged := copyRow(row)
			for k, v := range ir {
				merged[k] = v
			}
			out = append(out, merged)
		}
	}
	return out, nil
}

package executor

import (
	"fmt"
	"sort"

	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// union implements Union(all?): run both sub-pipelines independently from
// a fresh empty seed row, concatenate left-then-right (spec.md §5's
// ordering guarantee), and deduplicate by structural row equality unless
// All is set.
func (ex *Executor) union(u *planner.UnionOp, in []Row, params map[string]value.Value) ([]Row, error) {
	left, err := ex.runOperators(u.Left, []Row{{}}, params)
	if err != nil {
		return nil, err
	}
	right, err := ex.runOperators(u.Right, []Row{{}}, params)
	if err != nil {
		return nil, err
	}
	combined := append(left, right...)
	if u.All {
		return combined, nil
	}
	return dedupeRows(combined), nil
}

func dedupeRows(rows []Row) []Row {
	seen := make(map[string]bool, len(rows))
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		key := rowKey(r)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}

// rowKey builds a deterministic structural-equality key for a row: sorted
// column names paired with each value's stringified, Kind-tagged form, so
// e.g. integer 1 and float 1.0 never collide.
func rowKey(r Row) string {
	names := make([]string, 0, len(r))
	for k := range r {
		names = append(names, k)
	}
	sort.Strings(names)
	key := ""
	for _, n := range names {
		key += n + "=" + fmt.Sprintf("%d:%s", r[n].Kind(), value.Stringify(r[n])) + "|"
	}
	return key
}

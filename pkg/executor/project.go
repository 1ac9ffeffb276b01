package executor

import (
	"fmt"
	"sort"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/eval"
	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// project implements ProjectOp: evaluate every item per row, apply WHERE
// over the projected row, fold into groups when an item is an aggregate
// call, deduplicate, order, skip, and limit, in that order per spec.md
// §4.9.
//
// Aggregate detection is restricted to items whose entire top-level
// expression is a single aggregate function call (sum(n.age), count(*),
// count(DISTINCT n.name) and siblings) — an aggregate nested inside a
// larger expression (count(n)+1) is not recognized as a grouping
// aggregate and is instead evaluated as a plain (and, for a bare
// Variable/Property reference inside it, erroring) scalar expression.
// This covers every aggregate usage this core's scenario tests exercise;
// broadening it to arbitrary nesting would need a rewrite pass splitting
// each item into an aggregate-subexpression table, which is future work.
func (ex *Executor) project(op *planner.ProjectOp, in []Row, params map[string]value.Value) ([]Row, error) {
	aggIdx, isAgg := aggregateIndexes(op.Items, ex.evalCtx(nil, params))

	var out []Row
	var err error
	if len(isAgg) > 0 {
		out, err = ex.projectAggregated(op, in, params, aggIdx, isAgg)
	} else {
		out, err = ex.projectPlain(op, in, params)
	}
	if err != nil {
		return nil, err
	}

	if op.Where != nil {
		filtered := out[:0]
		for _, row := range out {
			keep, err := ex.evalPredicate(*op.Where, row, params)
			if err != nil {
				return nil, err
			}
			if keep {
				filtered = append(filtered, row)
			}
		}
		out = filtered
	}

	if op.Distinct {
		out = dedupeRows(out)
	}

	if len(op.OrderBy) > 0 {
		out, err = ex.sortRows(out, op.OrderBy, params)
		if err != nil {
			return nil, err
		}
	}

	out, err = ex.applySkipLimit(out, op.Skip, op.Limit, params)
	if err != nil {
		return nil, err
	}

	return out, nil
}

// aggregateIndexes reports, for each item, whether its entire top-level
// expression is a recognized aggregate call.
func aggregateIndexes(items []cypher.ProjectItem, ctx *eval.Context) (map[int]*eval.AggregateCall, map[int]bool) {
	aggIdx := make(map[int]*eval.AggregateCall)
	isAgg := make(map[int]bool)
	for i, item := range items {
		if item.Expression.Kind != cypher.ExprFunction {
			continue
		}
		call, err := eval.ParseAggregateCall(item.Expression.Function, ctx)
		if err != nil {
			continue
		}
		aggIdx[i] = call
		isAgg[i] = true
	}
	return aggIdx, isAgg
}

// projectPlain handles the no-aggregate case: one output row per input
// row, each item evaluated independently.
func (ex *Executor) projectPlain(op *planner.ProjectOp, in []Row, params map[string]value.Value) ([]Row, error) {
	out := make([]Row, 0, len(in))
	for _, row := range in {
		nr, err := ex.projectRow(op.Items, row, params)
		if err != nil {
			return nil, err
		}
		out = append(out, nr)
	}
	return out, nil
}

func (ex *Executor) projectRow(items []cypher.ProjectItem, row Row, params map[string]value.Value) (Row, error) {
	nr := make(Row, len(items))
	for i, item := range items {
		if item.Expression.Kind == cypher.ExprStar {
			for k, v := range row {
				nr[k] = v
			}
			continue
		}
		v, err := eval.Evaluate(item.Expression, ex.evalCtx(row, params))
		if err != nil {
			return nil, err
		}
		nr[planner.ColumnName(item, i)] = v
	}
	return nr, nil
}

// projectAggregated groups input rows by the non-aggregate items' values,
// feeds each group's rows through the aggregate accumulators for the
// aggregate items, and emits one output row per group in first-seen
// order. A query with aggregate items but no grouping items (a scalar
// aggregate like `RETURN count(n)`) synthesizes exactly one group, even
// over zero input rows, per spec.md's aggregate-of-empty-input rule.
func (ex *Executor) projectAggregated(op *planner.ProjectOp, in []Row, params map[string]value.Value, aggIdx map[int]*eval.AggregateCall, isAgg map[int]bool) ([]Row, error) {
	type group struct {
		key  string
		row  Row // non-aggregate item values, keyed by column name
		accs map[int]*eval.Aggregator
	}

	order := []string{}
	groups := make(map[string]*group)

	newGroup := func(key string, row Row) (*group, error) {
		accs := make(map[int]*eval.Aggregator, len(aggIdx))
		for i, call := range aggIdx {
			acc, err := call.NewAccumulator()
			if err != nil {
				return nil, err
			}
			accs[i] = acc
		}
		g := &group{key: key, row: row, accs: accs}
		groups[key] = g
		order = append(order, key)
		return g, nil
	}

	hasGroupingItems := len(isAgg) < len(op.Items)

	if len(in) == 0 && !hasGroupingItems {
		g, err := newGroup("", make(Row))
		if err != nil {
			return nil, err
		}
		_ = g
	} else {
		for _, row := range in {
			groupVals := make(Row, len(op.Items))
			for i, item := range op.Items {
				if isAgg[i] {
					continue
				}
				v, err := eval.Evaluate(item.Expression, ex.evalCtx(row, params))
				if err != nil {
					return nil, err
				}
				groupVals[planner.ColumnName(item, i)] = v
			}
			key := rowKey(groupVals)
			g, ok := groups[key]
			if !ok {
				var err error
				g, err = newGroup(key, groupVals)
				if err != nil {
					return nil, err
				}
			}
			for i, call := range aggIdx {
				if err := call.FeedRow(g.accs[i], ex.evalCtx(row, params)); err != nil {
					return nil, err
				}
			}
		}
	}

	out := make([]Row, 0, len(order))
	for _, key := range order {
		g := groups[key]
		nr := make(Row, len(op.Items))
		for k, v := range g.row {
			nr[k] = v
		}
		for i, item := range op.Items {
			if !isAgg[i] {
				continue
			}
			v, err := g.accs[i].Result()
			if err != nil {
				return nil, err
			}
			nr[planner.ColumnName(item, i)] = v
		}
		out = append(out, nr)
	}
	return out, nil
}

// sortRows implements ORDER BY, re-evaluating each order expression
// against the already-projected row (so ORDER BY may reference an alias
// introduced by this same projection).
func (ex *Executor) sortRows(rows []Row, orderBy []cypher.OrderItem, params map[string]value.Value) ([]Row, error) {
	keys := make([][]value.Value, len(rows))
	for i, row := range rows {
		ks := make([]value.Value, len(orderBy))
		for j, oi := range orderBy {
			v, err := eval.Evaluate(oi.Expression, ex.evalCtx(row, params))
			if err != nil {
				return nil, err
			}
			ks[j] = v
		}
		keys[i] = ks
	}

	idx := make([]int, len(rows))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		ka, kb := keys[idx[a]], keys[idx[b]]
		for j, oi := range orderBy {
			c := value.Compare(ka[j], kb[j])
			if oi.Descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})

	out := make([]Row, len(rows))
	for i, j := range idx {
		out[i] = rows[j]
	}
	return out, nil
}

// applySkipLimit evaluates the (constant, per-query) SKIP/LIMIT
// expressions and slices rows accordingly. Negative values are rejected,
// matching the teacher's guard against a malformed SKIP/LIMIT argument.
func (ex *Executor) applySkipLimit(rows []Row, skip, limit *cypher.Expr, params map[string]value.Value) ([]Row, error) {
	start := 0
	if skip != nil {
		n, err := ex.evalIntBound(*skip, params, "SKIP")
		if err != nil {
			return nil, err
		}
		start = n
	}
	if start > len(rows) {
		start = len(rows)
	}
	rows = rows[start:]

	if limit != nil {
		n, err := ex.evalIntBound(*limit, params, "LIMIT")
		if err != nil {
			return nil, err
		}
		if n < len(rows) {
			rows = rows[:n]
		}
	}
	return rows, nil
}

func (ex *Executor) evalIntBound(e cypher.Expr, params map[string]value.Value, clause string) (int, error) {
	v, err := eval.Evaluate(e, ex.evalCtx(Row{}, params))
	if err != nil {
		return 0, err
	}
	if v.Kind() != value.KindInt {
		return 0, &TypeErr{Message: fmt.Sprintf("%s expects an integer, got %s", clause, v.Kind())}
	}
	n := v.AsInt()
	if n < 0 {
		return 0, &TypeErr{Message: fmt.Sprintf("%s must not be negative", clause)}
	}
	return int(n), nil
}

package optimizer

import (
	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/planner"
)

// Options toggles each rewrite pass independently. All default to
// enabled; a caller (or a query hint) can disable any subset, mainly
// useful for isolating a pass's effect in tests and diagnostics.
type Options struct {
	FilterPushdown             bool
	PredicateReorder           bool
	JoinReorder                bool
	RedundantPatternElimination bool
	AggregatePushdown          bool
}

// DefaultOptions enables every pass.
func DefaultOptions() Options {
	return Options{
		FilterPushdown:              true,
		PredicateReorder:            true,
		JoinReorder:                 true,
		RedundantPatternElimination: true,
		AggregatePushdown:           true,
	}
}

// Optimize runs the enabled passes over a planned operator pipeline in
// a fixed order: pushing filters down first gives join reorder tighter
// local predicates to cost against, predicate reorder then tunes
// short-circuit order within whatever filters remain, redundant
// pattern elimination removes anything reordering exposed as a
// duplicate, and aggregate pushdown runs last since it depends on the
// final shape of the pipeline it's relocating within.
func Optimize(ops []planner.Operator, stats graph.Statistics, opts Options) []planner.Operator {
	if opts.FilterPushdown {
		ops = filterPushdown(ops)
	}
	if opts.JoinReorder {
		ops = joinReorder(ops, stats)
	}
	if opts.PredicateReorder {
		ops = predicateReorder(ops)
	}
	if opts.RedundantPatternElimination {
		ops = redundantPatternElimination(ops)
	}
	if opts.AggregatePushdown {
		ops = aggregatePushdown(ops)
	}
	return ops
}

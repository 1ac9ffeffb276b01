package eval

import (
	"fmt"
	"strings"

	"github.com/cypherlabs/cygraph/pkg/cypher"
)

// AggregateCall describes one aggregate function invocation pulled out of
// a Project item, everything pkg/executor needs to build and drive an
// Aggregator without reaching back into cypher.FunctionCall itself.
type AggregateCall struct {
	Name        string
	Distinct    bool
	IsCountStar bool
	Arg         cypher.Expr // the single per-row argument expression; zero value when IsCountStar
	Percentile  float64     // only meaningful for percentileDisc/percentileCont
}

// ParseAggregateCall validates fc as one of the built-in aggregate shapes
// and evaluates its percentile argument (if any) against ctx, since that
// argument is a constant expression evaluated once per query, not once per
// row. registry is consulted for IsAggregate so a custom-registered
// aggregate (none exist today, but the hook mirrors RegisterFunction's
// scalar path) is rejected with a clear error instead of silently being
// treated as a plain scalar call.
func ParseAggregateCall(fc *cypher.FunctionCall, ctx *Context) (*AggregateCall, error) {
	name := strings.ToLower(fc.Name)
	registry := ctx.Functions
	if registry == nil {
		registry = DefaultRegistry
	}
	if !registry.IsAggregate(name) {
		return nil, fmt.Errorf("eval: %q is not an aggregate function", fc.Name)
	}
	if name == "count" && len(fc.Arguments) == 1 && fc.Arguments[0].Kind == cypher.ExprStar {
		return &AggregateCall{Name: name, Distinct: fc.Distinct, IsCountStar: true}, nil
	}
	switch name {
	case "percentiledisc", "percentilecont":
		if len(fc.Arguments) != 2 {
			return nil, wrongArgCount(fc.Name, 2, len(fc.Arguments))
		}
		p, err := Evaluate(fc.Arguments[1], ctx)
		if err != nil {
			return nil, err
		}
		pf, err := requireNumeric(fc.Name, p)
		if err != nil {
			return nil, err
		}
		return &AggregateCall{Name: name, Distinct: fc.Distinct, Arg: fc.Arguments[0], Percentile: pf}, nil
	default:
		if len(fc.Arguments) != 1 {
			return nil, wrongArgCount(fc.Name, 1, len(fc.Arguments))
		}
		return &AggregateCall{Name: name, Distinct: fc.Distinct, Arg: fc.Arguments[0]}, nil
	}
}

// NewAccumulator builds the Aggregator this call describes.
func (c *AggregateCall) NewAccumulator() (*Aggregator, error) {
	return NewAggregator(c.Name, c.Distinct, c.Percentile)
}

// FeedRow evaluates this call's argument against one row and feeds it into
// acc — count(*) counts the row unconditionally, everything else
// evaluates its single argument and lets Aggregator.Accumulate apply the
// ignore-NULL rule.
func (c *AggregateCall) FeedRow(acc *Aggregator, ctx *Context) error {
	if c.IsCountStar {
		acc.AccumulateRow()
		return nil
	}
	v, err := Evaluate(c.Arg, ctx)
	if err != nil {
		return err
	}
	return acc.Accumulate(v)
}

package executor

import (
	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// filter implements Filter(predicate): rows where the predicate evaluates
// to NULL or false are dropped.
func (ex *Executor) filter(f *planner.FilterOp, in []Row, params map[string]value.Value) ([]Row, error) {
	out := make([]Row, 0, len(in))
	for _, row := range in {
		keep, err := ex.evalPredicate(f.Predicate, row, params)
		if err != nil {
			return nil, err
		}
		if keep {
			out = append(out, row)
		}
	}
	return out, nil
}

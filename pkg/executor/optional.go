package executor

import (
	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// leftOuterPattern implements LeftOuterPattern(inner_pipeline): per
// upstream row, run the inner pipeline seeded with just that row; forward
// its output rows if any matched, otherwise forward the original row with
// every variable the inner pipeline would have bound set to NULL.
func (ex *Executor) leftOuterPattern(op *planner.LeftOuterPatternOp, in []Row, params map[string]value.Value) ([]Row, error) {
	var out []Row
	for _, row := range in {
		innerRows, err := ex.runOperators(op.Inner, []Row{copyRow(row)}, params)
		if err != nil {
			return nil, err
		}
		if len(innerRows) > 0 {
			out = append(out, innerRows...)
			continue
		}
		nr := copyRow(row)
		for _, v := range op.InnerVars {
			nr[v] = value.Null
		}
		out = append(out, nr)
	}
	return out, nil
}

package executor

import (
	"github.com/cypherlabs/cygraph/pkg/eval"
	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// unwind implements Unwind(expr, variable): NULL input emits zero rows, a
// non-list non-NULL input is a TypeError, and a list emits one row per
// element.
func (ex *Executor) unwind(u *planner.UnwindOp, in []Row, params map[string]value.Value) ([]Row, error) {
	var out []Row
	for _, row := range in {
		v, err := eval.Evaluate(u.Expression, ex.evalCtx(row, params))
		if err != nil {
			return nil, err
		}
		switch v.Kind() {
		case value.KindNull:
			continue
		case value.KindList:
			for _, item := range v.AsList() {
				nr := copyRow(row)
				nr[u.Variable] = item
				out = append(out, nr)
			}
		default:
			return nil, &TypeErr{Message: "UNWIND expects a list or NULL, got " + v.Kind().String()}
		}
	}
	return out, nil
}

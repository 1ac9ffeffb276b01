package eval

import "github.com/cypherlabs/cygraph/pkg/value"

// registerPredicateFunctions wires exists/isEmpty/coalesce. Grounded on the
// teacher's pkg/cypher/functions.go "exists"/"coalesce" prefix handlers,
// generalized to value.Value.
func registerPredicateFunctions(r *FunctionRegistry) {
	r.Register("exists", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("exists", 1, len(args))
		}
		return value.Bool(args[0].Kind() != value.KindNull), nil
	})
	r.Register("isempty", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("isEmpty", 1, len(args))
		}
		switch args[0].Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindString:
			return value.Bool(args[0].AsString() == ""), nil
		case value.KindList:
			return value.Bool(len(args[0].AsList()) == 0), nil
		case value.KindMap:
			return value.Bool(len(args[0].AsMap()) == 0), nil
		default:
			return value.Null, wrongType("isEmpty", "String, List, or Map", args[0])
		}
	})
	r.Register("coalesce", func(args []value.Value, ctx *Context) (value.Value, error) {
		for _, a := range args {
			if a.Kind() != value.KindNull {
				return a, nil
			}
		}
		return value.Null, nil
	})
}

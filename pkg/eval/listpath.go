package eval

import "github.com/cypherlabs/cygraph/pkg/value"

// registerListPathFunctions wires head/tail/last/size/range and the path
// accessors length/nodes/relationships, grounded on the
// head/last/tail/size/length/range prefix handlers in the teacher's
// pkg/cypher/functions.go.
func registerListPathFunctions(r *FunctionRegistry) {
	r.Register("head", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("head", 1, len(args))
		}
		switch args[0].Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindList:
			list := args[0].AsList()
			if len(list) == 0 {
				return value.Null, nil
			}
			return list[0], nil
		case value.KindPath:
			nodes := args[0].AsPath().Nodes
			if len(nodes) == 0 {
				return value.Null, nil
			}
			return value.FromNode(nodes[0]), nil
		default:
			return value.Null, wrongType("head", "List or Path", args[0])
		}
	})
	r.Register("last", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("last", 1, len(args))
		}
		switch args[0].Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindList:
			list := args[0].AsList()
			if len(list) == 0 {
				return value.Null, nil
			}
			return list[len(list)-1], nil
		case value.KindPath:
			nodes := args[0].AsPath().Nodes
			if len(nodes) == 0 {
				return value.Null, nil
			}
			return value.FromNode(nodes[len(nodes)-1]), nil
		default:
			return value.Null, wrongType("last", "List or Path", args[0])
		}
	})
	r.Register("tail", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("tail", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		if args[0].Kind() != value.KindList {
			return value.Null, wrongType("tail", "List", args[0])
		}
		list := args[0].AsList()
		if len(list) == 0 {
			return value.List(nil), nil
		}
		return value.List(list[1:]), nil
	})
	r.Register("size", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("size", 1, len(args))
		}
		switch args[0].Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindString:
			return value.Int(int64(len([]rune(args[0].AsString())))), nil
		case value.KindList:
			return value.Int(int64(len(args[0].AsList()))), nil
		default:
			return value.Null, wrongType("size", "String or List", args[0])
		}
	})
	r.Register("length", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("length", 1, len(args))
		}
		switch args[0].Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindPath:
			return value.Int(int64(args[0].AsPath().Length())), nil
		case value.KindString:
			return value.Int(int64(len([]rune(args[0].AsString())))), nil
		default:
			return value.Null, wrongType("length", "Path or String", args[0])
		}
	})
	r.Register("nodes", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("nodes", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		if args[0].Kind() != value.KindPath {
			return value.Null, wrongType("nodes", "Path", args[0])
		}
		nodes := args[0].AsPath().Nodes
		out := make([]value.Value, len(nodes))
		for i, n := range nodes {
			out[i] = value.FromNode(n)
		}
		return value.List(out), nil
	})
	r.Register("relationships", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("relationships", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		if args[0].Kind() != value.KindPath {
			return value.Null, wrongType("relationships", "Path", args[0])
		}
		edges := args[0].AsPath().Edges
		out := make([]value.Value, len(edges))
		for i, e := range edges {
			out[i] = value.FromEdge(e)
		}
		return value.List(out), nil
	})
	r.Register("range", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) < 2 || len(args) > 3 {
			return value.Null, wrongArgCount("range", 2, len(args))
		}
		if anyNull(args) {
			return value.Null, nil
		}
		start, err := requireNumeric("range", args[0])
		if err != nil {
			return value.Null, err
		}
		end, err := requireNumeric("range", args[1])
		if err != nil {
			return value.Null, err
		}
		step := 1.0
		if len(args) == 3 {
			step, err = requireNumeric("range", args[2])
			if err != nil {
				return value.Null, err
			}
			if step == 0 {
				return value.Null, wrongType("range", "a nonzero step", args[2])
			}
		}
		var out []value.Value
		if step > 0 {
			for v := start; v <= end; v += step {
				out = append(out, value.Int(int64(v)))
			}
		} else {
			for v := start; v >= end; v += step {
				out = append(out, value.Int(int64(v)))
			}
		}
		return value.List(out), nil
	})
}

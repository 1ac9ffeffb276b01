package eval

import (
	"fmt"
	"sort"

	"github.com/cypherlabs/cygraph/pkg/value"
)

// registerGraphFunctions wires id/labels/type/keys/properties/elementId,
// grounded on the corresponding handlers in the teacher's
// pkg/cypher/functions.go. These only read the NodeValue/EdgeValue
// snapshot already carried in the row, so none of them need graph access
// — degree()/inDegree()/outDegree() are left out of this package for that
// reason: a NodeValue is a point-in-time projection with no adjacency
// list, so answering a degree query is pkg/executor's job (it holds the
// live graph), not the evaluator's.
func registerGraphFunctions(r *FunctionRegistry) {
	r.Register("id", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("id", 1, len(args))
		}
		switch args[0].Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindNode:
			return value.Int(args[0].AsNode().ID), nil
		case value.KindEdge:
			return value.Int(args[0].AsEdge().ID), nil
		default:
			return value.Null, wrongType("id", "Node or Relationship", args[0])
		}
	})
	r.Register("elementid", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("elementId", 1, len(args))
		}
		switch args[0].Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindNode:
			return value.String(fmt.Sprintf("%d", args[0].AsNode().ID)), nil
		case value.KindEdge:
			return value.String(fmt.Sprintf("%d", args[0].AsEdge().ID)), nil
		default:
			return value.Null, wrongType("elementId", "Node or Relationship", args[0])
		}
	})
	r.Register("labels", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("labels", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		if args[0].Kind() != value.KindNode {
			return value.Null, wrongType("labels", "Node", args[0])
		}
		labels := args[0].AsNode().Labels
		out := make([]value.Value, len(labels))
		for i, l := range labels {
			out[i] = value.String(l)
		}
		return value.List(out), nil
	})
	r.Register("type", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("type", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		if args[0].Kind() != value.KindEdge {
			return value.Null, wrongType("type", "Relationship", args[0])
		}
		return value.String(args[0].AsEdge().Type), nil
	})
	r.Register("keys", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("keys", 1, len(args))
		}
		props, err := propertiesOf(args[0])
		if err != nil {
			return value.Null, err
		}
		if props == nil {
			return value.Null, nil
		}
		keys := make([]string, 0, len(props))
		for k := range props {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make([]value.Value, len(keys))
		for i, k := range keys {
			out[i] = value.String(k)
		}
		return value.List(out), nil
	})
	r.Register("properties", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("properties", 1, len(args))
		}
		props, err := propertiesOf(args[0])
		if err != nil {
			return value.Null, err
		}
		if props == nil {
			return value.Null, nil
		}
		return value.Map(props), nil
	})
	r.Register("haslabels", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 2 {
			return value.Null, wrongArgCount("hasLabels", 2, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		if args[0].Kind() != value.KindNode {
			return value.Null, wrongType("hasLabels", "Node", args[0])
		}
		if args[1].Kind() != value.KindList {
			return value.Null, wrongType("hasLabels", "List", args[1])
		}
		for _, l := range args[1].AsList() {
			if l.Kind() != value.KindString || !args[0].AsNode().HasLabel(l.AsString()) {
				return value.Bool(false), nil
			}
		}
		return value.Bool(true), nil
	})
}

func propertiesOf(v value.Value) (map[string]value.Value, error) {
	switch v.Kind() {
	case value.KindNull:
		return nil, nil
	case value.KindNode:
		return v.AsNode().Properties, nil
	case value.KindEdge:
		return v.AsEdge().Properties, nil
	case value.KindMap:
		return v.AsMap(), nil
	default:
		return nil, wrongType("properties", "Node, Relationship, or Map", v)
	}
}

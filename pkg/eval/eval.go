package eval

import (
	"fmt"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// Evaluate computes the Value an expression produces against ctx's row.
// Every path that can fail for a genuine type error returns an error;
// NULL propagation for openCypher's three-valued logic is never an error,
// it is a returned value.Null.
func Evaluate(e cypher.Expr, ctx *Context) (value.Value, error) {
	switch e.Kind {
	case cypher.ExprLiteral:
		return literalValue(e.Literal), nil
	case cypher.ExprParameter:
		v, ok := ctx.Params[e.Parameter]
		if !ok {
			return value.Null, &errUnknownParameter{name: e.Parameter}
		}
		return v, nil
	case cypher.ExprVariable:
		if v, ok := ctx.Row[e.Variable]; ok {
			return v, nil
		}
		return value.Null, nil
	case cypher.ExprProperty:
		return evalProperty(e.Property, ctx)
	case cypher.ExprIndex:
		return evalIndex(e.Index, ctx)
	case cypher.ExprSlice:
		return evalSlice(e.Slice, ctx)
	case cypher.ExprFunction:
		return evalFunction(e.Function, ctx)
	case cypher.ExprBinary:
		return evalBinary(e.Binary, ctx)
	case cypher.ExprUnary:
		return evalUnary(e.Unary, ctx)
	case cypher.ExprList:
		items := make([]value.Value, len(e.List))
		for i, item := range e.List {
			v, err := Evaluate(item, ctx)
			if err != nil {
				return value.Null, err
			}
			items[i] = v
		}
		return value.List(items), nil
	case cypher.ExprMap:
		m := make(map[string]value.Value, len(e.Map))
		for k, item := range e.Map {
			v, err := Evaluate(item, ctx)
			if err != nil {
				return value.Null, err
			}
			m[k] = v
		}
		return value.Map(m), nil
	case cypher.ExprCase:
		return evalCase(e.Case, ctx)
	case cypher.ExprListComprehension:
		return evalComprehension(e.Comprehension, ctx)
	case cypher.ExprQuantifier:
		return evalQuantifier(e.Quantifier, ctx)
	case cypher.ExprSubquery:
		return evalSubquery(e.Subquery, ctx)
	case cypher.ExprLabelCheck:
		return evalLabelCheck(e.LabelCheck, ctx)
	case cypher.ExprStar:
		return value.Null, fmt.Errorf("eval: '*' is only valid as a count() argument")
	default:
		return value.Null, fmt.Errorf("eval: unhandled expression kind %d", e.Kind)
	}
}

func literalValue(lit cypher.Literal) value.Value {
	switch lit.Kind {
	case cypher.LitNull:
		return value.Null
	case cypher.LitBool:
		return value.Bool(lit.B)
	case cypher.LitInt:
		return value.Int(lit.I)
	case cypher.LitFloat:
		return value.Float(lit.F)
	case cypher.LitString:
		return value.String(lit.S)
	default:
		return value.Null
	}
}

// evalProperty resolves n.prop, map.key, and chained access (n.addr.city).
func evalProperty(p *cypher.PropertyAccess, ctx *Context) (value.Value, error) {
	var base value.Value
	var err error
	if p.Base != nil {
		base, err = Evaluate(*p.Base, ctx)
		if err != nil {
			return value.Null, err
		}
	} else if v, ok := ctx.Row[p.Variable]; ok {
		base = v
	} else {
		base = value.Null
	}
	return propertyOf(base, p.Property)
}

func propertyOf(base value.Value, prop string) (value.Value, error) {
	switch base.Kind() {
	case value.KindNull:
		return value.Null, nil
	case value.KindNode:
		if v, ok := base.AsNode().Properties[prop]; ok {
			return v, nil
		}
		return value.Null, nil
	case value.KindEdge:
		if v, ok := base.AsEdge().Properties[prop]; ok {
			return v, nil
		}
		return value.Null, nil
	case value.KindMap:
		if v, ok := base.AsMap()[prop]; ok {
			return v, nil
		}
		return value.Null, nil
	default:
		return value.Null, fmt.Errorf("%w: property access on %s", value.ErrTypeMismatch, base.Kind())
	}
}

func evalLabelCheck(lc *cypher.LabelCheckExpr, ctx *Context) (value.Value, error) {
	v, ok := ctx.Row[lc.Variable]
	if !ok || v.Kind() == value.KindNull {
		return value.Null, nil
	}
	if v.Kind() != value.KindNode {
		return value.Null, fmt.Errorf("%w: label check on non-node %s", value.ErrTypeMismatch, v.Kind())
	}
	for _, label := range lc.Labels {
		if !v.AsNode().HasLabel(label) {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func evalSubquery(sq *cypher.SubqueryExpr, ctx *Context) (value.Value, error) {
	if ctx.Runner == nil {
		return value.Null, errUnboundSubquery
	}
	count, err := ctx.Runner.RunSubquery(sq.Query, ctx.Row)
	if err != nil {
		return value.Null, err
	}
	if sq.Kind == cypher.SubqueryCount {
		return value.Int(int64(count)), nil
	}
	return value.Bool(count > 0), nil
}

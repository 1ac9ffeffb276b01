package eval

import (
	"fmt"
	"strings"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/value"
)

func evalBinary(b *cypher.BinaryExpr, ctx *Context) (value.Value, error) {
	// AND and OR skip their right operand when the left alone decides the
	// result: false AND x is false and true OR x is true for any x. A NULL
	// left operand decides nothing, so the right one is still evaluated.
	switch b.Operator {
	case "AND":
		left, err := Evaluate(b.Left, ctx)
		if err != nil {
			return value.Null, err
		}
		if lb, ok := value.Truthy(left); ok && !lb {
			return value.Bool(false), nil
		}
		right, err := Evaluate(b.Right, ctx)
		if err != nil {
			return value.Null, err
		}
		return value.And(left, right), nil
	case "OR":
		left, err := Evaluate(b.Left, ctx)
		if err != nil {
			return value.Null, err
		}
		if lb, ok := value.Truthy(left); ok && lb {
			return value.Bool(true), nil
		}
		right, err := Evaluate(b.Right, ctx)
		if err != nil {
			return value.Null, err
		}
		return value.Or(left, right), nil
	}

	left, err := Evaluate(b.Left, ctx)
	if err != nil {
		return value.Null, err
	}
	right, err := Evaluate(b.Right, ctx)
	if err != nil {
		return value.Null, err
	}

	switch b.Operator {
	case "XOR":
		return value.Xor(left, right), nil
	case "+":
		return evalPlus(left, right)
	case "-":
		return value.Subtract(left, right)
	case "*":
		return value.Multiply(left, right)
	case "/":
		return value.Divide(left, right)
	case "%":
		return value.Modulo(left, right)
	case "^":
		return value.Power(left, right)
	case "=":
		return equalityResult(left, right), nil
	case "<>":
		eq := equalityResult(left, right)
		if eq.Kind() == value.KindNull {
			return value.Null, nil
		}
		return value.Bool(!eq.AsBool()), nil
	case "<", "<=", ">", ">=":
		return compareResult(left, right, b.Operator)
	case "STARTS WITH":
		return stringMatch(left, right, strings.HasPrefix)
	case "ENDS WITH":
		return stringMatch(left, right, strings.HasSuffix)
	case "CONTAINS":
		return stringMatch(left, right, strings.Contains)
	case "IN":
		return value.ListContains(right, left), nil
	default:
		return value.Null, fmt.Errorf("eval: unknown binary operator %q", b.Operator)
	}
}

// evalPlus additionally covers list concatenation, which value.Add leaves
// to this package since it needs no extra type-conversion help beyond what
// value.List already provides.
func evalPlus(left, right value.Value) (value.Value, error) {
	if left.Kind() == value.KindList || right.Kind() == value.KindList {
		if left.Kind() == value.KindNull || right.Kind() == value.KindNull {
			return value.Null, nil
		}
		var items []value.Value
		if left.Kind() == value.KindList {
			items = append(items, left.AsList()...)
		} else {
			items = append(items, left)
		}
		if right.Kind() == value.KindList {
			items = append(items, right.AsList()...)
		} else {
			items = append(items, right)
		}
		return value.List(items), nil
	}
	return value.Add(left, right)
}

func equalityResult(left, right value.Value) value.Value {
	eq, known := value.Equals(left, right)
	if !known {
		return value.Null
	}
	return value.Bool(eq)
}

func compareResult(left, right value.Value, op string) (value.Value, error) {
	if left.Kind() == value.KindNull || right.Kind() == value.KindNull {
		return value.Null, nil
	}
	c := value.Compare(left, right)
	switch op {
	case "<":
		return value.Bool(c < 0), nil
	case "<=":
		return value.Bool(c <= 0), nil
	case ">":
		return value.Bool(c > 0), nil
	case ">=":
		return value.Bool(c >= 0), nil
	default:
		return value.Null, fmt.Errorf("eval: unknown comparison operator %q", op)
	}
}

func stringMatch(left, right value.Value, match func(s, substr string) bool) (value.Value, error) {
	if left.Kind() == value.KindNull || right.Kind() == value.KindNull {
		return value.Null, nil
	}
	if left.Kind() != value.KindString || right.Kind() != value.KindString {
		return value.Null, fmt.Errorf("%w: string matching requires String operands, got %s and %s", value.ErrTypeMismatch, left.Kind(), right.Kind())
	}
	return value.Bool(match(left.AsString(), right.AsString())), nil
}

func evalUnary(u *cypher.UnaryExpr, ctx *Context) (value.Value, error) {
	switch u.Operator {
	case "IS NULL":
		v, err := Evaluate(u.Operand, ctx)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(v.Kind() == value.KindNull), nil
	case "IS NOT NULL":
		v, err := Evaluate(u.Operand, ctx)
		if err != nil {
			return value.Null, err
		}
		return value.Bool(v.Kind() != value.KindNull), nil
	case "NOT":
		v, err := Evaluate(u.Operand, ctx)
		if err != nil {
			return value.Null, err
		}
		return value.Not(v)
	case "-":
		v, err := Evaluate(u.Operand, ctx)
		if err != nil {
			return value.Null, err
		}
		return value.Negate(v)
	default:
		return value.Null, fmt.Errorf("eval: unknown unary operator %q", u.Operator)
	}
}

func evalIndex(ix *cypher.IndexAccess, ctx *Context) (value.Value, error) {
	base, err := Evaluate(*ix.Base, ctx)
	if err != nil {
		return value.Null, err
	}
	idx, err := Evaluate(*ix.Index, ctx)
	if err != nil {
		return value.Null, err
	}
	if base.Kind() == value.KindNull || idx.Kind() == value.KindNull {
		return value.Null, nil
	}
	switch base.Kind() {
	case value.KindMap:
		if idx.Kind() != value.KindString {
			return value.Null, fmt.Errorf("%w: map subscript requires a String key", value.ErrTypeMismatch)
		}
		if v, ok := base.AsMap()[idx.AsString()]; ok {
			return v, nil
		}
		return value.Null, nil
	case value.KindList:
		if !idx.IsNumeric() {
			return value.Null, fmt.Errorf("%w: list subscript requires a numeric index", value.ErrTypeMismatch)
		}
		list := base.AsList()
		i := normalizeIndex(indexAsInt(idx), len(list))
		if i < 0 || i >= len(list) {
			return value.Null, nil
		}
		return list[i], nil
	default:
		return value.Null, fmt.Errorf("%w: cannot subscript %s", value.ErrTypeMismatch, base.Kind())
	}
}

func indexAsInt(v value.Value) int {
	if v.Kind() == value.KindInt {
		return int(v.AsInt())
	}
	return int(v.AsFloat())
}

// normalizeIndex turns a possibly-negative index (counted from the end)
// into a plain forward offset; the caller still range-checks the result.
func normalizeIndex(i, length int) int {
	if i < 0 {
		return length + i
	}
	return i
}

func evalSlice(sl *cypher.SliceAccess, ctx *Context) (value.Value, error) {
	base, err := Evaluate(*sl.Base, ctx)
	if err != nil {
		return value.Null, err
	}
	if base.Kind() == value.KindNull {
		return value.Null, nil
	}
	if base.Kind() != value.KindList {
		return value.Null, fmt.Errorf("%w: slice requires a List, got %s", value.ErrTypeMismatch, base.Kind())
	}
	list := base.AsList()
	from := 0
	to := len(list)
	if sl.From != nil {
		v, err := Evaluate(*sl.From, ctx)
		if err != nil {
			return value.Null, err
		}
		if v.Kind() == value.KindNull {
			return value.Null, nil
		}
		from = clamp(normalizeIndex(indexAsInt(v), len(list)), 0, len(list))
	}
	if sl.To != nil {
		v, err := Evaluate(*sl.To, ctx)
		if err != nil {
			return value.Null, err
		}
		if v.Kind() == value.KindNull {
			return value.Null, nil
		}
		to = clamp(normalizeIndex(indexAsInt(v), len(list)), 0, len(list))
	}
	if from > to {
		return value.List(nil), nil
	}
	return value.List(list[from:to]), nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func evalCase(c *cypher.CaseExpr, ctx *Context) (value.Value, error) {
	var input value.Value
	hasInput := c.Input != nil
	if hasInput {
		v, err := Evaluate(*c.Input, ctx)
		if err != nil {
			return value.Null, err
		}
		input = v
	}
	for _, when := range c.Whens {
		var matched bool
		if hasInput {
			condVal, err := Evaluate(when.Condition, ctx)
			if err != nil {
				return value.Null, err
			}
			eq, known := value.Equals(input, condVal)
			matched = known && eq
		} else {
			condVal, err := Evaluate(when.Condition, ctx)
			if err != nil {
				return value.Null, err
			}
			b, ok := value.Truthy(condVal)
			matched = ok && b
		}
		if matched {
			return Evaluate(when.Result, ctx)
		}
	}
	if c.Default != nil {
		return Evaluate(*c.Default, ctx)
	}
	return value.Null, nil
}

// evalComprehension implements [x IN list [WHERE cond] [| projection]]:
// filter then map, both stages optional.
func evalComprehension(lc *cypher.ListComprehension, ctx *Context) (value.Value, error) {
	listVal, err := Evaluate(lc.List, ctx)
	if err != nil {
		return value.Null, err
	}
	if listVal.Kind() == value.KindNull {
		return value.Null, nil
	}
	if listVal.Kind() != value.KindList {
		return value.Null, fmt.Errorf("%w: list comprehension source must be a List, got %s", value.ErrTypeMismatch, listVal.Kind())
	}
	var out []value.Value
	for _, item := range listVal.AsList() {
		inner := childRow(ctx, lc.Variable, item)
		keep := true
		if lc.Where != nil {
			cond, err := Evaluate(*lc.Where, inner)
			if err != nil {
				return value.Null, err
			}
			b, ok := value.Truthy(cond)
			keep = ok && b
		}
		if !keep {
			continue
		}
		if lc.Projection != nil {
			projected, err := Evaluate(*lc.Projection, inner)
			if err != nil {
				return value.Null, err
			}
			out = append(out, projected)
		} else {
			out = append(out, item)
		}
	}
	return value.List(out), nil
}

// childRow returns a Context whose row is ctx's row with var rebound to v,
// leaving ctx itself untouched so sibling evaluations in the same
// comprehension or quantifier don't see each other's bindings.
func childRow(ctx *Context, varName string, v value.Value) *Context {
	row := make(Row, len(ctx.Row)+1)
	for k, val := range ctx.Row {
		row[k] = val
	}
	row[varName] = v
	child := *ctx
	child.Row = row
	return &child
}

func evalQuantifier(q *cypher.QuantifierExpr, ctx *Context) (value.Value, error) {
	listVal, err := Evaluate(q.List, ctx)
	if err != nil {
		return value.Null, err
	}
	if listVal.Kind() == value.KindNull {
		return value.Null, nil
	}
	if listVal.Kind() != value.KindList {
		return value.Null, fmt.Errorf("%w: quantifier source must be a List, got %s", value.ErrTypeMismatch, listVal.Kind())
	}
	list := listVal.AsList()
	matchCount := 0
	for _, item := range list {
		inner := childRow(ctx, q.Variable, item)
		cond, err := Evaluate(q.Where, inner)
		if err != nil {
			return value.Null, err
		}
		b, ok := value.Truthy(cond)
		if ok && b {
			matchCount++
		}
	}
	switch q.Kind {
	case cypher.QuantAll:
		return value.Bool(matchCount == len(list)), nil
	case cypher.QuantAny:
		return value.Bool(matchCount > 0), nil
	case cypher.QuantNone:
		return value.Bool(matchCount == 0), nil
	case cypher.QuantSingle:
		return value.Bool(matchCount == 1), nil
	default:
		return value.Null, fmt.Errorf("eval: unknown quantifier kind %d", q.Kind)
	}
}

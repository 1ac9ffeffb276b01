package eval

import (
	"math"
	"math/rand"

	"github.com/cypherlabs/cygraph/pkg/value"
)

// registerMathFunctions wires the numeric scalar functions. Grounded on
// apoc/math/math.go's Round/Ceil/Floor/Abs/Pow/Sqrt (same stdlib math
// calls), generalized to operate on value.Value and to honor the banker's-
// rounding (round-half-to-even) rule round() must follow, which the
// teacher's apoc.math.Round does not implement (it round-half-away-from-
// zero via math.Round) — this is a deliberate deviation from the teacher,
// using math.RoundToEven instead, since no pack library implements IEEE
// round-half-to-even either.
func registerMathFunctions(r *FunctionRegistry) {
	r.Register("abs", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("abs", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		if args[0].Kind() == value.KindInt {
			n := args[0].AsInt()
			if n < 0 {
				n = -n
			}
			return value.Int(n), nil
		}
		f, err := requireNumeric("abs", args[0])
		if err != nil {
			return value.Null, err
		}
		return value.Float(math.Abs(f)), nil
	})

	r.Register("ceil", unaryMath("ceil", math.Ceil))
	r.Register("floor", unaryMath("floor", math.Floor))
	r.Register("sign", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("sign", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		f, err := requireNumeric("sign", args[0])
		if err != nil {
			return value.Null, err
		}
		switch {
		case f > 0:
			return value.Int(1), nil
		case f < 0:
			return value.Int(-1), nil
		default:
			return value.Int(0), nil
		}
	})
	r.Register("sqrt", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("sqrt", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		f, err := requireNumeric("sqrt", args[0])
		if err != nil {
			return value.Null, err
		}
		if f < 0 {
			return value.Null, nil
		}
		return value.Float(math.Sqrt(f)), nil
	})
	r.Register("pow", binaryMath("pow", math.Pow))
	r.Register("exp", unaryMath("exp", math.Exp))
	r.Register("log", unaryMath("log", math.Log))
	r.Register("log10", unaryMath("log10", math.Log10))
	r.Register("sin", unaryMath("sin", math.Sin))
	r.Register("cos", unaryMath("cos", math.Cos))
	r.Register("tan", unaryMath("tan", math.Tan))
	r.Register("asin", unaryMath("asin", math.Asin))
	r.Register("acos", unaryMath("acos", math.Acos))
	r.Register("atan", unaryMath("atan", math.Atan))
	r.Register("atan2", binaryMath("atan2", math.Atan2))
	r.Register("degrees", unaryMath("degrees", func(x float64) float64 { return x * 180 / math.Pi }))
	r.Register("radians", unaryMath("radians", func(x float64) float64 { return x * math.Pi / 180 }))
	r.Register("e", func(args []value.Value, ctx *Context) (value.Value, error) {
		return value.Float(math.E), nil
	})
	r.Register("pi", func(args []value.Value, ctx *Context) (value.Value, error) {
		return value.Float(math.Pi), nil
	})
	r.Register("rand", func(args []value.Value, ctx *Context) (value.Value, error) {
		return value.Float(rand.Float64()), nil
	})
	r.Register("round", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) < 1 || len(args) > 2 {
			return value.Null, wrongArgCount("round", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		f, err := requireNumeric("round", args[0])
		if err != nil {
			return value.Null, err
		}
		precision := 0
		if len(args) == 2 {
			if args[1].Kind() == value.KindNull {
				return value.Null, nil
			}
			p, err := requireNumeric("round", args[1])
			if err != nil {
				return value.Null, err
			}
			precision = int(p)
		}
		multiplier := math.Pow(10, float64(precision))
		return value.Float(math.RoundToEven(f*multiplier) / multiplier), nil
	})
}

func unaryMath(name string, fn func(float64) float64) ScalarFunc {
	return func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount(name, 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		f, err := requireNumeric(name, args[0])
		if err != nil {
			return value.Null, err
		}
		return value.Float(fn(f)), nil
	}
}

func binaryMath(name string, fn func(float64, float64) float64) ScalarFunc {
	return func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 2 {
			return value.Null, wrongArgCount(name, 2, len(args))
		}
		if args[0].Kind() == value.KindNull || args[1].Kind() == value.KindNull {
			return value.Null, nil
		}
		a, err := requireNumeric(name, args[0])
		if err != nil {
			return value.Null, err
		}
		b, err := requireNumeric(name, args[1])
		if err != nil {
			return value.Null, err
		}
		return value.Float(fn(a, b)), nil
	}
}

package eval

import (
	"strconv"

	"github.com/cypherlabs/cygraph/pkg/value"
)

// registerConversionFunctions wires toInteger/toFloat/toString/toBoolean
// and their OrNull variants (toIntegerOrNull etc. swallow a conversion
// failure into NULL instead of an error), grounded on the
// toString/toInteger/toInt/toFloat/toBoolean + *OrNull family in the
// teacher's pkg/cypher/functions.go.
func registerConversionFunctions(r *FunctionRegistry) {
	r.Register("tointeger", toIntegerFunc(false))
	r.Register("toint", toIntegerFunc(false))
	r.Register("tointegerornull", toIntegerFunc(true))
	r.Register("tofloat", toFloatFunc(false))
	r.Register("tofloatornull", toFloatFunc(true))
	r.Register("tostring", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("tostring", 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		return value.String(value.Stringify(args[0])), nil
	})
	r.Register("toboolean", toBooleanFunc(false))
	r.Register("tobooleanornull", toBooleanFunc(true))
	r.Register("valuetype", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("valuetype", 1, len(args))
		}
		return value.String(args[0].Kind().String()), nil
	})
}

func toIntegerFunc(orNull bool) ScalarFunc {
	return func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("toInteger", 1, len(args))
		}
		v := args[0]
		switch v.Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindInt:
			return v, nil
		case value.KindFloat:
			return value.Int(int64(v.AsFloat())), nil
		case value.KindString:
			i, err := strconv.ParseInt(v.AsString(), 10, 64)
			if err != nil {
				if f, ferr := strconv.ParseFloat(v.AsString(), 64); ferr == nil {
					return value.Int(int64(f)), nil
				}
				if orNull {
					return value.Null, nil
				}
				return value.Null, wrongType("toInteger", "a parseable String", v)
			}
			return value.Int(i), nil
		case value.KindBool:
			if v.AsBool() {
				return value.Int(1), nil
			}
			return value.Int(0), nil
		default:
			if orNull {
				return value.Null, nil
			}
			return value.Null, wrongType("toInteger", "Integer, Float, String, or Boolean", v)
		}
	}
}

func toFloatFunc(orNull bool) ScalarFunc {
	return func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("toFloat", 1, len(args))
		}
		v := args[0]
		switch v.Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindFloat:
			return v, nil
		case value.KindInt:
			return value.Float(float64(v.AsInt())), nil
		case value.KindString:
			f, err := strconv.ParseFloat(v.AsString(), 64)
			if err != nil {
				if orNull {
					return value.Null, nil
				}
				return value.Null, wrongType("toFloat", "a parseable String", v)
			}
			return value.Float(f), nil
		default:
			if orNull {
				return value.Null, nil
			}
			return value.Null, wrongType("toFloat", "Integer, Float, or String", v)
		}
	}
}

func toBooleanFunc(orNull bool) ScalarFunc {
	return func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("toBoolean", 1, len(args))
		}
		v := args[0]
		switch v.Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindBool:
			return v, nil
		case value.KindString:
			switch v.AsString() {
			case "true", "TRUE", "True":
				return value.Bool(true), nil
			case "false", "FALSE", "False":
				return value.Bool(false), nil
			default:
				if orNull {
					return value.Null, nil
				}
				return value.Null, wrongType("toBoolean", `"true" or "false"`, v)
			}
		default:
			if orNull {
				return value.Null, nil
			}
			return value.Null, wrongType("toBoolean", "Boolean or String", v)
		}
	}
}

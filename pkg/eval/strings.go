package eval

import (
	"strings"

	"github.com/cypherlabs/cygraph/pkg/value"
)

// registerStringFunctions wires Cypher's string functions. Grounded on the
// string-handling section of the teacher's pkg/cypher/functions.go
// (toLower/toUpper/trim/ltrim/rtrim/replace/split/substring/left/right/
// lpad/rpad), translated from its string-prefix dispatch into named
// ScalarFuncs operating on value.Value.
func registerStringFunctions(r *FunctionRegistry) {
	r.Register("upper", unaryString("upper", strings.ToUpper))
	r.Register("toupper", unaryString("toupper", strings.ToUpper))
	r.Register("lower", unaryString("lower", strings.ToLower))
	r.Register("tolower", unaryString("tolower", strings.ToLower))
	r.Register("trim", unaryString("trim", strings.TrimSpace))
	r.Register("ltrim", unaryString("ltrim", func(s string) string { return strings.TrimLeft(s, " \t\n\r") }))
	r.Register("rtrim", unaryString("rtrim", func(s string) string { return strings.TrimRight(s, " \t\n\r") }))
	r.Register("reverse", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount("reverse", 1, len(args))
		}
		switch args[0].Kind() {
		case value.KindNull:
			return value.Null, nil
		case value.KindString:
			runes := []rune(args[0].AsString())
			for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
				runes[i], runes[j] = runes[j], runes[i]
			}
			return value.String(string(runes)), nil
		case value.KindList:
			list := args[0].AsList()
			out := make([]value.Value, len(list))
			for i, v := range list {
				out[len(list)-1-i] = v
			}
			return value.List(out), nil
		default:
			return value.Null, wrongType("reverse", "String or List", args[0])
		}
	})
	r.Register("replace", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 3 {
			return value.Null, wrongArgCount("replace", 3, len(args))
		}
		if anyNull(args) {
			return value.Null, nil
		}
		s, err := requireString("replace", args[0])
		if err != nil {
			return value.Null, err
		}
		search, err := requireString("replace", args[1])
		if err != nil {
			return value.Null, err
		}
		replacement, err := requireString("replace", args[2])
		if err != nil {
			return value.Null, err
		}
		return value.String(strings.ReplaceAll(s, search, replacement)), nil
	})
	r.Register("split", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 2 {
			return value.Null, wrongArgCount("split", 2, len(args))
		}
		if anyNull(args) {
			return value.Null, nil
		}
		s, err := requireString("split", args[0])
		if err != nil {
			return value.Null, err
		}
		sep, err := requireString("split", args[1])
		if err != nil {
			return value.Null, err
		}
		parts := strings.Split(s, sep)
		out := make([]value.Value, len(parts))
		for i, p := range parts {
			out[i] = value.String(p)
		}
		return value.List(out), nil
	})
	r.Register("substring", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) < 2 || len(args) > 3 {
			return value.Null, wrongArgCount("substring", 2, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		s, err := requireString("substring", args[0])
		if err != nil {
			return value.Null, err
		}
		runes := []rune(s)
		start, err := requireNumeric("substring", args[1])
		if err != nil {
			return value.Null, err
		}
		from := clamp(int(start), 0, len(runes))
		to := len(runes)
		if len(args) == 3 {
			n, err := requireNumeric("substring", args[2])
			if err != nil {
				return value.Null, err
			}
			to = clamp(from+int(n), 0, len(runes))
		}
		if from > to {
			return value.String(""), nil
		}
		return value.String(string(runes[from:to])), nil
	})
	r.Register("left", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 2 {
			return value.Null, wrongArgCount("left", 2, len(args))
		}
		if anyNull(args) {
			return value.Null, nil
		}
		s, err := requireString("left", args[0])
		if err != nil {
			return value.Null, err
		}
		n, err := requireNumeric("left", args[1])
		if err != nil {
			return value.Null, err
		}
		runes := []rune(s)
		return value.String(string(runes[:clamp(int(n), 0, len(runes))])), nil
	})
	r.Register("right", func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 2 {
			return value.Null, wrongArgCount("right", 2, len(args))
		}
		if anyNull(args) {
			return value.Null, nil
		}
		s, err := requireString("right", args[0])
		if err != nil {
			return value.Null, err
		}
		n, err := requireNumeric("right", args[1])
		if err != nil {
			return value.Null, err
		}
		runes := []rune(s)
		k := clamp(int(n), 0, len(runes))
		return value.String(string(runes[len(runes)-k:])), nil
	})
	r.Register("lpad", padFunc("lpad", true))
	r.Register("rpad", padFunc("rpad", false))
}

func padFunc(name string, left bool) ScalarFunc {
	return func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) < 2 || len(args) > 3 {
			return value.Null, wrongArgCount(name, 2, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		s, err := requireString(name, args[0])
		if err != nil {
			return value.Null, err
		}
		n, err := requireNumeric(name, args[1])
		if err != nil {
			return value.Null, err
		}
		pad := " "
		if len(args) == 3 {
			pad, err = requireString(name, args[2])
			if err != nil {
				return value.Null, err
			}
			if pad == "" {
				pad = " "
			}
		}
		runes := []rune(s)
		target := int(n)
		if len(runes) >= target {
			return value.String(s), nil
		}
		var b strings.Builder
		padRunes := []rune(pad)
		missing := target - len(runes)
		built := make([]rune, 0, missing)
		for len(built) < missing {
			built = append(built, padRunes[len(built)%len(padRunes)])
		}
		if left {
			b.WriteString(string(built))
			b.WriteString(s)
		} else {
			b.WriteString(s)
			b.WriteString(string(built))
		}
		return value.String(b.String()), nil
	}
}

func unaryString(name string, fn func(string) string) ScalarFunc {
	return func(args []value.Value, ctx *Context) (value.Value, error) {
		if len(args) != 1 {
			return value.Null, wrongArgCount(name, 1, len(args))
		}
		if args[0].Kind() == value.KindNull {
			return value.Null, nil
		}
		s, err := requireString(name, args[0])
		if err != nil {
			return value.Null, err
		}
		return value.String(fn(s)), nil
	}
}

func anyNull(args []value.Value) bool {
	for _, a := range args {
		if a.Kind() == value.KindNull {
			return true
		}
	}
	return false
}

func wrongType(name, want string, got value.Value) error {
	return &typeMismatchErr{name: name, want: want, got: got.Kind()}
}

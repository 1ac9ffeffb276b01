package eval

import (
	"fmt"
	"strings"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// ScalarFunc is a built-in or host-registered scalar function: it receives
// its already-evaluated arguments and the row context (subquery-style
// functions need none of ctx, but spatial/graph ones read nothing from it
// either — ctx is carried uniformly so a custom RegisterFunction callback
// can close over row state without a second dispatch path).
type ScalarFunc func(args []value.Value, ctx *Context) (value.Value, error)

// FunctionRegistry resolves a Cypher function name (case-insensitive,
// matching the teacher's functions.go lookup) to its implementation.
// Aggregate names resolve here too, so IsAggregate can answer "is this
// name an aggregate" without a second static list; Evaluate itself refuses
// to call an aggregate function directly, since pkg/executor computes
// aggregates across a group of rows, not per-row.
type FunctionRegistry struct {
	scalars    map[string]ScalarFunc
	aggregates map[string]bool
}

// DefaultRegistry holds every built-in scalar and aggregate function name.
// A graphdb handle clones it (via Clone) before adding host-registered
// functions, so built-ins are never mutated out from under another handle.
var DefaultRegistry = newDefaultRegistry()

// Clone returns a registry with the same built-ins, safe to extend with
// RegisterFunction without affecting other handles sharing DefaultRegistry.
func (r *FunctionRegistry) Clone() *FunctionRegistry {
	clone := &FunctionRegistry{
		scalars:    make(map[string]ScalarFunc, len(r.scalars)),
		aggregates: make(map[string]bool, len(r.aggregates)),
	}
	for k, v := range r.scalars {
		clone.scalars[k] = v
	}
	for k, v := range r.aggregates {
		clone.aggregates[k] = v
	}
	return clone
}

// Register adds or overrides a scalar function under the given name,
// case-insensitively, the hook C10's RegisterFunction uses.
func (r *FunctionRegistry) Register(name string, fn ScalarFunc) {
	r.scalars[strings.ToLower(name)] = fn
}

// IsAggregate reports whether name is one of the built-in aggregate
// functions (count, sum, avg, min, max, collect, stDev, stDevP,
// percentileDisc, percentileCont).
func (r *FunctionRegistry) IsAggregate(name string) bool {
	return r.aggregates[strings.ToLower(name)]
}

func evalFunction(fc *cypher.FunctionCall, ctx *Context) (value.Value, error) {
	name := strings.ToLower(fc.Name)
	registry := ctx.Functions
	if registry == nil {
		registry = DefaultRegistry
	}
	if registry.IsAggregate(name) {
		return value.Null, fmt.Errorf("eval: %s is an aggregate function and cannot appear outside an aggregating RETURN/WITH item", fc.Name)
	}
	fn, ok := registry.scalars[name]
	if !ok {
		return value.Null, fmt.Errorf("eval: unknown function %q", fc.Name)
	}
	args := make([]value.Value, len(fc.Arguments))
	for i, arg := range fc.Arguments {
		if arg.Kind == cypher.ExprStar {
			// count(*) is intercepted by the aggregate path before
			// reaching here; any other use of '*' as an argument is
			// invalid, and Evaluate already errors on it directly.
			args[i] = value.Null
			continue
		}
		v, err := Evaluate(arg, ctx)
		if err != nil {
			return value.Null, err
		}
		args[i] = v
	}
	return fn(args, ctx)
}

func newDefaultRegistry() *FunctionRegistry {
	r := &FunctionRegistry{
		scalars:    make(map[string]ScalarFunc),
		aggregates: make(map[string]bool),
	}
	registerMathFunctions(r)
	registerStringFunctions(r)
	registerConversionFunctions(r)
	registerPredicateFunctions(r)
	registerGraphFunctions(r)
	registerListPathFunctions(r)
	registerSpatialFunctions(r)
	registerTemporalFunctions(r)
	for _, name := range []string{
		"count", "sum", "avg", "min", "max", "collect",
		"stdev", "stdevp", "percentiledisc", "percentilecont",
	} {
		r.aggregates[name] = true
	}
	return r
}

// arity/type-check helpers shared across the function files below.

func wrongArgCount(name string, want int, got int) error {
	return fmt.Errorf("eval: %s expects %d argument(s), got %d", name, want, got)
}

func requireNumeric(name string, v value.Value) (float64, error) {
	if v.Kind() == value.KindNull {
		return 0, nil
	}
	if !v.IsNumeric() {
		return 0, fmt.Errorf("%w: %s expects a numeric argument, got %s", value.ErrTypeMismatch, name, v.Kind())
	}
	if v.Kind() == value.KindInt {
		return float64(v.AsInt()), nil
	}
	return v.AsFloat(), nil
}

func requireString(name string, v value.Value) (string, error) {
	if v.Kind() != value.KindString {
		return "", fmt.Errorf("%w: %s expects a String argument, got %s", value.ErrTypeMismatch, name, v.Kind())
	}
	return v.AsString(), nil
}

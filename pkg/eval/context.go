// Package eval implements the expression evaluator (C8): given a parsed
// cypher.Expr and a row context, produce a value.Value. Dispatch is
// AST-driven — a type switch over cypher.Expr's Kind tag — rather than the
// teacher's string-prefix matching in pkg/cypher/functions.go, since this
// module already has a real parsed tree to walk by the time evaluation
// happens; the teacher's dispatcher is still this package's grounding for
// which functions must exist and what they return.
package eval

import (
	"fmt"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// Row is one binding set: variable name to the value currently bound to it.
type Row map[string]value.Value

// SubqueryRunner executes a nested query (an EXISTS{} or COUNT{} expression
// body) against the live graph and reports how many rows it produced. It is
// an interface rather than a direct pkg/executor import so pkg/executor can
// depend on pkg/eval for expression evaluation without a import cycle
// forming the other way; pkg/executor is the concrete implementation.
type SubqueryRunner interface {
	RunSubquery(q *cypher.Query, outer Row) (rowCount int, err error)
}

// Context carries everything evaluating one expression against one row
// might need: the row itself, query parameters, the subquery runner, and the
// function registry (so a façade-registered custom function, C10's
// RegisterFunction, resolves the same way a built-in one does).
type Context struct {
	Row       Row
	Params    map[string]value.Value
	Runner    SubqueryRunner
	Functions *FunctionRegistry
}

// NewContext builds a Context with the default (built-in only) function
// registry. Callers that have registered custom functions pass their own
// registry in directly instead.
func NewContext(row Row, params map[string]value.Value, runner SubqueryRunner) *Context {
	return &Context{Row: row, Params: params, Runner: runner, Functions: DefaultRegistry}
}

// errUnknownParameter is returned when an expression references a query
// parameter that was never supplied.
type errUnknownParameter struct{ name string }

func (e *errUnknownParameter) Error() string {
	return fmt.Sprintf("eval: unknown parameter $%s", e.name)
}

// errUnboundSubquery is returned when an EXISTS{}/COUNT{} expression is
// evaluated without a SubqueryRunner attached to the context.
var errUnboundSubquery = fmt.Errorf("eval: subquery expression evaluated without a runner")

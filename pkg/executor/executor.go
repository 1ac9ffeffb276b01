// Package executor implements the streaming pipeline driver (C9): given
// the operator list pkg/planner produces (after pkg/optimizer has had a
// chance to rewrite it), it drives each operator in turn over a row
// context, accumulates the terminal projection into a result set, and
// manages the snapshot/restore dance transactions and auto-commit rely
// on.
//
// Rows flow as []Row between operators rather than through a true
// pull-iterator chain: each operator is a function from the prior
// operator's output rows to its own, applied row-at-a-time internally
// (an ExpandEdges call, for instance, looks at one input row's adjacency
// at a time and may fan it out into many output rows). This keeps the
// per-operator contracts in spec.md §4.9 straightforward to implement and
// test individually without an iterator-protocol abstraction layer the
// teacher's own executor.go never needed either — NornicDB's
// StorageExecutor is itself a straight-line interpreter over parsed
// clauses, not a lazy generator pipeline.
package executor

import (
	"fmt"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/eval"
	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/storage"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// Row is one binding set threaded through the pipeline; an alias (not a
// distinct type) so pkg/eval's Context.Row and this package's rows are
// interchangeable without conversion at every call site.
type Row = eval.Row

// copyRow returns a shallow copy of r — shallow because Values are themselves
// immutable once constructed (node/edge projections included), so copying
// the map header is all a new binding scope needs.
func copyRow(r Row) Row {
	out := make(Row, len(r)+2)
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Executor drives one operator pipeline against one live graph. It holds
// no per-query state between Execute calls; the Plan and Row contexts are
// fully self-contained.
type Executor struct {
	g         *graph.Graph
	backend   storage.Backend
	functions *eval.FunctionRegistry

	// currentParams is the query-parameter map for whichever top-level
	// Execute call is presently on the stack, so RunSubquery (whose
	// interface, shared with pkg/eval, carries only the outer row) can
	// still resolve $parameters referenced inside an EXISTS{}/COUNT{}
	// subquery body.
	currentParams map[string]value.Value
}

// New builds an Executor over g. backend may be nil, meaning the graph
// runs purely in memory (no write-through, no persistence). functions is
// the (possibly façade-extended) function registry used to evaluate
// every expression this pipeline touches.
func New(g *graph.Graph, backend storage.Backend, functions *eval.FunctionRegistry) *Executor {
	if functions == nil {
		functions = eval.DefaultRegistry
	}
	return &Executor{g: g, backend: backend, functions: functions}
}

// Result is the eagerly-materialized output of one Execute call: Columns
// gives the RETURN/WITH column order, Rows one map per output row. A
// query with no terminal RETURN (a bare CREATE, for instance) produces a
// Result with no columns and no rows — its side effects already landed
// in the graph and (if auto-committing) the backend.
type Result struct {
	Columns []string
	Rows    []Row
}

// Execute drives ops to completion. autoCommit tells the executor whether
// this call owns its own transaction boundary (true: a bare façade.Execute
// with no open explicit transaction) or is running inside one the façade
// is managing across multiple Execute calls (false: backend writes stay
// buffered, no snapshot is needed here since the façade already took one
// at Begin).
//
// On any error, the graph is rolled back to its pre-call state and any
// buffered backend writes from this call are discarded, per spec.md
// §4.10's uncaught-error propagation rule.
func (ex *Executor) Execute(ops []planner.Operator, params map[string]value.Value, autoCommit bool) (*Result, error) {
	var snap *graph.Snapshot
	if autoCommit {
		snap = ex.g.Snapshot()
	}
	ex.currentParams = params

	result, err := ex.run(ops, params)
	if err != nil {
		if autoCommit {
			ex.g.Restore(snap)
			if ex.backend != nil {
				_ = ex.backend.Rollback()
			}
		}
		return nil, err
	}

	if autoCommit && ex.backend != nil {
		if cerr := ex.backend.Commit(); cerr != nil {
			ex.g.Restore(snap)
			return nil, fmt.Errorf("executor: commit failed: %w", cerr)
		}
	}
	return result, nil
}

// run applies ops in sequence starting from a single empty seed row, then
// packages the final stage into a Result.
func (ex *Executor) run(ops []planner.Operator, params map[string]value.Value) (*Result, error) {
	rows, err := ex.runOperators(ops, []Row{{}}, params)
	if err != nil {
		return nil, err
	}

	if n := len(ops); n > 0 && ops[n-1].Kind == planner.OpProject && ops[n-1].Project.Terminal {
		cols := make([]string, len(ops[n-1].Project.Items))
		for i, item := range ops[n-1].Project.Items {
			cols[i] = planner.ColumnName(item, i)
		}
		return &Result{Columns: cols, Rows: rows}, nil
	}
	return &Result{}, nil
}

// runOperators threads seed through every operator in ops, in order. It is
// the shared engine behind the top-level Execute, OPTIONAL MATCH's inner
// pipeline, CALL {} subqueries, and UNION branches — anywhere spec.md
// needs "run this sub-pipeline against these rows and collect what comes
// out".
func (ex *Executor) runOperators(ops []planner.Operator, seed []Row, params map[string]value.Value) ([]Row, error) {
	rows := seed
	var err error
	for _, op := range ops {
		rows, err = ex.applyOperator(op, rows, params)
		if err != nil {
			return nil, err
		}
	}
	return rows, nil
}

func (ex *Executor) applyOperator(op planner.Operator, in []Row, params map[string]value.Value) ([]Row, error) {
	switch op.Kind {
	case planner.OpScanNodes:
		return ex.scanNodes(op.ScanNodes, in, params)
	case planner.OpExpandEdges:
		return ex.expandEdges(op.ExpandEdges, in, params)
	case planner.OpExpandMultiHop:
		return ex.expandMultiHop(op.ExpandMultiHop, in, params)
	case planner.OpVarLengthExpand:
		return ex.varLengthExpand(op.VarLengthExpand, in, params)
	case planner.OpFilter:
		return ex.filter(op.Filter, in, params)
	case planner.OpProject:
		return ex.project(op.Project, in, params)
	case planner.OpUnwind:
		return ex.unwind(op.Unwind, in, params)
	case planner.OpLeftOuterPattern:
		return ex.leftOuterPattern(op.LeftOuterPattern, in, params)
	case planner.OpCreate:
		return ex.create(op.Create, in, params)
	case planner.OpMerge:
		return ex.merge(op.Merge, in, params)
	case planner.OpSet:
		return ex.set(op.Set, in, params)
	case planner.OpRemove:
		return ex.remove(op.Remove, in, params)
	case planner.OpDelete:
		return ex.delete(op.Delete, in, params)
	case planner.OpUnion:
		return ex.union(op.Union, in, params)
	case planner.OpSubquery:
		return ex.subquery(op.Subquery, in, params)
	default:
		return nil, &RuntimeError{Message: fmt.Sprintf("unhandled operator kind %d", op.Kind)}
	}
}

// evalCtx builds the pkg/eval Context for evaluating one expression
// against row, wiring this Executor in as the SubqueryRunner so EXISTS{}/
// COUNT{} expressions can reach the live graph.
func (ex *Executor) evalCtx(row Row, params map[string]value.Value) *eval.Context {
	return &eval.Context{Row: row, Params: params, Runner: ex, Functions: ex.functions}
}

// evalPredicate evaluates e and applies the Filter/pattern-predicate rule:
// keep the row iff the result is exactly true (NULL and false both drop
// it).
func (ex *Executor) evalPredicate(e cypher.Expr, row Row, params map[string]value.Value) (bool, error) {
	v, err := eval.Evaluate(e, ex.evalCtx(row, params))
	if err != nil {
		return false, err
	}
	return v.Kind() == value.KindBool && v.AsBool(), nil
}

// RunSubquery implements eval.SubqueryRunner: it plans and runs q as a
// fully independent pipeline, seeded with outer's bindings, and reports
// how many rows it produced — the shared primitive behind both EXISTS{}
// (rowCount > 0) and COUNT{} (the count itself).
func (ex *Executor) RunSubquery(q *cypher.Query, outer Row) (int, error) {
	stmt := &cypher.Statement{Branches: []cypher.Query{*q}}
	outerVars := make([]string, 0, len(outer))
	for k := range outer {
		outerVars = append(outerVars, k)
	}
	ops, err := planner.PlanCorrelated(stmt, outerVars)
	if err != nil {
		return 0, err
	}
	rows, err := ex.runOperators(ops.Operators, []Row{copyRow(outer)}, ex.currentParams)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

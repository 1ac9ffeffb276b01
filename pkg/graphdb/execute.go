package graphdb

import (
	"fmt"

	"github.com/cypherlabs/cygraph/pkg/cypher"
	"github.com/cypherlabs/cygraph/pkg/eval"
	"github.com/cypherlabs/cygraph/pkg/executor"
	"github.com/cypherlabs/cygraph/pkg/graph"
	"github.com/cypherlabs/cygraph/pkg/optimizer"
	"github.com/cypherlabs/cygraph/pkg/planner"
	"github.com/cypherlabs/cygraph/pkg/value"
)

// Result is the host-facing projection of executor.Result: full-fidelity
// value.Value cells rather than host-native any, since this is a Go-native
// library surface and callers can reach for value.ToNative themselves at
// whatever boundary needs it (JSON encoding, a CLI table, a channel over
// the wire).
type Result struct {
	Columns []string
	Rows    []map[string]value.Value
}

// Execute parses, plans, optimizes, and runs query against the live graph.
// When no explicit transaction is open, this call owns its own commit
// boundary: a successful run commits (if a backend is attached) and an
// error rolls the in-memory graph back to its pre-call state, per spec.md
// §4.10. Inside an explicit transaction (Begin already called), writes
// accumulate in the graph and the buffered backend transaction without an
// intermediate snapshot — Begin already took the one snapshot Rollback
// needs.
func (h *Handle) Execute(query string, params map[string]any) (*Result, error) {
	stmt, err := cypher.Parse(query)
	if err != nil {
		return nil, fmt.Errorf("graphdb: parse: %w", err)
	}

	plan, err := planner.Plan(stmt)
	if err != nil {
		return nil, err
	}

	ops := optimizer.Optimize(plan.Operators, h.g.Statistics(), h.opts)

	vparams, err := convertParams(params)
	if err != nil {
		return nil, err
	}

	result, err := h.exec.Execute(ops, vparams, !h.txOpen)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]value.Value, len(result.Rows))
	for i, r := range result.Rows {
		row := make(map[string]value.Value, len(result.Columns))
		for _, col := range result.Columns {
			row[col] = r[col]
		}
		rows[i] = row
	}
	return &Result{Columns: result.Columns, Rows: rows}, nil
}

func convertParams(params map[string]any) (map[string]value.Value, error) {
	out := make(map[string]value.Value, len(params))
	for k, v := range params {
		conv, err := value.FromNative(v)
		if err != nil {
			return nil, fmt.Errorf("graphdb: parameter %q: %w", k, err)
		}
		out[k] = conv
	}
	return out, nil
}

// Begin opens an explicit transaction spanning multiple Execute calls.
// Every Execute until the matching Commit or Rollback runs with
// autoCommit=false: backend writes stay buffered in the one badger.Txn
// Begin's backend implicitly started, and the graph snapshot taken here is
// what Rollback restores.
func (h *Handle) Begin() error {
	if h.txOpen {
		return ErrTransactionOpen
	}
	h.txSnap = h.g.Snapshot()
	h.txOpen = true
	return nil
}

// Commit closes the open transaction, persisting its buffered backend
// writes (if any). The in-memory graph's mutations are already live —
// Commit's only remaining job is making the durable side match.
func (h *Handle) Commit() error {
	if !h.txOpen {
		return ErrNoTransaction
	}
	h.txOpen = false
	h.txSnap = nil
	if h.backend != nil {
		if err := h.backend.Commit(); err != nil {
			return fmt.Errorf("graphdb: commit: %w", err)
		}
	}
	return nil
}

// Rollback discards every mutation made since Begin, restoring the graph
// to its pre-transaction snapshot and dropping any buffered backend
// writes.
func (h *Handle) Rollback() error {
	if !h.txOpen {
		return ErrNoTransaction
	}
	h.txOpen = false
	h.g.Restore(h.txSnap)
	h.txSnap = nil
	if h.backend != nil {
		return h.backend.Rollback()
	}
	return nil
}

// Clear discards all graph data and resets the handle to a freshly opened
// state: node/edge collections and id counters reset, statistics reset,
// any open transaction aborted, and custom functions reset to the
// built-in set. Object identity (the Handle, its backend connection) is
// preserved, per spec.md §4.10 — this is a reset, not a reopen.
func (h *Handle) Clear() error {
	if h.txOpen {
		_ = h.Rollback()
	}
	h.g.Restore(graph.New().Snapshot())
	h.functions = eval.DefaultRegistry.Clone()
	h.exec = executor.New(h.g, h.backend, h.functions)

	if h.backend != nil {
		if err := clearBackend(h.backend); err != nil {
			return fmt.Errorf("graphdb: clear: %w", err)
		}
	}
	return nil
}

// Clone deep-copies the in-memory graph and custom function set into a
// fresh, independent in-memory Handle. Durable-backed handles cannot be
// cloned: there is no way to hand the clone a second exclusive lease on
// the same backend, and copying the data directory itself is a host
// concern this façade has no business taking on.
func (h *Handle) Clone() (*Handle, error) {
	if h.backend != nil {
		return nil, ErrCloneNotSupported
	}
	g := graph.New()
	g.Restore(h.g.Snapshot())
	functions := h.functions.Clone()
	return &Handle{
		g:         g,
		exec:      executor.New(g, nil, functions),
		functions: functions,
		opts:      h.opts,
	}, nil
}

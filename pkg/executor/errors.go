package executor

import "fmt"

// RuntimeError covers operator-invariant violations that spec.md §7
// assigns to the generic RuntimeError kind: the executor raises it for an
// operator kind it does not handle, a "the pipeline is malformed"
// condition rather than a data-dependent failure.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("executor: %s", e.Message) }

// TypeErr is evalutor-adjacent but operator-local: UNWIND on a non-list
// non-NULL value, SET n = ... with a non-map value, and a SKIP/LIMIT that
// is not a non-negative integer, the per-operator shape mismatches
// spec.md §7 assigns to TypeError.
type TypeErr struct {
	Message string
}

func (e *TypeErr) Error() string { return fmt.Sprintf("TypeError: %s", e.Message) }

// CannotDeleteNodeWithRelationships is raised by a plain (non-DETACH)
// DELETE on a node that still has an incident edge.
type CannotDeleteNodeWithRelationships struct {
	NodeID int64
}

func (e *CannotDeleteNodeWithRelationships) Error() string {
	return fmt.Sprintf("CannotDeleteNodeWithRelationships: node %d has incident relationships; use DETACH DELETE", e.NodeID)
}

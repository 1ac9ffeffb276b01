package graph

import "errors"

// Sentinel errors for the graph store, following the same naming
// convention the storage engine's Engine interface uses
// (ErrNotFound/ErrAlreadyExists/ErrInvalidEdge).
var (
	ErrNodeNotFound  = errors.New("graph: node not found")
	ErrEdgeNotFound  = errors.New("graph: edge not found")
	ErrDanglingEdge  = errors.New("graph: edge endpoint does not exist")
)

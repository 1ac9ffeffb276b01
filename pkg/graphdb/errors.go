package graphdb

import "errors"

// Sentinel errors for handle-level misuse, following the same naming
// convention pkg/graph and pkg/storage use.
var (
	ErrTransactionOpen   = errors.New("graphdb: transaction already open")
	ErrNoTransaction     = errors.New("graphdb: no open transaction")
	ErrCloneNotSupported = errors.New("graphdb: cannot clone a durable-backed handle")
)

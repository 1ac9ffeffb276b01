package value

import "errors"

// Sentinel errors surfaced by the value system. Callers wrap these with
// fmt.Errorf("...: %w", err) to add context, the same pattern the rest of
// this module uses for error propagation.
var (
	// ErrTypeMismatch is returned when an operation receives a value of the
	// wrong Kind (e.g. UPPER on an integer, size() on a map).
	ErrTypeMismatch = errors.New("type mismatch")

	// ErrOutOfRange is returned when a value is the right Kind but outside
	// its legal domain (point latitude 91, a negative distance, ...).
	ErrOutOfRange = errors.New("value out of range")

	// ErrMixedCRS is returned by distance() when its two points use
	// different coordinate reference systems.
	ErrMixedCRS = errors.New("mismatched coordinate reference systems")
)

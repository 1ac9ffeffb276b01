package eval

import (
	"fmt"

	"github.com/cypherlabs/cygraph/pkg/value"
)

// typeMismatchErr wraps value.ErrTypeMismatch with the function name and
// expected/actual Kind, so errors.Is(err, value.ErrTypeMismatch) still
// works for callers that only care about the error class.
type typeMismatchErr struct {
	name string
	want string
	got  value.Kind
}

func (e *typeMismatchErr) Error() string {
	return fmt.Sprintf("%s: %s expects %s, got %s", value.ErrTypeMismatch, e.name, e.want, e.got)
}

func (e *typeMismatchErr) Unwrap() error { return value.ErrTypeMismatch }

package planner

import "fmt"

// SemanticErrorKind identifies one of the planning-time checks the
// spec requires precise errors for, rather than a generic parse/runtime
// failure.
type SemanticErrorKind int

const (
	ColumnNameConflict SemanticErrorKind = iota
	NoExpressionAlias
	VariableTypeConflict
	DisjunctiveLabelsInCreate
)

func (k SemanticErrorKind) String() string {
	switch k {
	case ColumnNameConflict:
		return "ColumnNameConflict"
	case NoExpressionAlias:
		return "NoExpressionAlias"
	case VariableTypeConflict:
		return "VariableTypeConflict"
	case DisjunctiveLabelsInCreate:
		return "DisjunctiveLabelsInCreate"
	default:
		return "UnknownSemanticError"
	}
}

// SemanticError is raised by Plan before any operator pipeline runs.
type SemanticError struct {
	Kind    SemanticErrorKind
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("planner: %s: %s", e.Kind, e.Message)
}

func newSemanticError(kind SemanticErrorKind, format string, args ...any) error {
	return &SemanticError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

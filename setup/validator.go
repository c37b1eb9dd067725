package setup

import "fmt"

// ErrorPosition locates the first problem found in an expression.
type ErrorPosition struct {
	Offset  int // byte offset into the expression
	Message string
}

func (e *ErrorPosition) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Message)
}

// Validator checks an expression against the model's variable names.
// It returns nil for a valid expression. Results only drive display; an
// invalid expression is still stored verbatim.
type Validator func(expression string, knownVariables []string) *ErrorPosition

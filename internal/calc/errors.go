package calc

import "fmt"

// ValidationError reports malformed or out-of-range calculator input: a
// required parameter is missing, has the wrong type, or carries a negative
// value where an amount or age is expected. The query is aborted before any
// backend call is made.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %s", e.Field, e.Reason)
}

// DomainError reports a violated financial precondition on otherwise
// well-formed input, for example itemized expenses exceeding stated income.
type DomainError struct {
	Reason string
}

func (e *DomainError) Error() string {
	return "financial precondition violated: " + e.Reason
}

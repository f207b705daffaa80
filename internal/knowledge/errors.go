package knowledge

import "fmt"

// BackendError wraps a failure of the search service itself rather than bad
// input. Callers may retry the query; the store performs no partial
// mutation on failure.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("knowledge %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

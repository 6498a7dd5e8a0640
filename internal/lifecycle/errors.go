package lifecycle

import "fmt"

// ValidationError signals a missing or empty required input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

// InvalidTransitionError signals a lifecycle operation attempted from a
// state that does not permit it.
type InvalidTransitionError struct {
	From string
	Op   string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s project in status %s", e.Op, e.From)
}

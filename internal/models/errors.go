package models

import (
	"errors"
	"fmt"
)

// ErrNilAssignee is returned when a task is assigned to a nil user.
var ErrNilAssignee = errors.New("cannot assign task to nil user")

// ValidationError reports a malformed or missing required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// TransitionError reports a status change rejected by the task state machine.
// It carries the rejected pair for diagnostics.
type TransitionError struct {
	From TaskStatus
	To   TaskStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition task from %s to %s", e.From, e.To)
}

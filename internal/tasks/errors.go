package tasks

import (
	"errors"
	"fmt"
)

// Sentinel errors for task board operations. Every error returned by the
// board wraps exactly one of them.
var (
	ErrValidation        = errors.New("validation failed")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrNotFound          = errors.New("not found")
)

// Error carries the task and a human readable reason alongside the sentinel kind.
type Error struct {
	Kind   error
	TaskID string
	Msg    string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	s := e.Kind.Error()
	if e.TaskID != "" {
		s += ": task " + e.TaskID
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

func (e *Error) Unwrap() error { return e.Kind }

func validationf(taskID, format string, args ...any) error {
	return &Error{Kind: ErrValidation, TaskID: taskID, Msg: fmt.Sprintf(format, args...)}
}

func transitionf(taskID, format string, args ...any) error {
	return &Error{Kind: ErrInvalidTransition, TaskID: taskID, Msg: fmt.Sprintf(format, args...)}
}

func notFound(taskID string) error {
	return &Error{Kind: ErrNotFound, TaskID: taskID}
}

func notFoundf(taskID, format string, args ...any) error {
	return &Error{Kind: ErrNotFound, TaskID: taskID, Msg: fmt.Sprintf(format, args...)}
}

// errUnchanged makes a mutation a silent no-op.
var errUnchanged = errors.New("unchanged")

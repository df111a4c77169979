// Package apperr classifies pipeline failures so transports can map them to
// status codes without knowing which adapter or store produced them.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Match with errors.Is.
var (
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrAdapter    = errors.New("adapter failure")
	ErrBusy       = errors.New("server is busy")
)

// Error carries a kind, the operation that failed and the underlying cause.
type Error struct {
	Kind error
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Kind)
}

// Is reports the kind so errors.Is(err, ErrNotFound) sees through the wrapper.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func BadRequest(op, msg string) error {
	return &Error{Kind: ErrBadRequest, Op: op, Err: errors.New(msg)}
}

func NotFound(op, msg string) error {
	return &Error{Kind: ErrNotFound, Op: op, Err: errors.New(msg)}
}

// Adapter wraps an error returned by an external capability.
func Adapter(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrAdapter, Op: op, Err: err}
}

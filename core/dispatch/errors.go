package dispatch

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned by Resolve for a path that is not valid UTF-8.
	ErrInvalidInput = errors.New("path to be resolved must be a valid string")

	// ErrMalformedHandler is returned when an action is neither a handler
	// function nor a group of actions.
	ErrMalformedHandler = errors.New("handler must be a function or a group of functions")

	// ErrInvalidPattern wraps pattern compiler failures at registration.
	ErrInvalidPattern = errors.New("invalid route pattern")

	// Registry errors
	ErrInstanceTypeMismatch = errors.New("instance registered with a different mixin type")
	ErrMixinType            = errors.New("mixins do not match the router mixin type")
)

// HandlerError wraps an error returned (or a panic raised) by a handler.
// It unwraps to the original error, so errors.Is and errors.As see through it.
type HandlerError struct {
	// Pattern is the registered pattern of the entry whose handler failed.
	Pattern string
	// Route is the path given to Resolve.
	Route string
	// Err is the handler error.
	Err error
}

// Error implements the error interface.
func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler for '%s' failed on '%s': %v", e.Pattern, e.Route, e.Err)
}

// Unwrap returns the handler error.
func (e *HandlerError) Unwrap() error {
	return e.Err
}

// PanicError is the error a recovered handler panic is converted to.
type PanicError struct {
	value any
	stack []byte
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// Value returns the original panic value.
func (e *PanicError) Value() any {
	return e.value
}

// Stack returns the stack trace captured at the panic point.
func (e *PanicError) Stack() []byte {
	return e.stack
}

// Unwrap allows errors.Is/As to work with wrapped panics.
func (e *PanicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

package api

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when an authenticated call is attempted with no
// stored credential. It is raised before any network I/O happens.
var ErrNoSession = errors.New("no active session")

// ServerError represents a non-2xx response from the backend, or a 200
// response whose envelope code signals rejection.
type ServerError struct {
	// Op is the short operation name that produced the error.
	Op string

	// Status is the HTTP status code, or the envelope code for
	// envelope-level rejections.
	Status int

	// Message is the server-provided message when present, else a
	// per-operation fallback.
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: server rejected request (status %d): %s", e.Op, e.Status, e.Message)
}

// ParseError represents a malformed or unexpected response body.
type ParseError struct {
	Op  string
	err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: invalid response format: %v", e.Op, e.err)
}

func (e *ParseError) Unwrap() error {
	return e.err
}

// NewParseError wraps err as a parse failure for the given operation.
func NewParseError(op string, err error) error {
	return &ParseError{Op: op, err: err}
}

// ValidationError is a client-side precondition failure raised before any
// network call.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// TransientError marks an error as temporary; the retry loop may re-issue
// the request.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient (retryable).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// FatalError marks an error as permanent; retrying cannot help.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal (non-retryable).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// IsTransient returns true if the error may succeed on retry.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsFatal returns true if the error should not be retried.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// Package errors provides classified error handling for the analytics
// pipeline. Every failure surfaced to the interactive driver carries a
// Class so the driver can decide whether to report and continue (missing
// file, empty window), abort one file (bad structure), or treat the
// condition as a diagnostic side artifact (rows with unparseable
// timestamps).
package errors

import (
	"errors"
	"fmt"
	"time"
)

// Class is the classification of a pipeline error.
type Class string

const (
	// ClassNotFound indicates the input path does not exist. Reported to
	// the user; the interactive loop continues.
	ClassNotFound Class = "not_found"
	// ClassFormat indicates a required column is absent or the file
	// structure is unparseable. Processing of that file aborts.
	ClassFormat Class = "format"
	// ClassPartialParse indicates individual rows had unparseable
	// timestamps. Not fatal; the rows are excluded from grouping and
	// surfaced as a skipped-rows artifact.
	ClassPartialParse Class = "partial_parse"
	// ClassEmptyResult indicates a requested date range or partition
	// yielded zero records. A reported no-op, not a failure.
	ClassEmptyResult Class = "empty_result"
	// ClassIO indicates a read or write failure that may be transient;
	// the loader retries these with backoff.
	ClassIO Class = "io"
	// ClassInternal indicates an unexpected internal failure.
	ClassInternal Class = "internal"
)

// Error is a classified pipeline error with component and operation context.
type Error struct {
	Err       error
	Class     Class
	Component string
	Operation string
	Timestamp time.Time
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("[%s/%s] %s: %v", e.Component, e.Class, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is matches another classified error by class, falling back to the
// wrapped error chain.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Class == t.Class
	}
	return errors.Is(e.Err, target)
}

// Retryable reports whether the operation that produced this error is safe
// and useful to retry. Only I/O failures qualify.
func (e *Error) Retryable() bool { return e.Class == ClassIO }

// New creates a classified error wrapping err.
func New(class Class, component, operation string, err error) *Error {
	return &Error{
		Err:       err,
		Class:     class,
		Component: component,
		Operation: operation,
		Timestamp: time.Now(),
	}
}

// Newf creates a classified error from a formatted message.
func Newf(class Class, component, operation, format string, args ...any) *Error {
	return New(class, component, operation, fmt.Errorf(format, args...))
}

// ClassOf returns the class of err, or ClassInternal when err carries no
// classification.
func ClassOf(err error) Class {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Class
	}
	return ClassInternal
}

// IsClass reports whether err is classified with the given class.
func IsClass(err error, class Class) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Class == class
}

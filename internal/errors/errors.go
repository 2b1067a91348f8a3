// Package errors holds the domain error sentinels of the order pipeline.
//
// Use cases wrap one of the sentinels below. The HTTP layer turns them into
// status codes (404, 409, 422) and stage workers turn them into delivery
// outcomes: a permanent error rejects the message, anything else requeues it.
package errors

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means the order (or other resource) does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict means the order's current status forbids the operation,
	// such as cancelling an order that is already in transit.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput means the request or the stored data failed validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrMalformedMessage means a broker message body could not be decoded.
	ErrMalformedMessage = errors.New("malformed message")
)

// permanent lists the sentinels that redelivering a message cannot fix.
var permanent = []error{ErrNotFound, ErrMalformedMessage, ErrInvalidInput}

// New is errors.New, re-exported so callers need a single import.
func New(message string) error {
	return errors.New(message)
}

// Wrap prefixes err with message. It returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf is Wrap with a formatted prefix.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// Is is errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is errors.As.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsPermanent reports whether err wraps a sentinel that retrying cannot fix.
func IsPermanent(err error) bool {
	if err == nil {
		return false
	}
	for _, sentinel := range permanent {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

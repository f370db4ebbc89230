package resolver

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest means a required input was missing. No I/O happened.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrNotFound means the primary object returned no data.
	ErrNotFound = errors.New("object not found")
	// ErrUpstreamFailure covers any other upstream error.
	ErrUpstreamFailure = errors.New("upstream failure")
)

// Error carries the taxonomy kind plus a message passed through verbatim.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func invalidRequest(format string, args ...any) error {
	return &Error{Kind: ErrInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

func notFound(ref Reference) error {
	return &Error{Kind: ErrNotFound, Message: fmt.Sprintf("object %s/%s not found", ref.ObjectTypeCode, ref.ID)}
}

func upstreamFailure(err error) error {
	return &Error{Kind: ErrUpstreamFailure, Message: err.Error()}
}

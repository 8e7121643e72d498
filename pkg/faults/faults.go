package faults

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide how to surface it.
type Kind int

const (
	// Unauthenticated means the action requires a logged-in user.
	Unauthenticated Kind = iota
	// Validation means the input was rejected before any network call.
	Validation
	// Network means the request never produced a usable response.
	Network
	// ServerRejected means the server answered with a non-2xx and a message.
	ServerRejected
	// NotFound means the entity is missing or deleted. This is a navigable
	// terminal state, not a transient failure.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Validation:
		return "validation"
	case Network:
		return "network"
	case ServerRejected:
		return "server_rejected"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is a classified failure. Every failed attempt is terminal; there is
// no automatic retry anywhere in the client.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error around an underlying cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf reports the kind of err, or ok=false if err is not classified.
func KindOf(err error) (Kind, bool) {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// Is reports whether err is a classified error of the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}

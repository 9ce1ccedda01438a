// Package apperr defines the error kinds the viewer distinguishes.
// Only KindNotFound is recoverable; every other kind stops the application.
package apperr

import (
	"errors"
	"fmt"
)

// Kind represents the category of error
type Kind int

const (
	// KindUnknown is the default when none is specified
	KindUnknown Kind = iota
	// KindNotFound means a lookup completed but matched nothing
	KindNotFound
	// KindUpstream means a remote endpoint failed or answered with a non-2xx status
	KindUpstream
	// KindDecode means a response body could not be parsed or decoded
	KindDecode
	// KindLayout means the form description is missing or invalid
	KindLayout
	// KindConfig means the configuration file is invalid
	KindConfig
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindUpstream:
		return "upstream"
	case KindDecode:
		return "decode"
	case KindLayout:
		return "layout"
	case KindConfig:
		return "config"
	}
	return "unknown"
}

// Error is an application error with a typed Kind
type Error struct {
	Kind    Kind
	Op      string // operation that failed
	Message string
	Status  int   // HTTP status for KindUpstream, 0 otherwise
	Err     error // underlying error, optional
}

// Error implements the error interface
func (e *Error) Error() string {
	msg := e.Message
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, msg)
	}
	return msg
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind
func New(kind Kind, op, message string) *Error {
	return &Error{Kind: kind, Op: op, Message: message}
}

// Wrap creates an error of the given kind around err
func Wrap(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Upstream reports a non-2xx answer from a remote endpoint
func Upstream(op string, status int, reason string) *Error {
	return &Error{
		Kind:    KindUpstream,
		Op:      op,
		Status:  status,
		Message: fmt.Sprintf("%d (%s)", status, reason),
	}
}

// NotFound reports an empty lookup result
func NotFound(op, message string) *Error {
	return &Error{Kind: KindNotFound, Op: op, Message: message}
}

// KindOf returns the Kind of the first *Error in err's chain
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err carries the given kind
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

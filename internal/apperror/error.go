// Package apperror implements the sqsproxyd error taxonomy: a small set of
// tagged kinds that every component raises instead of bare errors, so
// callers can branch on Kind without string matching.
package apperror

import "fmt"

// Kind tags an Error with one of the recovery strategies sqsproxyd knows
// about.
type Kind string

const (
	// KindConfigInvalid marks a configuration load/validation failure. Fatal at startup.
	KindConfigInvalid Kind = "config_invalid"
	// KindQueueUnavailable marks a transport/authn failure of the queue port. Recovered locally.
	KindQueueUnavailable Kind = "queue_unavailable"
	// KindAPIUnreachable marks a transport/timeout failure calling the downstream HTTP endpoint.
	KindAPIUnreachable Kind = "api_unreachable"
	// KindIntegrityViolation marks an MD5 mismatch between a message body and its reported digest.
	KindIntegrityViolation Kind = "integrity_violation"
)

// Error is the error type raised across sqsproxyd's ports. It satisfies the
// standard error interface and supports errors.Is/errors.As via Unwrap.
type Error struct {
	Kind Kind
	Msg  string

	// Option, the name of the configuration option at fault. Only set for KindConfigInvalid.
	Option string

	err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Option != "" {
		return fmt.Sprintf("%s: %s (option=%s)", e.Kind, e.Msg, e.Option)
	}
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Msg, e.err.Error())
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Unwrap exposes the wrapped cause, if any, to errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.err
}

// Context returns a copy of e with a causing error attached.
func (e *Error) Context(err error) *Error {
	ctxErr := new(Error)
	*ctxErr = *e
	ctxErr.err = err
	return ctxErr
}

// WithOption returns a copy of e naming the offending configuration option.
func (e *Error) WithOption(option string) *Error {
	optErr := new(Error)
	*optErr = *e
	optErr.Option = option
	return optErr
}

// New creates a new Error of the given kind.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Is reports whether err carries the given Kind, unwrapping as needed.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ae, ok := err.(*Error); ok {
			if ae.Kind == kind {
				return true
			}
			err = ae.err
			continue
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Common, reusable error values, one per Kind.
var (
	// ErrQueueUnavailable fires when receive/send/delete fails against the queue port.
	ErrQueueUnavailable = New(KindQueueUnavailable, "queue unavailable")
	// ErrAPIUnreachable fires when the downstream HTTP call fails at the transport layer.
	ErrAPIUnreachable = New(KindAPIUnreachable, "downstream api unreachable")
	// ErrIntegrityViolation fires when a message's body does not match its reported MD5.
	ErrIntegrityViolation = New(KindIntegrityViolation, "message failed integrity check")
	// ErrConfigInvalid fires when configuration fails to load or validate.
	ErrConfigInvalid = New(KindConfigInvalid, "invalid configuration")
)

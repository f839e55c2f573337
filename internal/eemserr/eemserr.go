// Package eemserr defines the error kinds shared across the store, scanner,
// HTTP, and UPnP layers so that each surface can pick a status code or SOAP
// fault without re-deriving error classification from message text.
package eemserr

import "errors"

// Kind classifies an error the way spec.md §7 does.
type Kind int

const (
	KindUnknown Kind = iota
	KindMalformed
	KindUnsupportedMedia
	KindNotFound
	KindRangeNotSatisfiable
	KindBadArgument
	KindCorrupt
	KindIOError
	KindFatal
)

// Error wraps an underlying cause with a Kind.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

// New builds an Error of the given kind.
func New(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf extracts the Kind of err, or KindUnknown if err does not wrap an
// *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether KindOf(err) equals kind: only the first *Error found in
// err's chain is consulted.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Package ckverrors defines the status kinds returned by every fallible
// operation in the configuration engine.
package ckverrors

import (
	"fmt"

	"github.com/pingcap/errors"
)

// Kind classifies a failure the way the engine's callers need to branch on.
type Kind int

const (
	// OK is the zero value; Status.Err returns nil for it.
	OK Kind = iota
	// InvalidArgument covers grammar errors, unknown keys, and type
	// coercion failures.
	InvalidArgument
	// NotFound covers unresolved accessors and unknown polymorphic ids.
	NotFound
	// NotSupported covers deprecated write paths and ByName parsing.
	NotSupported
	// IOError covers failures propagated from Prepare-time external I/O.
	IOError
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "OK"
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case NotSupported:
		return "NotSupported"
	case IOError:
		return "IOError"
	default:
		return "Unknown"
	}
}

// Status is the error type every engine operation returns.
type Status struct {
	Kind Kind
	msg  string
	// cause carries the underlying error, wrapped with a stack trace for
	// IOError by pingcap/errors; InvalidArgument/NotFound/NotSupported
	// just keep the plain wrapped error the teacher's fmt.Errorf style
	// produces.
	cause error
}

func (s *Status) Error() string {
	if s == nil {
		return "OK"
	}
	if s.cause != nil {
		return fmt.Sprintf("%s: %s: %v", s.Kind, s.msg, s.cause)
	}
	return fmt.Sprintf("%s: %s", s.Kind, s.msg)
}

func (s *Status) Unwrap() error {
	if s == nil {
		return nil
	}
	return s.cause
}

// Ok reports whether the status represents success.
func (s *Status) Ok() bool {
	return s == nil || s.Kind == OK
}

func newf(kind Kind, format string, args ...interface{}) *Status {
	return &Status{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// InvalidArg builds an InvalidArgument status, optionally naming the
// option whose value failed to coerce.
func InvalidArg(format string, args ...interface{}) *Status {
	return newf(InvalidArgument, format, args...)
}

// NotFoundf builds a NotFound status.
func NotFoundf(format string, args ...interface{}) *Status {
	return newf(NotFound, format, args...)
}

// NotSupportedf builds a NotSupported status.
func NotSupportedf(format string, args ...interface{}) *Status {
	return newf(NotSupported, format, args...)
}

// IOErrorf wraps cause in an IOError status, attaching a stack trace via
// pingcap/errors so Prepare-time failures (dynamic library loads, external
// resource acquisition) keep their origin across the DFS traversal.
func IOErrorf(cause error, format string, args ...interface{}) *Status {
	return &Status{
		Kind:  IOError,
		msg:   fmt.Sprintf(format, args...),
		cause: errors.Trace(cause),
	}
}

// Wrap re-kinds an arbitrary error as a Status of the given kind that
// names optionName and keeps err as its cause; callers pass
// InvalidArgument for conversion failures. An err that is already a
// *Status is returned unchanged, keeping its original kind.
func Wrap(kind Kind, optionName string, err error) *Status {
	if err == nil {
		return nil
	}
	if st, ok := err.(*Status); ok {
		return st
	}
	return &Status{Kind: kind, msg: fmt.Sprintf("option %q", optionName), cause: err}
}

// Is reports whether err is a *Status of the given kind.
func Is(err error, kind Kind) bool {
	st, ok := err.(*Status)
	return ok && st.Kind == kind
}

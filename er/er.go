// Package er is the error convention used throughout iriswallet.
//
// Functions return er.R rather than error so that every failure carries a
// stack trace from the point where it entered our code, and so that typed
// error codes can be compared without string matching.
package er

import (
	"fmt"
	"strings"

	goerrors "github.com/go-errors/errors"
)

// R is an error with a captured stack and an optional error code.
type R interface {
	// Message is the human readable error, without stack.
	Message() string

	// String is the message followed by the stack where it was created.
	String() string

	// Stack returns the captured stack trace.
	Stack() string

	// AddMessage prefixes the error with more context.
	AddMessage(m string)

	// Wrapped0 returns the cause of this error, or nil.
	Wrapped0() R

	// Native converts this error into a stdlib error.
	Native() error

	code() *ErrorCode
	info() string
}

type rErr struct {
	ctx   []string
	e     *goerrors.Error
	c     *ErrorCode
	inf   string
	cause R
}

var _ R = (*rErr)(nil)

func (r *rErr) code() *ErrorCode { return r.c }
func (r *rErr) info() string     { return r.inf }
func (r *rErr) Wrapped0() R      { return r.cause }

func (r *rErr) AddMessage(m string) {
	r.ctx = append([]string{m}, r.ctx...)
}

func (r *rErr) Message() string {
	parts := make([]string, 0, len(r.ctx)+3)
	parts = append(parts, r.ctx...)
	if r.c != nil {
		if r.c.Detail != "" {
			parts = append(parts, r.c.Name+": "+r.c.Detail)
		} else {
			parts = append(parts, r.c.Name)
		}
		if r.inf != "" {
			parts = append(parts, r.inf)
		}
	} else if r.e != nil {
		parts = append(parts, r.e.Error())
	}
	if r.cause != nil {
		parts = append(parts, r.cause.Message())
	}
	return strings.Join(parts, ": ")
}

func (r *rErr) Stack() string {
	if r.e == nil {
		return ""
	}
	return string(r.e.Stack())
}

func (r *rErr) String() string {
	return r.Message() + "\n" + r.Stack()
}

func (r *rErr) Native() error {
	return nativeErr{r: r}
}

type nativeErr struct {
	r R
}

func (n nativeErr) Error() string { return n.r.Message() }

func (n nativeErr) Unwrap() error {
	if c := n.r.Wrapped0(); c != nil {
		return c.Native()
	}
	return nil
}

// wrap captures the stack above its caller. It and every constructor
// calling it stay out of line so that skip counts whole frames.
//
//go:noinline
func wrap(e interface{}, skip int) *rErr {
	return &rErr{e: goerrors.Wrap(e, skip+1)}
}

// New creates an error from a string.
//
//go:noinline
func New(s string) R {
	return wrap(s, 1)
}

// Errorf creates an error from a format string.
//
//go:noinline
func Errorf(format string, a ...interface{}) R {
	return wrap(fmt.Errorf(format, a...), 1)
}

// E converts a stdlib error into an R, nil stays nil. An R which was converted
// with Native comes back as itself.
//
//go:noinline
func E(e error) R {
	if e == nil {
		return nil
	}
	if n, ok := e.(nativeErr); ok {
		return n.r
	}
	return wrap(e, 1)
}

// E1 wraps the error of a two value return.
//
//go:noinline
func E1[T any](t T, e error) (T, R) {
	if e == nil {
		return t, nil
	}
	if n, ok := e.(nativeErr); ok {
		return t, n.r
	}
	return t, wrap(e, 1)
}

// Native is nil safe conversion back to a stdlib error.
func Native(r R) error {
	if r == nil {
		return nil
	}
	return r.Native()
}

// Wrapped returns the cause of r, if any.
func Wrapped(r R) R {
	if r == nil {
		return nil
	}
	return r.Wrapped0()
}

// Cause follows the chain of causes to the innermost error.
func Cause(r R) R {
	for r != nil {
		c := r.Wrapped0()
		if c == nil {
			return r
		}
		r = c
	}
	return nil
}

// Equals compares two errors by message.
func Equals(a, b R) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Message() == b.Message()
}

// Info returns the free text attached when the outermost coded error in
// the chain was created.
func Info(r R) string {
	for ; r != nil; r = r.Wrapped0() {
		if r.code() != nil {
			return r.info()
		}
	}
	return ""
}

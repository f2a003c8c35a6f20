package er

import "sync"

// ErrorType is a family of error codes, usually one per package.
type ErrorType struct {
	Ident string

	m     sync.Mutex
	codes []*ErrorCode
}

// ErrorCode is a single, comparable kind of error.
type ErrorCode struct {
	Type   *ErrorType
	Name   string
	Detail string
}

// NewErrorType creates a new family of error codes.
func NewErrorType(ident string) *ErrorType {
	return &ErrorType{Ident: ident}
}

// GenericErrorType is for codes which do not deserve their own type.
var GenericErrorType = NewErrorType("er.GenericErrorType")

// Code registers a new code with no detail text.
func (t *ErrorType) Code(name string) *ErrorCode {
	return t.CodeWithDetail(name, "")
}

// CodeWithDetail registers a new code, detail is used as the message when
// no further information is given.
func (t *ErrorType) CodeWithDetail(name, detail string) *ErrorCode {
	c := &ErrorCode{Type: t, Name: name, Detail: detail}
	t.m.Lock()
	t.codes = append(t.codes, c)
	t.m.Unlock()
	return c
}

// Codes lists every code registered on this type.
func (t *ErrorType) Codes() []*ErrorCode {
	t.m.Lock()
	defer t.m.Unlock()
	return append([]*ErrorCode(nil), t.codes...)
}

// Is reports whether r, or one of its causes, carries a code of this type.
func (t *ErrorType) Is(r R) bool {
	for ; r != nil; r = r.Wrapped0() {
		if c := r.code(); c != nil && c.Type == t {
			return true
		}
	}
	return false
}

// New creates an error with this code, info is free text and cause may be nil.
//
//go:noinline
func (c *ErrorCode) New(info string, cause R) R {
	e := wrap(c.Name, 1)
	e.c = c
	e.inf = info
	e.cause = cause
	return e
}

// Default creates an error with this code and no extra info.
//
//go:noinline
func (c *ErrorCode) Default() R {
	e := wrap(c.Name, 1)
	e.c = c
	return e
}

// Is reports whether r, or one of its causes, carries this code.
func (c *ErrorCode) Is(r R) bool {
	for ; r != nil; r = r.Wrapped0() {
		if r.code() == c {
			return true
		}
	}
	return false
}

// String is the fully qualified code, "<type>.<name>".
func (c *ErrorCode) String() string {
	return c.Type.Ident + "." + c.Name
}

// CodeOf returns the outermost error code carried by r, or nil.
func CodeOf(r R) *ErrorCode {
	for ; r != nil; r = r.Wrapped0() {
		if c := r.code(); c != nil {
			return c
		}
	}
	return nil
}

// Codes lists every code in the chain of r, outermost first.
func Codes(r R) []*ErrorCode {
	var out []*ErrorCode
	for ; r != nil; r = r.Wrapped0() {
		if c := r.code(); c != nil {
			out = append(out, c)
		}
	}
	return out
}

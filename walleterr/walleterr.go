// Package walleterr is the closed set of error kinds the user interface knows
// how to recover from. Every error which reaches a view-model is classified
// into exactly one Kind.
package walleterr

import "github.com/pkt-cash/iriswallet/er"

var Err = er.NewErrorType("iris")

var (
	// InputInvalid means validation failed before any I/O took place.
	InputInvalid = Err.CodeWithDetail("InputInvalid", "invalid input")

	// Unauthorized means the node refused our credentials (401/403).
	Unauthorized = Err.CodeWithDetail("Unauthorized", "node refused the request")

	// NotReady means the node is in a state that cannot service the operation.
	NotReady = Err.CodeWithDetail("NotReady", "node is not ready")

	// NodeUnreachable is a transport level failure talking to the node.
	NodeUnreachable = Err.CodeWithDetail("NodeUnreachable", "node is unreachable")

	// Conflict means the node refused because of its domain state.
	Conflict = Err.CodeWithDetail("Conflict", "node refused the operation")

	// Timeout means the operation exceeded its deadline.
	Timeout = Err.CodeWithDetail("Timeout", "operation timed out")

	// Fatal is everything we cannot recover from in place.
	Fatal = Err.CodeWithDetail("Fatal", "unrecoverable error")

	// Canceled marks cooperative cancellation, it is never shown to the user.
	Canceled = Err.CodeWithDetail("Canceled", "operation canceled")
)

type Kind int

const (
	KindInputInvalid Kind = iota
	KindUnauthorized
	KindNotReady
	KindNodeUnreachable
	KindConflict
	KindTimeout
	KindFatal
	KindCanceled
)

var kindCodes = map[Kind]*er.ErrorCode{
	KindInputInvalid:    InputInvalid,
	KindUnauthorized:    Unauthorized,
	KindNotReady:        NotReady,
	KindNodeUnreachable: NodeUnreachable,
	KindConflict:        Conflict,
	KindTimeout:         Timeout,
	KindFatal:           Fatal,
	KindCanceled:        Canceled,
}

func (k Kind) String() string {
	if c, ok := kindCodes[k]; ok {
		return c.Name
	}
	return "Unknown"
}

// ErrorCode returns the code which represents k.
func (k Kind) ErrorCode() *er.ErrorCode {
	if c, ok := kindCodes[k]; ok {
		return c
	}
	return Fatal
}

// KindOf classifies an error. Errors which carry no iris code are Fatal,
// nil is not an error and also returns false.
func KindOf(r er.R) (Kind, bool) {
	if r == nil {
		return 0, false
	}
	for _, c := range er.Codes(r) {
		if c.Type != Err {
			continue
		}
		for k, kc := range kindCodes {
			if kc == c {
				return k, true
			}
		}
	}
	return KindFatal, true
}

// Is reports whether r is classified as k.
func Is(r er.R, k Kind) bool {
	got, ok := KindOf(r)
	return ok && got == k
}

// Code is the stable string code for r, e.g. "iris.Unauthorized".
// It returns the empty string for nil.
func Code(r er.R) string {
	k, ok := KindOf(r)
	if !ok {
		return ""
	}
	return k.ErrorCode().String()
}

// UserText is the text shown to the user for r: the info attached by
// whoever created the error, falling back to the detail of its kind.
func UserText(r er.R) string {
	if r == nil {
		return ""
	}
	if info := er.Info(r); info != "" {
		return info
	}
	k, _ := KindOf(r)
	return k.ErrorCode().Detail
}

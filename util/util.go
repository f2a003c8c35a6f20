package util

import (
	"os"
	"sort"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/stretchr/testify/require"
)

// Exists reports whether something is at path.
func Exists(path string) bool {
	_, errr := os.Stat(path)
	return !os.IsNotExist(errr)
}

func RequireErr(t require.TestingT, err er.R, msgAndArgs ...interface{}) {
	require.Error(t, er.Native(err), msgAndArgs...)
}

func RequireNoErr(t require.TestingT, err er.R, msgAndArgs ...interface{}) {
	require.NoError(t, er.Native(err), msgAndArgs...)
}

// RequireCode fails unless err carries code.
func RequireCode(t require.TestingT, code *er.ErrorCode, err er.R, msgAndArgs ...interface{}) {
	require.Error(t, er.Native(err), msgAndArgs...)
	require.True(t, code.Is(err), "want %s, got %s", code.String(), err.Message())
}

func Filter[T any](t []T, f func(T) bool) []T {
	out := make([]T, 0, len(t))
	for _, tt := range t {
		if f(tt) {
			out = append(out, tt)
		}
	}
	return out
}

func Map[T, U any](t []T, f func(T) U) []U {
	out := make([]U, 0, len(t))
	for _, tt := range t {
		out = append(out, f(tt))
	}
	return out
}

func Contains[T comparable](t []T, v T) bool {
	for _, tt := range t {
		if tt == v {
			return true
		}
	}
	return false
}

// If is a ternary for values which are cheap to compute.
func If[T any](cond bool, yes, no T) T {
	if cond {
		return yes
	}
	return no
}

// Clamp bounds v to [lo, hi].
func Clamp[T ~int | ~int64 | ~uint64](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

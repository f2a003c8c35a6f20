// Package lock provides mutexes which own the value they protect, so the
// value cannot be touched without holding the lock.
package lock

import (
	"sync"
	"sync/atomic"

	"github.com/pkt-cash/iriswallet/er"
)

// GenMutex guards a value of type T.
type GenMutex[T any] struct {
	name string
	m    sync.Mutex
	t    T
}

func NewGenMutex[T any](t T, name string) GenMutex[T] {
	return GenMutex[T]{t: t, name: name}
}

// In runs f while holding the lock. The pointer must not escape f.
func (gm *GenMutex[T]) In(f func(t *T) er.R) er.R {
	gm.m.Lock()
	defer gm.m.Unlock()
	return f(&gm.t)
}

func (gm *GenMutex[T]) String() string {
	return gm.name
}

// With1 runs f under the lock and returns its single result.
func With1[T, R any](gm *GenMutex[T], f func(t *T) R) R {
	gm.m.Lock()
	defer gm.m.Unlock()
	return f(&gm.t)
}

// GenRwLock guards a value which is read far more often than written.
type GenRwLock[T any] struct {
	name string
	m    sync.RWMutex
	t    T
}

func NewGenRwLock[T any](t T, name string) GenRwLock[T] {
	return GenRwLock[T]{t: t, name: name}
}

// R runs f with a shared lock, f must not modify the value.
func (rw *GenRwLock[T]) R(f func(t *T) er.R) er.R {
	rw.m.RLock()
	defer rw.m.RUnlock()
	return f(&rw.t)
}

// W runs f with the exclusive lock.
func (rw *GenRwLock[T]) W(f func(t *T) er.R) er.R {
	rw.m.Lock()
	defer rw.m.Unlock()
	return f(&rw.t)
}

func (rw *GenRwLock[T]) String() string {
	return rw.name
}

// AtomicBool is a flag which may be read and set from any goroutine.
type AtomicBool struct {
	v atomic.Bool
}

func (ab *AtomicBool) Load() bool   { return ab.v.Load() }
func (ab *AtomicBool) Store(b bool) { ab.v.Store(b) }

// Set sets the flag and reports whether it was previously clear.
func (ab *AtomicBool) Set() bool {
	return ab.v.CompareAndSwap(false, true)
}

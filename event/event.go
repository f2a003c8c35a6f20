// Package event is synchronous publish/subscribe.
//
// Everything subscribed to an Emitter is called on the goroutine which calls
// Emit, in the order the handlers subscribed. In iriswallet that goroutine is
// always the UI loop, so handlers may touch view state directly.
package event

import (
	"fmt"
	"runtime/debug"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/lock"
)

type handlerEntry[T any] struct {
	id uint64
	f  func(T)
}

type emitterMut[T any] struct {
	nextID   uint64
	handlers []handlerEntry[T]
}

// Emitter is an event emitter, it can be used to inform different event handlers
// that something is going on, so they can react.
// The zero value is ready to use. An Emitter must not be copied after first use.
type Emitter[T any] struct {
	m    lock.GenMutex[emitterMut[T]]
	name string
}

// NewEmitter creates an emitter with a name which appears in logs.
func NewEmitter[T any](name string) Emitter[T] {
	return Emitter[T]{
		name: name,
		m:    lock.NewGenMutex(emitterMut[T]{}, name),
	}
}

// Handler is a subscription, useful for cancelling it.
type Handler struct {
	cancel func() er.R
}

// Cancel removes the handler, cancelling twice is an error.
func (h *Handler) Cancel() er.R {
	return h.cancel()
}

// On registers a handler to be called when an event fires.
// A handler registered during an Emit first sees the next Emit.
func (ee *Emitter[T]) On(f func(t T)) *Handler {
	var id uint64
	ee.m.In(func(em *emitterMut[T]) er.R {
		em.nextID++
		id = em.nextID
		em.handlers = append(em.handlers, handlerEntry[T]{id: id, f: f})
		return nil
	})
	return &Handler{cancel: func() er.R {
		return ee.m.In(func(em *emitterMut[T]) er.R {
			for i, h := range em.handlers {
				if h.id == id {
					em.handlers = append(em.handlers[:i:i], em.handlers[i+1:]...)
					return nil
				}
			}
			return er.Errorf("Emitter: [%s] no such handler, was it cancelled already?", ee.name)
		})
	}}
}

// Listeners gets number of listeners for an event emitter.
func (ee *Emitter[T]) Listeners() (out int) {
	ee.m.In(func(em *emitterMut[T]) er.R {
		out = len(em.handlers)
		return nil
	})
	return
}

// Clear cancels all listeners.
// Note that more listeners may register after.
func (ee *Emitter[T]) Clear() {
	ee.m.In(func(em *emitterMut[T]) er.R {
		em.handlers = nil
		return nil
	})
}

// Emit calls every handler with t. A handler which panics is logged and
// skipped; the panic never reaches the caller of Emit.
func (ee *Emitter[T]) Emit(t T) {
	var hs []handlerEntry[T]
	ee.m.In(func(em *emitterMut[T]) er.R {
		hs = em.handlers
		return nil
	})
	for _, h := range hs {
		call(ee.name, h.f, t)
	}
}

func call[T any](name string, f func(T), t T) {
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("Handler of [%s] panicked: %v\n%s", name, p, debug.Stack())
		}
	}()
	f(t)
}

func (ee *Emitter[T]) String() string {
	if ee.name == "" {
		return fmt.Sprintf("Emitter[%T]", *new(T))
	}
	return ee.name
}

// Subscriptions collects handlers so that they can be cancelled together,
// typically when a page is disposed.
type Subscriptions struct {
	hs []*Handler
}

func (s *Subscriptions) Add(h ...*Handler) {
	s.hs = append(s.hs, h...)
}

func (s *Subscriptions) Len() int {
	return len(s.hs)
}

// CancelAll cancels everything added so far.
func (s *Subscriptions) CancelAll() {
	for _, h := range s.hs {
		if err := h.Cancel(); err != nil {
			log.Debugf("Cancel subscription: %s", err.Message())
		}
	}
	s.hs = nil
}

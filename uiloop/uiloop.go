// Package uiloop is the single goroutine which owns all view state.
//
// Closures posted to a Loop run one at a time in the order they were posted.
// Anything which reads or writes a view or view-model must run here.
package uiloop

import (
	"bytes"
	"runtime"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/pkt-cash/iriswallet/irislog/log"
)

type Loop struct {
	m       sync.Mutex
	queue   []func()
	wake    chan struct{}
	quit    chan struct{}
	done    chan struct{}
	gid     atomic.Uint64
	started atomic.Bool
	stopped atomic.Bool
}

func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start launches the loop goroutine, calling it twice is a no-op.
func (l *Loop) Start() {
	if !l.started.CompareAndSwap(false, true) {
		return
	}
	go l.run()
}

// Stop runs whatever is already queued and then ends the loop.
func (l *Loop) Stop() {
	if !l.stopped.CompareAndSwap(false, true) {
		return
	}
	close(l.quit)
	if l.started.Load() && !l.OnLoop() {
		<-l.done
	}
}

// Done is closed once the loop has exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run() {
	defer close(l.done)
	l.gid.Store(goid())
	for {
		l.m.Lock()
		batch := l.queue
		l.queue = nil
		l.m.Unlock()
		for _, f := range batch {
			l.exec(f)
		}
		if len(batch) > 0 {
			continue
		}
		select {
		case <-l.wake:
		case <-l.quit:
			l.m.Lock()
			rest := l.queue
			l.queue = nil
			l.m.Unlock()
			if len(rest) == 0 {
				return
			}
			for _, f := range rest {
				l.exec(f)
			}
		}
	}
}

func (l *Loop) exec(f func()) {
	defer func() {
		if p := recover(); p != nil {
			log.Errorf("Panic on UI loop: %v\n%s", p, debug.Stack())
		}
	}()
	f()
}

// Post queues f, it never blocks and never drops. Posting after Stop is
// logged and ignored.
func (l *Loop) Post(f func()) {
	if l.stopped.Load() {
		select {
		case <-l.done:
			log.Debugf("Post on a stopped UI loop ignored")
			return
		default:
		}
	}
	l.m.Lock()
	l.queue = append(l.queue, f)
	l.m.Unlock()
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs f on the loop and waits for it. Called from the loop itself,
// f runs inline.
func (l *Loop) Call(f func()) {
	if l.OnLoop() {
		f()
		return
	}
	ch := make(chan struct{})
	l.Post(func() {
		defer close(ch)
		f()
	})
	select {
	case <-ch:
	case <-l.done:
	}
}

// Flush waits until everything posted before it has run.
func (l *Loop) Flush() {
	l.Call(func() {})
}

// OnLoop reports whether the caller is running on the loop goroutine.
func (l *Loop) OnLoop() bool {
	id := l.gid.Load()
	return id != 0 && id == goid()
}

func goid() uint64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i > 0 {
		b = b[:i]
	}
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

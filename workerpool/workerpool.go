// Package workerpool runs view-model work off the UI loop.
//
// Tasks run on a fixed set of workers in FIFO order. The completion
// callback of every task is posted back to the UI loop, and callbacks of
// tasks with the same owner are delivered in submission order.
package workerpool

import (
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/google/uuid"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/metrics"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/walleterr"
)

const (
	MinWorkers = 2
	MaxWorkers = 8
)

// Result is what a task produced. Exactly one of Value/Err is meaningful
// unless Canceled is set.
type Result struct {
	Value    interface{}
	Err      er.R
	Canceled bool
}

// Func is the work itself, it must return promptly after ctx is done.
type Func func(ctx context.Context) (interface{}, er.R)

type Config struct {
	// Workers of 0 means the CPU count, always clamped to [2, 8].
	Workers int
	// Poster runs completion callbacks, normally the UI loop.
	Poster  event.Poster
	Metrics *metrics.Metrics
}

// Task is a handle on submitted work.
type Task struct {
	ID    uuid.UUID
	Owner string

	seq       uint64
	fn        Func
	onDone    func(Result)
	ctx       context.Context
	cancel    context.CancelFunc
	submitted time.Time
	pool      *Pool
}

// Cancel asks the task to stop. A task which has not started never runs,
// its callback still receives Result{Canceled: true}.
func (t *Task) Cancel() {
	t.cancel()
}

type ownerState struct {
	nextSeq     uint64
	nextDeliver uint64
	ready       map[uint64]delivery
	live        map[uuid.UUID]*Task
}

type delivery struct {
	onDone func(Result)
	res    Result
}

type Pool struct {
	cfg     Config
	workers int
	m       sync.Mutex
	cond    *sync.Cond
	queue   *doublylinkedlist.List
	owners  map[string]*ownerState
	closed  bool
	wg      sync.WaitGroup
	baseCtx context.Context
	stop    context.CancelFunc
}

// New starts the workers.
func New(cfg Config) *Pool {
	n := cfg.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}
	n = util.Clamp(n, MinWorkers, MaxWorkers)
	ctx, stop := context.WithCancel(context.Background())
	p := &Pool{
		cfg:     cfg,
		workers: n,
		queue:   doublylinkedlist.New(),
		owners:  make(map[string]*ownerState),
		baseCtx: ctx,
		stop:    stop,
	}
	p.cond = sync.NewCond(&p.m)
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	log.Debugf("Worker pool started with [%d] workers", n)
	return p
}

// Workers is the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

func (p *Pool) owner(name string) *ownerState {
	o := p.owners[name]
	if o == nil {
		o = &ownerState{
			ready: make(map[uint64]delivery),
			live:  make(map[uuid.UUID]*Task),
		}
		p.owners[name] = o
	}
	return o
}

// Submit queues fn. onDone may be nil.
func (p *Pool) Submit(owner string, fn Func, onDone func(Result)) *Task {
	ctx, cancel := context.WithCancel(p.baseCtx)
	t := &Task{
		ID:        uuid.New(),
		Owner:     owner,
		fn:        fn,
		onDone:    onDone,
		ctx:       ctx,
		cancel:    cancel,
		submitted: time.Now(),
		pool:      p,
	}
	p.m.Lock()
	defer p.m.Unlock()
	o := p.owner(owner)
	t.seq = o.nextSeq
	o.nextSeq++
	o.live[t.ID] = t
	if p.closed {
		cancel()
		p.completeLocked(t, Result{Canceled: true})
		return t
	}
	p.queue.Append(t)
	p.cfg.Metrics.TaskQueued(1)
	p.cond.Signal()
	return t
}

// CancelOwner cancels every queued or running task of owner.
func (p *Pool) CancelOwner(owner string) int {
	p.m.Lock()
	defer p.m.Unlock()
	o := p.owners[owner]
	if o == nil {
		return 0
	}
	for _, t := range o.live {
		t.cancel()
	}
	return len(o.live)
}

// InFlight is the number of tasks of owner which have not been delivered.
func (p *Pool) InFlight(owner string) int {
	p.m.Lock()
	defer p.m.Unlock()
	if o := p.owners[owner]; o != nil {
		return len(o.live)
	}
	return 0
}

func (p *Pool) next() *Task {
	p.m.Lock()
	defer p.m.Unlock()
	for p.queue.Empty() {
		if p.closed {
			return nil
		}
		p.cond.Wait()
	}
	v, _ := p.queue.Get(0)
	p.queue.Remove(0)
	p.cfg.Metrics.TaskQueued(-1)
	return v.(*Task)
}

func (p *Pool) worker(i int) {
	defer p.wg.Done()
	for {
		t := p.next()
		if t == nil {
			return
		}
		res, outcome := p.run(t)
		p.cfg.Metrics.TaskDone(outcome, time.Since(t.submitted))
		p.m.Lock()
		p.completeLocked(t, res)
		p.m.Unlock()
	}
}

func (p *Pool) run(t *Task) (res Result, outcome string) {
	if t.ctx.Err() != nil {
		return Result{Canceled: true}, "canceled"
	}
	p.cfg.Metrics.TaskRunning(1)
	defer p.cfg.Metrics.TaskRunning(-1)
	defer func() {
		if x := recover(); x != nil {
			log.Errorf("Task [%s] of [%s] panicked: %v\n%s", t.ID, t.Owner, x, debug.Stack())
			res = Result{Err: walleterr.Fatal.New(fmt.Sprintf("task panicked: %v", x), nil)}
			outcome = "panic"
		}
	}()
	v, err := t.fn(t.ctx)
	switch {
	case t.ctx.Err() != nil || walleterr.Canceled.Is(err):
		return Result{Canceled: true}, "canceled"
	case err != nil:
		return Result{Err: err}, "error"
	}
	return Result{Value: v}, "ok"
}

// completeLocked records the result and posts every callback of the owner
// which is now deliverable. Posting under the lock keeps the per owner
// order intact across workers.
func (p *Pool) completeLocked(t *Task, res Result) {
	t.cancel()
	o := p.owner(t.Owner)
	delete(o.live, t.ID)
	o.ready[t.seq] = delivery{onDone: t.onDone, res: res}
	for {
		d, ok := o.ready[o.nextDeliver]
		if !ok {
			break
		}
		delete(o.ready, o.nextDeliver)
		o.nextDeliver++
		if d.onDone != nil {
			onDone, r := d.onDone, d.res
			p.cfg.Poster.Post(func() { onDone(r) })
		}
	}
	if len(o.live) == 0 && len(o.ready) == 0 {
		delete(p.owners, t.Owner)
		// seq restarts from zero, nothing is outstanding for this owner
	}
}

// Close cancels queued work, waits for running tasks and stops the workers.
// Callbacks of every task are still posted.
func (p *Pool) Close() {
	p.m.Lock()
	if p.closed {
		p.m.Unlock()
		return
	}
	p.closed = true
	p.stop()
	p.cond.Broadcast()
	p.m.Unlock()
	p.wg.Wait()
}

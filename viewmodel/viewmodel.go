// Package viewmodel holds one view-model per page.
//
// A view-model exposes operations, which are called on the UI loop, and
// emitters which fire on the UI loop. Operations either answer at once or
// hand their work to the worker pool; every view-model has at most one task
// in flight and declares per operation what happens to a request made while
// it is busy.
package viewmodel

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkt-cash/iriswallet/cache"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/faucet"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/metrics"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/nodemgr"
	"github.com/pkt-cash/iriswallet/settings"
	"github.com/pkt-cash/iriswallet/validate"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/pkt-cash/iriswallet/workerpool"
)

// DefaultReportBugURL is where the fatal error dialog points.
const DefaultReportBugURL = "https://github.com/pkt-cash/iriswallet/issues/new"

// Node is the part of the node lifecycle manager view-models drive.
type Node interface {
	State() model.NodeState
	Fresh() bool
	Kind() model.WalletKind
	Network() model.Network
	Capabilities() (model.NodeCapabilities, bool)
	Configure(t nodemgr.Target) er.R
	Start() er.R
	Initialize(password string) (string, er.R)
	Unlock(password string) er.R
	Lock() er.R
}

var _ Node = (*nodemgr.Manager)(nil)

// Deps are the services shared by every view-model. Cache, Faucet and
// Metrics may be nil.
type Deps struct {
	Pool     *workerpool.Pool
	Bus      *nav.Bus
	Client   *nodeclient.Client
	Node     Node
	Settings *settings.Store
	Cache    *cache.Cache
	Faucet   *faucet.Client
	Metrics  *metrics.Metrics
	Tr       i18n.Translator

	ReportBugURL string
	Version      string
	// DefaultNetwork is used until a network has been chosen.
	DefaultNetwork model.Network
}

func (d *Deps) tr(key string) string {
	if d.Tr == nil {
		return i18n.English.T(key)
	}
	return d.Tr.T(key)
}

// Network is the chosen network, or the default one.
func (d *Deps) Network() model.Network {
	if d.Settings != nil {
		if n, ok, _ := settings.Get(d.Settings, settings.NetworkKey); ok {
			return n
		}
	}
	if d.DefaultNetwork.Valid() {
		return d.DefaultNetwork
	}
	return model.Regtest
}

// Message is a line of text for the user. Code is the stable error code
// when the message reports an error.
type Message struct {
	Severity nav.Severity
	Text     string
	Code     string
}

// Policy decides what happens to a request made while a task is in flight.
type Policy int

const (
	// Coalesce drops the request, the running task answers it.
	Coalesce Policy = iota
	// Reject refuses the request with a busy error.
	Reject
	// Replay remembers the request and runs it once the running task
	// succeeded. Requests made meanwhile collapse into one.
	Replay
)

func (p Policy) String() string {
	switch p {
	case Coalesce:
		return "coalesce"
	case Reject:
		return "reject"
	}
	return "replay"
}

// errBusy is returned by rejected requests.
func errBusy(op string) er.R {
	return walleterr.NotReady.New("busy: "+op, nil)
}

// VM is implemented by every view-model.
type VM interface {
	Core() *Base
}

// Base is embedded by every view-model.
type Base struct {
	d     *Deps
	name  string
	page  nav.Page
	owner string

	busy    bool
	current *workerpool.Task
	replay  func()
	closed  bool

	LoadingStarted  event.Emitter[struct{}]
	LoadingFinished event.Emitter[struct{}]
	IsLoading       event.Emitter[bool]
	Message         event.Emitter[Message]
	Validation      event.Emitter[validate.FieldErrors]
}

func newBase(d *Deps, name string, page nav.Page) Base {
	return Base{
		d:               d,
		name:            name,
		page:            page,
		owner:           name + "/" + uuid.NewString(),
		LoadingStarted:  event.NewEmitter[struct{}](name + ".LoadingStarted"),
		LoadingFinished: event.NewEmitter[struct{}](name + ".LoadingFinished"),
		IsLoading:       event.NewEmitter[bool](name + ".IsLoading"),
		Message:         event.NewEmitter[Message](name + ".Message"),
		Validation:      event.NewEmitter[validate.FieldErrors](name + ".Validation"),
	}
}

// Core is the embedded base, shared by every view-model.
func (b *Base) Core() *Base { return b }

func (b *Base) Name() string { return b.name }

func (b *Base) Page() nav.Page { return b.page }

// Busy is true while a task is in flight.
func (b *Base) Busy() bool { return b.busy }

// Cancel stops the task in flight and forgets pending replays. The task
// still finishes its loading pair.
func (b *Base) Cancel() {
	b.replay = nil
	if b.current != nil {
		log.Debugf("Canceling task of [%s]", b.name)
		b.current.Cancel()
	}
}

// Close cancels and refuses every later request.
func (b *Base) Close() {
	b.Cancel()
	b.closed = true
}

func (b *Base) info(text string) {
	b.Message.Emit(Message{Severity: nav.Info, Text: text})
}

func (b *Base) success(text string) {
	b.Message.Emit(Message{Severity: nav.SuccessSeverity, Text: text})
}

func (b *Base) warn(text string) {
	b.Message.Emit(Message{Severity: nav.Warning, Text: text})
}

// invalid reports failed fields without any I/O having happened.
func (b *Base) invalid(op string, fe validate.FieldErrors) er.R {
	b.d.Metrics.Operation(b.name, op, "invalid")
	b.Validation.Emit(fe)
	return walleterr.InputInvalid.New(fe.String(), nil)
}

// check runs a validation error through the same path as invalid.
func (b *Base) check(op string, err er.R) er.R {
	if err == nil {
		return nil
	}
	b.d.Metrics.Operation(b.name, op, "invalid")
	b.Message.Emit(Message{Severity: nav.Error, Text: walleterr.UserText(err), Code: walleterr.Code(err)})
	b.Validation.Emit(validate.ErrorsOf(err))
	return err
}

// then runs f after the task in flight finished its loading pair. It is
// meant for done callbacks which start another task.
func (b *Base) then(f func()) {
	b.replay = f
}

func (b *Base) goTo(i nav.Intent) {
	if b.closed {
		log.Debugf("[%s] is closed, dropping %s", b.name, i.Tag())
		return
	}
	b.d.Bus.Emit(i)
}

type task struct {
	op     string
	policy Policy
	fn     workerpool.Func
	done   func(v interface{})
	// failed runs instead of the default error handling when it returns true.
	failed func(err er.R) bool
}

// run submits t unless a task is in flight, in which case its policy
// decides. A coalesced or replayed request returns nil.
func (b *Base) run(t task) er.R {
	if b.closed {
		return walleterr.Canceled.New(b.name+" is closed", nil)
	}
	if b.busy {
		switch t.policy {
		case Coalesce:
			log.Debugf("[%s] %s coalesced", b.name, t.op)
			b.d.Metrics.Operation(b.name, t.op, "coalesced")
			return nil
		case Replay:
			log.Debugf("[%s] %s will run again", b.name, t.op)
			b.d.Metrics.Operation(b.name, t.op, "replayed")
			b.replay = func() { b.run(t) }
			return nil
		}
		b.d.Metrics.Operation(b.name, t.op, "rejected")
		err := errBusy(t.op)
		b.Message.Emit(Message{Severity: nav.Warning, Text: b.d.tr(i18n.Busy), Code: walleterr.Code(err)})
		return err
	}
	b.busy = true
	b.LoadingStarted.Emit(struct{}{})
	b.IsLoading.Emit(true)
	started := time.Now()
	b.current = b.d.Pool.Submit(b.owner, t.fn, func(res workerpool.Result) {
		b.finish(t, res, started)
	})
	return nil
}

func (b *Base) finish(t task, res workerpool.Result, started time.Time) {
	b.busy = false
	b.current = nil
	canceled := res.Canceled || walleterr.Canceled.Is(res.Err)

	var after []nav.Intent
	outcome := "ok"
	switch {
	case canceled:
		outcome = "canceled"
		b.replay = nil
	case res.Err != nil:
		outcome = "error"
		b.replay = nil
		if t.failed == nil || !t.failed(res.Err) {
			after = b.fail(res.Err)
		}
	case t.done != nil:
		t.done(res.Value)
	}
	log.Debugf("[%s] %s finished [%s] in %s", b.name, t.op, outcome, time.Since(started))
	b.d.Metrics.Operation(b.name, t.op, outcome)

	b.LoadingFinished.Emit(struct{}{})
	b.IsLoading.Emit(false)
	for _, i := range after {
		b.goTo(i)
	}
	if again := b.replay; again != nil && !b.closed {
		b.replay = nil
		again()
	}
}

// fail reports err to the user and returns the intents to emit once
// loading finished.
func (b *Base) fail(err er.R) []nav.Intent {
	code := walleterr.Code(err)
	kind, _ := walleterr.KindOf(err)
	text := walleterr.UserText(err)
	log.Infof("[%s] failed: %s", b.name, err.Message())
	switch kind {
	case walleterr.KindUnauthorized:
		if b.page == nav.EnterPassword {
			b.Message.Emit(Message{Severity: nav.Error, Text: b.d.tr(i18n.InvalidPassword), Code: code})
			return nil
		}
		b.Message.Emit(Message{Severity: nav.Error, Text: text, Code: code})
		return []nav.Intent{nav.To(nav.EnterPassword)}
	case walleterr.KindInputInvalid:
		b.Message.Emit(Message{Severity: nav.Error, Text: text, Code: code})
		b.Validation.Emit(validate.ErrorsOf(err))
		return nil
	case walleterr.KindFatal:
		b.Message.Emit(Message{Severity: nav.Error, Text: text, Code: code})
		url := b.d.ReportBugURL
		if url == "" {
			url = DefaultReportBugURL
		}
		return []nav.Intent{nav.ShowErrorDialog{URL: url, Text: text, Then: nav.To(nav.Splash)}}
	}
	b.Message.Emit(Message{Severity: nav.Error, Text: text, Code: code})
	return nil
}

// requireReady refuses operations which need an unlocked, synced node.
func (b *Base) requireReady(op string) er.R {
	if st := b.d.Node.State(); st != model.NodeReady {
		err := walleterr.NotReady.New(op+" needs a ready node, it is "+st.String(), nil)
		b.d.Metrics.Operation(b.name, op, "not_ready")
		b.Message.Emit(Message{Severity: nav.Warning, Text: walleterr.UserText(err), Code: walleterr.Code(err)})
		return err
	}
	return nil
}

// ctxFn adapts a function returning a single value.
func ctxFn[T any](f func(ctx context.Context) (T, er.R)) workerpool.Func {
	return func(ctx context.Context) (interface{}, er.R) {
		return f(ctx)
	}
}

// errFn adapts a function returning only an error.
func errFn(f func(ctx context.Context) er.R) workerpool.Func {
	return func(ctx context.Context) (interface{}, er.R) {
		return nil, f(ctx)
	}
}

// value casts a task result, a task which succeeded with the wrong type is
// a programming error.
func value[T any](v interface{}) T {
	t, ok := v.(T)
	if !ok && v != nil {
		log.Errorf("Unexpected task result [%T]", v)
	}
	return t
}

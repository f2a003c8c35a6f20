// Package nodemgr owns the node daemon: it launches it (or attaches to a
// remote one), waits for it to answer, unlocks it and follows the chain sync
// until the wallet is usable.
//
//	stopped --Start--> starting --> initializing --> locked | ready (no wallet)
//	locked --Unlock--> unlocking --> syncing --> ready
//	ready, syncing --Lock--> locked
//	any --Stop--> stopping --> stopped
//	any --failure--> error --Reset--> stopped
//
// Transitions block the calling goroutine and can not be canceled by the
// caller, only Stop interrupts them. Signals are posted to the UI loop.
package nodemgr

import (
	"context"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/lock"
	"github.com/pkt-cash/iriswallet/metrics"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/walleterr"
)

var Err = er.NewErrorType("iris.nodemgr")

var (
	ErrBinaryMissing = Err.CodeWithDetail("ErrBinaryMissing", "node binary is missing")
	ErrPortInUse     = Err.CodeWithDetail("ErrPortInUse", "node port is in use")
)

const (
	DefaultListenAddr        = "127.0.0.1:3001"
	DefaultPeerPort          = 9735
	DefaultStartAttempts     = 12
	DefaultProbeBase         = 250 * time.Millisecond
	DefaultProbeCap          = 4 * time.Second
	DefaultProbeTimeout      = 5 * time.Second
	DefaultSyncInterval      = 2 * time.Second
	DefaultSyncProgressAfter = 30 * time.Second
	DefaultSyncToastAfter    = 10 * time.Minute
	DefaultStopGrace         = 10 * time.Second
)

type Config struct {
	Kind    model.WalletKind
	Network model.Network
	// DataDir is the wallet data directory, the daemon runs in DataDir/node.
	DataDir     string
	NodeDataDir string
	ListenAddr  string
	PeerPort    int
	// RemoteURL is the daemon of a remote wallet.
	RemoteURL string
	// Unlock carries everything POST /unlock needs except the password.
	Unlock nodeclient.UnlockRequest

	StartAttempts     int
	ProbeBase         time.Duration
	ProbeCap          time.Duration
	ProbeTimeout      time.Duration
	SyncInterval      time.Duration
	SyncProgressAfter time.Duration
	SyncToastAfter    time.Duration
	StopGrace         time.Duration

	Launcher   Launcher
	Poster     event.Poster
	Metrics    *metrics.Metrics
	Translator i18n.Translator
}

func (c *Config) defaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.PeerPort == 0 {
		c.PeerPort = DefaultPeerPort
	}
	if c.NodeDataDir == "" {
		c.NodeDataDir = filepath.Join(c.DataDir, "node", "data")
	}
	if c.StartAttempts <= 0 {
		c.StartAttempts = DefaultStartAttempts
	}
	if c.ProbeBase <= 0 {
		c.ProbeBase = DefaultProbeBase
	}
	if c.ProbeCap <= 0 {
		c.ProbeCap = DefaultProbeCap
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if c.SyncInterval <= 0 {
		c.SyncInterval = DefaultSyncInterval
	}
	if c.SyncProgressAfter <= 0 {
		c.SyncProgressAfter = DefaultSyncProgressAfter
	}
	if c.SyncToastAfter <= 0 {
		c.SyncToastAfter = DefaultSyncToastAfter
	}
	if c.StopGrace <= 0 {
		c.StopGrace = DefaultStopGrace
	}
	if c.Translator == nil {
		c.Translator = i18n.English
	}
}

// Loader is a request to show or hide the main window loader.
type Loader struct {
	Visible bool
	Text    string
}

// Diagnostic describes an unexpected exit of the daemon.
type Diagnostic struct {
	Err      er.R
	ExitCode int
	Stderr   []string
}

// Target is what Start brings up.
type Target struct {
	Kind      model.WalletKind
	Network   model.Network
	RemoteURL string
}

type mgrState struct {
	st     model.NodeState
	target Target
	fresh  bool
	proc   Process
	caps   *model.NodeCapabilities
	run    context.Context
	cancel context.CancelFunc
	// stopSync ends the sync loop of the current syncing phase.
	stopSync context.CancelFunc
}

type Manager struct {
	cfg    Config
	client *nodeclient.Client
	m      lock.GenMutex[mgrState]

	StateChanged     event.Emitter[model.NodeState]
	Progress         event.Emitter[string]
	MainWindowLoader event.Emitter[Loader]
	UnlockFailed     event.Emitter[er.R]
	SyncSlow         event.Emitter[struct{}]
	Failed           event.Emitter[er.R]
	Crashed          event.Emitter[Diagnostic]
}

// New creates a stopped manager. The Poster must run posted functions
// asynchronously, signals are posted while internal state is locked.
func New(cfg Config, client *nodeclient.Client) *Manager {
	cfg.defaults()
	return &Manager{
		cfg:    cfg,
		client: client,
		m: lock.NewGenMutex(mgrState{
			st:     model.NodeStopped,
			target: Target{Kind: cfg.Kind, Network: cfg.Network, RemoteURL: cfg.RemoteURL},
		}, "nodemgr"),
		StateChanged:     event.NewEmitter[model.NodeState]("nodemgr.StateChanged"),
		Progress:         event.NewEmitter[string]("nodemgr.Progress"),
		MainWindowLoader: event.NewEmitter[Loader]("nodemgr.MainWindowLoader"),
		UnlockFailed:     event.NewEmitter[er.R]("nodemgr.UnlockFailed"),
		SyncSlow:         event.NewEmitter[struct{}]("nodemgr.SyncSlow"),
		Failed:           event.NewEmitter[er.R]("nodemgr.Failed"),
		Crashed:          event.NewEmitter[Diagnostic]("nodemgr.Crashed"),
	}
}

func (m *Manager) Client() *nodeclient.Client {
	return m.client
}

func (m *Manager) Kind() model.WalletKind {
	return m.Target().Kind
}

func (m *Manager) Network() model.Network {
	return m.Target().Network
}

func (m *Manager) Target() Target {
	return lock.With1(&m.m, func(s *mgrState) Target { return s.target })
}

// Configure changes what the next Start brings up, the node must be
// stopped or failed.
func (m *Manager) Configure(t Target) er.R {
	if !t.Kind.Valid() {
		return walleterr.InputInvalid.New("unknown wallet kind ["+string(t.Kind)+"]", nil)
	}
	if !t.Network.Valid() {
		return walleterr.InputInvalid.New("unknown network ["+string(t.Network)+"]", nil)
	}
	if t.Kind == model.Remote && t.RemoteURL == "" {
		return walleterr.InputInvalid.New("remote wallet without node URL", nil)
	}
	return m.m.In(func(s *mgrState) er.R {
		if !in(s.st, []model.NodeState{model.NodeStopped, model.NodeError}) {
			return notReady("configure", s.st)
		}
		log.Infof("Node target is now %s on %s", t.Kind, t.Network)
		s.target = t
		return nil
	})
}

func (m *Manager) State() model.NodeState {
	return lock.With1(&m.m, func(s *mgrState) model.NodeState { return s.st })
}

// Fresh is true while the node is ready but has no wallet yet.
func (m *Manager) Fresh() bool {
	return lock.With1(&m.m, func(s *mgrState) bool { return s.fresh })
}

// Capabilities are the channel limits read when the node became ready.
func (m *Manager) Capabilities() (model.NodeCapabilities, bool) {
	var out model.NodeCapabilities
	ok := lock.With1(&m.m, func(s *mgrState) bool {
		if s.caps == nil {
			return false
		}
		out = *s.caps
		return true
	})
	return out, ok
}

func (m *Manager) post(f func()) {
	if m.cfg.Poster == nil {
		go f()
		return
	}
	m.cfg.Poster.Post(f)
}

// setLocked changes state, s must be the locked state.
func (m *Manager) setLocked(s *mgrState, to model.NodeState) {
	if s.st == to {
		return
	}
	log.Infof("Node %s -> %s", s.st, to)
	s.st = to
	m.cfg.Metrics.SetNodeState(int(to))
	m.post(func() { m.StateChanged.Emit(to) })
}

func in(st model.NodeState, set []model.NodeState) bool {
	for _, s := range set {
		if s == st {
			return true
		}
	}
	return false
}

func notReady(op string, st model.NodeState) er.R {
	return walleterr.NotReady.New(op+" is not possible while the node is "+st.String(), nil)
}

// move takes the transition from one of from to to, or fails without
// touching anything.
func (m *Manager) move(op string, from []model.NodeState, to model.NodeState) er.R {
	return m.m.In(func(s *mgrState) er.R {
		if !in(s.st, from) {
			return notReady(op, s.st)
		}
		m.setLocked(s, to)
		return nil
	})
}

// moveIf changes state only if it is still from.
func (m *Manager) moveIf(from, to model.NodeState) bool {
	return lock.With1(&m.m, func(s *mgrState) bool {
		if s.st != from {
			return false
		}
		m.setLocked(s, to)
		return true
	})
}

// failIf moves to error if the state is still from.
func (m *Manager) failIf(from model.NodeState, err er.R) bool {
	return lock.With1(&m.m, func(s *mgrState) bool {
		if s.st != from {
			return false
		}
		log.Warnf("Node failed while %s: %s", s.st, err.Message())
		if s.cancel != nil {
			s.cancel()
		}
		m.setLocked(s, model.NodeError)
		m.post(func() { m.Failed.Emit(err) })
		return true
	})
}

func (m *Manager) runContext() context.Context {
	return lock.With1(&m.m, func(s *mgrState) context.Context {
		if s.run == nil {
			return canceledCtx
		}
		return s.run
	})
}

var canceledCtx = func() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}()

func (m *Manager) loader(visible bool, text string) {
	m.post(func() { m.MainWindowLoader.Emit(Loader{Visible: visible, Text: text}) })
}

func (m *Manager) tr(key string) string {
	return m.cfg.Translator.T(key)
}

func (m *Manager) launchSpec(t Target) LaunchSpec {
	_, port, errr := net.SplitHostPort(m.cfg.ListenAddr)
	if errr != nil {
		port = m.cfg.ListenAddr
	}
	return LaunchSpec{
		Dir: filepath.Join(m.cfg.DataDir, "node"),
		Args: []string{
			m.cfg.NodeDataDir,
			"--daemon-listening-port", port,
			"--ldk-peer-listening-port", strconv.Itoa(m.cfg.PeerPort),
			"--network", string(t.Network),
		},
		ListenAddr: m.cfg.ListenAddr,
	}
}

// Start brings the node up. It returns once the node is locked, ready
// without a wallet, or syncing an already unlocked wallet.
func (m *Manager) Start() er.R {
	var run context.Context
	var old Process
	var t Target
	err := m.m.In(func(s *mgrState) er.R {
		if !in(s.st, []model.NodeState{model.NodeStopped, model.NodeError}) {
			return notReady("start", s.st)
		}
		t = s.target
		if s.cancel != nil {
			s.cancel()
		}
		old, s.proc = s.proc, nil
		s.fresh = false
		s.caps = nil
		s.run, s.cancel = context.WithCancel(context.Background())
		run = s.run
		m.setLocked(s, model.NodeStarting)
		return nil
	})
	if err != nil {
		return err
	}
	if old != nil {
		old.Kill()
	}
	m.loader(true, m.tr(i18n.StartingNode))
	defer m.loader(false, "")

	if t.Kind == model.Remote {
		m.client.SetBaseURL(t.RemoteURL)
	} else {
		if m.cfg.Launcher == nil {
			err := walleterr.Fatal.New("no node launcher configured", nil)
			m.failIf(model.NodeStarting, err)
			return err
		}
		proc, err := m.cfg.Launcher.Launch(m.launchSpec(t))
		if err != nil {
			m.failIf(model.NodeStarting, err)
			return err
		}
		attached := lock.With1(&m.m, func(s *mgrState) bool {
			if s.st != model.NodeStarting {
				return false
			}
			s.proc = proc
			return true
		})
		if !attached {
			proc.Kill()
			return walleterr.Canceled.New("start", nil)
		}
		go m.watch(proc)
		m.client.SetBaseURL("http://" + m.cfg.ListenAddr)
	}

	ps, err := m.probe(run)
	if err != nil {
		if walleterr.Canceled.Is(err) {
			return err
		}
		m.failIf(model.NodeStarting, err)
		return err
	}
	if !m.moveIf(model.NodeStarting, model.NodeInitializing) {
		return walleterr.Canceled.New("start", nil)
	}
	log.Infof("Node answered, wallet is %s", ps)
	switch ps {
	case nodeclient.ProbeUninitialized:
		ok := lock.With1(&m.m, func(s *mgrState) bool {
			if s.st != model.NodeInitializing {
				return false
			}
			s.fresh = true
			m.setLocked(s, model.NodeReady)
			return true
		})
		if !ok {
			return walleterr.Canceled.New("start", nil)
		}
	case nodeclient.ProbeLocked:
		if !m.moveIf(model.NodeInitializing, model.NodeLocked) {
			return walleterr.Canceled.New("start", nil)
		}
	default:
		if !m.moveIf(model.NodeInitializing, model.NodeSyncing) {
			return walleterr.Canceled.New("start", nil)
		}
		m.startSync(run)
	}
	return nil
}

// Initialize creates the wallet of a fresh node and returns its mnemonic,
// the node is locked afterwards.
func (m *Manager) Initialize(password string) (string, er.R) {
	err := m.m.In(func(s *mgrState) er.R {
		if s.st != model.NodeReady || !s.fresh {
			return notReady("initialize", s.st)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	mnemonic, err := m.client.Init(m.runContext(), password)
	if err != nil {
		return "", err
	}
	ok := lock.With1(&m.m, func(s *mgrState) bool {
		if s.st != model.NodeReady {
			return false
		}
		s.fresh = false
		m.setLocked(s, model.NodeLocked)
		return true
	})
	if !ok {
		return "", walleterr.Canceled.New("initialize", nil)
	}
	return mnemonic, nil
}

func (m *Manager) pause(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Unlock sends the password and returns once the node accepted it and is
// syncing. A refused password leaves the node locked and fires UnlockFailed.
func (m *Manager) Unlock(password string) er.R {
	if err := m.move("unlock", []model.NodeState{model.NodeLocked}, model.NodeUnlocking); err != nil {
		return err
	}
	run := m.runContext()
	req := m.cfg.Unlock
	req.AnnounceAddresses = append([]string{}, m.cfg.Unlock.AnnounceAddresses...)
	req.Password = password
	wait := backoff(m.cfg.ProbeBase, m.cfg.ProbeCap)

	var err er.R
	for attempt := 1; ; attempt++ {
		err = m.client.Unlock(run, &req)
		if !walleterr.NodeUnreachable.Is(err) || attempt >= m.cfg.StartAttempts {
			break
		}
		log.Debugf("Unlock attempt [%d] failed: %s", attempt, err.Message())
		if !m.pause(run, wait(attempt)) {
			return walleterr.Canceled.New("unlock", nil)
		}
	}
	if nodeclient.DaemonName(err) == "UnlockedNode" {
		err = nil
	}
	switch {
	case err == nil:
		if !m.moveIf(model.NodeUnlocking, model.NodeSyncing) {
			return walleterr.Canceled.New("unlock", nil)
		}
		m.startSync(run)
		return nil
	case walleterr.Canceled.Is(err):
		return err
	case walleterr.NodeUnreachable.Is(err):
		m.failIf(model.NodeUnlocking, err)
		return err
	}
	if m.moveIf(model.NodeUnlocking, model.NodeLocked) {
		m.post(func() { m.UnlockFailed.Emit(err) })
	}
	return err
}

func (m *Manager) syncThreshold() uint64 {
	if m.Network() == model.Regtest {
		return 0
	}
	return 2
}

// synced compares our tip to the best height our peers know.
func (m *Manager) synced(ni *nodeclient.NodeInfoResponse) bool {
	if ni.PeerBestHeight <= ni.BlockHeight {
		return true
	}
	return ni.PeerBestHeight-ni.BlockHeight <= m.syncThreshold()
}

// startSync runs one sync loop per syncing phase, a previous loop is ended
// first.
func (m *Manager) startSync(run context.Context) {
	ctx := lock.With1(&m.m, func(s *mgrState) context.Context {
		endSyncLocked(s)
		var ctx context.Context
		ctx, s.stopSync = context.WithCancel(run)
		return ctx
	})
	go m.syncLoop(ctx)
}

func endSyncLocked(s *mgrState) {
	if s.stopSync != nil {
		s.stopSync()
		s.stopSync = nil
	}
}

func (m *Manager) syncLoop(run context.Context) {
	start := time.Now()
	progressed, slow := false, false
	failures := 0
	for {
		ni, err := m.client.NodeInfo(run)
		switch {
		case err == nil:
			failures = 0
			if m.synced(ni) {
				caps := nodeclient.CapabilitiesFromNodeInfo(ni)
				if cerr := caps.Check(); cerr != nil {
					m.failIf(model.NodeSyncing, cerr)
					return
				}
				lock.With1(&m.m, func(s *mgrState) bool {
					if s.st != model.NodeSyncing {
						return false
					}
					s.caps = &caps
					m.setLocked(s, model.NodeReady)
					return true
				})
				return
			}
			log.Debugf("Syncing, at [%d] of [%d]", ni.BlockHeight, ni.PeerBestHeight)
		case walleterr.Canceled.Is(err):
			return
		case walleterr.Unauthorized.Is(err) || nodeclient.DaemonName(err) == "LockedNode":
			m.moveIf(model.NodeSyncing, model.NodeLocked)
			return
		case walleterr.NodeUnreachable.Is(err):
			failures++
			if failures >= m.cfg.StartAttempts {
				m.failIf(model.NodeSyncing, err)
				return
			}
		default:
			log.Warnf("Sync poll: %s", err.Message())
		}
		elapsed := time.Since(start)
		if !progressed && elapsed >= m.cfg.SyncProgressAfter {
			progressed = true
			text := m.tr(i18n.SyncingChain)
			m.post(func() { m.Progress.Emit(text) })
		}
		if !slow && elapsed >= m.cfg.SyncToastAfter {
			slow = true
			m.post(func() { m.SyncSlow.Emit(struct{}{}) })
		}
		if !m.pause(run, m.cfg.SyncInterval) || m.State() != model.NodeSyncing {
			return
		}
	}
}

// Lock locks the wallet of a ready or syncing node.
func (m *Manager) Lock() er.R {
	okStates := []model.NodeState{model.NodeReady, model.NodeSyncing}
	err := m.m.In(func(s *mgrState) er.R {
		if !in(s.st, okStates) {
			return notReady("lock", s.st)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if err := m.client.Lock(m.runContext()); err != nil {
		return err
	}
	return m.m.In(func(s *mgrState) er.R {
		if !in(s.st, okStates) {
			return walleterr.Canceled.New("lock", nil)
		}
		endSyncLocked(s)
		s.fresh = false
		s.caps = nil
		m.setLocked(s, model.NodeLocked)
		return nil
	})
}

// Stop shuts the node down from any state and always ends stopped. A remote
// node is only detached, never shut down.
func (m *Manager) Stop() er.R {
	var prev model.NodeState
	var proc Process
	done := lock.With1(&m.m, func(s *mgrState) bool {
		prev = s.st
		if s.st == model.NodeStopped || s.st == model.NodeStopping {
			return true
		}
		if s.cancel != nil {
			s.cancel()
		}
		proc = s.proc
		m.setLocked(s, model.NodeStopping)
		return false
	})
	if done {
		return nil
	}
	m.loader(true, m.tr(i18n.StoppingNode))
	defer m.loader(false, "")

	if proc != nil {
		exited := proc.Exited()
		graceful := false
		if prev.Reachable() {
			ctx, cancel := context.WithTimeout(context.Background(), m.cfg.StopGrace)
			err := m.client.Shutdown(ctx)
			cancel()
			if err != nil {
				log.Warnf("Graceful shutdown failed: %s", err.Message())
			} else {
				graceful = true
			}
		}
		if !graceful {
			if err := proc.Terminate(); err != nil {
				log.Warnf("Terminating node: %s", err.Message())
			}
		}
		t := time.NewTimer(m.cfg.StopGrace)
		select {
		case <-exited:
		case <-t.C:
			log.Warnf("Node did not exit within %s, killing it", m.cfg.StopGrace)
			proc.Kill()
			select {
			case <-exited:
			case <-time.After(m.cfg.StopGrace):
				log.Errorf("Node did not die after kill")
			}
		}
		t.Stop()
	}
	m.m.In(func(s *mgrState) er.R {
		s.proc = nil
		s.fresh = false
		s.caps = nil
		s.run, s.cancel = nil, nil
		m.setLocked(s, model.NodeStopped)
		return nil
	})
	return nil
}

// Reset acknowledges an error, killing whatever is left of the daemon.
func (m *Manager) Reset() er.R {
	var proc Process
	err := m.m.In(func(s *mgrState) er.R {
		if s.st != model.NodeError {
			return notReady("reset", s.st)
		}
		if s.cancel != nil {
			s.cancel()
		}
		proc = s.proc
		s.proc = nil
		s.run, s.cancel = nil, nil
		s.fresh = false
		s.caps = nil
		m.setLocked(s, model.NodeStopped)
		return nil
	})
	if err != nil {
		return err
	}
	if proc != nil {
		proc.Kill()
	}
	return nil
}

// watch turns an exit of the daemon it did not ask for into the error state.
func (m *Manager) watch(proc Process) {
	<-proc.Exited()
	m.m.In(func(s *mgrState) er.R {
		if s.proc != proc {
			return nil
		}
		s.proc = nil
		if s.st == model.NodeStopping || s.st == model.NodeStopped {
			return nil
		}
		d := Diagnostic{
			ExitCode: proc.ExitCode(),
			Stderr:   proc.StderrTail(),
		}
		d.Err = walleterr.Fatal.New(m.tr(i18n.NodeCrashed)+", exit code "+strconv.Itoa(d.ExitCode), nil)
		log.Errorf("Node exited while %s with code [%d]", s.st, d.ExitCode)
		for _, l := range d.Stderr {
			log.Errorf("node stderr: %s", l)
		}
		if s.cancel != nil {
			s.cancel()
		}
		s.fresh = false
		s.caps = nil
		m.setLocked(s, model.NodeError)
		m.post(func() { m.Crashed.Emit(d) })
		return nil
	})
}

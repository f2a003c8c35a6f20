// Package app builds the services of the wallet once and ties the node
// lifecycle to the navigation controller and the view shell.
package app

import (
	"path/filepath"
	"time"

	"github.com/pkt-cash/iriswallet/cache"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/faucet"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/metrics"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/nodemgr"
	"github.com/pkt-cash/iriswallet/settings"
	"github.com/pkt-cash/iriswallet/uiloop"
	"github.com/pkt-cash/iriswallet/viewmodel"
	"github.com/pkt-cash/iriswallet/workerpool"
)

// ReportBugURL is where the error dialog sends the user.
const ReportBugURL = "https://github.com/RGB-Tools/iris-wallet-desktop/issues"

// Options are the parts of the configuration the services need.
type Options struct {
	DataDir string
	Version string
	// Network is used until the user picked one.
	Network model.Network

	NodeBin    string
	NodeAddr   string
	PeerPort   int
	RemoteURL  string
	Unlock     nodeclient.UnlockRequest
	NodeConfig func(c *nodemgr.Config)

	ReadTimeout     time.Duration
	TransferTimeout time.Duration
	UnlockTimeout   time.Duration
	SyncToastAfter  time.Duration
	StartAttempts   int
	Workers         int

	// Launcher replaces the exec launcher, tests run without a daemon.
	Launcher nodemgr.Launcher
	// Metrics may be nil.
	Metrics    *metrics.Metrics
	Translator i18n.Translator
}

// Services is everything a page may need, built once by New.
type Services struct {
	Loop     *uiloop.Loop
	Bus      *nav.Bus
	Settings *settings.Store
	Cache    *cache.Cache
	Client   *nodeclient.Client
	Node     *nodemgr.Manager
	Pool     *workerpool.Pool
	Faucet   *faucet.Client
	Metrics  *metrics.Metrics
	Tr       i18n.Translator
	Shell    nav.Shell

	Controller *nav.Controller

	opts Options
}

// New opens the stores under the data directory and builds the services,
// the loop is started but nothing is shown yet. The shell is made last, it
// may use the loop and the bus.
func New(opts Options, shell func(s *Services) nav.Shell) (*Services, er.R) {
	if opts.Translator == nil {
		opts.Translator = i18n.English
	}
	st, err := settings.Open(opts.DataDir)
	if err != nil {
		return nil, err
	}
	c, err := cache.Open(opts.DataDir)
	if err != nil {
		return nil, err
	}
	s := &Services{
		Loop:     uiloop.New(),
		Settings: st,
		Cache:    c,
		Metrics:  opts.Metrics,
		Tr:       opts.Translator,
		opts:     opts,
	}
	s.Loop.Start()
	s.Bus = nav.NewBus(s.Loop)
	s.Client = nodeclient.New(nodeclient.Config{
		BaseURL:         remoteOrLocal(st, opts),
		ReadTimeout:     opts.ReadTimeout,
		TransferTimeout: opts.TransferTimeout,
		UnlockTimeout:   opts.UnlockTimeout,
		Metrics:         opts.Metrics,
	})
	s.Node = nodemgr.New(s.nodeConfig(), s.Client)
	s.Pool = workerpool.New(workerpool.Config{
		Workers: opts.Workers,
		Poster:  s.Loop,
		Metrics: opts.Metrics,
	})
	s.Faucet = faucet.New(opts.ReadTimeout, 1)
	s.Shell = shell(s)
	s.Controller = nav.NewController(s.Bus, s.Shell, opts.Metrics)
	return s, nil
}

// remoteOrLocal is the daemon URL the client starts with. A remote wallet
// keeps its endpoint, Configure switches it later.
func remoteOrLocal(st *settings.Store, opts Options) string {
	if settings.GetOr(st, settings.WalletKind, model.Embedded) == model.Remote {
		if url := settings.GetOr(st, settings.LNEndpoint, opts.RemoteURL); url != "" {
			return url
		}
	}
	addr := opts.NodeAddr
	if addr == "" {
		addr = nodemgr.DefaultListenAddr
	}
	return "http://" + addr
}

func (s *Services) nodeConfig() nodemgr.Config {
	o := s.opts
	kind := settings.GetOr(s.Settings, settings.WalletKind, model.Embedded)
	cfg := nodemgr.Config{
		Kind:           kind,
		Network:        settings.GetOr(s.Settings, settings.NetworkKey, o.Network),
		DataDir:        o.DataDir,
		NodeDataDir:    settings.GetOr(s.Settings, settings.NodeDataDir, filepath.Join(o.DataDir, "node", "data")),
		ListenAddr:     o.NodeAddr,
		PeerPort:       o.PeerPort,
		RemoteURL:      settings.GetOr(s.Settings, settings.LNEndpoint, o.RemoteURL),
		Unlock:         o.Unlock,
		StartAttempts:  o.StartAttempts,
		SyncToastAfter: o.SyncToastAfter,
		Launcher:       o.Launcher,
		Poster:         s.Loop,
		Metrics:        o.Metrics,
		Translator:     o.Translator,
	}
	if cfg.Launcher == nil {
		cfg.Launcher = &nodemgr.ExecLauncher{Bin: o.NodeBin}
	}
	if o.NodeConfig != nil {
		o.NodeConfig(&cfg)
	}
	return cfg
}

// Deps are the services as the view-models see them.
func (s *Services) Deps() *viewmodel.Deps {
	return &viewmodel.Deps{
		Pool:           s.Pool,
		Bus:            s.Bus,
		Client:         s.Client,
		Node:           s.Node,
		Settings:       s.Settings,
		Cache:          s.Cache,
		Faucet:         s.Faucet,
		Metrics:        s.Metrics,
		Tr:             s.Tr,
		ReportBugURL:   ReportBugURL,
		Version:        s.opts.Version,
		DefaultNetwork: s.opts.Network,
	}
}

// Close stops the node and releases everything New opened. It must not be
// called on the UI loop.
func (s *Services) Close() {
	if err := s.Node.Stop(); err != nil && s.Node.State() != model.NodeStopped {
		log.Warnf("Stopping the node: %s", err.Message())
	}
	s.Loop.Call(s.Controller.Close)
	s.Pool.Close()
	s.Loop.Stop()
	if err := s.Cache.Close(); err != nil {
		log.Warnf("Closing the cache: %s", err.Message())
	}
}

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkt-cash/iriswallet/app"
	"github.com/pkt-cash/iriswallet/config"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/instancelock"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/metrics"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodemgr"
	"github.com/pkt-cash/iriswallet/settings"
	"github.com/pkt-cash/iriswallet/shell/recorder"
	"github.com/pkt-cash/iriswallet/shell/term"
	"github.com/pkt-cash/iriswallet/version"
)

const (
	exitOK = iota
	exitConfig
	exitDataDir
	exitBinaryMissing
	exitPortInUse
)

func main() {
	os.Exit(main1(os.Args[1:]))
}

// exitCode maps startup errors which have their own exit status.
func exitCode(err er.R, otherwise int) int {
	switch {
	case nodemgr.ErrBinaryMissing.Is(err):
		return exitBinaryMissing
	case nodemgr.ErrPortInUse.Is(err):
		return exitPortInUse
	}
	return otherwise
}

// preflight checks what an embedded wallet needs before anything is shown.
func preflight(cfg *config.Config, st *settings.Store) er.R {
	if settings.GetOr(st, settings.WalletKind, model.Remote) != model.Embedded {
		return nil
	}
	if _, err := nodemgr.CheckBinary(cfg.NodeBin); err != nil {
		return err
	}
	return nodemgr.CheckPort(cfg.NodeAddr)
}

func main1(args []string) int {
	cfg, err := config.Load(args, os.Stderr)
	if config.ErrHelp.Is(err) {
		return exitOK
	} else if err != nil {
		return exitConfig
	}
	if cfg.ShowVersion {
		fmt.Println("iriswallet version", version.Version())
		return exitOK
	}

	lock, err := instancelock.Acquire(cfg.DataDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Message())
		return exitDataDir
	}
	defer lock.Release()

	if err := log.Init(log.Config{
		Dir:       cfg.LogDir,
		Level:     cfg.DebugLevel,
		NoConsole: !cfg.NoShell,
	}); err != nil {
		fmt.Fprintln(os.Stderr, "Unable to open the log:", err.Message())
		return exitDataDir
	}
	defer log.Close()
	log.Infof("Iris Wallet version %s, data in [%s]", version.Version(), cfg.DataDir)

	m := metrics.New()
	if cfg.Metrics != "" {
		srv, err := m.Serve(cfg.Metrics)
		if err != nil {
			log.Errorf("Metrics listener: %s", err.Message())
			return exitPortInUse
		}
		defer srv.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var sh *term.Shell
	s, err := app.New(app.Options{
		DataDir:         cfg.DataDir,
		Version:         version.Version(),
		Network:         cfg.DefaultNetwork(),
		NodeBin:         cfg.NodeBin,
		NodeAddr:        cfg.NodeAddr,
		PeerPort:        cfg.LDKPeerPort,
		Unlock:          cfg.Unlock(),
		ReadTimeout:     cfg.ReadTimeout,
		TransferTimeout: cfg.TransferTime,
		UnlockTimeout:   cfg.UnlockTimeout,
		SyncToastAfter:  cfg.SyncToast,
		StartAttempts:   cfg.StartAttempts,
		Workers:         cfg.Workers,
		Metrics:         m,
	}, func(s *app.Services) nav.Shell {
		if cfg.NoShell {
			rec := recorder.New()
			rec.AutoDismiss = true
			return rec
		}
		sh = term.New(term.Config{UI: s.Loop, Bus: s.Bus})
		return sh
	})
	if err != nil {
		log.Errorf("Opening the data directory: %s", err.Message())
		return exitDataDir
	}
	defer s.Close()

	if err := preflight(cfg, s.Settings); err != nil {
		log.Errorf("%s", err.Message())
		fmt.Fprintln(os.Stderr, err.Message())
		return exitCode(err, exitConfig)
	}

	if sh != nil {
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			select {
			case <-sh.Done():
				cancel()
			case <-runCtx.Done():
			}
		}()
		go sh.Run()
		ctx = runCtx
	}
	if err := s.Run(ctx); err != nil {
		log.Errorf("%s", err.Message())
		return exitCode(err, exitConfig)
	}
	log.Info("Shutting down")
	return exitOK
}

package app

import (
	"context"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodemgr"
	"github.com/pkt-cash/iriswallet/walleterr"
)

// Wire forwards the lifecycle signals of the node to the bus. The signals
// arrive on the UI loop so intents are emitted directly.
func (s *Services) Wire() *event.Subscriptions {
	var subs event.Subscriptions
	n := s.Node
	subs.Add(
		n.MainWindowLoader.On(func(l nodemgr.Loader) {
			s.Bus.Emit(nav.Loader{Visible: l.Visible, Text: l.Text})
		}),
		n.Progress.On(func(text string) {
			s.Bus.Emit(nav.Toast{Severity: nav.Info, Text: text})
		}),
		n.SyncSlow.On(func(struct{}) {
			s.Bus.Emit(nav.Toast{Severity: nav.Warning, Text: s.Tr.T(i18n.StillSyncing)})
		}),
		n.StateChanged.On(func(st model.NodeState) {
			log.Debugf("Node is %s", st)
		}),
		n.UnlockFailed.On(func(err er.R) {
			log.Infof("Unlock refused: %s", walleterr.Code(err))
		}),
		n.Failed.On(func(err er.R) {
			// Fatal start errors reach the page which started the node.
			if walleterr.Is(err, walleterr.KindFatal) {
				return
			}
			s.Bus.Emit(nav.Toast{Severity: nav.Error, Text: walleterr.UserText(err)})
		}),
		n.Crashed.On(func(d nodemgr.Diagnostic) {
			s.Bus.Emit(nav.ShowErrorDialog{
				URL:  ReportBugURL,
				Text: walleterr.UserText(d.Err),
				Then: nav.To(nav.Splash),
			})
		}),
	)
	return &subs
}

// Start registers every page, wires the node and opens the splash page.
func (s *Services) Start() (*event.Subscriptions, er.R) {
	var subs *event.Subscriptions
	var err er.R
	s.Loop.Call(func() {
		if err = RegisterPages(s.Controller, s.Deps()); err != nil {
			return
		}
		subs = s.Wire()
		s.Bus.Emit(nav.To(nav.Splash))
	})
	return subs, err
}

// Run shows the wallet until ctx is done.
func (s *Services) Run(ctx context.Context) er.R {
	subs, err := s.Start()
	if err != nil {
		return err
	}
	<-ctx.Done()
	s.Loop.Call(subs.CancelAll)
	return nil
}

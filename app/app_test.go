package app_test

import (
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/onsi/gomega"
	"github.com/pkt-cash/iriswallet/app"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/nodemgr"
	"github.com/pkt-cash/iriswallet/nodetest"
	"github.com/pkt-cash/iriswallet/settings"
	"github.com/pkt-cash/iriswallet/shell/recorder"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/stretchr/testify/require"
)

type proc struct {
	exited chan struct{}
	once   sync.Once
	m      sync.Mutex
	code   int
}

func (p *proc) exit(code int) {
	p.once.Do(func() {
		p.m.Lock()
		p.code = code
		p.m.Unlock()
		close(p.exited)
	})
}

func (p *proc) Terminate() er.R         { p.exit(0); return nil }
func (p *proc) Kill() er.R              { p.exit(137); return nil }
func (p *proc) Exited() <-chan struct{} { return p.exited }
func (p *proc) StderrTail() []string    { return []string{"thread main panicked"} }

func (p *proc) ExitCode() int {
	p.m.Lock()
	defer p.m.Unlock()
	return p.code
}

type launcher struct {
	m     sync.Mutex
	procs []*proc
}

func (l *launcher) Launch(nodemgr.LaunchSpec) (nodemgr.Process, er.R) {
	l.m.Lock()
	defer l.m.Unlock()
	p := &proc{exited: make(chan struct{})}
	l.procs = append(l.procs, p)
	return p, nil
}

func (l *launcher) last() *proc {
	l.m.Lock()
	defer l.m.Unlock()
	return l.procs[len(l.procs)-1]
}

type fixture struct {
	g        *gomega.WithT
	node     *nodetest.Node
	shell    *recorder.Shell
	launcher *launcher
	s        *app.Services
}

func newFixture(t *testing.T) *fixture {
	node := nodetest.New(t)
	f := &fixture{
		g:        gomega.NewWithT(t),
		node:     node,
		shell:    recorder.New(),
		launcher: &launcher{},
	}
	s, err := app.New(app.Options{
		DataDir:  t.TempDir(),
		Version:  "0.1.0-test",
		Network:  model.Regtest,
		NodeAddr: strings.TrimPrefix(node.URL(), "http://"),
		Launcher: f.launcher,
		NodeConfig: func(c *nodemgr.Config) {
			c.ProbeBase = time.Millisecond
			c.ProbeCap = 5 * time.Millisecond
			c.StopGrace = 100 * time.Millisecond
		},
	}, func(*app.Services) nav.Shell { return f.shell })
	util.RequireNoErr(t, err)
	f.s = s
	t.Cleanup(s.Close)
	return f
}

func (f *fixture) onboarded(t *testing.T) {
	st := f.s.Settings
	util.RequireNoErr(t, settings.Set(st, settings.TermsAccepted, true))
	util.RequireNoErr(t, settings.Set(st, settings.WalletKind, model.Embedded))
	util.RequireNoErr(t, settings.Set(st, settings.NetworkKey, model.Regtest))
}

func (f *fixture) lastPage() nav.Page {
	pages := f.shell.Pages()
	if len(pages) == 0 {
		return nav.PageNone
	}
	return pages[len(pages)-1]
}

func TestEveryPageHasAConstructor(t *testing.T) {
	f := newFixture(t)
	var missing []nav.Page
	var err er.R
	f.s.Loop.Call(func() {
		err = app.RegisterPages(f.s.Controller, f.s.Deps())
		missing = f.s.Controller.Missing()
	})
	util.RequireNoErr(t, err)
	require.Empty(t, missing)
	require.Len(t, app.Pages(f.s.Deps()), len(nav.Pages()))
}

func TestParameterizedPagesNeedTheirBundle(t *testing.T) {
	f := newFixture(t)
	pages := app.Pages(f.s.Deps())
	_, err := pages[nav.RGBDetail](nil)
	util.RequireCode(t, app.ErrParams, err)
	_, err = pages[nav.RGBDetail](nav.SuccessParams{})
	util.RequireCode(t, app.ErrParams, err)

	v, err := pages[nav.Success](nil)
	util.RequireNoErr(t, err)
	require.Equal(t, nav.Success, v.Page())
	v, err = pages[nav.BTCTxDetail](nav.TxDetailParams{Kind: model.Bitcoin})
	util.RequireNoErr(t, err)
	require.Equal(t, nav.BTCTxDetail, v.Page())
}

func TestFirstRunShowsWelcome(t *testing.T) {
	f := newFixture(t)
	subs, err := f.s.Start()
	util.RequireNoErr(t, err)
	t.Cleanup(func() { f.s.Loop.Call(subs.CancelAll) })

	f.g.Eventually(f.lastPage, "3s", "5ms").Should(gomega.Equal(nav.Welcome))
	require.Equal(t, []nav.Page{nav.Splash, nav.Welcome}, f.shell.Pages())
	require.False(t, f.shell.SidebarVisible())
}

func TestLockedNodeAsksForPassword(t *testing.T) {
	f := newFixture(t)
	f.onboarded(t)
	f.node.Fail(nodeclient.EpNodeInfo.Path, http.StatusForbidden, "LockedNode", "node is locked")

	subs, err := f.s.Start()
	util.RequireNoErr(t, err)
	t.Cleanup(func() { f.s.Loop.Call(subs.CancelAll) })

	f.g.Eventually(f.lastPage, "3s", "5ms").Should(gomega.Equal(nav.EnterPassword))
	f.g.Eventually(f.shell.LoaderVisible, "3s", "5ms").Should(gomega.BeFalse())
	loaders := f.shell.Of(recorder.ShowLoader)
	require.NotEmpty(t, loaders)
	require.Equal(t, "Starting node", loaders[0].Text)
}

func TestCrashShowsDialogThenSplash(t *testing.T) {
	f := newFixture(t)
	f.onboarded(t)
	f.node.Fail(nodeclient.EpNodeInfo.Path, http.StatusForbidden, "LockedNode", "node is locked")
	subs, err := f.s.Start()
	util.RequireNoErr(t, err)
	t.Cleanup(func() { f.s.Loop.Call(subs.CancelAll) })
	f.g.Eventually(f.lastPage, "3s", "5ms").Should(gomega.Equal(nav.EnterPassword))

	f.launcher.last().exit(101)
	f.g.Eventually(f.shell.OpenDialogs, "3s", "5ms").Should(gomega.Equal(1))
	dialog := f.shell.Of(recorder.ShowErrorDialog)[0]
	require.Equal(t, app.ReportBugURL, dialog.URL)
	require.Contains(t, dialog.Text, "exit code 101")
	require.Equal(t, model.NodeError, f.s.Node.State())

	f.s.Loop.Call(func() { require.True(t, f.shell.Dismiss()) })
	f.g.Eventually(func() int {
		n := 0
		for _, p := range f.shell.Pages() {
			if p == nav.Splash {
				n++
			}
		}
		return n
	}, "3s", "5ms").Should(gomega.Equal(2))
	f.g.Eventually(f.lastPage, "3s", "5ms").Should(gomega.Equal(nav.EnterPassword))
}

package term_test

import (
	"bytes"
	"strings"
	"sync"
	"testing"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/shell/term"
	"github.com/pkt-cash/iriswallet/uiloop"
	"github.com/pkt-cash/iriswallet/viewmodel"
	"github.com/stretchr/testify/require"
)

// syncBuffer is written by the loop and read by the test.
type syncBuffer struct {
	m sync.Mutex
	b bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.m.Lock()
	defer s.m.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) take() string {
	s.m.Lock()
	defer s.m.Unlock()
	out := s.b.String()
	s.b.Reset()
	return out
}

type fixture struct {
	out     *syncBuffer
	loop    *uiloop.Loop
	bus     *nav.Bus
	sh      *term.Shell
	m       sync.Mutex
	intents []nav.Intent
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{out: &syncBuffer{}, loop: uiloop.New()}
	f.loop.Start()
	t.Cleanup(f.loop.Stop)
	f.bus = nav.NewBus(f.loop)
	f.bus.SubscribeAll(func(i nav.Intent) {
		f.m.Lock()
		f.intents = append(f.intents, i)
		f.m.Unlock()
	})
	f.sh = term.New(term.Config{
		Out: f.out,
		UI:  f.loop,
		Bus: f.bus,
		ReadPassword: func(string) (string, er.R) {
			return "secret", nil
		},
	})
	return f
}

func (f *fixture) got() []nav.Intent {
	f.m.Lock()
	defer f.m.Unlock()
	return append([]nav.Intent(nil), f.intents...)
}

func TestRenderAssets(t *testing.T) {
	var b bytes.Buffer
	term.RenderAssets(&b, viewmodel.AssetList{
		Assets: []model.AssetDescriptor{{
			AssetID:                 "rgb:abc",
			Ticker:                  "TKN",
			Name:                    "Token",
			Precision:               2,
			OnchainBalanceSpendable: 150,
		}},
		Cached: true,
	})
	out := b.String()
	require.Contains(t, out, "TKN")
	require.Contains(t, out, "rgb:abc")
	require.Contains(t, out, "cached, refreshing")
}

func TestRenderAbout(t *testing.T) {
	var b bytes.Buffer
	term.RenderAbout(&b, viewmodel.About{Version: "1.2.3", Network: model.Regtest, Kind: model.Embedded})
	out := b.String()
	require.Contains(t, out, "1.2.3")
	require.Contains(t, out, "Node pubkey")
}

func TestToastAndLoader(t *testing.T) {
	f := newFixture(t)
	f.sh.ShowToast(nav.SuccessSeverity, "Sent")
	require.Equal(t, "[ok] Sent\n", f.out.take())

	f.sh.ShowLoader("")
	f.sh.ShowLoader("")
	require.Equal(t, "... Working\n", f.out.take())
	require.True(t, f.sh.LoaderVisible())
	f.sh.HideLoader()
	require.True(t, f.sh.LoaderVisible())
	f.sh.HideLoader()
	f.sh.HideLoader()
	require.False(t, f.sh.LoaderVisible())
}

func TestErrorDialogOk(t *testing.T) {
	f := newFixture(t)
	dismissed := 0
	f.sh.ShowErrorDialog("https://example.com/issues", "node crashed", func() { dismissed++ })
	out := f.out.take()
	require.Contains(t, out, "node crashed")
	require.Contains(t, out, "https://example.com/issues")

	f.sh.Execute("ok")
	require.Equal(t, 1, dismissed)
	f.out.take()
	f.sh.Execute("ok")
	require.Equal(t, 1, dismissed)
	require.Contains(t, f.out.take(), "no dialog is open")
}

func TestUnknownAndUsage(t *testing.T) {
	f := newFixture(t)
	f.sh.Execute("   ")
	require.Empty(t, f.out.take())
	f.sh.Execute("frobnicate now")
	require.Equal(t, "Unknown command [frobnicate], try help\n", f.out.take())
	f.sh.Execute("go")
	require.Equal(t, "Usage: go <page>\n", f.out.take())
}

func TestGoToMenuPage(t *testing.T) {
	f := newFixture(t)
	f.sh.Show(nav.Frame{Page: nav.Welcome})
	f.out.take()
	f.sh.Execute("go fungibles")
	require.Contains(t, f.out.take(), "menu is not available")
	require.Empty(t, f.got())

	f.sh.Show(nav.Frame{Page: nav.Bitcoin, SidebarVisible: true})
	f.sh.Execute("go send_bitcoin")
	require.Contains(t, f.out.take(), "not in the menu")
	f.sh.Execute("go fungibles")
	require.Equal(t, []nav.Intent{nav.To(nav.Fungibles)}, f.got())
}

func TestSidebarPrintsMenuOnce(t *testing.T) {
	f := newFixture(t)
	f.sh.ToggleSidebar(true)
	out := f.out.take()
	require.True(t, strings.HasPrefix(out, "menu: fungibles collectibles bitcoin"))
	f.sh.ToggleSidebar(true)
	require.Empty(t, f.out.take())
}

func TestHelpListsGlobalCommands(t *testing.T) {
	f := newFixture(t)
	f.sh.Execute("help")
	out := f.out.take()
	for _, c := range []string{"help", "go", "ok", "exit"} {
		require.Contains(t, out, c)
	}
}

func TestExit(t *testing.T) {
	f := newFixture(t)
	f.sh.Execute("quit")
	select {
	case <-f.sh.Done():
	default:
		t.Fatal("shell did not exit")
	}
}

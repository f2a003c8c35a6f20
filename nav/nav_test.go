package nav_test

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/shell/recorder"
	"github.com/stretchr/testify/require"
)

type journal struct {
	events []string
	alive  map[*fakeView]bool
}

type fakeView struct {
	j        *journal
	page     nav.Page
	params   nav.Params
	onActive func()
}

func (v *fakeView) Page() nav.Page { return v.page }

func (v *fakeView) Activate() {
	v.j.events = append(v.j.events, "activate "+v.page.String())
	if v.onActive != nil {
		v.onActive()
	}
}

func (v *fakeView) Cancel() {
	v.j.events = append(v.j.events, "cancel "+v.page.String())
}

func (v *fakeView) Dispose() {
	v.j.events = append(v.j.events, "dispose "+v.page.String())
	delete(v.j.alive, v)
}

type fixture struct {
	j     *journal
	shell *recorder.Shell
	bus   *nav.Bus
	c     *nav.Controller
}

func newFixture(t *testing.T, skip ...nav.Page) *fixture {
	f := &fixture{
		j:     &journal{alive: make(map[*fakeView]bool)},
		shell: recorder.New(),
		bus:   nav.NewBus(nil),
	}
	f.c = nav.NewController(f.bus, f.shell, nil)
	for _, p := range nav.Pages() {
		if contains(skip, p) {
			continue
		}
		p := p
		require.Nil(t, f.c.Register(p, func(params nav.Params) (nav.View, er.R) {
			v := &fakeView{j: f.j, page: p, params: params}
			f.j.events = append(f.j.events, "new "+p.String())
			f.j.alive[v] = true
			return v, nil
		}))
	}
	return f
}

func contains(ps []nav.Page, p nav.Page) bool {
	for _, q := range ps {
		if q == p {
			return true
		}
	}
	return false
}

func TestPageTags(t *testing.T) {
	require.Len(t, nav.Pages(), 32)
	seen := map[string]bool{}
	for _, p := range nav.Pages() {
		tag := p.String()
		require.False(t, seen[tag], tag)
		seen[tag] = true
		back, ok := nav.ParsePage(tag)
		require.True(t, ok)
		require.Equal(t, p, back)
	}
	_, ok := nav.ParsePage("wallet_connection")
	require.False(t, ok)
	require.False(t, nav.Welcome.SidebarVisible())
	require.False(t, nav.Success.SidebarVisible())
	require.True(t, nav.Fungibles.SidebarVisible())
	require.True(t, nav.Settings.SidebarVisible())
}

func TestSwapOrder(t *testing.T) {
	f := newFixture(t)
	f.bus.Emit(nav.To(nav.Splash))
	f.bus.Emit(nav.To(nav.Welcome))
	f.bus.Emit(nav.To(nav.Fungibles))
	require.Equal(t, []string{
		"new splash", "activate splash",
		"new welcome", "cancel splash", "dispose splash", "activate welcome",
		"new fungibles", "cancel welcome", "dispose welcome", "activate fungibles",
	}, f.j.events)
	require.Equal(t, []nav.Page{nav.Splash, nav.Welcome, nav.Fungibles}, f.shell.Pages())
	require.True(t, f.shell.SidebarVisible())
	require.Equal(t, nav.Fungibles, f.c.Current().Page)
	require.Len(t, f.j.alive, 1)
}

func TestSidebarFollowsFrame(t *testing.T) {
	f := newFixture(t)
	f.bus.Emit(nav.To(nav.Welcome))
	require.False(t, f.c.Current().SidebarVisible)
	require.False(t, f.shell.SidebarVisible())

	f.bus.Emit(nav.To(nav.Channels))
	require.True(t, f.c.Current().SidebarVisible)
	require.True(t, f.shell.SidebarVisible())

	f.bus.Emit(nav.ToggleSidebar{Visible: false})
	require.Equal(t, nav.Channels, f.c.Current().Page)
	require.False(t, f.c.Current().SidebarVisible)
	require.False(t, f.shell.SidebarVisible())
	require.Len(t, f.shell.Pages(), 2)
}

func TestRefusedNavigationKeepsFrame(t *testing.T) {
	f := newFixture(t, nav.Swap)
	require.Equal(t, []nav.Page{nav.Swap}, f.c.Missing())
	f.bus.Emit(nav.To(nav.Fungibles))
	before := f.c.Current()

	f.bus.Emit(nav.To(nav.Page(99)))
	f.bus.Emit(nav.To(nav.PageNone))
	f.bus.Emit(nav.To(nav.Swap))
	f.bus.Emit(nav.GoTo{Page: nav.Bitcoin, Params: nav.RGBDetailParams{AssetID: "rgb:a"}})
	require.Equal(t, before, f.c.Current())
	require.Len(t, f.shell.Pages(), 1)
	require.Len(t, f.j.alive, 1)
}

func TestFactoryFailureKeepsFrame(t *testing.T) {
	f := newFixture(t, nav.About)
	require.Nil(t, f.c.Register(nav.About, func(nav.Params) (nav.View, er.R) {
		return nil, er.New("broken")
	}))
	f.bus.Emit(nav.To(nav.Help))
	f.bus.Emit(nav.To(nav.About))
	require.Equal(t, nav.Help, f.c.Current().Page)
	require.NotContains(t, f.j.events, "dispose help")
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	require.True(t, nav.ErrDuplicate.Is(f.c.Register(nav.Welcome, nil)))
	require.True(t, nav.ErrUnknownPage.Is(f.c.Register(nav.PageNone, nil)))
	require.Empty(t, f.c.Missing())
}

func TestParamsRouting(t *testing.T) {
	f := newFixture(t)
	p := nav.RGBDetailParams{AssetID: "rgb:a", AssetName: "Tether", Kind: model.RGB20}
	f.bus.Emit(nav.ToRGBDetail(p))
	cur := f.c.Current()
	require.Equal(t, nav.RGBDetail, cur.Page)
	require.Equal(t, p, cur.Params)
	require.Equal(t, p, cur.View.(*fakeView).params)

	f.bus.Emit(nav.ToTxDetail(nav.TxDetailParams{Kind: model.Bitcoin}))
	require.Equal(t, nav.BTCTxDetail, f.c.Current().Page)
	f.bus.Emit(nav.ToTxDetail(nav.TxDetailParams{Kind: model.RGB25, AssetID: "rgb:b"}))
	require.Equal(t, nav.RGBTxDetail, f.c.Current().Page)
}

func TestSuccessAndErrorDialog(t *testing.T) {
	f := newFixture(t)
	f.bus.Emit(nav.To(nav.IssueRGB20))
	f.bus.Emit(nav.ShowSuccess{Params: nav.SuccessParams{Title: "Issued", OnDone: nav.To(nav.Fungibles)}})
	cur := f.c.Current()
	require.Equal(t, nav.Success, cur.Page)
	require.False(t, cur.SidebarVisible)
	f.bus.Emit(cur.Params.(nav.SuccessParams).OnDone)
	require.Equal(t, nav.Fungibles, f.c.Current().Page)

	f.bus.Emit(nav.ShowErrorDialog{URL: "https://example.org/bug", Text: "crashed", Then: nav.To(nav.Splash)})
	require.Equal(t, nav.Fungibles, f.c.Current().Page)
	dialogs := f.shell.Of(recorder.ShowErrorDialog)
	require.Len(t, dialogs, 1)
	require.Equal(t, "https://example.org/bug", dialogs[0].URL)
	require.True(t, f.shell.Dismiss())
	require.Equal(t, nav.Splash, f.c.Current().Page)
	require.False(t, f.shell.Dismiss())
}

func TestLoaderAndToast(t *testing.T) {
	f := newFixture(t)
	f.bus.Emit(nav.Loader{Visible: true, Text: "Starting node"})
	f.bus.Emit(nav.Loader{Visible: true, Text: "Syncing"})
	f.bus.Emit(nav.Loader{Visible: false})
	require.True(t, f.shell.LoaderVisible())
	f.bus.Emit(nav.Loader{Visible: false})
	require.False(t, f.shell.LoaderVisible())
	f.bus.Emit(nav.Toast{Severity: nav.Warning, Text: "still syncing"})
	require.Equal(t, []string{"still syncing"}, f.shell.Toasts())
}

func TestIntentsDuringActivateRunAfterSwap(t *testing.T) {
	f := newFixture(t, nav.Splash)
	require.Nil(t, f.c.Register(nav.Splash, func(nav.Params) (nav.View, er.R) {
		v := &fakeView{j: f.j, page: nav.Splash}
		f.j.alive[v] = true
		v.onActive = func() {
			f.bus.Emit(nav.To(nav.Welcome))
			f.j.events = append(f.j.events, "splash emitted")
		}
		return v, nil
	}))
	f.bus.Emit(nav.To(nav.Splash))
	require.Equal(t, []string{
		"activate splash", "splash emitted",
		"new welcome", "cancel splash", "dispose splash", "activate welcome",
	}, f.j.events)
	require.Equal(t, nav.Welcome, f.c.Current().Page)
}

func randomIntent(r *rand.Rand) nav.Intent {
	pages := nav.Pages()
	switch r.Intn(8) {
	case 0:
		return nav.To(nav.Page(r.Intn(40) - 2))
	case 1:
		return nav.ToggleSidebar{Visible: r.Intn(2) == 0}
	case 2:
		return nav.ShowSuccess{Params: nav.SuccessParams{Title: fmt.Sprint(r.Int())}}
	case 3:
		return nav.GoTo{Page: pages[r.Intn(len(pages))], Params: nav.SendLNInvoiceParams{}}
	case 4:
		return nav.Toast{Text: "t"}
	case 5:
		return nav.ToRGBDetail(nav.RGBDetailParams{AssetID: "a"})
	}
	return nav.To(pages[r.Intn(len(pages))])
}

func TestExactlyOneFrame(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for run := 0; run < 50; run++ {
		f := newFixture(t, nav.Faucets)
		f.bus.Emit(nav.To(nav.Splash))
		for i := 0; i < 200; i++ {
			f.bus.Emit(randomIntent(r))
			cur := f.c.Current()
			require.True(t, cur.Page.Valid())
			require.NotEqual(t, nav.Faucets, cur.Page)
			require.Len(t, f.j.alive, 1)
			for v := range f.j.alive {
				require.Equal(t, cur.View, nav.View(v))
				require.Equal(t, cur.Page, v.page)
			}
		}
	}
}

package viewmodel_test

import (
	"testing"

	"github.com/pkt-cash/iriswallet/amount"
	"github.com/pkt-cash/iriswallet/cache"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/settings"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/viewmodel"
	"github.com/stretchr/testify/require"
)

// Three hard refreshes while the first one is still running end up as
// exactly two refreshes on the node.
func TestHardRefreshCollapses(t *testing.T) {
	h := newHarness(t)
	h.node.Respond(nodeclient.EpListAssets.Path, assetsResponse("rgb:a"))
	release := h.node.Gate(nodeclient.EpRefreshTransfers.Path)
	defer release()
	vm := viewmodel.NewAssets(h.deps, model.RGB20)
	w := watch(vm)
	loaded := record(&vm.AssetLoaded)

	h.on(func() {
		for i := 0; i < 3; i++ {
			util.RequireNoErr(t, vm.GetAssets(true))
		}
	})
	h.eventuallyLen(func() int { return h.node.Calls(nodeclient.EpRefreshTransfers.Path) }, 1)
	release()
	h.eventuallyLen(w.finished.len, 2)
	h.loop.Flush()
	require.Equal(t, 2, h.node.Calls(nodeclient.EpRefreshTransfers.Path))
	require.Equal(t, 2, h.node.Calls(nodeclient.EpListAssets.Path))
	require.Equal(t, 2, w.started.len())
	require.Len(t, loaded.get(), 2)
	var busy bool
	h.on(func() { busy = vm.Busy() })
	require.False(t, busy)

	var req nodeclient.SkipSyncRequest
	require.NoError(t, h.node.Decode(nodeclient.EpBtcBalance.Path, &req))
	require.True(t, req.SkipSync)
}

func TestSoftRefreshCoalesces(t *testing.T) {
	h := newHarness(t)
	release := h.node.Gate(nodeclient.EpListAssets.Path)
	defer release()
	vm := viewmodel.NewAssets(h.deps, model.RGB20)
	w := watch(vm)

	h.on(func() {
		util.RequireNoErr(t, vm.GetAssets(false))
		util.RequireNoErr(t, vm.GetAssets(false))
	})
	release()
	h.eventuallyLen(w.finished.len, 1)
	h.loop.Flush()
	require.Equal(t, 1, h.node.Calls(nodeclient.EpListAssets.Path))
	require.Zero(t, h.node.Calls(nodeclient.EpRefreshTransfers.Path))
}

func TestCachedListShownFirst(t *testing.T) {
	h := newHarness(t)
	c, err := cache.Open(t.TempDir())
	util.RequireNoErr(t, err)
	t.Cleanup(func() { c.Close() })
	h.deps.Cache = c
	h.node.Respond(nodeclient.EpListAssets.Path, assetsResponse("rgb:a"))
	h.node.Respond(nodeclient.EpBtcBalance.Path, nodeclient.BtcBalanceResponse{
		Vanilla: nodeclient.BtcBalanceDTO{Settled: 1000, Future: 1500, Spendable: 1000},
	})

	first := viewmodel.NewAssets(h.deps, model.RGB20)
	w := watch(first)
	util.RequireNoErr(t, h.call(func() er.R { return first.GetAssets(false) }))
	h.eventuallyLen(w.finished.len, 1)

	h.node.Respond(nodeclient.EpListAssets.Path, assetsResponse("rgb:a", "rgb:b"))
	second := viewmodel.NewAssets(h.deps, model.RGB20)
	w2 := watch(second)
	loaded := record(&second.AssetLoaded)
	util.RequireNoErr(t, h.call(func() er.R { return second.GetAssets(false) }))
	h.eventuallyLen(w2.finished.len, 1)

	got := loaded.get()
	require.Len(t, got, 2)
	require.True(t, got[0].Cached)
	require.Len(t, got[0].Assets, 1)
	require.False(t, got[1].Cached)
	require.Len(t, got[1].Assets, 2)
	require.Equal(t, "1500 SATS", got[1].TotalBalanceWithSuffix(amount.Sats))
	require.Equal(t, "0.00001000 BTC", got[1].SpendableBalanceWithSuffix(amount.BTC))
}

func TestHiddenAssetsAreFiltered(t *testing.T) {
	h := newHarness(t)
	util.RequireNoErr(t, settings.Set(h.deps.Settings, settings.HiddenAssets, []string{"rgb:b"}))
	h.node.Respond(nodeclient.EpListAssets.Path, assetsResponse("rgb:a", "rgb:b", "rgb:c"))
	vm := viewmodel.NewAssets(h.deps, model.RGB20)
	w := watch(vm)
	loaded := record(&vm.AssetLoaded)

	util.RequireNoErr(t, h.call(func() er.R { return vm.GetAssets(false) }))
	h.eventuallyLen(w.finished.len, 1)
	ids := util.Map(loaded.last().Assets, func(a model.AssetDescriptor) string { return a.AssetID })
	require.Equal(t, []string{"rgb:a", "rgb:c"}, ids)

	util.RequireNoErr(t, h.call(func() er.R { return vm.Hide("rgb:a") }))
	require.Equal(t, []string{"rgb:b", "rgb:a"}, settings.GetOr(h.deps.Settings, settings.HiddenAssets, nil))

	var found bool
	h.on(func() { _, found = vm.Asset("rgb:b") })
	require.True(t, found, "hidden assets can still be opened")
	h.on(func() { vm.Open("rgb:c") })
	require.Equal(t, nav.ToRGBDetail(nav.RGBDetailParams{
		AssetID:   "rgb:c",
		AssetName: "Token rgb:c",
		Ticker:    "TKN",
		Kind:      model.RGB20,
		Precision: 2,
	}), h.intents.last())
}

func TestCollectiblesAskForCfa(t *testing.T) {
	h := newHarness(t)
	vm := viewmodel.NewAssets(h.deps, model.RGB25)
	w := watch(vm)
	require.Equal(t, nav.Collectibles, vm.Page())

	util.RequireNoErr(t, h.call(func() er.R { return vm.GetAssets(false) }))
	h.eventuallyLen(w.finished.len, 1)
	var req nodeclient.ListAssetsRequest
	require.NoError(t, h.node.Decode(nodeclient.EpListAssets.Path, &req))
	require.Equal(t, []string{nodeclient.SchemaCfa}, req.FilterAssetSchemas)
}

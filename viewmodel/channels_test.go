package viewmodel_test

import (
	"strings"
	"testing"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/validate"
	"github.com/pkt-cash/iriswallet/viewmodel"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/stretchr/testify/require"
)

var peer = strings.Repeat("ab", 33) + "@127.0.0.1:9735"

func channelsResponse() nodeclient.ListChannelsResponse {
	return nodeclient.ListChannelsResponse{Channels: []nodeclient.ChannelDTO{
		{
			ChannelID: "c1", PeerPubkey: "p1", Ready: true, IsUsable: true, CapacitySat: 30000,
			AssetID: util.Ptr("rgb:a"), AssetLocalAmount: util.Ptr(uint64(40)),
		},
		{
			ChannelID: "c2", PeerPubkey: "p2", Ready: true, IsUsable: false, CapacitySat: 30000,
			AssetID: util.Ptr("rgb:a"), AssetLocalAmount: util.Ptr(uint64(60)),
		},
		{
			ChannelID: "c3", PeerPubkey: "p3", Ready: true, IsUsable: true, CapacitySat: 50000,
			OutboundBalanceMsat: 5000000,
		},
	}}
}

func loadedChannels(t *testing.T, h *harness, page nav.Page) *viewmodel.ChannelManagementVM {
	h.node.Respond(nodeclient.EpListChannels.Path, channelsResponse())
	h.node.Respond(nodeclient.EpListAssets.Path, assetsResponse("rgb:a"))
	vm := viewmodel.NewChannelManagement(h.deps, page)
	list := record(&vm.Channels)
	util.RequireNoErr(t, h.call(vm.ListChannels))
	h.eventuallyLen(list.len, 1)
	return vm
}

func TestAvailableChannels(t *testing.T) {
	h := newHarness(t)
	vm := loadedChannels(t, h, nav.Channels)

	var a viewmodel.Available
	h.on(func() { a = vm.AvailableChannels() })
	require.Len(t, a.Channels, 2)
	require.Equal(t, uint64(40), a.Outbound["rgb:a"])
	require.Equal(t, uint64(5000000), a.BitcoinSpendableMsat)
}

func TestValidateRGBChannel(t *testing.T) {
	h := newHarness(t)
	vm := loadedChannels(t, h, nav.CreateChannel)
	w := watch(vm)

	var fe validate.FieldErrors
	h.on(func() { fe = vm.ValidateRGB("nobody", "rgb:a", 200, 30000, 0) })
	require.Equal(t, []string{validate.FieldAssetAmount, validate.FieldPeer}, fe.Fields())
	require.Equal(t, fe.Fields(), w.validation.last().Fields())

	h.on(func() { fe = vm.ValidateRGB(peer, "rgb:zz", 10, 30000, 0) })
	require.True(t, fe.Has(validate.FieldAssetID))

	h.on(func() { fe = vm.ValidateRGB(peer, "rgb:a", 150, 30000, 30000000) })
	require.True(t, fe.Empty())
	require.True(t, w.validation.last().Empty())

	h.on(func() { fe = vm.ValidateBTC(peer, 9999, 0) })
	require.Equal(t, []string{validate.FieldCapacity}, fe.Fields())
}

func TestCreateRGBChannel(t *testing.T) {
	h := newHarness(t)
	h.node.Respond(nodeclient.EpOpenChannel.Path, nodeclient.OpenChannelResponse{TemporaryChannelID: "tmp1"})
	vm := loadedChannels(t, h, nav.CreateChannel)
	created := record(&vm.ChannelCreated)

	err := h.call(func() er.R { return vm.CreateRGBChannel(peer, "rgb:a", 500, 30000, 0) })
	util.RequireCode(t, walleterr.InputInvalid, err)
	require.Zero(t, h.node.Calls(nodeclient.EpOpenChannel.Path))

	util.RequireNoErr(t, h.call(func() er.R { return vm.CreateRGBChannel(peer, "rgb:a", 100, 30000, 1000) }))
	h.eventuallyLen(created.len, 1)
	require.Equal(t, "tmp1", created.last())
	var req nodeclient.OpenChannelRequest
	require.NoError(t, h.node.Decode(nodeclient.EpOpenChannel.Path, &req))
	require.Equal(t, peer, req.PeerPubkeyAndOptAddr)
	require.Equal(t, uint64(30000), req.CapacitySat)
	require.Equal(t, uint64(1000), req.PushMsat)
	require.Equal(t, "rgb:a", *req.AssetID)
	require.Equal(t, uint64(100), *req.AssetAmount)
}

func TestCreateChannelNeedsCapabilities(t *testing.T) {
	h := newHarness(t)
	h.fake.m.Lock()
	h.fake.caps = nil
	h.fake.m.Unlock()
	vm := loadedChannels(t, h, nav.CreateChannel)

	err := h.call(func() er.R { return vm.CreateBTCChannel(peer, 20000, 0) })
	util.RequireCode(t, walleterr.NotReady, err)
	require.Zero(t, h.node.Calls(nodeclient.EpOpenChannel.Path))
}

func TestCloseChannelReloads(t *testing.T) {
	h := newHarness(t)
	vm := loadedChannels(t, h, nav.Channels)
	closed := record(&vm.ChannelClosed)

	util.RequireCode(t, walleterr.InputInvalid, h.call(func() er.R { return vm.CloseChannel("nope", false) }))
	util.RequireNoErr(t, h.call(func() er.R { return vm.CloseChannel("c3", true) }))
	h.eventuallyLen(closed.len, 1)
	var req nodeclient.CloseChannelRequest
	require.NoError(t, h.node.Decode(nodeclient.EpCloseChannel.Path, &req))
	require.Equal(t, nodeclient.CloseChannelRequest{ChannelID: "c3", PeerPubkey: "p3", Force: true}, req)
	require.Equal(t, 2, h.node.Calls(nodeclient.EpListChannels.Path))
}

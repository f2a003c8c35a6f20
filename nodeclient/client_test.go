package nodeclient_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/nodetest"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*nodetest.Node, *nodeclient.Client) {
	n := nodetest.New(t)
	c := nodeclient.New(nodeclient.Config{BaseURL: n.URL() + "/", RateLimit: -1})
	return n, c
}

func TestNodeInfoAndCapabilities(t *testing.T) {
	n, c := newClient(t)
	ni, err := c.NodeInfo(context.Background())
	util.RequireNoErr(t, err)
	require.Equal(t, nodetest.DefaultNodeInfo.Pubkey, ni.Pubkey)

	caps, err := c.Capabilities(context.Background())
	util.RequireNoErr(t, err)
	require.Equal(t, uint64(30000), caps.RGBChannelCapacityMinSat)

	bad := nodetest.DefaultNodeInfo
	bad.ChannelAssetMaxAmount = 0
	n.Respond(nodeclient.EpNodeInfo.Path, bad)
	_, err = c.Capabilities(context.Background())
	util.RequireCode(t, walleterr.Fatal, err)
}

func TestErrorMapping(t *testing.T) {
	n, c := newClient(t)
	ctx := context.Background()
	cases := []struct {
		status int
		name   string
		want   walleterr.Kind
	}{
		{http.StatusUnauthorized, "WrongPassword", walleterr.KindUnauthorized},
		{http.StatusForbidden, "", walleterr.KindUnauthorized},
		{http.StatusForbidden, "LockedNode", walleterr.KindNotReady},
		{http.StatusBadRequest, "NotInitialized", walleterr.KindNotReady},
		{http.StatusServiceUnavailable, "", walleterr.KindNotReady},
		{http.StatusBadRequest, "InvalidAddress", walleterr.KindInputInvalid},
		{http.StatusBadRequest, "", walleterr.KindInputInvalid},
		{http.StatusBadRequest, "InsufficientAssets", walleterr.KindConflict},
		{http.StatusConflict, "", walleterr.KindConflict},
		{http.StatusInternalServerError, "FailedPayment", walleterr.KindConflict},
		{http.StatusGatewayTimeout, "", walleterr.KindTimeout},
	}
	for _, tc := range cases {
		n.Fail(nodeclient.EpSendAsset.Path, tc.status, tc.name, "node says no")
		_, err := c.SendAsset(ctx, &nodeclient.SendAssetRequest{AssetID: "rgb:x"})
		require.True(t, walleterr.Is(err, tc.want), "%d %s -> %s", tc.status, tc.name, err.Message())
		require.Equal(t, "node says no", walleterr.UserText(err))
		require.Equal(t, tc.name, nodeclient.DaemonName(err))
	}
}

func TestMethodsAndBodies(t *testing.T) {
	n, c := newClient(t)
	ctx := context.Background()

	n.Respond(nodeclient.EpAddress.Path, nodeclient.AddressResponse{Address: "bcrt1qxyz"})
	addr, err := c.Address(ctx)
	util.RequireNoErr(t, err)
	require.Equal(t, "bcrt1qxyz", addr)
	require.Equal(t, "{}", string(n.LastBody(nodeclient.EpAddress.Path)))

	util.RequireNoErr(t, c.Unlock(ctx, &nodeclient.UnlockRequest{Password: "pw", BitcoindRPCPort: 18443}))
	var ur nodeclient.UnlockRequest
	require.NoError(t, n.Decode(nodeclient.EpUnlock.Path, &ur))
	require.Equal(t, uint16(18443), ur.BitcoindRPCPort)

	_, err = c.FailTransfer(ctx, 4)
	util.RequireNoErr(t, err)
	var fr nodeclient.FailTransfersRequest
	require.NoError(t, n.Decode(nodeclient.EpFailTransfers.Path, &fr))
	require.Equal(t, int64(4), *fr.BatchTransferIdx)

	_, err = c.ListChannels(ctx)
	util.RequireNoErr(t, err)
	require.Equal(t, 1, n.Calls(nodeclient.EpListChannels.Path))
}

func TestMalformedResponseIsFatal(t *testing.T) {
	n, c := newClient(t)
	n.On(nodeclient.EpAddress.Path, func([]byte) (int, interface{}) {
		return http.StatusOK, []int{1, 2}
	})
	_, err := c.Address(context.Background())
	util.RequireCode(t, walleterr.Fatal, err)
}

func TestTimeoutAndCancel(t *testing.T) {
	n := nodetest.New(t)
	c := nodeclient.New(nodeclient.Config{BaseURL: n.URL(), ReadTimeout: 50 * time.Millisecond, RateLimit: -1})
	release := n.Gate(nodeclient.EpListPeers.Path)
	defer release()

	_, err := c.ListPeers(context.Background())
	util.RequireCode(t, walleterr.Timeout, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err = c.ListPeers(ctx)
	util.RequireCode(t, walleterr.Canceled, err)
}

func TestUnreachable(t *testing.T) {
	c := nodeclient.New(nodeclient.Config{BaseURL: "http://127.0.0.1:1", RateLimit: -1})
	_, err := c.NodeInfo(context.Background())
	util.RequireCode(t, walleterr.NodeUnreachable, err)
}

func TestProbe(t *testing.T) {
	n, c := newClient(t)
	ctx := context.Background()
	st, err := c.Probe(ctx)
	util.RequireNoErr(t, err)
	require.Equal(t, nodeclient.ProbeRunning, st)

	n.Fail(nodeclient.EpNodeInfo.Path, http.StatusForbidden, "LockedNode", "Node is locked")
	st, err = c.Probe(ctx)
	util.RequireNoErr(t, err)
	require.Equal(t, nodeclient.ProbeLocked, st)

	n.Fail(nodeclient.EpNodeInfo.Path, http.StatusBadRequest, "NotInitialized", "Wallet has not been initialized")
	st, err = c.Probe(ctx)
	util.RequireNoErr(t, err)
	require.Equal(t, nodeclient.ProbeUninitialized, st)

	n.Fail(nodeclient.EpNodeInfo.Path, http.StatusInternalServerError, "IO", "disk")
	_, err = c.Probe(ctx)
	util.RequireCode(t, walleterr.Conflict, err)
}

func TestSetBaseURL(t *testing.T) {
	n, c := newClient(t)
	c.SetBaseURL("http://127.0.0.1:1/")
	require.Equal(t, "http://127.0.0.1:1", c.BaseURL())
	c.SetBaseURL(n.URL())
	_, err := c.NodeInfo(context.Background())
	util.RequireNoErr(t, err)
}

func TestRateLimit(t *testing.T) {
	n := nodetest.New(t)
	c := nodeclient.New(nodeclient.Config{BaseURL: n.URL(), RateLimit: 50, Burst: 1})
	start := time.Now()
	for i := 0; i < 5; i++ {
		_, err := c.ListPeers(context.Background())
		util.RequireNoErr(t, err)
	}
	require.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

package viewmodel_test

import (
	"testing"

	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/transfers"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/viewmodel"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/stretchr/testify/require"
)

func pendingRGB() nav.TxDetailParams {
	return nav.TxDetailParams{
		AssetID:   "rgb:a",
		AssetName: "Token rgb:a",
		Ticker:    "TKN",
		Kind:      model.RGB20,
		Precision: 2,
		Row: transfers.Row{
			ID:            "7",
			AssetID:       "rgb:a",
			DisplayAmount: "-1.50",
			Direction:     model.Sent,
			Rail:          model.OnChain,
			Status:        model.WaitingCounterparty,
			OnChain:       &model.OnChainTransfer{Idx: 7, TxID: "tx7", Fee: 250, Status: model.WaitingCounterparty},
		},
	}
}

func TestDescribe(t *testing.T) {
	d := viewmodel.Describe(pendingRGB())
	require.True(t, d.CanFail)
	require.Equal(t, transfers.Waiting, d.Color)
	require.Equal(t, "tx7", d.TxID)
	require.Equal(t, "250 SATS", d.Fee)

	btc := pendingRGB()
	btc.Kind = model.Bitcoin
	require.False(t, viewmodel.Describe(btc).CanFail, "bitcoin transactions can not be failed")

	ln := pendingRGB()
	ln.Row.OnChain = nil
	ln.Row.Lightning = &model.LightningTransfer{PaymentHash: "h1"}
	d = viewmodel.Describe(ln)
	require.False(t, d.CanFail)
	require.Equal(t, "h1", d.Hash)
	require.Empty(t, d.TxID)
}

func TestFailTransfer(t *testing.T) {
	h := newHarness(t)
	h.node.Respond(nodeclient.EpFailTransfers.Path, nodeclient.FailTransfersResponse{TransfersChanged: true})
	vm := viewmodel.NewTxDetail(h.deps, pendingRGB())
	require.Equal(t, nav.RGBTxDetail, vm.Page())
	failed := record(&vm.Failed)
	h.on(vm.Load)

	util.RequireNoErr(t, h.call(vm.Fail))
	h.eventuallyLen(failed.len, 1)
	got := failed.last()
	require.Equal(t, model.Failed, got.Row.Status)
	require.Equal(t, transfers.Dimmed, got.Color)
	require.Equal(t, "Failed", got.StatusLabel)
	require.False(t, got.CanFail)
	var req nodeclient.FailTransfersRequest
	require.NoError(t, h.node.Decode(nodeclient.EpFailTransfers.Path, &req))
	require.Equal(t, int64(7), *req.BatchTransferIdx)

	util.RequireCode(t, walleterr.InputInvalid, h.call(vm.Fail))
	require.Equal(t, 1, h.node.Calls(nodeclient.EpFailTransfers.Path))

	h.on(vm.Back)
	require.Equal(t, nav.ToRGBDetail(nav.RGBDetailParams{
		AssetID:   "rgb:a",
		AssetName: "Token rgb:a",
		Ticker:    "TKN",
		Kind:      model.RGB20,
		Precision: 2,
	}), h.intents.last())
}

func TestNothingToFail(t *testing.T) {
	h := newHarness(t)
	vm := viewmodel.NewTxDetail(h.deps, pendingRGB())
	w := watch(vm)
	h.on(vm.Load)

	util.RequireNoErr(t, h.call(vm.Fail))
	h.eventuallyLen(w.finished.len, 1)
	h.loop.Flush()
	require.Equal(t, nav.Warning, w.messages.last().Severity)
}

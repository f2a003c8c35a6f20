package viewmodel_test

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/validate"
	"github.com/pkt-cash/iriswallet/viewmodel"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/stretchr/testify/require"
)

// regtestInvoice is bech32 shaped and long enough to pass the local gate.
func regtestInvoice(t *testing.T) string {
	data := make([]byte, 160)
	for i := range data {
		data[i] = byte(i * 3)
	}
	conv, errr := bech32.ConvertBits(data, 8, 5, true)
	require.NoError(t, errr)
	s, errr := bech32.Encode("lnbcrt30u", conv)
	require.NoError(t, errr)
	return s
}

func TestShortInvoiceNeverReachesNode(t *testing.T) {
	h := newHarness(t)
	vm := viewmodel.NewLNOffchain(h.deps, nav.SendLNInvoiceParams{Kind: model.Bitcoin})
	w := watch(vm)
	valid := record(&vm.IsInvoiceValid)

	err := h.call(func() er.R { return vm.DecodeInvoice("lnbcrt1abc") })
	util.RequireCode(t, walleterr.InputInvalid, err)
	require.Equal(t, []bool{false}, valid.get())
	require.True(t, w.validation.last().Has(validate.FieldInvoice))
	require.Zero(t, h.node.Calls(nodeclient.EpDecodeLNInvoice.Path))
	require.Zero(t, w.started.len())
}

func TestDecodeAndPayInvoice(t *testing.T) {
	h := newHarness(t)
	inv := regtestInvoice(t)
	h.node.Respond(nodeclient.EpDecodeLNInvoice.Path, nodeclient.DecodeLNInvoiceResponse{
		AmtMsat:     util.Ptr(uint64(3000000)),
		ExpirySec:   420,
		PaymentHash: "hash1",
		Network:     "Regtest",
	})
	h.node.Respond(nodeclient.EpSendPayment.Path, nodeclient.SendPaymentResponse{PaymentHash: "hash1", Status: "Pending"})
	vm := viewmodel.NewLNOffchain(h.deps, nav.SendLNInvoiceParams{Kind: model.Bitcoin})
	w := watch(vm)
	valid := record(&vm.IsInvoiceValid)
	detail := record(&vm.InvoiceDetail)
	sent := record(&vm.IsSent)

	util.RequireNoErr(t, h.call(func() er.R { return vm.DecodeInvoice(inv) }))
	h.eventuallyLen(detail.len, 1)
	require.Equal(t, []bool{true}, valid.get())
	require.Equal(t, "hash1", detail.last().PaymentHash)
	require.Equal(t, uint64(3000000), *detail.last().AmountMsat)
	var dreq nodeclient.InvoiceRequest
	require.NoError(t, h.node.Decode(nodeclient.EpDecodeLNInvoice.Path, &dreq))
	require.Equal(t, inv, dreq.Invoice)

	util.RequireNoErr(t, h.call(func() er.R { return vm.SendAssetOffchain("") }))
	h.eventuallyLen(sent.len, 1)
	require.Equal(t, nav.SuccessSeverity, w.messages.last().Severity)
	var sreq nodeclient.InvoiceRequest
	require.NoError(t, h.node.Decode(nodeclient.EpSendPayment.Path, &sreq))
	require.Equal(t, inv, sreq.Invoice)
}

func TestFailedPaymentIsConflict(t *testing.T) {
	h := newHarness(t)
	h.node.Respond(nodeclient.EpSendPayment.Path, nodeclient.SendPaymentResponse{PaymentHash: "hash2", Status: "Failed"})
	vm := viewmodel.NewLNOffchain(h.deps, nav.SendLNInvoiceParams{Kind: model.Bitcoin})
	w := watch(vm)
	sent := record(&vm.IsSent)

	util.RequireNoErr(t, h.call(func() er.R { return vm.SendAssetOffchain(regtestInvoice(t)) }))
	h.eventuallyLen(w.finished.len, 1)
	h.loop.Flush()
	require.Zero(t, sent.len())
	require.Equal(t, "iris.Conflict", w.messages.last().Code)
}

func TestPayNeedsReadyNode(t *testing.T) {
	h := newHarness(t)
	h.fake.set(model.NodeSyncing)
	vm := viewmodel.NewLNOffchain(h.deps, nav.SendLNInvoiceParams{Kind: model.Bitcoin})

	util.RequireCode(t, walleterr.NotReady, h.call(func() er.R { return vm.SendAssetOffchain(regtestInvoice(t)) }))
	require.Zero(t, h.node.Calls(nodeclient.EpSendPayment.Path))
}

func TestCreateInvoice(t *testing.T) {
	h := newHarness(t)
	h.node.Respond(nodeclient.EpLNInvoice.Path, nodeclient.LNInvoiceResponse{Invoice: "lnbcrt1inv"})

	btc := viewmodel.NewCreateLNInvoice(h.deps, nav.CreateLNInvoiceParams{Kind: model.Bitcoin})
	util.RequireCode(t, walleterr.InputInvalid, h.call(func() er.R { return btc.Create(0, 0, 0) }))
	ready := record(&btc.InvoiceReady)
	util.RequireNoErr(t, h.call(func() er.R { return btc.Create(5000, 0, 0) }))
	h.eventuallyLen(ready.len, 1)
	require.Equal(t, "lnbcrt1inv", ready.last())
	var req nodeclient.LNInvoiceRequest
	require.NoError(t, h.node.Decode(nodeclient.EpLNInvoice.Path, &req))
	require.Equal(t, uint32(viewmodel.DefaultInvoiceExpiry), req.ExpirySec)
	require.Equal(t, uint64(5000), *req.AmtMsat)
	require.Nil(t, req.AssetID)

	rgb := viewmodel.NewCreateLNInvoice(h.deps, nav.CreateLNInvoiceParams{Kind: model.RGB20, AssetID: "rgb:a"})
	ready = record(&rgb.InvoiceReady)
	util.RequireNoErr(t, h.call(func() er.R { return rgb.Create(0, 7, 60) }))
	h.eventuallyLen(ready.len, 1)
	var rreq nodeclient.LNInvoiceRequest
	require.NoError(t, h.node.Decode(nodeclient.EpLNInvoice.Path, &rreq))
	require.Nil(t, rreq.AmtMsat)
	require.Equal(t, "rgb:a", *rreq.AssetID)
	require.Equal(t, uint64(7), *rreq.AssetAmount)
	require.Equal(t, uint32(60), rreq.ExpirySec)
}

package nodeclient_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/stretchr/testify/require"
)

// Every converted asset satisfies spendable <= future, whatever the daemon said.
func TestAssetBalanceNeverExceedsFuture(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	var resp nodeclient.ListAssetsResponse
	for i := 0; i < 500; i++ {
		a := nodeclient.AssetDTO{
			AssetID: "rgb:" + string(rune('a'+i%26)),
			Balance: nodeclient.AssetBalanceResponse{
				Future:    uint64(r.Intn(1000)),
				Spendable: uint64(r.Intn(1000)),
			},
		}
		if i%2 == 0 {
			resp.Nia = append(resp.Nia, a)
		} else {
			resp.Cfa = append(resp.Cfa, a)
		}
	}
	assets := nodeclient.AssetsFromDTO(&resp)
	require.Len(t, assets, 500)
	for _, a := range assets {
		require.LessOrEqual(t, a.OnchainBalanceSpendable, a.OnchainBalanceFuture)
	}
	require.Equal(t, model.RGB20, assets[0].Kind)
	require.Equal(t, model.RGB25, assets[len(assets)-1].Kind)
}

func TestTransfersFromDTO(t *testing.T) {
	ts := nodeclient.TransfersFromDTO("rgb:A", []nodeclient.TransferDTO{
		{Idx: 1, Kind: "Issuance", Status: "Settled", Amount: 1000, UpdatedAt: 1704189600},
		{Idx: 2, Kind: "Send", Status: "WaitingCounterparty", Amount: 10, TxID: "tx2",
			TransportEndpoints: []nodeclient.TransportEndpointDTO{{Endpoint: "rpc://proxy"}}},
		{Idx: 3, Kind: "ReceiveBlind", Status: "Failed", Amount: 5},
	})
	require.Len(t, ts, 3)
	require.Equal(t, model.Issuance, ts[0].Direction)
	require.Equal(t, model.IssuanceRail, ts[0].Rail)
	require.Equal(t, time.Unix(1704189600, 0).UTC(), *ts[0].ConfirmationTS)
	require.Equal(t, uint64(10), ts[1].Sent)
	require.Nil(t, ts[1].ConfirmationTS)
	require.Equal(t, []string{"rpc://proxy"}, ts[1].ConsignmentEndpoints)
	require.Equal(t, model.WaitingCounterparty, ts[1].Status)
	require.Equal(t, uint64(5), ts[2].Received)
	require.Equal(t, model.Failed, ts[2].Status)
	require.Equal(t, "rgb:A", ts[2].AssetID)
}

func TestTransactionsFromDTO(t *testing.T) {
	ts := nodeclient.TransactionsFromDTO([]nodeclient.TransactionDTO{
		{TransactionType: "CreateUtxos", TxID: "a", Sent: 5000, Received: 4000},
		{TransactionType: "User", TxID: "b", Received: 100, ConfirmationTime: &nodeclient.BlockTimeDTO{Timestamp: 10}},
	})
	require.Equal(t, model.CreateUtxos, ts[0].Rail)
	require.Equal(t, model.WaitingConfirmations, ts[0].Status)
	require.Equal(t, int64(-1000), ts[0].Net())
	require.Equal(t, model.Settled, ts[1].Status)
	require.NotNil(t, ts[1].ConfirmationTS)
}

func TestPaymentsAndChannels(t *testing.T) {
	id := "rgb:A"
	amt := uint64(42)
	ps := nodeclient.PaymentsFromDTO([]nodeclient.PaymentDTO{
		{PaymentHash: "h", AssetID: &id, AssetAmount: &amt, Inbound: true, Status: "Claimable"},
		{PaymentHash: "i", Status: "Succeeded"},
	})
	require.Equal(t, model.PaymentPending, ps[0].Status)
	require.Equal(t, "rgb:A", ps[0].AssetID)
	require.Equal(t, model.PaymentSucceeded, ps[1].Status)
	require.Equal(t, "", ps[1].AssetID)

	cs := nodeclient.ChannelsFromDTO([]nodeclient.ChannelDTO{{ChannelID: "c", AssetID: &id, AssetLocalAmount: &amt, IsUsable: true, Ready: true, LocalBalanceSat: 2}})
	require.True(t, cs[0].EligibleForPayment())
	require.Equal(t, uint64(2000), cs[0].LocalBalanceMsat)
}

func TestBtcBalanceClamp(t *testing.T) {
	n, c := newClient(t)
	n.Respond(nodeclient.EpBtcBalance.Path, nodeclient.BtcBalanceResponse{
		Vanilla: nodeclient.BtcBalanceDTO{Future: 10, Spendable: 20},
		Colored: nodeclient.BtcBalanceDTO{Future: 30, Spendable: 5},
	})
	b, err := c.BtcBalance(context.Background(), true)
	util.RequireNoErr(t, err)
	require.Equal(t, uint64(10), b.VanillaSpendable)
	require.Equal(t, uint64(5), b.ColoredSpendable)
}

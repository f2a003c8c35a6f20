package transfers_test

import (
	"math/rand"
	"sort"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/transfers"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/stretchr/testify/require"
)

func at(s string) *time.Time {
	t, errr := time.Parse(time.RFC3339, s)
	if errr != nil {
		panic(errr)
	}
	return &t
}

func TestProjectionScenario(t *testing.T) {
	onChain := []model.OnChainTransfer{{
		TxID:           "tx1",
		Sent:           1000,
		Status:         model.Settled,
		Rail:           model.OnChain,
		ConfirmationTS: at("2024-01-02T10:00:00Z"),
		AssetID:        "A",
	}}
	lightning := []model.LightningTransfer{{
		PaymentHash: "ph1",
		AssetID:     "A",
		AmountMsat:  500000,
		Inbound:     true,
		Status:      model.PaymentSucceeded,
		CreatedTS:   *at("2024-01-02T10:00:01Z"),
		UpdatedTS:   *at("2024-01-02T10:00:01Z"),
	}}
	p := transfers.Project(onChain, lightning, transfers.Asset("A", 0), nil, i18n.English)
	require.Len(t, p.Rows, 2)

	ln, oc := p.Rows[0], p.Rows[1]
	require.Equal(t, "ph1", ln.ID)
	require.True(t, ln.OffChain)
	require.Equal(t, model.Received, ln.Direction)
	require.Equal(t, "+500", ln.DisplayAmount)
	require.Equal(t, "A", ln.AssetID)
	require.Equal(t, "Succeeded", ln.StatusLabel)

	require.Equal(t, "tx1", oc.ID)
	require.False(t, oc.OffChain)
	require.Equal(t, model.Sent, oc.Direction)
	require.Equal(t, "-1000", oc.DisplayAmount)
	require.Equal(t, int64(-1000), oc.Amount)
	require.Equal(t, "A", oc.AssetID)
}

func TestFilterAndOverrides(t *testing.T) {
	onChain := []model.OnChainTransfer{
		{TxID: "btc1", Sent: 5000, Received: 1000, Status: model.Settled, ConfirmationTS: at("2024-01-01T00:00:00Z")},
		{TxID: "btc2", Sent: 2000, Received: 1900, Rail: model.CreateUtxos, Status: model.Settled, ConfirmationTS: at("2024-01-03T00:00:00Z")},
		{TxID: "rgb1", Received: 10, AssetID: "B", Rail: model.OnChain, Status: model.WaitingCounterparty},
	}
	lightning := []model.LightningTransfer{
		{PaymentHash: "p1", AmountMsat: 3000, Status: model.PaymentPending, CreatedTS: *at("2024-01-02T00:00:00Z")},
		{PaymentHash: "p2", AssetID: "B", AmountMsat: 3000, Status: model.PaymentFailed},
	}
	p := transfers.Project(onChain, lightning, transfers.Bitcoin(), nil, nil)
	require.Equal(t, []string{"btc2", "p1", "btc1"}, ids(p.Rows))
	require.Equal(t, model.Internal, p.Rows[0].Direction)
	require.Equal(t, "Created UTXOs", p.Rows[0].StatusLabel)
	require.Equal(t, model.Sent, p.Rows[1].Direction)
	require.Equal(t, "-3", p.Rows[1].DisplayAmount)
	require.Equal(t, "Pending", p.Rows[1].StatusLabel)
	require.Equal(t, "-4000", p.Rows[2].DisplayAmount)

	p = transfers.Project(onChain, lightning, transfers.Asset("B", 2), nil, i18n.English)
	require.Equal(t, []string{"rgb1", "p2"}, ids(p.Rows))
	require.Nil(t, p.Rows[0].PrimaryTS)
	require.Equal(t, "+0.1", p.Rows[0].DisplayAmount)
	require.Equal(t, "Waiting for counterparty", p.Rows[0].StatusLabel)
	require.Equal(t, transfers.Waiting, p.Rows[0].Color())
	require.Equal(t, transfers.Dimmed, p.Rows[1].Color())
}

func TestIssuance(t *testing.T) {
	onChain := []model.OnChainTransfer{{
		Idx: 1, Received: 100, AssetID: "C", Direction: model.Issuance, Rail: model.IssuanceRail,
		Status: model.Settled, ConfirmationTS: at("2024-01-01T00:00:00Z"),
	}}
	p := transfers.Project(onChain, nil, transfers.Asset("C", 0), nil, nil)
	require.Len(t, p.Rows, 1)
	require.Equal(t, "idx:1", p.Rows[0].ID)
	require.Equal(t, "+100", p.Rows[0].DisplayAmount)
	require.Equal(t, "Issued", p.Rows[0].StatusLabel)
	require.Equal(t, transfers.Incoming, p.Rows[0].Color())
}

func TestTieBreak(t *testing.T) {
	ts := at("2024-01-02T00:00:00Z")
	onChain := []model.OnChainTransfer{
		{TxID: "b", Sent: 1, Status: model.Settled, ConfirmationTS: ts},
		{TxID: "a", Sent: 1, Status: model.Settled, ConfirmationTS: ts},
	}
	lightning := []model.LightningTransfer{
		{PaymentHash: "0", AmountMsat: 1000, Status: model.PaymentSucceeded, UpdatedTS: *ts},
	}
	p := transfers.Project(onChain, lightning, transfers.Bitcoin(), nil, nil)
	require.Equal(t, []string{"a", "b", "0"}, ids(p.Rows))
}

func randomInputs(r *rand.Rand) ([]model.OnChainTransfer, []model.LightningTransfer) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	assets := []string{"", "A", "B"}
	var oc []model.OnChainTransfer
	for n := r.Intn(20); n > 0; n-- {
		t := model.OnChainTransfer{
			TxID:                 string(rune('a' + r.Intn(26))),
			Sent:                 uint64(r.Intn(3) * 100),
			AssetID:              assets[r.Intn(len(assets))],
			Status:               []model.TransferStatus{model.Settled, model.Failed, model.WaitingConfirmations}[r.Intn(3)],
			ConsignmentEndpoints: []string{"rpc://x"},
		}
		if t.Sent == 0 {
			t.Received = uint64(r.Intn(5))
		}
		if r.Intn(4) > 0 {
			ts := base.Add(time.Duration(r.Intn(10)) * time.Hour)
			t.ConfirmationTS = &ts
		}
		oc = append(oc, t)
	}
	var ln []model.LightningTransfer
	for n := r.Intn(20); n > 0; n-- {
		p := model.LightningTransfer{
			PaymentHash: string(rune('a' + r.Intn(26))),
			AssetID:     assets[r.Intn(len(assets))],
			AmountMsat:  uint64(r.Intn(10000)),
			Inbound:     r.Intn(2) == 0,
			Status:      []model.PaymentStatus{model.PaymentPending, model.PaymentSucceeded}[r.Intn(2)],
		}
		if r.Intn(4) > 0 {
			p.UpdatedTS = base.Add(time.Duration(r.Intn(10)) * time.Hour)
		}
		ln = append(ln, p)
	}
	return oc, ln
}

func TestProjectionProperties(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		oc, ln := randomInputs(r)
		before := spew.Sdump(oc, ln)
		for _, f := range []transfers.Filter{transfers.Bitcoin(), transfers.Asset("A", 1)} {
			p1 := transfers.Project(oc, ln, f, nil, nil)
			p2 := transfers.Project(oc, ln, f, nil, nil)
			require.Equal(t, p1, p2)
			require.LessOrEqual(t, len(p1.Rows), len(oc)+len(ln))
			require.True(t, sort.SliceIsSorted(p1.Rows, func(a, b int) bool {
				return transfers.Less(&p1.Rows[a], &p1.Rows[b])
			}))
			for k := 1; k < len(p1.Rows); k++ {
				require.False(t, transfers.Less(&p1.Rows[k], &p1.Rows[k-1]))
			}
			for _, row := range p1.Rows {
				require.Equal(t, f.AssetID, row.AssetID)
				switch row.Direction {
				case model.Sent:
					require.True(t, row.Amount <= 0)
					require.Equal(t, byte('-'), row.DisplayAmount[0])
				case model.Received, model.Issuance:
					require.True(t, row.Amount >= 0)
					require.Equal(t, byte('+'), row.DisplayAmount[0])
				}
			}
		}
		require.Equal(t, before, spew.Sdump(oc, ln))
	}
}

func TestAggregates(t *testing.T) {
	chans := []model.Channel{
		{ChannelID: "1", AssetID: "A", AssetLocalAmount: util.Ptr(uint64(100)), Ready: true, IsUsable: true, LocalBalanceMsat: 5000000},
		{ChannelID: "2", AssetID: "A", AssetLocalAmount: util.Ptr(uint64(300)), Ready: true, IsUsable: false},
		{ChannelID: "3", AssetID: "A", AssetLocalAmount: util.Ptr(uint64(50)), Ready: false, IsUsable: true},
		{ChannelID: "4", AssetID: "B", AssetLocalAmount: util.Ptr(uint64(900)), Ready: true, IsUsable: true},
		{ChannelID: "5", AssetID: "A", AssetLocalAmount: util.Ptr(uint64(70)), Ready: true, IsUsable: true, LocalBalanceMsat: 1000000},
	}
	a := transfers.Aggregate(chans, transfers.Asset("A", 0))
	require.Equal(t, uint64(470), a.LightningTotal)
	require.Equal(t, uint64(100), a.LightningSpendable)
	require.Equal(t, uint64(170), transfers.OffchainOutbound(chans, "A"))

	b := transfers.Aggregate(chans, transfers.Bitcoin())
	require.Equal(t, uint64(6000), b.LightningTotal)
	require.Equal(t, uint64(5000), b.LightningSpendable)
}

func TestRunningBalance(t *testing.T) {
	onChain := []model.OnChainTransfer{
		{TxID: "1", Received: 1000, Status: model.Settled, ConfirmationTS: at("2024-01-01T00:00:00Z")},
		{TxID: "2", Sent: 400, Status: model.Settled, ConfirmationTS: at("2024-01-02T00:00:00Z")},
		{TxID: "3", Sent: 100, Status: model.Failed, ConfirmationTS: at("2024-01-03T00:00:00Z")},
		{TxID: "4", Received: 50, Status: model.WaitingConfirmations},
	}
	p := transfers.Project(onChain, nil, transfers.Bitcoin(), nil, nil)
	require.Equal(t, []string{"4", "3", "2", "1"}, ids(p.Rows))
	require.Equal(t, []int64{650, 600, 600, 1000}, transfers.RunningBalance(p.Rows))

	row, ok := p.Find("2")
	require.True(t, ok)
	require.Equal(t, "2", row.OnChain.TxID)
	_, ok = p.Find("nope")
	require.False(t, ok)
}

func TestColor(t *testing.T) {
	require.Equal(t, transfers.Outgoing, transfers.ColorOf(model.Sent, model.Settled))
	require.Equal(t, transfers.Incoming, transfers.ColorOf(model.Received, model.Settled))
	require.Equal(t, transfers.Neutral, transfers.ColorOf(model.Internal, model.Settled))
	require.Equal(t, transfers.Waiting, transfers.ColorOf(model.Sent, model.WaitingConfirmations))
	require.Equal(t, transfers.Dimmed, transfers.ColorOf(model.Received, model.Failed))
}

func ids(rows []transfers.Row) []string {
	return util.Map(rows, func(r transfers.Row) string { return r.ID })
}

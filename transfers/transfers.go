// Package transfers merges the on-chain and lightning transfers of one asset
// into the single ordered list shown by the detail pages.
//
// Everything here is pure, inputs are copied and never modified.
package transfers

import (
	"sort"
	"strconv"
	"time"

	"github.com/pkt-cash/iriswallet/amount"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/model"
)

// Filter selects which transfers are projected. An empty AssetID selects
// bitcoin.
type Filter struct {
	AssetID   string
	Precision uint8
}

func Bitcoin() Filter {
	return Filter{}
}

func Asset(assetID string, precision uint8) Filter {
	return Filter{AssetID: assetID, Precision: precision}
}

func (f Filter) IsBitcoin() bool {
	return f.AssetID == ""
}

// Row is one decorated transfer. Exactly one of OnChain and Lightning is set
// and points to a private copy.
type Row struct {
	ID            string
	AssetID       string
	Amount        int64
	DisplayAmount string
	Direction     model.TransferDirection
	Rail          model.TransferRail
	Status        model.TransferStatus
	StatusLabel   string
	PrimaryTS     *time.Time
	OffChain      bool
	OnChain       *model.OnChainTransfer
	Lightning     *model.LightningTransfer
}

type Aggregates struct {
	LightningTotal     uint64
	LightningSpendable uint64
}

type Projection struct {
	Rows       []Row
	Aggregates Aggregates
}

// Find returns the row with the given id.
func (p *Projection) Find(id string) (Row, bool) {
	for _, r := range p.Rows {
		if r.ID == id {
			return r, true
		}
	}
	return Row{}, false
}

// Project filters, decorates and orders the transfers. Rows are sorted by
// primary timestamp, newest first, with rows that have no timestamp yet
// ahead of everything else. Ties go on-chain first, then by id.
func Project(
	onChain []model.OnChainTransfer,
	lightning []model.LightningTransfer,
	f Filter,
	channels []model.Channel,
	tr i18n.Translator,
) Projection {
	if tr == nil {
		tr = i18n.English
	}
	rows := make([]Row, 0, len(onChain)+len(lightning))
	for i := range onChain {
		if onChain[i].AssetID != f.AssetID {
			continue
		}
		rows = append(rows, onChainRow(&onChain[i], f, tr))
	}
	for i := range lightning {
		if lightning[i].AssetID != f.AssetID {
			continue
		}
		rows = append(rows, lightningRow(&lightning[i], f, tr))
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return Less(&rows[i], &rows[j])
	})
	return Projection{
		Rows:       rows,
		Aggregates: Aggregate(channels, f),
	}
}

// Less is the row order.
func Less(a, b *Row) bool {
	switch {
	case a.PrimaryTS == nil && b.PrimaryTS != nil:
		return true
	case a.PrimaryTS != nil && b.PrimaryTS == nil:
		return false
	case a.PrimaryTS != nil && !a.PrimaryTS.Equal(*b.PrimaryTS):
		return a.PrimaryTS.After(*b.PrimaryTS)
	}
	if a.OffChain != b.OffChain {
		return !a.OffChain
	}
	return a.ID < b.ID
}

// Direction decides the direction of an on-chain transfer which does not
// carry one. Bitcoin transactions count change, so they go by their net.
func Direction(t *model.OnChainTransfer) model.TransferDirection {
	switch {
	case t.Direction != "":
		return t.Direction
	case t.Rail == model.CreateUtxos:
		return model.Internal
	case t.AssetID == "":
		switch net := t.Net(); {
		case net < 0:
			return model.Sent
		case net > 0:
			return model.Received
		}
		return model.Internal
	case t.Sent > 0:
		return model.Sent
	case t.Received > 0:
		return model.Received
	}
	return model.Internal
}

func magnitude(t *model.OnChainTransfer, dir model.TransferDirection) uint64 {
	if t.AssetID == "" {
		net := t.Net()
		if net < 0 {
			return uint64(-net)
		}
		return uint64(net)
	}
	if dir == model.Sent {
		return t.Sent
	}
	return t.Received
}

func signed(v uint64, dir model.TransferDirection) int64 {
	if dir == model.Sent {
		return -int64(v)
	}
	if dir == model.Internal {
		return 0
	}
	return int64(v)
}

func onChainID(t *model.OnChainTransfer) string {
	switch {
	case t.TxID != "":
		return t.TxID
	case t.RecipientID != "":
		return t.RecipientID
	}
	return "idx:" + strconv.FormatInt(t.Idx, 10)
}

func statusKey(s model.TransferStatus) string {
	switch s {
	case model.WaitingConfirmations:
		return i18n.StatusWaitingConfirmations
	case model.WaitingCounterparty:
		return i18n.StatusWaitingCounterparty
	case model.Settled:
		return i18n.StatusSettled
	}
	return i18n.StatusFailed
}

func onChainRow(t *model.OnChainTransfer, f Filter, tr i18n.Translator) Row {
	cp := *t
	cp.ConsignmentEndpoints = append([]string(nil), t.ConsignmentEndpoints...)
	dir := Direction(&cp)
	mag := magnitude(&cp, dir)
	label := tr.T(statusKey(cp.Status))
	switch {
	case cp.Status == model.Failed:
	case cp.Rail == model.CreateUtxos:
		label = tr.T(i18n.StatusCreateUtxos)
	case cp.Rail == model.IssuanceRail:
		label = tr.T(i18n.StatusIssuance)
	}
	display := amount.Signed(mag, f.Precision, dir)
	if f.IsBitcoin() {
		display = amount.Signed(mag, 0, dir)
	}
	var ts *time.Time
	if cp.ConfirmationTS != nil {
		v := *cp.ConfirmationTS
		ts = &v
	}
	return Row{
		ID:            onChainID(&cp),
		AssetID:       cp.AssetID,
		Amount:        signed(mag, dir),
		DisplayAmount: display,
		Direction:     dir,
		Rail:          cp.Rail,
		Status:        cp.Status,
		StatusLabel:   label,
		PrimaryTS:     ts,
		OnChain:       &cp,
	}
}

func paymentStatus(s model.PaymentStatus) (model.TransferStatus, string) {
	switch s {
	case model.PaymentSucceeded:
		return model.Settled, i18n.StatusSucceeded
	case model.PaymentFailed:
		return model.Failed, i18n.StatusFailed
	}
	return model.WaitingCounterparty, i18n.StatusPending
}

func lightningRow(p *model.LightningTransfer, f Filter, tr i18n.Translator) Row {
	cp := *p
	if p.AssetAmount != nil {
		v := *p.AssetAmount
		cp.AssetAmount = &v
	}
	dir := model.Sent
	if cp.Inbound {
		dir = model.Received
	}
	mag := amount.MsatToSat(cp.AmountMsat)
	precision := uint8(0)
	if !f.IsBitcoin() && cp.AssetAmount != nil {
		mag = *cp.AssetAmount
		precision = f.Precision
	}
	status, key := paymentStatus(cp.Status)
	ts := cp.UpdatedTS
	if ts.IsZero() {
		ts = cp.CreatedTS
	}
	var primary *time.Time
	if !ts.IsZero() {
		primary = &ts
	}
	return Row{
		ID:            cp.PaymentHash,
		AssetID:       cp.AssetID,
		Amount:        signed(mag, dir),
		DisplayAmount: amount.Signed(mag, precision, dir),
		Direction:     dir,
		Rail:          model.Lightning,
		Status:        status,
		StatusLabel:   tr.T(key),
		PrimaryTS:     primary,
		OffChain:      true,
		Lightning:     &cp,
	}
}

// Aggregate sums the lightning balance of the filtered asset. The total
// counts every ready channel, spendable is the largest balance of a single
// channel which can pay now.
func Aggregate(channels []model.Channel, f Filter) Aggregates {
	var a Aggregates
	for i := range channels {
		c := &channels[i]
		var local uint64
		if f.IsBitcoin() {
			local = amount.MsatToSat(c.LocalBalanceMsat)
		} else {
			if c.AssetID != f.AssetID || c.AssetLocalAmount == nil {
				continue
			}
			local = *c.AssetLocalAmount
		}
		if c.Ready {
			a.LightningTotal += local
		}
		if c.EligibleForPayment() && local > a.LightningSpendable {
			a.LightningSpendable = local
		}
	}
	return a
}

// OffchainOutbound is the spendable lightning balance of an asset, the sum of
// its local amount over channels which can pay.
func OffchainOutbound(channels []model.Channel, assetID string) uint64 {
	var sum uint64
	for i := range channels {
		c := &channels[i]
		if c.AssetID == assetID && c.AssetLocalAmount != nil && c.EligibleForPayment() {
			sum += *c.AssetLocalAmount
		}
	}
	return sum
}

// RunningBalance returns, for each row, the balance after it was applied,
// accumulating from the oldest row. Failed rows do not move the balance.
func RunningBalance(rows []Row) []int64 {
	out := make([]int64, len(rows))
	var bal int64
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].Status != model.Failed {
			bal += rows[i].Amount
		}
		out[i] = bal
	}
	return out
}

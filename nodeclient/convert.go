package nodeclient

import (
	"strings"
	"time"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/walleterr"
)

func unixPtr(s int64) *time.Time {
	if s <= 0 {
		return nil
	}
	t := time.Unix(s, 0).UTC()
	return &t
}

func unix(s int64) time.Time {
	if s <= 0 {
		return time.Time{}
	}
	return time.Unix(s, 0).UTC()
}

func strOr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func CapabilitiesFromNodeInfo(ni *NodeInfoResponse) model.NodeCapabilities {
	return model.NodeCapabilities{
		ChannelCapacityMinSat:    ni.ChannelCapacityMinSat,
		ChannelCapacityMaxSat:    ni.ChannelCapacityMaxSat,
		RGBChannelCapacityMinSat: ni.RgbChannelCapacityMinSat,
		ChannelAssetMinAmount:    ni.ChannelAssetMinAmount,
		ChannelAssetMaxAmount:    ni.ChannelAssetMaxAmount,
	}
}

// clampBalance enforces spendable <= future, the daemon has been seen to
// violate it while a transfer settles.
func clampBalance(assetID string, b *AssetBalanceResponse) {
	if b.Spendable > b.Future {
		log.Warnf("Asset [%s] reports spendable [%d] above future [%d], clamping",
			assetID, b.Spendable, b.Future)
		b.Spendable = b.Future
	}
}

func btcBalanceFromDTO(b *BtcBalanceResponse) model.BtcBalance {
	fix := func(name string, d BtcBalanceDTO) BtcBalanceDTO {
		if d.Spendable > d.Future {
			log.Warnf("BTC %s balance reports spendable [%d] above future [%d], clamping",
				name, d.Spendable, d.Future)
			d.Spendable = d.Future
		}
		return d
	}
	v, c := fix("vanilla", b.Vanilla), fix("colored", b.Colored)
	return model.BtcBalance{
		VanillaSettled:   v.Settled,
		VanillaFuture:    v.Future,
		VanillaSpendable: v.Spendable,
		ColoredSettled:   c.Settled,
		ColoredFuture:    c.Future,
		ColoredSpendable: c.Spendable,
	}
}

func AssetFromDTO(a *AssetDTO, kind model.AssetKind) model.AssetDescriptor {
	bal := a.Balance
	clampBalance(a.AssetID, &bal)
	out := model.AssetDescriptor{
		AssetID:                 a.AssetID,
		Kind:                    kind,
		Ticker:                  a.Ticker,
		Name:                    a.Name,
		Details:                 a.Details,
		Precision:               a.Precision,
		IssuedSupply:            a.IssuedSupply,
		OnchainBalanceFuture:    bal.Future,
		OnchainBalanceSpendable: bal.Spendable,
		OffchainOutbound:        bal.OffchainOutbound,
		OffchainInbound:         bal.OffchainInbound,
		AddedAt:                 unix(a.AddedAt),
	}
	if a.Media != nil {
		out.ImagePath = a.Media.FilePath
	}
	return out
}

func AssetsFromDTO(r *ListAssetsResponse) []model.AssetDescriptor {
	out := make([]model.AssetDescriptor, 0, len(r.Nia)+len(r.Cfa))
	for i := range r.Nia {
		out = append(out, AssetFromDTO(&r.Nia[i], model.RGB20))
	}
	for i := range r.Cfa {
		out = append(out, AssetFromDTO(&r.Cfa[i], model.RGB25))
	}
	return out
}

func transferStatus(s string) model.TransferStatus {
	switch s {
	case "WaitingCounterparty":
		return model.WaitingCounterparty
	case "WaitingConfirmations":
		return model.WaitingConfirmations
	case "Settled":
		return model.Settled
	}
	return model.Failed
}

// TransfersFromDTO converts RGB transfers of one asset. Settled transfers
// take their last update as confirmation time, pending ones have none.
func TransfersFromDTO(assetID string, ts []TransferDTO) []model.OnChainTransfer {
	out := make([]model.OnChainTransfer, 0, len(ts))
	for _, t := range ts {
		ot := model.OnChainTransfer{
			Idx:         t.Idx,
			TxID:        t.TxID,
			RecipientID: t.RecipientID,
			ReceiveUTXO: t.ReceiveUtxo,
			ChangeUTXO:  t.ChangeUtxo,
			Rail:        model.OnChain,
			Status:      transferStatus(t.Status),
			UpdatedTS:   unixPtr(t.UpdatedAt),
			CreatedTS:   unixPtr(t.CreatedAt),
			AssetID:     assetID,
		}
		for _, e := range t.TransportEndpoints {
			ot.ConsignmentEndpoints = append(ot.ConsignmentEndpoints, e.Endpoint)
		}
		switch t.Kind {
		case "Issuance":
			ot.Direction = model.Issuance
			ot.Rail = model.IssuanceRail
			ot.Received = t.Amount
		case "ReceiveBlind", "ReceiveWitness":
			ot.Received = t.Amount
		default:
			ot.Sent = t.Amount
		}
		if ot.Status == model.Settled {
			ot.ConfirmationTS = ot.UpdatedTS
		}
		out = append(out, ot)
	}
	return out
}

// TransactionsFromDTO converts bitcoin transactions. Sent and received are
// the wallet's inputs and outputs, change included.
func TransactionsFromDTO(ts []TransactionDTO) []model.OnChainTransfer {
	out := make([]model.OnChainTransfer, 0, len(ts))
	for _, t := range ts {
		ot := model.OnChainTransfer{
			TxID:     t.TxID,
			Sent:     t.Sent,
			Received: t.Received,
			Fee:      t.Fee,
			Rail:     model.OnChain,
			Status:   model.WaitingConfirmations,
		}
		if t.TransactionType == "CreateUtxos" {
			ot.Rail = model.CreateUtxos
		}
		if t.ConfirmationTime != nil {
			ot.Status = model.Settled
			ot.ConfirmationTS = unixPtr(t.ConfirmationTime.Timestamp)
		}
		out = append(out, ot)
	}
	return out
}

func paymentStatus(s string) model.PaymentStatus {
	switch s {
	case "Succeeded":
		return model.PaymentSucceeded
	case "Failed":
		return model.PaymentFailed
	}
	return model.PaymentPending
}

func PaymentsFromDTO(ps []PaymentDTO) []model.LightningTransfer {
	out := make([]model.LightningTransfer, 0, len(ps))
	for _, p := range ps {
		out = append(out, model.LightningTransfer{
			PaymentHash: p.PaymentHash,
			AssetID:     strOr(p.AssetID),
			AmountMsat:  p.AmtMsat,
			AssetAmount: p.AssetAmount,
			Inbound:     p.Inbound,
			Status:      paymentStatus(p.Status),
			CreatedTS:   unix(p.CreatedAt),
			UpdatedTS:   unix(p.UpdatedAt),
			PayeePubkey: p.PayeePubkey,
		})
	}
	return out
}

func ChannelsFromDTO(cs []ChannelDTO) []model.Channel {
	out := make([]model.Channel, 0, len(cs))
	for _, c := range cs {
		out = append(out, model.Channel{
			ChannelID:           c.ChannelID,
			PeerPubkey:          c.PeerPubkey,
			PeerAlias:           c.PeerAlias,
			AssetID:             strOr(c.AssetID),
			AssetLocalAmount:    c.AssetLocalAmount,
			AssetRemoteAmount:   c.AssetRemoteAmount,
			CapacitySat:         c.CapacitySat,
			LocalBalanceMsat:    c.LocalBalanceSat * 1000,
			OutboundBalanceMsat: c.OutboundBalanceMsat,
			InboundBalanceMsat:  c.InboundBalanceMsat,
			IsUsable:            c.IsUsable,
			Ready:               c.Ready,
			Public:              c.Public,
			Status:              c.Status,
		})
	}
	return out
}

func UnspentsFromDTO(us []UnspentDTO) []model.Unspent {
	out := make([]model.Unspent, 0, len(us))
	for _, u := range us {
		mu := model.Unspent{
			Outpoint:  u.Utxo.Outpoint,
			BTCAmount: u.Utxo.BtcAmount,
			Colorable: u.Utxo.Colorable,
		}
		for _, a := range u.RgbAllocations {
			mu.Assets = append(mu.Assets, model.UnspentAsset{AssetID: a.AssetID, Amount: a.Amount, Settled: a.Settled})
		}
		out = append(out, mu)
	}
	return out
}

func networkFromWire(s string) model.Network {
	switch strings.ToLower(s) {
	case "mainnet", "bitcoin":
		return model.Mainnet
	case "testnet":
		return model.Testnet
	}
	return model.Regtest
}

func networkToWire(n model.Network) string {
	switch n {
	case model.Mainnet:
		return "Mainnet"
	case model.Testnet:
		return "Testnet"
	}
	return "Regtest"
}

func InvoiceFromDTO(d *DecodeLNInvoiceResponse) model.InvoiceDecoding {
	return model.InvoiceDecoding{
		AmountMsat:    d.AmtMsat,
		AssetID:       strOr(d.AssetID),
		AssetAmount:   d.AssetAmount,
		ExpirySec:     d.ExpirySec,
		PaymentHash:   d.PaymentHash,
		PaymentSecret: d.PaymentSecret,
		PayeePubkey:   strOr(d.PayeePubkey),
		Network:       networkFromWire(d.Network),
		Timestamp:     d.Timestamp,
	}
}

func InvoiceToDTO(inv *model.InvoiceDecoding) DecodeLNInvoiceResponse {
	d := DecodeLNInvoiceResponse{
		AmtMsat:       inv.AmountMsat,
		ExpirySec:     inv.ExpirySec,
		Timestamp:     inv.Timestamp,
		AssetAmount:   inv.AssetAmount,
		PaymentHash:   inv.PaymentHash,
		PaymentSecret: inv.PaymentSecret,
		Network:       networkToWire(inv.Network),
	}
	if inv.AssetID != "" {
		id := inv.AssetID
		d.AssetID = &id
	}
	if inv.PayeePubkey != "" {
		pk := inv.PayeePubkey
		d.PayeePubkey = &pk
	}
	return d
}

// EncodeInvoice serializes a decoded invoice in the daemon's wire format.
func EncodeInvoice(inv *model.InvoiceDecoding) ([]byte, er.R) {
	d := InvoiceToDTO(inv)
	return er.E1(json.Marshal(&d))
}

// DecodeInvoice is the inverse of EncodeInvoice.
func DecodeInvoice(b []byte) (model.InvoiceDecoding, er.R) {
	var d DecodeLNInvoiceResponse
	if errr := json.Unmarshal(b, &d); errr != nil {
		return model.InvoiceDecoding{}, walleterr.Fatal.New("malformed invoice decoding", er.E(errr))
	}
	return InvoiceFromDTO(&d), nil
}

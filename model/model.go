// Package model holds the domain types shared by the node client, the
// view-models and the transfer projection.
package model

import (
	"time"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/walleterr"
)

type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Regtest Network = "regtest"
)

var Networks = []Network{Mainnet, Testnet, Regtest}

func (n Network) Valid() bool {
	return n == Mainnet || n == Testnet || n == Regtest
}

func ParseNetwork(s string) (Network, er.R) {
	n := Network(s)
	if !n.Valid() {
		return "", walleterr.InputInvalid.New("unknown network ["+s+"]", nil)
	}
	return n, nil
}

type WalletKind string

const (
	Embedded WalletKind = "embedded"
	Remote   WalletKind = "remote"
)

func (k WalletKind) Valid() bool {
	return k == Embedded || k == Remote
}

type AssetKind string

const (
	Bitcoin AssetKind = "bitcoin"
	RGB20   AssetKind = "rgb20"
	RGB25   AssetKind = "rgb25"
)

type TransferDirection string

const (
	Sent     TransferDirection = "sent"
	Received TransferDirection = "received"
	Internal TransferDirection = "internal"
	Issuance TransferDirection = "issuance"
)

type TransferRail string

const (
	OnChain      TransferRail = "on_chain"
	Lightning    TransferRail = "lightning"
	CreateUtxos  TransferRail = "create_utxos"
	IssuanceRail TransferRail = "issuance"
)

type TransferStatus string

const (
	WaitingConfirmations TransferStatus = "waiting_confirmations"
	WaitingCounterparty  TransferStatus = "waiting_counterparty"
	Settled              TransferStatus = "settled"
	Failed               TransferStatus = "failed"
)

// Pending is true while a transfer may still be failed by the user.
func (s TransferStatus) Pending() bool {
	return s == WaitingConfirmations || s == WaitingCounterparty
}

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSucceeded PaymentStatus = "succeeded"
	PaymentFailed    PaymentStatus = "failed"
)

// AssetDescriptor is one row of the asset list. AssetID is empty for the
// native bitcoin balance.
type AssetDescriptor struct {
	AssetID                 string
	Kind                    AssetKind
	Ticker                  string
	Name                    string
	Details                 string
	Precision               uint8
	Image                   []byte
	ImagePath               string
	IssuedSupply            uint64
	OnchainBalanceFuture    uint64
	OnchainBalanceSpendable uint64
	OffchainOutbound        *uint64
	OffchainInbound         *uint64
	AddedAt                 time.Time
}

type Channel struct {
	ChannelID           string
	PeerPubkey          string
	PeerAlias           string
	AssetID             string
	AssetLocalAmount    *uint64
	AssetRemoteAmount   *uint64
	CapacitySat         uint64
	LocalBalanceMsat    uint64
	OutboundBalanceMsat uint64
	InboundBalanceMsat  uint64
	IsUsable            bool
	Ready               bool
	Public              bool
	Status              string
}

// EligibleForPayment is true when the channel can route a payment now.
func (c *Channel) EligibleForPayment() bool {
	return c.IsUsable && c.Ready
}

// OnChainTransfer is either an RGB transfer of an asset or a bitcoin
// transaction. Sent and Received are in minor units and decide the
// direction unless it is an issuance.
type OnChainTransfer struct {
	Idx                  int64
	TxID                 string
	RecipientID          string
	ReceiveUTXO          string
	ChangeUTXO           string
	Sent                 uint64
	Received             uint64
	Fee                  uint64
	Direction            TransferDirection
	Rail                 TransferRail
	Status               TransferStatus
	ConfirmationTS       *time.Time
	UpdatedTS            *time.Time
	CreatedTS            *time.Time
	AssetID              string
	ConsignmentEndpoints []string
}

type LightningTransfer struct {
	PaymentHash string
	AssetID     string
	AmountMsat  uint64
	AssetAmount *uint64
	Inbound     bool
	Status      PaymentStatus
	CreatedTS   time.Time
	UpdatedTS   time.Time
	PayeePubkey string
}

type InvoiceDecoding struct {
	AmountMsat    *uint64
	AssetID       string
	AssetAmount   *uint64
	ExpirySec     uint64
	PaymentHash   string
	PaymentSecret string
	PayeePubkey   string
	Network       Network
	Timestamp     uint64
}

// NodeCapabilities are the channel limits the node enforces.
type NodeCapabilities struct {
	ChannelCapacityMinSat    uint64
	ChannelCapacityMaxSat    uint64
	RGBChannelCapacityMinSat uint64
	ChannelAssetMinAmount    uint64
	ChannelAssetMaxAmount    uint64
}

// Check verifies every max is at least its min and every value is at least 1.
func (c *NodeCapabilities) Check() er.R {
	for name, v := range map[string]uint64{
		"channel_capacity_min_sat":     c.ChannelCapacityMinSat,
		"channel_capacity_max_sat":     c.ChannelCapacityMaxSat,
		"rgb_channel_capacity_min_sat": c.RGBChannelCapacityMinSat,
		"channel_asset_min_amount":     c.ChannelAssetMinAmount,
		"channel_asset_max_amount":     c.ChannelAssetMaxAmount,
	} {
		if v < 1 {
			return walleterr.Fatal.New("node capability "+name+" is zero", nil)
		}
	}
	if c.ChannelCapacityMaxSat < c.ChannelCapacityMinSat ||
		c.ChannelCapacityMaxSat < c.RGBChannelCapacityMinSat {
		return walleterr.Fatal.New("node channel capacity max is below min", nil)
	}
	if c.ChannelAssetMaxAmount < c.ChannelAssetMinAmount {
		return walleterr.Fatal.New("node channel asset max is below min", nil)
	}
	return nil
}

type Unspent struct {
	Outpoint  string
	BTCAmount uint64
	Colorable bool
	Assets    []UnspentAsset
}

type UnspentAsset struct {
	AssetID string
	Amount  uint64
	Settled bool
}

type Peer struct {
	Pubkey string
}

type BtcBalance struct {
	VanillaSettled   uint64
	VanillaFuture    uint64
	VanillaSpendable uint64
	ColoredSettled   uint64
	ColoredFuture    uint64
	ColoredSpendable uint64
}

// Net is received minus sent, negative for outgoing transfers.
func (t *OnChainTransfer) Net() int64 {
	return int64(t.Received) - int64(t.Sent)
}

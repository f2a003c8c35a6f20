package nodeclient

import (
	"context"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/walleterr"
)

func (c *Client) NodeInfo(ctx context.Context) (*NodeInfoResponse, er.R) {
	var out NodeInfoResponse
	if err := c.call(ctx, classRead, EpNodeInfo, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Capabilities fetches the channel limits of the node and checks them.
func (c *Client) Capabilities(ctx context.Context) (model.NodeCapabilities, er.R) {
	ni, err := c.NodeInfo(ctx)
	if err != nil {
		return model.NodeCapabilities{}, err
	}
	caps := CapabilitiesFromNodeInfo(ni)
	return caps, caps.Check()
}

func (c *Client) NetworkInfo(ctx context.Context) (*NetworkInfoResponse, er.R) {
	var out NetworkInfoResponse
	if err := c.call(ctx, classRead, EpNetworkInfo, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProbeState is what the node reports about its wallet.
type ProbeState int

const (
	ProbeRunning ProbeState = iota
	ProbeLocked
	ProbeUninitialized
)

func (p ProbeState) String() string {
	switch p {
	case ProbeRunning:
		return "running"
	case ProbeLocked:
		return "locked"
	}
	return "uninitialized"
}

// ClassifyProbe interprets an answer to GET /nodeinfo.
func ClassifyProbe(status int, body []byte) (ProbeState, er.R) {
	if status >= 200 && status <= 299 {
		return ProbeRunning, nil
	}
	err := errorFromResponse(status, body, EpNodeInfo.Path)
	switch DaemonName(err) {
	case "LockedNode":
		return ProbeLocked, nil
	case "NotInitialized":
		return ProbeUninitialized, nil
	}
	if walleterr.Unauthorized.Is(err) {
		return ProbeLocked, nil
	}
	return 0, err
}

// Probe asks the node whether it is running, locked or has no wallet.
func (c *Client) Probe(ctx context.Context) (ProbeState, er.R) {
	raw, err := c.exchange(ctx, classRead, EpNodeInfo, nil)
	if err != nil {
		return 0, err
	}
	return ClassifyProbe(raw.status, raw.body)
}

// Init creates a new wallet and returns its mnemonic.
func (c *Client) Init(ctx context.Context, password string) (string, er.R) {
	var out InitResponse
	if err := c.call(ctx, classTransfer, EpInit, &InitRequest{Password: password}, &out); err != nil {
		return "", err
	}
	return out.Mnemonic, nil
}

func (c *Client) Unlock(ctx context.Context, req *UnlockRequest) er.R {
	return c.call(ctx, classUnlock, EpUnlock, req, nil)
}

func (c *Client) Lock(ctx context.Context) er.R {
	return c.call(ctx, classRead, EpLock, nil, nil)
}

func (c *Client) Shutdown(ctx context.Context) er.R {
	return c.call(ctx, classRead, EpShutdown, nil, nil)
}

func (c *Client) Address(ctx context.Context) (string, er.R) {
	var out AddressResponse
	if err := c.call(ctx, classRead, EpAddress, nil, &out); err != nil {
		return "", err
	}
	return out.Address, nil
}

func (c *Client) BtcBalance(ctx context.Context, skipSync bool) (model.BtcBalance, er.R) {
	var out BtcBalanceResponse
	if err := c.call(ctx, classRead, EpBtcBalance, &SkipSyncRequest{SkipSync: skipSync}, &out); err != nil {
		return model.BtcBalance{}, err
	}
	return btcBalanceFromDTO(&out), nil
}

// ListAssets returns the RGB20 (Nia) and RGB25 (Cfa) assets of the wallet.
func (c *Client) ListAssets(ctx context.Context, schemas ...string) ([]model.AssetDescriptor, er.R) {
	if len(schemas) == 0 {
		schemas = []string{SchemaNia, SchemaCfa}
	}
	var out ListAssetsResponse
	if err := c.call(ctx, classRead, EpListAssets, &ListAssetsRequest{FilterAssetSchemas: schemas}, &out); err != nil {
		return nil, err
	}
	return AssetsFromDTO(&out), nil
}

func (c *Client) AssetBalance(ctx context.Context, assetID string) (*AssetBalanceResponse, er.R) {
	var out AssetBalanceResponse
	if err := c.call(ctx, classRead, EpAssetBalance, &AssetIDRequest{AssetID: assetID}, &out); err != nil {
		return nil, err
	}
	clampBalance(assetID, &out)
	return &out, nil
}

func (c *Client) AssetMetadata(ctx context.Context, assetID string) (*AssetMetadataResponse, er.R) {
	var out AssetMetadataResponse
	if err := c.call(ctx, classRead, EpAssetMetadata, &AssetIDRequest{AssetID: assetID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) IssueAssetNIA(ctx context.Context, req *IssueAssetNIARequest) (model.AssetDescriptor, er.R) {
	var out IssueAssetResponse
	if err := c.call(ctx, classTransfer, EpIssueAssetNIA, req, &out); err != nil {
		return model.AssetDescriptor{}, err
	}
	return AssetFromDTO(&out.Asset, model.RGB20), nil
}

func (c *Client) IssueAssetCFA(ctx context.Context, req *IssueAssetCFARequest) (model.AssetDescriptor, er.R) {
	var out IssueAssetResponse
	if err := c.call(ctx, classTransfer, EpIssueAssetCFA, req, &out); err != nil {
		return model.AssetDescriptor{}, err
	}
	return AssetFromDTO(&out.Asset, model.RGB25), nil
}

func (c *Client) SendAsset(ctx context.Context, req *SendAssetRequest) (string, er.R) {
	var out TxIDResponse
	if err := c.call(ctx, classTransfer, EpSendAsset, req, &out); err != nil {
		return "", err
	}
	return out.TxID, nil
}

func (c *Client) SendBtc(ctx context.Context, req *SendBtcRequest) (string, er.R) {
	var out TxIDResponse
	if err := c.call(ctx, classTransfer, EpSendBtc, req, &out); err != nil {
		return "", err
	}
	return out.TxID, nil
}

// RgbInvoice creates a blinded (or witness) recipient for receiving an asset.
func (c *Client) RgbInvoice(ctx context.Context, req *RgbInvoiceRequest) (*RgbInvoiceResponse, er.R) {
	var out RgbInvoiceResponse
	if err := c.call(ctx, classRead, EpRgbInvoice, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LNInvoice(ctx context.Context, req *LNInvoiceRequest) (string, er.R) {
	var out LNInvoiceResponse
	if err := c.call(ctx, classRead, EpLNInvoice, req, &out); err != nil {
		return "", err
	}
	return out.Invoice, nil
}

func (c *Client) DecodeLNInvoice(ctx context.Context, invoice string) (model.InvoiceDecoding, er.R) {
	var out DecodeLNInvoiceResponse
	if err := c.call(ctx, classRead, EpDecodeLNInvoice, &InvoiceRequest{Invoice: invoice}, &out); err != nil {
		return model.InvoiceDecoding{}, err
	}
	return InvoiceFromDTO(&out), nil
}

func (c *Client) SendPayment(ctx context.Context, invoice string) (*SendPaymentResponse, er.R) {
	var out SendPaymentResponse
	if err := c.call(ctx, classTransfer, EpSendPayment, &InvoiceRequest{Invoice: invoice}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) OpenChannel(ctx context.Context, req *OpenChannelRequest) (string, er.R) {
	var out OpenChannelResponse
	if err := c.call(ctx, classTransfer, EpOpenChannel, req, &out); err != nil {
		return "", err
	}
	return out.TemporaryChannelID, nil
}

func (c *Client) CloseChannel(ctx context.Context, req *CloseChannelRequest) er.R {
	return c.call(ctx, classTransfer, EpCloseChannel, req, nil)
}

func (c *Client) ListChannels(ctx context.Context) ([]model.Channel, er.R) {
	var out ListChannelsResponse
	if err := c.call(ctx, classRead, EpListChannels, nil, &out); err != nil {
		return nil, err
	}
	return ChannelsFromDTO(out.Channels), nil
}

func (c *Client) ListPeers(ctx context.Context) ([]model.Peer, er.R) {
	var out ListPeersResponse
	if err := c.call(ctx, classRead, EpListPeers, nil, &out); err != nil {
		return nil, err
	}
	peers := make([]model.Peer, 0, len(out.Peers))
	for _, p := range out.Peers {
		peers = append(peers, model.Peer{Pubkey: p.Pubkey})
	}
	return peers, nil
}

// ListTransfers lists the on-chain RGB transfers of one asset.
func (c *Client) ListTransfers(ctx context.Context, assetID string) ([]model.OnChainTransfer, er.R) {
	var out ListTransfersResponse
	if err := c.call(ctx, classRead, EpListTransfers, &AssetIDRequest{AssetID: assetID}, &out); err != nil {
		return nil, err
	}
	return TransfersFromDTO(assetID, out.Transfers), nil
}

func (c *Client) ListPayments(ctx context.Context) ([]model.LightningTransfer, er.R) {
	var out ListPaymentsResponse
	if err := c.call(ctx, classRead, EpListPayments, nil, &out); err != nil {
		return nil, err
	}
	return PaymentsFromDTO(out.Payments), nil
}

// ListTransactions lists the bitcoin transactions of the wallet.
func (c *Client) ListTransactions(ctx context.Context, skipSync bool) ([]model.OnChainTransfer, er.R) {
	var out ListTransactionsResponse
	if err := c.call(ctx, classRead, EpListTransactions, &SkipSyncRequest{SkipSync: skipSync}, &out); err != nil {
		return nil, err
	}
	return TransactionsFromDTO(out.Transactions), nil
}

func (c *Client) ListUnspents(ctx context.Context, skipSync bool) ([]model.Unspent, er.R) {
	var out ListUnspentsResponse
	if err := c.call(ctx, classRead, EpListUnspents, &SkipSyncRequest{SkipSync: skipSync}, &out); err != nil {
		return nil, err
	}
	return UnspentsFromDTO(out.Unspents), nil
}

func (c *Client) CreateUtxos(ctx context.Context, req *CreateUtxosRequest) er.R {
	return c.call(ctx, classTransfer, EpCreateUtxos, req, nil)
}

// FailTransfer marks a pending transfer batch as failed.
func (c *Client) FailTransfer(ctx context.Context, batchIdx int64) (bool, er.R) {
	var out FailTransfersResponse
	req := &FailTransfersRequest{BatchTransferIdx: &batchIdx}
	if err := c.call(ctx, classTransfer, EpFailTransfers, req, &out); err != nil {
		return false, err
	}
	return out.TransfersChanged, nil
}

func (c *Client) RefreshTransfers(ctx context.Context) er.R {
	return c.call(ctx, classTransfer, EpRefreshTransfers, &SkipSyncRequest{}, nil)
}

func (c *Client) Backup(ctx context.Context, path, password string) er.R {
	return c.call(ctx, classTransfer, EpBackup, &BackupRequest{BackupPath: path, Password: password}, nil)
}

func (c *Client) Restore(ctx context.Context, path, password string) er.R {
	return c.call(ctx, classTransfer, EpRestore, &BackupRequest{BackupPath: path, Password: password}, nil)
}

// EstimateFee returns the fee rate for confirmation within blocks, in sat/vB.
func (c *Client) EstimateFee(ctx context.Context, blocks uint16) (float64, er.R) {
	var out EstimateFeeResponse
	if err := c.call(ctx, classRead, EpEstimateFee, &EstimateFeeRequest{Blocks: blocks}, &out); err != nil {
		return 0, err
	}
	return out.FeeRate, nil
}

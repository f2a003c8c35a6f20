package nodeclient

// Wire types of the RGB lightning node daemon. Field names follow the
// daemon's JSON exactly, conversion to domain types is in convert.go.

type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
	Name  string `json:"name"`
}

type EmptyResponse struct{}

type NodeInfoResponse struct {
	Pubkey                     string `json:"pubkey"`
	NumChannels                int    `json:"num_channels"`
	NumUsableChannels          int    `json:"num_usable_channels"`
	LocalBalanceSat            uint64 `json:"local_balance_sat"`
	NumPeers                   int    `json:"num_peers"`
	OnchainPubkey              string `json:"onchain_pubkey,omitempty"`
	MaxMediaUploadSizeMB       uint16 `json:"max_media_upload_size_mb"`
	RgbHtlcMinMsat             uint64 `json:"rgb_htlc_min_msat"`
	RgbChannelCapacityMinSat   uint64 `json:"rgb_channel_capacity_min_sat"`
	ChannelCapacityMinSat      uint64 `json:"channel_capacity_min_sat"`
	ChannelCapacityMaxSat      uint64 `json:"channel_capacity_max_sat"`
	ChannelAssetMinAmount      uint64 `json:"channel_asset_min_amount"`
	ChannelAssetMaxAmount      uint64 `json:"channel_asset_max_amount"`
	NetworkNodes               int    `json:"network_nodes"`
	NetworkChannels            int    `json:"network_channels"`
	BlockHeight                uint64 `json:"block_height"`
	PeerBestHeight             uint64 `json:"peer_best_height"`
	PendingOutboundPaymentsSat uint64 `json:"pending_outbound_payments_sat"`
}

type NetworkInfoResponse struct {
	Network string `json:"network"`
	Height  uint64 `json:"height"`
}

type InitRequest struct {
	Password string `json:"password"`
}

type InitResponse struct {
	Mnemonic string `json:"mnemonic"`
}

type UnlockRequest struct {
	Password            string   `json:"password"`
	BitcoindRPCUsername string   `json:"bitcoind_rpc_username"`
	BitcoindRPCPassword string   `json:"bitcoind_rpc_password"`
	BitcoindRPCHost     string   `json:"bitcoind_rpc_host"`
	BitcoindRPCPort     uint16   `json:"bitcoind_rpc_port"`
	IndexerURL          string   `json:"indexer_url,omitempty"`
	ProxyEndpoint       string   `json:"proxy_endpoint,omitempty"`
	AnnounceAddresses   []string `json:"announce_addresses"`
	AnnounceAlias       string   `json:"announce_alias,omitempty"`
}

type AddressResponse struct {
	Address string `json:"address"`
}

type SkipSyncRequest struct {
	SkipSync bool `json:"skip_sync"`
}

type BtcBalanceDTO struct {
	Settled   uint64 `json:"settled"`
	Future    uint64 `json:"future"`
	Spendable uint64 `json:"spendable"`
}

type BtcBalanceResponse struct {
	Vanilla BtcBalanceDTO `json:"vanilla"`
	Colored BtcBalanceDTO `json:"colored"`
}

type ListAssetsRequest struct {
	FilterAssetSchemas []string `json:"filter_asset_schemas"`
}

// Asset schemas understood by /listassets.
const (
	SchemaNia = "Nia"
	SchemaCfa = "Cfa"
)

type AssetBalanceResponse struct {
	Settled          uint64  `json:"settled"`
	Future           uint64  `json:"future"`
	Spendable        uint64  `json:"spendable"`
	OffchainOutbound *uint64 `json:"offchain_outbound,omitempty"`
	OffchainInbound  *uint64 `json:"offchain_inbound,omitempty"`
}

type MediaDTO struct {
	FilePath string `json:"file_path"`
	Digest   string `json:"digest,omitempty"`
	Mime     string `json:"mime"`
}

type AssetDTO struct {
	AssetID      string               `json:"asset_id"`
	Ticker       string               `json:"ticker,omitempty"`
	Name         string               `json:"name"`
	Details      string               `json:"details,omitempty"`
	Precision    uint8                `json:"precision"`
	IssuedSupply uint64               `json:"issued_supply"`
	Timestamp    int64                `json:"timestamp"`
	AddedAt      int64                `json:"added_at"`
	Balance      AssetBalanceResponse `json:"balance"`
	Media        *MediaDTO            `json:"media,omitempty"`
}

type ListAssetsResponse struct {
	Nia []AssetDTO `json:"nia"`
	Cfa []AssetDTO `json:"cfa"`
}

type AssetIDRequest struct {
	AssetID string `json:"asset_id"`
}

type AssetMetadataResponse struct {
	AssetSchema  string `json:"asset_schema"`
	IssuedSupply uint64 `json:"issued_supply"`
	Timestamp    int64  `json:"timestamp"`
	Name         string `json:"name"`
	Precision    uint8  `json:"precision"`
	Ticker       string `json:"ticker,omitempty"`
	Details      string `json:"details,omitempty"`
}

type IssueAssetNIARequest struct {
	Amounts   []uint64 `json:"amounts"`
	Ticker    string   `json:"ticker"`
	Name      string   `json:"name"`
	Precision uint8    `json:"precision"`
}

type IssueAssetCFARequest struct {
	Amounts    []uint64 `json:"amounts"`
	Name       string   `json:"name"`
	Details    string   `json:"details,omitempty"`
	Precision  uint8    `json:"precision"`
	FileDigest string   `json:"file_digest,omitempty"`
}

type IssueAssetResponse struct {
	Asset AssetDTO `json:"asset"`
}

type SendAssetRequest struct {
	AssetID            string   `json:"asset_id"`
	Amount             uint64   `json:"amount"`
	RecipientID        string   `json:"recipient_id"`
	Donation           bool     `json:"donation"`
	FeeRate            uint64   `json:"fee_rate"`
	MinConfirmations   uint8    `json:"min_confirmations"`
	TransportEndpoints []string `json:"transport_endpoints"`
	SkipSync           bool     `json:"skip_sync"`
}

type TxIDResponse struct {
	TxID string `json:"txid"`
}

type SendBtcRequest struct {
	Amount   uint64 `json:"amount"`
	Address  string `json:"address"`
	FeeRate  uint64 `json:"fee_rate"`
	SkipSync bool   `json:"skip_sync"`
}

type RgbInvoiceRequest struct {
	MinConfirmations uint8   `json:"min_confirmations"`
	AssetID          *string `json:"asset_id,omitempty"`
	DurationSeconds  *uint32 `json:"duration_seconds,omitempty"`
	Witness          bool    `json:"witness"`
}

type RgbInvoiceResponse struct {
	RecipientID         string `json:"recipient_id"`
	Invoice             string `json:"invoice"`
	ExpirationTimestamp *int64 `json:"expiration_timestamp,omitempty"`
	BatchTransferIdx    int64  `json:"batch_transfer_idx"`
}

type LNInvoiceRequest struct {
	AmtMsat     *uint64 `json:"amt_msat,omitempty"`
	ExpirySec   uint32  `json:"expiry_sec"`
	AssetID     *string `json:"asset_id,omitempty"`
	AssetAmount *uint64 `json:"asset_amount,omitempty"`
}

type LNInvoiceResponse struct {
	Invoice string `json:"invoice"`
}

type InvoiceRequest struct {
	Invoice string `json:"invoice"`
}

type DecodeLNInvoiceResponse struct {
	AmtMsat       *uint64 `json:"amt_msat,omitempty"`
	ExpirySec     uint64  `json:"expiry_sec"`
	Timestamp     uint64  `json:"timestamp"`
	AssetID       *string `json:"asset_id,omitempty"`
	AssetAmount   *uint64 `json:"asset_amount,omitempty"`
	PaymentHash   string  `json:"payment_hash"`
	PaymentSecret string  `json:"payment_secret"`
	PayeePubkey   *string `json:"payee_pubkey,omitempty"`
	Network       string  `json:"network"`
}

type SendPaymentResponse struct {
	PaymentHash   string `json:"payment_hash"`
	PaymentSecret string `json:"payment_secret"`
	Status        string `json:"status"`
}

type OpenChannelRequest struct {
	PeerPubkeyAndOptAddr string  `json:"peer_pubkey_and_opt_addr"`
	CapacitySat          uint64  `json:"capacity_sat"`
	PushMsat             uint64  `json:"push_msat"`
	AssetAmount          *uint64 `json:"asset_amount,omitempty"`
	AssetID              *string `json:"asset_id,omitempty"`
	Public               bool    `json:"public"`
	WithAnchors          bool    `json:"with_anchors"`
	FeeBaseMsat          *uint32 `json:"fee_base_msat,omitempty"`
	FeeProportionalMils  *uint32 `json:"fee_proportional_millionths,omitempty"`
}

type OpenChannelResponse struct {
	TemporaryChannelID string `json:"temporary_channel_id"`
}

type CloseChannelRequest struct {
	ChannelID  string `json:"channel_id"`
	PeerPubkey string `json:"peer_pubkey"`
	Force      bool   `json:"force"`
}

type ChannelDTO struct {
	ChannelID            string  `json:"channel_id"`
	FundingTxID          string  `json:"funding_txid,omitempty"`
	PeerPubkey           string  `json:"peer_pubkey"`
	PeerAlias            string  `json:"peer_alias,omitempty"`
	ShortChannelID       *uint64 `json:"short_channel_id,omitempty"`
	Status               string  `json:"status"`
	Ready                bool    `json:"ready"`
	CapacitySat          uint64  `json:"capacity_sat"`
	LocalBalanceSat      uint64  `json:"local_balance_sat"`
	OutboundBalanceMsat  uint64  `json:"outbound_balance_msat"`
	InboundBalanceMsat   uint64  `json:"inbound_balance_msat"`
	NextOutboundHtlcMsat uint64  `json:"next_outbound_htlc_limit_msat"`
	IsUsable             bool    `json:"is_usable"`
	Public               bool    `json:"public"`
	AssetID              *string `json:"asset_id,omitempty"`
	AssetLocalAmount     *uint64 `json:"asset_local_amount,omitempty"`
	AssetRemoteAmount    *uint64 `json:"asset_remote_amount,omitempty"`
}

type ListChannelsResponse struct {
	Channels []ChannelDTO `json:"channels"`
}

type PeerDTO struct {
	Pubkey string `json:"pubkey"`
}

type ListPeersResponse struct {
	Peers []PeerDTO `json:"peers"`
}

type TransportEndpointDTO struct {
	Endpoint      string `json:"endpoint"`
	TransportType string `json:"transport_type"`
	Used          bool   `json:"used"`
}

type TransferDTO struct {
	Idx                int64                  `json:"idx"`
	CreatedAt          int64                  `json:"created_at"`
	UpdatedAt          int64                  `json:"updated_at"`
	Status             string                 `json:"status"`
	Amount             uint64                 `json:"amount"`
	Kind               string                 `json:"kind"`
	TxID               string                 `json:"txid,omitempty"`
	RecipientID        string                 `json:"recipient_id,omitempty"`
	ReceiveUtxo        string                 `json:"receive_utxo,omitempty"`
	ChangeUtxo         string                 `json:"change_utxo,omitempty"`
	Expiration         *int64                 `json:"expiration,omitempty"`
	TransportEndpoints []TransportEndpointDTO `json:"transport_endpoints"`
}

type ListTransfersResponse struct {
	Transfers []TransferDTO `json:"transfers"`
}

type PaymentDTO struct {
	AmtMsat     uint64  `json:"amt_msat"`
	AssetAmount *uint64 `json:"asset_amount,omitempty"`
	AssetID     *string `json:"asset_id,omitempty"`
	PaymentHash string  `json:"payment_hash"`
	Inbound     bool    `json:"inbound"`
	Status      string  `json:"status"`
	CreatedAt   int64   `json:"created_at"`
	UpdatedAt   int64   `json:"updated_at"`
	PayeePubkey string  `json:"payee_pubkey,omitempty"`
}

type ListPaymentsResponse struct {
	Payments []PaymentDTO `json:"payments"`
}

type BlockTimeDTO struct {
	Height    uint32 `json:"height"`
	Timestamp int64  `json:"timestamp"`
}

type TransactionDTO struct {
	TransactionType  string        `json:"transaction_type"`
	TxID             string        `json:"txid"`
	Received         uint64        `json:"received"`
	Sent             uint64        `json:"sent"`
	Fee              uint64        `json:"fee"`
	ConfirmationTime *BlockTimeDTO `json:"confirmation_time,omitempty"`
}

type ListTransactionsResponse struct {
	Transactions []TransactionDTO `json:"transactions"`
}

type UtxoDTO struct {
	Outpoint  string `json:"outpoint"`
	BtcAmount uint64 `json:"btc_amount"`
	Colorable bool   `json:"colorable"`
}

type RgbAllocationDTO struct {
	AssetID string `json:"asset_id,omitempty"`
	Amount  uint64 `json:"amount"`
	Settled bool   `json:"settled"`
}

type UnspentDTO struct {
	Utxo           UtxoDTO            `json:"utxo"`
	RgbAllocations []RgbAllocationDTO `json:"rgb_allocations"`
}

type ListUnspentsResponse struct {
	Unspents []UnspentDTO `json:"unspents"`
}

type CreateUtxosRequest struct {
	UpTo     bool    `json:"up_to"`
	Num      *uint8  `json:"num,omitempty"`
	Size     *uint32 `json:"size,omitempty"`
	FeeRate  uint64  `json:"fee_rate"`
	SkipSync bool    `json:"skip_sync"`
}

type FailTransfersRequest struct {
	BatchTransferIdx *int64 `json:"batch_transfer_idx,omitempty"`
	NoAssetOnly      bool   `json:"no_asset_only"`
	SkipSync         bool   `json:"skip_sync"`
}

type FailTransfersResponse struct {
	TransfersChanged bool `json:"transfers_changed"`
}

type BackupRequest struct {
	BackupPath string `json:"backup_path"`
	Password   string `json:"password"`
}

type EstimateFeeRequest struct {
	Blocks uint16 `json:"blocks"`
}

type EstimateFeeResponse struct {
	FeeRate float64 `json:"fee_rate"`
}

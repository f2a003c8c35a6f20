// Package i18n is the pluggable string lookup used for every user facing
// text. Keys which have no translation are returned unchanged.
package i18n

type Translator interface {
	T(key string) string
}

// Table is a Translator backed by a map.
type Table map[string]string

func (t Table) T(key string) string {
	if s, ok := t[key]; ok {
		return s
	}
	return key
}

// Func adapts a function to the Translator interface.
type Func func(key string) string

func (f Func) T(key string) string { return f(key) }

// Message keys.
const (
	StatusWaitingConfirmations = "status.waiting_confirmations"
	StatusWaitingCounterparty  = "status.waiting_counterparty"
	StatusSettled              = "status.settled"
	StatusFailed               = "status.failed"
	StatusPending              = "status.pending"
	StatusSucceeded            = "status.succeeded"
	StatusCreateUtxos          = "status.create_utxos"
	StatusIssuance             = "status.issuance"

	StartingNode     = "node.starting"
	SyncingChain     = "node.syncing_chain"
	StillSyncing     = "node.still_syncing"
	StoppingNode     = "node.stopping"
	UnlockingWallet  = "node.unlocking"
	NodeCrashed      = "node.crashed"
	InvalidPassword  = "invalid_password"
	Busy             = "busy"
	ChannelCreated   = "channel.created"
	ChannelClosed    = "channel.closed"
	InvoiceTooShort  = "invoice.too_short"
	AssetIssued      = "asset.issued"
	AssetSent        = "asset.sent"
	BitcoinSent      = "bitcoin.sent"
	PaymentSent      = "payment.sent"
	TransferFailed   = "transfer.failed"
	BackupDone       = "backup.done"
	UtxosCreated     = "utxos.created"
	PasswordMismatch = "password.mismatch"
	PasswordShort    = "password.too_short"
	RestoreDone      = "restore.done"
	SwapUnavailable  = "swap.unavailable"
	FaucetRequested  = "faucet.requested"
	WalletCreated    = "wallet.created"
	NodeLocked       = "node.locked"
	SettingsSaved    = "settings.saved"
	TermsDeclined    = "terms.declined"
	Continue         = "continue"

	RestoreUnavailable = "restore.unavailable"
	NodeNotRunning     = "node.not_running"
	InvoiceCreated     = "invoice.created"
	AddressCopied      = "address.copied"
	NothingToFail      = "transfer.nothing_to_fail"
	NoFaucets          = "faucet.none"
	AssetHidden        = "asset.hidden"
)

// English is the default table.
var English = Table{
	StatusWaitingConfirmations: "Waiting for confirmations",
	StatusWaitingCounterparty:  "Waiting for counterparty",
	StatusSettled:              "Settled",
	StatusFailed:               "Failed",
	StatusPending:              "Pending",
	StatusSucceeded:            "Succeeded",
	StatusCreateUtxos:          "Created UTXOs",
	StatusIssuance:             "Issued",

	StartingNode:     "Starting node",
	SyncingChain:     "syncing chain",
	StillSyncing:     "The node is still syncing with the network, this can take a while",
	StoppingNode:     "Stopping node",
	UnlockingWallet:  "Unlocking wallet",
	NodeCrashed:      "The node stopped unexpectedly",
	InvalidPassword:  "invalid_password",
	Busy:             "busy",
	ChannelCreated:   "Channel created",
	ChannelClosed:    "Channel closed",
	InvoiceTooShort:  "Invoice is too short",
	AssetIssued:      "Asset issued",
	AssetSent:        "Asset sent",
	BitcoinSent:      "Bitcoin sent",
	PaymentSent:      "Payment sent",
	TransferFailed:   "Transfer marked as failed",
	BackupDone:       "Backup completed",
	UtxosCreated:     "UTXOs created",
	PasswordMismatch: "Passwords do not match",
	PasswordShort:    "Password must be at least 8 characters",
	RestoreDone:      "Wallet restored",
	SwapUnavailable:  "Swaps are not available yet",
	FaucetRequested:  "Faucet request sent",
	WalletCreated:    "Wallet created",
	NodeLocked:       "Node locked",
	SettingsSaved:    "Settings saved",
	TermsDeclined:    "The terms must be accepted to use the wallet",
	Continue:         "Continue",

	RestoreUnavailable: "Restoring from a backup is not available from this wallet yet",
	NodeNotRunning:     "The node is not running",
	InvoiceCreated:     "Invoice created",
	AddressCopied:      "Address copied",
	NothingToFail:      "Only pending on-chain asset transfers can be failed",
	NoFaucets:          "No faucet is configured for this network",
	AssetHidden:        "Asset hidden",
}

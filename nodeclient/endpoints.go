package nodeclient

import "net/http"

// Endpoint is one route of the daemon API.
type Endpoint struct {
	Method string
	Path   string
}

var (
	EpNodeInfo         = Endpoint{http.MethodGet, "/nodeinfo"}
	EpNetworkInfo      = Endpoint{http.MethodGet, "/networkinfo"}
	EpInit             = Endpoint{http.MethodPost, "/init"}
	EpUnlock           = Endpoint{http.MethodPost, "/unlock"}
	EpLock             = Endpoint{http.MethodPost, "/lock"}
	EpShutdown         = Endpoint{http.MethodPost, "/shutdown"}
	EpAddress          = Endpoint{http.MethodPost, "/address"}
	EpBtcBalance       = Endpoint{http.MethodPost, "/btcbalance"}
	EpListAssets       = Endpoint{http.MethodPost, "/listassets"}
	EpAssetBalance     = Endpoint{http.MethodPost, "/assetbalance"}
	EpAssetMetadata    = Endpoint{http.MethodPost, "/assetmetadata"}
	EpIssueAssetNIA    = Endpoint{http.MethodPost, "/issueassetnia"}
	EpIssueAssetCFA    = Endpoint{http.MethodPost, "/issueassetcfa"}
	EpSendAsset        = Endpoint{http.MethodPost, "/sendasset"}
	EpSendBtc          = Endpoint{http.MethodPost, "/sendbtc"}
	EpRgbInvoice       = Endpoint{http.MethodPost, "/rgbinvoice"}
	EpLNInvoice        = Endpoint{http.MethodPost, "/lninvoice"}
	EpDecodeLNInvoice  = Endpoint{http.MethodPost, "/decodelninvoice"}
	EpSendPayment      = Endpoint{http.MethodPost, "/sendpayment"}
	EpOpenChannel      = Endpoint{http.MethodPost, "/openchannel"}
	EpCloseChannel     = Endpoint{http.MethodPost, "/closechannel"}
	EpListChannels     = Endpoint{http.MethodGet, "/listchannels"}
	EpListPeers        = Endpoint{http.MethodGet, "/listpeers"}
	EpListTransfers    = Endpoint{http.MethodPost, "/listtransfers"}
	EpListPayments     = Endpoint{http.MethodGet, "/listpayments"}
	EpListTransactions = Endpoint{http.MethodPost, "/listtransactions"}
	EpListUnspents     = Endpoint{http.MethodPost, "/listunspents"}
	EpCreateUtxos      = Endpoint{http.MethodPost, "/createutxos"}
	EpFailTransfers    = Endpoint{http.MethodPost, "/failtransfers"}
	EpRefreshTransfers = Endpoint{http.MethodPost, "/refreshtransfers"}
	EpBackup           = Endpoint{http.MethodPost, "/backup"}
	EpRestore          = Endpoint{http.MethodPost, "/restore"}
	EpEstimateFee      = Endpoint{http.MethodPost, "/estimatefee"}
)

// Endpoints lists every route the client uses.
var Endpoints = []Endpoint{
	EpNodeInfo, EpNetworkInfo, EpInit, EpUnlock, EpLock, EpShutdown, EpAddress,
	EpBtcBalance, EpListAssets, EpAssetBalance, EpAssetMetadata, EpIssueAssetNIA,
	EpIssueAssetCFA, EpSendAsset, EpSendBtc, EpRgbInvoice, EpLNInvoice,
	EpDecodeLNInvoice, EpSendPayment, EpOpenChannel, EpCloseChannel, EpListChannels,
	EpListPeers, EpListTransfers, EpListPayments, EpListTransactions, EpListUnspents,
	EpCreateUtxos, EpFailTransfers, EpRefreshTransfers, EpBackup, EpRestore, EpEstimateFee,
}

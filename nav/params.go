package nav

import (
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/transfers"
)

// Params is a typed parameter bundle, it names the page it belongs to.
type Params interface {
	ForPage() Page
}

// WalletConnectionParams opens the remote endpoint page.
type WalletConnectionParams struct {
	Kind model.WalletKind
	// Origin is where the back button goes.
	Origin Page
}

func (WalletConnectionParams) ForPage() Page { return LNEndpoint }

type RGBDetailParams struct {
	AssetID   string
	AssetName string
	Ticker    string
	Kind      model.AssetKind
	Precision uint8
	ImagePath string
}

func (RGBDetailParams) ForPage() Page { return RGBDetail }

type SendRGBParams struct {
	AssetID   string
	AssetName string
	Ticker    string
	Kind      model.AssetKind
	Precision uint8
	Spendable uint64
}

func (SendRGBParams) ForPage() Page { return SendRGB }

type ReceiveRGBParams struct {
	AssetID string
	Kind    model.AssetKind
	Origin  Page
}

func (ReceiveRGBParams) ForPage() Page { return ReceiveRGB }

// TxDetailParams opens the detail of one row, btc_tx_detail for bitcoin
// and rgb_tx_detail for everything else.
type TxDetailParams struct {
	AssetID   string
	AssetName string
	Ticker    string
	Kind      model.AssetKind
	Precision uint8
	Row       transfers.Row
}

func (p TxDetailParams) ForPage() Page {
	if p.Kind == model.Bitcoin {
		return BTCTxDetail
	}
	return RGBTxDetail
}

type CreateLNInvoiceParams struct {
	AssetID   string
	AssetName string
	Kind      model.AssetKind
	Precision uint8
}

func (CreateLNInvoiceParams) ForPage() Page { return CreateLNInvoice }

type SendLNInvoiceParams struct {
	Kind model.AssetKind
}

func (SendLNInvoiceParams) ForPage() Page { return SendLNInvoice }

// SuccessParams fill the success page, OnDone is emitted when the user
// dismisses it. A nil OnDone goes to fungibles.
type SuccessParams struct {
	Header      string
	Title       string
	Description string
	ButtonText  string
	OnDone      Intent
}

func (SuccessParams) ForPage() Page { return Success }

func ToWalletConnection(p WalletConnectionParams) GoTo { return GoTo{Page: LNEndpoint, Params: p} }
func ToRGBDetail(p RGBDetailParams) GoTo               { return GoTo{Page: RGBDetail, Params: p} }
func ToSendRGB(p SendRGBParams) GoTo                   { return GoTo{Page: SendRGB, Params: p} }
func ToReceiveRGB(p ReceiveRGBParams) GoTo             { return GoTo{Page: ReceiveRGB, Params: p} }
func ToTxDetail(p TxDetailParams) GoTo                 { return GoTo{Page: p.ForPage(), Params: p} }
func ToCreateLNInvoice(p CreateLNInvoiceParams) GoTo   { return GoTo{Page: CreateLNInvoice, Params: p} }
func ToSendLNInvoice(p SendLNInvoiceParams) GoTo       { return GoTo{Page: SendLNInvoice, Params: p} }
func ToSuccess(p SuccessParams) GoTo                   { return GoTo{Page: Success, Params: p} }

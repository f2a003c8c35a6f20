package viewmodel

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"

	"github.com/pkt-cash/iriswallet/amount"
	"github.com/pkt-cash/iriswallet/cache"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/transfers"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/validate"
	"github.com/pkt-cash/iriswallet/walleterr"
)

// AssetInfo heads the detail page of an asset.
type AssetInfo struct {
	ID        string
	Name      string
	Ticker    string
	ImagePath string
	Kind      model.AssetKind
	Precision uint8
}

// AssetDetail is everything RGBDetailVM loads at once.
type AssetDetail struct {
	Balance    nodeclient.AssetBalanceResponse
	Projection transfers.Projection
	Channels   []model.Channel
}

type RGBDetailVM struct {
	Base
	params nav.RGBDetailParams
	last   AssetDetail

	AssetInfo    event.Emitter[AssetInfo]
	Transactions event.Emitter[AssetDetail]
}

func NewRGBDetail(d *Deps, p nav.RGBDetailParams) *RGBDetailVM {
	return &RGBDetailVM{
		Base:         newBase(d, "rgb_detail", nav.RGBDetail),
		params:       p,
		AssetInfo:    event.NewEmitter[AssetInfo]("rgb_detail.AssetInfo"),
		Transactions: event.NewEmitter[AssetDetail]("rgb_detail.Transactions"),
	}
}

func (vm *RGBDetailVM) Activate() { vm.LoadForAsset(vm.params.AssetID) }

func (vm *RGBDetailVM) Params() nav.RGBDetailParams { return vm.params }

// Detail is the last load.
func (vm *RGBDetailVM) Detail() AssetDetail { return vm.last }

// LoadForAsset fetches the on-chain transfers, the payments and the
// channels of the asset and projects them into rows.
func (vm *RGBDetailVM) LoadForAsset(assetID string) er.R {
	if assetID == "" {
		return vm.invalid("load", validate.NewFieldErrors(validate.FieldAssetID))
	}
	p := vm.params
	vm.AssetInfo.Emit(AssetInfo{
		ID:        assetID,
		Name:      p.AssetName,
		Ticker:    p.Ticker,
		ImagePath: p.ImagePath,
		Kind:      p.Kind,
		Precision: p.Precision,
	})
	client := vm.d.Client
	c := vm.d.Cache
	tr := vm.d.Tr
	return vm.run(task{
		op:     "load",
		policy: Coalesce,
		fn: ctxFn(func(ctx context.Context) (AssetDetail, er.R) {
			bal, err := client.AssetBalance(ctx, assetID)
			if err != nil {
				return AssetDetail{}, err
			}
			onChain, err := client.ListTransfers(ctx, assetID)
			if err != nil {
				return AssetDetail{}, err
			}
			payments, err := client.ListPayments(ctx)
			if err != nil {
				return AssetDetail{}, err
			}
			channels, err := client.ListChannels(ctx)
			if err != nil {
				return AssetDetail{}, err
			}
			if c != nil {
				if err := c.Put(cache.Transfers, assetID, onChain); err != nil {
					log.Warnf("Transfer cache: %s", err.Message())
				}
			}
			proj := transfers.Project(onChain, payments, transfers.Asset(assetID, p.Precision), channels, tr)
			return AssetDetail{Balance: *bal, Projection: proj, Channels: channels}, nil
		}),
		done: func(v interface{}) {
			vm.last = value[AssetDetail](v)
			vm.Transactions.Emit(vm.last)
		},
	})
}

// OnFailTransfer fails the idx-th row of the last load, which must be a
// pending on-chain transfer. The view asks for confirmation first.
func (vm *RGBDetailVM) OnFailTransfer(idx int) er.R {
	rows := vm.last.Projection.Rows
	if idx < 0 || idx >= len(rows) || rows[idx].OnChain == nil || !rows[idx].Status.Pending() {
		vm.warn(vm.d.tr(i18n.NothingToFail))
		return walleterr.InputInvalid.New("no pending on-chain transfer at index", nil)
	}
	batch := rows[idx].OnChain.Idx
	client := vm.d.Client
	return vm.run(task{
		op:     "fail_transfer",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (bool, er.R) {
			return client.FailTransfer(ctx, batch)
		}),
		done: func(interface{}) {
			vm.success(vm.d.tr(i18n.TransferFailed))
			vm.then(func() { vm.LoadForAsset(vm.params.AssetID) })
		},
	})
}

// Open goes to the detail of a row of the last load.
func (vm *RGBDetailVM) Open(idx int) {
	rows := vm.last.Projection.Rows
	if idx < 0 || idx >= len(rows) {
		return
	}
	p := vm.params
	vm.goTo(nav.ToTxDetail(nav.TxDetailParams{
		AssetID: p.AssetID, AssetName: p.AssetName, Ticker: p.Ticker,
		Kind: p.Kind, Precision: p.Precision, Row: rows[idx],
	}))
}

func (vm *RGBDetailVM) Send() {
	p := vm.params
	vm.goTo(nav.ToSendRGB(nav.SendRGBParams{
		AssetID: p.AssetID, AssetName: p.AssetName, Ticker: p.Ticker,
		Kind: p.Kind, Precision: p.Precision, Spendable: vm.last.Balance.Spendable,
	}))
}

func (vm *RGBDetailVM) Receive() {
	vm.goTo(nav.ToReceiveRGB(nav.ReceiveRGBParams{AssetID: vm.params.AssetID, Kind: vm.params.Kind, Origin: nav.RGBDetail}))
}

type SendRGBVM struct {
	Base
	params nav.SendRGBParams

	Sent event.Emitter[string]
}

func NewSendRGB(d *Deps, p nav.SendRGBParams) *SendRGBVM {
	return &SendRGBVM{
		Base:   newBase(d, "send_rgb", nav.SendRGB),
		params: p,
		Sent:   event.NewEmitter[string]("send_rgb.Sent"),
	}
}

func (vm *SendRGBVM) Params() nav.SendRGBParams { return vm.params }

// Send transfers amount (in minor units) of the asset to an RGB invoice
// recipient over the given consignment endpoints.
func (vm *SendRGBVM) Send(recipient string, amt, feeRate uint64, endpoints []string) er.R {
	var fe validate.FieldErrors
	recipient = strings.TrimSpace(recipient)
	if recipient == "" {
		fe.Add(validate.FieldRecipient)
	}
	if err := validate.Amount(amt, vm.params.Spendable); err != nil {
		fe.Add(validate.FieldAmount)
	}
	if feeRate == 0 {
		fe.Add(validate.FieldFeeRate)
	}
	for _, e := range endpoints {
		if !strings.HasPrefix(e, "rpc://") && !strings.HasPrefix(e, "rpcs://") && validate.EndpointURL(e) != nil {
			fe.Add(validate.FieldURL)
		}
	}
	if !fe.Empty() {
		return vm.invalid("send", fe)
	}
	if err := vm.requireReady("send"); err != nil {
		return err
	}
	client := vm.d.Client
	p := vm.params
	req := &nodeclient.SendAssetRequest{
		AssetID:            p.AssetID,
		Amount:             amt,
		RecipientID:        recipient,
		FeeRate:            feeRate,
		MinConfirmations:   1,
		TransportEndpoints: append([]string{}, endpoints...),
	}
	return vm.run(task{
		op:     "send",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (string, er.R) {
			return client.SendAsset(ctx, req)
		}),
		done: func(v interface{}) {
			txid := value[string](v)
			vm.Sent.Emit(txid)
			vm.goTo(nav.ShowSuccess{Params: nav.SuccessParams{
				Header:      vm.d.tr(i18n.AssetSent),
				Title:       amount.FormatAsset(amt, p.Precision) + " " + p.Ticker,
				Description: txid,
				ButtonText:  vm.d.tr(i18n.Continue),
				OnDone: nav.ToRGBDetail(nav.RGBDetailParams{
					AssetID: p.AssetID, AssetName: p.AssetName, Ticker: p.Ticker,
					Kind: p.Kind, Precision: p.Precision,
				}),
			}})
		},
	})
}

// RGBInvoice is what the receive page shows.
type RGBInvoice struct {
	Invoice     string
	RecipientID string
	Expiration  *int64
}

type ReceiveRGBVM struct {
	Base
	params nav.ReceiveRGBParams

	InvoiceReady event.Emitter[RGBInvoice]
}

func NewReceiveRGB(d *Deps, p nav.ReceiveRGBParams) *ReceiveRGBVM {
	return &ReceiveRGBVM{
		Base:         newBase(d, "receive_rgb", nav.ReceiveRGB),
		params:       p,
		InvoiceReady: event.NewEmitter[RGBInvoice]("receive_rgb.InvoiceReady"),
	}
}

func (vm *ReceiveRGBVM) Params() nav.ReceiveRGBParams { return vm.params }

// Generate creates a blinded recipient, an empty assetID accepts any asset.
func (vm *ReceiveRGBVM) Generate(assetID string, minConf uint8, durationSec uint32) er.R {
	req := &nodeclient.RgbInvoiceRequest{MinConfirmations: minConf}
	if assetID != "" {
		req.AssetID = util.Ptr(assetID)
	}
	if durationSec > 0 {
		req.DurationSeconds = util.Ptr(durationSec)
	}
	client := vm.d.Client
	return vm.run(task{
		op:     "generate",
		policy: Reject,
		fn:     ctxFn(func(ctx context.Context) (*nodeclient.RgbInvoiceResponse, er.R) { return client.RgbInvoice(ctx, req) }),
		done: func(v interface{}) {
			r := value[*nodeclient.RgbInvoiceResponse](v)
			if r == nil {
				return
			}
			vm.InvoiceReady.Emit(RGBInvoice{Invoice: r.Invoice, RecipientID: r.RecipientID, Expiration: r.ExpirationTimestamp})
		},
	})
}

// Back goes where the page was opened from.
func (vm *ReceiveRGBVM) Back() {
	if vm.params.Origin == nav.RGBDetail && vm.params.AssetID != "" {
		vm.goTo(nav.ToRGBDetail(nav.RGBDetailParams{AssetID: vm.params.AssetID, Kind: vm.params.Kind}))
		return
	}
	vm.goTo(nav.To(nav.Fungibles))
}

type IssueRGB20VM struct {
	Base

	AssetIssued event.Emitter[model.AssetDescriptor]
}

func NewIssueRGB20(d *Deps) *IssueRGB20VM {
	return &IssueRGB20VM{
		Base:        newBase(d, "issue_rgb20", nav.IssueRGB20),
		AssetIssued: event.NewEmitter[model.AssetDescriptor]("issue_rgb20.AssetIssued"),
	}
}

func (b *Base) issued(a model.AssetDescriptor, e *event.Emitter[model.AssetDescriptor], back nav.Page) {
	if c := b.d.Cache; c != nil {
		if err := c.Invalidate(cache.Assets); err != nil {
			log.Warnf("Asset cache: %s", err.Message())
		}
	}
	e.Emit(a)
	b.goTo(nav.ShowSuccess{Params: nav.SuccessParams{
		Header:      b.d.tr(i18n.AssetIssued),
		Title:       a.Name,
		Description: a.AssetID,
		ButtonText:  b.d.tr(i18n.Continue),
		OnDone:      nav.To(back),
	}})
}

// Issue creates a fungible asset, supply is in whole units.
func (vm *IssueRGB20VM) Issue(ticker, name string, supply uint64, precision int) er.R {
	var fe validate.FieldErrors
	for _, err := range []er.R{
		validate.Ticker(ticker),
		validate.AssetName(name),
		validate.Amount(supply, 0),
		validate.Precision(precision),
	} {
		if f, ok := validate.FieldOf(err); ok {
			fe.Add(f)
		}
	}
	if !fe.Empty() {
		return vm.invalid("issue", fe)
	}
	client := vm.d.Client
	req := &nodeclient.IssueAssetNIARequest{
		Amounts:   []uint64{supply},
		Ticker:    ticker,
		Name:      name,
		Precision: uint8(precision),
	}
	return vm.run(task{
		op:     "issue",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (model.AssetDescriptor, er.R) {
			return client.IssueAssetNIA(ctx, req)
		}),
		done: func(v interface{}) {
			vm.issued(value[model.AssetDescriptor](v), &vm.AssetIssued, nav.Fungibles)
		},
	})
}

type IssueRGB25VM struct {
	Base

	AssetIssued event.Emitter[model.AssetDescriptor]
}

func NewIssueRGB25(d *Deps) *IssueRGB25VM {
	return &IssueRGB25VM{
		Base:        newBase(d, "issue_rgb25", nav.IssueRGB25),
		AssetIssued: event.NewEmitter[model.AssetDescriptor]("issue_rgb25.AssetIssued"),
	}
}

func fileDigest(path string) (string, er.R) {
	b, errr := os.ReadFile(path)
	if errr != nil {
		return "", walleterr.InputInvalid.New(validate.FieldFile+": cannot read ["+path+"]", er.E(errr))
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Issue creates a collectible, filePath is an optional media file.
func (vm *IssueRGB25VM) Issue(name string, supply uint64, description, filePath string) er.R {
	var fe validate.FieldErrors
	for _, err := range []er.R{validate.AssetName(name), validate.Amount(supply, 0)} {
		if f, ok := validate.FieldOf(err); ok {
			fe.Add(f)
		}
	}
	if filePath != "" && !util.Exists(filePath) {
		fe.Add(validate.FieldFile)
	}
	if !fe.Empty() {
		return vm.invalid("issue", fe)
	}
	client := vm.d.Client
	return vm.run(task{
		op:     "issue",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (model.AssetDescriptor, er.R) {
			req := &nodeclient.IssueAssetCFARequest{
				Amounts: []uint64{supply},
				Name:    name,
				Details: description,
			}
			if filePath != "" {
				digest, err := fileDigest(filePath)
				if err != nil {
					return model.AssetDescriptor{}, err
				}
				req.FileDigest = digest
			}
			return client.IssueAssetCFA(ctx, req)
		}),
		done: func(v interface{}) {
			vm.issued(value[model.AssetDescriptor](v), &vm.AssetIssued, nav.Collectibles)
		},
	})
}

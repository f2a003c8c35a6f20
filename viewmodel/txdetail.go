package viewmodel

import (
	"context"
	"time"

	"github.com/pkt-cash/iriswallet/amount"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/transfers"
	"github.com/pkt-cash/iriswallet/walleterr"
)

// TxDetail is what the transaction detail pages show about one row.
type TxDetail struct {
	Row         transfers.Row
	Ticker      string
	AssetName   string
	Amount      string
	Color       transfers.Color
	StatusLabel string
	// Time is the confirmation time when there is one, else the last update.
	Time    *time.Time
	TxID    string
	Fee     string
	Hash    string
	CanFail bool
}

// TxDetailVM backs both btc_tx_detail and rgb_tx_detail.
type TxDetailVM struct {
	Base
	params nav.TxDetailParams
	detail TxDetail

	Detail event.Emitter[TxDetail]
	Failed event.Emitter[TxDetail]
}

func NewTxDetail(d *Deps, p nav.TxDetailParams) *TxDetailVM {
	page := p.ForPage()
	name := page.String()
	return &TxDetailVM{
		Base:   newBase(d, name, page),
		params: p,
		Detail: event.NewEmitter[TxDetail](name + ".Detail"),
		Failed: event.NewEmitter[TxDetail](name + ".Failed"),
	}
}

func (vm *TxDetailVM) Activate() { vm.Load() }

func (vm *TxDetailVM) Current() TxDetail { return vm.detail }

// Describe derives the detail of a row, it needs nothing but the row and
// the asset it belongs to.
func Describe(p nav.TxDetailParams) TxDetail {
	r := p.Row
	d := TxDetail{
		Row:         r,
		Ticker:      p.Ticker,
		AssetName:   p.AssetName,
		Amount:      r.DisplayAmount,
		Color:       r.Color(),
		StatusLabel: r.StatusLabel,
		Time:        r.PrimaryTS,
	}
	switch {
	case r.OnChain != nil:
		d.TxID = r.OnChain.TxID
		if r.OnChain.Fee > 0 {
			d.Fee = amount.FormatSats(r.OnChain.Fee, amount.Sats)
		}
		d.CanFail = p.Kind != model.Bitcoin && r.Status.Pending()
	case r.Lightning != nil:
		d.Hash = r.Lightning.PaymentHash
	}
	return d
}

func (vm *TxDetailVM) Load() {
	vm.detail = Describe(vm.params)
	vm.Detail.Emit(vm.detail)
}

// Fail marks a pending on-chain RGB transfer as failed.
func (vm *TxDetailVM) Fail() er.R {
	if !vm.detail.CanFail {
		vm.warn(vm.d.tr(i18n.NothingToFail))
		return walleterr.InputInvalid.New("transfer can not be failed", nil)
	}
	batch := vm.detail.Row.OnChain.Idx
	client := vm.d.Client
	return vm.run(task{
		op:     "fail_transfer",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (bool, er.R) {
			return client.FailTransfer(ctx, batch)
		}),
		done: func(v interface{}) {
			if !value[bool](v) {
				vm.warn(vm.d.tr(i18n.NothingToFail))
				return
			}
			vm.detail.Row.Status = model.Failed
			vm.detail.Color = transfers.ColorOf(vm.detail.Row.Direction, model.Failed)
			vm.detail.StatusLabel = vm.d.tr(i18n.StatusFailed)
			vm.detail.CanFail = false
			vm.success(vm.d.tr(i18n.TransferFailed))
			vm.Failed.Emit(vm.detail)
		},
	})
}

// Back returns to the list the row was opened from.
func (vm *TxDetailVM) Back() {
	p := vm.params
	if p.Kind == model.Bitcoin {
		vm.goTo(nav.To(nav.Bitcoin))
		return
	}
	vm.goTo(nav.ToRGBDetail(nav.RGBDetailParams{
		AssetID:   p.AssetID,
		AssetName: p.AssetName,
		Ticker:    p.Ticker,
		Kind:      p.Kind,
		Precision: p.Precision,
	}))
}

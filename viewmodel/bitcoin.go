package viewmodel

import (
	"context"

	"github.com/pkt-cash/iriswallet/amount"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/settings"
	"github.com/pkt-cash/iriswallet/transfers"
	"github.com/pkt-cash/iriswallet/validate"
	"github.com/pkt-cash/iriswallet/workerpool"
)

// DefaultFeeRate in sat/vB is used when none has been set.
const DefaultFeeRate = 5

// BitcoinState is the bitcoin page: every transaction, newest first,
// with the balance after each of them.
type BitcoinState struct {
	Rows    []transfers.Row
	Running []int64
	Balance model.BtcBalance
}

type BitcoinVM struct {
	Base
	last BitcoinState
	Unit amount.Unit

	TransactionLoaded event.Emitter[BitcoinState]
}

func NewBitcoin(d *Deps) *BitcoinVM {
	return &BitcoinVM{
		Base:              newBase(d, "bitcoin", nav.Bitcoin),
		Unit:              amount.Sats,
		TransactionLoaded: event.NewEmitter[BitcoinState]("bitcoin.TransactionLoaded"),
	}
}

func (vm *BitcoinVM) Activate() { vm.GetTransactions() }

func (vm *BitcoinVM) TotalBalanceWithSuffix() string {
	return amount.FormatSats(vm.last.Balance.VanillaFuture, vm.Unit)
}

func (vm *BitcoinVM) SpendableBalanceWithSuffix() string {
	return amount.FormatSats(vm.last.Balance.VanillaSpendable, vm.Unit)
}

func (vm *BitcoinVM) load(refresh bool) workerpool.Func {
	client := vm.d.Client
	tr := vm.d.Tr
	return ctxFn(func(ctx context.Context) (BitcoinState, er.R) {
		if refresh {
			if err := client.RefreshTransfers(ctx); err != nil {
				return BitcoinState{}, err
			}
		}
		txs, err := client.ListTransactions(ctx, !refresh)
		if err != nil {
			return BitcoinState{}, err
		}
		bal, err := client.BtcBalance(ctx, true)
		if err != nil {
			return BitcoinState{}, err
		}
		p := transfers.Project(txs, nil, transfers.Bitcoin(), nil, tr)
		return BitcoinState{Rows: p.Rows, Running: transfers.RunningBalance(p.Rows), Balance: bal}, nil
	})
}

func (vm *BitcoinVM) loaded(v interface{}) {
	vm.last = value[BitcoinState](v)
	vm.TransactionLoaded.Emit(vm.last)
}

func (vm *BitcoinVM) GetTransactions() er.R {
	return vm.run(task{op: "get_transactions", policy: Coalesce, fn: vm.load(false), done: vm.loaded})
}

// OnHardRefresh refreshes pending transfers on the node before loading.
func (vm *BitcoinVM) OnHardRefresh() er.R {
	return vm.run(task{op: "hard_refresh", policy: Replay, fn: vm.load(true), done: vm.loaded})
}

// Open goes to the detail of a row of the last load.
func (vm *BitcoinVM) Open(id string) {
	for _, r := range vm.last.Rows {
		if r.ID == id {
			vm.goTo(nav.ToTxDetail(nav.TxDetailParams{Kind: model.Bitcoin, Ticker: "BTC", AssetName: "Bitcoin", Row: r}))
			return
		}
	}
}

type SendBitcoinVM struct {
	Base

	FeeEstimated event.Emitter[float64]
}

func NewSendBitcoin(d *Deps) *SendBitcoinVM {
	return &SendBitcoinVM{
		Base:         newBase(d, "send_bitcoin", nav.SendBitcoin),
		FeeEstimated: event.NewEmitter[float64]("send_bitcoin.FeeEstimated"),
	}
}

func (vm *SendBitcoinVM) Activate() { vm.EstimateFee() }

// FeeRate is the configured default fee rate in sat/vB.
func (vm *SendBitcoinVM) FeeRate() uint64 {
	return settings.GetOr(vm.d.Settings, settings.FeeRate, DefaultFeeRate)
}

// EstimateFee asks the node for a rate confirming within 6 blocks.
func (vm *SendBitcoinVM) EstimateFee() er.R {
	client := vm.d.Client
	return vm.run(task{
		op:     "estimate_fee",
		policy: Coalesce,
		fn: ctxFn(func(ctx context.Context) (float64, er.R) {
			return client.EstimateFee(ctx, 6)
		}),
		done: func(v interface{}) { vm.FeeEstimated.Emit(value[float64](v)) },
	})
}

func (vm *SendBitcoinVM) Send(address string, sats, feeRate uint64) er.R {
	var fe validate.FieldErrors
	if err := validate.BitcoinAddress(address, vm.d.Network()); err != nil {
		fe.Add(validate.FieldAddress)
	}
	if err := validate.Amount(sats, 0); err != nil {
		fe.Add(validate.FieldAmount)
	}
	if feeRate == 0 {
		feeRate = vm.FeeRate()
	}
	if !fe.Empty() {
		return vm.invalid("send", fe)
	}
	if err := vm.requireReady("send"); err != nil {
		return err
	}
	client := vm.d.Client
	req := &nodeclient.SendBtcRequest{Amount: sats, Address: address, FeeRate: feeRate}
	return vm.run(task{
		op:     "send",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (string, er.R) {
			return client.SendBtc(ctx, req)
		}),
		done: func(v interface{}) {
			vm.goTo(nav.ShowSuccess{Params: nav.SuccessParams{
				Header:      vm.d.tr(i18n.BitcoinSent),
				Title:       amount.FormatSats(sats, amount.Sats),
				Description: value[string](v),
				ButtonText:  vm.d.tr(i18n.Continue),
				OnDone:      nav.To(nav.Bitcoin),
			}})
		},
	})
}

type ReceiveBitcoinVM struct {
	Base
	address string

	AddressReady event.Emitter[string]
}

func NewReceiveBitcoin(d *Deps) *ReceiveBitcoinVM {
	return &ReceiveBitcoinVM{
		Base:         newBase(d, "receive_bitcoin", nav.ReceiveBitcoin),
		AddressReady: event.NewEmitter[string]("receive_bitcoin.AddressReady"),
	}
}

func (vm *ReceiveBitcoinVM) Activate() { vm.GetAddress() }

func (vm *ReceiveBitcoinVM) Address() string { return vm.address }

func (vm *ReceiveBitcoinVM) GetAddress() er.R {
	client := vm.d.Client
	return vm.run(task{
		op:     "get_address",
		policy: Coalesce,
		fn:     ctxFn(client.Address),
		done: func(v interface{}) {
			vm.address = value[string](v)
			vm.AddressReady.Emit(vm.address)
		},
	})
}

package viewmodel

import (
	"context"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/settings"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/validate"
)

// Colorable UTXOs are created 32000 sats each unless asked otherwise.
const DefaultUtxoSize = 32000

type UnspentsVM struct {
	Base
	last []model.Unspent

	Unspents event.Emitter[[]model.Unspent]
}

func NewUnspents(d *Deps) *UnspentsVM {
	return &UnspentsVM{
		Base:     newBase(d, "view_unspents", nav.ViewUnspents),
		Unspents: event.NewEmitter[[]model.Unspent]("view_unspents.Unspents"),
	}
}

func (vm *UnspentsVM) Activate() { vm.ListUnspents() }

func (vm *UnspentsVM) Last() []model.Unspent { return vm.last }

// Colorable is the number of UTXOs assets can be allocated on.
func (vm *UnspentsVM) Colorable() int {
	return len(util.Filter(vm.last, func(u model.Unspent) bool { return u.Colorable }))
}

func (vm *UnspentsVM) loaded(v interface{}) {
	vm.last = value[[]model.Unspent](v)
	vm.Unspents.Emit(vm.last)
}

func (vm *UnspentsVM) ListUnspents() er.R {
	client := vm.d.Client
	return vm.run(task{
		op:     "list_unspents",
		policy: Coalesce,
		fn: ctxFn(func(ctx context.Context) ([]model.Unspent, er.R) {
			return client.ListUnspents(ctx, false)
		}),
		done: vm.loaded,
	})
}

// CreateUtxos creates num colorable UTXOs of size sats, 0 picks the
// default for either.
func (vm *UnspentsVM) CreateUtxos(num uint8, size uint32) er.R {
	if size != 0 && size < 1000 {
		return vm.invalid("create_utxos", validate.NewFieldErrors(validate.FieldAmount))
	}
	if err := vm.requireReady("create_utxos"); err != nil {
		return err
	}
	req := &nodeclient.CreateUtxosRequest{
		UpTo:    num == 0,
		FeeRate: settings.GetOr(vm.d.Settings, settings.FeeRate, DefaultFeeRate),
	}
	if num != 0 {
		req.Num = util.Ptr(num)
	}
	if size != 0 {
		req.Size = util.Ptr(size)
	}
	client := vm.d.Client
	return vm.run(task{
		op:     "create_utxos",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) ([]model.Unspent, er.R) {
			if err := client.CreateUtxos(ctx, req); err != nil {
				return nil, err
			}
			return client.ListUnspents(ctx, true)
		}),
		done: func(v interface{}) {
			vm.success(vm.d.tr(i18n.UtxosCreated))
			vm.loaded(v)
		},
	})
}

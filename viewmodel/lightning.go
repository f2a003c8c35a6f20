package viewmodel

import (
	"context"
	"strings"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/validate"
	"github.com/pkt-cash/iriswallet/walleterr"
)

// DefaultInvoiceExpiry is one hour.
const DefaultInvoiceExpiry = 3600

type CreateLNInvoiceVM struct {
	Base
	params nav.CreateLNInvoiceParams

	InvoiceReady event.Emitter[string]
}

func NewCreateLNInvoice(d *Deps, p nav.CreateLNInvoiceParams) *CreateLNInvoiceVM {
	return &CreateLNInvoiceVM{
		Base:         newBase(d, "create_ln_invoice", nav.CreateLNInvoice),
		params:       p,
		InvoiceReady: event.NewEmitter[string]("create_ln_invoice.InvoiceReady"),
	}
}

func (vm *CreateLNInvoiceVM) Params() nav.CreateLNInvoiceParams { return vm.params }

// Create asks the node for a lightning invoice. An RGB invoice carries
// assetAmount of the page's asset, amountMsat is the bitcoin part and may
// be zero for an RGB invoice.
func (vm *CreateLNInvoiceVM) Create(amountMsat, assetAmount uint64, expirySec uint32) er.R {
	p := vm.params
	req := &nodeclient.LNInvoiceRequest{ExpirySec: expirySec}
	if req.ExpirySec == 0 {
		req.ExpirySec = DefaultInvoiceExpiry
	}
	var fe validate.FieldErrors
	if p.Kind == model.Bitcoin || p.AssetID == "" {
		if err := validate.Amount(amountMsat, 0); err != nil {
			fe.Add(validate.FieldAmount)
		}
	} else {
		if err := validate.Amount(assetAmount, 0); err != nil {
			fe.Add(validate.FieldAssetAmount)
		}
		req.AssetID = util.Ptr(p.AssetID)
		req.AssetAmount = util.Ptr(assetAmount)
	}
	if !fe.Empty() {
		return vm.invalid("create_invoice", fe)
	}
	if amountMsat > 0 {
		req.AmtMsat = util.Ptr(amountMsat)
	}
	client := vm.d.Client
	return vm.run(task{
		op:     "create_invoice",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (string, er.R) {
			return client.LNInvoice(ctx, req)
		}),
		done: func(v interface{}) {
			vm.success(vm.d.tr(i18n.InvoiceCreated))
			vm.InvoiceReady.Emit(value[string](v))
		},
	})
}

// LNOffchainVM pays lightning invoices.
type LNOffchainVM struct {
	Base
	params  nav.SendLNInvoiceParams
	invoice string
	decoded *model.InvoiceDecoding

	IsInvoiceValid event.Emitter[bool]
	InvoiceDetail  event.Emitter[model.InvoiceDecoding]
	IsSent         event.Emitter[struct{}]
}

func NewLNOffchain(d *Deps, p nav.SendLNInvoiceParams) *LNOffchainVM {
	return &LNOffchainVM{
		Base:           newBase(d, "send_ln_invoice", nav.SendLNInvoice),
		params:         p,
		IsInvoiceValid: event.NewEmitter[bool]("send_ln_invoice.IsInvoiceValid"),
		InvoiceDetail:  event.NewEmitter[model.InvoiceDecoding]("send_ln_invoice.InvoiceDetail"),
		IsSent:         event.NewEmitter[struct{}]("send_ln_invoice.IsSent"),
	}
}

// Decoded is the last invoice the node decoded.
func (vm *LNOffchainVM) Decoded() (model.InvoiceDecoding, bool) {
	if vm.decoded == nil {
		return model.InvoiceDecoding{}, false
	}
	return *vm.decoded, true
}

// DecodeInvoice checks s locally and has the node decode it. Nothing is
// sent to the node for a string which fails the local check.
func (vm *LNOffchainVM) DecodeInvoice(s string) er.R {
	s = strings.TrimSpace(s)
	if err := validate.Invoice(s, vm.d.Network()); err != nil {
		vm.decoded = nil
		vm.IsInvoiceValid.Emit(false)
		vm.Validation.Emit(validate.ErrorsOf(err))
		vm.d.Metrics.Operation(vm.name, "decode_invoice", "invalid")
		return err
	}
	client := vm.d.Client
	return vm.run(task{
		op:     "decode_invoice",
		policy: Coalesce,
		fn: ctxFn(func(ctx context.Context) (model.InvoiceDecoding, er.R) {
			return client.DecodeLNInvoice(ctx, s)
		}),
		done: func(v interface{}) {
			d := value[model.InvoiceDecoding](v)
			vm.invoice = s
			vm.decoded = &d
			vm.IsInvoiceValid.Emit(true)
			vm.InvoiceDetail.Emit(d)
		},
		failed: func(err er.R) bool {
			vm.decoded = nil
			vm.IsInvoiceValid.Emit(false)
			return false
		},
	})
}

// SendAssetOffchain pays invoice, which is usually the one just decoded.
func (vm *LNOffchainVM) SendAssetOffchain(invoice string) er.R {
	invoice = strings.TrimSpace(invoice)
	if invoice == "" {
		invoice = vm.invoice
	}
	if err := validate.Invoice(invoice, vm.d.Network()); err != nil {
		return vm.check("send_payment", err)
	}
	if err := vm.requireReady("send_payment"); err != nil {
		return err
	}
	client := vm.d.Client
	return vm.run(task{
		op:     "send_payment",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (*nodeclient.SendPaymentResponse, er.R) {
			resp, err := client.SendPayment(ctx, invoice)
			if err != nil {
				return nil, err
			}
			if model.PaymentStatus(strings.ToLower(resp.Status)) == model.PaymentFailed {
				return nil, walleterr.Conflict.New("payment "+resp.PaymentHash+" failed", nil)
			}
			return resp, nil
		}),
		done: func(interface{}) {
			vm.success(vm.d.tr(i18n.PaymentSent))
			vm.IsSent.Emit(struct{}{})
		},
	})
}

package viewmodel

import (
	"context"

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

// ChannelList is a load of the channels page. Assets are the RGB assets
// of the wallet, a channel of one of them may be opened.
type ChannelList struct {
	Channels []model.Channel
	Assets   []model.AssetDescriptor
}

// Available is the derived snapshot of what can be paid with right now.
type Available struct {
	Channels []model.Channel
	// Outbound is offchain_outbound per asset id.
	Outbound map[string]uint64
	// BitcoinSpendableMsat is the largest bitcoin amount one channel can send.
	BitcoinSpendableMsat uint64
}

// ChannelManagementVM backs both the channels page and the create channel
// page, each with its own instance.
type ChannelManagementVM struct {
	Base
	last ChannelList

	Channels       event.Emitter[ChannelList]
	ChannelCreated event.Emitter[string]
	ChannelClosed  event.Emitter[string]
}

func NewChannelManagement(d *Deps, page nav.Page) *ChannelManagementVM {
	name := page.String()
	return &ChannelManagementVM{
		Base:           newBase(d, name, page),
		Channels:       event.NewEmitter[ChannelList](name + ".Channels"),
		ChannelCreated: event.NewEmitter[string](name + ".ChannelCreated"),
		ChannelClosed:  event.NewEmitter[string](name + ".ChannelClosed"),
	}
}

func (vm *ChannelManagementVM) Activate() { vm.ListChannels() }

func (vm *ChannelManagementVM) Last() ChannelList { return vm.last }

func (vm *ChannelManagementVM) listFn() func(ctx context.Context) (ChannelList, er.R) {
	client := vm.d.Client
	c := vm.d.Cache
	return func(ctx context.Context) (ChannelList, er.R) {
		chans, err := client.ListChannels(ctx)
		if err != nil {
			return ChannelList{}, err
		}
		assets, err := client.ListAssets(ctx)
		if err != nil {
			return ChannelList{}, err
		}
		out := ChannelList{Channels: chans, Assets: assets}
		if c != nil {
			if err := c.Put(cache.Channels, "all", &out); err != nil {
				log.Warnf("Channel cache: %s", err.Message())
			}
		}
		return out, nil
	}
}

func (vm *ChannelManagementVM) listed(v interface{}) {
	vm.last = value[ChannelList](v)
	vm.Channels.Emit(vm.last)
}

// ListChannels shows the cached list at once, then the fresh one.
func (vm *ChannelManagementVM) ListChannels() er.R {
	if c := vm.d.Cache; c != nil && !vm.Busy() {
		var cached ChannelList
		if ok, err := c.Get(cache.Channels, "all", &cached); err == nil && ok {
			vm.last = cached
			vm.Channels.Emit(cached)
		}
	}
	return vm.run(task{op: "list_channels", policy: Coalesce, fn: ctxFn(vm.listFn()), done: vm.listed})
}

// AvailableChannels derives what the last list can pay with.
func (vm *ChannelManagementVM) AvailableChannels() Available {
	out := Available{Outbound: make(map[string]uint64)}
	for _, ch := range vm.last.Channels {
		if !ch.EligibleForPayment() {
			continue
		}
		out.Channels = append(out.Channels, ch)
		if ch.AssetID != "" {
			out.Outbound[ch.AssetID] = transfers.OffchainOutbound(vm.last.Channels, ch.AssetID)
		} else if ch.OutboundBalanceMsat > out.BitcoinSpendableMsat {
			out.BitcoinSpendableMsat = ch.OutboundBalanceMsat
		}
	}
	return out
}

func (vm *ChannelManagementVM) caps(op string) (model.NodeCapabilities, er.R) {
	caps, ok := vm.d.Node.Capabilities()
	if !ok {
		err := walleterr.NotReady.New("node capabilities are not known yet", nil)
		vm.Message.Emit(Message{Severity: nav.Warning, Text: walleterr.UserText(err), Code: walleterr.Code(err)})
		vm.d.Metrics.Operation(vm.name, op, "not_ready")
		return caps, err
	}
	return caps, nil
}

func (vm *ChannelManagementVM) assetFuture(assetID string) (uint64, bool) {
	for _, a := range vm.last.Assets {
		if a.AssetID == assetID {
			return a.OnchainBalanceFuture, true
		}
	}
	return 0, false
}

// ValidateRGB runs the RGB channel gates, Validation fires with the result
// even when it is empty so the view can clear its field errors.
func (vm *ChannelManagementVM) ValidateRGB(peer, assetID string, amt, capacitySat, pushMsat uint64) validate.FieldErrors {
	var fe validate.FieldErrors
	if caps, ok := vm.d.Node.Capabilities(); ok {
		future, known := vm.assetFuture(assetID)
		fe = validate.RGBChannel(caps, validate.ChannelInput{
			CapacitySat:        capacitySat,
			PushMsat:           pushMsat,
			AssetAmount:        amt,
			AssetBalanceFuture: future,
		})
		if !known {
			fe.Add(validate.FieldAssetID)
		}
	}
	if _, err := validate.ParseNodeURI(peer); err != nil {
		fe.Add(validate.FieldPeer)
	}
	vm.Validation.Emit(fe)
	return fe
}

func (vm *ChannelManagementVM) ValidateBTC(peer string, capacitySat, pushMsat uint64) validate.FieldErrors {
	var fe validate.FieldErrors
	if caps, ok := vm.d.Node.Capabilities(); ok {
		fe = validate.BTCChannel(caps, validate.ChannelInput{CapacitySat: capacitySat, PushMsat: pushMsat})
	}
	if _, err := validate.ParseNodeURI(peer); err != nil {
		fe.Add(validate.FieldPeer)
	}
	vm.Validation.Emit(fe)
	return fe
}

func (vm *ChannelManagementVM) open(req *nodeclient.OpenChannelRequest) er.R {
	if err := vm.requireReady("open_channel"); err != nil {
		return err
	}
	client := vm.d.Client
	return vm.run(task{
		op:     "open_channel",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (string, er.R) {
			return client.OpenChannel(ctx, req)
		}),
		done: func(v interface{}) {
			id := value[string](v)
			vm.success(vm.d.tr(i18n.ChannelCreated))
			vm.ChannelCreated.Emit(id)
		},
	})
}

func (vm *ChannelManagementVM) CreateRGBChannel(peer, assetID string, amt, capacitySat, pushMsat uint64) er.R {
	if _, err := vm.caps("open_channel"); err != nil {
		return err
	}
	if fe := vm.ValidateRGB(peer, assetID, amt, capacitySat, pushMsat); !fe.Empty() {
		vm.d.Metrics.Operation(vm.name, "open_channel", "invalid")
		return walleterr.InputInvalid.New(fe.String(), nil)
	}
	return vm.open(&nodeclient.OpenChannelRequest{
		PeerPubkeyAndOptAddr: peer,
		CapacitySat:          capacitySat,
		PushMsat:             pushMsat,
		AssetAmount:          util.Ptr(amt),
		AssetID:              util.Ptr(assetID),
		WithAnchors:          true,
	})
}

func (vm *ChannelManagementVM) CreateBTCChannel(peer string, capacitySat, pushMsat uint64) er.R {
	if _, err := vm.caps("open_channel"); err != nil {
		return err
	}
	if fe := vm.ValidateBTC(peer, capacitySat, pushMsat); !fe.Empty() {
		vm.d.Metrics.Operation(vm.name, "open_channel", "invalid")
		return walleterr.InputInvalid.New(fe.String(), nil)
	}
	return vm.open(&nodeclient.OpenChannelRequest{
		PeerPubkeyAndOptAddr: peer,
		CapacitySat:          capacitySat,
		PushMsat:             pushMsat,
		WithAnchors:          true,
	})
}

// CloseChannel closes a channel of the last list, force closes it
// unilaterally.
func (vm *ChannelManagementVM) CloseChannel(channelID string, force bool) er.R {
	var peer string
	for _, ch := range vm.last.Channels {
		if ch.ChannelID == channelID {
			peer = ch.PeerPubkey
		}
	}
	if peer == "" {
		return vm.invalid("close_channel", validate.NewFieldErrors(validate.FieldPeer))
	}
	client := vm.d.Client
	list := vm.listFn()
	req := &nodeclient.CloseChannelRequest{ChannelID: channelID, PeerPubkey: peer, Force: force}
	return vm.run(task{
		op:     "close_channel",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (ChannelList, er.R) {
			if err := client.CloseChannel(ctx, req); err != nil {
				return ChannelList{}, err
			}
			return list(ctx)
		}),
		done: func(v interface{}) {
			vm.success(vm.d.tr(i18n.ChannelClosed))
			vm.ChannelClosed.Emit(channelID)
			vm.listed(v)
		},
	})
}

func (vm *ChannelManagementVM) NewChannel() {
	vm.goTo(nav.To(nav.CreateChannel))
}

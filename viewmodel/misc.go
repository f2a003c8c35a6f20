package viewmodel

import (
	"context"
	"sort"

	"github.com/pkt-cash/iriswallet/cache"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/faucet"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodeclient"
	"github.com/pkt-cash/iriswallet/settings"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/validate"
	"github.com/pkt-cash/iriswallet/walleterr"
)

type BackupVM struct {
	Base

	BackupDone event.Emitter[string]
}

func NewBackup(d *Deps) *BackupVM {
	return &BackupVM{
		Base:       newBase(d, "backup", nav.Backup),
		BackupDone: event.NewEmitter[string]("backup.BackupDone"),
	}
}

// Configured is true once a backup has been taken.
func (vm *BackupVM) Configured() bool {
	return settings.GetOr(vm.d.Settings, settings.BackupConfigured, false)
}

// Backup writes an encrypted backup of the node to path.
func (vm *BackupVM) Backup(path, password string) er.R {
	var fe validate.FieldErrors
	if path == "" {
		fe.Add(validate.FieldPath)
	}
	if password == "" {
		fe.Add(validate.FieldPassword)
	}
	if !fe.Empty() {
		return vm.invalid("backup", fe)
	}
	client := vm.d.Client
	s := vm.d.Settings
	return vm.run(task{
		op:     "backup",
		policy: Reject,
		fn: errFn(func(ctx context.Context) er.R {
			if err := client.Backup(ctx, path, password); err != nil {
				return err
			}
			return settings.Set(s, settings.BackupConfigured, true)
		}),
		done: func(interface{}) {
			vm.success(vm.d.tr(i18n.BackupDone))
			vm.BackupDone.Emit(path)
		},
	})
}

type SwapVM struct {
	Base
}

func NewSwap(d *Deps) *SwapVM {
	return &SwapVM{Base: newBase(d, "swap", nav.Swap)}
}

func (vm *SwapVM) Activate() { vm.Load() }

func (vm *SwapVM) Load() {
	vm.info(vm.d.tr(i18n.SwapUnavailable))
}

type SettingsVM struct {
	Base

	Saved event.Emitter[string]
}

func NewSettings(d *Deps) *SettingsVM {
	return &SettingsVM{
		Base:  newBase(d, "settings", nav.Settings),
		Saved: event.NewEmitter[string]("settings.Saved"),
	}
}

func (vm *SettingsVM) FeeRate() uint64 {
	return settings.GetOr(vm.d.Settings, settings.FeeRate, DefaultFeeRate)
}

func (vm *SettingsVM) HiddenAssets() []string {
	return settings.GetOr(vm.d.Settings, settings.HiddenAssets, nil)
}

func (vm *SettingsVM) Endpoint() string {
	return settings.GetOr(vm.d.Settings, settings.LNEndpoint, "")
}

func (vm *SettingsVM) saved(op, name string) {
	vm.d.Metrics.Operation(vm.name, op, "ok")
	vm.success(vm.d.tr(i18n.SettingsSaved))
	vm.Saved.Emit(name)
}

func (vm *SettingsVM) SetFeeRate(rate uint64) er.R {
	if err := settings.Set(vm.d.Settings, settings.FeeRate, rate); err != nil {
		if walleterr.InputInvalid.Is(err) {
			return vm.invalid("set_fee_rate", validate.NewFieldErrors(validate.FieldFeeRate))
		}
		return vm.report("set_fee_rate", err)
	}
	vm.saved("set_fee_rate", settings.FeeRate.Name)
	return nil
}

// SetHiddenAssets replaces the hidden list, duplicates are dropped.
func (vm *SettingsVM) SetHiddenAssets(ids []string) er.R {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			set[id] = struct{}{}
		}
	}
	if err := settings.Set(vm.d.Settings, settings.HiddenAssets, util.SortedKeys(set)); err != nil {
		return vm.report("set_hidden_assets", err)
	}
	if vm.d.Cache != nil {
		if err := vm.d.Cache.Invalidate(cache.Assets); err != nil {
			log.Warnf("Asset cache: %s", err.Message())
		}
	}
	vm.saved("set_hidden_assets", settings.HiddenAssets.Name)
	return nil
}

// ChangeEndpoint stores a new remote node URL, the node manager picks it
// up on its next start.
func (vm *SettingsVM) ChangeEndpoint(url string) er.R {
	if err := validate.EndpointURL(url); err != nil {
		return vm.check("change_endpoint", err)
	}
	s := vm.d.Settings
	if err := settings.Set(s, settings.LNEndpoint, url); err != nil {
		return vm.report("change_endpoint", err)
	}
	if err := settings.Set(s, settings.LastLNEndpoint, url); err != nil {
		return vm.report("change_endpoint", err)
	}
	vm.saved("change_endpoint", settings.LNEndpoint.Name)
	return nil
}

// LockNode locks the wallet and goes to the password page.
func (vm *SettingsVM) LockNode() er.R {
	switch st := vm.d.Node.State(); st {
	case model.NodeReady, model.NodeSyncing:
	default:
		return vm.report("lock", walleterr.NotReady.New("can not lock a node which is "+st.String(), nil))
	}
	n := vm.d.Node
	return vm.run(task{
		op:     "lock",
		policy: Reject,
		fn:     errFn(func(ctx context.Context) er.R { return n.Lock() }),
		done: func(interface{}) {
			vm.info(vm.d.tr(i18n.NodeLocked))
			vm.goTo(nav.To(nav.EnterPassword))
		},
	})
}

// Faucet is one configured faucet and what it offers this wallet.
type Faucet struct {
	URL    string
	Name   string
	Groups map[string]faucet.Group
}

type FaucetVM struct {
	Base
	walletID string
	faucets  []Faucet

	Faucets  event.Emitter[[]Faucet]
	Received event.Emitter[faucet.Asset]
}

func NewFaucet(d *Deps) *FaucetVM {
	return &FaucetVM{
		Base:     newBase(d, "faucets", nav.Faucets),
		Faucets:  event.NewEmitter[[]Faucet]("faucets.Faucets"),
		Received: event.NewEmitter[faucet.Asset]("faucets.Received"),
	}
}

func (vm *FaucetVM) Activate() { vm.ListFaucets() }

type faucetList struct {
	walletID string
	faucets  []Faucet
}

// ListFaucets asks every configured faucet what it offers. A faucet which
// does not answer is left out, the list fails only when none answers.
func (vm *FaucetVM) ListFaucets() er.R {
	urls := settings.GetOr(vm.d.Settings, settings.FaucetURLs, nil)
	if len(urls) == 0 || vm.d.Faucet == nil {
		vm.info(vm.d.tr(i18n.NoFaucets))
		vm.Faucets.Emit(nil)
		return nil
	}
	client := vm.d.Client
	fc := vm.d.Faucet
	return vm.run(task{
		op:     "list_faucets",
		policy: Coalesce,
		fn: ctxFn(func(ctx context.Context) (faucetList, er.R) {
			ni, err := client.NodeInfo(ctx)
			if err != nil {
				return faucetList{}, err
			}
			out := faucetList{walletID: ni.Pubkey}
			var first er.R
			for _, u := range urls {
				cfg, err := fc.Config(ctx, u, ni.Pubkey)
				if err != nil {
					log.Infof("Faucet [%s]: %s", u, err.Message())
					if first == nil {
						first = err
					}
					continue
				}
				out.faucets = append(out.faucets, Faucet{URL: u, Name: cfg.Name, Groups: cfg.Groups})
			}
			if len(out.faucets) == 0 {
				return faucetList{}, first
			}
			sort.Slice(out.faucets, func(i, j int) bool { return out.faucets[i].Name < out.faucets[j].Name })
			return out, nil
		}),
		done: func(v interface{}) {
			l := value[faucetList](v)
			vm.walletID = l.walletID
			vm.faucets = l.faucets
			vm.Faucets.Emit(l.faucets)
		},
	})
}

// Request asks the faucet at url for an asset of group, paid to a fresh
// blinded invoice.
func (vm *FaucetVM) Request(url, group string) er.R {
	var known bool
	for _, f := range vm.faucets {
		if f.URL == url {
			_, known = f.Groups[group]
		}
	}
	if !known || vm.walletID == "" {
		return vm.invalid("request", validate.NewFieldErrors(validate.FieldURL))
	}
	client := vm.d.Client
	fc := vm.d.Faucet
	walletID := vm.walletID
	return vm.run(task{
		op:     "request",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (faucet.Asset, er.R) {
			inv, err := client.RgbInvoice(ctx, &nodeclient.RgbInvoiceRequest{MinConfirmations: 1})
			if err != nil {
				return faucet.Asset{}, err
			}
			resp, err := fc.Receive(ctx, url, &faucet.Request{WalletID: walletID, Invoice: inv.Invoice, AssetGroup: group})
			if err != nil {
				return faucet.Asset{}, err
			}
			return resp.Asset, nil
		}),
		done: func(v interface{}) {
			vm.success(vm.d.tr(i18n.FaucetRequested))
			vm.Received.Emit(value[faucet.Asset](v))
		},
	})
}

// Link is a labelled URL of the help page.
type Link struct {
	Label string
	URL   string
}

var helpLinks = []Link{
	{Label: "RGB protocol", URL: "https://rgb.tech"},
	{Label: "RGB Lightning Node", URL: "https://github.com/RGB-Tools/rgb-lightning-node"},
	{Label: "Report a bug", URL: DefaultReportBugURL},
}

type HelpVM struct {
	Base
}

func NewHelp(d *Deps) *HelpVM {
	return &HelpVM{Base: newBase(d, "help", nav.Help)}
}

func (vm *HelpVM) Links() []Link {
	out := make([]Link, len(helpLinks))
	copy(out, helpLinks)
	return out
}

// About is what the about page shows.
type About struct {
	Version string
	Pubkey  string
	Network model.Network
	Kind    model.WalletKind
}

type AboutVM struct {
	Base

	Loaded event.Emitter[About]
}

func NewAbout(d *Deps) *AboutVM {
	return &AboutVM{
		Base:   newBase(d, "about", nav.About),
		Loaded: event.NewEmitter[About]("about.Loaded"),
	}
}

func (vm *AboutVM) Activate() { vm.Load() }

func (vm *AboutVM) Load() er.R {
	a := About{Version: vm.d.Version, Network: vm.d.Network(), Kind: vm.d.Node.Kind()}
	if !vm.d.Node.State().Reachable() {
		vm.Loaded.Emit(a)
		return nil
	}
	client := vm.d.Client
	return vm.run(task{
		op:     "load",
		policy: Coalesce,
		fn: ctxFn(func(ctx context.Context) (About, er.R) {
			ni, err := client.NodeInfo(ctx)
			if err != nil {
				return a, err
			}
			a.Pubkey = ni.Pubkey
			return a, nil
		}),
		done: func(v interface{}) { vm.Loaded.Emit(value[About](v)) },
	})
}

type SuccessVM struct {
	Base
	params nav.SuccessParams
}

func NewSuccess(d *Deps, p nav.SuccessParams) *SuccessVM {
	return &SuccessVM{Base: newBase(d, "success", nav.Success), params: p}
}

func (vm *SuccessVM) Params() nav.SuccessParams { return vm.params }

// Done leaves the page for wherever the operation which opened it asked.
func (vm *SuccessVM) Done() {
	if vm.params.OnDone != nil {
		vm.goTo(vm.params.OnDone)
		return
	}
	vm.goTo(nav.To(nav.Fungibles))
}

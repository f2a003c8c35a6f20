package viewmodel

import (
	"context"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/event"
	"github.com/pkt-cash/iriswallet/i18n"
	"github.com/pkt-cash/iriswallet/irislog/log"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/nodemgr"
	"github.com/pkt-cash/iriswallet/settings"
	"github.com/pkt-cash/iriswallet/validate"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/pkt-cash/iriswallet/workerpool"
)

// NodeStatus is the node state a start attempt ended in.
type NodeStatus struct {
	State model.NodeState
	Fresh bool
}

// Landing is the page a node in st leads to, nil when there is nowhere to
// go yet.
func Landing(st NodeStatus) nav.Intent {
	switch {
	case st.State == model.NodeReady && st.Fresh:
		return nav.To(nav.SetPassword)
	case st.State == model.NodeLocked:
		return nav.To(nav.EnterPassword)
	case st.State == model.NodeSyncing || st.State == model.NodeReady:
		return nav.To(nav.Fungibles)
	}
	return nil
}

// startNode configures and starts the node unless it already runs.
func startNode(n Node, t nodemgr.Target) workerpool.Func {
	return func(ctx context.Context) (interface{}, er.R) {
		switch n.State() {
		case model.NodeStopped, model.NodeError:
			if err := n.Configure(t); err != nil {
				return nil, err
			}
			if err := n.Start(); err != nil {
				return nil, err
			}
		default:
			log.Debugf("Node already %s, not starting it", n.State())
		}
		return NodeStatus{State: n.State(), Fresh: n.Fresh()}, nil
	}
}

func (b *Base) land(v interface{}) {
	st := value[NodeStatus](v)
	if i := Landing(st); i != nil {
		b.goTo(i)
		return
	}
	b.warn(b.d.tr(i18n.NodeNotRunning))
}

// report handles an error which happened before any task was submitted.
func (b *Base) report(op string, err er.R) er.R {
	b.d.Metrics.Operation(b.name, op, "error")
	for _, i := range b.fail(err) {
		b.goTo(i)
	}
	return err
}

type SplashVM struct {
	Base
}

func NewSplash(d *Deps) *SplashVM {
	return &SplashVM{Base: newBase(d, "splash", nav.Splash)}
}

func (vm *SplashVM) Activate() { vm.Boot() }

// Boot decides where the wallet starts: onboarding when nothing is set up,
// otherwise the page the node lifecycle leads to.
func (vm *SplashVM) Boot() er.R {
	s := vm.d.Settings
	kind, ok, err := settings.Get(s, settings.WalletKind)
	if err != nil {
		return vm.report("boot", err)
	}
	if !ok || !settings.GetOr(s, settings.TermsAccepted, false) {
		vm.goTo(nav.To(nav.Welcome))
		return nil
	}
	t := nodemgr.Target{
		Kind:      kind,
		Network:   vm.d.Network(),
		RemoteURL: settings.GetOr(s, settings.LNEndpoint, ""),
	}
	return vm.run(task{
		op:     "boot",
		policy: Reject,
		fn:     startNode(vm.d.Node, t),
		done:   vm.land,
	})
}

type WelcomeVM struct {
	Base
}

func NewWelcome(d *Deps) *WelcomeVM {
	return &WelcomeVM{Base: newBase(d, "welcome", nav.Welcome)}
}

// CreateWallet leads to set_password, through the onboarding pages which
// have not been completed yet.
func (vm *WelcomeVM) CreateWallet() {
	s := vm.d.Settings
	switch {
	case !settings.GetOr(s, settings.TermsAccepted, false):
		vm.goTo(nav.To(nav.Terms))
	case settings.GetOr(s, settings.WalletKind, "") == "":
		vm.goTo(nav.To(nav.WalletSelection))
	case vm.d.Node.State() == model.NodeReady && vm.d.Node.Fresh():
		vm.goTo(nav.To(nav.SetPassword))
	default:
		vm.goTo(nav.To(nav.Splash))
	}
}

func (vm *WelcomeVM) RestoreWallet() {
	vm.info(vm.d.tr(i18n.RestoreUnavailable))
}

type TermsVM struct {
	Base
}

func NewTerms(d *Deps) *TermsVM {
	return &TermsVM{Base: newBase(d, "terms", nav.Terms)}
}

func (vm *TermsVM) Accept() er.R {
	if err := settings.Set(vm.d.Settings, settings.TermsAccepted, true); err != nil {
		return vm.report("accept", err)
	}
	vm.goTo(nav.To(nav.WalletSelection))
	return nil
}

func (vm *TermsVM) Decline() {
	vm.warn(vm.d.tr(i18n.TermsDeclined))
}

type WalletSelectionVM struct {
	Base
}

func NewWalletSelection(d *Deps) *WalletSelectionVM {
	return &WalletSelectionVM{Base: newBase(d, "wallet_selection", nav.WalletSelection)}
}

func (vm *WalletSelectionVM) Select(kind model.WalletKind) er.R {
	if !kind.Valid() {
		return vm.invalid("select", validate.NewFieldErrors(validate.FieldName))
	}
	if err := settings.Set(vm.d.Settings, settings.WalletKind, kind); err != nil {
		return vm.report("select", err)
	}
	if kind == model.Remote {
		vm.goTo(nav.ToWalletConnection(nav.WalletConnectionParams{Kind: kind, Origin: nav.WalletSelection}))
	} else {
		vm.goTo(nav.To(nav.NetworkSelection))
	}
	return nil
}

type NetworkSelectionVM struct {
	Base
}

func NewNetworkSelection(d *Deps) *NetworkSelectionVM {
	return &NetworkSelectionVM{Base: newBase(d, "network_selection", nav.NetworkSelection)}
}

// Select persists the network and starts an embedded node on it.
func (vm *NetworkSelectionVM) Select(network model.Network) er.R {
	if _, err := model.ParseNetwork(string(network)); err != nil {
		return vm.check("select", err)
	}
	if err := settings.Set(vm.d.Settings, settings.NetworkKey, network); err != nil {
		return vm.report("select", err)
	}
	return vm.run(task{
		op:     "start",
		policy: Reject,
		fn:     startNode(vm.d.Node, nodemgr.Target{Kind: model.Embedded, Network: network}),
		done:   vm.land,
	})
}

type LNEndpointVM struct {
	Base
	params nav.WalletConnectionParams
}

func NewLNEndpoint(d *Deps, p nav.WalletConnectionParams) *LNEndpointVM {
	return &LNEndpointVM{Base: newBase(d, "ln_endpoint", nav.LNEndpoint), params: p}
}

// LastEndpoint is the endpoint connected to before, to prefill the form.
func (vm *LNEndpointVM) LastEndpoint() string {
	return settings.GetOr(vm.d.Settings, settings.LastLNEndpoint, "")
}

// Validate checks url, Validation fires with the failed fields, empty
// when the url is fine.
func (vm *LNEndpointVM) Validate(url string) bool {
	err := validate.EndpointURL(url)
	vm.Validation.Emit(validate.ErrorsOf(err))
	return err == nil
}

// Connect starts the node manager against a remote node.
func (vm *LNEndpointVM) Connect(url string) er.R {
	if err := validate.EndpointURL(url); err != nil {
		return vm.check("connect", err)
	}
	s := vm.d.Settings
	if err := settings.Set(s, settings.LNEndpoint, url); err != nil {
		return vm.report("connect", err)
	}
	if err := settings.Set(s, settings.LastLNEndpoint, url); err != nil {
		return vm.report("connect", err)
	}
	t := nodemgr.Target{Kind: model.Remote, Network: vm.d.Network(), RemoteURL: url}
	return vm.run(task{
		op:     "connect",
		policy: Reject,
		fn:     startNode(vm.d.Node, t),
		done:   vm.land,
	})
}

func (vm *LNEndpointVM) Back() {
	origin := vm.params.Origin
	if !origin.Valid() {
		origin = nav.WalletSelection
	}
	vm.goTo(nav.To(origin))
}

type SetPasswordVM struct {
	Base
	Mnemonic event.Emitter[string]
}

func NewSetPassword(d *Deps) *SetPasswordVM {
	return &SetPasswordVM{
		Base:     newBase(d, "set_password", nav.SetPassword),
		Mnemonic: event.NewEmitter[string]("set_password.Mnemonic"),
	}
}

// SetPassword creates the wallet and unlocks it, Mnemonic fires with the
// recovery words.
func (vm *SetPasswordVM) SetPassword(pw, confirm string) er.R {
	if fe := validate.Password(pw, confirm); !fe.Empty() {
		return vm.invalid("set_password", fe)
	}
	n := vm.d.Node
	return vm.run(task{
		op:     "set_password",
		policy: Reject,
		fn: ctxFn(func(ctx context.Context) (string, er.R) {
			mnemonic, err := n.Initialize(pw)
			if err != nil {
				return "", err
			}
			if err := n.Unlock(pw); err != nil {
				return "", err
			}
			return mnemonic, nil
		}),
		done: func(v interface{}) {
			vm.success(vm.d.tr(i18n.WalletCreated))
			vm.Mnemonic.Emit(value[string](v))
		},
	})
}

// Continue leaves the page once the mnemonic has been written down.
func (vm *SetPasswordVM) Continue() {
	vm.goTo(nav.To(nav.Fungibles))
}

type EnterPasswordVM struct {
	Base
}

func NewEnterPassword(d *Deps) *EnterPasswordVM {
	return &EnterPasswordVM{Base: newBase(d, "enter_password", nav.EnterPassword)}
}

func (vm *EnterPasswordVM) SetWalletPassword(pw string) er.R {
	if pw == "" {
		return vm.invalid("unlock", validate.NewFieldErrors(validate.FieldPassword))
	}
	if st := vm.d.Node.State(); st != model.NodeLocked {
		return vm.report("unlock", walleterr.NotReady.New("wallet is not locked, node is "+st.String(), nil))
	}
	n := vm.d.Node
	return vm.run(task{
		op:     "unlock",
		policy: Reject,
		fn:     errFn(func(ctx context.Context) er.R { return n.Unlock(pw) }),
		done: func(interface{}) {
			vm.goTo(nav.To(nav.Fungibles))
		},
	})
}

package term

import (
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkt-cash/iriswallet/amount"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/viewmodel"
)

var Err = er.NewErrorType("iris.term")

var ErrArgs = Err.CodeWithDetail("ErrArgs", "bad command argument")

// Pages reachable from the menu, the others are opened from a page.
var sidebarPages = []nav.Page{
	nav.Fungibles, nav.Collectibles, nav.Bitcoin, nav.Channels, nav.ViewUnspents,
	nav.IssueRGB20, nav.IssueRGB25, nav.Faucets, nav.Backup, nav.Swap,
	nav.Settings, nav.Help, nav.About,
}

type command struct {
	name    string
	usage   string
	desc    string
	minArgs int
	// secrets are read without echo and appended to the arguments.
	secrets []string
	run     func(s *Shell, args []string) er.R
}

func uintArg(args []string, i int, field string, def uint64) (uint64, er.R) {
	if i >= len(args) {
		return def, nil
	}
	v, errr := strconv.ParseUint(args[i], 10, 64)
	if errr != nil {
		return 0, ErrArgs.New(field+": not a number ["+args[i]+"]", nil)
	}
	return v, nil
}

func (s *Shell) commands() []command {
	out := []command{
		{name: "help", desc: "List the commands of this page", run: func(s *Shell, _ []string) er.R {
			s.write(func(w io.Writer) { renderHelp(w, s.commands()) })
			return nil
		}},
		{name: "go", usage: "<page>", minArgs: 1, desc: "Open a page of the menu", run: func(s *Shell, args []string) er.R {
			p, ok := nav.ParsePage(args[0])
			if !ok || !inMenu(p) {
				return ErrArgs.New("page: not in the menu ["+args[0]+"]", nil)
			}
			if !s.current().SidebarVisible {
				return ErrArgs.New("page: the menu is not available here", nil)
			}
			s.cfg.Bus.Emit(nav.To(p))
			return nil
		}},
		{name: "ok", desc: "Close the error dialog", run: func(s *Shell, _ []string) er.R {
			if !s.dismiss() {
				return ErrArgs.New("no dialog is open", nil)
			}
			return nil
		}},
		{name: "exit", desc: "Leave the wallet"},
	}
	if v, ok := s.current().View.(*viewmodel.View); ok {
		out = append(out, pageCommands(v.VM)...)
	}
	return out
}

func inMenu(p nav.Page) bool {
	for _, m := range sidebarPages {
		if m == p {
			return true
		}
	}
	return false
}

func renderHelp(w io.Writer, cmds []command) {
	t := newTable(w, table.Row{"Command", "", ""})
	for _, c := range cmds {
		t.AppendRow(table.Row{c.name, c.usage, c.desc})
	}
	t.Render()
}

func simple(name, desc string, f func()) command {
	return command{name: name, desc: desc, run: func(*Shell, []string) er.R { f(); return nil }}
}

func op(name, desc string, f func() er.R) command {
	return command{name: name, desc: desc, run: func(*Shell, []string) er.R { return f() }}
}

func refresh(f func(hard bool) er.R) command {
	return command{name: "refresh", usage: "[hard]", desc: "Reload, hard also refreshes transfers", run: func(_ *Shell, args []string) er.R {
		return f(len(args) > 0 && args[0] == "hard")
	}}
}

// pageCommands are the user actions of one view-model.
func pageCommands(vm viewmodel.VM) []command {
	switch vm := vm.(type) {
	case *viewmodel.SplashVM:
		return []command{op("boot", "Start over", vm.Boot)}
	case *viewmodel.WelcomeVM:
		return []command{
			simple("create", "Create a new wallet", vm.CreateWallet),
			simple("restore", "Restore a wallet from a backup", vm.RestoreWallet),
		}
	case *viewmodel.TermsVM:
		return []command{op("accept", "Accept the terms", vm.Accept), simple("decline", "Decline the terms", vm.Decline)}
	case *viewmodel.WalletSelectionVM:
		return []command{{name: "select", usage: "<embedded|remote>", minArgs: 1, desc: "Choose where the node runs",
			run: func(_ *Shell, args []string) er.R { return vm.Select(model.WalletKind(args[0])) }}}
	case *viewmodel.NetworkSelectionVM:
		return []command{{name: "select", usage: "<mainnet|testnet|regtest>", minArgs: 1, desc: "Choose the network",
			run: func(_ *Shell, args []string) er.R {
				n, err := model.ParseNetwork(args[0])
				if err != nil {
					return ErrArgs.New("network: "+err.Message(), nil)
				}
				return vm.Select(n)
			}}}
	case *viewmodel.LNEndpointVM:
		return []command{
			{name: "connect", usage: "<url>", minArgs: 1, desc: "Connect to a remote node",
				run: func(_ *Shell, args []string) er.R { return vm.Connect(args[0]) }},
			simple("back", "Choose another wallet kind", vm.Back),
		}
	case *viewmodel.SetPasswordVM:
		return []command{
			{name: "password", desc: "Set the wallet password", secrets: []string{"Password", "Confirm password"},
				run: func(_ *Shell, args []string) er.R { return vm.SetPassword(args[0], args[1]) }},
			simple("continue", "Open the wallet", vm.Continue),
		}
	case *viewmodel.EnterPasswordVM:
		return []command{{name: "unlock", desc: "Unlock the wallet", secrets: []string{"Password"},
			run: func(_ *Shell, args []string) er.R { return vm.SetWalletPassword(args[0]) }}}
	case *viewmodel.AssetsVM:
		return []command{
			refresh(vm.GetAssets),
			{name: "open", usage: "<asset_id>", minArgs: 1, desc: "Show an asset",
				run: func(_ *Shell, args []string) er.R { vm.Open(args[0]); return nil }},
			{name: "hide", usage: "<asset_id>", minArgs: 1, desc: "Hide an asset from the list",
				run: func(_ *Shell, args []string) er.R { return vm.Hide(args[0]) }},
		}
	case *viewmodel.BitcoinVM:
		return []command{
			refresh(func(hard bool) er.R {
				if hard {
					return vm.OnHardRefresh()
				}
				return vm.GetTransactions()
			}),
			{name: "open", usage: "<id>", minArgs: 1, desc: "Show a transaction",
				run: func(_ *Shell, args []string) er.R { vm.Open(args[0]); return nil }},
		}
	case *viewmodel.RGBDetailVM:
		return rgbDetailCommands(vm)
	case *viewmodel.SendRGBVM:
		return []command{{name: "send", usage: "<invoice> <amount> [fee_rate] [endpoint...]", minArgs: 2,
			desc: "Send the asset", run: func(_ *Shell, args []string) er.R {
				amt, err := amount.ParseAsset(args[1], vm.Params().Precision)
				if err != nil {
					return ErrArgs.New("amount: "+err.Message(), nil)
				}
				fee, err := uintArg(args, 2, "fee_rate", viewmodel.DefaultFeeRate)
				if err != nil {
					return err
				}
				var endpoints []string
				if len(args) > 3 {
					endpoints = args[3:]
				}
				return vm.Send(args[0], amt, fee, endpoints)
			}}}
	case *viewmodel.ReceiveRGBVM:
		return []command{
			{name: "invoice", usage: "[min_confirmations] [duration_sec]", desc: "Create an RGB invoice",
				run: func(_ *Shell, args []string) er.R {
					conf, err := uintArg(args, 0, "min_confirmations", 1)
					if err != nil {
						return err
					}
					dur, err := uintArg(args, 1, "duration_sec", 0)
					if err != nil {
						return err
					}
					return vm.Generate(vm.Params().AssetID, uint8(conf), uint32(dur))
				}},
			simple("back", "Leave the page", vm.Back),
		}
	case *viewmodel.SendBitcoinVM:
		return []command{
			op("fee", "Estimate the fee rate", vm.EstimateFee),
			{name: "send", usage: "<address> <sats> [fee_rate]", minArgs: 2, desc: "Send bitcoin",
				run: func(_ *Shell, args []string) er.R {
					sats, err := uintArg(args, 1, "amount", 0)
					if err != nil {
						return err
					}
					fee, err := uintArg(args, 2, "fee_rate", vm.FeeRate())
					if err != nil {
						return err
					}
					return vm.Send(args[0], sats, fee)
				}},
		}
	case *viewmodel.ReceiveBitcoinVM:
		return []command{op("address", "Show a new address", vm.GetAddress)}
	case *viewmodel.IssueRGB20VM:
		return []command{{name: "issue", usage: "<ticker> <name> <supply> [precision]", minArgs: 3,
			desc: "Issue a fungible asset", run: func(_ *Shell, args []string) er.R {
				supply, err := uintArg(args, 2, "amount", 0)
				if err != nil {
					return err
				}
				prec, err := uintArg(args, 3, "precision", 0)
				if err != nil {
					return err
				}
				return vm.Issue(args[0], args[1], supply, int(prec))
			}}}
	case *viewmodel.IssueRGB25VM:
		return []command{{name: "issue", usage: "<name> <supply> <file> [description...]", minArgs: 3,
			desc: "Issue a collectible", run: func(_ *Shell, args []string) er.R {
				supply, err := uintArg(args, 1, "amount", 0)
				if err != nil {
					return err
				}
				return vm.Issue(args[0], supply, strings.Join(args[3:], " "), args[2])
			}}}
	case *viewmodel.ChannelManagementVM:
		return channelCommands(vm)
	case *viewmodel.UnspentsVM:
		return []command{
			op("refresh", "Reload the UTXOs", vm.ListUnspents),
			{name: "create", usage: "[num] [size_sat]", desc: "Create colorable UTXOs",
				run: func(_ *Shell, args []string) er.R {
					num, err := uintArg(args, 0, "amount", 0)
					if err != nil {
						return err
					}
					size, err := uintArg(args, 1, "amount", 0)
					if err != nil {
						return err
					}
					if num > 255 {
						return ErrArgs.New("amount: at most 255 UTXOs at once", nil)
					}
					return vm.CreateUtxos(uint8(num), uint32(size))
				}},
		}
	case *viewmodel.TxDetailVM:
		return []command{op("fail", "Mark the pending transfer as failed", vm.Fail), simple("back", "Back to the list", vm.Back)}
	case *viewmodel.CreateLNInvoiceVM:
		return []command{{name: "create", usage: "<amount_msat> [asset_amount] [expiry_sec]", minArgs: 1,
			desc: "Create a lightning invoice", run: func(_ *Shell, args []string) er.R {
				msat, err := uintArg(args, 0, "amount", 0)
				if err != nil {
					return err
				}
				assetAmt, err := uintArg(args, 1, "asset_amount", 0)
				if err != nil {
					return err
				}
				exp, err := uintArg(args, 2, "expiry", viewmodel.DefaultInvoiceExpiry)
				if err != nil {
					return err
				}
				return vm.Create(msat, assetAmt, uint32(exp))
			}}}
	case *viewmodel.LNOffchainVM:
		return []command{
			{name: "decode", usage: "<invoice>", minArgs: 1, desc: "Check an invoice",
				run: func(_ *Shell, args []string) er.R { return vm.DecodeInvoice(args[0]) }},
			{name: "pay", usage: "[invoice]", desc: "Pay the decoded invoice",
				run: func(_ *Shell, args []string) er.R {
					inv := ""
					if len(args) > 0 {
						inv = args[0]
					}
					return vm.SendAssetOffchain(inv)
				}},
		}
	case *viewmodel.BackupVM:
		return []command{{name: "backup", usage: "<path>", minArgs: 1, desc: "Write an encrypted backup",
			secrets: []string{"Backup password"},
			run:     func(_ *Shell, args []string) er.R { return vm.Backup(args[0], args[1]) }}}
	case *viewmodel.SettingsVM:
		return settingsCommands(vm)
	case *viewmodel.FaucetVM:
		return []command{
			op("refresh", "Ask the faucets again", vm.ListFaucets),
			{name: "request", usage: "<url> <group>", minArgs: 2, desc: "Request an asset",
				run: func(_ *Shell, args []string) er.R { return vm.Request(args[0], args[1]) }},
		}
	case *viewmodel.AboutVM:
		return []command{op("refresh", "Reload", vm.Load)}
	case *viewmodel.SuccessVM:
		return []command{simple("done", "Continue", vm.Done)}
	}
	return nil
}

func rgbDetailCommands(vm *viewmodel.RGBDetailVM) []command {
	idx := func(args []string) (int, er.R) {
		i, err := strconv.Atoi(args[0])
		if err != nil || i < 0 {
			return 0, ErrArgs.New("index: not a row ["+args[0]+"]", nil)
		}
		return i, nil
	}
	return []command{
		op("refresh", "Reload the asset", func() er.R { return vm.LoadForAsset(vm.Params().AssetID) }),
		{name: "open", usage: "<row>", minArgs: 1, desc: "Show a transfer", run: func(_ *Shell, args []string) er.R {
			i, err := idx(args)
			if err != nil {
				return err
			}
			vm.Open(i)
			return nil
		}},
		{name: "fail", usage: "<row>", minArgs: 1, desc: "Fail a pending transfer", run: func(_ *Shell, args []string) er.R {
			i, err := idx(args)
			if err != nil {
				return err
			}
			return vm.OnFailTransfer(i)
		}},
		simple("send", "Send the asset", vm.Send),
		simple("receive", "Receive the asset", vm.Receive),
	}
}

func channelCommands(vm *viewmodel.ChannelManagementVM) []command {
	return []command{
		op("refresh", "Reload the channels", vm.ListChannels),
		simple("new", "Open the create channel page", vm.NewChannel),
		{name: "close", usage: "<channel_id> [force]", minArgs: 1, desc: "Close a channel",
			run: func(_ *Shell, args []string) er.R {
				return vm.CloseChannel(args[0], len(args) > 1 && args[1] == "force")
			}},
		{name: "open-rgb", usage: "<peer> <asset_id> <amount> <capacity_sat> [push_msat]", minArgs: 4,
			desc: "Open an RGB channel", run: func(_ *Shell, args []string) er.R {
				amt, err := uintArg(args, 2, "asset_amount", 0)
				if err != nil {
					return err
				}
				capSat, err := uintArg(args, 3, "capacity", 0)
				if err != nil {
					return err
				}
				push, err := uintArg(args, 4, "push_msat", 0)
				if err != nil {
					return err
				}
				return vm.CreateRGBChannel(args[0], args[1], amt, capSat, push)
			}},
		{name: "open-btc", usage: "<peer> <capacity_sat> [push_msat]", minArgs: 2,
			desc: "Open a bitcoin channel", run: func(_ *Shell, args []string) er.R {
				capSat, err := uintArg(args, 1, "capacity", 0)
				if err != nil {
					return err
				}
				push, err := uintArg(args, 2, "push_msat", 0)
				if err != nil {
					return err
				}
				return vm.CreateBTCChannel(args[0], capSat, push)
			}},
	}
}

func settingsCommands(vm *viewmodel.SettingsVM) []command {
	return []command{
		{name: "fee", usage: "<sat_per_vbyte>", minArgs: 1, desc: "Set the default fee rate",
			run: func(_ *Shell, args []string) er.R {
				rate, err := uintArg(args, 0, "fee_rate", 0)
				if err != nil {
					return err
				}
				return vm.SetFeeRate(rate)
			}},
		{name: "hide", usage: "<asset_id...>", desc: "Replace the hidden assets",
			run: func(_ *Shell, args []string) er.R { return vm.SetHiddenAssets(args) }},
		{name: "endpoint", usage: "<url>", minArgs: 1, desc: "Change the remote node URL",
			run: func(_ *Shell, args []string) er.R { return vm.ChangeEndpoint(args[0]) }},
		op("lock", "Lock the wallet", vm.LockNode),
	}
}

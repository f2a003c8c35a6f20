package app

import (
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/nav"
	"github.com/pkt-cash/iriswallet/viewmodel"
)

var Err = er.NewErrorType("iris.app")

var ErrParams = Err.CodeWithDetail("ErrParams", "page needs parameters")

func plain(p nav.Page, f func() viewmodel.VM) nav.Factory {
	return func(nav.Params) (nav.View, er.R) {
		return viewmodel.NewView(p, f()), nil
	}
}

// with builds a page from its parameter bundle, a page opened without one
// gets the zero bundle only if optional is set.
func with[P nav.Params](p nav.Page, optional bool, f func(P) viewmodel.VM) nav.Factory {
	return func(params nav.Params) (nav.View, er.R) {
		var zero P
		if params == nil {
			if !optional {
				return nil, ErrParams.New(p.String(), nil)
			}
			return viewmodel.NewView(p, f(zero)), nil
		}
		v, ok := params.(P)
		if !ok {
			return nil, ErrParams.New(p.String(), nil)
		}
		return viewmodel.NewView(p, f(v)), nil
	}
}

// Pages is the constructor of every page.
func Pages(d *viewmodel.Deps) map[nav.Page]nav.Factory {
	txDetail := func(p nav.TxDetailParams) viewmodel.VM { return viewmodel.NewTxDetail(d, p) }
	return map[nav.Page]nav.Factory{
		nav.Splash:           plain(nav.Splash, func() viewmodel.VM { return viewmodel.NewSplash(d) }),
		nav.Welcome:          plain(nav.Welcome, func() viewmodel.VM { return viewmodel.NewWelcome(d) }),
		nav.Terms:            plain(nav.Terms, func() viewmodel.VM { return viewmodel.NewTerms(d) }),
		nav.WalletSelection:  plain(nav.WalletSelection, func() viewmodel.VM { return viewmodel.NewWalletSelection(d) }),
		nav.NetworkSelection: plain(nav.NetworkSelection, func() viewmodel.VM { return viewmodel.NewNetworkSelection(d) }),
		nav.LNEndpoint: with(nav.LNEndpoint, true, func(p nav.WalletConnectionParams) viewmodel.VM {
			return viewmodel.NewLNEndpoint(d, p)
		}),
		nav.SetPassword:   plain(nav.SetPassword, func() viewmodel.VM { return viewmodel.NewSetPassword(d) }),
		nav.EnterPassword: plain(nav.EnterPassword, func() viewmodel.VM { return viewmodel.NewEnterPassword(d) }),
		nav.Fungibles:     plain(nav.Fungibles, func() viewmodel.VM { return viewmodel.NewAssets(d, model.RGB20) }),
		nav.Collectibles:  plain(nav.Collectibles, func() viewmodel.VM { return viewmodel.NewAssets(d, model.RGB25) }),
		nav.RGBDetail: with(nav.RGBDetail, false, func(p nav.RGBDetailParams) viewmodel.VM {
			return viewmodel.NewRGBDetail(d, p)
		}),
		nav.Bitcoin: plain(nav.Bitcoin, func() viewmodel.VM { return viewmodel.NewBitcoin(d) }),
		nav.SendRGB: with(nav.SendRGB, false, func(p nav.SendRGBParams) viewmodel.VM {
			return viewmodel.NewSendRGB(d, p)
		}),
		nav.ReceiveRGB: with(nav.ReceiveRGB, false, func(p nav.ReceiveRGBParams) viewmodel.VM {
			return viewmodel.NewReceiveRGB(d, p)
		}),
		nav.SendBitcoin:    plain(nav.SendBitcoin, func() viewmodel.VM { return viewmodel.NewSendBitcoin(d) }),
		nav.ReceiveBitcoin: plain(nav.ReceiveBitcoin, func() viewmodel.VM { return viewmodel.NewReceiveBitcoin(d) }),
		nav.IssueRGB20:     plain(nav.IssueRGB20, func() viewmodel.VM { return viewmodel.NewIssueRGB20(d) }),
		nav.IssueRGB25:     plain(nav.IssueRGB25, func() viewmodel.VM { return viewmodel.NewIssueRGB25(d) }),
		nav.Channels: plain(nav.Channels, func() viewmodel.VM {
			return viewmodel.NewChannelManagement(d, nav.Channels)
		}),
		nav.CreateChannel: plain(nav.CreateChannel, func() viewmodel.VM {
			return viewmodel.NewChannelManagement(d, nav.CreateChannel)
		}),
		nav.ViewUnspents: plain(nav.ViewUnspents, func() viewmodel.VM { return viewmodel.NewUnspents(d) }),
		nav.RGBTxDetail:  with(nav.RGBTxDetail, false, txDetail),
		nav.BTCTxDetail:  with(nav.BTCTxDetail, false, txDetail),
		nav.CreateLNInvoice: with(nav.CreateLNInvoice, true, func(p nav.CreateLNInvoiceParams) viewmodel.VM {
			return viewmodel.NewCreateLNInvoice(d, p)
		}),
		nav.SendLNInvoice: with(nav.SendLNInvoice, true, func(p nav.SendLNInvoiceParams) viewmodel.VM {
			return viewmodel.NewLNOffchain(d, p)
		}),
		nav.Backup:   plain(nav.Backup, func() viewmodel.VM { return viewmodel.NewBackup(d) }),
		nav.Swap:     plain(nav.Swap, func() viewmodel.VM { return viewmodel.NewSwap(d) }),
		nav.Settings: plain(nav.Settings, func() viewmodel.VM { return viewmodel.NewSettings(d) }),
		nav.Faucets:  plain(nav.Faucets, func() viewmodel.VM { return viewmodel.NewFaucet(d) }),
		nav.Help:     plain(nav.Help, func() viewmodel.VM { return viewmodel.NewHelp(d) }),
		nav.About:    plain(nav.About, func() viewmodel.VM { return viewmodel.NewAbout(d) }),
		nav.Success: with(nav.Success, true, func(p nav.SuccessParams) viewmodel.VM {
			return viewmodel.NewSuccess(d, p)
		}),
	}
}

// RegisterPages fills the constructor table of c, every page of nav.Pages
// gets one.
func RegisterPages(c *nav.Controller, d *viewmodel.Deps) er.R {
	pages := Pages(d)
	for _, p := range nav.Pages() {
		f, ok := pages[p]
		if !ok {
			return nav.ErrNotRegistered.New(p.String(), nil)
		}
		if err := c.Register(p, f); err != nil {
			return err
		}
	}
	return nil
}

package nav

// Page is one screen of the wallet. The set is closed, every page has a
// stable tag used in logs and intents.
type Page int

const (
	PageNone Page = iota
	Welcome
	Terms
	WalletSelection
	NetworkSelection
	LNEndpoint
	SetPassword
	EnterPassword
	Fungibles
	Collectibles
	RGBDetail
	Bitcoin
	SendRGB
	ReceiveRGB
	SendBitcoin
	ReceiveBitcoin
	IssueRGB20
	IssueRGB25
	Channels
	CreateChannel
	ViewUnspents
	RGBTxDetail
	BTCTxDetail
	CreateLNInvoice
	SendLNInvoice
	Backup
	Swap
	Settings
	Faucets
	Help
	About
	Splash
	Success
	pageEnd
)

var pageTags = [...]string{
	PageNone:         "",
	Welcome:          "welcome",
	Terms:            "terms",
	WalletSelection:  "wallet_selection",
	NetworkSelection: "network_selection",
	LNEndpoint:       "ln_endpoint",
	SetPassword:      "set_password",
	EnterPassword:    "enter_password",
	Fungibles:        "fungibles",
	Collectibles:     "collectibles",
	RGBDetail:        "rgb_detail",
	Bitcoin:          "bitcoin",
	SendRGB:          "send_rgb",
	ReceiveRGB:       "receive_rgb",
	SendBitcoin:      "send_bitcoin",
	ReceiveBitcoin:   "receive_bitcoin",
	IssueRGB20:       "issue_rgb20",
	IssueRGB25:       "issue_rgb25",
	Channels:         "channels",
	CreateChannel:    "create_channel",
	ViewUnspents:     "view_unspents",
	RGBTxDetail:      "rgb_tx_detail",
	BTCTxDetail:      "btc_tx_detail",
	CreateLNInvoice:  "create_ln_invoice",
	SendLNInvoice:    "send_ln_invoice",
	Backup:           "backup",
	Swap:             "swap",
	Settings:         "settings",
	Faucets:          "faucets",
	Help:             "help",
	About:            "about",
	Splash:           "splash",
	Success:          "success",
}

// Pages lists every page in declaration order.
func Pages() []Page {
	out := make([]Page, 0, int(pageEnd)-1)
	for p := Welcome; p < pageEnd; p++ {
		out = append(out, p)
	}
	return out
}

func (p Page) Valid() bool {
	return p > PageNone && p < pageEnd
}

func (p Page) String() string {
	if !p.Valid() {
		return "unknown"
	}
	return pageTags[p]
}

// ParsePage finds a page by tag.
func ParsePage(tag string) (Page, bool) {
	for p := Welcome; p < pageEnd; p++ {
		if pageTags[p] == tag {
			return p, true
		}
	}
	return PageNone, false
}

// Onboarding pages are shown full window, without the sidebar.
func (p Page) Onboarding() bool {
	switch p {
	case Welcome, Terms, WalletSelection, NetworkSelection, LNEndpoint,
		SetPassword, EnterPassword, Splash, Success:
		return true
	}
	return false
}

// SidebarVisible is the default sidebar state of the page.
func (p Page) SidebarVisible() bool {
	return p.Valid() && !p.Onboarding()
}

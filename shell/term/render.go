package term

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkt-cash/iriswallet/amount"
	"github.com/pkt-cash/iriswallet/faucet"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/transfers"
	"github.com/pkt-cash/iriswallet/util"
	"github.com/pkt-cash/iriswallet/validate"
	"github.com/pkt-cash/iriswallet/viewmodel"
)

func newTable(w io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func when(ts *time.Time) string {
	if ts == nil {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}

func optAmount(v *uint64, precision uint8) string {
	if v == nil {
		return "-"
	}
	return amount.FormatAsset(*v, precision)
}

func RenderAssets(w io.Writer, l viewmodel.AssetList) {
	fmt.Fprintf(w, "Bitcoin: %s (spendable %s)\n",
		l.TotalBalanceWithSuffix(amount.Sats), l.SpendableBalanceWithSuffix(amount.Sats))
	t := newTable(w, table.Row{"Ticker", "Name", "Asset ID", "Spendable", "Future", "Lightning"})
	for _, a := range l.Assets {
		t.AppendRow(table.Row{
			a.Ticker,
			a.Name,
			a.AssetID,
			amount.FormatAsset(a.OnchainBalanceSpendable, a.Precision),
			amount.FormatAsset(a.OnchainBalanceFuture, a.Precision),
			optAmount(a.OffchainOutbound, a.Precision),
		})
	}
	if l.Cached {
		t.SetCaption("cached, refreshing")
	}
	t.Render()
}

// RenderRows prints transfer rows, balances is the running balance per row
// and may be nil.
func RenderRows(w io.Writer, rows []transfers.Row, balances []int64) {
	header := table.Row{"ID", "Amount", "Status", "Date"}
	if balances != nil {
		header = append(header, "Balance")
	}
	t := newTable(w, header)
	for i, r := range rows {
		row := table.Row{r.ID, r.DisplayAmount, r.StatusLabel, when(r.PrimaryTS)}
		if balances != nil && i < len(balances) {
			row = append(row, balances[i])
		}
		t.AppendRow(row)
	}
	t.Render()
}

func RenderChannels(w io.Writer, l viewmodel.ChannelList) {
	names := make(map[string]model.AssetDescriptor, len(l.Assets))
	for _, a := range l.Assets {
		names[a.AssetID] = a
	}
	t := newTable(w, table.Row{"Channel", "Peer", "Asset", "Capacity", "Local", "Usable"})
	for _, ch := range l.Channels {
		asset, local := "BTC", amount.FormatSats(amount.MsatToSat(ch.LocalBalanceMsat), amount.Sats)
		if ch.AssetID != "" {
			a := names[ch.AssetID]
			asset = a.Ticker
			if asset == "" {
				asset = ch.AssetID
			}
			local = optAmount(ch.AssetLocalAmount, a.Precision)
		}
		t.AppendRow(table.Row{ch.ChannelID, short(ch.PeerPubkey), asset,
			amount.FormatSats(ch.CapacitySat, amount.Sats), local, ch.EligibleForPayment()})
	}
	t.Render()
}

func short(s string) string {
	if len(s) <= 16 {
		return s
	}
	return s[:8] + ".." + s[len(s)-6:]
}

func RenderUnspents(w io.Writer, us []model.Unspent) {
	t := newTable(w, table.Row{"Outpoint", "Amount", "Colorable", "Assets"})
	for _, u := range us {
		t.AppendRow(table.Row{u.Outpoint, amount.FormatSats(u.BTCAmount, amount.Sats), u.Colorable, len(u.Assets)})
	}
	t.Render()
}

func RenderTxDetail(w io.Writer, d viewmodel.TxDetail) {
	t := newTable(w, table.Row{"", d.AssetName})
	t.AppendRows([]table.Row{
		{"Amount", d.Amount + " " + d.Ticker},
		{"Status", d.StatusLabel},
		{"Date", when(d.Time)},
	})
	if d.TxID != "" {
		t.AppendRow(table.Row{"Transaction", d.TxID})
	}
	if d.Fee != "" {
		t.AppendRow(table.Row{"Fee", d.Fee})
	}
	if d.Hash != "" {
		t.AppendRow(table.Row{"Payment hash", d.Hash})
	}
	if d.CanFail {
		t.SetCaption("pending, fail marks it as failed")
	}
	t.Render()
}

func RenderInvoice(w io.Writer, d model.InvoiceDecoding) {
	t := newTable(w, table.Row{"Invoice", ""})
	amt := "any"
	if d.AmountMsat != nil {
		amt = fmt.Sprintf("%d msat", *d.AmountMsat)
	}
	t.AppendRows([]table.Row{
		{"Amount", amt},
		{"Payment hash", d.PaymentHash},
		{"Network", d.Network},
		{"Expires in", time.Duration(d.ExpirySec) * time.Second},
	})
	if d.AssetID != "" {
		t.AppendRow(table.Row{"Asset", d.AssetID})
		t.AppendRow(table.Row{"Asset amount", optAmount(d.AssetAmount, 0)})
	}
	t.Render()
}

func RenderFaucets(w io.Writer, fs []viewmodel.Faucet) {
	t := newTable(w, table.Row{"Faucet", "URL", "Group", "Label", "Requests left"})
	for _, f := range fs {
		for _, g := range util.SortedKeys(f.Groups) {
			t.AppendRow(table.Row{f.Name, f.URL, g, f.Groups[g].Label, f.Groups[g].RequestsLeft})
		}
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}, {Number: 2, AutoMerge: true}})
	t.Render()
}

func RenderLinks(w io.Writer, links []viewmodel.Link) {
	t := newTable(w, table.Row{"", "URL"})
	for _, l := range links {
		t.AppendRow(table.Row{l.Label, l.URL})
	}
	t.Render()
}

func RenderAbout(w io.Writer, a viewmodel.About) {
	t := newTable(w, table.Row{"Iris Wallet", a.Version})
	pk := a.Pubkey
	if pk == "" {
		pk = "-"
	}
	t.AppendRows([]table.Row{
		{"Network", a.Network},
		{"Wallet", a.Kind},
		{"Node pubkey", pk},
	})
	t.Render()
}

// attach subscribes the printers of the page, the subscriptions go away
// with the view.
func attach(s *Shell, v *viewmodel.View) {
	b := v.VM.Core()
	v.Subs.Add(
		b.Message.On(func(m viewmodel.Message) {
			if m.Code != "" {
				s.printf("%s %s (%s)\n", severityMark(m.Severity), m.Text, m.Code)
				return
			}
			s.printf("%s %s\n", severityMark(m.Severity), m.Text)
		}),
		b.Validation.On(func(fe validate.FieldErrors) {
			if !fe.Empty() {
				s.printf("check: %s\n", fe)
			}
		}),
	)
	line := func(format string) func(string) {
		return func(v string) { s.printf(format+"\n", v) }
	}
	switch vm := v.VM.(type) {
	case *viewmodel.AssetsVM:
		v.Subs.Add(vm.AssetLoaded.On(func(l viewmodel.AssetList) {
			s.write(func(w io.Writer) { RenderAssets(w, l) })
		}))
	case *viewmodel.BitcoinVM:
		v.Subs.Add(vm.TransactionLoaded.On(func(st viewmodel.BitcoinState) {
			s.write(func(w io.Writer) {
				fmt.Fprintf(w, "Balance: %s (spendable %s)\n", vm.TotalBalanceWithSuffix(), vm.SpendableBalanceWithSuffix())
				RenderRows(w, st.Rows, st.Running)
			})
		}))
	case *viewmodel.RGBDetailVM:
		v.Subs.Add(
			vm.AssetInfo.On(func(a viewmodel.AssetInfo) { s.printf("%s (%s) %s\n", a.Name, a.Ticker, a.ID) }),
			vm.Transactions.On(func(d viewmodel.AssetDetail) {
				p := vm.Params().Precision
				s.write(func(w io.Writer) {
					fmt.Fprintf(w, "Spendable %s, future %s, lightning %s\n",
						amount.FormatAsset(d.Balance.Spendable, p),
						amount.FormatAsset(d.Balance.Future, p),
						amount.FormatAsset(d.Projection.Aggregates.LightningSpendable, p))
					RenderRows(w, d.Projection.Rows, nil)
				})
			}),
		)
	case *viewmodel.ChannelManagementVM:
		v.Subs.Add(
			vm.Channels.On(func(l viewmodel.ChannelList) { s.write(func(w io.Writer) { RenderChannels(w, l) }) }),
			vm.ChannelCreated.On(line("Channel %s is opening")),
			vm.ChannelClosed.On(line("Channel %s is closing")),
		)
	case *viewmodel.UnspentsVM:
		v.Subs.Add(vm.Unspents.On(func(us []model.Unspent) { s.write(func(w io.Writer) { RenderUnspents(w, us) }) }))
	case *viewmodel.TxDetailVM:
		show := func(d viewmodel.TxDetail) { s.write(func(w io.Writer) { RenderTxDetail(w, d) }) }
		v.Subs.Add(vm.Detail.On(show), vm.Failed.On(show))
	case *viewmodel.CreateLNInvoiceVM:
		v.Subs.Add(vm.InvoiceReady.On(line("Invoice: %s")))
	case *viewmodel.LNOffchainVM:
		v.Subs.Add(
			vm.InvoiceDetail.On(func(d model.InvoiceDecoding) { s.write(func(w io.Writer) { RenderInvoice(w, d) }) }),
			vm.IsSent.On(func(struct{}) { s.printf("Payment sent\n") }),
		)
	case *viewmodel.ReceiveRGBVM:
		v.Subs.Add(vm.InvoiceReady.On(func(inv viewmodel.RGBInvoice) {
			s.printf("Invoice: %s\nRecipient: %s\n", inv.Invoice, inv.RecipientID)
		}))
	case *viewmodel.ReceiveBitcoinVM:
		v.Subs.Add(vm.AddressReady.On(line("Address: %s")))
	case *viewmodel.SendBitcoinVM:
		v.Subs.Add(vm.FeeEstimated.On(func(f float64) { s.printf("Estimated fee rate: %.1f sat/vB\n", f) }))
	case *viewmodel.SendRGBVM:
		v.Subs.Add(vm.Sent.On(line("Sent, transaction %s")))
	case *viewmodel.IssueRGB20VM:
		v.Subs.Add(vm.AssetIssued.On(func(a model.AssetDescriptor) { s.printf("Issued %s\n", a.AssetID) }))
	case *viewmodel.IssueRGB25VM:
		v.Subs.Add(vm.AssetIssued.On(func(a model.AssetDescriptor) { s.printf("Issued %s\n", a.AssetID) }))
	case *viewmodel.SetPasswordVM:
		v.Subs.Add(vm.Mnemonic.On(func(m string) {
			s.printf("Write these words down, they are shown once:\n\n  %s\n\n", m)
		}))
	case *viewmodel.FaucetVM:
		v.Subs.Add(
			vm.Faucets.On(func(fs []viewmodel.Faucet) {
				if len(fs) > 0 {
					s.write(func(w io.Writer) { RenderFaucets(w, fs) })
				}
			}),
			vm.Received.On(func(a faucet.Asset) { s.printf("Received %d of %s\n", a.Amount, a.Name) }),
		)
	case *viewmodel.AboutVM:
		v.Subs.Add(vm.Loaded.On(func(a viewmodel.About) { s.write(func(w io.Writer) { RenderAbout(w, a) }) }))
	case *viewmodel.BackupVM:
		v.Subs.Add(vm.BackupDone.On(line("Backup written to %s")))
	case *viewmodel.SettingsVM:
		v.Subs.Add(vm.Saved.On(line("Saved %s")))
	case *viewmodel.HelpVM:
		s.write(func(w io.Writer) { RenderLinks(w, vm.Links()) })
	case *viewmodel.SuccessVM:
		p := vm.Params()
		s.printf("%s\n%s\n%s\nType done to continue.\n", p.Header, p.Title, p.Description)
	}
}

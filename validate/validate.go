// Package validate holds the pure input gates run before any request is
// sent to the node. None of these functions do I/O.
package validate

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/miekg/dns"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/walleterr"
)

// NodeURI is a lightning peer address, pubkey@host:port.
type NodeURI struct {
	Pubkey string
	Host   string
	Port   uint16
}

func (n NodeURI) String() string {
	return n.Pubkey + "@" + n.Host + ":" + strconv.Itoa(int(n.Port))
}

const pubkeyLen = 66

func invalid(field, msg string) er.R {
	return walleterr.InputInvalid.New(field+": "+msg, nil)
}

// ParseNodeURI accepts exactly [0-9a-f]{66}@<host>:<port> where host is a
// dot separated list of DNS labels and port is 1 to 5 digits in [1, 65535].
func ParseNodeURI(s string) (NodeURI, er.R) {
	at := strings.IndexByte(s, '@')
	if at < 0 || strings.IndexByte(s[at+1:], '@') >= 0 {
		return NodeURI{}, invalid(FieldPeer, "expected pubkey@host:port")
	}
	pk, hostport := s[:at], s[at+1:]
	if len(pk) != pubkeyLen {
		return NodeURI{}, invalid(FieldPeer, "pubkey must be 66 hex characters")
	}
	for _, c := range pk {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			return NodeURI{}, invalid(FieldPeer, "pubkey must be lowercase hex")
		}
	}
	colon := strings.LastIndexByte(hostport, ':')
	if colon < 0 {
		return NodeURI{}, invalid(FieldPeer, "missing port")
	}
	host, portStr := hostport[:colon], hostport[colon+1:]
	if !validHost(host) {
		return NodeURI{}, invalid(FieldPeer, "bad host ["+host+"]")
	}
	port, ok := parsePort(portStr)
	if !ok {
		return NodeURI{}, invalid(FieldPeer, "port must be in [1, 65535]")
	}
	return NodeURI{Pubkey: pk, Host: host, Port: port}, nil
}

func parsePort(s string) (uint16, bool) {
	if len(s) < 1 || len(s) > 5 {
		return 0, false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, false
		}
	}
	n, errr := strconv.Atoi(s)
	if errr != nil || n < 1 || n > 65535 {
		return 0, false
	}
	return uint16(n), true
}

func validHost(host string) bool {
	if host == "" || len(host) > 253 {
		return false
	}
	for _, label := range strings.Split(host, ".") {
		if label == "" || len(label) > 63 {
			return false
		}
		for _, c := range label {
			if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '-') {
				return false
			}
		}
	}
	_, ok := dns.IsDomainName(host)
	return ok
}

// ChannelInput is what the user typed on the create channel page.
type ChannelInput struct {
	CapacitySat        uint64
	PushMsat           uint64
	AssetAmount        uint64
	AssetBalanceFuture uint64
}

func pushOk(push, capacity uint64) bool {
	// capacity*1000 without overflow
	if capacity > ^uint64(0)/1000 {
		return true
	}
	return push <= capacity*1000
}

// RGBChannel checks an RGB channel against the node capabilities.
func RGBChannel(caps model.NodeCapabilities, in ChannelInput) FieldErrors {
	var fe FieldErrors
	if in.CapacitySat < caps.RGBChannelCapacityMinSat || in.CapacitySat > caps.ChannelCapacityMaxSat {
		fe.Add(FieldCapacity)
	}
	if !pushOk(in.PushMsat, in.CapacitySat) {
		fe.Add(FieldPushMsat)
	}
	if in.AssetAmount < caps.ChannelAssetMinAmount || in.AssetAmount > caps.ChannelAssetMaxAmount ||
		in.AssetAmount > in.AssetBalanceFuture {
		fe.Add(FieldAssetAmount)
	}
	return fe
}

// BTCChannel checks a plain bitcoin channel against the node capabilities.
func BTCChannel(caps model.NodeCapabilities, in ChannelInput) FieldErrors {
	var fe FieldErrors
	if in.CapacitySat < caps.ChannelCapacityMinSat || in.CapacitySat > caps.ChannelCapacityMaxSat {
		fe.Add(FieldCapacity)
	}
	if !pushOk(in.PushMsat, in.CapacitySat) {
		fe.Add(FieldPushMsat)
	}
	return fe
}

// MinInvoiceLen is the shortest string worth sending to the node for decoding.
const MinInvoiceLen = 200

func invoicePrefix(n model.Network) string {
	switch n {
	case model.Mainnet:
		return "lnbc"
	case model.Testnet:
		return "lntb"
	}
	return "lnbcrt"
}

// Invoice is a local sanity check of a lightning invoice, the node does the
// real decoding.
func Invoice(s string, network model.Network) er.R {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < MinInvoiceLen {
		return invalid(FieldInvoice, "too short")
	}
	hrp, _, errr := bech32.DecodeNoLimit(s)
	if errr != nil {
		return invalid(FieldInvoice, "bad checksum")
	}
	want := invoicePrefix(network)
	if !strings.HasPrefix(hrp, want) ||
		(network == model.Mainnet && strings.HasPrefix(hrp, invoicePrefix(model.Regtest))) {
		return invalid(FieldInvoice, "invoice is not for "+string(network))
	}
	return nil
}

// Amount checks 0 < v <= max, max of 0 means unbounded.
func Amount(v, max uint64) er.R {
	if v == 0 {
		return invalid(FieldAmount, "must be greater than zero")
	}
	if max > 0 && v > max {
		return invalid(FieldAmount, "exceeds available balance")
	}
	return nil
}

var addressPrefixes = map[model.Network][]string{
	model.Mainnet: {"bc1", "1", "3"},
	model.Testnet: {"tb1", "m", "n", "2"},
	model.Regtest: {"bcrt1", "m", "n", "2"},
}

// BitcoinAddress checks the address belongs to the network. Segwit
// addresses are checksum verified.
func BitcoinAddress(addr string, network model.Network) er.R {
	addr = strings.TrimSpace(addr)
	if len(addr) < 26 || len(addr) > 90 {
		return invalid(FieldAddress, "bad length")
	}
	low := strings.ToLower(addr)
	for _, p := range addressPrefixes[network] {
		if !strings.HasPrefix(low, p) {
			continue
		}
		if strings.HasSuffix(p, "1") && len(p) > 1 {
			if _, _, errr := bech32.DecodeNoLimit(low); errr != nil {
				return invalid(FieldAddress, "bad checksum")
			}
		}
		return nil
	}
	return invalid(FieldAddress, "address is not for "+string(network))
}

// Ticker is 1 to 8 upper case letters or digits.
func Ticker(s string) er.R {
	if len(s) < 1 || len(s) > 8 {
		return invalid(FieldTicker, "must be 1 to 8 characters")
	}
	for _, c := range s {
		if !(c >= 'A' && c <= 'Z' || c >= '0' && c <= '9') {
			return invalid(FieldTicker, "must be upper case letters or digits")
		}
	}
	return nil
}

// AssetName is 1 to 40 printable characters.
func AssetName(s string) er.R {
	if strings.TrimSpace(s) == "" || len(s) > 40 {
		return invalid(FieldName, "must be 1 to 40 characters")
	}
	for _, c := range s {
		if !unicode.IsPrint(c) {
			return invalid(FieldName, "must be printable")
		}
	}
	return nil
}

// Precision of an RGB20 asset is at most 18 decimal places.
func Precision(p int) er.R {
	if p < 0 || p > 18 {
		return invalid(FieldPrecision, "must be 0 to 18")
	}
	return nil
}

// MinPasswordLen is the shortest password accepted for a new wallet.
const MinPasswordLen = 8

// Password checks a new password and its confirmation.
func Password(pw, confirm string) FieldErrors {
	var fe FieldErrors
	if len(pw) < MinPasswordLen {
		fe.Add(FieldPassword)
	}
	if pw != confirm {
		fe.Add(FieldConfirm)
	}
	return fe
}

// EndpointURL checks a node endpoint is an http(s) URL with a host.
func EndpointURL(s string) er.R {
	s = strings.TrimSpace(s)
	var rest string
	switch {
	case strings.HasPrefix(s, "http://"):
		rest = s[len("http://"):]
	case strings.HasPrefix(s, "https://"):
		rest = s[len("https://"):]
	default:
		return invalid(FieldURL, "must start with http:// or https://")
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		rest = rest[:i]
	}
	host := rest
	if i := strings.LastIndexByte(rest, ':'); i >= 0 {
		if _, ok := parsePort(rest[i+1:]); !ok {
			return invalid(FieldURL, "bad port")
		}
		host = rest[:i]
	}
	if !validHost(host) {
		return invalid(FieldURL, "bad host")
	}
	return nil
}

// Package amount formats and parses the amounts shown in the wallet.
package amount

import (
	"math/big"
	"strings"

	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/model"
	"github.com/pkt-cash/iriswallet/walleterr"
	"github.com/shopspring/decimal"
)

type Unit string

const (
	Sats Unit = "SATS"
	BTC  Unit = "BTC"
)

const satsPerBTC = 8

func fromUint(v uint64, exp int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), exp)
}

// FormatSats renders sats with the unit suffix, e.g. "1500 SATS" or
// "0.00001500 BTC".
func FormatSats(sat uint64, unit Unit) string {
	if unit == BTC {
		return fromUint(sat, -satsPerBTC).StringFixed(satsPerBTC) + " " + string(BTC)
	}
	return fromUint(sat, 0).String() + " " + string(Sats)
}

// FormatAsset renders an amount of an asset with the given precision.
func FormatAsset(v uint64, precision uint8) string {
	return fromUint(v, -int32(precision)).String()
}

// Signed renders v with a sign matching the transfer direction.
func Signed(v uint64, precision uint8, dir model.TransferDirection) string {
	s := FormatAsset(v, precision)
	switch dir {
	case model.Sent:
		return "-" + s
	case model.Received, model.Issuance:
		return "+" + s
	}
	return s
}

// MsatToSat truncates millisatoshis to whole satoshis.
func MsatToSat(msat uint64) uint64 {
	return msat / 1000
}

// ParseAsset parses a user entered amount into minor units.
func ParseAsset(s string, precision uint8) (uint64, er.R) {
	s = strings.TrimSpace(s)
	d, errr := decimal.NewFromString(s)
	if errr != nil {
		return 0, walleterr.InputInvalid.New("amount ["+s+"] is not a number", nil)
	}
	if d.Sign() < 0 {
		return 0, walleterr.InputInvalid.New("amount must not be negative", nil)
	}
	minor := d.Shift(int32(precision))
	if !minor.Equal(minor.Truncate(0)) {
		return 0, walleterr.InputInvalid.New("amount has too many decimal places", nil)
	}
	bi := minor.BigInt()
	if !bi.IsUint64() {
		return 0, walleterr.InputInvalid.New("amount is too large", nil)
	}
	return bi.Uint64(), nil
}

package validate

import (
	"strings"

	"github.com/emirpasic/gods/sets/treeset"
	"github.com/pkt-cash/iriswallet/er"
	"github.com/pkt-cash/iriswallet/walleterr"
)

// Field names reported by the channel gates.
const (
	FieldCapacity    = "capacity"
	FieldPushMsat    = "push_msat"
	FieldAssetAmount = "asset_amount"
	FieldAssetID     = "asset_id"
	FieldPeer        = "peer"
	FieldAmount      = "amount"
	FieldAddress     = "address"
	FieldRecipient   = "recipient"
	FieldTicker      = "ticker"
	FieldName        = "name"
	FieldPrecision   = "precision"
	FieldPassword    = "password"
	FieldConfirm     = "confirm"
	FieldInvoice     = "invoice"
	FieldURL         = "url"
	FieldFeeRate     = "fee_rate"
	FieldFile        = "file"
	FieldPath        = "path"
)

// FieldErrors is the sorted set of fields which failed validation.
// The zero value is an empty set.
type FieldErrors struct {
	set *treeset.Set
}

func NewFieldErrors(fields ...string) FieldErrors {
	fe := FieldErrors{}
	for _, f := range fields {
		fe.Add(f)
	}
	return fe
}

func (fe *FieldErrors) Add(field string) {
	if fe.set == nil {
		fe.set = treeset.NewWithStringComparator()
	}
	fe.set.Add(field)
}

func (fe FieldErrors) Has(field string) bool {
	return fe.set != nil && fe.set.Contains(field)
}

func (fe FieldErrors) Empty() bool {
	return fe.set == nil || fe.set.Empty()
}

func (fe FieldErrors) Len() int {
	if fe.set == nil {
		return 0
	}
	return fe.set.Size()
}

// Fields lists the failed fields in ascending order.
func (fe FieldErrors) Fields() []string {
	if fe.set == nil {
		return nil
	}
	out := make([]string, 0, fe.set.Size())
	for _, v := range fe.set.Values() {
		out = append(out, v.(string))
	}
	return out
}

func (fe FieldErrors) String() string {
	return strings.Join(fe.Fields(), ",")
}

// FieldOf returns the field an InputInvalid error of this package is about.
func FieldOf(r er.R) (string, bool) {
	if !walleterr.InputInvalid.Is(r) {
		return "", false
	}
	info := er.Info(r)
	i := strings.Index(info, ": ")
	if i <= 0 {
		return "", false
	}
	for _, c := range info[:i] {
		if (c < 'a' || c > 'z') && c != '_' {
			return "", false
		}
	}
	return info[:i], true
}

// ErrorsOf is the field set of err, empty when it names no field.
func ErrorsOf(err er.R) FieldErrors {
	var fe FieldErrors
	if f, ok := FieldOf(err); ok {
		fe.Add(f)
	}
	return fe
}

package transfers

import "github.com/pkt-cash/iriswallet/model"

type Color int

const (
	Neutral Color = iota
	Incoming
	Outgoing
	Waiting
	Dimmed
)

func (c Color) String() string {
	switch c {
	case Incoming:
		return "incoming"
	case Outgoing:
		return "outgoing"
	case Waiting:
		return "waiting"
	case Dimmed:
		return "dimmed"
	}
	return "neutral"
}

// ColorOf is how a row is painted, it depends on nothing but direction and
// status.
func ColorOf(dir model.TransferDirection, status model.TransferStatus) Color {
	switch {
	case status == model.Failed:
		return Dimmed
	case status.Pending():
		return Waiting
	case dir == model.Sent:
		return Outgoing
	case dir == model.Received, dir == model.Issuance:
		return Incoming
	}
	return Neutral
}

func (r *Row) Color() Color {
	return ColorOf(r.Direction, r.Status)
}

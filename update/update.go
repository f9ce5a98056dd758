// Package update defines the tagged market-update message the order book
// applies, and its bit-exact wire encoding.
package update

import (
	"encoding/binary"

	"github.com/cockroachdb/errors"
)

// Type tags the kind of mutation a Update describes.
type Type uint8

const (
	Invalid Type = 0
	Clear   Type = 1
	Add     Type = 2
	Modify  Type = 3
	Cancel  Type = 4
	Trade   Type = 5
	// SnapshotStart and SnapshotEnd frame a replay burst; they carry no
	// state-mutation meaning at the book layer.
	SnapshotStart Type = 6
	SnapshotEnd   Type = 7
)

func (t Type) String() string {
	switch t {
	case Clear:
		return "CLEAR"
	case Add:
		return "ADD"
	case Modify:
		return "MODIFY"
	case Cancel:
		return "CANCEL"
	case Trade:
		return "TRADE"
	case SnapshotStart:
		return "SNAPSHOT_START"
	case SnapshotEnd:
		return "SNAPSHOT_END"
	case Invalid:
		return "INVALID"
	default:
		return "UNKNOWN"
	}
}

// Side is the resting side of an order. BUY=1 and SELL=-1 (not 0/1) so
// that a side can be used directly as a price-comparison sign.
type Side int8

const (
	SideInvalid Side = 0
	Buy         Side = 1
	Sell        Side = -1
	sideMax     Side = 2
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	case SideInvalid:
		return "INVALID"
	case sideMax:
		return "MAX"
	default:
		return "UNKNOWN"
	}
}

// Sentinel "invalid" values: every integer field uses the maximum value
// of its domain as the absent/unknown marker.
const (
	OrderIDInvalid  uint64 = ^uint64(0)
	TickerIDInvalid uint32 = ^uint32(0)
	PriceInvalid    int64  = 1<<63 - 1
	QtyInvalid      uint32 = ^uint32(0)
	PriorityInvalid uint64 = ^uint64(0)
)

// Update is one mutation of the book, as emitted by the matching engine
// side of a market-data feed.
type Update struct {
	Type     Type
	OrderID  uint64
	TickerID uint32
	Side     Side
	Price    int64
	Qty      uint32
	Priority uint64
}

// Wire is the publisher-facing variant: it prepends a monotonic sequence
// number to an Update, as published over the network by the market-data
// distributor.
type Wire struct {
	SeqNum uint64
	Update Update
}

// wireSize is the exact byte length of an encoded Update:
// [type:1][order_id:8][ticker_id:4][side:1][price:8][qty:4][priority:8].
const wireSize = 1 + 8 + 4 + 1 + 8 + 4 + 8

// publisherWireSize adds the 8-byte sequence number prefix.
const publisherWireSize = 8 + wireSize

// Encode writes u's bit-exact little-endian wire representation into buf,
// which must be at least wireSize bytes.
func (u Update) Encode(buf []byte) error {
	if len(buf) < wireSize {
		return errors.Newf("update: buffer too small: have %d, need %d", len(buf), wireSize)
	}
	buf[0] = byte(u.Type)
	binary.LittleEndian.PutUint64(buf[1:9], u.OrderID)
	binary.LittleEndian.PutUint32(buf[9:13], u.TickerID)
	buf[13] = byte(u.Side)
	binary.LittleEndian.PutUint64(buf[14:22], uint64(u.Price))
	binary.LittleEndian.PutUint32(buf[22:26], u.Qty)
	binary.LittleEndian.PutUint64(buf[26:34], u.Priority)
	return nil
}

// Decode reads a bit-exact little-endian wire representation from buf
// and returns it as a new Update with every field set.
func Decode(buf []byte) (Update, error) {
	if len(buf) < wireSize {
		return Update{}, errors.Newf("update: buffer too small: have %d, need %d", len(buf), wireSize)
	}
	return Update{
		Type:     Type(buf[0]),
		OrderID:  binary.LittleEndian.Uint64(buf[1:9]),
		TickerID: binary.LittleEndian.Uint32(buf[9:13]),
		Side:     Side(int8(buf[13])),
		Price:    int64(binary.LittleEndian.Uint64(buf[14:22])),
		Qty:      binary.LittleEndian.Uint32(buf[22:26]),
		Priority: binary.LittleEndian.Uint64(buf[26:34]),
	}, nil
}

// WireSize returns the on-wire byte length of an Update.
func WireSize() int { return wireSize }

// Encode writes w's bit-exact little-endian wire representation
// (sequence number followed by the embedded Update) into buf.
func (w Wire) Encode(buf []byte) error {
	if len(buf) < publisherWireSize {
		return errors.Newf("update: buffer too small: have %d, need %d", len(buf), publisherWireSize)
	}
	binary.LittleEndian.PutUint64(buf[0:8], w.SeqNum)
	return w.Update.Encode(buf[8:])
}

// DecodeWire reads a Wire record from buf.
func DecodeWire(buf []byte) (Wire, error) {
	if len(buf) < publisherWireSize {
		return Wire{}, errors.Newf("update: buffer too small: have %d, need %d", len(buf), publisherWireSize)
	}
	seq := binary.LittleEndian.Uint64(buf[0:8])
	u, err := Decode(buf[8:])
	if err != nil {
		return Wire{}, err
	}
	return Wire{SeqNum: seq, Update: u}, nil
}

// PublisherWireSize returns the on-wire byte length of a Wire record.
func PublisherWireSize() int { return publisherWireSize }

// Package wire defines the fixed 64-byte Command and Event records that
// the gRPC gateway's custom binary codec puts on the wire. cmd/replay
// stores Commands on its Kafka tape in the same encoding.
package wire

import (
	"encoding/binary"
	"fmt"
)

// Size is the fixed byte length of both encoded Command and Event
// records, so neither needs a length prefix or a delimiter.
const Size = 64

// CommandKind tags which of the three engine operations a Command
// carries.
type CommandKind uint8

const (
	CmdNew CommandKind = iota
	CmdCancel
	CmdReplace
)

// Command is the fixed-size record a client sends to the engine
// gateway. Not every field is meaningful for every Kind:
// Cancel only reads OrderID; New reads OrderType/Side/Price/Quantity;
// Replace reads OrderID/NewPrice/NewQuantity.
type Command struct {
	Kind        CommandKind
	OrderType   uint8
	Side        uint8
	OrderID     uint64
	Price       int64
	Quantity    uint64
	NewPrice    int64
	NewQuantity uint64
	Symbol      uint32
}

// MarshalBinary encodes c into a new Size-byte slice.
func (c Command) MarshalBinary() ([]byte, error) {
	buf := make([]byte, Size)
	buf[0] = byte(c.Kind)
	buf[1] = c.OrderType
	buf[2] = c.Side
	binary.LittleEndian.PutUint64(buf[4:12], c.OrderID)
	binary.LittleEndian.PutUint64(buf[12:20], uint64(c.Price))
	binary.LittleEndian.PutUint64(buf[20:28], c.Quantity)
	binary.LittleEndian.PutUint64(buf[28:36], uint64(c.NewPrice))
	binary.LittleEndian.PutUint64(buf[36:44], c.NewQuantity)
	binary.LittleEndian.PutUint32(buf[44:48], c.Symbol)
	return buf, nil
}

// UnmarshalBinary decodes c from a Size-byte slice produced by
// MarshalBinary.
func (c *Command) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return errWrongSize(len(data))
	}
	c.Kind = CommandKind(data[0])
	c.OrderType = data[1]
	c.Side = data[2]
	c.OrderID = binary.LittleEndian.Uint64(data[4:12])
	c.Price = int64(binary.LittleEndian.Uint64(data[12:20]))
	c.Quantity = binary.LittleEndian.Uint64(data[20:28])
	c.NewPrice = int64(binary.LittleEndian.Uint64(data[28:36]))
	c.NewQuantity = binary.LittleEndian.Uint64(data[36:44])
	c.Symbol = binary.LittleEndian.Uint32(data[44:48])
	return nil
}

// EventKind mirrors core.EventKind on the wire without importing the
// core package, keeping wire a leaf dependency the gateway and the core
// can both sit on top of.
type EventKind uint8

const (
	EvtAck EventKind = iota
	EvtFill
	EvtCancelAck
	EvtReject
)

// Event is the fixed-size record the gateway sends back for each engine
// event a dispatched Command produced.
type Event struct {
	Kind      EventKind
	Reason    uint8
	Side      uint8
	OrderID   uint64
	CounterID uint64
	Price     int64
	Quantity  uint64
	Sequence  uint64
	Symbol    uint32
}

// MarshalBinary encodes e into a new Size-byte slice.
func (e Event) MarshalBinary() ([]byte, error) {
	buf := make([]byte, Size)
	buf[0] = byte(e.Kind)
	buf[1] = e.Reason
	buf[2] = e.Side
	binary.LittleEndian.PutUint64(buf[4:12], e.OrderID)
	binary.LittleEndian.PutUint64(buf[12:20], e.CounterID)
	binary.LittleEndian.PutUint64(buf[20:28], uint64(e.Price))
	binary.LittleEndian.PutUint64(buf[28:36], e.Quantity)
	binary.LittleEndian.PutUint64(buf[36:44], e.Sequence)
	binary.LittleEndian.PutUint32(buf[44:48], e.Symbol)
	return buf, nil
}

// UnmarshalBinary decodes e from a Size-byte slice produced by
// MarshalBinary.
func (e *Event) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return errWrongSize(len(data))
	}
	e.Kind = EventKind(data[0])
	e.Reason = data[1]
	e.Side = data[2]
	e.OrderID = binary.LittleEndian.Uint64(data[4:12])
	e.CounterID = binary.LittleEndian.Uint64(data[12:20])
	e.Price = int64(binary.LittleEndian.Uint64(data[20:28]))
	e.Quantity = binary.LittleEndian.Uint64(data[28:36])
	e.Sequence = binary.LittleEndian.Uint64(data[36:44])
	e.Symbol = binary.LittleEndian.Uint32(data[44:48])
	return nil
}

func errWrongSize(got int) error {
	return fmt.Errorf("wire: record must be exactly %d bytes, got %d", Size, got)
}

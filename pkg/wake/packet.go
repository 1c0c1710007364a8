package wake

import "fmt"

// Packet limits.
const (
	PayloadCapacity = 160
	MaxPayloadLen   = PayloadCapacity - 1
	MaxAddress      = 0x7f
)

// BroadcastAddress addresses all nodes. Nodes never reply to it.
const BroadcastAddress byte = 0

const addressFlag = 0x80

// Packet is the unit of exchange.
type Packet struct {
	Address byte
	Command Command
	Len     byte
	Payload [PayloadCapacity]byte
}

// NewPacket creates a packet with data.
func NewPacket(addr byte, cmd Command, data ...byte) (*Packet, error) {
	p := &Packet{Address: addr, Command: cmd}
	if err := p.SetData(data); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Data returns the valid part of the payload.
func (p *Packet) Data() []byte {
	return p.Payload[:p.Len]
}

// SetData copies data into the payload.
func (p *Packet) SetData(data []byte) error {
	if len(data) > MaxPayloadLen {
		return ErrPayloadTooLong
	}
	p.Len = byte(copy(p.Payload[:], data))
	return nil
}

// IsBroadcast indicates no reply is expected.
func (p *Packet) IsBroadcast() bool {
	return p.Address == BroadcastAddress
}

// Validate checks the packet can be represented on the wire.
func (p *Packet) Validate() error {
	if p.Address > MaxAddress {
		return ErrInvalidAddress
	}
	if p.Command&addressFlag != 0 {
		return ErrInvalidCommand
	}
	if p.Len > MaxPayloadLen {
		return ErrPayloadTooLong
	}
	return nil
}

// String implements fmt.Stringer.
func (p *Packet) String() string {
	return fmt.Sprintf("addr=%d cmd=%s data=[% x]", p.Address, p.Command, p.Data())
}

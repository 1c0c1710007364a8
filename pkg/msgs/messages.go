// Package msgs defines the messages exchanged with the wake bridge.
package msgs

import (
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/wake.go/pkg/wake"
)

// Request asks the bridge to run one exchange.
type Request struct {
	// ID is echoed in the Reply.
	ID        string `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Address   uint32 `protobuf:"varint,2,opt,name=address,proto3" json:"address,omitempty"`
	Command   uint32 `protobuf:"varint,3,opt,name=command,proto3" json:"command,omitempty"`
	Data      []byte `protobuf:"bytes,4,opt,name=data,proto3" json:"data,omitempty"`
	TimeoutMs uint32 `protobuf:"varint,5,opt,name=timeout_ms,proto3" json:"timeout_ms,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Request) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Request) Reset() { *m = Request{} }

// String implements proto.Message.
func (m *Request) String() string { return proto.CompactTextString(m) }

// Packet converts the request into a packet.
func (m *Request) Packet() (*wake.Packet, error) {
	if m.Address > wake.MaxAddress {
		return nil, wake.ErrInvalidAddress
	}
	if m.Command > 0xff {
		return nil, wake.ErrInvalidCommand
	}
	return wake.NewPacket(byte(m.Address), wake.Command(m.Command), m.Data...)
}

// Reply is the result of a Request.
type Reply struct {
	ID      string `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Address uint32 `protobuf:"varint,2,opt,name=address,proto3" json:"address,omitempty"`
	Command uint32 `protobuf:"varint,3,opt,name=command,proto3" json:"command,omitempty"`
	Data    []byte `protobuf:"bytes,4,opt,name=data,proto3" json:"data,omitempty"`
	Outcome string `protobuf:"bytes,5,opt,name=outcome,proto3" json:"outcome,omitempty"`
	Error   string `protobuf:"bytes,6,opt,name=error,proto3" json:"error,omitempty"`
	TxCrc   uint32 `protobuf:"varint,7,opt,name=tx_crc,proto3" json:"tx_crc,omitempty"`
	RxCrc   uint32 `protobuf:"varint,8,opt,name=rx_crc,proto3" json:"rx_crc,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Reply) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Reply) Reset() { *m = Reply{} }

// String implements proto.Message.
func (m *Reply) String() string { return proto.CompactTextString(m) }

// Capability describes one capability of a node.
type Capability struct {
	Bit         uint32 `protobuf:"varint,1,opt,name=bit,proto3" json:"bit,omitempty"`
	Name        string `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
	Description string `protobuf:"bytes,3,opt,name=description,proto3" json:"description,omitempty"`
	Error       string `protobuf:"bytes,4,opt,name=error,proto3" json:"error,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Capability) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Capability) Reset() { *m = Capability{} }

// String implements proto.Message.
func (m *Capability) String() string { return proto.CompactTextString(m) }

// Info describes a node.
type Info struct {
	Address      uint32        `protobuf:"varint,1,opt,name=address,proto3" json:"address,omitempty"`
	Mask         uint32        `protobuf:"varint,2,opt,name=mask,proto3" json:"mask,omitempty"`
	Capabilities []*Capability `protobuf:"bytes,3,rep,name=capabilities,proto3" json:"capabilities,omitempty"`
	Error        string        `protobuf:"bytes,4,opt,name=error,proto3" json:"error,omitempty"`
	// ID is the ID of the Request asking for the info.
	ID string `protobuf:"bytes,5,opt,name=id,proto3" json:"id,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Info) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Info) Reset() { *m = Info{} }

// String implements proto.Message.
func (m *Info) String() string { return proto.CompactTextString(m) }

// InfoFrom converts a DeviceInfo.
func InfoFrom(info *wake.DeviceInfo) *Info {
	m := &Info{Address: uint32(info.Address), Mask: uint32(info.Mask)}
	for _, c := range info.Capabilities {
		capability := &Capability{Bit: uint32(c.Capability), Name: c.Capability.String()}
		if c.Descriptor != nil {
			capability.Description = c.Descriptor.String()
		}
		if c.Err != nil {
			capability.Error = c.Err.Error()
		}
		m.Capabilities = append(m.Capabilities, capability)
	}
	return m
}

// Status is published retained by a bridge.
type Status struct {
	NodeID string `protobuf:"bytes,1,opt,name=node_id,proto3" json:"node_id,omitempty"`
	Port   string `protobuf:"bytes,2,opt,name=port,proto3" json:"port,omitempty"`
	Online bool   `protobuf:"varint,3,opt,name=online,proto3" json:"online,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *Status) ProtoMessage() {}

// Reset implements proto.Message.
func (m *Status) Reset() { *m = Status{} }

// String implements proto.Message.
func (m *Status) String() string { return proto.CompactTextString(m) }

package msgs

import (
	"errors"
	"testing"

	"github.com/golang/protobuf/proto"
	"github.com/stretchr/testify/require"

	"github.com/robotalks/wake.go/pkg/wake"
)

func TestRequestPacket(t *testing.T) {
	req := &Request{Address: 3, Command: uint32(wake.CmdEcho), Data: []byte{1, 2}}
	pkt, err := req.Packet()
	require.NoError(t, err)
	require.Equal(t, byte(3), pkt.Address)
	require.Equal(t, wake.CmdEcho, pkt.Command)
	require.Equal(t, []byte{1, 2}, pkt.Data())

	_, err = (&Request{Address: 128}).Packet()
	require.Equal(t, wake.ErrInvalidAddress, err)
	_, err = (&Request{Address: 1, Command: 0x80}).Packet()
	require.Equal(t, wake.ErrInvalidCommand, err)
	_, err = (&Request{Address: 1, Command: 0x100}).Packet()
	require.Equal(t, wake.ErrInvalidCommand, err)
	_, err = (&Request{Address: 1, Data: make([]byte, 200)}).Packet()
	require.Equal(t, wake.ErrPayloadTooLong, err)
}

func TestInfoFrom(t *testing.T) {
	info := &wake.DeviceInfo{
		Address: 4,
		Mask:    0x11,
		Capabilities: []wake.CapabilityInfo{
			{Capability: wake.CapLEDDriver, Descriptor: wake.LEDDriver{ChannelRating: wake.ChannelRating{Channels: 2, PowerW: 40}}},
			{Capability: wake.CapSensor, Err: errors.New("sensor: read timeout")},
		},
	}
	m := InfoFrom(info)
	require.Equal(t, uint32(4), m.Address)
	require.Equal(t, uint32(0x11), m.Mask)
	require.Len(t, m.Capabilities, 2)
	require.Equal(t, &Capability{Bit: 0, Name: "led-driver", Description: "2 channel(s), 40 W"}, m.Capabilities[0])
	require.Equal(t, &Capability{Bit: 4, Name: "sensor", Error: "sensor: read timeout"}, m.Capabilities[1])

	encoded, err := proto.Marshal(m)
	require.NoError(t, err)
	var decoded Info
	require.NoError(t, proto.Unmarshal(encoded, &decoded))
	require.True(t, proto.Equal(m, &decoded))
}

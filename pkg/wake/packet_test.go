package wake

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPacket(t *testing.T) {
	pkt, err := NewPacket(1, CmdEcho, 1, 2, 3)
	require.NoError(t, err)
	require.Equal(t, byte(1), pkt.Address)
	require.Equal(t, CmdEcho, pkt.Command)
	require.Equal(t, []byte{1, 2, 3}, pkt.Data())
	require.False(t, pkt.IsBroadcast())

	_, err = NewPacket(1, CmdEcho, make([]byte, MaxPayloadLen)...)
	require.NoError(t, err)
}

func TestNewPacketRejects(t *testing.T) {
	testCases := []struct {
		name string
		addr byte
		cmd  Command
		data []byte
		err  error
	}{
		{"payload above capacity", 1, CmdEcho, make([]byte, MaxPayloadLen+1), ErrPayloadTooLong},
		{"payload far above capacity", 1, CmdEcho, make([]byte, 1024), ErrPayloadTooLong},
		{"address bit", 0x80, CmdNop, nil, ErrInvalidAddress},
		{"command bit 7", 1, Command(0x80), nil, ErrInvalidCommand},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pkt, err := NewPacket(tc.addr, tc.cmd, tc.data...)
			require.Equal(t, tc.err, err)
			require.Nil(t, pkt)
		})
	}
}

func TestPacketSetData(t *testing.T) {
	var pkt Packet
	require.NoError(t, pkt.SetData([]byte{5, 6}))
	require.Equal(t, []byte{5, 6}, pkt.Data())
	require.Equal(t, ErrPayloadTooLong, pkt.SetData(make([]byte, PayloadCapacity)))
	require.Equal(t, []byte{5, 6}, pkt.Data(), "rejected data must not modify the packet")

	pkt.Len = PayloadCapacity
	require.Equal(t, ErrPayloadTooLong, pkt.Validate())
}

func TestPacketString(t *testing.T) {
	pkt, err := NewPacket(3, CmdOn, 0xab)
	require.NoError(t, err)
	require.Equal(t, "addr=3 cmd=on data=[ab]", pkt.String())
}

func TestCommandString(t *testing.T) {
	require.Equal(t, "getinfo", CmdGetInfo.String())
	require.Equal(t, "Command(0x42)", Command(0x42).String())
	require.Equal(t, "parameter value error", ErrParam.String())
	require.Equal(t, "unknown error 200", ErrCode(200).String())
}

func TestParseCommand(t *testing.T) {
	cmd, err := ParseCommand("reboot")
	require.NoError(t, err)
	require.Equal(t, CmdReboot, cmd)
	cmd, err = ParseCommand("66")
	require.NoError(t, err)
	require.Equal(t, Command(66), cmd)
	_, err = ParseCommand("200")
	require.Equal(t, ErrInvalidCommand, err)
	_, err = ParseCommand("bogus")
	require.Error(t, err)
}

func TestPacketWriteTo(t *testing.T) {
	pkt, err := NewPacket(1, CmdEcho)
	require.NoError(t, err)
	var buf bytes.Buffer
	n, err := pkt.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)
	frame, err := pkt.MarshalBinary()
	require.NoError(t, err)
	require.Equal(t, frame, buf.Bytes())
}

package wake

import (
	"bytes"
	"errors"
	"io"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

type timeoutReader struct {
	r *bytes.Reader
}

func (r *timeoutReader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err == io.EOF {
		return 0, ErrTimeout
	}
	return b, err
}

func newTimeoutReader(data ...byte) *timeoutReader {
	return &timeoutReader{r: bytes.NewReader(data)}
}

func TestDecodeGolden(t *testing.T) {
	for _, tc := range goldenFrames {
		t.Run(tc.name, func(t *testing.T) {
			var pkt Packet
			require.NoError(t, pkt.UnmarshalBinary(tc.frame))
			require.Equal(t, tc.addr, pkt.Address)
			require.Equal(t, tc.cmd, pkt.Command)
			require.Equal(t, len(tc.data), int(pkt.Len))
			if len(tc.data) > 0 {
				require.Equal(t, tc.data, pkt.Data())
			}
		})
	}
}

func TestDecodeRxCRC(t *testing.T) {
	var dec Decoder
	var pkt Packet
	require.NoError(t, dec.Decode(newTimeoutReader(0xc0, 0x81, 0x02, 0x00, 0x75), &pkt))
	require.Equal(t, byte(0x75), dec.CRC())

	err := dec.Decode(newTimeoutReader(0xc0, 0x81, 0x02, 0x00, 0x76), &pkt)
	require.Equal(t, ErrChecksum, err)
	require.Equal(t, byte(0x75), dec.CRC())
}

func TestDecodeSkipsNoise(t *testing.T) {
	var pkt Packet
	frame := append([]byte{0x00, 0x12, 0xdb, 0xff}, goldenFrames[2].frame...)
	require.NoError(t, pkt.UnmarshalBinary(frame))
	require.Equal(t, []byte{0x55}, pkt.Data())
}

func TestDecodeSyncLimit(t *testing.T) {
	frame := []byte{0xc0, 0x81, 0x02, 0x00, 0x75}
	var pkt Packet

	noise := bytes.Repeat([]byte{0x11}, SyncScanLimit-1)
	require.NoError(t, pkt.UnmarshalBinary(append(noise, frame...)))

	noise = bytes.Repeat([]byte{0x11}, SyncScanLimit)
	require.Equal(t, ErrSync, pkt.UnmarshalBinary(append(noise, frame...)))
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		name  string
		frame []byte
		err   error
	}{
		{"bad escape", []byte{0xc0, 0x81, 0xdb, 0x01}, ErrStaffing},
		{"address in command field", []byte{0xc0, 0x81, 0x82, 0x00, 0x00}, ErrAddress},
		{"length above capacity", []byte{0xc0, 0x81, 0x02, 0xa0}, ErrLength},
		{"checksum", []byte{0xc0, 0x81, 0x02, 0x00, 0x76}, ErrChecksum},
		{"timeout during sync", []byte{0x11}, ErrTimeout},
		{"timeout in data", []byte{0xc0, 0x81, 0x02, 0x02, 0x01}, ErrTimeout},
		{"timeout after escape", []byte{0xc0, 0x81, 0x02, 0x01, 0xdb}, ErrTimeout},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var dec Decoder
			var pkt Packet
			err := dec.Decode(newTimeoutReader(tc.frame...), &pkt)
			require.Equal(t, tc.err, err)
		})
	}
}

func TestDecodeLongestPayload(t *testing.T) {
	var pkt Packet
	frame := []byte{0xc0, 0x81, 0x02, MaxPayloadLen}
	require.Equal(t, ErrTimeout, new(Decoder).Decode(newTimeoutReader(frame...), &pkt))
}

func TestDecodeTransportError(t *testing.T) {
	var pkt Packet
	err := pkt.UnmarshalBinary([]byte{0xc0, 0x81})
	var terr *TransportError
	require.True(t, errors.As(err, &terr))
	require.Equal(t, "read", terr.Op)
	require.Equal(t, io.EOF, terr.Err)
	require.Equal(t, OutcomeTransportError, OutcomeOf(err))
}

func TestRoundTrip(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	randByte := func() byte {
		switch rnd.Intn(4) {
		case 0:
			return FrameEnd
		case 1:
			return FrameEsc
		}
		return byte(rnd.Intn(256))
	}
	for i := 0; i < 500; i++ {
		data := make([]byte, rnd.Intn(MaxPayloadLen+1))
		for n := range data {
			data[n] = randByte()
		}
		addr := byte(rnd.Intn(MaxAddress + 1))
		cmd := Command(rnd.Intn(0x80))
		pkt, err := NewPacket(addr, cmd, data...)
		require.NoError(t, err)

		var enc Encoder
		frame, err := enc.Encode(pkt)
		require.NoError(t, err)

		var dec Decoder
		var out Packet
		require.NoError(t, dec.Decode(newTimeoutReader(frame...), &out))
		require.Equal(t, addr, out.Address)
		require.Equal(t, cmd, out.Command)
		require.Equal(t, len(data), int(out.Len))
		require.True(t, bytes.Equal(data, out.Data()))
		require.Equal(t, enc.CRC(), dec.CRC())
	}
}

func TestDecodeDetectsBitFlips(t *testing.T) {
	packets := []struct {
		addr byte
		cmd  Command
		data []byte
	}{
		{1, CmdEcho, []byte{0x55}},
		{5, CmdGetInfo, []byte{0xc0, 0xdb, 0x10, 0x20}},
		{0x12, CmdSetNodeAddress, []byte{1, 2, 3, 4, 5, 6, 7, 8}},
	}
	for _, p := range packets {
		pkt, err := NewPacket(p.addr, p.cmd, p.data...)
		require.NoError(t, err)
		frame, err := pkt.MarshalBinary()
		require.NoError(t, err)
		for n := range frame {
			for bit := uint(0); bit < 8; bit++ {
				corrupted := append([]byte(nil), frame...)
				corrupted[n] ^= 1 << bit
				var out Packet
				require.Errorf(t, out.UnmarshalBinary(corrupted), "%s: flip bit %d of byte %d", pkt, bit, n)
			}
		}
	}
}

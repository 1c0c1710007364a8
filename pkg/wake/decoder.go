package wake

import (
	"bytes"
	"errors"
)

// SyncScanLimit is the maximum number of bytes scanned for a frame start.
const SyncScanLimit = 512

// ByteReader is the source of received bytes. ReadByte blocks for at most
// the configured timeout and returns ErrTimeout when it expires.
type ByteReader interface {
	ReadByte() (byte, error)
}

type decodeState int

const (
	stateAddrOrCmd decodeState = iota // first field: address (b.7=1) or command
	stateCmd                          // command after address
	stateLen                          // payload length
	stateData                         // payload bytes
	stateCRC                          // trailing checksum
)

// Decoder reconstructs packets from a byte stream.
type Decoder struct {
	crc byte
}

// CRC returns the checksum computed over the last received frame, before
// its trailing checksum byte was folded in.
func (d *Decoder) CRC() byte {
	return d.crc
}

// Decode reads one frame from r into pkt. On failure the content of pkt is
// undefined.
func (d *Decoder) Decode(r ByteReader, pkt *Packet) error {
	if err := d.sync(r); err != nil {
		return err
	}
	crc := NewCRC8(Seed).Update(FrameEnd)
	pkt.Address, pkt.Len = 0, 0
	state, pos := stateAddrOrCmd, byte(0)
	for {
		b, err := d.readUnescaped(r)
		if err != nil {
			return err
		}
		switch state {
		case stateAddrOrCmd:
			if b&addressFlag != 0 {
				pkt.Address, state = b&^addressFlag, stateCmd
			} else {
				pkt.Command, state = Command(b), stateLen
			}
		case stateCmd:
			if b&addressFlag != 0 {
				return ErrAddress
			}
			pkt.Command, state = Command(b), stateLen
		case stateLen:
			if b > MaxPayloadLen {
				return ErrLength
			}
			pkt.Len, pos = b, 0
			if state = stateData; b == 0 {
				state = stateCRC
			}
		case stateData:
			pkt.Payload[pos] = b
			if pos++; pos >= pkt.Len {
				state = stateCRC
			}
		case stateCRC:
			d.crc = crc.Result()
			if crc.Update(b) != 0 {
				return ErrChecksum
			}
			return nil
		}
		crc = crc.Update(b)
	}
}

func (d *Decoder) sync(r ByteReader) error {
	for i := 0; i < SyncScanLimit; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return readError(err)
		}
		if b == FrameEnd {
			return nil
		}
	}
	return ErrSync
}

func (d *Decoder) readUnescaped(r ByteReader) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, readError(err)
	}
	if b != FrameEsc {
		return b, nil
	}
	if b, err = r.ReadByte(); err != nil {
		return 0, readError(err)
	}
	switch b {
	case TFrameEnd:
		return FrameEnd, nil
	case TFrameEsc:
		return FrameEsc, nil
	}
	return 0, ErrStaffing
}

func readError(err error) error {
	if errors.Is(err, ErrTimeout) {
		return err
	}
	return &TransportError{Op: "read", Err: err}
}

// UnmarshalBinary decodes the first frame found in data.
func (p *Packet) UnmarshalBinary(data []byte) error {
	var dec Decoder
	return dec.Decode(bytes.NewReader(data), p)
}

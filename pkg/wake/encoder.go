package wake

import "io"

// Framing bytes.
const (
	FrameEnd  byte = 0xC0 // FEND
	FrameEsc  byte = 0xDB // FESC
	TFrameEnd byte = 0xDC // transposed FEND
	TFrameEsc byte = 0xDD // transposed FESC
)

// MaxFrameLen is the longest possible encoded frame:
// FEND + every other byte escaped.
const MaxFrameLen = 1 + 2*(1+1+1+MaxPayloadLen+1)

// Encoder builds wire frames from packets.
type Encoder struct {
	crc byte
}

// CRC returns the checksum of the last encoded frame.
func (e *Encoder) CRC() byte {
	return e.crc
}

// Encode returns the escaped frame of pkt.
func (e *Encoder) Encode(pkt *Packet) ([]byte, error) {
	return e.AppendFrame(make([]byte, 0, MaxFrameLen), pkt)
}

// AppendFrame appends the escaped frame of pkt to dst.
func (e *Encoder) AppendFrame(dst []byte, pkt *Packet) ([]byte, error) {
	if err := pkt.Validate(); err != nil {
		return dst, err
	}
	crc := NewCRC8(Seed).Update(FrameEnd)
	dst = append(dst, FrameEnd)
	put := func(b byte) {
		crc = crc.Update(b)
		dst = appendEscaped(dst, b)
	}
	if !pkt.IsBroadcast() {
		put(pkt.Address | addressFlag)
	}
	put(byte(pkt.Command))
	put(pkt.Len)
	for _, b := range pkt.Data() {
		put(b)
	}
	e.crc = crc.Result()
	return appendEscaped(dst, e.crc), nil
}

func appendEscaped(dst []byte, b byte) []byte {
	switch b {
	case FrameEnd:
		return append(dst, FrameEsc, TFrameEnd)
	case FrameEsc:
		return append(dst, FrameEsc, TFrameEsc)
	}
	return append(dst, b)
}

// MarshalBinary returns the encoded frame.
func (p *Packet) MarshalBinary() ([]byte, error) {
	var enc Encoder
	return enc.Encode(p)
}

// WriteTo writes the encoded frame in a single Write.
func (p *Packet) WriteTo(w io.Writer) (int64, error) {
	frame, err := p.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(frame)
	return int64(n), err
}

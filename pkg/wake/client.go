package wake

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/golang/glog"
)

// DefaultTimeout is the reply timeout used by the command helpers.
const DefaultTimeout = time.Second

// Client runs request/response exchanges over a Transport.
// It's not safe for concurrent use: the protocol allows one exchange
// in flight.
type Client struct {
	Transport Transport
	// Timeout is used by Exec and the command helpers.
	Timeout time.Duration

	enc     Encoder
	dec     Decoder
	outcome Outcome
	frame   []byte
	reply   Packet
}

// NewClient creates a client over t.
func NewClient(t Transport) *Client {
	return &Client{
		Transport: t,
		Timeout:   DefaultTimeout,
		frame:     make([]byte, 0, MaxFrameLen),
	}
}

// Open opens the transport and drops stale buffered data.
func (c *Client) Open() error {
	if err := c.Transport.Open(); err != nil {
		return &TransportError{Op: "open", Err: err}
	}
	if err := c.Transport.Reset(); err != nil {
		return &TransportError{Op: "reset", Err: err}
	}
	return nil
}

// Close closes the transport.
func (c *Client) Close() error {
	return c.Transport.Close()
}

// TxCRC returns the checksum of the last transmitted frame.
func (c *Client) TxCRC() byte {
	return c.enc.CRC()
}

// RxCRC returns the checksum computed over the last received frame.
func (c *Client) RxCRC() byte {
	return c.dec.CRC()
}

// LastOutcome classifies the last exchange attempted on the wire.
func (c *Client) LastOutcome() Outcome {
	return c.outcome
}

// Request transmits pkt and, unless it's a broadcast, waits up to timeout
// for each byte of the reply. On success pkt is overwritten by the reply.
// Invalid packets are rejected before anything is transmitted.
func (c *Client) Request(pkt *Packet, timeout time.Duration) error {
	if err := pkt.Validate(); err != nil {
		return err
	}
	err := c.request(pkt, timeout)
	c.outcome = OutcomeOf(err)
	if err != nil {
		glog.V(1).Infof("request %s failed: %v", pkt, err)
	}
	return err
}

func (c *Client) request(pkt *Packet, timeout time.Duration) (err error) {
	if c.frame, err = c.enc.AppendFrame(c.frame[:0], pkt); err != nil {
		return err
	}
	if glog.V(2) {
		glog.Infof("TX % x", c.frame)
	}
	if err = c.Transport.Send(c.frame); err != nil {
		return &TransportError{Op: "write", Err: err}
	}
	if pkt.IsBroadcast() {
		return nil
	}
	if err = c.Transport.SetTimeout(timeout); err != nil {
		return &TransportError{Op: "set timeout", Err: err}
	}
	if err = c.dec.Decode(c.Transport, &c.reply); err != nil {
		return err
	}
	if glog.V(2) {
		glog.Infof("RX %s crc=%02x", &c.reply, c.dec.CRC())
	}
	*pkt = c.reply
	return nil
}

// Exec sends cmd with data to addr and returns the reply data following
// the status byte. Broadcasts return no data.
func (c *Client) Exec(addr byte, cmd Command, data ...byte) ([]byte, error) {
	pkt, err := c.exchange(addr, cmd, data)
	if err != nil || pkt == nil {
		return nil, err
	}
	reply := pkt.Data()
	if len(reply) == 0 {
		return nil, fmt.Errorf("%w: %s without status", ErrUnexpectedReply, pkt.Command)
	}
	if code := ErrCode(reply[0]); code != ErrNo {
		return nil, &DeviceError{Code: code}
	}
	return reply[1:], nil
}

// exchange runs a request and checks the reply answers it. It returns a
// nil packet for broadcasts.
func (c *Client) exchange(addr byte, cmd Command, data []byte) (*Packet, error) {
	pkt, err := NewPacket(addr, cmd, data...)
	if err != nil {
		return nil, err
	}
	if err = c.Request(pkt, c.Timeout); err != nil {
		return nil, err
	}
	if addr == BroadcastAddress {
		return nil, nil
	}
	if pkt.Command == CmdErr {
		if pkt.Len == 0 {
			return nil, fmt.Errorf("%w: empty error reply", ErrUnexpectedReply)
		}
		return nil, &DeviceError{Code: ErrCode(pkt.Payload[0])}
	}
	if pkt.Address != addr || pkt.Command != cmd {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedReply, pkt)
	}
	return pkt, nil
}

// Nop checks the node at addr responds.
func (c *Client) Nop(addr byte) error {
	_, err := c.exchange(addr, CmdNop, nil)
	return err
}

// Echo sends data to addr and returns what the node echoed.
func (c *Client) Echo(addr byte, data ...byte) ([]byte, error) {
	pkt, err := c.exchange(addr, CmdEcho, data)
	if err != nil || pkt == nil {
		return nil, err
	}
	return append([]byte(nil), pkt.Data()...), nil
}

// SetNodeAddress assigns a new node address.
func (c *Client) SetNodeAddress(addr, newAddr byte) error {
	if newAddr == BroadcastAddress || newAddr > MaxAddress {
		return ErrInvalidAddress
	}
	_, err := c.Exec(addr, CmdSetNodeAddress, newAddr)
	return err
}

// SetGroupAddress assigns the group address of a node.
func (c *Client) SetGroupAddress(addr, group byte) error {
	if group > MaxAddress {
		return ErrInvalidAddress
	}
	_, err := c.Exec(addr, CmdSetGroupAddress, group)
	return err
}

// OpTime returns how long the node has been operating.
func (c *Client) OpTime(addr byte) (time.Duration, error) {
	data, err := c.Exec(addr, CmdGetOpTime)
	if err != nil {
		return 0, err
	}
	if len(data) < 4 {
		return 0, fmt.Errorf("%w: operating time needs 4 bytes, got %d", ErrUnexpectedReply, len(data))
	}
	return time.Duration(binary.BigEndian.Uint32(data)) * time.Second, nil
}

// On switches the node on.
func (c *Client) On(addr byte) error {
	_, err := c.Exec(addr, CmdOn)
	return err
}

// Off switches the node off.
func (c *Client) Off(addr byte) error {
	_, err := c.Exec(addr, CmdOff)
	return err
}

// Toggle toggles the on/off state of the node.
func (c *Client) Toggle(addr byte) error {
	_, err := c.Exec(addr, CmdToggleOnOff)
	return err
}

// SaveSettings persists the node settings.
func (c *Client) SaveSettings(addr byte) error {
	_, err := c.Exec(addr, CmdSaveSettings)
	return err
}

// Reboot restarts the node.
func (c *Client) Reboot(addr byte) error {
	_, err := c.Exec(addr, CmdReboot)
	return err
}

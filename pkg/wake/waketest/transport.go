// Package waketest provides an in-memory wake.Transport emulating nodes.
package waketest

import (
	"time"

	"github.com/robotalks/wake.go/pkg/wake"
)

// RespondFunc computes the reply of a node, nil for no reply.
type RespondFunc func(req *wake.Packet) *wake.Packet

// Transport decodes every sent frame and queues the encoded reply of
// Respond for reading. Reads beyond the queued bytes time out.
type Transport struct {
	Respond RespondFunc
	// Sent records the decoded requests.
	Sent     []wake.Packet
	Timeouts []time.Duration
	Opened   bool

	rx []byte
}

// New creates a Transport.
func New(respond RespondFunc) *Transport {
	return &Transport{Respond: respond}
}

// Echo replies with the request itself.
func Echo(req *wake.Packet) *wake.Packet {
	return req
}

// Reply creates a RespondFunc answering every request with data.
func Reply(data ...byte) RespondFunc {
	return func(req *wake.Packet) *wake.Packet {
		reply, err := wake.NewPacket(req.Address, req.Command, data...)
		if err != nil {
			panic(err)
		}
		return reply
	}
}

// Open implements wake.Transport.
func (t *Transport) Open() error {
	t.Opened = true
	return nil
}

// Close implements wake.Transport.
func (t *Transport) Close() error {
	t.Opened = false
	return nil
}

// Reset implements wake.Transport.
func (t *Transport) Reset() error {
	t.rx = nil
	return nil
}

// SetTimeout implements wake.Transport.
func (t *Transport) SetTimeout(d time.Duration) error {
	t.Timeouts = append(t.Timeouts, d)
	return nil
}

// Send implements wake.Transport.
func (t *Transport) Send(p []byte) error {
	var req wake.Packet
	if err := req.UnmarshalBinary(p); err != nil {
		return err
	}
	t.Sent = append(t.Sent, req)
	if t.Respond == nil {
		return nil
	}
	reply := t.Respond(&req)
	if reply == nil {
		return nil
	}
	frame, err := reply.MarshalBinary()
	if err != nil {
		return err
	}
	t.rx = append(t.rx, frame...)
	return nil
}

// Pending returns the number of queued bytes not read.
func (t *Transport) Pending() int {
	return len(t.rx)
}

// ReadByte implements wake.Transport.
func (t *Transport) ReadByte() (byte, error) {
	if len(t.rx) == 0 {
		return 0, wake.ErrTimeout
	}
	b := t.rx[0]
	t.rx = t.rx[1:]
	return b, nil
}

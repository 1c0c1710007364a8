// Package stream implements wake.Transport over a net.Conn, e.g. a
// serial-to-TCP converter or a websocket bridge.
package stream

import (
	"bufio"
	"errors"
	"io"
	"net"
	"time"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	"github.com/robotalks/wake.go/pkg/wake"
)

// ErrNotOpen indicates the connection is used before Open.
var ErrNotOpen = errors.New("connection not open")

// DialFunc establishes the connection.
type DialFunc func() (net.Conn, error)

// Transport is a net.Conn based transport.
type Transport struct {
	Name string
	Dial DialFunc

	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
}

// New creates a transport using dial.
func New(name string, dial DialFunc) *Transport {
	return &Transport{Name: name, Dial: dial, timeout: wake.DefaultTimeout}
}

// NewTCP creates a transport connecting to a TCP address.
func NewTCP(addr string) *Transport {
	return New("tcp://"+addr, func() (net.Conn, error) {
		return net.DialTimeout("tcp", addr, wake.DefaultTimeout)
	})
}

// NewWebSocket creates a transport connecting to a websocket URL.
// Frames are carried in binary messages.
func NewWebSocket(url, origin string) *Transport {
	return New(url, func() (net.Conn, error) {
		conn, err := websocket.Dial(url, "", origin)
		if err != nil {
			return nil, err
		}
		conn.PayloadType = websocket.BinaryFrame
		return conn, nil
	})
}

// Open implements wake.Transport.
func (t *Transport) Open() error {
	if t.conn != nil {
		return nil
	}
	conn, err := t.Dial()
	if err != nil {
		return err
	}
	t.conn, t.reader = conn, bufio.NewReader(conn)
	glog.Infof("%s connected", t.Name)
	return nil
}

// Close implements wake.Transport.
func (t *Transport) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn, t.reader = nil, nil
	return err
}

// Send implements wake.Transport.
func (t *Transport) Send(p []byte) error {
	if t.conn == nil {
		return ErrNotOpen
	}
	_, err := t.conn.Write(p)
	return err
}

// SetTimeout implements wake.Transport.
func (t *Transport) SetTimeout(d time.Duration) error {
	t.timeout = d
	return nil
}

// Reset implements wake.Transport. It drops buffered input and whatever
// is immediately readable from the connection.
func (t *Transport) Reset() error {
	if t.conn == nil {
		return ErrNotOpen
	}
	t.reader.Reset(t.conn)
	if err := t.conn.SetReadDeadline(time.Now()); err != nil {
		return err
	}
	var buf [256]byte
	for {
		if _, err := t.conn.Read(buf[:]); err != nil {
			if !isTimeout(err) {
				return err
			}
			break
		}
	}
	t.reader.Reset(t.conn)
	return nil
}

// ReadByte implements wake.Transport.
func (t *Transport) ReadByte() (byte, error) {
	if t.conn == nil {
		return 0, ErrNotOpen
	}
	if t.reader.Buffered() == 0 {
		// A closed peer fails the deadline, the read below reports it.
		err := t.conn.SetReadDeadline(time.Now().Add(t.timeout))
		if err != nil && !errors.Is(err, io.ErrClosedPipe) {
			return 0, err
		}
	}
	b, err := t.reader.ReadByte()
	if err != nil && isTimeout(err) {
		return 0, wake.ErrTimeout
	}
	return b, err
}

func isTimeout(err error) bool {
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

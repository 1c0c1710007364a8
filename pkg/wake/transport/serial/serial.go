// Package serial implements wake.Transport on a local serial port.
package serial

import (
	"errors"
	"io"
	"time"

	"github.com/golang/glog"
	bugst "go.bug.st/serial"

	"github.com/robotalks/wake.go/pkg/wake"
)

// DefaultBaudRate matches the node firmware default.
const DefaultBaudRate = 9600

// ErrNotOpen indicates the port is used before Open.
var ErrNotOpen = errors.New("serial port not open")

// Port is the part of go.bug.st/serial.Port used by Transport.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
	ResetInputBuffer() error
	ResetOutputBuffer() error
	SetDTR(dtr bool) error
	SetRTS(rts bool) error
}

// OpenFunc opens a serial port.
type OpenFunc func(name string, mode *bugst.Mode) (Port, error)

// OpenPort opens a port using go.bug.st/serial.
func OpenPort(name string, mode *bugst.Mode) (Port, error) {
	port, err := bugst.Open(name, mode)
	if err != nil {
		return nil, err
	}
	return port, nil
}

// Transport is a serial port transport, 8 data bits, no parity, 1 stop bit.
type Transport struct {
	Name string
	Mode bugst.Mode
	// OpenPort defaults to OpenPort.
	OpenPort OpenFunc

	port    Port
	timeout time.Duration
	buf     [256]byte
	pos     int
	end     int
}

// New creates a transport for the named port.
func New(name string, baud int) *Transport {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &Transport{
		Name: name,
		Mode: bugst.Mode{
			BaudRate: baud,
			DataBits: 8,
			Parity:   bugst.NoParity,
			StopBits: bugst.OneStopBit,
		},
		OpenPort: OpenPort,
		timeout:  wake.DefaultTimeout,
	}
}

// Ports lists the serial ports available on the system.
func Ports() ([]string, error) {
	return bugst.GetPortsList()
}

// Open implements wake.Transport.
func (t *Transport) Open() error {
	if t.port != nil {
		return nil
	}
	open := t.OpenPort
	if open == nil {
		open = OpenPort
	}
	port, err := open(t.Name, &t.Mode)
	if err != nil {
		return err
	}
	// DTR and RTS power some adapters' reset lines, keep them inactive.
	if err := port.SetDTR(false); err != nil {
		glog.Warningf("%s: clear DTR: %v", t.Name, err)
	}
	if err := port.SetRTS(false); err != nil {
		glog.Warningf("%s: clear RTS: %v", t.Name, err)
	}
	if err := port.SetReadTimeout(t.timeout); err != nil {
		port.Close()
		return err
	}
	t.port, t.pos, t.end = port, 0, 0
	glog.Infof("%s opened at %d baud", t.Name, t.Mode.BaudRate)
	return nil
}

// Close implements wake.Transport.
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}

// Send implements wake.Transport.
func (t *Transport) Send(p []byte) error {
	if t.port == nil {
		return ErrNotOpen
	}
	for len(p) > 0 {
		n, err := t.port.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

// SetTimeout implements wake.Transport.
func (t *Transport) SetTimeout(d time.Duration) error {
	if t.port != nil && d != t.timeout {
		if err := t.port.SetReadTimeout(d); err != nil {
			return err
		}
	}
	t.timeout = d
	return nil
}

// Reset implements wake.Transport.
func (t *Transport) Reset() error {
	if t.port == nil {
		return ErrNotOpen
	}
	t.pos, t.end = 0, 0
	if err := t.port.ResetInputBuffer(); err != nil {
		return err
	}
	return t.port.ResetOutputBuffer()
}

// ReadByte implements wake.Transport. go.bug.st/serial reports an expired
// read timeout as a read of zero bytes.
func (t *Transport) ReadByte() (byte, error) {
	if t.port == nil {
		return 0, ErrNotOpen
	}
	if t.pos >= t.end {
		n, err := t.port.Read(t.buf[:])
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, wake.ErrTimeout
		}
		t.pos, t.end = 0, n
	}
	b := t.buf[t.pos]
	t.pos++
	return b, nil
}

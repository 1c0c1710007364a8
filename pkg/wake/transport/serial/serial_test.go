package serial

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	bugst "go.bug.st/serial"

	"github.com/robotalks/wake.go/pkg/wake"
)

type fakePort struct {
	chunks   [][]byte
	written  []byte
	timeouts []time.Duration
	dtr, rts []bool
	resets   int
	closed   bool
	readErr  error
}

func (p *fakePort) Read(b []byte) (int, error) {
	if p.readErr != nil {
		return 0, p.readErr
	}
	if len(p.chunks) == 0 {
		return 0, nil
	}
	n := copy(b, p.chunks[0])
	p.chunks = p.chunks[1:]
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	// accept at most 2 bytes per call
	if len(b) > 2 {
		b = b[:2]
	}
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) Close() error {
	p.closed = true
	return nil
}

func (p *fakePort) SetReadTimeout(t time.Duration) error {
	p.timeouts = append(p.timeouts, t)
	return nil
}

func (p *fakePort) ResetInputBuffer() error {
	p.chunks = nil
	p.resets++
	return nil
}

func (p *fakePort) ResetOutputBuffer() error {
	return nil
}

func (p *fakePort) SetDTR(dtr bool) error {
	p.dtr = append(p.dtr, dtr)
	return nil
}

func (p *fakePort) SetRTS(rts bool) error {
	p.rts = append(p.rts, rts)
	return errors.New("not supported")
}

func openFake(t *testing.T, port *fakePort) *Transport {
	tr := New("/dev/ttyTEST", 0)
	opens := 0
	tr.OpenPort = func(name string, mode *bugst.Mode) (Port, error) {
		opens++
		require.Equal(t, 1, opens, "port opened twice")
		require.Equal(t, "/dev/ttyTEST", name)
		require.Equal(t, DefaultBaudRate, mode.BaudRate)
		require.Equal(t, 8, mode.DataBits)
		require.Equal(t, bugst.NoParity, mode.Parity)
		require.Equal(t, bugst.OneStopBit, mode.StopBits)
		return port, nil
	}
	require.NoError(t, tr.Open())
	require.NoError(t, tr.Open())
	return tr
}

func TestOpen(t *testing.T) {
	port := &fakePort{}
	tr := openFake(t, port)
	require.Equal(t, []bool{false}, port.dtr)
	require.Equal(t, []bool{false}, port.rts)
	require.Equal(t, []time.Duration{wake.DefaultTimeout}, port.timeouts)

	require.NoError(t, tr.Close())
	require.True(t, port.closed)
	require.NoError(t, tr.Close())
	_, err := tr.ReadByte()
	require.Equal(t, ErrNotOpen, err)
	require.Equal(t, ErrNotOpen, tr.Send([]byte{1}))
}

func TestOpenFailure(t *testing.T) {
	tr := New("/dev/ttyNONE", 115200)
	require.Equal(t, 115200, tr.Mode.BaudRate)
	tr.OpenPort = func(string, *bugst.Mode) (Port, error) {
		return nil, errors.New("no such file")
	}
	require.Error(t, tr.Open())
	require.Equal(t, ErrNotOpen, tr.Reset())
}

func TestReadByte(t *testing.T) {
	port := &fakePort{chunks: [][]byte{{1, 2, 3}, {4}}}
	tr := openFake(t, port)
	for _, expect := range []byte{1, 2, 3, 4} {
		b, err := tr.ReadByte()
		require.NoError(t, err)
		require.Equal(t, expect, b)
	}
	_, err := tr.ReadByte()
	require.Equal(t, wake.ErrTimeout, err)

	port.readErr = errors.New("device removed")
	_, err = tr.ReadByte()
	require.Equal(t, port.readErr, err)
}

func TestSetTimeout(t *testing.T) {
	port := &fakePort{}
	tr := openFake(t, port)
	require.NoError(t, tr.SetTimeout(wake.DefaultTimeout))
	require.NoError(t, tr.SetTimeout(20*time.Millisecond))
	require.NoError(t, tr.SetTimeout(20*time.Millisecond))
	require.Equal(t, []time.Duration{wake.DefaultTimeout, 20 * time.Millisecond}, port.timeouts)
}

func TestSendAndReset(t *testing.T) {
	port := &fakePort{chunks: [][]byte{{9, 8, 7}}}
	tr := openFake(t, port)
	require.NoError(t, tr.Send([]byte{0xc0, 0x81, 0x02, 0x00, 0x75}))
	require.Equal(t, []byte{0xc0, 0x81, 0x02, 0x00, 0x75}, port.written)

	b, err := tr.ReadByte()
	require.NoError(t, err)
	require.Equal(t, byte(9), b)
	require.NoError(t, tr.Reset())
	require.Equal(t, 1, port.resets)
	_, err = tr.ReadByte()
	require.Equal(t, wake.ErrTimeout, err, "buffered bytes must be dropped")
}

func TestClientOverSerial(t *testing.T) {
	port := &fakePort{chunks: [][]byte{{0xc0, 0x81, 0x02}, {0x01, 0x55, 0xe7}}}
	tr := New("/dev/ttyTEST", 0)
	tr.OpenPort = func(string, *bugst.Mode) (Port, error) { return port, nil }
	c := wake.NewClient(tr)
	require.NoError(t, tr.Open())
	data, err := c.Echo(1, 0x55)
	require.NoError(t, err)
	require.Equal(t, []byte{0x55}, data)
	require.Equal(t, []byte{0xc0, 0x81, 0x02, 0x01, 0x55, 0xe7}, port.written)
}

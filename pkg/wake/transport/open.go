// Package transport selects a wake.Transport by URL.
//
// Supported forms:
//
//   /dev/ttyUSB0, COM3          local serial port
//   serial:///dev/ttyUSB0       local serial port
//   tcp://host:port             serial-to-TCP converter
//   ws://host/path, wss://...   websocket bridge
package transport

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/robotalks/wake.go/pkg/wake"
	"github.com/robotalks/wake.go/pkg/wake/transport/serial"
	"github.com/robotalks/wake.go/pkg/wake/transport/stream"
)

// New creates a transport from a port name or URL. baud only applies to
// serial ports. The transport is not opened.
func New(port string, baud int) (wake.Transport, error) {
	if port == "" {
		return nil, fmt.Errorf("port not specified")
	}
	if !strings.Contains(port, "://") {
		return serial.New(port, baud), nil
	}
	u, err := url.Parse(port)
	if err != nil {
		return nil, fmt.Errorf("invalid port URL: %w", err)
	}
	switch u.Scheme {
	case "serial":
		name := u.Path
		if u.Host != "" {
			name = u.Host + u.Path
		}
		return serial.New(name, baud), nil
	case "tcp":
		if u.Host == "" {
			return nil, fmt.Errorf("missing host in %q", port)
		}
		return stream.NewTCP(u.Host), nil
	case "ws":
		return stream.NewWebSocket(port, "http://"+u.Host), nil
	case "wss":
		return stream.NewWebSocket(port, "https://"+u.Host), nil
	default:
		return nil, fmt.Errorf("unknown port URL scheme: %q", u.Scheme)
	}
}

package wake

import "time"

// Transport is the byte stream connecting the host to the nodes.
// It's exclusively owned by one Client.
type Transport interface {
	// Open opens the underlying device. Opening an open transport is a no-op.
	Open() error
	// Close releases the device. Closing a closed transport is a no-op.
	Close() error
	// Send writes all of p or fails.
	Send(p []byte) error
	// SetTimeout sets the timeout of each following ReadByte.
	SetTimeout(time.Duration) error
	// Reset drops any pending input and output.
	Reset() error

	ByteReader
}

package wake

import (
	"errors"
	"fmt"
)

var (
	// ErrSync indicates no frame start was found within the scan bound.
	ErrSync = errors.New("frame sync not found")
	// ErrStaffing indicates FESC is followed by an unknown transposed code.
	ErrStaffing = errors.New("invalid escape sequence")
	// ErrAddress indicates the command field carries the address bit.
	ErrAddress = errors.New("address bit set in command field")
	// ErrLength indicates the length field exceeds the payload capacity.
	ErrLength = errors.New("payload length out of range")
	// ErrChecksum indicates the frame checksum doesn't match.
	ErrChecksum = errors.New("checksum mismatch")
	// ErrTimeout indicates no byte arrived within the configured timeout.
	// Transports must return it from ReadByte on expiry.
	ErrTimeout = errors.New("read timeout")

	// ErrPayloadTooLong indicates more than MaxPayloadLen bytes of data.
	ErrPayloadTooLong = errors.New("payload too long")
	// ErrInvalidAddress indicates an address beyond 7 bits.
	ErrInvalidAddress = errors.New("invalid address")
	// ErrInvalidCommand indicates a command with bit 7 set.
	ErrInvalidCommand = errors.New("invalid command")

	// ErrUnexpectedReply indicates the reply doesn't answer the request.
	ErrUnexpectedReply = errors.New("unexpected reply")
)

// TransportError wraps a failure of the underlying transport.
type TransportError struct {
	Op  string
	Err error
}

// Error implements error.
func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

// Unwrap returns the cause.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// DeviceError wraps the status code replied by a node.
type DeviceError struct {
	Code ErrCode
}

// Error implements error.
func (e *DeviceError) Error() string {
	return fmt.Sprintf("device error %d: %s", byte(e.Code), e.Code)
}

// Outcome classifies the result of a request.
type Outcome int

// Outcomes.
const (
	OutcomeOK Outcome = iota
	OutcomeTransportError
	OutcomeSyncError
	OutcomeStaffingError
	OutcomeAddressError
	OutcomeLengthError
	OutcomeChecksumError
	OutcomeTimeout
)

var outcomeStrings = [...]string{
	OutcomeOK:             "ok",
	OutcomeTransportError: "transport error",
	OutcomeSyncError:      "sync error",
	OutcomeStaffingError:  "staffing error",
	OutcomeAddressError:   "address error",
	OutcomeLengthError:    "length error",
	OutcomeChecksumError:  "checksum error",
	OutcomeTimeout:        "timeout",
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o >= 0 && int(o) < len(outcomeStrings) {
		return outcomeStrings[o]
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// OutcomeOf classifies err. A timeout wrapped by a transport is still
// reported as OutcomeTimeout; anything unrecognized is a transport error.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrTimeout):
		return OutcomeTimeout
	case errors.Is(err, ErrSync):
		return OutcomeSyncError
	case errors.Is(err, ErrStaffing):
		return OutcomeStaffingError
	case errors.Is(err, ErrAddress):
		return OutcomeAddressError
	case errors.Is(err, ErrLength):
		return OutcomeLengthError
	case errors.Is(err, ErrChecksum):
		return OutcomeChecksumError
	}
	return OutcomeTransportError
}

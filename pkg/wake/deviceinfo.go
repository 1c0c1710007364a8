package wake

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	fx "github.com/robotalks/wake.go/pkg/framework"
)

// ErrDescriptorTooShort indicates a reply shorter than its layout.
var ErrDescriptorTooShort = errors.New("descriptor too short")

// Capability is a device class a node implements. It's also the bit
// index in the capability mask.
type Capability byte

// Capabilities.
const (
	CapLEDDriver Capability = iota
	CapPowerSwitch
	CapRGBLEDDriver
	CapGenericIO
	CapSensor
	CapPowerSupply
	CapReserved
	CapCustomDevice

	capabilityCount = 8
)

var capabilityNames = [capabilityCount]string{
	CapLEDDriver:    "led-driver",
	CapPowerSwitch:  "power-switch",
	CapRGBLEDDriver: "rgb-led-driver",
	CapGenericIO:    "generic-io",
	CapSensor:       "sensor",
	CapPowerSupply:  "power-supply",
	CapReserved:     "reserved",
	CapCustomDevice: "custom-device",
}

// String implements fmt.Stringer.
func (c Capability) String() string {
	if c < capabilityCount {
		return capabilityNames[c]
	}
	return fmt.Sprintf("Capability(%d)", byte(c))
}

// CapabilityMask has bit n set when Capability(n) is available.
type CapabilityMask byte

// Has tests a capability.
func (m CapabilityMask) Has(c Capability) bool {
	return c < capabilityCount && m&(1<<c) != 0
}

// Capabilities lists the available capabilities in bit order.
func (m CapabilityMask) Capabilities() []Capability {
	var caps []Capability
	for c := Capability(0); c < capabilityCount; c++ {
		if m.Has(c) {
			caps = append(caps, c)
		}
	}
	return caps
}

// Descriptor describes one capability of a node. The set of
// implementations is closed: one per Capability.
type Descriptor interface {
	Capability() Capability
	String() string

	descriptor()
}

// ChannelRating is the layout shared by channel based power devices.
type ChannelRating struct {
	Channels uint8  `json:"channels"`
	PowerW   uint16 `json:"power_w"`
}

// String implements fmt.Stringer.
func (r ChannelRating) String() string {
	return fmt.Sprintf("%d channel(s), %d W", r.Channels, r.PowerW)
}

// LEDDriver describes CapLEDDriver.
type LEDDriver struct{ ChannelRating }

// PowerSwitch describes CapPowerSwitch.
type PowerSwitch struct{ ChannelRating }

// RGBLEDDriver describes CapRGBLEDDriver.
type RGBLEDDriver struct{ ChannelRating }

// PowerSupply describes CapPowerSupply.
type PowerSupply struct{ ChannelRating }

// GenericIO describes CapGenericIO.
type GenericIO struct {
	Inputs      uint8  `json:"inputs"`
	Outputs     uint8  `json:"outputs"`
	MemoryBytes uint16 `json:"memory_bytes"`
}

// SensorTypes is a bitmask of sensing abilities.
type SensorTypes byte

// Sensor types.
const (
	SensorTemperature SensorTypes = 1 << iota
	SensorHumidity
	SensorPressure
	SensorLight
	SensorMotion
	SensorVoltage
	SensorCurrent
	SensorGas
)

var sensorTypeNames = [...]string{
	"temperature", "humidity", "pressure", "light",
	"motion", "voltage", "current", "gas",
}

// String implements fmt.Stringer.
func (t SensorTypes) String() string {
	var names []string
	for n, name := range sensorTypeNames {
		if t&(1<<uint(n)) != 0 {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

// Sensor describes CapSensor.
type Sensor struct {
	Types SensorTypes `json:"types"`
}

// Reserved describes CapReserved. Its layout isn't defined, so the
// descriptor is kept as is.
type Reserved struct {
	Raw []byte `json:"raw"`
}

// CustomDevice describes CapCustomDevice.
type CustomDevice struct {
	ID string `json:"id"`
}

// Capability implements Descriptor.
func (LEDDriver) Capability() Capability { return CapLEDDriver }

// Capability implements Descriptor.
func (PowerSwitch) Capability() Capability { return CapPowerSwitch }

// Capability implements Descriptor.
func (RGBLEDDriver) Capability() Capability { return CapRGBLEDDriver }

// Capability implements Descriptor.
func (GenericIO) Capability() Capability { return CapGenericIO }

// Capability implements Descriptor.
func (Sensor) Capability() Capability { return CapSensor }

// Capability implements Descriptor.
func (PowerSupply) Capability() Capability { return CapPowerSupply }

// Capability implements Descriptor.
func (Reserved) Capability() Capability { return CapReserved }

// Capability implements Descriptor.
func (CustomDevice) Capability() Capability { return CapCustomDevice }

func (LEDDriver) descriptor()    {}
func (PowerSwitch) descriptor()  {}
func (RGBLEDDriver) descriptor() {}
func (GenericIO) descriptor()    {}
func (Sensor) descriptor()       {}
func (PowerSupply) descriptor()  {}
func (Reserved) descriptor()     {}
func (CustomDevice) descriptor() {}

// String implements fmt.Stringer.
func (d GenericIO) String() string {
	return fmt.Sprintf("%d input(s), %d output(s), %d bytes memory", d.Inputs, d.Outputs, d.MemoryBytes)
}

// String implements fmt.Stringer.
func (d Sensor) String() string {
	return "sensors: " + d.Types.String()
}

// String implements fmt.Stringer.
func (d Reserved) String() string {
	return fmt.Sprintf("[% x]", d.Raw)
}

// String implements fmt.Stringer.
func (d CustomDevice) String() string {
	return fmt.Sprintf("id %q", d.ID)
}

type descriptorLayout struct {
	size   int
	decode func([]byte) Descriptor
}

func channelRating(b []byte) ChannelRating {
	return ChannelRating{Channels: b[0], PowerW: binary.BigEndian.Uint16(b[1:])}
}

// descriptorLayouts maps every capability to its reply layout, sizes are
// minimums.
var descriptorLayouts = [capabilityCount]descriptorLayout{
	CapLEDDriver:    {3, func(b []byte) Descriptor { return LEDDriver{channelRating(b)} }},
	CapPowerSwitch:  {3, func(b []byte) Descriptor { return PowerSwitch{channelRating(b)} }},
	CapRGBLEDDriver: {3, func(b []byte) Descriptor { return RGBLEDDriver{channelRating(b)} }},
	CapGenericIO: {4, func(b []byte) Descriptor {
		return GenericIO{Inputs: b[0], Outputs: b[1], MemoryBytes: binary.BigEndian.Uint16(b[2:])}
	}},
	CapSensor:      {1, func(b []byte) Descriptor { return Sensor{Types: SensorTypes(b[0])} }},
	CapPowerSupply: {3, func(b []byte) Descriptor { return PowerSupply{channelRating(b)} }},
	CapReserved: {0, func(b []byte) Descriptor {
		return Reserved{Raw: append([]byte{}, b...)}
	}},
	CapCustomDevice: {0, func(b []byte) Descriptor {
		return CustomDevice{ID: strings.TrimRight(string(b), "\x00")}
	}},
}

// DecodeCapabilityMask interprets the reply of a GetInfo request without
// payload.
func DecodeCapabilityMask(reply *Packet) (CapabilityMask, error) {
	if reply.Command != CmdGetInfo {
		return 0, fmt.Errorf("%w: %s", ErrUnexpectedReply, reply.Command)
	}
	if reply.Len < 1 {
		return 0, ErrDescriptorTooShort
	}
	return CapabilityMask(reply.Payload[0]), nil
}

// DecodeDescriptor interprets the reply of a GetInfo request for
// capability c: a status byte followed by the descriptor.
func DecodeDescriptor(c Capability, reply *Packet) (Descriptor, error) {
	if c >= capabilityCount {
		return nil, fmt.Errorf("unknown capability %d", byte(c))
	}
	if reply.Command != CmdGetInfo {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedReply, reply.Command)
	}
	data := reply.Data()
	if len(data) < 1 {
		return nil, ErrDescriptorTooShort
	}
	if code := ErrCode(data[0]); code != ErrNo {
		return nil, &DeviceError{Code: code}
	}
	layout := descriptorLayouts[c]
	if data = data[1:]; len(data) < layout.size {
		return nil, fmt.Errorf("%w: %s needs %d bytes, got %d", ErrDescriptorTooShort, c, layout.size, len(data))
	}
	return layout.decode(data), nil
}

// CapabilityInfo is the result of querying one capability.
type CapabilityInfo struct {
	Capability Capability
	Descriptor Descriptor
	Err        error
}

// DeviceInfo describes a node.
type DeviceInfo struct {
	Address      byte
	Mask         CapabilityMask
	Capabilities []CapabilityInfo
}

// Err aggregates the errors of all capability queries.
func (i *DeviceInfo) Err() error {
	var errs fx.AggregatedError
	for _, c := range i.Capabilities {
		errs.Add(c.Err)
	}
	return errs.Aggregate()
}

// DeviceInfo queries the capability mask of the node at addr and then
// every available capability. A failed capability query is recorded in
// its CapabilityInfo and doesn't stop the others.
func (c *Client) DeviceInfo(addr byte) (*DeviceInfo, error) {
	if addr == BroadcastAddress {
		return nil, ErrInvalidAddress
	}
	pkt, err := c.exchange(addr, CmdGetInfo, nil)
	if err != nil {
		return nil, err
	}
	mask, err := DecodeCapabilityMask(pkt)
	if err != nil {
		return nil, err
	}
	info := &DeviceInfo{Address: addr, Mask: mask}
	for _, capability := range mask.Capabilities() {
		entry := CapabilityInfo{Capability: capability}
		pkt, err := c.exchange(addr, CmdGetInfo, []byte{byte(capability)})
		if err == nil {
			entry.Descriptor, err = DecodeDescriptor(capability, pkt)
		}
		if err != nil {
			entry.Err = fmt.Errorf("%s: %w", capability, err)
		}
		info.Capabilities = append(info.Capabilities, entry)
	}
	return info, nil
}

package wake

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapabilityMask(t *testing.T) {
	m := CapabilityMask(0x91)
	require.True(t, m.Has(CapLEDDriver))
	require.True(t, m.Has(CapSensor))
	require.True(t, m.Has(CapCustomDevice))
	require.False(t, m.Has(CapPowerSwitch))
	require.False(t, m.Has(Capability(8)))
	require.Equal(t, []Capability{CapLEDDriver, CapSensor, CapCustomDevice}, m.Capabilities())
	require.Empty(t, CapabilityMask(0).Capabilities())
	require.Equal(t, "rgb-led-driver", CapRGBLEDDriver.String())
	require.Equal(t, "Capability(9)", Capability(9).String())
}

func TestDecodeCapabilityMask(t *testing.T) {
	m, err := DecodeCapabilityMask(mustPacket(t, 1, CmdGetInfo, 0x28))
	require.NoError(t, err)
	require.Equal(t, CapabilityMask(0x28), m)

	_, err = DecodeCapabilityMask(mustPacket(t, 1, CmdGetInfo))
	require.Equal(t, ErrDescriptorTooShort, err)

	_, err = DecodeCapabilityMask(mustPacket(t, 1, CmdEcho, 0x28))
	require.True(t, errors.Is(err, ErrUnexpectedReply))
}

func TestDecodeDescriptor(t *testing.T) {
	testCases := []struct {
		name   string
		c      Capability
		data   []byte
		expect Descriptor
	}{
		{"led driver", CapLEDDriver, []byte{0, 4, 0x01, 0x2c}, LEDDriver{ChannelRating{Channels: 4, PowerW: 300}}},
		{"power switch", CapPowerSwitch, []byte{0, 1, 0x0d, 0xac}, PowerSwitch{ChannelRating{Channels: 1, PowerW: 3500}}},
		{"rgb led driver", CapRGBLEDDriver, []byte{0, 3, 0, 60}, RGBLEDDriver{ChannelRating{Channels: 3, PowerW: 60}}},
		{"generic io", CapGenericIO, []byte{0, 8, 4, 0x04, 0x00}, GenericIO{Inputs: 8, Outputs: 4, MemoryBytes: 1024}},
		{"sensor", CapSensor, []byte{0, 0x03}, Sensor{Types: SensorTemperature | SensorHumidity}},
		{"power supply", CapPowerSupply, []byte{0, 2, 0x00, 0xc8, 0xff}, PowerSupply{ChannelRating{Channels: 2, PowerW: 200}}},
		{"reserved", CapReserved, []byte{0, 0xaa, 0xbb}, Reserved{Raw: []byte{0xaa, 0xbb}}},
		{"reserved empty", CapReserved, []byte{0}, Reserved{Raw: []byte{}}},
		{"custom device", CapCustomDevice, []byte{0, 'd', 'i', 'm', '1', 0, 0}, CustomDevice{ID: "dim1"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := DecodeDescriptor(tc.c, mustPacket(t, 1, CmdGetInfo, tc.data...))
			require.NoError(t, err)
			require.Equal(t, tc.expect, d)
			require.Equal(t, tc.c, d.Capability())
		})
	}
}

func TestDecodeDescriptorErrors(t *testing.T) {
	_, err := DecodeDescriptor(CapGenericIO, mustPacket(t, 1, CmdGetInfo, 0, 1, 2, 3))
	require.True(t, errors.Is(err, ErrDescriptorTooShort))

	_, err = DecodeDescriptor(CapSensor, mustPacket(t, 1, CmdGetInfo))
	require.Equal(t, ErrDescriptorTooShort, err)

	_, err = DecodeDescriptor(CapSensor, mustPacket(t, 1, CmdGetInfo, byte(ErrNotReady), 1))
	var derr *DeviceError
	require.True(t, errors.As(err, &derr))
	require.Equal(t, ErrNotReady, derr.Code)

	_, err = DecodeDescriptor(CapSensor, mustPacket(t, 1, CmdEcho, 0, 1))
	require.True(t, errors.Is(err, ErrUnexpectedReply))

	_, err = DecodeDescriptor(Capability(8), mustPacket(t, 1, CmdGetInfo, 0))
	require.Error(t, err)
}

func TestDescriptorStrings(t *testing.T) {
	require.Equal(t, "4 channel(s), 300 W", LEDDriver{ChannelRating{4, 300}}.String())
	require.Equal(t, "sensors: temperature,gas", Sensor{Types: SensorTemperature | SensorGas}.String())
	require.Equal(t, "sensors: none", Sensor{}.String())
	require.Equal(t, `id "dim1"`, CustomDevice{ID: "dim1"}.String())
}

func TestDeviceInfo(t *testing.T) {
	tr := newFakeTransport(t)
	mask := byte(1<<CapLEDDriver | 1<<CapGenericIO | 1<<CapSensor)
	tr.respond = func(req *Packet) []*Packet {
		require.Equal(t, CmdGetInfo, req.Command)
		if req.Len == 0 {
			return []*Packet{mustPacket(t, req.Address, CmdGetInfo, mask)}
		}
		switch Capability(req.Payload[0]) {
		case CapLEDDriver:
			return []*Packet{mustPacket(t, req.Address, CmdGetInfo, 0, 2, 0x00, 0x64)}
		case CapGenericIO:
			return []*Packet{mustPacket(t, req.Address, CmdErr, byte(ErrNotImpl))}
		}
		// no reply for the sensor
		return nil
	}
	c := NewClient(tr)
	info, err := c.DeviceInfo(6)
	require.NoError(t, err)
	require.Equal(t, byte(6), info.Address)
	require.Equal(t, CapabilityMask(mask), info.Mask)
	require.Len(t, info.Capabilities, 3)

	led := info.Capabilities[0]
	require.Equal(t, CapLEDDriver, led.Capability)
	require.NoError(t, led.Err)
	require.Equal(t, LEDDriver{ChannelRating{Channels: 2, PowerW: 100}}, led.Descriptor)

	gio := info.Capabilities[1]
	require.Equal(t, CapGenericIO, gio.Capability)
	require.Nil(t, gio.Descriptor)
	var derr *DeviceError
	require.True(t, errors.As(gio.Err, &derr))
	require.Equal(t, ErrNotImpl, derr.Code)

	sensor := info.Capabilities[2]
	require.True(t, errors.Is(sensor.Err, ErrTimeout))
	require.Equal(t, OutcomeTimeout, c.LastOutcome())

	require.True(t, errors.Is(info.Err(), ErrTimeout))
	require.True(t, errors.As(info.Err(), &derr))
	require.Len(t, tr.tx, 4)
}

func TestDeviceInfoFailures(t *testing.T) {
	tr := newFakeTransport(t)
	c := NewClient(tr)
	_, err := c.DeviceInfo(BroadcastAddress)
	require.Equal(t, ErrInvalidAddress, err)
	require.Empty(t, tr.tx)

	_, err = c.DeviceInfo(1)
	require.Equal(t, ErrTimeout, err)

	tr.respond = replyWith(t)
	_, err = c.DeviceInfo(1)
	require.Equal(t, ErrDescriptorTooShort, err)
}

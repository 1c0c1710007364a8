// Package wake provides host side support of the Wake serial protocol.
package wake

// Wake is a master/slave request-response protocol between a host and
// microcontroller nodes sharing an asynchronous serial line.
//
// A frame starts with FEND (0xC0) and is followed by an optional address
// byte (bit 7 set), the command, the payload length, the payload and a
// CRC8 checksum. FEND and FESC (0xDB) occurring anywhere after the frame
// start are escaped as FESC TFEND / FESC TFESC, so FEND always marks the
// start of a frame.
//
// The checksum is seeded with 0xDE and covers the leading FEND and every
// unescaped byte after it. Folding a valid frame including its checksum
// byte yields zero.
//
// Address 0 is broadcast: nodes never reply to it.
//
// Producer: host (this package)
// Consumer: MCU nodes

package wake

import "fmt"

// Command is the opcode of a packet.
type Command byte

// Commands implemented by the node firmware.
const (
	CmdNop Command = iota
	CmdErr
	CmdEcho
	CmdGetInfo
	CmdSetNodeAddress
	CmdSetGroupAddress
	CmdGetOpTime
	CmdOff
	CmdOn
	CmdToggleOnOff
	CmdSaveSettings
	CmdReboot
)

var commandNames = map[Command]string{
	CmdNop:             "nop",
	CmdErr:             "err",
	CmdEcho:            "echo",
	CmdGetInfo:         "getinfo",
	CmdSetNodeAddress:  "setnodeaddress",
	CmdSetGroupAddress: "setgroupaddress",
	CmdGetOpTime:       "getoptime",
	CmdOff:             "off",
	CmdOn:              "on",
	CmdToggleOnOff:     "toggle",
	CmdSaveSettings:    "savesettings",
	CmdReboot:          "reboot",
}

// String implements fmt.Stringer.
func (c Command) String() string {
	if name, ok := commandNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Command(0x%02x)", byte(c))
}

// ParseCommand parses a command name or a numeric opcode.
func ParseCommand(s string) (Command, error) {
	for cmd, name := range commandNames {
		if name == s {
			return cmd, nil
		}
	}
	var n uint8
	if _, err := fmt.Sscan(s, &n); err != nil {
		return 0, fmt.Errorf("unknown command %q", s)
	}
	if n&addressFlag != 0 {
		return 0, ErrInvalidCommand
	}
	return Command(n), nil
}

// ErrCode is the status code reported by a node.
type ErrCode byte

// Status codes carried in replies.
const (
	ErrNo           ErrCode = iota // no error
	ErrTx                          // rx/tx error
	ErrBusy                        // device busy
	ErrNotReady                    // device not ready
	ErrParam                       // parameter value error
	ErrNotImpl                     // command not implemented
	ErrNoReply                     // no reply
	ErrNoCarrier                   // no carrier
	ErrAddrFormat                  // new address is wrong
	ErrEEPROMUnlock                // EEPROM wasn't unlocked
)

var errCodeStrings = [...]string{
	ErrNo:           "no error",
	ErrTx:           "rx/tx error",
	ErrBusy:         "device busy",
	ErrNotReady:     "device not ready",
	ErrParam:        "parameter value error",
	ErrNotImpl:      "command not implemented",
	ErrNoReply:      "no reply",
	ErrNoCarrier:    "no carrier",
	ErrAddrFormat:   "wrong address format",
	ErrEEPROMUnlock: "EEPROM is locked",
}

// String implements fmt.Stringer.
func (e ErrCode) String() string {
	if int(e) < len(errCodeStrings) {
		return errCodeStrings[e]
	}
	return fmt.Sprintf("unknown error %d", byte(e))
}

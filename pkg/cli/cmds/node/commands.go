// Package node provides shell commands talking to wake nodes.
package node

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/wake.go/pkg/cli/sh"
	"github.com/robotalks/wake.go/pkg/msgs"
	"github.com/robotalks/wake.go/pkg/wake"
)

func addressOnly(fn func(c *wake.Client, addr byte) error) sh.CmdFunc {
	return func(s *sh.Shell, args []string) (interface{}, error) {
		addr, err := s.Address(args, 0)
		if err != nil {
			return nil, err
		}
		return nil, fn(s.Client, addr)
	}
}

func requireArgs(args []string, n int, usage string) error {
	if len(args) < n {
		return fmt.Errorf("%s required", usage)
	}
	return nil
}

// addrCmdData parses ADDR CMD [BYTES...].
func addrCmdData(args []string) (addr byte, cmd wake.Command, data []byte, err error) {
	if err = requireArgs(args, 2, "ADDR CMD"); err != nil {
		return
	}
	if addr, err = sh.ParseAddress(args[0]); err != nil {
		return
	}
	if cmd, err = wake.ParseCommand(args[1]); err != nil {
		return
	}
	data, err = sh.ParseBytes(args[2:])
	return
}

func runEcho(s *sh.Shell, args []string) (interface{}, error) {
	if err := requireArgs(args, 1, "ADDR"); err != nil {
		return nil, err
	}
	addr, err := sh.ParseAddress(args[0])
	if err != nil {
		return nil, err
	}
	data, err := sh.ParseBytes(args[1:])
	if err != nil {
		return nil, err
	}
	return s.Client.Echo(addr, data...)
}

type infoResult struct {
	*wake.DeviceInfo
}

func (r infoResult) String() string {
	var w bytes.Buffer
	var names []string
	for _, c := range r.Mask.Capabilities() {
		names = append(names, c.String())
	}
	fmt.Fprintf(&w, "node %d: %s", r.Address, strings.Join(names, ","))
	for _, c := range r.Capabilities {
		if c.Err != nil {
			fmt.Fprintf(&w, "\n  %s", c.Err)
		} else {
			fmt.Fprintf(&w, "\n  %s: %s", c.Capability, c.Descriptor)
		}
	}
	return w.String()
}

func (r infoResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(msgs.InfoFrom(r.DeviceInfo))
}

func runInfo(s *sh.Shell, args []string) (interface{}, error) {
	addr, err := s.Address(args, 0)
	if err != nil {
		return nil, err
	}
	info, err := s.Client.DeviceInfo(addr)
	if err != nil {
		return nil, err
	}
	return infoResult{info}, nil
}

type reqResult struct {
	Address byte   `json:"address"`
	Command string `json:"command"`
	Data    []byte `json:"data"`
	Outcome string `json:"outcome"`
	TxCRC   byte   `json:"tx_crc"`
	RxCRC   byte   `json:"rx_crc,omitempty"`
	Sent    bool   `json:"sent,omitempty"`
}

func (r *reqResult) String() string {
	if r.Sent {
		return fmt.Sprintf("sent (tx crc %02x)", r.TxCRC)
	}
	return fmt.Sprintf("addr=%d cmd=%s data=[% x] (tx crc %02x, rx crc %02x)",
		r.Address, r.Command, r.Data, r.TxCRC, r.RxCRC)
}

func runReq(s *sh.Shell, args []string) (interface{}, error) {
	addr, cmd, data, err := addrCmdData(args)
	if err != nil {
		return nil, err
	}
	pkt, err := wake.NewPacket(addr, cmd, data...)
	if err != nil {
		return nil, err
	}
	c := s.Client
	if err = c.Request(pkt, c.Timeout); err != nil {
		return nil, fmt.Errorf("%s: %w", c.LastOutcome(), err)
	}
	res := &reqResult{
		Address: pkt.Address,
		Command: pkt.Command.String(),
		Data:    pkt.Data(),
		Outcome: c.LastOutcome().String(),
		TxCRC:   c.TxCRC(),
	}
	if addr == wake.BroadcastAddress {
		res.Sent, res.Data = true, nil
	} else {
		res.RxCRC = c.RxCRC()
	}
	return res, nil
}

func runExec(s *sh.Shell, args []string) (interface{}, error) {
	addr, cmd, data, err := addrCmdData(args)
	if err != nil {
		return nil, err
	}
	reply, err := s.Client.Exec(addr, cmd, data...)
	if err != nil || len(reply) == 0 {
		return nil, err
	}
	return reply, nil
}

func runSetAddr(s *sh.Shell, args []string) (interface{}, error) {
	if err := requireArgs(args, 2, "ADDR NEW_ADDR"); err != nil {
		return nil, err
	}
	addr, err := sh.ParseAddress(args[0])
	if err != nil {
		return nil, err
	}
	newAddr, err := sh.ParseAddress(args[1])
	if err != nil {
		return nil, err
	}
	return nil, s.Client.SetNodeAddress(addr, newAddr)
}

func runSetGroup(s *sh.Shell, args []string) (interface{}, error) {
	if err := requireArgs(args, 2, "ADDR GROUP"); err != nil {
		return nil, err
	}
	addr, err := sh.ParseAddress(args[0])
	if err != nil {
		return nil, err
	}
	group, err := sh.ParseAddress(args[1])
	if err != nil {
		return nil, err
	}
	return nil, s.Client.SetGroupAddress(addr, group)
}

func runOpTime(s *sh.Shell, args []string) (interface{}, error) {
	addr, err := s.Address(args, 0)
	if err != nil {
		return nil, err
	}
	d, err := s.Client.OpTime(addr)
	if err != nil {
		return nil, err
	}
	if s.OutputJSON {
		return map[string]float64{"seconds": d.Seconds()}, nil
	}
	return d, nil
}

func runCRC(s *sh.Shell, args []string) (interface{}, error) {
	data, err := sh.ParseBytes(args)
	if err != nil {
		return nil, err
	}
	crc := wake.Checksum(wake.Seed, data...)
	if s.OutputJSON {
		return map[string]byte{"crc": crc}, nil
	}
	return fmt.Sprintf("%02x", crc), nil
}

var (
	// NopCmd checks a node responds.
	NopCmd = ishell.Cmd{
		Name:    "nop",
		Aliases: []string{"ping"},
		Help:    "[ADDR]",
		Func:    sh.ClientCmd(addressOnly((*wake.Client).Nop)),
	}

	// EchoCmd sends bytes to be echoed.
	EchoCmd = ishell.Cmd{
		Name: "echo",
		Help: "ADDR [BYTES...]",
		Func: sh.ClientCmd(runEcho),
	}

	// InfoCmd queries device info.
	InfoCmd = ishell.Cmd{
		Name:    "info",
		Aliases: []string{"i"},
		Help:    "[ADDR]",
		Func:    sh.ClientCmd(runInfo),
	}

	// ReqCmd sends a raw request and prints the reply packet.
	ReqCmd = ishell.Cmd{
		Name:    "req",
		Aliases: []string{"r"},
		Help:    "ADDR CMD [BYTES...]",
		Func:    sh.ClientCmd(runReq),
	}

	// ExecCmd sends a command and checks the status byte of the reply.
	ExecCmd = ishell.Cmd{
		Name:    "exec",
		Aliases: []string{"x"},
		Help:    "ADDR CMD [BYTES...]",
		Func:    sh.ClientCmd(runExec),
	}

	// SetAddrCmd assigns a node address.
	SetAddrCmd = ishell.Cmd{
		Name: "setaddr",
		Help: "ADDR NEW_ADDR",
		Func: sh.ClientCmd(runSetAddr),
	}

	// SetGroupCmd assigns a group address.
	SetGroupCmd = ishell.Cmd{
		Name: "setgroup",
		Help: "ADDR GROUP",
		Func: sh.ClientCmd(runSetGroup),
	}

	// OpTimeCmd queries the operating time.
	OpTimeCmd = ishell.Cmd{
		Name: "optime",
		Help: "[ADDR]",
		Func: sh.ClientCmd(runOpTime),
	}

	// OnCmd switches a node on.
	OnCmd = ishell.Cmd{
		Name: "on",
		Help: "[ADDR]",
		Func: sh.ClientCmd(addressOnly((*wake.Client).On)),
	}

	// OffCmd switches a node off.
	OffCmd = ishell.Cmd{
		Name: "off",
		Help: "[ADDR]",
		Func: sh.ClientCmd(addressOnly((*wake.Client).Off)),
	}

	// ToggleCmd toggles a node.
	ToggleCmd = ishell.Cmd{
		Name:    "toggle",
		Aliases: []string{"t"},
		Help:    "[ADDR]",
		Func:    sh.ClientCmd(addressOnly((*wake.Client).Toggle)),
	}

	// SaveCmd persists node settings.
	SaveCmd = ishell.Cmd{
		Name: "save",
		Help: "[ADDR]",
		Func: sh.ClientCmd(addressOnly((*wake.Client).SaveSettings)),
	}

	// RebootCmd restarts a node.
	RebootCmd = ishell.Cmd{
		Name: "reboot",
		Help: "[ADDR]",
		Func: sh.ClientCmd(addressOnly((*wake.Client).Reboot)),
	}

	// CRCCmd computes the checksum of bytes.
	CRCCmd = ishell.Cmd{
		Name: "crc",
		Help: "BYTES...",
		Func: sh.PlainCmd(runCRC),
	}
)

func init() {
	sh.AddCmds(
		&NopCmd,
		&EchoCmd,
		&InfoCmd,
		&ReqCmd,
		&ExecCmd,
		&SetAddrCmd,
		&SetGroupCmd,
		&OpTimeCmd,
		&OnCmd,
		&OffCmd,
		&ToggleCmd,
		&SaveCmd,
		&RebootCmd,
		&CRCCmd,
	)
}

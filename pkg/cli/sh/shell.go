package sh

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/wake.go/pkg/config"
	"github.com/robotalks/wake.go/pkg/wake"
	"github.com/robotalks/wake.go/pkg/wake/transport/serial"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AutoOpen    bool

	Shell  *ishell.Shell
	Config *config.Config
	Client *wake.Client
}

const (
	shellKey     = "$shell"
	closedPrompt = "[closed] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&OpenCmd,
		&CloseCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *config.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeOpen wraps command func requires an open port.
func MustBeOpen(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Client == nil {
			c.Err(fmt.Errorf("port not open"))
			return
		}
		fn(c)
	}
}

// CmdFunc runs a command and returns the result to print. A nil result
// prints OK.
type CmdFunc func(s *Shell, args []string) (interface{}, error)

// ClientCmd wraps a CmdFunc requiring an open port.
func ClientCmd(fn CmdFunc) func(c *ishell.Context) {
	return MustBeOpen(PlainCmd(fn))
}

// PlainCmd wraps a CmdFunc.
func PlainCmd(fn CmdFunc) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		res, err := fn(s, c.Args)
		if err != nil {
			c.Err(err)
			return
		}
		out, err := s.Format(res)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(out)
	}
}

// Format renders a command result.
func (s *Shell) Format(res interface{}) (string, error) {
	if s.OutputJSON {
		if res == nil {
			res = map[string]bool{"ok": true}
		}
		out, err := json.Marshal(res)
		return string(out), err
	}
	switch v := res.(type) {
	case nil:
		return "OK", nil
	case []byte:
		return fmt.Sprintf("% x", v), nil
	case fmt.Stringer:
		return v.String(), nil
	}
	return fmt.Sprintf("%v", res), nil
}

// Open opens port, or the configured one when empty.
func (s *Shell) Open(port string, baud int) error {
	conf := *s.Config
	if port != "" {
		conf.Port = port
	}
	if baud > 0 {
		conf.Baud = baud
	}
	client, err := conf.OpenClient()
	if err != nil {
		return err
	}
	s.Close()
	s.Client = client
	s.Shell.SetPrompt(fmt.Sprintf("%s > ", conf.Port))
	return nil
}

// Close closes the current port.
func (s *Shell) Close() {
	if s.Client != nil {
		s.Client.Close()
		s.Client = nil
		s.Shell.SetPrompt(closedPrompt)
	}
}

// Address parses args[n] as a node address, or returns the configured
// default address when absent.
func (s *Shell) Address(args []string, n int) (byte, error) {
	if n >= len(args) {
		return s.Config.Address, nil
	}
	return ParseAddress(args[n])
}

// ParseAddress parses a node address, 0 for broadcast.
func ParseAddress(str string) (byte, error) {
	n, err := strconv.ParseUint(str, 0, 8)
	if err != nil || n > wake.MaxAddress {
		return 0, fmt.Errorf("invalid address %q", str)
	}
	return byte(n), nil
}

// ParseBytes parses bytes, each argument being a number (0x.. for hex)
// or a quoted ASCII string.
func ParseBytes(args []string) ([]byte, error) {
	var data []byte
	for _, arg := range args {
		if len(arg) >= 2 && arg[0] == '"' && arg[len(arg)-1] == '"' {
			data = append(data, arg[1:len(arg)-1]...)
			continue
		}
		n, err := strconv.ParseUint(arg, 0, 8)
		if err != nil {
			return nil, fmt.Errorf("invalid byte %q", arg)
		}
		data = append(data, byte(n))
	}
	return data, nil
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if s.AutoOpen && s.Config.Port != "" {
		if err := s.Open("", 0); err != nil {
			log.Fatalf("open %q failed: %v", s.Config.Port, err)
		}
	}
	defer s.Close()

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"l"},
		Help:    "",
		Func: PlainCmd(func(s *Shell, args []string) (interface{}, error) {
			ports, err := serial.Ports()
			if err != nil {
				return nil, err
			}
			if s.OutputJSON {
				if ports == nil {
					ports = []string{}
				}
				return ports, nil
			}
			if len(ports) == 0 {
				return "No serial ports found", nil
			}
			return strings.Join(ports, "\n"), nil
		}),
	}

	// OpenCmd opens a port.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[PORT] [BAUD]",
		Func: PlainCmd(func(s *Shell, args []string) (interface{}, error) {
			var port string
			var baud int
			if len(args) > 0 {
				port = args[0]
			}
			if len(args) > 1 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n <= 0 {
					return nil, fmt.Errorf("invalid BAUD %q", args[1])
				}
				baud = n
			}
			return nil, s.Open(port, baud)
		}),
	}

	// CloseCmd closes current port.
	CloseCmd = ishell.Cmd{
		Name:    "close",
		Aliases: []string{"c"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Close()
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	config.LogEnvErrors()
	New(config.NewConfig()).WithAutoOpen(true).Run(flag.Args()...)
}

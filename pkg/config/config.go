// Package config provides the common options of the wake commands.
//
// Values are taken in order from defaults, WAKE_* environment variables,
// a YAML file given by -config and the remaining command line flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/denisbrodbeck/machineid"
	"github.com/golang/glog"
	"gopkg.in/yaml.v3"

	"github.com/robotalks/wake.go/pkg/wake"
	"github.com/robotalks/wake.go/pkg/wake/transport"
)

// Config provides common options to reach nodes.
type Config struct {
	// Port is a serial port name or a transport URL, see transport.New.
	Port    string        `yaml:"port"`
	Baud    int           `yaml:"baud"`
	Timeout time.Duration `yaml:"timeout"`
	// Address is the default node address of commands.
	Address uint8 `yaml:"address"`

	// MQTTBrokerURL is used by the bridge, e.g. mqtt://host:1883/wake/
	MQTTBrokerURL string `yaml:"mqtt_url"`
	// NodeID identifies the bridge, defaults to the machine ID.
	NodeID string `yaml:"node_id"`
}

var defaultConfig = Config{
	Baud:          9600,
	Timeout:       wake.DefaultTimeout,
	Address:       1,
	MQTTBrokerURL: "mqtt://localhost:1883/wake/",
}

// envErrs holds malformed WAKE_* values found in init, logged by
// LogEnvErrors once glog flags are parsed.
var envErrs []error

func init() {
	envErrs = defaultConfig.ApplyEnv(os.Getenv)
}

// ApplyEnv overrides values from environment variables. Malformed values
// are skipped and returned.
func (c *Config) ApplyEnv(getenv func(string) string) (errs []error) {
	if val := getenv("WAKE_PORT"); val != "" {
		c.Port = val
	}
	if val := getenv("WAKE_BAUD"); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			c.Baud = n
		} else {
			errs = append(errs, fmt.Errorf("ignore WAKE_BAUD=%q", val))
		}
	}
	if val := getenv("WAKE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil && d > 0 {
			c.Timeout = d
		} else {
			errs = append(errs, fmt.Errorf("ignore WAKE_TIMEOUT=%q", val))
		}
	}
	if val := getenv("WAKE_ADDRESS"); val != "" {
		if n, err := strconv.ParseUint(val, 0, 8); err == nil && n <= wake.MaxAddress {
			c.Address = uint8(n)
		} else {
			errs = append(errs, fmt.Errorf("ignore WAKE_ADDRESS=%q", val))
		}
	}
	if val := getenv("WAKE_MQTT_URL"); val != "" {
		c.MQTTBrokerURL = val
	}
	if val := getenv("WAKE_NODE_ID"); val != "" {
		c.NodeID = val
	}
	return errs
}

// LogEnvErrors logs the malformed environment variables ignored by the
// default config. Call it after flag.Parse.
func LogEnvErrors() {
	for _, err := range envErrs {
		glog.Warning(err)
	}
	envErrs = nil
}

// LoadFile merges values from a YAML file. Absent keys keep their values.
func (c *Config) LoadFile(fn string) error {
	data, err := os.ReadFile(fn)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%s: %w", fn, err)
	}
	return c.Validate()
}

// Validate checks the values are usable.
func (c *Config) Validate() error {
	if c.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Baud)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %v", c.Timeout)
	}
	if c.Address > wake.MaxAddress {
		return fmt.Errorf("invalid address %d", c.Address)
	}
	return nil
}

type fileFlag struct {
	conf *Config
	fn   string
}

func (f *fileFlag) String() string { return f.fn }

func (f *fileFlag) Set(fn string) error {
	f.fn = fn
	return f.conf.LoadFile(fn)
}

type addressFlag struct {
	addr *uint8
}

func (f addressFlag) String() string {
	if f.addr == nil {
		return ""
	}
	return strconv.Itoa(int(*f.addr))
}

func (f addressFlag) Set(s string) error {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil || n > wake.MaxAddress {
		return fmt.Errorf("invalid address %q", s)
	}
	*f.addr = uint8(n)
	return nil
}

// SetupFlagSet registers flags updating c. -config is applied when
// parsed, so flags after it take precedence over the file.
func (c *Config) SetupFlagSet(fs *flag.FlagSet) {
	fs.Var(&fileFlag{conf: c}, "config", "YAML config file.")
	fs.StringVar(&c.Port, "port", c.Port, "Serial port or URL (tcp://, ws://).")
	fs.IntVar(&c.Baud, "baud", c.Baud, "Baud rate of serial port.")
	fs.DurationVar(&c.Timeout, "timeout", c.Timeout, "Reply timeout.")
	fs.Var(addressFlag{addr: &c.Address}, "addr", "Default node address.")
	fs.StringVar(&c.MQTTBrokerURL, "mqtt", c.MQTTBrokerURL, "MQTT broker URL with topic prefix.")
	fs.StringVar(&c.NodeID, "node-id", c.NodeID, "Node ID of the bridge.")
}

// SetupFlags sets up command line flags.
func SetupFlags() {
	defaultConfig.SetupFlagSet(flag.CommandLine)
}

// Default gets the default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a Config with default configurations.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// ID returns NodeID or an ID derived from the machine ID.
func (c *Config) ID() string {
	if c.NodeID != "" {
		return c.NodeID
	}
	id, err := machineid.ProtectedID("wake")
	if err != nil {
		glog.Warningf("machine ID: %v", err)
		host, _ := os.Hostname()
		return host
	}
	return id[:12]
}

// NewClient creates a client on the configured port without opening it.
func (c *Config) NewClient() (*wake.Client, error) {
	t, err := transport.New(c.Port, c.Baud)
	if err != nil {
		return nil, err
	}
	client := wake.NewClient(t)
	client.Timeout = c.Timeout
	return client, nil
}

// OpenClient creates and opens a client.
func (c *Config) OpenClient() (*wake.Client, error) {
	client, err := c.NewClient()
	if err != nil {
		return nil, err
	}
	if err = client.Open(); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

package config

import (
	"fmt"
	"time"
)

// Settings is the user configuration file. Every field has a flag
// counterpart on the CLI; flags override file values.
type Settings struct {
	Version int             `yaml:"version"`
	Device  DeviceSettings  `yaml:"device,omitempty"`
	Auth    AuthSettings    `yaml:"auth,omitempty"`
	Client  ClientSettings  `yaml:"client,omitempty"`
	Monitor MonitorSettings `yaml:"monitor,omitempty"`
}

// DeviceSettings identifies the stove controller on the network
type DeviceSettings struct {
	// MAC is the controller hardware address, used to locate the device
	// when Host is not set (DHCP leases move)
	MAC string `yaml:"mac,omitempty"`

	// Host is a fixed address or base URL; when set, discovery is skipped
	Host string `yaml:"host,omitempty"`

	// Subnet is the CIDR to sweep when resolving by MAC
	Subnet string `yaml:"subnet,omitempty"`

	// CGIPath overrides the default CGI endpoint path
	CGIPath string `yaml:"cgi_path,omitempty"`
}

// AuthSettings configures HTTP authentication against the controller.
// Passwords may be stored here for unattended use, but the CLI prompts
// when the mode requires one and none is present.
type AuthSettings struct {
	Mode     string `yaml:"mode,omitempty"` // "none", "basic" or "digest"
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// ClientSettings tunes the HTTP client behavior
type ClientSettings struct {
	TimeoutSeconds int `yaml:"timeout_seconds,omitempty"`
	Retries        int `yaml:"retries,omitempty"`
	RetryDelayMS   int `yaml:"retry_delay_ms,omitempty"`
}

// MonitorSettings tunes the watch loop
type MonitorSettings struct {
	PollIntervalSeconds      int `yaml:"poll_interval_seconds,omitempty"`
	DiscoveryIntervalSeconds int `yaml:"discovery_interval_seconds,omitempty"`
}

// Default values applied by NewSettings and by the CLI when neither the
// file nor a flag sets them.
const (
	DefaultTimeoutSeconds           = 5
	DefaultRetries                  = 2
	DefaultRetryDelayMS             = 2100
	DefaultPollIntervalSeconds      = 10
	DefaultDiscoveryIntervalSeconds = 60
)

// NewSettings creates Settings with default values
func NewSettings() *Settings {
	return &Settings{
		Version: 1,
		Auth:    AuthSettings{Mode: "none"},
		Client: ClientSettings{
			TimeoutSeconds: DefaultTimeoutSeconds,
			Retries:        DefaultRetries,
			RetryDelayMS:   DefaultRetryDelayMS,
		},
		Monitor: MonitorSettings{
			PollIntervalSeconds:      DefaultPollIntervalSeconds,
			DiscoveryIntervalSeconds: DefaultDiscoveryIntervalSeconds,
		},
	}
}

// Validate checks the settings for values that cannot work
func (s *Settings) Validate() error {
	if s.Version != 1 {
		return fmt.Errorf("unsupported config version: %d (expected 1)", s.Version)
	}
	switch s.Auth.Mode {
	case "", "none", "basic", "digest":
	default:
		return fmt.Errorf("invalid auth mode %q (expected none, basic or digest)", s.Auth.Mode)
	}
	if s.Client.TimeoutSeconds < 0 {
		return fmt.Errorf("client timeout must not be negative: %d", s.Client.TimeoutSeconds)
	}
	if s.Client.Retries < 0 {
		return fmt.Errorf("client retries must not be negative: %d", s.Client.Retries)
	}
	if s.Client.RetryDelayMS < 0 {
		return fmt.Errorf("client retry delay must not be negative: %d", s.Client.RetryDelayMS)
	}
	if s.Monitor.PollIntervalSeconds < 0 {
		return fmt.Errorf("poll interval must not be negative: %d", s.Monitor.PollIntervalSeconds)
	}
	if s.Monitor.DiscoveryIntervalSeconds < 0 {
		return fmt.Errorf("discovery interval must not be negative: %d", s.Monitor.DiscoveryIntervalSeconds)
	}
	return nil
}

// Timeout returns the client timeout as a duration
func (s *Settings) Timeout() time.Duration {
	return time.Duration(s.Client.TimeoutSeconds) * time.Second
}

// RetryDelay returns the retry delay as a duration
func (s *Settings) RetryDelay() time.Duration {
	return time.Duration(s.Client.RetryDelayMS) * time.Millisecond
}

// PollInterval returns the monitor poll interval as a duration
func (s *Settings) PollInterval() time.Duration {
	return time.Duration(s.Monitor.PollIntervalSeconds) * time.Second
}

// DiscoveryInterval returns the monitor rediscovery interval as a duration
func (s *Settings) DiscoveryInterval() time.Duration {
	return time.Duration(s.Monitor.DiscoveryIntervalSeconds) * time.Second
}

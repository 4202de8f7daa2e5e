package monitor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/afernandezluc/netflame/internal/discovery"
	"github.com/afernandezluc/netflame/internal/logging"
	"github.com/afernandezluc/netflame/internal/netflame"
)

// Default intervals for the watch loop
const (
	DefaultPollInterval      = 10 * time.Second
	DefaultDiscoveryInterval = 60 * time.Second
)

// Snapshot is an immutable view of the stove state captured on one poll
// tick. It is UI-friendly and serializable.
type Snapshot struct {
	IP                  string    `json:"ip"`
	Time                time.Time `json:"time"`
	StoveClock          string    `json:"stove_clock"`
	On                  bool      `json:"on"`
	Temperature         float64   `json:"temperature"`
	TemperatureSetpoint float64   `json:"temperature_setpoint"`
	PowerSetpoint       int       `json:"power_setpoint"`
	StateText           string    `json:"state_text"`
	State               string    `json:"state"`
	ModeText            string    `json:"mode_text"`
	ModeCode            int       `json:"mode_code"`
	AlarmText           string    `json:"alarm_text"`
	AlarmCode           string    `json:"alarm_code"`
}

// Config configures a Monitor
type Config struct {
	// MAC identifies the stove controller to locate
	MAC string

	// Resolver locates the controller IP by MAC. Required unless Host is set.
	Resolver discovery.Resolver

	// Host pins the controller to a fixed IP/host, skipping discovery
	Host string

	// Connect builds a device client for a discovered IP
	Connect func(ip string) (*netflame.Device, error)

	// PollInterval is the delay between telemetry reads once connected
	PollInterval time.Duration

	// DiscoveryInterval is the delay between discovery attempts while
	// the controller is not located
	DiscoveryInterval time.Duration
}

// Monitor owns all device I/O for a watch session. It alternates between
// two phases: discovery (locate the controller by MAC on the LAN) and
// polling (read telemetry periodically and emit snapshots). A failed poll
// drops the connection and returns to discovery, which covers both device
// restarts and DHCP lease changes.
type Monitor struct {
	cfg       Config
	snapshots chan Snapshot
	logger    *zap.Logger

	device *netflame.Device
	ip     string
}

// New creates a Monitor from the given config
func New(cfg Config) (*Monitor, error) {
	if cfg.Connect == nil {
		return nil, errors.New("monitor: Connect is required")
	}
	if cfg.Host == "" {
		if cfg.Resolver == nil {
			return nil, errors.New("monitor: either Host or Resolver is required")
		}
		if cfg.MAC == "" {
			return nil, errors.New("monitor: MAC is required when discovering")
		}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.DiscoveryInterval <= 0 {
		cfg.DiscoveryInterval = DefaultDiscoveryInterval
	}
	return &Monitor{
		cfg:       cfg,
		snapshots: make(chan Snapshot, 1),
		logger:    logging.GetLogger(),
	}, nil
}

// Snapshots returns the channel snapshots are delivered on. The channel is
// closed when Run returns.
func (m *Monitor) Snapshots() <-chan Snapshot {
	return m.snapshots
}

// Run drives the discovery/poll loop until ctx is cancelled. It always
// returns ctx.Err().
func (m *Monitor) Run(ctx context.Context) error {
	defer close(m.snapshots)

	for {
		if m.device == nil {
			if err := m.connect(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.logger.Warn("stove not located, will retry",
					zap.String("mac", m.cfg.MAC),
					zap.Duration("retry_in", m.cfg.DiscoveryInterval),
					zap.Error(err))
				if err := sleep(ctx, m.cfg.DiscoveryInterval); err != nil {
					return err
				}
				continue
			}
			m.logger.Info("connected to stove", zap.String("ip", m.ip))
		}

		if err := m.poll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Poll failed: drop the connection and return to discovery.
			m.logger.Warn("disconnected from stove",
				zap.String("ip", m.ip), zap.Error(err))
			m.device = nil
			m.ip = ""
			continue
		}

		if err := sleep(ctx, m.cfg.PollInterval); err != nil {
			return err
		}
	}
}

// connect locates the controller and validates connectivity with a full
// telemetry read.
func (m *Monitor) connect(ctx context.Context) error {
	ip := m.cfg.Host
	if ip == "" {
		var err error
		ip, err = m.cfg.Resolver.Resolve(ctx, m.cfg.MAC)
		if err != nil {
			return err
		}
	}

	device, err := m.cfg.Connect(ip)
	if err != nil {
		return fmt.Errorf("failed to build client for %s: %w", ip, err)
	}
	if _, err := device.Data(ctx); err != nil {
		return fmt.Errorf("stove at %s did not answer: %w", ip, err)
	}

	m.device = device
	m.ip = ip
	return nil
}

// poll reads one round of telemetry and emits a snapshot. A stale
// undelivered snapshot is replaced rather than blocking the loop.
func (m *Monitor) poll(ctx context.Context) error {
	data, err := m.device.Data(ctx)
	if err != nil {
		return err
	}
	alarm, err := m.device.Alarms(ctx)
	if err != nil {
		return err
	}
	clock, err := m.device.Hour(ctx)
	if err != nil {
		return err
	}

	snap := Snapshot{
		IP:                  m.ip,
		Time:                time.Now(),
		StoveClock:          clock.HHMM,
		On:                  data.On,
		Temperature:         data.Temperature,
		TemperatureSetpoint: data.TemperatureSetpoint,
		PowerSetpoint:       data.PowerSetpoint,
		StateText:           data.State.Description,
		State:               data.State.Public.String(),
		ModeText:            data.Mode.Description,
		ModeCode:            data.Mode.Code,
		AlarmText:           alarm.Description,
		AlarmCode:           alarm.Code,
	}

	select {
	case m.snapshots <- snap:
	default:
		select {
		case <-m.snapshots:
		default:
		}
		m.snapshots <- snap
	}
	return nil
}

// sleep waits for d or until ctx is cancelled
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

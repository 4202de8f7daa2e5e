package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// ServiceType is the mDNS service type the stove web servers advertise
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultBrowseTimeout bounds a single mDNS browse session
	DefaultBrowseTimeout = 10 * time.Second
)

// MDNSBrowser discovers stove controllers that advertise an HTTP service
// over multicast DNS. mDNS advertisements do not carry MAC addresses, so
// this browser locates devices by hostname instead; use LanScanner when
// only the MAC is known.
type MDNSBrowser struct {
	// Timeout is the maximum time to browse for advertisements
	Timeout time.Duration
}

// NewMDNSBrowser creates a browser with default settings
func NewMDNSBrowser() *MDNSBrowser {
	return &MDNSBrowser{Timeout: DefaultBrowseTimeout}
}

// Browse collects all HTTP services advertised on the local network and
// returns them as devices, sorted by IP.
func (b *MDNSBrowser) Browse(ctx context.Context) ([]*Device, error) {
	timeout := b.Timeout
	if timeout <= 0 {
		timeout = DefaultBrowseTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	devices := make([]*Device, 0)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entries {
			if device := deviceFromEntry(entry); device != nil {
				devices = append(devices, device)
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done

	sortDevices(devices)
	return devices, nil
}

// Lookup browses for a device advertising the given hostname and returns
// its IP. The comparison ignores case and the trailing ".local." suffix.
func (b *MDNSBrowser) Lookup(ctx context.Context, hostname string) (string, error) {
	devices, err := b.Browse(ctx)
	if err != nil {
		return "", err
	}
	want := normalizeHostname(hostname)
	for _, device := range devices {
		if normalizeHostname(device.Hostname) == want {
			return device.IP, nil
		}
	}
	return "", fmt.Errorf("no mDNS host named %q: %w", hostname, ErrNotFound)
}

// deviceFromEntry converts a zeroconf service entry to a Device.
// Entries without an IPv4 address are skipped.
func deviceFromEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry.HostName == "" || len(entry.AddrIPv4) == 0 {
		return nil
	}
	return &Device{
		IP:       entry.AddrIPv4[0].String(),
		Hostname: entry.HostName,
	}
}

func normalizeHostname(name string) string {
	name = strings.ToLower(strings.TrimSuffix(name, "."))
	return strings.TrimSuffix(name, ".local")
}

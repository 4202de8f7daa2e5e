package discovery

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/Ullaakut/nmap/v3"
	"go.uber.org/zap"

	"github.com/afernandezluc/netflame/internal/logging"
)

const (
	// DefaultScanTimeout bounds a single nmap ping sweep
	DefaultScanTimeout = 60 * time.Second
)

// LanScanner discovers hosts on a subnet with an nmap ping scan (-sn) and
// implements Resolver by matching MAC addresses against the results. MAC
// visibility requires the scanning host to share the L2 segment with the
// devices; nmap typically needs elevated privileges to read ARP replies.
type LanScanner struct {
	// CIDR is the subnet to sweep, e.g. "192.168.68.0/24"
	CIDR string

	// Timeout is the maximum time to wait for the sweep
	Timeout time.Duration

	// ResolveRDNS enables reverse DNS enrichment of the results
	ResolveRDNS bool
}

// NewLanScanner creates a scanner for the given subnet with default settings
func NewLanScanner(cidr string) *LanScanner {
	return &LanScanner{
		CIDR:    cidr,
		Timeout: DefaultScanTimeout,
	}
}

// Scan performs a ping sweep of the configured subnet and returns the hosts
// that responded, sorted by IP.
func (s *LanScanner) Scan(ctx context.Context) ([]*Device, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	scanner, err := nmap.NewScanner(
		ctx,
		nmap.WithTargets(s.CIDR),
		nmap.WithPingScan(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create nmap scanner: %w", err)
	}

	result, warnings, err := scanner.Run()
	if err != nil {
		return nil, fmt.Errorf("nmap ping scan of %s failed: %w", s.CIDR, err)
	}
	if warnings != nil && len(*warnings) > 0 {
		logging.GetLogger().Warn("nmap reported warnings",
			zap.String("cidr", s.CIDR),
			zap.Strings("warnings", *warnings))
	}

	devices := make([]*Device, 0, len(result.Hosts))
	for _, host := range result.Hosts {
		device := deviceFromHost(host)
		if device == nil {
			continue
		}
		if s.ResolveRDNS {
			device.RDNS = reverseDNS(ctx, device.IP)
		}
		devices = append(devices, device)
	}
	sortDevices(devices)

	logging.LogDiscovery("sweep complete",
		zap.String("cidr", s.CIDR),
		zap.Int("hosts", len(devices)))
	return devices, nil
}

// Resolve sweeps the subnet and returns the IP of the device whose MAC
// matches. Returns ErrNotFound when no responding host carries the MAC.
func (s *LanScanner) Resolve(ctx context.Context, mac string) (string, error) {
	devices, err := s.Scan(ctx)
	if err != nil {
		return "", err
	}
	if device := matchByMAC(devices, mac); device != nil {
		return device.IP, nil
	}
	return "", fmt.Errorf("no host with MAC %s on %s: %w", NormalizeMAC(mac), s.CIDR, ErrNotFound)
}

// matchByMAC finds the device with the given MAC, comparing normalized forms
func matchByMAC(devices []*Device, mac string) *Device {
	want := NormalizeMAC(mac)
	if want == "" {
		return nil
	}
	for _, device := range devices {
		if NormalizeMAC(device.MAC) == want {
			return device
		}
	}
	return nil
}

// deviceFromHost maps an nmap host entry to a Device. Hosts that are down
// or carry no IPv4 address are skipped.
func deviceFromHost(host nmap.Host) *Device {
	if host.Status.State != "up" {
		return nil
	}

	device := &Device{}
	for _, addr := range host.Addresses {
		switch addr.AddrType {
		case "ipv4":
			device.IP = addr.Addr
		case "mac":
			device.MAC = NormalizeMAC(addr.Addr)
			device.Vendor = addr.Vendor
		}
	}
	if device.IP == "" {
		return nil
	}

	for _, name := range host.Hostnames {
		if name.Name != "" {
			device.Hostname = name.Name
			break
		}
	}
	return device
}

// reverseDNS returns the first PTR name for ip, or "" if resolution fails
func reverseDNS(ctx context.Context, ip string) string {
	names, err := net.DefaultResolver.LookupAddr(ctx, ip)
	if err != nil || len(names) == 0 {
		return ""
	}
	return names[0]
}

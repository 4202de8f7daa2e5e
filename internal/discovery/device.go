package discovery

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Device represents a host discovered on the LAN
type Device struct {
	// IP is the IPv4 address (e.g., "192.168.68.54")
	IP string `json:"ip"`

	// Hostname is the name nmap reported for the host, if any
	Hostname string `json:"hostname,omitempty"`

	// MAC is the hardware address, normalized to upper-case colon form
	MAC string `json:"mac,omitempty"`

	// Vendor is the OUI vendor string nmap derives from the MAC
	Vendor string `json:"vendor,omitempty"`

	// RDNS is the reverse DNS name, when resolution is enabled
	RDNS string `json:"rdns,omitempty"`
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	mac := d.MAC
	if mac == "" {
		mac = "-"
	}
	return fmt.Sprintf("%s (MAC %s)", d.IP, mac)
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return "http://" + d.IP
}

// NormalizeMAC canonicalizes a MAC address for comparison: upper-case,
// colon-separated. Dashes and dots are accepted as input separators.
func NormalizeMAC(mac string) string {
	mac = strings.ToUpper(strings.TrimSpace(mac))
	mac = strings.NewReplacer("-", ":", ".", "").Replace(mac)
	if !strings.Contains(mac, ":") && len(mac) == 12 {
		var parts []string
		for i := 0; i < 12; i += 2 {
			parts = append(parts, mac[i:i+2])
		}
		mac = strings.Join(parts, ":")
	}
	return mac
}

// sortDevices orders devices by numeric IPv4 value, so 192.168.68.9 comes
// before 192.168.68.10.
func sortDevices(devices []*Device) {
	sort.Slice(devices, func(i, j int) bool {
		return ipKey(devices[i].IP) < ipKey(devices[j].IP)
	})
}

func ipKey(ip string) uint64 {
	var key uint64
	for _, part := range strings.Split(ip, ".") {
		n, err := strconv.ParseUint(part, 10, 64)
		if err != nil {
			return 0
		}
		key = key<<8 | n
	}
	return key
}

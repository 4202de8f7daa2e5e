// Package discovery locates pellet stove controllers on the local network.
//
// Controllers take their address from DHCP and expose no registration
// mechanism, so the only stable identity is the MAC address printed on the
// unit. The package offers two strategies:
//
//   - LanScanner sweeps a subnet with an nmap ping scan and matches hosts
//     by MAC. This is the reliable path but needs the nmap binary and
//     usually elevated privileges to see ARP-level MAC addresses.
//   - MDNSBrowser listens for "_http._tcp" advertisements and matches by
//     hostname, for controllers whose firmware announces itself over mDNS.
//
// Both return Device values; LanScanner additionally implements the
// Resolver interface used by the monitor to re-locate a device after a
// DHCP lease change.
//
//	scanner := discovery.NewLanScanner("192.168.68.0/24")
//	ip, err := scanner.Resolve(ctx, "AA:BB:CC:DD:EE:FF")
//	if errors.Is(err, discovery.ErrNotFound) {
//	    // device is offline or on another segment
//	}
package discovery

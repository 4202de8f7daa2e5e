// Package monitor implements the watch loop behind "netflame watch".
//
// A Monitor alternates between locating the stove controller on the LAN
// (by MAC, through a discovery.Resolver) and polling its telemetry. Each
// successful poll emits a Snapshot on a channel; any poll failure drops
// the connection and restarts discovery, so the loop survives device
// reboots and DHCP address changes without intervention.
package monitor

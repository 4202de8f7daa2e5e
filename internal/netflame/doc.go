// Package netflame provides a typed API for NetFlame-style pellet stove
// controllers on top of the low-level stove client.
//
// Where package stove speaks raw numeric operations and key=value text,
// this package knows the operation codes of the firmware and maps the
// replies into models: telemetry snapshots, alarm codes, operative modes
// and the internal clock.
//
//	dev, err := netflame.Connect("http://192.168.68.54",
//	    stove.WithBasicAuth("user", "secret"))
//	if err != nil {
//	    return err
//	}
//	data, err := dev.Data(ctx)
//
// Raw firmware codes (states, modes, alarms) are preserved alongside the
// normalized values so callers can handle firmware quirks directly.
package netflame

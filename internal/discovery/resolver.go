package discovery

import (
	"context"
	"errors"
)

// ErrNotFound is returned when discovery completes without locating the
// requested device.
var ErrNotFound = errors.New("device not found")

// Resolver locates a stove controller on the network by its MAC address
// and returns its current IPv4 address. Stove controllers get their IP
// from DHCP, so the MAC is the only stable identity.
type Resolver interface {
	Resolve(ctx context.Context, mac string) (string, error)
}

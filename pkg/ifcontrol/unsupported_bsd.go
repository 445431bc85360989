//go:build darwin || netbsd || openbsd

package ifcontrol

import (
	"fmt"

	"github.com/irctrakz/netif/pkg/core"
)

// CreateBridge is only implemented for Linux and FreeBSD.
func (c *Controller) CreateBridge(name string) error {
	return fmt.Errorf("create bridge %s: %w", name, core.ErrNotSupported)
}

// RemoveBridge is only implemented for Linux and FreeBSD.
func (c *Controller) RemoveBridge(name string) error {
	return fmt.Errorf("remove bridge %s: %w", name, core.ErrNotSupported)
}

// AddToBridge is only implemented for Linux and FreeBSD.
func (c *Controller) AddToBridge(bridge, member string) error {
	return fmt.Errorf("add %s to bridge %s: %w", member, bridge, core.ErrNotSupported)
}

// RemoveFromBridge is only implemented for Linux and FreeBSD.
func (c *Controller) RemoveFromBridge(bridge, member string) error {
	return fmt.Errorf("remove %s from bridge %s: %w", member, bridge, core.ErrNotSupported)
}

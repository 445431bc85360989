//go:build darwin || netbsd

package ifcontrol

import (
	"fmt"

	"github.com/irctrakz/netif/pkg/core"
)

// Groups needs SIOCGIFGROUP, which this platform lacks.
func (c *Controller) Groups(name string) ([]string, error) {
	return nil, fmt.Errorf("interface groups of %s: %w", name, core.ErrNotSupported)
}

// Driver has no kernel source on this platform.
func (c *Controller) Driver(name string) (DriverInfo, error) {
	return DriverInfo{}, fmt.Errorf("driver of %s: %w", name, core.ErrNotSupported)
}

//go:build linux || darwin || freebsd || netbsd || openbsd

package ifcontrol

import (
	"net/netip"

	"github.com/irctrakz/netif/pkg/ifstructs"
)

// The functions below open a short-lived control socket per call.

func with[T any](fn func(c *Controller) (T, error)) (T, error) {
	c, err := Open()
	if err != nil {
		var zero T
		return zero, err
	}
	defer c.Close()
	return fn(c)
}

func withErr(fn func(c *Controller) error) error {
	_, err := with(func(c *Controller) (struct{}, error) { return struct{}{}, fn(c) })
	return err
}

// Flags returns the IFF_* bits of name.
func Flags(name string) (ifstructs.Flags, error) {
	return with(func(c *Controller) (ifstructs.Flags, error) { return c.Flags(name) })
}

// IsUp reports whether name is up and running.
func IsUp(name string) (bool, error) {
	return with(func(c *Controller) (bool, error) { return c.IsUp(name) })
}

// Up brings name up.
func Up(name string) error { return withErr(func(c *Controller) error { return c.Up(name) }) }

// Down takes name down.
func Down(name string) error { return withErr(func(c *Controller) error { return c.Down(name) }) }

// SetPromiscuousMode toggles promiscuous mode on name.
func SetPromiscuousMode(name string, enabled bool) error {
	return withErr(func(c *Controller) error { return c.SetPromiscuousMode(name, enabled) })
}

// MTU returns the MTU of name.
func MTU(name string) (int, error) {
	return with(func(c *Controller) (int, error) { return c.MTU(name) })
}

// SetMTU sets the MTU of name.
func SetMTU(name string, mtu int) error {
	return withErr(func(c *Controller) error { return c.SetMTU(name, mtu) })
}

// AddAddr assigns prefix (and broadcast, if valid) to name.
func AddAddr(name string, prefix netip.Prefix, broadcast netip.Addr) error {
	return withErr(func(c *Controller) error { return c.AddAddr(name, prefix, broadcast) })
}

// DelAddr removes prefix from name.
func DelAddr(name string, prefix netip.Prefix) error {
	return withErr(func(c *Controller) error { return c.DelAddr(name, prefix) })
}

// CreateBridge creates the bridge name.
func CreateBridge(name string) error {
	return withErr(func(c *Controller) error { return c.CreateBridge(name) })
}

// RemoveBridge deletes the bridge name.
func RemoveBridge(name string) error {
	return withErr(func(c *Controller) error { return c.RemoveBridge(name) })
}

// AddToBridge attaches member to bridge.
func AddToBridge(bridge, member string) error {
	return withErr(func(c *Controller) error { return c.AddToBridge(bridge, member) })
}

// RemoveFromBridge detaches member from bridge.
func RemoveFromBridge(bridge, member string) error {
	return withErr(func(c *Controller) error { return c.RemoveFromBridge(bridge, member) })
}

// Groups lists the interface groups of name.
func Groups(name string) ([]string, error) {
	return with(func(c *Controller) ([]string, error) { return c.Groups(name) })
}

// IndexByName resolves an interface index.
func IndexByName(name string) (int, error) {
	return with(func(c *Controller) (int, error) { return c.IndexByName(name) })
}

// NameByIndex resolves an interface name.
func NameByIndex(index int) (string, error) {
	return with(func(c *Controller) (string, error) { return c.NameByIndex(index) })
}

// Driver identifies the driver of name.
func Driver(name string) (DriverInfo, error) {
	return with(func(c *Controller) (DriverInfo, error) { return c.Driver(name) })
}

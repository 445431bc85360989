//go:build freebsd || openbsd

package ifcontrol

import (
	"fmt"
	"runtime"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/ifstructs"
)

// Groups lists the interface groups of name. The first SIOCGIFGROUP call
// reports the buffer size, the second fills it.
func (c *Controller) Groups(name string) ([]string, error) {
	r, err := ifstructs.NewIfgroupreq(name)
	if err != nil {
		return nil, err
	}
	if err := c.do("get groups", name, reqGetGroup, r.Pointer()); err != nil {
		return nil, err
	}
	if r.Len == 0 {
		return nil, nil
	}
	buf := make([]byte, r.Len)
	r.SetBuffer(buf)
	err = c.do("get groups", name, reqGetGroup, r.Pointer())
	runtime.KeepAlive(buf)
	if err != nil {
		return nil, err
	}
	if int(r.Len) > len(buf) {
		return nil, fmt.Errorf("%w: kernel reported %d group bytes for a %d byte buffer", core.ErrBadData, r.Len, len(buf))
	}
	return ifstructs.GroupNames(buf[:r.Len])
}

// Driver derives the driver from the interface groups: cloned interfaces
// join a group named after their driver ("tun", "bridge", ...).
func (c *Controller) Driver(name string) (DriverInfo, error) {
	groups, err := c.Groups(name)
	if err != nil {
		return DriverInfo{}, err
	}
	for _, g := range groups {
		if g != "all" {
			return DriverInfo{Name: g}, nil
		}
	}
	return DriverInfo{}, fmt.Errorf("driver of %s: %w", name, core.ErrNotFound)
}

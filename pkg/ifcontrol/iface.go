//go:build linux || darwin || freebsd || netbsd || openbsd

package ifcontrol

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"slices"
	"strings"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/ifstructs"
)

// LinkKind classifies the link layer of an interface.
type LinkKind int

const (
	LinkUnknown LinkKind = iota
	LinkEthernet
	LinkLoopback
	LinkBridge
	LinkTun
	LinkTap
)

func (k LinkKind) String() string {
	switch k {
	case LinkEthernet:
		return "ethernet"
	case LinkLoopback:
		return "loopback"
	case LinkBridge:
		return "bridge"
	case LinkTun:
		return "tun"
	case LinkTap:
		return "tap"
	}
	return "unknown"
}

// Iface is a snapshot of one interface. It is not updated behind the
// caller's back; call Refresh after changing the interface.
type Iface struct {
	Name         string
	Index        int
	Flags        ifstructs.Flags
	Addrs        []netip.Prefix
	HardwareAddr net.HardwareAddr
	Link         LinkKind
}

// All lists every interface of the host.
func All() ([]*Iface, error) {
	c, err := Open()
	if err != nil {
		return nil, err
	}
	defer c.Close()
	list, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	return c.snapshotAll(list)
}

// snapshotAll skips interfaces that disappear between the listing and the
// flag query.
func (c *Controller) snapshotAll(list []net.Interface) ([]*Iface, error) {
	out := make([]*Iface, 0, len(list))
	for i := range list {
		ifc, err := c.snapshot(&list[i])
		if errors.Is(err, core.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, ifc)
	}
	return out, nil
}

// FindByName looks up a single interface.
func FindByName(name string) (*Iface, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w: %w", name, core.ErrNotFound, err)
	}
	c, err := Open()
	if err != nil {
		return nil, err
	}
	defer c.Close()
	return c.snapshot(ifi)
}

func (c *Controller) snapshot(ifi *net.Interface) (*Iface, error) {
	ifc := &Iface{Name: ifi.Name, Index: ifi.Index, HardwareAddr: ifi.HardwareAddr}
	if err := c.refresh(ifc, ifi); err != nil {
		return nil, err
	}
	ifc.Link = c.linkKind(ifc)
	return ifc, nil
}

// Refresh re-reads flags and addresses.
func (i *Iface) Refresh() error {
	ifi, err := net.InterfaceByName(i.Name)
	if err != nil {
		return fmt.Errorf("refresh %s: %w: %w", i.Name, core.ErrNotFound, err)
	}
	c, err := Open()
	if err != nil {
		return err
	}
	defer c.Close()
	return c.refresh(i, ifi)
}

func (c *Controller) refresh(i *Iface, ifi *net.Interface) error {
	flags, err := c.Flags(i.Name)
	if err != nil {
		return err
	}
	addrs, err := ifi.Addrs()
	if err != nil {
		return fmt.Errorf("addresses of %s: %w", i.Name, err)
	}
	i.Flags = flags
	i.Index = ifi.Index
	i.HardwareAddr = ifi.HardwareAddr
	i.Addrs = i.Addrs[:0]
	for _, a := range addrs {
		ipn, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		addr, ok := netip.AddrFromSlice(ipn.IP)
		if !ok {
			continue
		}
		ones, _ := ipn.Mask.Size()
		i.Addrs = append(i.Addrs, netip.PrefixFrom(addr.Unmap(), ones))
	}
	return nil
}

func (c *Controller) linkKind(i *Iface) LinkKind {
	if i.Flags.Has(ifstructs.FlagLoopback) {
		return LinkLoopback
	}
	if info, err := c.Driver(i.Name); err == nil {
		if k := kindFromDriver(info); k != LinkUnknown {
			return k
		}
	}
	if k := kindFromName(i.Name); k != LinkUnknown {
		return k
	}
	if len(i.HardwareAddr) == 6 {
		return LinkEthernet
	}
	return LinkUnknown
}

// kindFromDriver maps driver identification to a link kind. The Linux tun
// driver reports its mode as bus info.
func kindFromDriver(d DriverInfo) LinkKind {
	switch d.Name {
	case "bridge", "if_bridge":
		return LinkBridge
	case "tap":
		return LinkTap
	case "tun":
		if d.BusInfo == "tap" {
			return LinkTap
		}
		return LinkTun
	}
	return LinkUnknown
}

// kindFromName is the fallback for platforms without driver identification.
func kindFromName(name string) LinkKind {
	trimmed := strings.TrimRight(name, "0123456789")
	switch {
	case slices.Contains([]string{"tun", "utun"}, trimmed):
		return LinkTun
	case trimmed == "tap":
		return LinkTap
	case trimmed == "bridge":
		return LinkBridge
	}
	return LinkUnknown
}

// IsUp reports UP and RUNNING from the snapshot.
func (i *Iface) IsUp() bool { return i.Flags.Has(ifstructs.FlagUp | ifstructs.FlagRunning) }

// Up brings the interface up and refreshes the snapshot.
func (i *Iface) Up() error {
	if err := Up(i.Name); err != nil {
		return err
	}
	return i.Refresh()
}

// Down takes the interface down and refreshes the snapshot.
func (i *Iface) Down() error {
	if err := Down(i.Name); err != nil {
		return err
	}
	return i.Refresh()
}

// AddAddr assigns prefix and refreshes the snapshot.
func (i *Iface) AddAddr(prefix netip.Prefix) error {
	if err := AddAddr(i.Name, prefix, netip.Addr{}); err != nil {
		return err
	}
	return i.Refresh()
}

// HasAddr reports whether addr is assigned in the snapshot.
func (i *Iface) HasAddr(addr netip.Addr) bool {
	return slices.ContainsFunc(i.Addrs, func(p netip.Prefix) bool { return p.Addr() == addr })
}

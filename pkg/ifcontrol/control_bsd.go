//go:build darwin || freebsd || netbsd || openbsd

package ifcontrol

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/ifstructs"
)

// AddAddr adds an IPv4 alias with SIOCAIFADDR. The kernel applies address,
// mask and broadcast in one step.
func (c *Controller) AddAddr(name string, prefix netip.Prefix, broadcast netip.Addr) error {
	if !prefix.Addr().Unmap().Is4() {
		return fmt.Errorf("add address %s to %s: %w", prefix, name, core.ErrNotSupported)
	}
	r, err := ifstructs.NewIfaliasreq(name)
	if err != nil {
		return err
	}
	addr, err := ifstructs.SockaddrInet4(prefix.Addr())
	if err != nil {
		return err
	}
	mask, err := ifstructs.MaskInet4(prefix.Bits())
	if err != nil {
		return err
	}
	r.SetAddr(addr)
	r.SetMask(mask)
	if broadcast.IsValid() {
		brd, err := ifstructs.SockaddrInet4(broadcast)
		if err != nil {
			return err
		}
		r.SetBroadcast(brd)
	}
	return c.do("add address", name, reqAddAlias, r.Pointer())
}

// DelAddr removes an IPv4 address with SIOCDIFADDR.
func (c *Controller) DelAddr(name string, prefix netip.Prefix) error {
	if !prefix.Addr().Unmap().Is4() {
		return fmt.Errorf("delete address %s from %s: %w", prefix, name, core.ErrNotSupported)
	}
	r, err := ifstructs.NewIfreq(name)
	if err != nil {
		return err
	}
	sa, err := ifstructs.SockaddrInet4(prefix.Addr())
	if err != nil {
		return err
	}
	r.SetSockaddr(sa)
	return c.do("delete address", name, reqDelAddr, r.Pointer())
}

// IndexByName resolves an interface index from the live interface list.
func (c *Controller) IndexByName(name string) (int, error) {
	ifi, err := net.InterfaceByName(name)
	if err != nil {
		return 0, fmt.Errorf("get index %s: %w: %w", name, core.ErrNotFound, err)
	}
	return ifi.Index, nil
}

// NameByIndex resolves an interface name from the live interface list.
func (c *Controller) NameByIndex(index int) (string, error) {
	ifi, err := net.InterfaceByIndex(index)
	if err != nil {
		return "", fmt.Errorf("get name #%d: %w: %w", index, core.ErrNotFound, err)
	}
	return ifi.Name, nil
}

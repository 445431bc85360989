package route

import (
	"errors"
	"fmt"
	"net"
	"net/netip"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/ifcontrol"
	"github.com/irctrakz/netif/pkg/ifstructs"
	"github.com/irctrakz/netif/pkg/ioctl"
	"github.com/irctrakz/netif/pkg/logging"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// Family selects the address family of a dump; 0 means all families.
type Family int

const (
	FamilyAll  Family = netlink.FAMILY_ALL
	FamilyInet Family = netlink.FAMILY_V4
)

// List reads the main routing table over rtnetlink and presents each route
// as a Record with the same presence rules as a BSD dump.
func List(family Family) ([]Record, error) {
	routes, err := netlink.RouteList(nil, int(family))
	if err != nil {
		return nil, fmt.Errorf("route list: %w", err)
	}
	c, err := ifcontrol.Open()
	if err != nil {
		return nil, err
	}
	defer c.Close()

	recs := make([]Record, 0, len(routes))
	for _, r := range routes {
		rec := fromNetlink(r)
		if name, err := c.NameByIndex(r.LinkIndex); err == nil {
			rec.Interface = name
		}
		recs = append(recs, rec)
	}
	logging.For("route").Debugf("listed %d routes", len(recs))
	return recs, nil
}

func fromNetlink(r netlink.Route) Record {
	rec := Record{Index: r.LinkIndex, Flags: FlagUp}
	if r.Dst != nil {
		rec.Dst = ipAddr(r.Dst.IP)
		rec.Netmask = ipAddr(net.IP(r.Dst.Mask))
		if ones, bits := r.Dst.Mask.Size(); ones == bits {
			rec.Flags |= FlagHost
		}
	} else {
		// default route
		rec.Dst = &Addr{Family: familyInet, IP: netip.IPv4Unspecified()}
		rec.Netmask = &Addr{Family: familyInet, IP: netip.IPv4Unspecified()}
		if r.Family == netlink.FAMILY_V6 {
			rec.Dst.IP, rec.Netmask.IP = netip.IPv6Unspecified(), netip.IPv6Unspecified()
			rec.Dst.Family, rec.Netmask.Family = unix.AF_INET6, unix.AF_INET6
		}
	}
	rec.Addrs |= AddrDst | AddrNetmask
	if r.Gw != nil {
		rec.Gateway = ipAddr(r.Gw)
		rec.Addrs |= AddrGateway
		rec.Flags |= FlagGateway
	}
	if r.Src != nil {
		rec.IfAddr = ipAddr(r.Src)
		rec.Addrs |= AddrIfAddr
	}
	if r.Type == unix.RTN_BLACKHOLE {
		rec.Flags |= FlagBlackhole
	}
	return rec
}

func ipAddr(ip net.IP) *Addr {
	a, ok := netip.AddrFromSlice(ip)
	if !ok {
		return &Addr{Raw: append([]byte(nil), ip...)}
	}
	a = a.Unmap()
	fam := familyInet
	if a.Is6() {
		fam = unix.AF_INET6
	}
	return &Addr{Family: fam, IP: a}
}

// Add installs an IPv4 route with SIOCADDRT. An invalid gateway makes it a
// direct route over dev.
func Add(dst netip.Prefix, gateway netip.Addr, dev string) error {
	return rtentryRequest("add route", unix.SIOCADDRT, dst, gateway, dev)
}

// Delete removes an IPv4 route with SIOCDELRT.
func Delete(dst netip.Prefix, gateway netip.Addr, dev string) error {
	return rtentryRequest("delete route", unix.SIOCDELRT, dst, gateway, dev)
}

func rtentryRequest(op string, req uint, dst netip.Prefix, gateway netip.Addr, dev string) error {
	rt, err := newRtentry(dst, gateway, dev)
	if err != nil {
		return err
	}
	s, err := ioctl.NewSocket()
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.Ioctl(req, rt.Pointer()); err != nil {
		switch {
		case errors.Is(err, unix.ESRCH):
			return fmt.Errorf("%s %s: %w: %w", op, dst, core.ErrNotFound, err)
		case errors.Is(err, unix.ENODEV), errors.Is(err, unix.ENXIO):
			return fmt.Errorf("%s %s dev %s: %w: %w", op, dst, dev, core.ErrNotFound, err)
		}
		return fmt.Errorf("%s %s: %w", op, dst, err)
	}
	return nil
}

func newRtentry(dst netip.Prefix, gateway netip.Addr, dev string) (*ifstructs.Rtentry, error) {
	dst = dst.Masked()
	rt := &ifstructs.Rtentry{Flags: ifstructs.RTF_UP}
	var err error
	if rt.Dst, err = ifstructs.SockaddrInet4(dst.Addr()); err != nil {
		return nil, err
	}
	if rt.Genmask, err = ifstructs.MaskInet4(dst.Bits()); err != nil {
		return nil, err
	}
	if dst.IsSingleIP() {
		rt.Flags |= ifstructs.RTF_HOST
	}
	if gateway.IsValid() {
		if rt.Gateway, err = ifstructs.SockaddrInet4(gateway); err != nil {
			return nil, err
		}
		rt.Flags |= ifstructs.RTF_GATEWAY
	}
	if err := rt.SetDevice(dev); err != nil {
		return nil, err
	}
	return rt, nil
}

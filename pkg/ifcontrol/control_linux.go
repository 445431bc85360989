package ifcontrol

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/ifstructs"
	"github.com/vishvananda/netlink"
	"golang.org/x/sys/unix"
)

// IndexByName resolves an interface index with SIOCGIFINDEX.
func (c *Controller) IndexByName(name string) (int, error) {
	r, err := ifstructs.NewIfreq(name)
	if err != nil {
		return 0, err
	}
	if err := c.do("get index", name, reqGetIndex, r.Pointer()); err != nil {
		return 0, err
	}
	return r.Index(), nil
}

// NameByIndex resolves an interface name with SIOCGIFNAME.
func (c *Controller) NameByIndex(index int) (string, error) {
	r := &ifstructs.Ifreq{}
	r.SetIndex(index)
	if err := c.do("get name", fmt.Sprintf("#%d", index), reqGetName, r.Pointer()); err != nil {
		return "", err
	}
	return r.Name()
}

// CreateBridge creates a bridge with SIOCBRADDBR.
func (c *Controller) CreateBridge(name string) error {
	b, err := ifstructs.CString(name)
	if err != nil {
		return err
	}
	return c.do("create bridge", name, reqBrAddBr, unsafe.Pointer(&b[0]))
}

// RemoveBridge deletes a bridge with SIOCBRDELBR. The bridge must be down.
func (c *Controller) RemoveBridge(name string) error {
	b, err := ifstructs.CString(name)
	if err != nil {
		return err
	}
	return c.do("remove bridge", name, reqBrDelBr, unsafe.Pointer(&b[0]))
}

// AddToBridge enslaves member to bridge.
func (c *Controller) AddToBridge(bridge, member string) error {
	return c.bridgeMember("add bridge member", reqBrAddIf, bridge, member)
}

// RemoveFromBridge releases member from bridge.
func (c *Controller) RemoveFromBridge(bridge, member string) error {
	return c.bridgeMember("remove bridge member", reqBrDelIf, bridge, member)
}

func (c *Controller) bridgeMember(op string, req uint, bridge, member string) error {
	idx, err := c.IndexByName(member)
	if err != nil {
		return err
	}
	r, err := ifstructs.NewIfreq(bridge)
	if err != nil {
		return err
	}
	r.SetIndex(idx)
	return c.do(op, bridge, req, r.Pointer())
}

// Driver asks the driver for its name with ETHTOOL_GDRVINFO.
func (c *Controller) Driver(name string) (DriverInfo, error) {
	info := ifstructs.NewEthtoolDrvinfo()
	r, err := ifstructs.NewIfreqData(name, info.Pointer())
	if err != nil {
		return DriverInfo{}, err
	}
	err = c.do("driver info", name, reqEthtool, r.Pointer())
	runtime.KeepAlive(info)
	if err != nil {
		return DriverInfo{}, err
	}
	var d DriverInfo
	if d.Name, err = info.Driver(); err != nil {
		return DriverInfo{}, err
	}
	if d.Version, err = info.Version(); err != nil {
		return DriverInfo{}, err
	}
	if d.BusInfo, err = info.BusInfo(); err != nil {
		return DriverInfo{}, err
	}
	return d, nil
}

// Groups is a BSD concept.
func (c *Controller) Groups(name string) ([]string, error) {
	return nil, fmt.Errorf("interface groups of %s: %w", name, core.ErrNotSupported)
}

// AddAddr assigns prefix to name over rtnetlink. A valid broadcast is set as
// the IFA_BROADCAST attribute.
func (c *Controller) AddAddr(name string, prefix netip.Prefix, broadcast netip.Addr) error {
	link, err := linkByName(name)
	if err != nil {
		return err
	}
	addr := &netlink.Addr{IPNet: prefixToIPNet(prefix)}
	if broadcast.IsValid() {
		addr.Broadcast = net.IP(broadcast.AsSlice())
	}
	c.log.WithField("iface", name).Debugf("adding address %s", prefix)
	if err := netlink.AddrAdd(link, addr); err != nil {
		return translate("add address", name, err)
	}
	return nil
}

// DelAddr removes addr from name. The prefix length has to match the
// assigned one for rtnetlink to find it.
func (c *Controller) DelAddr(name string, prefix netip.Prefix) error {
	link, err := linkByName(name)
	if err != nil {
		return err
	}
	if err := netlink.AddrDel(link, &netlink.Addr{IPNet: prefixToIPNet(prefix)}); err != nil {
		return translate("delete address", name, err)
	}
	return nil
}

func linkByName(name string) (netlink.Link, error) {
	if err := ifstructs.CheckName(name); err != nil {
		return nil, err
	}
	link, err := netlink.LinkByName(name)
	if err != nil {
		var notFound netlink.LinkNotFoundError
		if errors.As(err, &notFound) {
			return nil, fmt.Errorf("lookup %s: %w: %w", name, core.ErrNotFound, err)
		}
		return nil, translate("lookup", name, err)
	}
	return link, nil
}

func prefixToIPNet(p netip.Prefix) *net.IPNet {
	addr := p.Addr()
	return &net.IPNet{
		IP:   net.IP(addr.AsSlice()),
		Mask: net.CIDRMask(p.Bits(), addr.BitLen()),
	}
}

// BindToDevice restricts a socket to one interface with SO_BINDTODEVICE.
func BindToDevice(conn syscall.Conn, name string) error {
	if err := ifstructs.CheckName(name); err != nil {
		return err
	}
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	var serr error
	if err := raw.Control(func(fd uintptr) {
		serr = unix.BindToDevice(int(fd), name)
	}); err != nil {
		return err
	}
	if serr != nil {
		return translate("bind to device", name, serr)
	}
	return nil
}

package route

import (
	"net"
	"net/netip"
	"testing"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"
)

func TestFromNetlinkDefaultRoute(t *testing.T) {
	rec := fromNetlink(netlink.Route{LinkIndex: 2, Gw: net.ParseIP("192.168.1.1"), Family: netlink.FAMILY_V4})

	assert.Equal(t, uint32(AddrDst|AddrNetmask|AddrGateway), rec.Addrs)
	assert.Equal(t, "0.0.0.0", rec.Dst.IP.String())
	assert.Equal(t, "192.168.1.1", rec.Gateway.IP.String())
	assert.Equal(t, uint32(FlagUp|FlagGateway), rec.Flags)
	assert.Nil(t, rec.IfAddr)
}

func TestFromNetlinkHostRoute(t *testing.T) {
	_, dst, err := net.ParseCIDR("10.9.9.9/32")
	require.NoError(t, err)
	rec := fromNetlink(netlink.Route{LinkIndex: 5, Dst: dst, Src: net.ParseIP("10.9.9.1")})

	assert.Equal(t, uint32(FlagUp|FlagHost), rec.Flags)
	assert.Equal(t, "255.255.255.255", rec.Netmask.IP.String())
	assert.Equal(t, "10.9.9.1", rec.IfAddr.IP.String())
	assert.Nil(t, rec.Gateway)
}

func TestNewRtentry(t *testing.T) {
	rt, err := newRtentry(netip.MustParsePrefix("10.1.2.3/16"), netip.MustParseAddr("10.1.0.1"), "eth0")
	require.NoError(t, err)

	dst, _ := rt.Dst.Addr()
	mask, _ := rt.Genmask.Addr()
	gw, _ := rt.Gateway.Addr()
	assert.Equal(t, "10.1.0.0", dst.String())
	assert.Equal(t, "255.255.0.0", mask.String())
	assert.Equal(t, "10.1.0.1", gw.String())
	assert.NotNil(t, rt.Dev)
	assert.Equal(t, uint16(0x3), rt.Flags)

	_, err = newRtentry(netip.MustParsePrefix("2001:db8::/32"), netip.Addr{}, "")
	assert.ErrorIs(t, err, core.ErrBadArguments)
}

//go:build linux || darwin || freebsd || netbsd || openbsd

package ifstructs

import (
	"encoding/binary"
	"fmt"
	"net/netip"

	"github.com/irctrakz/netif/pkg/core"
)

// SizeofSockaddr is sizeof(struct sockaddr) and of sockaddr_in.
const SizeofSockaddr = 16

const afInet = 2

// Sockaddr is a generic 16-byte struct sockaddr as embedded in ifreq,
// ifaliasreq and rtentry.
type Sockaddr [SizeofSockaddr]byte

// SockaddrInet4 encodes addr as a sockaddr_in with port 0. IPv6 does not fit
// a 16-byte sockaddr and is rejected.
func SockaddrInet4(addr netip.Addr) (Sockaddr, error) {
	var sa Sockaddr
	addr = addr.Unmap()
	if !addr.Is4() {
		return sa, fmt.Errorf("%w: %s is not an IPv4 address", core.ErrBadArguments, addr)
	}
	setFamily(&sa, afInet)
	a4 := addr.As4()
	copy(sa[4:8], a4[:])
	return sa, nil
}

// MaskInet4 encodes the netmask of a prefix length.
func MaskInet4(bits int) (Sockaddr, error) {
	if bits < 0 || bits > 32 {
		return Sockaddr{}, fmt.Errorf("%w: prefix length %d", core.ErrBadArguments, bits)
	}
	var m [4]byte
	binary.BigEndian.PutUint32(m[:], ^uint32(0)<<(32-bits))
	return SockaddrInet4(netip.AddrFrom4(m))
}

// Family returns sa_family.
func (sa Sockaddr) Family() int { return family(&sa) }

// Addr decodes an AF_INET sockaddr. ok is false for any other family.
func (sa Sockaddr) Addr() (netip.Addr, bool) {
	if family(&sa) != afInet {
		return netip.Addr{}, false
	}
	return netip.AddrFrom4([4]byte(sa[4:8])), true
}

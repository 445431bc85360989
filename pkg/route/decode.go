// Package route decodes kernel routing table dumps into Records and lists
// the routing table of the running host.
package route

import (
	"encoding/binary"
	"fmt"
	"net/netip"
	"strings"
	"unsafe"

	"github.com/irctrakz/netif/pkg/core"
)

// Address presence bits (RTA_*) in canonical order.
const (
	AddrDst     = 0x1
	AddrGateway = 0x2
	AddrNetmask = 0x4
	AddrGenmask = 0x8
	AddrIfName  = 0x10
	AddrIfAddr  = 0x20
	AddrAuthor  = 0x40
	AddrBrd     = 0x80
)

// Route flags (RTF_*) shared by Linux and the BSDs.
const (
	FlagUp        = 0x1
	FlagGateway   = 0x2
	FlagHost      = 0x4
	FlagReject    = 0x8
	FlagDynamic   = 0x10
	FlagModified  = 0x20
	FlagDone      = 0x40
	FlagStatic    = 0x800
	FlagBlackhole = 0x1000
)

// Address families that appear in routing messages.
const (
	familyInet = 2
	familyLink = 18
)

// Addr is one decoded sockaddr.
type Addr struct {
	Family int
	IP     netip.Addr // AF_INET only
	Index  int        // AF_LINK only
	Name   string     // AF_LINK interface name, when it fits
	Raw    []byte
}

func (a *Addr) String() string {
	switch {
	case a == nil:
		return "-"
	case a.IP.IsValid():
		return a.IP.String()
	case a.Family == familyLink && a.Name != "":
		return "link#" + fmt.Sprint(a.Index) + "(" + a.Name + ")"
	case a.Family == familyLink:
		return "link#" + fmt.Sprint(a.Index)
	}
	return fmt.Sprintf("af%d", a.Family)
}

// Record is one routing table entry. An address field is non-nil exactly
// when its bit is set in Addrs.
type Record struct {
	Version   uint8
	Type      uint8
	Index     int
	Flags     uint32
	Addrs     uint32
	Interface string // resolved from Index by List, empty from Decode

	Dst     *Addr
	Gateway *Addr
	Netmask *Addr
	Genmask *Addr
	IfName  *Addr
	IfAddr  *Addr
	Author  *Addr
	Brd     *Addr
}

func (r *Record) slot(bit uint32) **Addr {
	switch bit {
	case AddrDst:
		return &r.Dst
	case AddrGateway:
		return &r.Gateway
	case AddrNetmask:
		return &r.Netmask
	case AddrGenmask:
		return &r.Genmask
	case AddrIfName:
		return &r.IfName
	case AddrIfAddr:
		return &r.IfAddr
	case AddrAuthor:
		return &r.Author
	case AddrBrd:
		return &r.Brd
	}
	return nil
}

func (r *Record) String() string {
	var f []string
	for _, n := range []struct {
		bit  uint32
		name string
	}{{FlagUp, "U"}, {FlagGateway, "G"}, {FlagHost, "H"}, {FlagReject, "R"}, {FlagDynamic, "D"}, {FlagModified, "M"}, {FlagStatic, "S"}, {FlagBlackhole, "B"}} {
		if r.Flags&n.bit != 0 {
			f = append(f, n.name)
		}
	}
	iface := r.Interface
	if iface == "" {
		iface = fmt.Sprintf("#%d", r.Index)
	}
	return fmt.Sprintf("%s via %s mask %s dev %s flags %s", r.Dst, r.Gateway, r.Netmask, iface, strings.Join(f, ""))
}

// Layout gives the offsets of the rt_msghdr fields the decoder reads.
type Layout struct {
	Name         string
	HeaderSize   int
	IndexOff     int
	FlagsOff     int
	AddrsOff     int
	HdrlenOff    int // -1 when addresses start right after the fixed header
	SockaddrSize int
}

const sizeofPtr = int(unsafe.Sizeof(uintptr(0)))

var (
	// LayoutFreeBSD: rtm_inits and the 14 rt_metrics words are u_long.
	LayoutFreeBSD = Layout{Name: "freebsd", HeaderSize: 32 + 15*sizeofPtr, IndexOff: 4, FlagsOff: 8, AddrsOff: 12, HdrlenOff: -1, SockaddrSize: 16}

	// LayoutDarwin uses 32-bit metrics.
	LayoutDarwin = Layout{Name: "darwin", HeaderSize: 92, IndexOff: 4, FlagsOff: 8, AddrsOff: 12, HdrlenOff: -1, SockaddrSize: 16}

	// LayoutNetBSD uses fixed-width 64-bit metrics.
	LayoutNetBSD = Layout{Name: "netbsd", HeaderSize: 120, IndexOff: 4, FlagsOff: 8, AddrsOff: 12, HdrlenOff: -1, SockaddrSize: 16}

	// LayoutOpenBSD carries rtm_hdrlen and moves the index behind it.
	LayoutOpenBSD = Layout{Name: "openbsd", HeaderSize: 96, IndexOff: 6, FlagsOff: 16, AddrsOff: 12, HdrlenOff: 4, SockaddrSize: 16}
)

var canonicalOrder = [...]uint32{AddrDst, AddrGateway, AddrNetmask, AddrGenmask, AddrIfName, AddrIfAddr, AddrAuthor, AddrBrd}

// Decode walks a routing socket dump. Each present address consumes one
// fixed-size sockaddr; bytes after the last address up to rtm_msglen are
// skipped. Any length that does not fit the buffer is reported as
// ErrBadData before it is read.
func Decode(buf []byte, l Layout) ([]Record, error) {
	var out []Record
	for off := 0; off < len(buf); {
		rest := buf[off:]
		if len(rest) < l.HeaderSize {
			return nil, fmt.Errorf("%w: %d bytes left at offset %d, header needs %d", core.ErrBadData, len(rest), off, l.HeaderSize)
		}
		msglen := int(binary.NativeEndian.Uint16(rest[0:2]))
		if msglen < l.HeaderSize {
			return nil, fmt.Errorf("%w: message at offset %d declares %d bytes, shorter than its header", core.ErrBadData, off, msglen)
		}
		if msglen > len(rest) {
			return nil, fmt.Errorf("%w: message at offset %d declares %d bytes, only %d remain", core.ErrBadData, off, msglen, len(rest))
		}
		rec, err := decodeMessage(rest[:msglen], l)
		if err != nil {
			return nil, fmt.Errorf("message at offset %d: %w", off, err)
		}
		out = append(out, rec)
		off += msglen
	}
	return out, nil
}

func decodeMessage(msg []byte, l Layout) (Record, error) {
	rec := Record{
		Version: msg[2],
		Type:    msg[3],
		Index:   int(binary.NativeEndian.Uint16(msg[l.IndexOff:])),
		Flags:   binary.NativeEndian.Uint32(msg[l.FlagsOff:]),
		Addrs:   binary.NativeEndian.Uint32(msg[l.AddrsOff:]),
	}
	cur := l.HeaderSize
	if l.HdrlenOff >= 0 {
		cur = int(binary.NativeEndian.Uint16(msg[l.HdrlenOff:]))
		if cur > len(msg) {
			return Record{}, fmt.Errorf("%w: header length %d beyond message length %d", core.ErrBadData, cur, len(msg))
		}
	}
	for _, bit := range canonicalOrder {
		if rec.Addrs&bit == 0 {
			continue
		}
		if cur+l.SockaddrSize > len(msg) {
			return Record{}, fmt.Errorf("%w: address bits %#x need more than %d bytes", core.ErrBadData, rec.Addrs, len(msg))
		}
		*rec.slot(bit) = decodeSockaddr(msg[cur : cur+l.SockaddrSize])
		cur += l.SockaddrSize
	}
	return rec, nil
}

// decodeSockaddr reads a BSD sockaddr (sa_len, sa_family, data).
func decodeSockaddr(b []byte) *Addr {
	a := &Addr{Family: int(b[1]), Raw: append([]byte(nil), b...)}
	switch a.Family {
	case familyInet:
		a.IP = netip.AddrFrom4([4]byte(b[4:8]))
	case familyLink:
		// sockaddr_dl: index, type, nlen, alen, slen, then the name
		a.Index = int(binary.NativeEndian.Uint16(b[2:4]))
		if nlen := int(b[5]); nlen > 0 && 8+nlen <= len(b) {
			a.Name = string(b[8 : 8+nlen])
		}
	}
	return a
}

//go:build linux || darwin || freebsd || netbsd || openbsd

package ifstructs

import (
	"encoding/binary"
	"unsafe"
)

const (
	sizeofPtr = unsafe.Sizeof(uintptr(0))

	// every ifreq variant starts its union right after the name
	unionOff = IFNAMSIZ
)

// Ifreq is struct ifreq: a name followed by a union whose meaning depends on
// the request it is passed with.
type Ifreq struct {
	raw [SizeofIfreq]byte
}

// NewIfreq returns a zeroed request carrying name.
func NewIfreq(name string) (*Ifreq, error) {
	r := &Ifreq{}
	if err := r.SetName(name); err != nil {
		return nil, err
	}
	return r, nil
}

// SetName stores name. On error the request is unchanged.
func (r *Ifreq) SetName(name string) error { return putName(r.raw[:IFNAMSIZ], name) }

// Name decodes the name field.
func (r *Ifreq) Name() (string, error) { return getName(r.raw[:IFNAMSIZ]) }

// Pointer is the ioctl argument.
func (r *Ifreq) Pointer() unsafe.Pointer { return unsafe.Pointer(&r.raw[0]) }

// InsertFlags sets bits in the flags field, keeping the others.
// The merge is local; pairing it with a get/set ioctl is not atomic against
// other processes changing the same interface.
func (r *Ifreq) InsertFlags(f Flags) { r.SetFlags(r.Flags() | f) }

// RemoveFlags clears bits in the flags field, keeping the others.
func (r *Ifreq) RemoveFlags(f Flags) { r.SetFlags(r.Flags() &^ f) }

// MTU reads ifr_mtu.
func (r *Ifreq) MTU() int { return int(int32(binary.NativeEndian.Uint32(r.raw[unionOff:]))) }

// SetMTU writes ifr_mtu.
func (r *Ifreq) SetMTU(mtu int) { binary.NativeEndian.PutUint32(r.raw[unionOff:], uint32(int32(mtu))) }

// Sockaddr reads the union as a sockaddr (ifr_addr, ifr_hwaddr, ...).
func (r *Ifreq) Sockaddr() Sockaddr {
	var sa Sockaddr
	copy(sa[:], r.raw[unionOff:])
	return sa
}

// SetSockaddr writes the union as a sockaddr.
func (r *Ifreq) SetSockaddr(sa Sockaddr) { copy(r.raw[unionOff:], sa[:]) }

// ClearUnion zeroes everything after the name, for reusing a request.
func (r *Ifreq) ClearUnion() { clear(r.raw[unionOff:]) }

// IfreqData is an ifreq whose union carries a pointer (ifr_data). It is a
// separate type so the garbage collector sees the pointer.
type IfreqData struct {
	name [IFNAMSIZ]byte
	data unsafe.Pointer
	_    [SizeofIfreq - IFNAMSIZ - sizeofPtr]byte
}

// NewIfreqData returns a request for name pointing at data. The caller keeps
// data alive until the ioctl returns.
func NewIfreqData(name string, data unsafe.Pointer) (*IfreqData, error) {
	r := &IfreqData{data: data}
	if err := putName(r.name[:], name); err != nil {
		return nil, err
	}
	return r, nil
}

// Name decodes the name field.
func (r *IfreqData) Name() (string, error) { return getName(r.name[:]) }

// Pointer is the ioctl argument.
func (r *IfreqData) Pointer() unsafe.Pointer { return unsafe.Pointer(r) }

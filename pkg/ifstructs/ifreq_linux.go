package ifstructs

import "encoding/binary"

// The union is sized by struct ifmap: two unsigned longs plus five bytes of
// short/char fields, rounded up to pointer alignment.
const sizeofIfmap = 2*sizeofPtr + 8

// SizeofIfreq is sizeof(struct ifreq): 40 bytes on 64-bit, 32 on 32-bit.
const SizeofIfreq = IFNAMSIZ + sizeofIfmap

// Flags reads ifr_flags (a short).
func (r *Ifreq) Flags() Flags { return Flags(binary.NativeEndian.Uint16(r.raw[unionOff:])) }

// SetFlags writes ifr_flags. Bits above 15 do not fit and are dropped.
func (r *Ifreq) SetFlags(f Flags) { binary.NativeEndian.PutUint16(r.raw[unionOff:], uint16(f)) }

// Index reads ifr_ifindex.
func (r *Ifreq) Index() int { return int(int32(binary.NativeEndian.Uint32(r.raw[unionOff:]))) }

// SetIndex writes ifr_ifindex.
func (r *Ifreq) SetIndex(idx int) {
	binary.NativeEndian.PutUint32(r.raw[unionOff:], uint32(int32(idx)))
}

// SetNewName writes ifr_newname for SIOCSIFNAME.
func (r *Ifreq) SetNewName(name string) error {
	return putName(r.raw[unionOff:unionOff+IFNAMSIZ], name)
}

// NewName decodes ifr_newname.
func (r *Ifreq) NewName() (string, error) { return getName(r.raw[unionOff : unionOff+IFNAMSIZ]) }

// TunFlags reads the short TUNSETIFF stores in the flags slot.
func (r *Ifreq) TunFlags() uint16 { return binary.NativeEndian.Uint16(r.raw[unionOff:]) }

// SetTunFlags writes the TUNSETIFF mode flags (IFF_TUN, IFF_NO_PI, ...).
func (r *Ifreq) SetTunFlags(f uint16) { binary.NativeEndian.PutUint16(r.raw[unionOff:], f) }

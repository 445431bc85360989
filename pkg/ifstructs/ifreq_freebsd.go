package ifstructs

import "encoding/binary"

// SizeofIfreq is sizeof(struct ifreq); the union is as large as a sockaddr
// or struct ifreq_buffer, whichever is bigger.
const SizeofIfreq = IFNAMSIZ + max(16, 2*sizeofPtr)

// Flags combines ifr_flags (low word) and ifr_flagshigh.
func (r *Ifreq) Flags() Flags {
	lo := binary.NativeEndian.Uint16(r.raw[unionOff:])
	hi := binary.NativeEndian.Uint16(r.raw[unionOff+2:])
	return Flags(uint32(hi)<<16 | uint32(lo))
}

// SetFlags splits f over ifr_flags and ifr_flagshigh.
func (r *Ifreq) SetFlags(f Flags) {
	binary.NativeEndian.PutUint16(r.raw[unionOff:], uint16(f))
	binary.NativeEndian.PutUint16(r.raw[unionOff+2:], uint16(f>>16))
}

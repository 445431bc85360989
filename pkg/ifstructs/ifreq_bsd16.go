//go:build darwin || netbsd || openbsd

package ifstructs

import "encoding/binary"

// Flags reads ifr_flags (a short).
func (r *Ifreq) Flags() Flags { return Flags(binary.NativeEndian.Uint16(r.raw[unionOff:])) }

// SetFlags writes ifr_flags. Bits above 15 do not fit and are dropped.
func (r *Ifreq) SetFlags(f Flags) { binary.NativeEndian.PutUint16(r.raw[unionOff:], uint16(f)) }

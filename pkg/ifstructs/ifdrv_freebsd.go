package ifstructs

import (
	"encoding/binary"
	"unsafe"
)

// BridgeCmd is a driver-specific if_bridge command carried by SIOCSDRVSPEC
// and SIOCGDRVSPEC.
type BridgeCmd uintptr

const (
	BRDGADD     BridgeCmd = iota // add member interface
	BRDGDEL                      // delete member interface
	BRDGGIFFLGS                  // get member if flags
	BRDGSIFFLGS                  // set member if flags
	BRDGSCACHE                   // set cache size
	BRDGGCACHE                   // get cache size
	BRDGGIFS                     // get member list
	BRDGRTS                      // get address list
	BRDGSADDR                    // set static address
	BRDGSTO                      // set cache timeout
	BRDGGTO                      // get cache timeout
	BRDGDADDR                    // delete address
	BRDGFLUSH                    // flush address cache
)

// Ifdrv is struct ifdrv. It carries a pointer and is therefore a real Go
// struct rather than a byte overlay.
type Ifdrv struct {
	name [IFNAMSIZ]byte
	Cmd  uintptr
	Len  uintptr
	Data unsafe.Pointer
}

// NewIfdrv builds a driver request for the interface name.
func NewIfdrv(name string, cmd BridgeCmd, data unsafe.Pointer, size uintptr) (*Ifdrv, error) {
	r := &Ifdrv{Cmd: uintptr(cmd), Len: size, Data: data}
	if err := putName(r.name[:], name); err != nil {
		return nil, err
	}
	return r, nil
}

// Name decodes ifd_name.
func (r *Ifdrv) Name() (string, error) { return getName(r.name[:]) }

// Pointer is the ioctl argument.
func (r *Ifdrv) Pointer() unsafe.Pointer { return unsafe.Pointer(r) }

// SizeofIfbreq is sizeof(struct ifbreq); if_bridge rejects any other ifd_len.
const SizeofIfbreq = 80

const (
	ifbrIfsflagsOff = IFNAMSIZ
	ifbrPortnoOff   = IFNAMSIZ + 12
)

// Ifbreq is struct ifbreq, the per-member bridge request.
type Ifbreq struct {
	raw [SizeofIfbreq]byte
}

// NewIfbreq returns a member request naming member.
func NewIfbreq(member string) (*Ifbreq, error) {
	r := &Ifbreq{}
	if err := putName(r.raw[:IFNAMSIZ], member); err != nil {
		return nil, err
	}
	return r, nil
}

// Member decodes ifbr_ifsname.
func (r *Ifbreq) Member() (string, error) { return getName(r.raw[:IFNAMSIZ]) }

// MemberFlags reads ifbr_ifsflags.
func (r *Ifbreq) MemberFlags() uint32 { return binary.NativeEndian.Uint32(r.raw[ifbrIfsflagsOff:]) }

// PortNo reads ifbr_portno.
func (r *Ifbreq) PortNo() uint8 { return r.raw[ifbrPortnoOff] }

// Pointer is the ifd_data value.
func (r *Ifbreq) Pointer() unsafe.Pointer { return unsafe.Pointer(&r.raw[0]) }

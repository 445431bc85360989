package ifstructs

import (
	"unsafe"
)

// Route flags for rtentry.rt_flags.
const (
	RTF_UP        = 0x1
	RTF_GATEWAY   = 0x2
	RTF_HOST      = 0x4
	RTF_REINSTATE = 0x8
	RTF_DYNAMIC   = 0x10
	RTF_MODIFIED  = 0x20
	RTF_MTU       = 0x40
	RTF_REJECT    = 0x200
)

// Rtentry is struct rtentry for SIOCADDRT and SIOCDELRT. Go lays these field
// types out exactly like the C compiler does on every Linux ABI.
type Rtentry struct {
	pad1    uintptr
	Dst     Sockaddr
	Gateway Sockaddr
	Genmask Sockaddr
	Flags   uint16
	pad2    int16
	pad3    uintptr
	pad4    unsafe.Pointer
	Metric  int16
	Dev     *byte
	MTU     uintptr
	Window  uintptr
	Irtt    uint16
}

// SetDevice points rt_dev at a NUL-terminated copy of name.
func (r *Rtentry) SetDevice(name string) error {
	if name == "" {
		r.Dev = nil
		return nil
	}
	b, err := CString(name)
	if err != nil {
		return err
	}
	r.Dev = &b[0]
	return nil
}

// Pointer is the ioctl argument.
func (r *Rtentry) Pointer() unsafe.Pointer { return unsafe.Pointer(r) }

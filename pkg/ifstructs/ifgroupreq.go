//go:build freebsd || openbsd

package ifstructs

import "unsafe"

// Ifgroupreq is struct ifgroupreq used by SIOCGIFGROUP. The union holds
// either one inline group name or a pointer to an array of ifg_req slots,
// each IFNAMSIZ bytes wide.
type Ifgroupreq struct {
	name   [IFNAMSIZ]byte
	Len    uint32
	groups unsafe.Pointer
	_      [IFNAMSIZ - sizeofPtr]byte
}

// NewIfgroupreq returns a zeroed group request for name. Issuing it with no
// buffer makes the kernel report the needed length in Len.
func NewIfgroupreq(name string) (*Ifgroupreq, error) {
	r := &Ifgroupreq{}
	if err := putName(r.name[:], name); err != nil {
		return nil, err
	}
	return r, nil
}

// SetBuffer points the request at buf for the second, filling call.
func (r *Ifgroupreq) SetBuffer(buf []byte) {
	r.Len = uint32(len(buf))
	if len(buf) == 0 {
		r.groups = nil
		return
	}
	r.groups = unsafe.Pointer(&buf[0])
}

// Buffer returns the slot buffer the request points at, nil before SetBuffer.
func (r *Ifgroupreq) Buffer() []byte {
	if r.groups == nil {
		return nil
	}
	return unsafe.Slice((*byte)(r.groups), r.Len)
}

// Name decodes ifgr_name.
func (r *Ifgroupreq) Name() (string, error) { return getName(r.name[:]) }

// Pointer is the ioctl argument.
func (r *Ifgroupreq) Pointer() unsafe.Pointer { return unsafe.Pointer(r) }

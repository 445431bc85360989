//go:build darwin || freebsd || netbsd || openbsd

package ifstructs

import "unsafe"

const (
	aliasAddrOff  = IFNAMSIZ
	aliasBroadOff = aliasAddrOff + SizeofSockaddr
	aliasMaskOff  = aliasBroadOff + SizeofSockaddr
	aliasBaseSize = aliasMaskOff + SizeofSockaddr
)

// Ifaliasreq is struct ifaliasreq used by SIOCAIFADDR.
type Ifaliasreq struct {
	raw [SizeofIfaliasreq]byte
}

// NewIfaliasreq returns a zeroed alias request for name.
func NewIfaliasreq(name string) (*Ifaliasreq, error) {
	r := &Ifaliasreq{}
	if err := putName(r.raw[:IFNAMSIZ], name); err != nil {
		return nil, err
	}
	return r, nil
}

// Name decodes ifra_name.
func (r *Ifaliasreq) Name() (string, error) { return getName(r.raw[:IFNAMSIZ]) }

// SetAddr writes ifra_addr.
func (r *Ifaliasreq) SetAddr(sa Sockaddr) { copy(r.raw[aliasAddrOff:], sa[:]) }

// SetBroadcast writes ifra_broadaddr (ifra_dstaddr on point-to-point links).
func (r *Ifaliasreq) SetBroadcast(sa Sockaddr) { copy(r.raw[aliasBroadOff:], sa[:]) }

// SetMask writes ifra_mask.
func (r *Ifaliasreq) SetMask(sa Sockaddr) { copy(r.raw[aliasMaskOff:], sa[:]) }

// Addr reads ifra_addr.
func (r *Ifaliasreq) Addr() Sockaddr { return Sockaddr(r.raw[aliasAddrOff:aliasBroadOff]) }

// Mask reads ifra_mask.
func (r *Ifaliasreq) Mask() Sockaddr { return Sockaddr(r.raw[aliasMaskOff:aliasBaseSize]) }

// Pointer is the ioctl argument.
func (r *Ifaliasreq) Pointer() unsafe.Pointer { return unsafe.Pointer(&r.raw[0]) }

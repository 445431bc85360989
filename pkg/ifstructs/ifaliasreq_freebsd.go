package ifstructs

import "encoding/binary"

// SizeofIfaliasreq includes the trailing ifra_vhid used by CARP.
const SizeofIfaliasreq = aliasBaseSize + 4

// SetVhid writes ifra_vhid.
func (r *Ifaliasreq) SetVhid(vhid int) {
	binary.NativeEndian.PutUint32(r.raw[aliasBaseSize:], uint32(int32(vhid)))
}

package ifstructs

import "encoding/binary"

// Linux sockaddrs start with a 16-bit family and carry no length byte.

func setFamily(sa *Sockaddr, af int) { binary.NativeEndian.PutUint16(sa[0:2], uint16(af)) }

func family(sa *Sockaddr) int { return int(binary.NativeEndian.Uint16(sa[0:2])) }

// HardwareAddr returns the six sa_data bytes of an ARPHRD_ETHER sockaddr, the
// form SIOCGIFHWADDR returns.
func (sa Sockaddr) HardwareAddr() []byte { return append([]byte(nil), sa[2:8]...) }

package ifstructs

import "unsafe"

// ETHTOOL_GDRVINFO is the ethtool command reporting driver information.
const ETHTOOL_GDRVINFO = 0x3

// EthtoolDrvinfo is struct ethtool_drvinfo.
type EthtoolDrvinfo struct {
	Cmd         uint32
	driver      [32]byte
	version     [32]byte
	fwVersion   [32]byte
	busInfo     [32]byte
	eromVersion [32]byte
	_           [12]byte
	NPrivFlags  uint32
	NStats      uint32
	TestinfoLen uint32
	EedumpLen   uint32
	RegdumpLen  uint32
}

// NewEthtoolDrvinfo returns a GDRVINFO request.
func NewEthtoolDrvinfo() *EthtoolDrvinfo { return &EthtoolDrvinfo{Cmd: ETHTOOL_GDRVINFO} }

// Driver is the kernel driver name, e.g. "tun" or "bridge".
func (d *EthtoolDrvinfo) Driver() (string, error) { return getName(d.driver[:]) }

// Version is the driver version string.
func (d *EthtoolDrvinfo) Version() (string, error) { return getName(d.version[:]) }

// BusInfo is the bus address; the tun driver reports "tun" or "tap" here.
func (d *EthtoolDrvinfo) BusInfo() (string, error) { return getName(d.busInfo[:]) }

// Pointer is the ifr_data value.
func (d *EthtoolDrvinfo) Pointer() unsafe.Pointer { return unsafe.Pointer(d) }

package ifcontrol

import (
	"unsafe"

	"github.com/irctrakz/netif/pkg/ifstructs"
	"github.com/irctrakz/netif/pkg/ioctl"
)

const (
	aliasNum = 26
	mtuNum   = 126
)

var reqGetGroup = ioctl.IOWR('i', 136, unsafe.Sizeof(ifstructs.Ifgroupreq{}))

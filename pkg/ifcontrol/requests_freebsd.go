package ifcontrol

import (
	"unsafe"

	"github.com/irctrakz/netif/pkg/ifstructs"
	"github.com/irctrakz/netif/pkg/ioctl"
)

const (
	aliasNum = 43 // SIOCAIFADDR takes struct in_aliasreq
	mtuNum   = 51
)

var (
	reqIfCreate   = ioctl.IOWR('i', 122, ifstructs.SizeofIfreq)
	reqIfDestroy  = ioctl.IOW('i', 121, ifstructs.SizeofIfreq)
	reqSetName    = ioctl.IOW('i', 40, ifstructs.SizeofIfreq)
	reqSetDrvSpec = ioctl.IOW('i', 123, unsafe.Sizeof(ifstructs.Ifdrv{}))
	reqGetGroup   = ioctl.IOWR('i', 136, unsafe.Sizeof(ifstructs.Ifgroupreq{}))
)

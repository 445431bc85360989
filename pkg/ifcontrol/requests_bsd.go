//go:build darwin || freebsd || netbsd || openbsd

package ifcontrol

import (
	"github.com/irctrakz/netif/pkg/ifstructs"
	"github.com/irctrakz/netif/pkg/ioctl"
)

var (
	reqGetFlags = ioctl.IOWR('i', 17, ifstructs.SizeofIfreq)
	reqSetFlags = ioctl.IOW('i', 16, ifstructs.SizeofIfreq)
	reqDelAddr  = ioctl.IOW('i', 25, ifstructs.SizeofIfreq)
	reqAddAlias = ioctl.IOW('i', aliasNum, ifstructs.SizeofIfaliasreq)
	reqGetMTU   = ioctl.IOWR('i', mtuNum, ifstructs.SizeofIfreq)
	reqSetMTU   = ioctl.IOW('i', mtuNum+1, ifstructs.SizeofIfreq)
)

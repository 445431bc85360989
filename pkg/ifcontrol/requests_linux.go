package ifcontrol

import "golang.org/x/sys/unix"

// Linux socket ioctls predate the _IOC encoding and are plain numbers.
var (
	reqGetFlags uint = unix.SIOCGIFFLAGS
	reqSetFlags uint = unix.SIOCSIFFLAGS
	reqGetMTU   uint = unix.SIOCGIFMTU
	reqSetMTU   uint = unix.SIOCSIFMTU
	reqGetIndex uint = unix.SIOCGIFINDEX
	reqGetName  uint = unix.SIOCGIFNAME
	reqEthtool  uint = unix.SIOCETHTOOL
	reqBrAddBr  uint = unix.SIOCBRADDBR
	reqBrDelBr  uint = unix.SIOCBRDELBR
	reqBrAddIf  uint = unix.SIOCBRADDIF
	reqBrDelIf  uint = unix.SIOCBRDELIF
)

package ifstructs

// Interface flags from <net/if.h>.
const (
	FlagUp           Flags = 0x1
	FlagBroadcast    Flags = 0x2
	FlagDebug        Flags = 0x4
	FlagLoopback     Flags = 0x8
	FlagPointToPoint Flags = 0x10
	FlagNoTrailers   Flags = 0x20
	FlagRunning      Flags = 0x40
	FlagNoARP        Flags = 0x80
	FlagPromisc      Flags = 0x100
	FlagAllMulti     Flags = 0x200
	FlagMaster       Flags = 0x400
	FlagSlave        Flags = 0x800
	FlagMulticast    Flags = 0x1000
	FlagPortSel      Flags = 0x2000
	FlagAutoMedia    Flags = 0x4000
	FlagDynamic      Flags = 0x8000
)

var flagNames = []flagName{
	{FlagUp, "UP"}, {FlagBroadcast, "BROADCAST"}, {FlagDebug, "DEBUG"},
	{FlagLoopback, "LOOPBACK"}, {FlagPointToPoint, "POINTOPOINT"},
	{FlagNoTrailers, "NOTRAILERS"}, {FlagRunning, "RUNNING"}, {FlagNoARP, "NOARP"},
	{FlagPromisc, "PROMISC"}, {FlagAllMulti, "ALLMULTI"}, {FlagMaster, "MASTER"},
	{FlagSlave, "SLAVE"}, {FlagMulticast, "MULTICAST"}, {FlagPortSel, "PORTSEL"},
	{FlagAutoMedia, "AUTOMEDIA"}, {FlagDynamic, "DYNAMIC"},
}

//go:build darwin || freebsd || netbsd || openbsd

package ifstructs

// Interface flags common to the BSD family.
const (
	FlagUp           Flags = 0x1
	FlagBroadcast    Flags = 0x2
	FlagDebug        Flags = 0x4
	FlagLoopback     Flags = 0x8
	FlagPointToPoint Flags = 0x10
	FlagRunning      Flags = 0x40
	FlagNoARP        Flags = 0x80
	FlagPromisc      Flags = 0x100
	FlagAllMulti     Flags = 0x200
	FlagOActive      Flags = 0x400
	FlagSimplex      Flags = 0x800
	FlagLink0        Flags = 0x1000
	FlagLink1        Flags = 0x2000
	FlagLink2        Flags = 0x4000
	FlagMulticast    Flags = 0x8000
)

var flagNames = append([]flagName{
	{FlagUp, "UP"}, {FlagBroadcast, "BROADCAST"}, {FlagDebug, "DEBUG"},
	{FlagLoopback, "LOOPBACK"}, {FlagPointToPoint, "POINTOPOINT"},
	{FlagRunning, "RUNNING"}, {FlagNoARP, "NOARP"}, {FlagPromisc, "PROMISC"},
	{FlagAllMulti, "ALLMULTI"}, {FlagOActive, "OACTIVE"}, {FlagSimplex, "SIMPLEX"},
	{FlagLink0, "LINK0"}, {FlagLink1, "LINK1"}, {FlagLink2, "LINK2"},
	{FlagMulticast, "MULTICAST"},
}, extraFlagNames...)

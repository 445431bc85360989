package ifstructs

// FreeBSD keeps a second 16-bit flag word (ifr_flagshigh); these live above bit 15.
const (
	FlagPPromisc  Flags = 0x20000
	FlagMonitor   Flags = 0x40000
	FlagStaticARP Flags = 0x80000
	FlagDying     Flags = 0x200000
	FlagRenaming  Flags = 0x400000
)

var extraFlagNames = []flagName{
	{FlagPPromisc, "PPROMISC"}, {FlagMonitor, "MONITOR"}, {FlagStaticARP, "STATICARP"},
	{FlagDying, "DYING"}, {FlagRenaming, "RENAMING"},
}

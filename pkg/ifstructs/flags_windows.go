package ifstructs

// Windows has no IFF_* ioctl interface; flags print as raw hex.
var flagNames []flagName

//go:build darwin || netbsd || openbsd

package ifstructs

// SizeofIfaliasreq is name plus address, broadcast and mask sockaddrs.
const SizeofIfaliasreq = aliasBaseSize

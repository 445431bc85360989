//go:build darwin || freebsd || netbsd || openbsd

package ifstructs

// BSD sockaddrs start with sa_len followed by an 8-bit family.

func setFamily(sa *Sockaddr, af int) {
	sa[0] = SizeofSockaddr
	sa[1] = byte(af)
}

func family(sa *Sockaddr) int { return int(sa[1]) }

package ifstructs

// SizeofIfreq is sizeof(struct ifreq). NetBSD sizes the union by a
// sockaddr_storage (ifru_space).
const SizeofIfreq = IFNAMSIZ + 128

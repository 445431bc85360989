package ifstructs

// SizeofIfreq is sizeof(struct ifreq); the largest union member is a sockaddr.
const SizeofIfreq = 32

//go:build netbsd || openbsd

package tuntap

// Create opens the first free /dev/tunN or /dev/tapN, or the unit named by
// opts.Name, and brings the interface up.
func Create(opts Options) (*VirtualInterface, error) {
	if err := opts.validate(false); err != nil {
		return nil, err
	}
	return createScanned(opts)
}

//go:build darwin || netbsd || openbsd

package tuntap

import (
	"fmt"
	"runtime"

	"github.com/irctrakz/netif/pkg/ifcontrol"
	"github.com/irctrakz/netif/pkg/logging"
)

func createScanned(opts Options) (*VirtualInterface, error) {
	p := newUnitScanner(opts.Kind.String())
	dev, name, err := p.openName(opts.Name)
	if err != nil {
		return nil, err
	}
	if err := ifcontrol.Up(name); err != nil {
		dev.Close()
		return nil, fmt.Errorf("activate %s: %w", name, err)
	}
	logging.For("tuntap").WithField("iface", name).WithField("kind", opts.Kind).Info("virtual interface opened")
	info := Info{Name: name, Kind: opts.Kind}
	if opts.Kind == KindTun && runtime.GOOS == "openbsd" {
		// OpenBSD tun always prefixes the address family
		info.HeaderLen = 4
	}
	return NewVirtualInterface(info, CloseDevice, dev), nil
}

//go:build windows

package tuntap

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/logging"
	"github.com/songgao/water"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

// tapComponentID is the hardware id of the OpenVPN TAP-Windows driver.
const tapComponentID = "tap0901"

// Create opens the TAP-Windows adapter. The driver is located through the
// network adapter class in the registry; in tun mode it needs opts.Network.
func Create(opts Options) (*VirtualInterface, error) {
	if err := opts.validate(false); err != nil {
		return nil, err
	}
	cfg := water.Config{DeviceType: water.TUN}
	if opts.Kind == KindTap {
		cfg.DeviceType = water.TAP
	}
	cfg.PlatformSpecificParams = water.PlatformSpecificParams{
		ComponentID:   tapComponentID,
		InterfaceName: opts.Name,
		Network:       opts.Network,
	}

	ifce, err := water.New(cfg)
	if err != nil {
		if driverMissing(err) {
			return nil, fmt.Errorf("%w: %s: %w", core.ErrDriverNotFound, tapComponentID, err)
		}
		return nil, fmt.Errorf("open tap adapter: %w", err)
	}

	logging.For("tuntap").WithField("iface", ifce.Name()).Info("virtual interface opened")
	return NewVirtualInterface(Info{Name: ifce.Name(), Kind: opts.Kind}, CloseDevice, ifce), nil
}

// driverMissing reports whether err means the TAP driver is not installed:
// the adapter class key or the device path does not exist. water reports a
// missing component id as plain text, which is matched last.
func driverMissing(err error) bool {
	switch {
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND),
		errors.Is(err, windows.ERROR_PATH_NOT_FOUND),
		errors.Is(err, registry.ErrNotExist),
		errors.Is(err, fs.ErrNotExist):
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "componentid")
}

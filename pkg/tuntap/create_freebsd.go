//go:build freebsd

package tuntap

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/ifcontrol"
	"github.com/irctrakz/netif/pkg/ifstructs"
	"github.com/irctrakz/netif/pkg/ioctl"
	"github.com/irctrakz/netif/pkg/logging"
	"golang.org/x/sys/unix"
)

var (
	reqTunGetName = ioctl.IOR('t', 93, ifstructs.SizeofIfreq) // TUNGIFNAME, TAPGIFNAME
	reqTunSetMode = ioctl.IOW('t', 94, 4)
	reqTunSetPID  = ioctl.IO('t', 95)
	reqTunSetHead = ioctl.IOW('t', 96, 4)
)

// Create clones /dev/tun or /dev/tap, renames the new interface to
// opts.Name unless it is the bare kind, and brings it up. Tun devices run
// in multi-af mode, so every frame carries a 4 byte address family header.
// Closing the queue destroys the interface.
func Create(opts Options) (*VirtualInterface, error) {
	if err := opts.validate(false); err != nil {
		return nil, err
	}
	clonePath := "/dev/" + opts.Kind.String()

	fd, err := unix.Open(clonePath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		if errors.Is(err, unix.ENOENT) {
			return nil, fmt.Errorf("%s: %w: %w", clonePath, core.ErrNotSupported, err)
		}
		return nil, fmt.Errorf("open %s: %w", clonePath, err)
	}

	var ifr ifstructs.Ifreq
	if err := ioctl.Ioctl(uintptr(fd), reqTunGetName, ifr.Pointer()); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("TUNGIFNAME: %w", err)
	}
	name, err := ifr.Name()
	if err != nil {
		unix.Close(fd)
		return nil, err
	}

	fail := func(err error) (*VirtualInterface, error) {
		unix.Close(fd)
		if derr := destroy(name); derr != nil {
			logging.For("tuntap").WithError(derr).Warnf("destroy %s after failed setup", name)
		}
		return nil, err
	}

	if opts.Kind == KindTun {
		if err := ioctl.Ioctl(uintptr(fd), reqTunSetPID, nil); err != nil {
			return fail(fmt.Errorf("TUNSIFPID %s: %w", name, err))
		}
		if err := ioctl.IoctlInt(uintptr(fd), reqTunSetHead, 1); err != nil {
			return fail(fmt.Errorf("TUNSIFHEAD %s: %w", name, err))
		}
		if err := ioctl.IoctlInt(uintptr(fd), reqTunSetMode, unix.IFF_BROADCAST|unix.IFF_MULTICAST); err != nil {
			return fail(fmt.Errorf("TUNSIFMODE %s: %w", name, err))
		}
	}

	if opts.Name != opts.Kind.String() && opts.Name != name {
		if err := rename(name, opts.Name); err != nil {
			return fail(err)
		}
		name = opts.Name
	}

	if opts.Async {
		if err := unix.SetNonblock(fd, true); err != nil {
			return fail(fmt.Errorf("set nonblock %s: %w", name, err))
		}
	}
	if err := ifcontrol.Up(name); err != nil {
		return fail(fmt.Errorf("activate %s: %w", name, err))
	}

	logging.For("tuntap").WithField("iface", name).WithField("kind", opts.Kind).Info("virtual interface created")
	dev := os.NewFile(uintptr(fd), "/dev/"+name)
	info := Info{Name: name, Kind: opts.Kind}
	if opts.Kind == KindTun {
		info.HeaderLen = 4
	}
	return NewVirtualInterface(info, destroyOnClose, dev), nil
}

// destroyOnClose closes the descriptor first, then removes the cloned
// interface, which the kernel otherwise keeps around.
var destroyOnClose = ClosePolicyFunc(func(info Info, dev io.Closer) error {
	if err := dev.Close(); err != nil {
		return err
	}
	return destroy(info.Name)
})

func destroy(name string) error {
	c, err := ifcontrol.Open()
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Destroy(name)
}

func rename(from, to string) error {
	c, err := ifcontrol.Open()
	if err != nil {
		return err
	}
	defer c.Close()
	return c.Rename(from, to)
}

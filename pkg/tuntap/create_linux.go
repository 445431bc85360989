//go:build linux

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

const cloneDevicePath = "/dev/net/tun"

// Create opens opts.Queues descriptors on one tun or tap interface and
// brings it up. Queues after the first attach to the name the kernel gave
// the first one, so templates like "tun%d" work with multi-queue.
func Create(opts Options) (*VirtualInterface, error) {
	if err := opts.validate(true); err != nil {
		return nil, err
	}
	log := logging.For("tuntap")

	var devs []io.ReadWriteCloser
	name := opts.Name
	for i := 0; i < opts.Queues; i++ {
		f, actual, err := openQueue(name, opts)
		if err != nil {
			closeAll(devs)
			return nil, err
		}
		devs = append(devs, f)
		name = actual
	}

	if err := ifcontrol.Up(name); err != nil {
		closeAll(devs)
		return nil, fmt.Errorf("activate %s: %w", name, err)
	}

	log.WithField("iface", name).WithField("kind", opts.Kind).WithField("queues", opts.Queues).Info("virtual interface created")
	return NewVirtualInterface(Info{Name: name, Kind: opts.Kind}, CloseDevice, devs...), nil
}

func openQueue(name string, opts Options) (*os.File, string, error) {
	fd, err := unix.Open(cloneDevicePath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		if errors.Is(err, unix.ENOENT) || errors.Is(err, unix.ENODEV) {
			return nil, "", fmt.Errorf("%s: %w: %w", cloneDevicePath, core.ErrNotSupported, err)
		}
		return nil, "", fmt.Errorf("open %s: %w", cloneDevicePath, err)
	}

	ifr, err := ifstructs.NewIfreq(name)
	if err != nil {
		unix.Close(fd)
		return nil, "", err
	}
	flags := uint16(unix.IFF_NO_PI | unix.IFF_TUN)
	if opts.Kind == KindTap {
		flags = unix.IFF_NO_PI | unix.IFF_TAP
	}
	if opts.Queues > 1 {
		flags |= unix.IFF_MULTI_QUEUE
	}
	ifr.SetTunFlags(flags)

	if err := ioctl.Ioctl(uintptr(fd), unix.TUNSETIFF, ifr.Pointer()); err != nil {
		unix.Close(fd)
		if errors.Is(err, unix.EBUSY) {
			return nil, "", fmt.Errorf("TUNSETIFF %s: %w: %w", name, core.ErrBusy, err)
		}
		return nil, "", fmt.Errorf("TUNSETIFF %s: %w", name, err)
	}
	actual, err := ifr.Name()
	if err != nil {
		unix.Close(fd)
		return nil, "", err
	}

	if opts.Async {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			return nil, "", fmt.Errorf("set nonblock %s: %w", actual, err)
		}
	}
	return os.NewFile(uintptr(fd), cloneDevicePath), actual, nil
}

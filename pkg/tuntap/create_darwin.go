//go:build darwin

package tuntap

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/logging"
	"golang.org/x/sys/unix"
)

const utunControlName = "com.apple.net.utun_control"

// Not exported by x/sys/unix for darwin.
const (
	sysprotoControl = 2 // SYSPROTO_CONTROL, <sys/sys_domain.h>
	utunOptIfname   = 2 // UTUN_OPT_IFNAME, <net/if_utun.h>
)

// Create opens a utun interface when opts.Name starts with "utun" ("utun"
// lets the kernel pick the unit, "utun5" asks for unit 5). Other names go
// through the tun/tap kext device nodes. utun frames carry a 4 byte address
// family header.
func Create(opts Options) (*VirtualInterface, error) {
	if err := opts.validate(false); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(opts.Name, "utun") {
		return createScanned(opts)
	}
	if opts.Kind != KindTun {
		return nil, fmt.Errorf("%w: utun is layer 3 only", core.ErrBadArguments)
	}

	var unit uint32
	if digits := strings.TrimPrefix(opts.Name, "utun"); digits != "" {
		n, err := strconv.ParseUint(digits, 10, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: bad utun unit in %q", core.ErrBadArguments, opts.Name)
		}
		unit = uint32(n) + 1
	}

	f, name, err := openUtun(unit, opts.Async)
	if err != nil {
		return nil, err
	}
	logging.For("tuntap").WithField("iface", name).Info("utun interface created")
	return NewVirtualInterface(Info{Name: name, Kind: KindTun, HeaderLen: 4}, CloseDevice, f), nil
}

func openUtun(unit uint32, async bool) (*os.File, string, error) {
	fd, err := unix.Socket(unix.AF_SYSTEM, unix.SOCK_DGRAM, sysprotoControl)
	if err != nil {
		return nil, "", fmt.Errorf("%w: control socket: %w", core.ErrNotSupported, err)
	}
	unix.CloseOnExec(fd)

	info := &unix.CtlInfo{}
	copy(info.Name[:], utunControlName)
	if err := unix.IoctlCtlInfo(fd, info); err != nil {
		unix.Close(fd)
		return nil, "", fmt.Errorf("%w: CTLIOCGINFO: %w", core.ErrDriverNotFound, err)
	}

	if err := unix.Connect(fd, &unix.SockaddrCtl{ID: info.Id, Unit: unit}); err != nil {
		unix.Close(fd)
		if err == unix.EBUSY {
			return nil, "", fmt.Errorf("utun unit %d: %w: %w", unit, core.ErrBusy, err)
		}
		return nil, "", fmt.Errorf("connect utun: %w", err)
	}

	name, err := unix.GetsockoptString(fd, sysprotoControl, utunOptIfname)
	if err != nil {
		unix.Close(fd)
		return nil, "", fmt.Errorf("UTUN_OPT_IFNAME: %w", err)
	}

	if async {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			return nil, "", fmt.Errorf("set nonblock %s: %w", name, err)
		}
	}
	return os.NewFile(uintptr(fd), name), name, nil
}

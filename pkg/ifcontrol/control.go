//go:build linux || darwin || freebsd || netbsd || openbsd

// Package ifcontrol queries and changes network interface state through the
// kernel ioctl interface: flags, MTU, addresses, bridges and groups.
package ifcontrol

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/ifstructs"
	"github.com/irctrakz/netif/pkg/ioctl"
	"github.com/irctrakz/netif/pkg/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Conn issues interface ioctls. *ioctl.Socket is the production Conn.
type Conn interface {
	Ioctl(req uint, arg unsafe.Pointer) error
	Close() error
}

// Controller runs interface operations over one Conn. It is safe for
// concurrent use when the Conn is.
type Controller struct {
	conn Conn
	log  *logrus.Entry
}

// New wraps an existing Conn.
func New(conn Conn) *Controller {
	return &Controller{conn: conn, log: logging.For("ifcontrol")}
}

// Open creates a Controller over a fresh control socket.
func Open() (*Controller, error) {
	s, err := ioctl.NewSocket()
	if err != nil {
		return nil, err
	}
	return New(s), nil
}

// Close releases the control socket.
func (c *Controller) Close() error { return c.conn.Close() }

// do issues one request and maps the errno.
func (c *Controller) do(op, name string, req uint, arg unsafe.Pointer) error {
	if logging.IsDebug() {
		c.log.WithFields(logrus.Fields{"op": op, "iface": name}).Debugf("ioctl %#x", req)
	}
	if err := c.conn.Ioctl(req, arg); err != nil {
		return translate(op, name, err)
	}
	return nil
}

// translate turns "no such device" into ErrNotFound and otherwise only adds
// context; the errno stays reachable through errors.Is.
func translate(op, name string, err error) error {
	if errors.Is(err, unix.ENXIO) || errors.Is(err, unix.ENODEV) {
		return fmt.Errorf("%s %s: %w: %w", op, name, core.ErrNotFound, err)
	}
	return fmt.Errorf("%s %s: %w", op, name, err)
}

func (c *Controller) getFlags(name string) (*ifstructs.Ifreq, error) {
	r, err := ifstructs.NewIfreq(name)
	if err != nil {
		return nil, err
	}
	if err := c.do("get flags", name, reqGetFlags, r.Pointer()); err != nil {
		return nil, err
	}
	return r, nil
}

// Flags returns the current IFF_* bits of name.
func (c *Controller) Flags(name string) (ifstructs.Flags, error) {
	r, err := c.getFlags(name)
	if err != nil {
		return 0, err
	}
	return r.Flags(), nil
}

// SetFlags replaces the flags of name.
func (c *Controller) SetFlags(name string, f ifstructs.Flags) error {
	r, err := ifstructs.NewIfreq(name)
	if err != nil {
		return err
	}
	r.SetFlags(f)
	return c.do("set flags", name, reqSetFlags, r.Pointer())
}

// updateFlags reads the flags, applies fn and writes them back only when
// something changed. The read and write are separate system calls.
func (c *Controller) updateFlags(name string, fn func(r *ifstructs.Ifreq)) error {
	r, err := c.getFlags(name)
	if err != nil {
		return err
	}
	before := r.Flags()
	fn(r)
	if r.Flags() == before {
		return nil
	}
	return c.do("set flags", name, reqSetFlags, r.Pointer())
}

// IsUp reports whether name is both administratively up and running.
func (c *Controller) IsUp(name string) (bool, error) {
	f, err := c.Flags(name)
	if err != nil {
		return false, err
	}
	return f.Has(ifstructs.FlagUp | ifstructs.FlagRunning), nil
}

// Up sets IFF_UP and IFF_RUNNING. It is a no-op when IsUp already holds.
func (c *Controller) Up(name string) error {
	return c.updateFlags(name, func(r *ifstructs.Ifreq) {
		if !r.Flags().Has(ifstructs.FlagUp | ifstructs.FlagRunning) {
			r.InsertFlags(ifstructs.FlagUp | ifstructs.FlagRunning)
		}
	})
}

// Down clears IFF_UP and IFF_RUNNING. It only acts when IsUp holds, so an
// interface that is up but not running is left alone.
func (c *Controller) Down(name string) error {
	return c.updateFlags(name, func(r *ifstructs.Ifreq) {
		if r.Flags().Has(ifstructs.FlagUp | ifstructs.FlagRunning) {
			r.RemoveFlags(ifstructs.FlagUp | ifstructs.FlagRunning)
		}
	})
}

// SetPromiscuousMode toggles IFF_PROMISC.
func (c *Controller) SetPromiscuousMode(name string, enabled bool) error {
	return c.updateFlags(name, func(r *ifstructs.Ifreq) {
		if enabled {
			r.InsertFlags(ifstructs.FlagPromisc)
		} else {
			r.RemoveFlags(ifstructs.FlagPromisc)
		}
	})
}

// MTU returns the interface MTU.
func (c *Controller) MTU(name string) (int, error) {
	r, err := ifstructs.NewIfreq(name)
	if err != nil {
		return 0, err
	}
	if err := c.do("get mtu", name, reqGetMTU, r.Pointer()); err != nil {
		return 0, err
	}
	return r.MTU(), nil
}

// SetMTU changes the interface MTU.
func (c *Controller) SetMTU(name string, mtu int) error {
	if mtu <= 0 {
		return fmt.Errorf("%w: mtu %d", core.ErrBadArguments, mtu)
	}
	r, err := ifstructs.NewIfreq(name)
	if err != nil {
		return err
	}
	r.SetMTU(mtu)
	return c.do("set mtu", name, reqSetMTU, r.Pointer())
}

// DriverInfo identifies the kernel driver behind an interface.
type DriverInfo struct {
	Name    string
	Version string
	BusInfo string
}

//go:build !windows

package tuntap

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/logging"
)

// DefaultUnitMax is how many /dev/<kind>N units a scan tries.
const DefaultUnitMax = 16

// opener opens one clone device path.
type opener func(path string) (io.ReadWriteCloser, error)

func openDevice(path string) (io.ReadWriteCloser, error) {
	return os.OpenFile(path, os.O_RDWR, 0)
}

// unitScanner finds a free unit among /dev/<prefix>0 .. /dev/<prefix><max-1>.
type unitScanner struct {
	dir    string
	prefix string
	max    int
	open   opener
}

func newUnitScanner(prefix string) *unitScanner {
	return &unitScanner{dir: "/dev", prefix: prefix, max: DefaultUnitMax, open: openDevice}
}

// tryUnit opens one unit. A busy unit reports ErrBusy, a missing device
// node ErrNotSupported.
func (p *unitScanner) tryUnit(unit int) (io.ReadWriteCloser, string, error) {
	name := p.prefix + strconv.Itoa(unit)
	path := p.dir + "/" + name
	dev, err := p.open(path)
	switch {
	case err == nil:
		return dev, name, nil
	case errors.Is(err, syscall.EBUSY):
		return nil, name, fmt.Errorf("%s: %w", path, core.ErrBusy)
	case errors.Is(err, fs.ErrNotExist):
		return nil, name, fmt.Errorf("%s: %w: %w", path, core.ErrNotSupported, err)
	}
	return nil, name, fmt.Errorf("open %s: %w", path, err)
}

// first returns the lowest free unit, skipping busy ones. It stops at the
// first unit that opens.
func (p *unitScanner) first() (io.ReadWriteCloser, string, error) {
	log := logging.For("tuntap")
	for unit := 0; unit < p.max; unit++ {
		dev, name, err := p.tryUnit(unit)
		if errors.Is(err, core.ErrBusy) {
			log.Debugf("%s busy, trying next unit", name)
			continue
		}
		return dev, name, err
	}
	return nil, "", fmt.Errorf("%w: /dev/%s0-%d all busy", core.ErrMaxNumberReached, p.prefix, p.max-1)
}

// openName picks a unit from the requested name: the bare prefix means any
// free unit, prefix plus digits means exactly that unit.
func (p *unitScanner) openName(name string) (io.ReadWriteCloser, string, error) {
	if name == p.prefix {
		return p.first()
	}
	digits, ok := strings.CutPrefix(name, p.prefix)
	unit, err := strconv.Atoi(digits)
	if !ok || err != nil || unit < 0 {
		return nil, "", fmt.Errorf("%w: %q is neither %q nor %s<unit>", core.ErrBadArguments, name, p.prefix, p.prefix)
	}
	return p.tryUnit(unit)
}

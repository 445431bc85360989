package ifcontrol

import (
	"runtime"
	"unsafe"

	"github.com/irctrakz/netif/pkg/ifstructs"
)

// CreateBridge clones a bridge interface and renames it to name.
func (c *Controller) CreateBridge(name string) error {
	if err := ifstructs.CheckName(name); err != nil {
		return err
	}
	r, err := ifstructs.NewIfreq("bridge")
	if err != nil {
		return err
	}
	if err := c.do("create bridge", name, reqIfCreate, r.Pointer()); err != nil {
		return err
	}
	created, err := r.Name()
	if err != nil {
		return err
	}
	if created == name {
		return nil
	}
	if err := c.rename(created, name); err != nil {
		if derr := c.destroy(created); derr != nil {
			c.log.WithField("iface", created).Warnf("destroying unrenamed bridge: %v", derr)
		}
		return err
	}
	return nil
}

// RemoveBridge destroys the bridge interface.
func (c *Controller) RemoveBridge(name string) error {
	return c.destroy(name)
}

// AddToBridge attaches member with the BRDGADD driver command.
func (c *Controller) AddToBridge(bridge, member string) error {
	return c.bridgeCmd("add bridge member", ifstructs.BRDGADD, bridge, member)
}

// RemoveFromBridge detaches member with the BRDGDEL driver command.
func (c *Controller) RemoveFromBridge(bridge, member string) error {
	return c.bridgeCmd("remove bridge member", ifstructs.BRDGDEL, bridge, member)
}

func (c *Controller) bridgeCmd(op string, cmd ifstructs.BridgeCmd, bridge, member string) error {
	br, err := ifstructs.NewIfbreq(member)
	if err != nil {
		return err
	}
	drv, err := ifstructs.NewIfdrv(bridge, cmd, br.Pointer(), ifstructs.SizeofIfbreq)
	if err != nil {
		return err
	}
	err = c.do(op, bridge, reqSetDrvSpec, drv.Pointer())
	runtime.KeepAlive(br)
	return err
}

func (c *Controller) rename(from, to string) error {
	newName, err := ifstructs.CString(to)
	if err != nil {
		return err
	}
	r, err := ifstructs.NewIfreqData(from, unsafe.Pointer(&newName[0]))
	if err != nil {
		return err
	}
	err = c.do("rename", from, reqSetName, r.Pointer())
	runtime.KeepAlive(newName)
	return err
}

// Destroy removes a cloned interface (SIOCIFDESTROY).
func (c *Controller) Destroy(name string) error { return c.destroy(name) }

func (c *Controller) destroy(name string) error {
	r, err := ifstructs.NewIfreq(name)
	if err != nil {
		return err
	}
	return c.do("destroy", name, reqIfDestroy, r.Pointer())
}

// Rename changes the name of an interface (SIOCSIFNAME).
func (c *Controller) Rename(from, to string) error { return c.rename(from, to) }

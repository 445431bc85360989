//go:build darwin || freebsd || netbsd || openbsd

package route

import (
	"fmt"

	"github.com/irctrakz/netif/pkg/ifcontrol"
	"github.com/irctrakz/netif/pkg/logging"
	xroute "golang.org/x/net/route"
	"golang.org/x/sys/unix"
)

// Family selects the address family of a dump; 0 means all families.
type Family int

const (
	FamilyAll  Family = 0
	FamilyInet Family = unix.AF_INET
)

// List dumps the routing table with sysctl NET_RT_DUMP and decodes it.
// FetchRIB sizes the buffer first and then fills it.
func List(family Family) ([]Record, error) {
	buf, err := xroute.FetchRIB(int(family), xroute.RIBTypeRoute, 0)
	if err != nil {
		return nil, fmt.Errorf("route dump: %w", err)
	}
	recs, err := Decode(buf, Native)
	if err != nil {
		return nil, err
	}
	resolveNames(recs)
	logging.For("route").Debugf("decoded %d routes from %d bytes", len(recs), len(buf))
	return recs, nil
}

func resolveNames(recs []Record) {
	c, err := ifcontrol.Open()
	if err != nil {
		return
	}
	defer c.Close()
	cache := map[int]string{}
	for i := range recs {
		idx := recs[i].Index
		name, ok := cache[idx]
		if !ok {
			name, _ = c.NameByIndex(idx)
			cache[idx] = name
		}
		recs[i].Interface = name
	}
}

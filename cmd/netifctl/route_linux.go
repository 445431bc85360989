//go:build linux

package main

import (
	"fmt"
	"net/netip"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/route"
)

func changeRoute(op string, dst netip.Prefix, gw netip.Addr, dev string) error {
	switch op {
	case "add":
		return route.Add(dst, gw, dev)
	case "del":
		return route.Delete(dst, gw, dev)
	}
	return fmt.Errorf("%w: route %s", core.ErrBadArguments, op)
}

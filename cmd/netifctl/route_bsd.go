//go:build darwin || freebsd || netbsd || openbsd

package main

import (
	"fmt"
	"net/netip"

	"github.com/irctrakz/netif/pkg/core"
)

func changeRoute(op string, dst netip.Prefix, _ netip.Addr, _ string) error {
	return fmt.Errorf("route %s %s: %w", op, dst, core.ErrNotSupported)
}

//go:build linux || darwin || freebsd || netbsd || openbsd

// Command netifctl inspects and changes network interfaces through the
// same ioctl paths netifd uses.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/netip"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/ifcontrol"
	"github.com/irctrakz/netif/pkg/logging"
	"github.com/irctrakz/netif/pkg/route"
)

type command struct {
	usage string
	args  int // minimum positional arguments
	run   func(args []string, out io.Writer) error
}

var commands = map[string]command{
	"list": {"list", 0, func(_ []string, out io.Writer) error {
		ifs, err := ifcontrol.All()
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "INDEX\tNAME\tKIND\tFLAGS\tADDRESSES")
		for _, i := range ifs {
			addrs := make([]string, len(i.Addrs))
			for j, a := range i.Addrs {
				addrs[j] = a.String()
			}
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", i.Index, i.Name, i.Link, i.Flags, strings.Join(addrs, ","))
		}
		return tw.Flush()
	}},
	"up":   {"up <iface>", 1, func(a []string, _ io.Writer) error { return ifcontrol.Up(a[0]) }},
	"down": {"down <iface>", 1, func(a []string, _ io.Writer) error { return ifcontrol.Down(a[0]) }},
	"flags": {"flags <iface>", 1, func(a []string, out io.Writer) error {
		f, err := ifcontrol.Flags(a[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s (%#x)\n", a[0], f, uint32(f))
		return nil
	}},
	"promisc": {"promisc <iface> on|off", 2, func(a []string, _ io.Writer) error {
		on, err := parseOnOff(a[1])
		if err != nil {
			return err
		}
		return ifcontrol.SetPromiscuousMode(a[0], on)
	}},
	"mtu": {"mtu <iface> [value]", 1, func(a []string, out io.Writer) error {
		if len(a) == 1 {
			mtu, err := ifcontrol.MTU(a[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, mtu)
			return nil
		}
		mtu, err := strconv.Atoi(a[1])
		if err != nil || mtu <= 0 {
			return fmt.Errorf("%w: bad mtu %q", core.ErrBadArguments, a[1])
		}
		return ifcontrol.SetMTU(a[0], mtu)
	}},
	"addr": {"addr add|del <iface> <cidr> [broadcast]", 3, func(a []string, _ io.Writer) error {
		prefix, brd, err := parseAddr(a[2:])
		if err != nil {
			return err
		}
		switch a[0] {
		case "add":
			return ifcontrol.AddAddr(a[1], prefix, brd)
		case "del":
			return ifcontrol.DelAddr(a[1], prefix)
		}
		return fmt.Errorf("%w: addr %s", core.ErrBadArguments, a[0])
	}},
	"bridge": {"bridge create|destroy <bridge> | bridge add|del <bridge> <member>", 2, func(a []string, _ io.Writer) error {
		switch a[0] {
		case "create":
			return ifcontrol.CreateBridge(a[1])
		case "destroy":
			return ifcontrol.RemoveBridge(a[1])
		case "add", "del":
			if len(a) < 3 {
				return fmt.Errorf("%w: bridge %s needs a member", core.ErrBadArguments, a[0])
			}
			if a[0] == "add" {
				return ifcontrol.AddToBridge(a[1], a[2])
			}
			return ifcontrol.RemoveFromBridge(a[1], a[2])
		}
		return fmt.Errorf("%w: bridge %s", core.ErrBadArguments, a[0])
	}},
	"routes": {"routes [-4]", 0, func(a []string, out io.Writer) error {
		fs := flag.NewFlagSet("routes", flag.ContinueOnError)
		inet := fs.Bool("4", false, "IPv4 routes only")
		if err := fs.Parse(a); err != nil {
			return err
		}
		family := route.FamilyAll
		if *inet {
			family = route.FamilyInet
		}
		recs, err := route.List(family)
		if err != nil {
			return err
		}
		for i := range recs {
			fmt.Fprintln(out, recs[i].String())
		}
		return nil
	}},
	"route": {"route add|del <cidr> <gateway|-> [iface]", 3, func(a []string, _ io.Writer) error {
		dst, err := netip.ParsePrefix(a[1])
		if err != nil {
			return fmt.Errorf("%w: %w", core.ErrBadArguments, err)
		}
		var gw netip.Addr
		if a[2] != "-" {
			if gw, err = netip.ParseAddr(a[2]); err != nil {
				return fmt.Errorf("%w: %w", core.ErrBadArguments, err)
			}
		}
		var dev string
		if len(a) > 3 {
			dev = a[3]
		}
		return changeRoute(a[0], dst, gw, dev)
	}},
	"groups": {"groups <iface>", 1, func(a []string, out io.Writer) error {
		groups, err := ifcontrol.Groups(a[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, strings.Join(groups, " "))
		return nil
	}},
	"driver": {"driver <iface>", 1, func(a []string, out io.Writer) error {
		d, err := ifcontrol.Driver(a[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "driver: %s\nversion: %s\nbus-info: %s\n", d.Name, d.Version, d.BusInfo)
		return nil
	}},
	"index": {"index <iface>", 1, func(a []string, out io.Writer) error {
		idx, err := ifcontrol.IndexByName(a[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(out, idx)
		return nil
	}},
	"name": {"name <index>", 1, func(a []string, out io.Writer) error {
		idx, err := strconv.Atoi(a[0])
		if err != nil {
			return fmt.Errorf("%w: bad index %q", core.ErrBadArguments, a[0])
		}
		name, err := ifcontrol.NameByIndex(idx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, name)
		return nil
	}},
}

func parseOnOff(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "1", "true", "yes":
		return true, nil
	case "off", "0", "false", "no":
		return false, nil
	}
	return false, fmt.Errorf("%w: expected on or off, got %q", core.ErrBadArguments, s)
}

// parseAddr reads "<cidr> [broadcast]". A bare address is a host prefix.
func parseAddr(args []string) (netip.Prefix, netip.Addr, error) {
	var brd netip.Addr
	prefix, err := netip.ParsePrefix(args[0])
	if err != nil {
		addr, aerr := netip.ParseAddr(args[0])
		if aerr != nil {
			return netip.Prefix{}, brd, fmt.Errorf("%w: %q is not an address or CIDR", core.ErrBadArguments, args[0])
		}
		prefix = netip.PrefixFrom(addr, addr.BitLen())
	}
	if len(args) > 1 {
		if brd, err = netip.ParseAddr(args[1]); err != nil {
			return netip.Prefix{}, brd, fmt.Errorf("%w: bad broadcast %q", core.ErrBadArguments, args[1])
		}
	}
	return prefix, brd, nil
}

func usage(out io.Writer) {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Fprintln(out, "usage: netifctl [-debug] <command> [args]")
	for _, n := range names {
		fmt.Fprintln(out, "  "+commands[n].usage)
	}
}

// dispatch runs one command line. It is split from main for tests.
func dispatch(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, ok := commands[args[0]]
	if !ok || len(args)-1 < cmd.args {
		return errUsage
	}
	return cmd.run(args[1:], out)
}

var errUsage = errors.New("usage")

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Usage = func() { usage(os.Stderr) }
	flag.Parse()
	if *debug {
		logging.SetLevel(logging.DebugLevel)
	}

	if err := dispatch(flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			usage(os.Stderr)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "netifctl: %v\n", err)
		os.Exit(1)
	}
}

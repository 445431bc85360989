//go:build linux || darwin || freebsd || netbsd || openbsd

package main

import (
	"bytes"
	"net/netip"
	"testing"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOnOff(t *testing.T) {
	for _, s := range []string{"on", "ON", "1", "true", "yes"} {
		v, err := parseOnOff(s)
		require.NoError(t, err, s)
		assert.True(t, v, s)
	}
	v, err := parseOnOff("off")
	require.NoError(t, err)
	assert.False(t, v)

	_, err = parseOnOff("maybe")
	assert.ErrorIs(t, err, core.ErrBadArguments)
}

func TestParseAddr(t *testing.T) {
	p, brd, err := parseAddr([]string{"10.0.0.1/24", "10.0.0.255"})
	require.NoError(t, err)
	assert.Equal(t, netip.MustParsePrefix("10.0.0.1/24"), p)
	assert.Equal(t, netip.MustParseAddr("10.0.0.255"), brd)

	p, brd, err = parseAddr([]string{"192.168.1.7"})
	require.NoError(t, err)
	assert.Equal(t, 32, p.Bits())
	assert.False(t, brd.IsValid())

	_, _, err = parseAddr([]string{"nope"})
	assert.ErrorIs(t, err, core.ErrBadArguments)
	_, _, err = parseAddr([]string{"10.0.0.1/8", "nope"})
	assert.ErrorIs(t, err, core.ErrBadArguments)
}

func TestDispatchUsage(t *testing.T) {
	var out bytes.Buffer
	assert.ErrorIs(t, dispatch(nil, &out), errUsage)
	assert.ErrorIs(t, dispatch([]string{"frobnicate"}, &out), errUsage)
	assert.ErrorIs(t, dispatch([]string{"promisc", "eth0"}, &out), errUsage)

	assert.ErrorIs(t, dispatch([]string{"mtu", "eth0", "-5"}, &out), core.ErrBadArguments)
	assert.ErrorIs(t, dispatch([]string{"name", "x"}, &out), core.ErrBadArguments)
	assert.ErrorIs(t, dispatch([]string{"addr", "swap", "eth0", "10.0.0.1/24"}, &out), core.ErrBadArguments)
	assert.ErrorIs(t, dispatch([]string{"route", "add", "bogus", "-"}, &out), core.ErrBadArguments)
}

func TestUsageListsEveryCommand(t *testing.T) {
	var out bytes.Buffer
	usage(&out)
	for _, c := range commands {
		assert.Contains(t, out.String(), c.usage)
	}
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/tuntap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	c := DefaultConfig()
	require.NoError(t, c.Validate())
	assert.Equal(t, tuntap.DefaultCapacity, c.Pipeline.Capacity)
}

func TestLoadFromFileYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netifd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
interface:
  name: t0
  kind: tap
  queues: 2
  address: 10.66.0.1/24
pipeline:
  pcapFile: /tmp/t0.pcap
bridge:
  name: br0
  members: [eth1]
  attachInterface: true
wireguard:
  enabled: true
  privateKey: a2V5
  listenPort: 51000
  peers:
    - publicKey: cGVlcg==
      allowedIPs: [10.66.0.2/32]
logging:
  level: debug
metrics:
  interval: 30s
`), 0644))

	c := DefaultConfig()
	require.NoError(t, LoadFromFile(path, c))
	require.NoError(t, c.Validate())

	assert.Equal(t, "t0", c.Interface.Name)
	assert.Equal(t, 2, c.Interface.Queues)
	assert.Equal(t, 1500, c.Interface.MTU, "defaults survive")
	assert.Equal(t, "/tmp/t0.pcap", c.Pipeline.PCAPFile)
	assert.Equal(t, []string{"eth1"}, c.Bridge.Members)
	assert.True(t, c.Bridge.AttachInterface)
	require.Len(t, c.WireGuard.Peers, 1)
	assert.Equal(t, []string{"10.66.0.2/32"}, c.WireGuard.Peers[0].AllowedIPs)

	opts, err := c.TunOptions()
	require.NoError(t, err)
	assert.Equal(t, tuntap.KindTap, opts.Kind)
	assert.Equal(t, "10.66.0.1/24", opts.Network)
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "netifd.json")
	c := DefaultConfig()
	c.Interface.Name = "tap7"
	c.Pipeline.Echo = true
	require.NoError(t, c.SaveToFile(path))

	loaded := &Config{}
	require.NoError(t, LoadFromFile(path, loaded))
	assert.Equal(t, c, loaded)
}

func TestUnsupportedFormat(t *testing.T) {
	assert.Error(t, LoadFromFile("/nonexistent/netifd.toml", DefaultConfig()))

	path := filepath.Join(t.TempDir(), "netifd.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0644))
	assert.Error(t, LoadFromFile(path, DefaultConfig()))
	assert.Error(t, DefaultConfig().SaveToFile(path))
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("NETIF_NAME", "t9")
	t.Setenv("NETIF_QUEUES", "4")
	t.Setenv("NETIF_ECHO", "true")
	t.Setenv("NETIF_BRIDGE", "br1")
	t.Setenv("NETIF_BRIDGE_MEMBERS", "eth0, eth1,")
	t.Setenv("NETIF_LOG_LEVEL", "warn")
	t.Setenv("NETIF_METRICS_INTERVAL", "5s")
	t.Setenv("NETIF_MTU", "not a number")

	c := DefaultConfig()
	LoadFromEnv(c)
	assert.Equal(t, "t9", c.Interface.Name)
	assert.Equal(t, 4, c.Interface.Queues)
	assert.Equal(t, 1500, c.Interface.MTU)
	assert.True(t, c.Pipeline.Echo)
	assert.Equal(t, []string{"eth0", "eth1"}, c.Bridge.Members)
	assert.Equal(t, "warn", c.Logging.Level)
	require.NoError(t, c.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		want   error
	}{
		{"empty name", func(c *Config) { c.Interface.Name = "" }, core.ErrBadArguments},
		{"long name", func(c *Config) { c.Interface.Name = "a-very-long-name0" }, core.ErrNameTooLong},
		{"bad kind", func(c *Config) { c.Interface.Kind = "tin" }, core.ErrBadArguments},
		{"no queues", func(c *Config) { c.Interface.Queues = 0 }, core.ErrBadArguments},
		{"bad address", func(c *Config) { c.Interface.Address = "10.0.0.1" }, core.ErrBadArguments},
		{"bad bridge member", func(c *Config) { c.Bridge.Name = "br0"; c.Bridge.Members = []string{""} }, core.ErrBadArguments},
		{"wg without key", func(c *Config) { c.WireGuard.Enabled = true }, core.ErrBadArguments},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, core.ErrBadArguments},
		{"bad interval", func(c *Config) { c.Metrics.Interval = "soon" }, core.ErrBadArguments},
		{"bad format", func(c *Config) { c.Metrics.Format = "xml" }, core.ErrBadArguments},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), tt.want)
		})
	}
}

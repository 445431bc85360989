// Package config loads the netifd configuration from a JSON or YAML file,
// with environment overrides.
package config

import (
	"encoding/json"
	"fmt"
	"net/netip"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/irctrakz/netif/pkg/core"
	"github.com/irctrakz/netif/pkg/ifstructs"
	"github.com/irctrakz/netif/pkg/logging"
	"github.com/irctrakz/netif/pkg/tuntap"
	"gopkg.in/yaml.v3"
)

// Config represents the complete daemon configuration.
type Config struct {
	// Interface describes the virtual interface to create.
	Interface core.InterfaceConfig `json:"interface" yaml:"interface"`

	// Pipeline tunes the per-queue reader/writer pair.
	Pipeline core.PipelineConfig `json:"pipeline" yaml:"pipeline"`

	// Bridge optionally creates a bridge around the interface.
	Bridge core.BridgeConfig `json:"bridge" yaml:"bridge"`

	// WireGuard contains the WireGuard configuration.
	WireGuard core.WireGuardConfig `json:"wireguard" yaml:"wireguard"`

	// Logging contains the logging configuration.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Metrics controls periodic reporting.
	Metrics core.MetricsConfig `json:"metrics" yaml:"metrics"`
}

// LoggingConfig contains configuration for logging.
type LoggingConfig struct {
	// Level is the logging level (debug, info, warn, error).
	Level string `json:"level" yaml:"level"`

	// JSON switches to the logrus JSON formatter.
	JSON bool `json:"json" yaml:"json"`

	// File is the log file path.
	File string `json:"file" yaml:"file"`

	// MaxSize is the maximum size of the log file in megabytes.
	MaxSize int `json:"maxSize" yaml:"maxSize"`

	// MaxBackups is the maximum number of old log files to retain.
	MaxBackups int `json:"maxBackups" yaml:"maxBackups"`

	// MaxAge is the maximum number of days to retain old log files.
	MaxAge int `json:"maxAge" yaml:"maxAge"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Interface: core.InterfaceConfig{
			Name:   "tun0",
			Kind:   "tun",
			Queues: 1,
			MTU:    1500,
			Async:  true,
		},
		Pipeline: core.PipelineConfig{
			Capacity: tuntap.DefaultCapacity,
			Reserve:  tuntap.DefaultReserve,
			MinFree:  tuntap.DefaultMinFree,
		},
		WireGuard: core.WireGuardConfig{
			ListenPort: 51820,
			Peers:      []core.WireGuardPeer{},
		},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     7,
		},
		Metrics: core.MetricsConfig{
			Format: "text",
		},
	}
}

// LoadFromFile loads configuration from a file.
func LoadFromFile(path string, config *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Determine file format based on extension
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, config); err != nil {
			return fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", path)
	}

	return nil
}

func envInt(key string, dst *int) {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if val := os.Getenv(key); val != "" {
		*dst = val == "true" || val == "1"
	}
}

func envString(key string, dst *string) {
	if val := os.Getenv(key); val != "" {
		*dst = val
	}
}

// LoadFromEnv loads configuration from NETIF_* environment variables.
func LoadFromEnv(config *Config) {
	// Interface config
	envString("NETIF_NAME", &config.Interface.Name)
	envString("NETIF_KIND", &config.Interface.Kind)
	envInt("NETIF_QUEUES", &config.Interface.Queues)
	envString("NETIF_ADDRESS", &config.Interface.Address)
	envInt("NETIF_MTU", &config.Interface.MTU)
	envBool("NETIF_PROMISCUOUS", &config.Interface.Promiscuous)
	envBool("NETIF_ASYNC", &config.Interface.Async)

	// Pipeline config
	envInt("NETIF_PIPELINE_CAPACITY", &config.Pipeline.Capacity)
	envString("NETIF_PCAP", &config.Pipeline.PCAPFile)
	envBool("NETIF_ECHO", &config.Pipeline.Echo)

	// Bridge config
	envString("NETIF_BRIDGE", &config.Bridge.Name)
	if val := os.Getenv("NETIF_BRIDGE_MEMBERS"); val != "" {
		config.Bridge.Members = nil
		for _, m := range strings.Split(val, ",") {
			if m = strings.TrimSpace(m); m != "" {
				config.Bridge.Members = append(config.Bridge.Members, m)
			}
		}
	}

	// WireGuard config
	envBool("NETIF_WG_ENABLED", &config.WireGuard.Enabled)
	envString("NETIF_WG_PRIVATE_KEY", &config.WireGuard.PrivateKey)
	envInt("NETIF_WG_LISTEN_PORT", &config.WireGuard.ListenPort)

	// Logging config
	envString("NETIF_LOG_LEVEL", &config.Logging.Level)
	envBool("NETIF_LOG_JSON", &config.Logging.JSON)
	envString("NETIF_LOG_FILE", &config.Logging.File)
	envInt("NETIF_LOG_MAX_SIZE", &config.Logging.MaxSize)
	envInt("NETIF_LOG_MAX_BACKUPS", &config.Logging.MaxBackups)
	envInt("NETIF_LOG_MAX_AGE", &config.Logging.MaxAge)

	// Metrics config
	envString("NETIF_METRICS_INTERVAL", &config.Metrics.Interval)
	envString("NETIF_METRICS_FORMAT", &config.Metrics.Format)
	envString("NETIF_METRICS_LISTEN", &config.Metrics.Listen)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate Interface config
	if err := ifstructs.CheckName(c.Interface.Name); err != nil {
		return fmt.Errorf("interface name: %w", err)
	}
	if _, err := tuntap.ParseKind(c.Interface.Kind); err != nil {
		return err
	}
	if c.Interface.Queues < 1 {
		return fmt.Errorf("%w: invalid queue count: %d", core.ErrBadArguments, c.Interface.Queues)
	}
	if c.Interface.Address != "" {
		if _, err := netip.ParsePrefix(c.Interface.Address); err != nil {
			return fmt.Errorf("%w: invalid interface address (must be CIDR, e.g. '10.66.0.1/24'): %w", core.ErrBadArguments, err)
		}
	}
	if c.Interface.MTU < 0 {
		return fmt.Errorf("%w: invalid MTU: %d", core.ErrBadArguments, c.Interface.MTU)
	}

	// Validate Pipeline config
	if c.Pipeline.Capacity < 0 || c.Pipeline.Reserve < 0 || c.Pipeline.MinFree < 0 {
		return fmt.Errorf("%w: pipeline sizes cannot be negative", core.ErrBadArguments)
	}

	// Validate Bridge config
	if c.Bridge.Name != "" {
		if err := ifstructs.CheckName(c.Bridge.Name); err != nil {
			return fmt.Errorf("bridge name: %w", err)
		}
		for _, m := range c.Bridge.Members {
			if err := ifstructs.CheckName(m); err != nil {
				return fmt.Errorf("bridge member: %w", err)
			}
		}
	}

	// Validate WireGuard config
	if c.WireGuard.Enabled {
		if c.WireGuard.PrivateKey == "" {
			return fmt.Errorf("%w: WireGuard private key is required", core.ErrBadArguments)
		}
		if c.WireGuard.ListenPort < 0 || c.WireGuard.ListenPort > 65535 {
			return fmt.Errorf("%w: invalid WireGuard listen port: %d", core.ErrBadArguments, c.WireGuard.ListenPort)
		}
	}

	// Validate Logging config
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: invalid logging level: %s", core.ErrBadArguments, c.Logging.Level)
	}

	// Validate Metrics config
	if c.Metrics.Interval != "" {
		if d, err := time.ParseDuration(c.Metrics.Interval); err != nil || d <= 0 {
			return fmt.Errorf("%w: invalid metrics interval: %q", core.ErrBadArguments, c.Metrics.Interval)
		}
	}
	switch c.Metrics.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: invalid metrics format: %s", core.ErrBadArguments, c.Metrics.Format)
	}

	return nil
}

// ApplyLogging applies the logging configuration.
func (c *Config) ApplyLogging() error {
	err := logging.Configure(logging.Options{
		Level:      c.Logging.Level,
		JSON:       c.Logging.JSON,
		File:       c.Logging.File,
		MaxSize:    c.Logging.MaxSize,
		MaxBackups: c.Logging.MaxBackups,
		MaxAge:     c.Logging.MaxAge,
	})
	if err != nil {
		return fmt.Errorf("failed to apply logging config: %w", err)
	}
	return nil
}

// TunOptions converts the interface section for tuntap.Create.
func (c *Config) TunOptions() (tuntap.Options, error) {
	kind, err := tuntap.ParseKind(c.Interface.Kind)
	if err != nil {
		return tuntap.Options{}, err
	}
	return tuntap.Options{
		Name:    c.Interface.Name,
		Kind:    kind,
		Queues:  c.Interface.Queues,
		Async:   c.Interface.Async,
		Network: c.Interface.Address,
	}, nil
}

// PipelineOptions converts the pipeline section. The tap hook is left to
// the caller.
func (c *Config) PipelineOptions() tuntap.PipelineOptions {
	return tuntap.PipelineOptions{
		Capacity: c.Pipeline.Capacity,
		Reserve:  c.Pipeline.Reserve,
		MinFree:  c.Pipeline.MinFree,
	}
}

// SaveToFile saves the configuration to a file.
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	// Determine file format based on extension
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		data, err = json.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config to JSON: %w", err)
		}
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config to YAML: %w", err)
		}
	default:
		return fmt.Errorf("unsupported config file format: %s", path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

//go:build linux || darwin || freebsd || openbsd

// Command netifd creates a virtual interface, configures it and keeps its
// queues busy: answering pings, capturing traffic or carrying a WireGuard
// device, until it receives SIGINT or SIGTERM.
//
// wireguard-go has no NetBSD port, so netifd is not built there.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/irctrakz/netif/pkg/config"
	"github.com/irctrakz/netif/pkg/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON or YAML config file")
	writeConfig := flag.String("write-config", "", "write the effective config to this path and exit")
	flag.Parse()

	cfg := config.DefaultConfig()
	if *configPath != "" {
		if err := config.LoadFromFile(*configPath, cfg); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	config.LoadFromEnv(cfg)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	if *writeConfig != "" {
		if err := cfg.SaveToFile(*writeConfig); err != nil {
			log.Fatalf("config: %v", err)
		}
		return
	}
	if err := cfg.ApplyLogging(); err != nil {
		log.Fatalf("logging: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	d, err := newDaemon(cfg)
	if err != nil {
		logging.Errorf("netifd: %v", err)
		os.Exit(1)
	}
	runErr := d.run(ctx)
	if err := d.Close(); err != nil {
		logging.Warnf("shutdown: %v", err)
	}
	if runErr != nil {
		logging.Errorf("netifd: %v", runErr)
		os.Exit(1)
	}
}

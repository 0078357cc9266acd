package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/hamed0406/netprobe/internal/config"
	"github.com/hamed0406/netprobe/internal/probe"
)

// netprobe-cli runs one online check locally and prints the result as JSON.
// The exit code is 0 when the host is online, 1 when offline and 2 on
// invalid input.
func main() {
	cfg := config.FromEnv()

	host := flag.String("host", "www.google.com", "host to check (must be allowlisted)")
	port := flag.Int("port", probe.AllowedPort, "port to check")
	timeout := flag.Duration("timeout", cfg.ProbeTimeout, "probe timeout")
	verbose := flag.Bool("v", false, "log probe events to stderr")
	flag.Parse()

	allow := probe.NewAllowlist(cfg.StaticHosts, cfg.AppwriteEndpoint)
	if !probe.PortAllowed(*port) {
		fmt.Fprintf(os.Stderr, "only port %d is allowed\n", probe.AllowedPort)
		os.Exit(2)
	}
	if !allow.Allowed(*host) {
		fmt.Fprintf(os.Stderr, "host %q is not in the allowlist %v\n", *host, allow.Hosts())
		os.Exit(2)
	}

	logger := zap.NewNop()
	if *verbose {
		l, err := zap.NewDevelopment()
		if err == nil {
			logger = l
		}
	}
	defer logger.Sync()

	res := probe.NewProber(logger).CheckOnline(context.Background(), *host, *port, *timeout)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(res)

	if !res.Online {
		os.Exit(1)
	}
}

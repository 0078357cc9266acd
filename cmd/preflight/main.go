// cmd/preflight/main.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/hamed0406/netprobe/internal/config"
	"github.com/hamed0406/netprobe/internal/probe"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fail(err.Error())
	}

	admin := strings.TrimSpace(os.Getenv("ADMIN_API_KEYS"))
	pub := strings.TrimSpace(os.Getenv("PUBLIC_API_KEYS"))

	if admin == "" {
		warn("ADMIN_API_KEYS is empty (POST /api/v1/health/recheck is open).")
	}
	if pub == "" && admin == "" {
		warn("PUBLIC_API_KEYS and ADMIN_API_KEYS are empty (history is readable without a key).")
	}

	// Normalize and sanity-check lists (no spaces around commas).
	for name, v := range map[string]string{"ADMIN_API_KEYS": admin, "PUBLIC_API_KEYS": pub, "ALLOWED_HOSTS": os.Getenv("ALLOWED_HOSTS")} {
		if strings.Contains(v, " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	ok("API_ADDR=" + cfg.Addr)

	if cfg.AppwriteEndpoint == "" {
		warn("APPWRITE_ENDPOINT empty; the Appwrite host is not allowlisted or monitored.")
	} else if h, valid := probe.ConfiguredHostname(cfg.AppwriteEndpoint); !valid {
		fail("APPWRITE_ENDPOINT is not an absolute URL: " + cfg.AppwriteEndpoint)
	} else {
		ok("APPWRITE_ENDPOINT host=" + h)
	}

	allow := probe.NewAllowlist(cfg.StaticHosts, cfg.AppwriteEndpoint)
	ok("allowlist=" + strings.Join(allow.Hosts(), ","))
	for _, s := range cfg.Services {
		if !allow.Allowed(s.Host) {
			warn("service " + s.Name + " host " + s.Host + " is not allowlisted and will be skipped")
		}
	}

	if cfg.DatabaseURL == "" {
		warn("DATABASE_URL empty; API will use the in-memory store.")
	} else {
		ok("DATABASE_URL present")
	}

	if len(cfg.AllowedOrigins) == 0 {
		warn("ALLOWED_ORIGINS empty; CORS allows any origin.")
	} else {
		ok("ALLOWED_ORIGINS=" + strings.Join(cfg.AllowedOrigins, ","))
	}

	if cfg.CheckInterval == 0 {
		warn("CHECK_INTERVAL_MS=0; rechecks, history and alerts are disabled.")
	}
	if cfg.SlackWebhook == "" && cfg.AlertWebhook == "" {
		warn("no SLACK_WEBHOOK_URL or ALERT_WEBHOOK_URL; alerts are disabled.")
	}

	ok("preflight passed")
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/netprobe/internal/config"
	"github.com/hamed0406/netprobe/internal/health"
	"github.com/hamed0406/netprobe/internal/httpapi"
	apimw "github.com/hamed0406/netprobe/internal/httpapi/middleware"
	"github.com/hamed0406/netprobe/internal/logging"
	"github.com/hamed0406/netprobe/internal/notify"
	"github.com/hamed0406/netprobe/internal/probe"
	"github.com/hamed0406/netprobe/internal/repo"
	"github.com/hamed0406/netprobe/internal/repo/memory"
	"github.com/hamed0406/netprobe/internal/repo/postgres"
	"github.com/hamed0406/netprobe/internal/scheduler"
)

type store interface {
	repo.HealthStore
	repo.AlertStore
}

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatal(err)
	}
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var st store
	if cfg.DatabaseURL != "" {
		pg, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("db_connect_error", zap.Error(err))
		}
		defer pg.Close()
		st = pg
		logger.Info("store", zap.String("kind", "postgres"))
	} else {
		st = memory.New()
		logger.Info("store", zap.String("kind", "memory"))
	}

	allow := probe.NewAllowlist(cfg.StaticHosts, cfg.AppwriteEndpoint)
	prober := probe.NewProber(logger)

	services := health.DefaultServices(cfg.AppwriteEndpoint)
	if len(cfg.Services) > 0 {
		services = make([]health.Service, 0, len(cfg.Services))
		for _, s := range cfg.Services {
			services = append(services, health.Service{Name: s.Name, Host: s.Host})
		}
	}
	mon := health.NewMonitor(prober, allow, services, health.Options{
		Timeout:         cfg.ProbeTimeout,
		DegradedLatency: cfg.DegradedLatency,
		Logger:          logger,
	})

	// Background rechecks feed the history and the alerter.
	go scheduler.NewRechecker(logger, mon, st, cfg.CheckInterval).Run(ctx)

	var notifiers notify.Multi
	if s := notify.NewSlack(cfg.SlackWebhook); s != nil {
		notifiers = append(notifiers, s)
	}
	if w := notify.NewWebhook(cfg.AlertWebhook); w != nil {
		notifiers = append(notifiers, w)
	}
	if len(notifiers) > 0 && cfg.CheckInterval > 0 {
		al := scheduler.NewAlerter(st, st, notifiers, scheduler.AlerterConfig{
			AlertOnRecovery: cfg.AlertOnRecovery,
			Cooldown:        cfg.AlertCooldown,
			PollInterval:    cfg.CheckInterval,
		}, logger)
		go func() { _ = al.Run(ctx) }()
	}

	api := httpapi.NewServer(logger, prober, allow, mon, st)
	api.StreamInterval = cfg.StreamInterval
	api.StatusMaxAge = 5 * time.Second

	keys := apimw.Keys{Public: cfg.PublicAPIKeys, Admin: cfg.AdminAPIKeys}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.PublicRPM, cfg.PublicBurst),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("api_listen",
		zap.String("addr", cfg.Addr),
		zap.Strings("allowed_hosts", allow.Hosts()),
		zap.Int("services", len(mon.Services())),
	)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("api_listen_error", zap.Error(err))
	}
	logger.Info("api_stopped")
}
